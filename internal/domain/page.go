package domain

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000

	// MaxPageNumber keeps Number*Size within int for every accepted size.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortOrder orders a listing by one rental property (e.g. "issueTime").
type SortOrder struct {
	Property  string
	Direction SortDirection
}

// PageRequest asks for the zero-based page Number holding at most Size rows.
type PageRequest struct {
	Number int
	Size   int
	Sort   []SortOrder
}

// DefaultSort is applied when a PageRequest carries no sort orders.
var DefaultSort = []SortOrder{{Property: "issueTime", Direction: SortDesc}}

// NewPageRequest clamps number and size into the accepted range.
func NewPageRequest(number, size int, sort []SortOrder) PageRequest {
	if number < 0 {
		number = 0
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if len(sort) == 0 {
		sort = DefaultSort
	}
	return PageRequest{Number: number, Size: size, Sort: sort}
}

func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// Page is one slice of an ordered result set plus totals.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
	Sort          []SortOrder
}

// NewPage derives TotalPages as ceil(total / size).
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		Number:        req.Number,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
		Sort:          req.Sort,
	}
}

func (p *Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 0
}

// MapPage converts page content while keeping its metadata.
func MapPage[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return &Page[U]{
		Content:       out,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Sort:          p.Sort,
	}
}
