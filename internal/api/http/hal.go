package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mylibrary-rental/internal/domain"
)

const rentalsRel = "rentals"

type link struct {
	Href string `json:"href"`
}

type rentalLinks struct {
	Self link `json:"self"`
}

type rentalModel struct {
	domain.RentalView
	Links rentalLinks `json:"_links"`
}

type rentalsEmbedded struct {
	Rentals []rentalModel `json:"rentals"`
}

type pageMetadata struct {
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
}

type pageLinks struct {
	First *link `json:"first,omitempty"`
	Prev  *link `json:"prev,omitempty"`
	Self  link  `json:"self"`
	Next  *link `json:"next,omitempty"`
	Last  *link `json:"last,omitempty"`
}

type pagedRentals struct {
	Embedded rentalsEmbedded `json:"_embedded"`
	Links    pageLinks       `json:"_links"`
	Page     pageMetadata    `json:"page"`
}

// baseURL is the scheme and host the client used to reach us.
func baseURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return &url.URL{Scheme: scheme, Host: host}
}

func rentalHref(r *http.Request, id int32) string {
	u := baseURL(r)
	u.Path = rentalsPath + "/" + strconv.FormatInt(int64(id), 10)
	return u.String()
}

func toRentalModel(r *http.Request, v *domain.RentalView) rentalModel {
	return rentalModel{
		RentalView: *v,
		Links:      rentalLinks{Self: link{Href: rentalHref(r, v.RentalID)}},
	}
}

// toPagedRentals renders a page with self, first, prev, next and last
// links. Every link repeats the listing filters plus page, size and sort.
func toPagedRentals(r *http.Request, q listQuery, page *domain.Page[domain.RentalView]) pagedRentals {
	models := make([]rentalModel, 0, len(page.Content))
	for i := range page.Content {
		models = append(models, toRentalModel(r, &page.Content[i]))
	}

	links := pageLinks{Self: link{Href: pageHref(r, q, page.Number, page.Size)}}
	if page.TotalPages > 0 {
		links.First = &link{Href: pageHref(r, q, 0, page.Size)}
		links.Last = &link{Href: pageHref(r, q, page.TotalPages-1, page.Size)}
	}
	if page.HasPrevious() {
		prev := page.Number - 1
		if page.TotalPages > 0 && prev > page.TotalPages-1 {
			prev = page.TotalPages - 1
		}
		links.Prev = &link{Href: pageHref(r, q, prev, page.Size)}
	}
	if page.HasNext() {
		links.Next = &link{Href: pageHref(r, q, page.Number+1, page.Size)}
	}

	return pagedRentals{
		Embedded: rentalsEmbedded{Rentals: models},
		Links:    links,
		Page: pageMetadata{
			Size:          page.Size,
			TotalElements: page.TotalElements,
			TotalPages:    page.TotalPages,
			Number:        page.Number,
		},
	}
}

func pageHref(r *http.Request, q listQuery, number, size int) string {
	values := url.Values{}
	if q.bookID != "" {
		values.Set("bookId", q.bookID)
	}
	if q.userID != 0 {
		values.Set("userId", strconv.FormatInt(int64(q.userID), 10))
	}
	values.Set("page", strconv.Itoa(number))
	values.Set("size", strconv.Itoa(size))
	for _, s := range q.page.Sort {
		values.Add("sort", s.Property+","+string(s.Direction))
	}

	u := baseURL(r)
	u.Path = rentalsPath
	u.RawQuery = values.Encode()
	return u.String()
}
