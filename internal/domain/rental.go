package domain

import "time"

const (
	MinReturnDurationDays = 1
	MaxReturnDurationDays = 5
)

// Rental is one user borrowing one book, as stored in the rentals table.
type Rental struct {
	RentalID       int32      `json:"rentalId"`
	UserID         int32      `json:"userId"`
	BookID         string     `json:"bookId"`
	IssueTime      time.Time  `json:"issueTime"`
	ReturnTime     *time.Time `json:"returnTime,omitempty"`
	ReturnDuration int32      `json:"returnDuration"`
	LateFee        float64    `json:"lateFee"`
}

// RentalView is the API-facing representation of a Rental.
type RentalView struct {
	RentalID       int32      `json:"rentalId"`
	UserID         int32      `json:"userId"`
	BookID         string     `json:"bookId"`
	IssueTime      time.Time  `json:"issueTime"`
	ReturnTime     *time.Time `json:"returnTime,omitempty"`
	ReturnDuration int32      `json:"returnDuration"`
	LateFee        float64    `json:"lateFee"`
}

// RentalFilter narrows a listing. A nil field matches every value.
type RentalFilter struct {
	UserID *int32
	BookID *string
}

// ToView copies a stored rental into its representation.
func ToView(r *Rental) *RentalView {
	if r == nil {
		return nil
	}
	return &RentalView{
		RentalID:       r.RentalID,
		UserID:         r.UserID,
		BookID:         r.BookID,
		IssueTime:      r.IssueTime,
		ReturnTime:     copyTime(r.ReturnTime),
		ReturnDuration: r.ReturnDuration,
		LateFee:        r.LateFee,
	}
}

// FromView builds an entity from a representation, keeping its RentalID.
func FromView(v *RentalView) *Rental {
	if v == nil {
		return nil
	}
	return &Rental{
		RentalID:       v.RentalID,
		UserID:         v.UserID,
		BookID:         v.BookID,
		IssueTime:      v.IssueTime,
		ReturnTime:     copyTime(v.ReturnTime),
		ReturnDuration: v.ReturnDuration,
		LateFee:        v.LateFee,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// rentalSortProperties lists the properties a listing may be ordered by.
var rentalSortProperties = map[string]bool{
	"rentalId":       true,
	"userId":         true,
	"bookId":         true,
	"issueTime":      true,
	"returnTime":     true,
	"returnDuration": true,
	"lateFee":        true,
}

// IsSortableRentalProperty reports whether a listing can be sorted by property.
func IsSortableRentalProperty(property string) bool {
	return rentalSortProperties[property]
}
