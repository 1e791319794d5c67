package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mylibrary-rental/internal/domain"
)

var durationMessage = fmt.Sprintf("Rental duration should be between %d and %d days (inclusive) only.",
	domain.MinReturnDurationDays, domain.MaxReturnDurationDays)

// RentalRequest is the body of POST and PUT /rentals. Pointer fields tell
// a missing value apart from a zero one.
type RentalRequest struct {
	RentalID       *int32    `json:"rentalId"`
	UserID         *int32    `json:"userId" validate:"required"`
	BookID         string    `json:"bookId" validate:"required"`
	IssueTime      *jsonTime `json:"issueTime" validate:"required"`
	ReturnTime     *jsonTime `json:"returnTime"`
	ReturnDuration *int32    `json:"returnDuration" validate:"required,min=1,max=5"`
	LateFee        *float64  `json:"lateFee" validate:"omitempty,gte=0"`
}

func (req *RentalRequest) toView() *domain.RentalView {
	v := &domain.RentalView{
		BookID:     req.BookID,
		ReturnTime: req.ReturnTime.ptr(),
	}
	if req.RentalID != nil {
		v.RentalID = *req.RentalID
	}
	if req.UserID != nil {
		v.UserID = *req.UserID
	}
	if req.IssueTime != nil {
		v.IssueTime = req.IssueTime.Time
	}
	if req.ReturnDuration != nil {
		v.ReturnDuration = *req.ReturnDuration
	}
	if req.LateFee != nil {
		v.LateFee = *req.LateFee
	}
	return v
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRental checks a request body and reports every failed
// constraint. requireID is set for updates.
func ValidateRental(req *RentalRequest, requireID bool) error {
	verr := domain.NewValidationError()
	if req == nil {
		verr.Add("rental", "must not be null")
		return verr
	}
	if requireID && req.RentalID == nil {
		verr.Add("rentalId", "must not be null")
	}
	if req.IssueTime != nil && req.IssueTime.IsZero() {
		verr.Add("issueTime", "must not be null")
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), violationMessage(fe))
		}
	}

	if verr.HasViolations() {
		return verr
	}
	return nil
}

func violationMessage(fe validator.FieldError) string {
	if fe.Field() == "returnDuration" && (fe.Tag() == "min" || fe.Tag() == "max") {
		return durationMessage
	}
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.String {
			return "must not be blank"
		}
		return "must not be null"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
