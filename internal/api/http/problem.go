package http

import (
	"errors"
	"net/http"

	"mylibrary-rental/internal/domain"
	"mylibrary-rental/internal/logger"
)

// Problem kinds, reported as the problem title.
const (
	kindNotFound            = "NotFound"
	kindValidation          = "ValidationError"
	kindConstraintViolation = "ConstraintViolation"
	kindInternal            = "InternalServerError"
)

// Problem is an application/problem+json error body.
type Problem struct {
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Status     int                `json:"status"`
	Detail     string             `json:"detail,omitempty"`
	Instance   string             `json:"instance,omitempty"`
	RequestID  string             `json:"requestId,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// problemFor maps an error to its status code and problem body.
func problemFor(err error) Problem {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return Problem{
			Title:      kindValidation,
			Status:     http.StatusBadRequest,
			Detail:     err.Error(),
			Violations: validationErr.Violations,
		}
	case errors.Is(err, domain.ErrValidation):
		return Problem{Title: kindValidation, Status: http.StatusBadRequest, Detail: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return Problem{Title: kindNotFound, Status: http.StatusNotFound, Detail: err.Error()}
	case errors.Is(err, domain.ErrConstraintViolation):
		return Problem{Title: kindConstraintViolation, Status: http.StatusConflict, Detail: err.Error()}
	default:
		return Problem{
			Title:  kindInternal,
			Status: http.StatusInternalServerError,
			Detail: "an unexpected error occurred",
		}
	}
}

// writeError renders err as a problem and logs it. Internal errors are
// never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	p.Type = "about:blank"
	p.Instance = r.URL.Path
	p.RequestID = requestIDFrom(r.Context())

	log := logger.FromContext(r.Context())
	if p.Status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "Request failed", "error", err, "status", p.Status)
	} else {
		log.WarnContext(r.Context(), "Request rejected", "error", err, "status", p.Status)
	}
	writeJSON(w, p.Status, contentTypeProblemJSON, p)
}
