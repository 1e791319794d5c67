package http

import (
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"

	"mylibrary-rental/internal/service"
)

// NewRouter wires the rental API, API docs and health endpoints behind
// request-id, access-log and panic-recovery middleware.
func NewRouter(svc service.RentalService, pinger Pinger, doc *openapi3.T) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("rental service must not be nil")
	}
	if pinger == nil {
		return nil, errors.New("health pinger must not be nil")
	}
	if doc == nil {
		return nil, errors.New("openapi document must not be nil")
	}
	docs, err := newAPIDocsHandler(doc)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()

	RegisterRentalRoutes(router, svc)
	router.Handle(basePath+"/api-docs", docs).Methods(http.MethodGet)
	router.HandleFunc("/health", healthHandler(pinger)).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Wrapping the whole router keeps unmatched routes inside the middleware too.
	return requestID(accessLog(recoverPanic(router))), nil
}

// RegisterRentalRoutes registers the /mylibrary/rentals endpoints.
func RegisterRentalRoutes(router *mux.Router, svc service.RentalService) {
	handler := NewRentalHandler(svc)
	router.HandleFunc(rentalsPath+"/{rentalId}", handler.GetRental).Methods(http.MethodGet)
	router.HandleFunc(rentalsPath, handler.ListRentals).Methods(http.MethodGet)
	router.HandleFunc(rentalsPath, handler.UpdateRental).Methods(http.MethodPut)
	router.HandleFunc(rentalsPath, handler.CreateRental).Methods(http.MethodPost)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, contentTypeProblemJSON, Problem{
		Type:      "about:blank",
		Title:     kindNotFound,
		Status:    http.StatusNotFound,
		Detail:    "no route for " + r.Method + " " + r.URL.Path,
		Instance:  r.URL.Path,
		RequestID: requestIDFrom(r.Context()),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, contentTypeProblemJSON, Problem{
		Type:      "about:blank",
		Title:     "MethodNotAllowed",
		Status:    http.StatusMethodNotAllowed,
		Detail:    r.Method + " is not supported for " + r.URL.Path,
		Instance:  r.URL.Path,
		RequestID: requestIDFrom(r.Context()),
	})
}
