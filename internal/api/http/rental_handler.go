package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"mylibrary-rental/internal/domain"
	"mylibrary-rental/internal/service"
)

const (
	basePath    = "/mylibrary"
	rentalsPath = basePath + "/rentals"
)

// RentalHandler serves the rental resource.
type RentalHandler struct {
	svc service.RentalService
}

func NewRentalHandler(svc service.RentalService) *RentalHandler {
	return &RentalHandler{svc: svc}
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["rentalId"], 10, 32)
	if err != nil {
		writeError(w, r, domain.NewValidationError(domain.Violation{Field: "rentalId", Message: "must be an integer"}))
		return
	}

	rental, err := h.svc.GetRentalByID(r.Context(), int32(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contentTypeHALJSON, toRentalModel(r, rental))
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.svc.GetRentals(r.Context(), q.bookID, q.userID, q.page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contentTypeHALJSON, toPagedRentals(r, q, page))
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRentalRequest(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.svc.CreateRental(r.Context(), req.toView())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", rentalHref(r, rental.RentalID))
	writeJSON(w, http.StatusCreated, contentTypeHALJSON, toRentalModel(r, rental))
}

func (h *RentalHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRentalRequest(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.svc.UpdateRental(r.Context(), req.toView())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contentTypeHALJSON, toRentalModel(r, rental))
}

func decodeRentalRequest(r *http.Request, requireID bool) (*RentalRequest, error) {
	if r.Body == nil {
		return nil, domain.NewValidationError(domain.Violation{Field: "body", Message: "request body is required"})
	}
	var req RentalRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return nil, domain.NewValidationError(domain.Violation{Field: "body", Message: "malformed JSON: " + err.Error()})
	}
	if err := ValidateRental(&req, requireID); err != nil {
		return nil, err
	}
	return &req, nil
}

type listQuery struct {
	bookID string
	userID int32
	page   domain.PageRequest
}

// parseListQuery reads userId, bookId, page, size and sort. Unparseable
// page and size values fall back to their defaults.
func parseListQuery(r *http.Request) (listQuery, error) {
	values := r.URL.Query()
	q := listQuery{bookID: values.Get("bookId")}

	if raw := values.Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return q, domain.NewValidationError(domain.Violation{Field: "userId", Message: "must be an integer"})
		}
		q.userID = int32(id)
	}

	number, err := strconv.Atoi(values.Get("page"))
	if err != nil {
		number = 0
	}
	size, err := strconv.Atoi(values.Get("size"))
	if err != nil {
		size = domain.DefaultPageSize
	}

	sort, err := parseSort(values["sort"])
	if err != nil {
		return q, err
	}
	q.page = domain.NewPageRequest(number, size, sort)
	return q, nil
}

// parseSort reads repeated "property(,property)*(,asc|desc)" parameters.
// A trailing direction applies to every property before it.
func parseSort(params []string) ([]domain.SortOrder, error) {
	var orders []domain.SortOrder
	verr := domain.NewValidationError()
	for _, param := range params {
		var props []string
		for _, part := range strings.Split(param, ",") {
			if part = strings.TrimSpace(part); part != "" {
				props = append(props, part)
			}
		}
		if len(props) == 0 {
			continue
		}

		direction := domain.SortAsc
		switch strings.ToLower(props[len(props)-1]) {
		case "asc":
			props = props[:len(props)-1]
		case "desc":
			direction = domain.SortDesc
			props = props[:len(props)-1]
		}

		for _, prop := range props {
			if !domain.IsSortableRentalProperty(prop) {
				verr.Add("sort", fmt.Sprintf("unknown sort property %q", prop))
				continue
			}
			orders = append(orders, domain.SortOrder{Property: prop, Direction: direction})
		}
	}
	if verr.HasViolations() {
		return nil, verr
	}
	return orders, nil
}
