package service

import (
	"context"
	"errors"

	"mylibrary-rental/internal/domain"
	"mylibrary-rental/internal/logger"
	"mylibrary-rental/internal/repository"
)

const rentalResource = "Rental"

type rentalService struct {
	rentalRepo repository.RentalRepository
}

func NewRentalService(rentalRepo repository.RentalRepository) RentalService {
	return &rentalService{rentalRepo: rentalRepo}
}

func (s *rentalService) GetRentalByID(ctx context.Context, rentalID int32) (*domain.RentalView, error) {
	logger.EnterMethod(ctx, "rentalService.GetRentalByID", "rental_id", rentalID)

	rental, err := s.rentalRepo.FindByID(ctx, rentalID)
	if err != nil {
		logger.ExitMethodWithError(ctx, "rentalService.GetRentalByID", err, false, "rental_id", rentalID)
		return nil, err
	}
	if rental == nil {
		err = domain.NewNotFoundError(rentalResource, rentalID)
		logger.ExitMethodWithError(ctx, "rentalService.GetRentalByID", err, true, "rental_id", rentalID)
		return nil, err
	}

	logger.ExitMethod(ctx, "rentalService.GetRentalByID", "rental_id", rentalID)
	return domain.ToView(rental), nil
}

func (s *rentalService) GetRentals(ctx context.Context, bookID string, userID int32, page domain.PageRequest) (*domain.Page[domain.RentalView], error) {
	var filter domain.RentalFilter
	switch {
	case bookID != "" && userID != 0:
		filter = domain.RentalFilter{BookID: &bookID, UserID: &userID}
	case bookID != "":
		filter = domain.RentalFilter{BookID: &bookID}
	case userID != 0:
		filter = domain.RentalFilter{UserID: &userID}
	}
	return s.findPage(ctx, "rentalService.GetRentals", filter, page)
}

func (s *rentalService) GetRentalsByBookID(ctx context.Context, bookID string, page domain.PageRequest) (*domain.Page[domain.RentalView], error) {
	return s.findPage(ctx, "rentalService.GetRentalsByBookID", domain.RentalFilter{BookID: &bookID}, page)
}

func (s *rentalService) GetRentalsByUserID(ctx context.Context, userID int32, page domain.PageRequest) (*domain.Page[domain.RentalView], error) {
	return s.findPage(ctx, "rentalService.GetRentalsByUserID", domain.RentalFilter{UserID: &userID}, page)
}

func (s *rentalService) findPage(ctx context.Context, method string, filter domain.RentalFilter, page domain.PageRequest) (*domain.Page[domain.RentalView], error) {
	logger.EnterMethod(ctx, method, "page", page.Number, "size", page.Size)

	rentals, err := s.rentalRepo.FindPage(ctx, filter, page)
	if err != nil {
		logger.ExitMethodWithError(ctx, method, err, errors.Is(err, domain.ErrValidation))
		return nil, err
	}

	views := domain.MapPage(rentals, func(r domain.Rental) domain.RentalView {
		return *domain.ToView(&r)
	})
	logger.ExitMethod(ctx, method, "returned", len(views.Content), "total", views.TotalElements)
	return views, nil
}

// CreateRental stores a new rental. Any id on the input is ignored.
func (s *rentalService) CreateRental(ctx context.Context, view *domain.RentalView) (*domain.RentalView, error) {
	logger.EnterMethod(ctx, "rentalService.CreateRental")
	if view == nil {
		err := domain.NewValidationError(domain.Violation{Field: "rental", Message: "must not be null"})
		logger.ExitMethodWithError(ctx, "rentalService.CreateRental", err, true)
		return nil, err
	}

	rental := domain.FromView(view)
	rental.RentalID = 0

	saved, err := s.rentalRepo.Save(ctx, rental)
	if err != nil {
		logger.ExitMethodWithError(ctx, "rentalService.CreateRental", err, errors.Is(err, domain.ErrConstraintViolation))
		return nil, err
	}

	logger.ExitMethod(ctx, "rentalService.CreateRental", "rental_id", saved.RentalID)
	return domain.ToView(saved), nil
}

// UpdateRental records a return: only returnTime and lateFee are taken
// from the input, every other field keeps its stored value.
func (s *rentalService) UpdateRental(ctx context.Context, view *domain.RentalView) (*domain.RentalView, error) {
	if view == nil {
		return nil, domain.NewValidationError(domain.Violation{Field: "rental", Message: "must not be null"})
	}
	logger.EnterMethod(ctx, "rentalService.UpdateRental", "rental_id", view.RentalID)

	existing, err := s.rentalRepo.FindByID(ctx, view.RentalID)
	if err != nil {
		logger.ExitMethodWithError(ctx, "rentalService.UpdateRental", err, false, "rental_id", view.RentalID)
		return nil, err
	}
	if existing == nil {
		err = domain.NewNotFoundError(rentalResource, view.RentalID)
		logger.ExitMethodWithError(ctx, "rentalService.UpdateRental", err, true, "rental_id", view.RentalID)
		return nil, err
	}

	patch := domain.FromView(view)
	existing.ReturnTime = patch.ReturnTime
	existing.LateFee = patch.LateFee

	saved, err := s.rentalRepo.Save(ctx, existing)
	if err != nil {
		expected := errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConstraintViolation)
		logger.ExitMethodWithError(ctx, "rentalService.UpdateRental", err, expected, "rental_id", view.RentalID)
		return nil, err
	}

	logger.ExitMethod(ctx, "rentalService.UpdateRental", "rental_id", saved.RentalID)
	return domain.ToView(saved), nil
}
