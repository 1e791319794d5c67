package service

import (
	"context"

	"mylibrary-rental/internal/domain"
)

type RentalService interface {
	GetRentalByID(ctx context.Context, rentalID int32) (*domain.RentalView, error)
	// GetRentals filters by bookID when it is non-empty and by userID when it is non-zero.
	GetRentals(ctx context.Context, bookID string, userID int32, page domain.PageRequest) (*domain.Page[domain.RentalView], error)
	GetRentalsByBookID(ctx context.Context, bookID string, page domain.PageRequest) (*domain.Page[domain.RentalView], error)
	GetRentalsByUserID(ctx context.Context, userID int32, page domain.PageRequest) (*domain.Page[domain.RentalView], error)
	CreateRental(ctx context.Context, rental *domain.RentalView) (*domain.RentalView, error)
	UpdateRental(ctx context.Context, rental *domain.RentalView) (*domain.RentalView, error)
}
