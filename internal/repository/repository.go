package repository

import (
	"context"

	"mylibrary-rental/internal/domain"
)

// RentalRepository is the durable rental record store.
type RentalRepository interface {
	// FindByID returns (nil, nil) when no row has the id.
	FindByID(ctx context.Context, id int32) (*domain.Rental, error)
	FindPage(ctx context.Context, filter domain.RentalFilter, page domain.PageRequest) (*domain.Page[domain.Rental], error)
	// Save inserts when RentalID is zero and otherwise replaces every column of the row.
	Save(ctx context.Context, rental *domain.Rental) (*domain.Rental, error)
}
