package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mylibrary-rental/internal/domain"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) FindByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) FindPage(ctx context.Context, filter domain.RentalFilter, page domain.PageRequest) (*domain.Page[domain.Rental], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Rental]), args.Error(1)
}

func (m *MockRentalRepo) Save(ctx context.Context, rental *domain.Rental) (*domain.Rental, error) {
	args := m.Called(ctx, rental)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
