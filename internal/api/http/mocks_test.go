package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mylibrary-rental/internal/domain"
)

// MockRentalService
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) GetRentalByID(ctx context.Context, rentalID int32) (*domain.RentalView, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalView), args.Error(1)
}

func (m *MockRentalService) GetRentals(ctx context.Context, bookID string, userID int32, page domain.PageRequest) (*domain.Page[domain.RentalView], error) {
	args := m.Called(ctx, bookID, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.RentalView]), args.Error(1)
}

func (m *MockRentalService) GetRentalsByBookID(ctx context.Context, bookID string, page domain.PageRequest) (*domain.Page[domain.RentalView], error) {
	args := m.Called(ctx, bookID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.RentalView]), args.Error(1)
}

func (m *MockRentalService) GetRentalsByUserID(ctx context.Context, userID int32, page domain.PageRequest) (*domain.Page[domain.RentalView], error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.RentalView]), args.Error(1)
}

func (m *MockRentalService) CreateRental(ctx context.Context, rental *domain.RentalView) (*domain.RentalView, error) {
	args := m.Called(ctx, rental)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalView), args.Error(1)
}

func (m *MockRentalService) UpdateRental(ctx context.Context, rental *domain.RentalView) (*domain.RentalView, error) {
	args := m.Called(ctx, rental)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalView), args.Error(1)
}

// MockPinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
