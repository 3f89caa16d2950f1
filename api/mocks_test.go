package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/service/reservation"
)

type MockAvailabilityUseCase struct {
	mock.Mock
}

func (m *MockAvailabilityUseCase) GetAvailability(ctx context.Context, resourceID string, from, to domain.Month) (map[domain.Date]domain.Snapshot, error) {
	args := m.Called(ctx, resourceID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Date]domain.Snapshot), args.Error(1)
}

func (m *MockAvailabilityUseCase) StartTimes(ctx context.Context, resourceID string, date domain.Date) ([]domain.TimeOfDay, error) {
	args := m.Called(ctx, resourceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeOfDay), args.Error(1)
}

func (m *MockAvailabilityUseCase) EndTimes(ctx context.Context, resourceID string, date domain.Date, start domain.TimeOfDay) ([]domain.TimeOfDay, error) {
	args := m.Called(ctx, resourceID, date, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeOfDay), args.Error(1)
}

type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) ValidateAndPrice(ctx context.Context, input reservation.QuoteInput) (domain.PriceBreakdown, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.PriceBreakdown), args.Error(1)
}

func (m *MockReservationUseCase) Commit(ctx context.Context, input reservation.CommitInput) (*domain.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Transition(ctx context.Context, id string, action domain.Action) (*domain.Reservation, error) {
	args := m.Called(ctx, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Sweep(ctx context.Context) (reservation.SweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(reservation.SweepResult), args.Error(1)
}
