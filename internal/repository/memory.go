package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/lock"
)

// MemoryStore keeps resources and reservations in process. It honours the
// same commit contract as the Postgres repositories and backs local runs and
// tests.
type MemoryStore struct {
	mu           sync.RWMutex
	resources    map[string]domain.Resource
	reservations map[string]domain.Reservation
	commits      *lock.KeyedMutex
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources:    make(map[string]domain.Resource),
		reservations: make(map[string]domain.Reservation),
		commits:      lock.NewKeyedMutex(),
		now:          time.Now,
	}
}

// Resources exposes the store as a ResourceRepository.
func (s *MemoryStore) Resources() ResourceRepository { return memoryResources{s} }

// Reservations exposes the store as a ReservationRepository.
func (s *MemoryStore) Reservations() ReservationRepository { return memoryReservations{s} }

type memoryResources struct{ s *MemoryStore }

func (m memoryResources) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("get resource", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	res, ok := m.s.resources[id]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", id, domain.ErrResourceNotFound)
	}
	res.BlockedDates = slices.Clone(res.BlockedDates)
	return &res, nil
}

func (m memoryResources) Save(ctx context.Context, res *domain.Resource) error {
	if err := ctx.Err(); err != nil {
		return storageErr("save resource", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := m.s.now().UTC()
	stored := *res
	stored.BlockedDates = slices.Clone(res.BlockedDates)
	if prev, ok := m.s.resources[res.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.s.resources[res.ID] = stored
	return nil
}

type memoryReservations struct{ s *MemoryStore }

func (m memoryReservations) ListActive(ctx context.Context, resourceID string, from, to domain.Date) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list reservations", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	return m.s.filter(func(r domain.Reservation) bool {
		return r.ResourceID == resourceID && r.Status.Active() && !r.Date.Before(from) && !r.Date.After(to)
	}), nil
}

func (m memoryReservations) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("get reservation", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	r, ok := m.s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound)
	}
	return &r, nil
}

func (m memoryReservations) Commit(ctx context.Context, resourceID string, date domain.Date, fn CommitFunc) (*domain.Reservation, error) {
	unlock, err := m.s.commits.Lock(ctx, commitKey(resourceID, date))
	if err != nil {
		return nil, storageErr("acquire commit lock", err)
	}
	defer unlock()

	m.s.mu.RLock()
	active := m.s.filter(func(r domain.Reservation) bool {
		return r.ResourceID == resourceID && r.Date == date && r.Status.Active()
	})
	m.s.mu.RUnlock()

	res, err := fn(active)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, storageErr("commit reservation", err)
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.reservations[res.ID]; exists {
		return nil, storageErr("insert reservation", fmt.Errorf("duplicate reservation id %s", res.ID))
	}
	now := m.s.now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now
	m.s.reservations[res.ID] = *res
	return res, nil
}

func (m memoryReservations) UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus, reason domain.CancelReason) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("update reservation status", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	r, ok := m.s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound)
	}
	if r.Status != from {
		return nil, fmt.Errorf("%w: reservation %s is %s, expected %s", domain.ErrLifecycleViolation, id, r.Status, from)
	}
	r.Status = to
	r.CancelReason = reason
	r.UpdatedAt = m.s.now().UTC()
	m.s.reservations[id] = r
	return &r, nil
}

func (m memoryReservations) ListByStatusUntil(ctx context.Context, status domain.ReservationStatus, until domain.Date) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list reservations by status", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	return m.s.filter(func(r domain.Reservation) bool {
		return r.Status == status && !r.Date.After(until)
	}), nil
}

// filter must be called with mu held.
func (s *MemoryStore) filter(keep func(domain.Reservation) bool) []domain.Reservation {
	out := make([]domain.Reservation, 0)
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b domain.Reservation) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return int(a.Start - b.Start)
	})
	return out
}

var (
	_ ResourceRepository    = memoryResources{}
	_ ReservationRepository = memoryReservations{}
)
