package memory

import (
	"context"

	"github.com/viant/procsim/model"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dao/store"
)

// DefaultCapacity is the number of semaphore slots when none is configured.
const DefaultCapacity = 5

// Service is the semaphore table: ids in [0, capacity) mapped to semaphores.
type Service struct {
	*store.MemoryStore[int, model.Semaphore]
	capacity int
}

var _ dao.Service[int, model.Semaphore] = (*Service)(nil)

// Capacity returns the number of slots
func (s *Service) Capacity() int {
	return s.capacity
}

// InRange returns true if id addresses a slot
func (s *Service) InRange(id int) bool {
	return id >= 0 && id < s.capacity
}

func (s *Service) Save(ctx context.Context, sem *model.Semaphore) error {
	if sem == nil {
		return dao.ErrNilEntity
	}
	if !s.InRange(sem.ID) {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, sem)
}

func (s *Service) Load(ctx context.Context, id int) (*model.Semaphore, error) {
	if !s.InRange(id) {
		return nil, dao.ErrInvalidID
	}
	return s.MemoryStore.Load(ctx, id)
}

// New creates a semaphore table with capacity slots.
func New(capacity int) *Service {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Service{
		MemoryStore: store.NewMemoryStore[int, model.Semaphore](func(s *model.Semaphore) int { return s.ID }),
		capacity:    capacity,
	}
}
