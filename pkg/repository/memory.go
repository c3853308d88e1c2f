package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/google/uuid"
)

// MemoryFoodStore keeps the catalog in process memory. It backs the
// "memory" storage driver and the service tests.
type MemoryFoodStore struct {
	mu    sync.RWMutex
	foods map[string]*models.Food
}

func NewMemoryFoodStore() *MemoryFoodStore {
	return &MemoryFoodStore{foods: make(map[string]*models.Food)}
}

func (s *MemoryFoodStore) Create(_ context.Context, food *models.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if food.ID == "" {
		food.ID = uuid.NewString()
	}
	now := time.Now()
	if food.CreatedAt.IsZero() {
		food.CreatedAt = now
	}
	food.UpdatedAt = now

	c := *food
	s.foods[food.ID] = &c
	return nil
}

func (s *MemoryFoodStore) FindByID(_ context.Context, id string) (*models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.foods[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *f
	return &c, nil
}

func (s *MemoryFoodStore) Find(_ context.Context, q FoodQuery) ([]*models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Food, 0, len(s.foods))
	for _, f := range s.foods {
		if q.AvailableOnly && !f.Available {
			continue
		}
		if q.Category != "" && !strings.EqualFold(strings.TrimSpace(f.Category), strings.TrimSpace(q.Category)) {
			continue
		}
		c := *f
		out = append(out, &c)
	}
	sortFoods(out)
	return out, nil
}

func (s *MemoryFoodStore) FindAvailableByIDs(_ context.Context, ids []string) ([]*models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Food
	for _, id := range uniqueIDs(ids) {
		f, ok := s.foods[id]
		if !ok || !f.Available {
			continue
		}
		c := *f
		out = append(out, &c)
	}
	return out, nil
}

func (s *MemoryFoodStore) Update(_ context.Context, food *models.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.foods[food.ID]
	if !ok {
		return ErrNotFound
	}
	food.CreatedAt = existing.CreatedAt
	food.UpdatedAt = time.Now()
	c := *food
	s.foods[food.ID] = &c
	return nil
}

func (s *MemoryFoodStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.foods[id]; !ok {
		return ErrNotFound
	}
	delete(s.foods, id)
	return nil
}

type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]*models.Order)}
}

func (s *MemoryOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	s.orders[order.ID] = order.Clone()
	return nil
}

func (s *MemoryOrderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (s *MemoryOrderStore) Find(_ context.Context, q OrderQuery) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Order, 0)
	for _, o := range s.orders {
		if q.matches(o) {
			out = append(out, o.Clone())
		}
	}
	sortOrders(out, q.Ascending)
	return out, nil
}

func (s *MemoryOrderStore) UpdateStatus(_ context.Context, id string, from, to models.Status, at time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status != from {
		return nil, ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = at
	return o.Clone(), nil
}
