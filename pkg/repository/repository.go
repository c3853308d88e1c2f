package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict means the order's status no longer matched the
	// expected value when the update was applied.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// FoodQuery filters catalog listings. Zero values match everything.
type FoodQuery struct {
	Category      string
	AvailableOnly bool
}

type FoodStore interface {
	Create(ctx context.Context, food *models.Food) error
	FindByID(ctx context.Context, id string) (*models.Food, error)
	Find(ctx context.Context, q FoodQuery) ([]*models.Food, error)
	// FindAvailableByIDs returns only the foods among ids that are marked
	// available. Unknown or malformed ids are skipped.
	FindAvailableByIDs(ctx context.Context, ids []string) ([]*models.Food, error)
	Update(ctx context.Context, food *models.Food) error
	Delete(ctx context.Context, id string) error
}

// OrderQuery filters order listings. Time bounds are inclusive and ignored
// when zero. Results are newest first unless Ascending is set.
type OrderQuery struct {
	UserID      string
	Statuses    []models.Status
	CreatedFrom time.Time
	CreatedTo   time.Time
	UpdatedFrom time.Time
	UpdatedTo   time.Time
	Ascending   bool
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Find(ctx context.Context, q OrderQuery) ([]*models.Order, error)
	// UpdateStatus atomically sets the status to `to` only if it is still
	// `from`. It returns ErrNotFound for unknown ids and ErrStatusConflict
	// when the stored status differs from `from`.
	UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) (*models.Order, error)
}

func (q OrderQuery) matches(o *models.Order) bool {
	if q.UserID != "" && o.UserID != q.UserID {
		return false
	}
	if len(q.Statuses) > 0 {
		found := false
		for _, s := range q.Statuses {
			if o.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !within(o.CreatedAt, q.CreatedFrom, q.CreatedTo) {
		return false
	}
	return within(o.UpdatedAt, q.UpdatedFrom, q.UpdatedTo)
}

func within(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

func sortOrders(orders []*models.Order, ascending bool) {
	sort.SliceStable(orders, func(i, j int) bool {
		if ascending {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortFoods(foods []*models.Food) {
	sort.SliceStable(foods, func(i, j int) bool {
		ci, cj := models.NormalizeCategory(foods[i].Category), models.NormalizeCategory(foods[j].Category)
		if ci != cj {
			return ci < cj
		}
		return foods[i].Name < foods[j].Name
	})
}
