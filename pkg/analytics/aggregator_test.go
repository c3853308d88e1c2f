package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/apperr"
	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin    = auth.Identity{UserID: "root", Role: auth.RoleAdmin}
	customer = auth.Identity{UserID: "alice", Role: auth.RoleUser}
)

// Thursday 2024-03-14 15:00 in a fixed UTC+8 zone.
var (
	taipei = time.FixedZone("UTC+8", 8*60*60)
	now    = time.Date(2024, 3, 14, 15, 0, 0, 0, taipei)
)

func day(offset, hour int) time.Time {
	return time.Date(2024, 3, 14+offset, hour, 0, 0, 0, taipei)
}

func seed(t *testing.T, store *repository.MemoryOrderStore, orders ...*models.Order) {
	t.Helper()
	for _, o := range orders {
		if o.UpdatedAt.IsZero() {
			o.UpdatedAt = o.CreatedAt
		}
		require.NoError(t, store.Create(context.Background(), o))
	}
}

func order(status models.Status, total float64, created time.Time) *models.Order {
	return &models.Order{
		UserID:     "alice",
		Status:     status,
		TotalPrice: total,
		CreatedAt:  created,
		Items:      []models.OrderItem{{Name: "Burger", Price: total, Quantity: 1}},
	}
}

func newAggregator(store repository.OrderStore) *Aggregator {
	return NewAggregator(store, zap.NewNop(),
		WithLocation(taipei),
		WithClock(func() time.Time { return now }))
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, 1, ClampDays(-4))
	assert.Equal(t, 1, ClampDays(0))
	assert.Equal(t, 7, ClampDays(7))
	assert.Equal(t, 30, ClampDays(30))
	assert.Equal(t, 30, ClampDays(365))
}

func TestWindow(t *testing.T) {
	a := newAggregator(repository.NewMemoryOrderStore())

	w := a.Window(7)

	assert.Equal(t, 7, w.Days)
	assert.True(t, w.Start.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, taipei)), w.Start)
	assert.True(t, w.End.Equal(time.Date(2024, 3, 14, 23, 59, 59, 999999999, taipei)), w.End)
}

func TestWindow_UsesLocalCalendarDay(t *testing.T) {
	// 01:00 local on the 15th is still the 14th in UTC.
	early := time.Date(2024, 3, 15, 1, 0, 0, 0, taipei)
	a := NewAggregator(repository.NewMemoryOrderStore(), zap.NewNop(),
		WithLocation(taipei),
		WithClock(func() time.Time { return early.UTC() }))

	w := a.Window(1)

	assert.True(t, w.Start.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, taipei)), w.Start)
}

func TestOverview(t *testing.T) {
	store := repository.NewMemoryOrderStore()
	seed(t, store,
		order(models.StatusCompleted, 100, day(0, 9)),
		order(models.StatusPending, 40, day(0, 10)),
		order(models.StatusCancelled, 70, day(0, 11)),
		order(models.StatusCompleted, 60, day(-2, 12)),
		order(models.StatusPreparing, 25, day(-6, 0)),
		order(models.StatusDelivering, 35, day(-3, 18)),
		// Outside the 7 day window.
		order(models.StatusCompleted, 500, day(-7, 23)),
	)
	a := newAggregator(store)

	ov, err := a.Overview(context.Background(), admin, 7)
	require.NoError(t, err)

	assert.Equal(t, map[models.Status]int{
		models.StatusPending:    1,
		models.StatusPreparing:  1,
		models.StatusDelivering: 1,
		models.StatusCompleted:  2,
		models.StatusCancelled:  1,
	}, ov.StatusCounts)

	assert.Equal(t, KPIs{
		TotalRevenue:    160,
		RevenueToday:    100,
		TotalOrders:     6,
		CompletedOrders: 2,
		OrdersToday:     2,
		PendingOrders:   1,
		CancelledOrders: 1,
	}, ov.KPIs)

	require.Len(t, ov.Series, 7)
	assert.Equal(t, []DayBucket{
		{Date: "Fri", Day: "2024-03-08", Orders: 1},
		{Date: "Sat", Day: "2024-03-09"},
		{Date: "Sun", Day: "2024-03-10"},
		{Date: "Mon", Day: "2024-03-11", Orders: 1},
		{Date: "Tue", Day: "2024-03-12", Orders: 1, Revenue: 60},
		{Date: "Wed", Day: "2024-03-13"},
		{Date: "Thu", Day: "2024-03-14", Orders: 2, Revenue: 100},
	}, ov.Series)

	sum := 0
	for _, b := range ov.Series {
		sum += b.Orders
	}
	assert.Equal(t, ov.KPIs.TotalOrders-ov.StatusCounts[models.StatusCancelled], sum)
	assert.Equal(t, 7, ov.Range.Days)
}

func TestOverview_RevenueTodayFollowsCompletionTime(t *testing.T) {
	store := repository.NewMemoryOrderStore()
	old := order(models.StatusCompleted, 80, day(-20, 12))
	old.UpdatedAt = day(0, 8)
	stale := order(models.StatusCompleted, 30, day(0, 7))
	stale.UpdatedAt = day(0, 7)
	seed(t, store, old, stale)

	ov, err := newAggregator(store).Overview(context.Background(), admin, 7)
	require.NoError(t, err)

	assert.Equal(t, 110.0, ov.KPIs.RevenueToday)
	// Only the order created inside the window counts toward the window totals.
	assert.Equal(t, 30.0, ov.KPIs.TotalRevenue)
	assert.Equal(t, 1, ov.KPIs.TotalOrders)
}

func TestOverview_ClampsDays(t *testing.T) {
	a := newAggregator(repository.NewMemoryOrderStore())

	ov, err := a.Overview(context.Background(), admin, 90)
	require.NoError(t, err)
	assert.Len(t, ov.Series, MaxWindowDays)

	ov, err = a.Overview(context.Background(), admin, 0)
	require.NoError(t, err)
	assert.Len(t, ov.Series, 1)
	assert.Equal(t, "2024-03-14", ov.Series[0].Day)
}

func TestOverview_EmptyStoreHasAllStatuses(t *testing.T) {
	ov, err := newAggregator(repository.NewMemoryOrderStore()).Overview(context.Background(), admin, 7)
	require.NoError(t, err)

	assert.Len(t, ov.StatusCounts, 5)
	for _, s := range models.AllStatuses() {
		assert.Zero(t, ov.StatusCounts[s], s)
	}
}

func TestOverview_AdminOnly(t *testing.T) {
	_, err := newAggregator(repository.NewMemoryOrderStore()).Overview(context.Background(), customer, 7)

	var perr *apperr.PermissionError
	assert.ErrorAs(t, err, &perr)
}

func TestBestSellers(t *testing.T) {
	store := repository.NewMemoryOrderStore()
	mk := func(status models.Status, items ...models.OrderItem) *models.Order {
		return &models.Order{UserID: "alice", Status: status, Items: items, CreatedAt: day(-40, 12)}
	}
	seed(t, store,
		mk(models.StatusCompleted,
			models.OrderItem{Name: "Burger", Price: 100, Quantity: 2},
			models.OrderItem{Name: "Fries", Price: 50, Quantity: 3}),
		mk(models.StatusCompleted,
			models.OrderItem{Name: "Burger", Price: 90, Quantity: 1},
			models.OrderItem{Name: "Cola", Price: 20, Quantity: 3}),
		mk(models.StatusPending,
			models.OrderItem{Name: "Salad", Price: 70, Quantity: 10}),
	)
	a := newAggregator(store)

	top, err := a.BestSellers(context.Background(), admin, 0)
	require.NoError(t, err)
	assert.Equal(t, []ItemSales{
		{Name: "Burger", Quantity: 3, Revenue: 290},
		{Name: "Cola", Quantity: 3, Revenue: 60},
		{Name: "Fries", Quantity: 3, Revenue: 150},
	}, top)

	top, err = a.BestSellers(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	_, err = a.BestSellers(context.Background(), customer, 5)
	var perr *apperr.PermissionError
	assert.ErrorAs(t, err, &perr)
}
