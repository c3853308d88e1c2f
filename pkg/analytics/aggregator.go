// Package analytics builds the admin dashboard report over stored orders.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/apperr"
	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MinWindowDays      = 1
	MaxWindowDays      = 30
	DefaultWindowDays  = 7
	DefaultBestSellers = 5

	dayKeyLayout = "2006-01-02"
)

type KPIs struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	RevenueToday    float64 `json:"revenueToday"`
	TotalOrders     int     `json:"totalOrders"`
	CompletedOrders int     `json:"completedOrders"`
	OrdersToday     int     `json:"ordersToday"`
	PendingOrders   int     `json:"pendingOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
}

// DayBucket covers one local calendar day. Orders counts every non-cancelled
// order created that day; Revenue only sums the completed ones.
type DayBucket struct {
	Date    string  `json:"date"`
	Day     string  `json:"day"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

type Overview struct {
	KPIs         KPIs                  `json:"kpis"`
	StatusCounts map[models.Status]int `json:"statusCounts"`
	Series       []DayBucket           `json:"lastNDays"`
	Range        Range                 `json:"range"`
}

type ItemSales struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type Aggregator struct {
	orders repository.OrderStore
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Aggregator)

// WithLocation sets the zone whose calendar days bound the window.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(orders repository.OrderStore, logger *zap.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		orders: orders,
		loc:    time.Local,
		now:    time.Now,
		logger: logger.Named("analytics"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ClampDays keeps a requested window length within [MinWindowDays, MaxWindowDays].
func ClampDays(days int) int {
	if days < MinWindowDays {
		return MinWindowDays
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// Window returns the inclusive bounds covering the last `days` local calendar
// days, ending with today.
func (a *Aggregator) Window(days int) Range {
	days = ClampDays(days)
	y, m, d := a.now().In(a.loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, a.loc)
	return Range{
		Start: today.AddDate(0, 0, -(days - 1)),
		End:   today.AddDate(0, 0, 1).Add(-time.Nanosecond),
		Days:  days,
	}
}

// Overview reports KPIs, per-status counts and a daily series for orders
// created inside the window. revenueToday is the exception: it sums orders
// that reached completed today, whatever day they were created.
func (a *Aggregator) Overview(ctx context.Context, actor auth.Identity, days int) (*Overview, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can view analytics")
	}

	window := a.Window(days)
	orders, err := a.orders.Find(ctx, repository.OrderQuery{
		CreatedFrom: window.Start,
		CreatedTo:   window.End,
		Ascending:   true,
	})
	if err != nil {
		a.logger.Error("Failed to load orders for analytics", zap.Error(err))
		return nil, fmt.Errorf("load window orders: %w", err)
	}

	counts := make(map[models.Status]int, len(models.AllStatuses()))
	for _, s := range models.AllStatuses() {
		counts[s] = 0
	}

	series := make([]DayBucket, window.Days)
	index := make(map[string]int, window.Days)
	for i := range series {
		day := window.Start.AddDate(0, 0, i)
		key := day.Format(dayKeyLayout)
		series[i] = DayBucket{Date: day.Format("Mon"), Day: key}
		index[key] = i
	}
	revenueByDay := make([]decimal.Decimal, window.Days)

	totalRevenue := decimal.Zero
	completed := 0
	for _, o := range orders {
		status := o.Status
		if status == "" {
			status = models.StatusPending
		}
		if _, ok := counts[status]; ok {
			counts[status]++
		}

		i, inWindow := index[o.CreatedAt.In(a.loc).Format(dayKeyLayout)]
		if inWindow && status != models.StatusCancelled {
			series[i].Orders++
		}
		if status == models.StatusCompleted {
			price := decimal.NewFromFloat(o.TotalPrice)
			if inWindow {
				revenueByDay[i] = revenueByDay[i].Add(price)
			}
			totalRevenue = totalRevenue.Add(price)
			completed++
		}
	}
	for i := range series {
		series[i].Revenue = revenueByDay[i].InexactFloat64()
	}

	revenueToday, completedToday, err := a.revenueToday(ctx, window.End)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Computed revenue today",
		zap.Int("completed_today", completedToday),
		zap.Float64("revenue_today", revenueToday))

	return &Overview{
		KPIs: KPIs{
			TotalRevenue:    totalRevenue.InexactFloat64(),
			RevenueToday:    revenueToday,
			TotalOrders:     len(orders),
			CompletedOrders: completed,
			OrdersToday:     series[len(series)-1].Orders,
			PendingOrders:   counts[models.StatusPending],
			CancelledOrders: counts[models.StatusCancelled],
		},
		StatusCounts: counts,
		Series:       series,
		Range:        window,
	}, nil
}

// revenueToday sums completed orders last modified today. The status change
// to completed is what moves updatedAt, so it stands in for a completion time.
func (a *Aggregator) revenueToday(ctx context.Context, endOfToday time.Time) (float64, int, error) {
	startOfToday := endOfToday.Add(time.Nanosecond).AddDate(0, 0, -1)
	orders, err := a.orders.Find(ctx, repository.OrderQuery{
		Statuses:    []models.Status{models.StatusCompleted},
		UpdatedFrom: startOfToday,
		UpdatedTo:   endOfToday,
	})
	if err != nil {
		a.logger.Error("Failed to load today's completed orders", zap.Error(err))
		return 0, 0, fmt.Errorf("load completed orders: %w", err)
	}

	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(decimal.NewFromFloat(o.TotalPrice))
	}
	return sum.InexactFloat64(), len(orders), nil
}

// BestSellers ranks items by quantity sold across every completed order.
// Items are grouped by their snapshot name.
func (a *Aggregator) BestSellers(ctx context.Context, actor auth.Identity, limit int) ([]ItemSales, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can view analytics")
	}
	if limit <= 0 {
		limit = DefaultBestSellers
	}

	orders, err := a.orders.Find(ctx, repository.OrderQuery{
		Statuses: []models.Status{models.StatusCompleted},
	})
	if err != nil {
		a.logger.Error("Failed to load completed orders", zap.Error(err))
		return nil, fmt.Errorf("load completed orders: %w", err)
	}

	type tally struct {
		quantity int
		revenue  decimal.Decimal
	}
	byName := make(map[string]*tally)
	for _, o := range orders {
		for _, item := range o.Items {
			t, ok := byName[item.Name]
			if !ok {
				t = &tally{revenue: decimal.Zero}
				byName[item.Name] = t
			}
			t.quantity += item.Quantity
			t.revenue = t.revenue.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	out := make([]ItemSales, 0, len(byName))
	for name, t := range byName {
		out = append(out, ItemSales{Name: name, Quantity: t.quantity, Revenue: t.revenue.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
