package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu     sync.Mutex
	name   string
	events []Event
	err    error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Handle(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func testOrder() *models.Order {
	created := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	return &models.Order{
		ID:         "o-1",
		UserID:     "alice",
		Status:     models.StatusPending,
		TotalPrice: 250,
		Items:      []models.OrderItem{{Name: "Burger", Price: 100, Quantity: 2}, {Name: "Fries", Price: 50, Quantity: 1}},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestDispatcher_DeliversInOrderToEverySink(t *testing.T) {
	failing := &recordingSink{name: "failing", err: errors.New("broker down")}
	recording := &recordingSink{name: "recording"}
	d, err := NewDispatcher(zap.NewNop(), failing, recording)
	require.NoError(t, err)

	ctx := context.Background()
	o := testOrder()
	d.OrderPlaced(ctx, o)

	o.Status = models.StatusPreparing
	o.UpdatedAt = o.CreatedAt.Add(5 * time.Minute)
	d.StatusChanged(ctx, o, models.StatusPending)

	require.NoError(t, d.Close())

	got := recording.received()
	require.Len(t, got, 2)
	assert.Equal(t, Event{
		Type:       OrderPlaced,
		OrderID:    "o-1",
		UserID:     "alice",
		To:         models.StatusPending,
		TotalPrice: 250,
		ItemCount:  2,
		At:         o.CreatedAt,
	}, got[0])
	assert.Equal(t, StatusChanged, got[1].Type)
	assert.Equal(t, models.StatusPending, got[1].From)
	assert.Equal(t, models.StatusPreparing, got[1].To)
	assert.Equal(t, o.UpdatedAt, got[1].At)

	assert.Len(t, failing.received(), 2)
}

type auditRecorder struct {
	logs []*repository.AuditLog
}

func (r *auditRecorder) CreateAuditLog(_ context.Context, log *repository.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func TestAuditSink(t *testing.T) {
	rec := &auditRecorder{}
	sink := NewAuditSink(rec)
	at := time.Date(2024, 3, 14, 12, 5, 0, 0, time.UTC)

	err := sink.Handle(context.Background(), Event{
		Type:       StatusChanged,
		OrderID:    "o-1",
		UserID:     "alice",
		From:       models.StatusPending,
		To:         models.StatusCancelled,
		TotalPrice: 250,
		ItemCount:  2,
		At:         at,
	})
	require.NoError(t, err)

	require.Len(t, rec.logs, 1)
	log := rec.logs[0]
	assert.Equal(t, "big-bite", log.Service)
	assert.Equal(t, "order.status_changed", log.Action)
	assert.Equal(t, "o-1", log.EntityID)
	assert.Equal(t, at, log.CreatedAt)
	assert.Equal(t, "pending", log.Data["from"])
	assert.Equal(t, "cancelled", log.Data["to"])
}

func TestAuditSink_PlacedHasNoFrom(t *testing.T) {
	rec := &auditRecorder{}

	require.NoError(t, NewAuditSink(rec).Handle(context.Background(), Event{Type: OrderPlaced, OrderID: "o-2", To: models.StatusPending}))

	_, ok := rec.logs[0].Data["from"]
	assert.False(t, ok)
}
