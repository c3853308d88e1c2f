// Package events fans order lifecycle events out to sinks (audit log,
// message broker, metrics) from a single actor so that slow sinks never hold
// up the request that produced the event.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type Type string

const (
	OrderPlaced   Type = "order.placed"
	StatusChanged Type = "order.status_changed"
)

const sinkTimeout = 5 * time.Second

type Event struct {
	Type       Type          `json:"type"`
	OrderID    string        `json:"orderId"`
	UserID     string        `json:"userId"`
	From       models.Status `json:"from,omitempty"`
	To         models.Status `json:"to"`
	TotalPrice float64       `json:"totalPrice"`
	ItemCount  int           `json:"itemCount"`
	At         time.Time     `json:"at"`
}

// Sink consumes events. Errors are logged by the dispatcher and dropped.
type Sink interface {
	Name() string
	Handle(ctx context.Context, e Event) error
}

// Dispatcher implements the order service's notifier on top of an actor
// mailbox. Events are delivered to every sink in the order they were sent.
type Dispatcher struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func NewDispatcher(logger *zap.Logger, sinks ...Sink) (*Dispatcher, error) {
	system := actor.NewActorSystem()
	logger = logger.Named("events")

	props := actor.PropsFromProducer(func() actor.Actor {
		return &dispatchActor{sinks: sinks, logger: logger}
	})
	pid, err := system.Root.SpawnNamed(props, "order-events")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn event dispatcher: %w", err)
	}

	return &Dispatcher{system: system, pid: pid, logger: logger}, nil
}

func (d *Dispatcher) OrderPlaced(_ context.Context, o *models.Order) {
	d.system.Root.Send(d.pid, &Event{
		Type:       OrderPlaced,
		OrderID:    o.ID,
		UserID:     o.UserID,
		To:         o.Status,
		TotalPrice: o.TotalPrice,
		ItemCount:  len(o.Items),
		At:         o.CreatedAt,
	})
}

func (d *Dispatcher) StatusChanged(_ context.Context, o *models.Order, from models.Status) {
	d.system.Root.Send(d.pid, &Event{
		Type:       StatusChanged,
		OrderID:    o.ID,
		UserID:     o.UserID,
		From:       from,
		To:         o.Status,
		TotalPrice: o.TotalPrice,
		ItemCount:  len(o.Items),
		At:         o.UpdatedAt,
	})
}

// Close delivers everything already queued, then stops the actor.
func (d *Dispatcher) Close() error {
	if err := d.system.Root.PoisonFuture(d.pid).Wait(); err != nil {
		return fmt.Errorf("failed to stop event dispatcher: %w", err)
	}
	d.system.Shutdown()
	return nil
}

type dispatchActor struct {
	sinks  []Sink
	logger *zap.Logger
}

func (a *dispatchActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *Event:
		for _, sink := range a.sinks {
			a.deliver(sink, *msg)
		}

	case *actor.Started:
		a.logger.Info("Event dispatcher started", zap.Int("sinks", len(a.sinks)))

	case *actor.Stopped:
		a.logger.Info("Event dispatcher stopped")
	}
}

func (a *dispatchActor) deliver(sink Sink, e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := sink.Handle(ctx, e); err != nil {
		a.logger.Warn("Event sink failed",
			zap.String("sink", sink.Name()),
			zap.String("event", string(e.Type)),
			zap.String("order_id", e.OrderID),
			zap.Error(err))
	}
}
