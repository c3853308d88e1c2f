// Package order implements the order lifecycle: price-snapshotted creation,
// the forward-only status machine and the permission-checked queries.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/apperr"
	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxTransitionAttempts bounds how often a transition is re-validated after
// losing a compare-and-set race to another writer.
const maxTransitionAttempts = 3

// Catalog resolves ordered food ids to available catalog entries.
type Catalog interface {
	FindAvailableByIDs(ctx context.Context, ids []string) ([]*models.Food, error)
}

// Cache holds recently read orders for clients polling their status. Set
// must keep the cached entry when it is a later version than the one given
// (see models.Order.Supersedes).
type Cache interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}

// Notifier is told about successful writes. Implementations must not block.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.Order)
	StatusChanged(ctx context.Context, order *models.Order, from models.Status)
}

type LineRequest struct {
	FoodID   string `json:"foodId"`
	Quantity int    `json:"quantity"`
}

type CreateRequest struct {
	Items           []LineRequest `json:"items"`
	DeliveryAddress string        `json:"deliveryAddress"`
	PhoneNumber     string        `json:"phoneNumber"`
	RecipientName   string        `json:"recipientName"`
}

type Service struct {
	orders   repository.OrderStore
	catalog  Catalog
	cache    Cache
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(orders repository.OrderStore, catalog Catalog, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		orders:  orders,
		catalog: catalog,
		logger:  logger.Named("order-service"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create places a pending order for the acting user. Every line must resolve
// to an available catalog entry; one bad line rejects the whole order.
func (s *Service) Create(ctx context.Context, actor auth.Identity, req CreateRequest) (*models.Order, error) {
	if actor.UserID == "" {
		return nil, apperr.Permission("an authenticated user is required to place orders")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}
	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" {
		return nil, apperr.Validation("delivery address is required")
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		return nil, apperr.Validation("phone number is required")
	}

	ids := make([]string, len(req.Items))
	unique := make(map[string]struct{}, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.FoodID
		unique[item.FoodID] = struct{}{}
	}

	foods, err := s.catalog.FindAvailableByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to resolve catalog items", zap.Error(err))
		return nil, fmt.Errorf("resolve catalog items: %w", err)
	}
	byID := make(map[string]*models.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}
	// Every requested id must match a returned id exactly. A store may accept
	// an id in a form it does not return (hex case, for one).
	for id := range unique {
		if _, ok := byID[id]; !ok {
			s.logger.Info("Order rejected, unavailable items",
				zap.String("user_id", actor.UserID),
				zap.String("food_id", id),
				zap.Int("requested", len(unique)),
				zap.Int("available", len(foods)))
			return nil, apperr.Validation("some food items are invalid or unavailable")
		}
	}

	lines := make([]models.OrderItem, len(req.Items))
	total := decimal.Zero
	for i, item := range req.Items {
		food := byID[item.FoodID]
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		lines[i] = models.OrderItem{
			FoodID:   food.ID,
			Name:     food.Name,
			Price:    food.Price,
			Quantity: quantity,
		}
		total = total.Add(decimal.NewFromFloat(food.Price).Mul(decimal.NewFromInt(int64(quantity))))
	}

	now := s.now()
	order := &models.Order{
		UserID:          actor.UserID,
		Items:           lines,
		TotalPrice:      total.InexactFloat64(),
		Status:          models.StatusPending,
		DeliveryAddress: address,
		PhoneNumber:     phone,
		RecipientName:   strings.TrimSpace(req.RecipientName),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("item_count", len(order.Items)),
		zap.Float64("total_price", order.TotalPrice))

	s.cacheOrder(ctx, order)
	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, order)
	}
	return order, nil
}

// Transition moves an order to the requested status. Only admins may do so,
// terminal orders are read-only, and the move must be allowed from the
// current status.
func (s *Service) Transition(ctx context.Context, actor auth.Identity, orderID string, requested models.Status) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can update order status")
	}
	if !requested.Valid() {
		return nil, apperr.Validation("invalid status %q", requested)
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		current, err := s.load(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.Status.Terminal() {
			return nil, &apperr.OrderReadOnlyError{Current: current.Status}
		}
		if !current.Status.CanTransitionTo(requested) {
			return nil, &apperr.InvalidTransitionError{
				Current:     current.Status,
				Requested:   requested,
				AllowedNext: current.Status.AllowedNext(),
			}
		}

		updated, err := s.orders.UpdateStatus(ctx, orderID, current.Status, requested, s.now())
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			s.logger.Warn("Concurrent status update, revalidating",
				zap.String("order_id", orderID),
				zap.String("expected_status", current.Status.String()),
				zap.Int("attempt", attempt))
			continue
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("order", orderID)
		case err != nil:
			s.logger.Error("Failed to update order status", zap.String("order_id", orderID), zap.Error(err))
			return nil, fmt.Errorf("update order status: %w", err)
		}

		s.logger.Info("Order status updated",
			zap.String("order_id", orderID),
			zap.String("old_status", current.Status.String()),
			zap.String("new_status", updated.Status.String()),
			zap.String("actor", actor.UserID))

		s.refreshCache(ctx, updated)
		if s.notifier != nil {
			s.notifier.StatusChanged(ctx, updated, current.Status)
		}
		return updated, nil
	}

	return nil, &apperr.ConflictError{Resource: "order", ID: orderID}
}

// GetByID returns an order the actor owns, or any order for admins.
func (s *Service) GetByID(ctx context.Context, actor auth.Identity, orderID string) (*models.Order, error) {
	order, err := s.cachedOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessUser(order.UserID) {
		return nil, apperr.Permission("not allowed to view this order")
	}
	return order, nil
}

// ListByUser returns a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, actor auth.Identity, userID string) ([]*models.Order, error) {
	if !actor.CanAccessUser(userID) {
		return nil, apperr.Permission("not allowed to view these orders")
	}
	orders, err := s.orders.Find(ctx, repository.OrderQuery{UserID: userID})
	if err != nil {
		s.logger.Error("Failed to list user orders", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

// ListAll returns every order, newest first. Admin only.
func (s *Service) ListAll(ctx context.Context, actor auth.Identity) ([]*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can list all orders")
	}
	orders, err := s.orders.Find(ctx, repository.OrderQuery{})
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Service) load(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("order", orderID)
	}
	if err != nil {
		s.logger.Error("Failed to load order", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

func (s *Service) cachedOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if s.cache != nil {
		order, err := s.cache.Get(ctx, orderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("Order cache read failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.cacheOrder(ctx, order)
	return order, nil
}

// refreshCache replaces the cached copy after a status change. If the write
// fails the entry is dropped so readers go back to the store.
func (s *Service) refreshCache(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}
	err := s.cache.Set(ctx, order)
	if err == nil {
		return
	}
	s.logger.Warn("Order cache write failed, evicting", zap.String("order_id", order.ID), zap.Error(err))
	if err := s.cache.Delete(ctx, order.ID); err != nil {
		s.logger.Warn("Order cache eviction failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (s *Service) cacheOrder(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, order); err != nil {
		s.logger.Warn("Order cache write failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}
