package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OpenSQL connects to the relational backend selected by cfg.Storage.Driver
// and migrates the catalog and order tables.
func OpenSQL(cfg *config.Config) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		maxIdle   int
		maxOpen   int
	)
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.MySQL.DSN())
		maxIdle, maxOpen = cfg.MySQL.MaxIdleConns, cfg.MySQL.MaxOpenConns
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.Postgres.DSN())
		maxIdle, maxOpen = cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns
	default:
		return nil, fmt.Errorf("storage driver %q is not a SQL driver", cfg.Storage.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Storage.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)

	// Auto migrate
	if err := db.AutoMigrate(&models.Food{}, &orderRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

type SQLFoodStore struct {
	db *gorm.DB
}

func NewSQLFoodStore(db *gorm.DB) *SQLFoodStore {
	return &SQLFoodStore{db: db}
}

func (s *SQLFoodStore) Create(ctx context.Context, food *models.Food) error {
	if food.ID == "" {
		food.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(food).Error; err != nil {
		return fmt.Errorf("failed to insert food: %w", err)
	}
	return nil
}

func (s *SQLFoodStore) FindByID(ctx context.Context, id string) (*models.Food, error) {
	var food models.Food
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&food).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find food %s: %w", id, err)
	}
	return &food, nil
}

func (s *SQLFoodStore) Find(ctx context.Context, q FoodQuery) ([]*models.Food, error) {
	query := s.db.WithContext(ctx).Model(&models.Food{})
	if q.AvailableOnly {
		query = query.Where("available = ?", true)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		query = query.Where("LOWER(TRIM(category)) = ?", strings.ToLower(c))
	}

	var foods []*models.Food
	if err := query.Order("category, name").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	return foods, nil
}

func (s *SQLFoodStore) FindAvailableByIDs(ctx context.Context, ids []string) ([]*models.Food, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var foods []*models.Food
	err := s.db.WithContext(ctx).
		Where("id IN ? AND available = ?", ids, true).
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query foods by id: %w", err)
	}
	return foods, nil
}

func (s *SQLFoodStore) Update(ctx context.Context, food *models.Food) error {
	existing, err := s.FindByID(ctx, food.ID)
	if err != nil {
		return err
	}
	food.CreatedAt = existing.CreatedAt

	updates := map[string]interface{}{
		"name":       food.Name,
		"price":      food.Price,
		"category":   food.Category,
		"available":  food.Available,
		"image":      food.Image,
		"updated_at": time.Now(),
	}
	if err := s.db.WithContext(ctx).Model(&models.Food{ID: food.ID}).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update food %s: %w", food.ID, err)
	}
	food.UpdatedAt = updates["updated_at"].(time.Time)
	return nil
}

func (s *SQLFoodStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Food{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete food %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// orderRow stores the item snapshot as a JSON document in a text column.
type orderRow struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)"`
	UserID          string    `gorm:"type:varchar(64);not null;index:idx_orders_user_created"`
	Items           string    `gorm:"type:text;not null"`
	TotalPrice      float64   `gorm:"type:decimal(12,2);not null"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_status_updated"`
	DeliveryAddress string    `gorm:"type:varchar(255);not null"`
	PhoneNumber     string    `gorm:"type:varchar(32);not null"`
	RecipientName   string    `gorm:"type:varchar(100)"`
	CreatedAt       time.Time `gorm:"index:idx_orders_user_created;index"`
	UpdatedAt       time.Time `gorm:"index:idx_orders_status_updated"`
}

func (orderRow) TableName() string {
	return "orders"
}

func newOrderRow(o *models.Order) (*orderRow, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize items: %w", err)
	}
	return &orderRow{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           string(items),
		TotalPrice:      o.TotalPrice,
		Status:          string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		PhoneNumber:     o.PhoneNumber,
		RecipientName:   o.RecipientName,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

func (r *orderRow) toModel() (*models.Order, error) {
	var items []models.OrderItem
	if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
		return nil, fmt.Errorf("failed to parse items for order %s: %w", r.ID, err)
	}
	return &models.Order{
		ID:              r.ID,
		UserID:          r.UserID,
		Items:           items,
		TotalPrice:      r.TotalPrice,
		Status:          models.Status(r.Status),
		DeliveryAddress: r.DeliveryAddress,
		PhoneNumber:     r.PhoneNumber,
		RecipientName:   r.RecipientName,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

type SQLOrderStore struct {
	db *gorm.DB
}

func NewSQLOrderStore(db *gorm.DB) *SQLOrderStore {
	return &SQLOrderStore{db: db}
}

func (s *SQLOrderStore) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	row, err := newOrderRow(order)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *SQLOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var row orderRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order %s: %w", id, err)
	}
	return row.toModel()
}

func (s *SQLOrderStore) Find(ctx context.Context, q OrderQuery) ([]*models.Order, error) {
	query := s.db.WithContext(ctx).Model(&orderRow{})
	if q.UserID != "" {
		query = query.Where("user_id = ?", q.UserID)
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, st := range q.Statuses {
			statuses[i] = string(st)
		}
		query = query.Where("status IN ?", statuses)
	}
	if !q.CreatedFrom.IsZero() {
		query = query.Where("created_at >= ?", q.CreatedFrom)
	}
	if !q.CreatedTo.IsZero() {
		query = query.Where("created_at <= ?", q.CreatedTo)
	}
	if !q.UpdatedFrom.IsZero() {
		query = query.Where("updated_at >= ?", q.UpdatedFrom)
	}
	if !q.UpdatedTo.IsZero() {
		query = query.Where("updated_at <= ?", q.UpdatedTo)
	}
	if q.Ascending {
		query = query.Order("created_at ASC")
	} else {
		query = query.Order("created_at DESC")
	}

	var rows []orderRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]*models.Order, 0, len(rows))
	for i := range rows {
		o, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateStatus locks the row, checks it is still in `from` and writes `to`
// in one transaction. The returned order is the locked row with the change
// applied, so it cannot reflect a later writer.
func (s *SQLOrderStore) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) (*models.Order, error) {
	var updated *orderRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row orderRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock order %s: %w", id, err)
		}

		next, err := applyStatus(row, from, to, at)
		if err != nil {
			return err
		}
		err = tx.Model(&orderRow{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":     next.Status,
			"updated_at": next.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update order %s status: %w", id, err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated.toModel()
}

// applyStatus returns row moved to `to`, or ErrStatusConflict when its
// status is no longer `from`.
func applyStatus(row orderRow, from, to models.Status, at time.Time) (*orderRow, error) {
	if models.Status(row.Status) != from {
		return nil, ErrStatusConflict
	}
	row.Status = string(to)
	row.UpdatedAt = at
	return &row, nil
}
