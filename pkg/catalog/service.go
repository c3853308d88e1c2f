// Package catalog manages the menu. Reads are public; writes are admin-only.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MaverickLook/Big-Bite/pkg/apperr"
	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"go.uber.org/zap"
)

// FoodInput carries the fields of a create or update request. Nil fields are
// left untouched on update.
type FoodInput struct {
	Name      *string
	Price     *float64
	Category  *string
	Available *bool
	Image     *string
}

type Service struct {
	foods  repository.FoodStore
	logger *zap.Logger
}

func NewService(foods repository.FoodStore, logger *zap.Logger) *Service {
	return &Service{
		foods:  foods,
		logger: logger.Named("catalog"),
	}
}

func (s *Service) List(ctx context.Context, q repository.FoodQuery) ([]*models.Food, error) {
	foods, err := s.foods.Find(ctx, q)
	if err != nil {
		s.logger.Error("Failed to list foods", zap.Error(err))
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Food, error) {
	food, err := s.foods.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("food", id)
	}
	if err != nil {
		s.logger.Error("Failed to get food", zap.String("food_id", id), zap.Error(err))
		return nil, fmt.Errorf("get food: %w", err)
	}
	return food, nil
}

// Categories returns the distinct display categories, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	foods, err := s.List(ctx, repository.FoodQuery{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, f := range foods {
		c := f.DisplayCategory()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, in FoodInput) (*models.Food, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can manage the menu")
	}
	if in.Name == nil || in.Price == nil {
		return nil, apperr.Validation("name and price are required")
	}

	food := &models.Food{Available: true}
	if err := apply(food, in); err != nil {
		return nil, err
	}
	if err := s.foods.Create(ctx, food); err != nil {
		s.logger.Error("Failed to create food", zap.Error(err))
		return nil, fmt.Errorf("create food: %w", err)
	}

	s.logger.Info("Food created",
		zap.String("food_id", food.ID),
		zap.String("name", food.Name),
		zap.String("category", food.Category))
	return food, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Identity, id string, in FoodInput) (*models.Food, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can manage the menu")
	}

	food, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(food, in); err != nil {
		return nil, err
	}

	err = s.foods.Update(ctx, food)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("food", id)
	}
	if err != nil {
		s.logger.Error("Failed to update food", zap.String("food_id", id), zap.Error(err))
		return nil, fmt.Errorf("update food: %w", err)
	}

	s.logger.Info("Food updated", zap.String("food_id", id), zap.Bool("available", food.Available))
	return food, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if !actor.IsAdmin() {
		return apperr.Permission("only admins can manage the menu")
	}

	err := s.foods.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("food", id)
	}
	if err != nil {
		s.logger.Error("Failed to delete food", zap.String("food_id", id), zap.Error(err))
		return fmt.Errorf("delete food: %w", err)
	}

	s.logger.Info("Food deleted", zap.String("food_id", id))
	return nil
}

func apply(food *models.Food, in FoodInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("name must not be empty")
		}
		food.Name = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return apperr.Validation("price must not be negative")
		}
		food.Price = *in.Price
	}
	if in.Category != nil {
		food.Category = strings.TrimSpace(*in.Category)
	}
	if in.Available != nil {
		food.Available = *in.Available
	}
	if in.Image != nil {
		food.Image = strings.TrimSpace(*in.Image)
	}
	return nil
}
