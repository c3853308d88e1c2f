package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type foodDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Category  string             `bson:"category"`
	Available bool               `bson:"available"`
	Image     string             `bson:"image,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *foodDocument) toModel() *models.Food {
	return &models.Food{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     d.Price,
		Category:  d.Category,
		Available: d.Available,
		Image:     d.Image,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type MongoFoodStore struct {
	collection *mongo.Collection
}

func (s *MongoFoodStore) Create(ctx context.Context, food *models.Food) error {
	now := time.Now()
	doc := foodDocument{
		ID:        primitive.NewObjectID(),
		Name:      food.Name,
		Price:     food.Price,
		Category:  food.Category,
		Available: food.Available,
		Image:     food.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert food: %w", err)
	}
	food.ID = doc.ID.Hex()
	food.CreatedAt = now
	food.UpdatedAt = now
	return nil
}

func (s *MongoFoodStore) FindByID(ctx context.Context, id string) (*models.Food, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc foodDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find food %s: %w", id, err)
	}
	return doc.toModel(), nil
}

func (s *MongoFoodStore) Find(ctx context.Context, q FoodQuery) ([]*models.Food, error) {
	filter := bson.M{}
	if q.AvailableOnly {
		filter["available"] = true
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		filter["category"] = primitive.Regex{Pattern: "^\\s*" + regexp.QuoteMeta(c) + "\\s*$", Options: "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *MongoFoodStore) FindAvailableByIDs(ctx context.Context, ids []string) ([]*models.Food, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return nil, nil
	}

	filter := bson.M{"_id": bson.M{"$in": oids}, "available": true}
	return s.find(ctx, filter)
}

func (s *MongoFoodStore) Update(ctx context.Context, food *models.Food) error {
	oid, err := primitive.ObjectIDFromHex(food.ID)
	if err != nil {
		return ErrNotFound
	}

	food.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":      food.Name,
		"price":     food.Price,
		"category":  food.Category,
		"available": food.Available,
		"image":     food.Image,
		"updatedAt": food.UpdatedAt,
	}}

	var doc foodDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update food %s: %w", food.ID, err)
	}
	food.CreatedAt = doc.CreatedAt
	return nil
}

func (s *MongoFoodStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete food %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoFoodStore) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*models.Food, error) {
	cursor, err := s.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []foodDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode foods: %w", err)
	}

	foods := make([]*models.Food, len(docs))
	for i := range docs {
		foods[i] = docs[i].toModel()
	}
	return foods, nil
}
