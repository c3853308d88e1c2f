package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	User            string             `bson:"user"`
	Items           []models.OrderItem `bson:"items"`
	TotalPrice      float64            `bson:"totalPrice"`
	Status          models.Status      `bson:"status"`
	DeliveryAddress string             `bson:"deliveryAddress"`
	PhoneNumber     string             `bson:"phoneNumber"`
	RecipientName   string             `bson:"recipientName,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (d *orderDocument) toModel() *models.Order {
	return &models.Order{
		ID:              d.ID.Hex(),
		UserID:          d.User,
		Items:           d.Items,
		TotalPrice:      d.TotalPrice,
		Status:          d.Status,
		DeliveryAddress: d.DeliveryAddress,
		PhoneNumber:     d.PhoneNumber,
		RecipientName:   d.RecipientName,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type MongoOrderStore struct {
	collection *mongo.Collection
}

func (s *MongoOrderStore) Create(ctx context.Context, order *models.Order) error {
	doc := orderDocument{
		ID:              primitive.NewObjectID(),
		User:            order.UserID,
		Items:           order.Items,
		TotalPrice:      order.TotalPrice,
		Status:          order.Status,
		DeliveryAddress: order.DeliveryAddress,
		PhoneNumber:     order.PhoneNumber,
		RecipientName:   order.RecipientName,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	order.ID = doc.ID.Hex()
	return nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc orderDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order %s: %w", id, err)
	}
	return doc.toModel(), nil
}

func (s *MongoOrderStore) Find(ctx context.Context, q OrderQuery) ([]*models.Order, error) {
	filter := bson.M{}
	if q.UserID != "" {
		filter["user"] = q.UserID
	}
	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if r := timeRange(q.CreatedFrom, q.CreatedTo); r != nil {
		filter["createdAt"] = r
	}
	if r := timeRange(q.UpdatedFrom, q.UpdatedTo); r != nil {
		filter["updatedAt"] = r
	}

	direction := -1
	if q.Ascending {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: direction}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]*models.Order, len(docs))
	for i := range docs {
		orders[i] = docs[i].toModel()
	}
	return orders, nil
}

// UpdateStatus filters on the expected current status so the read-validate-write
// sequence in the lifecycle engine cannot interleave with another writer.
func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{"_id": oid, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDocument
	err = s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toModel(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update order %s status: %w", id, err)
	}

	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStatusConflict
}

func timeRange(from, to time.Time) bson.M {
	if from.IsZero() && to.IsZero() {
		return nil
	}
	r := bson.M{}
	if !from.IsZero() {
		r["$gte"] = from
	}
	if !to.IsZero() {
		r["$lte"] = to
	}
	return r
}
