package models

import (
	"time"
)

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	TotalPrice      float64     `json:"totalPrice"`
	Status          Status      `json:"status"`
	DeliveryAddress string      `json:"deliveryAddress"`
	PhoneNumber     string      `json:"phoneNumber"`
	RecipientName   string      `json:"recipientName,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is a snapshot of a catalog entry taken when the order was placed.
// Later catalog edits never change it.
type OrderItem struct {
	FoodID   string  `json:"food" bson:"food"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID string) bool {
	return userID != "" && o.UserID == userID
}

// Supersedes reports whether o is at least as recent a version of the order
// as other. Status only ever moves forward, so its stage orders versions even
// when two writes share a timestamp.
func (o *Order) Supersedes(other *Order) bool {
	if other == nil {
		return true
	}
	if a, b := o.Status.Stage(), other.Status.Stage(); a != b {
		return a > b
	}
	return !o.UpdatedAt.Before(other.UpdatedAt)
}

// Clone returns a deep copy so callers can't mutate stored state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}
