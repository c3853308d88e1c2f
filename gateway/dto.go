package gateway

import (
	"github.com/MaverickLook/Big-Bite/pkg/catalog"
	"github.com/MaverickLook/Big-Bite/pkg/order"
)

type orderLineRequest struct {
	FoodID   string `json:"foodId" validate:"required"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	Items           []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required,max=255"`
	PhoneNumber     string             `json:"phoneNumber" validate:"required,max=32"`
	RecipientName   string             `json:"recipientName" validate:"omitempty,max=100"`
}

func (r createOrderRequest) toService() order.CreateRequest {
	items := make([]order.LineRequest, len(r.Items))
	for i, it := range r.Items {
		items[i] = order.LineRequest{FoodID: it.FoodID, Quantity: it.Quantity}
	}
	return order.CreateRequest{
		Items:           items,
		DeliveryAddress: r.DeliveryAddress,
		PhoneNumber:     r.PhoneNumber,
		RecipientName:   r.RecipientName,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type foodRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=100"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
	Category  *string  `json:"category" validate:"omitempty,max=50"`
	Available *bool    `json:"available"`
	Image     *string  `json:"image"`
}

func (r foodRequest) toService() catalog.FoodInput {
	return catalog.FoodInput{
		Name:      r.Name,
		Price:     r.Price,
		Category:  r.Category,
		Available: r.Available,
		Image:     r.Image,
	}
}
