package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentESewa  PaymentMethod = "eSewa"
	PaymentKhalti PaymentMethod = "Khalti"
)

type Order struct {
	Base            `bson:",inline"`
	UserID          primitive.ObjectID   `bson:"user"`
	OrderItems      []primitive.ObjectID `bson:"orderItems"`
	DeliveryAddress string               `bson:"deliveryAddress"`
	Phone           string               `bson:"phone"`
	TotalAmount     float64              `bson:"totalAmount"`
	Discount        float64              `bson:"discount"`
	CouponCode      string               `bson:"couponCode,omitempty"`
	PaymentMethod   PaymentMethod        `bson:"paymentMethod,omitempty"`
	IsPaid          bool                 `bson:"isPaid"`
	PaidAt          *time.Time           `bson:"paidAt,omitempty"`
	Status          OrderStatus          `bson:"status"`
	IdempotencyKey  string               `bson:"idempotencyKey,omitempty"`
	CartPending     bool                 `bson:"cartPending,omitempty"`
}

// OrderItem snapshots the product as it was when the order was placed.
type OrderItem struct {
	ID        primitive.ObjectID `bson:"_id"`
	OrderID   primitive.ObjectID `bson:"order"`
	ProductID primitive.ObjectID `bson:"product"`
	Name      string             `bson:"name"`
	Quantity  int                `bson:"quantity"`
	Price     float64            `bson:"price"`
	CreatedAt time.Time          `bson:"createdAt"`
}
