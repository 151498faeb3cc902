package response

import (
	"time"

	"kalamkart/internal/data/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderSummaryResponse is the placement receipt
type OrderSummaryResponse struct {
	OrderID     string    `json:"orderId"`
	TotalAmount float64   `json:"totalAmount"`
	Discount    float64   `json:"discount"`
	CouponCode  string    `json:"couponCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type OrderUserResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type OrderItemResponse struct {
	ID       string  `json:"_id"`
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderResponse struct {
	ID              string              `json:"_id"`
	User            OrderUserResponse   `json:"user"`
	OrderItems      []OrderItemResponse `json:"orderItems"`
	DeliveryAddress string              `json:"deliveryAddress"`
	Phone           string              `json:"phone"`
	TotalAmount     float64             `json:"totalAmount"`
	Discount        float64             `json:"discount"`
	CouponCode      string              `json:"couponCode,omitempty"`
	PaymentMethod   string              `json:"paymentMethod,omitempty"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// Helper converters
func OrderToSummary(o *entity.Order) OrderSummaryResponse {
	return OrderSummaryResponse{
		OrderID:     o.ID.Hex(),
		TotalAmount: o.TotalAmount,
		Discount:    o.Discount,
		CouponCode:  o.CouponCode,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// OrderToResponse renders o with its items in placement order. user may be nil.
func OrderToResponse(o *entity.Order, items map[primitive.ObjectID]*entity.OrderItem, user *entity.User) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID.Hex(),
		User:            OrderUserResponse{ID: o.UserID.Hex()},
		OrderItems:      make([]OrderItemResponse, 0, len(o.OrderItems)),
		DeliveryAddress: o.DeliveryAddress,
		Phone:           o.Phone,
		TotalAmount:     o.TotalAmount,
		Discount:        o.Discount,
		CouponCode:      o.CouponCode,
		PaymentMethod:   string(o.PaymentMethod),
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}

	if user != nil {
		resp.User.Name = user.Name
		resp.User.Email = user.Email
	}

	for _, id := range o.OrderItems {
		item, ok := items[id]
		if !ok {
			continue
		}
		resp.OrderItems = append(resp.OrderItems, OrderItemResponse{
			ID:       item.ID.Hex(),
			Product:  item.ProductID.Hex(),
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return resp
}
