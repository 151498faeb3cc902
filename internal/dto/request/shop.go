package request

import "time"

type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type WishlistRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1"`
}

type CreateCouponRequest struct {
	Code               string    `json:"code" validate:"required,max=50"`
	DiscountPercentage float64   `json:"discountPercentage" validate:"required,gt=0,lte=100"`
	ExpiresAt          time.Time `json:"expiresAt" validate:"required"`
	IsActive           *bool     `json:"isActive,omitempty"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}
