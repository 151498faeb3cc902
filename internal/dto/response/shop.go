package response

import (
	"time"

	"kalamkart/internal/data/entity"
)

type CartItemResponse struct {
	ID       string          `json:"_id"`
	Product  ProductResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

type CartResponse struct {
	ID    string             `json:"_id,omitempty"`
	User  string             `json:"user"`
	Items []CartItemResponse `json:"items"`
}

type WishlistResponse struct {
	ID       string            `json:"_id,omitempty"`
	User     string            `json:"user"`
	Products []ProductResponse `json:"products"`
}

type CouponResponse struct {
	ID                 string    `json:"_id"`
	Code               string    `json:"code"`
	DiscountPercentage float64   `json:"discountPercentage"`
	ExpiresAt          time.Time `json:"expiresAt"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

type StatsResponse struct {
	TotalOrders   int64   `json:"totalOrders"`
	TotalSales    float64 `json:"totalSales"`
	TotalUsers    int64   `json:"totalUsers"`
	TotalProducts int64   `json:"totalProducts"`
}

// Helper converters
func CouponToResponse(c *entity.Coupon) CouponResponse {
	return CouponResponse{
		ID:                 c.ID.Hex(),
		Code:               c.Code,
		DiscountPercentage: c.Discount,
		ExpiresAt:          c.ExpiresAt,
		IsActive:           c.IsActive,
		CreatedAt:          c.CreatedAt,
	}
}

func CouponsToResponse(coupons []*entity.Coupon) []CouponResponse {
	out := make([]CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, CouponToResponse(c))
	}
	return out
}
