package entity

import "time"

type Coupon struct {
	Base      `bson:",inline"`
	Code      string    `bson:"code"`
	Discount  float64   `bson:"discountPercentage"`
	ExpiresAt time.Time `bson:"expiresAt"`
	IsActive  bool      `bson:"isActive"`
}

// ValidAt reports whether the coupon can be redeemed at now.
func (c *Coupon) ValidAt(now time.Time) bool {
	return c.IsActive && !c.ExpiresAt.Before(now)
}
