package entity

import "time"

// OTP is the single pending login code for an email address.
type OTP struct {
	Base      `bson:",inline"`
	Email     string    `bson:"email"`
	Code      string    `bson:"otp"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (o *OTP) ExpiredAt(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
