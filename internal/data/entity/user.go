package entity

import (
	"time"

	"kalamkart/pkg/policy"
)

type User struct {
	Base                `bson:",inline"`
	Name                string     `bson:"name"`
	Email               string     `bson:"email"`
	PasswordHash        string     `bson:"password"`
	Role                string     `bson:"role"`
	IsGoogleUser        bool       `bson:"isGoogleUser"`
	ProfileImage        string     `bson:"profileImage,omitempty"`
	ProfileImageID      string     `bson:"profileImageId,omitempty"`
	ResetPasswordToken  string     `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpire *time.Time `bson:"resetPasswordExpire,omitempty"`
}

func (u *User) IsAdmin() bool {
	return policy.IsAdmin(u.Role)
}
