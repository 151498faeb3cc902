package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

type Wishlist struct {
	Base     `bson:",inline"`
	UserID   primitive.ObjectID   `bson:"user"`
	Products []primitive.ObjectID `bson:"products"`
}
