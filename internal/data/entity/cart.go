package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

type Cart struct {
	Base   `bson:",inline"`
	UserID primitive.ObjectID `bson:"user"`
	Items  []CartItem         `bson:"items"`
}

type CartItem struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProductID primitive.ObjectID `bson:"product"`
	Quantity  int                `bson:"quantity"`
}

// ProductIDs lists the distinct products referenced by the cart.
func (c *Cart) ProductIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(c.Items))
	ids := make([]primitive.ObjectID, 0, len(c.Items))
	for _, item := range c.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
