package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	Base         `bson:",inline"`
	Name         string             `bson:"name"`
	Image        string             `bson:"image"`
	Description  string             `bson:"description"`
	CategoryID   primitive.ObjectID `bson:"category"`
	Price        float64            `bson:"price"`
	CountInStock int                `bson:"countInStock"`
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty"`
	Reviews      []Review           `bson:"reviews"`
	NumReviews   int                `bson:"numReviews"`
	Rating       float64            `bson:"rating"`
}

// Review is embedded in its product; one per (product, user).
type Review struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"user"`
	Name      string             `bson:"name"`
	Rating    int                `bson:"rating"` // 1-5
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// HasReviewFrom reports whether userID already reviewed the product.
func (p *Product) HasReviewFrom(userID primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// FindReview returns the embedded review with the given id.
func (p *Product) FindReview(reviewID primitive.ObjectID) (*Review, bool) {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			return &p.Reviews[i], true
		}
	}
	return nil, false
}

// AggregateRating returns the review count and mean rating, 0 when empty.
func AggregateRating(reviews []Review) (int, float64) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return len(reviews), float64(sum) / float64(len(reviews))
}
