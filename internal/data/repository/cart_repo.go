package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kalamkart/internal/data/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (bool, error)
	DeleteIfUnchangedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (bool, error)
}

type cartRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewCartRepository(coll *mongo.Collection, log *zap.Logger) CartRepository {
	return &cartRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "cart")),
	}
}

func (r *cartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Cart, error) {
	var cart entity.Cart
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to find cart", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

// Save replaces the user's cart, creating it on first write.
func (r *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	if cart.Items == nil {
		cart.Items = []entity.CartItem{}
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"user": cart.UserID}, cart, opts); err != nil {
		r.log.Error("Failed to save cart", zap.Error(err), zap.String("user_id", cart.UserID.Hex()))
		return wrapWriteErr(err, "failed to save cart for %s", cart.UserID.Hex())
	}
	return nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"user": userID})
	if err != nil {
		r.log.Error("Failed to delete cart", zap.Error(err), zap.String("user_id", userID.Hex()))
		return false, fmt.Errorf("failed to delete cart: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteIfUnchangedSince removes the cart only when nobody touched it after since.
func (r *cartRepository) DeleteIfUnchangedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (bool, error) {
	filter := bson.M{
		"user":      userID,
		"updatedAt": bson.M{"$lte": since},
	}

	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		r.log.Error("Failed to delete stale cart", zap.Error(err), zap.String("user_id", userID.Hex()))
		return false, fmt.Errorf("failed to delete stale cart: %w", err)
	}
	return result.DeletedCount > 0, nil
}
