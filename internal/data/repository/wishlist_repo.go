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

type WishlistRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Wishlist, error)
	AddProducts(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, now time.Time) (*entity.Wishlist, error)
	RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID, now time.Time) (*entity.Wishlist, error)
}

type wishlistRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewWishlistRepository(coll *mongo.Collection, log *zap.Logger) WishlistRepository {
	return &wishlistRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "wishlist")),
	}
}

func (r *wishlistRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Wishlist, error) {
	var wishlist entity.Wishlist
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&wishlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to find wishlist", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}
	return &wishlist, nil
}

// AddProducts upserts the wishlist and adds the ids as a set.
func (r *wishlistRepository) AddProducts(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, now time.Time) (*entity.Wishlist, error) {
	update := bson.M{
		"$addToSet":    bson.M{"products": bson.M{"$each": productIDs}},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wishlist entity.Wishlist
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&wishlist); err != nil {
		r.log.Error("Failed to add to wishlist", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, wrapWriteErr(err, "failed to add to wishlist for %s", userID.Hex())
	}
	return &wishlist, nil
}

// RemoveProduct pulls the product; it returns nil when the user has no wishlist.
func (r *wishlistRepository) RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID, now time.Time) (*entity.Wishlist, error) {
	update := bson.M{
		"$pull": bson.M{"products": productID},
		"$set":  bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wishlist entity.Wishlist
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&wishlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to remove from wishlist", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return &wishlist, nil
}
