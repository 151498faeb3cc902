package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kalamkart/internal/data/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	FindValid(ctx context.Context, code string, now time.Time) (*entity.Coupon, error)
	FindAll(ctx context.Context) ([]*entity.Coupon, error)
	DeleteByCode(ctx context.Context, code string) (bool, error)
}

type couponRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewCouponRepository(coll *mongo.Collection, log *zap.Logger) CouponRepository {
	return &couponRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "coupon")),
	}
}

func (r *couponRepository) Create(ctx context.Context, coupon *entity.Coupon) error {
	if _, err := r.coll.InsertOne(ctx, coupon); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.log.Error("Failed to create coupon", zap.Error(err), zap.String("code", coupon.Code))
		}
		return wrapWriteErr(err, "failed to create coupon %s", coupon.Code)
	}
	return nil
}

// FindValid returns the coupon with exactly this code if it is active and unexpired at now.
func (r *couponRepository) FindValid(ctx context.Context, code string, now time.Time) (*entity.Coupon, error) {
	filter := bson.M{
		"code":      code,
		"isActive":  true,
		"expiresAt": bson.M{"$gte": now},
	}

	var coupon entity.Coupon
	if err := r.coll.FindOne(ctx, filter).Decode(&coupon); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to find coupon", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	return &coupon, nil
}

func (r *couponRepository) FindAll(ctx context.Context) ([]*entity.Coupon, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		r.log.Error("Failed to list coupons", zap.Error(err))
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	coupons := make([]*entity.Coupon, 0)
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, fmt.Errorf("failed to decode coupons: %w", err)
	}
	return coupons, nil
}

func (r *couponRepository) DeleteByCode(ctx context.Context, code string) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		r.log.Error("Failed to delete coupon", zap.Error(err), zap.String("code", code))
		return false, fmt.Errorf("failed to delete coupon: %w", err)
	}
	return result.DeletedCount > 0, nil
}
