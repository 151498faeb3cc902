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

type OTPRepository interface {
	Upsert(ctx context.Context, otp *entity.OTP) error
	FindByEmail(ctx context.Context, email string) (*entity.OTP, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type otpRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewOTPRepository(coll *mongo.Collection, log *zap.Logger) OTPRepository {
	return &otpRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "otp")),
	}
}

// Upsert replaces any pending code for the email.
func (r *otpRepository) Upsert(ctx context.Context, otp *entity.OTP) error {
	update := bson.M{
		"$set": bson.M{
			"otp":       otp.Code,
			"expiresAt": otp.ExpiresAt,
			"updatedAt": otp.UpdatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": otp.CreatedAt},
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"email": otp.Email}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.log.Error("Failed to save OTP", zap.Error(err), zap.String("email", otp.Email))
		return fmt.Errorf("failed to save otp: %w", err)
	}
	return nil
}

func (r *otpRepository) FindByEmail(ctx context.Context, email string) (*entity.OTP, error) {
	var otp entity.OTP
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&otp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to find OTP", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to find otp: %w", err)
	}
	return &otp, nil
}

func (r *otpRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		r.log.Error("Failed to delete OTP", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		r.log.Error("Failed to purge expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("failed to purge expired otps: %w", err)
	}
	return result.DeletedCount, nil
}
