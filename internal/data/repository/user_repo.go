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

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewUserRepository(coll *mongo.Collection, log *zap.Logger) UserRepository {
	return &userRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "user")),
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.log.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		}
		return wrapWriteErr(err, "failed to create user %s", user.Email)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var user entity.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	user, err := r.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Error("Failed to find user by ID", zap.Error(err), zap.String("user_id", id.Hex()))
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		r.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*entity.User, error) {
	user, err := r.findOne(ctx, bson.M{
		"resetPasswordToken":  hashedToken,
		"resetPasswordExpire": bson.M{"$gt": now},
	})
	if err != nil {
		r.log.Error("Failed to find user by reset token", zap.Error(err))
		return nil, fmt.Errorf("failed to find user by reset token: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"password": 0, "resetPasswordToken": 0, "resetPasswordExpire": 0})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*entity.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Update rewrites the mutable fields; empty reset fields are unset.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	set := bson.M{
		"name":         user.Name,
		"email":        user.Email,
		"password":     user.PasswordHash,
		"role":         user.Role,
		"isGoogleUser": user.IsGoogleUser,
		"updatedAt":    user.UpdatedAt,
	}
	unset := bson.M{}

	if user.ProfileImage != "" {
		set["profileImage"] = user.ProfileImage
		set["profileImageId"] = user.ProfileImageID
	} else {
		unset["profileImage"] = ""
		unset["profileImageId"] = ""
	}

	if user.ResetPasswordToken != "" && user.ResetPasswordExpire != nil {
		set["resetPasswordToken"] = user.ResetPasswordToken
		set["resetPasswordExpire"] = user.ResetPasswordExpire
	} else {
		unset["resetPasswordToken"] = ""
		unset["resetPasswordExpire"] = ""
	}

	result, err := r.coll.UpdateByID(ctx, user.ID, bson.M{"$set": set, "$unset": unset})
	if err != nil {
		r.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		return wrapWriteErr(err, "failed to update user %s", user.ID.Hex())
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", id.Hex()))
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
