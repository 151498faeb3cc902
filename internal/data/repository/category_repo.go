package repository

import (
	"context"
	"errors"
	"fmt"

	"kalamkart/internal/data/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	FindByName(ctx context.Context, name string) (*entity.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.Category, error)
	FindAll(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type categoryRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewCategoryRepository(coll *mongo.Collection, log *zap.Logger) CategoryRepository {
	return &categoryRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "category")),
	}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if _, err := r.coll.InsertOne(ctx, category); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.log.Error("Failed to create category", zap.Error(err), zap.String("name", category.Name))
		}
		return wrapWriteErr(err, "failed to create category %s", category.Name)
	}
	return nil
}

func (r *categoryRepository) findOne(ctx context.Context, filter bson.M) (*entity.Category, error) {
	var category entity.Category
	if err := r.coll.FindOne(ctx, filter).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to find category", zap.Error(err))
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByName matches case-insensitively, as storefront URLs carry the display name.
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"name": caseInsensitiveExact(name)})
}

func (r *categoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.Category, error) {
	result := make(map[primitive.ObjectID]*entity.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.log.Error("Failed to find categories by ids", zap.Error(err))
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	var categories []*entity.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	for _, c := range categories {
		result[c.ID] = c
	}
	return result, nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		r.log.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]*entity.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	update := bson.M{"$set": bson.M{
		"name":      category.Name,
		"image":     category.Image,
		"updatedAt": category.UpdatedAt,
	}}

	result, err := r.coll.UpdateByID(ctx, category.ID, update)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.log.Error("Failed to update category", zap.Error(err), zap.String("category_id", category.ID.Hex()))
		}
		return wrapWriteErr(err, "failed to update category %s", category.ID.Hex())
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Error("Failed to delete category", zap.Error(err), zap.String("category_id", id.Hex()))
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}
