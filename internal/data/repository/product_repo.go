package repository

import (
	"context"
	"errors"
	"fmt"

	"kalamkart/internal/data/entity"
	"kalamkart/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ProductFilter narrows product listings. Zero values match everything.
type ProductFilter struct {
	Search     string
	CategoryID *primitive.ObjectID
}

type ProductRepository interface {
	// CRUD Product
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)

	// Embedded reviews
	AddReview(ctx context.Context, productID primitive.ObjectID, review *entity.Review) (bool, error)
	RemoveReview(ctx context.Context, productID, reviewID primitive.ObjectID) (bool, error)
	FindReviewed(ctx context.Context) ([]*entity.Product, error)
}

type productRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewProductRepository(coll *mongo.Collection, log *zap.Logger) ProductRepository {
	return &productRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "product")),
	}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.Reviews == nil {
		product.Reviews = []entity.Review{}
	}

	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		r.log.Error("Failed to create product",
			zap.Error(err),
			zap.String("name", product.Name),
		)
		return wrapWriteErr(err, "failed to create product %s", product.Name)
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	var product entity.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to find product by ID", zap.Error(err), zap.String("product_id", id.Hex()))
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.Product, error) {
	result := make(map[primitive.ObjectID]*entity.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.log.Error("Failed to find products by ids", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	var products []*entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *productRepository) Find(ctx context.Context, filter ProductFilter) ([]*entity.Product, error) {
	query := bson.M{}

	if filter.Search != "" {
		pattern := utils.CaseInsensitivePattern(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	if filter.CategoryID != nil {
		query["category"] = *filter.CategoryID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		r.log.Error("Failed to list products", zap.Error(err), zap.String("search", filter.Search))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*entity.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// Update writes the catalog fields. Reviews and their aggregates are left alone.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	update := bson.M{"$set": bson.M{
		"name":         product.Name,
		"image":        product.Image,
		"description":  product.Description,
		"category":     product.CategoryID,
		"price":        product.Price,
		"countInStock": product.CountInStock,
		"updatedAt":    product.UpdatedAt,
	}}

	result, err := r.coll.UpdateByID(ctx, product.ID, update)
	if err != nil {
		r.log.Error("Failed to update product", zap.Error(err), zap.String("product_id", product.ID.Hex()))
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Error("Failed to delete product", zap.Error(err), zap.String("product_id", id.Hex()))
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"category": categoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count products in category: %w", err)
	}
	return count, nil
}

// ==================== REVIEWS ====================

// AddReview appends the review unless its author already reviewed the product.
// It reports false when the guard rejected the write. Rating and count change in the same update.
func (r *productRepository) AddReview(ctx context.Context, productID primitive.ObjectID, review *entity.Review) (bool, error) {
	filter := bson.M{
		"_id":          productID,
		"reviews.user": bson.M{"$ne": review.UserID},
	}
	reviews := bson.M{"$concatArrays": bson.A{
		bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
		bson.A{bson.M{"$literal": review}},
	}}

	result, err := r.coll.UpdateOne(ctx, filter, withRating(reviews, review.CreatedAt))
	if err != nil {
		r.log.Error("Failed to add review",
			zap.Error(err),
			zap.String("product_id", productID.Hex()),
			zap.String("user_id", review.UserID.Hex()),
		)
		return false, fmt.Errorf("failed to add review: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *productRepository) RemoveReview(ctx context.Context, productID, reviewID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": productID, "reviews._id": reviewID}
	reviews := bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
		"cond":  bson.M{"$ne": bson.A{"$$this._id", reviewID}},
	}}

	result, err := r.coll.UpdateOne(ctx, filter, withRating(reviews, "$$NOW"))
	if err != nil {
		r.log.Error("Failed to remove review",
			zap.Error(err),
			zap.String("product_id", productID.Hex()),
			zap.String("review_id", reviewID.Hex()),
		)
		return false, fmt.Errorf("failed to remove review: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

// withRating replaces the reviews array, then derives numReviews and rating from it.
func withRating(reviews bson.M, updatedAt any) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"reviews": reviews, "updatedAt": updatedAt}}},
		{{Key: "$set", Value: bson.M{
			"numReviews": bson.M{"$size": "$reviews"},
			"rating":     bson.M{"$ifNull": bson.A{bson.M{"$avg": "$reviews.rating"}, 0}},
		}}},
	}
}

// FindReviewed returns every product carrying at least one review.
func (r *productRepository) FindReviewed(ctx context.Context) ([]*entity.Product, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "reviews": 1}).
		SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"reviews.0": bson.M{"$exists": true}}, opts)
	if err != nil {
		r.log.Error("Failed to list reviewed products", zap.Error(err))
		return nil, fmt.Errorf("failed to list reviewed products: %w", err)
	}

	products := make([]*entity.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
