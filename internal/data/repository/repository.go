package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"kalamkart/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrDuplicateKey is wrapped into errors caused by a unique index violation.
var ErrDuplicateKey = errors.New("duplicate key")

const (
	usersCollection      = "users"
	categoriesCollection = "categories"
	productsCollection   = "products"
	cartsCollection      = "carts"
	couponsCollection    = "coupons"
	ordersCollection     = "orders"
	orderItemsCollection = "orderitems"
	wishlistsCollection  = "wishlists"
	otpsCollection       = "otps"
)

// TxRunner runs a unit of work, transactionally when the store supports it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

type Repository struct {
	Tx          TxRunner
	User        UserRepository
	Category    CategoryRepository
	Product     ProductRepository
	Cart        CartRepository
	Coupon      CouponRepository
	Order       OrderRepository
	Wishlist    WishlistRepository
	OTP         OTPRepository
	Idempotency IdempotencyRepository
	Outbox      OutboxRepository

	db *database.Mongo
}

// NewRepository wires every repository onto injected handles.
// A nil redis client disables idempotency keys; a nil pgx pool keeps the outbox in memory.
func NewRepository(db *database.Mongo, rdb *redis.Client, pg database.PgxIface, log *zap.Logger) *Repository {
	repo := &Repository{
		Tx:       db,
		User:     NewUserRepository(db.Collection(usersCollection), log),
		Category: NewCategoryRepository(db.Collection(categoriesCollection), log),
		Product:  NewProductRepository(db.Collection(productsCollection), log),
		Cart:     NewCartRepository(db.Collection(cartsCollection), log),
		Coupon:   NewCouponRepository(db.Collection(couponsCollection), log),
		Order:    NewOrderRepository(db.Collection(ordersCollection), db.Collection(orderItemsCollection), log),
		Wishlist: NewWishlistRepository(db.Collection(wishlistsCollection), log),
		OTP:      NewOTPRepository(db.Collection(otpsCollection), log),
		db:       db,
	}

	if rdb != nil {
		repo.Idempotency = NewIdempotencyRepository(rdb, log)
	} else {
		repo.Idempotency = NewNoopIdempotencyRepository()
	}

	if pg != nil {
		repo.Outbox = NewOutboxRepository(pg, log)
	} else {
		repo.Outbox = NewMemoryOutboxRepository()
	}

	return repo
}

// EnsureIndexes declares the unique indexes that back the data invariants.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		cartsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		couponsCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{
				Keys: bson.D{{Key: "user", Value: 1}, {Key: "idempotencyKey", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(
					bson.M{"idempotencyKey": bson.M{"$type": "string"}},
				),
			},
			{Keys: bson.D{{Key: "cartPending", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		orderItemsCollection: {
			{Keys: bson.D{{Key: "order", Value: 1}}},
		},
		wishlistsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		otpsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// wrapWriteErr tags unique index violations so services can answer 409.
func wrapWriteErr(err error, format string, args ...any) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf(format+": %w", append(args, ErrDuplicateKey)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func caseInsensitiveExact(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}
