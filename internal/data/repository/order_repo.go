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

type OrderRepository interface {
	// Placement
	CreateItems(ctx context.Context, items []*entity.OrderItem) error
	Create(ctx context.Context, order *entity.Order) error
	ClearCartPending(ctx context.Context, orderID primitive.ObjectID) error

	// Reads
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID primitive.ObjectID, key string) (*entity.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*entity.Order, error)
	FindAll(ctx context.Context) ([]*entity.Order, error)
	FindItems(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.OrderItem, error)

	// Lifecycle
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.OrderStatus, now time.Time) (bool, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, method entity.PaymentMethod, now time.Time) (*entity.Order, error)

	// Aggregates
	Count(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (float64, error)

	// Repair
	FindCartPending(ctx context.Context, olderThan time.Time) ([]*entity.Order, error)
	DeleteOrphanItems(ctx context.Context, olderThan time.Time) (int64, error)
}

type orderRepository struct {
	orders *mongo.Collection
	items  *mongo.Collection
	log    *zap.Logger
}

func NewOrderRepository(orders, items *mongo.Collection, log *zap.Logger) OrderRepository {
	return &orderRepository{
		orders: orders,
		items:  items,
		log:    log.With(zap.String("repository", "order")),
	}
}

// ==================== PLACEMENT ====================

func (r *orderRepository) CreateItems(ctx context.Context, items []*entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	docs := make([]interface{}, len(items))
	for i, item := range items {
		docs[i] = item
	}

	if _, err := r.items.InsertMany(ctx, docs); err != nil {
		r.log.Error("Failed to create order items",
			zap.Error(err),
			zap.String("order_id", items[0].OrderID.Hex()),
			zap.Int("count", len(items)),
		)
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.log.Error("Failed to create order",
				zap.Error(err),
				zap.String("order_id", order.ID.Hex()),
				zap.String("user_id", order.UserID.Hex()),
			)
		}
		return wrapWriteErr(err, "failed to create order %s", order.ID.Hex())
	}
	return nil
}

func (r *orderRepository) ClearCartPending(ctx context.Context, orderID primitive.ObjectID) error {
	if _, err := r.orders.UpdateByID(ctx, orderID, bson.M{"$unset": bson.M{"cartPending": ""}}); err != nil {
		r.log.Error("Failed to clear cart pending marker", zap.Error(err), zap.String("order_id", orderID.Hex()))
		return fmt.Errorf("failed to clear cart pending: %w", err)
	}
	return nil
}

// ==================== READS ====================

func (r *orderRepository) findOne(ctx context.Context, filter bson.M) (*entity.Order, error) {
	var order entity.Order
	if err := r.orders.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	order, err := r.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Error("Failed to find order by ID", zap.Error(err), zap.String("order_id", id.Hex()))
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, userID primitive.ObjectID, key string) (*entity.Order, error) {
	order, err := r.findOne(ctx, bson.M{"user": userID, "idempotencyKey": key})
	if err != nil {
		r.log.Error("Failed to find order by idempotency key", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, fmt.Errorf("failed to find order by idempotency key: %w", err)
	}
	return order, nil
}

func (r *orderRepository) find(ctx context.Context, filter bson.M) ([]*entity.Order, error) {
	cursor, err := r.orders.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	orders := make([]*entity.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*entity.Order, error) {
	orders, err := r.find(ctx, bson.M{"user": userID})
	if err != nil {
		r.log.Error("Failed to list user orders", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*entity.Order, error) {
	orders, err := r.find(ctx, bson.M{})
	if err != nil {
		r.log.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) FindItems(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.OrderItem, error) {
	result := make(map[primitive.ObjectID]*entity.OrderItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.items.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.log.Error("Failed to find order items", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}

	var items []*entity.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}

	for _, item := range items {
		result[item.ID] = item
	}
	return result, nil
}

// ==================== LIFECYCLE ====================

func (r *orderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.OrderStatus, now time.Time) (bool, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}

	result, err := r.orders.UpdateByID(ctx, id, update)
	if err != nil {
		r.log.Error("Failed to update order status",
			zap.Error(err),
			zap.String("order_id", id.Hex()),
			zap.String("status", string(status)),
		)
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// MarkPaid flips isPaid only on an unpaid order and returns the updated document.
// A nil order means the order is missing or was already paid.
func (r *orderRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, method entity.PaymentMethod, now time.Time) (*entity.Order, error) {
	filter := bson.M{"_id": id, "isPaid": false}
	update := bson.M{"$set": bson.M{
		"isPaid":        true,
		"paidAt":        now,
		"paymentMethod": method,
		"updatedAt":     now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order entity.Order
	if err := r.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("Failed to mark order paid", zap.Error(err), zap.String("order_id", id.Hex()))
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return &order, nil
}

// ==================== AGGREGATES ====================

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *orderRepository) TotalSales(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPaid": true}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	}

	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Error("Failed to aggregate sales", zap.Error(err))
		return 0, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode sales: %w", err)
	}

	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// ==================== REPAIR ====================

func (r *orderRepository) FindCartPending(ctx context.Context, olderThan time.Time) ([]*entity.Order, error) {
	orders, err := r.find(ctx, bson.M{"cartPending": true, "createdAt": bson.M{"$lt": olderThan}})
	if err != nil {
		r.log.Error("Failed to list cart pending orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list cart pending orders: %w", err)
	}
	return orders, nil
}

// DeleteOrphanItems removes line items left behind by a placement that never wrote its order.
func (r *orderRepository) DeleteOrphanItems(ctx context.Context, olderThan time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$lt": olderThan}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         r.orders.Name(),
			"localField":   "order",
			"foreignField": "_id",
			"as":           "parent",
		}}},
		{{Key: "$match", Value: bson.M{"parent": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.items.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Error("Failed to find orphan order items", zap.Error(err))
		return 0, fmt.Errorf("failed to find orphan order items: %w", err)
	}

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode orphan order items: %w", err)
	}

	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	result, err := r.items.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.log.Error("Failed to delete orphan order items", zap.Error(err), zap.Int("count", len(ids)))
		return 0, fmt.Errorf("failed to delete orphan order items: %w", err)
	}
	return result.DeletedCount, nil
}
