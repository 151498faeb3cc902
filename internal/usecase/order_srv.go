package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/invoice"
	"kalamkart/pkg/mailer"
	"kalamkart/pkg/metrics"
	"kalamkart/pkg/policy"
	"kalamkart/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxIdempotencyKeyLength = 128

type OrderService interface {
	// Customer
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, idempotencyKey string, req *request.PlaceOrderRequest) (*response.OrderSummaryResponse, error)
	GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]response.OrderResponse, error)
	DownloadInvoice(ctx context.Context, actor Actor, orderID string) ([]byte, error)

	// Admin
	GetAllOrders(ctx context.Context) ([]response.OrderResponse, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*response.OrderResponse, error)
	MarkPaid(ctx context.Context, orderID string) (*response.OrderResponse, error)

	// Gateways
	SettlePayment(ctx context.Context, orderID string, method entity.PaymentMethod, paidPaisa *int64) (*entity.Order, error)

	// Scheduled
	Reconcile(ctx context.Context) (*RepairReport, error)
}

// RepairReport counts what one reconcile pass fixed.
type RepairReport struct {
	CartsCleared  int
	MarkersClosed int
	OrphanItems   int64
}

type orderService struct {
	repo     *repository.Repository
	invoices *invoice.Renderer
	notify   *notifier
	idemTTL  time.Duration
	grace    time.Duration
	now      clock
	log      *zap.Logger
}

func NewOrderService(repo *repository.Repository, config *utils.Config, invoices *invoice.Renderer, notify *notifier, log *zap.Logger) OrderService {
	idemTTL := config.Redis.IdempotencyTTL
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	grace := config.Repair.Grace
	if grace <= 0 {
		grace = 2 * time.Minute
	}

	return &orderService{
		repo:     repo,
		invoices: invoices,
		notify:   notify,
		idemTTL:  idemTTL,
		grace:    grace,
		now:      time.Now,
		log:      log.With(zap.String("service", "order")),
	}
}

// ==================== PLACEMENT ====================

func (s *orderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, idempotencyKey string, req *request.PlaceOrderRequest) (*response.OrderSummaryResponse, error) {
	// 1. Idempotency key
	var redisKey string
	placed := false

	if idempotencyKey != "" {
		if len(idempotencyKey) > maxIdempotencyKeyLength {
			return nil, utils.ErrValidation("Idempotency-Key is too long")
		}

		existing, err := s.repo.Order.FindByIdempotencyKey(ctx, userID, idempotencyKey)
		if err != nil {
			return nil, utils.ErrInternal("Failed to place order", err)
		}
		if existing != nil {
			s.log.Info("Replayed order placement", zap.String("order_id", existing.ID.Hex()))
			summary := response.OrderToSummary(existing)
			return &summary, nil
		}

		redisKey = fmt.Sprintf("idem:order:%s:%s", userID.Hex(), idempotencyKey)
		value, reserved, err := s.repo.Idempotency.Reserve(ctx, redisKey, s.idemTTL)
		switch {
		case err != nil:
			// the unique index on (user, idempotencyKey) still rejects a duplicate
			s.log.Warn("Idempotency store unavailable", zap.Error(err))
			redisKey = ""
		case !reserved:
			return s.replay(ctx, value)
		default:
			defer func() {
				if !placed {
					s.repo.Idempotency.Release(context.WithoutCancel(ctx), redisKey)
				}
			}()
		}
	}

	// 2. Cart snapshot
	cart, err := s.repo.Cart.FindByUser(ctx, userID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to place order", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, utils.ErrValidation("Your cart is empty")
	}

	products, err := s.repo.Product.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, utils.ErrInternal("Failed to place order", err)
	}

	now := s.now()
	order := &entity.Order{
		Base:            entity.NewBase(now),
		UserID:          userID,
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		PaymentMethod:   entity.PaymentCOD,
		Status:          entity.OrderStatusProcessing,
		IdempotencyKey:  idempotencyKey,
		CartPending:     !s.repo.Tx.Transactional(),
	}
	if req.PaymentMethod != "" {
		order.PaymentMethod = entity.PaymentMethod(req.PaymentMethod)
	}
	order.IsPaid = order.PaymentMethod != entity.PaymentCOD
	if order.IsPaid {
		order.PaidAt = &now
	}

	items := make([]*entity.OrderItem, 0, len(cart.Items))
	amounts := make([]float64, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}

		item := &entity.OrderItem{
			ID:        primitive.NewObjectID(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
			CreatedAt: now,
		}
		items = append(items, item)
		amounts = append(amounts, utils.LineTotal(product.Price, line.Quantity))
		order.OrderItems = append(order.OrderItems, item.ID)
	}

	if len(items) == 0 {
		return nil, utils.ErrValidation("Your cart is empty")
	}

	// 3. Totals
	order.TotalAmount = utils.SumAmounts(amounts...)

	// 4. Coupon
	if req.CouponCode != "" {
		coupon, err := s.repo.Coupon.FindValid(ctx, req.CouponCode, now)
		if err != nil {
			return nil, utils.ErrInternal("Failed to place order", err)
		}
		if coupon == nil {
			return nil, utils.ErrValidation("Invalid or expired coupon code")
		}

		order.Discount, order.TotalAmount = utils.ApplyPercentDiscount(order.TotalAmount, coupon.Discount)
		order.CouponCode = coupon.Code
	}

	// 5. Unit of work
	transactional := s.repo.Tx.Transactional()
	cartCleared := false

	err = s.repo.Tx.WithTransaction(ctx, func(tctx context.Context) error {
		if err := s.repo.Order.CreateItems(tctx, items); err != nil {
			return err
		}
		if err := s.repo.Order.Create(tctx, order); err != nil {
			return err
		}
		if _, err := s.repo.Cart.DeleteByUser(tctx, userID); err != nil {
			if transactional {
				return err
			}
			s.log.Warn("Cart left for repair pass", zap.Error(err), zap.String("order_id", order.ID.Hex()))
			return nil
		}
		cartCleared = true
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, utils.ErrConflict("An order with this idempotency key already exists")
		}
		s.log.Error("Failed to persist order", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, utils.ErrInternal("Failed to place order", err)
	}

	if !transactional && cartCleared {
		if err := s.repo.Order.ClearCartPending(ctx, order.ID); err != nil {
			s.log.Warn("Cart pending marker left for repair pass", zap.Error(err), zap.String("order_id", order.ID.Hex()))
		}
	}
	placed = true

	// 6. Record the key
	if redisKey != "" {
		if err := s.repo.Idempotency.Complete(ctx, redisKey, order.ID.Hex(), s.idemTTL); err != nil {
			s.log.Warn("Failed to record idempotency key", zap.Error(err), zap.String("order_id", order.ID.Hex()))
		}
	}

	metrics.OrdersPlaced.Inc()
	s.log.Info("Order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Int("items", len(items)),
		zap.Float64("total_amount", order.TotalAmount),
		zap.Float64("discount", order.Discount),
	)

	// 7. Invoice and notification
	pdf, user, err := s.renderInvoice(ctx, order, items)
	if err != nil {
		return nil, utils.ErrInternal("Failed to generate invoice", err)
	}

	if user != nil {
		if _, err := s.notify.enqueue(ctx, entity.EmailOrderInvoice, mailer.OrderInvoice(user.Email, user.Name, pdf)); err != nil {
			s.log.Error("Failed to enqueue invoice email", zap.Error(err), zap.String("order_id", order.ID.Hex()))
		}
	}

	summary := response.OrderToSummary(order)
	return &summary, nil
}

// replay answers a retried placement from the idempotency store.
func (s *orderService) replay(ctx context.Context, value string) (*response.OrderSummaryResponse, error) {
	if value == repository.IdempotencyPending {
		return nil, utils.ErrConflict("An order with this idempotency key is still being processed")
	}

	orderID, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return nil, utils.ErrConflict("An order with this idempotency key is still being processed")
	}

	order, err := s.repo.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to place order", err)
	}
	if order == nil {
		return nil, utils.ErrConflict("An order with this idempotency key is still being processed")
	}

	summary := response.OrderToSummary(order)
	return &summary, nil
}

// ==================== INVOICES ====================

// renderInvoice builds the invoice document for order. items may be nil, in which case they are loaded.
func (s *orderService) renderInvoice(ctx context.Context, order *entity.Order, items []*entity.OrderItem) ([]byte, *entity.User, error) {
	if items == nil {
		byID, err := s.repo.Order.FindItems(ctx, order.OrderItems)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range order.OrderItems {
			if item, ok := byID[id]; ok {
				items = append(items, item)
			}
		}
	}

	user, err := s.repo.User.FindByID(ctx, order.UserID)
	if err != nil {
		return nil, nil, err
	}

	doc := invoice.Document{
		OrderID:         order.ID.Hex(),
		Date:            order.CreatedAt,
		Phone:           order.Phone,
		DeliveryAddress: order.DeliveryAddress,
		TotalAmount:     order.TotalAmount,
		Discount:        order.Discount,
		CouponCode:      order.CouponCode,
		Items:           make([]invoice.Line, 0, len(items)),
	}
	if user != nil {
		doc.CustomerName = user.Name
	}
	for _, item := range items {
		doc.Items = append(doc.Items, invoice.Line{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}

	pdf, err := s.invoices.Render(doc)
	if err != nil {
		s.log.Error("Failed to render invoice", zap.Error(err), zap.String("order_id", order.ID.Hex()))
		return nil, nil, err
	}
	return pdf, user, nil
}

func (s *orderService) DownloadInvoice(ctx context.Context, actor Actor, orderID string) ([]byte, error) {
	id, err := utils.ParseObjectID(orderID, "order")
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrInternal("Failed to download invoice", err)
	}
	if order == nil {
		return nil, utils.ErrNotFound("Order not found")
	}

	if !policy.CanActOnOwned(actor.ID.Hex(), order.UserID.Hex(), actor.Role, policy.ManageOrders) {
		s.log.Warn("Invoice download denied",
			zap.String("order_id", orderID),
			zap.String("user_id", actor.ID.Hex()),
		)
		return nil, utils.ErrForbidden("Not authorized to access this invoice")
	}

	pdf, _, err := s.renderInvoice(ctx, order, nil)
	if err != nil {
		return nil, utils.ErrInternal("Failed to download invoice", err)
	}
	return pdf, nil
}

// ==================== LISTINGS ====================

func (s *orderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]response.OrderResponse, error) {
	orders, err := s.repo.Order.FindByUser(ctx, userID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch orders", err)
	}
	return s.populate(ctx, orders, false)
}

func (s *orderService) GetAllOrders(ctx context.Context) ([]response.OrderResponse, error) {
	orders, err := s.repo.Order.FindAll(ctx)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch orders", err)
	}
	return s.populate(ctx, orders, true)
}

func (s *orderService) populate(ctx context.Context, orders []*entity.Order, withUsers bool) ([]response.OrderResponse, error) {
	itemIDs := make([]primitive.ObjectID, 0)
	for _, o := range orders {
		itemIDs = append(itemIDs, o.OrderItems...)
	}

	items, err := s.repo.Order.FindItems(ctx, itemIDs)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch orders", err)
	}

	users := make(map[primitive.ObjectID]*entity.User)
	result := make([]response.OrderResponse, 0, len(orders))
	for _, o := range orders {
		var user *entity.User
		if withUsers {
			cached, seen := users[o.UserID]
			if !seen {
				cached, err = s.repo.User.FindByID(ctx, o.UserID)
				if err != nil {
					return nil, utils.ErrInternal("Failed to fetch orders", err)
				}
				users[o.UserID] = cached
			}
			user = cached
		}
		result = append(result, response.OrderToResponse(o, items, user))
	}
	return result, nil
}

// ==================== LIFECYCLE ====================

func (s *orderService) UpdateStatus(ctx context.Context, orderID, status string) (*response.OrderResponse, error) {
	id, err := utils.ParseObjectID(orderID, "order")
	if err != nil {
		return nil, err
	}

	newStatus := entity.OrderStatus(status)
	if !newStatus.Valid() {
		return nil, utils.ErrValidation("Invalid status value")
	}

	found, err := s.repo.Order.UpdateStatus(ctx, id, newStatus, s.now())
	if err != nil {
		return nil, utils.ErrInternal("Failed to update order status", err)
	}
	if !found {
		return nil, utils.ErrNotFound("Order not found")
	}

	s.log.Info("Order status updated", zap.String("order_id", orderID), zap.String("status", status))
	return s.single(ctx, id)
}

func (s *orderService) MarkPaid(ctx context.Context, orderID string) (*response.OrderResponse, error) {
	id, err := utils.ParseObjectID(orderID, "order")
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrInternal("Failed to mark order paid", err)
	}
	if order == nil {
		return nil, utils.ErrNotFound("Order not found")
	}
	if order.IsPaid {
		return nil, utils.ErrValidation("Order is already marked as paid.")
	}

	method := order.PaymentMethod
	if method == "" {
		method = entity.PaymentCOD
	}

	updated, err := s.repo.Order.MarkPaid(ctx, id, method, s.now())
	if err != nil {
		return nil, utils.ErrInternal("Failed to mark order paid", err)
	}
	if updated == nil {
		return nil, utils.ErrValidation("Order is already marked as paid.")
	}

	s.log.Info("Order marked paid", zap.String("order_id", orderID), zap.String("method", string(method)))
	s.sendPaymentConfirmation(ctx, updated)

	return s.single(ctx, id)
}

// SettlePayment records a gateway payment. Paying an already paid order is a no-op.
// A non-nil paidPaisa must equal the order total; eSewa callbacks carry no amount.
func (s *orderService) SettlePayment(ctx context.Context, orderID string, method entity.PaymentMethod, paidPaisa *int64) (*entity.Order, error) {
	id, err := utils.ParseObjectID(orderID, "order")
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrInternal("Error while updating order", err)
	}
	if order == nil {
		return nil, utils.ErrNotFound("Order not found")
	}
	if paidPaisa != nil && *paidPaisa != utils.ToPaisa(order.TotalAmount) {
		s.log.Warn("Payment amount mismatch",
			zap.String("order_id", orderID),
			zap.String("method", string(method)),
			zap.Int64("paid_paisa", *paidPaisa),
			zap.Int64("due_paisa", utils.ToPaisa(order.TotalAmount)),
		)
		return nil, utils.ErrValidation("Payment amount does not match order total")
	}
	if order.IsPaid {
		return order, nil
	}

	updated, err := s.repo.Order.MarkPaid(ctx, id, method, s.now())
	if err != nil {
		return nil, utils.ErrInternal("Error while updating order", err)
	}
	if updated == nil {
		// paid concurrently
		return order, nil
	}

	s.log.Info("Gateway payment settled", zap.String("order_id", orderID), zap.String("method", string(method)))
	s.sendPaymentConfirmation(ctx, updated)
	return updated, nil
}

// sendPaymentConfirmation never fails the caller; the payment is already recorded.
func (s *orderService) sendPaymentConfirmation(ctx context.Context, order *entity.Order) {
	pdf, user, err := s.renderInvoice(ctx, order, nil)
	if err != nil || user == nil {
		s.log.Error("Skipped payment confirmation email", zap.Error(err), zap.String("order_id", order.ID.Hex()))
		return
	}

	if _, err := s.notify.enqueue(ctx, entity.EmailOrderPaid, mailer.PaymentConfirmed(user.Email, user.Name, pdf)); err != nil {
		s.log.Error("Failed to enqueue payment confirmation", zap.Error(err), zap.String("order_id", order.ID.Hex()))
	}
}

func (s *orderService) single(ctx context.Context, id primitive.ObjectID) (*response.OrderResponse, error) {
	order, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch order", err)
	}
	if order == nil {
		return nil, utils.ErrNotFound("Order not found")
	}

	orders, err := s.populate(ctx, []*entity.Order{order}, true)
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ==================== REPAIR ====================

// Reconcile finishes placements that stopped between writing the order and clearing the cart,
// and removes line items whose order was never written.
func (s *orderService) Reconcile(ctx context.Context) (*RepairReport, error) {
	cutoff := s.now().Add(-s.grace)
	report := &RepairReport{}

	pending, err := s.repo.Order.FindCartPending(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for _, order := range pending {
		cleared, err := s.repo.Cart.DeleteIfUnchangedSince(ctx, order.UserID, order.CreatedAt)
		if err != nil {
			s.log.Error("Repair: failed to clear cart", zap.Error(err), zap.String("order_id", order.ID.Hex()))
			continue
		}
		if cleared {
			report.CartsCleared++
			metrics.RepairActions.WithLabelValues("cart_cleared").Inc()
		}

		if err := s.repo.Order.ClearCartPending(ctx, order.ID); err != nil {
			s.log.Error("Repair: failed to clear marker", zap.Error(err), zap.String("order_id", order.ID.Hex()))
			continue
		}
		report.MarkersClosed++
		metrics.RepairActions.WithLabelValues("marker_cleared").Inc()
	}

	orphans, err := s.repo.Order.DeleteOrphanItems(ctx, cutoff)
	if err != nil {
		return report, err
	}
	report.OrphanItems = orphans
	if orphans > 0 {
		metrics.RepairActions.WithLabelValues("orphan_items").Add(float64(orphans))
	}

	if report.CartsCleared > 0 || report.MarkersClosed > 0 || orphans > 0 {
		s.log.Info("Repair pass finished",
			zap.Int("carts_cleared", report.CartsCleared),
			zap.Int("markers_closed", report.MarkersClosed),
			zap.Int64("orphan_items", orphans),
		)
	}
	return report, nil
}
