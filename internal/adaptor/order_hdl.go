package adaptor

import (
	"fmt"
	"net/http"
	"strings"

	"kalamkart/internal/dto/request"
	"kalamkart/internal/usecase"
	"kalamkart/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// ==================== ORDERS ====================

type OrderHandler struct {
	base
	service usecase.OrderService
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		base:    newBase(log, "order"),
		service: service,
	}
}

// Place handles POST /api/orders/place
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req request.PlaceOrderRequest
	if !decode(w, r, &req) {
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	summary, err := h.service.PlaceOrder(r.Context(), caller.ID, key, &req)
	if err != nil {
		h.handleServiceError(w, err, "place order")
		return
	}

	utils.ResponseCreated(w, "Order placed successfully", summary)
}

// MyOrders handles GET /api/orders/my-orders
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	orders, err := h.service.GetUserOrders(r.Context(), caller.ID)
	if err != nil {
		h.handleServiceError(w, err, "get user orders")
		return
	}

	utils.ResponseSuccess(w, "success", orders)
}

// Invoice handles GET /api/orders/invoice/{orderId}
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "orderId")

	pdf, err := h.service.DownloadInvoice(r.Context(), caller, orderID)
	if err != nil {
		h.handleServiceError(w, err, "download invoice")
		return
	}

	utils.ResponseFile(w, "application/pdf", fmt.Sprintf("invoice-%s.pdf", orderID), pdf)
}

// All handles GET /api/orders/admin/all
func (h *OrderHandler) All(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetAllOrders(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get all orders")
		return
	}

	utils.ResponseSuccess(w, "success", orders)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status and PUT /api/orders/admin/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateOrderStatusRequest
	if !decode(w, r, &req) {
		return
	}

	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		orderID = req.OrderID
	}
	if orderID == "" {
		utils.ResponseBadRequest(w, "Order ID is required", nil)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.handleServiceError(w, err, "update order status")
		return
	}

	utils.ResponseSuccess(w, "Order status updated", order)
}

// MarkPaid handles PUT /api/admin/orders/{id}/pay and PUT /api/orders/admin/mark-paid
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		var req request.MarkPaidRequest
		if !decode(w, r, &req) {
			return
		}
		orderID = req.OrderID
	}

	order, err := h.service.MarkPaid(r.Context(), orderID)
	if err != nil {
		h.handleServiceError(w, err, "mark order paid")
		return
	}

	utils.ResponseSuccess(w, "Order marked as paid", order)
}

// ==================== PAYMENTS ====================

type PaymentHandler struct {
	base
	service usecase.PaymentService
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		base:    newBase(log, "payment"),
		service: service,
	}
}

// ESewaSuccess handles GET /api/payments/esewa/success?oid=
func (h *PaymentHandler) ESewaSuccess(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("oid")
	if orderID == "" {
		utils.ResponseBadRequest(w, "Order ID is required", nil)
		return
	}

	summary, err := h.service.ESewaSuccess(r.Context(), orderID)
	if err != nil {
		h.handleServiceError(w, err, "esewa success")
		return
	}

	utils.ResponseSuccess(w, "Payment successful", summary)
}

// ESewaFailure handles GET /api/payments/esewa/failure
func (h *PaymentHandler) ESewaFailure(w http.ResponseWriter, r *http.Request) {
	h.log.Info("eSewa payment failed or cancelled", zap.String("oid", r.URL.Query().Get("oid")))
	utils.ResponseBadRequest(w, "Payment failed or cancelled", nil)
}

// VerifyKhalti handles POST /api/payments/khalti/verify
func (h *PaymentHandler) VerifyKhalti(w http.ResponseWriter, r *http.Request) {
	var req request.KhaltiVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	summary, err := h.service.VerifyKhalti(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "verify khalti")
		return
	}

	utils.ResponseSuccess(w, "Payment verified", summary)
}

// ==================== ADMIN ====================

type AdminHandler struct {
	base
	service usecase.AdminService
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		base:    newBase(log, "admin"),
		service: service,
	}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}

// Users handles GET /api/admin/users
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "success", users)
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User removed", nil)
}

// UpdateRole handles PUT /api/admin/users/{id}
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateRoleRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.service.UpdateRole(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update user role")
		return
	}

	utils.ResponseSuccess(w, "User updated", user)
}
