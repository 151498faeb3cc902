package wire

import (
	"kalamkart/internal/adaptor"
	"kalamkart/pkg/policy"

	"github.com/go-chi/chi/v5"
)

func wireOrder(r chi.Router, orderHandler *adaptor.OrderHandler, paymentHandler *adaptor.PaymentHandler, rt routes) {
	// ==================== PAYMENT CALLBACKS (public) ====================
	r.Get("/api/payments/esewa/success", paymentHandler.ESewaSuccess)
	r.Get("/api/payments/esewa/failure", paymentHandler.ESewaFailure)
	r.Post("/api/payments/khalti/verify", paymentHandler.VerifyKhalti)

	// ==================== CUSTOMER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Use(rt.require(policy.Shop))

		r.Post("/api/orders/place", orderHandler.Place)
		r.Get("/api/orders/my-orders", orderHandler.MyOrders)
		// ownership is checked by the service
		r.Get("/api/orders/invoice/{orderId}", orderHandler.Invoice)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Use(rt.require(policy.ManageOrders))

		r.Get("/api/orders/admin/all", orderHandler.All)
		r.Put("/api/orders/admin/status", orderHandler.UpdateStatus)
		r.Put("/api/orders/admin/mark-paid", orderHandler.MarkPaid)
	})
}
