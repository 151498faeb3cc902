package wire

import (
	"kalamkart/internal/adaptor"
	"kalamkart/pkg/policy"

	"github.com/go-chi/chi/v5"
)

// wireAdmin mounts the /api/admin surface. Most of it aliases routes mounted elsewhere;
// /api/admin/login lives with the auth routes.
func wireAdmin(r chi.Router, handler *adaptor.Handler, rt routes) {
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)

		r.With(rt.require(policy.ViewStats)).Get("/api/admin/stats", handler.Admin.Stats)

		// ==================== USERS ====================
		r.Group(func(r chi.Router) {
			r.Use(rt.require(policy.ManageUsers))
			r.Get("/api/admin/users", handler.Admin.Users)
			r.Put("/api/admin/users/{id}", handler.Admin.UpdateRole)
			r.Delete("/api/admin/users/{id}", handler.Admin.DeleteUser)
		})

		// ==================== ALIASES ====================
		r.Group(func(r chi.Router) {
			r.Use(rt.require(policy.ManageOrders))
			r.Get("/api/admin/orders", handler.Order.All)
			r.Put("/api/admin/orders/{id}/status", handler.Order.UpdateStatus)
			r.Put("/api/admin/orders/{id}/pay", handler.Order.MarkPaid)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.require(policy.ManageCoupons))
			r.Get("/api/admin/coupons", handler.Coupon.GetAll)
			r.Post("/api/admin/coupons", handler.Coupon.Create)
			r.Delete("/api/admin/coupons/{code}", handler.Coupon.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.require(policy.ManageCatalog))
			r.Post("/api/admin/products", handler.Product.Create)
			r.Put("/api/admin/products/{id}", handler.Product.Update)
			r.Delete("/api/admin/products/{id}", handler.Product.Delete)
			r.Post("/api/admin/categories/bulk", handler.Category.BulkCreate)
		})

		r.With(rt.require(policy.ModerateReviews)).Get("/api/admin/reviews", handler.Review.GetAll)
	})
}
