package wire

import (
	"kalamkart/internal/adaptor"
	"kalamkart/pkg/policy"

	"github.com/go-chi/chi/v5"
)

func wireShop(r chi.Router, handler *adaptor.Handler, rt routes) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/coupons/{code}", handler.Coupon.Get)
	r.Get("/api/reviews/{productId}", handler.Review.GetByProduct)

	// ==================== CUSTOMER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Use(rt.require(policy.Shop))

		r.Get("/api/cart", handler.Cart.Get)
		r.Post("/api/cart", handler.Cart.Add)
		r.Put("/api/cart", handler.Cart.Update)
		r.Delete("/api/cart/clear", handler.Cart.Clear)
		r.Delete("/api/cart/{itemId}", handler.Cart.Remove)

		r.Get("/api/wishlist", handler.Wishlist.Get)
		r.Post("/api/wishlist", handler.Wishlist.Add)
		r.Delete("/api/wishlist/{productId}", handler.Wishlist.Remove)

		// owner or moderator is decided by the service
		r.Post("/api/reviews/{productId}", handler.Review.Add)
		r.Delete("/api/reviews/{productId}/{reviewId}", handler.Review.Delete)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)

		r.With(rt.require(policy.ManageCoupons)).Get("/api/coupons", handler.Coupon.GetAll)
		r.With(rt.require(policy.ManageCoupons)).Post("/api/coupons", handler.Coupon.Create)
		r.With(rt.require(policy.ManageCoupons)).Delete("/api/coupons/{code}", handler.Coupon.Delete)

		r.With(rt.require(policy.ModerateReviews)).Get("/api/reviews", handler.Review.GetAll)
	})
}
