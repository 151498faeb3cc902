package adaptor

import (
	"net/http"

	"kalamkart/internal/dto/request"
	"kalamkart/internal/usecase"
	"kalamkart/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ==================== CART ====================

type CartHandler struct {
	base
	service usecase.CartService
}

func NewCartHandler(service usecase.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{
		base:    newBase(log, "cart"),
		service: service,
	}
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), caller.ID)
	if err != nil {
		h.handleServiceError(w, err, "get cart")
		return
	}

	utils.ResponseSuccess(w, "success", cart)
}

// Add handles POST /api/cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req request.CartItemRequest
	if !decode(w, r, &req) {
		return
	}

	cart, err := h.service.AddItem(r.Context(), caller.ID, &req)
	if err != nil {
		h.handleServiceError(w, err, "add to cart")
		return
	}

	utils.ResponseSuccess(w, "Item added to cart", cart)
}

// Update handles PUT /api/cart
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req request.CartItemRequest
	if !decode(w, r, &req) {
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), caller.ID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update cart")
		return
	}

	utils.ResponseSuccess(w, "Cart updated", cart)
}

// Remove handles DELETE /api/cart/{itemId}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), caller.ID, chi.URLParam(r, "itemId"))
	if err != nil {
		h.handleServiceError(w, err, "remove cart item")
		return
	}

	utils.ResponseSuccess(w, "Item removed from cart", cart)
}

// Clear handles DELETE /api/cart/clear
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	cart, err := h.service.Clear(r.Context(), caller.ID)
	if err != nil {
		h.handleServiceError(w, err, "clear cart")
		return
	}

	utils.ResponseSuccess(w, "Cart cleared", cart)
}

// ==================== WISHLIST ====================

type WishlistHandler struct {
	base
	service usecase.WishlistService
}

func NewWishlistHandler(service usecase.WishlistService, log *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		base:    newBase(log, "wishlist"),
		service: service,
	}
}

// Add handles POST /api/wishlist
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req request.WishlistRequest
	if !decode(w, r, &req) {
		return
	}

	message, wishlist, err := h.service.Add(r.Context(), caller.ID, &req)
	if err != nil {
		h.handleServiceError(w, err, "add to wishlist")
		return
	}

	utils.ResponseSuccess(w, message, wishlist)
}

// Get handles GET /api/wishlist
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	wishlist, err := h.service.Get(r.Context(), caller.ID)
	if err != nil {
		h.handleServiceError(w, err, "get wishlist")
		return
	}

	utils.ResponseSuccess(w, "success", wishlist)
}

// Remove handles DELETE /api/wishlist/{productId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	wishlist, err := h.service.Remove(r.Context(), caller.ID, chi.URLParam(r, "productId"))
	if err != nil {
		h.handleServiceError(w, err, "remove from wishlist")
		return
	}

	utils.ResponseSuccess(w, "Product removed from wishlist", wishlist)
}

// ==================== COUPONS ====================

type CouponHandler struct {
	base
	service usecase.CouponService
}

func NewCouponHandler(service usecase.CouponService, log *zap.Logger) *CouponHandler {
	return &CouponHandler{
		base:    newBase(log, "coupon"),
		service: service,
	}
}

// Create handles POST /api/coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCouponRequest
	if !decode(w, r, &req) {
		return
	}

	coupon, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create coupon")
		return
	}

	utils.ResponseCreated(w, "Coupon created", coupon)
}

// Get handles GET /api/coupons/{code}
func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.service.GetValid(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.handleServiceError(w, err, "get coupon")
		return
	}

	utils.ResponseSuccess(w, "success", coupon)
}

// GetAll handles GET /api/coupons
func (h *CouponHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get coupons")
		return
	}

	utils.ResponseSuccess(w, "success", coupons)
}

// Delete handles DELETE /api/coupons/{code}
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.handleServiceError(w, err, "delete coupon")
		return
	}

	utils.ResponseSuccess(w, "Coupon deleted", nil)
}

// ==================== REVIEWS ====================

type ReviewHandler struct {
	base
	service usecase.ReviewService
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		base:    newBase(log, "review"),
		service: service,
	}
}

// Add handles POST /api/reviews/{productId}
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req request.ReviewRequest
	if !decode(w, r, &req) {
		return
	}

	review, err := h.service.Add(r.Context(), caller, chi.URLParam(r, "productId"), &req)
	if err != nil {
		h.handleServiceError(w, err, "add review")
		return
	}

	utils.ResponseCreated(w, "Review added", review)
}

// GetByProduct handles GET /api/reviews/{productId}
func (h *ReviewHandler) GetByProduct(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetByProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.handleServiceError(w, err, "get product reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// Delete handles DELETE /api/reviews/{productId}/{reviewId} (owner or moderator)
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	err := h.service.Delete(r.Context(), caller, chi.URLParam(r, "productId"), chi.URLParam(r, "reviewId"))
	if err != nil {
		h.handleServiceError(w, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "Review deleted", nil)
}

// GetAll handles GET /api/reviews
func (h *ReviewHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get all reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}
