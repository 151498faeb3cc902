package adaptor

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"kalamkart/internal/usecase"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

const maxUploadBytes = 5 << 20

type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Product  *ProductHandler
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Coupon   *CouponHandler
	Review   *ReviewHandler
	Order    *OrderHandler
	Payment  *PaymentHandler
	Admin    *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		User:     NewUserHandler(service.User, log),
		Category: NewCategoryHandler(service.Category, log),
		Product:  NewProductHandler(service.Product, log),
		Cart:     NewCartHandler(service.Cart, log),
		Wishlist: NewWishlistHandler(service.Wishlist, log),
		Coupon:   NewCouponHandler(service.Coupon, log),
		Review:   NewReviewHandler(service.Review, log),
		Order:    NewOrderHandler(service.Order, log),
		Payment:  NewPaymentHandler(service.Payment, log),
		Admin:    NewAdminHandler(service.Admin, log),
	}
}

// base carries what every handler shares.
type base struct {
	log *zap.Logger
}

func newBase(log *zap.Logger, name string) base {
	return base{log: log.With(zap.String("handler", name))}
}

// handleServiceError logs by error kind and writes the envelope
func (b base) handleServiceError(w http.ResponseWriter, err error, operation string) {
	appErr := utils.AsAppError(err)

	if appErr.Status() >= http.StatusInternalServerError {
		b.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	} else {
		b.log.Warn(operation+" failed", zap.String("reason", appErr.Message), zap.Int("status", appErr.Status()))
	}

	utils.ResponseError(w, appErr)
}

// decode reads a JSON body into dst and validates it. It writes the 400 itself.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

func validate(w http.ResponseWriter, req any) bool {
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

// actor reads the authenticated caller. Routes behind Authenticate always have one.
func actor(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return usecase.Actor{}, false
	}

	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Actor{ID: userID, Role: role}, true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formImage parses a multipart body and returns the optional "image" file.
// The returned file is nil when none was uploaded; callers close it.
func formImage(r *http.Request) (multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return file, err
}

// formValue returns a pointer to a present form field.
func formValue(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}
