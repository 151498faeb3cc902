package usecase

import (
	"time"

	"kalamkart/internal/data/repository"
	"kalamkart/pkg/invoice"
	"kalamkart/pkg/mailer"
	"kalamkart/pkg/media"
	"kalamkart/pkg/oauth"
	"kalamkart/pkg/payment"
	"kalamkart/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Actor is the authenticated caller as services see it.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// Deps are the outbound collaborators services talk to besides the stores.
type Deps struct {
	Tokens   *utils.TokenManager
	Mailer   mailer.Sender
	Media    media.Uploader
	Google   oauth.Verifier
	Khalti   payment.KhaltiVerifier
	Invoices *invoice.Renderer
}

type Service struct {
	Auth     AuthService
	User     UserService
	Category CategoryService
	Product  ProductService
	Cart     CartService
	Wishlist WishlistService
	Coupon   CouponService
	Review   ReviewService
	Order    OrderService
	Payment  PaymentService
	Admin    AdminService
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	outbox := newNotifier(repo.Outbox, config.Email, log)
	order := NewOrderService(repo, config, deps.Invoices, outbox, log)

	return &Service{
		Auth:     NewAuthService(repo, config, deps, log),
		User:     NewUserService(repo, deps, log),
		Category: NewCategoryService(repo, deps, log),
		Product:  NewProductService(repo, deps, log),
		Cart:     NewCartService(repo, log),
		Wishlist: NewWishlistService(repo, log),
		Coupon:   NewCouponService(repo, log),
		Review:   NewReviewService(repo, log),
		Order:    order,
		Payment:  NewPaymentService(order, deps.Khalti, log),
		Admin:    NewAdminService(repo, log),
	}
}

// clock is swapped in tests
type clock func() time.Time
