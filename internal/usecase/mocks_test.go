package usecase

import (
	"context"
	"io"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/mailer"
	"kalamkart/pkg/media"
	"kalamkart/pkg/oauth"
	"kalamkart/pkg/payment"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ==================== STORE MOCKS ====================

type MockTx struct {
	transactional bool
}

func (m *MockTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockTx) Transactional() bool { return m.transactional }

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*entity.User, error) {
	args := m.Called(ctx, hashedToken, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[primitive.ObjectID]*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Find(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) AddReview(ctx context.Context, productID primitive.ObjectID, review *entity.Review) (bool, error) {
	args := m.Called(ctx, productID, review)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) RemoveReview(ctx context.Context, productID, reviewID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, productID, reviewID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) FindReviewed(ctx context.Context) ([]*entity.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.Product), args.Error(1)
}

type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.Category, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[primitive.ObjectID]*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCartRepository struct{ mock.Mock }

func (m *MockCartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *MockCartRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) DeleteIfUnchangedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, since)
	return args.Bool(0), args.Error(1)
}

type MockWishlistRepository struct{ mock.Mock }

func (m *MockWishlistRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wishlist), args.Error(1)
}

func (m *MockWishlistRepository) AddProducts(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID, now time.Time) (*entity.Wishlist, error) {
	args := m.Called(ctx, userID, productIDs, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wishlist), args.Error(1)
}

func (m *MockWishlistRepository) RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID, now time.Time) (*entity.Wishlist, error) {
	args := m.Called(ctx, userID, productID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wishlist), args.Error(1)
}

type MockCouponRepository struct{ mock.Mock }

func (m *MockCouponRepository) Create(ctx context.Context, coupon *entity.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *MockCouponRepository) FindValid(ctx context.Context, code string, now time.Time) (*entity.Coupon, error) {
	args := m.Called(ctx, code, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindAll(ctx context.Context) ([]*entity.Coupon, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.Coupon), args.Error(1)
}

func (m *MockCouponRepository) DeleteByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) CreateItems(ctx context.Context, items []*entity.OrderItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) ClearCartPending(ctx context.Context, orderID primitive.ObjectID) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIdempotencyKey(ctx context.Context, userID primitive.ObjectID, key string) (*entity.Order, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*entity.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]*entity.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) FindItems(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.OrderItem, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[primitive.ObjectID]*entity.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.OrderStatus, now time.Time) (bool, error) {
	args := m.Called(ctx, id, status, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, method entity.PaymentMethod, now time.Time) (*entity.Order, error) {
	args := m.Called(ctx, id, method, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) TotalSales(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockOrderRepository) FindCartPending(ctx context.Context, olderThan time.Time) ([]*entity.Order, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).([]*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) DeleteOrphanItems(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockOTPRepository struct{ mock.Mock }

func (m *MockOTPRepository) Upsert(ctx context.Context, otp *entity.OTP) error {
	return m.Called(ctx, otp).Error(0)
}

func (m *MockOTPRepository) FindByEmail(ctx context.Context, email string) (*entity.OTP, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OTP), args.Error(1)
}

func (m *MockOTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockIdempotencyRepository struct{ mock.Mock }

func (m *MockIdempotencyRepository) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyRepository) Complete(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockIdempotencyRepository) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// ==================== COLLABORATOR FAKES ====================

type fakeSender struct {
	err  error
	sent []mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeUploader struct {
	url       string
	err       error
	destroyed []string
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, folder string) (*media.Uploaded, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	return &media.Uploaded{URL: f.url, PublicID: folder + "/uploaded"}, nil
}

func (f *fakeUploader) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type fakeGoogle struct {
	identity *oauth.Identity
	err      error
}

func (f *fakeGoogle) Verify(context.Context, string) (*oauth.Identity, error) {
	return f.identity, f.err
}

type fakeKhalti struct {
	result *payment.Verification
	err    error
}

func (f *fakeKhalti) Verify(context.Context, string, int64) (*payment.Verification, error) {
	return f.result, f.err
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, key string, req *request.PlaceOrderRequest) (*response.OrderSummaryResponse, error) {
	args := m.Called(ctx, userID, key, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.OrderSummaryResponse), args.Error(1)
}

func (m *MockOrderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]response.OrderResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]response.OrderResponse), args.Error(1)
}

func (m *MockOrderService) DownloadInvoice(ctx context.Context, actor Actor, orderID string) ([]byte, error) {
	args := m.Called(ctx, actor, orderID)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockOrderService) GetAllOrders(ctx context.Context) ([]response.OrderResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]response.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID, status string) (*response.OrderResponse, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.OrderResponse), args.Error(1)
}

func (m *MockOrderService) MarkPaid(ctx context.Context, orderID string) (*response.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.OrderResponse), args.Error(1)
}

func (m *MockOrderService) SettlePayment(ctx context.Context, orderID string, method entity.PaymentMethod, paidPaisa *int64) (*entity.Order, error) {
	args := m.Called(ctx, orderID, method, paidPaisa)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) Reconcile(ctx context.Context) (*RepairReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RepairReport), args.Error(1)
}
