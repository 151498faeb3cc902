package usecase

import (
	"context"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CartService interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*response.CartResponse, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, req *request.CartItemRequest) (*response.CartResponse, error)
	UpdateItem(ctx context.Context, userID primitive.ObjectID, req *request.CartItemRequest) (*response.CartResponse, error)
	RemoveItem(ctx context.Context, userID primitive.ObjectID, itemID string) (*response.CartResponse, error)
	Clear(ctx context.Context, userID primitive.ObjectID) (*response.CartResponse, error)
}

type cartService struct {
	repo *repository.Repository
	now  clock
	log  *zap.Logger
}

func NewCartService(repo *repository.Repository, log *zap.Logger) CartService {
	return &cartService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "cart")),
	}
}

func (s *cartService) load(ctx context.Context, userID primitive.ObjectID) (*entity.Cart, error) {
	cart, err := s.repo.Cart.FindByUser(ctx, userID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to load cart", err)
	}
	return cart, nil
}

func (s *cartService) save(ctx context.Context, cart *entity.Cart) (*response.CartResponse, error) {
	cart.UpdatedAt = s.now()
	if err := s.repo.Cart.Save(ctx, cart); err != nil {
		return nil, utils.ErrInternal("Failed to update cart", err)
	}
	return s.populate(ctx, cart)
}

// populate resolves current products; lines whose product is gone are left out.
func (s *cartService) populate(ctx context.Context, cart *entity.Cart) (*response.CartResponse, error) {
	products, err := s.repo.Product.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, utils.ErrInternal("Failed to load cart", err)
	}

	list := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		list = append(list, p)
	}
	projected, err := withCategoryNames(ctx, s.repo, list)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]response.ProductResponse, len(projected))
	for _, p := range projected {
		byID[p.ID] = p
	}

	resp := &response.CartResponse{
		User:  cart.UserID.Hex(),
		Items: make([]response.CartItemResponse, 0, len(cart.Items)),
	}
	if !cart.ID.IsZero() {
		resp.ID = cart.ID.Hex()
	}

	for _, item := range cart.Items {
		product, ok := byID[item.ProductID.Hex()]
		if !ok {
			continue
		}
		resp.Items = append(resp.Items, response.CartItemResponse{
			ID:       item.ID.Hex(),
			Product:  product,
			Quantity: item.Quantity,
		})
	}
	return resp, nil
}

func (s *cartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*response.CartResponse, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &response.CartResponse{User: userID.Hex(), Items: []response.CartItemResponse{}}, nil
	}
	return s.populate(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID primitive.ObjectID, req *request.CartItemRequest) (*response.CartResponse, error) {
	productID, err := utils.ParseObjectID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}

	// 1. Product must exist
	product, err := s.repo.Product.FindByID(ctx, productID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to add to cart", err)
	}
	if product == nil {
		return nil, utils.ErrNotFound("Product not found")
	}

	// 2. Cart is created on first add
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &entity.Cart{Base: entity.NewBase(s.now()), UserID: userID}
	}

	// 3. Merge into an existing line
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, entity.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Quantity:  req.Quantity,
		})
	}

	s.log.Debug("Cart item added",
		zap.String("user_id", userID.Hex()),
		zap.String("product_id", productID.Hex()),
		zap.Int("quantity", req.Quantity),
	)
	return s.save(ctx, cart)
}

func (s *cartService) UpdateItem(ctx context.Context, userID primitive.ObjectID, req *request.CartItemRequest) (*response.CartResponse, error) {
	productID, err := utils.ParseObjectID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, utils.ErrNotFound("Cart not found")
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = req.Quantity
			return s.save(ctx, cart)
		}
	}
	return nil, utils.ErrNotFound("Item not found in cart")
}

func (s *cartService) RemoveItem(ctx context.Context, userID primitive.ObjectID, itemID string) (*response.CartResponse, error) {
	id, err := utils.ParseObjectID(itemID, "cart item")
	if err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, utils.ErrNotFound("Cart not found")
	}

	for i := range cart.Items {
		if cart.Items[i].ID == id {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.save(ctx, cart)
		}
	}
	return nil, utils.ErrNotFound("Item not found in cart")
}

func (s *cartService) Clear(ctx context.Context, userID primitive.ObjectID) (*response.CartResponse, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, utils.ErrNotFound("Cart not found")
	}

	cart.Items = []entity.CartItem{}
	return s.save(ctx, cart)
}
