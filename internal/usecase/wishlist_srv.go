package usecase

import (
	"context"
	"fmt"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type WishlistService interface {
	Add(ctx context.Context, userID primitive.ObjectID, req *request.WishlistRequest) (string, *response.WishlistResponse, error)
	Get(ctx context.Context, userID primitive.ObjectID) (*response.WishlistResponse, error)
	Remove(ctx context.Context, userID primitive.ObjectID, productID string) (*response.WishlistResponse, error)
}

type wishlistService struct {
	repo *repository.Repository
	now  clock
	log  *zap.Logger
}

func NewWishlistService(repo *repository.Repository, log *zap.Logger) WishlistService {
	return &wishlistService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "wishlist")),
	}
}

// Add skips malformed ids and unknown products, and reports how many were new.
func (s *wishlistService) Add(ctx context.Context, userID primitive.ObjectID, req *request.WishlistRequest) (string, *response.WishlistResponse, error) {
	// 1. Keep parseable, distinct ids
	ids := make([]primitive.ObjectID, 0, len(req.ProductIDs))
	seen := make(map[primitive.ObjectID]bool, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	// 2. Keep existing products
	products, err := s.repo.Product.FindByIDs(ctx, ids)
	if err != nil {
		return "", nil, utils.ErrInternal("Failed to update wishlist", err)
	}
	valid := make([]primitive.ObjectID, 0, len(products))
	for _, id := range ids {
		if _, ok := products[id]; ok {
			valid = append(valid, id)
		}
	}

	// 3. Count what is actually new
	current, err := s.repo.Wishlist.FindByUser(ctx, userID)
	if err != nil {
		return "", nil, utils.ErrInternal("Failed to update wishlist", err)
	}
	already := make(map[primitive.ObjectID]bool)
	if current != nil {
		for _, id := range current.Products {
			already[id] = true
		}
	}
	added := 0
	for _, id := range valid {
		if !already[id] {
			added++
		}
	}

	wishlist, err := s.repo.Wishlist.AddProducts(ctx, userID, valid, s.now())
	if err != nil {
		return "", nil, utils.ErrInternal("Failed to update wishlist", err)
	}

	resp, err := s.populate(ctx, wishlist)
	if err != nil {
		return "", nil, err
	}

	s.log.Debug("Wishlist updated", zap.String("user_id", userID.Hex()), zap.Int("added", added))
	return fmt.Sprintf("%d product(s) added to wishlist", added), resp, nil
}

func (s *wishlistService) Get(ctx context.Context, userID primitive.ObjectID) (*response.WishlistResponse, error) {
	wishlist, err := s.repo.Wishlist.FindByUser(ctx, userID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch wishlist", err)
	}
	if wishlist == nil {
		return &response.WishlistResponse{User: userID.Hex(), Products: []response.ProductResponse{}}, nil
	}
	return s.populate(ctx, wishlist)
}

func (s *wishlistService) Remove(ctx context.Context, userID primitive.ObjectID, productID string) (*response.WishlistResponse, error) {
	id, err := utils.ParseObjectID(productID, "product")
	if err != nil {
		return nil, err
	}

	wishlist, err := s.repo.Wishlist.RemoveProduct(ctx, userID, id, s.now())
	if err != nil {
		return nil, utils.ErrInternal("Failed to update wishlist", err)
	}
	if wishlist == nil {
		return nil, utils.ErrNotFound("Wishlist not found")
	}
	return s.populate(ctx, wishlist)
}

func (s *wishlistService) populate(ctx context.Context, wishlist *entity.Wishlist) (*response.WishlistResponse, error) {
	products, err := s.repo.Product.FindByIDs(ctx, wishlist.Products)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch wishlist", err)
	}

	// keep wishlist order
	ordered := make([]*entity.Product, 0, len(products))
	for _, id := range wishlist.Products {
		if p, ok := products[id]; ok {
			ordered = append(ordered, p)
		}
	}

	projected, err := withCategoryNames(ctx, s.repo, ordered)
	if err != nil {
		return nil, err
	}

	return &response.WishlistResponse{
		ID:       wishlist.ID.Hex(),
		User:     wishlist.UserID.Hex(),
		Products: projected,
	}, nil
}
