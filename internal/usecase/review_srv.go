package usecase

import (
	"context"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/policy"
	"kalamkart/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewService interface {
	Add(ctx context.Context, actor Actor, productID string, req *request.ReviewRequest) (*response.ReviewResponse, error)
	GetByProduct(ctx context.Context, productID string) ([]response.ReviewResponse, error)
	Delete(ctx context.Context, actor Actor, productID, reviewID string) error
	GetAll(ctx context.Context) ([]response.AdminReviewResponse, error)
}

type reviewService struct {
	repo *repository.Repository
	now  clock
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) product(ctx context.Context, productID string) (*entity.Product, error) {
	id, err := utils.ParseObjectID(productID, "product")
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Product.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch product", err)
	}
	if product == nil {
		return nil, utils.ErrNotFound("Product not found")
	}
	return product, nil
}

func (s *reviewService) Add(ctx context.Context, actor Actor, productID string, req *request.ReviewRequest) (*response.ReviewResponse, error) {
	// 1. Product must exist
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.HasReviewFrom(actor.ID) {
		return nil, utils.ErrValidation("Product already reviewed")
	}

	// 2. Reviewer display name
	user, err := s.repo.User.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to add review", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound("User not found")
	}

	// 3. Push; the store re-checks the one-review-per-user rule
	review := &entity.Review{
		ID:        primitive.NewObjectID(),
		UserID:    actor.ID,
		Name:      user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now(),
	}
	added, err := s.repo.Product.AddReview(ctx, product.ID, review)
	if err != nil {
		return nil, utils.ErrInternal("Failed to add review", err)
	}
	if !added {
		return nil, utils.ErrValidation("Product already reviewed")
	}

	s.log.Info("Review added",
		zap.String("product_id", product.ID.Hex()),
		zap.String("user_id", actor.ID.Hex()),
		zap.Int("rating", req.Rating),
	)
	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) GetByProduct(ctx context.Context, productID string) ([]response.ReviewResponse, error) {
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	return response.ReviewsToResponse(product.Reviews), nil
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, productID, reviewID string) error {
	product, err := s.product(ctx, productID)
	if err != nil {
		return err
	}

	id, err := utils.ParseObjectID(reviewID, "review")
	if err != nil {
		return err
	}

	review, ok := product.FindReview(id)
	if !ok {
		return utils.ErrNotFound("Review not found")
	}

	if !policy.CanActOnOwned(actor.ID.Hex(), review.UserID.Hex(), actor.Role, policy.ModerateReviews) {
		s.log.Warn("Review delete denied",
			zap.String("review_id", reviewID),
			zap.String("user_id", actor.ID.Hex()),
		)
		return utils.ErrForbidden("Not authorized to delete this review")
	}

	removed, err := s.repo.Product.RemoveReview(ctx, product.ID, id)
	if err != nil {
		return utils.ErrInternal("Failed to delete review", err)
	}
	if !removed {
		return utils.ErrNotFound("Review not found")
	}

	s.log.Info("Review deleted",
		zap.String("product_id", productID),
		zap.String("review_id", reviewID),
		zap.String("by", actor.ID.Hex()),
	)
	return nil
}

// GetAll flattens every embedded review with its product.
func (s *reviewService) GetAll(ctx context.Context) ([]response.AdminReviewResponse, error) {
	products, err := s.repo.Product.FindReviewed(ctx)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch reviews", err)
	}

	out := make([]response.AdminReviewResponse, 0)
	for _, p := range products {
		for i := range p.Reviews {
			out = append(out, response.AdminReviewResponse{
				ReviewResponse: response.ReviewToResponse(&p.Reviews[i]),
				ProductID:      p.ID.Hex(),
				ProductName:    p.Name,
			})
		}
	}
	return out, nil
}
