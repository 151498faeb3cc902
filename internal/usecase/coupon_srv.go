package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

type CouponService interface {
	Create(ctx context.Context, req *request.CreateCouponRequest) (*response.CouponResponse, error)
	GetValid(ctx context.Context, code string) (*response.CouponResponse, error)
	GetAll(ctx context.Context) ([]response.CouponResponse, error)
	Delete(ctx context.Context, code string) error
}

type couponService struct {
	repo *repository.Repository
	now  clock
	log  *zap.Logger
}

func NewCouponService(repo *repository.Repository, log *zap.Logger) CouponService {
	return &couponService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "coupon")),
	}
}

func (s *couponService) Create(ctx context.Context, req *request.CreateCouponRequest) (*response.CouponResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, utils.ErrValidation("Coupon code is required")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	coupon := &entity.Coupon{
		Base:      entity.NewBase(s.now()),
		Code:      code,
		Discount:  req.DiscountPercentage,
		ExpiresAt: req.ExpiresAt,
		IsActive:  active,
	}
	if err := s.repo.Coupon.Create(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, utils.ErrConflict("Coupon code already exists")
		}
		return nil, utils.ErrInternal("Failed to create coupon", err)
	}

	s.log.Info("Coupon created",
		zap.String("code", code),
		zap.Float64("discount_percentage", req.DiscountPercentage),
		zap.Time("expires_at", req.ExpiresAt),
	)
	resp := response.CouponToResponse(coupon)
	return &resp, nil
}

// GetValid returns the coupon only while it is active and unexpired.
func (s *couponService) GetValid(ctx context.Context, code string) (*response.CouponResponse, error) {
	coupon, err := s.repo.Coupon.FindValid(ctx, code, s.now())
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch coupon", err)
	}
	if coupon == nil {
		return nil, utils.ErrNotFound("Invalid or expired coupon")
	}

	resp := response.CouponToResponse(coupon)
	return &resp, nil
}

func (s *couponService) GetAll(ctx context.Context) ([]response.CouponResponse, error) {
	coupons, err := s.repo.Coupon.FindAll(ctx)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch coupons", err)
	}
	return response.CouponsToResponse(coupons), nil
}

func (s *couponService) Delete(ctx context.Context, code string) error {
	deleted, err := s.repo.Coupon.DeleteByCode(ctx, code)
	if err != nil {
		return utils.ErrInternal("Failed to delete coupon", err)
	}
	if !deleted {
		return utils.ErrNotFound("Coupon not found")
	}

	s.log.Info("Coupon deleted", zap.String("code", code))
	return nil
}
