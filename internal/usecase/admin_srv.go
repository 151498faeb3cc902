package usecase

import (
	"context"
	"time"

	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AdminService interface {
	Stats(ctx context.Context) (*response.StatsResponse, error)
	ListUsers(ctx context.Context) ([]response.UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateRole(ctx context.Context, id string, req *request.UpdateRoleRequest) (*response.RoleResponse, error)
}

type adminService struct {
	repo *repository.Repository
	now  clock
	log  *zap.Logger
}

func NewAdminService(repo *repository.Repository, log *zap.Logger) AdminService {
	return &adminService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) Stats(ctx context.Context) (*response.StatsResponse, error) {
	stats := &response.StatsResponse{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.repo.Order.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSales, err = s.repo.Order.TotalSales(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.repo.User.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.repo.Product.Count(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error("Failed to compute stats", zap.Error(err))
		return nil, utils.ErrInternal("Failed to fetch stats", err)
	}
	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]response.UserResponse, error) {
	users, err := s.repo.User.FindAll(ctx)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch users", err)
	}
	return response.UsersToResponse(users), nil
}

func (s *adminService) DeleteUser(ctx context.Context, id string) error {
	userID, err := utils.ParseObjectID(id, "user")
	if err != nil {
		return err
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return utils.ErrInternal("Failed to delete user", err)
	}
	if user == nil {
		return utils.ErrNotFound("User not found")
	}
	if user.IsAdmin() {
		return utils.ErrForbidden("Cannot delete admin")
	}

	deleted, err := s.repo.User.Delete(ctx, userID)
	if err != nil {
		return utils.ErrInternal("Failed to delete user", err)
	}
	if !deleted {
		return utils.ErrNotFound("User not found")
	}

	s.log.Info("User deleted", zap.String("user_id", id), zap.String("email", user.Email))
	return nil
}

func (s *adminService) UpdateRole(ctx context.Context, id string, req *request.UpdateRoleRequest) (*response.RoleResponse, error) {
	userID, err := utils.ParseObjectID(id, "user")
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to update user", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound("User not found")
	}

	// empty role keeps the current one
	if req.Role != "" && req.Role != user.Role {
		previous := user.Role
		user.Role = req.Role
		user.UpdatedAt = s.now()

		if err := s.repo.User.Update(ctx, user); err != nil {
			return nil, utils.ErrInternal("Failed to update user", err)
		}
		s.log.Info("User role changed",
			zap.String("user_id", id),
			zap.String("from", previous),
			zap.String("to", req.Role),
		)
	}

	resp := response.RoleToResponse(user)
	return &resp, nil
}
