package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/media"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

type CategoryService interface {
	GetAll(ctx context.Context) ([]response.CategoryResponse, error)
	Create(ctx context.Context, req *request.CategoryRequest, image io.Reader) (*response.CategoryResponse, error)
	Update(ctx context.Context, id string, req *request.UpdateCategoryRequest, image io.Reader) (*response.CategoryResponse, error)
	Delete(ctx context.Context, id string) error
	BulkCreate(ctx context.Context, req *request.BulkCategoryRequest) (*response.BulkCategoryResponse, error)
}

type categoryService struct {
	repo  *repository.Repository
	media media.Uploader
	now   clock
	log   *zap.Logger
}

func NewCategoryService(repo *repository.Repository, deps Deps, log *zap.Logger) CategoryService {
	return &categoryService{
		repo:  repo,
		media: deps.Media,
		now:   time.Now,
		log:   log.With(zap.String("service", "category")),
	}
}

func (s *categoryService) GetAll(ctx context.Context) ([]response.CategoryResponse, error) {
	categories, err := s.repo.Category.FindAll(ctx)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch categories", err)
	}
	return response.CategoriesToResponse(categories), nil
}

func (s *categoryService) Create(ctx context.Context, req *request.CategoryRequest, image io.Reader) (*response.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	imageURL := strings.TrimSpace(req.Image)

	// 1. Image from upload or body
	if image != nil {
		uploaded, err := s.media.Upload(ctx, image, media.FolderCategories)
		if err != nil {
			return nil, mediaError(err)
		}
		imageURL = uploaded.URL
	}
	if name == "" || imageURL == "" {
		return nil, utils.ErrValidation("Name and image are required")
	}

	// 2. Name must be free
	existing, err := s.repo.Category.FindByName(ctx, name)
	if err != nil {
		return nil, utils.ErrInternal("Failed to create category", err)
	}
	if existing != nil {
		return nil, utils.ErrConflict("Category already exists")
	}

	// 3. Save
	category := &entity.Category{
		Base:  entity.NewBase(s.now()),
		Name:  name,
		Image: imageURL,
	}
	if err := s.repo.Category.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, utils.ErrConflict("Category already exists")
		}
		return nil, utils.ErrInternal("Failed to create category", err)
	}

	s.log.Info("Category created", zap.String("category_id", category.ID.Hex()), zap.String("name", name))
	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, id string, req *request.UpdateCategoryRequest, image io.Reader) (*response.CategoryResponse, error) {
	categoryID, err := utils.ParseObjectID(id, "category")
	if err != nil {
		return nil, err
	}

	category, err := s.repo.Category.FindByID(ctx, categoryID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to update category", err)
	}
	if category == nil {
		return nil, utils.ErrNotFound("Category not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, category.Name) {
			existing, err := s.repo.Category.FindByName(ctx, name)
			if err != nil {
				return nil, utils.ErrInternal("Failed to update category", err)
			}
			if existing != nil && existing.ID != category.ID {
				return nil, utils.ErrConflict("Category already exists")
			}
		}
		category.Name = name
	}
	if req.Image != nil {
		category.Image = strings.TrimSpace(*req.Image)
	}
	if image != nil {
		uploaded, err := s.media.Upload(ctx, image, media.FolderCategories)
		if err != nil {
			return nil, mediaError(err)
		}
		category.Image = uploaded.URL
	}

	category.UpdatedAt = s.now()
	if err := s.repo.Category.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, utils.ErrConflict("Category already exists")
		}
		return nil, utils.ErrInternal("Failed to update category", err)
	}

	s.log.Info("Category updated", zap.String("category_id", id))
	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	categoryID, err := utils.ParseObjectID(id, "category")
	if err != nil {
		return err
	}

	category, err := s.repo.Category.FindByID(ctx, categoryID)
	if err != nil {
		return utils.ErrInternal("Failed to delete category", err)
	}
	if category == nil {
		return utils.ErrNotFound("Category not found")
	}

	// products keep a reference; deleting would orphan them
	inUse, err := s.repo.Product.CountByCategory(ctx, categoryID)
	if err != nil {
		return utils.ErrInternal("Failed to delete category", err)
	}
	if inUse > 0 {
		return utils.ErrConflict("Category is still used by products")
	}

	deleted, err := s.repo.Category.Delete(ctx, categoryID)
	if err != nil {
		return utils.ErrInternal("Failed to delete category", err)
	}
	if !deleted {
		return utils.ErrNotFound("Category not found")
	}

	s.log.Info("Category deleted", zap.String("category_id", id), zap.String("name", category.Name))
	return nil
}

func (s *categoryService) BulkCreate(ctx context.Context, req *request.BulkCategoryRequest) (*response.BulkCategoryResponse, error) {
	result := &response.BulkCategoryResponse{
		Created: make([]response.CategoryResponse, 0, len(req.Categories)),
		Skipped: make([]string, 0),
	}

	seen := make(map[string]bool, len(req.Categories))
	now := s.now()

	for _, item := range req.Categories {
		name := strings.TrimSpace(item.Name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		seen[key] = true

		if strings.TrimSpace(item.Image) == "" {
			return nil, utils.ErrValidation("Name and image are required")
		}

		existing, err := s.repo.Category.FindByName(ctx, name)
		if err != nil {
			return nil, utils.ErrInternal("Failed to create categories", err)
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		category := &entity.Category{
			Base:  entity.NewBase(now),
			Name:  name,
			Image: strings.TrimSpace(item.Image),
		}
		if err := s.repo.Category.Create(ctx, category); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				result.Skipped = append(result.Skipped, name)
				continue
			}
			return nil, utils.ErrInternal("Failed to create categories", err)
		}
		result.Created = append(result.Created, response.CategoryToResponse(category))
	}

	s.log.Info("Bulk category import",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}
