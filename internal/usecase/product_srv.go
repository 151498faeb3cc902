package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/media"
	"kalamkart/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultProductImage = "no-image.jpg"

type ProductService interface {
	// Public
	List(ctx context.Context, query request.ProductQuery) ([]response.ProductResponse, error)
	ListByCategoryName(ctx context.Context, name string) ([]response.ProductResponse, error)
	GetByID(ctx context.Context, id string) (*response.ProductResponse, error)

	// Admin
	Create(ctx context.Context, createdBy primitive.ObjectID, req *request.ProductRequest, image io.Reader) (*response.ProductResponse, error)
	Update(ctx context.Context, id string, req *request.UpdateProductRequest, image io.Reader) (*response.ProductResponse, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	repo  *repository.Repository
	media media.Uploader
	now   clock
	log   *zap.Logger
}

func NewProductService(repo *repository.Repository, deps Deps, log *zap.Logger) ProductService {
	return &productService{
		repo:  repo,
		media: deps.Media,
		now:   time.Now,
		log:   log.With(zap.String("service", "product")),
	}
}

// ==================== READ ====================

func (s *productService) List(ctx context.Context, query request.ProductQuery) ([]response.ProductResponse, error) {
	filter := repository.ProductFilter{Search: strings.TrimSpace(query.Search)}

	if c := strings.TrimSpace(query.Category); c != "" {
		categoryID, found, err := s.resolveCategory(ctx, c)
		if err != nil {
			return nil, utils.ErrInternal("Failed to fetch products", err)
		}
		if !found {
			return []response.ProductResponse{}, nil
		}
		filter.CategoryID = &categoryID
	}

	return s.find(ctx, filter)
}

func (s *productService) ListByCategoryName(ctx context.Context, name string) ([]response.ProductResponse, error) {
	category, err := s.repo.Category.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch products", err)
	}
	if category == nil {
		return nil, utils.ErrNotFound("Category not found")
	}

	return s.find(ctx, repository.ProductFilter{CategoryID: &category.ID})
}

// resolveCategory accepts either a category id or its name.
func (s *productService) resolveCategory(ctx context.Context, idOrName string) (primitive.ObjectID, bool, error) {
	if id, err := primitive.ObjectIDFromHex(idOrName); err == nil {
		category, err := s.repo.Category.FindByID(ctx, id)
		if err != nil {
			return primitive.NilObjectID, false, err
		}
		if category != nil {
			return category.ID, true, nil
		}
	}

	category, err := s.repo.Category.FindByName(ctx, idOrName)
	if err != nil || category == nil {
		return primitive.NilObjectID, false, err
	}
	return category.ID, true, nil
}

func (s *productService) find(ctx context.Context, filter repository.ProductFilter) ([]response.ProductResponse, error) {
	products, err := s.repo.Product.Find(ctx, filter)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch products", err)
	}

	return withCategoryNames(ctx, s.repo, products)
}

// withCategoryNames projects products with their category display names.
func withCategoryNames(ctx context.Context, repo *repository.Repository, products []*entity.Product) ([]response.ProductResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.CategoryID)
	}

	categories, err := repo.Category.FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch products", err)
	}

	out := make([]response.ProductResponse, 0, len(products))
	for _, p := range products {
		name := ""
		if c, ok := categories[p.CategoryID]; ok {
			name = c.Name
		}
		out = append(out, response.ProductToResponse(p, name))
	}
	return out, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*response.ProductResponse, error) {
	productID, err := utils.ParseObjectID(id, "product")
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Product.FindByID(ctx, productID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to fetch product", err)
	}
	if product == nil {
		return nil, utils.ErrNotFound("Product not found")
	}

	return s.single(ctx, product)
}

func (s *productService) single(ctx context.Context, product *entity.Product) (*response.ProductResponse, error) {
	out, err := withCategoryNames(ctx, s.repo, []*entity.Product{product})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ==================== WRITE ====================

func (s *productService) category(ctx context.Context, id string) (*entity.Category, error) {
	categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, utils.ErrValidation("Invalid category")
	}

	category, err := s.repo.Category.FindByID(ctx, categoryID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to verify category", err)
	}
	if category == nil {
		return nil, utils.ErrValidation("Invalid category")
	}
	return category, nil
}

func (s *productService) Create(ctx context.Context, createdBy primitive.ObjectID, req *request.ProductRequest, image io.Reader) (*response.ProductResponse, error) {
	// 1. Category must exist
	category, err := s.category(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	// 2. Image
	imageURL := strings.TrimSpace(req.Image)
	if image != nil {
		uploaded, err := s.media.Upload(ctx, image, media.FolderProducts)
		if err != nil {
			return nil, mediaError(err)
		}
		imageURL = uploaded.URL
	}
	if imageURL == "" {
		imageURL = defaultProductImage
	}

	// 3. Save
	product := &entity.Product{
		Base:         entity.NewBase(s.now()),
		Name:         strings.TrimSpace(req.Name),
		Image:        imageURL,
		Description:  req.Description,
		CategoryID:   category.ID,
		Price:        req.Price,
		CountInStock: req.CountInStock,
		CreatedBy:    createdBy,
		Reviews:      []entity.Review{},
	}
	if err := s.repo.Product.Create(ctx, product); err != nil {
		return nil, utils.ErrInternal("Failed to create product", err)
	}

	s.log.Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("category_id", category.ID.Hex()),
		zap.String("created_by", createdBy.Hex()),
	)

	resp := response.ProductToResponse(product, category.Name)
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, id string, req *request.UpdateProductRequest, image io.Reader) (*response.ProductResponse, error) {
	productID, err := utils.ParseObjectID(id, "product")
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Product.FindByID(ctx, productID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to update product", err)
	}
	if product == nil {
		return nil, utils.ErrNotFound("Product not found")
	}

	if req.Category != nil {
		category, err := s.category(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
	}
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CountInStock != nil {
		product.CountInStock = *req.CountInStock
	}
	if req.Image != nil && strings.TrimSpace(*req.Image) != "" {
		product.Image = strings.TrimSpace(*req.Image)
	}
	if image != nil {
		uploaded, err := s.media.Upload(ctx, image, media.FolderProducts)
		if err != nil {
			return nil, mediaError(err)
		}
		product.Image = uploaded.URL
	}

	product.UpdatedAt = s.now()
	if err := s.repo.Product.Update(ctx, product); err != nil {
		return nil, utils.ErrInternal("Failed to update product", err)
	}

	s.log.Info("Product updated", zap.String("product_id", id))
	return s.single(ctx, product)
}

func (s *productService) Delete(ctx context.Context, id string) error {
	productID, err := utils.ParseObjectID(id, "product")
	if err != nil {
		return err
	}

	deleted, err := s.repo.Product.Delete(ctx, productID)
	if err != nil {
		return utils.ErrInternal("Failed to delete product", err)
	}
	if !deleted {
		return utils.ErrNotFound("Product not found")
	}

	s.log.Info("Product deleted", zap.String("product_id", id))
	return nil
}
