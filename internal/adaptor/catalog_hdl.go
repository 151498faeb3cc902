package adaptor

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"kalamkart/internal/dto/request"
	"kalamkart/internal/usecase"
	"kalamkart/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ==================== CATEGORIES ====================

type CategoryHandler struct {
	base
	service usecase.CategoryService
}

func NewCategoryHandler(service usecase.CategoryService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		base:    newBase(log, "category"),
		service: service,
	}
}

// GetAll handles GET /api/categories
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get categories")
		return
	}

	utils.ResponseSuccess(w, "success", categories)
}

// Create handles POST /api/categories, JSON or multipart with an image file
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryRequest
	var image io.Reader

	if isMultipart(r) {
		file, err := formImage(r)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid multipart form", nil)
			return
		}
		if file != nil {
			defer file.Close()
			image = file
		}

		req.Name = r.FormValue("name")
		req.Image = r.FormValue("image")
		if !validate(w, &req) {
			return
		}
	} else if !decode(w, r, &req) {
		return
	}

	category, err := h.service.Create(r.Context(), &req, image)
	if err != nil {
		h.handleServiceError(w, err, "create category")
		return
	}

	utils.ResponseCreated(w, "Category created", category)
}

// Update handles PUT /api/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateCategoryRequest
	var image io.Reader

	if isMultipart(r) {
		file, err := formImage(r)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid multipart form", nil)
			return
		}
		if file != nil {
			defer file.Close()
			image = file
		}

		req.Name = formValue(r, "name")
		req.Image = formValue(r, "image")
		if !validate(w, &req) {
			return
		}
	} else if !decode(w, r, &req) {
		return
	}

	category, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req, image)
	if err != nil {
		h.handleServiceError(w, err, "update category")
		return
	}

	utils.ResponseSuccess(w, "Category updated", category)
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete category")
		return
	}

	utils.ResponseSuccess(w, "Category deleted", nil)
}

// BulkCreate handles POST /api/categories/bulk
func (h *CategoryHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req request.BulkCategoryRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.service.BulkCreate(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "bulk create categories")
		return
	}

	utils.ResponseCreated(w, "Categories processed", result)
}

// ==================== PRODUCTS ====================

type ProductHandler struct {
	base
	service usecase.ProductService
}

func NewProductHandler(service usecase.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		base:    newBase(log, "product"),
		service: service,
	}
}

// List handles GET /api/products?search=&category=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := request.ProductQuery{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}

	products, err := h.service.List(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, err, "list products")
		return
	}

	utils.ResponseSuccess(w, "success", products)
}

// ListByCategory handles GET /api/products/category/{categoryName}
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListByCategoryName(r.Context(), chi.URLParam(r, "categoryName"))
	if err != nil {
		h.handleServiceError(w, err, "list products by category")
		return
	}

	utils.ResponseSuccess(w, "success", products)
}

// GetByID handles GET /api/products/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get product")
		return
	}

	utils.ResponseSuccess(w, "success", product)
}

// Create handles POST /api/products/admin
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req request.ProductRequest
	var image io.Reader

	if isMultipart(r) {
		file, err := formImage(r)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid multipart form", nil)
			return
		}
		if file != nil {
			defer file.Close()
			image = file
		}

		fields := map[string]string{}
		req.Name = r.FormValue("name")
		req.Image = r.FormValue("image")
		req.Description = r.FormValue("description")
		req.Category = r.FormValue("category")
		if v, ok := parseFloat(r.FormValue("price")); ok {
			req.Price = v
		} else {
			fields["price"] = "price must be a number"
		}
		if v, ok := parseInt(r.FormValue("countInStock")); ok {
			req.CountInStock = v
		} else {
			fields["countInStock"] = "countInStock must be a whole number"
		}
		if len(fields) > 0 {
			utils.ResponseBadRequest(w, "Validation failed", fields)
			return
		}
		if !validate(w, &req) {
			return
		}
	} else if !decode(w, r, &req) {
		return
	}

	product, err := h.service.Create(r.Context(), caller.ID, &req, image)
	if err != nil {
		h.handleServiceError(w, err, "create product")
		return
	}

	utils.ResponseCreated(w, "Product created", product)
}

// Update handles PUT /api/products/admin/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateProductRequest
	var image io.Reader

	if isMultipart(r) {
		file, err := formImage(r)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid multipart form", nil)
			return
		}
		if file != nil {
			defer file.Close()
			image = file
		}

		fields := map[string]string{}
		req.Name = formValue(r, "name")
		req.Image = formValue(r, "image")
		req.Description = formValue(r, "description")
		req.Category = formValue(r, "category")
		if raw := formValue(r, "price"); raw != nil {
			if v, ok := parseFloat(*raw); ok {
				req.Price = &v
			} else {
				fields["price"] = "price must be a number"
			}
		}
		if raw := formValue(r, "countInStock"); raw != nil {
			if v, ok := parseInt(*raw); ok {
				req.CountInStock = &v
			} else {
				fields["countInStock"] = "countInStock must be a whole number"
			}
		}
		if len(fields) > 0 {
			utils.ResponseBadRequest(w, "Validation failed", fields)
			return
		}
		if !validate(w, &req) {
			return
		}
	} else if !decode(w, r, &req) {
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req, image)
	if err != nil {
		h.handleServiceError(w, err, "update product")
		return
	}

	utils.ResponseSuccess(w, "Product updated", product)
}

// Delete handles DELETE /api/products/admin/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete product")
		return
	}

	utils.ResponseSuccess(w, "Product removed", nil)
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	return v, err == nil
}
