package response

import (
	"time"

	"kalamkart/internal/data/entity"
)

type CategoryResponse struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BulkCategoryResponse struct {
	Created []CategoryResponse `json:"created"`
	Skipped []string           `json:"skipped"`
}

type ReviewResponse struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminReviewResponse flattens a review with the product it belongs to
type AdminReviewResponse struct {
	ReviewResponse
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

type ProductResponse struct {
	ID           string           `json:"_id"`
	Name         string           `json:"name"`
	Image        string           `json:"image"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	CategoryName string           `json:"categoryName"`
	Price        float64          `json:"price"`
	CountInStock int              `json:"countInStock"`
	CreatedBy    string           `json:"createdBy,omitempty"`
	Reviews      []ReviewResponse `json:"reviews"`
	NumReviews   int              `json:"numReviews"`
	Rating       float64          `json:"rating"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Helper converters
func CategoryToResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.Hex(),
		Name:      c.Name,
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func CategoriesToResponse(categories []*entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryToResponse(c))
	}
	return out
}

func ReviewToResponse(r *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID.Hex(),
		User:      r.UserID.Hex(),
		Name:      r.Name,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func ReviewsToResponse(reviews []entity.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ReviewToResponse(&reviews[i]))
	}
	return out
}

func ProductToResponse(p *entity.Product, categoryName string) ProductResponse {
	resp := ProductResponse{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Image:        p.Image,
		Description:  p.Description,
		Category:     p.CategoryID.Hex(),
		CategoryName: categoryName,
		Price:        p.Price,
		CountInStock: p.CountInStock,
		Reviews:      ReviewsToResponse(p.Reviews),
		NumReviews:   p.NumReviews,
		Rating:       p.Rating,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	if !p.CreatedBy.IsZero() {
		resp.CreatedBy = p.CreatedBy.Hex()
	}
	return resp
}
