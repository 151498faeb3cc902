package request

type CategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Image string `json:"image"` // or an uploaded file

}

type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Image *string `json:"image,omitempty" validate:"omitempty,min=1"`
}

type BulkCategoryRequest struct {
	Categories []CategoryRequest `json:"categories" validate:"required,min=1,dive"`
}

type ProductRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Image        string  `json:"image"`
	Description  string  `json:"description" validate:"required"`
	Category     string  `json:"category" validate:"required,objectid"`
	Price        float64 `json:"price" validate:"gte=0"`
	CountInStock int     `json:"countInStock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Image        *string  `json:"image,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Category     *string  `json:"category,omitempty" validate:"omitempty,objectid"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	CountInStock *int     `json:"countInStock,omitempty" validate:"omitempty,gte=0"`
}

type ProductQuery struct {
	Search   string
	Category string
}
