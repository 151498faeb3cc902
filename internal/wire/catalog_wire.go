package wire

import (
	"kalamkart/internal/adaptor"
	"kalamkart/pkg/policy"

	"github.com/go-chi/chi/v5"
)

func wireCatalog(r chi.Router, categoryHandler *adaptor.CategoryHandler, productHandler *adaptor.ProductHandler, rt routes) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/categories", categoryHandler.GetAll)

	r.Get("/api/products", productHandler.List)
	r.Get("/api/products/category/{categoryName}", productHandler.ListByCategory)
	r.Get("/api/products/{id}", productHandler.GetByID)

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Use(rt.require(policy.ManageCatalog))

		r.Post("/api/categories", categoryHandler.Create)
		r.Post("/api/categories/bulk", categoryHandler.BulkCreate)
		r.Put("/api/categories/{id}", categoryHandler.Update)
		r.Delete("/api/categories/{id}", categoryHandler.Delete)

		r.Post("/api/products/admin", productHandler.Create)
		r.Put("/api/products/admin/{id}", productHandler.Update)
		r.Delete("/api/products/admin/{id}", productHandler.Delete)
	})
}
