package wire

import (
	"kalamkart/internal/adaptor"
	"kalamkart/pkg/policy"

	"github.com/go-chi/chi/v5"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, rt routes) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Use(rt.require(policy.Shop))

		r.Get("/api/users/profile", userHandler.GetProfile)
		r.Put("/api/users/profile", userHandler.UpdateProfile)
		r.Put("/api/users/profile/upload", userHandler.UploadImage)
		r.Delete("/api/users/profile/image", userHandler.DeleteImage)
	})
}
