package wire

import (
	"kalamkart/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, rt routes) {
	// ==================== PUBLIC ROUTES (rate limited) ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.limit)

		r.Post("/api/users/register", authHandler.Register)
		r.Post("/api/users/login", authHandler.Login)
		r.Post("/api/admin/login", authHandler.AdminLogin)
		r.Post("/api/users/google-auth", authHandler.GoogleAuth)

		r.Post("/api/otp/send-otp", authHandler.SendOTP)
		r.Post("/api/otp/verify-otp", authHandler.VerifyOTP)

		r.Post("/api/users/forgot-password", authHandler.ForgotPassword)
		r.Post("/api/users/reset-password/{token}", authHandler.ResetPassword)
	})
}
