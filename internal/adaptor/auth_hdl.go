package adaptor

import (
	"net/http"

	"kalamkart/internal/dto/request"
	"kalamkart/internal/usecase"
	"kalamkart/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	base
	service usecase.AuthService
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		base:    newBase(log, "auth"),
		service: service,
	}
}

// Register handles POST /api/users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	response, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "register")
		return
	}

	utils.ResponseCreated(w, "User registered successfully", response)
}

// Login handles POST /api/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	response, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", response)
}

// AdminLogin handles POST /api/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	response, err := h.service.AdminLogin(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "admin login")
		return
	}

	utils.ResponseSuccess(w, "Admin login successful", response)
}

// GoogleAuth handles POST /api/users/google-auth
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req request.GoogleAuthRequest
	if !decode(w, r, &req) {
		return
	}

	response, err := h.service.GoogleAuth(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "google auth")
		return
	}

	utils.ResponseSuccess(w, "Google login successful", response)
}

// SendOTP handles POST /api/otp/send-otp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.SendOTPRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.SendOTP(r.Context(), &req); err != nil {
		h.handleServiceError(w, err, "send OTP")
		return
	}

	utils.ResponseSuccess(w, "OTP sent successfully", nil)
}

// VerifyOTP handles POST /api/otp/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}

	response, err := h.service.VerifyOTP(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "verify OTP")
		return
	}

	utils.ResponseSuccess(w, "OTP verified successfully", response)
}

// ForgotPassword handles POST /api/users/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		h.handleServiceError(w, err, "forgot password")
		return
	}

	utils.ResponseSuccess(w, "Password reset link sent to your email", nil)
}

// ResetPassword handles POST /api/users/reset-password/{token}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		utils.ResponseBadRequest(w, "Reset token is required", nil)
		return
	}

	var req request.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, &req); err != nil {
		h.handleServiceError(w, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Password has been reset successfully", nil)
}
