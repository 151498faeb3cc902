package adaptor

import (
	"net/http"

	"kalamkart/internal/dto/request"
	"kalamkart/internal/usecase"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	base
	service usecase.UserService
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		base:    newBase(log, "user"),
		service: service,
	}
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(r.Context(), caller.ID)
	if err != nil {
		h.handleServiceError(w, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", user)
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	response, err := h.service.UpdateProfile(r.Context(), caller.ID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated successfully", response)
}

// UploadImage handles PUT /api/users/profile/upload (multipart "image")
func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	file, err := formImage(r)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid multipart form", nil)
		return
	}
	if file == nil {
		utils.ResponseBadRequest(w, "No file uploaded", nil)
		return
	}
	defer file.Close()

	response, err := h.service.UploadProfileImage(r.Context(), caller.ID, file)
	if err != nil {
		h.handleServiceError(w, err, "upload profile image")
		return
	}

	utils.ResponseSuccess(w, "Profile image uploaded", response)
}

// DeleteImage handles DELETE /api/users/profile/image
func (h *UserHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProfileImage(r.Context(), caller.ID); err != nil {
		h.handleServiceError(w, err, "delete profile image")
		return
	}

	utils.ResponseSuccess(w, "Profile image removed", nil)
}
