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

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *request.UpdateProfileRequest) (*response.AuthResponse, error)
	UploadProfileImage(ctx context.Context, userID primitive.ObjectID, file io.Reader) (*response.ProfileImageResponse, error)
	DeleteProfileImage(ctx context.Context, userID primitive.ObjectID) error
}

type userService struct {
	repo   *repository.Repository
	tokens *utils.TokenManager
	media  media.Uploader
	now    clock
	log    *zap.Logger
}

func NewUserService(repo *repository.Repository, deps Deps, log *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		tokens: deps.Tokens,
		media:  deps.Media,
		now:    time.Now,
		log:    log.With(zap.String("service", "user")),
	}
}

func (s *userService) load(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, utils.ErrInternal("Failed to load user", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound("User not found")
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*response.UserResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *request.UpdateProfileRequest) (*response.AuthResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. Name
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	// 2. Email must stay unique
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			other, err := s.repo.User.FindByEmail(ctx, email)
			if err != nil {
				return nil, utils.ErrInternal("Failed to update profile", err)
			}
			if other != nil && other.ID != user.ID {
				return nil, utils.ErrConflict("Email already in use")
			}
			user.Email = email
		}
	}

	// 3. Password must change
	if req.Password != nil {
		if utils.CheckPasswordHash(*req.Password, user.PasswordHash) {
			return nil, utils.ErrValidation("New password must be different from the old password")
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, utils.ErrInternal("Failed to update profile", err)
		}
		user.PasswordHash = hashed
	}

	user.UpdatedAt = s.now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, utils.ErrConflict("Email already in use")
		}
		s.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", userID.Hex()))
		return nil, utils.ErrInternal("Failed to update profile", err)
	}

	// 4. Claims carry name and email, so hand back a fresh token
	token, _, err := s.tokens.Generate(user.ID.Hex(), user.Name, user.Email, user.Role)
	if err != nil {
		return nil, utils.ErrInternal("Failed to generate token", err)
	}

	s.log.Info("Profile updated", zap.String("user_id", userID.Hex()))
	resp := response.AuthToResponse(user, token)
	return &resp, nil
}

// ==================== PROFILE IMAGE ====================

func (s *userService) UploadProfileImage(ctx context.Context, userID primitive.ObjectID, file io.Reader) (*response.ProfileImageResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.media.Upload(ctx, file, media.FolderProfileImages)
	if err != nil {
		return nil, mediaError(err)
	}

	previous := user.ProfileImageID
	user.ProfileImage = uploaded.URL
	user.ProfileImageID = uploaded.PublicID
	user.UpdatedAt = s.now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to save profile image", zap.Error(err), zap.String("user_id", userID.Hex()))
		s.destroy(ctx, uploaded.PublicID)
		return nil, utils.ErrInternal("Failed to upload profile image", err)
	}

	s.destroy(ctx, previous)

	s.log.Info("Profile image uploaded", zap.String("user_id", userID.Hex()))
	return &response.ProfileImageResponse{ProfileImage: uploaded.URL}, nil
}

func (s *userService) DeleteProfileImage(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	previous := user.ProfileImageID
	user.ProfileImage = ""
	user.ProfileImageID = ""
	user.UpdatedAt = s.now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to clear profile image", zap.Error(err), zap.String("user_id", userID.Hex()))
		return utils.ErrInternal("Failed to delete profile image", err)
	}

	s.destroy(ctx, previous)
	return nil
}

// destroy removes media best-effort
func (s *userService) destroy(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.media.Destroy(ctx, publicID); err != nil {
		s.log.Warn("Failed to destroy media", zap.Error(err), zap.String("public_id", publicID))
	}
}

func mediaError(err error) error {
	if errors.Is(err, media.ErrNotConfigured) {
		return utils.ErrInternal("Image uploads are not available", err)
	}
	return utils.ErrUpstream("Image upload failed", err)
}
