package response

import (
	"time"

	"kalamkart/internal/data/entity"
)

// AuthResponse is returned by every sign-in path
type AuthResponse struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"isAdmin"`
	ProfileImage string `json:"profileImage,omitempty"`
	Token        string `json:"token"`
}

type UserResponse struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsAdmin      bool      `json:"isAdmin"`
	IsGoogleUser bool      `json:"isGoogleUser"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RoleResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ProfileImageResponse struct {
	ProfileImage string `json:"profileImage"`
}

// Helper converters
func AuthToResponse(user *entity.User, token string) AuthResponse {
	return AuthResponse{
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin(),
		ProfileImage: user.ProfileImage,
		Token:        token,
	}
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		IsAdmin:      user.IsAdmin(),
		IsGoogleUser: user.IsGoogleUser,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func UsersToResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserToResponse(u))
	}
	return out
}

func RoleToResponse(user *entity.User) RoleResponse {
	return RoleResponse{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
