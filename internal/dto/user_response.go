package dto

import (
	"time"

	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
)

// UserResponse is the client-facing view of a user. No credential field is
// ever exposed here.
type UserResponse struct {
	UserID    string    `json:"userID"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Locale    string    `json:"locale"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToUserResponse converts a domain User to a UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Locale:    user.Locale,
		Provider:  string(user.Provider),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToAuthResponse wraps a user in the authenticated envelope returned by the
// session-issuing endpoints.
func ToAuthResponse(user *domain.User) AuthResponse {
	return AuthResponse{
		Status: "authenticated",
		User:   ToUserResponse(user),
	}
}
