package dto

import (
	"time"

	"github.com/noah-isme/admin-audit-api/internal/models"
)

// UserListRequest defines filters for listing panel users.
type UserListRequest struct {
	Page           int
	PageSize       int
	Search         string
	Role           string
	IncludeDeleted bool
}

// UserResponse serializes user data for admin endpoints.
type UserResponse struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Gender    string     `json:"gender"`
	Role      string     `json:"role"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// NewUserResponse maps a user model into its API representation.
func NewUserResponse(user models.User) UserResponse {
	response := UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Gender:    string(user.Gender),
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.DeletedAt.Valid {
		deletedAt := user.DeletedAt.Time
		response.DeletedAt = &deletedAt
	}
	return response
}

// UserListResponse wraps a paginated user response.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// UserCreateRequest captures the payload for creating a user.
type UserCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Gender    string `json:"gender" validate:"omitempty,oneof=masculine feminine neutral"`
	Role      string `json:"role" validate:"omitempty,oneof=admin user"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// UserUpdateRequest captures partial update payloads for users.
type UserUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	Gender    *string `json:"gender" validate:"omitempty,oneof=masculine feminine neutral"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin user"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}
