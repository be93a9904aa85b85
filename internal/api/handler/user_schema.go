package handler

import (
	"time"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Detail string `json:"detail"`
}

// --- Request types ---

type tokenRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username"  validate:"required,min=3,max=50"`
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"max=100"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
}

type createUserRequest struct {
	Username string       `json:"username"  validate:"required,min=3,max=50"`
	Email    string       `json:"email"     validate:"required,email"`
	FullName string       `json:"full_name" validate:"max=100"`
	Password string       `json:"password"  validate:"required,min=8,max=72"`
	Role     *domain.Role `json:"role"`
}

// updateUserRequest uses pointers so absent fields stay nil; username is not
// editable.
type updateUserRequest struct {
	Email    *string      `json:"email"     validate:"omitempty,email"`
	FullName *string      `json:"full_name" validate:"omitempty,max=100"`
	Password *string      `json:"password"  validate:"omitempty,min=8,max=72"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
}

// --- Response types ---

type tokenUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	User         tokenUser `json:"user"`
	IsFirstLogin bool      `json:"is_first_login"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	LastLogin *time.Time  `json:"last_login"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listUsersResponse struct {
	Data       []userResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type auditEntryResponse struct {
	ID             string             `json:"id"`
	Action         domain.AuditAction `json:"action"`
	ActorUsername  string             `json:"actor_username"`
	TargetUsername string             `json:"target_username"`
	Detail         string             `json:"detail,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toTokenUser(u *domain.User) tokenUser {
	return tokenUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
