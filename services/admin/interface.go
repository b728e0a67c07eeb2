package admin

import (
	"context"
	"time"

	adminRepo "pgmanager/database/repository/admin"
	"pgmanager/models"
	"pgmanager/utils"
)

// AdminService authenticates dashboard operators and manages their accounts.
type AdminService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	// Authenticate verifies a session token and resolves it to an active admin.
	Authenticate(ctx context.Context, token string) (*models.Admin, error)
	GetAdmin(ctx context.Context, adminID string) (*models.Admin, error)
	Register(ctx context.Context, req RegisterRequest) (*models.Admin, error)
	ChangePassword(ctx context.Context, adminID string, req ChangePasswordRequest) error
	RegisterDevice(ctx context.Context, adminID, fcmToken string) error
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=owner manager"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Admin     *models.Admin `json:"admin"`
}

// DefaultAdminService is the production implementation.
type DefaultAdminService struct {
	Repo     adminRepo.AdminRepository
	Cache    *utils.JSONCache
	TokenTTL time.Duration
	Now      func() time.Time
}

func NewDefaultAdminService(repo adminRepo.AdminRepository, cache *utils.JSONCache, tokenTTL time.Duration) *DefaultAdminService {
	return &DefaultAdminService{Repo: repo, Cache: cache, TokenTTL: tokenTTL, Now: time.Now}
}
