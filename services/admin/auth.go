package admin

import (
	"context"
	"strings"

	"pgmanager/models"
	"pgmanager/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultAdminService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	logger := utils.GetLogger()

	admin, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.Unauthorized("invalid email or password")
		}
		logger.Error("Login: failed to fetch admin", zap.Error(err))
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.Unauthorized("invalid email or password")
	}
	if !admin.IsActive {
		return nil, utils.Unauthorized("account is disabled")
	}

	now := s.Now()
	token, err := utils.GenerateToken(admin.ID, admin.Email, s.TokenTTL)
	if err != nil {
		return nil, utils.Internal(err, "failed to issue token")
	}
	if err := s.Repo.UpdateSetDocument(ctx, admin.ID, bson.M{"lastLoginAt": now}); err != nil {
		logger.Warn("Login: failed to record last login", zap.String("adminID", admin.ID), zap.Error(err))
	}
	admin.LastLoginAt = &now
	admin.PasswordHash = ""

	logger.Info("Admin logged in", zap.String("adminID", admin.ID))
	return &AuthResult{Token: token, ExpiresAt: now.Add(s.TokenTTL), Admin: admin}, nil
}

func (s *DefaultAdminService) Authenticate(ctx context.Context, token string) (*models.Admin, error) {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, utils.Unauthorized("invalid or expired token")
	}
	admin, err := s.GetAdmin(ctx, claims.Subject)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.Unauthorized("admin no longer exists")
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, utils.Unauthorized("account is disabled")
	}
	return admin, nil
}

// GetAdmin reads through the identity cache.
func (s *DefaultAdminService) GetAdmin(ctx context.Context, adminID string) (*models.Admin, error) {
	var cached models.Admin
	if s.Cache.Get(ctx, adminID, &cached) && cached.ID == adminID {
		return &cached, nil
	}
	admin, err := s.Repo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	admin.PasswordHash = ""
	s.Cache.Set(ctx, adminID, admin)
	return admin, nil
}

func (s *DefaultAdminService) Register(ctx context.Context, req RegisterRequest) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Internal(err, "failed to hash password")
	}
	role := req.Role
	if role == "" {
		role = models.AdminRoleManager
	}
	if role == models.AdminRoleOwner {
		if err := s.requireOwner(ctx); err != nil {
			return nil, err
		}
	}
	admin := &models.Admin{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		Role:         role,
		PasswordHash: string(hash),
	}
	admin.ID = uuid.New().String()
	admin.IsActive = true
	admin.Stamp(s.Now())
	if err := s.Repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	admin.PasswordHash = ""
	utils.GetLogger().Info("Admin registered", zap.String("adminID", admin.ID), zap.String("by", utils.AdminIDFrom(ctx)))
	return admin, nil
}

// requireOwner rejects callers who are not owners.
func (s *DefaultAdminService) requireOwner(ctx context.Context) error {
	callerID := utils.AdminIDFrom(ctx)
	if callerID == "" {
		return utils.Forbidden("only owners can create owner accounts")
	}
	caller, err := s.GetAdmin(ctx, callerID)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return utils.Forbidden("only owners can create owner accounts")
		}
		return err
	}
	if caller.Role != models.AdminRoleOwner {
		return utils.Forbidden("only owners can create owner accounts")
	}
	return nil
}

func (s *DefaultAdminService) ChangePassword(ctx context.Context, adminID string, req ChangePasswordRequest) error {
	admin, err := s.Repo.GetByIDWithSecret(ctx, adminID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return utils.Validation("current password is incorrect")
	}
	if req.CurrentPassword == req.NewPassword {
		return utils.Validation("new password must differ from the current one")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.Internal(err, "failed to hash password")
	}
	if err := s.Repo.UpdateSetDocument(ctx, adminID, bson.M{
		"passwordHash":       string(hash),
		"mustChangePassword": false,
	}); err != nil {
		return err
	}
	s.Cache.Delete(ctx, adminID)
	return nil
}

func (s *DefaultAdminService) RegisterDevice(ctx context.Context, adminID, fcmToken string) error {
	fcmToken = strings.TrimSpace(fcmToken)
	if fcmToken == "" {
		return utils.Validation("fcmToken is required")
	}
	return s.Repo.AddDevice(ctx, adminID, fcmToken)
}
