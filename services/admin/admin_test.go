package admin

import (
	"context"
	"testing"
	"time"

	memoryRepo "pgmanager/database/repository/memory"
	"pgmanager/models"
	"pgmanager/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	utils.SetLogger(zap.NewNop())
	utils.ConfigureJWT("test-secret")
	m.Run()
}

func seedAdmin(t *testing.T, repo *memoryRepo.AdminRepo, id, email, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	a := &models.Admin{Name: "Owner", Email: email, Role: models.AdminRoleOwner, PasswordHash: string(hash), MustChangePassword: true}
	a.ID = id
	a.IsActive = active
	require.NoError(t, repo.Create(context.Background(), a))
}

func newService(t *testing.T) (*DefaultAdminService, *memoryRepo.AdminRepo) {
	t.Helper()
	repo := memoryRepo.NewAdminRepo()
	seedAdmin(t, repo, "admin-1", "owner@pg.test", "s3cret-pass", true)
	return NewDefaultAdminService(repo, utils.NewJSONCache(nil, utils.AuthCachePrefix, utils.AuthCacheTTL), 24*time.Hour), repo
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: " Owner@PG.test ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Empty(t, res.Admin.PasswordHash)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)

	claims, err := utils.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "owner@pg.test", claims.Email)

	stored, err := repo.GetByID(ctx, "admin-1")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	admin, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", admin.ID)
	assert.Empty(t, admin.PasswordHash)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo := newService(t)
	seedAdmin(t, repo, "admin-2", "off@pg.test", "s3cret-pass", false)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "owner@pg.test", Password: "wrong"})
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@pg.test", Password: "s3cret-pass"})
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))

	_, err = svc.Login(ctx, LoginRequest{Email: "off@pg.test", Password: "s3cret-pass"})
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not-a-token")
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))

	expired, err := utils.GenerateToken("admin-1", "owner@pg.test", -time.Minute)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, expired)
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))

	ghost, err := utils.GenerateToken("ghost", "ghost@pg.test", time.Hour)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
}

func TestRegister(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterRequest{Name: "Ravi", Email: "Ravi@PG.test", Password: "another-pass"})
	require.NoError(t, err)
	assert.Equal(t, "ravi@pg.test", admin.Email)
	assert.Equal(t, models.AdminRoleManager, admin.Role)
	assert.Empty(t, admin.PasswordHash)

	stored, err := repo.GetByEmail(ctx, "ravi@pg.test")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("another-pass")))

	_, err = svc.Register(ctx, RegisterRequest{Name: "Dup", Email: "owner@pg.test", Password: "another-pass"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestRegister_OwnerRoleNeedsOwnerCaller(t *testing.T) {
	svc, repo := newService(t)
	manager := &models.Admin{Name: "Mgr", Email: "mgr@pg.test", Role: models.AdminRoleManager}
	manager.ID = "admin-mgr"
	manager.IsActive = true
	require.NoError(t, repo.Create(context.Background(), manager))

	req := RegisterRequest{Name: "Second", Email: "second@pg.test", Password: "another-pass", Role: models.AdminRoleOwner}

	_, err := svc.Register(context.Background(), req)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	asManager := utils.WithAdminID(context.Background(), "admin-mgr")
	_, err = svc.Register(asManager, req)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
	_, err = repo.GetByEmail(context.Background(), "second@pg.test")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	staff, err := svc.Register(asManager, RegisterRequest{Name: "Desk", Email: "desk@pg.test", Password: "another-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.AdminRoleManager, staff.Role)

	owner, err := svc.Register(utils.WithAdminID(context.Background(), "admin-1"), req)
	require.NoError(t, err)
	assert.Equal(t, models.AdminRoleOwner, owner.Role)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "admin-1", ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "brand-new-pass"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	err = svc.ChangePassword(ctx, "admin-1", ChangePasswordRequest{CurrentPassword: "s3cret-pass", NewPassword: "s3cret-pass"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	require.NoError(t, svc.ChangePassword(ctx, "admin-1", ChangePasswordRequest{CurrentPassword: "s3cret-pass", NewPassword: "brand-new-pass"}))
	stored, err := repo.GetByIDWithSecret(ctx, "admin-1")
	require.NoError(t, err)
	assert.False(t, stored.MustChangePassword)

	_, err = svc.Login(ctx, LoginRequest{Email: "owner@pg.test", Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestRegisterDevice(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.RegisterDevice(ctx, "admin-1", "fcm-1"))
	require.NoError(t, svc.RegisterDevice(ctx, "admin-1", "fcm-1"))
	tokens, err := repo.DeviceTokens(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fcm-1"}, tokens)

	assert.True(t, utils.IsKind(svc.RegisterDevice(ctx, "admin-1", " "), utils.KindValidation))
	assert.True(t, utils.IsKind(svc.RegisterDevice(ctx, "ghost", "fcm-2"), utils.KindNotFound))
}
