package memoryRepo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	adminRepo "pgmanager/database/repository/admin"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// AdminRepo is an in-memory adminRepo.AdminRepository.
type AdminRepo struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func NewAdminRepo() *AdminRepo {
	return &AdminRepo{admins: map[string]*models.Admin{}}
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.admins {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, utils.NotFound("admin not found")
}

func (r *AdminRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	a, err := r.GetByIDWithSecret(ctx, id)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = ""
	return a, nil
}

func (r *AdminRepo) GetByIDWithSecret(ctx context.Context, id string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, utils.NotFound("admin not found")
	}
	return clone(a), nil
}

func (r *AdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	for _, a := range r.admins {
		if a.Email == admin.Email || a.ID == admin.ID {
			return utils.Conflict("an admin with email %s already exists", admin.Email)
		}
	}
	r.admins[admin.ID] = clone(admin)
	return nil
}

func (r *AdminRepo) UpdateSetDocument(ctx context.Context, id string, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return utils.NotFound("admin %s not found", id)
	}
	fields := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	out, err := withFields(a, fields)
	if err != nil {
		return err
	}
	r.admins[id] = out
	return nil
}

func (r *AdminRepo) AddDevice(ctx context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return utils.NotFound("admin %s not found", id)
	}
	if !slices.Contains(a.FCMTokens, token) {
		a.FCMTokens = append(a.FCMTokens, token)
	}
	return nil
}

func (r *AdminRepo) RemoveDevices(ctx context.Context, tokens []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		a.FCMTokens = slices.DeleteFunc(a.FCMTokens, func(t string) bool {
			return slices.Contains(tokens, t)
		})
	}
	return nil
}

func (r *AdminRepo) DeviceTokens(ctx context.Context, id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tokens []string
	for _, a := range r.admins {
		if a.IsActive && (id == "" || a.ID == id) {
			tokens = append(tokens, a.FCMTokens...)
		}
	}
	return tokens, nil
}

func (r *AdminRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.admins)), nil
}

func (r *AdminRepo) InsertIfAbsent(ctx context.Context, admin *models.Admin) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[admin.ID]; ok {
		return false, nil
	}
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	r.admins[admin.ID] = clone(admin)
	return true, nil
}

var _ adminRepo.AdminRepository = (*AdminRepo)(nil)
