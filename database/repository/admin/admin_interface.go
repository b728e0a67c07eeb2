package adminRepo

import (
	"context"

	"pgmanager/models"

	"go.mongodb.org/mongo-driver/bson"
)

// AdminRepository defines methods for admin data access.
type AdminRepository interface {
	// GetByEmail returns the admin including its password hash.
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	// GetByID returns the admin without its password hash.
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	// GetByIDWithSecret returns the admin including its password hash.
	GetByIDWithSecret(ctx context.Context, id string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	UpdateSetDocument(ctx context.Context, id string, set bson.M) error
	// AddDevice registers an FCM token for the admin.
	AddDevice(ctx context.Context, id, token string) error
	// RemoveDevices drops tokens FCM reported as invalid from every admin.
	RemoveDevices(ctx context.Context, tokens []string) error
	// DeviceTokens returns the FCM tokens of one admin, or of every active
	// admin when id is empty.
	DeviceTokens(ctx context.Context, id string) ([]string, error)
	Count(ctx context.Context) (int64, error)
	// InsertIfAbsent creates the admin unless one with the same id exists and
	// reports whether it was created.
	InsertIfAbsent(ctx context.Context, admin *models.Admin) (bool, error)
}
