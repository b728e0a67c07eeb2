package occupancyRepo

import (
	"context"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
)

// BedRepository holds the conditional bed writes used by check-in and check-out.
type BedRepository interface {
	resourceRepo.Repository[models.Bed]
	// Occupy assigns the bed to tenantID if it is active and vacant or reserved.
	Occupy(ctx context.Context, bedID, tenantID string) error
	// Vacate frees the bed if it is held by tenantID. A bed held by someone
	// else, or by nobody, is left untouched.
	Vacate(ctx context.Context, bedID, tenantID string) error
}

// RoomRepository keeps occupiedBeds and the derived room status in step.
type RoomRepository interface {
	resourceRepo.Repository[models.Room]
	// IncrementOccupancy adds one occupant while the room has free capacity
	// and is not under maintenance.
	IncrementOccupancy(ctx context.Context, roomID string) error
	// DecrementOccupancy removes one occupant, never going below zero. It
	// reports whether an occupant was removed.
	DecrementOccupancy(ctx context.Context, roomID string) (bool, error)
}

type TenantRepository interface {
	resourceRepo.Repository[models.Tenant]
	// MarkLeft deactivates an active tenant and reports whether it changed anything.
	MarkLeft(ctx context.Context, tenantID string, at time.Time) (bool, error)
	// Reactivate undoes MarkLeft.
	Reactivate(ctx context.Context, tenantID string) error
	// SetPlacement moves the tenant to another bed.
	SetPlacement(ctx context.Context, tenantID string, p Placement) error
	AddDocument(ctx context.Context, tenantID string, doc models.TenantDocument) error
	// RemoveDocument pulls the document with publicID and returns it.
	RemoveDocument(ctx context.Context, tenantID, publicID string) (*models.TenantDocument, error)
	SetKYCStatus(ctx context.Context, tenantID, status string) error
}

// Placement is where a tenant lives.
type Placement struct {
	PGID       string
	RoomID     string
	BedID      string
	RentAmount float64
}
