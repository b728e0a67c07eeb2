package occupancy

import (
	"context"
	"time"

	"pgmanager/database"
	occupancyRepo "pgmanager/database/repository/occupancy"
	"pgmanager/models"
	"pgmanager/services/activity"
)

// OccupancyService keeps tenants, beds and rooms consistent with each other.
type OccupancyService interface {
	// CheckIn creates the tenant and, when a bed or room is named, occupies it.
	CheckIn(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)
	// CheckOut deactivates the tenant and frees its bed and room slot.
	// Checking out an inactive tenant changes nothing.
	CheckOut(ctx context.Context, tenantID string) (*models.Tenant, error)
	// Transfer moves an active tenant to another bed.
	Transfer(ctx context.Context, tenantID string, req TransferRequest) (*models.Tenant, error)
}

type TransferRequest struct {
	BedID      string   `json:"bedId" binding:"required"`
	RoomID     string   `json:"roomId"`
	RentAmount *float64 `json:"rentAmount" binding:"omitempty,gte=0"`
}

// Notifier publishes an admin notification after a change commits.
type Notifier interface {
	Publish(ctx context.Context, n models.Notification)
}

// DefaultOccupancyService is the production implementation.
type DefaultOccupancyService struct {
	Tenants  occupancyRepo.TenantRepository
	Beds     occupancyRepo.BedRepository
	Rooms    occupancyRepo.RoomRepository
	PGs      PGReader
	UoW      database.UnitOfWork
	Activity activity.ActivityService
	Notifier Notifier
	Now      func() time.Time
}

// PGReader is the slice of the PG repository check-in needs.
type PGReader interface {
	GetByID(ctx context.Context, id string) (*models.PG, error)
}

func NewDefaultOccupancyService(
	tenants occupancyRepo.TenantRepository,
	beds occupancyRepo.BedRepository,
	rooms occupancyRepo.RoomRepository,
	pgs PGReader,
	uow database.UnitOfWork,
	act activity.ActivityService,
	notifier Notifier,
) *DefaultOccupancyService {
	return &DefaultOccupancyService{
		Tenants:  tenants,
		Beds:     beds,
		Rooms:    rooms,
		PGs:      pgs,
		UoW:      uow,
		Activity: act,
		Notifier: notifier,
		Now:      time.Now,
	}
}
