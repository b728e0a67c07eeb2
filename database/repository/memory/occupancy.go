package memoryRepo

import (
	"context"
	"time"

	occupancyRepo "pgmanager/database/repository/occupancy"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"
)

type BedRepo struct {
	*Repo[models.Bed, *models.Bed]
}

func NewBedRepo() *BedRepo {
	return &BedRepo{Repo: NewRepo[models.Bed, *models.Bed](resourceRepo.BedSpec)}
}

func (r *BedRepo) Occupy(ctx context.Context, bedID, tenantID string) error {
	found, changed := r.Mutate(bedID, func(b *models.Bed) bool {
		if !b.Assignable() {
			return false
		}
		b.Status = models.BedOccupied
		b.TenantID = tenantID
		return true
	})
	if !found {
		return utils.NotFound("bed %s not found", bedID)
	}
	if !changed {
		return utils.Conflict("bed %s is not available", bedID)
	}
	return nil
}

func (r *BedRepo) Vacate(ctx context.Context, bedID, tenantID string) error {
	r.Mutate(bedID, func(b *models.Bed) bool {
		if b.TenantID != tenantID {
			return false
		}
		b.Status = models.BedVacant
		b.TenantID = ""
		return true
	})
	return nil
}

type RoomRepo struct {
	*Repo[models.Room, *models.Room]
}

func NewRoomRepo() *RoomRepo {
	return &RoomRepo{Repo: NewRepo[models.Room, *models.Room](resourceRepo.RoomSpec)}
}

func (r *RoomRepo) IncrementOccupancy(ctx context.Context, roomID string) error {
	var status string
	found, changed := r.Mutate(roomID, func(room *models.Room) bool {
		status = room.Status
		if !room.IsActive || room.Status == models.RoomMaintenance || room.Full() {
			return false
		}
		room.OccupiedBeds++
		room.DeriveStatus()
		return true
	})
	switch {
	case !found:
		return utils.NotFound("room %s not found", roomID)
	case changed:
		return nil
	case status == models.RoomMaintenance:
		return utils.Conflict("room %s is under maintenance", roomID)
	default:
		return utils.Conflict("room %s is full", roomID)
	}
}

func (r *RoomRepo) DecrementOccupancy(ctx context.Context, roomID string) (bool, error) {
	found, changed := r.Mutate(roomID, func(room *models.Room) bool {
		if room.OccupiedBeds <= 0 {
			return false
		}
		room.OccupiedBeds--
		room.DeriveStatus()
		return true
	})
	if !found {
		return false, utils.NotFound("room %s not found", roomID)
	}
	return changed, nil
}

type TenantRepo struct {
	*Repo[models.Tenant, *models.Tenant]
}

func NewTenantRepo() *TenantRepo {
	return &TenantRepo{Repo: NewRepo[models.Tenant, *models.Tenant](resourceRepo.TenantSpec)}
}

func (r *TenantRepo) MarkLeft(ctx context.Context, tenantID string, at time.Time) (bool, error) {
	_, changed := r.Mutate(tenantID, func(t *models.Tenant) bool {
		if !t.IsActive {
			return false
		}
		t.IsActive = false
		t.Status = models.TenantLeft
		t.LeaveDate = &at
		return true
	})
	return changed, nil
}

func (r *TenantRepo) Reactivate(ctx context.Context, tenantID string) error {
	r.Mutate(tenantID, func(t *models.Tenant) bool {
		t.IsActive = true
		t.Status = models.TenantActive
		t.LeaveDate = nil
		return true
	})
	return nil
}

func (r *TenantRepo) SetPlacement(ctx context.Context, tenantID string, p occupancyRepo.Placement) error {
	found, _ := r.Mutate(tenantID, func(t *models.Tenant) bool {
		t.PGID, t.RoomID, t.BedID, t.RentAmount = p.PGID, p.RoomID, p.BedID, p.RentAmount
		return true
	})
	if !found {
		return utils.NotFound("tenant %s not found", tenantID)
	}
	return nil
}

func (r *TenantRepo) AddDocument(ctx context.Context, tenantID string, doc models.TenantDocument) error {
	found, _ := r.Mutate(tenantID, func(t *models.Tenant) bool {
		t.Documents = append(t.Documents, doc)
		return true
	})
	if !found {
		return utils.NotFound("tenant %s not found", tenantID)
	}
	return nil
}

func (r *TenantRepo) RemoveDocument(ctx context.Context, tenantID, publicID string) (*models.TenantDocument, error) {
	var removed *models.TenantDocument
	r.Mutate(tenantID, func(t *models.Tenant) bool {
		for i, d := range t.Documents {
			if d.PublicID == publicID {
				removed = &d
				t.Documents = append(t.Documents[:i], t.Documents[i+1:]...)
				return true
			}
		}
		return false
	})
	if removed == nil {
		return nil, utils.NotFound("document %s not found for tenant %s", publicID, tenantID)
	}
	return removed, nil
}

func (r *TenantRepo) SetKYCStatus(ctx context.Context, tenantID, status string) error {
	found, _ := r.Mutate(tenantID, func(t *models.Tenant) bool {
		t.KYCStatus = status
		return true
	})
	if !found {
		return utils.NotFound("tenant %s not found", tenantID)
	}
	return nil
}

var (
	_ occupancyRepo.BedRepository    = (*BedRepo)(nil)
	_ occupancyRepo.RoomRepository   = (*RoomRepo)(nil)
	_ occupancyRepo.TenantRepository = (*TenantRepo)(nil)
)
