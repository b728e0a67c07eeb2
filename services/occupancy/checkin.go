package occupancy

import (
	"context"
	"fmt"

	"pgmanager/database"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// placement resolves the bed, room and PG named on the tenant, deriving
// the parents from the bed and rejecting inconsistent combinations. A full
// room passes when it is currentRoomID, since the tenant's own slot is reused.
func (s *DefaultOccupancyService) placement(ctx context.Context, t *models.Tenant, currentRoomID string) (*models.Bed, *models.Room, error) {
	var bed *models.Bed
	var room *models.Room

	if t.BedID != "" {
		b, err := s.Beds.GetByID(ctx, t.BedID)
		if err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return nil, nil, utils.Validation("bed %s does not exist", t.BedID)
			}
			return nil, nil, err
		}
		if !b.Assignable() {
			return nil, nil, utils.Conflict("bed %s is not available", b.BedNumber)
		}
		if t.RoomID != "" && t.RoomID != b.RoomID {
			return nil, nil, utils.Validation("bed %s is not in room %s", t.BedID, t.RoomID)
		}
		t.RoomID = b.RoomID
		bed = b
	}

	if t.RoomID != "" {
		r, err := s.Rooms.GetByID(ctx, t.RoomID)
		if err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return nil, nil, utils.Validation("room %s does not exist", t.RoomID)
			}
			return nil, nil, err
		}
		if !r.IsActive {
			return nil, nil, utils.Validation("room %s is not active", r.RoomNumber)
		}
		if r.Status == models.RoomMaintenance {
			return nil, nil, utils.Conflict("room %s is under maintenance", r.RoomNumber)
		}
		if r.Full() && r.ID != currentRoomID {
			return nil, nil, utils.Conflict("room %s is full", r.RoomNumber)
		}
		if t.PGID != "" && t.PGID != r.PGID {
			return nil, nil, utils.Validation("room %s is not in pg %s", t.RoomID, t.PGID)
		}
		t.PGID = r.PGID
		room = r
	}

	if room == nil && t.PGID != "" && s.PGs != nil {
		if _, err := s.PGs.GetByID(ctx, t.PGID); err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return nil, nil, utils.Validation("pg %s does not exist", t.PGID)
			}
			return nil, nil, err
		}
	}
	return bed, room, nil
}

func (s *DefaultOccupancyService) CheckIn(ctx context.Context, t *models.Tenant) (*models.Tenant, error) {
	bed, room, err := s.placement(ctx, t, "")
	if err != nil {
		return nil, err
	}

	now := s.Now()
	t.ID = uuid.New().String()
	t.Detach()
	t.Stamp(now)
	t.Activate()
	t.Status = models.TenantActive
	t.LeaveDate = nil
	t.Documents = nil
	if t.KYCStatus == "" {
		t.KYCStatus = models.KYCPending
	}
	if t.JoinDate.IsZero() {
		t.JoinDate = now
	}
	if t.RentAmount == 0 {
		switch {
		case bed != nil && bed.Rent > 0:
			t.RentAmount = bed.Rent
		case room != nil:
			t.RentAmount = room.Rent
		}
	}
	t.RentAmount = models.Money(t.RentAmount)
	t.DepositAmount = models.Money(t.DepositAmount)

	err = s.UoW.Do(ctx, func(ctx context.Context, tx database.Tx) error {
		if err := s.Tenants.Create(ctx, t); err != nil {
			return err
		}
		tx.OnRollback(func(ctx context.Context) error { return s.Tenants.Delete(ctx, t.ID) })

		if bed != nil {
			if err := s.Beds.Occupy(ctx, bed.ID, t.ID); err != nil {
				return err
			}
			tx.OnRollback(func(ctx context.Context) error { return s.Beds.Vacate(ctx, bed.ID, t.ID) })
		}
		if room != nil {
			if err := s.Rooms.IncrementOccupancy(ctx, room.ID); err != nil {
				return err
			}
			tx.OnRollback(func(ctx context.Context) error { return s.release(ctx, room.ID) })
		}
		_, err := s.Activity.Record(ctx, models.Activity{
			Type:        "tenant",
			Action:      activity.ActionCheckIn,
			Description: fmt.Sprintf("%s checked in", t.Name),
			EntityType:  "tenant",
			EntityID:    t.ID,
			Metadata:    map[string]any{"bedId": t.BedID, "roomId": t.RoomID, "pgId": t.PGID},
		})
		return err
	})
	if err != nil {
		utils.GetLogger().Warn("check-in failed", zap.String("bedID", t.BedID), zap.String("roomID", t.RoomID), zap.Error(err))
		return nil, err
	}

	s.notify(ctx, "Tenant checked in", fmt.Sprintf("%s checked in", t.Name), t.ID)
	return s.fresh(ctx, t), nil
}

func (s *DefaultOccupancyService) notify(ctx context.Context, title, message, tenantID string) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Publish(ctx, models.Notification{
		Title:   title,
		Message: message,
		Type:    "tenant",
		Data:    map[string]string{"tenantId": tenantID},
	})
}

func (s *DefaultOccupancyService) fresh(ctx context.Context, t *models.Tenant) *models.Tenant {
	got, err := s.Tenants.GetByID(ctx, t.ID)
	if err != nil {
		return t
	}
	return got
}
