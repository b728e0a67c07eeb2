package occupancy

import (
	"context"
	"errors"
	"fmt"

	"pgmanager/database"
	occupancyRepo "pgmanager/database/repository/occupancy"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/utils"

	"go.uber.org/zap"
)

// errAlreadyLeft aborts a check-out that lost the race to another one.
var errAlreadyLeft = errors.New("tenant already checked out")

func (s *DefaultOccupancyService) CheckOut(ctx context.Context, tenantID string) (*models.Tenant, error) {
	t, err := s.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return t, nil
	}

	// Only free a bed that the tenant actually holds.
	holdsBed := false
	if t.BedID != "" {
		bed, err := s.Beds.GetByID(ctx, t.BedID)
		switch {
		case err == nil:
			holdsBed = bed.TenantID == t.ID
		case !utils.IsKind(err, utils.KindNotFound):
			return nil, err
		}
	}

	now := s.Now()
	err = s.UoW.Do(ctx, func(ctx context.Context, tx database.Tx) error {
		changed, err := s.Tenants.MarkLeft(ctx, t.ID, now)
		if err != nil {
			return err
		}
		if !changed {
			return errAlreadyLeft
		}
		tx.OnRollback(func(ctx context.Context) error { return s.Tenants.Reactivate(ctx, t.ID) })

		if holdsBed {
			if err := s.Beds.Vacate(ctx, t.BedID, t.ID); err != nil {
				return err
			}
			tx.OnRollback(func(ctx context.Context) error { return s.Beds.Occupy(ctx, t.BedID, t.ID) })
		}
		if t.RoomID != "" {
			freed, err := s.Rooms.DecrementOccupancy(ctx, t.RoomID)
			if err != nil && !utils.IsKind(err, utils.KindNotFound) {
				return err
			}
			if freed {
				tx.OnRollback(func(ctx context.Context) error { return s.Rooms.IncrementOccupancy(ctx, t.RoomID) })
			}
		}
		_, err = s.Activity.Record(ctx, models.Activity{
			Type:        "tenant",
			Action:      activity.ActionCheckOut,
			Description: fmt.Sprintf("%s checked out", t.Name),
			EntityType:  "tenant",
			EntityID:    t.ID,
			Metadata:    map[string]any{"bedId": t.BedID, "roomId": t.RoomID},
		})
		return err
	})
	if err != nil && !errors.Is(err, errAlreadyLeft) {
		utils.GetLogger().Warn("check-out failed", zap.String("tenantID", t.ID), zap.Error(err))
		return nil, err
	}
	if err == nil {
		s.notify(ctx, "Tenant checked out", fmt.Sprintf("%s checked out", t.Name), t.ID)
	}
	return s.fresh(ctx, t), nil
}

func (s *DefaultOccupancyService) Transfer(ctx context.Context, tenantID string, req TransferRequest) (*models.Tenant, error) {
	t, err := s.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, utils.Conflict("tenant %s has checked out", t.Name)
	}
	if req.BedID == t.BedID {
		return nil, utils.Validation("tenant is already in bed %s", req.BedID)
	}

	target := &models.Tenant{BedID: req.BedID, RoomID: req.RoomID}
	bed, room, err := s.placement(ctx, target, t.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, utils.Validation("bed %s is not assigned to a room", req.BedID)
	}
	sameRoom := room.ID == t.RoomID

	old := occupancyRepo.Placement{PGID: t.PGID, RoomID: t.RoomID, BedID: t.BedID, RentAmount: t.RentAmount}
	next := occupancyRepo.Placement{PGID: target.PGID, RoomID: target.RoomID, BedID: bed.ID, RentAmount: t.RentAmount}
	if req.RentAmount != nil {
		next.RentAmount = models.Money(*req.RentAmount)
	}

	err = s.UoW.Do(ctx, func(ctx context.Context, tx database.Tx) error {
		if err := s.Beds.Occupy(ctx, bed.ID, t.ID); err != nil {
			return err
		}
		tx.OnRollback(func(ctx context.Context) error { return s.Beds.Vacate(ctx, bed.ID, t.ID) })

		if !sameRoom {
			if err := s.Rooms.IncrementOccupancy(ctx, room.ID); err != nil {
				return err
			}
			tx.OnRollback(func(ctx context.Context) error { return s.release(ctx, room.ID) })
			if old.RoomID != "" {
				freed, err := s.Rooms.DecrementOccupancy(ctx, old.RoomID)
				if err != nil && !utils.IsKind(err, utils.KindNotFound) {
					return err
				}
				if freed {
					tx.OnRollback(func(ctx context.Context) error { return s.Rooms.IncrementOccupancy(ctx, old.RoomID) })
				}
			}
		}
		if old.BedID != "" {
			if err := s.Beds.Vacate(ctx, old.BedID, t.ID); err != nil {
				return err
			}
			tx.OnRollback(func(ctx context.Context) error { return s.Beds.Occupy(ctx, old.BedID, t.ID) })
		}
		if err := s.Tenants.SetPlacement(ctx, t.ID, next); err != nil {
			return err
		}
		tx.OnRollback(func(ctx context.Context) error { return s.Tenants.SetPlacement(ctx, t.ID, old) })

		_, err := s.Activity.Record(ctx, models.Activity{
			Type:        "tenant",
			Action:      activity.ActionTransfer,
			Description: fmt.Sprintf("%s moved to bed %s", t.Name, bed.BedNumber),
			EntityType:  "tenant",
			EntityID:    t.ID,
			Metadata:    map[string]any{"fromBedId": old.BedID, "toBedId": next.BedID},
		})
		return err
	})
	if err != nil {
		utils.GetLogger().Warn("transfer failed", zap.String("tenantID", t.ID), zap.Error(err))
		return nil, err
	}
	return s.fresh(ctx, t), nil
}

// release undoes an occupancy increment during rollback.
func (s *DefaultOccupancyService) release(ctx context.Context, roomID string) error {
	_, err := s.Rooms.DecrementOccupancy(ctx, roomID)
	return err
}
