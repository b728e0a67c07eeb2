package resource

import (
	"context"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// Catalog builds the definitions of every resource. The hooks look up
// related documents through the repositories it holds.
type Catalog struct {
	PGs     resourceRepo.Repository[models.PG]
	Floors  resourceRepo.Repository[models.Floor]
	Rooms   resourceRepo.Repository[models.Room]
	Beds    resourceRepo.Repository[models.Bed]
	Tenants resourceRepo.Repository[models.Tenant]
	Now     func() time.Time
}

func (c *Catalog) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// requireActive fetches a referenced document and rejects missing or
// deactivated ones as a validation failure of the request that named it.
func requireActive[T any](ctx context.Context, repo resourceRepo.Repository[T], what, id string, active func(*T) bool) (*T, error) {
	if id == "" {
		return nil, utils.Validation("%s is required", what)
	}
	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.Validation("%s %s does not exist", what, id)
		}
		return nil, err
	}
	if active != nil && !active(doc) {
		return nil, utils.Validation("%s %s is not active", what, id)
	}
	return doc, nil
}

func (c *Catalog) PG() Definition[models.PG] {
	return Definition[models.PG]{
		Spec:      resourceRepo.PGSpec,
		Filters:   map[string]string{"city": "city"},
		Protected: []string{"isActive"},
	}
}

func (c *Catalog) Floor() Definition[models.Floor] {
	checkPG := func(ctx context.Context, f *models.Floor) error {
		_, err := requireActive(ctx, c.PGs, "pg", f.PGID, func(p *models.PG) bool { return p.IsActive })
		return err
	}
	return Definition[models.Floor]{
		Spec:      resourceRepo.FloorSpec,
		Filters:   map[string]string{"pgId": "pgId"},
		Protected: []string{"isActive"},
		Hooks: Hooks[models.Floor]{
			BeforeCreate: checkPG,
			BeforeUpdate: func(ctx context.Context, old, merged *models.Floor) error {
				if merged.PGID == old.PGID {
					return nil
				}
				return checkPG(ctx, merged)
			},
		},
	}
}

func (c *Catalog) activeBeds(ctx context.Context, roomID string) (int64, error) {
	return c.Beds.Count(ctx, bson.M{"roomId": roomID, "isActive": true})
}

func (c *Catalog) Room() Definition[models.Room] {
	placeOnFloor := func(ctx context.Context, r *models.Room) error {
		floor, err := requireActive(ctx, c.Floors, "floor", r.FloorID, func(f *models.Floor) bool { return f.IsActive })
		if err != nil {
			return err
		}
		r.PGID = floor.PGID
		return nil
	}
	return Definition[models.Room]{
		Spec:      resourceRepo.RoomSpec,
		Filters:   map[string]string{"pgId": "pgId", "floorId": "floorId", "status": "status", "roomType": "roomType"},
		Protected: []string{"isActive", "pgId", "occupiedBeds"},
		Pinned:    []string{"occupiedBeds", "status"},
		Hooks: Hooks[models.Room]{
			BeforeCreate: func(ctx context.Context, r *models.Room) error {
				if err := placeOnFloor(ctx, r); err != nil {
					return err
				}
				r.OccupiedBeds = 0
				if r.Status != models.RoomMaintenance {
					r.Status = models.RoomAvailable
				}
				return nil
			},
			BeforeUpdate: func(ctx context.Context, old, merged *models.Room) error {
				merged.OccupiedBeds = old.OccupiedBeds
				merged.PGID = old.PGID
				if merged.FloorID != old.FloorID {
					if err := placeOnFloor(ctx, merged); err != nil {
						return err
					}
				}
				if merged.Capacity < old.OccupiedBeds {
					return utils.Validation("capacity %d is below the %d occupied beds", merged.Capacity, old.OccupiedBeds)
				}
				if merged.Capacity < old.Capacity {
					n, err := c.activeBeds(ctx, old.ID)
					if err != nil {
						return err
					}
					if int64(merged.Capacity) < n {
						return utils.Validation("capacity %d is below the %d beds in the room", merged.Capacity, n)
					}
				}
				enteringOrLeaving := (merged.Status == models.RoomMaintenance) != (old.Status == models.RoomMaintenance)
				if enteringOrLeaving && old.OccupiedBeds > 0 {
					return utils.Conflict("room %s has occupants, maintenance can only change while it is empty", old.RoomNumber)
				}
				if merged.Status != models.RoomMaintenance {
					merged.Status = models.RoomAvailable
					merged.DeriveStatus()
				}
				return nil
			},
			BeforeDelete: func(ctx context.Context, r *models.Room) error {
				if r.OccupiedBeds > 0 {
					return utils.Conflict("room %s still has %d occupants", r.RoomNumber, r.OccupiedBeds)
				}
				return nil
			},
		},
	}
}

func (c *Catalog) Bed() Definition[models.Bed] {
	placeInRoom := func(ctx context.Context, b *models.Bed) error {
		room, err := requireActive(ctx, c.Rooms, "room", b.RoomID, func(r *models.Room) bool { return r.IsActive })
		if err != nil {
			return err
		}
		n, err := c.activeBeds(ctx, room.ID)
		if err != nil {
			return err
		}
		if n >= int64(room.Capacity) {
			return utils.Conflict("room %s already has %d of %d beds", room.RoomNumber, n, room.Capacity)
		}
		b.PGID = room.PGID
		return nil
	}
	return Definition[models.Bed]{
		Spec:      resourceRepo.BedSpec,
		Filters:   map[string]string{"pgId": "pgId", "roomId": "roomId", "status": "status"},
		Protected: []string{"isActive", "pgId", "tenantId"},
		Pinned:    []string{"tenantId", "status"},
		Hooks: Hooks[models.Bed]{
			BeforeCreate: func(ctx context.Context, b *models.Bed) error {
				switch b.Status {
				case "":
					b.Status = models.BedVacant
				case models.BedOccupied:
					return utils.Validation("beds become occupied through tenant check-in")
				}
				b.TenantID = ""
				return placeInRoom(ctx, b)
			},
			BeforeUpdate: func(ctx context.Context, old, merged *models.Bed) error {
				merged.TenantID = old.TenantID
				merged.PGID = old.PGID
				if old.Status == models.BedOccupied {
					if merged.Status != models.BedOccupied {
						return utils.Conflict("bed %s is occupied, check the tenant out first", old.BedNumber)
					}
					if merged.RoomID != old.RoomID {
						return utils.Conflict("bed %s is occupied and cannot move rooms", old.BedNumber)
					}
					return nil
				}
				if merged.Status == models.BedOccupied {
					return utils.Validation("beds become occupied through tenant check-in")
				}
				if merged.RoomID != old.RoomID {
					return placeInRoom(ctx, merged)
				}
				return nil
			},
			BeforeDelete: func(ctx context.Context, b *models.Bed) error {
				if b.Status == models.BedOccupied {
					return utils.Conflict("bed %s is occupied, check the tenant out first", b.BedNumber)
				}
				return nil
			},
		},
	}
}

// Tenant covers list, get and update. Check-in and check-out go through the
// occupancy service.
func (c *Catalog) Tenant() Definition[models.Tenant] {
	return Definition[models.Tenant]{
		Spec:      resourceRepo.TenantSpec,
		Filters:   map[string]string{"pgId": "pgId", "roomId": "roomId", "bedId": "bedId", "status": "status", "kycStatus": "kycStatus"},
		Protected: []string{"isActive", "status", "pgId", "roomId", "bedId", "leaveDate", "documents", "kycStatus"},
		Pinned:    []string{"isActive", "status", "roomId", "bedId"},
	}
}

// Billing covers list, get and update. Creation and deletion go through the
// ledger service.
func (c *Catalog) Billing() Definition[models.Billing] {
	return Definition[models.Billing]{
		Spec:      resourceRepo.BillingSpec,
		Filters:   map[string]string{"tenantId": "tenantId", "pgId": "pgId", "status": "status", "billingMonth": "billingMonth"},
		Protected: []string{"tenantId", "pgId", "billNumber", "paidAmount", "dueAmount", "status", "autoGenerated"},
		Pinned:    []string{"paidAmount", "dueAmount", "status"},
		Hooks: Hooks[models.Billing]{
			BeforeUpdate: func(ctx context.Context, old, merged *models.Billing) error {
				merged.PaidAmount = old.PaidAmount
				merged.Reconcile(c.now())
				if merged.DueAmount < 0 {
					return utils.Validation("total %.2f is below the %.2f already paid", merged.TotalAmount, merged.PaidAmount)
				}
				return nil
			},
		},
	}
}

// Payment covers list, get and update of descriptive fields.
func (c *Catalog) Payment() Definition[models.Payment] {
	return Definition[models.Payment]{
		Spec:      resourceRepo.PaymentSpec,
		Filters:   map[string]string{"tenantId": "tenantId", "billingId": "billingId", "method": "method"},
		Protected: []string{"tenantId", "pgId", "billingId", "amount", "method", "receiptNumber", "idempotencyKey", "receivedBy"},
	}
}

func (c *Catalog) Staff() Definition[models.Staff] {
	return Definition[models.Staff]{
		Spec:      resourceRepo.StaffSpec,
		Filters:   map[string]string{"pgId": "pgId", "role": "role"},
		Protected: []string{"isActive"},
		Hooks: Hooks[models.Staff]{
			BeforeCreate: func(ctx context.Context, s *models.Staff) error {
				if s.JoinDate.IsZero() {
					s.JoinDate = c.now()
				}
				return nil
			},
		},
	}
}

func (c *Catalog) Expense() Definition[models.Expense] {
	return Definition[models.Expense]{
		Spec:      resourceRepo.ExpenseSpec,
		Filters:   map[string]string{"pgId": "pgId", "category": "category"},
		Protected: []string{"isActive"},
		Hooks: Hooks[models.Expense]{
			BeforeCreate: func(ctx context.Context, e *models.Expense) error {
				if e.Date.IsZero() {
					e.Date = c.now()
				}
				e.Amount = models.Money(e.Amount)
				return nil
			},
			BeforeUpdate: func(ctx context.Context, old, merged *models.Expense) error {
				merged.Amount = models.Money(merged.Amount)
				return nil
			},
		},
	}
}

func (c *Catalog) Inventory() Definition[models.Inventory] {
	inRoom := func(ctx context.Context, it *models.Inventory) error {
		if it.RoomID == "" {
			return nil
		}
		room, err := requireActive(ctx, c.Rooms, "room", it.RoomID, nil)
		if err != nil {
			return err
		}
		it.PGID = room.PGID
		return nil
	}
	return Definition[models.Inventory]{
		Spec:      resourceRepo.InventorySpec,
		Filters:   map[string]string{"pgId": "pgId", "roomId": "roomId", "category": "category", "condition": "condition"},
		Protected: []string{"isActive"},
		Hooks: Hooks[models.Inventory]{
			BeforeCreate: func(ctx context.Context, it *models.Inventory) error {
				if it.Condition == "" {
					it.Condition = "good"
				}
				return inRoom(ctx, it)
			},
			BeforeUpdate: func(ctx context.Context, old, merged *models.Inventory) error {
				if merged.RoomID == old.RoomID {
					return nil
				}
				return inRoom(ctx, merged)
			},
		},
	}
}

func (c *Catalog) Complaint() Definition[models.Complaint] {
	return Definition[models.Complaint]{
		Spec:      resourceRepo.ComplaintSpec,
		Filters:   map[string]string{"pgId": "pgId", "tenantId": "tenantId", "status": "status", "priority": "priority", "category": "category"},
		Protected: []string{"resolvedAt"},
		Hooks: Hooks[models.Complaint]{
			BeforeCreate: func(ctx context.Context, cp *models.Complaint) error {
				if cp.Status == "" {
					cp.Status = models.ComplaintOpen
				}
				if cp.Priority == "" {
					cp.Priority = "medium"
				}
				if cp.TenantID != "" {
					t, err := requireActive(ctx, c.Tenants, "tenant", cp.TenantID, nil)
					if err != nil {
						return err
					}
					if cp.PGID == "" {
						cp.PGID = t.PGID
					}
					if cp.RoomID == "" {
						cp.RoomID = t.RoomID
					}
				}
				if cp.Settled() {
					now := c.now()
					cp.ResolvedAt = &now
				}
				return nil
			},
			BeforeUpdate: func(ctx context.Context, old, merged *models.Complaint) error {
				switch {
				case merged.Settled() && !old.Settled():
					now := c.now()
					merged.ResolvedAt = &now
				case !merged.Settled():
					merged.ResolvedAt = nil
				}
				return nil
			},
		},
	}
}

func (c *Catalog) Service() Definition[models.Service] {
	return Definition[models.Service]{
		Spec:      resourceRepo.ServiceSpec,
		Filters:   map[string]string{"pgId": "pgId", "category": "category", "status": "status"},
		Protected: []string{"isActive"},
		Hooks: Hooks[models.Service]{
			BeforeCreate: func(ctx context.Context, s *models.Service) error {
				if s.Status == "" {
					s.Status = "active"
				}
				return nil
			},
		},
	}
}

func (c *Catalog) Visitor() Definition[models.Visitor] {
	return Definition[models.Visitor]{
		Spec:      resourceRepo.VisitorSpec,
		Filters:   map[string]string{"pgId": "pgId", "tenantId": "tenantId", "status": "status"},
		Protected: []string{"isActive", "checkOutTime"},
		Pinned:    []string{"status"},
		Hooks: Hooks[models.Visitor]{
			BeforeCreate: func(ctx context.Context, v *models.Visitor) error {
				if v.CheckInTime.IsZero() {
					v.CheckInTime = c.now()
				}
				v.Status = models.VisitorCheckedIn
				v.CheckOutTime = nil
				if v.TenantID != "" {
					t, err := requireActive(ctx, c.Tenants, "tenant", v.TenantID, nil)
					if err != nil {
						return err
					}
					if v.PGID == "" {
						v.PGID = t.PGID
					}
				}
				return nil
			},
		},
	}
}

// Notification definitions take the push hook from the notification service.
func (c *Catalog) Notification(afterCreate func(ctx context.Context, n *models.Notification)) Definition[models.Notification] {
	return Definition[models.Notification]{
		Spec:      resourceRepo.NotificationSpec,
		Filters:   map[string]string{"type": "type", "isRead": "isRead", "recipient": "recipient"},
		Protected: []string{"isActive", "pushed", "readAt"},
		Hooks: Hooks[models.Notification]{
			BeforeCreate: func(ctx context.Context, n *models.Notification) error {
				if n.Type == "" {
					n.Type = "info"
				}
				n.IsRead = false
				n.ReadAt = nil
				n.Pushed = false
				return nil
			},
			AfterCreate: afterCreate,
			BeforeUpdate: func(ctx context.Context, old, merged *models.Notification) error {
				if merged.IsRead && !old.IsRead {
					now := c.now()
					merged.ReadAt = &now
				}
				if !merged.IsRead {
					merged.ReadAt = nil
				}
				return nil
			},
		},
	}
}

func (c *Catalog) Activity() Definition[models.Activity] {
	return Definition[models.Activity]{
		Spec:    resourceRepo.ActivitySpec,
		Filters: map[string]string{"type": "type", "entityType": "entityType", "entityId": "entityId", "adminId": "adminId"},
	}
}
