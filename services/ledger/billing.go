package ledger

import (
	"context"
	"fmt"
	"time"

	"pgmanager/database"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const monthLayout = "2006-01"

func (s *DefaultLedgerService) tenant(ctx context.Context, id string) (*models.Tenant, error) {
	if id == "" {
		return nil, utils.Validation("tenantId is required")
	}
	t, err := s.Tenants.GetByID(ctx, id)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.Validation("tenant %s does not exist", id)
		}
		return nil, err
	}
	return t, nil
}

func (s *DefaultLedgerService) CreateBill(ctx context.Context, bill *models.Billing) (*models.Billing, error) {
	t, err := s.tenant(ctx, bill.TenantID)
	if err != nil {
		return nil, err
	}
	if len(bill.Items) == 0 && bill.TotalAmount <= 0 {
		return nil, utils.Validation("a bill needs items or a positive totalAmount")
	}

	now := s.Now()
	if bill.PGID == "" {
		bill.PGID = t.PGID
	}
	if bill.BillingMonth == "" {
		bill.BillingMonth = now.Format(monthLayout)
	} else if _, err := time.Parse(monthLayout, bill.BillingMonth); err != nil {
		return nil, utils.Validation("billingMonth must be YYYY-MM")
	}
	bill.PaidAmount = 0
	bill.AutoGenerated = false
	if err := s.insertBill(ctx, bill, now); err != nil {
		return nil, err
	}
	return s.freshBill(ctx, bill), nil
}

// insertBill numbers, reconciles and stores bill together with its activity entry.
func (s *DefaultLedgerService) insertBill(ctx context.Context, bill *models.Billing, now time.Time) error {
	number, err := s.nextBillNumber(ctx, now)
	if err != nil {
		return err
	}
	bill.ID = uuid.New().String()
	bill.BillNumber = number
	bill.Detach()
	bill.Stamp(now)
	bill.Reconcile(now)

	return s.UoW.Do(ctx, func(ctx context.Context, tx database.Tx) error {
		if err := s.Billings.Create(ctx, bill); err != nil {
			return err
		}
		tx.OnRollback(func(ctx context.Context) error { return s.Billings.Delete(ctx, bill.ID) })

		_, err := s.Activity.Record(ctx, models.Activity{
			Type:        "billing",
			Action:      activity.ActionCreate,
			Description: fmt.Sprintf("bill %s issued for %.2f", bill.BillNumber, bill.TotalAmount),
			EntityType:  "billing",
			EntityID:    bill.ID,
			Metadata:    map[string]any{"tenantId": bill.TenantID},
		})
		return err
	})
}

func (s *DefaultLedgerService) DeleteBill(ctx context.Context, billingID string) (*models.Billing, error) {
	bill, err := s.Billings.GetByID(ctx, billingID)
	if err != nil {
		return nil, err
	}
	if bill.PaidAmount > 0 {
		return nil, utils.Conflict("bill %s has %.2f paid against it, delete its payments first", bill.BillNumber, bill.PaidAmount)
	}
	if err := s.Billings.Delete(ctx, billingID); err != nil {
		return nil, err
	}
	s.Activity.Log(ctx, models.Activity{
		Type:        "billing",
		Action:      activity.ActionDelete,
		Description: fmt.Sprintf("bill %s deleted", bill.BillNumber),
		EntityType:  "billing",
		EntityID:    bill.ID,
	})
	return bill, nil
}

func (s *DefaultLedgerService) GenerateMonthly(ctx context.Context, month string) (*GenerationResult, error) {
	now := s.Now()
	if month == "" {
		month = now.Format(monthLayout)
	}
	start, err := time.ParseInLocation(monthLayout, month, now.Location())
	if err != nil {
		return nil, utils.Validation("month must be YYYY-MM")
	}
	dueDay := s.DueDay
	if dueDay < 1 || dueDay > 28 {
		dueDay = 1
	}
	dueDate := time.Date(start.Year(), start.Month(), dueDay, 23, 59, 59, 0, start.Location())

	tenants, err := s.Tenants.List(ctx, resourceRepo.Query{Filter: bson.M{"isActive": true}})
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{Month: month, Created: []string{}}
	for _, t := range tenants {
		if t.RentAmount <= 0 {
			result.Skipped++
			continue
		}
		exists, err := s.Billings.ExistsForMonth(ctx, t.ID, month)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}
		bill := &models.Billing{
			TenantID:     t.ID,
			PGID:         t.PGID,
			BillingMonth: month,
			Items: []models.BillingItem{{
				Description: "Rent for " + start.Format("January 2006"),
				Type:        "rent",
				Amount:      t.RentAmount,
			}},
			DueDate:       dueDate,
			AutoGenerated: true,
		}
		if err := s.insertBill(ctx, bill, now); err != nil {
			// The unique monthly index lost a race to a concurrent run.
			if utils.IsKind(err, utils.KindConflict) {
				result.Skipped++
				continue
			}
			utils.GetLogger().Error("monthly bill generation failed", zap.String("tenantID", t.ID), zap.Error(err))
			return result, err
		}
		result.Created = append(result.Created, bill.ID)
	}

	utils.GetLogger().Info("monthly bills generated",
		zap.String("month", month), zap.Int("created", len(result.Created)), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *DefaultLedgerService) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.Billings.MarkOverdue(ctx, s.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		utils.GetLogger().Info("bills marked overdue", zap.Int64("count", n))
	}
	return n, nil
}

func (s *DefaultLedgerService) freshBill(ctx context.Context, bill *models.Billing) *models.Billing {
	got, err := s.Billings.GetByID(ctx, bill.ID)
	if err != nil {
		return bill
	}
	return got
}
