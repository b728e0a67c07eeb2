package ledger

import (
	"context"
	"fmt"

	"pgmanager/database"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// sameRequest reports whether a replayed payment matches the stored one.
func sameRequest(stored, replay *models.Payment) bool {
	return stored.TenantID == replay.TenantID &&
		stored.BillingID == replay.BillingID &&
		stored.Amount == models.Money(replay.Amount)
}

func (s *DefaultLedgerService) replay(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if p.IdempotencyKey == "" {
		return nil, nil
	}
	existing, err := s.Payments.GetByIdempotencyKey(ctx, p.IdempotencyKey)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !sameRequest(existing, p) {
		return nil, utils.Conflict("idempotency key %s was already used for a different payment", p.IdempotencyKey)
	}
	return existing, nil
}

func (s *DefaultLedgerService) RecordPayment(ctx context.Context, p *models.Payment) (*models.Payment, bool, error) {
	if p.Amount <= 0 {
		return nil, false, utils.Validation("amount must be greater than zero")
	}
	if !models.ValidPaymentMethod(p.Method) {
		return nil, false, utils.Validation("unknown payment method %q", p.Method)
	}
	p.Amount = models.Money(p.Amount)

	if existing, err := s.replay(ctx, p); err != nil || existing != nil {
		return existing, existing != nil, err
	}

	t, err := s.tenant(ctx, p.TenantID)
	if err != nil {
		return nil, false, err
	}
	if p.PGID == "" {
		p.PGID = t.PGID
	}

	if p.BillingID != "" {
		bill, err := s.Billings.GetByID(ctx, p.BillingID)
		if err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return nil, false, utils.Validation("billing %s does not exist", p.BillingID)
			}
			return nil, false, err
		}
		if bill.TenantID != p.TenantID {
			return nil, false, utils.Validation("billing %s belongs to another tenant", bill.BillNumber)
		}
		if bill.Status == models.BillingPaid {
			return nil, false, utils.Conflict("billing %s is already paid", bill.BillNumber)
		}
		if p.Amount > bill.DueAmount {
			return nil, false, utils.Validation("amount %.2f exceeds the %.2f due on %s", p.Amount, bill.DueAmount, bill.BillNumber)
		}
	}

	if p.Method == models.MethodOnline {
		if err := s.verifyOnline(ctx, p); err != nil {
			return nil, false, err
		}
	}

	now := s.Now()
	receipt, err := s.nextReceiptNumber(ctx, now)
	if err != nil {
		return nil, false, err
	}
	p.ID = uuid.New().String()
	p.ReceiptNumber = receipt
	p.Detach()
	p.Stamp(now)
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
	p.ReceivedBy = utils.AdminIDFrom(ctx)

	err = s.UoW.Do(ctx, func(ctx context.Context, tx database.Tx) error {
		if err := s.Payments.Create(ctx, p); err != nil {
			return err
		}
		tx.OnRollback(func(ctx context.Context) error { return s.Payments.Delete(ctx, p.ID) })

		if p.BillingID != "" {
			if err := s.Billings.ApplyPayment(ctx, p.BillingID, p.Amount); err != nil {
				return err
			}
			tx.OnRollback(func(ctx context.Context) error { return s.Billings.ReversePayment(ctx, p.BillingID, p.Amount) })
		}
		_, err := s.Activity.Record(ctx, models.Activity{
			Type:        "payment",
			Action:      activity.ActionPayment,
			Description: fmt.Sprintf("payment %s of %.2f received from %s", p.ReceiptNumber, p.Amount, t.Name),
			EntityType:  "payment",
			EntityID:    p.ID,
			Metadata:    map[string]any{"tenantId": p.TenantID, "billingId": p.BillingID, "method": p.Method},
		})
		return err
	})
	if err != nil {
		// A concurrent request with the same key won the unique index.
		if utils.IsKind(err, utils.KindConflict) && p.IdempotencyKey != "" {
			if existing, rerr := s.replay(ctx, p); rerr == nil && existing != nil {
				return existing, true, nil
			}
		}
		utils.GetLogger().Warn("payment not recorded", zap.String("tenantID", p.TenantID), zap.Error(err))
		return nil, false, err
	}

	if s.Notifier != nil {
		s.Notifier.Publish(ctx, models.Notification{
			Title:   "Payment received",
			Message: fmt.Sprintf("%.2f received from %s (%s)", p.Amount, t.Name, p.ReceiptNumber),
			Type:    "payment",
			Data:    map[string]string{"paymentId": p.ID, "tenantId": p.TenantID},
		})
	}
	return s.freshPayment(ctx, p), false, nil
}

// verifyOnline checks that the gateway captured at least the payment amount
// and that the transaction has not been recorded already.
func (s *DefaultLedgerService) verifyOnline(ctx context.Context, p *models.Payment) error {
	if s.Gateway == nil {
		return utils.Validation("online payments are not configured")
	}
	if p.TransactionID == "" {
		return utils.Validation("transactionId is required for online payments")
	}
	intent, err := s.Gateway.GetIntent(ctx, p.TransactionID)
	if err != nil {
		return utils.Internal(err, "could not verify the online payment")
	}
	if intent == nil {
		return utils.Validation("transaction %s does not exist", p.TransactionID)
	}
	if !intent.Succeeded {
		return utils.Validation("transaction %s has not succeeded (status %s)", p.TransactionID, intent.Status)
	}
	if intent.Amount < p.Amount {
		return utils.Validation("transaction %s captured %.2f, less than %.2f", p.TransactionID, intent.Amount, p.Amount)
	}
	n, err := s.Payments.Count(ctx, bson.M{"transactionId": p.TransactionID})
	if err != nil {
		return err
	}
	if n > 0 {
		return utils.Conflict("transaction %s is already recorded", p.TransactionID)
	}
	return nil
}

func (s *DefaultLedgerService) DeletePayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := s.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	stored := *p
	stored.Detach()

	err = s.UoW.Do(ctx, func(ctx context.Context, tx database.Tx) error {
		if err := s.Payments.Delete(ctx, p.ID); err != nil {
			return err
		}
		tx.OnRollback(func(ctx context.Context) error { return s.Payments.Create(ctx, &stored) })

		if p.BillingID != "" {
			err := s.Billings.ReversePayment(ctx, p.BillingID, p.Amount)
			switch {
			case err == nil:
				tx.OnRollback(func(ctx context.Context) error { return s.Billings.ApplyPayment(ctx, p.BillingID, p.Amount) })
			case utils.IsKind(err, utils.KindNotFound):
				// The bill is gone; nothing to take the payment back from.
			default:
				return err
			}
		}
		_, err := s.Activity.Record(ctx, models.Activity{
			Type:        "payment",
			Action:      activity.ActionReverse,
			Description: fmt.Sprintf("payment %s of %.2f deleted", p.ReceiptNumber, p.Amount),
			EntityType:  "payment",
			EntityID:    p.ID,
			Metadata:    map[string]any{"billingId": p.BillingID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *DefaultLedgerService) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if s.Gateway == nil {
		return nil, utils.Validation("online payments are not configured")
	}
	if _, err := s.tenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	amount := models.Money(req.Amount)
	if req.BillingID != "" {
		bill, err := s.Billings.GetByID(ctx, req.BillingID)
		if err != nil {
			return nil, err
		}
		if bill.TenantID != req.TenantID {
			return nil, utils.Validation("billing %s belongs to another tenant", bill.BillNumber)
		}
		if amount > bill.DueAmount {
			return nil, utils.Validation("amount %.2f exceeds the %.2f due on %s", amount, bill.DueAmount, bill.BillNumber)
		}
	}
	intent, err := s.Gateway.CreateIntent(ctx, amount, s.Currency, map[string]string{
		"tenantId":  req.TenantID,
		"billingId": req.BillingID,
	})
	if err != nil {
		return nil, utils.Internal(err, "could not start the online payment")
	}
	return intent, nil
}

func (s *DefaultLedgerService) freshPayment(ctx context.Context, p *models.Payment) *models.Payment {
	got, err := s.Payments.GetByID(ctx, p.ID)
	if err != nil {
		return p
	}
	return got
}
