package memoryRepo

import (
	"context"
	"sync"
	"time"

	ledgerRepo "pgmanager/database/repository/ledger"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
)

type BillingRepo struct {
	*Repo[models.Billing, *models.Billing]
}

func NewBillingRepo() *BillingRepo {
	return &BillingRepo{Repo: NewRepo[models.Billing, *models.Billing](resourceRepo.BillingSpec)}
}

func (r *BillingRepo) Create(ctx context.Context, b *models.Billing) error {
	if b.AutoGenerated {
		if ok, _ := r.ExistsForMonth(ctx, b.TenantID, b.BillingMonth); ok {
			return utils.Conflict("billing already exists")
		}
	}
	return r.Repo.Create(ctx, b)
}

func (r *BillingRepo) ApplyPayment(ctx context.Context, billingID string, amount float64) error {
	var current models.Billing
	found, changed := r.Mutate(billingID, func(b *models.Billing) bool {
		current = *b
		if b.Status == models.BillingPaid || b.DueAmount < amount {
			return false
		}
		b.ApplyPayment(amount)
		return true
	})
	switch {
	case !found:
		return utils.NotFound("billing %s not found", billingID)
	case changed:
		return nil
	case current.Status == models.BillingPaid:
		return utils.Conflict("billing %s is already paid", billingID)
	default:
		return utils.Conflict("payment of %.2f exceeds the %.2f due on billing %s", amount, current.DueAmount, billingID)
	}
}

func (r *BillingRepo) ReversePayment(ctx context.Context, billingID string, amount float64) error {
	found, _ := r.Mutate(billingID, func(b *models.Billing) bool {
		b.ReversePayment(amount)
		return true
	})
	if !found {
		return utils.NotFound("billing %s not found", billingID)
	}
	return nil
}

func (r *BillingRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range r.Find(bson.M{"status": bson.M{"$in": bson.A{models.BillingPending, models.BillingPartial}}}) {
		if b.DueAmount <= 0 || b.DueDate.IsZero() || !b.DueDate.Before(now) {
			continue
		}
		r.Mutate(b.ID, func(doc *models.Billing) bool {
			doc.Status = models.BillingOverdue
			return true
		})
		n++
	}
	return n, nil
}

func (r *BillingRepo) ExistsForMonth(ctx context.Context, tenantID, month string) (bool, error) {
	n, _ := r.Count(ctx, bson.M{"tenantId": tenantID, "billingMonth": month, "autoGenerated": true})
	return n > 0, nil
}

type PaymentRepo struct {
	*Repo[models.Payment, *models.Payment]
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{Repo: NewRepo[models.Payment, *models.Payment](resourceRepo.PaymentSpec)}
}

func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	if p.IdempotencyKey != "" {
		if _, err := r.GetByIdempotencyKey(ctx, p.IdempotencyKey); err == nil {
			return utils.Conflict("payment already exists")
		}
	}
	return r.Repo.Create(ctx, p)
}

func (r *PaymentRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	found := r.Find(bson.M{"idempotencyKey": key})
	if len(found) == 0 {
		return nil, utils.NotFound("no payment recorded for idempotency key %s", key)
	}
	return &found[0], nil
}

type SequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewSequenceRepo() *SequenceRepo {
	return &SequenceRepo{counters: map[string]int64{}}
}

func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name]++
	return r.counters[name], nil
}

var (
	_ ledgerRepo.BillingRepository  = (*BillingRepo)(nil)
	_ ledgerRepo.PaymentRepository  = (*PaymentRepo)(nil)
	_ ledgerRepo.SequenceRepository = (*SequenceRepo)(nil)
)
