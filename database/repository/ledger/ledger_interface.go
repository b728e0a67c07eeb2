package ledgerRepo

import (
	"context"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
)

type BillingRepository interface {
	resourceRepo.Repository[models.Billing]
	// ApplyPayment adds amount to paidAmount when the bill still owes at least
	// amount, recomputing dueAmount and status in the same write.
	ApplyPayment(ctx context.Context, billingID string, amount float64) error
	// ReversePayment subtracts amount from paidAmount.
	ReversePayment(ctx context.Context, billingID string, amount float64) error
	// MarkOverdue flags unpaid bills whose due date has passed.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	// ExistsForMonth reports whether a generated rent bill exists for the tenant and month.
	ExistsForMonth(ctx context.Context, tenantID, month string) (bool, error)
}

type PaymentRepository interface {
	resourceRepo.Repository[models.Payment]
	// GetByIdempotencyKey returns the payment recorded under key.
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)
}

// SequenceRepository hands out monotonically increasing numbers per name.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
