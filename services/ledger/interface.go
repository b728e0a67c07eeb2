package ledger

import (
	"context"
	"time"

	"pgmanager/database"
	ledgerRepo "pgmanager/database/repository/ledger"
	occupancyRepo "pgmanager/database/repository/occupancy"
	"pgmanager/models"
	"pgmanager/services/activity"
)

// LedgerService keeps bills and the payments against them reconciled.
type LedgerService interface {
	CreateBill(ctx context.Context, bill *models.Billing) (*models.Billing, error)
	// DeleteBill removes a bill nothing has been paid into.
	DeleteBill(ctx context.Context, billingID string) (*models.Billing, error)
	// RecordPayment stores the payment and applies it to its bill. The bool
	// reports whether an earlier payment with the same idempotency key was
	// returned instead.
	RecordPayment(ctx context.Context, payment *models.Payment) (*models.Payment, bool, error)
	// DeletePayment removes the payment and takes it back off its bill.
	DeletePayment(ctx context.Context, paymentID string) (*models.Payment, error)
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// GenerateMonthly issues one rent bill per active tenant for month (YYYY-MM).
	GenerateMonthly(ctx context.Context, month string) (*GenerationResult, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

type IntentRequest struct {
	TenantID  string  `json:"tenantId" binding:"required"`
	BillingID string  `json:"billingId"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

type GenerationResult struct {
	Month   string   `json:"month"`
	Created []string `json:"created"`
	Skipped int      `json:"skipped"`
}

// Notifier publishes an admin notification after a change commits.
type Notifier interface {
	Publish(ctx context.Context, n models.Notification)
}

// DefaultLedgerService is the production implementation.
type DefaultLedgerService struct {
	Billings  ledgerRepo.BillingRepository
	Payments  ledgerRepo.PaymentRepository
	Sequences ledgerRepo.SequenceRepository
	Tenants   occupancyRepo.TenantRepository
	UoW       database.UnitOfWork
	Activity  activity.ActivityService
	Gateway   PaymentGateway
	Notifier  Notifier
	Currency  string
	// DueDay is the day of month generated rent bills fall due.
	DueDay int
	Now    func() time.Time
}

func NewDefaultLedgerService(
	billings ledgerRepo.BillingRepository,
	payments ledgerRepo.PaymentRepository,
	sequences ledgerRepo.SequenceRepository,
	tenants occupancyRepo.TenantRepository,
	uow database.UnitOfWork,
	act activity.ActivityService,
) *DefaultLedgerService {
	return &DefaultLedgerService{
		Billings:  billings,
		Payments:  payments,
		Sequences: sequences,
		Tenants:   tenants,
		UoW:       uow,
		Activity:  act,
		Currency:  "inr",
		DueDay:    5,
		Now:       time.Now,
	}
}
