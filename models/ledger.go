package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing statuses.
const (
	BillingPending = "pending"
	BillingPartial = "partial"
	BillingPaid    = "paid"
	BillingOverdue = "overdue"
)

// Payment methods.
const (
	MethodCash         = "cash"
	MethodUPI          = "upi"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodOnline       = "online"
)

type BillingItem struct {
	Description string  `bson:"description" json:"description" binding:"required"`
	Type        string  `bson:"type,omitempty" json:"type,omitempty"`
	Amount      float64 `bson:"amount" json:"amount" binding:"gte=0"`
}

// Billing is a charge statement issued to a tenant.
// DueAmount is always TotalAmount - PaidAmount and Status is paid exactly when DueAmount <= 0.
type Billing struct {
	Base          `bson:",inline"`
	TenantID      string        `bson:"tenantId" json:"tenantId" binding:"required"`
	PGID          string        `bson:"pgId,omitempty" json:"pgId,omitempty"`
	BillNumber    string        `bson:"billNumber" json:"billNumber"`
	BillingMonth  string        `bson:"billingMonth,omitempty" json:"billingMonth,omitempty"`
	Items         []BillingItem `bson:"items,omitempty" json:"items,omitempty" binding:"dive"`
	TotalAmount   float64       `bson:"totalAmount" json:"totalAmount" binding:"gte=0"`
	PaidAmount    float64       `bson:"paidAmount" json:"paidAmount"`
	DueAmount     float64       `bson:"dueAmount" json:"dueAmount"`
	Status        string        `bson:"status" json:"status"`
	DueDate       time.Time     `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
	AutoGenerated bool          `bson:"autoGenerated,omitempty" json:"autoGenerated,omitempty"`
}

// Money rounds to two decimal places.
func Money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ItemsTotal sums the item amounts.
func (b *Billing) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range b.Items {
		total = total.Add(decimal.NewFromFloat(it.Amount))
	}
	return total.Round(2)
}

// Reconcile recomputes TotalAmount (from items when present), DueAmount and Status.
func (b *Billing) Reconcile(now time.Time) {
	total := decimal.NewFromFloat(b.TotalAmount).Round(2)
	if len(b.Items) > 0 {
		total = b.ItemsTotal()
	}
	paid := decimal.NewFromFloat(b.PaidAmount).Round(2)
	due := total.Sub(paid)

	b.TotalAmount = total.InexactFloat64()
	b.PaidAmount = paid.InexactFloat64()
	b.DueAmount = due.InexactFloat64()

	switch {
	case !due.IsPositive():
		b.Status = BillingPaid
	case !b.DueDate.IsZero() && b.DueDate.Before(now):
		b.Status = BillingOverdue
	case paid.IsPositive():
		b.Status = BillingPartial
	default:
		b.Status = BillingPending
	}
}

// ApplyPayment adds amount to PaidAmount and flips Status to paid or partial.
func (b *Billing) ApplyPayment(amount float64) {
	paid := decimal.NewFromFloat(b.PaidAmount).Add(decimal.NewFromFloat(amount)).Round(2)
	due := decimal.NewFromFloat(b.TotalAmount).Sub(paid)
	b.PaidAmount = paid.InexactFloat64()
	b.DueAmount = due.InexactFloat64()
	if due.IsPositive() {
		b.Status = BillingPartial
	} else {
		b.Status = BillingPaid
	}
}

// ReversePayment undoes ApplyPayment for amount.
func (b *Billing) ReversePayment(amount float64) {
	paid := decimal.NewFromFloat(b.PaidAmount).Sub(decimal.NewFromFloat(amount)).Round(2)
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	due := decimal.NewFromFloat(b.TotalAmount).Sub(paid)
	b.PaidAmount = paid.InexactFloat64()
	b.DueAmount = due.InexactFloat64()
	switch {
	case !due.IsPositive():
		b.Status = BillingPaid
	case paid.IsPositive():
		b.Status = BillingPartial
	default:
		b.Status = BillingPending
	}
}

// Payment is money received from a tenant, optionally against a billing record.
type Payment struct {
	Base           `bson:",inline"`
	TenantID       string    `bson:"tenantId" json:"tenantId" binding:"required"`
	PGID           string    `bson:"pgId,omitempty" json:"pgId,omitempty"`
	BillingID      string    `bson:"billingId,omitempty" json:"billingId,omitempty"`
	Amount         float64   `bson:"amount" json:"amount" binding:"required,gt=0"`
	Method         string    `bson:"method" json:"method" binding:"required,oneof=cash upi card bank_transfer online"`
	ReceiptNumber  string    `bson:"receiptNumber" json:"receiptNumber"`
	TransactionID  string    `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	IdempotencyKey string    `bson:"idempotencyKey,omitempty" json:"idempotencyKey,omitempty"`
	PaymentDate    time.Time `bson:"paymentDate" json:"paymentDate"`
	Notes          string    `bson:"notes,omitempty" json:"notes,omitempty"`
	ReceivedBy     string    `bson:"receivedBy,omitempty" json:"receivedBy,omitempty"`
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCash, MethodUPI, MethodCard, MethodBankTransfer, MethodOnline:
		return true
	}
	return false
}
