package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillingReconcileFromItems(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)
	b := &Billing{
		Items: []BillingItem{
			{Description: "rent", Amount: 8000.10},
			{Description: "electricity", Amount: 450.25},
		},
		TotalAmount: 1, // ignored when items are present
		DueDate:     now.AddDate(0, 0, 5),
	}
	b.Reconcile(now)

	assert.Equal(t, 8450.35, b.TotalAmount)
	assert.Equal(t, 8450.35, b.DueAmount)
	assert.Equal(t, BillingPending, b.Status)
}

func TestBillingReconcileStatuses(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		bill    Billing
		status  string
		dueLeft float64
	}{
		{"unpaid", Billing{TotalAmount: 1000}, BillingPending, 1000},
		{"partly paid", Billing{TotalAmount: 1000, PaidAmount: 250}, BillingPartial, 750},
		{"settled", Billing{TotalAmount: 1000, PaidAmount: 1000}, BillingPaid, 0},
		{"past due", Billing{TotalAmount: 1000, PaidAmount: 100, DueDate: now.AddDate(0, 0, -1)}, BillingOverdue, 900},
		{"past due but settled", Billing{TotalAmount: 500, PaidAmount: 500, DueDate: now.AddDate(0, -1, 0)}, BillingPaid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.bill
			b.Reconcile(now)
			assert.Equal(t, tt.status, b.Status)
			assert.Equal(t, tt.dueLeft, b.DueAmount)
		})
	}
}

func TestBillingApplyAndReversePayment(t *testing.T) {
	b := &Billing{TotalAmount: 1000}
	b.Reconcile(time.Now())

	b.ApplyPayment(400)
	assert.Equal(t, 600.0, b.DueAmount)
	assert.Equal(t, BillingPartial, b.Status)

	b.ApplyPayment(600)
	assert.Equal(t, 0.0, b.DueAmount)
	assert.Equal(t, BillingPaid, b.Status)

	b.ReversePayment(600)
	assert.Equal(t, 600.0, b.DueAmount)
	assert.Equal(t, BillingPartial, b.Status)

	b.ReversePayment(400)
	assert.Equal(t, 1000.0, b.DueAmount)
	assert.Equal(t, 0.0, b.PaidAmount)
	assert.Equal(t, BillingPending, b.Status)
}

func TestBillingCentsDoNotDrift(t *testing.T) {
	b := &Billing{TotalAmount: 1000.10}
	b.Reconcile(time.Now())
	b.ApplyPayment(400.05)
	assert.Equal(t, 600.05, b.DueAmount)
	b.ApplyPayment(600.05)
	assert.Equal(t, BillingPaid, b.Status)
	assert.Equal(t, b.TotalAmount-b.PaidAmount, b.DueAmount)
}

func TestRoomDeriveStatus(t *testing.T) {
	r := &Room{Capacity: 2, OccupiedBeds: 1}
	r.DeriveStatus()
	assert.Equal(t, RoomAvailable, r.Status)

	r.OccupiedBeds = 2
	r.DeriveStatus()
	assert.Equal(t, RoomOccupied, r.Status)
	assert.True(t, r.Full())

	r.Status = RoomMaintenance
	r.OccupiedBeds = 0
	r.DeriveStatus()
	assert.Equal(t, RoomMaintenance, r.Status)
}
