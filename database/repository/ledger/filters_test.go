package ledgerRepo_test

import (
	"testing"
	"time"

	ledgerRepo "pgmanager/database/repository/ledger"
	memoryRepo "pgmanager/database/repository/memory"
	"pgmanager/models"

	"github.com/stretchr/testify/assert"
)

func TestFilters_MatchLikeMemoryStore(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	bill := &models.Billing{
		Base: models.Base{ID: "bill-1"}, TotalAmount: 1000, DueAmount: 1000,
		Status: models.BillingPending, DueDate: now.AddDate(0, 0, -1),
	}

	assert.True(t, memoryRepo.Matches(bill, ledgerRepo.ApplyFilter("bill-1", 1000)))
	assert.False(t, memoryRepo.Matches(bill, ledgerRepo.ApplyFilter("bill-1", 1000.01)))
	assert.True(t, memoryRepo.Matches(bill, ledgerRepo.OverdueFilter(now)))

	bill.DueDate = time.Time{}
	assert.False(t, memoryRepo.Matches(bill, ledgerRepo.OverdueFilter(now)))

	bill.DueDate = now.AddDate(0, 0, 1)
	assert.False(t, memoryRepo.Matches(bill, ledgerRepo.OverdueFilter(now)))

	bill.DueDate = now.AddDate(0, 0, -1)
	bill.Status, bill.PaidAmount, bill.DueAmount = models.BillingPaid, 1000, 0
	assert.False(t, memoryRepo.Matches(bill, ledgerRepo.ApplyFilter("bill-1", 1)))
	assert.False(t, memoryRepo.Matches(bill, ledgerRepo.OverdueFilter(now)))
}
