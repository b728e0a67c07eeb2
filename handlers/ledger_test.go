package handlers

import (
	"context"
	"net/http"
	"testing"

	"pgmanager/database"
	memoryRepo "pgmanager/database/repository/memory"
	"pgmanager/models"
	"pgmanager/services/ledger"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	router   *gin.Engine
	payments *memoryRepo.PaymentRepo
	billings *memoryRepo.BillingRepo
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		payments: memoryRepo.NewPaymentRepo(),
		billings: memoryRepo.NewBillingRepo(),
	}
	tenants := memoryRepo.NewTenantRepo()
	tenants.Put(&models.Tenant{
		Base: models.Base{ID: "t1"}, Active: models.Active{IsActive: true},
		Name: "Asha", PGID: "pg-1", RentAmount: 6500, Status: models.TenantActive,
	})
	svc := ledger.NewDefaultLedgerService(f.billings, f.payments, memoryRepo.NewSequenceRepo(), tenants,
		database.NewSagaUnitOfWork(), newActivities())

	h := NewLedgerHandler(svc)
	f.router = newEngine()
	f.router.POST("/api/billing", h.CreateBill)
	f.router.POST("/api/payments", h.RecordPayment)
	return f
}

func TestRecordPayment_HeaderKeyWinsAndReplays(t *testing.T) {
	f := newLedgerFixture()
	body := `{"tenantId":"t1","amount":500,"method":"cash","idempotencyKey":"from-body"}`
	headers := map[string]string{IdempotencyHeader: " from-header "}

	w := perform(f.router, http.MethodPost, "/api/payments", body, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
	first := decode[models.Payment](t, w)
	assert.Equal(t, "from-header", first.IdempotencyKey)
	assert.NotEmpty(t, first.ReceiptNumber)

	w = perform(f.router, http.MethodPost, "/api/payments", body, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	replayed := decode[models.Payment](t, w)
	assert.Equal(t, first.ID, replayed.ID)
	assert.Equal(t, first.ReceiptNumber, replayed.ReceiptNumber)

	// The body key was overridden, so it is still unused.
	w = perform(f.router, http.MethodPost, "/api/payments", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	third := decode[models.Payment](t, w)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, "from-body", third.IdempotencyKey)

	n, err := f.payments.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRecordPayment_ReusedKeyForDifferentPayment(t *testing.T) {
	f := newLedgerFixture()
	headers := map[string]string{IdempotencyHeader: "k-1"}

	w := perform(f.router, http.MethodPost, "/api/payments", `{"tenantId":"t1","amount":500,"method":"cash"}`, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = perform(f.router, http.MethodPost, "/api/payments", `{"tenantId":"t1","amount":900,"method":"cash"}`, headers)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, utils.KindConflict, decode[utils.ErrorResponse](t, w).Error.Code)
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
}

func TestRecordPayment_ErrorBodies(t *testing.T) {
	f := newLedgerFixture()

	w := perform(f.router, http.MethodPost, "/api/billing", `{"tenantId":"t1","totalAmount":1000}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bill := decode[models.Billing](t, w)

	cases := []struct {
		name string
		body string
		code int
		kind utils.ErrorKind
	}{
		{"unknown method", `{"tenantId":"t1","amount":10,"method":"cheque"}`, http.StatusBadRequest, utils.KindValidation},
		{"malformed json", `{"tenantId":`, http.StatusBadRequest, utils.KindValidation},
		{"overpayment", `{"tenantId":"t1","amount":1500,"method":"cash","billingId":"` + bill.ID + `"}`, http.StatusBadRequest, utils.KindValidation},
		{"unknown tenant", `{"tenantId":"nobody","amount":10,"method":"cash"}`, http.StatusBadRequest, utils.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(f.router, http.MethodPost, "/api/payments", tc.body, nil)
			require.Equal(t, tc.code, w.Code, w.Body.String())
			resp := decode[utils.ErrorResponse](t, w)
			assert.Equal(t, tc.kind, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}

	w = perform(f.router, http.MethodPost, "/api/payments", `{"tenantId":"t1","amount":1000,"method":"upi","billingId":"`+bill.ID+`"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = perform(f.router, http.MethodPost, "/api/payments", `{"tenantId":"t1","amount":1,"method":"upi","billingId":"`+bill.ID+`"}`, nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, utils.KindConflict, decode[utils.ErrorResponse](t, w).Error.Code)
}
