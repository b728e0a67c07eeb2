package handlers

import (
	"net/http"
	"strings"

	"pgmanager/models"
	"pgmanager/services/ledger"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client's key for safely retrying a payment.
const IdempotencyHeader = "Idempotency-Key"

// LedgerHandler serves the billing and payment endpoints that go beyond plain CRUD.
type LedgerHandler struct {
	Ledger ledger.LedgerService
}

func NewLedgerHandler(l ledger.LedgerService) *LedgerHandler {
	return &LedgerHandler{Ledger: l}
}

func (h *LedgerHandler) CreateBill(c *gin.Context) {
	var bill models.Billing
	if !bindJSON(c, &bill) {
		return
	}
	created, err := h.Ledger.CreateBill(c.Request.Context(), &bill)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *LedgerHandler) DeleteBill(c *gin.Context) {
	bill, err := h.Ledger.DeleteBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

type generateRequest struct {
	Month string `json:"month"`
}

// GenerateBills handles POST /api/billing/generate. The month defaults to the
// current one.
func (h *LedgerHandler) GenerateBills(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	result, err := h.Ledger.GenerateMonthly(c.Request.Context(), req.Month)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Monthly bills generated",
		zap.String("month", result.Month),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped))
	c.JSON(http.StatusOK, result)
}

func (h *LedgerHandler) MarkOverdue(c *gin.Context) {
	n, err := h.Ledger.MarkOverdue(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// RecordPayment handles POST /api/payments. A replayed idempotency key answers
// 200 with the original payment instead of 201.
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	var payment models.Payment
	if !bindJSON(c, &payment) {
		return
	}
	if key := strings.TrimSpace(c.GetHeader(IdempotencyHeader)); key != "" {
		payment.IdempotencyKey = key
	}
	recorded, replayed, err := h.Ledger.RecordPayment(c.Request.Context(), &payment)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if replayed {
		c.Header("Idempotent-Replayed", "true")
		c.JSON(http.StatusOK, recorded)
		return
	}
	c.JSON(http.StatusCreated, recorded)
}

func (h *LedgerHandler) DeletePayment(c *gin.Context) {
	payment, err := h.Ledger.DeletePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *LedgerHandler) CreateIntent(c *gin.Context) {
	var req ledger.IntentRequest
	if !bindJSON(c, &req) {
		return
	}
	intent, err := h.Ledger.CreatePaymentIntent(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}
