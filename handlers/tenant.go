package handlers

import (
	"net/http"

	"pgmanager/models"
	"pgmanager/services/kyc"
	"pgmanager/services/occupancy"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Uploaded KYC documents are capped at 10 MiB.
const maxDocumentSize = 10 << 20

// TenantHandler serves check-in, check-out, transfer and KYC endpoints.
type TenantHandler struct {
	Occupancy occupancy.OccupancyService
	KYC       kyc.KYCService
}

func NewTenantHandler(occ occupancy.OccupancyService, k kyc.KYCService) *TenantHandler {
	return &TenantHandler{Occupancy: occ, KYC: k}
}

// CheckIn handles POST /api/tenants.
func (h *TenantHandler) CheckIn(c *gin.Context) {
	var tenant models.Tenant
	if !bindJSON(c, &tenant) {
		return
	}
	created, err := h.Occupancy.CheckIn(c.Request.Context(), &tenant)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Tenant checked in", zap.String("tenantID", created.ID), zap.String("bedID", created.BedID))
	c.JSON(http.StatusCreated, created)
}

// CheckOut handles DELETE /api/tenants/:id.
func (h *TenantHandler) CheckOut(c *gin.Context) {
	tenant, err := h.Occupancy.CheckOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandler) Transfer(c *gin.Context) {
	var req occupancy.TransferRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.Occupancy.Transfer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// UploadDocument handles multipart POST /api/tenants/:id/documents with a
// "file" part and a "type" field.
func (h *TenantHandler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.Validation("file is required"))
		return
	}
	if fileHeader.Size > maxDocumentSize {
		utils.RespondError(c, utils.Validation("file exceeds %d bytes", maxDocumentSize))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, utils.Internal(err, "failed to read upload"))
		return
	}
	defer file.Close()

	tenant, err := h.KYC.AddDocument(c.Request.Context(), c.Param("id"), kyc.Upload{
		Type:     c.PostForm("type"),
		FileName: fileHeader.Filename,
		File:     file,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandler) RemoveDocument(c *gin.Context) {
	tenant, err := h.KYC.RemoveDocument(c.Request.Context(), c.Param("id"), c.Param("publicId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type kycStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TenantHandler) SetKYCStatus(c *gin.Context) {
	var req kycStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.KYC.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
