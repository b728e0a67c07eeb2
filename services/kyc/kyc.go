package kyc

import (
	"context"
	"fmt"
	"io"
	"time"

	occupancyRepo "pgmanager/database/repository/occupancy"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/services/storage"
	"pgmanager/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Document types accepted for upload.
var documentTypes = map[string]bool{
	"id_proof":      true,
	"address_proof": true,
	"photo":         true,
	"agreement":     true,
	"other":         true,
}

const documentFolder = "pgmanager/kyc"

// KYCService manages tenant identity documents and verification status.
type KYCService interface {
	AddDocument(ctx context.Context, tenantID string, upload Upload) (*models.Tenant, error)
	RemoveDocument(ctx context.Context, tenantID, publicID string) (*models.Tenant, error)
	SetStatus(ctx context.Context, tenantID, status string) (*models.Tenant, error)
}

// Upload is a document received from a client.
type Upload struct {
	Type     string
	FileName string
	File     io.Reader
}

// DefaultKYCService is the production implementation. Storage may be nil when
// no document store is configured; uploads are then refused.
type DefaultKYCService struct {
	Tenants  occupancyRepo.TenantRepository
	Storage  storage.StorageService
	Activity activity.ActivityService
	Now      func() time.Time
}

func NewDefaultKYCService(tenants occupancyRepo.TenantRepository, store storage.StorageService, act activity.ActivityService) *DefaultKYCService {
	return &DefaultKYCService{Tenants: tenants, Storage: store, Activity: act, Now: time.Now}
}

func (s *DefaultKYCService) AddDocument(ctx context.Context, tenantID string, upload Upload) (*models.Tenant, error) {
	if s.Storage == nil {
		return nil, utils.Validation("document storage is not configured")
	}
	if !documentTypes[upload.Type] {
		return nil, utils.Validation("unknown document type %q", upload.Type)
	}
	if upload.File == nil {
		return nil, utils.Validation("file is required")
	}
	if _, err := s.Tenants.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}

	publicID := fmt.Sprintf("%s-%s-%s", tenantID, upload.Type, uuid.New().String()[:8])
	stored, err := s.Storage.Upload(ctx, upload.File, documentFolder, publicID)
	if err != nil {
		return nil, utils.Internal(err, "failed to store document")
	}

	doc := models.TenantDocument{
		Type:       upload.Type,
		URL:        stored.URL,
		PublicID:   stored.PublicID,
		FileName:   upload.FileName,
		UploadedAt: s.Now(),
	}
	if err := s.Tenants.AddDocument(ctx, tenantID, doc); err != nil {
		if delErr := s.Storage.Delete(context.WithoutCancel(ctx), stored.PublicID); delErr != nil {
			utils.GetLogger().Warn("orphaned uploaded document", zap.String("publicID", stored.PublicID), zap.Error(delErr))
		}
		return nil, err
	}

	tenant, err := s.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	// The first document moves a pending tenant to submitted.
	if tenant.KYCStatus == "" || tenant.KYCStatus == models.KYCPending {
		if err := s.Tenants.SetKYCStatus(ctx, tenantID, models.KYCSubmitted); err != nil {
			return nil, err
		}
		tenant.KYCStatus = models.KYCSubmitted
	}
	s.Activity.Log(ctx, models.Activity{
		Type:        "tenant",
		Action:      activity.ActionUpdate,
		Description: fmt.Sprintf("Uploaded %s document for %s", upload.Type, tenant.Name),
		EntityType:  "tenant",
		EntityID:    tenantID,
	})
	return tenant, nil
}

func (s *DefaultKYCService) RemoveDocument(ctx context.Context, tenantID, publicID string) (*models.Tenant, error) {
	doc, err := s.Tenants.RemoveDocument(ctx, tenantID, publicID)
	if err != nil {
		return nil, err
	}
	if s.Storage != nil {
		if err := s.Storage.Delete(ctx, doc.PublicID); err != nil {
			utils.GetLogger().Warn("failed to delete stored document", zap.String("publicID", doc.PublicID), zap.Error(err))
		}
	}
	return s.Tenants.GetByID(ctx, tenantID)
}

func (s *DefaultKYCService) SetStatus(ctx context.Context, tenantID, status string) (*models.Tenant, error) {
	if !models.ValidKYCStatus(status) {
		return nil, utils.Validation("invalid KYC status %q", status)
	}
	if err := s.Tenants.SetKYCStatus(ctx, tenantID, status); err != nil {
		return nil, err
	}
	tenant, err := s.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.Activity.Log(ctx, models.Activity{
		Type:        "tenant",
		Action:      activity.ActionUpdate,
		Description: fmt.Sprintf("KYC for %s set to %s", tenant.Name, status),
		EntityType:  "tenant",
		EntityID:    tenantID,
		Metadata:    map[string]any{"kycStatus": status},
	})
	return tenant, nil
}
