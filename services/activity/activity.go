package activity

import (
	"context"
	"fmt"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actions recorded in the activity log.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
	ActionTransfer = "transfer"
	ActionPayment  = "payment"
	ActionReverse  = "reverse"
	ActionGenerate = "generate"
)

// ActivityService appends audit entries.
type ActivityService interface {
	// Record appends an entry. Use it inside a unit of work when the entry
	// must commit together with the change it describes.
	Record(ctx context.Context, entry models.Activity) (*models.Activity, error)
	// Log records an entry and only logs a failure.
	Log(ctx context.Context, entry models.Activity)
}

// DefaultActivityService is the production implementation.
type DefaultActivityService struct {
	Repo resourceRepo.Repository[models.Activity]
	Now  func() time.Time
}

func NewDefaultActivityService(repo resourceRepo.Repository[models.Activity]) *DefaultActivityService {
	return &DefaultActivityService{Repo: repo, Now: time.Now}
}

func (s *DefaultActivityService) Record(ctx context.Context, entry models.Activity) (*models.Activity, error) {
	entry.ID = uuid.New().String()
	entry.Stamp(s.Now())
	if entry.AdminID == "" {
		entry.AdminID = utils.AdminIDFrom(ctx)
	}
	if entry.Description == "" {
		entry.Description = fmt.Sprintf("%s %s", entry.Type, entry.Action)
	}
	if err := s.Repo.Create(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return &entry, nil
}

func (s *DefaultActivityService) Log(ctx context.Context, entry models.Activity) {
	if _, err := s.Record(ctx, entry); err != nil {
		utils.GetLogger().Warn("activity not recorded",
			zap.String("type", entry.Type),
			zap.String("entityID", entry.EntityID),
			zap.Error(err))
	}
}
