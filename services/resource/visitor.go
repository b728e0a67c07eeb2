package resource

import (
	"context"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"

	"go.mongodb.org/mongo-driver/bson"
)

// CheckOutVisitor stamps the visitor's departure. Checking out a visitor who
// already left returns the stored record unchanged.
func CheckOutVisitor(ctx context.Context, repo resourceRepo.Repository[models.Visitor], id string, now time.Time) (*models.Visitor, error) {
	v, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == models.VisitorCheckedOut {
		return v, nil
	}
	if err := repo.UpdateFields(ctx, id, bson.M{
		"status":       models.VisitorCheckedOut,
		"checkOutTime": now,
	}); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}
