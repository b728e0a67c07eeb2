package occupancyRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTenantRepo implements TenantRepository using MongoDB.
type MongoTenantRepo struct {
	*resourceRepo.MongoRepo[models.Tenant]
}

// NewMongoTenantRepo creates a new instance of TenantRepository using MongoDB.
func NewMongoTenantRepo(db *mongo.Database) *MongoTenantRepo {
	return &MongoTenantRepo{MongoRepo: resourceRepo.NewMongoRepo[models.Tenant](db, resourceRepo.TenantSpec)}
}

// markLeft matches only an active tenant so a repeated check-out changes
// nothing.
func markLeft(tenantID string, at time.Time) (bson.M, bson.M) {
	filter := bson.M{"id": tenantID, "isActive": true}
	update := bson.M{"$set": bson.M{
		"isActive":  false,
		"status":    models.TenantLeft,
		"leaveDate": at,
		"updatedAt": at,
	}}
	return filter, update
}

func (r *MongoTenantRepo) MarkLeft(ctx context.Context, tenantID string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter, update := markLeft(tenantID, at)
	result, err := r.Collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to check out tenant %s: %w", tenantID, err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *MongoTenantRepo) Reactivate(ctx context.Context, tenantID string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"isActive": true, "status": models.TenantActive, "updatedAt": time.Now()},
		"$unset": bson.M{"leaveDate": ""},
	}
	if _, err := r.Collection().UpdateOne(ctx, bson.M{"id": tenantID}, update); err != nil {
		return fmt.Errorf("failed to reactivate tenant %s: %w", tenantID, err)
	}
	return nil
}

func (r *MongoTenantRepo) SetPlacement(ctx context.Context, tenantID string, p Placement) error {
	return r.UpdateFields(ctx, tenantID, bson.M{
		"pgId":       p.PGID,
		"roomId":     p.RoomID,
		"bedId":      p.BedID,
		"rentAmount": p.RentAmount,
	})
}

func (r *MongoTenantRepo) AddDocument(ctx context.Context, tenantID string, doc models.TenantDocument) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := r.Collection().UpdateOne(ctx, bson.M{"id": tenantID}, update)
	if err != nil {
		return fmt.Errorf("failed to add document for tenant %s: %w", tenantID, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("tenant %s not found", tenantID)
	}
	return nil
}

func (r *MongoTenantRepo) RemoveDocument(ctx context.Context, tenantID, publicID string) (*models.TenantDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := bson.M{"id": tenantID, "documents.publicId": publicID}
	update := bson.M{
		"$pull": bson.M{"documents": bson.M{"publicId": publicID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"documents": bson.M{"$elemMatch": bson.M{"publicId": publicID}}})

	var before models.Tenant
	err := r.Collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("document %s not found for tenant %s", publicID, tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove document for tenant %s: %w", tenantID, err)
	}
	if len(before.Documents) == 0 {
		return nil, utils.NotFound("document %s not found for tenant %s", publicID, tenantID)
	}
	return &before.Documents[0], nil
}

func (r *MongoTenantRepo) SetKYCStatus(ctx context.Context, tenantID, status string) error {
	return r.UpdateFields(ctx, tenantID, bson.M{"kycStatus": status})
}
