package occupancyRepo

import (
	"context"
	"fmt"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoBedRepo implements BedRepository using MongoDB.
type MongoBedRepo struct {
	*resourceRepo.MongoRepo[models.Bed]
}

// NewMongoBedRepo creates a new instance of BedRepository using MongoDB.
func NewMongoBedRepo(db *mongo.Database) *MongoBedRepo {
	return &MongoBedRepo{MongoRepo: resourceRepo.NewMongoRepo[models.Bed](db, resourceRepo.BedSpec)}
}

// occupyFilter matches an active bed that is vacant or reserved.
func occupyFilter(bedID string) bson.M {
	return bson.M{
		"id":       bedID,
		"isActive": true,
		"status":   bson.M{"$in": bson.A{models.BedVacant, models.BedReserved}},
	}
}

func (r *MongoBedRepo) Occupy(ctx context.Context, bedID, tenantID string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":    models.BedOccupied,
		"tenantId":  tenantID,
		"updatedAt": time.Now(),
	}}

	result, err := r.Collection().UpdateOne(ctx, occupyFilter(bedID), update)
	if err != nil {
		return fmt.Errorf("failed to occupy bed %s: %w", bedID, err)
	}
	if result.MatchedCount == 0 {
		n, err := r.Collection().CountDocuments(ctx, bson.M{"id": bedID})
		if err != nil {
			return fmt.Errorf("failed to check bed %s: %w", bedID, err)
		}
		if n == 0 {
			return utils.NotFound("bed %s not found", bedID)
		}
		return utils.Conflict("bed %s is not available", bedID)
	}
	return nil
}

func (r *MongoBedRepo) Vacate(ctx context.Context, bedID, tenantID string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := bson.M{"id": bedID, "tenantId": tenantID}
	update := bson.M{
		"$set":   bson.M{"status": models.BedVacant, "updatedAt": time.Now()},
		"$unset": bson.M{"tenantId": ""},
	}

	result, err := r.Collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to vacate bed %s: %w", bedID, err)
	}
	if result.MatchedCount == 0 {
		utils.GetLogger().Warn("bed not held by tenant, nothing to vacate",
			zap.String("bedID", bedID), zap.String("tenantID", tenantID))
	}
	return nil
}
