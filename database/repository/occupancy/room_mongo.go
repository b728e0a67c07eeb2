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
)

// MongoRoomRepo implements RoomRepository using MongoDB.
type MongoRoomRepo struct {
	*resourceRepo.MongoRepo[models.Room]
}

// NewMongoRoomRepo creates a new instance of RoomRepository using MongoDB.
func NewMongoRoomRepo(db *mongo.Database) *MongoRoomRepo {
	return &MongoRoomRepo{MongoRepo: resourceRepo.NewMongoRepo[models.Room](db, resourceRepo.RoomSpec)}
}

// occupancyPipeline adjusts occupiedBeds by delta and recomputes status in the
// same update, leaving maintenance rooms in maintenance.
func occupancyPipeline(delta int) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "occupiedBeds", Value: bson.D{{Key: "$add", Value: bson.A{"$occupiedBeds", delta}}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$switch", Value: bson.D{
				{Key: "branches", Value: bson.A{
					bson.D{
						{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$status", models.RoomMaintenance}}}},
						{Key: "then", Value: models.RoomMaintenance},
					},
					bson.D{
						{Key: "case", Value: bson.D{{Key: "$gte", Value: bson.A{"$occupiedBeds", "$capacity"}}}},
						{Key: "then", Value: models.RoomOccupied},
					},
				}},
				{Key: "default", Value: models.RoomAvailable},
			}}}},
		}}},
	}
}

// incrementFilter matches an active room that is not under maintenance and
// still has a free bed.
func incrementFilter(roomID string) bson.M {
	return bson.M{
		"id":       roomID,
		"isActive": true,
		"status":   bson.M{"$ne": models.RoomMaintenance},
		"$expr":    bson.M{"$lt": bson.A{"$occupiedBeds", "$capacity"}},
	}
}

func decrementFilter(roomID string) bson.M {
	return bson.M{"id": roomID, "occupiedBeds": bson.M{"$gt": 0}}
}

func (r *MongoRoomRepo) IncrementOccupancy(ctx context.Context, roomID string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, incrementFilter(roomID), occupancyPipeline(1))
	if err != nil {
		return fmt.Errorf("failed to increment occupancy of room %s: %w", roomID, err)
	}
	if result.MatchedCount == 0 {
		room, err := r.GetByID(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status == models.RoomMaintenance {
			return utils.Conflict("room %s is under maintenance", roomID)
		}
		return utils.Conflict("room %s is full", roomID)
	}
	return nil
}

func (r *MongoRoomRepo) DecrementOccupancy(ctx context.Context, roomID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, decrementFilter(roomID), occupancyPipeline(-1))
	if err != nil {
		return false, fmt.Errorf("failed to decrement occupancy of room %s: %w", roomID, err)
	}
	if result.MatchedCount == 0 {
		// Already at zero is fine; a missing room is not.
		if _, err := r.GetByID(ctx, roomID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
