package adminRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoAdminRepo implements AdminRepository using MongoDB.
type MongoAdminRepo struct {
	coll *mongo.Collection
}

// NewMongoAdminRepo creates a new instance of AdminRepository using MongoDB.
func NewMongoAdminRepo(db *mongo.Database) *MongoAdminRepo {
	repo := &MongoAdminRepo{coll: db.Collection(resourceRepo.Admins)}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create admin indexes", zap.Error(err))
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoAdminRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "fcmTokens", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoAdminRepo) findOne(ctx context.Context, filter bson.M, projection bson.M) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var admin models.Admin
	err := r.coll.FindOne(ctx, filter, opts).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("admin not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}
	return &admin, nil
}

func (r *MongoAdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}, nil)
}

func (r *MongoAdminRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"id": id}, bson.M{"passwordHash": 0})
}

func (r *MongoAdminRepo) GetByIDWithSecret(ctx context.Context, id string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"id": id}, nil)
}

func (r *MongoAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	if _, err := r.coll.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.Conflict("an admin with email %s already exists", admin.Email)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *MongoAdminRepo) UpdateSetDocument(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	fields := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update admin with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("admin %s not found", id)
	}
	return nil
}

func (r *MongoAdminRepo) AddDevice(ctx context.Context, id, token string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	update := bson.M{"$addToSet": bson.M{"fcmTokens": token}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to register device for admin %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("admin %s not found", id)
	}
	return nil
}

func (r *MongoAdminRepo) RemoveDevices(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := bson.M{"fcmTokens": bson.M{"$in": tokens}}
	update := bson.M{"$pull": bson.M{"fcmTokens": bson.M{"$in": tokens}}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to remove devices: %w", err)
	}
	return nil
}

func (r *MongoAdminRepo) DeviceTokens(ctx context.Context, id string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := bson.M{"isActive": true}
	if id != "" {
		filter["id"] = id
	}
	opts := options.Find().SetProjection(bson.M{"fcmTokens": 1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer cursor.Close(ctx)

	var admins []models.Admin
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode device tokens: %w", err)
	}
	var tokens []string
	for _, a := range admins {
		tokens = append(tokens, a.FCMTokens...)
	}
	return tokens, nil
}

func (r *MongoAdminRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

func (r *MongoAdminRepo) InsertIfAbsent(ctx context.Context, admin *models.Admin) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	opts := options.Update().SetUpsert(true)
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": admin.ID}, bson.M{"$setOnInsert": admin}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	return result.UpsertedCount == 1, nil
}
