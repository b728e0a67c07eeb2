package ledgerRepo

import (
	"context"
	"errors"
	"fmt"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	*resourceRepo.MongoRepo[models.Payment]
}

// NewMongoPaymentRepo creates a new instance of PaymentRepository using MongoDB.
func NewMongoPaymentRepo(db *mongo.Database) *MongoPaymentRepo {
	return &MongoPaymentRepo{MongoRepo: resourceRepo.NewMongoRepo[models.Payment](db, resourceRepo.PaymentSpec)}
}

func (r *MongoPaymentRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	var payment models.Payment
	err := r.Collection().FindOne(ctx, bson.M{"idempotencyKey": key}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("no payment recorded for idempotency key %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment by idempotency key: %w", err)
	}
	return &payment, nil
}
