package ledgerRepo

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

// MongoBillingRepo implements BillingRepository using MongoDB.
type MongoBillingRepo struct {
	*resourceRepo.MongoRepo[models.Billing]
}

// NewMongoBillingRepo creates a new instance of BillingRepository using MongoDB.
func NewMongoBillingRepo(db *mongo.Database) *MongoBillingRepo {
	return &MongoBillingRepo{MongoRepo: resourceRepo.NewMongoRepo[models.Billing](db, resourceRepo.BillingSpec)}
}

// paidPipeline sets paidAmount to the rounded result of op(paidAmount, amount),
// clamped at zero, then recomputes dueAmount and status.
func paidPipeline(op string, amount float64, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "paidAmount", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$round", Value: bson.A{
					bson.D{{Key: op, Value: bson.A{"$paidAmount", amount}}}, 2,
				}}},
			}}}},
			{Key: "updatedAt", Value: now},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "dueAmount", Value: bson.D{{Key: "$round", Value: bson.A{
				bson.D{{Key: "$subtract", Value: bson.A{"$totalAmount", "$paidAmount"}}}, 2,
			}}}},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$switch", Value: bson.D{
				{Key: "branches", Value: bson.A{
					bson.D{
						{Key: "case", Value: bson.D{{Key: "$lte", Value: bson.A{"$dueAmount", 0}}}},
						{Key: "then", Value: models.BillingPaid},
					},
					bson.D{
						{Key: "case", Value: bson.D{{Key: "$and", Value: bson.A{
							bson.D{{Key: "$eq", Value: bson.A{"$status", models.BillingOverdue}}},
							bson.D{{Key: "$lt", Value: bson.A{"$dueDate", now}}},
						}}}},
						{Key: "then", Value: models.BillingOverdue},
					},
					bson.D{
						{Key: "case", Value: bson.D{{Key: "$gt", Value: bson.A{"$paidAmount", 0}}}},
						{Key: "then", Value: models.BillingPartial},
					},
				}},
				{Key: "default", Value: models.BillingPending},
			}}}},
		}}},
	}
}

// applyFilter matches an unpaid bill with at least amount still due.
func applyFilter(billingID string, amount float64) bson.M {
	return bson.M{
		"id":        billingID,
		"status":    bson.M{"$ne": models.BillingPaid},
		"dueAmount": bson.M{"$gte": amount},
	}
}

// overdueFilter matches open bills with money due whose due date is set and
// before now.
func overdueFilter(now time.Time) bson.M {
	return bson.M{
		"status":    bson.M{"$in": bson.A{models.BillingPending, models.BillingPartial}},
		"dueAmount": bson.M{"$gt": 0},
		"dueDate":   bson.M{"$lt": now, "$gt": time.Time{}},
	}
}

func (r *MongoBillingRepo) ApplyPayment(ctx context.Context, billingID string, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, applyFilter(billingID, amount), paidPipeline("$add", amount, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to apply payment to billing %s: %w", billingID, err)
	}
	if result.MatchedCount == 0 {
		bill, err := r.GetByID(ctx, billingID)
		if err != nil {
			return err
		}
		if bill.Status == models.BillingPaid {
			return utils.Conflict("billing %s is already paid", billingID)
		}
		return utils.Conflict("payment of %.2f exceeds the %.2f due on billing %s", amount, bill.DueAmount, billingID)
	}
	return nil
}

func (r *MongoBillingRepo) ReversePayment(ctx context.Context, billingID string, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	result, err := r.Collection().UpdateOne(ctx, bson.M{"id": billingID}, paidPipeline("$subtract", amount, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to reverse payment on billing %s: %w", billingID, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("billing %s not found", billingID)
	}
	return nil
}

func (r *MongoBillingRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": models.BillingOverdue, "updatedAt": now}}
	result, err := r.Collection().UpdateMany(ctx, overdueFilter(now), update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue bills: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoBillingRepo) ExistsForMonth(ctx context.Context, tenantID, month string) (bool, error) {
	n, err := r.Count(ctx, bson.M{"tenantId": tenantID, "billingMonth": month, "autoGenerated": true})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
