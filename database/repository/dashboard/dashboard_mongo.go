package dashboardRepo

import (
	"context"
	"fmt"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDashboardRepo implements DashboardRepository using MongoDB aggregations.
type MongoDashboardRepo struct {
	db *mongo.Database
}

func NewMongoDashboardRepo(db *mongo.Database) *MongoDashboardRepo {
	return &MongoDashboardRepo{db: db}
}

func scoped(pgID string, filter bson.M) bson.M {
	if pgID != "" {
		filter["pgId"] = pgID
	}
	return filter
}

type sumRow struct {
	Total float64 `bson:"total"`
	Count int64   `bson:"count"`
}

// sum runs $match then a single $group summing field.
func (r *MongoDashboardRepo) sum(ctx context.Context, coll string, match bson.M, field string) (sumRow, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + field}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return sumRow{}, fmt.Errorf("failed to aggregate %s: %w", coll, err)
	}
	defer cursor.Close(ctx)

	var rows []sumRow
	if err := cursor.All(ctx, &rows); err != nil {
		return sumRow{}, fmt.Errorf("failed to decode %s totals: %w", coll, err)
	}
	if len(rows) == 0 {
		return sumRow{}, nil
	}
	rows[0].Total = models.Money(rows[0].Total)
	return rows[0], nil
}

func (r *MongoDashboardRepo) count(ctx context.Context, coll string, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	n, err := r.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", coll, err)
	}
	return n, nil
}

func (r *MongoDashboardRepo) BedCounts(ctx context.Context, pgID string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scoped(pgID, bson.M{"isActive": true})}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.db.Collection(resourceRepo.Beds).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate beds: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode bed counts: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *MongoDashboardRepo) ActiveTenants(ctx context.Context, pgID string) (int64, error) {
	return r.count(ctx, resourceRepo.Tenants, scoped(pgID, bson.M{"isActive": true}))
}

func (r *MongoDashboardRepo) NewTenantsBetween(ctx context.Context, pgID string, from, to time.Time) (int64, error) {
	return r.count(ctx, resourceRepo.Tenants, scoped(pgID, bson.M{"joinDate": bson.M{"$gte": from, "$lt": to}}))
}

func (r *MongoDashboardRepo) PaymentTotal(ctx context.Context, pgID string, from, to time.Time) (float64, int64, error) {
	row, err := r.sum(ctx, resourceRepo.Payments,
		scoped(pgID, bson.M{"paymentDate": bson.M{"$gte": from, "$lt": to}}), "amount")
	return row.Total, row.Count, err
}

func (r *MongoDashboardRepo) PendingDues(ctx context.Context, pgID string) (float64, int64, error) {
	row, err := r.sum(ctx, resourceRepo.Billings,
		scoped(pgID, bson.M{"status": bson.M{"$ne": models.BillingPaid}, "dueAmount": bson.M{"$gt": 0}}), "dueAmount")
	return row.Total, row.Count, err
}

func (r *MongoDashboardRepo) OpenComplaints(ctx context.Context, pgID string) (int64, error) {
	return r.count(ctx, resourceRepo.Complaints, scoped(pgID, bson.M{
		"status": bson.M{"$in": bson.A{models.ComplaintOpen, models.ComplaintInProgress}},
	}))
}

func (r *MongoDashboardRepo) ExpenseTotal(ctx context.Context, pgID string, from, to time.Time) (float64, error) {
	row, err := r.sum(ctx, resourceRepo.Expenses,
		scoped(pgID, bson.M{"isActive": true, "date": bson.M{"$gte": from, "$lt": to}}), "amount")
	return row.Total, err
}

type bucketRow struct {
	Start time.Time `bson:"_id"`
	Total float64   `bson:"total"`
	Count int64     `bson:"count"`
}

// revenuePipeline buckets payments on precomputed boundaries so each month
// keeps the offset in force at its own start.
func revenuePipeline(pgID string, bounds []time.Time) mongo.Pipeline {
	boundaries := make(bson.A, len(bounds))
	for i, b := range bounds {
		boundaries[i] = b
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: scoped(pgID, bson.M{"paymentDate": bson.M{"$gte": bounds[0], "$lt": bounds[len(bounds)-1]}})}},
		{{Key: "$bucket", Value: bson.D{
			{Key: "groupBy", Value: "$paymentDate"},
			{Key: "boundaries", Value: boundaries},
			{Key: "output", Value: bson.D{
				{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}},
		}}},
	}
}

// monthlyTotals labels each bucket with the month of the boundary it starts at.
func monthlyTotals(rows []bucketRow, bounds []time.Time) []models.MonthlyTotal {
	labels := make(map[int64]string, len(bounds))
	for _, b := range bounds {
		labels[b.UnixMilli()] = b.Format("2006-01")
	}
	results := make([]models.MonthlyTotal, 0, len(rows))
	for _, row := range rows {
		month, ok := labels[row.Start.UnixMilli()]
		if !ok {
			continue
		}
		results = append(results, models.MonthlyTotal{Month: month, Total: row.Total, Count: row.Count})
	}
	return results
}

func (r *MongoDashboardRepo) RevenueByMonth(ctx context.Context, pgID string, bounds []time.Time) ([]models.MonthlyTotal, error) {
	if len(bounds) < 2 {
		return []models.MonthlyTotal{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	cursor, err := r.db.Collection(resourceRepo.Payments).Aggregate(ctx, revenuePipeline(pgID, bounds))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []bucketRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode revenue: %w", err)
	}
	return monthlyTotals(rows, bounds), nil
}

func (r *MongoDashboardRepo) RecentActivities(ctx context.Context, limit int64) ([]models.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.db.Collection(resourceRepo.Activities).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Activity{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return results, nil
}
