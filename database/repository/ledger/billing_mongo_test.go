package ledgerRepo

import (
	"testing"
	"time"

	"pgmanager/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var fixedNow = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

func TestPaidPipeline_PaidThenDueThenStatus(t *testing.T) {
	p := paidPipeline("$subtract", 250, fixedNow)
	require.Len(t, p, 3)

	paid := p[0][0].Value.(bson.D)
	assert.Equal(t, "paidAmount", paid[0].Key)
	assert.Equal(t, bson.D{{Key: "$max", Value: bson.A{
		0,
		bson.D{{Key: "$round", Value: bson.A{
			bson.D{{Key: "$subtract", Value: bson.A{"$paidAmount", 250.0}}}, 2,
		}}},
	}}}, paid[0].Value)
	assert.Equal(t, bson.E{Key: "updatedAt", Value: fixedNow}, paid[1])

	due := p[1][0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "dueAmount", Value: bson.D{{Key: "$round", Value: bson.A{
		bson.D{{Key: "$subtract", Value: bson.A{"$totalAmount", "$paidAmount"}}}, 2,
	}}}}, due[0])

	status := p[2][0].Value.(bson.D)[0]
	require.Equal(t, "status", status.Key)
	body := status.Value.(bson.D)[0].Value.(bson.D)
	branches := body[0].Value.(bson.A)
	require.Len(t, branches, 3)

	settled := branches[0].(bson.D)
	assert.Equal(t, bson.D{{Key: "$lte", Value: bson.A{"$dueAmount", 0}}}, settled[0].Value)
	assert.Equal(t, models.BillingPaid, settled[1].Value)

	stillOverdue := branches[1].(bson.D)
	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$status", models.BillingOverdue}}},
		bson.D{{Key: "$lt", Value: bson.A{"$dueDate", fixedNow}}},
	}}}, stillOverdue[0].Value)
	assert.Equal(t, models.BillingOverdue, stillOverdue[1].Value)

	partial := branches[2].(bson.D)
	assert.Equal(t, bson.D{{Key: "$gt", Value: bson.A{"$paidAmount", 0}}}, partial[0].Value)
	assert.Equal(t, models.BillingPartial, partial[1].Value)
	assert.Equal(t, bson.E{Key: "default", Value: models.BillingPending}, body[1])
}

func TestPaidPipeline_AddUsesOperator(t *testing.T) {
	paid := paidPipeline("$add", 100, fixedNow)[0][0].Value.(bson.D)[0].Value.(bson.D)
	round := paid[0].Value.(bson.A)[1].(bson.D)[0].Value.(bson.A)
	assert.Equal(t, bson.D{{Key: "$add", Value: bson.A{"$paidAmount", 100.0}}}, round[0])
}

func TestApplyFilter_RejectsPaidAndOverpayment(t *testing.T) {
	assert.Equal(t, bson.M{
		"id":        "bill-1",
		"status":    bson.M{"$ne": models.BillingPaid},
		"dueAmount": bson.M{"$gte": 400.0},
	}, applyFilter("bill-1", 400))
}

func TestOverdueFilter_SkipsBillsWithoutDueDate(t *testing.T) {
	assert.Equal(t, bson.M{
		"status":    bson.M{"$in": bson.A{models.BillingPending, models.BillingPartial}},
		"dueAmount": bson.M{"$gt": 0},
		"dueDate":   bson.M{"$lt": fixedNow, "$gt": time.Time{}},
	}, overdueFilter(fixedNow))
}
