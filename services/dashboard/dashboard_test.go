package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"pgmanager/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentWindow struct{ from, to time.Time }

type fakeRepo struct {
	beds          map[string]int64
	payments      []paymentWindow
	expenseFrom   time.Time
	newFrom       time.Time
	newTo         time.Time
	revenueBounds []time.Time
	revenue       []models.MonthlyTotal
	activityLimit int64
	failBeds      bool
}

func (f *fakeRepo) BedCounts(ctx context.Context, pgID string) (map[string]int64, error) {
	if f.failBeds {
		return nil, errors.New("aggregate failed")
	}
	return f.beds, nil
}

func (f *fakeRepo) ActiveTenants(ctx context.Context, pgID string) (int64, error) { return 7, nil }

func (f *fakeRepo) NewTenantsBetween(ctx context.Context, pgID string, from, to time.Time) (int64, error) {
	f.newFrom, f.newTo = from, to
	return 2, nil
}

func (f *fakeRepo) PaymentTotal(ctx context.Context, pgID string, from, to time.Time) (float64, int64, error) {
	f.payments = append(f.payments, paymentWindow{from, to})
	return 12500.456, 3, nil
}

func (f *fakeRepo) PendingDues(ctx context.Context, pgID string) (float64, int64, error) {
	return 8000, 2, nil
}

func (f *fakeRepo) OpenComplaints(ctx context.Context, pgID string) (int64, error) { return 1, nil }

func (f *fakeRepo) ExpenseTotal(ctx context.Context, pgID string, from, to time.Time) (float64, error) {
	f.expenseFrom = from
	return 3000.5, nil
}

func (f *fakeRepo) RevenueByMonth(ctx context.Context, pgID string, bounds []time.Time) ([]models.MonthlyTotal, error) {
	f.revenueBounds = bounds
	return f.revenue, nil
}

func (f *fakeRepo) RecentActivities(ctx context.Context, limit int64) ([]models.Activity, error) {
	f.activityLimit = limit
	return []models.Activity{}, nil
}

var ist = time.FixedZone("IST", 5*3600+30*60)

func newService(repo *fakeRepo) *DefaultDashboardService {
	svc := NewDefaultDashboardService(repo)
	svc.Now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, ist) }
	return svc
}

func TestStats(t *testing.T) {
	repo := &fakeRepo{beds: map[string]int64{
		models.BedOccupied: 3, models.BedVacant: 4, models.BedReserved: 0, models.BedMaintenance: 1,
	}}
	stats, err := newService(repo).Stats(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, int64(8), stats.TotalBeds)
	assert.Equal(t, int64(3), stats.OccupiedBeds)
	assert.Equal(t, int64(4), stats.VacantBeds)
	assert.Equal(t, int64(1), stats.MaintenanceBeds)
	assert.Equal(t, 37.5, stats.OccupancyRate)
	assert.Equal(t, int64(7), stats.ActiveTenants)
	assert.Equal(t, 12500.46, stats.TodayCollection)
	assert.Equal(t, int64(3), stats.TodayPayments)
	assert.Equal(t, 8000.0, stats.PendingDues)
	assert.Equal(t, int64(2), stats.PendingBills)
	assert.Equal(t, int64(2), stats.NewTenantsThisMonth)
	assert.Equal(t, int64(1), stats.OpenComplaints)
	assert.Equal(t, 3000.5, stats.MonthExpenses)

	require.Len(t, repo.payments, 1)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, ist), repo.payments[0].from)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, ist), repo.payments[0].to)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, ist), repo.newFrom)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, ist), repo.newTo)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, ist), repo.expenseFrom)
}

func TestStatsWithoutBeds(t *testing.T) {
	stats, err := newService(&fakeRepo{beds: map[string]int64{}}).Stats(context.Background(), "pg-1")
	require.NoError(t, err)
	assert.Zero(t, stats.OccupancyRate)
}

func TestStatsPropagatesFailure(t *testing.T) {
	_, err := newService(&fakeRepo{failBeds: true}).Stats(context.Background(), "")
	assert.Error(t, err)
}

func TestRevenueFillsMissingMonths(t *testing.T) {
	repo := &fakeRepo{revenue: []models.MonthlyTotal{
		{Month: "2024-01", Total: 10000, Count: 2},
		{Month: "2024-03", Total: 5000.125, Count: 1},
	}}
	series, err := newService(repo).Revenue(context.Background(), "", 4)
	require.NoError(t, err)

	require.Len(t, repo.revenueBounds, 5)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, ist), repo.revenueBounds[0])
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, ist), repo.revenueBounds[4])

	require.Len(t, series, 4)
	assert.Equal(t, "2023-12", series[0].Month)
	assert.Zero(t, series[0].Total)
	assert.Equal(t, 10000.0, series[1].Total)
	assert.Equal(t, "2024-02", series[2].Month)
	assert.Equal(t, int64(1), series[3].Count)
}

func TestRevenueAndActivityLimits(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo)

	series, err := svc.Revenue(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, series, DefaultRevenueMonths)

	series, err = svc.Revenue(context.Background(), "", 100)
	require.NoError(t, err)
	assert.Len(t, series, MaxRevenueMonths)

	_, err = svc.RecentActivities(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultActivityLimit), repo.activityLimit)

	_, err = svc.RecentActivities(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxActivityLimit), repo.activityLimit)
}

func TestMonthBoundsFollowDaylightSaving(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	bounds := monthBounds(time.Date(2024, 2, 1, 0, 0, 0, 0, london), 3)
	require.Len(t, bounds, 4)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), bounds[0].UTC())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), bounds[1].UTC())
	assert.Equal(t, time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), bounds[2].UTC())
	assert.Equal(t, "2024-04", bounds[2].Format("2006-01"))
	assert.Equal(t, time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC), bounds[3].UTC())
}
