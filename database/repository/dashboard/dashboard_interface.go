package dashboardRepo

import (
	"context"
	"time"

	"pgmanager/models"
)

// DashboardRepository runs the read-only rollups behind the dashboard.
// An empty pgID aggregates across every PG.
type DashboardRepository interface {
	BedCounts(ctx context.Context, pgID string) (map[string]int64, error)
	ActiveTenants(ctx context.Context, pgID string) (int64, error)
	// NewTenantsBetween counts tenants whose join date falls in [from, to).
	NewTenantsBetween(ctx context.Context, pgID string, from, to time.Time) (int64, error)
	PaymentTotal(ctx context.Context, pgID string, from, to time.Time) (float64, int64, error)
	PendingDues(ctx context.Context, pgID string) (float64, int64, error)
	OpenComplaints(ctx context.Context, pgID string) (int64, error)
	ExpenseTotal(ctx context.Context, pgID string, from, to time.Time) (float64, error)
	// RevenueByMonth buckets payments between consecutive month boundaries.
	// Months are labelled in the location of the boundaries; empty months
	// are omitted.
	RevenueByMonth(ctx context.Context, pgID string, bounds []time.Time) ([]models.MonthlyTotal, error)
	RecentActivities(ctx context.Context, limit int64) ([]models.Activity, error)
}
