package dashboard

import (
	"context"
	"fmt"
	"time"

	dashboardRepo "pgmanager/database/repository/dashboard"
	"pgmanager/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRevenueMonths = 6
	MaxRevenueMonths     = 24
	DefaultActivityLimit = 10
	MaxActivityLimit     = 100
)

// DashboardService computes the dashboard rollups. Every call aggregates fresh.
type DashboardService interface {
	// Stats summarizes one PG, or every PG when pgID is empty. Day and month
	// boundaries follow the server's local time zone.
	Stats(ctx context.Context, pgID string) (*models.DashboardStats, error)
	// Revenue returns payment totals for the last months calendar months,
	// oldest first, including months without payments.
	Revenue(ctx context.Context, pgID string, months int) ([]models.MonthlyTotal, error)
	RecentActivities(ctx context.Context, limit int) ([]models.Activity, error)
}

type DefaultDashboardService struct {
	Repo dashboardRepo.DashboardRepository
	Now  func() time.Time
}

func NewDefaultDashboardService(repo dashboardRepo.DashboardRepository) *DefaultDashboardService {
	return &DefaultDashboardService{Repo: repo, Now: time.Now}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// monthBounds returns months+1 local month starts beginning at from. Each
// boundary carries the offset in force on that date.
func monthBounds(from time.Time, months int) []time.Time {
	bounds := make([]time.Time, months+1)
	for i := range bounds {
		bounds[i] = from.AddDate(0, i, 0)
	}
	return bounds
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func (s *DefaultDashboardService) Stats(ctx context.Context, pgID string) (*models.DashboardStats, error) {
	now := s.Now()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	month := startOfMonth(now)
	nextMonth := month.AddDate(0, 1, 0)

	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.Repo.BedCounts(gctx, pgID)
		if err != nil {
			return err
		}
		stats.OccupiedBeds = counts[models.BedOccupied]
		stats.VacantBeds = counts[models.BedVacant]
		stats.ReservedBeds = counts[models.BedReserved]
		stats.MaintenanceBeds = counts[models.BedMaintenance]
		for _, n := range counts {
			stats.TotalBeds += n
		}
		return nil
	})
	g.Go(func() (err error) {
		stats.ActiveTenants, err = s.Repo.ActiveTenants(gctx, pgID)
		return err
	})
	g.Go(func() (err error) {
		stats.NewTenantsThisMonth, err = s.Repo.NewTenantsBetween(gctx, pgID, month, nextMonth)
		return err
	})
	g.Go(func() (err error) {
		stats.TodayCollection, stats.TodayPayments, err = s.Repo.PaymentTotal(gctx, pgID, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingDues, stats.PendingBills, err = s.Repo.PendingDues(gctx, pgID)
		return err
	})
	g.Go(func() (err error) {
		stats.OpenComplaints, err = s.Repo.OpenComplaints(gctx, pgID)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthExpenses, err = s.Repo.ExpenseTotal(gctx, pgID, month, nextMonth)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	if stats.TotalBeds > 0 {
		rate := decimal.NewFromInt(stats.OccupiedBeds).
			Div(decimal.NewFromInt(stats.TotalBeds)).
			Mul(decimal.NewFromInt(100))
		stats.OccupancyRate = rate.Round(2).InexactFloat64()
	}
	stats.TodayCollection = round2(stats.TodayCollection)
	stats.PendingDues = round2(stats.PendingDues)
	stats.MonthExpenses = round2(stats.MonthExpenses)
	return stats, nil
}

func (s *DefaultDashboardService) Revenue(ctx context.Context, pgID string, months int) ([]models.MonthlyTotal, error) {
	if months <= 0 {
		months = DefaultRevenueMonths
	}
	months = min(months, MaxRevenueMonths)

	now := s.Now()
	from := startOfMonth(now).AddDate(0, -(months - 1), 0)
	bounds := monthBounds(from, months)
	rows, err := s.Repo.RevenueByMonth(ctx, pgID, bounds)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]models.MonthlyTotal, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	series := make([]models.MonthlyTotal, 0, months)
	for i := 0; i < months; i++ {
		key := bounds[i].Format("2006-01")
		bucket, ok := byMonth[key]
		if !ok {
			bucket = models.MonthlyTotal{Month: key}
		}
		bucket.Total = round2(bucket.Total)
		series = append(series, bucket)
	}
	return series, nil
}

func (s *DefaultDashboardService) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	limit = min(limit, MaxActivityLimit)
	return s.Repo.RecentActivities(ctx, int64(limit))
}
