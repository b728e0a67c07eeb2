package models

import "time"

const (
	AdminRoleOwner   = "owner"
	AdminRoleManager = "manager"
)

// Admin is a dashboard operator. PasswordHash never leaves the server.
type Admin struct {
	Base               `bson:",inline"`
	Active             `bson:",inline"`
	Name               string     `bson:"name" json:"name"`
	Email              string     `bson:"email" json:"email"`
	Phone              string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Role               string     `bson:"role" json:"role"`
	PasswordHash       string     `bson:"passwordHash,omitempty" json:"-"`
	FCMTokens          []string   `bson:"fcmTokens,omitempty" json:"-"`
	MustChangePassword bool       `bson:"mustChangePassword" json:"mustChangePassword"`
	LastLoginAt        *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

// DashboardStats is the read-only rollup shown on the dashboard home page.
type DashboardStats struct {
	TotalBeds           int64   `json:"totalBeds"`
	OccupiedBeds        int64   `json:"occupiedBeds"`
	VacantBeds          int64   `json:"vacantBeds"`
	ReservedBeds        int64   `json:"reservedBeds"`
	MaintenanceBeds     int64   `json:"maintenanceBeds"`
	OccupancyRate       float64 `json:"occupancyRate"`
	ActiveTenants       int64   `json:"activeTenants"`
	TodayCollection     float64 `json:"todayCollection"`
	TodayPayments       int64   `json:"todayPayments"`
	PendingDues         float64 `json:"pendingDues"`
	PendingBills        int64   `json:"pendingBills"`
	NewTenantsThisMonth int64   `json:"newTenantsThisMonth"`
	OpenComplaints      int64   `json:"openComplaints"`
	MonthExpenses       float64 `json:"monthExpenses"`
}

// MonthlyTotal is one bucket of a revenue series.
type MonthlyTotal struct {
	Month string  `bson:"_id" json:"month"`
	Total float64 `bson:"total" json:"total"`
	Count int64   `bson:"count" json:"count"`
}
