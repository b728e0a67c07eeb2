package repository

import (
	adminRepo "pgmanager/database/repository/admin"
	dashboardRepo "pgmanager/database/repository/dashboard"
	ledgerRepo "pgmanager/database/repository/ledger"
	occupancyRepo "pgmanager/database/repository/occupancy"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the occupancy repositories.
type (
	BedRepository    = occupancyRepo.BedRepository
	RoomRepository   = occupancyRepo.RoomRepository
	TenantRepository = occupancyRepo.TenantRepository
)

// Re-export the ledger repositories.
type (
	BillingRepository  = ledgerRepo.BillingRepository
	PaymentRepository  = ledgerRepo.PaymentRepository
	SequenceRepository = ledgerRepo.SequenceRepository
)

type AdminRepository = adminRepo.AdminRepository

type DashboardRepository = dashboardRepo.DashboardRepository

// Repositories groups every repository the server wires into its services.
type Repositories struct {
	PGs           resourceRepo.Repository[models.PG]
	Floors        resourceRepo.Repository[models.Floor]
	Rooms         RoomRepository
	Beds          BedRepository
	Tenants       TenantRepository
	Billings      BillingRepository
	Payments      PaymentRepository
	Sequences     SequenceRepository
	Staff         resourceRepo.Repository[models.Staff]
	Expenses      resourceRepo.Repository[models.Expense]
	Inventory     resourceRepo.Repository[models.Inventory]
	Complaints    resourceRepo.Repository[models.Complaint]
	Services      resourceRepo.Repository[models.Service]
	Visitors      resourceRepo.Repository[models.Visitor]
	Notifications resourceRepo.Repository[models.Notification]
	Activities    resourceRepo.Repository[models.Activity]
	Admins        AdminRepository
	Dashboard     DashboardRepository
}

// NewMongoRepositories builds every MongoDB repository, creating indexes as it goes.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		PGs:           resourceRepo.NewMongoRepo[models.PG](db, resourceRepo.PGSpec),
		Floors:        resourceRepo.NewMongoRepo[models.Floor](db, resourceRepo.FloorSpec),
		Rooms:         occupancyRepo.NewMongoRoomRepo(db),
		Beds:          occupancyRepo.NewMongoBedRepo(db),
		Tenants:       occupancyRepo.NewMongoTenantRepo(db),
		Billings:      ledgerRepo.NewMongoBillingRepo(db),
		Payments:      ledgerRepo.NewMongoPaymentRepo(db),
		Sequences:     ledgerRepo.NewMongoSequenceRepo(db),
		Staff:         resourceRepo.NewMongoRepo[models.Staff](db, resourceRepo.StaffSpec),
		Expenses:      resourceRepo.NewMongoRepo[models.Expense](db, resourceRepo.ExpenseSpec),
		Inventory:     resourceRepo.NewMongoRepo[models.Inventory](db, resourceRepo.InventorySpec),
		Complaints:    resourceRepo.NewMongoRepo[models.Complaint](db, resourceRepo.ComplaintSpec),
		Services:      resourceRepo.NewMongoRepo[models.Service](db, resourceRepo.ServiceSpec),
		Visitors:      resourceRepo.NewMongoRepo[models.Visitor](db, resourceRepo.VisitorSpec),
		Notifications: resourceRepo.NewMongoRepo[models.Notification](db, resourceRepo.NotificationSpec),
		Activities:    resourceRepo.NewMongoRepo[models.Activity](db, resourceRepo.ActivitySpec),
		Admins:        adminRepo.NewMongoAdminRepo(db),
		Dashboard:     dashboardRepo.NewMongoDashboardRepo(db),
	}
}
