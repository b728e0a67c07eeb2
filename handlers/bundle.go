package handlers

import (
	"pgmanager/models"
	"pgmanager/services/admin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Admins authenticates requests for the auth middleware.
	Admins admin.AdminService

	Auth         *AuthHandler
	Tenant       *TenantHandler
	Ledger       *LedgerHandler
	Dashboard    *DashboardHandler
	Visitor      *VisitorHandler
	Notification *NotificationHandler

	// Resource endpoints
	PGs           *ResourceHandler[models.PG]
	Floors        *ResourceHandler[models.Floor]
	Rooms         *ResourceHandler[models.Room]
	Beds          *ResourceHandler[models.Bed]
	Tenants       *ResourceHandler[models.Tenant]
	Billings      *ResourceHandler[models.Billing]
	Payments      *ResourceHandler[models.Payment]
	Staff         *ResourceHandler[models.Staff]
	Expenses      *ResourceHandler[models.Expense]
	Inventory     *ResourceHandler[models.Inventory]
	Complaints    *ResourceHandler[models.Complaint]
	Services      *ResourceHandler[models.Service]
	Visitors      *ResourceHandler[models.Visitor]
	Notifications *ResourceHandler[models.Notification]
	Activities    *ResourceHandler[models.Activity]
}
