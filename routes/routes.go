package routes

import (
	"time"

	"pgmanager/handlers"
	"pgmanager/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers login, logout and account endpoints.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", hb.Auth.Login)
		auth.POST("/logout", hb.Auth.Logout)

		// Protected routes (Require Authentication)
		protected := auth.Group("")
		protected.Use(middleware.JWTAuthAdminMiddleware(hb.Admins))
		protected.GET("/me", hb.Auth.Me)
		protected.PUT("/password", hb.Auth.ChangePassword)

		settled := protected.Group("")
		settled.Use(middleware.RequirePasswordChanged())
		settled.POST("/register", hb.Auth.Register)
		settled.POST("/devices", hb.Auth.RegisterDevice)
	}
}

// RegisterPropertyRoutes registers PGs, floors, rooms and beds.
func RegisterPropertyRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	hb.PGs.Register(api.Group("/pgs"))
	hb.Floors.Register(api.Group("/floors"))
	hb.Rooms.Register(api.Group("/rooms"))
	hb.Beds.Register(api.Group("/beds"))
}

// RegisterTenantRoutes registers tenant CRUD with check-in/check-out and KYC.
func RegisterTenantRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	tenants := api.Group("/tenants")
	hb.Tenants.Register(tenants, "create", "delete")
	tenants.POST("", hb.Tenant.CheckIn)
	tenants.DELETE("/:id", hb.Tenant.CheckOut)
	tenants.POST("/:id/transfer", hb.Tenant.Transfer)
	tenants.POST("/:id/documents", hb.Tenant.UploadDocument)
	tenants.DELETE("/:id/documents/:publicId", hb.Tenant.RemoveDocument)
	tenants.PUT("/:id/kyc", hb.Tenant.SetKYCStatus)
}

// RegisterLedgerRoutes registers billing and payment endpoints.
func RegisterLedgerRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	billing := api.Group("/billing")
	billing.POST("/generate", hb.Ledger.GenerateBills)
	billing.POST("/mark-overdue", hb.Ledger.MarkOverdue)
	hb.Billings.Register(billing, "create", "delete")
	billing.POST("", hb.Ledger.CreateBill)
	billing.DELETE("/:id", hb.Ledger.DeleteBill)

	payments := api.Group("/payments")
	payments.POST("/intent", hb.Ledger.CreateIntent)
	hb.Payments.Register(payments, "create", "delete")
	payments.POST("", hb.Ledger.RecordPayment)
	payments.DELETE("/:id", hb.Ledger.DeletePayment)
}

// RegisterOperationsRoutes registers the day-to-day records.
func RegisterOperationsRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	hb.Staff.Register(api.Group("/staff"))
	hb.Expenses.Register(api.Group("/expenses"))
	hb.Inventory.Register(api.Group("/inventory"))
	hb.Complaints.Register(api.Group("/complaints"))
	hb.Services.Register(api.Group("/services"))

	visitors := api.Group("/visitors")
	visitors.PUT("/:id/checkout", hb.Visitor.CheckOut)
	hb.Visitors.Register(visitors)

	notifications := api.Group("/notifications")
	notifications.PUT("/read-all", hb.Notification.MarkAllRead)
	notifications.PUT("/:id/read", hb.Notification.MarkRead)
	hb.Notifications.Register(notifications)

	hb.Activities.Register(api.Group("/activities"), "create", "update", "delete")
}

// RegisterDashboardRoutes registers the read-only rollups.
func RegisterDashboardRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/stats", hb.Dashboard.Stats)
		dashboard.GET("/revenue", hb.Dashboard.Revenue)
		dashboard.GET("/recent-activities", hb.Dashboard.RecentActivities)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	api := r.Group("/api")
	RegisterAuthRoutes(api, hb)

	protected := api.Group("")
	protected.Use(middleware.JWTAuthAdminMiddleware(hb.Admins), middleware.RequirePasswordChanged())
	RegisterPropertyRoutes(protected, hb)
	RegisterTenantRoutes(protected, hb)
	RegisterLedgerRoutes(protected, hb)
	RegisterOperationsRoutes(protected, hb)
	RegisterDashboardRoutes(protected, hb)
}
