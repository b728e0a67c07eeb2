package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pgmanager/config"
	"pgmanager/cron"
	"pgmanager/database"
	"pgmanager/database/repository"
	"pgmanager/handlers"
	"pgmanager/middleware"
	"pgmanager/migrations"
	"pgmanager/models"
	"pgmanager/routes"
	"pgmanager/services/activity"
	"pgmanager/services/admin"
	"pgmanager/services/dashboard"
	"pgmanager/services/kyc"
	"pgmanager/services/ledger"
	"pgmanager/services/notification"
	"pgmanager/services/occupancy"
	"pgmanager/services/resource"
	"pgmanager/services/storage"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.InitDB(); err != nil {
		logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
	}
	redisClient := utils.InitCache()
	utils.StartHealthMonitor(rootCtx, 30*time.Second, redisClient, database.MongoClient)

	repos := repository.NewMongoRepositories(database.DB())
	uow := database.NewUnitOfWork()

	if config.AppConfig.RunMigrations {
		seeder := &migrations.Seeder{PGs: repos.PGs, Admins: repos.Admins}
		if _, err := seeder.Run(rootCtx, migrations.OptionsFromConfig()); err != nil {
			logger.Fatal("main: migrations failed", zap.Error(err))
		}
	}

	// Optional integrations.
	var queue *asynq.Client
	if config.AppConfig.RedisAddr != "" {
		queue = asynq.NewClient(cron.RedisOpt())
		defer queue.Close()
	}

	notificationService := notification.NewDefaultNotificationService(repos.Notifications, repos.Admins, nil, nil)
	fcm, err := utils.FirebaseInit(rootCtx)
	if err != nil {
		logger.Error("main: push notifications disabled", zap.Error(err))
	} else if fcm != nil {
		notificationService.Pusher = fcm
	}
	if queue != nil {
		notificationService.Queue = queue
	}

	var fileStore storage.StorageService
	cld, err := utils.Cloudinary()
	if err != nil {
		logger.Error("main: document uploads disabled", zap.Error(err))
	} else if cld != nil {
		fileStore = storage.NewCloudinaryStorage(cld)
	}

	// Services.
	activityService := activity.NewDefaultActivityService(repos.Activities)

	occupancyService := occupancy.NewDefaultOccupancyService(
		repos.Tenants, repos.Beds, repos.Rooms, repos.PGs, uow, activityService, notificationService,
	)

	ledgerService := ledger.NewDefaultLedgerService(
		repos.Billings, repos.Payments, repos.Sequences, repos.Tenants, uow, activityService,
	)
	ledgerService.Notifier = notificationService
	if config.AppConfig.Currency != "" {
		ledgerService.Currency = config.AppConfig.Currency
	}
	if config.AppConfig.StripeKey != "" {
		ledgerService.Gateway = ledger.NewStripeGateway(config.AppConfig.StripeKey)
	}

	kycService := kyc.NewDefaultKYCService(repos.Tenants, fileStore, activityService)
	dashboardService := dashboard.NewDefaultDashboardService(repos.Dashboard)

	adminCache := utils.NewJSONCache(redisClient, utils.AuthCachePrefix, utils.AuthCacheTTL)
	adminService := admin.NewDefaultAdminService(repos.Admins, adminCache, config.AppConfig.TokenTTL())

	catalog := &resource.Catalog{
		PGs:     repos.PGs,
		Floors:  repos.Floors,
		Rooms:   repos.Rooms,
		Beds:    repos.Beds,
		Tenants: repos.Tenants,
		Now:     time.Now,
	}

	handlerBundle := &handlers.HandlerBundle{
		Admins: adminService,

		Auth:         handlers.NewAuthHandler(adminService, config.AppConfig.CookieSecure, config.AppConfig.TokenTTL()),
		Tenant:       handlers.NewTenantHandler(occupancyService, kycService),
		Ledger:       handlers.NewLedgerHandler(ledgerService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		Visitor:      handlers.NewVisitorHandler(repos.Visitors),
		Notification: handlers.NewNotificationHandler(notificationService),

		PGs:           handlers.NewResourceHandler[models.PG](resource.NewDefaultResourceService[models.PG, *models.PG](repos.PGs, catalog.PG(), activityService)),
		Floors:        handlers.NewResourceHandler[models.Floor](resource.NewDefaultResourceService[models.Floor, *models.Floor](repos.Floors, catalog.Floor(), activityService)),
		Rooms:         handlers.NewResourceHandler[models.Room](resource.NewDefaultResourceService[models.Room, *models.Room](repos.Rooms, catalog.Room(), activityService)),
		Beds:          handlers.NewResourceHandler[models.Bed](resource.NewDefaultResourceService[models.Bed, *models.Bed](repos.Beds, catalog.Bed(), activityService)),
		Tenants:       handlers.NewResourceHandler[models.Tenant](resource.NewDefaultResourceService[models.Tenant, *models.Tenant](repos.Tenants, catalog.Tenant(), activityService)),
		Billings:      handlers.NewResourceHandler[models.Billing](resource.NewDefaultResourceService[models.Billing, *models.Billing](repos.Billings, catalog.Billing(), activityService)),
		Payments:      handlers.NewResourceHandler[models.Payment](resource.NewDefaultResourceService[models.Payment, *models.Payment](repos.Payments, catalog.Payment(), activityService)),
		Staff:         handlers.NewResourceHandler[models.Staff](resource.NewDefaultResourceService[models.Staff, *models.Staff](repos.Staff, catalog.Staff(), activityService)),
		Expenses:      handlers.NewResourceHandler[models.Expense](resource.NewDefaultResourceService[models.Expense, *models.Expense](repos.Expenses, catalog.Expense(), activityService)),
		Inventory:     handlers.NewResourceHandler[models.Inventory](resource.NewDefaultResourceService[models.Inventory, *models.Inventory](repos.Inventory, catalog.Inventory(), activityService)),
		Complaints:    handlers.NewResourceHandler[models.Complaint](resource.NewDefaultResourceService[models.Complaint, *models.Complaint](repos.Complaints, catalog.Complaint(), activityService)),
		Services:      handlers.NewResourceHandler[models.Service](resource.NewDefaultResourceService[models.Service, *models.Service](repos.Services, catalog.Service(), activityService)),
		Visitors:      handlers.NewResourceHandler[models.Visitor](resource.NewDefaultResourceService[models.Visitor, *models.Visitor](repos.Visitors, catalog.Visitor(), activityService)),
		Notifications: handlers.NewResourceHandler[models.Notification](resource.NewDefaultResourceService[models.Notification, *models.Notification](repos.Notifications, catalog.Notification(notificationService.Schedule), activityService)),
		Activities:    handlers.NewResourceHandler[models.Activity](resource.NewDefaultResourceService[models.Activity, *models.Activity](repos.Activities, catalog.Activity(), activityService)),
	}

	// Background jobs need Redis.
	var worker *cron.Worker
	if config.AppConfig.RedisAddr != "" {
		worker, err = cron.StartWorker(cron.Jobs{Notifications: notificationService, Ledger: ledgerService}, cron.RedisOpt())
		if err != nil {
			logger.Error("main: background jobs disabled", zap.Error(err))
		}
	} else {
		logger.Info("REDIS_ADDR not set, notifications are delivered inline and scheduled billing jobs are off")
	}

	router := gin.New()
	if err := router.SetTrustedProxies(config.AppConfig.TrustedProxies()); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(rootCtx, config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle, config.AppConfig.AllowedOrigins())

	srv := &http.Server{
		Addr:              "0.0.0.0:" + config.AppConfig.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Errorf("main: server failed: %v", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.Close(ctx); err != nil {
		logger.Warn("main: failed to close MongoDB client", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
