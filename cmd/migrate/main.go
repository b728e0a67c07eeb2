// Command migrate seeds a fresh database with the default PG and administrator.
package main

import (
	"context"
	"time"

	"pgmanager/config"
	"pgmanager/database"
	adminRepo "pgmanager/database/repository/admin"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/migrations"
	"pgmanager/models"
	"pgmanager/utils"

	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if err := database.InitDB(); err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	defer database.Close(context.Background())

	db := database.DB()
	seeder := &migrations.Seeder{
		PGs:    resourceRepo.NewMongoRepo[models.PG](db, resourceRepo.PGSpec),
		Admins: adminRepo.NewMongoAdminRepo(db),
	}
	res, err := seeder.Run(ctx, migrations.OptionsFromConfig())
	if err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("Migration finished",
		zap.Bool("pgCreated", res.PGCreated),
		zap.Bool("adminCreated", res.AdminCreated))
}
