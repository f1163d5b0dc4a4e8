package db

import (
	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.Account{},
		&model.Profile{},
		&model.PasswordResetRequest{},
	}
}

// Migrate runs schema migrations on the global connection
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs schema migrations on the given connection
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
