package db

import (
	"fmt"

	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/internal/app/model"
	appLogger "github.com/ikkim/maison-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQL database backing the slot store. driver is
// "postgres" or "sqlite".
func Open(cfg *config.StorageConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		appLogger.Info("Connecting to database", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.DBName,
			"user":     cfg.Database.User,
		})
		dialector = postgres.Open(cfg.Database.DSN())
	case "sqlite":
		appLogger.Info("Opening sqlite database", map[string]interface{}{
			"path": cfg.SQLitePath,
		})
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Use silent mode, we'll use our own logger
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"driver":         cfg.Driver,
		"max_idle_conns": 10,
		"max_open_conns": 100,
	})

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates the slot table.
func Migrate(gdb *gorm.DB) error {
	appLogger.Info("Running database migrations...")

	if err := gdb.AutoMigrate(&model.Slot{}); err != nil {
		appLogger.Error("Failed to run migrations", err)
		return err
	}

	appLogger.Info("Database migrations completed successfully")
	return nil
}
