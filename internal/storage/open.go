package storage

import (
	"context"
	"fmt"
	"log/slog"

	"campusvoice/backend/internal/config"
	"campusvoice/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured SQL database.
func Open(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSNString())
	case "mysql":
		dialector = mysql.Open(cfg.DSNString())
	default:
		return nil, fmt.Errorf("storage: driver %q has no SQL dialect", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// Migrate creates or updates the tables of every persisted model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.ValidationLog{},
		&models.CreditTransaction{},
	)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// Connect builds the Storage selected by cfg.Database.Driver. SQL drivers are
// migrated on connect and paired with Redis when cfg.Redis.Addr is set. The
// returned func releases the connections.
func Connect(ctx context.Context, cfg *config.Config) (Storage, func(), error) {
	if cfg.Database.Driver == "memory" {
		slog.Warn("using in-memory storage, data is lost on exit")
		return NewMemoryStore(), func() {}, nil
	}

	db, err := Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, nil, fmt.Errorf("storage: connect redis: %w", err)
		}
	}

	slog.Info("database connections established, migrations complete",
		"driver", cfg.Database.Driver, "redis", rdb != nil)
	cleanup := func() {
		if rdb != nil {
			rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return NewStorageService(db, rdb), cleanup, nil
}
