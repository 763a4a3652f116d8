package store

import (
	"database/sql"
	"time"

	"github.com/mgelashvili/ledger_service/configs"
	"github.com/mgelashvili/ledger_service/internal/logger"
	"github.com/mgelashvili/ledger_service/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// NewDB connects to postgres with a bounded fixed-interval retry loop so the
// service tolerates a database that is still starting. The retry ceiling and
// interval come from config; when the ceiling is exhausted startup fails.
func NewDB() {
	cfg := configs.AppConfig.DB

	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: false,
		}), &gorm.Config{})
		if err == nil {
			var sqlDB *sql.DB
			sqlDB, err = db.DB()
			if err == nil {
				if err = sqlDB.Ping(); err == nil {
					break
				}
			}
		}

		if attempt < cfg.ConnectAttempts {
			logger.Log.Warn("database not ready, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", cfg.ConnectAttempts),
				zap.Duration("interval", cfg.ConnectInterval),
				zap.Error(err))
			time.Sleep(cfg.ConnectInterval)
		}
	}
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("failed to get sql.DB", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	DB = db
	logger.Log.Info("connected to the database",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))
}

func DBMigrate() {
	if err := DB.AutoMigrate(&models.Account{}, &models.Transaction{}); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}
	logger.Log.Info("migrations loaded")
}
