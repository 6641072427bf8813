// Package db opens the database, migrates the schema and seeds the
// administrator account
package db

import (
	"bitwise74/emotube/config"
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/pkg/security"
	"bitwise74/emotube/pkg/util"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Tables are listed so that dropping them in reverse order is safe
var tables = []any{
	&model.User{},
	&model.Video{},
	&model.Comment{},
	&model.Like{},
	&model.Subscription{},
	&model.HistoryEntry{},
}

func New(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Driver == "sqlite" && util.InContainer() {
		if _, err := os.Stat(cfg.Database.DSN); errors.Is(err, os.ErrNotExist) {
			zap.L().Warn("Running in a container and the SQLite file does not exist yet, mount it or data is lost on restart", zap.String("dsn", cfg.Database.DSN))
		}
	}

	if cfg.Database.WipeOnStart && cfg.Database.Driver == "sqlite" {
		zap.L().Warn("Wiping SQLite database file", zap.String("dsn", cfg.Database.DSN))

		if err := os.Remove(cfg.Database.DSN); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove database file, %w", err)
		}
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		dialector = sqlite.Open(cfg.Database.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", cfg.Database.Driver, err)
	}

	if cfg.Database.WipeOnStart && cfg.Database.Driver == "postgres" {
		zap.L().Warn("Dropping all tables")

		for i := len(tables) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(tables[i]); err != nil {
				return nil, fmt.Errorf("failed to drop table, %w", err)
			}
		}
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := seedAdmin(db, cfg.Admin); err != nil {
		return nil, err
	}

	return db, nil
}

// seedAdmin creates the administrator account unless one with the configured
// username already exists. Existing accounts are left untouched, a warning is
// logged when that leaves the deployment without any administrator.
func seedAdmin(db *gorm.DB, a config.Admin) error {
	var existing model.User

	err := db.
		Select("id", "is_admin").
		Where("username = ?", a.Username).
		Limit(1).
		Find(&existing).
		Error
	if err != nil {
		return fmt.Errorf("failed to look up admin account, %w", err)
	}

	if existing.ID != 0 {
		if existing.IsAdmin {
			return nil
		}

		var admins int64
		if err := db.Model(&model.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
			return fmt.Errorf("failed to count admin accounts, %w", err)
		}

		if admins == 0 {
			zap.L().Warn("The configured admin username belongs to a regular account and no administrator exists",
				zap.String("username", a.Username))
		}

		return nil
	}

	hash, err := security.New().Hash(a.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password, %w", err)
	}

	err = db.Create(&model.User{
		Username:     a.Username,
		PasswordHash: hash,
		DisplayName:  a.DisplayName,
		IsAdmin:      true,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to seed admin account, %w", err)
	}

	zap.L().Info("Seeded admin account", zap.String("username", a.Username))
	return nil
}
