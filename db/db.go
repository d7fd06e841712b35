package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gymdesk/config"
	"gymdesk/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

func init() {
	// Timestamps are stored in UTC so range filters compare like with like.
	gorm.NowFunc = func() time.Time {
		return time.Now().UTC()
	}
}

// Connect abre conexão com DB (sqlite3 por padrão) e faz o AutoMigrate.
func Connect(conf config.Configuration) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch conf.Database {
	case "postgres", "postgresql":
		slog.Info("database: using postgresql", "host", conf.DbHost, "name", conf.DbName)
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass
		db, err = gorm.Open("postgres", path)
	default:
		slog.Info("database: using sqlite3", "path", conf.DbPath)
		if dir := filepath.Dir(conf.DbPath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		db, err = gorm.Open("sqlite3", conf.DbPath)
		if err == nil {
			// sqlite only takes one writer at a time
			db.DB().SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.LogMode(conf.DbLog)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables used by the service.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Member{},
		&models.Payment{},
		&models.BillingMessage{},
		&models.DailyReport{},
		&models.ActivityLog{},
		&models.User{},
	).Error
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// At most one unsent reminder per member, even with concurrent writers.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uix_billing_messages_pending
		ON billing_messages (member_id) WHERE is_sent = false`).Error
	if err != nil {
		return fmt.Errorf("pending billing message index: %w", err)
	}
	return nil
}
