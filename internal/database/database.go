package database

import (
	"fmt"

	"battle-royale-backend/internal/config"
	"battle-royale-backend/internal/models"

	"github.com/decred/slog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialector picks the gorm driver for cfg.DBDriver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "", "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func Connect(cfg *config.Config, log slog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}

	log.Infof("database connected (%s %s:%s/%s)", dialector.Name(), cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, nil
}

func AutoMigrate(db *gorm.DB, log slog.Logger) error {
	err := db.AutoMigrate(
		&models.Host{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.BattleSession{},
		&models.BattleParticipant{},
		&models.BattleRound{},
		&models.BattleAnswer{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Infof("database migrated")
	return nil
}
