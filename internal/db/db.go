package db

import (
	"fmt"

	"todoboard/internal/app/attachment"
	"todoboard/internal/app/board"
	"todoboard/internal/app/menu"
	"todoboard/internal/app/profile"
	"todoboard/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.PostgresDSN()

	level := gormlogger.Warn
	if cfg.Env == "prod" {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.DBHost),
		zap.String("database", cfg.DBName),
	)

	return db, nil
}

func Migrate(db *gorm.DB, logger *zap.Logger) error {
	models := []interface{}{
		&menu.Item{},
		&board.Column{},
		&board.Task{},
		&attachment.Attachment{},
		&profile.Profile{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	logger.Info("Database migrated", zap.Int("models", len(models)))
	return nil
}
