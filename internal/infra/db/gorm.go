package db

import (
	"fmt"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), Options(log))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb, nil
}

// 方言に依存しないgorm設定
// 一意/FK違反をgormのエラーに揃える。
func Options(log *zap.Logger) *gorm.Config {
	level := gormlogger.Warn
	if log == nil {
		log = zap.NewNop()
		level = gormlogger.Silent
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.NewGormLogger(log, level),
	}
}

// テーブル作成（依存順）
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Tag{},
		&model.Product{},
		&model.User{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderLine{},
		&model.AuditLog{},
	)
}
