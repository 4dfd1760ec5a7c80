package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"livestream-pipeline/pkg/config"
)

// Database gorm 连接封装
type Database struct {
	Self *gorm.DB
}

// NewDatabase 打开 MySQL 连接并配置连接池
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	db, err := Open(cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db failed: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	sqlDB.SetConnMaxLifetime(lifetime)
	return &Database{Self: db}, nil
}

// Open 使用 DSN 打开 gorm 连接
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql failed: %w", err)
	}
	return db, nil
}

// Close 关闭连接
func (d *Database) Close() {
	if d == nil || d.Self == nil {
		return
	}
	if sqlDB, err := d.Self.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
