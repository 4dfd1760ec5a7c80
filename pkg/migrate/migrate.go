package migrate

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"livestream-pipeline/pkg/logger"
)

// Up 执行全部未应用的迁移
func Up(databaseURL, migrationsDir string) error {
	m, err := open(databaseURL, migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Infof("Migrations applied version=%d dirty=%t", version, dirty)
	return nil
}

// Down 回滚 steps 个版本
func Down(databaseURL, migrationsDir string, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	m, err := open(databaseURL, migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func open(databaseURL, migrationsDir string) (*migrate.Migrate, error) {
	abs, err := filepath.Abs(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	m, err := migrate.New("file://"+abs, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}
