package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"community-grocery-go/pkg/logger"
	"gorm.io/gorm"
)

const migrationsDirName = "migrations"

type migration struct {
	name string
	sql  string
}

// Migrate applies the SQL files of the nearest migrations directory found
// upward from the working directory.
func Migrate(db *gorm.DB, log logger.Logger) error {
	path, err := lookupDir(migrationsDirName)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("db: no migrations directory found, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	return MigrateDir(db, path, log)
}

// MigrateDir applies the *.sql files of path that are not yet recorded in
// schema_migrations, in lexical order. Each file commits together with its
// record.
func MigrateDir(db *gorm.DB, path string, log logger.Logger) error {
	migrations, err := readMigrations(path)
	if err != nil {
		return err
	}

	if err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var done []string
	if err := db.Table("schema_migrations").Pluck("filename", &done).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(done))
	for _, name := range done {
		applied[name] = struct{}{}
	}

	pending := 0
	for _, m := range migrations {
		if _, ok := applied[m.name]; ok {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.sql).Error; err != nil {
				return err
			}
			return tx.Exec(
				"INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)",
				m.name, time.Now().UTC(),
			).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		pending++
		log.Info("db: migration applied", "file", m.name)
	}

	log.Debug("db: migrations up to date", "applied", pending, "total", len(migrations))
	return nil
}

// readMigrations skips blank files.
func readMigrations(path string) ([]migration, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var result []migration
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		if sql := strings.TrimSpace(string(contents)); sql != "" {
			result = append(result, migration{name: entry.Name(), sql: sql})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result, nil
}

func lookupDir(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
