package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migration is one versioned schema step, paired from the embedded
// NNNN_name.up.sql / NNNN_name.down.sql files.
type migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrateUp applies every pending migration in version order and records
// each one in schema_migrations, so reopening an existing database only
// runs the steps it has not seen.
func MigrateUp(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	if err := ensureVersionTable(ctx, db); err != nil {
		return err
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}
		if _, err := db.ExecContext(ctx, mig.UpSQL); err != nil {
			return fmt.Errorf("apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
			mig.Version, mig.Name, time.Now().UTC().Format(sqliteTimeLayout),
		); err != nil {
			return fmt.Errorf("record migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		log.Info("applied migration",
			zap.Int("version", mig.Version), zap.String("name", mig.Name))
	}
	return nil
}

// MigrateDown reverts every applied migration in reverse version order,
// leaving an empty schema behind.
func MigrateDown(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	if err := ensureVersionTable(ctx, db); err != nil {
		return err
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	for i := len(migrations) - 1; i >= 0; i-- {
		mig := migrations[i]
		if !applied[mig.Version] {
			continue
		}
		if _, err := db.ExecContext(ctx, mig.DownSQL); err != nil {
			return fmt.Errorf("revert migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		if _, err := db.ExecContext(ctx, `
			DELETE FROM schema_migrations WHERE version = ?`, mig.Version,
		); err != nil {
			return fmt.Errorf("unrecord migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		log.Info("reverted migration",
			zap.Int("version", mig.Version), zap.String("name", mig.Name))
	}
	return nil
}

func ensureVersionTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

// loadMigrations pairs the embedded up and down files by their numeric
// prefix. A version missing either half is a packaging error.
func loadMigrations() ([]migration, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	byVersion := make(map[int]*migration)
	for _, path := range entries {
		base := strings.TrimPrefix(path, "migrations/")
		var stem, direction string
		switch {
		case strings.HasSuffix(base, ".up.sql"):
			stem, direction = strings.TrimSuffix(base, ".up.sql"), "up"
		case strings.HasSuffix(base, ".down.sql"):
			stem, direction = strings.TrimSuffix(base, ".down.sql"), "down"
		default:
			return nil, fmt.Errorf("migration %s: expected .up.sql or .down.sql", path)
		}
		prefix, name, ok := strings.Cut(stem, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: expected NNNN_name prefix", path)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version prefix: %w", path, err)
		}
		body, err := migrationFiles.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", path, err)
		}
		mig := byVersion[version]
		if mig == nil {
			mig = &migration{Version: version, Name: name}
			byVersion[version] = mig
		}
		if direction == "up" {
			mig.UpSQL = string(body)
		} else {
			mig.DownSQL = string(body)
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.UpSQL == "" || mig.DownSQL == "" {
			return nil, fmt.Errorf("migration %04d_%s: missing up or down file", mig.Version, mig.Name)
		}
		out = append(out, *mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
