package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/mugiwara-labs/receiptsense/internal/version"
)

//go:embed migration
var migrationFS embed.FS

// The migration system is deliberately simple: a full LATEST.sql schema per
// driver, applied once when the database is uninitialized, plus a
// migration_history table recording the schema version the database is at.
// Incremental migrations can slot in later using the same embedded layout.
//
// Migration Files:
// - Location: store/migration/{driver}/LATEST.sql
// - LATEST.sql: Full schema for new installations

// LatestSchemaFileName is the name of the latest schema file.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema when needed and records the schema
// version it leaves the database at.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.ensureMigrationHistoryTable(ctx); err != nil {
		return errors.Wrap(err, "failed to ensure migration history table")
	}

	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return err
		}
	}
	return s.ensureSchemaVersion(ctx)
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	buf, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %s", filePath)
	}

	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("initializing new database with latest schema", slog.String("file", filePath))
	if _, err := tx.ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrapf(err, "failed to execute SQL file %s", filePath)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	slog.Info("database initialized successfully")
	return nil
}

func (s *Store) ensureMigrationHistoryTable(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS migration_history (
  version TEXT NOT NULL PRIMARY KEY,
  created_ts BIGINT NOT NULL
)`
	_, err := s.driver.GetDB().ExecContext(ctx, stmt)
	return err
}

// ensureSchemaVersion records the current schema version unless the database
// already carries it (or a newer one, e.g. after a rollback of the binary).
func (s *Store) ensureSchemaVersion(ctx context.Context) error {
	currentVersion := version.GetSchemaVersion(s.profile.Mode)
	recordedVersion, err := s.latestRecordedVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read migration history")
	}
	if recordedVersion != "" && version.IsVersionGreaterOrEqualThan(recordedVersion, currentVersion) {
		return nil
	}

	// No incremental migration steps exist yet between minor versions; the
	// schema itself is already current, only the record advances.
	stmt := "INSERT INTO migration_history (version, created_ts) VALUES (?, ?) ON CONFLICT (version) DO NOTHING"
	if s.profile.Driver == "postgres" {
		stmt = "INSERT INTO migration_history (version, created_ts) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING"
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, stmt, currentVersion, time.Now().Unix()); err != nil {
		return errors.Wrapf(err, "failed to record schema version %s", currentVersion)
	}
	slog.Info("recorded schema version", slog.String("version", currentVersion))
	return nil
}

// latestRecordedVersion returns the highest semver in migration_history, or
// "" when the table is empty.
func (s *Store) latestRecordedVersion(ctx context.Context) (string, error) {
	rows, err := s.driver.GetDB().QueryContext(ctx, "SELECT version FROM migration_history")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	latest := ""
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", err
		}
		if latest == "" || version.IsVersionGreaterThan(v, latest) {
			latest = v
		}
	}
	return latest, rows.Err()
}
