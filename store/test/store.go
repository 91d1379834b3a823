// Package test provides a sqlite-backed store for integration-style tests.
package test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mugiwara-labs/receiptsense/internal/profile"
	"github.com/mugiwara-labs/receiptsense/store"
	"github.com/mugiwara-labs/receiptsense/store/db"
)

// NewTestingStore creates a fully migrated store backed by a throwaway sqlite
// database under t.TempDir.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "prod",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), fmt.Sprintf("receiptsense_%s.db", t.Name())),
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return st
}
