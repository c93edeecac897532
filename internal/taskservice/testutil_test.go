//go:build integration

package taskservice

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/wtsi-npg/npg_porch_go/internal/storage"
)

// newTestDB mirrors storage's own test harness: a fresh, uniquely
// schema-scoped connection per test, skipped when TEST_DATABASE_URL is
// unset.
func newTestDB(t *testing.T) storage.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test")
	}

	schema := fmt.Sprintf("npg_porch_test_%s", uuid.New().String()[:8])

	db, err := storage.New(url, schema, 1000)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}

	t.Cleanup(func() {
		db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
		_ = db.Close()
	})

	return db
}
