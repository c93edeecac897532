//go:build integration

package storage

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
)

// newTestDB opens a fresh, uniquely schema-scoped DB for one test, so
// concurrent test runs never collide (the gofer storage tests get the same
// isolation from a fresh temp sqlite file per test; Postgres gets it from a
// fresh schema per test instead). Skips the test if TEST_DATABASE_URL is
// unset, mirroring alanyangrice-agent-router's internal/testutil.SetupTestDB.
func newTestDB(t *testing.T) DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test")
	}

	schema := fmt.Sprintf("npg_porch_test_%s", uuid.New().String()[:8])

	db, err := New(url, schema, 1000)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}

	t.Cleanup(func() {
		db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
		_ = db.Close()
	})

	return db
}
