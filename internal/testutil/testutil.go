// Package testutil provides helpers for integration tests that need a
// live MongoDB instance. Tests are skipped when MONGODB_TEST_URI is not
// set.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/musicagent/musicagent/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// NewRepository connects to the test MongoDB instance with a database
// name unique to this test. The database is dropped and the connection
// closed when the test finishes.
func NewRepository(t testing.TB) *repository.Repository {
	t.Helper()

	uri := RequireEnv(t, "MONGODB_TEST_URI")
	dbName := fmt.Sprintf("musicagent_test_%d", time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("failed to connect to test MongoDB: %v", err)
	}

	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := repo.Database().Drop(ctx); err != nil {
			t.Logf("failed to drop test database: %v", err)
		}
		if err := repo.Close(ctx); err != nil {
			t.Logf("failed to close test repository: %v", err)
		}
	})

	return repo
}
