// README: Shared setup for store tests against live Postgres and Redis.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"citycab/internal/infra"
)

// Postgres connects to CITYCAB_TEST_DSN, applies migrations and truncates
// the given tables. The test is skipped when the variable is unset.
func Postgres(t *testing.T, truncate ...string) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("CITYCAB_TEST_DSN")
	if dsn == "" {
		t.Skip("CITYCAB_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := infra.NewDB(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := infra.Migrate(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if len(truncate) > 0 {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+strings.Join(truncate, ", ")); err != nil {
			t.Fatalf("truncate tables: %v", err)
		}
	}
	return db
}

// Redis connects to CITYCAB_TEST_REDIS and deletes keys before and after
// the test. The test is skipped when the variable is unset.
func Redis(t *testing.T, keys ...string) *redis.Client {
	t.Helper()

	addr := os.Getenv("CITYCAB_TEST_REDIS")
	if addr == "" {
		t.Skip("CITYCAB_TEST_REDIS not set; skipping Redis-backed tests")
	}

	ctx := context.Background()
	client, err := infra.NewRedis(ctx, addr)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
	t.Cleanup(func() {
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		_ = client.Close()
	})
	return client
}
