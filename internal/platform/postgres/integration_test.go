//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testutils"
)

// testDatabaseURLEnv names the database the integration tests migrate and
// truncate. Never point it at real data.
const testDatabaseURLEnv = "TASKBOARD_TEST_DATABASE_URL"

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, postgres.MigrateUp, nil))
	return db
}

func truncate(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE tasks, users`)
	require.NoError(t, err)
}

func TestPostgresStoresIntegration(t *testing.T) {
	db := openTestDB(t)

	newTaskStore := func(t *testing.T) store.TaskStore {
		truncate(t, db)
		return postgres.NewPostgresTaskStore(db, nil)
	}
	newUserStore := func(t *testing.T) store.UserStore {
		truncate(t, db)
		return postgres.NewPostgresUserStore(db, nil)
	}

	t.Run("tasks", func(t *testing.T) { testutils.RunTaskStoreSuite(t, newTaskStore) })
	t.Run("task atomicity", func(t *testing.T) { testutils.RunTaskStoreAtomicitySuite(t, newTaskStore) })
	t.Run("users", func(t *testing.T) { testutils.RunUserStoreSuite(t, newUserStore) })
}

func TestMigrateDownAndUp(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, postgres.Migrate(ctx, db, postgres.MigrateStatus, nil))
	require.NoError(t, postgres.Migrate(ctx, db, postgres.MigrateDown, nil))
	require.NoError(t, postgres.Migrate(ctx, db, postgres.MigrateUp, nil))
	require.Error(t, postgres.Migrate(ctx, db, "sideways", nil))
}
