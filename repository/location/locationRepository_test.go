package locationrepo_test

import (
	"context"
	"os"
	"testing"

	"librarium/model"
	locationrepo "librarium/repository/location"
	"librarium/util/database"

	"github.com/stretchr/testify/require"
)

// Runs against a real database when TEST_DATABASE_URL is set; the schema
// from migrations/001_init.sql must be applied. Everything happens inside
// one transaction that is rolled back, so repeated runs stay clean.
func testDB(t *testing.T) (*database.DB, database.Tx) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	tx, err := db.Begin(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return db, tx
}

func TestAddAndResolve(t *testing.T) {
	db, tx := testDB(t)
	r := locationrepo.New(db)
	ctx := context.Background()

	loc := model.BookLocation{Section: "test-section", Shelf: 99}

	id, added, err := r.Add(ctx, tx, loc)
	require.NoError(t, err)
	require.True(t, added)
	require.NotZero(t, id)

	_, added, err = r.Add(ctx, tx, loc)
	require.NoError(t, err)
	require.False(t, added, "second insert of the same key is a no-op")

	resolved, err := r.ResolveOrCreate(ctx, tx, loc)
	require.NoError(t, err)
	require.Equal(t, id, resolved)
}

func TestRemove(t *testing.T) {
	db, tx := testDB(t)
	r := locationrepo.New(db)
	ctx := context.Background()

	loc := model.BookLocation{Section: "test-remove", Shelf: 98}
	_, added, err := r.Add(ctx, tx, loc)
	require.NoError(t, err)
	require.True(t, added)

	removed, err := r.Remove(ctx, tx, loc.Section, loc.Shelf)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = r.Remove(ctx, tx, loc.Section, loc.Shelf)
	require.NoError(t, err)
	require.False(t, removed)
}
