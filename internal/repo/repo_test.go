package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLRepository {
	t.Helper()
	r, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestBindRewritesPlaceholders(t *testing.T) {
	pg := &SQLRepository{dialect: postgres}
	assert.Equal(t, "SELECT 1 WHERE a=$1 AND b=$2", pg.bind("SELECT 1 WHERE a=? AND b=?"))
	lite := &SQLRepository{dialect: sqlite}
	assert.Equal(t, "SELECT 1 WHERE a=?", lite.bind("SELECT 1 WHERE a=?"))
}

func TestUsers(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()

	id, err := r.CreateUser(ctx, "mika", "mika@lab.org", "hash")
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = r.CreateUser(ctx, "mika", "other@lab.org", "hash")
	assert.Error(t, err)

	got, hash, err := r.GetBylogin(ctx, "mika")
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "hash", hash)

	got, hash, err = r.GetBylogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Empty(t, hash)
}

func TestRuns(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first, err := r.SaveRun(ctx, 1, "granites", 12, []byte(`{"samples":[]}`))
	require.NoError(t, err)
	second, err := r.SaveRun(ctx, 1, "basalts", 3, []byte(`{}`))
	require.NoError(t, err)
	_, err = r.SaveRun(ctx, 2, "other analyst", 1, []byte(`{}`))
	require.NoError(t, err)

	runs, err := r.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
	assert.Equal(t, "granites", runs[1].Name)
	assert.Equal(t, 12, runs[1].Samples)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 1, 0, 0, time.UTC), runs[1].CreatedAt)
	assert.Nil(t, runs[0].Payload)

	run, err := r.GetRun(ctx, 1, first)
	require.NoError(t, err)
	assert.JSONEq(t, `{"samples":[]}`, string(run.Payload))

	_, err = r.GetRun(ctx, 2, first)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetRun(ctx, 1, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, r.DeleteRun(ctx, 2, first), ErrNotFound)
	require.NoError(t, r.DeleteRun(ctx, 1, first))
	assert.ErrorIs(t, r.DeleteRun(ctx, 1, first), ErrNotFound)

	runs, err = r.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	runs, err = r.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)
}

func TestMigrateIsRepeatable(t *testing.T) {
	r := openTestDB(t)
	require.NoError(t, r.Migrate(context.Background()))
}
