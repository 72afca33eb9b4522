package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dabreegster/polygon-width/internal/pavement"
	"github.com/dabreegster/polygon-width/internal/pipeline"
	"github.com/dabreegster/polygon-width/internal/testutil"
	"github.com/dabreegster/polygon-width/internal/timeutil"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	testutil.MuteLogs(t)

	path := filepath.Join(t.TempDir(), "widths.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func runBatch(t *testing.T) (pavement.Config, *pipeline.Result) {
	t.Helper()
	cfg := pavement.DefaultConfig()
	res, err := pipeline.Run(context.Background(), []orb.Polygon{
		testutil.GeodeticRectangle(-0.1000, 51.5, 100, 10),
		testutil.GeodeticRectangle(-0.0980, 51.5, 60, 8),
	}, pipeline.Options{Config: cfg, Workers: 2})
	require.NoError(t, err)
	return cfg, res
}

func TestOpenAppliesMigrations(t *testing.T) {
	s, path := setupTestStore(t)

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	require.NoError(t, s.Close())
	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	version, _, err = again.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestSaveAndReadRun(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	cfg, res := runBatch(t)

	id, err := s.SaveRun(ctx, "pavements.geojson", cfg, res)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "pavements.geojson", runs[0].Input)
	assert.Equal(t, cfg, runs[0].Config)
	assert.Equal(t, 2, runs[0].Pavements)
	assert.Equal(t, 0, runs[0].Skipped)
	assert.False(t, runs[0].CreatedAt.IsZero())

	summaries, err := s.RunSummaries(ctx, id)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for i, p := range res.Pavements {
		assert.Equal(t, p.Summary(), summaries[i], "pavement %d", i)
	}

	segments, err := s.RunSegments(ctx, id)
	require.NoError(t, err)
	want := res.Geodetic().CenterWithWidth
	require.Len(t, segments, len(want))
	require.NotEmpty(t, segments)
	for i := range want {
		assert.Equal(t, want[i].Line, segments[i].Line)
		assert.Equal(t, want[i].MinWidth, segments[i].MinWidth)
		assert.Equal(t, want[i].MaxWidth, segments[i].MaxWidth)
	}
}

func TestListRunsOrder(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	cfg, res := runBatch(t)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start.Add(time.Hour))
	s.SetClock(clock)
	later, err := s.SaveRun(ctx, "later", cfg, res)
	require.NoError(t, err)

	clock.Set(start)
	earlier, err := s.SaveRun(ctx, "earlier", cfg, res)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, earlier, runs[0].ID)
	assert.Equal(t, later, runs[1].ID)
	assert.True(t, runs[0].CreatedAt.Equal(start), "created = %v", runs[0].CreatedAt)
}

func TestDeleteRun(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	cfg, res := runBatch(t)

	id, err := s.SaveRun(ctx, "a", cfg, res)
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(ctx, id))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	segments, err := s.RunSegments(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, segments, "segments should cascade with the run")

	summaries, err := s.RunSummaries(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	err = s.DeleteRun(ctx, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUnknownRun(t *testing.T) {
	s, _ := setupTestStore(t)
	segments, err := s.RunSegments(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, segments)
}
