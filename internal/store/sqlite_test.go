package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/dslabs/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, id string, lastSeen time.Time) {
	t.Helper()

	now := time.Now()
	require.NoError(t, s.UpsertUser(context.Background(), &domain.User{
		UserID:     id,
		Username:   "anon-" + id,
		LastSeenAt: lastSeen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))
}

func TestSQLiteStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.GetUser(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	seedUser(t, s, "u1", time.Now())

	got, err = s.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "anon-u1", got.Username)
	assert.Equal(t, domain.ThemeLight, got.Theme)

	require.NoError(t, s.SetTheme(ctx, "u1", domain.ThemeDark))

	// An upsert without a theme keeps the stored preference.
	seedUser(t, s, "u1", time.Now())
	got, err = s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, got.Theme)

	assert.Error(t, s.SetTheme(ctx, "u1", domain.Theme("neon")))
	assert.Error(t, s.SetTheme(ctx, "nobody", domain.ThemeDark))
}

func TestSQLiteStoreUpdateLastSeen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedUser(t, s, "u1", time.Unix(1000, 0))
	seen := time.Unix(2000, 0)
	require.NoError(t, s.UpdateLastSeen(ctx, "u1", seen))

	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, seen.Unix(), got.LastSeenAt.Unix())

	assert.NoError(t, s.UpdateLastSeen(ctx, "nobody", seen))
}

func TestSQLiteStoreProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, s, "u1", time.Now())

	visited := time.Unix(5000, 0)
	require.NoError(t, s.TouchStructure(ctx, "u1", "stacks", visited))
	require.NoError(t, s.MarkCompleted(ctx, "u1", "queues", visited))

	// Touching a completed structure never clears the flag.
	require.NoError(t, s.TouchStructure(ctx, "u1", "queues", visited))

	progress, err := s.ListProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, progress, 2)

	assert.Equal(t, "queues", progress[0].StructureID)
	assert.True(t, progress[0].Completed)
	require.NotNil(t, progress[0].LastVisited)

	assert.Equal(t, "stacks", progress[1].StructureID)
	assert.False(t, progress[1].Completed)
	require.NotNil(t, progress[1].LastVisited)
	assert.Equal(t, visited.Unix(), progress[1].LastVisited.Unix())

	none, err := s.ListProgress(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStoreProgressRequiresUser(t *testing.T) {
	s := newTestStore(t)

	err := s.MarkCompleted(context.Background(), "ghost", "lists", time.Now())
	assert.Error(t, err)
}

func TestSQLiteStoreDeleteIdleUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedUser(t, s, "old", time.Now().Add(-2*time.Hour))
	seedUser(t, s, "fresh", time.Now())
	require.NoError(t, s.MarkCompleted(ctx, "old", "lists", time.Now()))

	n, err := s.DeleteIdleUsers(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gone, err := s.GetUser(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, gone)

	progress, err := s.ListProgress(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, progress)

	kept, err := s.GetUser(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestSQLiteStoreFileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dslabs.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	seedUser(t, s, "u1", time.Now())
	require.NoError(t, s.Close())

	// Reopening runs the migrations again without touching existing rows.
	s, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))
	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
