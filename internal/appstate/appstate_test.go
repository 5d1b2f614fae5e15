package appstate

import (
	"context"
	"testing"
	"time"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/dslabs/internal/domain"
	"github.com/ashureev/dslabs/internal/store"
)

func newTestState(t *testing.T) *State {
	t.Helper()

	ctx := context.Background()
	repo, err := store.NewSQLite(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	now := time.Now()
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{
		UserID: "u1", Username: "anon-u1",
		LastSeenAt: now, CreatedAt: now, UpdatedAt: now,
	}))
	return New(repo, nil)
}

func TestStateTheme(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)

	theme, err := s.Theme(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, theme)

	require.NoError(t, s.SetTheme(ctx, "u1", domain.ThemeDark))
	theme, err = s.Theme(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, theme)

	err = s.SetTheme(ctx, "u1", "sepia")
	assert.True(t, errdefs.IsInvalidArgument(err))

	theme, err = s.Theme(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, theme)
}

func TestStateProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)

	progress, err := s.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, progress)
	assert.Empty(t, progress)

	require.NoError(t, s.Visit(ctx, "u1", "queues"))
	done, err := s.IsCompleted(ctx, "u1", "queues")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.MarkCompleted(ctx, "u1", "queues"))
	require.NoError(t, s.Visit(ctx, "u1", "queues"))

	done, err = s.IsCompleted(ctx, "u1", "queues")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = s.IsCompleted(ctx, "u1", "graphs")
	require.NoError(t, err)
	assert.False(t, done)
}
