package workspace

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/dslabs/internal/store"
)

// SweepCallback is called for every workspace the sweeper drops.
type SweepCallback func(key Key)

// SweeperConfig controls the idle sweeper.
type SweeperConfig struct {
	TTL      time.Duration
	Interval time.Duration
	// OnSweep, if set, runs once per dropped workspace.
	OnSweep SweepCallback
}

// StartSweeper runs a background goroutine that periodically drops idle
// workspaces and deletes visitors the store has not seen within the TTL.
// It stops when ctx is done.
func StartSweeper(ctx context.Context, m *Manager, repo store.Repository, cfg SweeperConfig) {
	ticker := time.NewTicker(cfg.Interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Workspace sweeper started", "interval", cfg.Interval, "ttl", cfg.TTL)

		for {
			select {
			case <-ticker.C:
				sweep(ctx, m, repo, cfg)
			case <-ctx.Done():
				slog.Info("Workspace sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, m *Manager, repo store.Repository, cfg SweeperConfig) {
	dropped := m.Sweep(cfg.TTL)
	if len(dropped) > 0 {
		slog.Info("Workspace sweeper dropped idle workspaces", "count", len(dropped))
	}
	for _, key := range dropped {
		if cfg.OnSweep != nil {
			cfg.OnSweep(key)
		}
	}

	if repo == nil {
		return
	}
	deleted, err := repo.DeleteIdleUsers(ctx, cfg.TTL)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("Workspace sweeper: context canceled during cleanup", "error", err)
			return
		}
		slog.Error("Workspace sweeper failed to delete idle visitors", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Workspace sweeper deleted idle visitors", "count", deleted)
	}
}
