// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/dslabs/internal/domain"
)

// Repository persists visitors, their preferences and their progress.
type Repository interface {
	// GetUser retrieves a user by their user ID. It returns nil, nil when
	// the user does not exist.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// SetTheme stores the colour scheme preference.
	SetTheme(ctx context.Context, userID string, theme domain.Theme) error

	// ListProgress returns every structure the user has touched.
	ListProgress(ctx context.Context, userID string) ([]domain.Progress, error)

	// MarkCompleted flags a structure as completed. It never clears the flag.
	MarkCompleted(ctx context.Context, userID, structureID string, at time.Time) error

	// TouchStructure records a visit to a structure.
	TouchStructure(ctx context.Context, userID, structureID string, at time.Time) error

	// DeleteIdleUsers removes users unseen for longer than ttl, together
	// with their progress.
	DeleteIdleUsers(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
