// Package appstate is the explicit application-state handle shared by every
// page: the visitor's theme flag and which structures they have completed
// or visited. Callers get a Reader or a Writer instead of reaching for
// ambient globals.
package appstate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/containerd/errdefs"

	"github.com/ashureev/dslabs/internal/domain"
	"github.com/ashureev/dslabs/internal/store"
)

// Reader exposes read access to a visitor's application state.
type Reader interface {
	Theme(ctx context.Context, userID string) (domain.Theme, error)
	Progress(ctx context.Context, userID string) ([]domain.Progress, error)
	IsCompleted(ctx context.Context, userID, structureID string) (bool, error)
}

// Writer exposes the state transitions pages are allowed to make.
type Writer interface {
	SetTheme(ctx context.Context, userID string, theme domain.Theme) error
	MarkCompleted(ctx context.Context, userID, structureID string) error
	Visit(ctx context.Context, userID, structureID string) error
}

// ReadWriter combines Reader and Writer.
type ReadWriter interface {
	Reader
	Writer
}

// State implements Reader and Writer over a store.Repository.
type State struct {
	repo   store.Repository
	now    func() time.Time
	logger *slog.Logger
}

var _ ReadWriter = (*State)(nil)

// New creates a State backed by repo.
func New(repo store.Repository, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		repo:   repo,
		now:    time.Now,
		logger: logger.With("svc", "appstate"),
	}
}

// Theme returns the visitor's theme, falling back to light for unknown
// visitors.
func (s *State) Theme(ctx context.Context, userID string) (domain.Theme, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if user == nil || !user.Theme.Valid() {
		return domain.ThemeLight, nil
	}
	return user.Theme, nil
}

// SetTheme stores the visitor's theme.
func (s *State) SetTheme(ctx context.Context, userID string, theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: tema desconhecido %q", errdefs.ErrInvalidArgument, theme)
	}
	if err := s.repo.SetTheme(ctx, userID, theme); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	s.logger.Debug("Theme changed", "user_id", userID, "theme", theme)
	return nil
}

// Progress lists every structure the visitor has touched.
func (s *State) Progress(ctx context.Context, userID string) ([]domain.Progress, error) {
	progress, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	if progress == nil {
		progress = []domain.Progress{}
	}
	return progress, nil
}

// IsCompleted reports whether structureID is marked completed.
func (s *State) IsCompleted(ctx context.Context, userID, structureID string) (bool, error) {
	progress, err := s.Progress(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range progress {
		if p.StructureID == structureID {
			return p.Completed, nil
		}
	}
	return false, nil
}

// MarkCompleted flags structureID as completed. The flag is never cleared.
func (s *State) MarkCompleted(ctx context.Context, userID, structureID string) error {
	if err := s.repo.MarkCompleted(ctx, userID, structureID, s.now()); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	s.logger.Info("Structure completed", "user_id", userID, "structure", structureID)
	return nil
}

// Visit records that the visitor opened structureID.
func (s *State) Visit(ctx context.Context, userID, structureID string) error {
	if err := s.repo.TouchStructure(ctx, userID, structureID, s.now()); err != nil {
		return fmt.Errorf("touch structure: %w", err)
	}
	return nil
}
