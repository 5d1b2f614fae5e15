package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ashureev/dslabs/internal/domain"
	"github.com/ashureev/dslabs/internal/shared"
	"github.com/ashureev/dslabs/internal/store/migrations"
)

// MemoryPath selects a process-lifetime in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	retry  shared.RetryPolicy
	logger *slog.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithRetryPolicy overrides how writes are retried on lock contention.
func WithRetryPolicy(p shared.RetryPolicy) Option {
	return func(s *SQLiteStore) { s.retry = p }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSQLite opens the database at dbPath, or an in-memory database for
// MemoryPath, and applies the schema migrations.
func NewSQLite(ctx context.Context, dbPath string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{retry: shared.DefaultRetryPolicy, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("svc", "store.SQLite")

	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, s.logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	s.db = db
	s.logger.Debug("SQLite repository initialized", "path", dbPath)
	return s, nil
}

func open(dbPath string) (*sql.DB, error) {
	if dbPath == MemoryPath {
		db, err := sql.Open("sqlite", MemoryPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// Every connection to :memory: is a separate database, so keep exactly
		// one alive for the lifetime of the process.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		return db, nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, username, theme, last_seen_at, created_at, updated_at
		FROM users WHERE user_id = ?`

	var user domain.User
	var theme string
	var lastSeen, createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID, &user.Username, &theme,
		&lastSeen, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.Theme = domain.Theme(theme)
	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// UpsertUser creates or updates a user record. The stored theme is kept when
// user.Theme is empty.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, username, theme, last_seen_at, created_at, updated_at)
	VALUES (?, ?, COALESCE(NULLIF(?, ''), 'light'), ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		theme = COALESCE(NULLIF(?, ''), users.theme),
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	return s.write(ctx, "upsert user", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query,
			user.UserID, user.Username, string(user.Theme),
			user.LastSeenAt.Unix(), user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
			string(user.Theme),
		)
		return err
	})
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`

	var rows int64
	err := s.write(ctx, "update last_seen", func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		s.logger.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}
	return nil
}

// SetTheme stores the colour scheme preference.
func (s *SQLiteStore) SetTheme(ctx context.Context, userID string, theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("invalid theme %q", theme)
	}

	query := `UPDATE users SET theme = ?, updated_at = ? WHERE user_id = ?`

	var rows int64
	err := s.write(ctx, "set theme", func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, query, string(theme), time.Now().Unix(), userID)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// ListProgress returns every structure the user has touched, ordered by id.
func (s *SQLiteStore) ListProgress(ctx context.Context, userID string) ([]domain.Progress, error) {
	query := `
		SELECT structure_id, completed, last_visited_at
		FROM progress WHERE user_id = ? ORDER BY structure_id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close progress rows", "error", closeErr)
		}
	}()

	var out []domain.Progress
	for rows.Next() {
		var p domain.Progress
		var completed int
		var lastVisited sql.NullInt64
		if err := rows.Scan(&p.StructureID, &completed, &lastVisited); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		p.Completed = completed != 0
		if lastVisited.Valid {
			ts := time.Unix(lastVisited.Int64, 0)
			p.LastVisited = &ts
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return out, nil
}

// MarkCompleted flags a structure as completed.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, userID, structureID string, at time.Time) error {
	query := `
	INSERT INTO progress (user_id, structure_id, completed, updated_at)
	VALUES (?, ?, 1, ?)
	ON CONFLICT(user_id, structure_id) DO UPDATE SET
		completed = 1,
		updated_at = excluded.updated_at`

	return s.write(ctx, "mark completed", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query, userID, structureID, at.Unix())
		return err
	})
}

// TouchStructure records a visit to a structure.
func (s *SQLiteStore) TouchStructure(ctx context.Context, userID, structureID string, at time.Time) error {
	query := `
	INSERT INTO progress (user_id, structure_id, completed, last_visited_at, updated_at)
	VALUES (?, ?, 0, ?, ?)
	ON CONFLICT(user_id, structure_id) DO UPDATE SET
		last_visited_at = excluded.last_visited_at,
		updated_at = excluded.updated_at`

	return s.write(ctx, "touch structure", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query, userID, structureID, at.Unix(), at.Unix())
		return err
	})
}

// DeleteIdleUsers removes users unseen for longer than ttl.
func (s *SQLiteStore) DeleteIdleUsers(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()

	var deleted int64
	err := s.write(ctx, "delete idle users", func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE last_seen_at < ?`, threshold)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) write(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := shared.RetryOnConflict(ctx, s.retry, op, fn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
