// Package identity tells visitors apart without accounts: a long-lived
// cookie names the device and a per-tab session id names the page.
package identity

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ashureev/dslabs/internal/domain"
	"github.com/ashureev/dslabs/internal/store"
)

const (
	AnonCookieName        = "dslabs_anon_id"
	SessionHeaderName     = "X-DSLabs-Session-ID"
	SessionQueryParam     = "session_id"
	DefaultSessionIDValue = "default"

	anonPrefix       = "anon_"
	anonCookieMaxAge = 30 * 24 * time.Hour
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// Identity is who made a request: the visitor and the tab.
type Identity struct {
	UserID    string
	Username  string
	SessionID string
}

type contextKey struct{}

// New builds the identity of userID on tab sessionID. An unusable session id
// falls back to DefaultSessionIDValue.
func New(userID, sessionID string) Identity {
	return Identity{
		UserID:    userID,
		Username:  usernameFor(userID),
		SessionID: sanitizeSessionID(sessionID),
	}
}

// FromContext returns the identity stored in ctx, or the zero identity on the
// default tab.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(contextKey{}).(Identity); ok {
		return id
	}
	return Identity{SessionID: DefaultSessionIDValue}
}

// WithIdentity returns ctx carrying the given visitor and tab. Handlers
// reached without the middleware (tests) use it.
func WithIdentity(ctx context.Context, userID, sessionID string) context.Context {
	return context.WithValue(ctx, contextKey{}, New(userID, sessionID))
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string { return FromContext(ctx).UserID }

// SessionIDFromContext extracts the tab session ID from the request context.
func SessionIDFromContext(ctx context.Context) string { return FromContext(ctx).SessionID }

func newAnonID() string {
	return anonPrefix + strings.ToLower(ulid.Make().String())
}

func isValidAnonID(id string) bool {
	raw, ok := strings.CutPrefix(id, anonPrefix)
	if !ok || raw != strings.ToLower(raw) {
		return false
	}
	_, err := ulid.ParseStrict(raw)
	return err == nil
}

func sanitizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if !sessionIDPattern.MatchString(id) {
		return DefaultSessionIDValue
	}
	return id
}

// usernameFor shows the random tail of the id, never the timestamp head.
func usernameFor(userID string) string {
	if len(userID) <= len(anonPrefix)+8 {
		return "visitante"
	}
	return "visitante-" + userID[len(userID)-8:]
}

// touch creates the visitor on first sight and refreshes last_seen_at
// afterwards, which keeps active visitors away from the idle sweeper.
func touch(ctx context.Context, repo store.Repository, id Identity) error {
	now := time.Now()

	user, err := repo.GetUser(ctx, id.UserID)
	if err != nil {
		return err
	}
	if user != nil {
		return repo.UpdateLastSeen(ctx, id.UserID, now)
	}

	return repo.UpsertUser(ctx, &domain.User{
		UserID:     id.UserID,
		Username:   id.Username,
		Theme:      domain.ThemeLight,
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// deviceID returns the visitor id from the cookie, minting a new one when
// the cookie is missing or forged. The cookie is refreshed either way.
func deviceID(w http.ResponseWriter, r *http.Request, secure bool) string {
	id := ""
	if c, err := r.Cookie(AnonCookieName); err == nil && isValidAnonID(c.Value) {
		id = c.Value
	} else {
		id = newAnonID()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(anonCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
	return id
}

func tabID(r *http.Request) string {
	if sid := r.Header.Get(SessionHeaderName); sid != "" {
		return sid
	}
	return r.URL.Query().Get(SessionQueryParam)
}

// Middleware resolves the request identity and makes sure the visitor
// exists. Each tab sends its own session id, so two tabs of one visitor
// never share a workspace.
func Middleware(repo store.Repository, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := New(deviceID(w, r, !isDev), tabID(r))

			if err := touch(r.Context(), repo, id); err != nil {
				slog.Error("Failed to initialize anonymous user", "user_id", id.UserID, "error", err)
				http.Error(w, `{"error":"failed to initialize anonymous user"}`, http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, id)))
		})
	}
}
