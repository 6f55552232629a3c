// Package authz guards routes using the permission list cached in the
// session profile. There is no local authorization engine; checks are plain
// string membership against what the backend handed down.
package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/shared"
)

// ProfileRefresher refetches the user profile from the backend.
type ProfileRefresher interface {
	RefreshProfile(ctx context.Context, token string) (*shared.Profile, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Refresher ProfileRefresher
	Logger    *slog.Logger
}

// RequireAuth gates the protected area. The cached profile is refreshed
// wholesale on entry; when the backend rejects the token the session is torn
// down and the user is sent back to the login screen.
func (m Middleware) RequireAuth(sessions *shared.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || !sess.Authenticated() {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			if m.Refresher != nil {
				profile, err := m.Refresher.RefreshProfile(r.Context(), sess.Token())
				switch {
				case err == nil:
					sess.SetProfile(profile)
				case errors.Is(err, backend.ErrUnauthenticated):
					sessions.Destroy(sess)
					http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
					return
				default:
					// Keep serving the last cached profile when the backend
					// is briefly unreachable.
					if m.Logger != nil {
						m.Logger.Warn("profile refresh failed", slog.Any("error", err))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny ensures the current user has at least one of the permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			granted, ok := m.grantedPermissions(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if hasAnyPermission(granted, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			granted, ok := m.grantedPermissions(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if hasAllPermissions(granted, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func (m Middleware) grantedPermissions(r *http.Request) ([]string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.Authenticated() {
		return nil, false
	}
	profile := sess.Profile()
	if profile == nil {
		return nil, false
	}
	return profile.Permissions, true
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPermission(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func hasAllPermissions(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
