package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/shared"
	_ "github.com/docudist/docudist/testing"
)

type stubRefresher struct {
	profile *shared.Profile
	err     error
	calls   int
}

func (s *stubRefresher) RefreshProfile(ctx context.Context, token string) (*shared.Profile, error) {
	s.calls++
	return s.profile, s.err
}

func sessionRequest(t *testing.T, manager *shared.SessionManager, token string, profile *shared.Profile) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if token != "" {
		sess.SetToken(token)
	}
	if profile != nil {
		sess.SetProfile(profile)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	manager := newManager(t)
	m := Middleware{}
	var hit bool
	res := httptest.NewRecorder()
	req := sessionRequest(t, manager, "", nil)
	m.RequireAuth(manager)(okHandler(&hit)).ServeHTTP(res, req)
	if hit {
		t.Fatalf("anonymous request must not reach the handler")
	}
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
}

func TestRequireAuthRefreshesProfileWholesale(t *testing.T) {
	manager := newManager(t)
	refresher := &stubRefresher{profile: &shared.Profile{ID: 1, Permissions: []string{"doc.view"}}}
	m := Middleware{Refresher: refresher}
	var hit bool
	res := httptest.NewRecorder()
	req := sessionRequest(t, manager, "tok", &shared.Profile{ID: 1, Permissions: []string{"stale.perm"}})
	m.RequireAuth(manager)(okHandler(&hit)).ServeHTTP(res, req)
	if !hit {
		t.Fatalf("authenticated request should pass")
	}
	if refresher.calls != 1 {
		t.Fatalf("profile should be refetched on protected entry")
	}
	sess := shared.SessionFromContext(req.Context())
	if !sess.Profile().HasPermission("doc.view") {
		t.Fatalf("cached profile should be replaced wholesale")
	}
}

func TestRequireAuthTearsDownRejectedToken(t *testing.T) {
	manager := newManager(t)
	refresher := &stubRefresher{err: backend.ErrUnauthenticated}
	m := Middleware{Refresher: refresher}
	var hit bool
	res := httptest.NewRecorder()
	req := sessionRequest(t, manager, "expired", nil)
	m.RequireAuth(manager)(okHandler(&hit)).ServeHTTP(res, req)
	if hit {
		t.Fatalf("rejected token must not reach the handler")
	}
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect to login, got %d", res.Code)
	}
}

func TestRequireAnyChecksMembership(t *testing.T) {
	manager := newManager(t)
	m := Middleware{}
	profile := &shared.Profile{ID: 1, Permissions: []string{"master.view"}}

	var hit bool
	res := httptest.NewRecorder()
	m.RequireAny("master.view", "master.edit")(okHandler(&hit)).ServeHTTP(res, sessionRequest(t, manager, "tok", profile))
	if !hit {
		t.Fatalf("granted permission should pass")
	}

	hit = false
	res = httptest.NewRecorder()
	m.RequireAll("master.view", "master.edit")(okHandler(&hit)).ServeHTTP(res, sessionRequest(t, manager, "tok", profile))
	if hit {
		t.Fatalf("missing permission should be forbidden")
	}
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}
