package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docudist/docudist/internal/auth"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
	_ "github.com/docudist/docudist/testing"
)

type authFixture struct {
	router  chi.Router
	manager *shared.SessionManager
	session *shared.Session
}

// fakeLogin accepts budi@example.com / rahasia123 and rejects everything else
// with the backend's semantic-failure envelope.
func fakeLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &creds)
	w.Header().Set("Content-Type", "application/json")
	if creds.Email != "budi@example.com" || creds.Password != "rahasia123" {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": true, "message": "invalid credentials"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data": map[string]any{
			"token": "issued-token",
			"user": map[string]any{
				"id":          1,
				"name":        "Budi",
				"email":       creds.Email,
				"permissions": []string{"invoices.view"},
			},
		},
	})
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			fakeLogin(w, r)
		case "/logout":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success": true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)

	templates, err := view.NewEngine()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := auth.NewService(backend.NewClient(server.URL), logger)
	handler := auth.NewHandler(logger, service, templates, manager, shared.NewCSRFManager("csrf-secret"))

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	return &authFixture{router: router, manager: manager, session: sess}
}

func (f *authFixture) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(shared.ContextWithSession(req.Context(), f.session))
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func (f *authFixture) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), f.session))
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestShowLoginRedirectsAuthenticated(t *testing.T) {
	f := newAuthFixture(t)
	f.session.SetToken("already-in")

	res := f.get("/auth/login")
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))
}

func TestLoginValidatesBeforeCallingBackend(t *testing.T) {
	f := newAuthFixture(t)

	res := f.post("/auth/login", url.Values{"email": {"not-an-email"}, "password": {""}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Enter a valid email address")
	assert.Contains(t, body, "This field is required")
	assert.Empty(t, f.session.Token())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	res := f.post("/auth/login", url.Values{"email": {"budi@example.com"}, "password": {"salah"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Email atau password tidak valid")
	assert.Empty(t, f.session.Token())
}

func TestLoginStoresTokenAndProfile(t *testing.T) {
	f := newAuthFixture(t)
	staleCSRF := f.session.Get(shared.CSRFSessionKey)

	res := f.post("/auth/login", url.Values{"email": {"budi@example.com"}, "password": {"rahasia123"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))

	assert.Equal(t, "issued-token", f.session.Token())
	require.NotNil(t, f.session.Profile())
	assert.Equal(t, "Budi", f.session.Profile().Name)
	assert.True(t, f.session.Profile().HasPermission("invoices.view"))
	assert.NotEqual(t, staleCSRF, f.session.Get(shared.CSRFSessionKey), "csrf token must rotate on login")
}

func TestLogoutDestroysSession(t *testing.T) {
	f := newAuthFixture(t)
	f.session.SetToken("issued-token")

	res := f.post("/auth/logout", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))
	assert.False(t, f.session.Authenticated())
}
