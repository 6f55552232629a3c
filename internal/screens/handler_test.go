package screens_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docudist/docudist/internal/authz"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
	_ "github.com/docudist/docudist/testing"
)

type memo struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (m memo) RecordID() int64 { return m.ID }

type memoForm struct {
	Code string `validate:"required"`
	Name string `validate:"required"`
}

func memoResource() screens.Resource[memo, memoForm] {
	return screens.Resource[memo, memoForm]{
		Name:           "memos",
		Title:          "Memos",
		BasePath:       "/memos",
		Endpoint:       "/memo",
		ViewPermission: "memos.view",
		EditPermission: "memos.edit",
		SearchFields: []screens.Field{
			{Name: "code", Label: "Code", Type: "text"},
		},
		Columns: []screens.Column[memo]{
			{Header: "Code", Cell: func(m memo) screens.Cell { return screens.Cell{Text: m.Code} }},
			{Header: "Name", Cell: func(m memo) screens.Cell { return screens.Cell{Text: m.Name} }},
			{Header: "Status", Cell: func(m memo) screens.Cell { return screens.Cell{Text: m.Status, Badge: view.StatusBadge(m.Status)} }},
		},
		ParseForm: func(values url.Values) memoForm {
			return memoForm{Code: values.Get("code"), Name: values.Get("name")}
		},
		FromRecord: func(m memo) memoForm {
			return memoForm{Code: m.Code, Name: m.Name}
		},
		Payload: func(f memoForm) any {
			return map[string]any{"code": f.Code, "name": f.Name}
		},
		FormFields: func(f memoForm, fieldErrors map[string]string, opts map[string][]lookups.Option) []screens.Field {
			return []screens.Field{
				{Name: "code", Label: "Code", Type: "text", Value: f.Code, Required: true, Error: fieldErrors["Code"]},
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true, Error: fieldErrors["Name"]},
			}
		},
	}
}

// memoBackend fakes the remote API with an in-memory record set.
type memoBackend struct {
	records  []memo
	nextID   int64
	searches atomic.Int32
	deletes  atomic.Int32
}

func (b *memoBackend) handler() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/memo/search", func(w http.ResponseWriter, r *http.Request) {
		b.searches.Add(1)
		code := r.URL.Query().Get("code")
		matched := make([]memo, 0)
		for _, rec := range b.records {
			if code == "" || strings.Contains(rec.Code, code) {
				matched = append(matched, rec)
			}
		}
		writeJSON(w, map[string]any{
			"success": true,
			"data": map[string]any{
				"data":         matched,
				"total":        len(matched),
				"current_page": 1,
				"last_page":    1,
				"from":         1,
				"to":           len(matched),
			},
		})
	})
	mux.Post("/memo", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Code string `json:"code"`
			Name string `json:"name"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		b.nextID++
		created := memo{ID: b.nextID, Code: payload.Code, Name: payload.Name, Status: "OPEN"}
		b.records = append([]memo{created}, b.records...)
		writeJSON(w, map[string]any{"success": true, "data": created, "message": "created"})
	})
	mux.Put("/memo/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		var payload struct {
			Code string `json:"code"`
			Name string `json:"name"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		for i, rec := range b.records {
			if rec.ID == id {
				b.records[i].Code = payload.Code
				b.records[i].Name = payload.Name
				writeJSON(w, map[string]any{"success": true, "data": b.records[i], "message": "updated"})
				return
			}
		}
		writeJSON(w, map[string]any{"error": true, "message": "not found"})
	})
	mux.Delete("/memo/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.deletes.Add(1)
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		kept := b.records[:0]
		for _, rec := range b.records {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		b.records = kept
		writeJSON(w, map[string]any{"success": true, "message": "deleted"})
	})
	mux.Get("/memo/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		for _, rec := range b.records {
			if rec.ID == id {
				writeJSON(w, map[string]any{"success": true, "data": rec})
				return
			}
		}
		writeJSON(w, map[string]any{"error": true, "message": "not found"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

type screenFixture struct {
	router  chi.Router
	session *shared.Session
	backend *memoBackend
}

func newFixture(t *testing.T, perms ...string) *screenFixture {
	t.Helper()

	be := &memoBackend{
		records: []memo{
			{ID: 2, Code: "MEMO-2", Name: "Second", Status: "SENT"},
			{ID: 1, Code: "MEMO-1", Name: "First", Status: "OPEN"},
		},
		nextID: 2,
	}
	server := httptest.NewServer(be.handler())
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetToken("tok")
	sess.SetProfile(&shared.Profile{ID: 7, Name: "Tester", Permissions: perms})

	templates, err := view.NewEngine()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := screens.NewHandler(
		logger,
		backend.NewClient(server.URL),
		templates,
		shared.NewCSRFManager("csrf-secret"),
		authz.Middleware{},
		lookups.NewService(redisClient, time.Minute, logger),
		memoResource(),
	)

	router := chi.NewRouter()
	router.Route("/memos", handler.MountRoutes)
	return &screenFixture{router: router, session: sess, backend: be}
}

func (f *screenFixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), f.session))
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestListRendersFetchedRows(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	res := f.do(http.MethodGet, "/memos/", nil)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "MEMO-1")
	assert.Contains(t, body, "MEMO-2")
	assert.Contains(t, body, "badge-sent")
	assert.Equal(t, int32(1), f.backend.searches.Load())
}

func TestListServesSnapshotOnBareRevisit(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/memos/", nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/memos/", nil).Code)
	assert.Equal(t, int32(1), f.backend.searches.Load(), "bare revisit must serve the held snapshot")
}

func TestListSearchReplacesCriteria(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	res := f.do(http.MethodGet, "/memos/?code=MEMO-2", nil)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "MEMO-2")
	assert.NotContains(t, body, "MEMO-1")
}

func TestCreateValidationSkipsBackend(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	res := f.do(http.MethodPost, "/memos/", url.Values{"code": {"MEMO-3"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "This field is required")
	assert.Len(t, f.backend.records, 2, "invalid form must never reach the backend")
}

func TestCreatePrependsWithoutRefetch(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/memos/", nil).Code)
	res := f.do(http.MethodPost, "/memos/", url.Values{"code": {"MEMO-3"}, "name": {"Third"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/memos", res.Header().Get("Location"))

	list := f.do(http.MethodGet, "/memos/", nil)
	assert.Contains(t, list.Body.String(), "MEMO-3")
	assert.Equal(t, int32(1), f.backend.searches.Load(), "created row is merged locally, not refetched")
}

func TestUpdateReplacesRowInPlace(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/memos/", nil).Code)
	res := f.do(http.MethodPost, "/memos/1/edit", url.Values{"code": {"MEMO-1"}, "name": {"Renamed"}})
	require.Equal(t, http.StatusSeeOther, res.Code)

	list := f.do(http.MethodGet, "/memos/", nil)
	assert.Contains(t, list.Body.String(), "Renamed")
	assert.Equal(t, int32(1), f.backend.searches.Load())
}

func TestEditFormPrefillsFromSnapshot(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/memos/", nil).Code)
	res := f.do(http.MethodGet, "/memos/2/edit", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "MEMO-2")
}

func TestDeleteConfirmsThenRefetches(t *testing.T) {
	f := newFixture(t, "memos.view", "memos.edit")

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/memos/", nil).Code)

	confirm := f.do(http.MethodGet, "/memos/1/delete", nil)
	require.Equal(t, http.StatusOK, confirm.Code)
	require.Equal(t, int32(0), f.backend.deletes.Load(), "confirmation must not delete")

	res := f.do(http.MethodPost, "/memos/1/delete", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, int32(1), f.backend.deletes.Load())
	assert.Equal(t, int32(2), f.backend.searches.Load(), "delete must refetch the page")

	list := f.do(http.MethodGet, "/memos/", nil)
	assert.NotContains(t, list.Body.String(), "MEMO-1")
}

func TestViewOnlyProfileCannotEdit(t *testing.T) {
	f := newFixture(t, "memos.view")

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/memos/", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/memos/new", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/memos/1/delete", nil).Code)
}
