package invoices_test

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

	"github.com/docudist/docudist/internal/authz"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/invoices"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/masterdata/invoicetypes"
	"github.com/docudist/docudist/internal/masterdata/suppliers"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
	_ "github.com/docudist/docudist/testing"
)

type wizardFixture struct {
	router   chi.Router
	session  *shared.Session
	invoices *[]map[string]any
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()

	created := &[]map[string]any{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/supplier/all":
			_, _ = w.Write([]byte(`{"data": [{"id": 3, "code": "SUP-3", "name": "Alpha Jaya"}]}`))
		case r.URL.Path == "/invoice-type/all":
			_, _ = w.Write([]byte(`{"data": [{"id": 5, "name": "Services"}]}`))
		case r.URL.Path == "/additional-document/unattached":
			_, _ = w.Write([]byte(`{"data": [
				{"id": 11, "document_number": "BAST-11", "document_date": "2026-01-05", "type_name": "BAST"},
				{"id": 12, "document_number": "BAPP-12", "document_date": "2026-01-06", "type_name": "BAPP"}
			]}`))
		case r.URL.Path == "/invoice" && r.Method == http.MethodPost:
			var payload map[string]any
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &payload)
			*created = append(*created, payload)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": map[string]any{
					"id":             42,
					"invoice_number": payload["invoice_number"],
					"status":         "OPEN",
				},
				"message": "created",
			})
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
	sess.SetToken("tok")
	sess.SetProfile(&shared.Profile{ID: 1, Name: "Tester", Permissions: []string{"invoices.view", "invoices.edit"}})

	templates, err := view.NewEngine()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	apiClient := backend.NewClient(server.URL)
	lookupService := lookups.NewService(redisClient, time.Minute, logger)
	suppliers.RegisterLookup(lookupService, apiClient)
	invoicetypes.RegisterLookup(lookupService, apiClient)

	handler := invoices.NewHandler(logger, apiClient, templates, shared.NewCSRFManager("csrf-secret"), authz.Middleware{}, lookupService)

	router := chi.NewRouter()
	router.Route("/invoices", handler.MountRoutes)
	return &wizardFixture{router: router, session: sess, invoices: created}
}

func (f *wizardFixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
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

func validHeader() url.Values {
	return url.Values{
		"invoice_number": {"INV-2026-001"},
		"invoice_date":   {"2026-01-10"},
		"receive_date":   {"2026-01-12"},
		"supplier_id":    {"3"},
		"amount":         {"1500000"},
		"currency":       {"IDR"},
		"type_id":        {"5"},
		"remarks":        {"Januari"},
	}
}

func TestWizardHeaderValidationStaysOnStep(t *testing.T) {
	f := newWizardFixture(t)

	form := validHeader()
	form.Set("invoice_date", "10/01/2026")
	res := f.do(http.MethodPost, "/invoices/new", form)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Enter a valid date")
	assert.Empty(t, *f.invoices, "invalid header must not reach the backend")
}

func TestWizardStepsGuardAgainstSkipping(t *testing.T) {
	f := newWizardFixture(t)

	res := f.do(http.MethodGet, "/invoices/new/documents", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/invoices/new", res.Header().Get("Location"))

	res = f.do(http.MethodGet, "/invoices/new/review", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/invoices/new", res.Header().Get("Location"))
}

func TestWizardFullFlowCreatesInvoice(t *testing.T) {
	f := newWizardFixture(t)

	res := f.do(http.MethodPost, "/invoices/new", validHeader())
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/invoices/new/documents", res.Header().Get("Location"))

	docs := f.do(http.MethodGet, "/invoices/new/documents", nil)
	require.Equal(t, http.StatusOK, docs.Code)
	assert.Contains(t, docs.Body.String(), "BAST-11")
	assert.Contains(t, docs.Body.String(), "BAPP-12")

	res = f.do(http.MethodPost, "/invoices/new/documents", url.Values{"adoc_ids": {"11", "12"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/invoices/new/review", res.Header().Get("Location"))

	review := f.do(http.MethodGet, "/invoices/new/review", nil)
	require.Equal(t, http.StatusOK, review.Code)
	assert.Contains(t, review.Body.String(), "INV-2026-001")
	assert.Contains(t, review.Body.String(), "Alpha Jaya")

	res = f.do(http.MethodPost, "/invoices/new/review", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/invoices", res.Header().Get("Location"))

	require.Len(t, *f.invoices, 1)
	sent := (*f.invoices)[0]
	assert.Equal(t, "INV-2026-001", sent["invoice_number"])
	ids, _ := sent["additional_document_ids"].([]any)
	assert.Len(t, ids, 2)

	assert.Empty(t, f.session.Get("wizard:invoice"), "draft must be cleared after submission")
}

func TestWizardCancelDiscardsDraft(t *testing.T) {
	f := newWizardFixture(t)

	require.Equal(t, http.StatusSeeOther, f.do(http.MethodPost, "/invoices/new", validHeader()).Code)
	require.NotEmpty(t, f.session.Get("wizard:invoice"))

	res := f.do(http.MethodPost, "/invoices/new/cancel", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/invoices", res.Header().Get("Location"))
	assert.Empty(t, f.session.Get("wizard:invoice"))
}
