package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docudist/docudist/internal/backend"
	_ "github.com/docudist/docudist/testing"
)

type supplier struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func TestSearchBuildsQueryAndDecodesEnvelope(t *testing.T) {
	var gotQuery string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"data": [
					{"id": 1, "code": "SUP-1", "name": "Acme Jakarta"},
					{"id": 2, "code": "SUP-2", "name": "Acme Surabaya"},
					{"id": 3, "code": "SUP-3", "name": "Acme Medan"}
				],
				"total": 3,
				"current_page": 1,
				"last_page": 1,
				"from": 1,
				"to": 3
			}
		}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	criteria := backend.Criteria{"name": "Acme", "status": ""}
	page, err := backend.Search[supplier](context.Background(), client, "tok-123", "/suppliers/search", criteria, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Contains(t, gotQuery, "name=Acme")
	assert.Contains(t, gotQuery, "per_page=10")
	assert.Contains(t, gotQuery, "page=1")
	assert.NotContains(t, gotQuery, "status", "blank criteria fields must be omitted")

	assert.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 1, page.LastPage)
	assert.Equal(t, "SUP-1", page.Items[0].Code)
}

func TestSearchSemanticFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": true, "message": "search index unavailable"}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	_, err := backend.Search[supplier](context.Background(), client, "tok", "/suppliers/search", nil, 1, 10)
	require.Error(t, err)

	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Semantic)
	assert.Equal(t, "search index unavailable", apiErr.Message)
	assert.Equal(t, "search index unavailable", backend.UserMessage(err))
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	_, err := backend.All[supplier](context.Background(), client, "expired", "/suppliers/all")
	assert.ErrorIs(t, err, backend.ErrUnauthenticated)
}

func TestCreateReturnsAssignedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "message": "created", "data": {"id": 42, "code": "SUP-42", "name": "New Supplier"}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	created, err := backend.Create[supplier](context.Background(), client, "tok", "/suppliers", supplier{Code: "SUP-42", Name: "New Supplier"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
}

func TestDeleteRejectedByBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": true, "message": "supplier has open invoices"}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	err := backend.Delete(context.Background(), client, "tok", "/suppliers/7")
	require.Error(t, err)
	assert.Equal(t, "supplier has open invoices", backend.UserMessage(err))
}

func TestAllDecodesFlatEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": 1, "code": "A", "name": "A"}, {"id": 2, "code": "B", "name": "B"}]}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	items, err := backend.All[supplier](context.Background(), client, "tok", "/suppliers/all")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNetworkFailureIsWrapped(t *testing.T) {
	client := backend.NewClient("http://127.0.0.1:0")
	_, err := backend.All[supplier](context.Background(), client, "tok", "/suppliers/all")
	require.Error(t, err)
	assert.Equal(t, "Something went wrong, please try again", backend.UserMessage(err))
}
