package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Page holds one fetched page of records plus the backend's pagination math.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	PageIndex  int `json:"page_index"`
	PageSize   int `json:"page_size"`
	LastPage   int `json:"last_page"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// pageBody mirrors the Laravel paginator nested under "data".
type pageBody struct {
	Data        json.RawMessage `json:"data"`
	Total       int             `json:"total"`
	CurrentPage int             `json:"current_page"`
	PerPage     int             `json:"per_page"`
	LastPage    int             `json:"last_page"`
	From        int             `json:"from"`
	To          int             `json:"to"`
}

type searchEnvelope struct {
	Success bool     `json:"success"`
	Error   bool     `json:"error"`
	Message string   `json:"message"`
	Data    pageBody `json:"data"`
}

type listEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type mutationEnvelope struct {
	Success bool            `json:"success"`
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Search fetches one page from a search endpoint. Criteria must already be
// stripped of empty fields; per_page and page are appended here.
func Search[T any](ctx context.Context, c *Client, token, path string, criteria Criteria, page, perPage int) (Page[T], error) {
	query := criteria.Values()
	query.Set("per_page", fmt.Sprintf("%d", perPage))
	query.Set("page", fmt.Sprintf("%d", page))

	var result Page[T]
	data, err := c.do(ctx, token, http.MethodGet, path, query, nil)
	if err != nil {
		return result, err
	}

	var env searchEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return result, fmt.Errorf("decode search envelope: %w", err)
	}
	if env.Error || (!env.Success && env.Message != "") {
		return result, &APIError{Status: http.StatusOK, Message: env.Message, Semantic: true}
	}

	items := make([]T, 0)
	if len(env.Data.Data) > 0 {
		if err := json.Unmarshal(env.Data.Data, &items); err != nil {
			return result, fmt.Errorf("decode search items: %w", err)
		}
	}
	result = Page[T]{
		Items:      items,
		TotalCount: env.Data.Total,
		PageIndex:  env.Data.CurrentPage,
		PageSize:   perPage,
		LastPage:   env.Data.LastPage,
		From:       env.Data.From,
		To:         env.Data.To,
	}
	if result.PageIndex < 1 {
		result.PageIndex = page
	}
	if result.LastPage < 1 {
		result.LastPage = 1
	}
	return result, nil
}

// All fetches an unpaginated lookup list ({"data": [...]}).
func All[T any](ctx context.Context, c *Client, token, path string) ([]T, error) {
	data, err := c.do(ctx, token, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var env listEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode list envelope: %w", err)
	}
	items := make([]T, 0)
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, fmt.Errorf("decode list items: %w", err)
		}
	}
	return items, nil
}

// Create posts a new record and returns it with its backend-assigned id.
func Create[T any](ctx context.Context, c *Client, token, path string, payload any) (T, error) {
	return mutate[T](ctx, c, token, http.MethodPost, path, payload)
}

// Update replaces an existing record in full.
func Update[T any](ctx context.Context, c *Client, token, path string, payload any) (T, error) {
	return mutate[T](ctx, c, token, http.MethodPut, path, payload)
}

// Delete removes a record. The caller is expected to refetch its list.
func Delete(ctx context.Context, c *Client, token, path string) error {
	data, err := c.do(ctx, token, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	var env mutationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode delete envelope: %w", err)
	}
	if env.Error || !env.Success {
		return &APIError{Status: http.StatusOK, Message: env.Message, Semantic: true}
	}
	return nil
}

// Fetch retrieves a single record ({"data": {...}}).
func Fetch[T any](ctx context.Context, c *Client, token, path string) (T, error) {
	var record T
	data, err := c.do(ctx, token, http.MethodGet, path, nil, nil)
	if err != nil {
		return record, err
	}
	var env mutationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return record, fmt.Errorf("decode record envelope: %w", err)
	}
	if env.Error {
		return record, &APIError{Status: http.StatusOK, Message: env.Message, Semantic: true}
	}
	if len(env.Data) == 0 {
		return record, ErrNotFound
	}
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return record, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}

func mutate[T any](ctx context.Context, c *Client, token, method, path string, payload any) (T, error) {
	var record T
	data, err := c.do(ctx, token, method, path, nil, payload)
	if err != nil {
		return record, err
	}
	var env mutationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return record, fmt.Errorf("decode mutation envelope: %w", err)
	}
	if env.Error || !env.Success {
		return record, &APIError{Status: http.StatusOK, Message: env.Message, Semantic: true}
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &record); err != nil {
			return record, fmt.Errorf("decode mutation record: %w", err)
		}
	}
	return record, nil
}
