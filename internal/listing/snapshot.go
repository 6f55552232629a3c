package listing

import (
	"encoding/json"

	"github.com/docudist/docudist/internal/backend"
)

// Snapshot is the serializable view state of a controller: the last-fetched
// page held for the lifetime of a screen, discarded on navigation.
type Snapshot[T Record] struct {
	Criteria   backend.Criteria `json:"criteria"`
	PageIndex  int              `json:"page_index"`
	PageSize   int              `json:"page_size"`
	Items      []T              `json:"items"`
	TotalCount int              `json:"total_count"`
	LastPage   int              `json:"last_page"`
	From       int              `json:"from"`
	To         int              `json:"to"`
}

// StateStore persists screen snapshots between requests. The session
// implements this.
type StateStore interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// Snapshot captures the current controller state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		Criteria:   c.criteria.Clone(),
		PageIndex:  c.pageIndex,
		PageSize:   c.pageSize,
		Items:      c.items,
		TotalCount: c.totalCount,
		LastPage:   c.lastPage,
		From:       c.from,
		To:         c.to,
	}
}

// Restore replaces the controller state with a previously saved snapshot.
func (c *Controller[T]) Restore(s Snapshot[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = s.Criteria.Clone()
	c.pageIndex = s.PageIndex
	c.pageSize = s.PageSize
	c.items = s.Items
	c.totalCount = s.TotalCount
	c.lastPage = s.LastPage
	c.from = s.From
	c.to = s.To
	if c.pageIndex < 1 {
		c.pageIndex = 1
	}
	if c.pageSize < 1 {
		c.pageSize = DefaultPageSize
	}
	if c.lastPage < 1 {
		c.lastPage = 1
	}
}

// Save writes the controller snapshot into the store under key.
func Save[T Record](store StateStore, key string, c *Controller[T]) error {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		return err
	}
	store.Set(key, string(data))
	return nil
}

// Load restores a saved snapshot into the controller. It reports whether a
// snapshot was present and decodable.
func Load[T Record](store StateStore, key string, c *Controller[T]) bool {
	raw := store.Get(key)
	if raw == "" {
		return false
	}
	var snap Snapshot[T]
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		store.Delete(key)
		return false
	}
	c.Restore(snap)
	return true
}
