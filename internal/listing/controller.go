// Package listing implements the list/search/paginate controller shared by
// every master-data and document screen.
package listing

import (
	"context"
	"sync"

	"github.com/docudist/docudist/internal/backend"
)

// DefaultPageSize matches the backend's default per_page.
const DefaultPageSize = 10

// Record is any backend-owned row identified by an integer id.
type Record interface {
	RecordID() int64
}

// Fetcher loads one page of records for the given criteria.
type Fetcher[T Record] func(ctx context.Context, criteria backend.Criteria, page, perPage int) (backend.Page[T], error)

// Controller coordinates search criteria, pagination and the fetched result
// set for a single screen. A failed fetch leaves the prior state untouched.
type Controller[T Record] struct {
	mu    sync.Mutex
	fetch Fetcher[T]

	criteria  backend.Criteria
	pageIndex int
	pageSize  int

	items      []T
	totalCount int
	lastPage   int
	from       int
	to         int

	// seq guards against a slow response overwriting a newer one when
	// filter changes arrive in quick succession.
	seq uint64
}

// NewController builds a controller starting at page 1 with empty criteria.
func NewController[T Record](fetch Fetcher[T]) *Controller[T] {
	return &Controller[T]{
		fetch:     fetch,
		criteria:  backend.Criteria{},
		pageIndex: 1,
		pageSize:  DefaultPageSize,
		lastPage:  1,
	}
}

// SetCriteria replaces the filter set, resets to page 1 and fetches.
func (c *Controller[T]) SetCriteria(ctx context.Context, criteria backend.Criteria) error {
	c.mu.Lock()
	c.criteria = criteria.Clone()
	c.pageIndex = 1
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// SetPageSize updates the page size, resets to page 1 and fetches.
func (c *Controller[T]) SetPageSize(ctx context.Context, n int) error {
	if n < 1 {
		n = DefaultPageSize
	}
	c.mu.Lock()
	c.pageSize = n
	c.pageIndex = 1
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// GoToPage clamps n to [1, lastPage] and fetches. An out-of-range page never
// reaches the backend.
func (c *Controller[T]) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if n < 1 {
		n = 1
	}
	if n > c.lastPage {
		n = c.lastPage
	}
	c.pageIndex = n
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// Fetch issues one request for the current criteria and page. On success the
// result set and pagination metadata are replaced; on failure the previous
// page stays displayed and the error is returned for a flash notification.
func (c *Controller[T]) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	criteria := c.criteria.Clone()
	page := c.pageIndex
	perPage := c.pageSize
	c.mu.Unlock()

	result, err := c.fetch(ctx, criteria, page, perPage)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// A newer fetch has started or completed; drop this result.
		return nil
	}
	c.items = result.Items
	c.totalCount = result.TotalCount
	c.pageIndex = result.PageIndex
	c.lastPage = result.LastPage
	c.from = result.From
	c.to = result.To
	if c.lastPage < 1 {
		c.lastPage = 1
	}
	return nil
}

// ApplyCreate prepends a freshly created record without refetching.
func (c *Controller[T]) ApplyCreate(record T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{record}, c.items...)
	c.totalCount++
	if c.from == 0 {
		c.from = 1
	}
	c.to++
}

// ApplyUpdate replaces the matching record in place. It reports whether the
// record was present on the current page; total count never changes.
func (c *Controller[T]) ApplyUpdate(record T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].RecordID() == record.RecordID() {
			c.items[i] = record
			return true
		}
	}
	return false
}

// Items returns the currently displayed page.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// TotalCount returns the backend's total for the current criteria.
func (c *Controller[T]) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCount
}

// PageIndex returns the 1-based current page.
func (c *Controller[T]) PageIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageIndex
}

// PageSize returns the current page size.
func (c *Controller[T]) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// LastPage returns the last reachable page (at least 1).
func (c *Controller[T]) LastPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPage
}

// Criteria returns a copy of the active filter set.
func (c *Controller[T]) Criteria() backend.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria.Clone()
}

// Range reports the 1-based from/to positions of the displayed page.
func (c *Controller[T]) Range() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from, c.to
}

// HasPrev reports whether an earlier page exists.
func (c *Controller[T]) HasPrev() bool {
	return c.PageIndex() > 1
}

// HasNext reports whether a later page exists.
func (c *Controller[T]) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageIndex < c.lastPage
}
