// Package screens builds a complete list/search/paginate screen with its
// create/edit dialog and delete confirmation from a resource descriptor.
// Every master-data and document screen mounts through it instead of
// reimplementing the pattern.
package screens

import (
	"net/url"

	"github.com/docudist/docudist/internal/listing"
	"github.com/docudist/docudist/internal/lookups"
)

// Cell is one rendered table cell. Badge, when set, is a CSS class wrapping
// the text in a colored label (status columns).
type Cell struct {
	Text  string
	Badge string
}

// Column describes one list column for records of type T.
type Column[T listing.Record] struct {
	Header string
	Cell   func(T) Cell
}

// Row is a rendered list row.
type Row struct {
	ID    int64
	Cells []Cell
	Links []RowLink
}

// RowLink is an extra per-row action rendered next to edit/delete, e.g. a
// print link. Authorization is enforced by the target route.
type RowLink struct {
	Label string
	Href  string
}

// Field describes one form input or search filter.
type Field struct {
	Name  string
	Label string
	Type  string // text, date, select, multiselect, password, email, number, textarea
	Value string
	// Values carries the selection for multiselect fields.
	Values   []string
	Options  []lookups.Option
	Required bool
	Error    string
}

// Resource wires an entity type into the generic screen. F is the form
// struct carrying validate tags.
type Resource[T listing.Record, F any] struct {
	// Name keys the per-screen session state, e.g. "suppliers".
	Name  string
	Title string
	// BasePath is where the screen is mounted, e.g. "/masterdata/suppliers".
	BasePath string
	// Endpoint is the backend collection path, e.g. "/suppliers". Search
	// uses Endpoint+"/search", mutations Endpoint and Endpoint+"/{id}".
	Endpoint string

	ViewPermission string
	EditPermission string

	// SearchFields declares the filter inputs; Field.Name doubles as the
	// criteria key sent to the backend.
	SearchFields []Field
	Columns      []Column[T]
	// RowLinks builds extra per-row actions, nil for none.
	RowLinks func(id int64) []RowLink

	// LookupKeys lists the lookup lists the form needs, resolved before
	// FormFields is called.
	LookupKeys []string

	// ParseForm builds the form struct from submitted values.
	ParseForm func(values url.Values) F
	// FromRecord prefills the form for edit mode.
	FromRecord func(record T) F
	// Payload converts a valid form into the backend request body.
	Payload func(form F) any
	// FormFields renders the dialog inputs for the given form state.
	FormFields func(form F, fieldErrors map[string]string, opts map[string][]lookups.Option) []Field
}

// StateKey names the session entry holding the screen list snapshot.
func (r Resource[T, F]) StateKey() string {
	return "list:" + r.Name
}
