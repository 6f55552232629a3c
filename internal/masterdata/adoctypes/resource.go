package adoctypes

import (
	"context"
	"net/url"
	"strconv"

	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
)

// Form carries the create/edit dialog values.
type Form struct {
	Name string `validate:"required,max=50"`
}

// NewResource describes the document-type screen for the generic handler.
func NewResource() screens.Resource[AdocType, Form] {
	return screens.Resource[AdocType, Form]{
		Name:           "adoc-types",
		Title:          "Document Type",
		BasePath:       "/masterdata/adoc-types",
		Endpoint:       "/adoc-type",
		ViewPermission: shared.PermAdocTypesView,
		EditPermission: shared.PermAdocTypesEdit,
		SearchFields: []screens.Field{
			{Name: "name", Label: "Name", Type: "text"},
		},
		Columns: []screens.Column[AdocType]{
			{Header: "Name", Cell: func(t AdocType) screens.Cell { return screens.Cell{Text: t.Name} }},
		},
		ParseForm: func(values url.Values) Form {
			return Form{Name: values.Get("name")}
		},
		FromRecord: func(t AdocType) Form {
			return Form{Name: t.Name}
		},
		Payload: func(f Form) any {
			return map[string]any{"name": f.Name}
		},
		FormFields: func(f Form, errs map[string]string, _ map[string][]lookups.Option) []screens.Field {
			return []screens.Field{
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true, Error: errs["Name"]},
			}
		},
	}
}

// RegisterLookup feeds the type select on the additional-document form.
func RegisterLookup(svc *lookups.Service, client *backend.Client) {
	svc.Register("adoc-type", func(ctx context.Context, token string) ([]lookups.Option, error) {
		records, err := backend.All[AdocType](ctx, client, token, "/adoc-type/all")
		if err != nil {
			return nil, err
		}
		options := make([]lookups.Option, len(records))
		for i, t := range records {
			options[i] = lookups.Option{Value: strconv.FormatInt(t.ID, 10), Label: t.Name}
		}
		return options, nil
	})
}
