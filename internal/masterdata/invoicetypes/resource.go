package invoicetypes

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

// NewResource describes the invoice-type screen for the generic handler.
func NewResource() screens.Resource[InvoiceType, Form] {
	return screens.Resource[InvoiceType, Form]{
		Name:           "invoice-types",
		Title:          "Invoice Type",
		BasePath:       "/masterdata/invoice-types",
		Endpoint:       "/invoice-type",
		ViewPermission: shared.PermInvoiceTypesView,
		EditPermission: shared.PermInvoiceTypesEdit,
		SearchFields: []screens.Field{
			{Name: "name", Label: "Name", Type: "text"},
		},
		Columns: []screens.Column[InvoiceType]{
			{Header: "Name", Cell: func(t InvoiceType) screens.Cell { return screens.Cell{Text: t.Name} }},
		},
		ParseForm: func(values url.Values) Form {
			return Form{Name: values.Get("name")}
		},
		FromRecord: func(t InvoiceType) Form {
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

// RegisterLookup feeds the type select on the invoice form and filter.
func RegisterLookup(svc *lookups.Service, client *backend.Client) {
	svc.Register("invoice-type", func(ctx context.Context, token string) ([]lookups.Option, error) {
		records, err := backend.All[InvoiceType](ctx, client, token, "/invoice-type/all")
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
