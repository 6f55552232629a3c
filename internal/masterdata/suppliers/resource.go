package suppliers

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
	Code           string `validate:"required,max=30"`
	Name           string `validate:"required,max=255"`
	Type           string `validate:"required,oneof=VENDOR OTHERS"`
	City           string `validate:"required"`
	PaymentProject string
}

// NewResource describes the supplier screen for the generic handler.
func NewResource() screens.Resource[Supplier, Form] {
	return screens.Resource[Supplier, Form]{
		Name:           "suppliers",
		Title:          "Supplier",
		BasePath:       "/masterdata/suppliers",
		Endpoint:       "/supplier",
		ViewPermission: shared.PermSuppliersView,
		EditPermission: shared.PermSuppliersEdit,
		SearchFields: []screens.Field{
			{Name: "code", Label: "Code", Type: "text"},
			{Name: "name", Label: "Name", Type: "text"},
			{Name: "type", Label: "Type", Type: "select", Options: typeOptions()},
		},
		Columns: []screens.Column[Supplier]{
			{Header: "Code", Cell: func(s Supplier) screens.Cell { return screens.Cell{Text: s.Code} }},
			{Header: "Name", Cell: func(s Supplier) screens.Cell { return screens.Cell{Text: s.Name} }},
			{Header: "Type", Cell: func(s Supplier) screens.Cell { return screens.Cell{Text: s.Type} }},
			{Header: "City", Cell: func(s Supplier) screens.Cell { return screens.Cell{Text: s.City} }},
			{Header: "Payment Project", Cell: func(s Supplier) screens.Cell { return screens.Cell{Text: s.PaymentProject} }},
		},
		ParseForm: func(values url.Values) Form {
			return Form{
				Code:           values.Get("code"),
				Name:           values.Get("name"),
				Type:           values.Get("type"),
				City:           values.Get("city"),
				PaymentProject: values.Get("payment_project"),
			}
		},
		FromRecord: func(s Supplier) Form {
			return Form{
				Code:           s.Code,
				Name:           s.Name,
				Type:           s.Type,
				City:           s.City,
				PaymentProject: s.PaymentProject,
			}
		},
		Payload: func(f Form) any {
			return map[string]any{
				"code":            f.Code,
				"name":            f.Name,
				"type":            f.Type,
				"city":            f.City,
				"payment_project": f.PaymentProject,
			}
		},
		FormFields: func(f Form, errs map[string]string, _ map[string][]lookups.Option) []screens.Field {
			return []screens.Field{
				{Name: "code", Label: "Code", Type: "text", Value: f.Code, Required: true, Error: errs["Code"]},
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true, Error: errs["Name"]},
				{Name: "type", Label: "Type", Type: "select", Value: f.Type, Options: typeOptions(), Required: true, Error: errs["Type"]},
				{Name: "city", Label: "City", Type: "text", Value: f.City, Required: true, Error: errs["City"]},
				{Name: "payment_project", Label: "Payment Project", Type: "text", Value: f.PaymentProject, Error: errs["PaymentProject"]},
			}
		},
	}
}

func typeOptions() []lookups.Option {
	return []lookups.Option{
		{Value: "VENDOR", Label: "Vendor"},
		{Value: "OTHERS", Label: "Others"},
	}
}

// RegisterLookup feeds the supplier select on the invoice and delivery forms.
func RegisterLookup(svc *lookups.Service, client *backend.Client) {
	svc.Register("supplier", func(ctx context.Context, token string) ([]lookups.Option, error) {
		records, err := backend.All[Supplier](ctx, client, token, "/supplier/all")
		if err != nil {
			return nil, err
		}
		options := make([]lookups.Option, len(records))
		for i, s := range records {
			options[i] = lookups.Option{Value: strconv.FormatInt(s.ID, 10), Label: s.Code + " - " + s.Name}
		}
		return options, nil
	})
}
