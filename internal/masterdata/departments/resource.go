package departments

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
	Code     string `validate:"required,max=30"`
	Name     string `validate:"required,max=255"`
	Location string `validate:"required"`
}

// NewResource describes the department screen for the generic handler.
func NewResource() screens.Resource[Department, Form] {
	return screens.Resource[Department, Form]{
		Name:           "departments",
		Title:          "Department",
		BasePath:       "/masterdata/departments",
		Endpoint:       "/department",
		ViewPermission: shared.PermDepartmentsView,
		EditPermission: shared.PermDepartmentsEdit,
		SearchFields: []screens.Field{
			{Name: "code", Label: "Code", Type: "text"},
			{Name: "name", Label: "Name", Type: "text"},
			{Name: "location", Label: "Location", Type: "text"},
		},
		Columns: []screens.Column[Department]{
			{Header: "Code", Cell: func(d Department) screens.Cell { return screens.Cell{Text: d.Code} }},
			{Header: "Name", Cell: func(d Department) screens.Cell { return screens.Cell{Text: d.Name} }},
			{Header: "Location", Cell: func(d Department) screens.Cell { return screens.Cell{Text: d.Location} }},
		},
		ParseForm: func(values url.Values) Form {
			return Form{
				Code:     values.Get("code"),
				Name:     values.Get("name"),
				Location: values.Get("location"),
			}
		},
		FromRecord: func(d Department) Form {
			return Form{Code: d.Code, Name: d.Name, Location: d.Location}
		},
		Payload: func(f Form) any {
			return map[string]any{"code": f.Code, "name": f.Name, "location": f.Location}
		},
		FormFields: func(f Form, errs map[string]string, _ map[string][]lookups.Option) []screens.Field {
			return []screens.Field{
				{Name: "code", Label: "Code", Type: "text", Value: f.Code, Required: true, Error: errs["Code"]},
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true, Error: errs["Name"]},
				{Name: "location", Label: "Location", Type: "text", Value: f.Location, Required: true, Error: errs["Location"]},
			}
		},
	}
}

// RegisterLookup feeds the department select on the user form.
func RegisterLookup(svc *lookups.Service, client *backend.Client) {
	svc.Register("department", func(ctx context.Context, token string) ([]lookups.Option, error) {
		records, err := backend.All[Department](ctx, client, token, "/department/all")
		if err != nil {
			return nil, err
		}
		options := make([]lookups.Option, len(records))
		for i, d := range records {
			options[i] = lookups.Option{Value: strconv.FormatInt(d.ID, 10), Label: d.Name}
		}
		return options, nil
	})
}
