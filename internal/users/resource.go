package users

import (
	"context"
	"net/url"
	"strings"

	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
)

// Form carries the create/edit dialog values. Mode travels as a hidden
// input: password entry is mandatory on create and optional on edit, where
// a blank password leaves the stored one unchanged.
type Form struct {
	Mode            string
	Name            string `validate:"required,max=255"`
	Email           string `validate:"required,email"`
	Project         string `validate:"required"`
	Department      string `validate:"required"`
	Roles           []string
	Password        string `validate:"required_unless=Mode edit,omitempty,min=8"`
	ConfirmPassword string `validate:"eqfield=Password"`
	IsActive        bool
}

// NewResource describes the user screen for the generic handler.
func NewResource() screens.Resource[User, Form] {
	return screens.Resource[User, Form]{
		Name:           "users",
		Title:          "User",
		BasePath:       "/users",
		Endpoint:       "/user",
		ViewPermission: shared.PermUsersView,
		EditPermission: shared.PermUsersEdit,
		SearchFields: []screens.Field{
			{Name: "name", Label: "Name", Type: "text"},
			{Name: "email", Label: "Email", Type: "text"},
		},
		Columns: []screens.Column[User]{
			{Header: "Name", Cell: func(u User) screens.Cell { return screens.Cell{Text: u.Name} }},
			{Header: "Email", Cell: func(u User) screens.Cell { return screens.Cell{Text: u.Email} }},
			{Header: "Project", Cell: func(u User) screens.Cell { return screens.Cell{Text: u.Project} }},
			{Header: "Department", Cell: func(u User) screens.Cell { return screens.Cell{Text: u.Department} }},
			{Header: "Roles", Cell: func(u User) screens.Cell { return screens.Cell{Text: strings.Join(u.Roles, ", ")} }},
			{Header: "Status", Cell: func(u User) screens.Cell {
				if u.IsActive {
					return screens.Cell{Text: "Active", Badge: "badge badge-received"}
				}
				return screens.Cell{Text: "Inactive", Badge: "badge badge-returned"}
			}},
		},
		LookupKeys: []string{"department", "role"},
		ParseForm: func(values url.Values) Form {
			return Form{
				Mode:            values.Get("mode"),
				Name:            values.Get("name"),
				Email:           values.Get("email"),
				Project:         values.Get("project"),
				Department:      values.Get("department"),
				Roles:           values["roles"],
				Password:        values.Get("password"),
				ConfirmPassword: values.Get("confirm_password"),
				IsActive:        values.Get("is_active") == "on",
			}
		},
		FromRecord: func(u User) Form {
			return Form{
				Mode:       "edit",
				Name:       u.Name,
				Email:      u.Email,
				Project:    u.Project,
				Department: u.Department,
				Roles:      u.Roles,
				IsActive:   u.IsActive,
			}
		},
		Payload: func(f Form) any {
			payload := map[string]any{
				"name":       f.Name,
				"email":      f.Email,
				"project":    f.Project,
				"department": f.Department,
				"roles":      f.Roles,
				"is_active":  f.IsActive,
			}
			if f.Password != "" {
				payload["password"] = f.Password
				payload["password_confirmation"] = f.ConfirmPassword
			}
			return payload
		},
		FormFields: func(f Form, errs map[string]string, opts map[string][]lookups.Option) []screens.Field {
			active := ""
			if f.IsActive {
				active = "on"
			}
			return []screens.Field{
				{Name: "mode", Type: "hidden", Value: f.Mode},
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true, Error: errs["Name"]},
				{Name: "email", Label: "Email", Type: "email", Value: f.Email, Required: true, Error: errs["Email"]},
				{Name: "project", Label: "Project", Type: "text", Value: f.Project, Required: true, Error: errs["Project"]},
				{Name: "department", Label: "Department", Type: "select", Value: f.Department, Options: opts["department"], Required: true, Error: errs["Department"]},
				{Name: "roles", Label: "Roles", Type: "multiselect", Values: f.Roles, Options: opts["role"], Error: errs["Roles"]},
				{Name: "password", Label: "Password", Type: "password", Required: f.Mode != "edit", Error: errs["Password"]},
				{Name: "confirm_password", Label: "Confirm Password", Type: "password", Error: errs["ConfirmPassword"]},
				{Name: "is_active", Label: "Active", Type: "checkbox", Value: active, Error: errs["IsActive"]},
			}
		},
	}
}

// RegisterLookup feeds the roles multi-select from the backend's role list.
func RegisterLookup(svc *lookups.Service, client *backend.Client) {
	type role struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	svc.Register("role", func(ctx context.Context, token string) ([]lookups.Option, error) {
		records, err := backend.All[role](ctx, client, token, "/role/all")
		if err != nil {
			return nil, err
		}
		options := make([]lookups.Option, len(records))
		for i, r := range records {
			options[i] = lookups.Option{Value: r.Name, Label: r.Name}
		}
		return options, nil
	})
}
