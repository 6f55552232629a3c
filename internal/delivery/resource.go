package delivery

import (
	"net/url"
	"strconv"

	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
)

// Form carries the create/edit dialog values for both slip kinds.
type Form struct {
	SlipNumber  string   `validate:"required,max=50"`
	SlipDate    string   `validate:"required,datetime=2006-01-02"`
	Origin      string   `validate:"required"`
	Destination string   `validate:"required"`
	InvoiceIDs  []string `validate:"required,min=1"`
	Remarks     string   `validate:"max=500"`
}

// NewResource describes one slip screen. LPD and SPI are the same shape
// with different endpoints and permissions.
func NewResource(kind Kind) screens.Resource[Slip, Form] {
	viewPerm, editPerm := shared.PermLPDView, shared.PermLPDEdit
	if kind == KindSPI {
		viewPerm, editPerm = shared.PermSPIView, shared.PermSPIEdit
	}
	return screens.Resource[Slip, Form]{
		Name:           string(kind),
		Title:          kind.Title(),
		BasePath:       "/delivery/" + string(kind),
		Endpoint:       kind.Endpoint(),
		ViewPermission: viewPerm,
		EditPermission: editPerm,
		SearchFields: []screens.Field{
			{Name: "slip_number", Label: "Slip No", Type: "text"},
			{Name: "destination", Label: "Destination", Type: "text"},
			{Name: "status", Label: "Status", Type: "text"},
		},
		Columns: []screens.Column[Slip]{
			{Header: "Slip No", Cell: func(s Slip) screens.Cell { return screens.Cell{Text: s.SlipNumber} }},
			{Header: "Date", Cell: func(s Slip) screens.Cell { return screens.Cell{Text: s.SlipDate} }},
			{Header: "Origin", Cell: func(s Slip) screens.Cell { return screens.Cell{Text: s.Origin} }},
			{Header: "Destination", Cell: func(s Slip) screens.Cell { return screens.Cell{Text: s.Destination} }},
			{Header: "Invoices", Cell: func(s Slip) screens.Cell {
				return screens.Cell{Text: strconv.Itoa(len(s.InvoiceIDs))}
			}},
			{Header: "Status", Cell: func(s Slip) screens.Cell {
				return screens.Cell{Text: s.Status, Badge: view.StatusBadge(s.Status)}
			}},
		},
		RowLinks: func(id int64) []screens.RowLink {
			return []screens.RowLink{{Label: "Print", Href: "/print/" + string(kind) + "/" + strconv.FormatInt(id, 10)}}
		},
		LookupKeys: []string{"invoice"},
		ParseForm: func(values url.Values) Form {
			return Form{
				SlipNumber:  values.Get("slip_number"),
				SlipDate:    values.Get("slip_date"),
				Origin:      values.Get("origin"),
				Destination: values.Get("destination"),
				InvoiceIDs:  values["invoice_ids"],
				Remarks:     values.Get("remarks"),
			}
		},
		FromRecord: func(s Slip) Form {
			ids := make([]string, len(s.InvoiceIDs))
			for i, id := range s.InvoiceIDs {
				ids[i] = strconv.FormatInt(id, 10)
			}
			return Form{
				SlipNumber:  s.SlipNumber,
				SlipDate:    s.SlipDate,
				Origin:      s.Origin,
				Destination: s.Destination,
				InvoiceIDs:  ids,
				Remarks:     s.Remarks,
			}
		},
		Payload: func(f Form) any {
			return map[string]any{
				"slip_number": f.SlipNumber,
				"slip_date":   f.SlipDate,
				"origin":      f.Origin,
				"destination": f.Destination,
				"invoice_ids": f.InvoiceIDs,
				"remarks":     f.Remarks,
			}
		},
		FormFields: func(f Form, errs map[string]string, opts map[string][]lookups.Option) []screens.Field {
			return []screens.Field{
				{Name: "slip_number", Label: "Slip No", Type: "text", Value: f.SlipNumber, Required: true, Error: errs["SlipNumber"]},
				{Name: "slip_date", Label: "Slip Date", Type: "date", Value: f.SlipDate, Required: true, Error: errs["SlipDate"]},
				{Name: "origin", Label: "Origin", Type: "text", Value: f.Origin, Required: true, Error: errs["Origin"]},
				{Name: "destination", Label: "Destination", Type: "text", Value: f.Destination, Required: true, Error: errs["Destination"]},
				{Name: "invoice_ids", Label: "Invoices", Type: "multiselect", Values: f.InvoiceIDs, Options: opts["invoice"], Required: true, Error: errs["InvoiceIDs"]},
				{Name: "remarks", Label: "Remarks", Type: "textarea", Value: f.Remarks, Error: errs["Remarks"]},
			}
		},
	}
}
