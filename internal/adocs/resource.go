package adocs

import (
	"net/url"
	"strconv"

	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
)

// Form carries the create/edit dialog values. Dates are yyyy-mm-dd strings
// straight from the date input; the backend owns parsing and storage.
type Form struct {
	DocumentNumber string `validate:"required,max=50"`
	DocumentDate   string `validate:"required,datetime=2006-01-02"`
	TypeID         string `validate:"required,numeric"`
	InvoiceID      string `validate:"omitempty,numeric"`
	Remarks        string `validate:"max=500"`
}

// NewResource describes the additional-document screen.
func NewResource() screens.Resource[Adoc, Form] {
	return screens.Resource[Adoc, Form]{
		Name:           "adocs",
		Title:          "Additional Document",
		BasePath:       "/adocs",
		Endpoint:       "/additional-document",
		ViewPermission: shared.PermAdocsView,
		EditPermission: shared.PermAdocsEdit,
		SearchFields: []screens.Field{
			{Name: "document_number", Label: "Document No", Type: "text"},
			{Name: "type_id", Label: "Type", Type: "select"},
			{Name: "status", Label: "Status", Type: "text"},
		},
		Columns: []screens.Column[Adoc]{
			{Header: "Document No", Cell: func(a Adoc) screens.Cell { return screens.Cell{Text: a.DocumentNumber} }},
			{Header: "Date", Cell: func(a Adoc) screens.Cell { return screens.Cell{Text: a.DocumentDate} }},
			{Header: "Type", Cell: func(a Adoc) screens.Cell { return screens.Cell{Text: a.TypeName} }},
			{Header: "Invoice", Cell: func(a Adoc) screens.Cell { return screens.Cell{Text: a.InvoiceNumber} }},
			{Header: "Status", Cell: func(a Adoc) screens.Cell {
				return screens.Cell{Text: a.Status, Badge: view.StatusBadge(a.Status)}
			}},
		},
		LookupKeys: []string{"adoc-type", "invoice"},
		ParseForm: func(values url.Values) Form {
			return Form{
				DocumentNumber: values.Get("document_number"),
				DocumentDate:   values.Get("document_date"),
				TypeID:         values.Get("type_id"),
				InvoiceID:      values.Get("invoice_id"),
				Remarks:        values.Get("remarks"),
			}
		},
		FromRecord: func(a Adoc) Form {
			form := Form{
				DocumentNumber: a.DocumentNumber,
				DocumentDate:   a.DocumentDate,
				TypeID:         strconv.FormatInt(a.TypeID, 10),
				Remarks:        a.Remarks,
			}
			if a.InvoiceID != 0 {
				form.InvoiceID = strconv.FormatInt(a.InvoiceID, 10)
			}
			return form
		},
		Payload: func(f Form) any {
			payload := map[string]any{
				"document_number": f.DocumentNumber,
				"document_date":   f.DocumentDate,
				"type_id":         f.TypeID,
				"remarks":         f.Remarks,
			}
			if f.InvoiceID != "" {
				payload["invoice_id"] = f.InvoiceID
			}
			return payload
		},
		FormFields: func(f Form, errs map[string]string, opts map[string][]lookups.Option) []screens.Field {
			return []screens.Field{
				{Name: "document_number", Label: "Document No", Type: "text", Value: f.DocumentNumber, Required: true, Error: errs["DocumentNumber"]},
				{Name: "document_date", Label: "Document Date", Type: "date", Value: f.DocumentDate, Required: true, Error: errs["DocumentDate"]},
				{Name: "type_id", Label: "Type", Type: "select", Value: f.TypeID, Options: opts["adoc-type"], Required: true, Error: errs["TypeID"]},
				{Name: "invoice_id", Label: "Invoice", Type: "select", Value: f.InvoiceID, Options: opts["invoice"], Error: errs["InvoiceID"]},
				{Name: "remarks", Label: "Remarks", Type: "textarea", Value: f.Remarks, Error: errs["Remarks"]},
			}
		},
	}
}
