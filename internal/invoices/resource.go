package invoices

import (
	"context"
	"net/url"
	"strconv"

	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
)

// Form carries the invoice header values, shared by the edit dialog and the
// wizard's first step.
type Form struct {
	InvoiceNumber string `validate:"required,max=50"`
	InvoiceDate   string `validate:"required,datetime=2006-01-02"`
	ReceiveDate   string `validate:"required,datetime=2006-01-02"`
	SupplierID    string `validate:"required,numeric"`
	Amount        string `validate:"required,numeric"`
	Currency      string `validate:"required,oneof=IDR USD"`
	TypeID        string `validate:"required,numeric"`
	Remarks       string `validate:"max=500"`
}

// NewResource describes the invoice screen for the generic handler. The
// create path is taken over by the wizard; everything else follows the
// shared list/dialog/delete shape.
func NewResource() screens.Resource[Invoice, Form] {
	return screens.Resource[Invoice, Form]{
		Name:           "invoices",
		Title:          "Invoice",
		BasePath:       "/invoices",
		Endpoint:       "/invoice",
		ViewPermission: shared.PermInvoicesView,
		EditPermission: shared.PermInvoicesEdit,
		SearchFields: []screens.Field{
			{Name: "invoice_number", Label: "Invoice No", Type: "text"},
			{Name: "supplier_id", Label: "Supplier", Type: "select"},
			{Name: "type_id", Label: "Type", Type: "select"},
			{Name: "status", Label: "Status", Type: "text"},
			{Name: "date_from", Label: "From", Type: "date"},
			{Name: "date_to", Label: "To", Type: "date"},
		},
		Columns: []screens.Column[Invoice]{
			{Header: "Invoice No", Cell: func(i Invoice) screens.Cell { return screens.Cell{Text: i.InvoiceNumber} }},
			{Header: "Date", Cell: func(i Invoice) screens.Cell { return screens.Cell{Text: i.InvoiceDate} }},
			{Header: "Supplier", Cell: func(i Invoice) screens.Cell { return screens.Cell{Text: i.SupplierName} }},
			{Header: "Amount", Cell: func(i Invoice) screens.Cell {
				return screens.Cell{Text: view.FormatAmount(i.Currency, i.Amount)}
			}},
			{Header: "Type", Cell: func(i Invoice) screens.Cell { return screens.Cell{Text: i.TypeName} }},
			{Header: "Status", Cell: func(i Invoice) screens.Cell {
				return screens.Cell{Text: i.Status, Badge: view.StatusBadge(i.Status)}
			}},
		},
		RowLinks: func(id int64) []screens.RowLink {
			return []screens.RowLink{{Label: "View", Href: "/invoices/" + strconv.FormatInt(id, 10)}}
		},
		LookupKeys: []string{"supplier", "invoice-type"},
		ParseForm:  parseForm,
		FromRecord: fromRecord,
		Payload:    func(f Form) any { return payload(f, nil) },
		FormFields: formFields,
	}
}

func parseForm(values url.Values) Form {
	return Form{
		InvoiceNumber: values.Get("invoice_number"),
		InvoiceDate:   values.Get("invoice_date"),
		ReceiveDate:   values.Get("receive_date"),
		SupplierID:    values.Get("supplier_id"),
		Amount:        values.Get("amount"),
		Currency:      values.Get("currency"),
		TypeID:        values.Get("type_id"),
		Remarks:       values.Get("remarks"),
	}
}

func fromRecord(i Invoice) Form {
	return Form{
		InvoiceNumber: i.InvoiceNumber,
		InvoiceDate:   i.InvoiceDate,
		ReceiveDate:   i.ReceiveDate,
		SupplierID:    strconv.FormatInt(i.SupplierID, 10),
		Amount:        strconv.FormatFloat(i.Amount, 'f', 2, 64),
		Currency:      i.Currency,
		TypeID:        strconv.FormatInt(i.TypeID, 10),
		Remarks:       i.Remarks,
	}
}

func payload(f Form, adocIDs []string) any {
	body := map[string]any{
		"invoice_number": f.InvoiceNumber,
		"invoice_date":   f.InvoiceDate,
		"receive_date":   f.ReceiveDate,
		"supplier_id":    f.SupplierID,
		"amount":         f.Amount,
		"currency":       f.Currency,
		"type_id":        f.TypeID,
		"remarks":        f.Remarks,
	}
	if adocIDs != nil {
		body["additional_document_ids"] = adocIDs
	}
	return body
}

func formFields(f Form, errs map[string]string, opts map[string][]lookups.Option) []screens.Field {
	return []screens.Field{
		{Name: "invoice_number", Label: "Invoice No", Type: "text", Value: f.InvoiceNumber, Required: true, Error: errs["InvoiceNumber"]},
		{Name: "invoice_date", Label: "Invoice Date", Type: "date", Value: f.InvoiceDate, Required: true, Error: errs["InvoiceDate"]},
		{Name: "receive_date", Label: "Receive Date", Type: "date", Value: f.ReceiveDate, Required: true, Error: errs["ReceiveDate"]},
		{Name: "supplier_id", Label: "Supplier", Type: "select", Value: f.SupplierID, Options: opts["supplier"], Required: true, Error: errs["SupplierID"]},
		{Name: "amount", Label: "Amount", Type: "number", Value: f.Amount, Required: true, Error: errs["Amount"]},
		{Name: "currency", Label: "Currency", Type: "select", Value: f.Currency, Options: currencyOptions(), Required: true, Error: errs["Currency"]},
		{Name: "type_id", Label: "Type", Type: "select", Value: f.TypeID, Options: opts["invoice-type"], Required: true, Error: errs["TypeID"]},
		{Name: "remarks", Label: "Remarks", Type: "textarea", Value: f.Remarks, Error: errs["Remarks"]},
	}
}

func currencyOptions() []lookups.Option {
	return []lookups.Option{
		{Value: "IDR", Label: "IDR"},
		{Value: "USD", Label: "USD"},
	}
}

// RegisterLookup feeds the invoice select on the additional-document form.
func RegisterLookup(svc *lookups.Service, client *backend.Client) {
	svc.Register("invoice", func(ctx context.Context, token string) ([]lookups.Option, error) {
		records, err := backend.All[Invoice](ctx, client, token, "/invoice/all")
		if err != nil {
			return nil, err
		}
		options := make([]lookups.Option, len(records))
		for i, inv := range records {
			options[i] = lookups.Option{Value: strconv.FormatInt(inv.ID, 10), Label: inv.InvoiceNumber}
		}
		return options, nil
	})
}
