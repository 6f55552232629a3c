// Package invoices mounts the invoice screen: the searchable register, the
// edit dialog and a three-step create wizard (header, attached documents,
// review) whose draft lives in the session.
package invoices

// Invoice is a backend-owned invoice record.
type Invoice struct {
	ID            int64   `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`
	ReceiveDate   string  `json:"receive_date"`
	SupplierID    int64   `json:"supplier_id"`
	SupplierName  string  `json:"supplier_name"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	TypeID        int64   `json:"type_id"`
	TypeName      string  `json:"type_name"`
	Status        string  `json:"status"`
	Remarks       string  `json:"remarks"`

	// Adocs is populated on single-record fetches only; search pages omit it.
	Adocs []AttachedAdoc `json:"additional_documents,omitempty"`
}

// AttachedAdoc is an additional document travelling with the invoice.
type AttachedAdoc struct {
	ID             int64  `json:"id"`
	DocumentNumber string `json:"document_number"`
	DocumentDate   string `json:"document_date"`
	TypeName       string `json:"type_name"`
}

// RecordID implements listing.Record.
func (i Invoice) RecordID() int64 { return i.ID }
