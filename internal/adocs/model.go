// Package adocs mounts the additional-document screen. Additional documents
// travel with an invoice (tax forms, delivery orders, certificates) and are
// attached to one by id.
package adocs

// Adoc is a backend-owned additional document.
type Adoc struct {
	ID             int64  `json:"id"`
	DocumentNumber string `json:"document_number"`
	DocumentDate   string `json:"document_date"`
	TypeID         int64  `json:"type_id"`
	TypeName       string `json:"type_name"`
	InvoiceID      int64  `json:"invoice_id"`
	InvoiceNumber  string `json:"invoice_number"`
	Status         string `json:"status"`
	Remarks        string `json:"remarks"`
}

// RecordID implements listing.Record.
func (a Adoc) RecordID() int64 { return a.ID }
