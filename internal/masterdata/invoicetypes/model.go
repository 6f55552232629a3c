// Package invoicetypes mounts the invoice-type master-data screen.
package invoicetypes

// InvoiceType is a backend-owned invoice type.
type InvoiceType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecordID implements listing.Record.
func (t InvoiceType) RecordID() int64 { return t.ID }
