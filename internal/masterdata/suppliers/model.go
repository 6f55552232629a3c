// Package suppliers mounts the supplier master-data screen.
package suppliers

// Supplier is a backend-owned supplier record.
type Supplier struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	City           string `json:"city"`
	PaymentProject string `json:"payment_project"`
}

// RecordID implements listing.Record.
func (s Supplier) RecordID() int64 { return s.ID }
