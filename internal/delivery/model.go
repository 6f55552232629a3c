// Package delivery mounts the LPD (local) and SPI (port) delivery-slip
// screens. Both carry the same record shape and differ only in endpoint,
// permissions and slip kind; each slip bundles invoices for transport and
// can be printed as a PDF.
package delivery

// Slip is a backend-owned delivery slip.
type Slip struct {
	ID          int64  `json:"id"`
	SlipNumber  string `json:"slip_number"`
	SlipDate    string `json:"slip_date"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Status      string `json:"status"`
	Remarks     string `json:"remarks"`

	InvoiceIDs []int64 `json:"invoice_ids"`
	// Invoices is populated on single-record fetches only.
	Invoices []SlipInvoice `json:"invoices,omitempty"`
}

// SlipInvoice is an invoice line on a printed slip.
type SlipInvoice struct {
	ID            int64   `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	SupplierName  string  `json:"supplier_name"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// RecordID implements listing.Record.
func (s Slip) RecordID() int64 { return s.ID }

// Kind selects between the two slip screens.
type Kind string

const (
	KindLPD Kind = "lpd"
	KindSPI Kind = "spi"
)

// Title returns the screen heading for the kind.
func (k Kind) Title() string {
	if k == KindSPI {
		return "SPI Delivery Slip"
	}
	return "LPD Delivery Slip"
}

// Endpoint returns the backend collection path for the kind.
func (k Kind) Endpoint() string {
	if k == KindSPI {
		return "/delivery/spi"
	}
	return "/delivery/lpd"
}
