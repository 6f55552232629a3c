// Package report renders printable PDFs (delivery slips, invoice cover
// sheets) by executing an HTML template and converting it through a
// Gotenberg service.
package report

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/delivery"
	"github.com/docudist/docudist/internal/invoices"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
)

// Handler serves the print endpoints.
type Handler struct {
	client    *Client
	backend   *backend.Client
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, backendClient *backend.Client, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{client: client, backend: backendClient, templates: templates, logger: logger}
}

// Ping reports Gotenberg availability, used by the health endpoint.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// SlipPDF prints a delivery slip of the given kind.
func (h *Handler) SlipPDF(kind delivery.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid id", http.StatusBadRequest)
			return
		}
		slip, err := backend.Fetch[delivery.Slip](r.Context(), h.backend, shared.TokenFromContext(r.Context()), kind.Endpoint()+"/"+strconv.FormatInt(id, 10))
		if err != nil {
			h.logger.Warn("fetch slip", slog.Int64("id", id), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.servePDF(w, r, "pages/print_slip.html", map[string]any{
			"Kind":        kind.Title(),
			"Slip":        slip,
			"GeneratedAt": time.Now().Format("02 Jan 2006 15:04"),
		}, slip.SlipNumber+".pdf")
	}
}

// InvoicePDF prints an invoice cover sheet.
func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	invoice, err := backend.Fetch[invoices.Invoice](r.Context(), h.backend, shared.TokenFromContext(r.Context()), "/invoice/"+strconv.FormatInt(id, 10))
	if err != nil {
		h.logger.Warn("fetch invoice", slog.Int64("id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	h.servePDF(w, r, "pages/print_invoice.html", map[string]any{
		"Invoice":     invoice,
		"Amount":      view.FormatAmount(invoice.Currency, invoice.Amount),
		"GeneratedAt": time.Now().Format("02 Jan 2006 15:04"),
	}, invoice.InvoiceNumber+".pdf")
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, template string, data map[string]any, filename string) {
	html, err := h.templates.RenderToString(template, view.TemplateData{Data: data})
	if err != nil {
		h.logger.Error("render print template", slog.String("template", template), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
