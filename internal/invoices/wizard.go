package invoices

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/docudist/docudist/internal/adocs"
	"github.com/docudist/docudist/internal/authz"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/forms"
	"github.com/docudist/docudist/internal/listing"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
)

// draftKey names the session entry holding the wizard draft.
const draftKey = "wizard:invoice"

// Draft is the in-progress wizard state, held in the session between steps.
type Draft struct {
	Header  Form     `json:"header"`
	AdocIDs []string `json:"adoc_ids"`
}

// Handler serves the invoice screen. The register, edit dialog and delete
// flow come from the generic screen handler; the create wizard is mounted
// over its /new route.
type Handler struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	authz     authz.Middleware
	lookups   *lookups.Service
	validator *forms.Validator
	res       screens.Resource[Invoice, Form]
	screen    *screens.Handler[Invoice, Form]
}

// NewHandler constructs the invoice handler.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, authzMw authz.Middleware, lookupSvc *lookups.Service) *Handler {
	res := NewResource()
	return &Handler{
		logger:    logger,
		client:    client,
		templates: templates,
		csrf:      csrf,
		authz:     authzMw,
		lookups:   lookupSvc,
		validator: forms.NewValidator(),
		res:       res,
		screen:    screens.NewHandler(logger, client, templates, csrf, authzMw, lookupSvc, res),
	}
}

// MountRoutes registers the invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermInvoicesView, shared.PermInvoicesEdit))
		r.Get("/", h.screen.List)
		r.Get("/{id}", h.Detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(shared.PermInvoicesEdit))
		r.Get("/new", h.HeaderStep)
		r.Post("/new", h.SubmitHeader)
		r.Get("/new/documents", h.DocumentsStep)
		r.Post("/new/documents", h.SubmitDocuments)
		r.Get("/new/review", h.ReviewStep)
		r.Post("/new/review", h.Submit)
		r.Post("/new/cancel", h.Cancel)
		r.Get("/{id}/edit", h.screen.EditForm)
		r.Post("/{id}/edit", h.screen.Update)
		r.Get("/{id}/delete", h.screen.ConfirmDelete)
		r.Post("/{id}/delete", h.screen.Delete)
	})
}

// Detail shows one invoice with its attached documents.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	token := ""
	if sess != nil {
		token = sess.Token()
	}
	invoice, err := backend.Fetch[Invoice](r.Context(), h.client, token, "/invoice/"+strconv.FormatInt(id, 10))
	if err != nil {
		h.logger.Warn("fetch invoice", slog.Int64("id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	canPrint := sess != nil && sess.Profile().HasPermission(shared.PermReportsPrint)
	h.render(w, r, "pages/invoice_detail.html", map[string]any{
		"Invoice":  invoice,
		"Amount":   view.FormatAmount(invoice.Currency, invoice.Amount),
		"CanPrint": canPrint,
	}, http.StatusOK)
}

// HeaderStep renders the first wizard step, prefilled from any saved draft.
func (h *Handler) HeaderStep(w http.ResponseWriter, r *http.Request) {
	draft := h.loadDraft(r)
	h.renderHeader(w, r, draft.Header, nil, http.StatusOK)
}

// SubmitHeader validates the header and advances to the documents step.
// Validation failures stay on the step with no network call made.
func (h *Handler) SubmitHeader(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := parseForm(r.PostForm)
	if fieldErrors := h.validator.Check(form); len(fieldErrors) > 0 {
		h.renderHeader(w, r, form, fieldErrors, http.StatusBadRequest)
		return
	}

	draft := h.loadDraft(r)
	draft.Header = form
	h.saveDraft(r, draft)
	http.Redirect(w, r, "/invoices/new/documents", http.StatusSeeOther)
}

// DocumentsStep lets the user attach unassigned additional documents. The
// attachable list and the header's lookup labels are independent fetches
// fanned out concurrently; neither depends on the other's ordering.
func (h *Handler) DocumentsStep(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	draft := h.loadDraft(r)
	if draft.Header.InvoiceNumber == "" {
		http.Redirect(w, r, "/invoices/new", http.StatusSeeOther)
		return
	}
	token := sessionToken(sess)

	var attachable []adocs.Adoc
	var supplierLabel string
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		attachable, err = backend.All[adocs.Adoc](ctx, h.client, token, "/additional-document/unattached")
		return err
	})
	g.Go(func() error {
		supplierLabel = h.lookupLabel(ctx, token, "supplier", draft.Header.SupplierID)
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load attachable documents", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
		http.Redirect(w, r, "/invoices/new", http.StatusSeeOther)
		return
	}

	selected := make(map[string]bool, len(draft.AdocIDs))
	for _, id := range draft.AdocIDs {
		selected[id] = true
	}
	rows := make([]map[string]any, len(attachable))
	for i, doc := range attachable {
		docID := strconv.FormatInt(doc.ID, 10)
		rows[i] = map[string]any{
			"ID":             docID,
			"DocumentNumber": doc.DocumentNumber,
			"DocumentDate":   doc.DocumentDate,
			"TypeName":       doc.TypeName,
			"Selected":       selected[docID],
		}
	}
	h.render(w, r, "pages/invoice_documents.html", map[string]any{
		"InvoiceNumber": draft.Header.InvoiceNumber,
		"Supplier":      supplierLabel,
		"Documents":     rows,
	}, http.StatusOK)
}

// SubmitDocuments stores the selection and advances to review.
func (h *Handler) SubmitDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	draft := h.loadDraft(r)
	if draft.Header.InvoiceNumber == "" {
		http.Redirect(w, r, "/invoices/new", http.StatusSeeOther)
		return
	}
	draft.AdocIDs = r.PostForm["adoc_ids"]
	h.saveDraft(r, draft)
	http.Redirect(w, r, "/invoices/new/review", http.StatusSeeOther)
}

// ReviewStep shows the complete draft before submission.
func (h *Handler) ReviewStep(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	draft := h.loadDraft(r)
	if draft.Header.InvoiceNumber == "" {
		http.Redirect(w, r, "/invoices/new", http.StatusSeeOther)
		return
	}
	token := sessionToken(sess)
	amount, _ := strconv.ParseFloat(draft.Header.Amount, 64)
	h.render(w, r, "pages/invoice_review.html", map[string]any{
		"Header":   draft.Header,
		"Supplier": h.lookupLabel(r.Context(), token, "supplier", draft.Header.SupplierID),
		"TypeName": h.lookupLabel(r.Context(), token, "invoice-type", draft.Header.TypeID),
		"Amount":   view.FormatAmount(draft.Header.Currency, amount),
		"AdocIDs":  draft.AdocIDs,
	}, http.StatusOK)
}

// Submit posts the assembled draft. On success the new invoice is prepended
// to the held register snapshot without a refetch and the draft is cleared;
// on failure the review stays up with the draft intact.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	draft := h.loadDraft(r)
	if draft.Header.InvoiceNumber == "" {
		http.Redirect(w, r, "/invoices/new", http.StatusSeeOther)
		return
	}

	record, fieldErrors, err := forms.Submit(r.Context(), h.validator, draft.Header, func(ctx context.Context) (Invoice, error) {
		return backend.Create[Invoice](ctx, h.client, sessionToken(sess), "/invoice", payload(draft.Header, draft.AdocIDs))
	})
	if len(fieldErrors) > 0 {
		// A draft can only get here through the validated header step, so a
		// field error means the stored draft went stale.
		h.renderHeader(w, r, draft.Header, fieldErrors, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("submit invoice", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
		http.Redirect(w, r, "/invoices/new/review", http.StatusSeeOther)
		return
	}

	if sess != nil {
		ctrl := listing.NewController(func(ctx context.Context, criteria backend.Criteria, page, perPage int) (backend.Page[Invoice], error) {
			return backend.Search[Invoice](ctx, h.client, sess.Token(), "/invoice/search", criteria, page, perPage)
		})
		listing.Load(sess, h.res.StateKey(), ctrl)
		ctrl.ApplyCreate(record)
		if err := listing.Save(sess, h.res.StateKey(), ctrl); err != nil {
			h.logger.Warn("save list state", slog.Any("error", err))
		}
		sess.Delete(draftKey)
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Invoice " + record.InvoiceNumber + " created"})
	}
	http.Redirect(w, r, "/invoices", http.StatusSeeOther)
}

// Cancel discards the draft.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.Delete(draftKey)
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Draft discarded"})
	}
	http.Redirect(w, r, "/invoices", http.StatusSeeOther)
}

func (h *Handler) renderHeader(w http.ResponseWriter, r *http.Request, form Form, fieldErrors map[string]string, status int) {
	sess := shared.SessionFromContext(r.Context())
	opts := make(map[string][]lookups.Option, len(h.res.LookupKeys))
	for _, key := range h.res.LookupKeys {
		options, err := h.lookups.Options(r.Context(), sessionToken(sess), key)
		if err != nil {
			h.logger.Warn("resolve lookup", slog.String("key", key), slog.Any("error", err))
			continue
		}
		opts[key] = options
	}
	h.render(w, r, "pages/invoice_header.html", map[string]any{
		"Fields": formFields(form, fieldErrors, opts),
	}, status)
}

func (h *Handler) lookupLabel(ctx context.Context, token, key, value string) string {
	options, err := h.lookups.Options(ctx, token, key)
	if err != nil {
		return value
	}
	for _, opt := range options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func (h *Handler) loadDraft(r *http.Request) Draft {
	var draft Draft
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return draft
	}
	raw := sess.Get(draftKey)
	if raw == "" {
		return draft
	}
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		sess.Delete(draftKey)
		return Draft{}
	}
	return draft
}

func (h *Handler) saveDraft(r *http.Request, draft Draft) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return
	}
	sess.Set(draftKey, string(data))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	var user *shared.Profile
	if sess != nil {
		flash = sess.PopFlash()
		user = sess.Profile()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, view.TemplateData{
		Title:       "Invoice",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        user,
		Data:        data,
	}); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
	}
}

func sessionToken(sess *shared.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Token()
}
