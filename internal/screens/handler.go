package screens

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/docudist/docudist/internal/authz"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/forms"
	"github.com/docudist/docudist/internal/listing"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/view"
)

// Handler serves one resource screen.
type Handler[T listing.Record, F any] struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	authz     authz.Middleware
	lookups   *lookups.Service
	validator *forms.Validator
	res       Resource[T, F]
}

// NewHandler constructs the screen handler for a resource.
func NewHandler[T listing.Record, F any](logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, authzMw authz.Middleware, lookupSvc *lookups.Service, res Resource[T, F]) *Handler[T, F] {
	return &Handler[T, F]{
		logger:    logger,
		client:    client,
		templates: templates,
		csrf:      csrf,
		authz:     authzMw,
		lookups:   lookupSvc,
		validator: forms.NewValidator(),
		res:       res,
	}
}

// MountRoutes registers the screen routes.
func (h *Handler[T, F]) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(h.res.ViewPermission, h.res.EditPermission))
		r.Get("/", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(h.res.EditPermission))
		r.Get("/new", h.NewForm)
		r.Post("/", h.Create)
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Update)
		r.Get("/{id}/delete", h.ConfirmDelete)
		r.Post("/{id}/delete", h.Delete)
	})
}

// controller restores the screen's list state from the session.
func (h *Handler[T, F]) controller(sess *shared.Session) (*listing.Controller[T], bool) {
	token := ""
	if sess != nil {
		token = sess.Token()
	}
	ctrl := listing.NewController(func(ctx context.Context, criteria backend.Criteria, page, perPage int) (backend.Page[T], error) {
		return backend.Search[T](ctx, h.client, token, h.res.Endpoint+"/search", criteria, page, perPage)
	})
	restored := false
	if sess != nil {
		restored = listing.Load(sess, h.res.StateKey(), ctrl)
	}
	return ctrl, restored
}

// List renders the table. Filter submissions replace the criteria, page and
// per_page links move through the held result set, and a bare visit after a
// dialog merge serves the session snapshot without refetching.
func (h *Handler[T, F]) List(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	ctrl, restored := h.controller(sess)

	query := r.URL.Query()
	var err error
	switch {
	case h.hasSearchParams(query):
		criteria := backend.Criteria{}
		for _, field := range h.res.SearchFields {
			criteria[field.Name] = query.Get(field.Name)
		}
		err = ctrl.SetCriteria(r.Context(), criteria)
	case query.Has("per_page"):
		size, _ := strconv.Atoi(query.Get("per_page"))
		err = ctrl.SetPageSize(r.Context(), size)
	case query.Has("page"):
		page, _ := strconv.Atoi(query.Get("page"))
		err = ctrl.GoToPage(r.Context(), page)
	case !restored:
		err = ctrl.Fetch(r.Context())
	}
	if err != nil {
		h.logger.Error("list fetch failed", slog.String("resource", h.res.Name), slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
	}
	if sess != nil {
		if err := listing.Save(sess, h.res.StateKey(), ctrl); err != nil {
			h.logger.Warn("save list state", slog.Any("error", err))
		}
	}

	h.render(w, r, "pages/resource_list.html", h.listData(r.Context(), sess, ctrl), http.StatusOK)
}

func (h *Handler[T, F]) hasSearchParams(query url.Values) bool {
	for _, field := range h.res.SearchFields {
		if query.Has(field.Name) {
			return true
		}
	}
	return false
}

func (h *Handler[T, F]) listData(ctx context.Context, sess *shared.Session, ctrl *listing.Controller[T]) map[string]any {
	criteria := ctrl.Criteria()
	search := make([]Field, len(h.res.SearchFields))
	for i, field := range h.res.SearchFields {
		field.Value = criteria[field.Name]
		if field.Type == "select" && len(field.Options) == 0 {
			field.Options = h.searchOptions(ctx, sess, field.Name)
		}
		search[i] = field
	}

	headers := make([]string, len(h.res.Columns))
	for i, col := range h.res.Columns {
		headers[i] = col.Header
	}
	items := ctrl.Items()
	rows := make([]Row, len(items))
	for i, item := range items {
		cells := make([]Cell, len(h.res.Columns))
		for j, col := range h.res.Columns {
			cells[j] = col.Cell(item)
		}
		rows[i] = Row{ID: item.RecordID(), Cells: cells}
		if h.res.RowLinks != nil {
			rows[i].Links = h.res.RowLinks(item.RecordID())
		}
	}

	canEdit := false
	if sess != nil {
		canEdit = sess.Profile().HasPermission(h.res.EditPermission)
	}
	from, to := ctrl.Range()
	return map[string]any{
		"Title":     h.res.Title,
		"BasePath":  h.res.BasePath,
		"Search":    search,
		"Headers":   headers,
		"Rows":      rows,
		"Total":     ctrl.TotalCount(),
		"PageIndex": ctrl.PageIndex(),
		"PageSize":  ctrl.PageSize(),
		"LastPage":  ctrl.LastPage(),
		"From":      from,
		"To":        to,
		"HasPrev":   ctrl.HasPrev(),
		"HasNext":   ctrl.HasNext(),
		"CanEdit":   canEdit,
		"PageSizes": []int{10, 25, 50, 100},
	}
}

// searchOptions resolves a select filter against the screen's lookups.
func (h *Handler[T, F]) searchOptions(ctx context.Context, sess *shared.Session, key string) []lookups.Option {
	if h.lookups == nil || sess == nil {
		return nil
	}
	options, err := h.lookups.Options(ctx, sess.Token(), key)
	if err != nil {
		h.logger.Warn("resolve search lookup", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	return options
}

// NewForm renders the create dialog with default values.
func (h *Handler[T, F]) NewForm(w http.ResponseWriter, r *http.Request) {
	var form F
	h.renderForm(w, r, "create", h.res.BasePath, form, nil, "", http.StatusOK)
}

// Create validates and posts the new record, then prepends it to the held
// list without refetching.
func (h *Handler[T, F]) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := h.res.ParseForm(r.PostForm)

	record, fieldErrors, err := forms.Submit(r.Context(), h.validator, form, func(ctx context.Context) (T, error) {
		return backend.Create[T](ctx, h.client, sessionToken(sess), h.res.Endpoint, h.res.Payload(form))
	})
	if len(fieldErrors) > 0 {
		h.renderForm(w, r, "create", h.res.BasePath, form, fieldErrors, "", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("create failed", slog.String("resource", h.res.Name), slog.Any("error", err))
		h.renderForm(w, r, "create", h.res.BasePath, form, nil, backend.UserMessage(err), http.StatusBadGateway)
		return
	}

	if sess != nil {
		ctrl, _ := h.controller(sess)
		ctrl.ApplyCreate(record)
		if err := listing.Save(sess, h.res.StateKey(), ctrl); err != nil {
			h.logger.Warn("save list state", slog.Any("error", err))
		}
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: h.res.Title + " created"})
	}
	http.Redirect(w, r, h.res.BasePath, http.StatusSeeOther)
}

// EditForm renders the dialog pre-filled from the held page, falling back to
// a single-record fetch when the row is not on it.
func (h *Handler[T, F]) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	record, ok := h.findRecord(r, sess, id)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	form := h.res.FromRecord(record)
	h.renderForm(w, r, "edit", h.editPath(id), form, nil, "", http.StatusOK)
}

// Update validates and puts the full payload, then replaces the row in
// place; the total count is untouched.
func (h *Handler[T, F]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := h.res.ParseForm(r.PostForm)

	record, fieldErrors, err := forms.Submit(r.Context(), h.validator, form, func(ctx context.Context) (T, error) {
		return backend.Update[T](ctx, h.client, sessionToken(sess), h.recordPath(id), h.res.Payload(form))
	})
	if len(fieldErrors) > 0 {
		h.renderForm(w, r, "edit", h.editPath(id), form, fieldErrors, "", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("update failed", slog.String("resource", h.res.Name), slog.Int64("id", id), slog.Any("error", err))
		h.renderForm(w, r, "edit", h.editPath(id), form, nil, backend.UserMessage(err), http.StatusBadGateway)
		return
	}

	if sess != nil {
		ctrl, _ := h.controller(sess)
		ctrl.ApplyUpdate(record)
		if err := listing.Save(sess, h.res.StateKey(), ctrl); err != nil {
			h.logger.Warn("save list state", slog.Any("error", err))
		}
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: h.res.Title + " updated"})
	}
	http.Redirect(w, r, h.res.BasePath, http.StatusSeeOther)
}

// ConfirmDelete shows the blocking confirmation prompt.
func (h *Handler[T, F]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	h.render(w, r, "pages/resource_confirm.html", map[string]any{
		"Title":     h.res.Title,
		"Action":    h.res.BasePath + "/" + strconv.FormatInt(id, 10) + "/delete",
		"CancelURL": h.res.BasePath,
	}, http.StatusOK)
}

// Delete removes the record and refetches the page so the backend's
// pagination math is recomputed, unlike the local merge on create/edit.
func (h *Handler[T, F]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	if err := backend.Delete(r.Context(), h.client, sessionToken(sess), h.recordPath(id)); err != nil {
		h.logger.Error("delete failed", slog.String("resource", h.res.Name), slog.Int64("id", id), slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
		http.Redirect(w, r, h.res.BasePath, http.StatusSeeOther)
		return
	}

	if sess != nil {
		ctrl, _ := h.controller(sess)
		if err := ctrl.Fetch(r.Context()); err != nil {
			h.logger.Warn("refetch after delete", slog.Any("error", err))
		}
		if err := listing.Save(sess, h.res.StateKey(), ctrl); err != nil {
			h.logger.Warn("save list state", slog.Any("error", err))
		}
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: h.res.Title + " deleted"})
	}
	http.Redirect(w, r, h.res.BasePath, http.StatusSeeOther)
}

func (h *Handler[T, F]) findRecord(r *http.Request, sess *shared.Session, id int64) (T, bool) {
	var zero T
	if sess != nil {
		ctrl, restored := h.controller(sess)
		if restored {
			for _, item := range ctrl.Items() {
				if item.RecordID() == id {
					return item, true
				}
			}
		}
	}
	record, err := backend.Fetch[T](r.Context(), h.client, sessionToken(sess), h.recordPath(id))
	if err != nil {
		h.logger.Warn("fetch record", slog.String("resource", h.res.Name), slog.Int64("id", id), slog.Any("error", err))
		return zero, false
	}
	return record, true
}

func (h *Handler[T, F]) renderForm(w http.ResponseWriter, r *http.Request, mode, action string, form F, fieldErrors map[string]string, general string, status int) {
	sess := shared.SessionFromContext(r.Context())
	opts := h.resolveLookups(r, sess)
	fields := h.res.FormFields(form, fieldErrors, opts)
	h.render(w, r, "pages/resource_form.html", map[string]any{
		"Title":    h.res.Title,
		"BasePath": h.res.BasePath,
		"Mode":     mode,
		"Action":   action,
		"Fields":   fields,
		"General":  general,
	}, status)
}

func (h *Handler[T, F]) resolveLookups(r *http.Request, sess *shared.Session) map[string][]lookups.Option {
	opts := make(map[string][]lookups.Option, len(h.res.LookupKeys))
	if h.lookups == nil {
		return opts
	}
	for _, key := range h.res.LookupKeys {
		options, err := h.lookups.Options(r.Context(), sessionToken(sess), key)
		if err != nil {
			h.logger.Warn("resolve lookup", slog.String("key", key), slog.Any("error", err))
			continue
		}
		opts[key] = options
	}
	return opts
}

func (h *Handler[T, F]) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	var user *shared.Profile
	if sess != nil {
		flash = sess.PopFlash()
		user = sess.Profile()
	}
	viewData := view.TemplateData{
		Title:       h.res.Title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        user,
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
	}
}

func (h *Handler[T, F]) recordPath(id int64) string {
	return fmt.Sprintf("%s/%d", h.res.Endpoint, id)
}

func (h *Handler[T, F]) editPath(id int64) string {
	return fmt.Sprintf("%s/%d/edit", h.res.BasePath, id)
}

func sessionToken(sess *shared.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Token()
}
