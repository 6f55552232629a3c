package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/docudist/docudist/internal/adocs"
	"github.com/docudist/docudist/internal/auth"
	"github.com/docudist/docudist/internal/authz"
	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/delivery"
	"github.com/docudist/docudist/internal/invoices"
	"github.com/docudist/docudist/internal/listing"
	"github.com/docudist/docudist/internal/lookups"
	"github.com/docudist/docudist/internal/masterdata/adoctypes"
	"github.com/docudist/docudist/internal/masterdata/departments"
	"github.com/docudist/docudist/internal/masterdata/invoicetypes"
	"github.com/docudist/docudist/internal/masterdata/suppliers"
	"github.com/docudist/docudist/internal/observability"
	"github.com/docudist/docudist/internal/screens"
	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/internal/users"
	"github.com/docudist/docudist/internal/view"
	"github.com/docudist/docudist/jobs"
	"github.com/docudist/docudist/report"
	"github.com/docudist/docudist/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Backend        *backend.Client
	Lookups        *lookups.Service
	Authz          authz.Middleware
	AuthHandler    *auth.Handler
	InvoiceHandler *invoices.Handler
	ReportHandler  *report.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Docudist defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below runs behind a live backend token.
	r.Group(func(r chi.Router) {
		r.Use(params.Authz.RequireAuth(params.SessionManager))

		r.Get("/", homeHandler(params))

		mountScreen(r, "/masterdata/suppliers", params, suppliers.NewResource())
		mountScreen(r, "/masterdata/departments", params, departments.NewResource())
		mountScreen(r, "/masterdata/invoice-types", params, invoicetypes.NewResource())
		mountScreen(r, "/masterdata/adoc-types", params, adoctypes.NewResource())
		mountScreen(r, "/users", params, users.NewResource())
		mountScreen(r, "/adocs", params, adocs.NewResource())
		mountScreen(r, "/delivery/lpd", params, delivery.NewResource(delivery.KindLPD))
		mountScreen(r, "/delivery/spi", params, delivery.NewResource(delivery.KindSPI))

		r.Route("/invoices", params.InvoiceHandler.MountRoutes)

		if params.ReportHandler != nil {
			r.Route("/print", func(r chi.Router) {
				r.Use(params.Authz.RequireAll(shared.PermReportsPrint))
				r.Get("/health", params.ReportHandler.Ping)
				r.Get("/invoices/{id}", params.ReportHandler.InvoicePDF)
				r.Get("/lpd/{id}", params.ReportHandler.SlipPDF(delivery.KindLPD))
				r.Get("/spi/{id}", params.ReportHandler.SlipPDF(delivery.KindSPI))
			})
		}

		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		// Static files are served without session or CSRF handling.
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// mountScreen builds the generic CRUD handler for a resource descriptor and
// mounts it under the given prefix.
func mountScreen[T listing.Record, F any](r chi.Router, prefix string, params RouterParams, res screens.Resource[T, F]) {
	h := screens.NewHandler(params.Logger, params.Backend, params.Templates, params.CSRFManager, params.Authz, params.Lookups, res)
	r.Route(prefix, h.MountRoutes)
}

func homeHandler(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:       "Beranda",
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
			User:        sess.Profile(),
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// staticCacheHandler wraps a file server with a one hour Cache-Control header.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
