package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/docudist/docudist/internal/shared"
	"github.com/docudist/docudist/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *shared.Profile
	Data        any
}

// amountPrinter formats monetary values with Indonesian digit grouping.
var amountPrinter = message.NewPrinter(language.Indonesian)

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatAmount": FormatAmount,
		"statusBadge":  StatusBadge,
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"seq": func(from, to int) []int {
			if to < from {
				return nil
			}
			out := make([]int, 0, to-from+1)
			for i := from; i <= to; i++ {
				out = append(out, i)
			}
			return out
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// RenderToString executes a template into a string, used for PDF export.
func (e *Engine) RenderToString(name string, data TemplateData) (string, error) {
	if e == nil {
		return "", fmt.Errorf("template engine not initialised")
	}
	var sb strings.Builder
	if err := e.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatAmount renders a monetary value with Indonesian digit grouping.
func FormatAmount(currency string, amount float64) string {
	if currency == "" {
		currency = "IDR"
	}
	return amountPrinter.Sprintf("%s %.2f", currency, amount)
}

// StatusBadge maps an opaque backend status string to a badge CSS class.
// Statuses are display-only; transition logic lives in the backend.
func StatusBadge(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "DRAFT", "OPEN":
		return "badge badge-draft"
	case "SENT", "DISPATCHED":
		return "badge badge-sent"
	case "RECEIVED", "CLOSED", "DONE":
		return "badge badge-received"
	case "RETURNED", "CANCELLED", "REJECTED":
		return "badge badge-returned"
	default:
		return "badge"
	}
}
