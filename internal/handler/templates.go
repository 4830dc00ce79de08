package handler

import (
	"html/template"
	"time"

	"github.com/DukeRupert/gascert/internal/domain"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},

		// Dates are shown UK-style throughout.
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
		"formatDateISO": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},

		// formatPrice renders a quoted price as "£75.00", or a placeholder
		// when no quote has been applied yet.
		"formatPrice": func(p *domain.Price) string {
			if p == nil {
				return "Not quoted"
			}
			return p.Display()
		},

		"nl2br": func(s string) template.HTML {
			escaped := template.HTMLEscapeString(s)
			return template.HTML(replaceNewlines(escaped))
		},
	}
}

func replaceNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, "<br>"...)
			continue
		}
		if s[i] == '\r' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
