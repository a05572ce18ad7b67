// Package view renders the server-side HTML pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page is the data every template receives.
type Page struct {
	Title   string
	Session domain.Session
	// Error is shown in a red banner; Retry, when set, is offered as a link.
	Error  string
	Retry  string
	Notice string
	Data   any
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	t *template.Template
}

// NewRenderer parses all embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("").Funcs(funcMap()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.t.ExecuteTemplate(w, name, data)
}

// Has reports whether a template with the given name is defined.
func (r *Renderer) Has(name string) bool {
	return r.t.Lookup(name) != nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"rupiah": Rupiah,
		"stars":  stars,
		"date":   formatDate,
		"upper":  strings.ToUpper,
		"title":  humanize,
		"seq":    seq,
	}
}

// Rupiah formats an amount as "Rp 1.500.000".
func Rupiah(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// humanize turns "checked_in" into "Checked in".
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func seq(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
