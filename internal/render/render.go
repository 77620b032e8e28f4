// internal/render/render.go
//
// HTML and SVG output for the frame endpoints.
// All documents go through html/template, so wish text, stats lines and any
// query-supplied card text are escaped for the context they land in
// (element text, attribute value, <title>).

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/dailywish/go-server/internal/daily"
	"github.com/dailywish/go-server/internal/frame"
)

//go:embed templates/*
var templatesFS embed.FS

// DefaultCardText is shown on the card when no wish text is given.
const DefaultCardText = "Ready for your daily wish?"

// FallbackCard is served when the card template fails to render.
const FallbackCard = `<svg width="600" height="400" xmlns="http://www.w3.org/2000/svg">
  <rect width="600" height="400" fill="#667eea" />
  <text x="300" y="200" font-family="Arial, sans-serif" font-size="24" fill="white" text-anchor="middle">Daily Wish Frame</text>
</svg>
`

// EntryPage is the first frame a host shows.
type EntryPage struct {
	Title string
	Meta  frame.Meta
}

// WishPage reveals a wish, before or after voting.
type WishPage struct {
	Title    string
	Meta     frame.Meta
	Date     string
	Wish     string
	Stats    daily.Stats
	Thanks   bool
	Notice   string
	SignedIn bool
}

// Card is the image card drawn by /api/og.
type Card struct {
	Text  string
	Stats string
	Voted bool
}

// TextY is the top of the wish text box; it moves down under the badge.
func (c Card) TextY() int {
	if c.Voted {
		return 150
	}
	return 100
}

// Renderer holds the parsed templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Entry renders the entry frame.
func (r *Renderer) Entry(p EntryPage) ([]byte, error) {
	if p.Title == "" {
		p.Title = "Daily Wish"
	}
	return r.exec("entry", p)
}

// Wish renders the reveal / thank-you frame.
func (r *Renderer) Wish(p WishPage) ([]byte, error) {
	if p.Title == "" {
		p.Title = "Daily Wish"
	}
	return r.exec("wish", p)
}

// Card renders the SVG card. Empty text falls back to DefaultCardText.
func (r *Renderer) Card(c Card) ([]byte, error) {
	if strings.TrimSpace(c.Text) == "" {
		c.Text = DefaultCardText
	}
	return r.exec("card", c)
}

func (r *Renderer) exec(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render: %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// ImageURL points at the card endpoint for the given text and stats.
func ImageURL(base, text, stats string, voted bool) string {
	q := url.Values{}
	if text != "" {
		q.Set("text", text)
	}
	if stats != "" {
		q.Set("stats", stats)
	}
	if voted {
		q.Set("voted", "true")
	}
	u := strings.TrimRight(base, "/") + "/api/og"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}
