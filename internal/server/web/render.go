package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"lighthouse-restaurant/backend/internal/server/interceptors"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ErrorTemplate is rendered when a handler asks for an unknown template.
const ErrorTemplate = "site/error"

// Renderer is a gin HTMLRender holding one template set per page, each cloned from the shared layouts.
type Renderer struct {
	templates map[string]*template.Template
}

var funcs = template.FuncMap{
	// safe marks admin-authored HTML from site settings and pages as trusted.
	"safe":  func(s string) template.HTML { return template.HTML(s) },
	"money": FormatPrice,
	"date":  func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
}

// NewRenderer parses every page under templates/pages/<area>/<name>.tmpl. Pages are addressed as
// "<area>/<name>"; admin pages use the admin layout and all others the site layout.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layouts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	pages, err := fs.Glob(templateFS, "templates/pages/*/*.tmpl")
	if err != nil {
		return nil, err
	}
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/pages/"), ".tmpl")
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	if _, ok := r.templates[ErrorTemplate]; !ok {
		return nil, fmt.Errorf("missing %s template", ErrorTemplate)
	}
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		t = r.templates[ErrorTemplate]
		name = ErrorTemplate
	}
	layout := "site"
	if strings.HasPrefix(name, "admin/") {
		layout = "admin"
	}
	return render.HTML{Template: t, Name: layout, Data: data}
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// StaticFS returns the embedded static assets (CSS, images) rooted at static/.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// View builds the template data for a page: title, pending flashes and the logged-in user, merged with data.
func View(c *gin.Context, title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Flashes"] = ConsumeFlashes(c)
	data["User"] = interceptors.GetSnapshot(c.Request.Context())
	data["Year"] = time.Now().Year()
	return data
}

// FormatPrice renders an amount in cents as "$12.50".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
