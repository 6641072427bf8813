// Package view renders the HTML pages. Templates only ever see the view
// models defined here, never database rows.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "base.html"

var funcs = template.FuncMap{
	"ago": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

// Renderer implements gin's render.HTMLRender. Every page is parsed together
// with the shared layout into its own template set so pages can each define
// their own content block.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, e := range entries {
		name := strings.TrimPrefix(e, "templates/")
		if name == layout {
			continue
		}

		t, err := template.New(layout).Funcs(funcs).ParseFS(templateFS, "templates/"+layout, e)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s, %w", name, err)
		}

		r.pages[name] = t
	}

	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	return render.HTML{
		Template: r.pages[name],
		Name:     layout,
		Data:     data,
	}
}
