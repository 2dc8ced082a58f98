package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "templates/base.html"

// views renders the embedded pages, each inside the shared layout. It
// satisfies fiber.Views.
type views struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"num": func(m time.Month) int { return int(m) },
}

func newViews() (*views, error) {
	v := &views{}
	if err := v.Load(); err != nil {
		return nil, err
	}
	return v, nil
}

// Load parses every page against the layout.
func (v *views) Load() error {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("error listing templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		t, err := template.New(path.Base(layoutFile)).Funcs(templateFuncs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return fmt.Errorf("error parsing template %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	v.pages = pages
	return nil
}

// Render writes page name with data. Layouts are fixed, so the layout
// arguments are ignored.
func (v *views) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}
