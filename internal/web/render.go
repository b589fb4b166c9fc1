// Package web holds the page templates and static assets and renders them.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ErrUnknownPage is returned when a page has no template.
var ErrUnknownPage = errors.New("unknown page")

// Renderer executes a page template inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses base.tmpl together with every page template. Each page
// gets its own set so that pages can all define "content".
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base.tmpl").Funcs(FuncMap()).ParseFS(templateFS, "templates/base.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".tmpl")
		if name == "base" {
			continue
		}
		set, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := set.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		r.pages[name] = set
	}
	return r, nil
}

// Render writes page to w. The page is executed into a buffer first so a
// template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	set, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, "base.tmpl", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Pages lists the parsed page names.
func (r *Renderer) Pages() []string {
	out := make([]string, 0, len(r.pages))
	for name := range r.pages {
		out = append(out, name)
	}
	return out
}

// StaticFS returns the embedded assets, overlaid by dir when it exists on
// disk so assets can be edited without a rebuild. A file missing from dir
// is served from the embedded copy.
func StaticFS(dir string) fs.FS {
	embedded, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return overlayFS{upper: os.DirFS(dir), lower: embedded}
		}
	}
	return embedded
}

type overlayFS struct {
	upper, lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	return o.lower.Open(name)
}

// StaticHandler serves fsys with a short cache lifetime.
func StaticHandler(fsys fs.FS) http.Handler {
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// FuncMap is the set of helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"mul": func(a, b int) int {
			return a * b
		},
		"div": func(a, b int) int {
			if b == 0 {
				return 0
			}
			return a / b
		},
		"percent": func(part, whole int) int {
			if whole <= 0 {
				return 0
			}
			return part * 100 / whole
		},
		"list": func(items ...string) []string {
			return items
		},
		"until": func(count int) []int {
			result := make([]int, count)
			for i := 0; i < count; i++ {
				result[i] = i
			}
			return result
		},
		"contains": func(slice []string, val string) bool {
			for _, item := range slice {
				if item == val {
					return true
				}
			}
			return false
		},
		"letter": func(i int) string {
			if i < 0 || i >= 26 {
				return ""
			}
			return string(rune('A' + i))
		},
		"short": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			return s[:n] + "…"
		},
	}
}
