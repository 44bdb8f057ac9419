package echoweb

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core/user"
)

const (
	templatesDir   = "templates"
	layoutTemplate = "layout"
	templateExt    = ".gohtml"
)

var templateFuncs = template.FuncMap{
	"rating": func(r float64) string { return fmt.Sprintf("%.2f", r) },
	"date":   func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
	"stars": func(n int) string {
		if n < 0 {
			n = 0
		} else if n > 5 {
			n = 5
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
}

// Renderer renders pages, each one parsed together with the layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(fsys fs.FS) (*Renderer, error) {
	files, err := fs.Glob(fsys, path.Join(templatesDir, "*"+templateExt))
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	layout := path.Join(templatesDir, layoutTemplate+templateExt)
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layout {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), templateExt)
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, layout, file)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing template %q", name)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, layoutTemplate, data)
}

// pageData is what every template receives.
type pageData struct {
	CurrentUser *user.User
	Flashes     []flash
	Data        interface{}
}

func page(ctx echo.Context, data interface{}) pageData {
	p := pageData{Data: data}
	if usr, ok := getContextUser(ctx); ok {
		p.CurrentUser = &usr
	}
	return p
}

// render renders the named page with the pending flash messages.
func (s *Server) render(ctx echo.Context, code int, name string, data interface{}) error {
	p := page(ctx, data)
	p.Flashes = s.popFlashes(ctx)
	return ctx.Render(code, name, p)
}
