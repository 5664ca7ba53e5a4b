package echoapi

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

const (
	webTemplatesDir = "templates/web"
	layoutTemplate  = "layout.gohtml"
)

// page is the data passed to every web template.
type page struct {
	Title  string
	User   *Session
	Flash  string
	Errors map[string]string
	Form   interface{}
	Data   interface{}
}

// templateRenderer renders pages inside the shared layout.
type templateRenderer struct {
	templates map[string]*template.Template // {name: layout + page}
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer(fsys fs.FS, conf *core.Config) (*templateRenderer, error) {
	funcs := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.In(conf.Location).Format("2006-01-02 15:04")
		},
	}

	fps, err := fs.Glob(fsys, path.Join(webTemplatesDir, "*.gohtml"))
	if err != nil {
		return nil, err
	}

	r := &templateRenderer{templates: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if fname == layoutTemplate {
			continue
		}
		tmpl, err := template.New(layoutTemplate).Funcs(funcs).ParseFS(fsys, path.Join(webTemplatesDir, layoutTemplate), fp)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", fp)
		}
		if conf.Debug || conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.templates[strings.TrimSuffix(fname, path.Ext(fname))] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// render renders the named page with the current session and pending flash message.
func render(ctx echo.Context, code int, name string, p page) error {
	p.User = getSession(ctx)
	if p.Flash == "" {
		p.Flash = popFlash(ctx)
	}
	return ctx.Render(code, name, p)
}
