package frontend

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/lensgallery/internal/core"
)

const (
	viewsPattern     = "views/*.html"
	cardTemplateName = "cards.html"
)

//go:embed views/*.html
var templateFS embed.FS

//go:embed cards/cards.html
var cardFS embed.FS

// Template adapts html/template to echo's Renderer.
type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func newPageTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, viewsPattern))
}

// NewCardTemplate returns the gallery card markup with htmx attributes on
// the edit and delete controls.
func NewCardTemplate() *template.Template {
	return template.Must(template.New(cardTemplateName).Funcs(template.FuncMap{
		"deleteConfirmMessage": func() string { return core.DeleteConfirmMessage },
	}).ParseFS(cardFS, "cards/"+cardTemplateName))
}
