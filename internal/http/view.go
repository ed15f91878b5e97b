package http

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/placeholder.svg
var placeholderSVG []byte

var pageTemplate = template.Must(
	template.New("page").
		Funcs(template.FuncMap{
			"price":      FormatPrice,
			"pathEscape": url.PathEscape,
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// pageData is everything the page renders. It is built from a session
// snapshot plus the notifications drained for this render.
type pageData struct {
	service.Snapshot
	Notifications []domain.Notification
}

// renderPage writes the page into a buffer first so that template errors do
// not leave a half-written response.
func renderPage(w io.Writer, data pageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
