package console

import (
	"embed"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Template names rendered by the controller.
const (
	ListTemplate     = "list.html"
	OverviewTemplate = "overview.html"
	VerifyTemplate   = "verify.html"
)

// NewTemplateRenderer builds a go-template renderer over the embedded pages.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
