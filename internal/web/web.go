// Package web holds the HTML templates and static assets of the prediction form.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticDir is the on-disk location of the assets, used by development builds
const StaticDir = "./internal/web/static"

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at the static directory
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
