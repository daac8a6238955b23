package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Load parses the embedded page templates. Pages are addressed by file name,
// e.g. "dashboard.html".
func Load() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"percent": func(progress int) int {
			if progress < 0 {
				return 0
			}
			if progress > 100 {
				return 100
			}
			return progress
		},
	}).ParseFS(templateFS, "templates/*.html")
}
