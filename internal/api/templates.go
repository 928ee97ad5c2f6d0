package api

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"min": func(a, b int) int {
			if a < b {
				return a
			}
			return b
		},
		// plural picks the singular or plural form for n.
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}

	t := template.New("base").Funcs(funcs)

	patterns := []string{
		"templates/layouts/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	}
	for _, p := range patterns {
		if matches, _ := fs.Glob(templatesFS, p); len(matches) == 0 {
			continue
		}
		if _, err := t.ParseFS(templatesFS, p); err != nil {
			return nil, err
		}
	}

	return t, nil
}
