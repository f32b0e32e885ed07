//go:build production

package vite

import (
	"fmt"
	"html/template"
	"strings"

	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"
)

// In production resources resolve through the build manifest; the dev
// server templates render nothing.
func newTemplate(config *Config) *template.Template {
	debug.Assert(config.Manifest != nil, "Manifest must be set in production")

	manifest := config.Manifest

	t := template.New(config.TemplateName).Funcs(template.FuncMap{
		"viteResource": func(name string) (template.HTML, error) {
			css, js, err := manifest.HTML(name)
			if err != nil {
				return "", fmt.Errorf("inertia: failed to resolve resource %s: %w", name, err)
			}

			var b strings.Builder
			for _, tag := range css {
				b.WriteString(string(tag))
			}

			for _, tag := range js {
				b.WriteString(string(tag))
			}

			//nolint:gosec
			return template.HTML(b.String()), nil
		},
	})

	must.Must(t.New("viteClient").Parse(""))
	must.Must(t.New("viteReactRefresh").Parse(""))

	return t
}
