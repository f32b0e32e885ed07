//go:build !production

package vite

import (
	"fmt"
	"html/template"

	"go.inout.gg/foundations/must"
)

// In development all resources are served by the Vite dev server; the
// manifest is not consulted.
func newTemplate(config *Config) *template.Template {
	addr := config.ViteAddress

	t := template.New(config.TemplateName).Funcs(template.FuncMap{
		"viteResource": func(name string) template.HTML {
			//nolint:gosec
			return template.HTML(fmt.Sprintf(
				`<script type="module" src="%s/%s"></script>`, addr, name))
		},
	})

	must.Must(t.New("viteClient").Parse(fmt.Sprintf(
		`<script type="module" src="%s/@vite/client"></script>`, addr)))
	must.Must(t.New("viteReactRefresh").Parse(fmt.Sprintf(`<script type="module">
import RefreshRuntime from '%s/@react-refresh'
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true
</script>`, addr)))

	return t
}
