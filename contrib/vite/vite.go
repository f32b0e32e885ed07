// Package vite provides a minimal integration for Vite: dev-server
// support (Vite client and React Refresh) in development, manifest-based
// asset resolution and version hashing in production builds.
package vite

import (
	"cmp"
	"fmt"
	"html/template"
	"io/fs"

	"go.inout.gg/foundations/must"
)

// DefaultViteAddress is the address of the Vite dev server.
const DefaultViteAddress = "http://localhost:5173"

// Config configures the Vite-aware template.
type Config struct {
	// Manifest is the parsed production build manifest. Required when
	// building with -tags=production.
	Manifest *Manifest

	// TemplateName names the resulting template. Defaults to "inertia".
	TemplateName string

	// ViteAddress is the dev server address. Defaults to
	// DefaultViteAddress.
	ViteAddress string
}

func (c *Config) defaults() {
	c.ViteAddress = cmp.Or(c.ViteAddress, DefaultViteAddress)
	c.TemplateName = cmp.Or(c.TemplateName, "inertia")
}

// NewTemplate creates a template from a string with built-in Vite
// support:
//
//   - {{template "viteClient"}} injects the Vite dev client
//   - {{template "viteReactRefresh"}} injects the React Refresh preamble
//   - {{viteResource "path/to/resource.js"}} includes a Vite resource
//
// When building with -tags=production, "viteClient" and
// "viteReactRefresh" render nothing and viteResource resolves through the
// manifest.
func NewTemplate(content string, config *Config) (*template.Template, error) {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	t := newTemplate(config)
	if _, err := t.Parse(content); err != nil {
		return nil, fmt.Errorf("inertia: failed to parse template: %w", err)
	}

	return t, nil
}

// Must is like NewTemplate but panics on error.
func Must(content string, config *Config) *template.Template {
	return must.Must(NewTemplate(content, config))
}

// FromFS creates a template from a file system. See NewTemplate.
func FromFS(fsys fs.FS, path string, config *Config) (*template.Template, error) {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	t := newTemplate(config)
	if _, err := t.ParseFS(fsys, path); err != nil {
		return nil, fmt.Errorf("inertia: failed to parse template: %w", err)
	}

	return t, nil
}
