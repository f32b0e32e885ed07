package vite

import (
	"fmt"
	"html/template"
	"io/fs"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/go-json-experiment/json"
)

type rawManifest = map[string]*ManifestEntry

// Manifest is a parsed Vite build manifest (manifest.json), mapping entry
// points to their compiled assets and dependencies.
type Manifest struct {
	raw rawManifest
	sum uint64
}

// ManifestEntry describes a single asset in the Vite build manifest.
type ManifestEntry struct {
	Source         string   `json:"src"`
	File           string   `json:"file"`
	Name           string   `json:"name"`
	CSS            []string `json:"css"`
	Assets         []string `json:"assets"`
	Imports        []string `json:"imports"`
	DynamicImports []string `json:"dynamicImports"`
	IsEntry        bool     `json:"isEntry"`
	IsDynamicEntry bool     `json:"isDynamicEntry"`
}

// Version returns the asset version token for this manifest: a hash of
// the manifest bytes, stable until the next build changes them. Use it as
// inertia.Config.Version so clients reload when assets change.
func (m *Manifest) Version() string {
	return strconv.FormatUint(m.sum, 16)
}

// HTML resolves a manifest entry into its CSS and JS tags, recursively
// walking the import graph: the entry's compiled file becomes a module
// script, imported chunks become modulepreload hints and every reachable
// CSS file a stylesheet link. Static assets (images, fonts) are referenced
// by the compiled code itself and produce no tags.
func (m *Manifest) HTML(name string) ([]template.HTML, []template.HTML, error) {
	entry, ok := m.raw[name]
	if !ok {
		return nil, nil, fmt.Errorf("inertia: entry %s not found in manifest", name)
	}

	var (
		css []template.HTML
		js  []template.HTML
	)

	seen := make(map[string]bool)

	var walk func(e *ManifestEntry, root bool)

	walk = func(e *ManifestEntry, root bool) {
		if seen[e.File] {
			return
		}

		seen[e.File] = true

		for _, link := range e.CSS {
			//nolint:gosec
			css = append(css, template.HTML(fmt.Sprintf(
				`<link rel="stylesheet" href="%s" />`, link)))
		}

		if root {
			//nolint:gosec
			js = append(js, template.HTML(fmt.Sprintf(
				`<script type="module" src="%s"></script>`, e.File)))
		} else {
			//nolint:gosec
			js = append(js, template.HTML(fmt.Sprintf(
				`<link rel="modulepreload" href="%s" />`, e.File)))
		}

		for _, i := range e.Imports {
			if next, ok := m.raw[i]; ok {
				walk(next, false)
			}
		}
	}

	walk(entry, true)

	return css, js, nil
}

// ParseManifest parses a Vite build manifest from JSON bytes.
func ParseManifest(b []byte) (*Manifest, error) {
	var raw rawManifest

	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("inertia: failed to unmarshal manifest: %w", err)
	}

	return &Manifest{raw: raw, sum: xxhash.Sum64(b)}, nil
}

// ParseManifestFromFS reads and parses a Vite manifest from a file
// system.
func ParseManifestFromFS(fsys fs.FS, path string) (*Manifest, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to read manifest file: %w", err)
	}

	return ParseManifest(b)
}
