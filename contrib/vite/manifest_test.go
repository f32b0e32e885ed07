package vite

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoglobals
var testManifest = []byte(`{
	"_shared-chunk.js": {
		"file": "assets/shared-chunk.js",
		"name": "_shared-chunk.js",
		"css": ["assets/shared.css"],
		"assets": ["assets/logo.svg"]
	},
	"src/main.tsx": {
		"file": "assets/main.js",
		"name": "src/main.tsx",
		"src": "src/main.tsx",
		"isEntry": true,
		"css": ["assets/main.css"],
		"imports": ["_shared-chunk.js"]
	}
}`)

func TestParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("valid manifest", func(t *testing.T) {
		t.Parallel()

		m, err := ParseManifest(testManifest)
		require.NoError(t, err)
		require.NotNil(t, m)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()

		_, err := ParseManifest([]byte(`{`))
		require.Error(t, err)
	})
}

func TestParseManifestFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"dist/manifest.json": &fstest.MapFile{Data: testManifest, Mode: 0o644},
	}

	m, err := ParseManifestFromFS(fsys, "dist/manifest.json")
	require.NoError(t, err)
	require.NotNil(t, m)

	_, err = ParseManifestFromFS(fsys, "dist/missing.json")
	require.Error(t, err)
}

func TestManifest_Version(t *testing.T) {
	t.Parallel()

	m1, err := ParseManifest(testManifest)
	require.NoError(t, err)

	m2, err := ParseManifest(testManifest)
	require.NoError(t, err)

	assert.NotEmpty(t, m1.Version())
	assert.Equal(t, m1.Version(), m2.Version(), "same bytes hash to the same version")

	m3, err := ParseManifest([]byte(`{}`))
	require.NoError(t, err)
	assert.NotEqual(t, m1.Version(), m3.Version(), "different builds get different versions")
}

func TestManifest_HTML(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest(testManifest)
	require.NoError(t, err)

	t.Run("resolves an entry with its imports", func(t *testing.T) {
		t.Parallel()

		css, js, err := m.HTML("src/main.tsx")
		require.NoError(t, err)

		require.Len(t, css, 2)
		assert.Contains(t, string(css[0]), "assets/main.css")
		assert.Contains(t, string(css[1]), "assets/shared.css")

		require.Len(t, js, 2)
		assert.Equal(t, `<script type="module" src="assets/main.js"></script>`, string(js[0]),
			"the entry's compiled file is the module script")
		assert.Equal(t, `<link rel="modulepreload" href="assets/shared-chunk.js" />`, string(js[1]),
			"imported chunks are preloaded, not executed")

		for _, tag := range js {
			assert.NotContains(t, string(tag), "logo.svg",
				"static assets produce no tags")
		}
	})

	t.Run("unknown entry", func(t *testing.T) {
		t.Parallel()

		_, _, err := m.HTML("src/missing.tsx")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found in manifest")
	})
}
