//go:build !production

package vite

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplate(t *testing.T) {
	t.Parallel()

	t.Run("dev client and resources point at the dev server", func(t *testing.T) {
		t.Parallel()

		tpl, err := NewTemplate(
			`{{template "viteClient"}}{{viteResource "src/main.tsx"}}`,
			&Config{ViteAddress: "http://localhost:3000"},
		)
		require.NoError(t, err)

		var sb strings.Builder

		require.NoError(t, tpl.Execute(&sb, nil))

		out := sb.String()
		assert.Contains(t, out, `http://localhost:3000/@vite/client`)
		assert.Contains(t, out, `http://localhost:3000/src/main.tsx`)
	})

	t.Run("default dev server address", func(t *testing.T) {
		t.Parallel()

		tpl, err := NewTemplate(`{{template "viteClient"}}`, nil)
		require.NoError(t, err)

		var sb strings.Builder

		require.NoError(t, tpl.Execute(&sb, nil))
		assert.Contains(t, sb.String(), DefaultViteAddress)
	})

	t.Run("react refresh preamble", func(t *testing.T) {
		t.Parallel()

		tpl, err := NewTemplate(`{{template "viteReactRefresh"}}`, nil)
		require.NoError(t, err)

		var sb strings.Builder

		require.NoError(t, tpl.Execute(&sb, nil))
		assert.Contains(t, sb.String(), "@react-refresh")
	})

	t.Run("invalid template", func(t *testing.T) {
		t.Parallel()

		_, err := NewTemplate(`{{viteResource}`, nil)
		require.Error(t, err)

		assert.Panics(t, func() { Must(`{{viteResource}`, nil) })
	})
}

func TestFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"templates/app.html": &fstest.MapFile{
			Data: []byte(`{{template "viteClient"}}`),
			Mode: 0o644,
		},
	}

	tpl, err := FromFS(fsys, "templates/*.html", nil)
	require.NoError(t, err)
	require.NotNil(t, tpl)

	_, err = FromFS(fsys, "missing/*.html", nil)
	require.Error(t, err)
}
