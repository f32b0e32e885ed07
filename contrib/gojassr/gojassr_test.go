package gojassr

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.loamy.dev/inertia"
)

//nolint:gochecknoglobals
var testBundle = `function render(page) {
	var p = JSON.parse(page);
	return JSON.stringify({
		head: "<title>" + p.component + "</title>",
		body: "<div>" + p.url + "</div>"
	});
}`

func testPage() *inertia.Page {
	//nolint:exhaustruct
	return &inertia.Page{
		Component: "Posts/Index",
		URL:       "/posts",
		Version:   "1.0.0",
		Props:     map[string]any{"title": "hello"},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("compiles a valid bundle", func(t *testing.T) {
		t.Parallel()

		engine, err := New(testBundle, nil)
		require.NoError(t, err)
		require.NotNil(t, engine)
	})

	t.Run("rejects a broken bundle", func(t *testing.T) {
		t.Parallel()

		_, err := New(`function render( {`, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to compile")
	})
}

func TestEngine_Render(t *testing.T) {
	t.Parallel()

	t.Run("renders the page", func(t *testing.T) {
		t.Parallel()

		engine, err := New(testBundle, nil)
		require.NoError(t, err)

		data, err := engine.Render(t.Context(), testPage())
		require.NoError(t, err)

		assert.Equal(t, "<title>Posts/Index</title>", data.Head)
		assert.Equal(t, "<div>/posts</div>", data.Body)
	})

	t.Run("custom render function name", func(t *testing.T) {
		t.Parallel()

		engine, err := New(
			`function ssr(page) { return JSON.stringify({head: "", body: "ok"}); }`,
			&Config{RenderFunc: "ssr"},
		)
		require.NoError(t, err)

		data, err := engine.Render(t.Context(), testPage())
		require.NoError(t, err)
		assert.Equal(t, "ok", data.Body)
	})

	t.Run("missing render function", func(t *testing.T) {
		t.Parallel()

		engine, err := New(`var unrelated = 1;`, nil)
		require.NoError(t, err)

		_, err = engine.Render(t.Context(), testPage())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not define")
	})

	t.Run("render function throws", func(t *testing.T) {
		t.Parallel()

		engine, err := New(`function render(page) { throw new Error("boom"); }`, nil)
		require.NoError(t, err)

		_, err = engine.Render(t.Context(), testPage())
		require.Error(t, err)
	})

	t.Run("render function returns garbage", func(t *testing.T) {
		t.Parallel()

		engine, err := New(`function render(page) { return "not json"; }`, nil)
		require.NoError(t, err)

		_, err = engine.Render(t.Context(), testPage())
		require.Error(t, err)
	})

	t.Run("concurrent renders", func(t *testing.T) {
		t.Parallel()

		engine, err := New(testBundle, &Config{PoolSize: 2})
		require.NoError(t, err)

		var wg sync.WaitGroup

		for range 8 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				data, err := engine.Render(t.Context(), testPage())
				if assert.NoError(t, err) {
					assert.Equal(t, "<div>/posts</div>", data.Body)
				}
			}()
		}

		wg.Wait()
	})
}
