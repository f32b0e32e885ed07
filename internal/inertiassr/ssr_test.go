package inertiassr

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.loamy.dev/inertia/internal/inertiaproto"
)

func testPage() *inertiaproto.Page {
	//nolint:exhaustruct
	return &inertiaproto.Page{
		Component: "Posts/Index",
		URL:       "/posts",
		Version:   "1.0.0",
		Props:     map[string]any{"title": "hello"},
	}
}

func TestHTTPSSRClient_Render(t *testing.T) {
	t.Parallel()

	t.Run("renders the page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, inertiaproto.ContentTypeJSON, r.Header.Get(inertiaproto.HeaderContentType))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			var page inertiaproto.Page

			require.NoError(t, json.Unmarshal(body, &page))
			assert.Equal(t, "Posts/Index", page.Component)

			_, _ = w.Write([]byte(`{"head": "<title>SSR</title>", "body": "<div>content</div>"}`))
		}))
		t.Cleanup(srv.Close)

		client := NewHTTPSSRClient(srv.URL, srv.Client())

		data, err := client.Render(t.Context(), testPage())
		require.NoError(t, err)

		assert.Equal(t, "<title>SSR</title>", data.Head)
		assert.Equal(t, "<div>content</div>", data.Body)
	})

	t.Run("non-200 status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		client := NewHTTPSSRClient(srv.URL, srv.Client())

		_, err := client.Render(t.Context(), testPage())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected HTTP status code")
	})

	t.Run("malformed response body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		t.Cleanup(srv.Close)

		client := NewHTTPSSRClient(srv.URL, srv.Client())

		_, err := client.Render(t.Context(), testPage())
		require.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		client := NewHTTPSSRClient(srv.URL, http.DefaultClient)

		_, err := client.Render(t.Context(), testPage())
		require.Error(t, err)
	})
}
