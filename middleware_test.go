package inertia

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.loamy.dev/inertia/internal/inertiaproto"
	"go.loamy.dev/inertia/internal/inertiatest"
)

func TestNewMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("panics on nil renderer", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { NewMiddleware(nil) })
	})

	t.Run("installs the renderer into the request context", func(t *testing.T) {
		t.Parallel()

		renderer := New(testTpl, &Config{Version: "1.0.0"})
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, Render(w, r, "Posts/Index", NewRenderContext()))
		}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/posts", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "1.0.0",
		})
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get(inertiaproto.HeaderXInertia))
		assert.Equal(t, inertiaproto.ContentTypeJSON, w.Header().Get(inertiaproto.HeaderContentType))
	})

	t.Run("sets the Vary header", func(t *testing.T) {
		t.Parallel()

		renderer := New(testTpl, nil)
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(w, req)

		assert.Equal(t, inertiaproto.HeaderXInertia, w.Header().Get(inertiaproto.HeaderVary))
	})

	t.Run("passes non-inertia requests through unbuffered", func(t *testing.T) {
		t.Parallel()

		renderer := New(testTpl, nil)
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("plain"))
		}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "plain", w.Body.String())
	})
}

func TestNewMiddleware_VersionMismatch(t *testing.T) {
	t.Parallel()

	t.Run("stale GET forces a full reload", func(t *testing.T) {
		t.Parallel()

		called := false
		renderer := New(testTpl, &Config{Version: "2.0.0"})
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/posts", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "1.0.0",
		})
		handler.ServeHTTP(w, req)

		assert.False(t, called, "handler must not run on a stale version")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "/posts", w.Header().Get(inertiaproto.HeaderXInertiaLocation))
	})

	t.Run("stale POST is served normally", func(t *testing.T) {
		t.Parallel()

		called := false
		renderer := New(testTpl, &Config{Version: "2.0.0"})
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true

			w.WriteHeader(http.StatusOK)
		}))

		req, w := inertiatest.NewRequest(http.MethodPost, "/posts", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "1.0.0",
		})
		handler.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("absent client version is never stale", func(t *testing.T) {
		t.Parallel()

		called := false
		renderer := New(testTpl, &Config{Version: "2.0.0"})
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true

			w.WriteHeader(http.StatusOK)
		}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/posts", &inertiatest.RequestConfig{
			Inertia: true,
		})
		handler.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("custom mismatch handler", func(t *testing.T) {
		t.Parallel()

		renderer := New(testTpl, &Config{Version: "2.0.0"})
		handler := NewMiddleware(renderer, func(config *MiddlewareConfig) {
			config.VersionMismatchHandler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusGone)
			}
		})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/posts", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "1.0.0",
		})
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGone, w.Code)
	})
}

func TestNewMiddleware_RedirectRewrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		wantStatus int
	}{
		{"PUT rewrites 302 to 303", http.MethodPut, http.StatusSeeOther},
		{"PATCH rewrites 302 to 303", http.MethodPatch, http.StatusSeeOther},
		{"DELETE rewrites 302 to 303", http.MethodDelete, http.StatusSeeOther},
		{"GET keeps 302", http.MethodGet, http.StatusFound},
		{"POST keeps 302", http.MethodPost, http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			renderer := New(testTpl, &Config{Version: "1.0.0"})
			handler := NewMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/next", http.StatusFound)
			}))

			req, w := inertiatest.NewRequest(tt.method, "/posts", &inertiatest.RequestConfig{
				Inertia: true,
				Version: "1.0.0",
			})
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "/next", w.Header().Get("Location"))
		})
	}
}

func TestNewMiddleware_EmptyResponse(t *testing.T) {
	t.Parallel()

	t.Run("default fallback", func(t *testing.T) {
		t.Parallel()

		renderer := New(testTpl, nil)
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/", &inertiatest.RequestConfig{Inertia: true})
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("custom fallback", func(t *testing.T) {
		t.Parallel()

		renderer := New(testTpl, nil)
		handler := NewMiddleware(renderer, func(config *MiddlewareConfig) {
			config.EmptyResponseHandler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}
		})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/", &inertiatest.RequestConfig{Inertia: true})
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("status code without a body is not empty", func(t *testing.T) {
		t.Parallel()

		renderer := New(testTpl, nil)
		handler := NewMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

		req, w := inertiatest.NewRequest(http.MethodGet, "/", &inertiatest.RequestConfig{Inertia: true})
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})
}

func TestRender_MissingMiddleware(t *testing.T) {
	t.Parallel()

	req, w := inertiatest.NewRequest(http.MethodGet, "/", nil)

	err := Render(w, req, "Posts/Index", NewRenderContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "middleware")

	assert.Panics(t, func() { MustRender(w, req, "Posts/Index", NewRenderContext()) })
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("buffers until flushed", func(t *testing.T) {
		t.Parallel()

		_, rec := inertiatest.NewRequest(http.MethodGet, "/", nil)
		w := newResponseWriter(rec)

		w.WriteHeader(http.StatusCreated)
		_, err := w.Write([]byte("hello"))
		require.NoError(t, err)

		assert.Empty(t, rec.Body.String(), "nothing reaches the wire before flush")
		assert.False(t, w.Empty())

		w.flush()

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "hello", rec.Body.String())
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		_, rec := inertiatest.NewRequest(http.MethodGet, "/", nil)
		w := newResponseWriter(rec)

		assert.True(t, w.Empty())
	})
}
