package inertia

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"go.loamy.dev/inertia/internal/inertiaproto"
)

type ctxKey struct{}

//nolint:gochecknoglobals
var kCtxKey = ctxKey{}

// https://inertiajs.com/redirects#303-response-code
//
//nolint:gochecknoglobals
var seeOtherMethods = []string{http.MethodPatch, http.MethodPut, http.MethodDelete}

// DefaultEmptyResponseHandler answers requests whose handler produced no
// response at all.
//
//nolint:gochecknoglobals
var DefaultEmptyResponseHandler http.HandlerFunc = func(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Empty response", http.StatusNoContent)
}

// DefaultVersionMismatchHandler forces a full reload of the current URL so
// the client picks up fresh assets.
//
//nolint:gochecknoglobals
var DefaultVersionMismatchHandler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
	Location(w, r, r.RequestURI)
}

// MiddlewareConfig configures the Inertia.js middleware.
type MiddlewareConfig struct {
	// EmptyResponseHandler is called when a handler produces no response
	// body and no status code.
	//
	// If nil, DefaultEmptyResponseHandler is used.
	EmptyResponseHandler http.HandlerFunc

	// VersionMismatchHandler is called when the client's asset version
	// does not match the server's.
	//
	// If nil, DefaultVersionMismatchHandler is used.
	VersionMismatchHandler http.HandlerFunc
}

func (m *MiddlewareConfig) defaults() {
	if m.EmptyResponseHandler == nil {
		m.EmptyResponseHandler = DefaultEmptyResponseHandler
	}

	if m.VersionMismatchHandler == nil {
		m.VersionMismatchHandler = DefaultVersionMismatchHandler
	}
}

// NewMiddleware creates an HTTP middleware wiring the Inertia.js protocol
// into the request chain: it stores the renderer in the request context,
// marks responses as varying on X-Inertia, rejects stale asset versions
// before the handler runs, rewrites 302 to 303 for PUT/PATCH/DELETE and
// substitutes a fallback response when the handler produced none.
//
// Handlers below the middleware use Render to produce Inertia responses.
func NewMiddleware(renderer *Renderer, opts ...func(*MiddlewareConfig)) func(http.Handler) http.Handler {
	debug.Assert(renderer != nil, "expected renderer to be defined")

	var config MiddlewareConfig
	for _, opt := range opts {
		opt(&config)
	}

	config.defaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), kCtxKey, renderer))

			w.Header().Set(inertiaproto.HeaderVary, inertiaproto.HeaderXInertia)

			switch negotiate(r, renderer.Version()) {
			case outcomeHTML:
				next.ServeHTTP(w, r)
				return
			case outcomeConflict:
				d("stale client version on %s", r.RequestURI)
				config.VersionMismatchHandler(w, r)

				return
			case outcomeJSON:
			}

			rww := newResponseWriter(w)
			next.ServeHTTP(rww, r)

			if rww.statusCode == http.StatusFound &&
				slices.Contains(seeOtherMethods, r.Method) {
				rww.WriteHeader(http.StatusSeeOther)
			}

			if rww.Empty() {
				config.EmptyResponseHandler(w, r)
				return
			}

			rww.flush()
		})
	}
}

// RenderContext carries the per-page data and settings for a single
// Render call: props, validation errors, history flags and the prop
// resolution concurrency cap.
type RenderContext struct {
	// T is custom data passed through to the HTML shell template.
	T any

	// Props are the properties sent to the page component.
	Props []Prop

	// ErrorBag scopes validation errors to a named bag.
	ErrorBag string

	// ValidationErrorer holds validation errors to send to the client.
	ValidationErrorer []ValidationErrorer

	// EncryptHistory instructs the client to encrypt the history entry.
	EncryptHistory bool

	// ClearHistory instructs the client to clear its history stack.
	ClearHistory bool

	// Concurrency caps concurrent prop resolution for this page.
	// Zero uses the renderer's default.
	Concurrency int
}

// NewRenderContext creates a RenderContext from the given options,
// applied in order.
func NewRenderContext(opts ...Option) RenderContext {
	var renderCtx RenderContext
	for _, opt := range opts {
		opt(&renderCtx)
	}

	return renderCtx
}

// AddValidationErrorer appends validation errors to the context.
// Multiple calls accumulate into a single error bag.
func (renderCtx *RenderContext) AddValidationErrorer(err ValidationErrorer) {
	renderCtx.ValidationErrorer = append(renderCtx.ValidationErrorer, err)
}

// Option configures a RenderContext.
type Option func(*RenderContext)

// WithProps adds props to the page component. Multiple calls append.
func WithProps(props Proper) Option {
	return func(renderCtx *RenderContext) {
		if props == nil {
			return
		}

		if renderCtx.Props == nil {
			renderCtx.Props = make([]Prop, 0, props.Len())
		}

		renderCtx.Props = append(renderCtx.Props, props.Props()...)
	}
}

// WithValidationErrors adds validation errors to the page, scoped to the
// given error bag. Pass DefaultErrorBag for the unscoped bag.
func WithValidationErrors(errorer ValidationErrorer, errorBag string) Option {
	return func(renderCtx *RenderContext) {
		if errorer == nil {
			return
		}

		renderCtx.AddValidationErrorer(errorer)
		renderCtx.ErrorBag = errorBag
	}
}

// WithClearHistory instructs the client to clear its history stack.
func WithClearHistory() Option {
	return func(renderCtx *RenderContext) { renderCtx.ClearHistory = true }
}

// WithEncryptHistory instructs the client to encrypt the history entry.
func WithEncryptHistory() Option {
	return func(renderCtx *RenderContext) { renderCtx.EncryptHistory = true }
}

// WithConcurrency caps concurrent prop resolution for this page.
// Zero uses the renderer's default.
func WithConcurrency(concurrency int) Option {
	return func(renderCtx *RenderContext) { renderCtx.Concurrency = concurrency }
}

// Render sends the Inertia.js response for the named page component using
// the renderer installed by NewMiddleware.
//
// Returns an error if the middleware is missing from the request chain or
// rendering fails.
func Render(w http.ResponseWriter, r *http.Request, name string, renderCtx RenderContext) error {
	renderer, ok := r.Context().Value(kCtxKey).(*Renderer)
	if !ok {
		return errors.New(
			"inertia: renderer not found in request context - did you forget to use the middleware?",
		)
	}

	return renderer.Render(w, r, name, renderCtx)
}

// MustRender is like Render, but panics if an error occurs.
func MustRender(w http.ResponseWriter, r *http.Request, name string, renderCtx RenderContext) {
	must.Must1(Render(w, r, name, renderCtx))
}
