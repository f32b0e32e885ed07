// Package inertiaframe is an opinionated, message-based layer over the
// inertia package: endpoints receive a decoded request message and return
// a response message, while the frame handles decoding, validation,
// flashed errors and rendering.
package inertiaframe

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-playground/form/v4"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/http/httperror"
	"go.inout.gg/foundations/http/httpmiddleware"
	"go.inout.gg/foundations/must"

	"go.loamy.dev/inertia"
	"go.loamy.dev/inertia/internal/inertiaproto"
)

var d = debug.Debuglog("inertiaframe") //nolint:gochecknoglobals

// DefaultFormDecoder decodes urlencoded and multipart form bodies.
//
//nolint:gochecknoglobals
var DefaultFormDecoder = form.NewDecoder()

// ErrEmptyResponse is returned when an endpoint produces a nil response.
var ErrEmptyResponse = errors.New("inertiaframe: empty response")

var (
	_ RawResponseWriter = (*redirectMessage)(nil)
	_ RawResponseWriter = (*redirectBackMessage)(nil)
	_ RawResponseWriter = (*externalRedirectMessage)(nil)
)

type kCtx struct{}

var kCtxKey = kCtx{} //nolint:gochecknoglobals

// WithProps stores shared props on the request context, returning the
// updated request. Useful for gathering props in middleware. Props set on
// the response message win over shared ones on key conflicts.
func WithProps(r *http.Request, props inertia.Proper) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), kCtxKey, props))
}

// RedirectBack redirects the user to the previous page, determined from
// the Referer header with the session as fallback.
func RedirectBack(w http.ResponseWriter, r *http.Request) {
	referer := r.Header.Get(inertiaproto.HeaderReferer)
	if referer == "" {
		referer = cmp.Or(sessionFromRequest(r).Referer(), "/")
	}

	d("redirecting back to %s", referer)

	inertiaproto.Redirect(w, r, referer)
}

// DefaultValidationErrorHandler flashes the validation errors to the
// session and redirects back to the previous page.
func DefaultValidationErrorHandler(w http.ResponseWriter, r *http.Request, errorer inertia.ValidationErrorer) {
	sess := sessionFromRequest(r)

	sess.ErrorBag_ = inertia.ErrorBagFromRequest(r)
	sess.ValidationErrors_ = errorer.ValidationErrors()

	must.Must1(sess.Save(w))

	RedirectBack(w, r)
}

// DefaultErrorHandler routes validation errors through
// DefaultValidationErrorHandler and everything else through the
// foundations default.
//
//nolint:gochecknoglobals
var DefaultErrorHandler httperror.ErrorHandler = httperror.ErrorHandlerFunc(
	func(w http.ResponseWriter, r *http.Request, err error) {
		var errorer inertia.ValidationErrorer
		if errors.As(err, &errorer) {
			DefaultValidationErrorHandler(w, r, errorer)
			return
		}

		httperror.DefaultErrorHandler(w, r, err)
	},
)

const (
	mediaTypeJSON      = "application/json"
	mediaTypeForm      = "application/x-www-form-urlencoded"
	mediaTypeMultipart = "multipart/form-data"
)

// Request is a decoded client request.
type Request[M any] struct {
	// Message is the decoded message sent by the client.
	//
	// Message may implement RawRequestExtractor to take over request
	// data extraction.
	Message *M
}

func newRequest[M any](m M) *Request[M] { return &Request[M]{Message: &m} }

// Response is the server's reply to a client message.
//
// Use NewResponse or one of the redirect constructors.
type Response struct {
	m              Message
	clearHistory   bool
	encryptHistory bool
	concurrency    int
}

// ResponseConfig customizes a Response.
type ResponseConfig struct {
	// ClearHistory instructs the client to clear its history stack.
	ClearHistory bool

	// EncryptHistory instructs the client to encrypt the history entry.
	EncryptHistory bool

	// Concurrency caps concurrent lazy prop resolution for this
	// response.
	Concurrency int
}

// NewResponse creates a response rendering msg's component.
//
// msg can be a struct with `inertia:"key"` tagged props, an
// inertia.Proper, or a RawResponseWriter for full control over the
// response. If config is nil, defaults are used.
func NewResponse(msg Message, config *ResponseConfig) *Response {
	if config == nil {
		config = &ResponseConfig{
			ClearHistory:   false,
			EncryptHistory: false,
			Concurrency:    inertia.DefaultConcurrency,
		}
	}

	return &Response{
		m:              msg,
		clearHistory:   config.ClearHistory,
		encryptHistory: config.EncryptHistory,
		concurrency:    config.Concurrency,
	}
}

type externalRedirectMessage struct{ url string }

func (m *externalRedirectMessage) Component() string { return "" }

func (m *externalRedirectMessage) Write(w http.ResponseWriter, r *http.Request) error {
	inertia.Location(w, r, m.url)
	return nil
}

// NewExternalRedirectResponse creates a response redirecting the client
// to a URL outside of the Inertia app.
func NewExternalRedirectResponse(url string) *Response {
	return NewResponse(&externalRedirectMessage{url: url}, nil)
}

type redirectBackMessage struct{}

func (m *redirectBackMessage) Component() string { return "" }

func (m *redirectBackMessage) Write(w http.ResponseWriter, r *http.Request) error {
	RedirectBack(w, r)
	return nil
}

// NewRedirectBackResponse creates a response redirecting the client back
// to the previous page.
func NewRedirectBackResponse() *Response {
	return NewResponse(&redirectBackMessage{}, nil)
}

type redirectMessage struct{ url string }

func (m *redirectMessage) Component() string { return "" }

func (m *redirectMessage) Write(w http.ResponseWriter, r *http.Request) error {
	inertia.Redirect(w, r, m.url)
	return nil
}

// NewRedirectResponse creates a response redirecting the client to
// another page within the Inertia app.
func NewRedirectResponse(url string) *Response {
	return NewResponse(&redirectMessage{url: url}, nil)
}

// Message guides the client to render a component or follow a redirect.
//
// If the Message implements RawResponseWriter, the writer takes over and
// the component name is ignored; otherwise Component must return a
// non-empty string.
type Message interface {
	// Component returns the component name to render.
	Component() string
}

// RawRequestExtractor lets a request message take over extraction of
// request data from the raw http.Request.
type RawRequestExtractor interface {
	// Extract extracts data from the raw http.Request.
	Extract(*http.Request) error
}

// RawResponseWriter lets a response message take over writing the
// response.
type RawResponseWriter interface {
	Write(http.ResponseWriter, *http.Request) error
}

// Meta is the routing metadata of an endpoint.
type Meta struct {
	// Method is the endpoint's HTTP method.
	Method string

	// Path is the endpoint's HTTP path, in http.ServeMux pattern
	// syntax.
	Path string
}

// Validator validates decoded request messages.
type Validator interface {
	Validate(any) error
}

// Endpoint handles one typed message.
type Endpoint[R any] interface {
	// Execute executes the endpoint for the given request.
	//
	// Returned errors implementing inertia.ValidationErrorer are
	// flashed to the client per the Inertia protocol.
	Execute(context.Context, *Request[R]) (*Response, error)

	// Meta returns the endpoint's routing metadata.
	Meta() *Meta
}

// Mux routes HTTP requests. Satisfied by *http.ServeMux and chi.Router.
type Mux interface {
	// Handle handles the given pattern in http.ServeMux format:
	// "<http-method> <path>".
	Handle(pattern string, h http.Handler)
}

// MountOpts configures Mount.
type MountOpts struct {
	Middleware           httpmiddleware.Middleware
	Validator            Validator
	ErrorHandler         httperror.ErrorHandler
	FormDecoder          *form.Decoder
	JSONUnmarshalOptions []json.Options
}

// Mount registers the endpoint on the mux under the method and path from
// Endpoint.Meta. Request bodies are decoded from JSON, urlencoded or
// multipart form data; the decoded message is validated with the
// configured Validator, and validation failures are flashed to the client
// per the Inertia protocol.
func Mount[M any](mux Mux, e Endpoint[M], opts *MountOpts) {
	if opts == nil {
		//nolint:exhaustruct
		opts = &MountOpts{}
	}

	opts.ErrorHandler = cmp.Or(opts.ErrorHandler, DefaultErrorHandler)
	opts.FormDecoder = cmp.Or(opts.FormDecoder, DefaultFormDecoder)

	debug.Assert(e != nil, "endpoint must not be nil")
	debug.Assert(opts.Validator != nil, "endpoint must specify the validator")

	m := e.Meta()

	debug.Assert(m.Method != "", "endpoint must specify the HTTP method")
	debug.Assert(m.Path != "", "endpoint must specify the HTTP path")

	pattern := fmt.Sprintf("%s %s", m.Method, m.Path)

	d("mounting endpoint on pattern: %s", pattern)

	var h http.Handler = httperror.WithErrorHandler(opts.ErrorHandler)(
		newHandler(e, opts.Validator, opts.FormDecoder, opts.JSONUnmarshalOptions))

	if opts.Middleware != nil {
		h = opts.Middleware.Middleware(h)
	}

	mux.Handle(pattern, h)
}

func newHandler[M any](
	endpoint Endpoint[M],
	validator Validator,
	formDecoder *form.Decoder,
	jsonOptions []json.Options,
) httperror.HandlerFunc {
	return httperror.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		var msg M

		if err := decodeMessage(r, &msg, formDecoder, jsonOptions); err != nil {
			return err
		}

		if validator != nil {
			if err := validator.Validate(&msg); err != nil {
				d("request failed validation")

				return fmt.Errorf("inertiaframe: failed to validate request: %w", err)
			}
		}

		resp, err := endpoint.Execute(r.Context(), newRequest(msg))
		if err != nil {
			return fmt.Errorf("inertiaframe: failed to execute: %w", err)
		}

		if resp == nil {
			d("endpoint returned no response")

			return ErrEmptyResponse
		}

		if writer, ok := resp.m.(RawResponseWriter); ok {
			if err := writer.Write(w, r); err != nil {
				return fmt.Errorf("inertiaframe: failed to write response: %w", err)
			}

			return nil
		}

		return render(w, r, resp)
	})
}

func decodeMessage[M any](
	r *http.Request,
	msg *M,
	formDecoder *form.Decoder,
	jsonOptions []json.Options,
) error {
	if extract, ok := any(msg).(RawRequestExtractor); ok {
		if err := extract.Extract(r); err != nil {
			return fmt.Errorf("inertiaframe: failed to extract request data: %w", err)
		}

		return nil
	}

	contentType := r.Header.Get(inertiaproto.HeaderContentType)

	// GET requests and bodiless mutations carry nothing to decode.
	if r.Method == http.MethodGet || contentType == "" {
		return nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("inertiaframe: failed to parse Content-Type header: %w", err)
	}

	// Inertia submits either JSON or form data.
	switch mediaType {
	case mediaTypeJSON:
		d("decoding JSON request")

		if err := json.UnmarshalRead(r.Body, msg, jsonOptions...); err != nil {
			return fmt.Errorf("inertiaframe: failed to decode request: %w", err)
		}
	case mediaTypeForm, mediaTypeMultipart:
		d("decoding form request")

		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("inertiaframe: failed to parse form data: %w", err)
		}

		if err := formDecoder.Decode(msg, r.Form); err != nil {
			return fmt.Errorf("inertiaframe: failed to decode form data: %w", err)
		}
	}

	return nil
}

func render(w http.ResponseWriter, r *http.Request, resp *Response) error {
	var renderCtx inertia.RenderContext

	renderCtx.ClearHistory = resp.clearHistory
	renderCtx.EncryptHistory = resp.encryptHistory
	renderCtx.Concurrency = resp.concurrency

	var props []inertia.Prop
	if proper, ok := r.Context().Value(kCtxKey).(inertia.Proper); ok {
		d("attaching shared props")

		props = proper.Props()
	}

	extracted, err := extractProps(resp.m)
	if err != nil {
		return fmt.Errorf("inertiaframe: failed to extract props: %w", err)
	}

	props = append(props, extracted...)
	renderCtx.Props = props

	sess := sessionFromRequest(r)
	if flashed := sess.ValidationErrors(); flashed != nil {
		renderCtx.ErrorBag = sess.ErrorBag()
		renderCtx.AddValidationErrorer(inertia.ValidationErrors(flashed))

		// The flash is single-use; drop the cookie now that it is read.
		sess.Clear(w, r)
	}

	componentName := resp.m.Component()
	debug.Assert(componentName != "", "component must not be empty when not using a RawResponseWriter")

	if err := inertia.Render(w, r, componentName, renderCtx); err != nil {
		return fmt.Errorf("inertiaframe: failed to render: %w", err)
	}

	return nil
}

// extractProps pulls props from msg: directly when it implements
// inertia.Proper, via the struct tag parser otherwise.
func extractProps(msg any) (inertia.Props, error) {
	if proper, ok := msg.(inertia.Proper); ok {
		return proper.Props(), nil
	}

	props, err := inertia.ParseStruct(msg)
	if err != nil {
		return nil, fmt.Errorf("inertiaframe: failed to parse props: %w", err)
	}

	return props, nil
}
