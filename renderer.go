package inertia

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"runtime"
	"slices"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"go.loamy.dev/inertia/internal/inertiaproto"
	"go.loamy.dev/inertia/internal/inertiassr"
)

// DefaultRootElementID is the ID of the HTML element the Inertia.js app
// mounts to when no other ID is configured.
const DefaultRootElementID = "app"

// DefaultConcurrency is the default cap on concurrently resolved props.
var DefaultConcurrency = runtime.GOMAXPROCS(0) //nolint:gochecknoglobals

// ErrEmptyComponent is returned by Render when the component name is
// empty. An empty name is a caller bug, not a runtime condition.
var ErrEmptyComponent = errors.New("inertia: component name must not be empty")

// Page is the Inertia.js page object sent to the client.
type Page = inertiaproto.Page

// Config configures a Renderer.
type Config struct {
	// SSRClient enables server-side rendering of first loads.
	//
	// If nil, the mount element is rendered empty and the client takes
	// over.
	SSRClient SSRClient

	// RootElementAttrs are extra HTML attributes applied to the mount
	// element.
	RootElementAttrs map[string]string

	// Version is the current asset version token (e.g., a build hash).
	// It is opaque: only compared for equality, never parsed.
	Version string

	// RootElementID is the ID of the element the client app mounts to.
	//
	// Defaults to "app".
	RootElementID string

	// JSONOptions configures serialization of page data.
	JSONOptions []json.Options

	// Concurrency caps how many props marked as concurrent are resolved
	// in parallel per request.
	//
	// Defaults to runtime.GOMAXPROCS(0).
	Concurrency int
}

func (c *Config) defaults() {
	c.RootElementID = cmp.Or(c.RootElementID, DefaultRootElementID)
	c.Concurrency = cmp.Or(c.Concurrency, DefaultConcurrency)

	debug.Assert(c.RootElementID != "", "RootElementID must be a non-empty string")
}

// Renderer produces Inertia.js responses: JSON page payloads for Inertia
// navigation and HTML documents for first loads, optionally pre-rendered
// via an SSR client.
//
// Create a Renderer with New or FromFS.
type Renderer struct {
	ssrClient     SSRClient
	t             *template.Template
	jsonOptions   []json.Options
	rootElementID string
	version       string
	rootAttrs     []attr
	concurrency   int
}

type attr struct {
	key   string
	value string
}

// New creates a Renderer rendering HTML shells with the given template.
//
// If config is nil, defaults are used:
//   - RootElementID: "app"
//   - Concurrency: GOMAXPROCS(0)
func New(t *template.Template, config *Config) *Renderer {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	attrs := make([]attr, 0, len(config.RootElementAttrs))
	for key, value := range config.RootElementAttrs {
		attrs = append(attrs, attr{key, value})
	}

	r := &Renderer{
		t:             t,
		ssrClient:     config.SSRClient,
		jsonOptions:   config.JSONOptions,
		version:       config.Version,
		rootElementID: config.RootElementID,
		rootAttrs:     attrs,
		concurrency:   config.Concurrency,
	}

	debug.Assert(r.t != nil, "expected t to be defined")

	return r
}

// FromFS creates a Renderer by parsing an HTML template from fsys.
//
// If config is nil, defaults are used.
func FromFS(fsys fs.FS, path string, config *Config) (*Renderer, error) {
	debug.Assert(fsys != nil, "expected fsys to be defined")
	debug.Assert(path != "", "expected path to be defined")

	t, err := template.New("inertia").ParseFS(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to parse templates: %w", err)
	}

	return New(t, config), nil
}

// MustFromFS is like FromFS, but panics if an error occurs.
func MustFromFS(fsys fs.FS, path string, config *Config) *Renderer {
	return must.Must(FromFS(fsys, path, config))
}

// Version returns the asset version token clients are validated against.
func (r *Renderer) Version() string { return r.version }

// TemplateData is the data passed to the HTML shell template.
type TemplateData struct {
	// T is custom application data available to the template.
	T any

	// InertiaHead contains SSR-generated head elements.
	InertiaHead template.HTML

	// InertiaBody contains the mount element, or the SSR-rendered page.
	InertiaBody template.HTML
}

// Render sends the Inertia.js response for the named page component,
// choosing the shape via protocol negotiation:
//
//   - HTML document for first loads and non-Inertia clients
//   - JSON page payload for Inertia navigation
//   - 409 Conflict when the client's asset version is stale
//
// renderCtx carries props, validation errors and per-page settings.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, renderCtx RenderContext) error {
	if name == "" {
		return ErrEmptyComponent
	}

	switch negotiate(req, r.version) {
	case outcomeConflict:
		d("stale asset version, forcing reload of %s", req.RequestURI)
		Location(w, req, req.RequestURI)

		return nil
	case outcomeJSON:
		return r.renderJSON(w, req, name, renderCtx)
	case outcomeHTML:
	}

	return r.renderHTML(w, req, name, renderCtx)
}

func (r *Renderer) renderJSON(w http.ResponseWriter, req *http.Request, name string, renderCtx RenderContext) error {
	page, err := r.newPage(req, name, renderCtx)
	if err != nil {
		return err
	}

	h := w.Header()
	h.Set(inertiaproto.HeaderXInertia, "true")
	h.Set(inertiaproto.HeaderVary, inertiaproto.HeaderXInertia)
	h.Set(inertiaproto.HeaderContentType, inertiaproto.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.MarshalWrite(w, page, r.jsonOptions...); err != nil {
		return fmt.Errorf("inertia: failed to encode JSON response: %w", err)
	}

	return nil
}

func (r *Renderer) renderHTML(w http.ResponseWriter, req *http.Request, name string, renderCtx RenderContext) error {
	page, err := r.newPage(req, name, renderCtx)
	if err != nil {
		return err
	}

	data := TemplateData{T: renderCtx.T, InertiaHead: "", InertiaBody: ""}

	if r.ssrClient != nil {
		ssrData, err := r.ssrClient.Render(req.Context(), page)
		if err != nil {
			return fmt.Errorf("inertia: failed to render SSR data: %w", err)
		}

		data.InertiaHead = template.HTML(ssrData.Head) //nolint:gosec
		data.InertiaBody = template.HTML(ssrData.Body) //nolint:gosec
	} else {
		body, err := r.mountElement(page)
		if err != nil {
			return err
		}

		data.InertiaBody = body
	}

	w.Header().Set(inertiaproto.HeaderContentType, inertiaproto.ContentTypeHTML)
	w.WriteHeader(http.StatusOK)

	if err := r.t.Execute(w, &data); err != nil {
		return fmt.Errorf("inertia: failed to execute HTML template: %w", err)
	}

	return nil
}

func (r *Renderer) newPage(req *http.Request, name string, renderCtx RenderContext) (*Page, error) {
	concurrency := max(cmp.Or(renderCtx.Concurrency, r.concurrency), 0)

	rawProps := make([]Prop, 0, len(renderCtx.Props)+1)
	rawProps = append(rawProps, renderCtx.Props...)
	rawProps = append(rawProps, r.errorsProp(renderCtx.ValidationErrorer, renderCtx.ErrorBag))

	props, err := r.resolveProps(req, name, rawProps, concurrency)
	if err != nil {
		return nil, err
	}

	return &Page{
		Component:      name,
		Props:          props,
		DeferredProps:  r.deferredProps(req, name, rawProps),
		MergeProps:     r.mergeProps(rawProps, inertiaproto.SplitHeaderList(req.Header.Get(inertiaproto.HeaderXInertiaReset))),
		URL:            req.RequestURI,
		Version:        r.version,
		ClearHistory:   renderCtx.ClearHistory,
		EncryptHistory: renderCtx.EncryptHistory,
	}, nil
}

// mountElement renders the root element carrying the JSON-encoded page
// object in its data-page attribute.
func (r *Renderer) mountElement(page *Page) (template.HTML, error) {
	pageJSON, err := json.Marshal(page, r.jsonOptions...)
	if err != nil {
		return "", fmt.Errorf("inertia: failed to encode page object: %w", err)
	}

	var w strings.Builder

	w.WriteString(`<div id="`)
	w.WriteString(r.rootElementID)
	w.WriteString(`" data-page="`)
	template.HTMLEscape(&w, pageJSON)
	w.WriteString(`" `)

	for _, kv := range r.rootAttrs {
		// data-page is owned by the protocol.
		if kv.key == "data-page" {
			continue
		}

		w.WriteString(kv.key)
		w.WriteString(`="`)
		template.HTMLEscape(&w, []byte(kv.value))
		w.WriteString(`" `)
	}

	w.WriteString(`></div>`)

	//nolint:gosec
	return template.HTML(w.String()), nil
}

func (r *Renderer) resolveProps(
	req *http.Request,
	name string,
	props []Prop,
	concurrency int,
) (map[string]any, error) {
	ctx := req.Context()

	if isPartialRequest(req, name) {
		whitelist := inertiaproto.SplitHeaderList(req.Header.Get(inertiaproto.HeaderXInertiaPartialData))
		blacklist := inertiaproto.SplitHeaderList(req.Header.Get(inertiaproto.HeaderXInertiaPartialExcept))

		return r.resolvePartial(ctx, props, whitelist, blacklist, concurrency)
	}

	m := make(map[string]any, len(props))

	for _, prop := range props {
		// Lazy props wait for the client to request them.
		if prop.lazy() {
			continue
		}

		val, err := prop.resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("inertia: failed to resolve prop %s: %w", prop.key, err)
		}

		m[prop.key] = val
	}

	return m, nil
}

func (r *Renderer) resolvePartial(
	ctx context.Context,
	props []Prop,
	whitelist, blacklist []string,
	concurrency int,
) (map[string]any, error) {
	m := make(map[string]any, len(props))
	concurrent := make([]Prop, 0, len(props))

	for _, prop := range props {
		if prop.filterable() {
			// The prop count is expected to be small; linear scans are fine.
			if len(whitelist) > 0 && !slices.Contains(whitelist, prop.key) ||
				len(blacklist) > 0 && slices.Contains(blacklist, prop.key) {
				continue
			}
		}

		if prop.concurrent {
			concurrent = append(concurrent, prop)
			continue
		}

		val, err := prop.resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("inertia: failed to resolve prop %s: %w", prop.key, err)
		}

		m[prop.key] = val
	}

	if len(concurrent) > 0 {
		pool := pond.NewResultPool[attrValue](concurrency)
		group := pool.NewGroupContext(ctx)

		for _, prop := range concurrent {
			group.SubmitErr(func() (attrValue, error) {
				var kv attrValue

				val, err := prop.resolve(ctx)
				if err != nil {
					return kv, fmt.Errorf("inertia: failed to resolve prop %s: %w", prop.key, err)
				}

				kv.key = prop.key
				kv.value = val

				return kv, nil
			})
		}

		results, err := group.Wait()
		if err != nil {
			return nil, fmt.Errorf("inertia: failed to resolve concurrent props: %w", err)
		}

		for _, kv := range results {
			m[kv.key] = kv.value
		}
	}

	return m, nil
}

type attrValue struct {
	value any
	key   string
}

// deferredProps maps deferred group names to the prop keys the client
// should fetch after the initial render.
func (r *Renderer) deferredProps(req *http.Request, name string, props []Prop) map[string][]string {
	// Partial reloads already know about the deferred props from the
	// initial response.
	if isPartialRequest(req, name) {
		return nil
	}

	m := make(map[string][]string, len(props))

	for _, prop := range props {
		if prop.kind != kindDeferred {
			continue
		}

		m[prop.group] = append(m[prop.group], prop.key)
	}

	return m
}

// mergeProps lists the props the client should merge instead of replace,
// minus the ones reset via X-Inertia-Reset.
func (r *Renderer) mergeProps(props []Prop, reset []string) []string {
	keys := make([]string, 0, len(props))

	for _, p := range props {
		if !p.mergeable || len(reset) > 0 && slices.Contains(reset, p.key) {
			continue
		}

		keys = append(keys, p.key)
	}

	return keys
}

func (r *Renderer) errorsProp(errorers []ValidationErrorer, errorBag string) Prop {
	m := make(map[string]string)

	for _, errorer := range errorers {
		for _, err := range errorer.ValidationErrors() {
			m[err.Field()] = err.Error()
		}
	}

	if errorBag != DefaultErrorBag {
		return NewAlways(errorBag, map[string]map[string]string{"errors": m})
	}

	return NewAlways("errors", m)
}

// ErrorBagFromRequest extracts the error bag name from the
// X-Inertia-Error-Bag header. Returns DefaultErrorBag if the header is
// absent. Error bags scope validation errors to individual forms sharing
// a page.
func ErrorBagFromRequest(r *http.Request) string {
	return cmp.Or(r.Header.Get(inertiaproto.HeaderXInertiaErrorBag), DefaultErrorBag)
}

// SSRClient communicates with a server-side rendering service to
// pre-render first loads.
type SSRClient = inertiassr.SSRClient

// SSRTemplateData contains the HTML head and body fragments produced by
// server-side rendering.
type SSRTemplateData = inertiassr.SSRTemplateData

// NewHTTPSSRClient creates an SSR client talking to the Inertia SSR
// server at url. If client is nil, http.DefaultClient is used.
func NewHTTPSSRClient(url string, client *http.Client) SSRClient {
	if client == nil {
		client = http.DefaultClient
	}

	return inertiassr.NewHTTPSSRClient(url, client)
}
