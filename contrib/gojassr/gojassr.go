// Package gojassr renders Inertia pages server-side inside the Go
// process by evaluating a prebuilt JavaScript server bundle on goja
// runtimes. It is an alternative to running a dedicated Node SSR server
// behind inertia.NewHTTPSSRClient.
//
// The bundle must define a global render function taking the page object
// as a JSON string and returning a JSON string of the shape
// {"head": "...", "body": "..."}:
//
//	function render(page) {
//	    const { component, props } = JSON.parse(page);
//	    // ... render with your framework of choice ...
//	    return JSON.stringify({ head, body });
//	}
//
// Use Bundle to produce such a bundle from a JS/JSX entry point.
package gojassr

import (
	"cmp"
	"context"
	"fmt"
	"runtime"

	"github.com/dop251/goja"
	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"

	"go.loamy.dev/inertia"
)

var _ inertia.SSRClient = (*Engine)(nil)

// DefaultRenderFunc is the global function the bundle must expose.
const DefaultRenderFunc = "render"

// Config configures an Engine.
type Config struct {
	// RenderFunc is the name of the global render function in the
	// bundle. Defaults to DefaultRenderFunc.
	RenderFunc string

	// PoolSize caps the number of JS runtimes kept around. Each runtime
	// serves one render at a time; goja runtimes are not safe for
	// concurrent use. Defaults to runtime.GOMAXPROCS(0).
	PoolSize int
}

func (c *Config) defaults() {
	c.RenderFunc = cmp.Or(c.RenderFunc, DefaultRenderFunc)
	c.PoolSize = cmp.Or(c.PoolSize, runtime.GOMAXPROCS(0))
}

// Engine is an in-process SSR client evaluating pages on a pool of goja
// runtimes.
//
// Create an Engine with New.
type Engine struct {
	prog       *goja.Program
	runtimes   chan *goja.Runtime
	renderFunc string
}

// New compiles the server bundle and prepares the runtime pool. The
// bundle is evaluated lazily, once per pooled runtime.
//
// If config is nil, defaults are used.
func New(bundle string, config *Config) (*Engine, error) {
	debug.Assert(bundle != "", "expected bundle to be defined")

	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	prog, err := goja.Compile("ssr.js", bundle, true)
	if err != nil {
		return nil, fmt.Errorf("gojassr: failed to compile bundle: %w", err)
	}

	runtimes := make(chan *goja.Runtime, config.PoolSize)
	for range config.PoolSize {
		runtimes <- nil // created on first use
	}

	return &Engine{
		prog:       prog,
		runtimes:   runtimes,
		renderFunc: config.RenderFunc,
	}, nil
}

// Render evaluates the page on a pooled runtime.
func (e *Engine) Render(ctx context.Context, page *inertia.Page) (*inertia.SSRTemplateData, error) {
	debug.Assert(page != nil, "page must be set")

	pageJSON, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("gojassr: failed to marshal page: %w", err)
	}

	var vm *goja.Runtime

	select {
	case vm = <-e.runtimes:
	case <-ctx.Done():
		return nil, fmt.Errorf("gojassr: %w", ctx.Err())
	}

	defer func() { e.runtimes <- vm }()

	if vm == nil {
		vm, err = e.newRuntime()
		if err != nil {
			return nil, err
		}
	}

	fn, ok := goja.AssertFunction(vm.Get(e.renderFunc))
	if !ok {
		return nil, fmt.Errorf("gojassr: bundle does not define a %s function", e.renderFunc)
	}

	res, err := fn(goja.Undefined(), vm.ToValue(string(pageJSON)))
	if err != nil {
		return nil, fmt.Errorf("gojassr: failed to render page: %w", err)
	}

	var data inertia.SSRTemplateData
	if err := json.Unmarshal([]byte(res.String()), &data); err != nil {
		return nil, fmt.Errorf("gojassr: failed to decode render result: %w", err)
	}

	return &data, nil
}

func (e *Engine) newRuntime() (*goja.Runtime, error) {
	vm := goja.New()

	if _, err := vm.RunProgram(e.prog); err != nil {
		return nil, fmt.Errorf("gojassr: failed to evaluate bundle: %w", err)
	}

	return vm, nil
}
