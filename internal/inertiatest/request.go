// Package inertiatest builds Inertia-flavored HTTP requests for tests.
package inertiatest

import (
	"cmp"
	"net/http"
	"net/http/httptest"
	"strings"

	"go.loamy.dev/inertia/internal/inertiaproto"
)

// RequestConfig describes the protocol headers attached to a test request.
type RequestConfig struct {
	Version          string
	PartialComponent string
	Whitelist        []string
	Blacklist        []string
	ResetProps       []string
	Inertia          bool
}

// NewRequest creates a request with an empty body and a matching response
// recorder.
func NewRequest(
	method string,
	target string,
	config *RequestConfig,
) (*http.Request, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(method, target, nil)

	//nolint:exhaustruct
	config = cmp.Or(config, &RequestConfig{})

	if config.Inertia {
		r.Header.Set(inertiaproto.HeaderXInertia, "true")
	}

	if config.Version != "" {
		r.Header.Set(inertiaproto.HeaderXInertiaVersion, config.Version)
	}

	if len(config.Whitelist) > 0 {
		r.Header.Set(inertiaproto.HeaderXInertiaPartialData, strings.Join(config.Whitelist, ","))
	}

	if len(config.Blacklist) > 0 {
		r.Header.Set(inertiaproto.HeaderXInertiaPartialExcept, strings.Join(config.Blacklist, ","))
	}

	if len(config.ResetProps) > 0 {
		r.Header.Set(inertiaproto.HeaderXInertiaReset, strings.Join(config.ResetProps, ","))
	}

	if config.PartialComponent != "" {
		r.Header.Set(inertiaproto.HeaderXInertiaPartialComponent, config.PartialComponent)
	}

	return r, httptest.NewRecorder()
}
