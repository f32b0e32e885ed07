package inertia

import (
	"net/http"

	"go.loamy.dev/inertia/internal/inertiaproto"
)

// outcome is the response shape chosen for a single request.
type outcome int

const (
	// outcomeHTML renders the full document with the page object embedded
	// into the mount element. First loads and non-Inertia clients.
	outcomeHTML outcome = iota

	// outcomeJSON sends the page object as the response body.
	outcomeJSON

	// outcomeConflict answers 409 with X-Inertia-Location so the client
	// performs a full browser visit and picks up fresh assets.
	outcomeConflict
)

// negotiate decides the response shape for a request.
//
// It is a pure function of the request headers, the request method and the
// server's asset version:
//
//   - no X-Inertia header: outcomeHTML
//   - X-Inertia with a matching, absent or unchecked version: outcomeJSON
//   - X-Inertia GET with a version differing from serverVersion: outcomeConflict
//
// The version guard applies to GET navigation only, and a client that omits
// X-Inertia-Version is never considered stale. Non-GET requests carry form
// submissions which must not be dropped over an asset mismatch.
// See https://inertiajs.com/the-protocol#asset-versioning
func negotiate(r *http.Request, serverVersion string) outcome {
	if !isInertiaRequest(r) {
		return outcomeHTML
	}

	if r.Method == http.MethodGet && serverVersion != "" {
		clientVersion := r.Header.Get(inertiaproto.HeaderXInertiaVersion)
		if clientVersion != "" && clientVersion != serverVersion {
			return outcomeConflict
		}
	}

	return outcomeJSON
}

// isInertiaRequest reports whether the request originates from the
// Inertia.js client runtime.
func isInertiaRequest(r *http.Request) bool {
	return r.Header.Get(inertiaproto.HeaderXInertia) == "true"
}

// isPartialRequest reports whether the request is a partial reload
// targeting componentName.
func isPartialRequest(r *http.Request, componentName string) bool {
	return r.Header.Get(inertiaproto.HeaderXInertiaPartialComponent) == componentName
}
