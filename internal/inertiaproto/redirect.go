package inertiaproto

import (
	"net/http"

	"go.inout.gg/foundations/debug"
)

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia/proto")

// Redirect sends a redirect the Inertia client runtime can follow.
//
// GET requests are redirected with 302; everything else uses 303 so that
// the follow-up request is a GET, as required by
// https://inertiajs.com/redirects
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	statusCode := http.StatusSeeOther
	if r.Method == http.MethodGet {
		statusCode = http.StatusFound
	}

	d("redirecting to %s (%d)", url, statusCode)

	http.Redirect(w, r, url, statusCode)
}
