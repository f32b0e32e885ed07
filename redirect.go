package inertia

import (
	"net/http"

	"go.loamy.dev/inertia/internal/inertiaproto"
)

// Redirect sends a redirect to another page within the Inertia app.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	inertiaproto.Redirect(w, r, url)
}

// Location redirects to a URL outside of the Inertia app.
//
// For Inertia requests it responds with 409 Conflict and the
// X-Inertia-Location header; the client runtime intercepts the pair and
// performs a full browser navigation. Regular requests get a plain HTTP
// redirect.
func Location(w http.ResponseWriter, r *http.Request, url string) {
	if isInertiaRequest(r) {
		h := w.Header()

		h.Del(inertiaproto.HeaderVary)
		h.Del(inertiaproto.HeaderXInertia)
		h.Set(inertiaproto.HeaderXInertiaLocation, url)
		w.WriteHeader(http.StatusConflict)

		return
	}

	inertiaproto.Redirect(w, r, url)
}
