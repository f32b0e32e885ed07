package inertiaproto

import "strings"

// Header names defined by the Inertia.js wire protocol, plus the plain
// HTTP headers the adapter touches.
const (
	HeaderXInertia                 = "X-Inertia"                   // request/response marker
	HeaderXInertiaVersion          = "X-Inertia-Version"           // client's cached asset version
	HeaderXInertiaLocation         = "X-Inertia-Location"          // server-forced full navigation
	HeaderXInertiaPartialData      = "X-Inertia-Partial-Data"      // partial reload whitelist
	HeaderXInertiaPartialExcept    = "X-Inertia-Partial-Except"    // partial reload blacklist
	HeaderXInertiaPartialComponent = "X-Inertia-Partial-Component" // partial reload target
	HeaderXInertiaReset            = "X-Inertia-Reset"             // props excluded from merging
	HeaderXInertiaErrorBag         = "X-Inertia-Error-Bag"         // validation error scope

	HeaderVary        = "Vary"
	HeaderContentType = "Content-Type"
	HeaderReferer     = "Referer"
)

const (
	ContentTypeHTML = "text/html"
	ContentTypeJSON = "application/json"
)

// SplitHeaderList splits a comma-separated header value into its trimmed
// items. An empty value yields nil.
func SplitHeaderList(v string) []string {
	if v == "" {
		return nil
	}

	items := strings.Split(v, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}

	return items
}
