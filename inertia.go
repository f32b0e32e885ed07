// Package inertia implements the server side of the Inertia.js protocol.
//
// The package decides, per request, whether to answer with a full HTML
// document carrying the page object in its mount element, a JSON page
// payload for client-side navigation, or a 409 version conflict forcing a
// full reload. It builds on the standard "net/http" and "html/template"
// packages: install the Middleware, then call Render from any handler.
//
// Protocol reference: https://inertiajs.com/the-protocol
package inertia

import "go.inout.gg/foundations/debug"

//nolint:gochecknoglobals
var d = debug.Debuglog("inertia")
