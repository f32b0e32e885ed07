// Package inertiaproto holds the wire-level vocabulary of the Inertia.js
// protocol: the page object, the protocol headers and the redirect rules.
//
// It exists as a separate package so that both the root inertia package and
// its internal collaborators can share these definitions without an import
// cycle.
package inertiaproto

// Page is the payload describing a client-side page component.
//
// It is either serialized as the JSON response body, or JSON-encoded into
// the data-page attribute of the mount element on first load. The field
// names follow the protocol and must not change.
type Page struct {
	Props          map[string]any      `json:"props"`
	DeferredProps  map[string][]string `json:"deferredProps,omitempty"`
	Component      string              `json:"component"`
	URL            string              `json:"url"`
	Version        string              `json:"version"`
	MergeProps     []string            `json:"mergeProps,omitempty"`
	EncryptHistory bool                `json:"encryptHistory"`
	ClearHistory   bool                `json:"clearHistory"`
}
