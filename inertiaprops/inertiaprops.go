// Package inertiaprops provides convenience Proper implementations.
package inertiaprops

import "go.loamy.dev/inertia"

var _ inertia.Proper = (*Map)(nil)

// Map is a map-shaped Proper for simple key-value props. Every value is
// treated as a regular prop.
//
// For lazy, deferred or always props use inertia.NewProp and friends, or
// inertia.ParseStruct.
type Map map[string]any

func (m Map) Props() []inertia.Prop {
	props := make([]inertia.Prop, 0, len(m))
	for k, v := range m {
		props = append(props, inertia.NewProp(k, v, nil))
	}

	return props
}

func (m Map) Len() int { return len(m) }
