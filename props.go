package inertia

import (
	"cmp"
	"context"
)

var (
	_ Proper = (Props)(nil)
	_ Proper = (*Prop)(nil)
)

// DefaultDeferredGroup is the group deferred props land in when no group
// is specified.
const DefaultDeferredGroup = "default"

// propKind classifies how a prop participates in initial and partial
// renders.
type propKind int

const (
	// kindRegular props are resolved on initial loads and on partial
	// reloads, subject to the partial filters.
	kindRegular propKind = iota

	// kindAlways props are resolved on every render and ignore the
	// partial reload filters.
	kindAlways

	// kindOptional props are resolved only when a partial reload asks
	// for them explicitly.
	kindOptional

	// kindDeferred props are skipped on the initial render and fetched
	// by the client afterwards, grouped by name.
	kindDeferred
)

// Prop is a single property passed to a page component.
//
// Construct props with NewProp, NewAlways, NewOptional or NewDeferred and
// attach them to a render via WithProps.
type Prop struct {
	val        any
	fn         Lazy
	key        string
	group      string
	kind       propKind
	mergeable  bool
	concurrent bool
}

// lazy reports whether the prop's value is resolved on demand rather
// than eagerly on the initial render.
func (p Prop) lazy() bool { return p.kind == kindOptional || p.kind == kindDeferred }

// filterable reports whether the partial reload filters apply to the prop.
func (p Prop) filterable() bool { return p.kind != kindAlways }

// resolve produces the prop's value, calling the lazy function if one is
// attached.
func (p Prop) resolve(ctx context.Context) (any, error) {
	if p.fn != nil {
		v, err := p.fn.Value(ctx)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return v, nil
	}

	return p.val, nil
}

func (p Prop) Props() []Prop { return []Prop{p} }
func (p Prop) Len() int      { return 1 }

type (
	// Lazy is a prop value resolved on demand rather than eagerly.
	Lazy interface {
		// Value resolves the prop's value. The result must be
		// JSON-serializable.
		Value(context.Context) (any, error)
	}

	// LazyFunc adapts an ordinary function to the Lazy interface.
	LazyFunc func(context.Context) (any, error)
)

// Value calls fn.
func (fn LazyFunc) Value(ctx context.Context) (any, error) { return fn(ctx) }

// PropOptions configures a regular prop.
type PropOptions struct {
	// Merge makes the client merge the value into the existing
	// client-side value on partial reloads instead of replacing it.
	Merge bool
}

// NewProp creates a regular prop, included on initial loads and partial
// reloads. If opts is nil, defaults are used.
func NewProp(key string, val any, opts *PropOptions) Prop {
	//nolint:exhaustruct
	prop := Prop{kind: kindRegular, key: key, val: val}

	if opts != nil {
		prop.mergeable = opts.Merge
	}

	return prop
}

// NewAlways creates a prop included in every response, ignoring the
// X-Inertia-Partial-Data and X-Inertia-Partial-Except filters. Use it for
// data that must never go missing, such as auth state.
func NewAlways(key string, val any) Prop {
	//nolint:exhaustruct
	return Prop{kind: kindAlways, key: key, val: val}
}

// NewOptional creates a lazily evaluated prop resolved only when a partial
// reload requests it by name.
func NewOptional(key string, fn Lazy) Prop {
	//nolint:exhaustruct
	return Prop{kind: kindOptional, key: key, fn: fn}
}

// DeferredOptions configures a deferred prop.
type DeferredOptions struct {
	// Group assigns the prop to a named deferred group. Props sharing a
	// group are fetched together by the client. Defaults to
	// DefaultDeferredGroup.
	Group string

	// Merge makes the client merge rather than replace the value.
	Merge bool

	// Concurrent allows the prop to be resolved in parallel with other
	// concurrent props of the same request, up to the configured
	// concurrency limit.
	Concurrent bool
}

// NewDeferred creates a prop that is skipped on the initial render and
// fetched by the client afterwards. If opts is nil, defaults are used.
func NewDeferred(key string, fn Lazy, opts *DeferredOptions) Prop {
	//nolint:exhaustruct
	prop := Prop{
		kind:  kindDeferred,
		key:   key,
		fn:    fn,
		group: DefaultDeferredGroup,
	}

	if opts != nil {
		prop.group = cmp.Or(opts.Group, DefaultDeferredGroup)
		prop.mergeable = opts.Merge
		prop.concurrent = opts.Concurrent
	}

	return prop
}

// Proper is a collection of props attachable to a render.
// Implemented by Prop, Props and inertiaprops.Map.
type Proper interface {
	// Props returns the underlying prop slice.
	Props() []Prop

	// Len returns the number of props in the collection.
	Len() int
}

// Props is a collection of props.
type Props []Prop

func (p Props) Len() int      { return len(p) }
func (p Props) Props() []Prop { return p }
