package inertia

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Struct tags understood by ParseStruct.
const (
	TagInertia      = "inertia"
	TagInertiaGroup = "inertiagroup"
)

const (
	tagKindOptional = "optional"
	tagKindDeferred = "deferred"
	tagKindAlways   = "always"

	tagDiscard    = "-"
	tagOmitEmpty  = "omitempty"
	tagMergeable  = "mergeable"
	tagConcurrent = "concurrent"
)

var lazyType = reflect.TypeFor[Lazy]() //nolint:gochecknoglobals

// ParseStruct converts a tagged struct into a Props collection.
// It expects a pointer to a struct with JSON-encodable fields.
//
// Only fields tagged with "inertia" participate; everything else is
// ignored.
//
// Tag format: `inertia:"name[,kind][,mergeable][,concurrent][,omitempty]"`
//
//   - name: prop key sent to the client (required; "-" skips the field)
//   - kind: "optional", "deferred", "always", or empty for a regular prop
//   - "mergeable": the client merges instead of replacing the value
//   - "concurrent": resolve in parallel (deferred props only)
//   - "omitempty": skip zero-value fields
//
// Deferred props may additionally carry `inertiagroup:"name"` to assign a
// deferred group; using it on any other kind is an error. Optional and
// deferred fields must hold a Lazy or LazyFunc value.
//
// Example:
//
//	type PageProps struct {
//	    UserID    int      `inertia:"user_id,always"`
//	    Posts     []Post   `inertia:"posts"`
//	    Analytics LazyFunc `inertia:"analytics,deferred,concurrent" inertiagroup:"metrics"`
//	    Extra     LazyFunc `inertia:"extra,optional,omitempty"`
//	}
func ParseStruct(v any) (Props, error) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return nil, errors.New("inertia: expected a struct pointer")
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return nil, errors.New("inertia: expected a struct pointer")
	}

	typ := val.Type()
	props := make(Props, 0, typ.NumField())

	for i := range typ.NumField() {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(TagInertia)
		if tag == "" {
			continue
		}

		prop, ok, err := parseField(field, fieldVal, tag)
		if err != nil {
			return nil, err
		}

		if ok {
			props = append(props, prop)
		}
	}

	return props, nil
}

//nolint:cyclop
func parseField(field reflect.StructField, fieldVal reflect.Value, tag string) (Prop, bool, error) {
	var prop Prop

	parts := strings.Split(tag, ",")

	name := cmp.Or(parts[0], field.Name)
	if name == tagDiscard {
		return prop, false, nil
	}

	kind := ""
	if len(parts) > 1 {
		kind = parts[1]
	}

	flags := parts[1:]
	mergeable := slices.Contains(flags, tagMergeable)
	concurrent := slices.Contains(flags, tagConcurrent)

	if slices.Contains(flags, tagOmitEmpty) && fieldVal.IsZero() {
		return prop, false, nil
	}

	group := field.Tag.Get(TagInertiaGroup)
	if group != "" && kind != tagKindDeferred {
		return prop, false, errors.New("inertia: group tag is only valid on deferred fields")
	}

	switch kind {
	case tagKindOptional:
		fn, err := toLazy(fieldVal)
		if err != nil {
			return prop, false, err
		}

		prop = NewOptional(name, fn)
	case tagKindDeferred:
		fn, err := toLazy(fieldVal)
		if err != nil {
			return prop, false, err
		}

		prop = NewDeferred(name, fn, &DeferredOptions{
			Group:      cmp.Or(group, DefaultDeferredGroup),
			Merge:      mergeable,
			Concurrent: concurrent,
		})
	case tagKindAlways:
		prop = NewAlways(name, fieldVal.Interface())
	case "", tagMergeable, tagConcurrent, tagOmitEmpty:
		prop = NewProp(name, fieldVal.Interface(), &PropOptions{Merge: mergeable})
	default:
		return prop, false, fmt.Errorf("inertia: unknown prop kind %q", kind)
	}

	return prop, true, nil
}

// toLazy converts a reflect.Value into a Lazy if the underlying value is
// Lazy-convertible.
func toLazy(v reflect.Value) (Lazy, error) {
	val := v.Interface()

	if v.Kind() == reflect.Interface && v.Type().Implements(lazyType) {
		lazy, ok := val.(Lazy)
		if !ok {
			return nil, errors.New("inertia: invalid lazy value")
		}

		return lazy, nil
	}

	if v.Kind() == reflect.Func {
		fn, ok := val.(LazyFunc)
		if !ok {
			return nil, errors.New("inertia: invalid lazy function")
		}

		return fn, nil
	}

	return nil, errors.New("inertia: invalid lazy value")
}
