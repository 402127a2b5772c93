package autocompare

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// tagName is the struct tag read when building a comparer
//
//	Secret string  `compare:"-"`
//	Orders []Order `compare:"key=ID,default=-1"`
const tagName = "compare"

// TypeConfiguration describes how a single struct type is compared: which
// members are skipped and which sequence members are matched by key
type TypeConfiguration struct {
	typ     reflect.Type
	ignored map[string]bool
	matches map[string]*MatchSpec
}

func newTypeConfiguration(t reflect.Type) *TypeConfiguration {
	return &TypeConfiguration{
		typ:     t,
		ignored: map[string]bool{},
		matches: map[string]*MatchSpec{},
	}
}

// Type returns the configured type
func (c *TypeConfiguration) Type() reflect.Type { return c.typ }

// IsIgnored reports whether member is excluded from comparison
func (c *TypeConfiguration) IsIgnored(member string) bool { return c.ignored[member] }

// MatchSpec returns the matcher registered for member, nil if there is none
func (c *TypeConfiguration) MatchSpec(member string) *MatchSpec { return c.matches[member] }

// clone copies c so a build works from a stable view of the configuration
func (c *TypeConfiguration) clone() *TypeConfiguration {
	cp := newTypeConfiguration(c.typ)
	for k, v := range c.ignored {
		cp.ignored[k] = v
	}
	for k, v := range c.matches {
		cp.matches[k] = v
	}
	return cp
}

// MatchSpec describes how elements of a sequence member are paired between
// the old and new values. Elements whose key equals the default key have no
// identity and are always treated as appended
type MatchSpec struct {
	// set for function matchers
	elemType reflect.Type
	keyType  reflect.Type
	keyFunc  func(reflect.Value) interface{}

	// set for field matchers, resolved against the element type at build time
	keyField string

	defaultKey  interface{}
	hasDefault  bool
	defaultText string
	hasText     bool
}

// boundMatcher is a MatchSpec resolved against a concrete element type
type boundMatcher struct {
	elemType   reflect.Type
	keyType    reflect.Type
	keyOf      func(reflect.Value) interface{}
	defaultKey interface{}
}

// bind resolves the spec for sequences of elem
func (m *MatchSpec) bind(elem reflect.Type) (*boundMatcher, error) {
	if m.keyFunc != nil {
		if m.elemType != elem {
			return nil, fmt.Errorf("key selector accepts %s, sequence holds %s", m.elemType, elem)
		}
		return &boundMatcher{
			elemType:   elem,
			keyType:    m.keyType,
			keyOf:      nilSafeKey(elem, m.keyFunc, m.defaultKey),
			defaultKey: m.defaultKey,
		}, nil
	}

	st := elem
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("key field %q requires struct elements, got %s", m.keyField, elem)
	}
	f, ok := st.FieldByName(m.keyField)
	if !ok || !f.IsExported() {
		return nil, fmt.Errorf("element type %s has no exported field %q", st, m.keyField)
	}
	if !f.Type.Comparable() {
		return nil, fmt.Errorf("key field %q of type %s is not comparable", m.keyField, f.Type)
	}

	def, err := m.resolveDefault(f.Type)
	if err != nil {
		return nil, err
	}

	index := f.Index
	keyOf := func(v reflect.Value) interface{} {
		return v.FieldByIndex(index).Interface()
	}
	if elem.Kind() == reflect.Ptr {
		keyOf = func(v reflect.Value) interface{} {
			return v.Elem().FieldByIndex(index).Interface()
		}
	}

	return &boundMatcher{
		elemType:   elem,
		keyType:    f.Type,
		keyOf:      nilSafeKey(elem, keyOf, def),
		defaultKey: def,
	}, nil
}

// resolveDefault produces the sentinel key for a field matcher as a value of
// the key field's type
func (m *MatchSpec) resolveDefault(t reflect.Type) (interface{}, error) {
	switch {
	case m.hasDefault:
		v := reflect.ValueOf(m.defaultKey)
		if !v.IsValid() {
			return reflect.Zero(t).Interface(), nil
		}
		if v.Type().AssignableTo(t) {
			return v.Interface(), nil
		}
		if v.Type().ConvertibleTo(t) {
			return v.Convert(t).Interface(), nil
		}
		return nil, fmt.Errorf("default key %v (%s) cannot be used as %s", m.defaultKey, v.Type(), t)
	case m.hasText:
		ptr := reflect.New(t)
		if err := yaml.Unmarshal([]byte(m.defaultText), ptr.Interface()); err != nil {
			return nil, fmt.Errorf("parsing default key %q as %s: %w", m.defaultText, t, err)
		}
		return ptr.Elem().Interface(), nil
	default:
		return reflect.Zero(t).Interface(), nil
	}
}

// nilSafeKey reports nil pointer elements as carrying the default key so
// selectors never see a nil element
func nilSafeKey(elem reflect.Type, keyOf func(reflect.Value) interface{}, def interface{}) func(reflect.Value) interface{} {
	if elem.Kind() != reflect.Ptr && elem.Kind() != reflect.Interface {
		return keyOf
	}
	return func(v reflect.Value) interface{} {
		if v.IsNil() {
			return def
		}
		return keyOf(v)
	}
}

// parseTag reads the compare struct tag of a field
func parseTag(f reflect.StructField) (ignore bool, spec *MatchSpec, err error) {
	tag, ok := f.Tag.Lookup(tagName)
	if !ok || tag == "" {
		return false, nil, nil
	}
	if tag == "-" {
		return true, nil, nil
	}

	for _, part := range strings.Split(tag, ",") {
		k, v, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch k {
		case "key":
			if spec == nil {
				spec = &MatchSpec{}
			}
			spec.keyField = v
		case "default":
			if spec == nil {
				spec = &MatchSpec{}
			}
			spec.defaultText = v
			spec.hasText = true
		default:
			return false, nil, fmt.Errorf("unknown %s tag option %q", tagName, k)
		}
	}
	if spec != nil && spec.keyField == "" {
		return false, nil, fmt.Errorf("%s tag sets a default without a key field", tagName)
	}
	return false, spec, nil
}

// ConfigBuilder is a fluent handle on the configuration of T
type ConfigBuilder[T any] struct {
	engine *Engine
	typ    reflect.Type
}

// Configure returns a builder for T's configuration, creating it if needed.
// Repeated calls for the same type augment the same configuration. It has no
// effect on a comparer that has already been built
func Configure[T any](e *Engine) *ConfigBuilder[T] {
	t := reflect.TypeFor[T]()
	e.configure(t, func(*TypeConfiguration) {})
	return &ConfigBuilder[T]{engine: e, typ: t}
}

// Ignore excludes members from comparison
func (b *ConfigBuilder[T]) Ignore(members ...string) *ConfigBuilder[T] {
	b.engine.configure(b.typ, func(c *TypeConfiguration) {
		for _, m := range members {
			c.ignored[m] = true
		}
	})
	return b
}

// MatchUsingField matches elements of a sequence member by the value of
// their keyField. the zero value of the key field is the default key
func (b *ConfigBuilder[T]) MatchUsingField(member, keyField string) *ConfigBuilder[T] {
	return b.match(member, &MatchSpec{keyField: keyField})
}

// MatchUsingFieldDefault is MatchUsingField with an explicit default key
func (b *ConfigBuilder[T]) MatchUsingFieldDefault(member, keyField string, defaultKey interface{}) *ConfigBuilder[T] {
	return b.match(member, &MatchSpec{keyField: keyField, defaultKey: defaultKey, hasDefault: true})
}

func (b *ConfigBuilder[T]) match(member string, spec *MatchSpec) *ConfigBuilder[T] {
	b.engine.configure(b.typ, func(c *TypeConfiguration) {
		c.matches[member] = spec
	})
	return b
}

// MatchUsing matches elements of the sequence member by the key that key
// returns. Elements keyed with the zero value of K are always new
func MatchUsing[T, E any, K comparable](b *ConfigBuilder[T], member string, key func(E) K) *ConfigBuilder[T] {
	var zero K
	return MatchUsingDefault(b, member, key, zero)
}

// MatchUsingDefault is MatchUsing with an explicit default key
func MatchUsingDefault[T, E any, K comparable](b *ConfigBuilder[T], member string, key func(E) K, defaultKey K) *ConfigBuilder[T] {
	return b.match(member, &MatchSpec{
		elemType: reflect.TypeFor[E](),
		keyType:  reflect.TypeFor[K](),
		keyFunc: func(v reflect.Value) interface{} {
			return key(v.Interface().(E))
		},
		defaultKey: defaultKey,
		hasDefault: true,
	})
}
