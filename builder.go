package autocompare

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
)

// comparer is the compiled form of a struct type: a fixed list of member
// comparisons resolved once and walked on every call. comparers are
// immutable once published and safe for concurrent use
type comparer struct {
	typ     reflect.Type
	members []member
}

type member struct {
	name  string
	index int
	diff  diffFunc
}

// diffFunc compares the old and new value of one member. either side is the
// invalid reflect.Value when its owner is absent
type diffFunc func(name string, old, new reflect.Value) []*Difference

// compare walks every member of two values of c.typ. old and new must be
// struct values or invalid for absent
func (c *comparer) compare(old, new reflect.Value) []*Difference {
	if !old.IsValid() && !new.IsValid() {
		return nil
	}
	var diffs []*Difference
	for _, m := range c.members {
		diffs = append(diffs, m.diff(m.name, fieldOf(old, m.index), fieldOf(new, m.index))...)
	}
	return diffs
}

func fieldOf(v reflect.Value, i int) reflect.Value {
	if !v.IsValid() {
		return v
	}
	return v.Field(i)
}

// memberKind is the category a member's static type is compared as
type memberKind int

const (
	kindUnsupported memberKind = iota
	kindSimple
	kindNested
	kindMap
	kindSequence
)

func classify(t reflect.Type) memberKind {
	if isSimple(t) {
		return kindSimple
	}
	switch t.Kind() {
	case reflect.Struct:
		return kindNested
	case reflect.Ptr:
		if t.Elem().Kind() == reflect.Struct {
			return kindNested
		}
	case reflect.Map:
		return kindMap
	case reflect.Slice, reflect.Array:
		return kindSequence
	}
	return kindUnsupported
}

// isSimple reports whether t is compared by equality as a single value
func isSimple(t reflect.Type) bool {
	if hasEqualMethod(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Interface:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Array:
		return t.Elem().Kind() != reflect.Ptr && isSimple(t.Elem())
	case reflect.Ptr:
		return t.Elem().Kind() != reflect.Ptr && isSimple(t.Elem())
	case reflect.Struct:
		return isOpaque(t)
	}
	return false
}

// isOpaque reports whether a struct hides all of its state, like netip.Addr
// or big.Int. opaque structs are compared as one value
func isOpaque(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return false
		}
	}
	return true
}

// hasInterface reports whether comparing values of t with == could reach an
// interface value and panic on an uncomparable dynamic type
func hasInterface(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Array:
		return hasInterface(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasInterface(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// hasEqualMethod detects types like time.Time that define their own equality
// as func (T) Equal(T) bool
func hasEqualMethod(t reflect.Type) bool {
	m, ok := t.MethodByName("Equal")
	if !ok {
		return false
	}
	mt := m.Type
	return mt.NumIn() == 2 && mt.In(1) == t && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Bool
}

// structOf returns the struct type a nested member or collection element
// is compared with
func structOf(t reflect.Type) (reflect.Type, bool) {
	if isSimple(t) {
		return nil, false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	return t, true
}

// scalar compares simple values. value extracts the reported value of a
// member, nil when absent, equal compares two extracted values
type scalar struct {
	value func(reflect.Value) interface{}
	eq    func(a, b interface{}) bool
}

func newScalar(t reflect.Type) scalar {
	if t.Kind() == reflect.Ptr && !hasEqualMethod(t) {
		inner := newScalar(t.Elem())
		return scalar{
			value: func(v reflect.Value) interface{} {
				if !v.IsValid() || v.IsNil() {
					return nil
				}
				return inner.value(v.Elem())
			},
			eq: inner.eq,
		}
	}
	return scalar{value: interfaceOf, eq: equalFunc(t)}
}

// equal treats two absent values as equal, and an absent value as different
// from any present one
func (s scalar) equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return s.eq(a, b)
}

func (s scalar) diff(name string, old, new reflect.Value) []*Difference {
	o, n := s.value(old), s.value(new)
	if s.equal(o, n) {
		return nil
	}
	return []*Difference{{Name: name, OldValue: o, NewValue: n}}
}

func equalFunc(t reflect.Type) func(a, b interface{}) bool {
	if hasEqualMethod(t) {
		m, _ := t.MethodByName("Equal")
		return func(a, b interface{}) bool {
			return m.Func.Call([]reflect.Value{reflect.ValueOf(a), reflect.ValueOf(b)})[0].Bool()
		}
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return func(a, b interface{}) bool {
			return floatEqual(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
		}
	case reflect.Complex64, reflect.Complex128:
		return func(a, b interface{}) bool {
			x, y := reflect.ValueOf(a).Complex(), reflect.ValueOf(b).Complex()
			return floatEqual(real(x), real(y)) && floatEqual(imag(x), imag(y))
		}
	case reflect.Array:
		elemEq := equalFunc(t.Elem())
		return func(a, b interface{}) bool {
			x, y := reflect.ValueOf(a), reflect.ValueOf(b)
			for i := 0; i < x.Len(); i++ {
				if !elemEq(x.Index(i).Interface(), y.Index(i).Interface()) {
					return false
				}
			}
			return true
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return func(a, b interface{}) bool {
				return bytes.Equal(reflect.ValueOf(a).Bytes(), reflect.ValueOf(b).Bytes())
			}
		}
	case reflect.Interface:
		return reflect.DeepEqual
	}
	if hashable(t) || (t.Comparable() && !hasInterface(t)) {
		return func(a, b interface{}) bool { return a == b }
	}
	return reflect.DeepEqual
}

// floatEqual is == except that NaN equals NaN, so a value always equals itself
func floatEqual(a, b float64) bool {
	return a == b || (a != a && b != b)
}

// strategy is a collection diff algorithm that needs concrete type arguments
// bound before it can run
type strategy int

const (
	strategySet strategy = iota
	strategyShallowMap
	strategyDeepMap
	strategyKeyedSequence
)

// strategyArity is the number of type arguments each strategy is bound with:
// the element type for sets, key and value types for maps, element and key
// types for keyed sequences
var strategyArity = [...]int{
	strategySet:           1,
	strategyShallowMap:    2,
	strategyDeepMap:       2,
	strategyKeyedSequence: 2,
}

func (s strategy) String() string {
	switch s {
	case strategySet:
		return "set"
	case strategyShallowMap:
		return "shallow map"
	case strategyDeepMap:
		return "deep map"
	case strategyKeyedSequence:
		return "keyed sequence"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// builder compiles comparers. A builder is a single build session: every
// struct type reached from the requested type that isn't already published
// is compiled here, and registered before its members are resolved so
// recursive types terminate
type builder struct {
	engine  *Engine
	session map[reflect.Type]*comparer
}

func newBuilder(e *Engine) *builder {
	return &builder{engine: e, session: map[reflect.Type]*comparer{}}
}

func (b *builder) comparerFor(t reflect.Type) (*comparer, error) {
	if c, ok := b.engine.lookup(t); ok {
		return c, nil
	}
	if c, ok := b.session[t]; ok {
		return c, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Type: t}
	}

	c := &comparer{typ: t}
	b.session[t] = c
	if err := b.build(c, b.engine.configFor(t)); err != nil {
		delete(b.session, t)
		return nil, err
	}
	return c, nil
}

func (b *builder) build(c *comparer, cfg *TypeConfiguration) error {
	t := c.typ
	exported := map[string]bool{}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		exported[f.Name] = true

		tagIgnore, tagSpec, err := parseTag(f)
		if err != nil {
			return &ConfigurationError{Type: t, Member: f.Name, Reason: err.Error()}
		}
		if cfg.IsIgnored(f.Name) || tagIgnore {
			continue
		}
		spec := cfg.MatchSpec(f.Name)
		if spec == nil {
			spec = tagSpec
		}

		diff, err := b.member(t, f, spec)
		if err != nil {
			return err
		}
		c.members = append(c.members, member{name: f.Name, index: i, diff: diff})
	}

	for _, name := range configuredMembers(cfg) {
		if !exported[name] {
			return &ConfigurationError{Type: t, Member: name, Reason: "no exported member with this name"}
		}
	}
	return nil
}

// configuredMembers lists every member name the configuration refers to
func configuredMembers(cfg *TypeConfiguration) []string {
	names := make([]string, 0, len(cfg.ignored)+len(cfg.matches))
	for name := range cfg.ignored {
		names = append(names, name)
	}
	for name := range cfg.matches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *builder) member(owner reflect.Type, f reflect.StructField, spec *MatchSpec) (diffFunc, error) {
	ft := f.Type
	kind := classify(ft)

	if spec != nil && kind != kindSequence {
		return nil, &ConfigurationError{
			Type:   owner,
			Member: f.Name,
			Reason: fmt.Sprintf("matcher registered on non-sequence member of type %s", ft),
		}
	}

	switch kind {
	case kindSimple:
		return newScalar(ft).diff, nil
	case kindNested:
		st, _ := structOf(ft)
		c, err := b.comparerFor(st)
		if err != nil {
			return nil, fmt.Errorf("member %s.%s: %w", owner, f.Name, err)
		}
		return func(name string, old, new reflect.Value) []*Difference {
			return prefixAll(name, c.compare(indirect(old), indirect(new)))
		}, nil
	case kindMap:
		s := strategyShallowMap
		if _, ok := structOf(ft.Elem()); ok {
			s = strategyDeepMap
		}
		return b.bind(owner, f.Name, s, nil, ft.Key(), ft.Elem())
	case kindSequence:
		if spec == nil {
			return b.bind(owner, f.Name, strategySet, nil, ft.Elem())
		}
		m, err := spec.bind(ft.Elem())
		if err != nil {
			return nil, &ConfigurationError{Type: owner, Member: f.Name, Reason: err.Error()}
		}
		return b.bind(owner, f.Name, strategyKeyedSequence, m, m.elemType, m.keyType)
	}

	return nil, &UnsupportedTypeError{Type: owner, Member: f.Name, MemberType: ft}
}

// bind instantiates a collection strategy for concrete type arguments,
// returning a diffFunc closed over everything the strategy needs at compare
// time
func (b *builder) bind(owner reflect.Type, name string, s strategy, m *boundMatcher, types ...reflect.Type) (diffFunc, error) {
	if want := strategyArity[s]; len(types) != want {
		return nil, &ConfigurationError{
			Type:   owner,
			Member: name,
			Reason: fmt.Sprintf("%s strategy requires exactly %d type argument(s), got %d", s, want, len(types)),
		}
	}

	switch s {
	case strategySet:
		idx := newSetIndexer(types[0])
		return func(name string, old, new reflect.Value) []*Difference {
			return setDiff(name, old, new, idx)
		}, nil

	case strategyShallowMap:
		sc := newScalar(types[1])
		return func(name string, old, new reflect.Value) []*Difference {
			return shallowMapDiff(name, old, new, sc)
		}, nil

	case strategyDeepMap:
		st, _ := structOf(types[1])
		c, err := b.comparerFor(st)
		if err != nil {
			return nil, fmt.Errorf("member %s.%s: %w", owner, name, err)
		}
		return func(name string, old, new reflect.Value) []*Difference {
			return deepMapDiff(name, old, new, c)
		}, nil

	case strategyKeyedSequence:
		st, ok := structOf(types[0])
		if !ok {
			return nil, &ConfigurationError{
				Type:   owner,
				Member: name,
				Reason: fmt.Sprintf("keyed sequences require struct elements, got %s", types[0]),
			}
		}
		c, err := b.comparerFor(st)
		if err != nil {
			return nil, fmt.Errorf("member %s.%s: %w", owner, name, err)
		}
		return func(name string, old, new reflect.Value) []*Difference {
			return keyedSequenceDiff(name, old, new, m, c)
		}, nil
	}

	return nil, &ConfigurationError{Type: owner, Member: name, Reason: fmt.Sprintf("unknown %s", s)}
}
