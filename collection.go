package autocompare

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// SetDiff compares two sequences as unordered sets. Elements only present in
// new are reported as additions, elements only present in old as removals.
// Additions come first, each group in the order elements appear in their
// sequence. nil sequences are empty
func SetDiff[E any](name string, old, new []E) []*Difference {
	set := newSetIndexer(reflect.TypeFor[E]())
	return setDiff(name, reflect.ValueOf(old), reflect.ValueOf(new), set)
}

// ShallowMapDiff compares two maps, using equality on values. Changed keys
// come first, then added keys, then removed keys, each group in key order.
// differences are named "name.key"
func ShallowMapDiff[K comparable, V any](name string, old, new map[K]V) []*Difference {
	return shallowMapDiff(name, reflect.ValueOf(old), reflect.ValueOf(new), newScalar(reflect.TypeFor[V]()))
}

// DeepMapDiff compares two maps of structs, comparing values present under
// the same key with the value type's comparer. Differences are named
// "name.key.member". Values under added keys are compared against an absent
// value, values under removed keys are compared against an absent value
func DeepMapDiff[K comparable, V any](e *Engine, name string, old, new map[K]V) ([]*Difference, error) {
	vt := reflect.TypeFor[V]()
	st, ok := structOf(vt)
	if !ok {
		return nil, &UnsupportedTypeError{Type: vt}
	}
	c, err := e.comparerFor(st)
	if err != nil {
		return nil, err
	}
	return deepMapDiff(name, reflect.ValueOf(old), reflect.ValueOf(new), c), nil
}

// KeyedSequenceDiff pairs elements of two sequences by the key returned from
// key and compares paired elements like DeepMapDiff does. Elements keyed with
// defaultKey have no identity: those in new are reported as additions named
// "name.{New 1}", "name.{New 2}"... in the order they appear, those in old
// are never matched
func KeyedSequenceDiff[E any, K comparable](e *Engine, name string, old, new []E, key func(E) K, defaultKey K) ([]*Difference, error) {
	et := reflect.TypeFor[E]()
	st, ok := structOf(et)
	if !ok {
		return nil, &UnsupportedTypeError{Type: et}
	}
	spec := &MatchSpec{
		elemType:   et,
		keyType:    reflect.TypeFor[K](),
		keyFunc:    func(v reflect.Value) interface{} { return key(v.Interface().(E)) },
		defaultKey: defaultKey,
		hasDefault: true,
	}
	m, err := spec.bind(et)
	if err != nil {
		return nil, &ConfigurationError{Type: et, Reason: err.Error()}
	}
	c, err := e.comparerFor(st)
	if err != nil {
		return nil, err
	}
	return keyedSequenceDiff(name, reflect.ValueOf(old), reflect.ValueOf(new), m, c), nil
}

// setIndexer answers membership questions for one element type. hashable
// element types are looked up in a map, everything else is bucketed by
// hashValue and checked with reflect.DeepEqual
type setIndexer struct {
	hash bool
}

func newSetIndexer(elem reflect.Type) setIndexer {
	return setIndexer{hash: hashable(elem)}
}

type valueSet struct {
	idx     setIndexer
	items   []reflect.Value
	hashed  map[interface{}]struct{}
	buckets map[uint64][]reflect.Value
}

// collect builds the set of distinct elements of seq, keeping first-seen order
func (s setIndexer) collect(seq reflect.Value) *valueSet {
	vs := &valueSet{idx: s}
	if s.hash {
		vs.hashed = map[interface{}]struct{}{}
	} else {
		vs.buckets = map[uint64][]reflect.Value{}
	}
	for i := 0; i < seqLen(seq); i++ {
		v := seq.Index(i)
		if s.hash {
			if _, ok := vs.hashed[v.Interface()]; ok {
				continue
			}
			vs.hashed[v.Interface()] = struct{}{}
		} else {
			sum := hashValue(v)
			if vs.inBucket(sum, v) {
				continue
			}
			vs.buckets[sum] = append(vs.buckets[sum], v)
		}
		vs.items = append(vs.items, v)
	}
	return vs
}

func (vs *valueSet) has(v reflect.Value) bool {
	if vs.idx.hash {
		_, ok := vs.hashed[v.Interface()]
		return ok
	}
	return vs.inBucket(hashValue(v), v)
}

func (vs *valueSet) inBucket(sum uint64, v reflect.Value) bool {
	x := v.Interface()
	for _, item := range vs.buckets[sum] {
		if reflect.DeepEqual(item.Interface(), x) {
			return true
		}
	}
	return false
}

func setDiff(name string, old, new reflect.Value, idx setIndexer) []*Difference {
	oldSet := idx.collect(old)
	newSet := idx.collect(new)

	var diffs []*Difference
	for _, v := range newSet.items {
		if !oldSet.has(v) {
			diffs = append(diffs, &Difference{Name: name, NewValue: interfaceOf(v)})
		}
	}
	for _, v := range oldSet.items {
		if !newSet.has(v) {
			diffs = append(diffs, &Difference{Name: name, OldValue: interfaceOf(v)})
		}
	}
	return diffs
}

// entries is an ordered view of keyed values
type entries struct {
	keys []interface{}
	vals map[interface{}]reflect.Value
}

func newEntries() *entries {
	return &entries{vals: map[interface{}]reflect.Value{}}
}

func (en *entries) add(k interface{}, v reflect.Value) bool {
	if _, ok := en.vals[k]; ok {
		return false
	}
	en.keys = append(en.keys, k)
	en.vals[k] = v
	return true
}

// mapEntries lists the entries of a map value in key order
func mapEntries(m reflect.Value) *entries {
	en := newEntries()
	if !m.IsValid() || m.IsNil() {
		return en
	}
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	for _, k := range keys {
		en.add(k.Interface(), m.MapIndex(k))
	}
	return en
}

// lessKey orders map keys naturally when their kind allows, falling back to
// their printed form
func lessKey(a, b reflect.Value) bool {
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return a.Int() < b.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return a.Uint() < b.Uint()
		case reflect.Float32, reflect.Float64:
			return a.Float() < b.Float()
		case reflect.String:
			return a.String() < b.String()
		case reflect.Bool:
			return !a.Bool() && b.Bool()
		}
	}
	return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface())) < 0
}

func keyName(name string, key interface{}) string {
	return fmt.Sprintf("%s.%v", name, key)
}

func shallowMapDiff(name string, old, new reflect.Value, s scalar) []*Difference {
	oldEn := mapEntries(old)
	newEn := mapEntries(new)

	var changed, added, removed []*Difference
	for _, k := range newEn.keys {
		nv := s.value(newEn.vals[k])
		ov, ok := oldEn.vals[k]
		if !ok {
			added = append(added, &Difference{Name: keyName(name, k), NewValue: nv})
			continue
		}
		if o := s.value(ov); !s.equal(o, nv) {
			changed = append(changed, &Difference{Name: keyName(name, k), OldValue: o, NewValue: nv})
		}
	}
	for _, k := range oldEn.keys {
		if _, ok := newEn.vals[k]; !ok {
			removed = append(removed, &Difference{Name: keyName(name, k), OldValue: s.value(oldEn.vals[k])})
		}
	}

	return concat(changed, added, removed)
}

func deepMapDiff(name string, old, new reflect.Value, c *comparer) []*Difference {
	return deepKeyedDiff(name, mapEntries(old), mapEntries(new), c)
}

// deepKeyedDiff compares keyed struct values with c. Values present under
// both keys are compared in new-key order, followed by added and removed keys
func deepKeyedDiff(name string, oldEn, newEn *entries, c *comparer) []*Difference {
	var changed, added, removed []*Difference
	for _, k := range newEn.keys {
		prefix := keyName(name, k)
		nv := indirect(newEn.vals[k])
		ov, ok := oldEn.vals[k]
		if !ok {
			added = append(added, withoutOld(prefixAll(prefix, c.compare(reflect.Value{}, nv)))...)
			continue
		}
		changed = append(changed, prefixAll(prefix, c.compare(indirect(ov), nv))...)
	}
	for _, k := range oldEn.keys {
		if _, ok := newEn.vals[k]; !ok {
			removed = append(removed, removedEntry(keyName(name, k), oldEn.vals[k], c)...)
		}
	}

	return concat(changed, added, removed)
}

func keyedSequenceDiff(name string, old, new reflect.Value, m *boundMatcher, c *comparer) []*Difference {
	oldEn := newEntries()
	var oldDuplicates []keyedValue
	for i := 0; i < seqLen(old); i++ {
		v := old.Index(i)
		k := m.keyOf(v)
		if k == m.defaultKey {
			continue
		}
		if !oldEn.add(k, v) {
			oldDuplicates = append(oldDuplicates, keyedValue{k, v})
		}
	}

	newEn := newEntries()
	var appended []reflect.Value
	for i := 0; i < seqLen(new); i++ {
		v := new.Index(i)
		k := m.keyOf(v)
		if k == m.defaultKey || !newEn.add(k, v) {
			appended = append(appended, v)
		}
	}

	diffs := deepKeyedDiff(name, oldEn, newEn, c)
	for _, kv := range oldDuplicates {
		diffs = append(diffs, removedEntry(keyName(name, kv.key), kv.val, c)...)
	}
	for i, v := range appended {
		prefix := fmt.Sprintf("%s.{New %d}", name, i+1)
		diffs = append(diffs, withoutOld(prefixAll(prefix, c.compare(reflect.Value{}, indirect(v))))...)
	}
	return diffs
}

type keyedValue struct {
	key interface{}
	val reflect.Value
}

func removedEntry(prefix string, v reflect.Value, c *comparer) []*Difference {
	diffs := prefixAll(prefix, c.compare(indirect(v), reflect.Value{}))
	for _, d := range diffs {
		d.NewValue = nil
	}
	return diffs
}

// withoutOld clears the old side of freshly prefixed differences
func withoutOld(diffs []*Difference) []*Difference {
	for _, d := range diffs {
		d.OldValue = nil
	}
	return diffs
}

func concat(groups ...[]*Difference) []*Difference {
	var n int
	for _, g := range groups {
		n += len(g)
	}
	if n == 0 {
		return nil
	}
	out := make([]*Difference, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// seqLen is the length of a slice or array value, zero when absent
func seqLen(v reflect.Value) int {
	if !v.IsValid() {
		return 0
	}
	return v.Len()
}

// indirect dereferences pointers to structs. nil pointers and invalid values
// are absent
func indirect(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return reflect.Value{}
		}
		return indirect(v.Elem())
	}
	return v
}

// interfaceOf returns v as an interface value, untyped nil for absent and nil
// values so callers can test differences against nil
func interfaceOf(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

// hashable reports whether values of t can be used as map keys without
// risking a runtime panic
func hashable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return hashable(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !hashable(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}
