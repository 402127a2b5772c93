package autocompare

import (
	"math"
	"reflect"
	"testing"
)

func TestHashValue(t *testing.T) {
	type pair struct {
		Name string
		Tags []string
		Meta map[string]int
	}

	same := []struct {
		description string
		a, b        interface{}
	}{
		{"equal structs", pair{"a", []string{"x"}, map[string]int{"k": 1, "j": 2}}, pair{"a", []string{"x"}, map[string]int{"j": 2, "k": 1}}},
		{"signed zero", 0.0, math.Copysign(0, -1)},
		{"pointees", &pair{Name: "a"}, &pair{Name: "a"}},
		{"nil pointers", (*pair)(nil), (*pair)(nil)},
	}
	for _, c := range same {
		t.Run(c.description, func(t *testing.T) {
			if a, b := hashValue(reflect.ValueOf(c.a)), hashValue(reflect.ValueOf(c.b)); a != b {
				t.Errorf("expected equal sums, got %x and %x", a, b)
			}
		})
	}

	differ := []struct {
		description string
		a, b        interface{}
	}{
		{"field values", pair{Name: "a"}, pair{Name: "b"}},
		{"slice order", []string{"a", "b"}, []string{"b", "a"}},
		{"element boundary", []string{"ab", ""}, []string{"a", "b"}},
		{"dynamic type", []interface{}{1}, []interface{}{int64(1)}},
		{"map values", map[string]int{"k": 1}, map[string]int{"k": 2}},
	}
	for _, c := range differ {
		t.Run(c.description, func(t *testing.T) {
			if a, b := hashValue(reflect.ValueOf(c.a)), hashValue(reflect.ValueOf(c.b)); a == b {
				t.Errorf("expected distinct sums, got %x for both", a)
			}
		})
	}
}

func TestHashValueCycle(t *testing.T) {
	n := &Node{Name: "loop"}
	n.Next = n
	// terminates
	hashValue(reflect.ValueOf(n))
}
