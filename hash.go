package autocompare

import (
	"hash"
	"hash/fnv"
	"reflect"
	"sort"
	"strconv"
)

// NewHash returns a new hash interface, wrapped in a function for easy
// hash algorithm switching, package consumers can override NewHash
// with their own desired hash.Hash64 implementation if the value space is
// particularly large. default is 64-bit FNV 1 for fast, cheap hashing
var NewHash = func() hash.Hash64 {
	return fnv.New64()
}

// maxHashDepth bounds how far hashValue follows pointers, values past this
// depth contribute nothing to the sum
const maxHashDepth = 32

// hashValue sums the content of v. values that are reflect.DeepEqual always
// hash the same, unequal values usually don't
func hashValue(v reflect.Value) uint64 {
	h := NewHash()
	writeValue(h, v, 0)
	return h.Sum64()
}

func writeValue(h hash.Hash64, v reflect.Value, depth int) {
	if depth > maxHashDepth {
		return
	}
	if !v.IsValid() {
		h.Write([]byte("null"))
		return
	}

	h.Write([]byte(v.Type().String()))
	switch v.Kind() {
	case reflect.Bool:
		h.Write([]byte(strconv.FormatBool(v.Bool())))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		h.Write([]byte(strconv.FormatInt(v.Int(), 10)))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		h.Write([]byte(strconv.FormatUint(v.Uint(), 10)))
	case reflect.Float32, reflect.Float64:
		writeFloat(h, v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		writeFloat(h, real(c))
		writeFloat(h, imag(c))
	case reflect.String:
		h.Write([]byte(strconv.Quote(v.String())))
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			h.Write([]byte("null"))
			return
		}
		writeValue(h, v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		h.Write([]byte("["))
		for i := 0; i < v.Len(); i++ {
			writeValue(h, v.Index(i), depth+1)
			h.Write([]byte(","))
		}
		h.Write([]byte("]"))
	case reflect.Map:
		// map iteration order is random, sum entries in sorted order
		sums := make([]uint64, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			eh := NewHash()
			writeValue(eh, iter.Key(), depth+1)
			writeValue(eh, iter.Value(), depth+1)
			sums = append(sums, eh.Sum64())
		}
		sort.Slice(sums, func(i, j int) bool { return sums[i] < sums[j] })
		h.Write([]byte("{"))
		for _, s := range sums {
			h.Write([]byte(strconv.FormatUint(s, 16)))
			h.Write([]byte(","))
		}
		h.Write([]byte("}"))
	case reflect.Struct:
		h.Write([]byte("{"))
		for i := 0; i < v.NumField(); i++ {
			writeValue(h, v.Field(i), depth+1)
			h.Write([]byte(","))
		}
		h.Write([]byte("}"))
	}
	// funcs and channels only contribute their type
}

func writeFloat(h hash.Hash64, f float64) {
	if f == 0 {
		// 0 and -0 compare equal
		f = 0
	}
	h.Write([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
}
