// Package autocompare computes field-level difference reports between two
// instances of the same Go struct type, without hand-written comparison code
// per type.
//
// A type is analyzed once: every exported field is classified as a simple
// value, a nested struct, a map or a sequence, and a comparison function is
// assembled from the matching strategies. The resulting comparer is cached by
// the Engine and reused for every later comparison of that type:
//
//	e := autocompare.New()
//	diffs, err := autocompare.Compare(e, oldConsumer, newConsumer)
//	// [{Age 2 3} {Address.City Charlotte Belmont}]
//
// Each Difference is named by a dotted path built bottom-up as nested
// comparisons return to their caller: "Address.City" for a nested struct,
// "Accounts.savings.Balance" for a map of structs, "Orders.{New 1}.Total" for
// an element appended to a keyed sequence.
//
// Sequences are compared as unordered sets unless a matcher is configured.
// A matcher extracts a stable key from each element, turning the sequence into
// a keyed map that is diffed element by element. Elements carrying the
// matcher's default key have no identity yet and are always reported as new:
//
//	cfg := autocompare.Configure[Consumer](e).Ignore("DateOfBirth")
//	autocompare.MatchUsing(cfg, "Orders", func(o *Order) int { return o.ID })
//
// The same configuration can be declared with struct tags
// (`compare:"-"`, `compare:"key=ID,default=0"`) or loaded from YAML with
// LoadConfig.
//
// Configuration must precede the first comparison of a type: the comparer is
// derived from the configuration present when it is built and is never
// rebuilt afterwards.
package autocompare
