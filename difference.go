package autocompare

import (
	"fmt"
)

// Operation classifies a Difference
type Operation string

const (
	// DTInsert marks a difference with only a new value
	DTInsert = Operation("+")
	// DTDelete marks a difference with only an old value
	DTDelete = Operation("-")
	// DTUpdate marks a difference where both sides are present
	DTUpdate = Operation("~")
)

// Difference is a single reported change between an old and a new value
type Difference struct {
	// Name is the dotted path to the changed member, eg: "Address.City"
	Name string
	// OldValue is the value before the change, nil if the member was added
	OldValue interface{}
	// NewValue is the value after the change, nil if the member was removed
	NewValue interface{}
}

// Type returns the kind of change d describes
func (d *Difference) Type() Operation {
	switch {
	case d.IsAddition():
		return DTInsert
	case d.IsRemoval():
		return DTDelete
	default:
		return DTUpdate
	}
}

// IsAddition reports whether the difference has no old side
func (d *Difference) IsAddition() bool {
	return d.OldValue == nil && d.NewValue != nil
}

// IsRemoval reports whether the difference has no new side
func (d *Difference) IsRemoval() bool {
	return d.OldValue != nil && d.NewValue == nil
}

// String implements the fmt.Stringer interface
func (d *Difference) String() string {
	return fmt.Sprintf("%s: %v -> %v", d.Name, d.OldValue, d.NewValue)
}

// prefixed returns a copy of d with name prepended to its path
func (d *Difference) prefixed(name string) *Difference {
	return &Difference{
		Name:     name + "." + d.Name,
		OldValue: d.OldValue,
		NewValue: d.NewValue,
	}
}

// prefixAll re-names a slice of differences produced by a nested comparison.
// the returned slice holds copies, input differences are left untouched
func prefixAll(name string, diffs []*Difference) []*Difference {
	if len(diffs) == 0 {
		return nil
	}
	out := make([]*Difference, len(diffs))
	for i, d := range diffs {
		out[i] = d.prefixed(name)
	}
	return out
}
