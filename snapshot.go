package autocompare

import (
	"fmt"

	"github.com/mitchellh/copystructure"
)

// Snapshot returns a deep copy of v, suitable as the old side of a later
// comparison after v has been modified. Unexported fields are not copied
func Snapshot[T any](v *T) (*T, error) {
	if v == nil {
		return nil, nil
	}
	cp, err := copystructure.Copy(v)
	if err != nil {
		return nil, fmt.Errorf("snapshotting %T: %w", v, err)
	}
	return cp.(*T), nil
}
