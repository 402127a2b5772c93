package autocompare

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	c := &Consumer{
		FirstName:   "Anand",
		Age:         2,
		DateOfBirth: time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC),
		Address:     &Address{City: "Charlotte"},
		Tags:        []string{"a"},
		Attributes:  map[int]string{1: "x"},
	}

	prev, err := Snapshot(c)
	require.NoError(t, err)
	if diff := cmp.Diff(c, prev); diff != "" {
		t.Fatalf("snapshot differs from source (-want +got):\n%s", diff)
	}

	c.Age = 3
	c.Address.City = "Belmont"
	c.Tags[0] = "b"
	c.Attributes[1] = "y"

	got, err := Compare(newTestEngine(), prev, c)
	require.NoError(t, err)

	expect := []*Difference{
		{Name: "Age", OldValue: 2, NewValue: 3},
		{Name: "Address.City", OldValue: "Charlotte", NewValue: "Belmont"},
		{Name: "Tags", NewValue: "b"},
		{Name: "Tags", OldValue: "a"},
		{Name: "Attributes.1", OldValue: "x", NewValue: "y"},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	none, err := Snapshot[Consumer](nil)
	require.NoError(t, err)
	require.Nil(t, none)
}
