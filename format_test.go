package autocompare

import (
	"strings"
	"testing"
	"time"
)

func TestFormatPretty(t *testing.T) {
	diffs := []*Difference{
		{Name: "Age", OldValue: 2, NewValue: 3},
		{Name: "Tags", NewValue: "c"},
		{Name: "Tags", OldValue: "a"},
		{Name: "Address.Zip", OldValue: "", NewValue: "28277"},
		{Name: "DateOfBirth", OldValue: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Name: "Hook", NewValue: func() {}},
	}

	got, err := FormatPrettyString(diffs, false)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	expect := []string{
		`~ Age: 2 -> 3`,
		`+ Tags: "c"`,
		`- Tags: "a"`,
		`~ Address.Zip: "" -> "28277"`,
		`- DateOfBirth: "2020-01-02T00:00:00Z"`,
	}
	if len(lines) != len(expect)+1 {
		t.Fatalf("expected %d lines, got %d:\n%s", len(expect)+1, len(lines), got)
	}
	for i, e := range expect {
		if lines[i] != e {
			t.Errorf("line %d: want %q, got %q", i, e, lines[i])
		}
	}
	// values JSON can't encode fall back to their printed form
	if !strings.HasPrefix(lines[5], "+ Hook: 0x") {
		t.Errorf("unexpected fallback line: %q", lines[5])
	}
}

func TestFormatPrettyColor(t *testing.T) {
	diffs := []*Difference{
		{Name: "Tags", NewValue: "c"},
		{Name: "Tags", OldValue: "a"},
		{Name: "Age", OldValue: 2, NewValue: 3},
	}

	got, err := FormatPrettyString(diffs, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"\x1b[32m+ Tags", "\x1b[31m- Tags", "\x1b[34m~ Age", "\x1b[0m"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}

	plain, err := FormatPrettyString(diffs, false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Errorf("uncolored output contains escape codes: %q", plain)
	}
}

func TestFormatPrettyMultiline(t *testing.T) {
	diffs := []*Difference{
		{Name: "Notes", OldValue: "a\nb\nc\n", NewValue: "a\nx\nc\n"},
		{Name: "Title", OldValue: "one", NewValue: "two"},
	}

	got, err := FormatPrettyString(diffs, false)
	if err != nil {
		t.Fatal(err)
	}
	expect := `~ Notes:
    a
  - b
  + x
    c
~ Title: "one" -> "two"
`
	if got != expect {
		t.Errorf("output mismatch.\nwant:\n%s\ngot:\n%s", expect, got)
	}
}
