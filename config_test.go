package autocompare

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	e := newTestEngine()
	got, err := Compare(e,
		&Tagged{Secret: "a", Name: "x", Lines: []Line{{Number: 1, Text: "a"}}},
		&Tagged{Secret: "b", Name: "x", Lines: []Line{{Number: 1, Text: "b"}, {Number: -1, Text: "c"}}},
	)
	require.NoError(t, err)

	expect := []*Difference{
		{Name: "Lines.1.Text", OldValue: "a", NewValue: "b"},
		{Name: "Lines.{New 1}.Number", NewValue: -1},
		{Name: "Lines.{New 1}.Text", NewValue: "c"},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	require.False(t, e.IsTypeConfigured(reflect.TypeFor[Tagged]()), "tags don't register a configuration")
}

func TestConfigurationOverridesTags(t *testing.T) {
	e := newTestEngine()
	Configure[Tagged](e).MatchUsingFieldDefault("Lines", "Number", 0)

	got, err := Compare(e,
		&Tagged{Lines: []Line{{Number: -1, Text: "a"}}},
		&Tagged{Lines: []Line{{Number: -1, Text: "b"}, {Number: 0, Text: "c"}}},
	)
	require.NoError(t, err)

	expect := []*Difference{
		{Name: "Lines.-1.Text", OldValue: "a", NewValue: "b"},
		{Name: "Lines.{New 1}.Number", NewValue: 0},
		{Name: "Lines.{New 1}.Text", NewValue: "c"},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchUsingFieldDefaultConversion(t *testing.T) {
	type Entry struct {
		Code uint8
		Note string
	}
	type Journal struct {
		Entries []Entry
	}

	e := newTestEngine()
	// an untyped int default converts to the key field's type
	Configure[Journal](e).MatchUsingFieldDefault("Entries", "Code", 9)

	got, err := Compare(e,
		&Journal{Entries: []Entry{{Code: 1, Note: "a"}}},
		&Journal{Entries: []Entry{{Code: 9, Note: "b"}}},
	)
	require.NoError(t, err)

	expect := []*Difference{
		{Name: "Entries.1.Code", OldValue: uint8(1)},
		{Name: "Entries.1.Note", OldValue: "a"},
		{Name: "Entries.{New 1}.Code", NewValue: uint8(9)},
		{Name: "Entries.{New 1}.Note", NewValue: "b"},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	Configure[Tagged](e).MatchUsingFieldDefault("Lines", "Number", "nope")
	_, err = Get[Tagged](e)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestParseTag(t *testing.T) {
	field := func(tag string) reflect.StructField {
		return reflect.StructField{Name: "F", Type: reflect.TypeFor[[]Line](), Tag: reflect.StructTag(tag)}
	}

	ignore, spec, err := parseTag(field(`compare:"-"`))
	require.NoError(t, err)
	require.True(t, ignore)
	require.Nil(t, spec)

	ignore, spec, err = parseTag(field(`json:"f"`))
	require.NoError(t, err)
	require.False(t, ignore)
	require.Nil(t, spec)

	_, spec, err = parseTag(field(`compare:"key=Number, default=7"`))
	require.NoError(t, err)
	require.Equal(t, "Number", spec.keyField)
	require.True(t, spec.hasText)
	require.Equal(t, "7", spec.defaultText)

	_, _, err = parseTag(field(`compare:"default=7"`))
	require.Error(t, err)

	_, _, err = parseTag(field(`compare:"order=asc"`))
	require.Error(t, err)
}

const cartRules = `
types:
  Cart:
    ignore: [Owner]
    match:
      Items: {key: ID, default: "-1"}
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(cartRules))
	require.NoError(t, err)

	expect := &Config{Types: map[string]TypeRules{
		"Cart": {
			Ignore: []string{"Owner"},
			Match:  map[string]MatchRule{"Items": {Key: "ID", Default: "-1"}},
		},
	}}
	if diff := cmp.Diff(expect, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	empty, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, empty.Types)

	_, err = LoadConfig(strings.NewReader("types:\n  Cart:\n    ignores: [Owner]\n"))
	require.Error(t, err, "unknown fields are rejected")
}

func TestApplyConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(cartRules))
	require.NoError(t, err)

	e := newTestEngine()
	require.NoError(t, e.ApplyConfig(cfg, &Cart{}))
	require.True(t, e.IsTypeConfigured(reflect.TypeFor[Cart]()))

	got, err := Compare(e,
		&Cart{Owner: "a", Items: []Item{{ID: 1, Price: 10}}},
		&Cart{Owner: "b", Items: []Item{{ID: 1, Price: 12}, {ID: -1, Price: 3}}},
	)
	require.NoError(t, err)

	expect := []*Difference{
		{Name: "Items.1.Price", OldValue: 10.0, NewValue: 12.0},
		{Name: "Items.{New 1}.ID", NewValue: -1},
		{Name: "Items.{New 1}.Price", NewValue: 3.0},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyConfigErrors(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(cartRules))
	require.NoError(t, err)

	e := newTestEngine()
	require.ErrorIs(t, e.ApplyConfig(cfg, Consumer{}), ErrConfiguration)
	require.ErrorIs(t, e.ApplyConfig(cfg, 5), ErrUnsupportedType)

	noKey := &Config{Types: map[string]TypeRules{"Cart": {Match: map[string]MatchRule{"Items": {}}}}}
	require.ErrorIs(t, e.ApplyConfig(noKey, Cart{}), ErrConfiguration)

	badDefault := &Config{Types: map[string]TypeRules{"Cart": {Match: map[string]MatchRule{"Items": {Key: "ID", Default: "[1"}}}}}
	require.NoError(t, e.ApplyConfig(badDefault, Cart{}))
	_, err = Get[Cart](e)
	require.ErrorIs(t, err, ErrConfiguration)

	require.NoError(t, e.ApplyConfig(nil))
}
