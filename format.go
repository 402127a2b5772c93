package autocompare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"znkr.io/diff"
	"znkr.io/diff/textdiff"
)

// FormatPrettyString is a convenience wrapper that outputs to a string instead
// of an io.Writer
func FormatPrettyString(diffs []*Difference, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, diffs, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes a text report to w, one line per difference:
//
//	+ Tags: "c"
//	- Tags: "a"
//	~ Age: 2 -> 3
//
// changes between two multi-line strings are written as a line diff below the
// name, each line prefixed with "+", "-" or " "
//
// if colorTTY is true it will add
// green "+" for insertions
// red "-" for deletions
// blue "~" for changes
func FormatPretty(w io.Writer, diffs []*Difference, colorTTY bool) error {
	colorMap := map[Operation]*color.Color{
		DTInsert: newColor(color.FgGreen, colorTTY),
		DTDelete: newColor(color.FgRed, colorTTY),
		DTUpdate: newColor(color.FgBlue, colorTTY),
	}

	for _, d := range diffs {
		op := d.Type()
		if old, new, ok := multiline(d); ok {
			if err := formatLines(w, colorMap, d.Name, old, new); err != nil {
				return err
			}
			continue
		}

		var value string
		switch op {
		case DTInsert:
			value = formatValue(d.NewValue)
		case DTDelete:
			value = formatValue(d.OldValue)
		default:
			value = formatValue(d.OldValue) + " -> " + formatValue(d.NewValue)
		}
		if _, err := colorMap[op].Fprintf(w, "%s %s: %s\n", op, d.Name, value); err != nil {
			return err
		}
	}
	return nil
}

// multiline reports whether d changes one multi-line string into another
func multiline(d *Difference) (old, new string, ok bool) {
	old, okOld := d.OldValue.(string)
	new, okNew := d.NewValue.(string)
	if !okOld || !okNew {
		return "", "", false
	}
	return old, new, strings.Contains(old, "\n") || strings.Contains(new, "\n")
}

func formatLines(w io.Writer, colorMap map[Operation]*color.Color, name, old, new string) error {
	if _, err := colorMap[DTUpdate].Fprintf(w, "%s %s:\n", DTUpdate, name); err != nil {
		return err
	}
	for _, edit := range textdiff.Edits(old, new) {
		line := strings.TrimSuffix(edit.Line, "\n")
		var err error
		switch edit.Op {
		case diff.Insert:
			_, err = colorMap[DTInsert].Fprintf(w, "  + %s\n", line)
		case diff.Delete:
			_, err = colorMap[DTDelete].Fprintf(w, "  - %s\n", line)
		default:
			_, err = fmt.Fprintf(w, "    %s\n", line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func newColor(attr color.Attribute, enabled bool) *color.Color {
	c := color.New(attr)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// formatValue renders values as JSON, falling back to their printed form for
// values JSON can't encode
func formatValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
