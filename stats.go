package autocompare

import (
	"bytes"
	"fmt"
)

// Stats holds summary counts for a list of differences
type Stats struct {
	Additions int `json:"additions,omitempty"` // differences with no old value
	Removals  int `json:"removals,omitempty"`  // differences with no new value
	Changes   int `json:"changes,omitempty"`   // differences with both sides set
}

// CalcStats counts the kinds of differences in diffs
func CalcStats(diffs []*Difference) Stats {
	var s Stats
	for _, d := range diffs {
		switch d.Type() {
		case DTInsert:
			s.Additions++
		case DTDelete:
			s.Removals++
		default:
			s.Changes++
		}
	}
	return s
}

// Total is the number of differences counted
func (s Stats) Total() int {
	return s.Additions + s.Removals + s.Changes
}

// FormatPrettyStats prints a string of stats info
func FormatPrettyStats(s *Stats) string {
	return formatStats(s, false)
}

// FormatPrettyStatsColor prints a string of stats info with ANSI colors
func FormatPrettyStatsColor(s *Stats) string {
	return formatStats(s, true)
}

func formatStats(s *Stats, color bool) string {
	var (
		neutralColor, insertColor, deleteColor, updateColor, closeColor string
	)

	if s == nil {
		return "<nil>"
	}

	if color {
		neutralColor = "\x1b[37m"
		insertColor = "\x1b[32m"
		deleteColor = "\x1b[31m"
		updateColor = "\x1b[34m"
		closeColor = "\x1b[0m"
	}

	buf := &bytes.Buffer{}

	diffsWord := "differences"
	if s.Total() == 1 {
		diffsWord = "difference"
	}
	fmt.Fprintf(buf, "%s%d %s.%s", neutralColor, s.Total(), diffsWord, closeColor)
	fmt.Fprintf(buf, " %s%d %s.%s", insertColor, s.Additions, plural(s.Additions, "addition"), closeColor)
	fmt.Fprintf(buf, " %s%d %s.%s", deleteColor, s.Removals, plural(s.Removals, "removal"), closeColor)
	fmt.Fprintf(buf, " %s%d %s.%s", updateColor, s.Changes, plural(s.Changes, "change"), closeColor)
	buf.WriteRune('\n')

	return buf.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
