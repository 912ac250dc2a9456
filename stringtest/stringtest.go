// Package stringtest builds expected console output for tests.
package stringtest

import "strings"

// Lines terminates each string with LF and concatenates them, matching the
// output of a line-oriented writer.
//
// Example:
//
//	want := stringtest.Lines(
//		"first",
//		"second",
//	) // -> "first\nsecond\n"
func Lines(ss ...string) string {
	var sb strings.Builder
	for _, s := range ss {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	return sb.String()
}
