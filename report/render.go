package report

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Render produces the human-readable form described in spec.md §6: a
// "<severity>[<code>]: <message>" header, a "file:line:col" arrow, a source
// snippet with carets under the primary span, and optional "= note:"/
// "= help:" trailers.
func (d Diagnostic) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)
	if d.Primary.IsDummy() {
		b.WriteString("  --> <synthetic>\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  --> %s\n", d.Primary)

	line := d.Primary.File.LineText(d.Primary.Line)
	gutter := fmt.Sprintf("%d", d.Primary.Line)
	fmt.Fprintf(&b, "%s | %s\n", gutter, line)

	// The caret run starts under the column of the primary span and spans
	// the rendered width of the covered text, using grapheme-cluster aware
	// widths so combining marks and wide (e.g. CJK) runes underline
	// correctly instead of drifting the carets off-position.
	pad := strings.Repeat(" ", len(gutter))
	lineStartCol := d.Primary.Column
	before := safeSlice(line, lineStartCol-1)
	caretOffset := uniseg.StringWidth(before)
	covered := d.Primary.File.Text(d.Primary)
	width := uniseg.StringWidth(covered)
	if width == 0 {
		width = 1
	}
	fmt.Fprintf(&b, "%s | %s%s\n", pad, strings.Repeat(" ", caretOffset), strings.Repeat("^", width))

	for _, r := range d.Related {
		fmt.Fprintf(&b, "  = note: %s (%s)\n", r.Message, r.Span)
	}
	if d.HasHelp() {
		fmt.Fprintf(&b, "  = help: %s\n", d.Help)
	}
	return b.String()
}

// safeSlice returns the first n bytes of s, with n clamped to
// [0, len(s)]; it is intentionally byte-based to match column
// accounting in source.File.Position.
func safeSlice(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
