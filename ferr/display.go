package ferr

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// HighlightSource renders line with a caret line beneath it pointing at
// column (1-indexed, in runes). East-Asian wide and fullwidth runes count as
// two cells so the caret lands under the right character even when line
// contains CJK text; ambiguous-width runes count as one cell.
func HighlightSource(line string, column uint64) string {
	runes := []rune(line)
	if column == 0 {
		column = 1
	}
	upto := int(column) - 1
	if upto > len(runes) {
		upto = len(runes)
	}

	var sb strings.Builder
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", displayWidth(runes[:upto])))
	sb.WriteByte('^')
	return sb.String()
}

// displayWidth sums the terminal-cell width of runes the way a monospaced,
// UTF-8 terminal would render them: double for east-Asian wide/fullwidth
// runes, single for everything else graphic, zero for non-graphic runes.
func displayWidth(runes []rune) int {
	w := 0
	for _, r := range runes {
		if !unicode.IsGraphic(r) {
			continue
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w += 1
		}
	}
	return w
}
