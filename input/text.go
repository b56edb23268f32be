package input

import (
	"strings"
	"unicode/utf8"
)

// Byte-position helpers. Every mutation clamps caret and anchor to
// UTF-8 character boundaries before use, so an invalid position can
// never reach the text measurer.

// clampToCharBoundary rounds pos into [0, len(s)] and then down to the
// nearest rune start.
func clampToCharBoundary(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(s) {
		return len(s)
	}
	for pos > 0 && !utf8.RuneStart(s[pos]) {
		pos--
	}
	return pos
}

// prevCursorBoundary returns the rune start immediately before pos.
func prevCursorBoundary(s string, pos int) int {
	pos = clampToCharBoundary(s, pos)
	if pos == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(s[:pos])
	return pos - size
}

// nextCursorBoundary returns the rune start immediately after pos.
func nextCursorBoundary(s string, pos int) int {
	pos = clampToCharBoundary(s, pos)
	if pos >= len(s) {
		return len(s)
	}
	_, size := utf8.DecodeRuneInString(s[pos:])
	return pos + size
}

// filterSingleLine strips newline characters for single-line controls.
func filterSingleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' || s[i] == '\n' {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// normalizeNewlines folds CRLF and lone CR to LF for multi-line
// controls.
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// CaretFromX maps a pixel offset inside a laid-out text run to the
// nearest rune boundary, measuring prefixes with measure. Used by the
// integrator to turn pointer positions into caret bytes.
func CaretFromX(value string, x float64, measure func(string) float64) int {
	if x <= 0 {
		return 0
	}
	prev := 0
	prevX := 0.0
	for i := range value {
		if i == 0 {
			continue
		}
		w := measure(value[:i])
		if w >= x {
			if x-prevX <= w-x {
				return prev
			}
			return i
		}
		prev = i
		prevX = w
	}
	w := measure(value)
	if w >= x && x-prevX <= w-x {
		return prev
	}
	return len(value)
}
