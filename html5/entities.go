package html5

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxHexDigits / maxDecDigits bound numeric character reference scans;
// U+10FFFF is the largest valid scalar value, needing at most 6 hex or
// 7 decimal digits.
const (
	maxHexDigits = 6
	maxDecDigits = 7
)

var namedEntities = []struct {
	pattern string
	rune    rune
}{
	{"&amp;", '&'},
	{"&lt;", '<'},
	{"&gt;", '>'},
	{"&quot;", '"'},
	{"&apos;", '\''},
	{"&nbsp;", '\u00a0'},
}

// DecodeEntities decodes the minimal, explicitly bounded subset of HTML
// character references: the six named entities above and
// numeric references &#N; / &#xN; for valid Unicode scalar values.
// Overlong digit runs, missing terminators, and unknown names pass
// through unchanged. DecodeEntities never allocates when s contains no
// '&'. It is a single pass and is not idempotent for every input: a
// decoded '&' can start a new reference in its output, so "&amp;amp;"
// decodes to "&amp;", and decoding that again yields "&".
func DecodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	i := 0
	for i < len(s) {
		if s[i] != '&' {
			j := strings.IndexByte(s[i:], '&')
			if j == -1 {
				out.WriteString(s[i:])
				break
			}
			out.WriteString(s[i : i+j])
			i += j
			continue
		}

		if ch, n, ok := matchNamed(s[i:]); ok {
			out.WriteRune(ch)
			i += n
			continue
		}

		if n, ok := matchNumeric(&out, s[i:]); ok {
			i += n
			continue
		}

		// No decode applies at this '&'; emit it literally and advance
		// past just this byte so a later '&' in the same run is still
		// considered.
		out.WriteByte('&')
		i++
	}

	return out.String()
}

func matchNamed(s string) (rune, int, bool) {
	for _, e := range namedEntities {
		if strings.HasPrefix(s, e.pattern) {
			return e.rune, len(e.pattern), true
		}
	}
	return 0, 0, false
}

// matchNumeric attempts &#DDD; or &#xHHH; / &#XHHH; at the start of s.
// On success it writes the decoded scalar (or, if malformed/out of
// range, the literal matched bytes) to out and returns the number of
// bytes of s consumed.
func matchNumeric(out *strings.Builder, s string) (int, bool) {
	if !strings.HasPrefix(s, "&#") {
		return 0, false
	}

	hex := false
	digitsStart := 2
	if len(s) > 2 && (s[2] == 'x' || s[2] == 'X') {
		hex = true
		digitsStart = 3
	}

	maxDigits := maxDecDigits
	isDigit := func(b byte) bool { return b >= '0' && b <= '9' }
	if hex {
		maxDigits = maxHexDigits
		isDigit = isHexDigit
	}

	end := digitsStart
	for end < len(s) && end-digitsStart < maxDigits && isDigit(s[end]) {
		end++
	}
	if end == digitsStart {
		// No digits at all: not a numeric reference.
		return 0, false
	}
	if end >= len(s) || s[end] != ';' {
		// Unterminated or overlong: pass through only the "&#..."
		// prefix actually scanned, verbatim, not as a decode.
		return 0, false
	}

	digits := s[digitsStart:end]
	var val uint64
	var err error
	if hex {
		val, err = strconv.ParseUint(digits, 16, 32)
	} else {
		val, err = strconv.ParseUint(digits, 10, 32)
	}
	total := end + 1 // include the terminating ';'
	if err != nil || !utf8.ValidRune(rune(val)) || rune(val) == utf8.RuneError {
		out.WriteString(s[:total])
		return total, true
	}
	out.WriteRune(rune(val))
	return total, true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
