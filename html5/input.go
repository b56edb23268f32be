// Package html5 implements the streaming HTML5 tokenizer and its
// supporting input buffer and entity decoder. It consumes arbitrary
// UTF-8 byte chunks at arbitrary boundaries and produces a deterministic
// token stream with interned tag/attribute names and zero-copy text
// spans into the retained input buffer.
package html5

import (
	"strconv"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into an Input's retained
// buffer. Spans are cheap value types; they only resolve to a string
// while the Input that produced them still holds the referenced bytes.
type Span struct {
	Start, End int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// IsZero reports whether s is the zero span.
func (s Span) IsZero() bool { return s.Start == 0 && s.End == 0 }

// Input accumulates bytes pushed in arbitrary-sized chunks and exposes
// a contiguous, validated UTF-8 byte slice to the tokenizer. Invalid
// trailing partial sequences (up to 3 bytes) are held in a carry and
// flushed once they complete or Finish is called, at which point any
// still-incomplete carry is replaced with U+FFFD.
//
// The buffer is grow-only for the lifetime of one parse and is only
// released when the caller drops the Input or explicitly resets it for
// a new stream (mirroring DomPatch's Clear: a fresh parse gets a fresh
// Input).
type Input struct {
	buf      []byte
	carry    []byte
	finished bool
}

// NewInput returns an empty, ready-to-use Input.
func NewInput() *Input {
	return &Input{}
}

// Reset clears the buffer for reuse on a new stream.
func (in *Input) Reset() {
	in.buf = in.buf[:0]
	in.carry = in.carry[:0]
	in.finished = false
}

// Finished reports whether Finish has been called.
func (in *Input) Finished() bool { return in.finished }

// Len returns the number of committed, resolvable bytes (excluding any
// incomplete trailing carry).
func (in *Input) Len() int { return len(in.buf) }

// Bytes returns the committed byte slice. The slice is retained by in
// and must not be mutated or retained past in's lifetime by callers
// that don't already know that contract (e.g. a Resolver holds this
// same slice rather than a copy of it).
func (in *Input) Bytes() []byte { return in.buf }

// PushChunk appends chunk to the buffer. A trailing, as-yet-incomplete
// UTF-8 sequence (at most 3 bytes) is held back in a carry and
// prepended to the next chunk; invalid byte sequences are replaced
// with U+FFFD immediately, matching the standard library's
// utf8.DecodeRune error-replacement behavior.
func (in *Input) PushChunk(chunk []byte) {
	if in.finished {
		panic("html5: PushChunk called after Finish")
	}
	if len(in.carry) > 0 {
		chunk = append(append([]byte(nil), in.carry...), chunk...)
		in.carry = in.carry[:0]
	}

	i := 0
	for i < len(chunk) {
		c := chunk[i]
		if c < utf8.RuneSelf {
			in.buf = append(in.buf, c)
			i++
			continue
		}

		r, size := utf8.DecodeRune(chunk[i:])
		if r == utf8.RuneError && size <= 1 {
			// Either a genuinely invalid byte, or a valid-looking
			// multi-byte prefix that is simply truncated at the end of
			// this chunk. Only the latter should be carried forward.
			if isIncompleteAtEnd(chunk[i:]) {
				in.carry = append(in.carry[:0], chunk[i:]...)
				return
			}
			in.buf = append(in.buf, "�"...)
			i++
			continue
		}
		in.buf = append(in.buf, chunk[i:i+size]...)
		i += size
	}
}

// isIncompleteAtEnd reports whether b is a valid but truncated prefix
// of a multi-byte UTF-8 sequence, i.e. more bytes arriving later could
// complete it into a valid rune. b is assumed to start with a
// lead byte (>= 0x80) for which utf8.DecodeRune already reported an
// error with size <= 1.
func isIncompleteAtEnd(b []byte) bool {
	if len(b) == 0 || len(b) > 3 {
		return false
	}
	lead := b[0]
	var want int
	switch {
	case lead&0xE0 == 0xC0:
		want = 2
	case lead&0xF0 == 0xE0:
		want = 3
	case lead&0xF8 == 0xF0:
		want = 4
	default:
		return false
	}
	if len(b) >= want {
		return false // would have decoded if it were valid; it's not
	}
	for _, c := range b[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

// Finish flushes any still-incomplete trailing carry as U+FFFD and
// marks the Input closed to further PushChunk calls.
func (in *Input) Finish() {
	if in.finished {
		return
	}
	if len(in.carry) > 0 {
		in.buf = append(in.buf, "�"...)
		in.carry = in.carry[:0]
	}
	in.finished = true
}

// Resolver maps Spans produced against one Input snapshot back to
// string slices. A Resolver must not be stored past the Batch it was
// handed out with.
type Resolver struct {
	buf []byte
}

// Resolve returns the string the span covers, or an error if the span
// is out of range or its boundaries split a UTF-8 sequence.
func (r Resolver) Resolve(s Span) (string, error) {
	if s.Start < 0 || s.End < s.Start || s.End > len(r.buf) {
		return "", &SpanError{Span: s, BufLen: len(r.buf), Reason: "out of range"}
	}
	if s.Start < len(r.buf) && !utf8.RuneStart(r.buf[s.Start]) {
		return "", &SpanError{Span: s, BufLen: len(r.buf), Reason: "start not rune-aligned"}
	}
	if s.End < len(r.buf) && !utf8.RuneStart(r.buf[s.End]) {
		return "", &SpanError{Span: s, BufLen: len(r.buf), Reason: "end not rune-aligned"}
	}
	return string(r.buf[s.Start:s.End]), nil
}

// MustResolve is like Resolve but panics on error; intended for call
// sites (e.g. tests, snapshot serialization) that already know the
// span was produced against this exact buffer.
func (r Resolver) MustResolve(s Span) string {
	str, err := r.Resolve(s)
	if err != nil {
		panic(err)
	}
	return str
}

// Resolver returns a Resolver snapshot bound to the buffer committed so
// far. The returned Resolver remains valid as long as in's buffer isn't
// reset; since Input is append-only during a parse, spans created
// before this call remain resolvable through any later Resolver too.
func (in *Input) Resolver() Resolver {
	return Resolver{buf: in.buf}
}

// SpanError reports a Span that could not be resolved against a
// buffer: out of range, or boundaries that don't fall on rune starts.
type SpanError struct {
	Span   Span
	BufLen int
	Reason string
}

func (e *SpanError) Error() string {
	return "html5: invalid span [" + strconv.Itoa(e.Span.Start) + "," + strconv.Itoa(e.Span.End) +
		") against buffer of length " + strconv.Itoa(e.BufLen) + ": " + e.Reason
}

// Is reports ErrInvalidSpan as this error's sentinel, so callers can
// classify any span-resolution failure without inspecting the struct.
func (e *SpanError) Is(target error) bool { return target == ErrInvalidSpan }
