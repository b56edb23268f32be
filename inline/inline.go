// Package inline implements the baseline-aligned line-breaking engine:
// it turns a block's inline content (text, replaced elements,
// inline-blocks) into line boxes with byte-accurate source ranges,
// suitable for painting, hit-testing, and caret arithmetic.
package inline

import "github.com/riverrun/htmlcore/dom"

// Style is an opaque computed-style reference. The engine never
// inspects it: it is threaded through to the TextMeasurer and attached
// to fragments for the paint collaborator.
type Style any

// TextMeasurer abstracts text measurement. Both methods must be pure:
// the same text and style always measure the same. The engine assumes
// nothing about glyph shaping; widths are only combined additively when
// searching for a word break, where a non-monotonic width still
// converges to a valid (if non-optimal) break.
type TextMeasurer interface {
	// Measure returns the advance width of text in pixels.
	Measure(text string, style Style) float64
	// LineHeight returns the line height for style in pixels.
	LineHeight(style Style) float64
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// SourceRange is a half-open byte range into the backing text source
// (e.g. a textarea's value). Fragments and lines carry it so caret
// positions can be mapped between pixels and bytes.
type SourceRange struct {
	Start, End int
}

// ActionKind classifies an interactive fragment.
type ActionKind int

const (
	ActionLink ActionKind = iota
)

// Action identifies the interactive element a fragment belongs to: the
// DOM id of the nearest enclosing anchor and its resolved href.
type Action struct {
	ID   dom.Key
	Kind ActionKind
	Href string
}

// Context is the inline context a token was collected under: the
// nearest enclosing link target, if any, propagated to every fragment
// under the anchor.
type Context struct {
	LinkTarget dom.Key // zero when not inside a link
	LinkHref   string
}

func (c Context) action() *Action {
	if c.LinkTarget == 0 {
		return nil
	}
	return &Action{ID: c.LinkTarget, Kind: ActionLink, Href: c.LinkHref}
}

// ReplacedKind is the closed set of replaced inline elements the engine
// places.
type ReplacedKind int

const (
	ReplacedImg ReplacedKind = iota
	ReplacedButton
	ReplacedInputText
	ReplacedTextArea
	ReplacedInputCheckbox
	ReplacedInputRadio
)

// TokenKind discriminates Token.
type TokenKind int

const (
	SpaceToken TokenKind = iota
	WordToken
	BoxToken
	ReplacedToken
	HardBreakToken
)

// Token is one unit of inline content in DOM order. Which fields are
// meaningful depends on Kind.
type Token struct {
	Kind TokenKind

	// Word.
	Text string

	// Space / Word / Box / Replaced.
	Style Style
	Ctx   Context

	// Byte range in the backing text source, when there is one.
	Source *SourceRange

	// Box / Replaced.
	Width, Height float64
	Replaced      ReplacedKind

	// Opaque layout subtree reference for Box/Replaced fragments,
	// handed back to the caller on the produced fragment.
	Layout any
}

// FragmentKind discriminates Fragment.
type FragmentKind int

const (
	TextFragment FragmentKind = iota
	BoxFragment
	ReplacedFragment
)

// Fragment is one placed piece of a line. Rect is in the same
// coordinate space as the content rectangle handed to Layout; its Y is
// finalized when the line flushes so that
// Rect.Y + Ascent + BaselineShift equals the line's baseline.
type Fragment struct {
	Kind FragmentKind

	Rect          Rect
	Ascent        float64
	Descent       float64
	BaselineShift float64

	Source *SourceRange

	// Text fragments.
	Text  string
	Style Style

	Action *Action

	// Box / Replaced fragments.
	Replaced ReplacedKind
	Layout   any
}

// LineBox is one laid-out line: its rectangle, the absolute Y of its
// baseline, an optional byte range of the source text it covers, and
// its fragments in visual order.
type LineBox struct {
	Rect      Rect
	Baseline  float64
	Source    *SourceRange
	Fragments []Fragment
}

// Options configures whitespace and breaking policy for one layout
// pass.
type Options struct {
	// Padding is the inset applied on every side of the content
	// rectangle.
	Padding float64
	// PreserveLeadingSpaces keeps a space at line start and at a wrap
	// point (pre-wrap); the default HTML mode drops both.
	PreserveLeadingSpaces bool
	// PreserveEmptyLines emits a line box for an empty line (pre-wrap).
	PreserveEmptyLines bool
	// BreakLongWords splits a word that cannot fit on a fresh line by
	// a prefix-fit search; when false the word overflows instead.
	BreakLongWords bool
}

// HTMLOptions is the default collapsed-whitespace mode used for
// ordinary flow content.
func HTMLOptions() Options {
	return Options{Padding: inlinePadding, BreakLongWords: true}
}

// PreWrapOptions is the whitespace-preserving mode used for textarea
// content.
func PreWrapOptions() Options {
	return Options{
		Padding:               inlinePadding,
		PreserveLeadingSpaces: true,
		PreserveEmptyLines:    true,
		BreakLongWords:        true,
	}
}

const inlinePadding = 2.0
