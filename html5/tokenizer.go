package html5

import (
	"github.com/riverrun/htmlcore/atom"
)

// Status is the result of driving the Tokenizer forward.
type Status int

const (
	// NeedMoreInput means the tokenizer consumed everything it safely
	// could and is waiting for more bytes (or Finish) before it can
	// make further progress.
	NeedMoreInput Status = iota
	// Progress means at least one token became ready; call NextBatch
	// to drain it. More bytes may still be needed afterward.
	Progress
	// EmittedEOF means the terminal Eof token is now ready (or already
	// drained); no further tokens will ever be produced by this
	// Tokenizer.
	EmittedEOF
)

// contentMode tracks which of the HTML5 tokenizer content states
// governs the current text run: Data (tags/comments/doctype all
// recognized), RCDATA (only a matching end tag recognized; character
// references decoded), RAWTEXT (only a matching end tag recognized; no
// character references), or PLAINTEXT (no escape at all, runs to EOF).
type contentMode int

const (
	cmData contentMode = iota
	cmRCDATA
	cmRAWTEXT
	cmPLAINTEXT
)

// markup sub-states, reachable only from cmData.
type state int

const (
	stContent state = iota // dispatches on contentMode; see scan()
	stTagOpen
	stEndTagOpen
	stTagName
	stBeforeAttrName
	stAttrName
	stAfterAttrName
	stBeforeAttrValue
	stAttrValueDouble
	stAttrValueSingle
	stAttrValueUnquoted
	stAfterAttrValueQuoted
	stSelfClosingStartTag
	stBogusComment
	stMarkupDeclOpen
	stCommentStart
	stCommentStartDash
	stComment
	stCommentEndDash
	stCommentEnd
	stCommentEndBang
	stDoctype
	stBeforeDoctypeName
	stDoctypeName
	stAfterDoctypeName
	stAfterDoctypePublicKeyword
	stBeforeDoctypePublicID
	stDoctypePublicIDDouble
	stDoctypePublicIDSingle
	stAfterDoctypePublicID
	stBetweenDoctypePublicAndSystem
	stAfterDoctypeSystemKeyword
	stBeforeDoctypeSystemID
	stDoctypeSystemIDDouble
	stDoctypeSystemIDSingle
	stAfterDoctypeSystemID
	stBogusDoctype
)

// Options configures a Tokenizer. The zero value is ready to use.
type Options struct {
	// ErrorLogCapacity bounds the bounded parse-error log; 0
	// selects the package default.
	ErrorLogCapacity int
}

// rawTextTags / rcdataTags name the elements whose content switches
// the tokenizer out of the Data state the instant their start tag is
// emitted. noscript is intentionally rawtext by default —
// matching scripting-enabled browsers — but a consumer that wants to
// parse its content as ordinary HTML can call NextIsNotRawText before
// the next token is requested. Nothing in this module, including the
// tree builder, makes that call.
var rawTextTagNames = []string{"script", "style", "xmp", "iframe", "noembed", "noscript"}
var rcdataTagNames = []string{"title", "textarea"}
var plaintextTagName = "plaintext"

// Tokenizer is a resumable state machine over an Input's byte stream.
// It is not safe for concurrent use; the data flow model requires
// a single task drive one Tokenizer at a time.
type Tokenizer struct {
	atoms *atom.Table
	input *Input
	opts  Options
	log   *ErrorLog

	pos     int
	state   state
	content contentMode

	ready []Token

	eofEmitted bool

	// pending text run.
	textStart       int
	textDecodesRefs bool

	// pending tag (Start or End).
	tagIsEnd       bool
	tagNameStart   int
	tagName        atom.ID
	tagAttrs       []Attribute
	tagSelfClosing bool

	// pending attribute.
	attrNameStart int
	attrName      atom.ID
	attrValStart  int

	// pending comment.
	commentStart int

	// pending doctype.
	dtHasName      bool
	dtNameStart    int
	dtName         atom.ID
	dtPublicID     *string
	dtSystemID     *string
	dtForceQuirks  bool
	dtScratchStart int

	// rawtext/rcdata end-tag matching: the folded name whose end tag
	// terminates the current run.
	rawEndTag string
}

// NewTokenizer returns a Tokenizer bound to atoms and opts. in is the
// Input it will read from; the Tokenizer does not own in's lifetime
// (callers PushChunk into in directly) but assumes in is never reset
// mid-parse.
func NewTokenizer(atoms *atom.Table, in *Input, opts Options) *Tokenizer {
	return &Tokenizer{
		atoms:           atoms,
		input:           in,
		opts:            opts,
		log:             NewErrorLog(opts.ErrorLogCapacity),
		textDecodesRefs: true,
	}
}

// Errors returns the tokenizer's bounded parse-error log.
func (tk *Tokenizer) Errors() *ErrorLog { return tk.log }

// NextIsNotRawText cancels raw-text/RCDATA auto-entry for the tag just
// emitted, so that content such as <noscript>'s is tokenized as
// ordinary markup. It is exposed for integrators; the tree builder does
// not call it.
func (tk *Tokenizer) NextIsNotRawText() {
	tk.content = cmData
	tk.rawEndTag = ""
	tk.textDecodesRefs = true
}

// PushInput scans as far as currently available bytes permit.
func (tk *Tokenizer) PushInput() Status {
	return tk.scan(false)
}

// Finish finalizes the stream: any pending text becomes a final
// Character token, then exactly one Eof token is emitted.
func (tk *Tokenizer) Finish() Status {
	tk.input.Finish()
	return tk.scan(true)
}

// NextBatch drains all currently ready tokens.
func (tk *Tokenizer) NextBatch() Batch {
	b := Batch{Tokens: tk.ready, Resolver: tk.input.Resolver(), AtomsID: tk.atoms.Identity()}
	tk.ready = nil
	return b
}

func (tk *Tokenizer) emit(tok Token) {
	tk.ready = append(tk.ready, tok)
}

func (tk *Tokenizer) internName(lo, hi int) atom.ID {
	return tk.atoms.Intern(tk.input.Bytes()[lo:hi])
}

// flushText emits the pending text run [textStart, end) as a Character
// token, if non-empty.
func (tk *Tokenizer) flushText(end int) {
	if end <= tk.textStart {
		return
	}
	tk.emit(Token{
		Type:            CharacterToken,
		Span:            Span{Start: tk.textStart, End: end},
		DecodesEntities: tk.textDecodesRefs,
	})
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func matchKeywordFold(avail []byte, pos int, kw string) bool {
	if pos+len(kw) > len(avail) {
		return false
	}
	for i := 0; i < len(kw); i++ {
		if lower(avail[pos+i]) != lower(kw[i]) {
			return false
		}
	}
	return true
}

func matchKeyword(avail []byte, pos int, kw string) bool {
	if pos+len(kw) > len(avail) {
		return false
	}
	return string(avail[pos:pos+len(kw)]) == kw
}

// scan is the single entry point driving the state machine forward
// over whatever bytes are currently available. It never blocks: it
// returns NeedMoreInput the moment it cannot safely progress without
// more bytes, leaving tk.pos and tk.state such that a later call
// (after more bytes arrive, or after Finish forces EOF) resumes
// correctly. Because Input is append-only and never mutates bytes
// already written, re-deriving any in-progress token purely from
// [start, tk.pos) spans -- rather than buffering a separate partial
// token -- is always safe.
func (tk *Tokenizer) scan(finished bool) Status {
	if tk.eofEmitted {
		return EmittedEOF
	}

	avail := tk.input.Bytes()
	producedBefore := len(tk.ready)

	for {
		if tk.pos >= len(avail) {
			if !finished {
				return tk.statusFor(producedBefore)
			}
			if tk.atEOF(avail) {
				return EmittedEOF
			}
			return tk.statusFor(producedBefore)
		}

		switch tk.state {
		case stContent:
			if !tk.stepContent(avail) {
				return tk.statusFor(producedBefore)
			}
		default:
			if !tk.stepMarkup(avail) {
				return tk.statusFor(producedBefore)
			}
		}
	}
}

func (tk *Tokenizer) statusFor(producedBefore int) Status {
	if len(tk.ready) > producedBefore {
		return Progress
	}
	return NeedMoreInput
}

// atEOF finalizes the stream once bytes are exhausted and Finish has
// been called: flush pending text, close any unterminated comment or
// doctype with a parse error plus forced quirks, and emit exactly one
// Eof token.
func (tk *Tokenizer) atEOF(avail []byte) bool {
	if tk.pos < len(avail) {
		return false
	}

	switch tk.state {
	case stContent:
		tk.flushText(tk.pos)
	case stTagOpen, stEndTagOpen, stTagName, stBeforeAttrName, stAttrName,
		stAfterAttrName, stBeforeAttrValue, stAttrValueDouble, stAttrValueSingle,
		stAttrValueUnquoted, stAfterAttrValueQuoted, stSelfClosingStartTag:
		tk.log.add(ErrUnexpectedEOFInTag, tk.pos)
		// The in-progress tag is discarded at EOF; any
		// text preceding it was already flushed when '<' was seen.
	case stBogusComment, stMarkupDeclOpen, stCommentStart, stCommentStartDash,
		stComment, stCommentEndDash, stCommentEnd, stCommentEndBang:
		tk.log.add(ErrUnexpectedEOFInComment, tk.pos)
		tk.emit(Token{Type: CommentToken, Span: Span{Start: tk.commentStart, End: tk.pos}})
	case stDoctype, stBeforeDoctypeName, stDoctypeName, stAfterDoctypeName,
		stAfterDoctypePublicKeyword, stBeforeDoctypePublicID, stDoctypePublicIDDouble,
		stDoctypePublicIDSingle, stAfterDoctypePublicID, stBetweenDoctypePublicAndSystem,
		stAfterDoctypeSystemKeyword, stBeforeDoctypeSystemID, stDoctypeSystemIDDouble,
		stDoctypeSystemIDSingle, stAfterDoctypeSystemID, stBogusDoctype:
		tk.log.add(ErrUnexpectedEOFInDoctype, tk.pos)
		tk.dtForceQuirks = true
		tk.emitDoctype()
	}

	tk.emit(Token{Type: EOFToken})
	tk.eofEmitted = true
	tk.state = stContent
	return true
}

func (tk *Tokenizer) emitDoctype() {
	tok := Token{
		Type:        DoctypeToken,
		HasName:     tk.dtHasName,
		Name:        tk.dtName,
		PublicID:    tk.dtPublicID,
		SystemID:    tk.dtSystemID,
		ForceQuirks: tk.dtForceQuirks,
	}
	tk.emit(tok)
	tk.dtHasName = false
	tk.dtName = 0
	tk.dtPublicID = nil
	tk.dtSystemID = nil
	tk.dtForceQuirks = false
}
