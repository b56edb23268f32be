package html5

// This file is the body of the tokenizer state machine: stepContent
// drives the four content modes (data, RCDATA, RAWTEXT, PLAINTEXT) and
// stepMarkup drives every markup sub-state reachable from data. Both
// advance tk.pos over the Input's committed bytes and return false only
// when they cannot safely progress without more input, leaving all
// in-progress token bookkeeping as [start, tk.pos) offsets so the next
// scan resumes exactly where this one stopped.

// rawMatch is the outcome of probing for the matching end tag of an
// RCDATA/RAWTEXT run at a '<'.
type rawMatch int

const (
	rawMatchNo rawMatch = iota
	rawMatchYes
	rawMatchSuspend
)

// toContent returns the machine to text scanning, starting a new run at
// the current position.
func (tk *Tokenizer) toContent() {
	tk.state = stContent
	tk.textStart = tk.pos
	tk.textDecodesRefs = tk.content == cmData || tk.content == cmRCDATA
}

// emitNullReplacement flushes the pending run and replaces a raw NUL
// byte with a literal U+FFFD. The replacement has no source bytes to
// span, so it is the one Character token carried owned.
func (tk *Tokenizer) emitNullReplacement() {
	tk.flushText(tk.pos)
	tk.log.add(ErrUnexpectedNullCharacter, tk.pos)
	tk.emit(Token{Type: CharacterToken, IsOwned: true, Owned: "�"})
	tk.pos++
	tk.textStart = tk.pos
}

func (tk *Tokenizer) stepContent(avail []byte) bool {
	finished := tk.input.Finished()
	for tk.pos < len(avail) {
		c := avail[tk.pos]

		switch tk.content {
		case cmPLAINTEXT:
			// Runs to EOF; nothing in it is markup.
			if c == 0 {
				tk.emitNullReplacement()
				continue
			}
			tk.pos++
			continue

		case cmRCDATA, cmRAWTEXT:
			if c == '<' {
				switch tk.matchRawEnd(avail, finished) {
				case rawMatchYes:
					return true
				case rawMatchSuspend:
					return false
				}
				// Not the matching end tag: the '<' is literal text.
				tk.pos++
				continue
			}
			if c == 0 {
				tk.emitNullReplacement()
				continue
			}
			tk.pos++
			continue

		default: // cmData
			if c == '<' {
				tk.flushText(tk.pos)
				tk.pos++
				tk.state = stTagOpen
				return true
			}
			if c == 0 {
				tk.emitNullReplacement()
				continue
			}
			tk.pos++
		}
	}
	return true
}

// matchRawEnd probes for "</" + the run's end tag name + a terminator
// (whitespace, '/', or '>') at tk.pos, case-insensitively. On a match
// it flushes the run and hands the end tag to the normal tag-name
// state; on insufficient lookahead it suspends so the same probe reruns
// once more bytes arrive.
func (tk *Tokenizer) matchRawEnd(avail []byte, finished bool) rawMatch {
	p := tk.pos
	name := tk.rawEndTag

	if p+1 >= len(avail) {
		if finished {
			return rawMatchNo
		}
		return rawMatchSuspend
	}
	if avail[p+1] != '/' {
		return rawMatchNo
	}
	for i := 0; i < len(name); i++ {
		idx := p + 2 + i
		if idx >= len(avail) {
			if finished {
				return rawMatchNo
			}
			return rawMatchSuspend
		}
		if lower(avail[idx]) != name[i] {
			return rawMatchNo
		}
	}
	idx := p + 2 + len(name)
	if idx >= len(avail) {
		if finished {
			return rawMatchNo
		}
		return rawMatchSuspend
	}
	switch avail[idx] {
	case ' ', '\t', '\n', '\f', '\r', '/', '>':
	default:
		return rawMatchNo
	}

	tk.flushText(p)
	tk.content = cmData
	tk.rawEndTag = ""
	tk.tagIsEnd = true
	tk.tagAttrs = nil
	tk.tagSelfClosing = false
	tk.tagNameStart = p + 2
	tk.pos = p + 2
	tk.state = stTagName
	return rawMatchYes
}

func (tk *Tokenizer) finishTagName(end int) {
	tk.tagName = tk.internName(tk.tagNameStart, end)
}

func (tk *Tokenizer) finishAttrName(end int) {
	tk.attrName = tk.internName(tk.attrNameStart, end)
}

// pushAttr appends the pending attribute unless its (folded) name is
// already present, in which case the duplicate is dropped.
func (tk *Tokenizer) pushAttr(val AttrValue) {
	for _, a := range tk.tagAttrs {
		if a.Name == tk.attrName {
			tk.log.add(ErrDuplicateAttribute, tk.attrNameStart)
			return
		}
	}
	tk.tagAttrs = append(tk.tagAttrs, Attribute{Name: tk.attrName, Value: val})
}

func (tk *Tokenizer) pushValuelessAttr() {
	tk.pushAttr(AttrValue{})
}

func stringsContain(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// emitTag finalizes and emits the pending tag token, switching the
// content mode when a start tag opens a rawtext/RCDATA/plaintext run.
// The caller must already have advanced tk.pos past the closing '>'.
func (tk *Tokenizer) emitTag() {
	if tk.tagIsEnd {
		// End tags never carry attributes; any that were parsed are
		// dropped here.
		tk.emit(Token{Type: EndTagToken, Name: tk.tagName})
	} else {
		tk.emit(Token{
			Type:        StartTagToken,
			Name:        tk.tagName,
			Attrs:       tk.tagAttrs,
			SelfClosing: tk.tagSelfClosing,
		})
		if !tk.tagSelfClosing {
			name, _ := tk.atoms.Resolve(tk.tagName)
			switch {
			case name == plaintextTagName:
				tk.content = cmPLAINTEXT
			case stringsContain(rcdataTagNames, name):
				tk.content = cmRCDATA
				tk.rawEndTag = name
			case stringsContain(rawTextTagNames, name):
				tk.content = cmRAWTEXT
				tk.rawEndTag = name
			}
		}
	}
	tk.tagAttrs = nil
	tk.tagSelfClosing = false
	tk.toContent()
}

func (tk *Tokenizer) emitComment(contentEnd int) {
	tk.emit(Token{Type: CommentToken, Span: Span{Start: tk.commentStart, End: contentEnd}})
	tk.toContent()
}

// isPrefixFold reports whether b could still grow into kw: every byte
// present matches kw case-insensitively and b is shorter than kw.
func isPrefixFold(b []byte, kw string) bool {
	if len(b) >= len(kw) {
		return false
	}
	for i := range b {
		if lower(b[i]) != lower(kw[i]) {
			return false
		}
	}
	return true
}

func (tk *Tokenizer) stepMarkup(avail []byte) bool {
	finished := tk.input.Finished()
	c := avail[tk.pos]

	switch tk.state {
	case stTagOpen:
		switch {
		case c == '!':
			tk.pos++
			tk.commentStart = tk.pos
			tk.state = stMarkupDeclOpen
		case c == '/':
			tk.pos++
			tk.state = stEndTagOpen
		case isASCIIAlpha(c):
			tk.tagIsEnd = false
			tk.tagNameStart = tk.pos
			tk.tagAttrs = nil
			tk.tagSelfClosing = false
			tk.state = stTagName
		case c == '?':
			tk.commentStart = tk.pos
			tk.state = stBogusComment
		default:
			// The '<' was literal text after all; restart the run at it.
			tk.textStart = tk.pos - 1
			tk.state = stContent
		}

	case stEndTagOpen:
		switch {
		case isASCIIAlpha(c):
			tk.tagIsEnd = true
			tk.tagNameStart = tk.pos
			tk.tagAttrs = nil
			tk.tagSelfClosing = false
			tk.state = stTagName
		case c == '>':
			tk.log.add(ErrMissingEndTagName, tk.pos)
			tk.pos++
			tk.toContent()
		default:
			tk.commentStart = tk.pos
			tk.state = stBogusComment
		}

	case stTagName:
		switch {
		case isSpace(c):
			tk.finishTagName(tk.pos)
			tk.pos++
			tk.state = stBeforeAttrName
		case c == '/':
			tk.finishTagName(tk.pos)
			tk.pos++
			tk.state = stSelfClosingStartTag
		case c == '>':
			tk.finishTagName(tk.pos)
			tk.pos++
			tk.emitTag()
		default:
			tk.pos++
		}

	case stBeforeAttrName:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '/':
			tk.pos++
			tk.state = stSelfClosingStartTag
		case c == '>':
			tk.pos++
			tk.emitTag()
		default:
			tk.attrNameStart = tk.pos
			tk.state = stAttrName
		}

	case stAttrName:
		switch {
		case c == '=':
			tk.finishAttrName(tk.pos)
			tk.pos++
			tk.state = stBeforeAttrValue
		case isSpace(c):
			tk.finishAttrName(tk.pos)
			tk.pos++
			tk.state = stAfterAttrName
		case c == '/':
			tk.finishAttrName(tk.pos)
			tk.pushValuelessAttr()
			tk.pos++
			tk.state = stSelfClosingStartTag
		case c == '>':
			tk.finishAttrName(tk.pos)
			tk.pushValuelessAttr()
			tk.pos++
			tk.emitTag()
		default:
			tk.pos++
		}

	case stAfterAttrName:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '=':
			tk.pos++
			tk.state = stBeforeAttrValue
		case c == '/':
			tk.pushValuelessAttr()
			tk.pos++
			tk.state = stSelfClosingStartTag
		case c == '>':
			tk.pushValuelessAttr()
			tk.pos++
			tk.emitTag()
		default:
			tk.pushValuelessAttr()
			tk.attrNameStart = tk.pos
			tk.state = stAttrName
		}

	case stBeforeAttrValue:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '"':
			tk.pos++
			tk.attrValStart = tk.pos
			tk.state = stAttrValueDouble
		case c == '\'':
			tk.pos++
			tk.attrValStart = tk.pos
			tk.state = stAttrValueSingle
		case c == '>':
			tk.log.add(ErrMissingAttributeValue, tk.pos)
			tk.pushValuelessAttr()
			tk.pos++
			tk.emitTag()
		default:
			tk.attrValStart = tk.pos
			tk.state = stAttrValueUnquoted
		}

	case stAttrValueDouble:
		if c == '"' {
			tk.pushAttr(AttrValue{HasValue: true, Span: Span{Start: tk.attrValStart, End: tk.pos}})
			tk.pos++
			tk.state = stAfterAttrValueQuoted
		} else {
			tk.pos++
		}

	case stAttrValueSingle:
		if c == '\'' {
			tk.pushAttr(AttrValue{HasValue: true, Span: Span{Start: tk.attrValStart, End: tk.pos}})
			tk.pos++
			tk.state = stAfterAttrValueQuoted
		} else {
			tk.pos++
		}

	case stAttrValueUnquoted:
		switch {
		case isSpace(c):
			tk.pushAttr(AttrValue{HasValue: true, Span: Span{Start: tk.attrValStart, End: tk.pos}})
			tk.pos++
			tk.state = stBeforeAttrName
		case c == '>':
			tk.pushAttr(AttrValue{HasValue: true, Span: Span{Start: tk.attrValStart, End: tk.pos}})
			tk.pos++
			tk.emitTag()
		default:
			tk.pos++
		}

	case stAfterAttrValueQuoted:
		switch {
		case isSpace(c):
			tk.pos++
			tk.state = stBeforeAttrName
		case c == '/':
			tk.pos++
			tk.state = stSelfClosingStartTag
		case c == '>':
			tk.pos++
			tk.emitTag()
		default:
			tk.state = stBeforeAttrName
		}

	case stSelfClosingStartTag:
		if c == '>' {
			tk.tagSelfClosing = true
			tk.pos++
			tk.emitTag()
		} else {
			tk.state = stBeforeAttrName
		}

	case stMarkupDeclOpen:
		rest := avail[tk.pos:]
		switch {
		case matchKeyword(avail, tk.pos, "--"):
			tk.pos += 2
			tk.commentStart = tk.pos
			tk.state = stCommentStart
		case matchKeywordFold(avail, tk.pos, "doctype"):
			tk.pos += 7
			tk.state = stDoctype
		case !finished && (isPrefixFold(rest, "--") || isPrefixFold(rest, "doctype")):
			return false
		default:
			tk.commentStart = tk.pos
			tk.state = stBogusComment
		}

	case stBogusComment:
		if c == '>' {
			tk.emitComment(tk.pos)
			tk.pos++
			tk.textStart = tk.pos
		} else {
			tk.pos++
		}

	case stCommentStart:
		switch c {
		case '-':
			tk.pos++
			tk.state = stCommentStartDash
		case '>':
			tk.log.add(ErrAbruptClosingOfEmptyComment, tk.pos)
			tk.emitComment(tk.commentStart)
			tk.pos++
			tk.textStart = tk.pos
		default:
			tk.state = stComment
		}

	case stCommentStartDash:
		switch c {
		case '-':
			tk.pos++
			tk.state = stCommentEnd
		case '>':
			tk.log.add(ErrAbruptClosingOfEmptyComment, tk.pos)
			tk.emitComment(tk.commentStart)
			tk.pos++
			tk.textStart = tk.pos
		default:
			tk.state = stComment
		}

	case stComment:
		if c == '-' {
			tk.pos++
			tk.state = stCommentEndDash
		} else {
			tk.pos++
		}

	case stCommentEndDash:
		if c == '-' {
			tk.pos++
			tk.state = stCommentEnd
		} else {
			tk.pos++
			tk.state = stComment
		}

	case stCommentEnd:
		switch c {
		case '>':
			tk.emitComment(tk.pos - 2)
			tk.pos++
			tk.textStart = tk.pos
		case '-':
			// "--->": the extra dashes stay inside the content span.
			tk.pos++
		case '!':
			tk.pos++
			tk.state = stCommentEndBang
		default:
			tk.pos++
			tk.state = stComment
		}

	case stCommentEndBang:
		switch c {
		case '>':
			tk.log.add(ErrIncorrectlyClosedComment, tk.pos)
			tk.emitComment(tk.pos - 3)
			tk.pos++
			tk.textStart = tk.pos
		case '-':
			tk.pos++
			tk.state = stCommentEndDash
		default:
			tk.pos++
			tk.state = stComment
		}

	case stDoctype:
		if isSpace(c) {
			tk.pos++
		}
		tk.state = stBeforeDoctypeName

	case stBeforeDoctypeName:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '>':
			tk.log.add(ErrMissingDoctypeName, tk.pos)
			tk.dtForceQuirks = true
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.dtNameStart = tk.pos
			tk.state = stDoctypeName
		}

	case stDoctypeName:
		switch {
		case isSpace(c):
			tk.dtHasName = true
			tk.dtName = tk.internName(tk.dtNameStart, tk.pos)
			tk.pos++
			tk.state = stAfterDoctypeName
		case c == '>':
			tk.dtHasName = true
			tk.dtName = tk.internName(tk.dtNameStart, tk.pos)
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.pos++
		}

	case stAfterDoctypeName:
		rest := avail[tk.pos:]
		switch {
		case isSpace(c):
			tk.pos++
		case c == '>':
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		case matchKeywordFold(avail, tk.pos, "public"):
			tk.pos += 6
			tk.state = stAfterDoctypePublicKeyword
		case matchKeywordFold(avail, tk.pos, "system"):
			tk.pos += 6
			tk.state = stAfterDoctypeSystemKeyword
		case !finished && (isPrefixFold(rest, "public") || isPrefixFold(rest, "system")):
			return false
		default:
			tk.dtForceQuirks = true
			tk.state = stBogusDoctype
		}

	case stAfterDoctypePublicKeyword:
		switch {
		case isSpace(c):
			tk.pos++
			tk.state = stBeforeDoctypePublicID
		case c == '"':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypePublicIDDouble
		case c == '\'':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypePublicIDSingle
		case c == '>':
			tk.dtForceQuirks = true
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.dtForceQuirks = true
			tk.state = stBogusDoctype
		}

	case stBeforeDoctypePublicID:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '"':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypePublicIDDouble
		case c == '\'':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypePublicIDSingle
		case c == '>':
			tk.dtForceQuirks = true
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.dtForceQuirks = true
			tk.state = stBogusDoctype
		}

	case stDoctypePublicIDDouble, stDoctypePublicIDSingle:
		quote := byte('"')
		if tk.state == stDoctypePublicIDSingle {
			quote = '\''
		}
		switch c {
		case quote:
			id := string(avail[tk.dtScratchStart:tk.pos])
			tk.dtPublicID = &id
			tk.pos++
			tk.state = stAfterDoctypePublicID
		case '>':
			id := string(avail[tk.dtScratchStart:tk.pos])
			tk.dtPublicID = &id
			tk.dtForceQuirks = true
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.pos++
		}

	case stAfterDoctypePublicID:
		switch {
		case isSpace(c):
			tk.pos++
			tk.state = stBetweenDoctypePublicAndSystem
		case c == '>':
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		case c == '"':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDDouble
		case c == '\'':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDSingle
		default:
			tk.dtForceQuirks = true
			tk.state = stBogusDoctype
		}

	case stBetweenDoctypePublicAndSystem:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '>':
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		case c == '"':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDDouble
		case c == '\'':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDSingle
		default:
			tk.dtForceQuirks = true
			tk.state = stBogusDoctype
		}

	case stAfterDoctypeSystemKeyword:
		switch {
		case isSpace(c):
			tk.pos++
			tk.state = stBeforeDoctypeSystemID
		case c == '"':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDDouble
		case c == '\'':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDSingle
		case c == '>':
			tk.dtForceQuirks = true
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.dtForceQuirks = true
			tk.state = stBogusDoctype
		}

	case stBeforeDoctypeSystemID:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '"':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDDouble
		case c == '\'':
			tk.pos++
			tk.dtScratchStart = tk.pos
			tk.state = stDoctypeSystemIDSingle
		case c == '>':
			tk.dtForceQuirks = true
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.dtForceQuirks = true
			tk.state = stBogusDoctype
		}

	case stDoctypeSystemIDDouble, stDoctypeSystemIDSingle:
		quote := byte('"')
		if tk.state == stDoctypeSystemIDSingle {
			quote = '\''
		}
		switch c {
		case quote:
			id := string(avail[tk.dtScratchStart:tk.pos])
			tk.dtSystemID = &id
			tk.pos++
			tk.state = stAfterDoctypeSystemID
		case '>':
			id := string(avail[tk.dtScratchStart:tk.pos])
			tk.dtSystemID = &id
			tk.dtForceQuirks = true
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.pos++
		}

	case stAfterDoctypeSystemID:
		switch {
		case isSpace(c):
			tk.pos++
		case c == '>':
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		default:
			tk.state = stBogusDoctype
		}

	case stBogusDoctype:
		if c == '>' {
			tk.pos++
			tk.emitDoctype()
			tk.toContent()
		} else {
			tk.pos++
		}
	}

	return true
}

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
