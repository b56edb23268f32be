package tree

import (
	"strings"

	"github.com/riverrun/htmlcore/html5"
)

// The table insertion modes. Misplaced content inside a table is
// foster-parented: inserted immediately before the table element rather
// than inside it.

// clearStackToContext pops open elements until the top is one of the
// context names (or html, which always terminates the walk).
func (b *Builder) clearStackToContext(names ...string) {
	for i := len(b.oe) - 1; i >= 0; i-- {
		name := b.oe[i].name
		if name == "html" {
			b.oe = b.oe[:i+1]
			return
		}
		for _, m := range names {
			if name == m {
				b.oe = b.oe[:i+1]
				return
			}
		}
	}
}

// resetInsertionMode re-derives the insertion mode from the stack of
// open elements, after leaving a table context.
func (b *Builder) resetInsertionMode() {
	for i := len(b.oe) - 1; i >= 0; i-- {
		switch b.oe[i].name {
		case "td", "th":
			b.im = inCellIM
			return
		case "tr":
			b.im = inRowIM
			return
		case "tbody", "thead", "tfoot":
			b.im = inTableBodyIM
			return
		case "caption":
			b.im = inCaptionIM
			return
		case "colgroup":
			b.im = inColumnGroupIM
			return
		case "table":
			b.im = inTableIM
			return
		case "head", "body":
			b.im = inBodyIM
			return
		case "html":
			b.im = beforeHeadIM
			return
		}
	}
	b.im = inBodyIM
}

func inTableIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CharacterToken:
		if strings.TrimLeft(t.text, whitespace) == "" {
			b.addText(t.text)
			return true
		}
		// Non-whitespace text in a table is foster-parented.
		b.log.add(ErrStrayTableContent)
		b.fosterParenting = true
		b.reconstructActiveFormattingElements()
		b.addText(t.text)
		b.fosterParenting = false
		return true
	case html5.CommentToken:
		c := b.newComment(t.text)
		b.linkAppend(b.top(), c)
		return true
	case html5.DoctypeToken:
		b.log.add(ErrUnexpectedDoctype)
		return true
	case html5.StartTagToken:
		switch t.name {
		case "caption":
			b.clearStackToContext("table")
			b.afe.push(afeMarker)
			b.addElement(t)
			b.im = inCaptionIM
			return true
		case "colgroup":
			b.clearStackToContext("table")
			b.addElement(t)
			b.im = inColumnGroupIM
			return true
		case "col":
			b.clearStackToContext("table")
			cg := b.newElement("colgroup", nil)
			b.addChild(cg)
			b.im = inColumnGroupIM
			return false
		case "tbody", "tfoot", "thead":
			b.clearStackToContext("table")
			b.addElement(t)
			b.im = inTableBodyIM
			return true
		case "td", "th", "tr":
			b.clearStackToContext("table")
			tb := b.newElement("tbody", nil)
			b.addChild(tb)
			b.im = inTableBodyIM
			return false
		case "table":
			b.log.add(ErrUnexpectedStartTag)
			if popUntil(&b.oe, tableScope, "table") {
				b.resetInsertionMode()
				return false
			}
			return true
		case "style", "script", "title":
			b.addElement(t)
			b.setOriginalIM()
			b.im = textIM
			return true
		case "input":
			if attrValueIs(t.attrs, "type", "hidden") {
				b.log.add(ErrStrayTableContent)
				b.addElement(t)
				b.oe.pop()
				return true
			}
		case "form":
			b.log.add(ErrStrayTableContent)
			if b.form == nil {
				b.form = b.addElement(t)
				b.oe.pop()
			}
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "table":
			if popUntil(&b.oe, tableScope, "table") {
				b.resetInsertionMode()
			} else {
				b.log.add(ErrUnexpectedEndTag)
			}
			return true
		case "body", "caption", "col", "colgroup", "html", "tbody", "td",
			"tfoot", "th", "thead", "tr":
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	case html5.EOFToken:
		return true
	}

	b.log.add(ErrStrayTableContent)
	b.fosterParenting = true
	consumed := inBodyIM(b, t)
	b.fosterParenting = false
	return consumed
}

func inCaptionIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.StartTagToken:
		switch t.name {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th",
			"thead", "tr":
			if popUntil(&b.oe, tableScope, "caption") {
				b.clearAFEToLastMarker()
				b.im = inTableIM
				return false
			}
			// Ignore the token: no caption to close.
			b.log.add(ErrUnexpectedStartTag)
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "caption":
			if popUntil(&b.oe, tableScope, "caption") {
				b.clearAFEToLastMarker()
				b.im = inTableIM
			} else {
				b.log.add(ErrUnexpectedEndTag)
			}
			return true
		case "table":
			if popUntil(&b.oe, tableScope, "caption") {
				b.clearAFEToLastMarker()
				b.im = inTableIM
				return false
			}
			b.log.add(ErrUnexpectedEndTag)
			return true
		case "body", "col", "colgroup", "html", "tbody", "td", "tfoot",
			"th", "thead", "tr":
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	return inBodyIM(b, t)
}

func inColumnGroupIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CharacterToken:
		s := strings.TrimLeft(t.text, whitespace)
		if len(s) < len(t.text) {
			b.addText(t.text[:len(t.text)-len(s)])
			if s == "" {
				return true
			}
			t.text = s
		}
	case html5.CommentToken:
		c := b.newComment(t.text)
		b.linkAppend(b.top(), c)
		return true
	case html5.DoctypeToken:
		b.log.add(ErrUnexpectedDoctype)
		return true
	case html5.StartTagToken:
		switch t.name {
		case "html":
			return inBodyIM(b, t)
		case "col":
			b.addElement(t)
			b.oe.pop()
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "colgroup":
			if b.top().name == "colgroup" {
				b.oe.pop()
				b.im = inTableIM
			} else {
				b.log.add(ErrUnexpectedEndTag)
			}
			return true
		case "col":
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	case html5.EOFToken:
		return true
	}
	if b.top().name == "colgroup" {
		b.oe.pop()
		b.im = inTableIM
		return false
	}
	b.log.add(ErrStrayTableContent)
	return true
}

func inTableBodyIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.StartTagToken:
		switch t.name {
		case "tr":
			b.clearStackToContext("tbody", "tfoot", "thead")
			b.addElement(t)
			b.im = inRowIM
			return true
		case "td", "th":
			b.log.add(ErrUnexpectedStartTag)
			b.clearStackToContext("tbody", "tfoot", "thead")
			tr := b.newElement("tr", nil)
			b.addChild(tr)
			b.im = inRowIM
			return false
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead":
			if elementInScope(b.oe, tableScope, "tbody", "thead", "tfoot") {
				b.clearStackToContext("tbody", "tfoot", "thead")
				b.oe.pop()
				b.im = inTableIM
				return false
			}
			b.log.add(ErrUnexpectedStartTag)
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "tbody", "tfoot", "thead":
			if elementInScope(b.oe, tableScope, t.name) {
				b.clearStackToContext("tbody", "tfoot", "thead")
				b.oe.pop()
				b.im = inTableIM
			} else {
				b.log.add(ErrUnexpectedEndTag)
			}
			return true
		case "table":
			if elementInScope(b.oe, tableScope, "tbody", "thead", "tfoot") {
				b.clearStackToContext("tbody", "tfoot", "thead")
				b.oe.pop()
				b.im = inTableIM
				return false
			}
			b.log.add(ErrUnexpectedEndTag)
			return true
		case "body", "caption", "col", "colgroup", "html", "td", "th", "tr":
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	return inTableIM(b, t)
}

func inRowIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.StartTagToken:
		switch t.name {
		case "td", "th":
			b.clearStackToContext("tr")
			b.addElement(t)
			b.afe.push(afeMarker)
			b.im = inCellIM
			return true
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead", "tr":
			if popUntil(&b.oe, tableScope, "tr") {
				b.im = inTableBodyIM
				return false
			}
			b.log.add(ErrUnexpectedStartTag)
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "tr":
			if popUntil(&b.oe, tableScope, "tr") {
				b.im = inTableBodyIM
			} else {
				b.log.add(ErrUnexpectedEndTag)
			}
			return true
		case "table":
			if popUntil(&b.oe, tableScope, "tr") {
				b.im = inTableBodyIM
				return false
			}
			b.log.add(ErrUnexpectedEndTag)
			return true
		case "tbody", "tfoot", "thead":
			if elementInScope(b.oe, tableScope, t.name) {
				popUntil(&b.oe, tableScope, "tr")
				b.im = inTableBodyIM
				return false
			}
			b.log.add(ErrUnexpectedEndTag)
			return true
		case "body", "caption", "col", "colgroup", "html", "td", "th":
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	return inTableIM(b, t)
}

// closeTheCell closes an open td/th and returns to the row mode.
func (b *Builder) closeTheCell() bool {
	if popUntil(&b.oe, tableScope, "td", "th") {
		b.clearAFEToLastMarker()
		b.im = inRowIM
		return true
	}
	return false
}

func inCellIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.StartTagToken:
		switch t.name {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th",
			"thead", "tr":
			if b.closeTheCell() {
				return false
			}
			b.log.add(ErrUnexpectedStartTag)
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "td", "th":
			if elementInScope(b.oe, tableScope, t.name) {
				b.generateImpliedEndTags()
				popUntil(&b.oe, tableScope, t.name)
				b.clearAFEToLastMarker()
				b.im = inRowIM
			} else {
				b.log.add(ErrUnexpectedEndTag)
			}
			return true
		case "body", "caption", "col", "colgroup", "html":
			b.log.add(ErrUnexpectedEndTag)
			return true
		case "table", "tbody", "tfoot", "thead", "tr":
			if b.closeTheCell() {
				return false
			}
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	return inBodyIM(b, t)
}
