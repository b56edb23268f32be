package tree

import (
	"strings"

	"github.com/riverrun/htmlcore/dom"
	"github.com/riverrun/htmlcore/html5"
)

const whitespace = " \t\r\n\f"

// The insertion modes. Each is a state-transition function returning
// whether the token was consumed; returning false reprocesses the same
// token against the (changed) current mode.

func initialIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CharacterToken:
		if strings.TrimLeft(t.text, whitespace) == "" {
			return true
		}
	case html5.CommentToken:
		b.pendingComments = append(b.pendingComments, t.text)
		return true
	case html5.DoctypeToken:
		var doctype *string
		if t.hasDoctypeName {
			doctype = &t.doctypeName
		}
		b.ensureDocument(doctype)
		if t.forceQuirks || !t.hasDoctypeName || t.doctypeName != "html" {
			b.quirks = true
		}
		b.im = beforeHTMLIM
		return true
	}
	// No doctype before the first real content: quirks mode.
	b.ensureDocument(nil)
	b.quirks = true
	b.im = beforeHTMLIM
	return false
}

func beforeHTMLIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.DoctypeToken:
		b.log.add(ErrUnexpectedDoctype)
		return true
	case html5.CommentToken:
		c := b.newComment(t.text)
		b.linkAppend(b.doc, c)
		return true
	case html5.CharacterToken:
		t.text = strings.TrimLeft(t.text, whitespace)
		if t.text == "" {
			return true
		}
	case html5.StartTagToken:
		if t.name == "html" {
			b.addElement(t)
			b.im = beforeHeadIM
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "head", "body", "html", "br":
			// Drop down to the auto-open path below.
		default:
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	html := b.newElement("html", nil)
	b.addChild(html)
	b.im = beforeHeadIM
	return false
}

func beforeHeadIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CharacterToken:
		t.text = strings.TrimLeft(t.text, whitespace)
		if t.text == "" {
			return true
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
		case "head":
			b.head = b.addElement(t)
			b.im = inHeadIM
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "head", "body", "html", "br":
			// Auto-open below.
		default:
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	b.head = b.newElement("head", nil)
	b.addChild(b.head)
	b.im = inHeadIM
	return false
}

func inHeadIM(b *Builder, t *rToken) bool {
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
		case "base", "basefont", "bgsound", "link", "meta":
			b.addElement(t)
			b.oe.pop()
			return true
		case "title", "noscript", "noframes", "style", "script":
			b.addElement(t)
			b.setOriginalIM()
			b.im = textIM
			return true
		case "head":
			b.log.add(ErrUnexpectedStartTag)
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "head":
			b.oe.pop()
			b.im = afterHeadIM
			return true
		case "body", "html", "br":
			// Implied </head>, then reprocess.
		default:
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	b.oe.pop()
	b.im = afterHeadIM
	return false
}

func afterHeadIM(b *Builder, t *rToken) bool {
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
		case "body":
			b.addElement(t)
			b.framesetOK = false
			b.im = inBodyIM
			return true
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "title":
			// Head content after </head>: process with the head element
			// temporarily back on the stack.
			b.log.add(ErrUnexpectedStartTag)
			b.oe.push(b.head)
			consumed := inHeadIM(b, t)
			b.oe.remove(b.head)
			return consumed
		case "head":
			b.log.add(ErrUnexpectedStartTag)
			return true
		}
	case html5.EndTagToken:
		switch t.name {
		case "body", "html", "br":
			// Implied <body>, then reprocess.
		default:
			b.log.add(ErrUnexpectedEndTag)
			return true
		}
	}
	body := b.newElement("body", nil)
	b.addChild(body)
	b.framesetOK = true
	b.im = inBodyIM
	return false
}

func (b *Builder) setOriginalIM() {
	b.originalIM = b.im
}

func isHeading(name string) bool {
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func inBodyIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CharacterToken:
		b.reconstructActiveFormattingElements()
		b.addText(t.text)
		if b.framesetOK && strings.TrimLeft(t.text, whitespace) != "" {
			b.framesetOK = false
		}
		return true

	case html5.CommentToken:
		c := b.newComment(t.text)
		b.linkAppend(b.top(), c)
		return true

	case html5.DoctypeToken:
		b.log.add(ErrUnexpectedDoctype)
		return true

	case html5.StartTagToken:
		return inBodyStartTag(b, t)

	case html5.EndTagToken:
		return inBodyEndTag(b, t)

	case html5.EOFToken:
		// Stop parsing.
		return true
	}
	return true
}

func inBodyStartTag(b *Builder, t *rToken) bool {
	switch t.name {
	case "html":
		b.log.add(ErrUnexpectedStartTag)
		if len(b.oe) > 0 {
			b.copyAttributes(b.oe[0], t)
		}
	case "body":
		b.log.add(ErrUnexpectedStartTag)
		if len(b.oe) >= 2 && b.oe[1].name == "body" {
			b.framesetOK = false
			b.copyAttributes(b.oe[1], t)
		}
	case "head", "frameset", "frame":
		b.log.add(ErrUnexpectedStartTag)
	case "address", "article", "aside", "blockquote", "center", "details",
		"dir", "div", "dl", "fieldset", "figcaption", "figure", "footer",
		"header", "hgroup", "main", "menu", "nav", "ol", "p", "section",
		"summary", "ul":
		b.closeP()
		b.addElement(t)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		b.closeP()
		if isHeading(b.top().name) {
			b.log.add(ErrUnexpectedStartTag)
			b.oe.pop()
		}
		b.addElement(t)
	case "pre", "listing":
		b.closeP()
		b.addElement(t)
		b.skipLeadingNewline = true
		b.framesetOK = false
	case "form":
		if b.form != nil {
			b.log.add(ErrUnexpectedStartTag)
			return true
		}
		b.closeP()
		b.form = b.addElement(t)
	case "li":
		b.framesetOK = false
		for i := len(b.oe) - 1; i >= 0; i-- {
			node := b.oe[i]
			switch node.name {
			case "li":
				b.generateImpliedEndTags("li")
				popUntil(&b.oe, listItemScope, "li")
			case "address", "div", "p":
				continue
			default:
				if !isSpecialElement(node) {
					continue
				}
			}
			break
		}
		b.closeP()
		b.addElement(t)
	case "dd", "dt":
		b.framesetOK = false
		for i := len(b.oe) - 1; i >= 0; i-- {
			node := b.oe[i]
			switch node.name {
			case "dd", "dt":
				b.generateImpliedEndTags(node.name)
				popUntil(&b.oe, defaultScope, node.name)
			case "address", "div", "p":
				continue
			default:
				if !isSpecialElement(node) {
					continue
				}
			}
			break
		}
		b.closeP()
		b.addElement(t)
	case "plaintext":
		b.closeP()
		b.addElement(t)
	case "button":
		if elementInScope(b.oe, defaultScope, "button") {
			b.log.add(ErrUnexpectedStartTag)
			b.generateImpliedEndTags()
			popUntil(&b.oe, defaultScope, "button")
		}
		b.reconstructActiveFormattingElements()
		b.addElement(t)
		b.framesetOK = false
	case "a":
		for i := len(b.afe) - 1; i >= 0 && !isMarker(b.afe[i]); i-- {
			if n := b.afe[i]; n.name == "a" {
				b.log.add(ErrUnexpectedStartTag)
				b.adoptionAgency("a")
				b.afe.remove(n)
				b.oe.remove(n)
				break
			}
		}
		b.reconstructActiveFormattingElements()
		b.addFormattingElement(t)
	case "b", "big", "code", "em", "font", "i", "s", "small", "strike",
		"strong", "tt", "u":
		b.reconstructActiveFormattingElements()
		b.addFormattingElement(t)
	case "nobr":
		b.reconstructActiveFormattingElements()
		if elementInScope(b.oe, defaultScope, "nobr") {
			b.log.add(ErrUnexpectedStartTag)
			b.adoptionAgency("nobr")
			b.reconstructActiveFormattingElements()
		}
		b.addFormattingElement(t)
	case "applet", "marquee", "object":
		b.reconstructActiveFormattingElements()
		b.addElement(t)
		b.afe.push(afeMarker)
		b.framesetOK = false
	case "table":
		if !b.quirks {
			b.closeP()
		}
		b.addElement(t)
		b.framesetOK = false
		b.im = inTableIM
	case "area", "br", "embed", "img", "keygen", "wbr":
		b.reconstructActiveFormattingElements()
		b.addElement(t)
		b.oe.pop()
		b.framesetOK = false
	case "input":
		b.reconstructActiveFormattingElements()
		b.addElement(t)
		b.oe.pop()
		if !attrValueIs(t.attrs, "type", "hidden") {
			b.framesetOK = false
		}
	case "param", "source", "track":
		b.addElement(t)
		b.oe.pop()
	case "hr":
		b.closeP()
		b.addElement(t)
		b.oe.pop()
		b.framesetOK = false
	case "image":
		b.log.add(ErrUnexpectedStartTag)
		t.name = "img"
		return false
	case "textarea":
		b.addElement(t)
		b.skipLeadingNewline = true
		b.framesetOK = false
		b.setOriginalIM()
		b.im = textIM
	case "xmp":
		b.closeP()
		b.reconstructActiveFormattingElements()
		b.framesetOK = false
		b.addElement(t)
		b.setOriginalIM()
		b.im = textIM
	case "iframe":
		b.framesetOK = false
		b.addElement(t)
		b.setOriginalIM()
		b.im = textIM
	case "noembed", "noscript":
		b.addElement(t)
		b.setOriginalIM()
		b.im = textIM
	case "script", "style", "title":
		b.addElement(t)
		b.setOriginalIM()
		b.im = textIM
	case "select":
		b.reconstructActiveFormattingElements()
		b.addElement(t)
		b.framesetOK = false
	case "option", "optgroup":
		if b.top().name == "option" {
			b.oe.pop()
		}
		b.reconstructActiveFormattingElements()
		b.addElement(t)
	case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th",
		"thead", "tr":
		b.log.add(ErrStrayTableContent)
	default:
		b.reconstructActiveFormattingElements()
		b.addElement(t)
	}
	return true
}

func inBodyEndTag(b *Builder, t *rToken) bool {
	switch t.name {
	case "body":
		if elementInScope(b.oe, defaultScope, "body") {
			b.im = afterBodyIM
		} else {
			b.log.add(ErrUnexpectedEndTag)
		}
	case "html":
		if elementInScope(b.oe, defaultScope, "body") {
			b.im = afterBodyIM
			return false
		}
		b.log.add(ErrUnexpectedEndTag)
	case "a", "b", "big", "code", "em", "font", "i", "nobr", "s",
		"small", "strike", "strong", "tt", "u":
		b.adoptionAgency(t.name)
	case "address", "article", "aside", "blockquote", "button", "center",
		"details", "dir", "div", "dl", "fieldset", "figcaption", "figure",
		"footer", "header", "hgroup", "listing", "main", "menu", "nav",
		"ol", "pre", "section", "summary", "ul":
		if !elementInScope(b.oe, defaultScope, t.name) {
			b.log.add(ErrUnexpectedEndTag)
		} else {
			b.generateImpliedEndTags()
			if b.top().name != t.name {
				b.log.add(ErrUnexpectedEndTag)
			}
			popUntil(&b.oe, defaultScope, t.name)
		}
	case "form":
		node := b.form
		b.form = nil
		i := -1
		if node != nil {
			i = indexOfElementInScope(b.oe, defaultScope, "form")
		}
		if node == nil || i == -1 || b.oe[i] != node {
			b.log.add(ErrUnexpectedEndTag)
		} else {
			b.generateImpliedEndTags()
			if b.top() != node {
				b.log.add(ErrUnexpectedEndTag)
			}
			b.oe.remove(node)
		}
	case "p":
		if !elementInScope(b.oe, buttonScope, "p") {
			b.log.add(ErrUnexpectedEndTag)
			p := b.newElement("p", nil)
			b.addChild(p)
		}
		b.generateImpliedEndTags("p")
		popUntil(&b.oe, buttonScope, "p")
	case "li":
		if !elementInScope(b.oe, listItemScope, "li") {
			b.log.add(ErrUnexpectedEndTag)
		} else {
			b.generateImpliedEndTags("li")
			popUntil(&b.oe, listItemScope, "li")
		}
	case "dd", "dt":
		if !elementInScope(b.oe, defaultScope, t.name) {
			b.log.add(ErrUnexpectedEndTag)
		} else {
			b.generateImpliedEndTags(t.name)
			popUntil(&b.oe, defaultScope, t.name)
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		headings := []string{"h1", "h2", "h3", "h4", "h5", "h6"}
		if !elementInScope(b.oe, defaultScope, headings...) {
			b.log.add(ErrUnexpectedEndTag)
		} else {
			b.generateImpliedEndTags()
			if b.top().name != t.name {
				b.log.add(ErrUnexpectedEndTag)
			}
			popUntil(&b.oe, defaultScope, headings...)
		}
	case "applet", "marquee", "object":
		if popUntil(&b.oe, defaultScope, t.name) {
			b.clearAFEToLastMarker()
		} else {
			b.log.add(ErrUnexpectedEndTag)
		}
	case "br":
		b.log.add(ErrUnexpectedEndTag)
		b.reconstructActiveFormattingElements()
		br := b.newElement("br", nil)
		b.addChild(br)
		b.oe.pop()
		b.framesetOK = false
	default:
		b.anyOtherEndTag(t.name)
	}
	return true
}

func attrValueIs(attrs []dom.Attr, name, value string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return a.HasValue && strings.EqualFold(a.Value, value)
		}
	}
	return false
}

// textIM is the Text mode entered for title/textarea/script/style and
// the other raw-content elements. Only Character tokens and the
// matching end tag are normally seen; a non-matching end tag is
// literalized into the current text run as "</name>", and an unexpected
// start tag as "<name>", both with the folded tag name.
func textIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CharacterToken:
		b.addText(t.text)
		return true
	case html5.StartTagToken:
		b.addText("<" + t.name + ">")
		return true
	case html5.EndTagToken:
		if t.name == b.top().name {
			b.oe.pop()
			b.im = b.originalIM
			b.originalIM = nil
			return true
		}
		b.addText("</" + t.name + ">")
		return true
	case html5.EOFToken:
		b.log.add(ErrUnexpectedEndTag)
		b.oe.pop()
		b.im = b.originalIM
		b.originalIM = nil
		return false
	}
	return true
}

func afterBodyIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CharacterToken:
		if strings.TrimLeft(t.text, whitespace) == "" {
			return inBodyIM(b, t)
		}
	case html5.CommentToken:
		// Attached to the <html> element, not the body.
		if len(b.oe) > 0 {
			c := b.newComment(t.text)
			b.linkAppend(b.oe[0], c)
			return true
		}
	case html5.DoctypeToken:
		b.log.add(ErrUnexpectedDoctype)
		return true
	case html5.StartTagToken:
		if t.name == "html" {
			return inBodyIM(b, t)
		}
	case html5.EndTagToken:
		if t.name == "html" {
			b.im = afterAfterBodyIM
			return true
		}
	case html5.EOFToken:
		return true
	}
	b.im = inBodyIM
	return false
}

func afterAfterBodyIM(b *Builder, t *rToken) bool {
	switch t.typ {
	case html5.CommentToken:
		c := b.newComment(t.text)
		b.linkAppend(b.doc, c)
		return true
	case html5.CharacterToken:
		if strings.TrimLeft(t.text, whitespace) == "" {
			return inBodyIM(b, t)
		}
	case html5.DoctypeToken:
		return inBodyIM(b, t)
	case html5.StartTagToken:
		if t.name == "html" {
			return inBodyIM(b, t)
		}
	case html5.EOFToken:
		return true
	}
	b.im = inBodyIM
	return false
}
