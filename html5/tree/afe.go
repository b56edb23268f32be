package tree

import "github.com/riverrun/htmlcore/dom"

// Helpers shared by the insertion modes: child insertion with foster
// parenting, text insertion with coalescing, the active formatting
// elements bookkeeping, and the adoption agency algorithm.

// shouldFosterParent reports whether the next insertion lands in the
// foster parent position instead of under the current node.
func (b *Builder) shouldFosterParent() bool {
	if !b.fosterParenting {
		return false
	}
	switch b.top().name {
	case "table", "tbody", "tfoot", "thead", "tr":
		return true
	}
	return false
}

// fosterTarget locates the insertion point for foster-parented content:
// immediately before the last open table, or under the element below it
// on the stack when the table is parentless.
func (b *Builder) fosterTarget() (parent, before *shadowNode) {
	for i := len(b.oe) - 1; i >= 0; i-- {
		if b.oe[i].name == "table" {
			table := b.oe[i]
			if table.parent != nil {
				return table.parent, table
			}
			return b.oe[i-1], nil
		}
	}
	return b.top(), nil
}

func (b *Builder) fosterParent(n *shadowNode) {
	parent, before := b.fosterTarget()
	if before != nil {
		b.linkInsertBefore(parent, n, before)
	} else {
		b.linkAppend(parent, n)
	}
}

// addChild inserts n at the appropriate place (foster-aware) and pushes
// it onto the stack of open elements if it is one.
func (b *Builder) addChild(n *shadowNode) {
	if n == nil {
		return
	}
	if b.shouldFosterParent() {
		b.fosterParent(n)
	} else {
		b.linkAppend(b.top(), n)
	}
	if n.kind == dom.Element {
		b.oe.push(n)
	}
}

// addElement creates an element for the current start tag and inserts
// it. A self-closing flag on a non-void element is a parse error and is
// otherwise ignored; void elements are popped again by their dispatch
// case, not here.
func (b *Builder) addElement(t *rToken) *shadowNode {
	if t.selfClosing && !voidTagNames[t.name] {
		b.log.add(ErrNonVoidSelfClosing)
	}
	n := b.newElement(t.name, t.attrs)
	b.addChild(n)
	return n
}

var voidTagNames = map[string]bool{
	"area": true, "base": true, "basefont": true, "bgsound": true,
	"br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "keygen": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// addText inserts character data at the appropriate place. With
// CoalesceText the run merges into the parent's trailing text child
// through a SetText; otherwise every call creates a fresh text node.
func (b *Builder) addText(s string) {
	if b.skipLeadingNewline {
		b.skipLeadingNewline = false
		if len(s) > 0 && s[0] == '\r' {
			s = s[1:]
		}
		if len(s) > 0 && s[0] == '\n' {
			s = s[1:]
		}
	}
	if s == "" {
		return
	}

	if b.shouldFosterParent() {
		n := b.newText(s)
		if n != nil {
			b.fosterParent(n)
		}
		return
	}

	parent := b.top()
	if b.opts.CoalesceText {
		if last := parent.lastChild(); last != nil && last.kind == dom.Text {
			last.value += s
			b.emit(dom.SetTextPatch(last.key, last.value))
			return
		}
	}
	n := b.newText(s)
	if n != nil {
		b.linkAppend(parent, n)
	}
}

// copyAttributes merges attributes of t that src does not already carry
// into src, in source order, mirroring the "add any attribute not
// already present" rule for repeated <html>/<body> tags.
func (b *Builder) copyAttributes(src *shadowNode, t *rToken) {
	if src == nil || len(t.attrs) == 0 {
		return
	}
	present := make(map[string]bool, len(src.attrs))
	for _, a := range src.attrs {
		present[a.Name] = true
	}
	changed := false
	for _, a := range t.attrs {
		if !present[a.Name] {
			src.attrs = append(src.attrs, a)
			present[a.Name] = true
			changed = true
		}
	}
	if changed {
		b.emit(dom.SetAttributesPatch(src.key, append([]dom.Attr(nil), src.attrs...)))
	}
}

// generateImpliedEndTags pops open elements while the top is one of
// dd/dt/li/optgroup/option/p, except any name in exceptions.
func (b *Builder) generateImpliedEndTags(exceptions ...string) {
	var i int
loop:
	for i = len(b.oe) - 1; i >= 0; i-- {
		switch b.oe[i].name {
		case "dd", "dt", "li", "optgroup", "option", "p":
			for _, except := range exceptions {
				if b.oe[i].name == except {
					break loop
				}
			}
			continue
		}
		break
	}
	b.oe = b.oe[:i+1]
}

// closeP closes an open <p> in button scope, implying its end tag.
func (b *Builder) closeP() {
	if elementInScope(b.oe, buttonScope, "p") {
		b.generateImpliedEndTags("p")
		popUntil(&b.oe, buttonScope, "p")
	}
}

// addFormattingElement inserts the formatting element for t and records
// it in the active formatting list, applying the Noah's Ark clause
// (at most three identical entries since the last marker).
func (b *Builder) addFormattingElement(t *rToken) {
	b.addElement(t)

	identical := 0
findIdentical:
	for i := len(b.afe) - 1; i >= 0; i-- {
		n := b.afe[i]
		if isMarker(n) {
			break
		}
		if n.namespace != "" || n.name != t.name || len(n.attrs) != len(t.attrs) {
			continue
		}
	compareAttributes:
		for _, a0 := range n.attrs {
			for _, a1 := range t.attrs {
				if a0 == a1 {
					continue compareAttributes
				}
			}
			continue findIdentical
		}
		identical++
		if identical >= 3 {
			b.afe.remove(n)
		}
	}

	b.afe.push(b.top())
}

// clearAFEToLastMarker pops active formatting entries through the most
// recent marker (on leaving applet/object/marquee/caption/cell scopes).
func (b *Builder) clearAFEToLastMarker() {
	for {
		n := b.afe.pop()
		if n == nil || isMarker(n) {
			return
		}
	}
}

// reconstructActiveFormattingElements re-opens, as fresh elements under
// the current node, every formatting entry after the last marker that
// is no longer on the stack of open elements.
func (b *Builder) reconstructActiveFormattingElements() {
	n := b.afe.top()
	if n == nil {
		return
	}
	if isMarker(n) || b.oe.index(n) != -1 {
		return
	}
	i := len(b.afe) - 1
	for !isMarker(b.afe[i]) && b.oe.index(b.afe[i]) == -1 {
		if i == 0 {
			i = -1
			break
		}
		i--
	}
	for {
		i++
		entry := b.afe[i]
		clone := b.newElement(entry.name, append([]dom.Attr(nil), entry.attrs...))
		if clone == nil {
			return
		}
		b.addChild(clone)
		b.afe[i] = clone
		if i == len(b.afe)-1 {
			break
		}
	}
}

// anyOtherEndTag is the InBody "any other end tag" rule: pop to the
// matching open element, unless a special element is crossed first.
func (b *Builder) anyOtherEndTag(name string) {
	for i := len(b.oe) - 1; i >= 0; i-- {
		if b.oe[i].name == name && b.oe[i].namespace == "" {
			b.oe = b.oe[:i]
			return
		}
		if isSpecialElement(b.oe[i]) {
			b.log.add(ErrUnexpectedEndTag)
			return
		}
	}
}

// adoptionAgency is the bounded-depth adoption agency algorithm,
// applied to misnested formatting end tags. It runs up to 8 outer and
// 3 productive inner iterations; on exhausting the outer bound it
// reports a parse error and leaves the stacks in their last computed
// state.
func (b *Builder) adoptionAgency(name string) {
	if current := b.top(); current.name == name && b.afe.index(current) == -1 {
		b.oe.pop()
		return
	}

	for i := 0; i < 8; i++ {
		// Find the formatting element.
		var fe *shadowNode
		for j := len(b.afe) - 1; j >= 0; j-- {
			if isMarker(b.afe[j]) {
				break
			}
			if b.afe[j].name == name {
				fe = b.afe[j]
				break
			}
		}
		if fe == nil {
			b.anyOtherEndTag(name)
			return
		}

		feIndex := b.oe.index(fe)
		if feIndex == -1 {
			b.log.add(ErrMisnestedFormattingClose)
			b.afe.remove(fe)
			return
		}
		if !elementInScope(b.oe, defaultScope, name) {
			b.log.add(ErrMisnestedFormattingClose)
			return
		}

		// Find the furthest block: the highest special element below
		// the formatting element on the stack.
		var fb *shadowNode
		for _, e := range b.oe[feIndex:] {
			if isSpecialElement(e) {
				fb = e
				break
			}
		}
		if fb == nil {
			e := b.oe.pop()
			for e != nil && e != fe {
				e = b.oe.pop()
			}
			b.afe.remove(fe)
			return
		}

		commonAncestor := b.doc
		if feIndex > 0 {
			commonAncestor = b.oe[feIndex-1]
		}
		bookmark := b.afe.index(fe)

		// The inner loop: walk up from the furthest block, cloning
		// formatting entries and hanging the accumulated chain under
		// each clone.
		lastNode := fb
		node := fb
		x := b.oe.index(node)
		j := 0
		for {
			j++
			x--
			if x < 0 {
				break
			}
			node = b.oe[x]
			if node == fe {
				break
			}
			if ni := b.afe.index(node); j > 3 && ni > -1 {
				b.afe.remove(node)
				if ni <= bookmark {
					bookmark--
				}
				continue
			}
			if b.afe.index(node) == -1 {
				b.oe.remove(node)
				continue
			}
			clone := b.newElement(node.name, append([]dom.Attr(nil), node.attrs...))
			if clone == nil {
				return
			}
			b.afe[b.afe.index(node)] = clone
			b.oe[b.oe.index(node)] = clone
			node = clone
			if lastNode == fb {
				bookmark = b.afe.index(node) + 1
			}
			moved, remap := b.relocate(lastNode, node, nil)
			if moved == nil {
				return
			}
			if r := remap[fb]; r != nil {
				fb = r
			}
			lastNode = node
		}

		// Reparent the chain to the common ancestor, or to the foster
		// position for misnested table content.
		var moved *shadowNode
		var remap map[*shadowNode]*shadowNode
		switch commonAncestor.name {
		case "table", "tbody", "tfoot", "thead", "tr":
			parent, before := b.fosterTarget()
			moved, remap = b.relocate(lastNode, parent, before)
		default:
			moved, remap = b.relocate(lastNode, commonAncestor, nil)
		}
		if moved == nil {
			return
		}
		if r := remap[fb]; r != nil {
			fb = r
		}

		// Move the furthest block's children under a fresh clone of
		// the formatting element, then hang the clone back under it.
		clone := b.newElement(fe.name, append([]dom.Attr(nil), fe.attrs...))
		if clone == nil {
			return
		}
		for len(fb.children) > 0 {
			if moved, _ := b.relocate(fb.children[0], clone, nil); moved == nil {
				return
			}
		}
		b.linkAppend(fb, clone)

		if oldLoc := b.afe.index(fe); oldLoc != -1 && oldLoc < bookmark {
			bookmark--
		}
		b.afe.remove(fe)
		if bookmark < 0 {
			bookmark = 0
		}
		if bookmark > len(b.afe) {
			bookmark = len(b.afe)
		}
		b.afe.insertAt(bookmark, clone)

		b.oe.remove(fe)
		b.oe.insertAt(b.oe.index(fb)+1, clone)
	}

	b.log.add(ErrAdoptionAgencyExhausted)
}
