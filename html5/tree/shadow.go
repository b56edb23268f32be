package tree

import "github.com/riverrun/htmlcore/dom"

// shadowNode is the Builder's own mirror of the document it is
// streaming dom.Patch values for. The HTML5 tree-construction
// algorithm constantly asks structural questions — a node's
// parent, its previous sibling, whether it is still attached — that
// a pure patch *producer* can't answer by re-reading a dom.Store (the
// whole point of the split is that the store only ever sees committed
// patches). The Builder keeps this shadow exactly in sync with every
// patch it emits; the shadow is never handed to a caller directly.
type shadowNode struct {
	key       dom.Key
	kind      dom.Kind
	name      string // folded tag name, Element only
	namespace string // "", "math", or "svg"
	attrs     []dom.Attr
	value     string // Text / Comment

	parent   *shadowNode
	children []*shadowNode
}

func (n *shadowNode) lastChild() *shadowNode {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

func (n *shadowNode) firstChild() *shadowNode {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *shadowNode) prevSibling() *shadowNode {
	if n.parent == nil {
		return nil
	}
	for i, c := range n.parent.children {
		if c == n {
			if i == 0 {
				return nil
			}
			return n.parent.children[i-1]
		}
	}
	return nil
}

func (n *shadowNode) indexInParent() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// nodeStack is a stack of shadowNodes: the stack of open elements.
type nodeStack []*shadowNode

func (s *nodeStack) push(n *shadowNode) { *s = append(*s, n) }

func (s *nodeStack) pop() *shadowNode {
	i := len(*s)
	if i == 0 {
		return nil
	}
	n := (*s)[i-1]
	*s = (*s)[:i-1]
	return n
}

func (s *nodeStack) top() *shadowNode {
	if i := len(*s); i > 0 {
		return (*s)[i-1]
	}
	return nil
}

func (s *nodeStack) index(n *shadowNode) int {
	for i := len(*s) - 1; i >= 0; i-- {
		if (*s)[i] == n {
			return i
		}
	}
	return -1
}

func (s *nodeStack) contains(name string) bool {
	for _, n := range *s {
		if n.name == name && n.namespace == "" {
			return true
		}
	}
	return false
}

func (s *nodeStack) insertAt(i int, n *shadowNode) {
	*s = append(*s, nil)
	copy((*s)[i+1:], (*s)[i:])
	(*s)[i] = n
}

func (s *nodeStack) remove(n *shadowNode) {
	i := s.index(n)
	if i == -1 {
		return
	}
	copy((*s)[i:], (*s)[i+1:])
	j := len(*s) - 1
	(*s)[j] = nil
	*s = (*s)[:j]
}

// afeMarker is a sentinel active-formatting-list entry pushed at
// applet/object/marquee/table-cell boundaries to stop reconstruction and adoption agency from
// leaking formatting across the boundary.
var afeMarker = &shadowNode{kind: -1}

func isMarker(n *shadowNode) bool { return n == afeMarker }

// afeList is the active formatting elements list: formatting
// element entries plus marker entries, as a plain slice.
type afeList []*shadowNode

func (l *afeList) push(n *shadowNode) { *l = append(*l, n) }

func (l *afeList) pop() *shadowNode {
	i := len(*l)
	if i == 0 {
		return nil
	}
	n := (*l)[i-1]
	*l = (*l)[:i-1]
	return n
}

func (l *afeList) top() *shadowNode {
	if i := len(*l); i > 0 {
		return (*l)[i-1]
	}
	return nil
}

func (l *afeList) index(n *shadowNode) int {
	for i := len(*l) - 1; i >= 0; i-- {
		if (*l)[i] == n {
			return i
		}
	}
	return -1
}

func (l *afeList) insertAt(i int, n *shadowNode) {
	*l = append(*l, nil)
	copy((*l)[i+1:], (*l)[i:])
	(*l)[i] = n
}

func (l *afeList) remove(n *shadowNode) {
	i := l.index(n)
	if i == -1 {
		return
	}
	copy((*l)[i:], (*l)[i+1:])
	j := len(*l) - 1
	(*l)[j] = nil
	*l = (*l)[:j]
}

// specialTagNames is the HTML-namespace part of the HTML5 "special"
// category used by isSpecialElement. It is matched by name, so it
// does not depend on which names the atom table seeds.
var specialTagNames = map[string]bool{
	"address": true, "applet": true, "area": true, "article": true,
	"aside": true, "base": true, "basefont": true, "bgsound": true,
	"blockquote": true, "body": true, "br": true, "button": true,
	"caption": true, "center": true, "col": true, "colgroup": true,
	"dd": true, "details": true, "dir": true, "div": true, "dl": true,
	"dt": true, "embed": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true,
	"frameset": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "head": true, "header": true, "hgroup": true,
	"hr": true, "html": true, "iframe": true, "img": true, "input": true,
	"keygen": true, "li": true, "link": true, "listing": true,
	"main": true, "marquee": true, "menu": true, "meta": true, "nav": true,
	"noembed": true, "noframes": true, "noscript": true, "object": true,
	"ol": true, "p": true, "param": true, "plaintext": true, "pre": true,
	"script": true, "section": true, "select": true, "source": true,
	"style": true, "summary": true, "table": true, "tbody": true,
	"td": true, "template": true, "textarea": true, "tfoot": true,
	"th": true, "thead": true, "title": true, "tr": true, "track": true,
	"ul": true, "wbr": true, "xmp": true,
}

func isSpecialElement(n *shadowNode) bool {
	return n.namespace == "" && specialTagNames[n.name]
}
