package dom

import "github.com/beevik/etree"

// etreeParent is satisfied by both *etree.Document and *etree.Element;
// it lets ExportEtree's recursion treat the document root and every
// element the same way.
type etreeParent interface {
	CreateElement(tag string) *etree.Element
	CreateText(text string) *etree.CharData
	CreateComment(comment string) *etree.Comment
}

// ExportEtree materializes n (which must be a Document node) into a
// *etree.Document, mapping Element/Attr/Text/Comment 1:1. This is a
// debug/interop path only: it lets tests and the
// demo integrator run XPath-style queries (etree.Element.FindElement)
// over a parsed fixture without teaching the dom package anything
// about XPath itself.
//
// A valueless attribute (e.g. `<input disabled>`) is exported with an
// empty string value, since etree's attribute model has no boolean
// "present with no value" state of its own.
func ExportEtree(n *Node) (*etree.Document, error) {
	if n == nil || n.Kind != Document {
		return nil, ErrMissingRoot
	}
	doc := etree.NewDocument()
	for _, child := range n.Children {
		appendEtreeChild(doc, child)
	}
	return doc, nil
}

func appendEtreeChild(parent etreeParent, n *Node) {
	switch n.Kind {
	case Element:
		el := parent.CreateElement(n.Name)
		for _, a := range n.Attrs {
			if a.HasValue {
				el.CreateAttr(a.Name, a.Value)
			} else {
				el.CreateAttr(a.Name, "")
			}
		}
		for _, c := range n.Children {
			appendEtreeChild(el, c)
		}
	case Text:
		parent.CreateText(n.Value)
	case Comment:
		parent.CreateComment(n.Value)
	}
}
