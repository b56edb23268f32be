package dom

// PatchType is the closed patch alphabet. The tree
// builder (html5/tree) and Diff both produce streams of exactly these
// variants, so a single Store.Apply implementation serves both.
type PatchType int

const (
	Clear PatchType = iota
	CreateDocument
	CreateElement
	CreateText
	CreateComment
	AppendChild
	InsertBefore
	RemoveNode
	SetAttributes
	SetText
)

func (t PatchType) String() string {
	switch t {
	case Clear:
		return "Clear"
	case CreateDocument:
		return "CreateDocument"
	case CreateElement:
		return "CreateElement"
	case CreateText:
		return "CreateText"
	case CreateComment:
		return "CreateComment"
	case AppendChild:
		return "AppendChild"
	case InsertBefore:
		return "InsertBefore"
	case RemoveNode:
		return "RemoveNode"
	case SetAttributes:
		return "SetAttributes"
	case SetText:
		return "SetText"
	default:
		return "Unknown"
	}
}

// Patch is one mutation in a batch. Which fields are meaningful
// depends on Type; see the per-field comments. A batch's invariants
// are enforced by Store.Apply, not by this type.
type Patch struct {
	Type PatchType

	// CreateDocument / CreateElement / CreateText / CreateComment /
	// RemoveNode / SetAttributes / SetText: the node the patch targets.
	Key Key

	// CreateDocument.
	HasDoctype bool
	Doctype    string

	// CreateElement / SetAttributes.
	Name  string
	Attrs []Attr
	Style []StyleProp

	// CreateText / CreateComment / SetText.
	Value string

	// AppendChild / InsertBefore.
	Parent Key
	Child  Key

	// InsertBefore only: Child is inserted immediately before Before,
	// which must already be a child of Parent.
	Before Key
}

// CreateDocumentPatch builds a CreateDocument patch. doctype == nil
// means the document has no doctype.
func CreateDocumentPatch(key Key, doctype *string) Patch {
	p := Patch{Type: CreateDocument, Key: key}
	if doctype != nil {
		p.HasDoctype = true
		p.Doctype = *doctype
	}
	return p
}

// CreateElementPatch builds a CreateElement patch.
func CreateElementPatch(key Key, name string, attrs []Attr) Patch {
	return Patch{Type: CreateElement, Key: key, Name: name, Attrs: attrs}
}

// CreateElementPatchWithStyle is CreateElementPatch plus an initial
// style list, for callers (e.g. Diff) that synthesize a styled element
// in one shot rather than via a follow-up SetAttributes.
func CreateElementPatchWithStyle(key Key, name string, attrs []Attr, style []StyleProp) Patch {
	return Patch{Type: CreateElement, Key: key, Name: name, Attrs: attrs, Style: style}
}

// CreateTextPatch builds a CreateText patch.
func CreateTextPatch(key Key, value string) Patch {
	return Patch{Type: CreateText, Key: key, Value: value}
}

// CreateCommentPatch builds a CreateComment patch.
func CreateCommentPatch(key Key, value string) Patch {
	return Patch{Type: CreateComment, Key: key, Value: value}
}

// AppendChildPatch builds an AppendChild patch.
func AppendChildPatch(parent, child Key) Patch {
	return Patch{Type: AppendChild, Parent: parent, Child: child}
}

// InsertBeforePatch builds an InsertBefore patch.
func InsertBeforePatch(parent, child, before Key) Patch {
	return Patch{Type: InsertBefore, Parent: parent, Child: child, Before: before}
}

// RemoveNodePatch builds a RemoveNode patch.
func RemoveNodePatch(key Key) Patch {
	return Patch{Type: RemoveNode, Key: key}
}

// SetAttributesPatch builds a SetAttributes patch.
func SetAttributesPatch(key Key, attrs []Attr) Patch {
	return Patch{Type: SetAttributes, Key: key, Attrs: attrs}
}

// SetTextPatch builds a SetText patch.
func SetTextPatch(key Key, value string) Patch {
	return Patch{Type: SetText, Key: key, Value: value}
}

// ClearPatch builds a Clear patch. It must appear only as the first
// patch of a batch, always paired with a fresh
// CreateDocument immediately after it.
func ClearPatch() Patch {
	return Patch{Type: Clear}
}
