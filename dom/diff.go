package dom

// KeyAllocator hands out the strictly monotonic Keys a diff's Create*
// patches need. The tree builder and diffing code each allocate from
// such a counter, never reusing a value within a stream; a diff's own
// allocator is independent of any tree builder's, since the two never
// share a patch stream.
type KeyAllocator struct {
	next uint32
}

// NewKeyAllocator returns an allocator whose first Alloc call returns
// start+1 (start itself is never handed out, matching the "0 is
// invalid" convention).
func NewKeyAllocator(start Key) *KeyAllocator {
	return &KeyAllocator{next: uint32(start)}
}

// Alloc returns the next Key in sequence.
func (a *KeyAllocator) Alloc() Key {
	a.next++
	return Key(a.next)
}

// Diff produces a patch stream that, applied to a store holding prev,
// yields next. The traversal is pre-order; two
// identical (prev, next, starting allocator state) triples always
// yield byte-identical output.
//
// prev == nil is treated as an empty store: the result is a plain
// create stream with no Clear, since there is nothing to reset.
func Diff(prev, next *Node, alloc *KeyAllocator) []Patch {
	if next == nil {
		if prev == nil {
			return nil
		}
		return []Patch{RemoveNodePatch(prev.ID)}
	}
	if prev == nil {
		_, patches := createSubtree(next, alloc)
		return patches
	}

	if needsReset(prev, next) {
		patches := []Patch{ClearPatch()}
		_, created := createSubtree(next, alloc)
		return append(patches, created...)
	}

	var removals, rest []Patch
	diffNode(prev, next, alloc, &removals, &rest)
	return append(removals, rest...)
}

// needsReset implements the conservative reset policy: any of a
// root kind change, element tag rename, doctype change, or comment
// content change anywhere in the tree forces the whole batch to reset
// rather than attempt a general ordered-list diff. Child lists are
// compared position by position over their shared prefix, so a
// mid-list insert, reorder or non-suffix shrink is detected only when
// it puts a node of a different kind or tag name at some shared
// position; one that keeps every shared position's kind and tag name
// is diffed as in-place updates plus a trailing append or removal.
func needsReset(prev, next *Node) bool {
	if prev.Kind != next.Kind {
		return true
	}
	switch prev.Kind {
	case Document:
		if prev.HasDoctype != next.HasDoctype || prev.Doctype != next.Doctype {
			return true
		}
	case Element:
		if prev.Name != next.Name {
			return true
		}
	case Comment:
		if prev.Value != next.Value {
			return true
		}
	}

	n := len(prev.Children)
	if len(next.Children) < n {
		n = len(next.Children)
	}
	for i := 0; i < n; i++ {
		if !compatibleKind(prev.Children[i], next.Children[i]) {
			return true // mid-list insert or arbitrary reorder
		}
	}
	for i := 0; i < n; i++ {
		if needsReset(prev.Children[i], next.Children[i]) {
			return true
		}
	}
	return false
}

// compatibleKind reports whether a and b could be "the same" node
// continuing at this position: matching Kind, and for Elements,
// matching tag name.
func compatibleKind(a, b *Node) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == Element && a.Name != b.Name {
		return false
	}
	return true
}

// diffNode emits SetAttributes/SetText for prev/next's own differing
// fields (prev and next are already known compatibleKind by the
// caller), then recurses into the matched child prefix, then handles
// a trailing shrink (removals) or growth (creates) of the child list.
// Removals are collected separately so the caller can place them
// before all updates/creates in the final batch.
func diffNode(prev, next *Node, alloc *KeyAllocator, removals, rest *[]Patch) {
	key := prev.ID

	switch prev.Kind {
	case Element:
		if !AttrsEqual(prev.Attrs, next.Attrs) || !StylesEqual(prev.Style, next.Style) {
			*rest = append(*rest, Patch{
				Type:  SetAttributes,
				Key:   key,
				Attrs: append([]Attr(nil), next.Attrs...),
				Style: append([]StyleProp(nil), next.Style...),
			})
		}
	case Text, Comment:
		if prev.Value != next.Value {
			*rest = append(*rest, SetTextPatch(key, next.Value))
		}
	}

	n := len(prev.Children)
	if len(next.Children) < n {
		n = len(next.Children)
	}
	for i := 0; i < n; i++ {
		diffNode(prev.Children[i], next.Children[i], alloc, removals, rest)
	}

	for i := len(prev.Children) - 1; i >= n; i-- {
		*removals = append(*removals, RemoveNodePatch(prev.Children[i].ID))
	}

	for i := n; i < len(next.Children); i++ {
		childKey, childPatches := createSubtree(next.Children[i], alloc)
		*rest = append(*rest, childPatches...)
		*rest = append(*rest, AppendChildPatch(key, childKey))
	}
}

// createSubtree allocates a fresh Key for n and every descendant and
// returns a patch list that, applied to an arena with nothing at those
// keys, builds the subtree rooted at n (unattached to any parent; the
// caller links it in with its own AppendChild/InsertBefore).
func createSubtree(n *Node, alloc *KeyAllocator) (Key, []Patch) {
	key := alloc.Alloc()
	var patches []Patch

	switch n.Kind {
	case Document:
		var dt *string
		if n.HasDoctype {
			d := n.Doctype
			dt = &d
		}
		patches = append(patches, CreateDocumentPatch(key, dt))
	case Element:
		patches = append(patches, CreateElementPatchWithStyle(key, n.Name, append([]Attr(nil), n.Attrs...), append([]StyleProp(nil), n.Style...)))
	case Text:
		patches = append(patches, CreateTextPatch(key, n.Value))
	case Comment:
		patches = append(patches, CreateCommentPatch(key, n.Value))
	}

	for _, ch := range n.Children {
		childKey, childPatches := createSubtree(ch, alloc)
		patches = append(patches, childPatches...)
		patches = append(patches, AppendChildPatch(key, childKey))
	}
	return key, patches
}
