package dom

import "sync"

// Handle identifies one document's arena within a Store. The zero
// Handle is never returned by Store.Create.
type Handle struct {
	id uint64
}

// slot is one arena row, indexed indirectly through document.slots by
// Key. Children are held as an ordered Key list rather than pointers
// so subtree removal can drain iteratively instead of
// recursing to the document's full depth.
type slot struct {
	kind      Kind
	hasParent bool
	parent    Key
	children  []Key

	// Document.
	hasDoctype bool
	doctype    string
	quirks     bool

	// Element.
	name  string
	attrs []Attr
	style []StyleProp

	// Text / Comment.
	value string

	removed bool
}

// document is one handle's versioned arena.
type document struct {
	version   uint64
	slots     map[Key]*slot
	allocated map[Key]bool // never cleared except by a Clear patch
	root      Key
	hasRoot   bool

	cache        *Node
	cacheVersion uint64
	cacheValid   bool
}

func newDocument() *document {
	return &document{
		slots:     make(map[Key]*slot),
		allocated: make(map[Key]bool),
	}
}

// clone returns a deep-enough copy of d that mutating the copy never
// touches d: Store.Apply builds patches against a clone and only
// commits it back on success, which is what gives "Apply atomicity"
// its guarantee for free.
func (d *document) clone() *document {
	c := &document{
		version:   d.version,
		slots:     make(map[Key]*slot, len(d.slots)),
		allocated: make(map[Key]bool, len(d.allocated)),
		root:      d.root,
		hasRoot:   d.hasRoot,
	}
	for k, s := range d.slots {
		cs := *s
		cs.children = append([]Key(nil), s.children...)
		cs.attrs = append([]Attr(nil), s.attrs...)
		cs.style = append([]StyleProp(nil), s.style...)
		c.slots[k] = &cs
	}
	for k, v := range d.allocated {
		c.allocated[k] = v
	}
	return c
}

// Store is a versioned collection of document arenas, each addressed
// by its own Handle. A Store is safe for concurrent use
// across distinct handles; a single handle must only
// ever be driven by one task at a time.
type Store struct {
	mu   sync.Mutex
	docs map[uint64]*document
	next uint64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{docs: make(map[uint64]*document)}
}

// Create allocates a fresh, empty document arena and returns its
// Handle, at version 0 with no root.
func (s *Store) Create() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := Handle{id: s.next}
	s.docs[h.id] = newDocument()
	return h
}

// Drop releases a document's arena. The Handle must not be reused
// afterward.
func (s *Store) Drop(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[h.id]; !ok {
		return ErrUnknownHandle
	}
	delete(s.docs, h.id)
	return nil
}

// Clear drops every document arena the Store owns. It does not affect
// the monotonic handle counter: handles issued before Clear are never
// reissued.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[uint64]*document)
}

// Version returns a handle's current committed version, or an error
// if the handle is unknown.
func (s *Store) Version(h Handle) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[h.id]
	if !ok {
		return 0, ErrUnknownHandle
	}
	return d.version, nil
}

// Apply atomically advances h's version from `from` to `to` (which
// must equal from+1) by applying patches in order. If any patch fails,
// the whole batch aborts: neither the version nor any part of the
// arena changes.
func (s *Store) Apply(h Handle, from, to uint64, patches []Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[h.id]
	if !ok {
		return ErrUnknownHandle
	}
	if from != d.version {
		return wrapApplyErr(Patch{}, ErrVersionMismatch)
	}
	if to != from+1 {
		return wrapApplyErr(Patch{}, ErrNonMonotonicVersion)
	}

	work := d.clone()
	for i, p := range patches {
		if p.Type == Clear && i != 0 {
			return wrapApplyErr(p, ErrMisplacedClear)
		}
		if err := applyOne(work, p); err != nil {
			return wrapApplyErr(p, err)
		}
	}

	work.version = to
	work.cacheValid = false
	s.docs[h.id] = work
	return nil
}

func applyOne(d *document, p Patch) error {
	switch p.Type {
	case Clear:
		d.slots = make(map[Key]*slot)
		d.allocated = make(map[Key]bool)
		d.root = 0
		d.hasRoot = false
		return nil

	case CreateDocument:
		if err := allocate(d, p.Key); err != nil {
			return err
		}
		d.slots[p.Key] = &slot{kind: Document, hasDoctype: p.HasDoctype, doctype: p.Doctype}
		d.root = p.Key
		d.hasRoot = true
		return nil

	case CreateElement:
		if err := allocate(d, p.Key); err != nil {
			return err
		}
		d.slots[p.Key] = &slot{kind: Element, name: p.Name, attrs: append([]Attr(nil), p.Attrs...), style: append([]StyleProp(nil), p.Style...)}
		return nil

	case CreateText:
		if err := allocate(d, p.Key); err != nil {
			return err
		}
		d.slots[p.Key] = &slot{kind: Text, value: p.Value}
		return nil

	case CreateComment:
		if err := allocate(d, p.Key); err != nil {
			return err
		}
		d.slots[p.Key] = &slot{kind: Comment, value: p.Value}
		return nil

	case AppendChild:
		return linkChild(d, p.Parent, p.Child, 0, false)

	case InsertBefore:
		return linkChild(d, p.Parent, p.Child, p.Before, true)

	case RemoveNode:
		return removeSubtree(d, p.Key)

	case SetAttributes:
		s, err := requireKind(d, p.Key, Element)
		if err != nil {
			return err
		}
		s.attrs = append([]Attr(nil), p.Attrs...)
		s.style = append([]StyleProp(nil), p.Style...)
		return nil

	case SetText:
		s := d.slots[p.Key]
		if s == nil {
			return ErrMissingKey
		}
		if s.kind != Text && s.kind != Comment {
			return ErrWrongNodeKind
		}
		s.value = p.Value
		return nil

	default:
		return ErrWrongNodeKind
	}
}

func allocate(d *document, key Key) error {
	if key == 0 {
		return ErrInvalidKey
	}
	if d.allocated[key] {
		return ErrDuplicateKey
	}
	d.allocated[key] = true
	return nil
}

func requireKind(d *document, key Key, kind Kind) (*slot, error) {
	s := d.slots[key]
	if s == nil {
		return nil, ErrMissingKey
	}
	if s.kind != kind {
		return nil, ErrWrongNodeKind
	}
	return s, nil
}

func linkChild(d *document, parentKey, childKey, beforeKey Key, useBefore bool) error {
	parent := d.slots[parentKey]
	if parent == nil {
		return ErrMissingKey
	}
	if parent.kind == Text || parent.kind == Comment {
		return ErrInvalidParent
	}
	child := d.slots[childKey]
	if child == nil {
		return ErrMissingKey
	}
	if child.hasParent {
		return ErrInvalidParent
	}
	if wouldCycle(d, parentKey, childKey) {
		return ErrCycleDetected
	}

	if !useBefore {
		parent.children = append(parent.children, childKey)
	} else {
		idx := -1
		for i, c := range parent.children {
			if c == beforeKey {
				idx = i
				break
			}
		}
		if idx == -1 {
			return ErrInvalidSibling
		}
		parent.children = append(parent.children, 0)
		copy(parent.children[idx+1:], parent.children[idx:])
		parent.children[idx] = childKey
	}

	child.hasParent = true
	child.parent = parentKey
	return nil
}

// wouldCycle reports whether child is an ancestor of parent (making
// parent a descendant of the very subtree being attached under it).
func wouldCycle(d *document, parentKey, childKey Key) bool {
	cur := parentKey
	for {
		if cur == childKey {
			return true
		}
		s := d.slots[cur]
		if s == nil || !s.hasParent {
			return false
		}
		cur = s.parent
	}
}

// removeSubtree removes key and every descendant, draining the
// work-list iteratively so arbitrarily deep documents never grow the
// Go call stack.
func removeSubtree(d *document, key Key) error {
	root := d.slots[key]
	if root == nil {
		return ErrMissingKey
	}
	if root.hasParent {
		if p := d.slots[root.parent]; p != nil {
			for i, c := range p.children {
				if c == key {
					p.children = append(p.children[:i], p.children[i+1:]...)
					break
				}
			}
		}
	}
	if d.hasRoot && d.root == key {
		d.hasRoot = false
		d.root = 0
	}

	queue := []Key{key}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		s := d.slots[k]
		if s == nil {
			continue
		}
		queue = append(queue, s.children...)
		s.removed = true
		delete(d.slots, k)
	}
	return nil
}

// GetCurrent returns the document's committed tree as of its current
// version. The tree is rebuilt lazily and cached per version; external
// readers only ever observe committed states because rebuilding
// happens here, never mid-Apply.
func (s *Store) GetCurrent(h Handle) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[h.id]
	if !ok {
		return nil, ErrUnknownHandle
	}
	if !d.hasRoot {
		return nil, ErrMissingRoot
	}
	if !d.cacheValid || d.cacheVersion != d.version {
		d.cache = buildTree(d, d.root)
		d.cacheVersion = d.version
		d.cacheValid = true
	}
	return d.cache, nil
}

// Materialize returns a deep, independently-owned clone of the
// document's current tree, suitable for diffing or snapshotting
// without risking aliasing into the live arena.
func (s *Store) Materialize(h Handle) (*Node, error) {
	n, err := s.GetCurrent(h)
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

func buildTree(d *document, key Key) *Node {
	s := d.slots[key]
	if s == nil {
		return nil
	}
	n := &Node{
		Kind:       s.kind,
		ID:         key,
		HasDoctype: s.hasDoctype,
		Doctype:    s.doctype,
		Quirks:     s.quirks,
		Name:       s.name,
		Value:      s.value,
	}
	if s.attrs != nil {
		n.Attrs = append([]Attr(nil), s.attrs...)
	}
	if s.style != nil {
		n.Style = append([]StyleProp(nil), s.style...)
	}
	if len(s.children) > 0 {
		n.Children = make([]*Node, 0, len(s.children))
		for _, c := range s.children {
			if cn := buildTree(d, c); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
	}
	return n
}
