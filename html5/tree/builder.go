// Package tree implements the HTML5 tree-construction algorithm: a
// resumable state machine over insertion modes, the stack of open
// elements, and the active formatting elements list, that consumes
// html5.Token batches and emits dom.Patch batches.
package tree

import (
	"strings"

	"github.com/riverrun/htmlcore/atom"
	"github.com/riverrun/htmlcore/dom"
	"github.com/riverrun/htmlcore/html5"
)

// Options configures a Builder. The zero value is ready to use.
type Options struct {
	// CoalesceText merges a Character token into the current parent's
	// trailing text child (one CreateText followed by SetText updates)
	// instead of creating a sibling text node per token. The merge is
	// purely local: it looks only at the parent's last child, so a
	// structural mutation in between always breaks it.
	CoalesceText bool
	// ErrorLogCapacity bounds the bounded parse-error log; 0 selects
	// the package default.
	ErrorLogCapacity int
}

// Signal is the per-token backpressure hook: a driver may pause the
// pipeline when a token's processing asks for it. The current algorithm
// always reports SignalContinue; the Suspend values exist for script
// support, where a <script> end tag must block on resource resolution.
type Signal int

const (
	SignalContinue Signal = iota
	SignalSuspendScript
	SignalSuspendOther
)

// insertionMode is one state of the tree-construction dispatch. It
// reports whether the token was consumed; false means the mode changed
// and the same token must be reprocessed against the new mode.
type insertionMode func(b *Builder, t *rToken) bool

// rToken is a Token already resolved against its Batch's Resolver:
// every span has become a decoded string, so insertion-mode code never
// touches html5.Resolver directly. Modes may rewrite name/text in place
// (e.g. the <image> → <img> renaming) before asking for a reprocess.
type rToken struct {
	typ html5.TokenType

	name        string // StartTag / EndTag: folded tag name
	attrs       []dom.Attr
	selfClosing bool

	text string // Character / Comment

	hasDoctypeName bool
	doctypeName    string
	publicID       *string
	systemID       *string
	forceQuirks    bool
}

// Builder is a resumable tree-construction state machine. It is not
// safe for concurrent use: one task drives one Builder for one document
// at a time.
type Builder struct {
	atoms      *atom.Table
	atomsID    uint64
	opts       Options
	log        *ErrorLog
	keyCounter uint32

	doc    *shadowNode
	quirks bool

	im         insertionMode
	originalIM insertionMode

	oe  nodeStack
	afe afeList

	head            *shadowNode
	form            *shadowNode
	fosterParenting bool

	ready []dom.Patch

	framesetOK         bool
	skipLeadingNewline bool

	// Comments seen before the document node exists (Initial mode):
	// held until the doctype decision fixes the CreateDocument patch,
	// then flushed under the document in order.
	pendingComments []string

	// fatal records the first engine-invariant error; once set, no
	// further token changes any state.
	fatal error
}

// NewBuilder returns a Builder that interns names through atoms.
func NewBuilder(atoms *atom.Table, opts Options) *Builder {
	return &Builder{
		atoms:      atoms,
		atomsID:    atoms.Identity(),
		opts:       opts,
		log:        NewErrorLog(opts.ErrorLogCapacity),
		im:         initialIM,
		framesetOK: true,
	}
}

// Errors returns the bounded tree-construction parse-error log.
func (b *Builder) Errors() *ErrorLog { return b.log }

// Quirks reports whether the document was put in quirks mode (missing
// or force-quirks doctype). It is the only observable consequence of
// quirks mode in this engine.
func (b *Builder) Quirks() bool { return b.quirks }

func (b *Builder) nextKey() dom.Key {
	if b.fatal != nil {
		return 0
	}
	if b.keyCounter == ^uint32(0) {
		b.fatal = ErrPatchKeyOverflow
		return 0
	}
	b.keyCounter++
	return dom.Key(b.keyCounter)
}

func (b *Builder) emit(p dom.Patch) { b.ready = append(b.ready, p) }

// NextBatch drains all patches emitted since the last call.
func (b *Builder) NextBatch() []dom.Patch {
	p := b.ready
	b.ready = nil
	return p
}

// Feed resolves and processes every token in batch in order, emitting
// dom.Patch values to the internal ready buffer (drain with NextBatch).
// Feed returns an engine-invariant error if one occurs; recoverable
// parse errors never stop processing and are recorded in Errors()
// instead.
func (b *Builder) Feed(batch html5.Batch) error {
	if batch.AtomsID != b.atomsID {
		return ErrWrongAtomTable
	}
	for _, tok := range batch.Tokens {
		if _, err := b.ProcessToken(tok, batch.Resolver); err != nil {
			return err
		}
	}
	return nil
}

// ProcessToken runs one token through the insertion modes and reports
// whether the driver should keep going or pause the pipeline.
func (b *Builder) ProcessToken(tok html5.Token, r html5.Resolver) (Signal, error) {
	if b.fatal != nil {
		return SignalContinue, b.fatal
	}
	rt, err := b.resolve(tok, r)
	if err != nil {
		return SignalContinue, err
	}
	return SignalContinue, b.process(&rt)
}

func (b *Builder) resolve(tok html5.Token, r html5.Resolver) (rToken, error) {
	rt := rToken{typ: tok.Type, selfClosing: tok.SelfClosing, forceQuirks: tok.ForceQuirks}
	switch tok.Type {
	case html5.StartTagToken, html5.EndTagToken:
		name, ok := b.atoms.Resolve(tok.Name)
		if !ok {
			return rt, ErrWrongAtomTable
		}
		rt.name = name
		for _, a := range tok.Attrs {
			attrName, ok := b.atoms.Resolve(a.Name)
			if !ok {
				return rt, ErrWrongAtomTable
			}
			val, err := a.Value.Resolve(r)
			if err != nil {
				return rt, err
			}
			rt.attrs = append(rt.attrs, dom.Attr{Name: attrName, Value: val, HasValue: a.Value.HasValue})
		}
	case html5.CharacterToken, html5.CommentToken:
		text, err := tok.Text(r)
		if err != nil {
			return rt, err
		}
		rt.text = text
	case html5.DoctypeToken:
		rt.hasDoctypeName = tok.HasName
		if tok.HasName {
			name, ok := b.atoms.Resolve(tok.Name)
			if !ok {
				return rt, ErrWrongAtomTable
			}
			rt.doctypeName = strings.ToLower(name)
		}
		rt.publicID = tok.PublicID
		rt.systemID = tok.SystemID
	}
	return rt, nil
}

// process runs t through insertion modes until consumed: the
// reprocess loop of the tree-construction dispatch. The bound exists only to
// turn a mode-dispatch bug into a reportable invariant violation
// instead of a livelock.
func (b *Builder) process(t *rToken) error {
	const maxReprocess = 64
	for i := 0; ; i++ {
		if b.fatal != nil {
			return b.fatal
		}
		if i == maxReprocess {
			b.fatal = ErrBadBuilderState
			return b.fatal
		}
		if b.im(b, t) {
			break
		}
	}
	return b.fatal
}

// --- tree mutation primitives; every one keeps the shadow tree and
// the emitted patch stream in lockstep. ---

func (b *Builder) top() *shadowNode {
	if n := b.oe.top(); n != nil {
		return n
	}
	return b.doc
}

// ensureDocument creates the document node on the first token that
// needs one. doctype == nil means no doctype was seen.
func (b *Builder) ensureDocument(doctype *string) {
	if b.doc != nil {
		return
	}
	key := b.nextKey()
	if key == 0 {
		return
	}
	b.doc = &shadowNode{key: key, kind: dom.Document}
	b.emit(dom.CreateDocumentPatch(key, doctype))
	for _, text := range b.pendingComments {
		c := b.newComment(text)
		b.linkAppend(b.doc, c)
	}
	b.pendingComments = nil
}

func (b *Builder) newElement(name string, attrs []dom.Attr) *shadowNode {
	key := b.nextKey()
	if key == 0 {
		return nil
	}
	n := &shadowNode{key: key, kind: dom.Element, name: name, attrs: attrs}
	b.emit(dom.CreateElementPatch(key, name, attrs))
	return n
}

func (b *Builder) newText(value string) *shadowNode {
	key := b.nextKey()
	if key == 0 {
		return nil
	}
	n := &shadowNode{key: key, kind: dom.Text, value: value}
	b.emit(dom.CreateTextPatch(key, value))
	return n
}

func (b *Builder) newComment(value string) *shadowNode {
	key := b.nextKey()
	if key == 0 {
		return nil
	}
	n := &shadowNode{key: key, kind: dom.Comment, value: value}
	b.emit(dom.CreateCommentPatch(key, value))
	return n
}

func (b *Builder) linkAppend(parent, child *shadowNode) {
	if parent == nil || child == nil {
		return
	}
	parent.children = append(parent.children, child)
	child.parent = parent
	b.emit(dom.AppendChildPatch(parent.key, child.key))
}

func (b *Builder) linkInsertBefore(parent, child, before *shadowNode) {
	if parent == nil || child == nil {
		return
	}
	idx := -1
	if before != nil && before.parent == parent {
		idx = before.indexInParent()
	}
	if idx == -1 {
		b.linkAppend(parent, child)
		return
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[idx+1:], parent.children[idx:])
	parent.children[idx] = child
	child.parent = parent
	b.emit(dom.InsertBeforePatch(parent.key, child.key, before.key))
}

func (b *Builder) detach(n *shadowNode) {
	if n.parent == nil {
		return
	}
	p := n.parent
	idx := n.indexInParent()
	if idx != -1 {
		p.children = append(p.children[:idx], p.children[idx+1:]...)
	}
	n.parent = nil
}

// removeSubtree detaches n from its parent and emits a RemoveNode
// patch; n (and its shadow subtree) is gone from the document for good.
func (b *Builder) removeSubtree(n *shadowNode) {
	b.detach(n)
	b.emit(dom.RemoveNodePatch(n.key))
}

// cloneSubtreeFresh deep-clones n's shadow subtree with brand new keys,
// emitting the matching Create*/AppendChild patches, and returns the
// clone's root (detached, not yet linked anywhere). Every old node is
// recorded in remap so stack/list references can be rewritten. Used
// wherever the tree-construction algorithm needs to relocate a node:
// the patch alphabet has no Move variant, so a relocation becomes
// RemoveNode of the old subtree plus a freshly keyed recreation at the
// new position.
func (b *Builder) cloneSubtreeFresh(n *shadowNode, remap map[*shadowNode]*shadowNode) *shadowNode {
	var clone *shadowNode
	switch n.kind {
	case dom.Element:
		clone = b.newElement(n.name, append([]dom.Attr(nil), n.attrs...))
	case dom.Text:
		clone = b.newText(n.value)
	case dom.Comment:
		clone = b.newComment(n.value)
	}
	if clone == nil {
		return nil
	}
	clone.namespace = n.namespace
	remap[n] = clone
	for _, ch := range n.children {
		childClone := b.cloneSubtreeFresh(ch, remap)
		if childClone == nil {
			return nil
		}
		b.linkAppend(clone, childClone)
	}
	return clone
}

// remapRefs rewrites every stack/list/pointer reference to a relocated
// node so the algorithm keeps operating on the live copy.
func (b *Builder) remapRefs(remap map[*shadowNode]*shadowNode) {
	for i, e := range b.oe {
		if r := remap[e]; r != nil {
			b.oe[i] = r
		}
	}
	for i, e := range b.afe {
		if isMarker(e) {
			continue
		}
		if r := remap[e]; r != nil {
			b.afe[i] = r
		}
	}
	if r := remap[b.form]; r != nil {
		b.form = r
	}
	if r := remap[b.head]; r != nil {
		b.head = r
	}
}

// relocate moves n's subtree to be a child of parent, immediately
// before `before` if non-nil, else appended. The subtree is recreated
// with fresh keys (RemoveNode + Create*/Append patches); the returned
// node is the live replacement for n, and every oe/afe/pointer
// reference has already been remapped to the new copies. The remap is
// returned so callers holding locals into the moved subtree can rewrite
// them too.
func (b *Builder) relocate(n, parent, before *shadowNode) (*shadowNode, map[*shadowNode]*shadowNode) {
	remap := make(map[*shadowNode]*shadowNode)
	clone := b.cloneSubtreeFresh(n, remap)
	if clone == nil {
		return nil, nil
	}
	b.removeSubtree(n)
	if before != nil {
		b.linkInsertBefore(parent, clone, before)
	} else {
		b.linkAppend(parent, clone)
	}
	b.remapRefs(remap)
	return clone, remap
}
