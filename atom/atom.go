// Package atom interns short, identifier-like byte strings (HTML tag and
// attribute names) into compact, comparable handles with ASCII
// case-folded identity.
package atom

import (
	"sync"

	netatom "golang.org/x/net/html/atom"
)

// ID is a non-zero handle for an interned name. The zero value is never
// returned by Table.Intern and is reserved to mean "invalid".
type ID uint32

// Table owns one set of interned names. Every consumer records the
// Table it was constructed with (via Table.Identity) and must assert
// that identity on every call taking an ID; mixing IDs across tables is
// a programmer error, not a recoverable one.
type Table struct {
	mu sync.Mutex

	// folded is the canonical (ASCII-lowercased) spelling for each ID.
	folded []string
	// original preserves the first-insertion spelling for each ID.
	original []string
	// index maps a folded spelling back to its ID.
	index map[string]ID

	id uint64 // table identity, assigned at construction
}

var nextTableID uint64

// NewTable returns an empty, ready-to-use Table seeded with the
// canonical HTML5 tag and attribute names from golang.org/x/net/html/atom,
// so that common names intern without allocation from the first call.
func NewTable() *Table {
	t := &Table{
		folded:   make([]string, 1, 512), // index 0 reserved
		original: make([]string, 1, 512),
		index:    make(map[string]ID, 512),
		id:       nextTableIDValue(),
	}
	for _, name := range wellKnownAtoms {
		// Route every seed name through x/net/html/atom's own Lookup so
		// the seeded spelling is exactly what that package considers
		// canonical; it does not export an enumerator of its table, so
		// the name list itself is kept alongside it in wellknown.go.
		if a := netatom.Lookup([]byte(name)); a != 0 {
			t.Intern([]byte(a.String()))
		} else {
			t.Intern([]byte(name))
		}
	}
	return t
}

func nextTableIDValue() uint64 {
	// Safe for concurrent NewTable calls: the global counter is guarded
	// by a package-level mutex rather than an atomic, since it is
	// touched only at construction time.
	tableIDMu.Lock()
	defer tableIDMu.Unlock()
	nextTableID++
	return nextTableID
}

var tableIDMu sync.Mutex

// Identity returns an opaque value unique to this Table instance.
func (t *Table) Identity() uint64 {
	return t.id
}

// foldASCII lowercases only ASCII 'A'..'Z' bytes; all other bytes,
// including any multi-byte UTF-8 sequence, pass through unchanged.
func foldASCII(b []byte) []byte {
	out := make([]byte, len(b))
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
			changed = true
		}
		out[i] = c
	}
	if !changed {
		return b
	}
	return out
}

// Intern returns the ID for bytes, ASCII-folded. Two inputs whose
// folded forms are byte-equal yield the same ID. Interning is
// O(len(bytes)) amortized.
func (t *Table) Intern(bytes []byte) ID {
	folded := foldASCII(bytes)

	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.index[string(folded)]; ok {
		return id
	}

	id := ID(len(t.folded))
	foldedStr := string(folded)
	t.folded = append(t.folded, foldedStr)
	t.original = append(t.original, string(bytes))
	t.index[foldedStr] = id
	return id
}

// Resolve returns the canonical (folded) spelling for id, or "", false
// if id is invalid or zero.
func (t *Table) Resolve(id ID) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == 0 || int(id) >= len(t.folded) {
		return "", false
	}
	return t.folded[id], true
}

// ResolveOriginal returns the first-insertion (preserved-case) spelling
// for id, or "", false if id is invalid or zero.
func (t *Table) ResolveOriginal(id ID) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == 0 || int(id) >= len(t.original) {
		return "", false
	}
	return t.original[id], true
}

// Len returns the number of distinct interned names, excluding the
// reserved zero ID.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.folded) - 1
}
