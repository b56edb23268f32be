package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_InternFoldsASCIIOnly(t *testing.T) {
	tbl := NewTable()

	id1 := tbl.Intern([]byte("DIV"))
	id2 := tbl.Intern([]byte("div"))
	id3 := tbl.Intern([]byte("Div"))
	assert.Equal(t, id1, id2)
	assert.Equal(t, id1, id3)

	folded, ok := tbl.Resolve(id1)
	require.True(t, ok)
	assert.Equal(t, "div", folded)
}

func TestTable_NonASCIIUnaffected(t *testing.T) {
	tbl := NewTable()
	id1 := tbl.Intern([]byte("CAFÉ"))
	id2 := tbl.Intern([]byte("café"))
	// Only ASCII A-Z folds; the trailing é/É differ, so these are
	// distinct atoms.
	assert.NotEqual(t, id1, id2)
}

func TestTable_ZeroIDInvalid(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Resolve(0)
	assert.False(t, ok)
}

func TestTable_ResolveOriginalPreservesFirstInsertionCase(t *testing.T) {
	tbl := NewTable()
	id := tbl.Intern([]byte("Custom-Tag"))
	tbl.Intern([]byte("CUSTOM-TAG")) // same folded form, later insertion

	orig, ok := tbl.ResolveOriginal(id)
	require.True(t, ok)
	assert.Equal(t, "Custom-Tag", orig)

	folded, ok := tbl.Resolve(id)
	require.True(t, ok)
	assert.Equal(t, "custom-tag", folded)
}

func TestTable_IdentityDistinctPerInstance(t *testing.T) {
	t1 := NewTable()
	t2 := NewTable()
	assert.NotEqual(t, t1.Identity(), t2.Identity())
}

func TestTable_SeededWithWellKnownAtoms(t *testing.T) {
	tbl := NewTable()
	id := tbl.Intern([]byte("DIV"))
	folded, ok := tbl.Resolve(id)
	require.True(t, ok)
	assert.Equal(t, "div", folded)
	// A table seeded at construction should already have a large
	// number of entries before any caller-driven Intern call.
	assert.Greater(t, tbl.Len(), 50)
}
