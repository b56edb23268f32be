package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreApplyBuildsSimpleDocument(t *testing.T) {
	s := NewStore()
	h := s.Create()

	patches := []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "html", nil),
		AppendChildPatch(1, 2),
		CreateElementPatch(3, "body", nil),
		AppendChildPatch(2, 3),
		CreateTextPatch(4, "hi"),
		AppendChildPatch(3, 4),
	}
	require.NoError(t, s.Apply(h, 0, 1, patches))

	n, err := s.GetCurrent(h)
	require.NoError(t, err)
	require.Equal(t, Document, n.Kind)
	require.Len(t, n.Children, 1)
	assert.Equal(t, "html", n.Children[0].Name)
	assert.Equal(t, "body", n.Children[0].Children[0].Name)
	assert.Equal(t, "hi", n.Children[0].Children[0].Children[0].Value)

	v, err := s.Version(h)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestStoreApplyAtomicityOnError(t *testing.T) {
	s := NewStore()
	h := s.Create()
	require.NoError(t, s.Apply(h, 0, 1, []Patch{CreateDocumentPatch(1, nil)}))

	// A batch that fails partway through must not mutate the store at
	// all: the version stays at 1 and the document is unchanged.
	badPatches := []Patch{
		CreateElementPatch(2, "html", nil),
		AppendChildPatch(1, 2),
		AppendChildPatch(99, 2), // unknown parent -> error
	}
	err := s.Apply(h, 1, 2, badPatches)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)

	v, _ := s.Version(h)
	assert.EqualValues(t, 1, v)

	n, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Empty(t, n.Children)
}

func TestStoreApplyRejectsWrongFromVersion(t *testing.T) {
	s := NewStore()
	h := s.Create()
	require.NoError(t, s.Apply(h, 0, 1, []Patch{CreateDocumentPatch(1, nil)}))

	err := s.Apply(h, 0, 1, []Patch{CreateDocumentPatch(2, nil)})
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestStoreApplyRejectsNonMonotonicVersion(t *testing.T) {
	s := NewStore()
	h := s.Create()
	err := s.Apply(h, 0, 2, []Patch{CreateDocumentPatch(1, nil)})
	assert.ErrorIs(t, err, ErrNonMonotonicVersion)
}

func TestStoreApplyRejectsDuplicateKey(t *testing.T) {
	s := NewStore()
	h := s.Create()
	require.NoError(t, s.Apply(h, 0, 1, []Patch{CreateDocumentPatch(1, nil)}))
	err := s.Apply(h, 1, 2, []Patch{CreateDocumentPatch(1, nil)})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestStoreApplyRejectsAppendToTextParent(t *testing.T) {
	s := NewStore()
	h := s.Create()
	patches := []Patch{
		CreateDocumentPatch(1, nil),
		CreateTextPatch(2, "leaf"),
		AppendChildPatch(1, 2),
		CreateTextPatch(3, "nope"),
		AppendChildPatch(2, 3),
	}
	err := s.Apply(h, 0, 1, patches)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestStoreApplyRejectsDoubleParent(t *testing.T) {
	s := NewStore()
	h := s.Create()
	patches := []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "div", nil),
		AppendChildPatch(1, 2),
		CreateElementPatch(3, "span", nil),
		AppendChildPatch(1, 3),
		AppendChildPatch(2, 3), // 3 already has a parent
	}
	err := s.Apply(h, 0, 1, patches)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestStoreApplyRemoveNodeDrainsSubtree(t *testing.T) {
	s := NewStore()
	h := s.Create()
	patches := []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "div", nil),
		AppendChildPatch(1, 2),
		CreateElementPatch(3, "span", nil),
		AppendChildPatch(2, 3),
		CreateTextPatch(4, "x"),
		AppendChildPatch(3, 4),
	}
	require.NoError(t, s.Apply(h, 0, 1, patches))
	require.NoError(t, s.Apply(h, 1, 2, []Patch{RemoveNodePatch(2)}))

	n, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Empty(t, n.Children)

	// The removed key must never be reusable within this stream.
	err = s.Apply(h, 2, 3, []Patch{CreateElementPatch(2, "p", nil)})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestStoreApplyClearResetsArena(t *testing.T) {
	s := NewStore()
	h := s.Create()
	require.NoError(t, s.Apply(h, 0, 1, []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "div", nil),
		AppendChildPatch(1, 2),
	}))

	require.NoError(t, s.Apply(h, 1, 2, []Patch{
		ClearPatch(),
		CreateDocumentPatch(1, nil), // key 1 reusable again after Clear
	}))

	n, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Empty(t, n.Children)
}

func TestStoreApplyRejectsMisplacedClear(t *testing.T) {
	s := NewStore()
	h := s.Create()
	require.NoError(t, s.Apply(h, 0, 1, []Patch{CreateDocumentPatch(1, nil)}))
	err := s.Apply(h, 1, 2, []Patch{
		CreateElementPatch(2, "div", nil),
		ClearPatch(),
	})
	assert.ErrorIs(t, err, ErrMisplacedClear)
}

func TestStoreApplyRejectsCycle(t *testing.T) {
	s := NewStore()
	h := s.Create()
	// 2 is a detached subtree root with 3 below it; hanging 2 under 3
	// would make 2 its own ancestor.
	patches := []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "div", nil),
		CreateElementPatch(3, "span", nil),
		AppendChildPatch(2, 3),
	}
	require.NoError(t, s.Apply(h, 0, 1, patches))
	err := s.Apply(h, 1, 2, []Patch{AppendChildPatch(3, 2)})
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestStoreUnknownHandle(t *testing.T) {
	s := NewStore()
	_, err := s.GetCurrent(Handle{})
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestStoreMaterializeIsIndependentClone(t *testing.T) {
	s := NewStore()
	h := s.Create()
	require.NoError(t, s.Apply(h, 0, 1, []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "div", nil),
		AppendChildPatch(1, 2),
	}))

	snap, err := s.Materialize(h)
	require.NoError(t, err)
	snap.Children[0].Name = "mutated"

	live, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Equal(t, "div", live.Children[0].Name)
}
