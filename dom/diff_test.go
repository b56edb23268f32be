package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apply is a test helper that drives a fresh Store through one batch
// and returns the resulting tree.
func applyBatch(t *testing.T, patches []Patch) (*Store, Handle) {
	t.Helper()
	s := NewStore()
	h := s.Create()
	require.NoError(t, s.Apply(h, 0, 1, patches))
	return s, h
}

func TestDiffFromNilIsPlainCreate(t *testing.T) {
	next := &Node{Kind: Document, ID: 1, Children: []*Node{
		{Kind: Element, Name: "html"},
	}}
	patches := Diff(nil, next, NewKeyAllocator(0))
	for _, p := range patches {
		assert.NotEqual(t, Clear, p.Type)
	}
	s, h := applyBatch(t, patches)
	got, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Equal(t, "html", got.Children[0].Name)
}

func TestDiffRoundTripAppendOnly(t *testing.T) {
	s, h := applyBatch(t, []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "div", nil),
		AppendChildPatch(1, 2),
		CreateElementPatch(3, "span", []Attr{{Name: "class", Value: "a", HasValue: true}}),
		AppendChildPatch(2, 3),
	})
	prev, err := s.Materialize(h)
	require.NoError(t, err)

	next := prev.Clone()
	next.Children[0].Children[0].Attrs[0].Value = "b" // SetAttributes on span
	next.Children[0].Children = append(next.Children[0].Children, &Node{Kind: Text, Value: "tail"})

	patches := Diff(prev, next, NewKeyAllocator(10))
	require.NoError(t, s.Apply(h, 1, 2, patches))

	got, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Equal(t, Snapshot(next, SnapshotOptions{}), Snapshot(got, SnapshotOptions{}))
}

func TestDiffSuffixRemovalIsIncremental(t *testing.T) {
	s, h := applyBatch(t, []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "ul", nil),
		AppendChildPatch(1, 2),
		CreateElementPatch(3, "li", nil),
		AppendChildPatch(2, 3),
		CreateElementPatch(4, "li", nil),
		AppendChildPatch(2, 4),
	})
	prev, err := s.Materialize(h)
	require.NoError(t, err)

	next := prev.Clone()
	next.Children[0].Children = next.Children[0].Children[:1] // drop trailing <li>

	patches := Diff(prev, next, NewKeyAllocator(10))
	for _, p := range patches {
		assert.NotEqual(t, Clear, p.Type, "suffix removal must not force a reset")
	}
	require.NoError(t, s.Apply(h, 1, 2, patches))

	got, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Len(t, got.Children[0].Children, 1)
}

func TestDiffMidListInsertForcesReset(t *testing.T) {
	// <div><span>hi</span></div> to
	// <div><em>yo</em><span>hi</span></div> begins with Clear.
	s, h := applyBatch(t, []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "div", nil),
		AppendChildPatch(1, 2),
		CreateElementPatch(3, "span", nil),
		AppendChildPatch(2, 3),
		CreateTextPatch(4, "hi"),
		AppendChildPatch(3, 4),
	})
	prev, err := s.Materialize(h)
	require.NoError(t, err)

	next := &Node{Kind: Document, Children: []*Node{
		{Kind: Element, Name: "div", Children: []*Node{
			{Kind: Element, Name: "em", Children: []*Node{{Kind: Text, Value: "yo"}}},
			{Kind: Element, Name: "span", Children: []*Node{{Kind: Text, Value: "hi"}}},
		}},
	}}

	patches := Diff(prev, next, NewKeyAllocator(100))
	require.NotEmpty(t, patches)
	assert.Equal(t, Clear, patches[0].Type)
	assert.Equal(t, CreateDocument, patches[1].Type)

	require.NoError(t, s.Apply(h, 1, 2, patches))
	got, err := s.GetCurrent(h)
	require.NoError(t, err)
	assert.Equal(t, Snapshot(next, SnapshotOptions{}), Snapshot(got, SnapshotOptions{}))
}

func TestDiffElementTagRenameForcesReset(t *testing.T) {
	prev := &Node{Kind: Document, ID: 1, Children: []*Node{{Kind: Element, ID: 2, Name: "div"}}}
	next := &Node{Kind: Document, Children: []*Node{{Kind: Element, Name: "span"}}}
	patches := Diff(prev, next, NewKeyAllocator(10))
	require.NotEmpty(t, patches)
	assert.Equal(t, Clear, patches[0].Type)
}

func TestDiffIsDeterministic(t *testing.T) {
	prev := &Node{Kind: Document, ID: 1, Children: []*Node{{Kind: Element, ID: 2, Name: "div"}}}
	next := &Node{Kind: Document, ID: 1, Children: []*Node{
		{Kind: Element, ID: 2, Name: "div"},
		{Kind: Text, Value: "x"},
	}}
	p1 := Diff(prev, next, NewKeyAllocator(5))
	p2 := Diff(prev, next, NewKeyAllocator(5))
	assert.Equal(t, p1, p2)
}

func TestDiffRemovalsOrderedBeforeUpdates(t *testing.T) {
	s, h := applyBatch(t, []Patch{
		CreateDocumentPatch(1, nil),
		CreateElementPatch(2, "ul", nil),
		AppendChildPatch(1, 2),
		CreateElementPatch(3, "li", []Attr{{Name: "class", Value: "a", HasValue: true}}),
		AppendChildPatch(2, 3),
		CreateElementPatch(4, "li", nil),
		AppendChildPatch(2, 4),
	})
	prev, err := s.Materialize(h)
	require.NoError(t, err)

	next := prev.Clone()
	next.Children[0].Children[0].Attrs[0].Value = "b"
	next.Children[0].Children = next.Children[0].Children[:1]

	patches := Diff(prev, next, NewKeyAllocator(20))
	require.NotEmpty(t, patches)
	assert.Equal(t, RemoveNode, patches[0].Type)
}
