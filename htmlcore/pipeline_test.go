package htmlcore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverrun/htmlcore/dom"
	"github.com/riverrun/htmlcore/html5/tree"
)

func snapshot(t *testing.T, n *dom.Node) string {
	t.Helper()
	return dom.Snapshot(n, dom.SnapshotOptions{IncludeComments: true})
}

func TestParseDocumentEndToEnd(t *testing.T) {
	node, err := ParseDocument("<p>Tom &amp; Jerry</p>")
	require.NoError(t, err)
	want := "#document\n" +
		"  <html>\n" +
		"    <head>\n" +
		"    <body>\n" +
		"      <p>\n" +
		"        \"Tom & Jerry\"\n"
	assert.Equal(t, want, snapshot(t, node))
}

// TestStreamingEqualsWholeInput is the full-pipeline chunking
// equivalence property: splitting the byte stream at every boundary
// must produce the identical committed DOM.
func TestStreamingEqualsWholeInput(t *testing.T) {
	inputs := []string{
		"é<b>ï</b>ö",
		"<!DOCTYPE html><title>T&amp;T</title><p>a<b>c</p>",
		"<table>x<tr><td>1</table>",
		"<script>if (a < b) {}</script>tail",
	}
	for _, input := range inputs {
		whole, err := ParseDocument(input)
		require.NoError(t, err)
		want := snapshot(t, whole)

		raw := []byte(input)
		for cut := 0; cut <= len(raw); cut++ {
			store := dom.NewStore()
			p := NewPipeline(nil, store, Options{Builder: tree.Options{CoalesceText: true}})
			require.NoError(t, p.PushChunk(raw[:cut]))
			require.NoError(t, p.PushChunk(raw[cut:]))
			require.NoError(t, p.Finish())
			node, err := p.Document()
			require.NoError(t, err)
			require.Equal(t, want, snapshot(t, node), "input %q split at %d", input, cut)
		}

		// One byte per chunk, splitting every UTF-8 sequence.
		store := dom.NewStore()
		p := NewPipeline(nil, store, Options{Builder: tree.Options{CoalesceText: true}})
		for i := 0; i < len(raw); i++ {
			require.NoError(t, p.PushChunk(raw[i:i+1]))
		}
		require.NoError(t, p.Finish())
		node, err := p.Document()
		require.NoError(t, err)
		require.Equal(t, want, snapshot(t, node), "input %q split per byte", input)
	}
}

// TestBuilderAndDiffConverge cross-checks the two patch producers:
// applying the builder's streamed patches and applying a Diff from an
// empty document must land on identical snapshots.
func TestBuilderAndDiffConverge(t *testing.T) {
	inputs := []string{
		"<p>hi</p>",
		"<div class=\"a\"><span>x</span>y</div>",
		"<ul><li>1<li>2</ul>",
	}
	for _, input := range inputs {
		streamed, err := ParseDocument(input)
		require.NoError(t, err)

		// Rebuild the same tree through the diff path.
		store := dom.NewStore()
		h := store.Create()
		patches := dom.Diff(nil, streamed, dom.NewKeyAllocator(0))
		require.NoError(t, store.Apply(h, 0, 1, patches))
		diffed, err := store.GetCurrent(h)
		require.NoError(t, err)

		assert.Equal(t,
			dom.Snapshot(streamed, dom.SnapshotOptions{IncludeComments: true}),
			dom.Snapshot(diffed, dom.SnapshotOptions{IncludeComments: true}),
			"input %q", input)
	}
}

func TestIncrementalUpdateViaDiff(t *testing.T) {
	store := dom.NewStore()
	p := NewPipeline(nil, store, Options{Builder: tree.Options{CoalesceText: true}})
	require.NoError(t, p.PushChunk([]byte("<div><span>hi</span></div>")))
	require.NoError(t, p.Finish())

	prev, err := p.Materialize()
	require.NoError(t, err)

	// Append-only growth diffs incrementally and commits on top of the
	// streamed version.
	next := prev.Clone()
	div := next.Children[0].Children[1].Children[0]
	div.Children = append(div.Children, &dom.Node{Kind: dom.Text, Value: "!"})

	patches := dom.Diff(prev, next, dom.NewKeyAllocator(1000))
	require.NotEmpty(t, patches)
	assert.NotEqual(t, dom.Clear, patches[0].Type)
	require.NoError(t, store.Apply(p.Handle(), p.Version(), p.Version()+1, patches))

	got, err := store.GetCurrent(p.Handle())
	require.NoError(t, err)
	if diff := cmp.Diff(
		dom.Snapshot(next, dom.SnapshotOptions{}),
		dom.Snapshot(got, dom.SnapshotOptions{}),
	); diff != "" {
		t.Fatalf("committed tree diverged (-want +got):\n%s", diff)
	}
}

func TestQuirksExposedOnPipeline(t *testing.T) {
	store := dom.NewStore()
	p := NewPipeline(nil, store, Options{})
	require.NoError(t, p.PushChunk([]byte("<p>x")))
	require.NoError(t, p.Finish())
	assert.True(t, p.Quirks())
}

func TestSharedAtomTableAcrossPipelines(t *testing.T) {
	store := dom.NewStore()
	p1 := NewPipeline(nil, store, Options{})
	atoms := p1.Atoms()
	p2 := NewPipeline(atoms, store, Options{})

	require.NoError(t, p1.PushChunk([]byte("<p>a</p>")))
	require.NoError(t, p2.PushChunk([]byte("<p>b</p>")))
	require.NoError(t, p1.Finish())
	require.NoError(t, p2.Finish())

	n1, err := p1.Document()
	require.NoError(t, err)
	n2, err := p2.Document()
	require.NoError(t, err)
	assert.NotEqual(t, snapshot(t, n1), snapshot(t, n2))
}
