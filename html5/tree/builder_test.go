package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverrun/htmlcore/atom"
	"github.com/riverrun/htmlcore/dom"
	"github.com/riverrun/htmlcore/html5"
)

// buildDocument parses input through a fresh tokenizer, builder, and
// store, returning the committed tree and the builder for error-log
// assertions.
func buildDocument(t *testing.T, input string, opts Options) (*dom.Node, *Builder) {
	t.Helper()
	atoms := atom.NewTable()
	in := html5.NewInput()
	tk := html5.NewTokenizer(atoms, in, html5.Options{})
	b := NewBuilder(atoms, opts)

	store := dom.NewStore()
	h := store.Create()
	version := uint64(0)

	in.PushChunk([]byte(input))
	tk.PushInput()
	tk.Finish()

	require.NoError(t, b.Feed(tk.NextBatch()))
	if patches := b.NextBatch(); len(patches) > 0 {
		require.NoError(t, store.Apply(h, version, version+1, patches))
		version++
	}

	node, err := store.GetCurrent(h)
	require.NoError(t, err)
	return node, b
}

func snapshotOf(t *testing.T, input string, opts Options) string {
	t.Helper()
	node, _ := buildDocument(t, input, opts)
	return dom.Snapshot(node, dom.SnapshotOptions{IncludeComments: true})
}

// lines joins snapshot lines for readable table fixtures.
func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestBuilderGoldenTrees(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "text with entity",
			input: "<p>Tom &amp; Jerry</p>",
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <p>`,
				`        "Tom & Jerry"`,
			),
		},
		{
			name:  "attributes preserved in source order",
			input: `<div class="a b" data-x=1>ok</div>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <div class="a b" data-x="1">`,
				`        "ok"`,
			),
		},
		{
			name:  "script body is raw text",
			input: `<script>if (a < b) {}</script>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`      <script>`,
				`        "if (a < b) {}"`,
				`    <body>`,
			),
		},
		{
			name:  "doctype recorded on document",
			input: `<!DOCTYPE html><p>x</p>`,
			want: lines(
				`#document doctype="html"`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <p>`,
				`        "x"`,
			),
		},
		{
			name:  "implied li end tags",
			input: `<ul><li>one<li>two</ul>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <ul>`,
				`        <li>`,
				`          "one"`,
				`        <li>`,
				`          "two"`,
			),
		},
		{
			name:  "implied p end tag at block boundary",
			input: `<p>a<div>b</div>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <p>`,
				`        "a"`,
				`      <div>`,
				`        "b"`,
			),
		},
		{
			name:  "head content stays in head",
			input: `<title>T</title><p>x`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`      <title>`,
				`        "T"`,
				`    <body>`,
				`      <p>`,
				`        "x"`,
			),
		},
		{
			name:  "formatting reconstruction across blocks",
			input: `<b>one<p>two</p></b>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <b>`,
				`        "one"`,
				`        <p>`,
				`          "two"`,
			),
		},
		{
			name:  "comments attach where they appear",
			input: `<!--lead--><p>x<!--in--></p>`,
			want: lines(
				`#document`,
				`  <!-- lead -->`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <p>`,
				`        "x"`,
				`        <!-- in -->`,
			),
		},
		{
			name:  "void elements do not nest",
			input: `<p>a<br>b<img src=x>c</p>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <p>`,
				`        "a"`,
				`        <br>`,
				`        "b"`,
				`        <img src="x">`,
				`        "c"`,
			),
		},
		{
			name:  "textarea swallows leading newline",
			input: "<textarea>\nabc</textarea>",
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <textarea>`,
				`        "abc"`,
			),
		},
		{
			name:  "table rows and cells",
			input: `<table><tr><td>1<td>2<tr><td>3</table>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      <table>`,
				`        <tbody>`,
				`          <tr>`,
				`            <td>`,
				`              "1"`,
				`            <td>`,
				`              "2"`,
				`          <tr>`,
				`            <td>`,
				`              "3"`,
			),
		},
		{
			name:  "stray table text is foster parented",
			input: `<table>oops<tr><td>x</table>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
				`      "oops"`,
				`      <table>`,
				`        <tbody>`,
				`          <tr>`,
				`            <td>`,
				`              "x"`,
			),
		},
		{
			name:  "empty input still yields skeleton",
			input: ``,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`    <body>`,
			),
		},
		{
			name:  "end tags literalized in raw text",
			input: `<script>a</b>c</script>`,
			want: lines(
				`#document`,
				`  <html>`,
				`    <head>`,
				`      <script>`,
				`        "a</b>c"`,
				`    <body>`,
			),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := snapshotOf(t, tc.input, Options{CoalesceText: true})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAdoptionAgencyMisnestedFormatting(t *testing.T) {
	// <b><i>bold italic</b> leaves <i> reopened after the </b>.
	got := snapshotOf(t, `<p>1<b>2<i>3</b>4</i>5</p>`, Options{CoalesceText: true})
	want := lines(
		`#document`,
		`  <html>`,
		`    <head>`,
		`    <body>`,
		`      <p>`,
		`        "1"`,
		`        <b>`,
		`          "2"`,
		`          <i>`,
		`            "3"`,
		`        <i>`,
		`          "4"`,
		`        "5"`,
	)
	assert.Equal(t, want, got)
}

func TestAdoptionAgencyWithBlockFurthestBlock(t *testing.T) {
	got := snapshotOf(t, `<b>1<div>2</b>3</div>`, Options{CoalesceText: true})
	want := lines(
		`#document`,
		`  <html>`,
		`    <head>`,
		`    <body>`,
		`      <b>`,
		`        "1"`,
		`      <div>`,
		`        <b>`,
		`          "2"`,
		`        "3"`,
	)
	assert.Equal(t, want, got)
}

func TestQuirksModeFlag(t *testing.T) {
	_, b := buildDocument(t, `<p>x`, Options{})
	assert.True(t, b.Quirks(), "missing doctype puts the document in quirks mode")

	_, b = buildDocument(t, `<!DOCTYPE html><p>x`, Options{})
	assert.False(t, b.Quirks())
}

func TestUnexpectedDoctypeLoggedOnce(t *testing.T) {
	_, b := buildDocument(t, `<!DOCTYPE html><!DOCTYPE html><p>x`, Options{})
	assert.Equal(t, 1, b.Errors().Count(ErrUnexpectedDoctype))
}

func TestCoalesceTextMergesAdjacentRuns(t *testing.T) {
	// The raw NUL forces the tokenizer to split the surrounding text
	// into three Character tokens; coalescing folds them back into one
	// text node.
	node, _ := buildDocument(t, "<p>a\x00b</p>", Options{CoalesceText: true})
	body := node.Children[0].Children[1]
	p := body.Children[0]
	require.Len(t, p.Children, 1)
	assert.Equal(t, "a�b", p.Children[0].Value)
}

func TestNoCoalesceKeepsTokenRuns(t *testing.T) {
	node, _ := buildDocument(t, "<p>a\x00b</p>", Options{CoalesceText: false})
	body := node.Children[0].Children[1]
	p := body.Children[0]
	assert.Len(t, p.Children, 3)
}

func TestPatchStreamInvariants(t *testing.T) {
	atoms := atom.NewTable()
	in := html5.NewInput()
	tk := html5.NewTokenizer(atoms, in, html5.Options{})
	b := NewBuilder(atoms, Options{CoalesceText: true})

	in.PushChunk([]byte(`<div><span>hi</span></div>`))
	tk.PushInput()
	tk.Finish()
	require.NoError(t, b.Feed(tk.NextBatch()))
	patches := b.NextBatch()
	require.NotEmpty(t, patches)

	// Keys are allocated strictly monotonically, and every link refers
	// to an already-created key.
	created := map[dom.Key]bool{}
	var lastKey dom.Key
	for _, p := range patches {
		switch p.Type {
		case dom.CreateDocument, dom.CreateElement, dom.CreateText, dom.CreateComment:
			assert.Greater(t, uint32(p.Key), uint32(lastKey))
			lastKey = p.Key
			created[p.Key] = true
		case dom.AppendChild, dom.InsertBefore:
			assert.True(t, created[p.Parent], "link before create of parent %d", p.Parent)
			assert.True(t, created[p.Child], "link before create of child %d", p.Child)
		}
	}
	assert.Equal(t, dom.CreateDocument, patches[0].Type)
}

func TestFeedRejectsForeignAtomTable(t *testing.T) {
	atoms := atom.NewTable()
	in := html5.NewInput()
	tk := html5.NewTokenizer(atoms, in, html5.Options{})
	b := NewBuilder(atom.NewTable(), Options{})

	in.PushChunk([]byte(`<p>x</p>`))
	tk.PushInput()
	tk.Finish()
	err := b.Feed(tk.NextBatch())
	assert.ErrorIs(t, err, ErrWrongAtomTable)
}

func TestBuilderResumableAcrossBatches(t *testing.T) {
	atoms := atom.NewTable()
	in := html5.NewInput()
	tk := html5.NewTokenizer(atoms, in, html5.Options{})
	b := NewBuilder(atoms, Options{CoalesceText: true})

	store := dom.NewStore()
	h := store.Create()
	version := uint64(0)
	feed := func() {
		for {
			batch := tk.NextBatch()
			if len(batch.Tokens) == 0 {
				return
			}
			require.NoError(t, b.Feed(batch))
			if patches := b.NextBatch(); len(patches) > 0 {
				require.NoError(t, store.Apply(h, version, version+1, patches))
				version++
			}
		}
	}

	in.PushChunk([]byte(`<p>one`))
	tk.PushInput()
	feed()
	in.PushChunk([]byte(` two</p>`))
	tk.PushInput()
	feed()
	tk.Finish()
	feed()

	node, err := store.GetCurrent(h)
	require.NoError(t, err)
	got := dom.Snapshot(node, dom.SnapshotOptions{})
	assert.Equal(t, lines(
		`#document`,
		`  <html>`,
		`    <head>`,
		`    <body>`,
		`      <p>`,
		`        "one two"`,
	), got)
}
