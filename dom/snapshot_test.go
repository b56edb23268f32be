package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotBasicDocument(t *testing.T) {
	doc := &Node{
		Kind: Document,
		Children: []*Node{
			{Kind: Element, Name: "html", Children: []*Node{
				{Kind: Element, Name: "head"},
				{Kind: Element, Name: "body", Children: []*Node{
					{Kind: Element, Name: "p", Children: []*Node{
						{Kind: Text, Value: "Tom & Jerry"},
					}},
				}},
			}},
		},
	}
	want := "#document\n" +
		"  <html>\n" +
		"    <head>\n" +
		"    <body>\n" +
		"      <p>\n" +
		"        \"Tom & Jerry\"\n"
	assert.Equal(t, want, Snapshot(doc, SnapshotOptions{}))
}

func TestSnapshotEscapesControlAndNonASCII(t *testing.T) {
	doc := &Node{Kind: Document, Children: []*Node{
		{Kind: Text, Value: "a\nb\tc\"d\\eé"},
	}}
	got := Snapshot(doc, SnapshotOptions{})
	assert.Contains(t, got, `a\nb\tc\"d\\e\u{e9}`)
}

func TestSnapshotOmitsCommentsByDefault(t *testing.T) {
	doc := &Node{Kind: Document, Children: []*Node{
		{Kind: Comment, Value: "hi"},
	}}
	assert.NotContains(t, Snapshot(doc, SnapshotOptions{}), "hi")
	assert.Contains(t, Snapshot(doc, SnapshotOptions{IncludeComments: true}), "<!-- hi -->")
}

func TestSnapshotValuelessAttribute(t *testing.T) {
	doc := &Node{Kind: Document, Children: []*Node{
		{Kind: Element, Name: "input", Attrs: []Attr{{Name: "disabled"}}},
	}}
	assert.Contains(t, Snapshot(doc, SnapshotOptions{}), "<input disabled>")
}
