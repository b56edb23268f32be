package html5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushChunkHoldsIncompleteSequence(t *testing.T) {
	in := NewInput()
	e := []byte("é") // 2 bytes

	in.PushChunk(e[:1])
	assert.Equal(t, 0, in.Len(), "truncated lead byte must be carried, not committed")

	in.PushChunk(e[1:])
	assert.Equal(t, "é", string(in.Bytes()))
}

func TestPushChunkSplitsFourByteRuneAtEveryBoundary(t *testing.T) {
	emoji := []byte("\U0001F600x")
	for cut := 0; cut <= len(emoji); cut++ {
		in := NewInput()
		in.PushChunk(emoji[:cut])
		in.PushChunk(emoji[cut:])
		in.Finish()
		assert.Equal(t, "\U0001F600x", string(in.Bytes()), "cut at %d", cut)
	}
}

func TestFinishFlushesIncompleteCarryAsReplacement(t *testing.T) {
	in := NewInput()
	in.PushChunk([]byte{0xE2, 0x82}) // truncated 3-byte sequence
	in.Finish()
	assert.Equal(t, "�", string(in.Bytes()))
	assert.True(t, in.Finished())
}

func TestInvalidByteReplacedImmediately(t *testing.T) {
	in := NewInput()
	in.PushChunk([]byte{'a', 0xFF, 'b'})
	assert.Equal(t, "a�b", string(in.Bytes()))
}

func TestPushChunkAfterFinishPanics(t *testing.T) {
	in := NewInput()
	in.Finish()
	assert.Panics(t, func() { in.PushChunk([]byte("x")) })
}

func TestResolverResolvesCommittedSpans(t *testing.T) {
	in := NewInput()
	in.PushChunk([]byte("hello é"))
	r := in.Resolver()

	s, err := r.Resolve(Span{Start: 0, End: 5})
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = r.Resolve(Span{Start: 6, End: 8})
	require.NoError(t, err)
	assert.Equal(t, "é", s)
}

func TestResetClearsStreamState(t *testing.T) {
	in := NewInput()
	in.PushChunk([]byte("abc"))
	in.Finish()
	in.Reset()
	assert.Equal(t, 0, in.Len())
	assert.False(t, in.Finished())
	in.PushChunk([]byte("x"))
	assert.Equal(t, "x", string(in.Bytes()))
}
