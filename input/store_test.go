package input

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverrun/htmlcore/dom"
)

const id = dom.Key(1)

func TestInsertTextKeepsCaretOnCharBoundary(t *testing.T) {
	s := NewStore()
	s.EnsureInitial(id, "")
	s.Focus(id)

	s.InsertText(id, "€") // 3-byte UTF-8
	v, ok := s.Get(id)
	require.True(t, ok)
	caret, _ := s.Caret(id)
	assert.Equal(t, "€", v)
	assert.Equal(t, len(v), caret)
	assert.True(t, utf8.RuneStart(v[0]))
}

func TestBackspaceRemovesFullRune(t *testing.T) {
	s := NewStore()
	s.Set(id, "a€")
	s.Focus(id)

	s.Backspace(id)
	v, _ := s.Get(id)
	caret, _ := s.Caret(id)
	assert.Equal(t, "a", v)
	assert.Equal(t, len(v), caret)
}

func TestInvalidCaretClampedBeforeInsert(t *testing.T) {
	s := NewStore()
	s.Set(id, "€")
	// Force the caret to a mid-rune byte.
	s.values[id].caret = 1

	s.InsertText(id, "x")
	v, _ := s.Get(id)
	caret, _ := s.Caret(id)
	assert.Equal(t, "x€", v)
	assert.Equal(t, clampToCharBoundary(v, caret), caret)
}

func TestMoveCaretByRune(t *testing.T) {
	s := NewStore()
	s.Set(id, "a€b")
	s.Focus(id)

	caret, _ := s.Caret(id)
	assert.Equal(t, len("a€b"), caret)

	s.MoveCaretLeft(id, false)
	caret, _ = s.Caret(id)
	assert.Equal(t, len("a€"), caret)

	s.MoveCaretLeft(id, false)
	caret, _ = s.Caret(id)
	assert.Equal(t, len("a"), caret)

	s.MoveCaretRight(id, false)
	caret, _ = s.Caret(id)
	assert.Equal(t, len("a€"), caret)
}

func TestShiftArrowSelectsAndBackspaceDeletes(t *testing.T) {
	s := NewStore()
	s.Set(id, "hello")
	s.Focus(id)

	s.MoveCaretLeft(id, true) // select last char
	sel := s.Selection(id)
	require.NotNil(t, sel)
	assert.Equal(t, SelectionRange{Start: 4, End: 5}, *sel)

	s.Backspace(id)
	v, _ := s.Get(id)
	caret, _ := s.Caret(id)
	assert.Equal(t, "hell", v)
	assert.Equal(t, 4, caret)
	assert.Nil(t, s.Selection(id))
}

func TestTypingReplacesSelection(t *testing.T) {
	s := NewStore()
	s.Set(id, "hello")
	s.Focus(id)
	s.MoveCaretLeft(id, true) // select "o"
	s.InsertText(id, "X")

	v, _ := s.Get(id)
	caret, _ := s.Caret(id)
	assert.Equal(t, "hellX", v)
	assert.Equal(t, len("hellX"), caret)
}

func TestDeleteRemovesNextChar(t *testing.T) {
	s := NewStore()
	s.Set(id, "abc")
	s.Focus(id)
	s.MoveCaretLeft(id, false)
	caret, _ := s.Caret(id)
	require.Equal(t, 2, caret)

	s.Delete(id)
	v, _ := s.Get(id)
	caret, _ = s.Caret(id)
	assert.Equal(t, "ab", v)
	assert.Equal(t, 2, caret)
}

func TestDeleteSelectionWinsOverSingleCharDelete(t *testing.T) {
	s := NewStore()
	s.Set(id, "abcd")
	s.Focus(id)

	s.MoveCaretLeft(id, true) // select "d"
	s.MoveCaretLeft(id, true) // select "cd"
	s.Delete(id)

	v, _ := s.Get(id)
	caret, _ := s.Caret(id)
	assert.Equal(t, "ab", v)
	assert.Equal(t, 2, caret)
}

func TestSetCaretShiftExtendsSelection(t *testing.T) {
	s := NewStore()
	s.Set(id, "hello")
	s.Focus(id)

	s.SetCaret(id, 2, false)
	assert.Nil(t, s.Selection(id))

	s.SetCaret(id, 4, true)
	sel := s.Selection(id)
	require.NotNil(t, sel)
	assert.Equal(t, SelectionRange{Start: 2, End: 4}, *sel)

	s.SetCaret(id, 1, false)
	caret, _ := s.Caret(id)
	assert.Equal(t, 1, caret)
	assert.Nil(t, s.Selection(id))
}

func TestSelectAllThenHomeCollapses(t *testing.T) {
	s := NewStore()
	s.Set(id, "abc")
	s.SelectAll(id)
	sel := s.Selection(id)
	require.NotNil(t, sel)
	assert.Equal(t, SelectionRange{Start: 0, End: 3}, *sel)

	s.MoveCaretToStart(id, false)
	caret, _ := s.Caret(id)
	assert.Equal(t, 0, caret)
	assert.Nil(t, s.Selection(id))
}

func TestSingleLineInsertStripsNewlines(t *testing.T) {
	s := NewStore()
	s.EnsureInitial(id, "")
	s.InsertText(id, "a\r\nb\nc")
	v, _ := s.Get(id)
	assert.Equal(t, "abc", v)
}

func TestMultilineInsertNormalizesNewlines(t *testing.T) {
	s := NewStore()
	s.EnsureInitial(id, "")
	s.InsertTextMultiline(id, "a\r\nb\rc")
	v, _ := s.Get(id)
	assert.Equal(t, "a\nb\nc", v)
}

func TestRevisionIncrementsOnValueMutations(t *testing.T) {
	s := NewStore()
	s.EnsureInitial(id, "a")
	rev := s.Revision(id)

	s.InsertText(id, "b")
	assert.Greater(t, s.Revision(id), rev)
	rev = s.Revision(id)

	s.Backspace(id)
	assert.Greater(t, s.Revision(id), rev)
	rev = s.Revision(id)

	// Caret-only movement does not touch the value.
	s.MoveCaretLeft(id, false)
	assert.Equal(t, rev, s.Revision(id))
}

func TestScrollXUpdatesOnlyWhenCaretLeavesViewport(t *testing.T) {
	s := NewStore()
	s.Set(id, "x")
	s.Focus(id)

	availableW := 50.0
	textW := 1000.0

	s.SetCaret(id, 0, false)
	s.UpdateScrollForCaret(id, 0, textW, availableW)
	x, _ := s.Scroll(id)
	assert.Equal(t, 0.0, x)

	s.UpdateScrollForCaret(id, 1000, textW, availableW)
	x, _ = s.Scroll(id)
	assert.Equal(t, 950.0, x)

	// A caret still inside the viewport leaves the scroll alone.
	s.UpdateScrollForCaret(id, 990, textW, availableW)
	x, _ = s.Scroll(id)
	assert.Equal(t, 950.0, x)
}

func TestScrollYKeepsCaretLineVisible(t *testing.T) {
	s := NewStore()
	s.EnsureInitial(id, "")

	s.UpdateScrollForCaretY(id, 0, 12, 120, 40)
	_, y := s.Scroll(id)
	assert.Equal(t, 0.0, y)

	// 108+12-36 = 84 overshoots; clamped to the 80px max scroll.
	s.UpdateScrollForCaretY(id, 108, 12, 120, 40)
	_, y = s.Scroll(id)
	assert.InDelta(t, 80.0, y, 0.001)
}

func TestCheckedMutatorsReportChange(t *testing.T) {
	s := NewStore()

	assert.False(t, s.SetChecked(id, false))
	assert.False(t, s.IsChecked(id))

	assert.True(t, s.SetChecked(id, true))
	assert.True(t, s.IsChecked(id))

	assert.False(t, s.SetChecked(id, true))

	assert.True(t, s.ToggleChecked(id))
	assert.False(t, s.IsChecked(id))
}

func TestIndeterminateResolvesOnSetChecked(t *testing.T) {
	s := NewStore()
	s.SetIndeterminate(id, true)
	assert.True(t, s.IsIndeterminate(id))

	// Resolving to the same checked value still counts as a change.
	assert.True(t, s.SetChecked(id, false))
	assert.False(t, s.IsIndeterminate(id))
}

func TestRadioGroupMutualExclusion(t *testing.T) {
	s := NewStore()
	g := NewRadioGroups()
	form := dom.Key(10)
	r1, r2, r3 := dom.Key(11), dom.Key(12), dom.Key(13)
	g.Register(form, "color", r1)
	g.Register(form, "color", r2)
	g.Register(form, "color", r3)

	assert.True(t, g.Click(s, r1))
	assert.True(t, s.IsChecked(r1))

	assert.True(t, g.Click(s, r2))
	assert.False(t, s.IsChecked(r1))
	assert.True(t, s.IsChecked(r2))
	assert.False(t, s.IsChecked(r3))

	// Clicking the already-checked radio changes nothing.
	assert.False(t, g.Click(s, r2))
}

func TestCaretFromXPicksNearestBoundary(t *testing.T) {
	value := "hello"
	measure := func(s string) float64 {
		n := 0
		for range s {
			n++
		}
		return float64(n) * 10.0
	}

	assert.Equal(t, 0, CaretFromX(value, 0.0, measure))
	assert.Equal(t, 0, CaretFromX(value, 4.0, measure))
	assert.Equal(t, 1, CaretFromX(value, 6.0, measure))
	assert.Equal(t, 2, CaretFromX(value, 19.0, measure))
	assert.Equal(t, len(value), CaretFromX(value, 999.0, measure))
}
