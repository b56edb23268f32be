// Package input holds per-control state for text inputs, textareas,
// checkboxes, and radios: value, caret, selection anchor, scroll
// offsets, checked flag, and a monotonic revision counter. The store is
// UI-agnostic: it never measures text; integrators translate pixels to
// byte positions and feed them back in.
package input

import "github.com/riverrun/htmlcore/dom"

// SelectionRange is a normalized half-open byte selection with
// Start <= End, both on character boundaries.
type SelectionRange struct {
	Start, End int
}

// state is one control's retained state.
type state struct {
	value         string
	rev           uint64
	checked       bool
	indeterminate bool
	caret         int
	hasAnchor     bool
	anchor        int
	scrollX       float64
	scrollY       float64
}

// Store maps control ids (their DOM keys) to retained input state.
// It is not safe for concurrent use; one task owns one Store.
type Store struct {
	values map[dom.Key]*state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[dom.Key]*state)}
}

// Has reports whether an entry exists for id.
func (s *Store) Has(id dom.Key) bool {
	_, ok := s.values[id]
	return ok
}

func (s *Store) entry(id dom.Key) *state {
	st, ok := s.values[id]
	if !ok {
		st = &state{}
		s.values[id] = st
	}
	return st
}

// Get returns the stored value for id, if any.
func (s *Store) Get(id dom.Key) (string, bool) {
	st, ok := s.values[id]
	if !ok {
		return "", false
	}
	return st.value, true
}

// Caret returns the current caret byte index for id, if any.
func (s *Store) Caret(id dom.Key) (int, bool) {
	st, ok := s.values[id]
	if !ok {
		return 0, false
	}
	return st.caret, true
}

// Selection returns the normalized selection, or nil when collapsed.
func (s *Store) Selection(id dom.Key) *SelectionRange {
	st, ok := s.values[id]
	if !ok {
		return nil
	}
	return selectionRange(st)
}

// Scroll returns the control's scroll offsets.
func (s *Store) Scroll(id dom.Key) (x, y float64) {
	st, ok := s.values[id]
	if !ok {
		return 0, 0
	}
	return st.scrollX, st.scrollY
}

// Revision is the monotonic revision counter for id's value; it
// increments on any value mutation, so layout caches can key on
// (id, revision).
func (s *Store) Revision(id dom.Key) uint64 {
	st, ok := s.values[id]
	if !ok {
		return 0
	}
	return st.rev
}

// Set overwrites the value for id, resetting the caret to the end and
// clearing any selection.
func (s *Store) Set(id dom.Key, value string) {
	prev, existed := s.values[id]
	st := &state{value: value, caret: clampToCharBoundary(value, len(value))}
	if existed {
		st.checked = prev.checked
		st.indeterminate = prev.indeterminate
		st.rev = prev.rev + 1
	}
	s.values[id] = st
}

// EnsureInitial inserts initial for id if no entry exists yet.
func (s *Store) EnsureInitial(id dom.Key, initial string) {
	if _, ok := s.values[id]; ok {
		return
	}
	s.values[id] = &state{
		value: initial,
		caret: clampToCharBoundary(initial, len(initial)),
	}
}

// Focus clamps the caret and clears any selection when the control
// gains focus.
func (s *Store) Focus(id dom.Key) {
	if st, ok := s.values[id]; ok {
		clampState(st)
		st.hasAnchor = false
	}
}

// Blur behaves like Focus; the control keeps its value and caret.
func (s *Store) Blur(id dom.Key) {
	s.Focus(id)
}

// Clear drops all control state, typically on navigation.
func (s *Store) Clear() {
	s.values = make(map[dom.Key]*state)
}

// InsertText inserts text at the caret in single-line mode: newlines
// are stripped, and any selection is replaced first.
func (s *Store) InsertText(id dom.Key, text string) {
	st := s.entry(id)
	clampState(st)
	text = filterSingleLine(text)
	if text == "" {
		return
	}
	s.insert(st, text)
}

// InsertTextMultiline inserts text at the caret in multi-line mode:
// CR and CRLF are normalized to LF, and any selection is replaced
// first.
func (s *Store) InsertTextMultiline(id dom.Key, text string) {
	st := s.entry(id)
	clampState(st)
	text = normalizeNewlines(text)
	if text == "" {
		return
	}
	s.insert(st, text)
}

func (s *Store) insert(st *state, text string) {
	deleteSelectionIfAny(st)
	caret := clampToCharBoundary(st.value, st.caret)
	st.value = st.value[:caret] + text + st.value[caret:]
	st.caret = clampToCharBoundary(st.value, caret+len(text))
	st.rev++
}

// Backspace deletes the selection if one exists, else the character
// before the caret.
func (s *Store) Backspace(id dom.Key) {
	st, ok := s.values[id]
	if !ok {
		return
	}
	clampState(st)
	if deleteSelectionIfAny(st) {
		return
	}
	caret := clampToCharBoundary(st.value, st.caret)
	if caret == 0 {
		return
	}
	prev := prevCursorBoundary(st.value, caret)
	st.value = st.value[:prev] + st.value[caret:]
	st.caret = clampToCharBoundary(st.value, prev)
	st.rev++
}

// Delete deletes the selection if one exists, else the character after
// the caret.
func (s *Store) Delete(id dom.Key) {
	st, ok := s.values[id]
	if !ok {
		return
	}
	clampState(st)
	if deleteSelectionIfAny(st) {
		return
	}
	caret := clampToCharBoundary(st.value, st.caret)
	if caret >= len(st.value) {
		return
	}
	next := nextCursorBoundary(st.value, caret)
	st.value = st.value[:caret] + st.value[next:]
	st.caret = clampToCharBoundary(st.value, caret)
	st.rev++
}

// MoveCaretLeft moves one character left; with selecting it extends the
// selection from the anchor, otherwise a selection collapses to its
// start.
func (s *Store) MoveCaretLeft(id dom.Key, selecting bool) {
	st := s.entry(id)
	clampState(st)
	if selecting {
		startSelecting(st)
		st.caret = prevCursorBoundary(st.value, st.caret)
		normalizeAnchor(st)
		return
	}
	if sel := selectionRange(st); sel != nil {
		st.caret = sel.Start
	} else {
		st.caret = prevCursorBoundary(st.value, st.caret)
	}
	st.hasAnchor = false
}

// MoveCaretRight mirrors MoveCaretLeft; a selection collapses to its
// end.
func (s *Store) MoveCaretRight(id dom.Key, selecting bool) {
	st := s.entry(id)
	clampState(st)
	if selecting {
		startSelecting(st)
		st.caret = nextCursorBoundary(st.value, st.caret)
		normalizeAnchor(st)
		return
	}
	if sel := selectionRange(st); sel != nil {
		st.caret = sel.End
	} else {
		st.caret = nextCursorBoundary(st.value, st.caret)
	}
	st.hasAnchor = false
}

// MoveCaretToStart moves the caret to byte 0.
func (s *Store) MoveCaretToStart(id dom.Key, selecting bool) {
	st := s.entry(id)
	clampState(st)
	if selecting {
		startSelecting(st)
		st.caret = 0
		normalizeAnchor(st)
		return
	}
	st.caret = 0
	st.hasAnchor = false
}

// MoveCaretToEnd moves the caret to the end of the value.
func (s *Store) MoveCaretToEnd(id dom.Key, selecting bool) {
	st := s.entry(id)
	clampState(st)
	if selecting {
		startSelecting(st)
		st.caret = len(st.value)
		normalizeAnchor(st)
		return
	}
	st.caret = len(st.value)
	st.hasAnchor = false
}

// SelectAll selects the whole value with the caret at the end.
func (s *Store) SelectAll(id dom.Key) {
	st := s.entry(id)
	clampState(st)
	st.caret = len(st.value)
	st.hasAnchor = true
	st.anchor = 0
	normalizeAnchor(st)
}

// SetCaret places the caret at a byte position (clamped to a character
// boundary); with selecting it extends the selection from the anchor.
func (s *Store) SetCaret(id dom.Key, caret int, selecting bool) {
	st := s.entry(id)
	clampState(st)
	caret = clampToCharBoundary(st.value, caret)
	if selecting {
		startSelecting(st)
		st.caret = caret
		normalizeAnchor(st)
		return
	}
	st.caret = caret
	st.hasAnchor = false
}

// scrollMargin keeps the caret a few pixels inside the viewport edge
// before scrolling kicks in.
const scrollMargin = 4.0

// UpdateScrollForCaret adjusts horizontal scroll so the caret at
// caretPx stays visible inside availableW of textW-wide content,
// without re-centering when it is already in view.
func (s *Store) UpdateScrollForCaret(id dom.Key, caretPx, textW, availableW float64) {
	st := s.entry(id)

	if availableW < 0 {
		availableW = 0
	}
	if textW < 0 {
		textW = 0
	}
	caretPx = clampFloat(caretPx, 0, textW)

	if availableW <= 0 || textW <= availableW {
		st.scrollX = 0
		return
	}

	maxScroll := textW - availableW
	scrollX := clampFloat(st.scrollX, 0, maxScroll)

	leftLimit := scrollMargin
	if leftLimit > availableW {
		leftLimit = availableW
	}
	rightLimit := availableW - scrollMargin
	if rightLimit < leftLimit {
		rightLimit = leftLimit
	}

	caretInView := caretPx - scrollX
	if caretInView < leftLimit {
		scrollX = caretPx - leftLimit
		if scrollX < 0 {
			scrollX = 0
		}
	} else if caretInView > rightLimit {
		scrollX = caretPx - rightLimit
		if scrollX > maxScroll {
			scrollX = maxScroll
		}
	}
	st.scrollX = scrollX
}

// UpdateScrollForCaretY adjusts vertical scroll for multi-line
// controls so the caret line (caretY, height caretH) stays visible.
func (s *Store) UpdateScrollForCaretY(id dom.Key, caretY, caretH, textH, availableH float64) {
	st := s.entry(id)

	if availableH < 0 {
		availableH = 0
	}
	if textH < 0 {
		textH = 0
	}
	if caretH < 0 {
		caretH = 0
	}
	caretY = clampFloat(caretY, 0, textH)

	if availableH <= 0 || textH <= availableH {
		st.scrollY = 0
		return
	}

	maxScroll := textH - availableH
	scrollY := clampFloat(st.scrollY, 0, maxScroll)

	topLimit := scrollMargin
	if topLimit > availableH {
		topLimit = availableH
	}
	bottomLimit := availableH - scrollMargin
	if bottomLimit < topLimit {
		bottomLimit = topLimit
	}

	caretTopInView := caretY - scrollY
	caretBottomInView := caretTopInView + caretH
	if caretTopInView < topLimit {
		scrollY = caretY - topLimit
		if scrollY < 0 {
			scrollY = 0
		}
	} else if caretBottomInView > bottomLimit {
		scrollY = caretY + caretH - bottomLimit
		if scrollY > maxScroll {
			scrollY = maxScroll
		}
	}
	st.scrollY = scrollY
}

// --- checked state (checkboxes and radios) ---

// IsChecked reports the checked flag for id.
func (s *Store) IsChecked(id dom.Key) bool {
	st, ok := s.values[id]
	return ok && st.checked
}

// SetChecked sets the checked flag, reporting whether it changed.
// Setting a definite state always clears indeterminate.
func (s *Store) SetChecked(id dom.Key, checked bool) bool {
	st := s.entry(id)
	changed := st.checked != checked || st.indeterminate
	st.checked = checked
	st.indeterminate = false
	return changed
}

// ToggleChecked flips the checked flag.
func (s *Store) ToggleChecked(id dom.Key) bool {
	st := s.entry(id)
	return s.SetChecked(id, !st.checked)
}

// EnsureInitialChecked inserts an entry with the initial checked state
// if none exists yet.
func (s *Store) EnsureInitialChecked(id dom.Key, checked bool) {
	if _, ok := s.values[id]; ok {
		return
	}
	s.values[id] = &state{checked: checked}
}

// IsIndeterminate reports a checkbox's visually-indeterminate state.
func (s *Store) IsIndeterminate(id dom.Key) bool {
	st, ok := s.values[id]
	return ok && st.indeterminate
}

// SetIndeterminate sets the indeterminate flag; a user click always
// resolves it back to a definite checked state via SetChecked.
func (s *Store) SetIndeterminate(id dom.Key, v bool) {
	s.entry(id).indeterminate = v
}

// --- internal helpers ---

func selectionRange(st *state) *SelectionRange {
	if !st.hasAnchor {
		return nil
	}
	a := clampToCharBoundary(st.value, st.anchor)
	c := clampToCharBoundary(st.value, st.caret)
	if a == c {
		return nil
	}
	if a < c {
		return &SelectionRange{Start: a, End: c}
	}
	return &SelectionRange{Start: c, End: a}
}

func startSelecting(st *state) {
	if !st.hasAnchor {
		st.hasAnchor = true
		st.anchor = st.caret
	}
}

// normalizeAnchor clears the anchor once the selection collapses, so a
// later movement does not resurrect a stale selection.
func normalizeAnchor(st *state) {
	if !st.hasAnchor {
		return
	}
	st.anchor = clampToCharBoundary(st.value, st.anchor)
	if st.anchor == st.caret {
		st.hasAnchor = false
	}
}

func deleteSelectionIfAny(st *state) bool {
	sel := selectionRange(st)
	if sel == nil {
		st.hasAnchor = false
		st.caret = clampToCharBoundary(st.value, st.caret)
		return false
	}
	st.value = st.value[:sel.Start] + st.value[sel.End:]
	st.caret = clampToCharBoundary(st.value, sel.Start)
	st.hasAnchor = false
	st.rev++
	return true
}

func clampState(st *state) {
	st.caret = clampToCharBoundary(st.value, st.caret)
	if st.hasAnchor {
		st.anchor = clampToCharBoundary(st.value, st.anchor)
	}
	if st.scrollX < 0 {
		st.scrollX = 0
	}
	if st.scrollY < 0 {
		st.scrollY = 0
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
