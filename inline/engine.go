package inline

// Layout places tokens into line boxes inside the content rectangle.
// Tokens are consumed left to right; a token that does not fit on a
// non-empty line wraps it. Each line's baseline sits line_ascent below
// its top edge, and every fragment's Y is finalized on flush so its
// ascent (plus baseline shift) meets the baseline. Layout stops early
// when the next line would exceed the rectangle's bottom.
func Layout(m TextMeasurer, content Rect, blockStyle Style, tokens []Token, opts Options) []LineBox {
	if len(tokens) == 0 {
		return nil
	}

	l := &layoutState{
		m:       m,
		opts:    opts,
		content: content,
	}
	l.availableHeight = content.Height - 2*opts.Padding
	l.baseLineHeight, l.strut = strutMetrics(m, blockStyle)

	l.lineStartX = content.X + opts.Padding
	l.cursorX = l.lineStartX
	l.cursorY = content.Y + opts.Padding
	l.maxX = content.X + content.Width - opts.Padding
	l.bottomLimit = content.Y + opts.Padding + l.availableHeight

	l.line = l.strut
	l.firstInLine = true

	for i := range tokens {
		if !l.place(&tokens[i]) {
			return l.lines
		}
	}

	// Flush the last line.
	if len(l.fragments) > 0 || opts.PreserveEmptyLines {
		if l.cursorY+l.line.height() <= l.bottomLimit {
			l.flushLine()
		}
	}
	return l.lines
}

type layoutState struct {
	m    TextMeasurer
	opts Options

	content         Rect
	availableHeight float64
	baseLineHeight  float64
	strut           lineMetrics

	lineStartX  float64
	cursorX     float64
	cursorY     float64
	maxX        float64
	bottomLimit float64

	line        lineMetrics
	firstInLine bool

	lines     []LineBox
	fragments []Fragment

	lineSourceStart  *int
	lineSourceEnd    *int
	currentLineStart int
}

// flushLine finalizes fragment Y positions against the line baseline
// and appends the line box. Empty lines are emitted only in pre-wrap
// mode.
func (l *layoutState) flushLine() {
	if len(l.fragments) == 0 && !l.opts.PreserveEmptyLines {
		l.lineSourceStart = nil
		l.lineSourceEnd = nil
		return
	}

	baseline := l.cursorY + l.line.ascent
	for i := range l.fragments {
		f := &l.fragments[i]
		f.Rect.Y = baseline - (f.Ascent + f.BaselineShift)
	}

	var source *SourceRange
	switch {
	case l.lineSourceStart != nil && l.lineSourceEnd != nil:
		source = &SourceRange{Start: *l.lineSourceStart, End: *l.lineSourceEnd}
	case l.opts.PreserveEmptyLines:
		source = &SourceRange{Start: l.currentLineStart, End: l.currentLineStart}
	}

	width := l.cursorX - l.lineStartX
	if width < 0 {
		width = 0
	}
	l.lines = append(l.lines, LineBox{
		Rect: Rect{
			X:      l.lineStartX,
			Y:      l.cursorY,
			Width:  width,
			Height: l.line.height(),
		},
		Baseline:  baseline,
		Source:    source,
		Fragments: l.fragments,
	})
	l.fragments = nil
	l.lineSourceStart = nil
	l.lineSourceEnd = nil
}

// wrap flushes the current line and starts the next. It reports false
// when the next line would cross the bottom limit, ending layout.
func (l *layoutState) wrap(nextSourceStart *int) bool {
	lineHeight := l.line.height()
	l.flushLine()

	l.cursorY += lineHeight
	if l.cursorY+l.baseLineHeight > l.bottomLimit {
		return false
	}

	l.cursorX = l.lineStartX
	l.line = l.strut
	l.firstInLine = true
	if nextSourceStart != nil {
		l.currentLineStart = *nextSourceStart
	}
	return true
}

func (l *layoutState) extendSource(src *SourceRange) {
	if src == nil {
		return
	}
	if l.lineSourceStart == nil {
		start := src.Start
		l.lineSourceStart = &start
	}
	end := src.End
	l.lineSourceEnd = &end
}

func (l *layoutState) push(f Fragment) {
	l.fragments = append(l.fragments, f)
	l.cursorX += f.Rect.Width
	if f.Ascent > l.line.ascent {
		l.line.ascent = f.Ascent
	}
	if f.Descent > l.line.descent {
		l.line.descent = f.Descent
	}
	l.firstInLine = false
}

// place lays out one token, wrapping as needed. It reports false when
// layout hit the bottom limit and must stop.
func (l *layoutState) place(t *Token) bool {
	switch t.Kind {
	case SpaceToken:
		return l.placeSpace(t)
	case WordToken:
		return l.placeWord(t)
	case BoxToken, ReplacedToken:
		return l.placeBoxOrReplaced(t)
	case HardBreakToken:
		// An explicit line end; the newline byte itself belongs to no
		// line, so the line's source range stops at it.
		if t.Source != nil && l.lineSourceStart != nil {
			end := t.Source.Start
			l.lineSourceEnd = &end
		}
		var next *int
		if t.Source != nil {
			next = &t.Source.End
		}
		return l.wrap(next)
	}
	return true
}

func (l *layoutState) placeSpace(t *Token) bool {
	// Collapsed whitespace never shows a space at line start.
	if l.firstInLine && !l.opts.PreserveLeadingSpaces {
		return true
	}

	spaceWidth := l.m.Measure(" ", t.Style)
	if spaceWidth <= 0 {
		spaceWidth = 1
	}

	fits := l.cursorX+spaceWidth <= l.maxX
	if !fits && !l.firstInLine {
		var next *int
		if t.Source != nil {
			next = &t.Source.Start
		}
		if !l.wrap(next) {
			return false
		}
		if !l.opts.PreserveLeadingSpaces {
			// Collapsed whitespace drops the space at the wrap point.
			return true
		}
	}

	metrics := textMetrics(l.m, t.Style)
	l.push(Fragment{
		Kind: TextFragment,
		Rect: Rect{
			X:      l.cursorX,
			Y:      l.cursorY, // finalized on flush
			Width:  spaceWidth,
			Height: metrics.height(),
		},
		Ascent:  metrics.ascent,
		Descent: metrics.descent,
		Source:  t.Source,
		Text:    " ",
		Style:   t.Style,
		Action:  t.Ctx.action(),
	})
	l.extendSource(t.Source)
	return true
}

func (l *layoutState) placeWord(t *Token) bool {
	metrics := textMetrics(l.m, t.Style)

	remaining := t.Text
	var remainingStart *int
	var sourceLimit int
	if t.Source != nil {
		start := t.Source.Start
		remainingStart = &start
		sourceLimit = t.Source.End
	}

	fragSource := func(byteLen int) *SourceRange {
		if remainingStart == nil {
			return nil
		}
		end := *remainingStart + byteLen
		if end > sourceLimit {
			end = sourceLimit
		}
		return &SourceRange{Start: *remainingStart, End: end}
	}

	placeRun := func(text string, width float64) {
		src := fragSource(len(text))
		l.push(Fragment{
			Kind: TextFragment,
			Rect: Rect{
				X:      l.cursorX,
				Y:      l.cursorY, // finalized on flush
				Width:  width,
				Height: metrics.height(),
			},
			Ascent:  metrics.ascent,
			Descent: metrics.descent,
			Source:  src,
			Text:    text,
			Style:   t.Style,
			Action:  t.Ctx.action(),
		})
		l.extendSource(src)
	}

	for remaining != "" {
		wordWidth := l.m.Measure(remaining, t.Style)
		if wordWidth <= 0 {
			wordWidth = 1
		}

		fits := l.cursorX+wordWidth <= l.maxX
		if !fits && !l.firstInLine {
			if !l.wrap(remainingStart) {
				return false
			}
			continue
		}

		if fits || !l.opts.BreakLongWords {
			placeRun(remaining, wordWidth)
			return true
		}

		// The word does not fit on a fresh line: split off the widest
		// prefix that does, and wrap the remainder.
		availableW := l.maxX - l.cursorX
		if availableW < 0 {
			availableW = 0
		}
		splitEnd := breakWordPrefixEnd(l.m, t.Style, remaining, availableW)
		splitEnd = clampToRuneBoundary(remaining, splitEnd)
		if splitEnd < 1 {
			splitEnd = clampToRuneBoundary(remaining, 1)
			if splitEnd < 1 {
				splitEnd = len(remaining)
			}
		}
		if splitEnd >= len(remaining) {
			// Could not split after all: place the whole run.
			placeRun(remaining, wordWidth)
			return true
		}

		prefix := remaining[:splitEnd]
		prefixWidth := l.m.Measure(prefix, t.Style)
		if prefixWidth <= 0 {
			prefixWidth = 1
		}
		placeRun(prefix, prefixWidth)

		remaining = remaining[splitEnd:]
		if remainingStart != nil {
			next := *remainingStart + splitEnd
			if next > sourceLimit {
				next = sourceLimit
			}
			remainingStart = &next
		}

		if !l.wrap(remainingStart) {
			return false
		}
	}
	return true
}

func (l *layoutState) placeBoxOrReplaced(t *Token) bool {
	fits := l.cursorX+t.Width <= l.maxX
	if !fits && !l.firstInLine {
		if !l.wrap(nil) {
			return false
		}
	}

	var metrics lineMetrics
	kind := BoxFragment
	if t.Kind == ReplacedToken {
		kind = ReplacedFragment
		metrics = replacedMetrics(t.Height)
	} else {
		metrics = inlineBlockMetrics(t.Height)
	}

	l.push(Fragment{
		Kind: kind,
		Rect: Rect{
			X:      l.cursorX,
			Y:      l.cursorY, // finalized on flush
			Width:  t.Width,
			Height: metrics.height(),
		},
		Ascent:   metrics.ascent,
		Descent:  metrics.descent,
		Style:    t.Style,
		Action:   t.Ctx.action(),
		Replaced: t.Replaced,
		Layout:   t.Layout,
	})
	return true
}
