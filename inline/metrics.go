package inline

// lineMetrics is an ascent/descent pair around a shared baseline.
type lineMetrics struct {
	ascent, descent float64
}

func (m lineMetrics) height() float64 { return m.ascent + m.descent }

// textMetrics splits a style's line height into ascent and descent.
// The 3:1 split approximates typical latin font metrics; exact glyph
// metrics belong to the shaping layer, which is out of scope behind
// the TextMeasurer interface.
func textMetrics(m TextMeasurer, style Style) lineMetrics {
	lh := m.LineHeight(style)
	if lh < 0 {
		lh = 0
	}
	return lineMetrics{ascent: lh * 0.75, descent: lh * 0.25}
}

// strutMetrics is the per-line floor established by the block's own
// style: no line is shorter than the strut.
func strutMetrics(m TextMeasurer, blockStyle Style) (lineHeight float64, strut lineMetrics) {
	strut = textMetrics(m, blockStyle)
	return strut.height(), strut
}

// replacedMetrics aligns a replaced element's bottom edge to the
// baseline: all height above, none below.
func replacedMetrics(height float64) lineMetrics {
	if height < 0 {
		height = 0
	}
	return lineMetrics{ascent: height}
}

// inlineBlockMetrics is the placeholder bottom-edge alignment used for
// inline-block fragments until their own last line baseline is
// propagated.
func inlineBlockMetrics(height float64) lineMetrics {
	return replacedMetrics(height)
}
