package inline

// TokenizePreWrap converts a text control's value into inline tokens
// with byte-accurate source ranges: words and spaces split on ' ' and
// '\t', hard breaks on '\n'. The value is expected to already be
// newline-normalized (CR/CRLF folded to LF) by the input store.
func TokenizePreWrap(value string, style Style) []Token {
	var tokens []Token
	i := 0
	for i < len(value) {
		switch value[i] {
		case '\n':
			tokens = append(tokens, Token{
				Kind:   HardBreakToken,
				Source: &SourceRange{Start: i, End: i + 1},
			})
			i++
		case ' ', '\t':
			tokens = append(tokens, Token{
				Kind:   SpaceToken,
				Style:  style,
				Source: &SourceRange{Start: i, End: i + 1},
			})
			i++
		default:
			start := i
			for i < len(value) && value[i] != ' ' && value[i] != '\t' && value[i] != '\n' {
				i++
			}
			tokens = append(tokens, Token{
				Kind:   WordToken,
				Text:   value[start:i],
				Style:  style,
				Source: &SourceRange{Start: start, End: i},
			})
		}
	}
	return tokens
}

// LayoutTextareaValue lays out a textarea's value inside rect in
// pre-wrap mode: spaces and empty lines are preserved, long runs break
// with contiguous source ranges across lines.
func LayoutTextareaValue(m TextMeasurer, rect Rect, style Style, value string) []LineBox {
	tokens := TokenizePreWrap(value, style)
	if len(tokens) == 0 {
		// An empty control still paints one empty line for the caret.
		tokens = []Token{{Kind: WordToken, Text: "", Style: style, Source: &SourceRange{}}}
		return Layout(m, rect, style, tokens, PreWrapOptions())
	}
	return Layout(m, rect, style, tokens, PreWrapOptions())
}
