package html5

import (
	"fmt"
	"strings"

	"github.com/riverrun/htmlcore/atom"
)

// FormatToken renders one token as a line of the html5-token-v1 text
// format: deterministic, one token per line, attributes in source
// order, with the same escaping the DOM dump uses. Only the test
// harness consumes this.
func FormatToken(t Token, atoms *atom.Table, r Resolver) (string, error) {
	var b strings.Builder
	switch t.Type {
	case DoctypeToken:
		b.WriteString("Doctype")
		if t.HasName {
			name, ok := atoms.Resolve(t.Name)
			if !ok {
				return "", ErrAtomTableMismatch
			}
			b.WriteString(" ")
			b.WriteString(name)
		}
		if t.PublicID != nil {
			b.WriteString(` public="`)
			b.WriteString(escapeTokenText(*t.PublicID))
			b.WriteString(`"`)
		}
		if t.SystemID != nil {
			b.WriteString(` system="`)
			b.WriteString(escapeTokenText(*t.SystemID))
			b.WriteString(`"`)
		}
		if t.ForceQuirks {
			b.WriteString(" force-quirks")
		}
	case StartTagToken:
		name, ok := atoms.Resolve(t.Name)
		if !ok {
			return "", ErrAtomTableMismatch
		}
		b.WriteString("StartTag ")
		b.WriteString(name)
		for _, a := range t.Attrs {
			attrName, ok := atoms.Resolve(a.Name)
			if !ok {
				return "", ErrAtomTableMismatch
			}
			b.WriteString(" ")
			b.WriteString(attrName)
			if a.Value.HasValue {
				val, err := a.Value.Resolve(r)
				if err != nil {
					return "", err
				}
				b.WriteString(`="`)
				b.WriteString(escapeTokenText(val))
				b.WriteString(`"`)
			}
		}
		if t.SelfClosing {
			b.WriteString(" self-closing")
		}
	case EndTagToken:
		name, ok := atoms.Resolve(t.Name)
		if !ok {
			return "", ErrAtomTableMismatch
		}
		b.WriteString("EndTag ")
		b.WriteString(name)
	case CharacterToken:
		text, err := t.Text(r)
		if err != nil {
			return "", err
		}
		b.WriteString(`Character "`)
		b.WriteString(escapeTokenText(text))
		b.WriteString(`"`)
	case CommentToken:
		text, err := t.Text(r)
		if err != nil {
			return "", err
		}
		b.WriteString(`Comment "`)
		b.WriteString(escapeTokenText(text))
		b.WriteString(`"`)
	case EOFToken:
		b.WriteString("Eof")
	}
	return b.String(), nil
}

func escapeTokenText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			if r < 0x20 || r > 0x7e {
				fmt.Fprintf(&b, `\u{%x}`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
