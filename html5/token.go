package html5

import "github.com/riverrun/htmlcore/atom"

// TokenType is the closed alphabet of tokens the Tokenizer emits.
type TokenType int

const (
	DoctypeToken TokenType = iota
	StartTagToken
	EndTagToken
	CharacterToken
	CommentToken
	EOFToken
)

func (t TokenType) String() string {
	switch t {
	case DoctypeToken:
		return "Doctype"
	case StartTagToken:
		return "StartTag"
	case EndTagToken:
		return "EndTag"
	case CharacterToken:
		return "Character"
	case CommentToken:
		return "Comment"
	case EOFToken:
		return "Eof"
	default:
		return "Unknown"
	}
}

// AttrValue is an attribute's optional value: normally a zero-copy span
// into the owning Input, decoded lazily on Resolve; Owned is used only
// for values synthesized outside the byte stream (e.g. a foreign
// content attribute namespace rewrite), which carry their final,
// already-decoded text directly.
type AttrValue struct {
	HasValue bool
	Span     Span
	Owned    string
	IsOwned  bool
}

// Resolve returns the attribute's decoded value, or "" if HasValue is
// false (a valueless attribute, e.g. `<input disabled>`).
func (v AttrValue) Resolve(r Resolver) (string, error) {
	if !v.HasValue {
		return "", nil
	}
	if v.IsOwned {
		return v.Owned, nil
	}
	raw, err := r.Resolve(v.Span)
	if err != nil {
		return "", err
	}
	return DecodeEntities(raw), nil
}

// Attribute is one name/value pair on a StartTag token. Source order is
// preserved in Token.Attrs.
type Attribute struct {
	Name  atom.ID
	Value AttrValue
}

// Token is the tagged union the Tokenizer emits. Which fields are
// meaningful depends on Type; see the per-field comments.
type Token struct {
	Type TokenType

	// StartTag / EndTag.
	Name        atom.ID
	Attrs       []Attribute
	SelfClosing bool

	// Doctype.
	HasName     bool
	PublicID    *string
	SystemID    *string
	ForceQuirks bool

	// Character / Comment: a zero-copy span into the Input the
	// producing Batch's Resolver is bound to. Owned/IsOwned carry a
	// Character token's text directly instead, used only for the single
	// synthetic case where the span model can't represent the text: a
	// raw NUL byte in the input, replaced with a literal
	// U+FFFD that has no corresponding source bytes to span.
	Span            Span
	Owned           string
	IsOwned         bool
	// DecodesEntities is true for Character tokens produced in the
	// Data or RCDATA content states: the consumer should call
	// DecodeEntities on the resolved text before use. It is false for
	// RAWTEXT/PLAINTEXT content (script, style, and similar), which
	// never recognizes character references.
	DecodesEntities bool
}

// Text returns a Character token's resolved, decoded text.
func (t Token) Text(r Resolver) (string, error) {
	if t.IsOwned {
		return t.Owned, nil
	}
	raw, err := r.Resolve(t.Span)
	if err != nil {
		return "", err
	}
	if t.DecodesEntities {
		return DecodeEntities(raw), nil
	}
	return raw, nil
}

// Batch is a drained run of ready tokens paired with a Resolver bound
// to the Input snapshot they were produced against. A Batch's Resolver
// must not be retained past the Batch itself. AtomsID identifies the
// atom table the tokens' names were interned through; consumers
// constructed against a different table must refuse the batch.
type Batch struct {
	Tokens   []Token
	Resolver Resolver
	AtomsID  uint64
}
