package tree

// scope selects a scope predicate: "element e is in scope if
// scanning the stack of open elements from the top downward reaches e
// before reaching any tag in the scope's boundary set."
type scope int

const (
	defaultScope scope = iota
	buttonScope
	listItemScope
	tableScope
	selectScope
)

// defaultScopeStopTags is the boundary set shared by defaultScope,
// buttonScope, and listItemScope: html/table/template/td/th/
// caption/marquee/object/applet.
var defaultScopeStopTags = map[string]bool{
	"applet": true, "caption": true, "html": true, "table": true,
	"td": true, "th": true, "marquee": true, "object": true,
	"template": true,
}

// indexOfElementInScope returns the index in oe of the highest element
// whose name is in match that is in s's scope, or -1.
func indexOfElementInScope(oe nodeStack, s scope, match ...string) int {
	matches := func(name string) bool {
		for _, m := range match {
			if m == name {
				return true
			}
		}
		return false
	}
	for i := len(oe) - 1; i >= 0; i-- {
		n := oe[i]
		if n.namespace == "" {
			if matches(n.name) {
				return i
			}
			switch s {
			case listItemScope:
				if n.name == "ol" || n.name == "ul" {
					return -1
				}
			case buttonScope:
				if n.name == "button" {
					return -1
				}
			case tableScope:
				if n.name == "html" || n.name == "table" || n.name == "template" {
					return -1
				}
			case selectScope:
				if n.name != "optgroup" && n.name != "option" {
					return -1
				}
			}
		}
		switch s {
		case defaultScope, listItemScope, buttonScope:
			if defaultScopeStopTags[n.name] {
				return -1
			}
		}
	}
	return -1
}

func elementInScope(oe nodeStack, s scope, match ...string) bool {
	return indexOfElementInScope(oe, s, match...) != -1
}

// popUntil pops oe down to (and including) the highest element whose
// name is in match that is in s's scope. It reports whether such an
// element existed; if not, oe is left unchanged.
func popUntil(oe *nodeStack, s scope, match ...string) bool {
	if i := indexOfElementInScope(*oe, s, match...); i != -1 {
		*oe = (*oe)[:i]
		return true
	}
	return false
}
