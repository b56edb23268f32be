package atom

// wellKnownAtoms is the seed set of HTML5 tag and attribute names
// pre-interned by NewTable, taken from the tag/attribute vocabulary
// golang.org/x/net/html/atom ships a lookup table for. Keeping the
// list here (rather than trying to enumerate x/net/html/atom's private
// table) means seeding is a one-time, fixed cost independent of that
// package's internal layout.
var wellKnownAtoms = []string{
	// Document structure.
	"html", "head", "body", "title", "base", "link", "meta", "style",
	// Sectioning / grouping.
	"div", "span", "p", "section", "article", "aside", "nav", "header",
	"footer", "main", "address", "hgroup", "figure", "figcaption",
	// Headings.
	"h1", "h2", "h3", "h4", "h5", "h6",
	// Text-level.
	"a", "b", "i", "u", "s", "small", "strong", "em", "mark", "code",
	"pre", "q", "cite", "abbr", "sub", "sup", "br", "wbr", "bdi", "bdo",
	"tt", "big", "strike", "font", "nobr",
	// Lists.
	"ul", "ol", "li", "dl", "dt", "dd", "menu",
	// Tables.
	"table", "caption", "colgroup", "col", "tbody", "thead", "tfoot",
	"tr", "td", "th",
	// Forms.
	"form", "input", "button", "select", "option", "optgroup",
	"textarea", "label", "fieldset", "legend", "datalist", "output",
	"progress", "meter",
	// Embedded / interactive content.
	"img", "iframe", "embed", "object", "param", "video", "audio",
	"source", "track", "canvas", "map", "area", "svg", "math",
	// Scripting and templates.
	"script", "noscript", "template", "slot",
	// Ruby.
	"ruby", "rb", "rp", "rt", "rtc",
	// Interactive.
	"details", "summary", "dialog", "marquee", "applet", "blockquote",
	"center", "dir", "plaintext", "xmp", "listing", "keygen",
	// Common attributes.
	"id", "class", "style", "title", "lang", "dir", "href", "src",
	"alt", "type", "name", "value", "placeholder", "checked",
	"disabled", "selected", "readonly", "required", "multiple", "rows",
	"cols", "colspan", "rowspan", "width", "height", "target", "rel",
	"for", "action", "method", "enctype", "autofocus", "maxlength",
	"min", "max", "step", "pattern", "accept", "tabindex",
}
