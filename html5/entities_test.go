package html5

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeNamedEntities(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"&lt;div&gt;", "<div>"},
		{"&quot;q&quot; &apos;a&apos;", `"q" 'a'`},
		{"a&nbsp;b", "a\u00a0b"},
		{"&amp;amp;", "&amp;"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DecodeEntities(c.in), "input %q", c.in)
	}
}

func TestDecodeNumericEntities(t *testing.T) {
	cases := []struct{ in, want string }{
		{"&#65;", "A"},
		{"&#x41;", "A"},
		{"&#X41;", "A"},
		{"&#233;", "é"},
		{"&#x1F600;", "\U0001F600"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DecodeEntities(c.in), "input %q", c.in)
	}
}

func TestMalformedReferencesPassThrough(t *testing.T) {
	cases := []string{
		"&",
		"&;",
		"&#",
		"&#;",
		"&#x;",
		"&#12345678;",  // too many decimal digits
		"&#x1234567;",  // too many hex digits
		"&#65",         // unterminated
		"&unknown;",    // not in the named set
		"&#xD800;",     // surrogate: not a valid scalar
		"100 &lt 200",  // named but unterminated
	}
	for _, c := range cases {
		got := DecodeEntities(c)
		assert.Equal(t, c, got, "input %q must pass through", c)
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	cases := []string{
		"Tom &amp; Jerry",
		"&lt;&gt;&amp;&quot;&apos;&nbsp;",
		"&#65;&#x41;",
		"plain",
		"&bogus; &#zz; &#x;",
	}
	for _, c := range cases {
		once := DecodeEntities(c)
		twice := DecodeEntities(once)
		assert.Equal(t, once, twice, "decode(decode(%q))", c)
	}
}

func TestNoAmpersandReturnsSameString(t *testing.T) {
	s := "no references here"
	assert.Equal(t, s, DecodeEntities(s))
}
