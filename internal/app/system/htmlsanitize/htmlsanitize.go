// Package htmlsanitize cleans rich text submitted with typed papers.
// Question text, options, and instructions may carry formatting from the
// upload client; everything else in a paper is treated as plain text.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// richText allows the formatting a typed exam question legitimately uses:
// basic formatting, lists, headings, code, tables. Scripts, iframes, event
// handlers, and javascript: URLs are stripped.
var richText = buildRichTextPolicy()

func buildRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	return p
}

// strict strips every tag, leaving text content only.
var strict = bluemonday.StrictPolicy()

// Sanitize returns the input with unsafe HTML removed. Safe formatting
// is preserved.
func Sanitize(s string) string {
	return richText.Sanitize(s)
}

// StripTags removes all HTML, returning plain text. Used for fields that
// must never carry markup, like course titles and instructions.
func StripTags(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// IsPlainText reports whether the input contains no HTML tags. A lone
// < or > (as in "5 < 10") does not count as markup.
func IsPlainText(s string) bool {
	lt := strings.Index(s, "<")
	if lt == -1 {
		return true
	}
	return strings.Index(s[lt:], ">") == -1
}
