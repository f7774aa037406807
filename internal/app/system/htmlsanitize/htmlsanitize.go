// Package htmlsanitize strips unsafe HTML from user-authored note content.
//
// Notes accept a limited rich-text vocabulary (formatting, lists, links,
// blockquotes). Everything else, including scripts, event handlers, and
// javascript: URLs, is removed before storage so stored content is always
// safe to render.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark")
	p.AllowAttrs("class").OnElements("p", "span", "blockquote")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize returns the input with unsafe HTML removed.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}
