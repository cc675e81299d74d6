// Package sanitizer cleans user-supplied HTML with bluemonday.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	postPolicy  *bluemonday.Policy
	strict      *bluemonday.Policy
	policesOnce sync.Once
)

func policies() {
	policesOnce.Do(func() {
		strict = bluemonday.StrictPolicy()

		postPolicy = bluemonday.NewPolicy()
		postPolicy.AllowStandardURLs()
		postPolicy.AllowElements(
			"p", "br", "hr",
			"h3", "h4", "h5", "h6",
			"strong", "b", "em", "i", "del",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		postPolicy.AllowAttrs("href").OnElements("a")
		postPolicy.RequireNoFollowOnLinks(true)
		postPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// Post keeps the formatting a job post may use: paragraphs, emphasis, lists,
// code, quotes, small headings and nofollow links. Scripts, styles, images,
// event handlers and javascript: URLs are removed.
func Post(html string) string {
	policies()
	return postPolicy.Sanitize(html)
}

// Text strips every tag and returns the remaining text, entity-escaped.
func Text(s string) string {
	policies()
	return strict.Sanitize(s)
}
