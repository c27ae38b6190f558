package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	emailPolicy *bluemonday.Policy
	textPolicy  *bluemonday.Policy
	initOnce    sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()

		// Email clients render tables and inline styles but never run scripts.
		emailPolicy = bluemonday.UGCPolicy()
		emailPolicy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "td", "th", "center", "span", "div", "font")
		emailPolicy.AllowAttrs("align", "valign", "width", "height", "bgcolor", "colspan", "rowspan", "cellpadding", "cellspacing", "border").
			OnElements("table", "tr", "td", "th", "img")
		emailPolicy.AllowAttrs("color", "face", "size").OnElements("font")
		emailPolicy.AllowStyles("color", "background-color", "text-align", "font-size", "font-weight",
			"padding", "margin", "border", "width").Globally()
		emailPolicy.RequireNoFollowOnLinks(false)
		emailPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// Email removes scripts, event handlers and unsafe URLs from HTML produced by
// markdown templates while keeping the table layout email clients rely on.
func Email(s string) string {
	initPolicies()
	return emailPolicy.Sanitize(s)
}

// Text strips every tag and returns the remaining text.
func Text(s string) string {
	initPolicies()
	return textPolicy.Sanitize(s)
}

// Custom applies policy, or returns s unchanged when policy is nil.
func Custom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
