package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy for plain text fields
	StrictPolicy *bluemonday.Policy
	// SignaturePolicy for email signatures, which may carry light formatting
	SignaturePolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	SignaturePolicy = bluemonday.NewPolicy()
	SignaturePolicy.AllowElements("p", "br", "div", "span")
	SignaturePolicy.AllowElements("strong", "em", "u", "s")
	SignaturePolicy.AllowElements("a")
	SignaturePolicy.AllowAttrs("href").OnElements("a")
	SignaturePolicy.RequireParseableURLs(true)
	SignaturePolicy.AllowURLSchemes("http", "https", "mailto")
	SignaturePolicy.RequireNoFollowOnLinks(true)
}

// SanitizeText removes all markup from a free-text field. Entities produced
// by the policy are decoded again so "Café & Co" round-trips unchanged.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(s)))
}

// SanitizeSignature keeps the small set of tags allowed in signatures
func SanitizeSignature(s string) string {
	return strings.TrimSpace(SignaturePolicy.Sanitize(s))
}
