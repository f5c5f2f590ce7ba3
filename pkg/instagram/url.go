// Package instagram provides unauthenticated access to public Instagram
// posts: URL classification, a GraphQL-based media resolver, and an HTML
// scrape fallback. All requests mimic a generic browser client.
package instagram

import (
	"regexp"
	"strings"
)

// postURLRe matches reel/post links: optional scheme, optional www,
// instagram.com host, a reel or p path segment, then the shortcode.
var postURLRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?instagram\.com/(?:reel|p)/[A-Za-z0-9_-]+`)

// shortcodeRe extracts the shortcode from any string containing a post path.
var shortcodeRe = regexp.MustCompile(`/(?:reel|p)/([A-Za-z0-9_-]+)`)

// IsPostURL reports whether the input looks like an Instagram reel or post
// link. Leading/trailing whitespace is ignored.
func IsPostURL(input string) bool {
	return postURLRe.MatchString(strings.TrimSpace(input))
}

// ExtractShortcode pulls the shortcode out of any string containing a post
// path segment. Returns "" when none is present; it never errors, so callers
// decide whether absence is a failure.
func ExtractShortcode(input string) string {
	matches := shortcodeRe.FindStringSubmatch(input)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// ContainsPostURL reports whether the text contains a reel/post link
// anywhere, not just at the start. Used for routing chat messages.
func ContainsPostURL(text string) bool {
	return shortcodeRe.MatchString(text) && strings.Contains(text, "instagram.com")
}

// embeddedURLRe matches a post link anywhere in free text, including any
// trailing path or query (share links carry tracking parameters).
var embeddedURLRe = regexp.MustCompile(`(?:https?://)?(?:www\.)?instagram\.com/(?:reel|p)/[A-Za-z0-9_-]+\S*`)

// FindPostURL returns the first reel/post link embedded in text, or "" when
// none is present. Chat messages often carry surrounding words.
func FindPostURL(text string) string {
	return embeddedURLRe.FindString(text)
}
