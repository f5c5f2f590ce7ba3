package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// maxPageBytes bounds how much of a post page we read when scraping.
const maxPageBytes = 8 * 1024 * 1024

// PagePattern is one ordered matcher applied to raw post HTML. Patterns are
// tried in order; the first hit that yields a plausible mp4 URL wins. New
// upstream markup variants get a new entry here, not new orchestration code.
type PagePattern struct {
	Name string
	// Re must capture the URL in group 1, or match it whole when Group is 0.
	Re    *regexp.Regexp
	Group int
	// RequireCDN restricts matches to recognized CDN hostname fragments.
	RequireCDN bool
}

// DefaultPagePatterns returns the known markup shapes carrying a video URL,
// most specific first.
func DefaultPagePatterns() []PagePattern {
	return []PagePattern{
		{
			Name:  "video_url",
			Re:    regexp.MustCompile(`"video_url":"([^"]+)"`),
			Group: 1,
		},
		{
			Name:  "video_versions",
			Re:    regexp.MustCompile(`"video_versions":\s*\[\s*\{\s*"width":\s*\d+,\s*"height":\s*\d+,\s*"url":\s*"([^"]+)"`),
			Group: 1,
		},
		{
			Name:  "playback_url",
			Re:    regexp.MustCompile(`"playback_url":"([^"]+)"`),
			Group: 1,
		},
		{
			Name:       "direct_mp4",
			Re:         regexp.MustCompile(`https://[^"'\s]*\.mp4[^"'\s]*`),
			Group:      0,
			RequireCDN: true,
		},
	}
}

var unicodeEscapeRe = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// UnescapeVideoURL decodes \uXXXX sequences and strips remaining backslash
// escapes from a URL matched out of embedded JSON.
func UnescapeVideoURL(s string) string {
	s = unicodeEscapeRe.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
	return strings.ReplaceAll(s, `\`, "")
}

// isCDNHost reports whether the URL points at a recognized media CDN.
func isCDNHost(u string) bool {
	return strings.Contains(u, "instagram") || strings.Contains(u, "fbcdn")
}

// FindVideoURL searches raw post HTML for a playable video URL using the
// client's ordered pattern list. Returns the URL, the name of the pattern
// that matched, and whether anything matched.
func (c *Client) FindVideoURL(html string) (videoURL, pattern string, ok bool) {
	for _, p := range c.patterns {
		var match string
		if p.Group == 0 {
			match = p.Re.FindString(html)
		} else {
			groups := p.Re.FindStringSubmatch(html)
			if len(groups) > p.Group {
				match = groups[p.Group]
			}
		}
		if match == "" {
			continue
		}

		candidate := UnescapeVideoURL(match)
		if p.RequireCDN && !isCDNHost(candidate) {
			continue
		}
		if strings.HasPrefix(candidate, "http") && strings.Contains(candidate, ".mp4") {
			return candidate, p.Name, true
		}
	}
	return "", "", false
}

// ScrapeVideoURL GETs a post page and extracts a video URL from its HTML.
func (c *Client) ScrapeVideoURL(ctx context.Context, pageURL string, profile HeaderProfile) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	profile.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page request failed with status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	videoURL, _, ok := c.FindVideoURL(string(body))
	if !ok {
		return "", fmt.Errorf("no video URL found in page %s", pageURL)
	}
	return videoURL, nil
}
