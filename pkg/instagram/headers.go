package instagram

import "net/http"

// HeaderProfile is the request header set a call should present upstream.
// Profiles are plain values passed per call; nothing process-wide is mutated,
// so concurrent acquisitions cannot leak headers into each other.
type HeaderProfile map[string]string

// Apply sets the profile's headers on the request.
func (p HeaderProfile) Apply(req *http.Request) {
	for k, v := range p {
		req.Header.Set(k, v)
	}
}

// Clone returns a copy of the profile with the given overrides applied.
func (p HeaderProfile) Clone(overrides map[string]string) HeaderProfile {
	out := make(HeaderProfile, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

const chromeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultProfile mimics a minimal browser client: User-Agent plus the
// standard Accept headers.
func DefaultProfile() HeaderProfile {
	return HeaderProfile{
		"User-Agent":                chromeUserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}

// BrowserProfile mimics a full interactive browser navigation, including the
// Sec-Fetch-* headers a real page load carries.
func BrowserProfile() HeaderProfile {
	return HeaderProfile{
		"User-Agent":                chromeUserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Cache-Control":             "max-age=0",
	}
}
