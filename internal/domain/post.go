package domain

import (
	"regexp"
	"time"
)

// PostReference is the canonical identifier for an Instagram post, produced
// once by URL classification and passed by value to every strategy.
type PostReference struct {
	Shortcode string
}

var shortcodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Valid reports whether the shortcode is well formed.
func (r PostReference) Valid() bool {
	return r.Shortcode != "" && shortcodeRe.MatchString(r.Shortcode)
}

// CanonicalReelURL returns the normalized reel URL for this post.
func (r PostReference) CanonicalReelURL() string {
	return "https://www.instagram.com/reel/" + r.Shortcode + "/"
}

// CanonicalPostURL returns the normalized post URL for this post.
func (r PostReference) CanonicalPostURL() string {
	return "https://www.instagram.com/p/" + r.Shortcode + "/"
}

// AssetMetadata carries best-effort descriptive fields for an acquired asset.
// Everything except Shortcode is optional; a strategy fills in whatever it
// can observe and absence is not an error.
type AssetMetadata struct {
	Shortcode     string `json:"shortcode"`
	Title         string `json:"title,omitempty"`
	OwnerUsername string `json:"owner_username,omitempty"`
	OwnerFullName string `json:"owner_fullname,omitempty"`
	LikeCount     int    `json:"likes,omitempty"`
	IsVerified    bool   `json:"is_verified,omitempty"`
}

// Acquisition is the successful outcome of an acquisition: the raw video
// bytes plus whatever metadata the winning strategy observed. Constructed
// once, never mutated.
type Acquisition struct {
	Video    []byte
	Metadata AssetMetadata
	Strategy string
}

// StrategyAttempt records one strategy invocation inside the orchestrator.
// Diagnostic only; not persisted beyond the acquisition call.
type StrategyAttempt struct {
	Strategy string
	Err      error
	Elapsed  time.Duration
}
