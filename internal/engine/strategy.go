// Package engine implements the multi-strategy reel acquisition engine:
// a fixed-priority cascade of retrieval strategies composed with fallback
// and retry policy.
package engine

import (
	"context"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

// Strategy is one self-contained technique for resolving a post reference to
// video bytes. Strategies never panic across their boundary and never leak
// raw upstream errors: every failure they return wraps a domain failure kind.
type Strategy interface {
	// Name identifies the strategy in logs, events, and metrics.
	Name() string

	// Attempt tries to acquire the post's video. rawInput is the original
	// user-supplied URL, preserved because some techniques replay it as-is.
	Attempt(ctx context.Context, ref domain.PostReference, rawInput string) (*domain.Acquisition, error)
}

// Resolver is the black-box URL resolution capability strategies 1 and 2
// delegate to. The header profile is an explicit per-call value: no two
// concurrent acquisitions can observe each other's headers.
type Resolver interface {
	Resolve(ctx context.Context, postURL string, profile instagram.HeaderProfile) (*instagram.ResolveResult, error)
}

// GraphQLClient runs the chained CSRF-harvest + shortcode query flow.
type GraphQLClient interface {
	QueryPost(ctx context.Context, ref domain.PostReference, profile instagram.HeaderProfile) (*instagram.PostMedia, error)
}

// Scraper extracts a video URL from raw post HTML.
type Scraper interface {
	ScrapeVideoURL(ctx context.Context, pageURL string, profile instagram.HeaderProfile) (string, error)
}

// Fetcher materializes a resolved media URL into bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DefaultStrategies returns the strategy set in its fixed priority order.
func DefaultStrategies(client *instagram.Client, fetcher Fetcher) []Strategy {
	return []Strategy{
		NewLibraryStrategy(client, fetcher),
		NewLocalHeaderStrategy(client, fetcher),
		NewGraphQLStrategy(client, fetcher),
		NewScrapeStrategy(client, fetcher),
	}
}

// reelTitle builds the default asset title when the upstream provides none.
func reelTitle(shortcode string) string {
	return "Instagram Reel " + shortcode
}
