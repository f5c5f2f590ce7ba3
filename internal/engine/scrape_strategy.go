package engine

import (
	"context"
	"fmt"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

// scrapeStrategy is the last resort: fetch the post page as a browser would
// and regex-search the raw HTML for a video URL. Tries the reel-form URL,
// the post-form URL, then the original input.
type scrapeStrategy struct {
	scraper Scraper
	fetcher Fetcher
}

// NewScrapeStrategy creates the fourth-priority strategy.
func NewScrapeStrategy(scraper Scraper, fetcher Fetcher) Strategy {
	return &scrapeStrategy{scraper: scraper, fetcher: fetcher}
}

func (s *scrapeStrategy) Name() string { return "direct_scrape" }

func (s *scrapeStrategy) Attempt(ctx context.Context, ref domain.PostReference, rawInput string) (*domain.Acquisition, error) {
	pageURLs := []string{
		ref.CanonicalReelURL(),
		ref.CanonicalPostURL(),
		rawInput,
	}

	var lastErr error
	for _, pageURL := range pageURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		videoURL, err := s.scraper.ScrapeVideoURL(ctx, pageURL, instagram.BrowserProfile())
		if err != nil {
			lastErr = err
			continue
		}

		video, err := s.fetcher.Fetch(ctx, videoURL)
		if err != nil {
			lastErr = err
			continue
		}

		return &domain.Acquisition{
			Video: video,
			Metadata: domain.AssetMetadata{
				Shortcode: ref.Shortcode,
				Title:     reelTitle(ref.Shortcode),
			},
		}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no page variants to scrape")
	}
	return nil, domain.Classify(fmt.Errorf("direct scraping failed: %w", lastErr))
}
