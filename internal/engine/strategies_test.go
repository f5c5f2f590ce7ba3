package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

var testRef = domain.PostReference{Shortcode: "ABC123"}

func TestLibraryStrategySuccess(t *testing.T) {
	resolver := &mockResolver{responses: []resolverResponse{
		{result: &instagram.ResolveResult{
			URLList: []string{"https://cdn.example/video.mp4"},
			PostInfo: &instagram.PostInfo{
				OwnerUsername: "creator",
				OwnerFullname: "Creator Name",
				Likes:         7,
				IsVerified:    true,
			},
		}},
	}}
	fetcher := &mockFetcher{data: []byte("0123456789ab")}

	s := NewLibraryStrategy(resolver, fetcher)
	acq, err := s.Attempt(context.Background(), testRef, testReelURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acq.Video) != 12 {
		t.Errorf("got %d video bytes, want 12", len(acq.Video))
	}
	if acq.Metadata.Shortcode != "ABC123" {
		t.Errorf("got shortcode %q, want ABC123", acq.Metadata.Shortcode)
	}
	if acq.Metadata.OwnerUsername != "creator" || acq.Metadata.LikeCount != 7 || !acq.Metadata.IsVerified {
		t.Errorf("metadata not carried over: %+v", acq.Metadata)
	}
	if fetcher.urls[0] != "https://cdn.example/video.mp4" {
		t.Errorf("fetched %q, want first candidate URL", fetcher.urls[0])
	}
}

func TestLibraryStrategyUnauthorizedRetriesCanonicalURL(t *testing.T) {
	resolver := &mockResolver{responses: []resolverResponse{
		{err: errors.New("request failed with status code 401")},
		{result: &instagram.ResolveResult{URLList: []string{"https://cdn.example/v.mp4"}}},
	}}
	fetcher := &mockFetcher{data: []byte("v")}

	s := NewLibraryStrategy(resolver, fetcher)
	acq, err := s.Attempt(context.Background(), testRef, "instagram.com/reel/ABC123?igsh=track")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acq == nil {
		t.Fatal("expected acquisition")
	}
	if resolver.callCount() != 2 {
		t.Fatalf("got %d resolver calls, want 2", resolver.callCount())
	}
	if got, want := resolver.calls[1].URL, "https://www.instagram.com/reel/ABC123/"; got != want {
		t.Errorf("retry used %q, want canonical %q", got, want)
	}
}

func TestLibraryStrategyUnauthorizedRetryAlsoFails(t *testing.T) {
	resolver := &mockResolver{responses: []resolverResponse{
		{err: errors.New("401 unauthorized")},
		{err: errors.New("401 unauthorized")},
	}}

	s := NewLibraryStrategy(resolver, &mockFetcher{})
	_, err := s.Attempt(context.Background(), testRef, testReelURL)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	if resolver.callCount() != 2 {
		t.Errorf("got %d resolver calls, want 2", resolver.callCount())
	}
}

func TestLibraryStrategyNonAuthErrorDoesNotRetry(t *testing.T) {
	resolver := &mockResolver{responses: []resolverResponse{
		{err: errors.New("connection refused")},
	}}

	s := NewLibraryStrategy(resolver, &mockFetcher{})
	_, err := s.Attempt(context.Background(), testRef, testReelURL)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("got %v, want ErrNetwork", err)
	}
	if resolver.callCount() != 1 {
		t.Errorf("got %d resolver calls, want 1", resolver.callCount())
	}
}

func TestLibraryStrategyEmptyURLList(t *testing.T) {
	resolver := &mockResolver{responses: []resolverResponse{
		{result: &instagram.ResolveResult{}},
	}}
	fetcher := &mockFetcher{}

	s := NewLibraryStrategy(resolver, fetcher)
	_, err := s.Attempt(context.Background(), testRef, testReelURL)
	if !errors.Is(err, domain.ErrNoVideoFound) {
		t.Fatalf("got %v, want ErrNoVideoFound", err)
	}
	if fetcher.callCount() != 0 {
		t.Errorf("fetcher invoked with no candidate URLs")
	}
}

func TestLocalHeaderStrategyUsesBrowserProfile(t *testing.T) {
	resolver := &mockResolver{responses: []resolverResponse{
		{result: &instagram.ResolveResult{URLList: []string{"https://cdn.example/v.mp4"}}},
	}}

	s := NewLocalHeaderStrategy(resolver, &mockFetcher{data: []byte("v")})
	if _, err := s.Attempt(context.Background(), testRef, testReelURL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profile := resolver.calls[0].Profile
	if profile["Sec-Fetch-Mode"] != "navigate" {
		t.Errorf("resolver did not receive the full browser profile: %v", profile)
	}
}

func TestGraphQLStrategySuccess(t *testing.T) {
	gql := &mockGraphQL{media: &instagram.PostMedia{
		Shortcode: "ABC123",
		IsVideo:   true,
		VideoURL:  "https://cdn.example/gql.mp4",
		Owner:     instagram.Owner{Username: "creator", FullName: "Creator Name", IsVerified: true},
		Likes:     3,
	}}
	fetcher := &mockFetcher{data: []byte("gql-bytes")}

	s := NewGraphQLStrategy(gql, fetcher)
	acq, err := s.Attempt(context.Background(), testRef, testReelURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.urls[0] != "https://cdn.example/gql.mp4" {
		t.Errorf("fetched %q", fetcher.urls[0])
	}
	if acq.Metadata.OwnerUsername != "creator" || acq.Metadata.LikeCount != 3 {
		t.Errorf("metadata not carried over: %+v", acq.Metadata)
	}
}

func TestGraphQLStrategyImagePost(t *testing.T) {
	gql := &mockGraphQL{media: &instagram.PostMedia{Shortcode: "ABC123", IsVideo: false}}

	s := NewGraphQLStrategy(gql, &mockFetcher{})
	_, err := s.Attempt(context.Background(), testRef, testReelURL)
	if !errors.Is(err, domain.ErrNoVideoFound) {
		t.Fatalf("got %v, want ErrNoVideoFound", err)
	}
}

func TestGraphQLStrategyClassifiesQueryError(t *testing.T) {
	gql := &mockGraphQL{err: errors.New("graphql request failed with status code 404")}

	s := NewGraphQLStrategy(gql, &mockFetcher{})
	_, err := s.Attempt(context.Background(), testRef, testReelURL)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestScrapeStrategyTriesPageVariantsInOrder(t *testing.T) {
	scraper := &mockScraper{
		pages: map[string]string{
			"https://www.instagram.com/p/ABC123/": "https://cdn.example/scraped.mp4",
		},
		pageErrs: map[string]error{
			"https://www.instagram.com/reel/ABC123/": errors.New("no match"),
		},
	}
	fetcher := &mockFetcher{data: []byte("sv")}

	s := NewScrapeStrategy(scraper, fetcher)
	acq, err := s.Attempt(context.Background(), testRef, testReelURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acq.Video) != 2 {
		t.Errorf("got %d bytes", len(acq.Video))
	}
	if len(scraper.calls) != 2 {
		t.Fatalf("got %d scrape calls, want 2", len(scraper.calls))
	}
	if scraper.calls[0] != "https://www.instagram.com/reel/ABC123/" {
		t.Errorf("first variant was %q, want canonical reel URL", scraper.calls[0])
	}
}

func TestScrapeStrategyAllVariantsFail(t *testing.T) {
	scraper := &mockScraper{pageErrs: map[string]error{
		"https://www.instagram.com/reel/ABC123/": errors.New("timeout awaiting response"),
		"https://www.instagram.com/p/ABC123/":    errors.New("timeout awaiting response"),
	}}

	s := NewScrapeStrategy(scraper, &mockFetcher{})
	_, err := s.Attempt(context.Background(), testRef, testReelURL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrTimeout) {
		t.Errorf("got %v, want ErrTimeout via keyword classification", err)
	}
}

func TestScrapeStrategyFetchFailureFallsToNextVariant(t *testing.T) {
	scraper := &mockScraper{pages: map[string]string{
		"https://www.instagram.com/reel/ABC123/": "https://cdn.example/broken.mp4",
		"https://www.instagram.com/p/ABC123/":    "https://cdn.example/broken.mp4",
	}}
	fetcher := &mockFetcher{err: fmt.Errorf("%w: cap exceeded", domain.ErrTooLarge)}

	s := NewScrapeStrategy(scraper, fetcher)
	_, err := s.Attempt(context.Background(), testRef, testReelURL)
	if !errors.Is(err, domain.ErrTooLarge) {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}
	if fetcher.callCount() != 3 {
		t.Errorf("got %d fetch calls, want 3", fetcher.callCount())
	}
}

func TestDefaultStrategiesOrder(t *testing.T) {
	client := instagram.NewClient(0)
	strategies := DefaultStrategies(client, &mockFetcher{})
	want := []string{"library", "local_headers", "graphql", "direct_scrape"}
	if len(strategies) != len(want) {
		t.Fatalf("got %d strategies, want %d", len(strategies), len(want))
	}
	for i, s := range strategies {
		if s.Name() != want[i] {
			t.Errorf("strategy %d is %q, want %q", i, s.Name(), want[i])
		}
	}
}
