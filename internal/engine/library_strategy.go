package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

// libraryStrategy delegates to the black-box resolver with the standard
// browser-like profile. On an authorization failure it retries once with the
// normalized canonical reel URL before surfacing the error: ad-hoc share
// links sometimes carry tracking parameters the upstream rejects.
type libraryStrategy struct {
	resolver Resolver
	fetcher  Fetcher
}

// NewLibraryStrategy creates the first-priority strategy.
func NewLibraryStrategy(resolver Resolver, fetcher Fetcher) Strategy {
	return &libraryStrategy{resolver: resolver, fetcher: fetcher}
}

func (s *libraryStrategy) Name() string { return "library" }

func (s *libraryStrategy) Attempt(ctx context.Context, ref domain.PostReference, rawInput string) (*domain.Acquisition, error) {
	// The profile is scoped to this call by construction; nothing global is
	// swapped or restored.
	profile := instagram.DefaultProfile()

	result, err := s.resolver.Resolve(ctx, rawInput, profile)
	if err != nil {
		classified := domain.Classify(err)
		if !errors.Is(classified, domain.ErrUnauthorized) {
			return nil, classified
		}
		// Authorization failures sometimes clear with the canonical URL form.
		result, err = s.resolver.Resolve(ctx, ref.CanonicalReelURL(), profile)
		if err != nil {
			return nil, domain.Classify(err)
		}
	}

	return materialize(ctx, s.fetcher, ref, result)
}

// materialize downloads the first candidate URL and assembles the result.
// The first entry is treated as best quality; the upstream orders candidates
// and provides no comparable quality metadata.
func materialize(ctx context.Context, fetcher Fetcher, ref domain.PostReference, result *instagram.ResolveResult) (*domain.Acquisition, error) {
	if result == nil || len(result.URLList) == 0 {
		return nil, fmt.Errorf("%w: resolver returned no candidate URLs", domain.ErrNoVideoFound)
	}

	video, err := fetcher.Fetch(ctx, result.URLList[0])
	if err != nil {
		return nil, domain.Classify(err)
	}

	metadata := domain.AssetMetadata{
		Shortcode: ref.Shortcode,
		Title:     reelTitle(ref.Shortcode),
	}
	if info := result.PostInfo; info != nil {
		metadata.OwnerUsername = info.OwnerUsername
		metadata.OwnerFullName = info.OwnerFullname
		metadata.LikeCount = info.Likes
		metadata.IsVerified = info.IsVerified
	}

	return &domain.Acquisition{
		Video:    video,
		Metadata: metadata,
	}, nil
}
