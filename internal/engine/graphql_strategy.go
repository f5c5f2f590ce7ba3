package engine

import (
	"context"
	"fmt"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

// graphqlStrategy drives the web client's GraphQL document query directly:
// harvest a CSRF token from the home page, then query the shortcode media
// document. Handles sidecar posts by taking their first video child.
type graphqlStrategy struct {
	client  GraphQLClient
	fetcher Fetcher
}

// NewGraphQLStrategy creates the third-priority strategy.
func NewGraphQLStrategy(client GraphQLClient, fetcher Fetcher) Strategy {
	return &graphqlStrategy{client: client, fetcher: fetcher}
}

func (s *graphqlStrategy) Name() string { return "graphql" }

func (s *graphqlStrategy) Attempt(ctx context.Context, ref domain.PostReference, rawInput string) (*domain.Acquisition, error) {
	media, err := s.client.QueryPost(ctx, ref, instagram.DefaultProfile())
	if err != nil {
		return nil, domain.Classify(err)
	}

	videoURL := media.FirstVideoURL()
	if videoURL == "" {
		return nil, fmt.Errorf("%w: post %s has no video media", domain.ErrNoVideoFound, ref.Shortcode)
	}

	video, err := s.fetcher.Fetch(ctx, videoURL)
	if err != nil {
		return nil, domain.Classify(err)
	}

	return &domain.Acquisition{
		Video: video,
		Metadata: domain.AssetMetadata{
			Shortcode:     ref.Shortcode,
			Title:         reelTitle(ref.Shortcode),
			OwnerUsername: media.Owner.Username,
			OwnerFullName: media.Owner.FullName,
			LikeCount:     media.Likes,
			IsVerified:    media.Owner.IsVerified,
		},
	}, nil
}
