package engine

import (
	"context"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

// localHeaderStrategy re-invokes the resolver with the full interactive
// browser header set (Sec-Fetch-*, Cache-Control, the richer Accept line).
// Some upstream fingerprinting rejects minimal clients but accepts what
// looks like a real page navigation.
type localHeaderStrategy struct {
	resolver Resolver
	fetcher  Fetcher
}

// NewLocalHeaderStrategy creates the second-priority strategy.
func NewLocalHeaderStrategy(resolver Resolver, fetcher Fetcher) Strategy {
	return &localHeaderStrategy{resolver: resolver, fetcher: fetcher}
}

func (s *localHeaderStrategy) Name() string { return "local_headers" }

func (s *localHeaderStrategy) Attempt(ctx context.Context, ref domain.PostReference, rawInput string) (*domain.Acquisition, error) {
	result, err := s.resolver.Resolve(ctx, rawInput, instagram.BrowserProfile())
	if err != nil {
		return nil, domain.Classify(err)
	}
	return materialize(ctx, s.fetcher, ref, result)
}
