package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resolverCall records one Resolve invocation.
type resolverCall struct {
	URL     string
	Profile instagram.HeaderProfile
}

// mockResolver is a scripted Resolver: each call consumes the next response.
type mockResolver struct {
	mu        sync.Mutex
	calls     []resolverCall
	responses []resolverResponse
}

type resolverResponse struct {
	result *instagram.ResolveResult
	err    error
}

func (m *mockResolver) Resolve(ctx context.Context, postURL string, profile instagram.HeaderProfile) (*instagram.ResolveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, resolverCall{URL: postURL, Profile: profile})
	if len(m.responses) == 0 {
		return nil, domain.ErrUnknown
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp.result, resp.err
}

func (m *mockResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockFetcher returns fixed bytes (or an error) and counts calls.
type mockFetcher struct {
	mu   sync.Mutex
	urls []string
	data []byte
	err  error
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.urls = append(m.urls, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.urls)
}

// mockStrategy is a canned Strategy with call-count instrumentation.
type mockStrategy struct {
	mu    sync.Mutex
	name  string
	acq   *domain.Acquisition
	err   error
	calls int
	// fn, when set, overrides acq/err.
	fn func(ctx context.Context, ref domain.PostReference, rawInput string) (*domain.Acquisition, error)
}

func (m *mockStrategy) Name() string { return m.name }

func (m *mockStrategy) Attempt(ctx context.Context, ref domain.PostReference, rawInput string) (*domain.Acquisition, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(ctx, ref, rawInput)
	}
	return m.acq, m.err
}

func (m *mockStrategy) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockScraper returns a fixed URL per page, erroring otherwise.
type mockScraper struct {
	mu       sync.Mutex
	pages    map[string]string
	pageErrs map[string]error
	calls    []string
}

func (m *mockScraper) ScrapeVideoURL(ctx context.Context, pageURL string, profile instagram.HeaderProfile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, pageURL)
	if err, ok := m.pageErrs[pageURL]; ok {
		return "", err
	}
	if url, ok := m.pages[pageURL]; ok {
		return url, nil
	}
	return "", domain.ErrUpstreamFormat
}

// mockGraphQL returns a canned PostMedia.
type mockGraphQL struct {
	media *instagram.PostMedia
	err   error
	calls int
}

func (m *mockGraphQL) QueryPost(ctx context.Context, ref domain.PostReference, profile instagram.HeaderProfile) (*instagram.PostMedia, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.media, nil
}
