package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iconidentify/reelgrab/internal/domain"
)

// graphQLDocID is the fixed document id for the shortcode media query.
// Harvested from the web client; changes when Instagram rotates documents.
const graphQLDocID = "9510064595728286"

// Client fetches post data from instagram.com without authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	patterns   []PagePattern
}

// NewClient creates a new Instagram client.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  "https://www.instagram.com",
		patterns: DefaultPagePatterns(),
	}
}

// SetBaseURL overrides the instagram.com origin. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// SetPagePatterns replaces the ordered scrape pattern list.
func (c *Client) SetPagePatterns(patterns []PagePattern) {
	c.patterns = patterns
}

// Owner describes the account that published a post.
type Owner struct {
	Username   string
	FullName   string
	IsVerified bool
}

// ChildMedia is one item of a sidecar (carousel) post.
type ChildMedia struct {
	IsVideo  bool
	VideoURL string
}

// PostMedia is the parsed result of the GraphQL shortcode query.
type PostMedia struct {
	Shortcode string
	Typename  string
	IsVideo   bool
	VideoURL  string
	Owner     Owner
	Likes     int
	Children  []ChildMedia
}

// FirstVideoURL returns the post's direct video URL, or for sidecar posts the
// first child flagged as video. Empty when the post contains no video.
func (m *PostMedia) FirstVideoURL() string {
	if m.IsVideo && m.VideoURL != "" {
		return m.VideoURL
	}
	for _, child := range m.Children {
		if child.IsVideo && child.VideoURL != "" {
			return child.VideoURL
		}
	}
	return ""
}

// FetchCSRFToken GETs the home page and harvests the csrftoken cookie.
// Returns the token value and the cookie pair for replay on the next request.
func (c *Client) FetchCSRFToken(ctx context.Context, profile HeaderProfile) (token, cookie string, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/", nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	profile.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, ck := range resp.Cookies() {
		if ck.Name == "csrftoken" && ck.Value != "" {
			return ck.Value, "csrftoken=" + ck.Value, nil
		}
	}

	return "", "", fmt.Errorf("%w: csrf token not found in response headers", domain.ErrUpstreamFormat)
}

// graphQLResponse mirrors the subset of the shortcode media query we consume.
type graphQLResponse struct {
	Data struct {
		ShortcodeMedia *struct {
			Typename  string `json:"__typename"`
			Shortcode string `json:"shortcode"`
			IsVideo   bool   `json:"is_video"`
			VideoURL  string `json:"video_url"`
			Owner     struct {
				Username   string `json:"username"`
				FullName   string `json:"full_name"`
				IsVerified bool   `json:"is_verified"`
			} `json:"owner"`
			EdgeMediaPreviewLike struct {
				Count int `json:"count"`
			} `json:"edge_media_preview_like"`
			EdgeSidecarToChildren struct {
				Edges []struct {
					Node struct {
						IsVideo  bool   `json:"is_video"`
						VideoURL string `json:"video_url"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_sidecar_to_children"`
		} `json:"xdt_shortcode_media"`
	} `json:"data"`
}

// QueryPost runs the two-call GraphQL flow: harvest a CSRF token from the
// home page, then POST the shortcode media query with it.
func (c *Client) QueryPost(ctx context.Context, ref domain.PostReference, profile HeaderProfile) (*PostMedia, error) {
	token, cookie, err := c.FetchCSRFToken(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}

	variables, err := json.Marshal(map[string]interface{}{
		"shortcode":               ref.Shortcode,
		"fetch_tagged_user_count": nil,
		"hoisted_comment_id":      nil,
		"hoisted_reply_id":        nil,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal variables: %w", err)
	}

	form := url.Values{}
	form.Set("variables", string(variables))
	form.Set("doc_id", graphQLDocID)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/graphql/query", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	profile.Apply(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRFToken", token)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", ref.CanonicalPostURL())
	req.Header.Set("Cookie", cookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graphql request failed with status code %d", resp.StatusCode)
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("%w: decode graphql response: %s", domain.ErrUpstreamFormat, err)
	}

	sm := gqlResp.Data.ShortcodeMedia
	if sm == nil {
		return nil, fmt.Errorf("%w: no media returned for shortcode %s", domain.ErrNotFound, ref.Shortcode)
	}

	media := &PostMedia{
		Shortcode: ref.Shortcode,
		Typename:  sm.Typename,
		IsVideo:   sm.IsVideo,
		VideoURL:  sm.VideoURL,
		Owner: Owner{
			Username:   sm.Owner.Username,
			FullName:   sm.Owner.FullName,
			IsVerified: sm.Owner.IsVerified,
		},
		Likes: sm.EdgeMediaPreviewLike.Count,
	}
	for _, edge := range sm.EdgeSidecarToChildren.Edges {
		media.Children = append(media.Children, ChildMedia{
			IsVideo:  edge.Node.IsVideo,
			VideoURL: edge.Node.VideoURL,
		})
	}

	return media, nil
}

// PostInfo carries best-effort metadata observed during resolution.
type PostInfo struct {
	OwnerUsername string
	OwnerFullname string
	IsVerified    bool
	Likes         int
}

// ResolveResult is the candidate URL list produced by Resolve, ordered
// best-first as reported by the upstream.
type ResolveResult struct {
	URLList  []string
	PostInfo *PostInfo
}

// Resolve maps a post URL to its candidate video URL list. This is the
// black-box resolution routine the engine's first two strategies delegate to.
func (c *Client) Resolve(ctx context.Context, postURL string, profile HeaderProfile) (*ResolveResult, error) {
	shortcode := ExtractShortcode(postURL)
	if shortcode == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoShortcode, postURL)
	}

	media, err := c.QueryPost(ctx, domain.PostReference{Shortcode: shortcode}, profile)
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{
		PostInfo: &PostInfo{
			OwnerUsername: media.Owner.Username,
			OwnerFullname: media.Owner.FullName,
			IsVerified:    media.Owner.IsVerified,
			Likes:         media.Likes,
		},
	}
	if media.IsVideo && media.VideoURL != "" {
		result.URLList = append(result.URLList, media.VideoURL)
	}
	for _, child := range media.Children {
		if child.IsVideo && child.VideoURL != "" {
			result.URLList = append(result.URLList, child.VideoURL)
		}
	}

	return result, nil
}
