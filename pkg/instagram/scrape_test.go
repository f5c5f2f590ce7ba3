package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFindVideoURL_PatternOrder(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		wantURL     string
		wantPattern string
		wantOK      bool
	}{
		{
			name:        "video_url field",
			html:        `{"video_url":"https://scontent.cdninstagram.com/v/clip.mp4?tok=1"}`,
			wantURL:     "https://scontent.cdninstagram.com/v/clip.mp4?tok=1",
			wantPattern: "video_url",
			wantOK:      true,
		},
		{
			name:        "escaped ampersands",
			html:        `{"video_url":"https://scontent.cdninstagram.com/clip.mp4?a=1&b=2"}`,
			wantURL:     "https://scontent.cdninstagram.com/clip.mp4?a=1&b=2",
			wantPattern: "video_url",
			wantOK:      true,
		},
		{
			name:        "backslash escapes",
			html:        `{"video_url":"https:\/\/scontent.cdninstagram.com\/clip.mp4"}`,
			wantURL:     "https://scontent.cdninstagram.com/clip.mp4",
			wantPattern: "video_url",
			wantOK:      true,
		},
		{
			name:        "video_versions array",
			html:        `{"video_versions": [ {"width": 720, "height": 1280, "url": "https://cdn.fbcdn.net/v.mp4"}]}`,
			wantURL:     "https://cdn.fbcdn.net/v.mp4",
			wantPattern: "video_versions",
			wantOK:      true,
		},
		{
			name:        "playback_url field",
			html:        `{"playback_url":"https://video.fbcdn.net/play.mp4"}`,
			wantURL:     "https://video.fbcdn.net/play.mp4",
			wantPattern: "playback_url",
			wantOK:      true,
		},
		{
			name:        "bare mp4 on known CDN",
			html:        `<video src="https://scontent.cdninstagram.com/o1/v/abc.mp4?efg=xyz">`,
			wantURL:     "https://scontent.cdninstagram.com/o1/v/abc.mp4?efg=xyz",
			wantPattern: "direct_mp4",
			wantOK:      true,
		},
		{
			name:   "bare mp4 on unknown host rejected",
			html:   `<video src="https://evil.example/abc.mp4">`,
			wantOK: false,
		},
		{
			name:   "no video anywhere",
			html:   `<html><body>just a photo post</body></html>`,
			wantOK: false,
		},
		{
			name:   "video_url without mp4 rejected",
			html:   `{"video_url":"https://cdn.example/stream.m3u8"}`,
			wantOK: false,
		},
	}

	c := NewClient(time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, pattern, ok := c.FindVideoURL(tt.html)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (url=%q)", ok, tt.wantOK, url)
			}
			if !ok {
				return
			}
			if url != tt.wantURL {
				t.Errorf("url = %q, want %q", url, tt.wantURL)
			}
			if pattern != tt.wantPattern {
				t.Errorf("pattern = %q, want %q", pattern, tt.wantPattern)
			}
		})
	}
}

func TestFindVideoURL_FirstPatternWins(t *testing.T) {
	html := `{"playback_url":"https://cdn.fbcdn.net/second.mp4","video_url":"https://cdn.fbcdn.net/first.mp4"}`

	c := NewClient(time.Second)
	url, pattern, ok := c.FindVideoURL(html)
	if !ok {
		t.Fatal("expected a match")
	}
	if pattern != "video_url" || url != "https://cdn.fbcdn.net/first.mp4" {
		t.Errorf("got %q via %q, want video_url pattern first", url, pattern)
	}
}

func TestUnescapeVideoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`https://a/b.mp4?x=1&y=2`, "https://a/b.mp4?x=1&y=2"},
		{`https:\/\/a\/b.mp4`, "https://a/b.mp4"},
		{"https://plain/b.mp4", "https://plain/b.mp4"},
	}
	for _, tt := range tests {
		if got := UnescapeVideoURL(tt.in); got != tt.want {
			t.Errorf("UnescapeVideoURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScrapeVideoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>{"video_url":"https://scontent.cdninstagram.com/clip.mp4"}</html>`))
	}))
	defer server.Close()

	c := NewClient(time.Second)
	url, err := c.ScrapeVideoURL(context.Background(), server.URL, DefaultProfile())
	if err != nil {
		t.Fatalf("ScrapeVideoURL failed: %v", err)
	}
	if url != "https://scontent.cdninstagram.com/clip.mp4" {
		t.Errorf("url = %q", url)
	}
}

func TestScrapeVideoURL_NotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(time.Second)
	if _, err := c.ScrapeVideoURL(context.Background(), server.URL, DefaultProfile()); err == nil {
		t.Error("expected error for 404 page")
	}
}

func TestScrapeVideoURL_NoVideoInPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>nothing here</html>"))
	}))
	defer server.Close()

	c := NewClient(time.Second)
	if _, err := c.ScrapeVideoURL(context.Background(), server.URL, DefaultProfile()); err == nil {
		t.Error("expected error when no pattern matches")
	}
}
