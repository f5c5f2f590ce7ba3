package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/reelgrab/internal/config"
)

func testClient(serverURL string) *HTTPClient {
	return NewClient(config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "gemini-2.5-flash-lite",
		Timeout: 5 * time.Second,
	})
}

func captionResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]string{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateCaption(t *testing.T) {
	caption := "This place hides a secret...\n\nWould you visit?\n\n#viralreel #viral #reels #Travel"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash-lite:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing API key header")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Fatalf("unexpected request shape: %+v", req)
		}
		prompt := req.Contents[0].Parts[0].Text
		if !strings.Contains(prompt, `"an abandoned hospital"`) {
			t.Errorf("prompt does not embed the original text")
		}
		if req.GenerationConfig == nil || req.GenerationConfig.MaxOutputTokens != 500 {
			t.Errorf("generation config not set: %+v", req.GenerationConfig)
		}

		w.Write([]byte(captionResponse(caption)))
	}))
	defer server.Close()

	result, err := testClient(server.URL).GenerateCaption(context.Background(), "an abandoned hospital", StyleDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Caption != caption {
		t.Errorf("got caption %q", result.Caption)
	}
	wantTags := []string{"#viralreel", "#viral", "#reels", "#travel"}
	if !reflect.DeepEqual(result.Hashtags, wantTags) {
		t.Errorf("got hashtags %v, want %v", result.Hashtags, wantTags)
	}
	if result.WordCount == 0 {
		t.Errorf("word count not computed")
	}
	if result.Model != "gemini-2.5-flash-lite" {
		t.Errorf("got model %q", result.Model)
	}
}

func TestGenerateCaptionInputValidation(t *testing.T) {
	// No server: validation must reject before any network call.
	client := testClient("http://127.0.0.1:1")

	if _, err := client.GenerateCaption(context.Background(), "   ", StyleDefault); err == nil {
		t.Error("empty text accepted")
	}
	if _, err := client.GenerateCaption(context.Background(), strings.Repeat("a", 1001), StyleDefault); err == nil {
		t.Error("overlong text accepted")
	} else if !strings.Contains(err.Error(), "1000") {
		t.Errorf("overlong error %q does not name the limit", err)
	}
}

func TestGenerateCaptionAPIErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantSubstr string
	}{
		{
			name:       "invalid api key",
			statusCode: http.StatusBadRequest,
			body:       `{"error":{"code":400,"message":"API_KEY_INVALID: key not valid","status":"INVALID_ARGUMENT"}}`,
			wantSubstr: "API key",
		},
		{
			name:       "quota exceeded",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error":{"code":429,"message":"Quota exceeded for requests","status":"RESOURCE_EXHAUSTED"}}`,
			wantSubstr: "quota",
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error":{"code":429,"message":"rate limit hit","status":"RESOURCE_EXHAUSTED"}}`,
			wantSubstr: "rate limit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := testClient(server.URL).GenerateCaption(context.Background(), "some text", StyleDefault)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.wantSubstr)) {
				t.Errorf("error %q does not contain %q", err, tt.wantSubstr)
			}
		})
	}
}

func TestGenerateCaptionSafetyBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GenerateCaption(context.Background(), "some text", StyleDefault)
	if err == nil || !strings.Contains(err.Error(), "safety") {
		t.Errorf("got %v, want safety filter error", err)
	}
}

func TestGenerateCaptionEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GenerateCaption(context.Background(), "some text", StyleDefault)
	if err == nil || !strings.Contains(err.Error(), "no caption") {
		t.Errorf("got %v, want no-caption error", err)
	}
}

func TestGenerateCaptionStyleGuidance(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		prompt = req.Contents[0].Parts[0].Text
		if req.GenerationConfig.Temperature != 0.9 {
			t.Errorf("funny style should raise temperature, got %v", req.GenerationConfig.Temperature)
		}
		w.Write([]byte(captionResponse("ha ha #viralreel")))
	}))
	defer server.Close()

	if _, err := testClient(server.URL).GenerateCaption(context.Background(), "some text", StyleFunny); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "funny") {
		t.Errorf("prompt does not carry the style")
	}
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("Watch this! #Viral #fyp no tag here #Scary_Stuff")
	want := []string{"#viral", "#fyp", "#scary_stuff"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("got %v, want %v", tags, want)
	}
	if got := ExtractHashtags("no tags at all"); len(got) != 0 {
		t.Errorf("got %v from tagless text", got)
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"this is amazing and wonderful, I love it", "positive"},
		{"terrible awful experience, the worst", "negative"},
		{"a video about a building", "neutral"},
	}
	for _, tt := range tests {
		if got := analyzeSentiment(tt.text); got != tt.want {
			t.Errorf("analyzeSentiment(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
