// Package gemini interfaces with the Gemini API for reel caption generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/iconidentify/reelgrab/internal/config"
)

// Style selects the tone of a generated caption.
type Style string

const (
	StyleDefault      Style = ""
	StyleCasual       Style = "casual"
	StyleProfessional Style = "professional"
	StyleFunny        Style = "funny"
	StyleMotivational Style = "motivational"
	StyleTrendy       Style = "trendy"
)

const maxInputLength = 1000

// CaptionResult is a generated caption plus derived metadata.
type CaptionResult struct {
	Caption   string
	Hashtags  []string
	WordCount int
	Sentiment string
	Model     string
}

// Client generates Instagram captions from source text.
type Client interface {
	// GenerateCaption rewrites originalText into an engagement-optimized
	// reel caption in the given style.
	GenerateCaption(ctx context.Context, originalText string, style Style) (*CaptionResult, error)
}

// HTTPClient implements Client using HTTP requests to the Gemini API.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new Gemini API client.
func NewClient(cfg config.GeminiConfig) *HTTPClient {
	return &HTTPClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateRequest is the request body for the generateContent API.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateResponse is the response from the generateContent API.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GenerateCaption rewrites originalText into an engagement-optimized reel
// caption. Input is validated before any network call: empty text and text
// over 1000 characters are rejected locally.
func (c *HTTPClient) GenerateCaption(ctx context.Context, originalText string, style Style) (*CaptionResult, error) {
	originalText = strings.TrimSpace(originalText)
	if originalText == "" {
		return nil, fmt.Errorf("empty text provided")
	}
	if len(originalText) > maxInputLength {
		return nil, fmt.Errorf("text too long - maximum %d characters", maxInputLength)
	}

	temperature := 0.8
	if style == StyleFunny {
		temperature = 0.9
	}

	genReq := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: buildCaptionPrompt(originalText, style)}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     temperature,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 500,
		},
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if genResp.Error != nil {
		return nil, classifyAPIError(resp.StatusCode, genResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyAPIError(resp.StatusCode, string(respBody))
	}
	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("content filtered by safety settings - try different text")
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("no caption generated")
	}
	if genResp.Candidates[0].FinishReason == "SAFETY" {
		return nil, fmt.Errorf("content filtered by safety settings - try different text")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	caption := strings.TrimSpace(sb.String())
	if caption == "" {
		return nil, fmt.Errorf("no caption generated")
	}

	return &CaptionResult{
		Caption:   caption,
		Hashtags:  ExtractHashtags(caption),
		WordCount: len(strings.Fields(caption)),
		Sentiment: analyzeSentiment(caption),
		Model:     c.model,
	}, nil
}

// classifyAPIError maps API failures onto the user-facing error taxonomy.
func classifyAPIError(statusCode int, message string) error {
	upper := strings.ToUpper(message)
	switch {
	case strings.Contains(upper, "API_KEY") || statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("API key not configured or invalid")
	case strings.Contains(upper, "QUOTA"):
		return fmt.Errorf("API quota exceeded - please try again later")
	case strings.Contains(upper, "RATE") || statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("rate limit exceeded - please wait a moment")
	case strings.Contains(upper, "SAFETY"):
		return fmt.Errorf("content filtered by safety settings - try different text")
	default:
		return fmt.Errorf("caption generation failed (status %d): %s", statusCode, message)
	}
}

var styleGuidance = map[Style]string{
	StyleCasual:       "Write it like sharing the find with friends: everyday language, conversational, relatable.",
	StyleProfessional: "Write with the authority of documentary narration: polished, informative, confident.",
	StyleFunny:        "Lean on wit and wordplay that makes people laugh and share.",
	StyleMotivational: "Inspire the reader: powerful phrasing, a quotable line, a push to act.",
	StyleTrendy:       "Use current internet slang and viral phrasing; stay on top of trends and memes.",
}

func buildCaptionPrompt(originalText string, style Style) string {
	var sb strings.Builder
	sb.WriteString("You are an expert Instagram Reels content creator who writes captions that go viral.\n\n")
	sb.WriteString(fmt.Sprintf("Original text: %q\n\n", originalText))

	if guidance, ok := styleGuidance[style]; ok {
		sb.WriteString(fmt.Sprintf("Style: %s\nStyle guidance: %s\n\n", style, guidance))
	}

	sb.WriteString("Requirements:\n")
	sb.WriteString("1. START with a hook line that immediately grabs attention\n")
	sb.WriteString("2. Build curiosity and suspense through the caption body\n")
	sb.WriteString("3. Add strategic emojis without overusing them\n")
	sb.WriteString("4. END with an engaging question that encourages comments\n")
	sb.WriteString("5. Keep the main caption under 120 words for maximum impact\n")
	sb.WriteString("6. Use line breaks for dramatic effect\n\n")
	sb.WriteString("MANDATORY HASHTAGS (always include these first):\n#viralreel #viral #reels\n\n")
	sb.WriteString("Then add 10-15 additional relevant hashtags covering the content itself, ")
	sb.WriteString("viral reach (#fyp #foryou #trending #explore), and engagement.\n\n")
	sb.WriteString("Format:\n[Hook opening line]\n\n[2-3 lines building on the content]\n\n[Engaging question]\n\n[All hashtags, mandatory ones first]")

	return sb.String()
}

var hashtagRe = regexp.MustCompile(`#[a-zA-Z0-9_]+`)

// ExtractHashtags returns all hashtags in text, lowercased.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, tag := range matches {
		tags = append(tags, strings.ToLower(tag))
	}
	return tags
}

var positiveWords = []string{
	"amazing", "awesome", "great", "love", "beautiful", "perfect", "incredible",
	"fantastic", "wonderful", "excited", "happy", "joy", "blessed", "grateful",
	"inspiring", "motivating", "success", "achievement", "celebration", "win",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "horrible", "worst", "disappointed",
	"frustrated", "angry", "sad", "difficult", "problem", "issue", "struggle",
}

// analyzeSentiment does keyword-count sentiment scoring. Crude, but the
// result only feeds event metadata.
func analyzeSentiment(text string) string {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return "positive"
	case negative > positive:
		return "negative"
	default:
		return "neutral"
	}
}
