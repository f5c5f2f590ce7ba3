// Package telegram is a minimal Telegram Bot API client covering the calls
// the reel delivery flow needs: send, edit, delete, and video upload.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iconidentify/reelgrab/internal/config"
)

// Client is the Bot API surface the services depend on.
type Client interface {
	// SendMessage posts a text message and returns the created message.
	SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error)

	// EditMessageText replaces the text of a previously sent message.
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error

	// DeleteMessage removes a message the bot sent.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// SendVideo uploads video bytes as a playable video message.
	SendVideo(ctx context.Context, req SendVideoRequest) (*Message, error)

	// GetMe verifies the bot token against the API.
	GetMe(ctx context.Context) (*User, error)
}

// HTTPClient implements Client against the Bot API over HTTPS.
type HTTPClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Bot API client.
func NewClient(cfg config.TelegramConfig) *HTTPClient {
	return &HTTPClient{
		token:   cfg.BotToken,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// apiResponse is the Bot API envelope common to every method.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

func (c *HTTPClient) methodURL(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// call posts form values to a Bot API method and decodes the envelope.
func (c *HTTPClient) call(ctx context.Context, method string, form url.Values) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.methodURL(method), bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(method, resp)
}

func decodeResponse(method string, resp *http.Response) (json.RawMessage, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("%s failed (code %d): %s", method, apiResp.ErrorCode, apiResp.Description)
	}

	return apiResp.Result, nil
}

// SendMessage posts a text message and returns the created message.
func (c *HTTPClient) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(req.ChatID, 10))
	form.Set("text", req.Text)
	if req.ParseMode != "" {
		form.Set("parse_mode", req.ParseMode)
	}
	if req.ReplyToMessageID != 0 {
		form.Set("reply_to_message_id", strconv.FormatInt(req.ReplyToMessageID, 10))
	}
	if req.DisablePreview {
		form.Set("disable_web_page_preview", "true")
	}

	result, err := c.call(ctx, "sendMessage", form)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal sent message: %w", err)
	}
	return &msg, nil
}

// EditMessageText replaces the text of a previously sent message.
func (c *HTTPClient) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("message_id", strconv.FormatInt(messageID, 10))
	form.Set("text", text)

	_, err := c.call(ctx, "editMessageText", form)
	return err
}

// DeleteMessage removes a message the bot sent.
func (c *HTTPClient) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("message_id", strconv.FormatInt(messageID, 10))

	_, err := c.call(ctx, "deleteMessage", form)
	return err
}

// SendVideo uploads video bytes as a playable video message via multipart
// form data.
func (c *HTTPClient) SendVideo(ctx context.Context, req SendVideoRequest) (*Message, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"chat_id": strconv.FormatInt(req.ChatID, 10),
	}
	if req.Caption != "" {
		fields["caption"] = req.Caption
	}
	if req.ParseMode != "" {
		fields["parse_mode"] = req.ParseMode
	}
	if req.ReplyToMessageID != 0 {
		fields["reply_to_message_id"] = strconv.FormatInt(req.ReplyToMessageID, 10)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "video.mp4"
	}
	part, err := writer.CreateFormFile("video", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Video); err != nil {
		return nil, fmt.Errorf("write video bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.methodURL("sendVideo"), &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	result, err := decodeResponse("sendVideo", resp)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal sent message: %w", err)
	}
	return &msg, nil
}

// GetMe verifies the bot token against the API.
func (c *HTTPClient) GetMe(ctx context.Context) (*User, error) {
	result, err := c.call(ctx, "getMe", url.Values{})
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(result, &user); err != nil {
		return nil, fmt.Errorf("unmarshal bot user: %w", err)
	}
	return &user, nil
}
