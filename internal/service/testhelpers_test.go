package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/iconidentify/reelgrab/internal/config"
	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/gemini"
	"github.com/iconidentify/reelgrab/pkg/telegram"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvents(t *testing.T) *EventService {
	t.Helper()
	svc, err := NewEventService(config.EventsConfig{RingBufferSize: 32}, testLogger())
	if err != nil {
		t.Fatalf("event service: %v", err)
	}
	return svc
}

// tgCall records one Telegram API invocation.
type tgCall struct {
	Method    string
	ChatID    int64
	MessageID int64
	Text      string
	Video     []byte
	Caption   string
	ReplyTo   int64
	FileName  string
}

// mockTelegram records calls and assigns incrementing message IDs.
type mockTelegram struct {
	mu        sync.Mutex
	calls     []tgCall
	nextMsgID int64

	sendErr   error
	editErr   error
	deleteErr error
	videoErr  error
}

func (m *mockTelegram) SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, tgCall{
		Method:  "sendMessage",
		ChatID:  req.ChatID,
		Text:    req.Text,
		ReplyTo: req.ReplyToMessageID,
	})
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.nextMsgID++
	return &telegram.Message{MessageID: m.nextMsgID, Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func (m *mockTelegram) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, tgCall{Method: "editMessageText", ChatID: chatID, MessageID: messageID, Text: text})
	return m.editErr
}

func (m *mockTelegram) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, tgCall{Method: "deleteMessage", ChatID: chatID, MessageID: messageID})
	return m.deleteErr
}

func (m *mockTelegram) SendVideo(ctx context.Context, req telegram.SendVideoRequest) (*telegram.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, tgCall{
		Method:   "sendVideo",
		ChatID:   req.ChatID,
		Video:    req.Video,
		Caption:  req.Caption,
		ReplyTo:  req.ReplyToMessageID,
		FileName: req.FileName,
	})
	if m.videoErr != nil {
		return nil, m.videoErr
	}
	m.nextMsgID++
	return &telegram.Message{MessageID: m.nextMsgID, Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func (m *mockTelegram) GetMe(ctx context.Context) (*telegram.User, error) {
	return &telegram.User{ID: 1, IsBot: true, Username: "test_bot"}, nil
}

func (m *mockTelegram) callsByMethod(method string) []tgCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []tgCall
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// mockAcquirer returns a canned acquisition or error.
type mockAcquirer struct {
	acq   *domain.Acquisition
	err   error
	calls int
}

func (m *mockAcquirer) Acquire(ctx context.Context, rawURL string) (*domain.Acquisition, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.acq, nil
}

// mockGemini returns a canned caption result.
type mockGemini struct {
	result *gemini.CaptionResult
	err    error
	calls  int
}

func (m *mockGemini) GenerateCaption(ctx context.Context, originalText string, style gemini.Style) (*gemini.CaptionResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return nil, errors.New("no result configured")
}
