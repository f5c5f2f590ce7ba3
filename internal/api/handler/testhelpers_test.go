package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/reelgrab/internal/config"
	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/internal/repository"
	"github.com/iconidentify/reelgrab/internal/service"
	"github.com/iconidentify/reelgrab/pkg/gemini"
	"github.com/iconidentify/reelgrab/pkg/telegram"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvents(t *testing.T) *service.EventService {
	t.Helper()
	svc, err := service.NewEventService(config.EventsConfig{RingBufferSize: 32}, testLogger())
	if err != nil {
		t.Fatalf("event service: %v", err)
	}
	return svc
}

// mockTelegram is a recording telegram.Client.
type mockTelegram struct {
	mu        sync.Mutex
	sent      []telegram.SendMessageRequest
	videos    []telegram.SendVideoRequest
	nextMsgID int64
}

func (m *mockTelegram) SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	m.nextMsgID++
	return &telegram.Message{MessageID: m.nextMsgID, Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func (m *mockTelegram) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	return nil
}

func (m *mockTelegram) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return nil
}

func (m *mockTelegram) SendVideo(ctx context.Context, req telegram.SendVideoRequest) (*telegram.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos = append(m.videos, req)
	m.nextMsgID++
	return &telegram.Message{MessageID: m.nextMsgID, Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func (m *mockTelegram) GetMe(ctx context.Context) (*telegram.User, error) {
	return &telegram.User{ID: 1, IsBot: true, Username: "test_bot"}, nil
}

func (m *mockTelegram) sentMessages() []telegram.SendMessageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]telegram.SendMessageRequest(nil), m.sent...)
}

// mockGemini returns a canned caption.
type mockGemini struct {
	result *gemini.CaptionResult
	err    error
}

func (m *mockGemini) GenerateCaption(ctx context.Context, originalText string, style gemini.Style) (*gemini.CaptionResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockAcquirer is never expected to run in webhook tests; enqueueing stops
// at the repository.
type mockAcquirer struct{}

func (m *mockAcquirer) Acquire(ctx context.Context, rawURL string) (*domain.Acquisition, error) {
	return &domain.Acquisition{Video: []byte("v"), Strategy: "library"}, nil
}

// webhookFixture builds a webhook handler backed by real services over
// mock clients.
type webhookFixture struct {
	handler *WebhookHandler
	tg      *mockTelegram
	repo    *repository.InMemoryJobRepository
}

func newWebhookFixture(t *testing.T, secret string) *webhookFixture {
	t.Helper()

	tg := &mockTelegram{}
	repo := repository.NewInMemoryJobRepository()
	events := testEvents(t)

	acquireSvc := service.NewAcquireService(
		repo, &mockAcquirer{}, tg, events,
		config.WorkerConfig{JobTimeout: 30 * time.Second},
		config.DownloadConfig{MaxFileSizeMB: 50},
		testLogger(),
	)
	captionSvc := service.NewCaptionService(
		&mockGemini{result: &gemini.CaptionResult{Caption: "caption #viralreel"}},
		tg, events, testLogger(),
	)

	return &webhookFixture{
		handler: NewWebhookHandler(acquireSvc, captionSvc, tg, secret, testLogger()),
		tg:      tg,
		repo:    repo,
	}
}
