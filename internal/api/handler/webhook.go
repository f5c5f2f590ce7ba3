package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iconidentify/reelgrab/internal/service"
	"github.com/iconidentify/reelgrab/pkg/instagram"
	"github.com/iconidentify/reelgrab/pkg/telegram"
)

const welcomeMessage = `🎬 Welcome to Reels Downloader Bot!

I can help you with:
📥 Download Instagram Reels - Just send me a reels link
✨ Generate AI captions - Use /caption followed by your text

Commands:
/help - Show this help message
/caption <your text> - Generate optimized caption with hashtags

Just send me an Instagram reels link to download it!`

const helpMessage = `🤖 Reels Downloader Bot Help

📥 **Download Reels:**
Send me any Instagram reels link and I'll download it for you.
Example: https://www.instagram.com/reel/ABC123/

✨ **Generate Caption:**
Use: /caption <your text>
Example: /caption Amazing sunset at the beach

The bot will generate an optimized caption with relevant hashtags for maximum engagement.`

const unknownMessage = `❓ I didn't understand that command.

Send me:
📥 Instagram reels link to download
✨ /caption <text> to generate optimized caption
🆘 /help for more information`

// WebhookHandler receives Telegram webhook updates and routes messages to
// the acquisition and caption flows.
type WebhookHandler struct {
	acquireSvc *service.AcquireService
	captionSvc *service.CaptionService
	tg         telegram.Client
	secret     string
	logger     *slog.Logger

	// captionTimeout bounds background caption generation started from a
	// webhook delivery.
	captionTimeout time.Duration
}

// NewWebhookHandler creates a new webhook handler. secret is the value set
// with setWebhook's secret_token; empty disables verification.
func NewWebhookHandler(
	acquireSvc *service.AcquireService,
	captionSvc *service.CaptionService,
	tg telegram.Client,
	secret string,
	logger *slog.Logger,
) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		acquireSvc:     acquireSvc,
		captionSvc:     captionSvc,
		tg:             tg,
		secret:         secret,
		logger:         logger,
		captionTimeout: time.Minute,
	}
}

// Receive handles POST /webhook. Telegram expects a fast 200; long-running
// work is queued or backgrounded, never run inline.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		provided := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			h.logger.Warn("invalid webhook secret", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("malformed webhook payload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Non-message updates (edits, channel posts) are acknowledged and
	// dropped so Telegram stops redelivering them.
	if update.Message == nil {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	h.logger.Info("webhook message received", "chat_id", chatID, "update_id", update.UpdateID)

	switch {
	case strings.HasPrefix(text, "/start"):
		h.reply(r.Context(), chatID, welcomeMessage, "")
	case strings.HasPrefix(text, "/help"):
		h.reply(r.Context(), chatID, helpMessage, "Markdown")
	case instagram.ContainsPostURL(text):
		reelURL := instagram.FindPostURL(text)
		if _, err := h.acquireSvc.EnqueueReel(r.Context(), chatID, msg.MessageID, reelURL); err != nil {
			h.logger.Error("failed to enqueue reel", "chat_id", chatID, "error", err)
			h.reply(r.Context(), chatID, "❌ Sorry, something went wrong while downloading the reel.", "")
		}
	case strings.HasPrefix(text, "/caption"):
		captionText := strings.TrimSpace(strings.TrimPrefix(text, "/caption"))
		// Caption generation can take tens of seconds; run it off the
		// webhook request so Telegram gets its 200 immediately.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), h.captionTimeout)
			defer cancel()
			if err := h.captionSvc.GenerateForChat(ctx, chatID, msg.MessageID, captionText); err != nil {
				h.logger.Error("caption generation failed", "chat_id", chatID, "error", err)
			}
		}()
	default:
		h.reply(r.Context(), chatID, unknownMessage, "")
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *WebhookHandler) reply(ctx context.Context, chatID int64, text, parseMode string) {
	if _, err := h.tg.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	}); err != nil {
		h.logger.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}
