package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/internal/metrics"
	"github.com/iconidentify/reelgrab/pkg/gemini"
	"github.com/iconidentify/reelgrab/pkg/telegram"
)

// CaptionService handles the /caption command: generate an optimized reel
// caption from user text and deliver it back to the chat.
type CaptionService struct {
	gemini gemini.Client
	tg     telegram.Client
	events domain.EventEmitter
	logger *slog.Logger
}

// NewCaptionService creates the caption service.
func NewCaptionService(geminiClient gemini.Client, tg telegram.Client, events domain.EventEmitter, logger *slog.Logger) *CaptionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaptionService{
		gemini: geminiClient,
		tg:     tg,
		events: events,
		logger: logger,
	}
}

// GenerateForChat generates a caption for text and posts the result to the
// chat, mirroring the status-message flow of reel delivery: a "generating"
// placeholder that is deleted on success or edited in place on failure.
func (s *CaptionService) GenerateForChat(ctx context.Context, chatID, messageID int64, text string) error {
	if text == "" {
		_, err := s.tg.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID:           chatID,
			Text:             "❌ Please provide text after /caption command.\nExample: /caption Amazing sunset at the beach",
			ReplyToMessageID: messageID,
		})
		return err
	}

	statusMsg, err := s.tg.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:           chatID,
		Text:             "✨ Generating optimized caption... Please wait!",
		ReplyToMessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("send status message: %w", err)
	}

	result, genErr := s.gemini.GenerateCaption(ctx, text, gemini.StyleDefault)
	if genErr != nil {
		metrics.CaptionRequestsTotal.WithLabelValues("failure").Inc()
		s.events.EmitError(domain.EventCategoryCaption, "caption_service",
			"caption generation failed",
			domain.EventMetadata{"chat_id": chatID, "error": genErr.Error()})

		if err := s.tg.EditMessageText(ctx, chatID, statusMsg.MessageID,
			fmt.Sprintf("❌ Failed to generate caption: %v", genErr)); err != nil {
			s.logger.Warn("failed to edit status message", "chat_id", chatID, "error", err)
		}
		return genErr
	}

	if err := s.tg.DeleteMessage(ctx, chatID, statusMsg.MessageID); err != nil {
		s.logger.Warn("failed to delete status message", "chat_id", chatID, "error", err)
	}

	if _, err := s.tg.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:           chatID,
		Text:             fmt.Sprintf("✨ **Optimized Caption:**\n\n%s", result.Caption),
		ParseMode:        "Markdown",
		ReplyToMessageID: messageID,
	}); err != nil {
		return fmt.Errorf("send caption: %w", err)
	}

	metrics.CaptionRequestsTotal.WithLabelValues("success").Inc()
	s.events.EmitSuccess(domain.EventCategoryCaption, "caption_service",
		"caption generated",
		domain.EventMetadata{
			"chat_id":   chatID,
			"hashtags":  len(result.Hashtags),
			"words":     result.WordCount,
			"sentiment": result.Sentiment,
			"model":     result.Model,
		})

	return nil
}
