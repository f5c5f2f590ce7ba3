// Package service holds the application services: job lifecycle, caption
// generation, and the activity log.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/reelgrab/internal/config"
	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/internal/metrics"
	"github.com/iconidentify/reelgrab/internal/repository"
	"github.com/iconidentify/reelgrab/pkg/instagram"
	"github.com/iconidentify/reelgrab/pkg/telegram"
)

// Acquirer is the engine surface the service depends on.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string) (*domain.Acquisition, error)
}

// AcquireService owns the reel acquisition job lifecycle: enqueue on
// webhook, process on a worker, deliver or report over Telegram.
type AcquireService struct {
	repo    repository.JobRepository
	engine  Acquirer
	tg      telegram.Client
	events  domain.EventEmitter
	logger  *slog.Logger
	jobCfg  config.WorkerConfig
	sizeCfg config.DownloadConfig
}

// NewAcquireService creates the acquisition service.
func NewAcquireService(
	repo repository.JobRepository,
	engine Acquirer,
	tg telegram.Client,
	events domain.EventEmitter,
	jobCfg config.WorkerConfig,
	sizeCfg config.DownloadConfig,
	logger *slog.Logger,
) *AcquireService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcquireService{
		repo:    repo,
		engine:  engine,
		tg:      tg,
		events:  events,
		logger:  logger,
		jobCfg:  jobCfg,
		sizeCfg: sizeCfg,
	}
}

// EnqueueReel creates an acquisition job for a reel link sent to a chat.
// A "downloading" status message is posted immediately; the worker edits or
// deletes it once the job settles. Duplicate requests for a shortcode
// already in flight in the same chat are suppressed.
func (s *AcquireService) EnqueueReel(ctx context.Context, chatID, messageID int64, rawURL string) (*domain.Job, error) {
	shortcode := instagram.ExtractShortcode(rawURL)
	if shortcode == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoShortcode, rawURL)
	}

	if existing, err := s.repo.FindActive(ctx, chatID, shortcode); err == nil {
		s.logger.Info("duplicate reel request suppressed",
			"chat_id", chatID, "shortcode", shortcode, "job_id", existing.ID)
		return existing, nil
	}

	statusMsg, err := s.tg.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:           chatID,
		Text:             "📥 Downloading your reel... Please wait!",
		ReplyToMessageID: messageID,
	})
	if err != nil {
		return nil, fmt.Errorf("send status message: %w", err)
	}

	job := domain.NewJob(domain.JobID(uuid.NewString()), chatID, messageID, rawURL, shortcode)
	job.StatusMessageID = statusMsg.MessageID

	if err := s.repo.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.events.EmitInfo(domain.EventCategoryAcquisition, "acquire_service",
		fmt.Sprintf("reel %s queued", shortcode),
		domain.EventMetadata{"job_id": job.ID, "chat_id": chatID, "shortcode": shortcode})

	return job, nil
}

// Process runs one queued job to completion: acquire the video, deliver it
// to the chat, and settle the status message. Called from the worker pool.
func (s *AcquireService) Process(ctx context.Context, job *domain.Job) error {
	job.MarkProcessing()
	if err := s.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	jobCtx := ctx
	if s.jobCfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, s.jobCfg.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	acq, err := s.engine.Acquire(jobCtx, job.RawURL)
	elapsed := time.Since(start)
	metrics.AcquisitionDurationSeconds.Observe(elapsed.Seconds())

	if err != nil {
		return s.settleFailure(ctx, job, err)
	}
	return s.settleSuccess(ctx, job, acq, elapsed)
}

func (s *AcquireService) settleSuccess(ctx context.Context, job *domain.Job, acq *domain.Acquisition, elapsed time.Duration) error {
	metrics.AcquisitionsTotal.WithLabelValues("success").Inc()
	metrics.AcquisitionBytes.Observe(float64(len(acq.Video)))

	// Remove the "downloading" placeholder before delivering. Best effort:
	// a leftover status message is cosmetic.
	if job.StatusMessageID != 0 {
		if err := s.tg.DeleteMessage(ctx, job.ChatID, job.StatusMessageID); err != nil {
			s.logger.Warn("failed to delete status message",
				"job_id", job.ID, "error", err)
		}
	}

	_, err := s.tg.SendVideo(ctx, telegram.SendVideoRequest{
		ChatID:           job.ChatID,
		Video:            acq.Video,
		FileName:         fmt.Sprintf("reel_%s.mp4", job.Shortcode),
		Caption:          fmt.Sprintf("✅ Downloaded successfully!\n\n🔗 Original: %s", job.RawURL),
		ReplyToMessageID: job.MessageID,
	})
	if err != nil {
		// Acquired but undeliverable still counts as a failed job.
		s.events.EmitError(domain.EventCategoryTelegram, "acquire_service",
			fmt.Sprintf("video delivery failed for %s", job.Shortcode),
			domain.EventMetadata{"job_id": job.ID, "error": err.Error()})
		job.MarkFailed(fmt.Sprintf("delivery failed: %v", err))
		if uerr := s.repo.Update(ctx, job); uerr != nil {
			s.logger.Error("failed to update job", "job_id", job.ID, "error", uerr)
		}
		return fmt.Errorf("send video: %w", err)
	}

	job.MarkCompleted(acq.Strategy)
	if err := s.repo.Update(ctx, job); err != nil {
		s.logger.Error("failed to update job", "job_id", job.ID, "error", err)
	}

	s.events.EmitSuccess(domain.EventCategoryAcquisition, "acquire_service",
		fmt.Sprintf("reel %s delivered via %s", job.Shortcode, acq.Strategy),
		domain.EventMetadata{
			"job_id":   job.ID,
			"strategy": acq.Strategy,
			"bytes":    len(acq.Video),
			"elapsed":  elapsed.String(),
		})

	return nil
}

func (s *AcquireService) settleFailure(ctx context.Context, job *domain.Job, acqErr error) error {
	kind := domain.KindName(acqErr)
	metrics.AcquisitionsTotal.WithLabelValues(kind).Inc()

	userText := fmt.Sprintf("❌ Failed to download reel: %s",
		domain.UserMessage(acqErr, s.sizeCfg.MaxFileSizeMB))

	if job.StatusMessageID != 0 {
		if err := s.tg.EditMessageText(ctx, job.ChatID, job.StatusMessageID, userText); err != nil {
			s.logger.Warn("failed to edit status message",
				"job_id", job.ID, "error", err)
		}
	} else {
		if _, err := s.tg.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID:           job.ChatID,
			Text:             userText,
			ReplyToMessageID: job.MessageID,
		}); err != nil {
			s.logger.Warn("failed to send failure message",
				"job_id", job.ID, "error", err)
		}
	}

	job.MarkFailed(acqErr.Error())
	if err := s.repo.Update(ctx, job); err != nil {
		s.logger.Error("failed to update job", "job_id", job.ID, "error", err)
	}

	s.events.EmitError(domain.EventCategoryAcquisition, "acquire_service",
		fmt.Sprintf("reel %s failed (%s)", job.Shortcode, kind),
		domain.EventMetadata{"job_id": job.ID, "kind": kind, "error": acqErr.Error()})

	return acqErr
}
