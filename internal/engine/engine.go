package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/iconidentify/reelgrab/internal/config"
	"github.com/iconidentify/reelgrab/internal/domain"
)

// Engine is the top-level acquisition entry point: URL classification, the
// fallback orchestrator, and the retry wrapper composed into one call.
type Engine struct {
	orchestrator *Orchestrator
	retryCfg     RetryConfig
	logger       *slog.Logger
}

// New creates an acquisition engine.
func New(orchestrator *Orchestrator, cfg config.EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	retryCfg := RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryDelay,
	}
	if retryCfg.MaxAttempts <= 0 {
		retryCfg.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	if retryCfg.BaseDelay <= 0 {
		retryCfg.BaseDelay = DefaultRetryConfig().BaseDelay
	}
	return &Engine{
		orchestrator: orchestrator,
		retryCfg:     retryCfg,
		logger:       logger,
	}
}

// Acquire resolves rawURL to video bytes plus metadata. The whole fallback
// chain runs under the retry budget; the caller's context bounds everything
// including inter-attempt waits.
func (e *Engine) Acquire(ctx context.Context, rawURL string) (*domain.Acquisition, error) {
	start := time.Now()

	acq, err := WithRetry(ctx, e.retryCfg, func() (*domain.Acquisition, error) {
		return e.orchestrator.Resolve(ctx, rawURL)
	})
	if err != nil {
		e.logger.Error("acquisition failed",
			"url", rawURL,
			"kind", domain.KindName(err),
			"error", err,
			"elapsed", time.Since(start),
		)
		return nil, err
	}

	e.logger.Info("acquisition succeeded",
		"shortcode", acq.Metadata.Shortcode,
		"strategy", acq.Strategy,
		"bytes", len(acq.Video),
		"elapsed", time.Since(start),
	)
	return acq, nil
}
