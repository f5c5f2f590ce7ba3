package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/pkg/instagram"
)

// Orchestrator tries the strategy set in fixed priority order, short-
// circuiting on the first success. Terminal failures (private, not found,
// invalid URL) abort the whole chain: no retrieval technique fixes a
// genuinely absent or restricted resource.
type Orchestrator struct {
	strategies []Strategy
	logger     *slog.Logger

	// onAttempt, when set, observes every strategy attempt. Used for
	// metrics and the event log; never influences control flow.
	onAttempt func(domain.PostReference, domain.StrategyAttempt)
}

// NewOrchestrator creates a fallback orchestrator over the given strategies.
func NewOrchestrator(strategies []Strategy, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		strategies: strategies,
		logger:     logger,
	}
}

// SetAttemptHook registers an observer for strategy attempts.
func (o *Orchestrator) SetAttemptHook(hook func(domain.PostReference, domain.StrategyAttempt)) {
	o.onAttempt = hook
}

// Resolve classifies the input and walks the strategy chain. On exhaustion
// the most recent failure is returned; earlier diagnostics reach the
// operator through logs and events, not the user-facing error.
func (o *Orchestrator) Resolve(ctx context.Context, rawInput string) (*domain.Acquisition, error) {
	rawInput = strings.TrimSpace(rawInput)

	if !instagram.IsPostURL(rawInput) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidURL, rawInput)
	}
	shortcode := instagram.ExtractShortcode(rawInput)
	if shortcode == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoShortcode, rawInput)
	}
	ref := domain.PostReference{Shortcode: shortcode}

	var lastErr error
	for _, strategy := range o.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		acq, err := o.attempt(ctx, strategy, ref, rawInput)
		elapsed := time.Since(start)

		if o.onAttempt != nil {
			o.onAttempt(ref, domain.StrategyAttempt{
				Strategy: strategy.Name(),
				Err:      err,
				Elapsed:  elapsed,
			})
		}

		if err == nil {
			acq.Strategy = strategy.Name()
			o.logger.Info("strategy succeeded",
				"strategy", strategy.Name(),
				"shortcode", ref.Shortcode,
				"bytes", len(acq.Video),
				"elapsed", elapsed,
			)
			return acq, nil
		}

		lastErr = err
		if domain.IsTerminal(err) {
			o.logger.Warn("strategy failed terminally, aborting chain",
				"strategy", strategy.Name(),
				"shortcode", ref.Shortcode,
				"error", err,
			)
			return nil, err
		}

		o.logger.Warn("strategy failed, falling back",
			"strategy", strategy.Name(),
			"shortcode", ref.Shortcode,
			"error", err,
			"elapsed", elapsed,
		)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no strategies configured", domain.ErrUnknown)
	}
	return nil, lastErr
}

// attempt runs one strategy, converting panics into classified failures so
// a misbehaving strategy cannot take down the chain.
func (o *Orchestrator) attempt(ctx context.Context, strategy Strategy, ref domain.PostReference, rawInput string) (acq *domain.Acquisition, err error) {
	defer func() {
		if r := recover(); r != nil {
			acq = nil
			err = domain.Classify(fmt.Errorf("strategy %s panicked: %v", strategy.Name(), r))
		}
	}()
	return strategy.Attempt(ctx, ref, rawInput)
}
