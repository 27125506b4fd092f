// Package aiclassifier escalates ambiguous candidates to a generative text
// model under a rate-limited retry policy.
package aiclassifier

import (
	"context"
	"fmt"
	"time"

	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/logger"
)

// TextGenerator is the external text-generation provider.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	// maxRetries bounds retries after the initial attempt. Only
	// rate-limit-like failures are retried.
	maxRetries = 3
	// defaultBaseDelay yields the 2s/4s/8s backoff schedule.
	defaultBaseDelay = 2 * time.Second

	fallbackConfidence = 50
	fallbackSlopScore  = 50
)

// Classifier wraps a text-generation provider with prompt construction,
// response parsing, retry with backoff, and a process-wide interval limiter.
type Classifier struct {
	generator TextGenerator
	limiter   *IntervalLimiter
	log       logger.Logger
	recorder  Recorder
	baseDelay time.Duration
}

// Recorder receives call, retry, and fallback events for metrics.
type Recorder interface {
	RecordAICall()
	RecordAIRetry()
	RecordAIFallback()
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithBaseDelay overrides the retry base delay. Used in tests.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Classifier) { c.baseDelay = d }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Classifier) { c.recorder = r }
}

// New creates a Classifier. The limiter should be the single per-process
// instance so the minimum call interval holds across runs.
func New(generator TextGenerator, limiter *IntervalLimiter, log logger.Logger, opts ...Option) *Classifier {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Classifier{
		generator: generator,
		limiter:   limiter,
		log:       log,
		baseDelay: defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify builds the prompt, calls the provider, and parses its answer into
// a ClassificationResult. On permanent failure or retry exhaustion it
// returns the fixed SUSPICIOUS fallback; it never returns an error result
// the pipeline cannot persist.
func (c *Classifier) Classify(ctx context.Context, ch domain.ChannelRecord, videos []domain.VideoRecord, m domain.NormalizedMetrics, runID string, now time.Time) *domain.ClassificationResult {
	prompt := buildPrompt(ch, videos, m)

	resp, err := c.completeWithRetry(ctx, prompt, ch.ID)
	if err != nil {
		c.log.Warn("AI classification degraded to fallback",
			logger.String("channel_id", string(ch.ID)),
			logger.Error(err))
		return c.fallback(ch, m, runID, now, err)
	}

	return &domain.ClassificationResult{
		ChannelID:      ch.ID,
		Title:          ch.Title,
		Description:    ch.Description,
		ThumbnailURL:   ch.ThumbnailURL,
		Category:       m.DominantCategory,
		Classification: domain.Classification(resp.Classification),
		Confidence:     resp.Confidence,
		SlopScore:      resp.SlopScore,
		SlopType:       slopTypeOf(resp.SlopType),
		Method:         domain.MethodAI,
		Reasons:        []string{resp.Reasoning},
		Metrics:        m,
		RunID:          runID,
		ClassifiedAt:   now,
	}
}

// completeWithRetry enforces the interval limiter before every call and
// retries only rate-limit-like failures with exponential backoff.
func (c *Classifier) completeWithRetry(ctx context.Context, prompt string, id domain.CandidateID) (*aiResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("interval limiter: %w", err)
			}
		}

		if c.recorder != nil {
			c.recorder.RecordAICall()
		}
		raw, err := c.generator.Complete(ctx, prompt)
		if err == nil {
			return parseResponse(raw)
		}
		lastErr = err

		if !domain.IsRateLimited(err) {
			// Permanent provider failure, no point retrying.
			return nil, err
		}
		if attempt == maxRetries {
			break
		}

		if c.recorder != nil {
			c.recorder.RecordAIRetry()
		}
		delay := c.baseDelay << attempt
		c.log.Warn("AI provider rate limited, backing off",
			logger.String("channel_id", string(id)),
			logger.Int("attempt", attempt+1),
			logger.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// fallback is the fixed degraded result. It is persisted like any other
// result and never retried further.
func (c *Classifier) fallback(ch domain.ChannelRecord, m domain.NormalizedMetrics, runID string, now time.Time, cause error) *domain.ClassificationResult {
	if c.recorder != nil {
		c.recorder.RecordAIFallback()
	}
	return &domain.ClassificationResult{
		ChannelID:      ch.ID,
		Title:          ch.Title,
		Description:    ch.Description,
		ThumbnailURL:   ch.ThumbnailURL,
		Category:       m.DominantCategory,
		Classification: domain.ClassificationSuspicious,
		Confidence:     fallbackConfidence,
		SlopScore:      fallbackSlopScore,
		SlopType:       nil,
		Method:         domain.MethodAI,
		Reasons:        []string{fmt.Sprintf("AI classification unavailable: %v", cause)},
		Metrics:        m,
		RunID:          runID,
		ClassifiedAt:   now,
	}
}
