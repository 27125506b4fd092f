package run

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/slopwatch/slopwatch/internal/aiclassifier"
	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/logger"
	"github.com/slopwatch/slopwatch/internal/normalize"
	"github.com/slopwatch/slopwatch/internal/scoring"
	"github.com/slopwatch/slopwatch/internal/sources"
	"github.com/slopwatch/slopwatch/internal/telemetry"
	"github.com/slopwatch/slopwatch/internal/youtube"
)

const (
	// batchSize matches the metadata provider's hard batch cap.
	batchSize = youtube.MaxMetadataBatch

	// defaultRuntimeBudget leaves a safety margin under typical external
	// execution limits.
	defaultRuntimeBudget = 8 * time.Minute

	defaultTargetCount = 25
	recentVideoSample  = 10
	defaultMinSubs     = 1000
	defaultMinVideos   = 10
)

// Options configures one discovery-and-classification session.
type Options struct {
	Seeds            []domain.CandidateID
	Keywords         []string
	TrendingCategory string
	DurationFilter   string

	MinSubscribers int64
	MinVideos      int64

	TargetCount   int
	RuntimeBudget time.Duration
	ForceRefresh  bool
	Mode          domain.ClassificationMode
}

func (o *Options) setDefaults() {
	if o.TargetCount <= 0 {
		o.TargetCount = defaultTargetCount
	}
	if o.RuntimeBudget <= 0 {
		o.RuntimeBudget = defaultRuntimeBudget
	}
	if o.MinSubscribers <= 0 {
		o.MinSubscribers = defaultMinSubs
	}
	if o.MinVideos <= 0 {
		o.MinVideos = defaultMinVideos
	}
	if o.Mode == "" {
		o.Mode = domain.ModeRulesThenAI
	}
}

// Report is the outcome of a session: the summary plus the ordered results.
type Report struct {
	Summary domain.RunSummary
	Results []*domain.ClassificationResult
}

// Controller drives the run loop. All run state (queue, visited set,
// cursors) is owned by the controller for the lifetime of one Run call and
// discarded afterwards.
type Controller struct {
	metadata youtube.MetadataProvider
	videos   youtube.VideoProvider
	search   youtube.SearchProvider
	trending youtube.TrendingProvider

	engine *scoring.Engine
	ai     *aiclassifier.Classifier
	store  ResultStore
	tel    *telemetry.Provider
	log    logger.Logger

	now func() time.Time
}

// NewController wires the pipeline components.
func NewController(
	metadata youtube.MetadataProvider,
	videos youtube.VideoProvider,
	search youtube.SearchProvider,
	trending youtube.TrendingProvider,
	engine *scoring.Engine,
	ai *aiclassifier.Classifier,
	store ResultStore,
	tel *telemetry.Provider,
	log logger.Logger,
) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	return &Controller{
		metadata: metadata,
		videos:   videos,
		search:   search,
		trending: trending,
		engine:   engine,
		ai:       ai,
		store:    store,
		tel:      tel,
		log:      log,
		now:      time.Now,
	}
}

// runState is the per-run mutable state. Created at run start, mutated only
// by the controller, discarded at run end.
type runState struct {
	queue   []domain.CandidateID
	visited map[domain.CandidateID]bool
	started time.Time
	results []*domain.ClassificationResult
	summary domain.RunSummary
}

// Run executes one bounded discovery-and-classification session. It always
// returns a report, partial when the run was degraded; the error is only
// non-nil for failures before the loop started.
func (c *Controller) Run(ctx context.Context, opts Options) (*Report, error) {
	opts.setDefaults()

	runID := uuid.NewString()
	log := c.log.With(logger.String("run_id", runID))

	state := &runState{
		visited: make(map[domain.CandidateID]bool),
		started: c.now(),
	}
	state.summary.RunID = runID

	var pageRecorder sources.PageRecorder
	if c.tel != nil {
		pageRecorder = c.tel
	}
	manager := sources.NewManager(sources.Config{
		Seeds:            opts.Seeds,
		Keywords:         opts.Keywords,
		TrendingCategory: opts.TrendingCategory,
		DurationFilter:   opts.DurationFilter,
		PageSize:         batchSize,
		Recorder:         pageRecorder,
	}, c.search, c.trending, log)

	gate := NewGate(c.store, opts.MinSubscribers, opts.MinVideos, opts.ForceRefresh, log)

	log.Info("run started",
		logger.Int("seeds", len(opts.Seeds)),
		logger.Strings("keywords", opts.Keywords),
		logger.Int("target", opts.TargetCount),
		logger.Duration("budget", opts.RuntimeBudget),
		logger.String("mode", string(opts.Mode)))

	for !c.shouldStop(state, opts, log) {
		// DISCOVER: refill the queue when drained.
		if len(state.queue) == 0 {
			refill := manager.Refill(ctx, state.visited)
			if len(refill) == 0 {
				log.Info("discovery exhausted, stopping")
				break
			}
			state.queue = append(state.queue, refill...)
		}

		// PROCESS_BATCH: drain up to one metadata batch.
		n := len(state.queue)
		if n > batchSize {
			n = batchSize
		}
		batch := state.queue[:n]
		state.queue = state.queue[n:]

		if err := c.processBatch(ctx, batch, gate, state, opts, log); err != nil {
			// Only context cancellation aborts; provider failures inside
			// the batch are already handled per candidate.
			log.Warn("batch aborted", logger.Error(err))
			break
		}
	}

	state.summary.Elapsed = c.now().Sub(state.started)
	if c.tel != nil {
		c.tel.RecordRun(ctx, runID, state.summary.Elapsed, state.summary.Processed)
	}

	log.Info("run finished",
		logger.Int("processed", state.summary.Processed),
		logger.Int("slop", state.summary.Slop),
		logger.Int("suspicious", state.summary.Suspicious),
		logger.Int("okay", state.summary.Okay),
		logger.Duration("elapsed", state.summary.Elapsed))

	return &Report{Summary: state.summary, Results: state.results}, nil
}

// shouldStop evaluates the stop conditions: target count reached or runtime
// budget spent.
func (c *Controller) shouldStop(state *runState, opts Options, log logger.Logger) bool {
	if len(state.results) >= opts.TargetCount {
		log.Info("target count reached", logger.Int("target", opts.TargetCount))
		return true
	}
	if elapsed := c.now().Sub(state.started); elapsed >= opts.RuntimeBudget {
		log.Info("runtime budget spent", logger.Duration("elapsed", elapsed))
		return true
	}
	return false
}

func (c *Controller) processBatch(ctx context.Context, batch []domain.CandidateID, gate *Gate, state *runState, opts Options, log logger.Logger) error {
	existsBefore := state.summary.SkippedExists
	admitted, err := gate.Admit(ctx, batch, state.visited, &state.summary)
	if err != nil {
		log.Warn("exists check failed, admitting batch unfiltered", logger.Error(err))
		admitted = batch
	}
	if c.tel != nil {
		for i := existsBefore; i < state.summary.SkippedExists; i++ {
			c.tel.RecordSkip(string(domain.SkipAlreadyExists))
		}
	}
	if len(admitted) == 0 {
		return nil
	}

	records, err := c.metadata.FetchMetadata(ctx, admitted)
	if err != nil {
		log.Warn("metadata fetch failed, skipping batch",
			logger.Int("batch", len(admitted)),
			logger.Error(err))
		return ctx.Err()
	}

	for i := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.processCandidate(ctx, &records[i], gate, state, opts, log)

		// Stop conditions are re-checked between candidates so an
		// in-flight batch is abandoned, never the persistence of results
		// already produced.
		if len(state.results) >= opts.TargetCount ||
			c.now().Sub(state.started) >= opts.RuntimeBudget {
			return nil
		}
	}
	return nil
}

func (c *Controller) processCandidate(ctx context.Context, ch *domain.ChannelRecord, gate *Gate, state *runState, opts Options, log logger.Logger) {
	videos := c.videos.FetchRecentVideos(ctx, ch.UploadsPlaylistID, recentVideoSample)
	metrics := normalize.Metrics(*ch, videos, c.now())

	if reason, skip := gate.CheckThresholds(*ch, metrics); skip {
		state.summary.CountSkip(reason)
		if c.tel != nil {
			c.tel.RecordSkip(string(reason))
		}
		log.Debug("candidate filtered",
			logger.String("channel_id", string(ch.ID)),
			logger.String("reason", string(reason)))
		return
	}

	result := c.classify(ctx, ch, videos, metrics, state.summary.RunID, opts.Mode)
	if result == nil {
		return
	}

	if err := c.store.Upsert(ctx, result); err != nil {
		log.Error("persist failed, dropping result",
			logger.String("channel_id", string(ch.ID)),
			logger.Error(err))
		if c.tel != nil {
			c.tel.Metrics.CandidatesFailed.Inc()
		}
		return
	}

	state.results = append(state.results, result)
	state.summary.CountResult(result)
	if c.tel != nil {
		c.tel.RecordResult(string(result.Classification), string(result.Method))
	}

	log.Info("candidate classified",
		logger.String("channel_id", string(ch.ID)),
		logger.String("classification", string(result.Classification)),
		logger.String("method", string(result.Method)),
		logger.Float64("slop_score", result.SlopScore))
}

// classify routes a candidate through the rule engine and, for ambiguous
// tiers or AI-only mode, the AI classifier.
func (c *Controller) classify(ctx context.Context, ch *domain.ChannelRecord, videos []domain.VideoRecord, metrics domain.NormalizedMetrics, runID string, mode domain.ClassificationMode) *domain.ClassificationResult {
	now := c.now()

	if mode == domain.ModeAIOnly {
		return c.ai.Classify(ctx, *ch, videos, metrics, runID, now)
	}

	start := time.Now()
	result, assessment := c.engine.Classify(*ch, metrics, runID, now)
	if c.tel != nil {
		c.tel.Metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	}
	if result != nil {
		return result
	}

	c.log.Debug("escalating to AI classifier",
		logger.String("channel_id", string(ch.ID)),
		logger.Int("risk_score", assessment.Score))
	return c.ai.Classify(ctx, *ch, videos, metrics, runID, now)
}
