// Package sources manages paginated candidate discovery across seed lists,
// keyword search, and trending charts.
package sources

import (
	"context"
	"sync"

	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/logger"
	"github.com/slopwatch/slopwatch/internal/youtube"
)

const defaultPageSize = 50

// PageRecorder receives one event per successfully fetched discovery page.
type PageRecorder interface {
	RecordDiscoveryPage(kind string)
}

// Manager owns one pagination cursor per active discovery source. It is
// used by a single run loop; cursors and source state are not shared across
// runs.
type Manager struct {
	search   youtube.SearchProvider
	trending youtube.TrendingProvider
	log      logger.Logger
	recorder PageRecorder

	seeds          []domain.CandidateID
	seedsConsumed  bool
	keywordSources []*domain.DiscoverySource
	trendingSource *domain.DiscoverySource

	durationFilter string
	pageSize       int
}

// Config describes the discovery sources for one run.
type Config struct {
	Seeds            []domain.CandidateID
	Keywords         []string
	TrendingCategory string
	DurationFilter   string
	PageSize         int
	Recorder         PageRecorder
}

// NewManager builds a manager. Keyword search takes priority: the trending
// source is only registered when no keywords are configured.
func NewManager(cfg Config, search youtube.SearchProvider, trending youtube.TrendingProvider, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	m := &Manager{
		search:         search,
		trending:       trending,
		log:            log,
		seeds:          cfg.Seeds,
		recorder:       cfg.Recorder,
		durationFilter: cfg.DurationFilter,
		pageSize:       cfg.PageSize,
	}

	for _, kw := range cfg.Keywords {
		if kw == "" {
			continue
		}
		m.keywordSources = append(m.keywordSources, &domain.DiscoverySource{
			Kind:    domain.SourceKeyword,
			Keyword: kw,
		})
	}

	if len(m.keywordSources) == 0 {
		m.trendingSource = &domain.DiscoverySource{
			Kind:     domain.SourceTrending,
			Category: cfg.TrendingCategory,
		}
	}

	return m
}

// Refill returns the next batch of candidate ids not already in visited.
// The seed list is consumed exactly once; paginated sources advance their
// cursors. Source failures are logged and contribute zero candidates
// without aborting the other sources. An empty return with Exhausted()
// true means discovery is done for this run.
func (m *Manager) Refill(ctx context.Context, visited map[domain.CandidateID]bool) []domain.CandidateID {
	if !m.seedsConsumed {
		m.seedsConsumed = true
		if len(m.seeds) > 0 {
			return dedupe(m.seeds, visited)
		}
	}

	live := m.liveSources()
	if len(live) == 0 {
		return nil
	}

	// Independent sources do not share the AI interval limiter, so their
	// pages may be fetched concurrently. Results are merged with set
	// semantics afterwards.
	pages := make([]domain.Page, len(live))
	oks := make([]bool, len(live))
	var wg sync.WaitGroup
	for i, src := range live {
		wg.Add(1)
		go func(i int, src *domain.DiscoverySource) {
			defer wg.Done()
			pages[i], oks[i] = m.fetchPage(ctx, src)
		}(i, src)
	}
	wg.Wait()

	merged := make([]domain.CandidateID, 0, m.pageSize)
	seen := make(map[domain.CandidateID]bool)
	for i, src := range live {
		if !oks[i] {
			// Failed sources keep their cursor and get another chance on
			// the next refill.
			continue
		}
		src.Paged = true
		src.Cursor = pages[i].NextCursor
		for _, id := range pages[i].IDs {
			if !visited[id] && !seen[id] {
				seen[id] = true
				merged = append(merged, id)
			}
		}
	}
	return merged
}

// Exhausted reports whether every discovery source has been fully paged.
func (m *Manager) Exhausted() bool {
	if !m.seedsConsumed && len(m.seeds) > 0 {
		return false
	}
	return len(m.liveSources()) == 0
}

func (m *Manager) liveSources() []*domain.DiscoverySource {
	var live []*domain.DiscoverySource
	for _, src := range m.keywordSources {
		if !src.Exhausted() {
			live = append(live, src)
		}
	}
	if m.trendingSource != nil && !m.trendingSource.Exhausted() {
		live = append(live, m.trendingSource)
	}
	return live
}

func (m *Manager) fetchPage(ctx context.Context, src *domain.DiscoverySource) (domain.Page, bool) {
	var (
		page domain.Page
		err  error
	)
	switch src.Kind {
	case domain.SourceKeyword:
		page, err = m.search.SearchByKeyword(ctx, src.Keyword, m.pageSize, src.Cursor, m.durationFilter)
	case domain.SourceTrending:
		page, err = m.trending.FetchTrending(ctx, src.Category, m.pageSize, src.Cursor)
	default:
		return domain.Page{}, false
	}
	if err != nil {
		m.log.Warn("discovery source failed, skipping this refill",
			logger.String("kind", string(src.Kind)),
			logger.String("keyword", src.Keyword),
			logger.String("category", src.Category),
			logger.Error(err))
		return domain.Page{}, false
	}
	if m.recorder != nil {
		m.recorder.RecordDiscoveryPage(string(src.Kind))
	}
	return page, true
}

func dedupe(ids []domain.CandidateID, visited map[domain.CandidateID]bool) []domain.CandidateID {
	out := make([]domain.CandidateID, 0, len(ids))
	seen := make(map[domain.CandidateID]bool, len(ids))
	for _, id := range ids {
		if id != "" && !visited[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
