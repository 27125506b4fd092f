// Package run orchestrates discovery, filtering, classification, and
// persistence for one bounded session.
package run

import (
	"context"

	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/logger"
)

// minLifetimeVelocity is the epsilon below which a channel is considered
// dormant and skipped.
const minLifetimeVelocity = 0.01

// ResultStore is the persistence collaborator.
type ResultStore interface {
	Exists(ctx context.Context, ids []domain.CandidateID) (map[domain.CandidateID]bool, error)
	Upsert(ctx context.Context, result *domain.ClassificationResult) error
}

// Gate removes already-visited and already-persisted candidates and applies
// the ordered pre-classification threshold filters.
type Gate struct {
	store        ResultStore
	log          logger.Logger
	forceRefresh bool

	minSubscribers int64
	minVideos      int64
}

// NewGate creates a gate. With forceRefresh set, the stored-result check is
// bypassed and known channels are re-classified.
func NewGate(store ResultStore, minSubscribers, minVideos int64, forceRefresh bool, log logger.Logger) *Gate {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gate{
		store:          store,
		log:            log,
		forceRefresh:   forceRefresh,
		minSubscribers: minSubscribers,
		minVideos:      minVideos,
	}
}

// Admit filters a batch of candidate ids before any metadata is fetched.
// Ids already in visited are dropped; survivors are marked visited. Unless
// force-refresh is set, ids with a stored result are dropped and counted
// against the summary's alreadyExists skip counter.
func (g *Gate) Admit(ctx context.Context, ids []domain.CandidateID, visited map[domain.CandidateID]bool, summary *domain.RunSummary) ([]domain.CandidateID, error) {
	fresh := make([]domain.CandidateID, 0, len(ids))
	for _, id := range ids {
		if visited[id] {
			continue
		}
		visited[id] = true
		fresh = append(fresh, id)
	}

	if g.forceRefresh || len(fresh) == 0 {
		return fresh, nil
	}

	existing, err := g.store.Exists(ctx, fresh)
	if err != nil {
		return nil, err
	}

	admitted := make([]domain.CandidateID, 0, len(fresh))
	for _, id := range fresh {
		if existing[id] {
			summary.CountSkip(domain.SkipAlreadyExists)
			continue
		}
		admitted = append(admitted, id)
	}
	return admitted, nil
}

// CheckThresholds applies the ordered post-metadata filters. The first
// failing filter wins; later filters are never evaluated for that
// candidate. A zero-valued SkipReason means the candidate passed.
func (g *Gate) CheckThresholds(ch domain.ChannelRecord, m domain.NormalizedMetrics) (domain.SkipReason, bool) {
	if ch.SubscriberCount < g.minSubscribers {
		return domain.SkipLowSubscribers, true
	}
	if ch.VideoCount < g.minVideos {
		return domain.SkipLowVideoCount, true
	}
	if m.LifetimeVelocity < minLifetimeVelocity {
		return domain.SkipLowVelocity, true
	}
	return "", false
}
