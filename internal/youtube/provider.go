// Package youtube implements the discovery and metadata providers against
// the YouTube Data API v3.
package youtube

import (
	"context"

	"github.com/slopwatch/slopwatch/internal/domain"
)

// MaxMetadataBatch is the provider's hard cap on ids per metadata call.
const MaxMetadataBatch = 50

// MetadataProvider resolves channel ids to channel records.
type MetadataProvider interface {
	// FetchMetadata resolves up to MaxMetadataBatch ids. Larger batches
	// are rejected, not truncated.
	FetchMetadata(ctx context.Context, ids []domain.CandidateID) ([]domain.ChannelRecord, error)
}

// VideoProvider lists a channel's recent uploads, enriched with tags,
// duration, view counts, and the made-for-kids flag.
type VideoProvider interface {
	// FetchRecentVideos returns an empty slice on failure rather than an
	// error; video sampling is best-effort.
	FetchRecentVideos(ctx context.Context, uploadsPlaylistID string, maxResults int) []domain.VideoRecord
}

// SearchProvider pages through keyword search results.
type SearchProvider interface {
	SearchByKeyword(ctx context.Context, keyword string, maxResults int, cursor, durationFilter string) (domain.Page, error)
}

// TrendingProvider pages through the trending chart, optionally scoped to a
// category.
type TrendingProvider interface {
	FetchTrending(ctx context.Context, category string, maxResults int, cursor string) (domain.Page, error)
}
