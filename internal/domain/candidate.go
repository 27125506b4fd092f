// Package domain defines the core types for channel discovery and classification.
package domain

import "time"

// CandidateID is an opaque external channel identifier. It is the unit of
// deduplication within a run and the primary key for persisted results.
type CandidateID string

// SourceKind identifies a discovery mode.
type SourceKind string

const (
	// SourceSeedList is an explicit list of channel ids, consumed once.
	SourceSeedList SourceKind = "seed_list"
	// SourceKeyword pages through search results for a keyword.
	SourceKeyword SourceKind = "keyword"
	// SourceTrending pages through a trending chart, optionally per category.
	SourceTrending SourceKind = "trending"
)

// DiscoverySource is one paginated origin of candidate ids. Keyword and
// trending sources each own their cursor; an empty cursor on a source that
// has been paged means the first page, and a refill that returns no next
// cursor exhausts the source for the rest of the run.
type DiscoverySource struct {
	Kind     SourceKind
	Keyword  string
	Category string
	Cursor   string
	Paged    bool // true once the first page has been fetched
}

// Exhausted reports whether the source has been fully paged.
func (s *DiscoverySource) Exhausted() bool {
	return s.Paged && s.Cursor == ""
}

// Page is one page of discovery results. An empty NextCursor means the
// source has no further pages.
type Page struct {
	IDs        []CandidateID
	NextCursor string
}

// ChannelRecord is the raw channel data returned by the metadata provider.
type ChannelRecord struct {
	ID              CandidateID `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	ThumbnailURL    string      `json:"thumbnail_url"`
	Country         string      `json:"country"`
	PublishedAt     time.Time   `json:"published_at"`
	SubscriberCount int64       `json:"subscriber_count"`
	VideoCount      int64       `json:"video_count"`
	ViewCount       int64       `json:"view_count"`
	// UploadsPlaylistID addresses the channel's uploads for recent-video sampling.
	UploadsPlaylistID string `json:"uploads_playlist_id"`
}

// VideoRecord is one sampled recent video from the video listing provider.
type VideoRecord struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"published_at"`
	Tags            []string  `json:"tags"`
	DurationISO8601 string    `json:"duration"`
	ViewCount       int64     `json:"view_count"`
	MadeForKids     bool      `json:"made_for_kids"`
	CategoryID      string    `json:"category_id"`
}
