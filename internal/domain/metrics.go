package domain

// NormalizedMetrics is the per-candidate metric snapshot derived from raw
// channel and video data. All rate denominators are guarded to at least 1,
// so every ratio is finite and non-negative.
type NormalizedMetrics struct {
	AgeInDays float64 `json:"age_in_days"` // floored at 1

	// LifetimeVelocity is lifetime uploads per day.
	LifetimeVelocity float64 `json:"lifetime_velocity"`
	// RecentVelocity is uploads per day over the trailing 14-day window,
	// or over the channel's whole age when it is younger than the window.
	RecentVelocity float64 `json:"recent_velocity"`

	ViewsPerSubscriber     float64 `json:"views_per_subscriber"`
	AverageTagCount        float64 `json:"average_tag_count"`
	AverageDurationSeconds float64 `json:"average_duration_seconds"`
	AverageTitleHashtags   float64 `json:"average_title_hashtags"`

	// IsMadeForKids is true when any sampled recent video carries the flag.
	IsMadeForKids bool `json:"is_made_for_kids"`
	// DominantCategory is the mode of sampled videos' category ids.
	DominantCategory string `json:"dominant_category"`

	SampledVideos int `json:"sampled_videos"`
}
