package domain

import "time"

// Classification is the final verdict on a channel.
type Classification string

const (
	ClassificationSlop       Classification = "SLOP"
	ClassificationSuspicious Classification = "SUSPICIOUS"
	ClassificationOkay       Classification = "OKAY"
)

// SlopType is the content archetype attached to SLOP verdicts.
type SlopType string

const (
	SlopTypeKidsContent    SlopType = "KIDS_CONTENT"
	SlopTypeAIGenerated    SlopType = "AI_GENERATED"
	SlopTypeClickbait      SlopType = "CLICKBAIT"
	SlopTypeReupload       SlopType = "REUPLOAD"
	SlopTypeEngagementBait SlopType = "ENGAGEMENT_BAIT"
	SlopTypeOther          SlopType = "OTHER"
)

// Method records which component produced a classification.
type Method string

const (
	MethodRule Method = "RULE"
	MethodAI   Method = "AI"
)

// Tier is the coarse risk bucket produced by the scoring engine.
type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

// Tier thresholds for the weighted-score engine.
const (
	LowTierMax  = 30 // score < 30 is LOW
	HighTierMin = 80 // score > 80 is HIGH
)

// TierFor maps a clamped risk score onto its tier.
func TierFor(score int) Tier {
	switch {
	case score < LowTierMax:
		return TierLow
	case score > HighTierMin:
		return TierHigh
	default:
		return TierMedium
	}
}

// RiskAssessment is the output of the deterministic scoring engine.
// Reasons lists the signal names that fired, in evaluation order.
type RiskAssessment struct {
	Score   int      `json:"score"` // clamped to [0,100]
	Reasons []string `json:"reasons"`
	Tier    Tier     `json:"tier"`
}

// ClassificationMode selects how a run classifies candidates.
type ClassificationMode string

const (
	// ModeRulesThenAI runs the scoring engine and escalates MEDIUM-tier
	// candidates to the AI classifier.
	ModeRulesThenAI ClassificationMode = "rules+ai"
	// ModeAIOnly bypasses the scoring engine entirely.
	ModeAIOnly ClassificationMode = "ai"
)

// ClassificationResult is the canonical per-candidate outcome. It is created
// once per candidate per run, immutable after creation, and persisted via
// upsert keyed by ChannelID with last-write-wins semantics.
type ClassificationResult struct {
	ChannelID    CandidateID `json:"channel_id" db:"channel_id"`
	Title        string      `json:"title" db:"title"`
	Description  string      `json:"description" db:"description"`
	ThumbnailURL string      `json:"thumbnail_url" db:"thumbnail_url"`
	Category     string      `json:"category" db:"category"`

	Classification Classification `json:"classification" db:"classification"`
	Confidence     float64        `json:"confidence" db:"confidence"` // 0-100
	SlopScore      float64        `json:"slop_score" db:"slop_score"` // 0-100
	SlopType       *SlopType      `json:"slop_type" db:"slop_type"`
	Method         Method         `json:"method" db:"method"`
	Reasons        []string       `json:"reasons"`

	Metrics NormalizedMetrics `json:"metrics"`

	RunID        string    `json:"run_id" db:"run_id"`
	ClassifiedAt time.Time `json:"classified_at" db:"classified_at"`
}

// SkipReason identifies why a candidate was dropped before classification.
type SkipReason string

const (
	SkipAlreadyExists  SkipReason = "already_exists"
	SkipLowSubscribers SkipReason = "low_subscribers"
	SkipLowVideoCount  SkipReason = "low_video_count"
	SkipLowVelocity    SkipReason = "low_velocity"
)

// RunSummary aggregates one run's outcomes. It is computed from the results
// list at run end and never persisted on its own.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Processed int           `json:"processed"`
	Elapsed   time.Duration `json:"elapsed"`

	Slop       int `json:"slop"`
	Suspicious int `json:"suspicious"`
	Okay       int `json:"okay"`

	SkippedExists         int `json:"skipped_exists"`
	SkippedLowSubscribers int `json:"skipped_low_subscribers"`
	SkippedLowVideoCount  int `json:"skipped_low_video_count"`
	SkippedLowVelocity    int `json:"skipped_low_velocity"`
}

// CountResult tallies a result into the summary.
func (s *RunSummary) CountResult(r *ClassificationResult) {
	s.Processed++
	switch r.Classification {
	case ClassificationSlop:
		s.Slop++
	case ClassificationSuspicious:
		s.Suspicious++
	case ClassificationOkay:
		s.Okay++
	}
}

// CountSkip tallies a skipped candidate into the summary.
func (s *RunSummary) CountSkip(reason SkipReason) {
	switch reason {
	case SkipAlreadyExists:
		s.SkippedExists++
	case SkipLowSubscribers:
		s.SkippedLowSubscribers++
	case SkipLowVideoCount:
		s.SkippedLowVideoCount++
	case SkipLowVelocity:
		s.SkippedLowVelocity++
	}
}
