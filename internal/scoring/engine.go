// Package scoring implements the deterministic risk engine for channel
// candidates. The engine maps normalized metrics to a bounded score and
// tier; LOW and HIGH tiers are terminal rule verdicts, MEDIUM signals the
// caller to escalate to the AI classifier.
package scoring

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/logger"
)

// Signal weights and thresholds. Signals are evaluated in a fixed order and
// each adds or subtracts a fixed weight from the neutral baseline.
const (
	baselineScore = 50

	kidsOverrideScore = 95

	spamKeywordWeight   = 20
	verifiedBrandWeight = -15
	hashtagWeight       = 10
	highVelocityWeight  = 20
	extremeVelocityExtr = 15
	newChannelWeight    = 15
	bigSubscriberWeight = -15
	highViewsPerSubWt   = -10
	lowVelocityWeight   = -10
	matureChannelWeight = -10

	bigSubscriberThreshold  = 1_000_000
	contentFarmVideoCount   = 5000
	highViewsPerSubRatio    = 20.0
	lowVelocityThreshold    = 0.2
	highVelocityThreshold   = 3.0
	extremeVelocityThresh   = 5.0
	newChannelAgeDays       = 30.0
	matureChannelAgeDays    = 5 * 365.0
	hashtagDensityThreshold = 3.0
)

// Engine scores candidates. It is immutable after construction, so a single
// instance is safe for concurrent use and produces identical output for
// identical input.
type Engine struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	brandRe  *regexp.Regexp
	log      logger.Logger
}

// NewEngine builds an engine over the curated spam-keyword list.
func NewEngine(log logger.Logger) *Engine {
	return NewEngineWithKeywords(log, SpamKeywords)
}

// NewEngineWithKeywords builds an engine over a custom keyword list.
func NewEngineWithKeywords(log logger.Logger, keywords []string) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}
	return &Engine{
		matcher:  ahocorasick.NewStringMatcher(normalized),
		keywords: normalized,
		brandRe:  regexp.MustCompile(verifiedBrandPattern),
		log:      log,
	}
}

// Assess computes the risk assessment for a candidate. Pure and replayable:
// the same inputs always yield the same assessment.
func (e *Engine) Assess(ch domain.ChannelRecord, m domain.NormalizedMetrics) domain.RiskAssessment {
	// Kids-content override runs before any weighting.
	if m.IsMadeForKids {
		return domain.RiskAssessment{
			Score:   kidsOverrideScore,
			Reasons: []string{"made-for-kids content override"},
			Tier:    domain.TierHigh,
		}
	}

	score := baselineScore
	reasons := make([]string, 0, 4)
	apply := func(weight int, reason string) {
		score += weight
		reasons = append(reasons, reason)
	}

	// Risk-increasing signals.
	text := normalizeText(ch.Title + " " + ch.Description)
	if hits := e.matcher.Match([]byte(text)); len(hits) > 0 {
		if e.brandRe.MatchString(ch.Title) {
			// Brand-looking titles suppress the keyword signal entirely.
			apply(verifiedBrandWeight, "verified-brand title")
		} else {
			apply(spamKeywordWeight, "spam keywords: "+strings.Join(e.matchedKeywords(hits), ", "))
		}
	}

	if m.AverageTitleHashtags > hashtagDensityThreshold {
		apply(hashtagWeight, "excessive hashtag density in titles")
	}

	if m.RecentVelocity > highVelocityThreshold {
		apply(highVelocityWeight, "high recent upload velocity")
		if m.RecentVelocity > extremeVelocityThresh {
			apply(extremeVelocityExtr, "extreme recent upload velocity")
		}
	}

	if m.AgeInDays < newChannelAgeDays {
		apply(newChannelWeight, "very new channel")
	}

	// Risk-reducing signals.
	if ch.SubscriberCount >= bigSubscriberThreshold {
		if ch.VideoCount > contentFarmVideoCount {
			// Suppressed, not reversed: a huge audience on a content-farm
			// sized library earns no credit.
			e.log.Debug("subscriber signal suppressed",
				logger.String("channel_id", string(ch.ID)),
				logger.Int64("video_count", ch.VideoCount))
		} else {
			apply(bigSubscriberWeight, "large subscriber base")
		}
	}

	if m.ViewsPerSubscriber >= highViewsPerSubRatio {
		apply(highViewsPerSubWt, "high views per subscriber")
	}

	if m.RecentVelocity <= lowVelocityThreshold {
		apply(lowVelocityWeight, "low recent upload velocity")
	}

	if m.AgeInDays >= matureChannelAgeDays {
		apply(matureChannelWeight, "long channel history")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return domain.RiskAssessment{
		Score:   score,
		Reasons: reasons,
		Tier:    domain.TierFor(score),
	}
}

// Classify produces a rule-based result for terminal tiers. A nil result
// with a MEDIUM assessment means the caller must escalate to the AI
// classifier.
func (e *Engine) Classify(ch domain.ChannelRecord, m domain.NormalizedMetrics, runID string, now time.Time) (*domain.ClassificationResult, domain.RiskAssessment) {
	assessment := e.Assess(ch, m)

	var (
		verdict    domain.Classification
		confidence float64
		slopType   *domain.SlopType
	)

	switch assessment.Tier {
	case domain.TierLow:
		verdict = domain.ClassificationOkay
		confidence = float64(100 - assessment.Score)
	case domain.TierHigh:
		verdict = domain.ClassificationSlop
		confidence = float64(assessment.Score)
		if m.IsMadeForKids {
			t := domain.SlopTypeKidsContent
			slopType = &t
		}
	default:
		return nil, assessment
	}

	reasons := assessment.Reasons
	if len(reasons) == 0 {
		reasons = []string{"no risk signals fired"}
	}

	return &domain.ClassificationResult{
		ChannelID:      ch.ID,
		Title:          ch.Title,
		Description:    ch.Description,
		ThumbnailURL:   ch.ThumbnailURL,
		Category:       m.DominantCategory,
		Classification: verdict,
		Confidence:     confidence,
		SlopScore:      float64(assessment.Score),
		SlopType:       slopType,
		Method:         domain.MethodRule,
		Reasons:        reasons,
		Metrics:        m,
		RunID:          runID,
		ClassifiedAt:   now,
	}, assessment
}

func (e *Engine) matchedKeywords(hits []int) []string {
	out := make([]string, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, idx := range hits {
		if idx >= len(e.keywords) {
			continue
		}
		kw := e.keywords[idx]
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

// normalizeText lowercases and replaces non-alphanumeric runes with spaces
// so keyword matching respects word boundaries.
func normalizeText(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
