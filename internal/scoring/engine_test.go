package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/scoring"
)

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func neutralChannel() (domain.ChannelRecord, domain.NormalizedMetrics) {
	ch := domain.ChannelRecord{
		ID:              "UCneutral",
		Title:           "Some Channel",
		Description:     "a channel about things",
		SubscriberCount: 50_000,
		VideoCount:      300,
	}
	m := domain.NormalizedMetrics{
		AgeInDays:          700,
		LifetimeVelocity:   0.4,
		RecentVelocity:     1.0,
		ViewsPerSubscriber: 5,
	}
	return ch, m
}

func TestAssess_ScoreAlwaysClamped(t *testing.T) {
	engine := scoring.NewEngine(nil)

	tests := []struct {
		name string
		ch   domain.ChannelRecord
		m    domain.NormalizedMetrics
	}{
		{
			name: "every risk signal fires",
			ch: domain.ChannelRecord{
				Title:       "sub4sub free robux GONE WRONG must watch",
				Description: "get rich quick make money fast",
			},
			m: domain.NormalizedMetrics{
				AgeInDays:            5,
				RecentVelocity:       12,
				AverageTitleHashtags: 8,
			},
		},
		{
			name: "every reducing signal fires",
			ch: domain.ChannelRecord{
				Title:           "Quiet Archive",
				SubscriberCount: 9_000_000,
				VideoCount:      400,
			},
			m: domain.NormalizedMetrics{
				AgeInDays:          4000,
				RecentVelocity:     0.01,
				ViewsPerSubscriber: 80,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := engine.Assess(tt.ch, tt.m)
			assert.GreaterOrEqual(t, a.Score, 0)
			assert.LessOrEqual(t, a.Score, 100)
			assert.Equal(t, domain.TierFor(a.Score), a.Tier)
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score int
		want  domain.Tier
	}{
		{0, domain.TierLow},
		{29, domain.TierLow},
		{30, domain.TierMedium},
		{80, domain.TierMedium},
		{81, domain.TierHigh},
		{100, domain.TierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.TierFor(tt.score), "score %d", tt.score)
	}
}

func TestAssess_KidsOverrideBeatsEverything(t *testing.T) {
	engine := scoring.NewEngine(nil)

	// Otherwise excellent metrics.
	ch := domain.ChannelRecord{
		ID:              "UCkids",
		Title:           "Great Big Channel",
		SubscriberCount: 8_000_000,
		VideoCount:      200,
	}
	m := domain.NormalizedMetrics{
		AgeInDays:          3000,
		RecentVelocity:     0.05,
		ViewsPerSubscriber: 50,
		IsMadeForKids:      true,
	}

	a := engine.Assess(ch, m)
	assert.Equal(t, domain.TierHigh, a.Tier)
	require.NotEmpty(t, a.Reasons)
	assert.Contains(t, a.Reasons[0], "kids")

	result, _ := engine.Classify(ch, m, "run-1", testNow)
	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationSlop, result.Classification)
	assert.Equal(t, domain.MethodRule, result.Method)
	require.NotNil(t, result.SlopType)
	assert.Equal(t, domain.SlopTypeKidsContent, *result.SlopType)
}

func TestAssess_Deterministic(t *testing.T) {
	engine := scoring.NewEngine(nil)
	ch, m := neutralChannel()
	ch.Title = "sub4sub viral video"

	first := engine.Assess(ch, m)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Assess(ch, m))
	}
}

func TestClassify_BigHealthyChannelIsOkay(t *testing.T) {
	engine := scoring.NewEngine(nil)

	ch := domain.ChannelRecord{
		ID:              "UChealthy",
		Title:           "Documentary Archive",
		SubscriberCount: 6_000_000,
		VideoCount:      500,
	}
	m := domain.NormalizedMetrics{
		AgeInDays:          2000,
		RecentVelocity:     0.1,
		ViewsPerSubscriber: 40,
	}

	result, assessment := engine.Classify(ch, m, "run-1", testNow)

	assert.Less(t, assessment.Score, 30)
	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationOkay, result.Classification)
	assert.Equal(t, domain.MethodRule, result.Method)
	assert.NotEmpty(t, result.Reasons)
}

func TestClassify_ExtremeVelocityIsSlop(t *testing.T) {
	engine := scoring.NewEngine(nil)

	ch, m := neutralChannel()
	m.RecentVelocity = 6.0

	result, assessment := engine.Classify(ch, m, "run-1", testNow)

	assert.Greater(t, assessment.Score, 80)
	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationSlop, result.Classification)
	assert.Equal(t, domain.MethodRule, result.Method)
}

func TestClassify_MiddlingSignalsEscalate(t *testing.T) {
	engine := scoring.NewEngine(nil)

	ch, m := neutralChannel()
	result, assessment := engine.Classify(ch, m, "run-1", testNow)

	assert.Nil(t, result)
	assert.Equal(t, domain.TierMedium, assessment.Tier)
	assert.GreaterOrEqual(t, assessment.Score, 30)
	assert.LessOrEqual(t, assessment.Score, 80)
}

func TestAssess_SpamKeywordsRaiseRisk(t *testing.T) {
	engine := scoring.NewEngine(nil)
	ch, m := neutralChannel()

	baseline := engine.Assess(ch, m)

	ch.Title = "free robux sub4sub giveaway"
	spammy := engine.Assess(ch, m)

	assert.Greater(t, spammy.Score, baseline.Score)
	assert.NotEqual(t, baseline.Reasons, spammy.Reasons)
}

func TestAssess_VerifiedBrandSuppressesKeywordSignal(t *testing.T) {
	engine := scoring.NewEngine(nil)
	ch, m := neutralChannel()

	ch.Title = "ACME Records Official"
	ch.Description = "viral video sub4sub" // keywords present in description
	branded := engine.Assess(ch, m)

	ch2 := ch
	ch2.Title = "random uploads"
	unbranded := engine.Assess(ch2, m)

	// Brand match flips the keyword signal from risk-raising to reducing.
	assert.Less(t, branded.Score, unbranded.Score)

	found := false
	for _, r := range branded.Reasons {
		if r == "verified-brand title" {
			found = true
		}
	}
	assert.True(t, found, "expected verified-brand reason, got %v", branded.Reasons)
}

func TestAssess_SubscriberSignalSuppressedForContentFarms(t *testing.T) {
	engine := scoring.NewEngine(nil)
	ch, m := neutralChannel()
	ch.SubscriberCount = 2_000_000

	ch.VideoCount = 400
	normal := engine.Assess(ch, m)

	ch.VideoCount = 20_000 // content-farm sized library
	farm := engine.Assess(ch, m)

	// Suppressed, not reversed: the farm loses the credit but gains no
	// extra penalty from this signal.
	assert.Greater(t, farm.Score, normal.Score)
	assert.Equal(t, farm.Score-normal.Score, 15)
}
