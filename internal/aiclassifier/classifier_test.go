package aiclassifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slopwatch/slopwatch/internal/domain"
)

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	calls     int
	callTimes []time.Time
	respond   func(call int) (string, error)
}

func (f *fakeGenerator) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	f.callTimes = append(f.callTimes, time.Now())
	return f.respond(f.calls)
}

func testChannel() (domain.ChannelRecord, []domain.VideoRecord, domain.NormalizedMetrics) {
	ch := domain.ChannelRecord{
		ID:          "UCtest",
		Title:       "Borderline Channel",
		Description: "some description",
	}
	videos := []domain.VideoRecord{
		{Title: "video one", DurationISO8601: "PT3M", ViewCount: 1000, Tags: []string{"a", "b"}},
	}
	m := domain.NormalizedMetrics{AgeInDays: 100, RecentVelocity: 1.5}
	return ch, videos, m
}

func TestClassify_ParsesProviderAnswer(t *testing.T) {
	gen := &fakeGenerator{respond: func(int) (string, error) {
		return `{"classification":"SLOP","confidence":88,"slop_score":92,"slop_type":"AI_GENERATED","reasoning":"templated uploads"}`, nil
	}}
	c := New(gen, nil, nil)

	ch, videos, m := testChannel()
	result := c.Classify(context.Background(), ch, videos, m, "run-1", testNow)

	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationSlop, result.Classification)
	assert.Equal(t, domain.MethodAI, result.Method)
	assert.InDelta(t, 88, result.Confidence, 0.001)
	assert.InDelta(t, 92, result.SlopScore, 0.001)
	require.NotNil(t, result.SlopType)
	assert.Equal(t, domain.SlopTypeAIGenerated, *result.SlopType)
	assert.Equal(t, []string{"templated uploads"}, result.Reasons)
	assert.Equal(t, 1, gen.calls)
}

func TestClassify_RateLimitRetriedExactlyThreeTimes(t *testing.T) {
	gen := &fakeGenerator{respond: func(int) (string, error) {
		return "", &domain.ProviderError{Provider: "gemini", Status: 429, Message: "quota exceeded"}
	}}
	c := New(gen, nil, nil, WithBaseDelay(time.Millisecond))

	ch, videos, m := testChannel()
	result := c.Classify(context.Background(), ch, videos, m, "run-1", testNow)

	// Initial attempt plus exactly three retries, then the fallback.
	assert.Equal(t, 4, gen.calls)
	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationSuspicious, result.Classification)
	assert.InDelta(t, 50, result.Confidence, 0.001)
	assert.InDelta(t, 50, result.SlopScore, 0.001)
	assert.Nil(t, result.SlopType)
	require.NotEmpty(t, result.Reasons)
	assert.Contains(t, result.Reasons[0], "unavailable")
}

func TestClassify_BackoffDoubles(t *testing.T) {
	gen := &fakeGenerator{respond: func(int) (string, error) {
		return "", &domain.ProviderError{Provider: "gemini", Status: 503, Message: "overloaded"}
	}}
	base := 20 * time.Millisecond
	c := New(gen, nil, nil, WithBaseDelay(base))

	ch, videos, m := testChannel()
	_ = c.Classify(context.Background(), ch, videos, m, "run-1", testNow)

	require.Len(t, gen.callTimes, 4)
	// Gaps follow base*2^n: 20ms, 40ms, 80ms.
	for i, want := range []time.Duration{base, 2 * base, 4 * base} {
		gap := gen.callTimes[i+1].Sub(gen.callTimes[i])
		assert.GreaterOrEqual(t, gap, want, "gap %d", i)
		assert.Less(t, gap, want*3, "gap %d", i)
	}
}

func TestClassify_PermanentErrorNotRetried(t *testing.T) {
	gen := &fakeGenerator{respond: func(int) (string, error) {
		return "", &domain.ProviderError{Provider: "gemini", Status: 400, Message: "bad request"}
	}}
	c := New(gen, nil, nil, WithBaseDelay(time.Millisecond))

	ch, videos, m := testChannel()
	result := c.Classify(context.Background(), ch, videos, m, "run-1", testNow)

	assert.Equal(t, 1, gen.calls)
	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationSuspicious, result.Classification)
}

func TestClassify_MalformedAnswerFallsBack(t *testing.T) {
	gen := &fakeGenerator{respond: func(int) (string, error) {
		return "I refuse to answer in JSON.", nil
	}}
	c := New(gen, nil, nil)

	ch, videos, m := testChannel()
	result := c.Classify(context.Background(), ch, videos, m, "run-1", testNow)

	assert.Equal(t, 1, gen.calls)
	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationSuspicious, result.Classification)
	assert.Equal(t, domain.MethodAI, result.Method)
}

func TestClassify_RecoversAfterRateLimit(t *testing.T) {
	gen := &fakeGenerator{respond: func(call int) (string, error) {
		if call == 1 {
			return "", &domain.ProviderError{Provider: "gemini", Status: 429, Message: "slow down"}
		}
		return `{"classification":"OKAY","confidence":75,"slop_score":15,"reasoning":"normal healthy channel"}`, nil
	}}
	c := New(gen, nil, nil, WithBaseDelay(time.Millisecond))

	ch, videos, m := testChannel()
	result := c.Classify(context.Background(), ch, videos, m, "run-1", testNow)

	assert.Equal(t, 2, gen.calls)
	require.NotNil(t, result)
	assert.Equal(t, domain.ClassificationOkay, result.Classification)
}

func TestIntervalLimiter_SpacesCalls(t *testing.T) {
	interval := 30 * time.Millisecond
	limiter := NewIntervalLimiter(interval)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	elapsed := time.Since(start)

	// First call is immediate, the next two wait one interval each.
	assert.GreaterOrEqual(t, elapsed, 2*interval)
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429 status", &domain.ProviderError{Status: 429}, true},
		{"503 status", &domain.ProviderError{Status: 503}, true},
		{"quota message", errors.New("Quota exceeded for model"), true},
		{"overloaded message", errors.New("the model is overloaded"), true},
		{"plain 400", &domain.ProviderError{Status: 400, Message: "bad"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsRateLimited(tt.err))
		})
	}
}

func TestBuildPrompt_IncludesChannelAndVideos(t *testing.T) {
	ch, videos, m := testChannel()
	ch.Description = strings.Repeat("x", 1000)

	prompt := buildPrompt(ch, videos, m)

	assert.Contains(t, prompt, ch.Title)
	assert.Contains(t, prompt, "video one")
	assert.Contains(t, prompt, "JSON")
	// Description truncated to its cap plus ellipsis.
	assert.NotContains(t, prompt, strings.Repeat("x", 600))
}
