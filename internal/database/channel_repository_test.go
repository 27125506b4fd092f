package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slopwatch/slopwatch/internal/domain"
)

func newTestRepo(t *testing.T) *ChannelRepository {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewChannelRepository(db)
}

func sampleResult(id domain.CandidateID, runID string) *domain.ClassificationResult {
	slopType := domain.SlopTypeAIGenerated
	return &domain.ClassificationResult{
		ChannelID:      id,
		Title:          "Test Channel",
		Description:    "a test channel",
		ThumbnailURL:   "https://example.com/t.jpg",
		Category:       "22",
		Classification: domain.ClassificationSlop,
		Confidence:     85,
		SlopScore:      90,
		SlopType:       &slopType,
		Method:         domain.MethodRule,
		Reasons:        []string{"high recent upload velocity", "very new channel"},
		Metrics: domain.NormalizedMetrics{
			AgeInDays:      12,
			RecentVelocity: 4.5,
			SampledVideos:  10,
		},
		RunID:        runID,
		ClassifiedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpsertAndGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := sampleResult("UC1", "run-1")
	require.NoError(t, repo.Upsert(ctx, want))

	got, err := repo.Get(ctx, "UC1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ChannelID, got.ChannelID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Classification, got.Classification)
	assert.Equal(t, want.Confidence, got.Confidence)
	assert.Equal(t, want.SlopScore, got.SlopScore)
	require.NotNil(t, got.SlopType)
	assert.Equal(t, *want.SlopType, *got.SlopType)
	assert.Equal(t, want.Method, got.Method)
	assert.Equal(t, want.Reasons, got.Reasons)
	assert.Equal(t, want.Metrics, got.Metrics)
	assert.Equal(t, want.RunID, got.RunID)
	assert.WithinDuration(t, want.ClassifiedAt, got.ClassifiedAt, time.Second)
}

func TestUpsertLastWriteWins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleResult("UC1", "run-1")
	require.NoError(t, repo.Upsert(ctx, first))

	second := sampleResult("UC1", "run-2")
	second.Classification = domain.ClassificationOkay
	second.SlopType = nil
	second.SlopScore = 10
	second.Reasons = []string{"re-evaluated"}
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.Get(ctx, "UC1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ClassificationOkay, got.Classification)
	assert.Nil(t, got.SlopType)
	assert.Equal(t, "run-2", got.RunID)
	assert.Equal(t, []string{"re-evaluated"}, got.Reasons)

	// Still a single row.
	counts, err := repo.CountByClassification(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.Classification]int{domain.ClassificationOkay: 1}, counts)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get(context.Background(), "UCmissing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sampleResult("UC1", "run-1")))
	require.NoError(t, repo.Upsert(ctx, sampleResult("UC3", "run-1")))

	existing, err := repo.Exists(ctx, []domain.CandidateID{"UC1", "UC2", "UC3"})
	require.NoError(t, err)
	assert.True(t, existing["UC1"])
	assert.False(t, existing["UC2"])
	assert.True(t, existing["UC3"])

	empty, err := repo.Exists(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecentOrdersByClassifiedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := sampleResult("UCold", "run-1")
	older.ClassifiedAt = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleResult("UCnew", "run-2")
	newer.ClassifiedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, older))
	require.NoError(t, repo.Upsert(ctx, newer))

	results, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.CandidateID("UCnew"), results[0].ChannelID)
	assert.Equal(t, domain.CandidateID("UCold"), results[1].ChannelID)

	limited, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, domain.CandidateID("UCnew"), limited[0].ChannelID)
}

func TestCountByClassification(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	slop := sampleResult("UC1", "run-1")
	okay := sampleResult("UC2", "run-1")
	okay.Classification = domain.ClassificationOkay
	okay.SlopType = nil
	suspicious := sampleResult("UC3", "run-1")
	suspicious.Classification = domain.ClassificationSuspicious
	suspicious.SlopType = nil

	for _, r := range []*domain.ClassificationResult{slop, okay, suspicious} {
		require.NoError(t, repo.Upsert(ctx, r))
	}

	counts, err := repo.CountByClassification(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.ClassificationSlop])
	assert.Equal(t, 1, counts[domain.ClassificationOkay])
	assert.Equal(t, 1, counts[domain.ClassificationSuspicious])
}
