package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/slopwatch/slopwatch/internal/domain"
)

// ChannelRepository stores classification results keyed by channel id.
type ChannelRepository struct {
	db *sqlx.DB
}

// NewChannelRepository creates a repository over an opened store.
func NewChannelRepository(db *sqlx.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// channelRow is the flat persisted shape; reasons and metrics are JSON text.
type channelRow struct {
	ChannelID      string    `db:"channel_id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	ThumbnailURL   string    `db:"thumbnail_url"`
	Category       string    `db:"category"`
	Classification string    `db:"classification"`
	Confidence     float64   `db:"confidence"`
	SlopScore      float64   `db:"slop_score"`
	SlopType       *string   `db:"slop_type"`
	Method         string    `db:"method"`
	Reasons        string    `db:"reasons"`
	Metrics        string    `db:"metrics"`
	RunID          string    `db:"run_id"`
	ClassifiedAt   time.Time `db:"classified_at"`
}

// Exists returns the subset of ids that already have a stored result.
func (r *ChannelRepository) Exists(ctx context.Context, ids []domain.CandidateID) (map[domain.CandidateID]bool, error) {
	out := make(map[domain.CandidateID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = string(id)
	}

	query, args, err := sqlx.In(`SELECT channel_id FROM channels WHERE channel_id IN (?)`, idStrs)
	if err != nil {
		return nil, fmt.Errorf("build exists query: %w", err)
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query existing channels: %w", err)
	}

	for _, id := range found {
		out[domain.CandidateID(id)] = true
	}
	return out, nil
}

// Upsert inserts or replaces the result for its channel id. Last write wins
// on conflict.
func (r *ChannelRepository) Upsert(ctx context.Context, result *domain.ClassificationResult) error {
	reasons, err := json.Marshal(result.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	var slopType *string
	if result.SlopType != nil {
		s := string(*result.SlopType)
		slopType = &s
	}

	query := r.db.Rebind(`
		INSERT INTO channels (
			channel_id, title, description, thumbnail_url, category,
			classification, confidence, slop_score, slop_type, method,
			reasons, metrics, run_id, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (channel_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			thumbnail_url = excluded.thumbnail_url,
			category = excluded.category,
			classification = excluded.classification,
			confidence = excluded.confidence,
			slop_score = excluded.slop_score,
			slop_type = excluded.slop_type,
			method = excluded.method,
			reasons = excluded.reasons,
			metrics = excluded.metrics,
			run_id = excluded.run_id,
			classified_at = excluded.classified_at
	`)

	_, err = r.db.ExecContext(ctx, query,
		string(result.ChannelID), result.Title, result.Description,
		result.ThumbnailURL, result.Category,
		string(result.Classification), result.Confidence, result.SlopScore,
		slopType, string(result.Method),
		string(reasons), string(metrics), result.RunID, result.ClassifiedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert channel %s: %w", result.ChannelID, err)
	}
	return nil
}

// Get fetches one stored result, or nil when absent.
func (r *ChannelRepository) Get(ctx context.Context, id domain.CandidateID) (*domain.ClassificationResult, error) {
	var row channelRow
	query := r.db.Rebind(`SELECT * FROM channels WHERE channel_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get channel %s: %w", id, err)
	}
	return rowToResult(&row)
}

// Recent lists the most recently classified channels.
func (r *ChannelRepository) Recent(ctx context.Context, limit int) ([]*domain.ClassificationResult, error) {
	var rows []channelRow
	query := r.db.Rebind(`SELECT * FROM channels ORDER BY classified_at DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list recent channels: %w", err)
	}

	results := make([]*domain.ClassificationResult, 0, len(rows))
	for i := range rows {
		result, err := rowToResult(&rows[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// CountByClassification tallies stored results per verdict.
func (r *ChannelRepository) CountByClassification(ctx context.Context) (map[domain.Classification]int, error) {
	type bucket struct {
		Classification string `db:"classification"`
		Count          int    `db:"count"`
	}
	var buckets []bucket
	query := `SELECT classification, COUNT(*) AS count FROM channels GROUP BY classification`
	if err := r.db.SelectContext(ctx, &buckets, query); err != nil {
		return nil, fmt.Errorf("count by classification: %w", err)
	}

	out := make(map[domain.Classification]int, len(buckets))
	for _, b := range buckets {
		out[domain.Classification(b.Classification)] = b.Count
	}
	return out, nil
}

func rowToResult(row *channelRow) (*domain.ClassificationResult, error) {
	result := &domain.ClassificationResult{
		ChannelID:      domain.CandidateID(row.ChannelID),
		Title:          row.Title,
		Description:    row.Description,
		ThumbnailURL:   row.ThumbnailURL,
		Category:       row.Category,
		Classification: domain.Classification(row.Classification),
		Confidence:     row.Confidence,
		SlopScore:      row.SlopScore,
		Method:         domain.Method(row.Method),
		RunID:          row.RunID,
		ClassifiedAt:   row.ClassifiedAt,
	}

	if row.SlopType != nil {
		t := domain.SlopType(*row.SlopType)
		result.SlopType = &t
	}
	if err := json.Unmarshal([]byte(row.Reasons), &result.Reasons); err != nil {
		return nil, fmt.Errorf("unmarshal reasons for %s: %w", row.ChannelID, err)
	}
	if err := json.Unmarshal([]byte(row.Metrics), &result.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics for %s: %w", row.ChannelID, err)
	}
	return result, nil
}
