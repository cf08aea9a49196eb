// internal/storage/searchlog.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

// SearchLog records completed pipeline runs to Postgres. Writes are
// best-effort: a failed insert is logged and surfaced as a recoverable
// error but must never fail the request that produced it.
type SearchLog struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSearchLog(db *sql.DB, log logger.Logger) *SearchLog {
	return &SearchLog{db: db, logger: log}
}

// Entry is one pipeline run summary.
type Entry struct {
	RequestID    string
	Query        string
	RefinedQuery string
	Region       string
	Action       string
	QueryType    string
	ProductCount int
	DurationMS   int64
	TopResults   []models.RankedProduct
}

// Record inserts one entry. Top results are stored as JSONB, capped at
// three items to keep rows small.
func (s *SearchLog) Record(ctx context.Context, entry Entry) error {
	top := entry.TopResults
	if len(top) > 3 {
		top = top[:3]
	}
	topJSON, err := json.Marshal(top)
	if err != nil {
		topJSON = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_log (
			request_id, query, refined_query, region, action,
			query_type, product_count, duration_ms, top_results, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.RequestID,
		entry.Query,
		entry.RefinedQuery,
		entry.Region,
		entry.Action,
		entry.QueryType,
		entry.ProductCount,
		entry.DurationMS,
		topJSON,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		s.logger.WithError(err).Warn("Search log insert failed", map[string]interface{}{
			"requestId": entry.RequestID,
		})
		return apperrors.NewSearchLogFailedError(err)
	}

	return nil
}

// Recent returns the latest entries for a region, newest first.
func (s *SearchLog) Recent(ctx context.Context, region string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, query, refined_query, region, action,
		       query_type, product_count, duration_ms
		FROM search_log
		WHERE region = $1
		ORDER BY created_at DESC
		LIMIT $2`, region, limit)
	if err != nil {
		return nil, fmt.Errorf("search log query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.RequestID, &e.Query, &e.RefinedQuery, &e.Region,
			&e.Action, &e.QueryType, &e.ProductCount, &e.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("search log scan failed: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
