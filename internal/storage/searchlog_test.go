package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/logger"
)

func TestRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO search_log").
		WithArgs(
			"req-1", "budget phone", "smartphone under 20000", "IN", "search",
			"product_search", 8, int64(4210), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	log := NewSearchLog(db, logger.NewNoOpLogger())
	err = log.Record(context.Background(), Entry{
		RequestID:    "req-1",
		Query:        "budget phone",
		RefinedQuery: "smartphone under 20000",
		Region:       "IN",
		Action:       "search",
		QueryType:    "product_search",
		ProductCount: 8,
		DurationMS:   4210,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_InsertFailureIsRecoverable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO search_log").
		WillReturnError(errors.New("connection reset"))

	log := NewSearchLog(db, logger.NewNoOpLogger())
	err = log.Record(context.Background(), Entry{RequestID: "req-2", Query: "toys", Region: "US"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSearchLogFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRecoverable(err))
}

func TestRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"request_id", "query", "refined_query", "region", "action",
		"query_type", "product_count", "duration_ms",
	}).
		AddRow("req-9", "headphones", "wireless headphones", "IN", "search", "product_search", 12, int64(3900)).
		AddRow("req-8", "gift for mom", "silk saree", "IN", "search", "gift_recommendation", 6, int64(7100))

	mock.ExpectQuery("SELECT (.+) FROM search_log").
		WithArgs("IN", 10).
		WillReturnRows(rows)

	log := NewSearchLog(db, logger.NewNoOpLogger())
	entries, err := log.Recent(context.Background(), "IN", 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-9", entries[0].RequestID)
	assert.Equal(t, "gift_recommendation", entries[1].QueryType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
