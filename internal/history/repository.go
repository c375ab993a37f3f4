package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one recorded query run.
type Entry struct {
	ID           int64     `json:"id"`
	Question     string    `json:"question"`
	SQLQuery     string    `json:"sql_query"`
	Success      bool      `json:"success"`
	RowCount     int       `json:"row_count"`
	RetryCount   int       `json:"retry_count"`
	ExecutionMs  int64     `json:"execution_ms"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RecordInput struct {
	Question     string
	SQLQuery     string
	Success      bool
	RowCount     int
	RetryCount   int
	ExecutionMs  int64
	ErrorMessage string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, in RecordInput) (Entry, error) {
	query := `
INSERT INTO query_history (question, sql_query, success, row_count, retry_count, execution_ms, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at`

	entry := Entry{
		Question:     in.Question,
		SQLQuery:     in.SQLQuery,
		Success:      in.Success,
		RowCount:     in.RowCount,
		RetryCount:   in.RetryCount,
		ExecutionMs:  in.ExecutionMs,
		ErrorMessage: in.ErrorMessage,
	}
	var errorMessage any
	if in.ErrorMessage != "" {
		errorMessage = in.ErrorMessage
	}
	if err := r.db.QueryRowContext(ctx, query,
		in.Question,
		in.SQLQuery,
		in.Success,
		in.RowCount,
		in.RetryCount,
		in.ExecutionMs,
		errorMessage,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return Entry{}, fmt.Errorf("record query history: %w", err)
	}
	return entry, nil
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
SELECT id, question, sql_query, success, row_count, retry_count, execution_ms, error_message, created_at
FROM query_history
ORDER BY id DESC
LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var errorMessage sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.Question,
			&entry.SQLQuery,
			&entry.Success,
			&entry.RowCount,
			&entry.RetryCount,
			&entry.ExecutionMs,
			&errorMessage,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan query history row: %w", err)
		}
		entry.ErrorMessage = errorMessage.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query history rows: %w", err)
	}
	return entries, nil
}
