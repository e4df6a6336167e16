package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"audioscribe/internal/models"
)

type SummarySQLite struct {
	db *sql.DB
}

func NewSummarySQLite(db *sql.DB) *SummarySQLite { return &SummarySQLite{db: db} }

var _ SummaryRepo = (*SummarySQLite)(nil)

const (
	insertSummarySQL = `
		INSERT INTO summaries (username, title, summary, tags, date)
		VALUES (?, ?, ?, ?, ?)
	`

	// Newest first; the surrogate id breaks ties within one timestamp.
	selectSummariesSQL = `
		SELECT id, username, title, summary, tags, date
		FROM summaries WHERE username = ?
		ORDER BY date DESC, id DESC
	`

	deleteSummarySQL = `DELETE FROM summaries WHERE username = ? AND id = ?`
)

// sqliteTimeLayout is the SQLite TIMESTAMP format "YYYY-MM-DD HH:MM:SS".
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Save inserts a new summary and returns its surrogate id.
// If CreatedAt is zero the server timestamp is used.
func (r *SummarySQLite) Save(ctx context.Context, s models.SavedSummary) (int64, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	} else {
		s.CreatedAt = s.CreatedAt.UTC()
	}

	res, err := r.db.ExecContext(ctx, insertSummarySQL,
		s.Username,
		s.Title,
		s.Body,
		s.Tags,
		s.CreatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert summary for %q: %w", s.Username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for summary: %w", err)
	}
	return id, nil
}

// List returns all summaries for a user, newest first.
func (r *SummarySQLite) List(ctx context.Context, username string) ([]models.SavedSummary, error) {
	rows, err := r.db.QueryContext(ctx, selectSummariesSQL, username)
	if err != nil {
		return nil, fmt.Errorf("select summaries for %q: %w", username, err)
	}
	defer rows.Close()

	out := make([]models.SavedSummary, 0, 16)
	for rows.Next() {
		var s models.SavedSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.Title, &s.Body, &s.Tags, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the summary with the given id if it belongs to the user.
// Returns the number of rows removed (0 or 1).
func (r *SummarySQLite) Delete(ctx context.Context, username string, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteSummarySQL, username, id)
	if err != nil {
		return 0, fmt.Errorf("delete summary %d for %q: %w", id, username, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for summary delete: %w", err)
	}
	return affected, nil
}
