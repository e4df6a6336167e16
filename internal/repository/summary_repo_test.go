package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"audioscribe/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockSummaryRepo(t *testing.T) (*SummarySQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewSummarySQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestSummarySQLite_Save(t *testing.T) {
	tests := []struct {
		name       string
		in         models.SavedSummary
		mockExpect func(sqlmock.Sqlmock)
		wantID     int64
		wantErr    bool
	}{
		{
			name: "success with server timestamp",
			in: models.SavedSummary{
				Username: "warren",
				Title:    "Test Title",
				Body:     "Hello, my name is warren and I like to party",
				Tags:     "tag1,tag2",
			},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertSummarySQL)).
					WithArgs("warren", "Test Title", "Hello, my name is warren and I like to party", "tag1,tag2", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(11, 1))
			},
			wantID: 11,
		},
		{
			name: "empty title and tags are allowed",
			in: models.SavedSummary{
				Username: "warren",
				Body:     "body only",
			},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertSummarySQL)).
					WithArgs("warren", "", "body only", "", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(12, 1))
			},
			wantID: 12,
		},
		{
			name: "exec error",
			in: models.SavedSummary{
				Username: "warren",
				Body:     "body",
			},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertSummarySQL)).
					WillReturnError(errors.New("db exec failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockSummaryRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			id, err := repo.Save(context.Background(), tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Fatalf("unexpected id: want %d, got %d", tt.wantID, id)
			}
		})
	}
}

func TestSummarySQLite_List(t *testing.T) {
	repo, mock, cleanup := newMockSummaryRepo(t)
	defer cleanup()

	newer := time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)
	older := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "username", "title", "summary", "tags", "date"}).
		AddRow(2, "warren", "Second", "newer body", "tag1,tag2", newer).
		AddRow(1, "warren", "First", "older body", "", older)
	mock.ExpectQuery(regexp.QuoteMeta(selectSummariesSQL)).
		WithArgs("warren").
		WillReturnRows(rows)

	out, err := repo.List(context.Background(), "warren")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(out))
	}
	if out[0].ID != 2 || out[0].Title != "Second" {
		t.Fatalf("expected newest first, got %+v", out[0])
	}
	if out[0].Tags != "tag1,tag2" {
		t.Fatalf("tags did not round-trip: %q", out[0].Tags)
	}
	if !out[0].CreatedAt.Equal(newer) {
		t.Fatalf("unexpected timestamp: %v", out[0].CreatedAt)
	}
}

func TestSummarySQLite_Delete(t *testing.T) {
	tests := []struct {
		name         string
		id           int64
		mockExpect   func(sqlmock.Sqlmock)
		wantAffected int64
		wantErr      bool
	}{
		{
			name: "deletes matching row",
			id:   5,
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(deleteSummarySQL)).
					WithArgs("warren", int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantAffected: 1,
		},
		{
			name: "missing row is a no-op",
			id:   999,
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(deleteSummarySQL)).
					WithArgs("warren", int64(999)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantAffected: 0,
		},
		{
			name: "exec error",
			id:   5,
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(deleteSummarySQL)).
					WithArgs("warren", int64(5)).
					WillReturnError(errors.New("db exec failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockSummaryRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			affected, err := repo.Delete(context.Background(), "warren", tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if affected != tt.wantAffected {
				t.Fatalf("unexpected affected count: want %d, got %d", tt.wantAffected, affected)
			}
		})
	}
}
