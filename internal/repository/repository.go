package repository

import (
	"context"
	"database/sql"
	"time"

	"audioscribe/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type SummaryRepo interface {
	Save(ctx context.Context, s models.SavedSummary) (int64, error)
	List(ctx context.Context, username string) ([]models.SavedSummary, error)
	Delete(ctx context.Context, username string, id int64) (int64, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, username string, from, to time.Time, typ string) ([]models.ActivityEvent, error)
}

type Repository struct {
	Auth      Authorization
	Summaries SummaryRepo
	Events    EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:      NewUserRepository(db),
		Summaries: NewSummarySQLite(db),
		Events:    NewEventSQLite(db),
	}
}
