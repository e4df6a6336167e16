package service

import (
	"context"
	"errors"
	"fmt"

	"audioscribe/internal/models"
	"audioscribe/internal/repository"
)

// ErrSummaryNotFound covers both a missing id and an id owned by another
// user, so ids don't leak ownership information.
var ErrSummaryNotFound = errors.New("summary not found")

// LibraryService exposes a user's saved summaries for the review page.
type LibraryService struct {
	summaryRepo repository.SummaryRepo
	eventRepo   repository.EventRepo
}

func NewLibraryService(summaryRepo repository.SummaryRepo, eventRepo repository.EventRepo) *LibraryService {
	return &LibraryService{summaryRepo: summaryRepo, eventRepo: eventRepo}
}

var _ Library = (*LibraryService)(nil)

// List returns the user's saved summaries, newest first.
func (s *LibraryService) List(ctx context.Context, username string) ([]models.SavedSummary, error) {
	return s.summaryRepo.List(ctx, username)
}

// Delete removes exactly one summary by surrogate id. Deleting a missing or
// foreign id is a no-op that reports ErrSummaryNotFound.
func (s *LibraryService) Delete(ctx context.Context, p Principal, id int64) error {
	affected, err := s.summaryRepo.Delete(ctx, p.Username, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSummaryNotFound
	}

	_ = s.eventRepo.Append(ctx, models.ActivityEvent{
		Username:    p.Username,
		Type:        "DELETE",
		Description: fmt.Sprintf("Summary %d deleted", id),
		Metadata:    map[string]any{"summary_id": id},
	})
	return nil
}
