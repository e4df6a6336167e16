package service

import (
	"context"
	"time"
)

const defaultIdleTTL = 30 * time.Minute

// JanitorService reaps idle sessions so abandoned temp audio files don't
// accumulate on disk.
type JanitorService struct {
	sessions *SessionService
	idleTTL  time.Duration
}

func NewJanitorService(sessions *SessionService, idleTTL time.Duration) *JanitorService {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &JanitorService{sessions: sessions, idleTTL: idleTTL}
}

var _ Janitor = (*JanitorService)(nil)

// Run ticks at the given interval until ctx is canceled.
func (j *JanitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.sessions.ReapIdle(j.idleTTL)
		}
	}
}
