package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
)

// timerTask pushes the elapsed clock of one session to its display until
// cancelled or until the display fails.
type timerTask struct {
	sessionID   string
	userID      int64
	startedAt   time.Time
	sink        sessionout.DisplaySink
	target      string
	clock       clock.Clock
	interval    time.Duration
	pushTimeout time.Duration
	logger      *slog.Logger
	onFailure   func()
}

func (t timerTask) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			return
		}
		if !t.push(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t timerTask) push(ctx context.Context) bool {
	pushCtx, cancel := context.WithTimeout(ctx, t.pushTimeout)
	defer cancel()
	text := domain.FormatClock(domain.Session{StartedAt: t.startedAt}.Elapsed(t.clock.Now()))
	err := t.sink.Push(pushCtx, t.target, text)
	switch {
	case err == nil, errors.Is(err, apperrors.ErrUnchanged):
		return true
	case ctx.Err() != nil:
		// Stopped mid-push.
		return false
	default:
		t.logger.Warn("display push failed, timer stopped", "user_id", t.userID, "session_id", t.sessionID, "target", t.target, "error", err)
		if t.onFailure != nil {
			t.onFailure()
		}
		return false
	}
}
