package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"

	"readtrack/internal/modules/session/domain"
	"readtrack/internal/modules/session/service"
	apperrors "readtrack/internal/platform/errors"
)

// Any sequence of start, stop and note operations behaves like a map of
// users to note counts with at most one session per user.
func TestRegistryFollowsSequentialModel(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		store := newFakeStore()
		reg, err := service.NewRegistry(service.RegistryOptions{
			Store:        store,
			Clock:        newFakeClock(),
			TickInterval: time.Hour,
			StopTimeout:  time.Second,
			PushTimeout:  time.Second,
			Shards:       rapid.IntRange(1, 4).Draw(rt, "shards"),
		})
		if err != nil {
			rt.Fatalf("new registry: %v", err)
		}
		defer reg.ShutdownAll(context.Background())

		model := map[int64]int{}
		ops := rapid.IntRange(1, 40).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			user := rapid.Int64Range(1, 3).Draw(rt, "user")
			_, running := model[user]
			switch rapid.SampledFrom([]string{"start", "stop", "note"}).Draw(rt, "op") {
			case "start":
				_, err := reg.StartSession(context.Background(), service.StartRequest{UserID: user, Sink: &pushOnlySink{}})
				if running && !errors.Is(err, apperrors.ErrAlreadyRunning) {
					rt.Fatalf("second start for %d returned %v", user, err)
				}
				if !running {
					if err != nil {
						rt.Fatalf("start for %d: %v", user, err)
					}
					model[user] = 0
				}
			case "stop":
				res, err := reg.Stop(context.Background(), user)
				if !running {
					if !errors.Is(err, apperrors.ErrNotRunning) {
						rt.Fatalf("stop without session returned %v", err)
					}
					continue
				}
				if err != nil {
					rt.Fatalf("stop for %d: %v", user, err)
				}
				if res.Session.NoteCount != model[user] || res.Session.Status != domain.StatusCompleted {
					rt.Fatalf("stop result %+v, model notes %d", res.Session, model[user])
				}
				delete(model, user)
			case "note":
				err := reg.IncrementCounter(user, domain.CounterNote)
				if running {
					if err != nil {
						rt.Fatalf("increment for %d: %v", user, err)
					}
					model[user]++
				} else if !errors.Is(err, apperrors.ErrNotRunning) {
					rt.Fatalf("increment without session returned %v", err)
				}
			}
			if reg.Active() != len(model) {
				rt.Fatalf("registry has %d sessions, model %d", reg.Active(), len(model))
			}
			for u, notes := range model {
				if s := reg.Status(u); !s.Running || s.NoteCount != notes {
					rt.Fatalf("status for %d = %+v, want %d notes", u, s, notes)
				}
			}
		}
	})
}
