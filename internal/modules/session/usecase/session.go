package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"readtrack/internal/modules/session/domain"
	sessiondto "readtrack/internal/modules/session/dto"
	sessionin "readtrack/internal/modules/session/port/in"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/modules/session/service"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
	"readtrack/internal/platform/logging"
)

type Dependencies struct {
	Registry   *service.Registry
	Categories sessionout.CategoryStore
	Notes      sessionout.NoteStore
	Recovery   sessionout.SessionRecovery
	Clock      clock.Clock
	Logger     *slog.Logger
}

type Interactor struct {
	registry   *service.Registry
	categories sessionout.CategoryStore
	notes      sessionout.NoteStore
	recovery   sessionout.SessionRecovery
	clock      clock.Clock
	logger     *slog.Logger
}

func NewInteractor(deps Dependencies) sessionin.Usecase {
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Interactor{
		registry:   deps.Registry,
		categories: deps.Categories,
		notes:      deps.Notes,
		recovery:   deps.Recovery,
		clock:      clk,
		logger:     logging.OrDiscard(deps.Logger),
	}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	category, err := i.resolveCategory(ctx, input.UserID, input.CategoryName)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	handle, err := i.registry.StartSession(ctx, service.StartRequest{
		UserID:       input.UserID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Sink:         input.Sink,
		Target:       input.Target,
	})
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	return sessiondto.StartOutput{
		SessionID:    handle.ID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		StartedAt:    handle.StartedAt,
	}, nil
}

// Stop is idempotent: stopping without a running session is not an error.
func (i *Interactor) Stop(ctx context.Context, input sessiondto.StopInput) (sessiondto.StopOutput, error) {
	res, err := i.registry.Stop(ctx, input.UserID)
	switch {
	case errors.Is(err, apperrors.ErrNotRunning):
		return sessiondto.StopOutput{}, nil
	case err != nil && !errors.Is(err, apperrors.ErrStoreUnavailable):
		return sessiondto.StopOutput{}, err
	}
	s := res.Session
	return sessiondto.StopOutput{
		Stopped:         true,
		SessionID:       s.ID,
		CategoryName:    s.CategoryName,
		DurationSeconds: s.DurationSeconds,
		NoteCount:       s.NoteCount,
		MediaNoteCount:  s.MediaNoteCount,
		Persisted:       res.Persisted,
	}, nil
}

// AddNote stores a note and counts it toward the running session. Without a
// running session the note needs a category of its own.
func (i *Interactor) AddNote(ctx context.Context, input sessiondto.AddNoteInput) (sessiondto.AddNoteOutput, error) {
	if i.notes == nil {
		return sessiondto.AddNoteOutput{}, fmt.Errorf("note store is not configured")
	}
	note := domain.Note{UserID: input.UserID, Text: strings.TrimSpace(input.Text), CreatedAt: i.clock.Now()}
	if input.Media != nil {
		kind, err := domain.ParseMediaKind(input.Media.Kind)
		if err != nil {
			return sessiondto.AddNoteOutput{}, err
		}
		media, err := domain.NewMediaNote(kind, input.Media.FileRef, input.Media.Caption)
		if err != nil {
			return sessiondto.AddNoteOutput{}, err
		}
		note.Media = &media
	} else if note.Text == "" {
		return sessiondto.AddNoteOutput{}, fmt.Errorf("%w: note text is required", apperrors.ErrInvalidInput)
	}

	status := i.registry.Status(input.UserID)
	if status.Running {
		note.SessionID = status.SessionID
		note.CategoryID = status.CategoryID
	} else {
		if strings.TrimSpace(input.CategoryName) == "" {
			return sessiondto.AddNoteOutput{}, fmt.Errorf("%w: a category is required when no session is running", apperrors.ErrInvalidInput)
		}
		category, err := i.resolveCategory(ctx, input.UserID, input.CategoryName)
		if err != nil {
			return sessiondto.AddNoteOutput{}, err
		}
		note.CategoryID = category.ID
	}

	noteID, err := i.notes.SaveNote(ctx, note)
	if err != nil {
		return sessiondto.AddNoteOutput{}, fmt.Errorf("%w: save note: %w", apperrors.ErrStoreUnavailable, err)
	}
	out := sessiondto.AddNoteOutput{NoteID: noteID, SessionID: note.SessionID, CategoryID: note.CategoryID}
	if note.SessionID == "" {
		return out, nil
	}
	switch err := i.registry.IncrementCounter(input.UserID, note.Counter()); {
	case err == nil:
		out.Counted = true
	case errors.Is(err, apperrors.ErrNotRunning):
		i.logger.Debug("note saved after session stopped", "user_id", input.UserID, "session_id", note.SessionID)
	default:
		return out, err
	}
	return out, nil
}

func (i *Interactor) Status(_ context.Context, userID int64) (sessiondto.StatusOutput, error) {
	s := i.registry.Status(userID)
	return sessiondto.StatusOutput{
		Running:        s.Running,
		State:          string(s.State),
		SessionID:      s.SessionID,
		CategoryID:     s.CategoryID,
		CategoryName:   s.CategoryName,
		ElapsedSeconds: s.ElapsedSeconds,
		NoteCount:      s.NoteCount,
		MediaNoteCount: s.MediaNoteCount,
	}, nil
}

// Recover marks sessions left open by a crashed process as interrupted.
func (i *Interactor) Recover(ctx context.Context, input sessiondto.RecoverInput) (sessiondto.RecoverOutput, error) {
	if i.recovery == nil {
		return sessiondto.RecoverOutput{}, fmt.Errorf("session recovery is not configured")
	}
	if i.registry.Status(input.UserID).Running {
		return sessiondto.RecoverOutput{}, fmt.Errorf("%w: stop the running session before recovering", apperrors.ErrAlreadyRunning)
	}
	n, err := i.recovery.RecoverInterrupted(ctx, input.UserID, i.clock.Now())
	if err != nil {
		return sessiondto.RecoverOutput{}, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}
	if n > 0 {
		i.logger.Info("recovered interrupted sessions", "user_id", input.UserID, "count", n)
	}
	return sessiondto.RecoverOutput{Recovered: n}, nil
}

func (i *Interactor) OnShutdown(ctx context.Context) []error {
	return i.registry.ShutdownAll(ctx)
}

func (i *Interactor) resolveCategory(ctx context.Context, userID int64, name string) (sessionout.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sessionout.Category{}, nil
	}
	if i.categories == nil {
		return sessionout.Category{}, fmt.Errorf("category store is not configured")
	}
	category, err := i.categories.EnsureCategory(ctx, userID, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return sessionout.Category{}, err
		}
		return sessionout.Category{}, fmt.Errorf("%w: resolve category: %w", apperrors.ErrStoreUnavailable, err)
	}
	return category, nil
}
