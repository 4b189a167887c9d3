package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
	"readtrack/internal/platform/logging"
)

const (
	DefaultTickInterval = time.Second
	DefaultStopTimeout  = 2 * time.Second
	DefaultPushTimeout  = 3 * time.Second
	DefaultShards       = 32
)

type RegistryOptions struct {
	Store  sessionout.SessionStore
	Clock  clock.Clock
	Logger *slog.Logger
	// TickInterval is the pause between display pushes.
	TickInterval time.Duration
	// StopTimeout bounds how long a stop waits for the timer task to exit.
	StopTimeout time.Duration
	// PushTimeout bounds a single display push.
	PushTimeout time.Duration
	Shards      int
}

type StartRequest struct {
	UserID       int64
	CategoryID   int64
	CategoryName string
	Sink         sessionout.DisplaySink
	Target       string
}

type SessionHandle struct {
	ID         string
	UserID     int64
	CategoryID int64
	StartedAt  time.Time

	clock clock.Clock
}

// Elapsed is the live session age.
func (h SessionHandle) Elapsed() time.Duration {
	if h.clock == nil {
		return 0
	}
	return domain.Session{StartedAt: h.StartedAt}.Elapsed(h.clock.Now())
}

type StopResult struct {
	// Session is the final snapshot; its status is completed or interrupted.
	Session   domain.Session
	Persisted bool
	// TimedOut is set when the timer task was abandoned after StopTimeout.
	TimedOut bool
}

type StatusSnapshot struct {
	Running        bool
	State          domain.Status
	SessionID      string
	CategoryID     int64
	CategoryName   string
	ElapsedSeconds int
	NoteCount      int
	MediaNoteCount int
}

type RegistryMetrics struct {
	Active               int
	Started              uint64
	Completed            uint64
	Interrupted          uint64
	DisplayFailures      uint64
	CancellationTimeouts uint64
	StoreFailures        uint64
}

type entry struct {
	mu sync.Mutex
	// ready is false while the store is still creating the session row.
	ready    bool
	session  domain.Session
	sink     sessionout.DisplaySink
	target   string
	cancel   context.CancelFunc
	done     <-chan struct{}
	released chan struct{}
}

type shard struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// Registry owns the live sessions, at most one per user. Store and sink calls
// never happen while a shard lock is held.
type Registry struct {
	store        sessionout.SessionStore
	clock        clock.Clock
	logger       *slog.Logger
	tickInterval time.Duration
	stopTimeout  time.Duration
	pushTimeout  time.Duration
	shards       []*shard

	closed atomic.Bool
	active atomic.Int64

	started         atomic.Uint64
	completed       atomic.Uint64
	interrupted     atomic.Uint64
	displayFailures atomic.Uint64
	cancelTimeouts  atomic.Uint64
	storeFailures   atomic.Uint64
}

func NewRegistry(opts RegistryOptions) (*Registry, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: session store is required", apperrors.ErrInvalidInput)
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = DefaultPushTimeout
	}
	if opts.Shards <= 0 {
		opts.Shards = DefaultShards
	}
	shards := make([]*shard, opts.Shards)
	for i := range shards {
		shards[i] = &shard{entries: map[int64]*entry{}}
	}
	return &Registry{
		store:        opts.Store,
		clock:        opts.Clock,
		logger:       logging.OrDiscard(opts.Logger),
		tickInterval: opts.TickInterval,
		stopTimeout:  opts.StopTimeout,
		pushTimeout:  opts.PushTimeout,
		shards:       shards,
	}, nil
}

func (r *Registry) shardFor(userID int64) *shard {
	return r.shards[uint64(userID)%uint64(len(r.shards))]
}

func (r *Registry) lookup(userID int64) *entry {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.entries[userID]
}

func (r *Registry) release(userID int64, e *entry) {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	if sh.entries[userID] == e {
		delete(sh.entries, userID)
	}
	sh.mu.Unlock()
	close(e.released)
}

// StartSession reserves the user's slot, creates the session row and starts
// its timer task. The task outlives ctx; only a stop ends it.
func (r *Registry) StartSession(ctx context.Context, req StartRequest) (SessionHandle, error) {
	if req.Sink == nil {
		return SessionHandle{}, fmt.Errorf("%w: display sink is required", apperrors.ErrInvalidInput)
	}
	e := &entry{released: make(chan struct{})}
	sh := r.shardFor(req.UserID)
	sh.mu.Lock()
	// Checked under the shard lock so ShutdownAll's snapshot sees every
	// reservation made before it closed the registry.
	if r.closed.Load() {
		sh.mu.Unlock()
		return SessionHandle{}, apperrors.ErrShuttingDown
	}
	if _, exists := sh.entries[req.UserID]; exists {
		sh.mu.Unlock()
		r.logger.Debug("start rejected, session already running", "user_id", req.UserID)
		return SessionHandle{}, apperrors.ErrAlreadyRunning
	}
	sh.entries[req.UserID] = e
	sh.mu.Unlock()

	startedAt := r.clock.Now()
	id, err := r.store.CreateSession(ctx, req.UserID, req.CategoryID, startedAt)
	if err != nil {
		r.release(req.UserID, e)
		r.storeFailures.Add(1)
		r.logger.Error("create session failed", "user_id", req.UserID, "error", err)
		return SessionHandle{}, fmt.Errorf("%w: create session: %w", apperrors.ErrStoreUnavailable, err)
	}

	session := domain.Session{
		ID:           id,
		UserID:       req.UserID,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		StartedAt:    startedAt,
		Status:       domain.StatusRunning,
	}

	e.mu.Lock()
	if r.closed.Load() {
		e.mu.Unlock()
		r.abortStart(ctx, req.UserID, e, session)
		return SessionHandle{}, apperrors.ErrShuttingDown
	}
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	e.session = session
	e.sink = req.Sink
	e.target = req.Target
	e.cancel = cancel
	e.done = done
	e.ready = true
	e.mu.Unlock()

	r.active.Add(1)
	r.started.Add(1)
	task := timerTask{
		sessionID:   id,
		userID:      req.UserID,
		startedAt:   startedAt,
		sink:        req.Sink,
		target:      req.Target,
		clock:       r.clock,
		interval:    r.tickInterval,
		pushTimeout: r.pushTimeout,
		logger:      r.logger,
		onFailure:   func() { r.displayFailures.Add(1) },
	}
	go task.run(taskCtx, done)

	r.logger.Info("session started", "user_id", req.UserID, "session_id", id, "category_id", req.CategoryID)
	return SessionHandle{ID: id, UserID: req.UserID, CategoryID: req.CategoryID, StartedAt: startedAt, clock: r.clock}, nil
}

// abortStart handles a start that lost the race against ShutdownAll after
// its row was created.
func (r *Registry) abortStart(ctx context.Context, userID int64, e *entry, session domain.Session) {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.stopTimeout)
	defer cancel()
	if err := r.store.InterruptSession(storeCtx, session.ID, 0, 0, 0); err != nil {
		r.storeFailures.Add(1)
		r.logger.Error("mark aborted session interrupted", "user_id", userID, "session_id", session.ID, "error", err)
	}
	r.interrupted.Add(1)
	r.release(userID, e)
}

// StopSession stops the user's session and returns its duration in seconds.
func (r *Registry) StopSession(ctx context.Context, userID int64) (int, error) {
	res, err := r.Stop(ctx, userID)
	return res.Session.DurationSeconds, err
}

// Stop is StopSession with the full outcome. On a store failure the result
// is still filled in and the slot is released.
func (r *Registry) Stop(ctx context.Context, userID int64) (StopResult, error) {
	e := r.lookup(userID)
	if e == nil {
		return StopResult{}, apperrors.ErrNotRunning
	}
	stoppedAt, ok := r.beginStop(e)
	if !ok {
		r.logger.Debug("stop ignored, no running session", "user_id", userID)
		if r.isReady(e) {
			// Another stop owns the session; return once it has freed the slot.
			if err := r.awaitRelease(ctx, e); err != nil {
				r.logger.Warn("concurrent stop still releasing", "user_id", userID, "error", err)
			}
		}
		return StopResult{}, apperrors.ErrNotRunning
	}
	return r.finish(ctx, userID, e, stoppedAt, false)
}

func (r *Registry) isReady(e *entry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// awaitRelease waits, at most twice the stop timeout, for whoever owns e to
// drop it from the registry.
func (r *Registry) awaitRelease(ctx context.Context, e *entry) error {
	timer := time.NewTimer(2 * r.stopTimeout)
	defer timer.Stop()
	select {
	case <-e.released:
		return nil
	case <-timer.C:
		return apperrors.ErrCancellationTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) beginStop(e *entry) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready || e.session.Status != domain.StatusRunning {
		return time.Time{}, false
	}
	if err := e.session.Transition(domain.StatusStopping); err != nil {
		return time.Time{}, false
	}
	return r.clock.Now(), true
}

func (r *Registry) finish(ctx context.Context, userID int64, e *entry, stoppedAt time.Time, shutdown bool) (StopResult, error) {
	e.mu.Lock()
	session := e.session
	e.mu.Unlock()

	e.cancel()
	exited := r.awaitTask(ctx, userID, session.ID, e.done)

	duration := int(stoppedAt.Sub(session.StartedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}
	session.DurationSeconds = duration
	session.EndedAt = stoppedAt

	var persistErr error
	if shutdown && ctx.Err() != nil {
		persistErr = ctx.Err()
	} else {
		persistErr = r.store.CompleteSession(ctx, session.ID, float64(duration), session.NoteCount, session.MediaNoteCount)
	}

	final := domain.StatusCompleted
	if persistErr != nil {
		r.storeFailures.Add(1)
		r.logger.Error("complete session failed", "user_id", userID, "session_id", session.ID, "error", persistErr)
		if shutdown {
			final = domain.StatusInterrupted
			r.markInterrupted(ctx, userID, session)
		}
	}

	e.mu.Lock()
	_ = e.session.Transition(final)
	e.session.DurationSeconds = duration
	e.session.EndedAt = stoppedAt
	session = e.session
	e.mu.Unlock()

	r.release(userID, e)
	r.active.Add(-1)
	if final == domain.StatusCompleted {
		r.completed.Add(1)
	} else {
		r.interrupted.Add(1)
	}
	if exited {
		r.clearDisplay(ctx, userID, e)
	}

	r.logger.Info("session stopped", "user_id", userID, "session_id", session.ID, "status", string(final), "duration_seconds", duration)
	res := StopResult{Session: session, Persisted: persistErr == nil, TimedOut: !exited}
	if persistErr != nil {
		return res, fmt.Errorf("%w: complete session %s: %w", apperrors.ErrStoreUnavailable, session.ID, persistErr)
	}
	return res, nil
}

// awaitTask waits for the timer task to exit. A task that outlives the stop
// timeout, or the caller's context, is abandoned.
func (r *Registry) awaitTask(ctx context.Context, userID int64, sessionID string, done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
	}
	timer := time.NewTimer(r.stopTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
	case <-ctx.Done():
	}
	r.cancelTimeouts.Add(1)
	r.logger.Warn("abandoning timer task", "user_id", userID, "session_id", sessionID, "error", apperrors.ErrCancellationTimeout)
	return false
}

func (r *Registry) markInterrupted(ctx context.Context, userID int64, session domain.Session) {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.stopTimeout)
	defer cancel()
	err := r.store.InterruptSession(storeCtx, session.ID, float64(session.DurationSeconds), session.NoteCount, session.MediaNoteCount)
	if err != nil {
		r.logger.Error("mark session interrupted failed", "user_id", userID, "session_id", session.ID, "error", err)
	}
}

func (r *Registry) clearDisplay(ctx context.Context, userID int64, e *entry) {
	clearer, ok := e.sink.(sessionout.DisplayClearer)
	if !ok {
		return
	}
	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.pushTimeout)
	defer cancel()
	if err := clearer.Clear(clearCtx, e.target); err != nil && !errors.Is(err, apperrors.ErrUnchanged) {
		r.logger.Warn("clear display failed", "user_id", userID, "target", e.target, "error", err)
	}
}

// IncrementCounter bumps a note counter of the user's running session.
// Counters are frozen once a stop has begun.
func (r *Registry) IncrementCounter(userID int64, kind domain.CounterKind) error {
	e := r.lookup(userID)
	if e == nil {
		return apperrors.ErrNotRunning
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready || e.session.Status != domain.StatusRunning {
		return apperrors.ErrNotRunning
	}
	if err := e.session.Increment(kind); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	return nil
}

func (r *Registry) Status(userID int64) StatusSnapshot {
	e := r.lookup(userID)
	if e == nil {
		return StatusSnapshot{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return StatusSnapshot{}
	}
	s := e.session
	return StatusSnapshot{
		Running:        s.Status == domain.StatusRunning || s.Status == domain.StatusStopping,
		State:          s.Status,
		SessionID:      s.ID,
		CategoryID:     s.CategoryID,
		CategoryName:   s.CategoryName,
		ElapsedSeconds: int(s.Elapsed(r.clock.Now()) / time.Second),
		NoteCount:      s.NoteCount,
		MediaNoteCount: s.MediaNoteCount,
	}
}

// ShutdownAll refuses new starts and stops every live session concurrently.
// Sessions whose completion cannot be confirmed end interrupted.
func (r *Registry) ShutdownAll(ctx context.Context) []error {
	r.closed.Store(true)

	type live struct {
		userID int64
		e      *entry
	}
	var all []live
	for _, sh := range r.shards {
		sh.mu.Lock()
		for userID, e := range sh.entries {
			all = append(all, live{userID: userID, e: e})
		}
		sh.mu.Unlock()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, l := range all {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.shutdownEntry(ctx, l.userID, l.e); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(all) > 0 {
		r.logger.Info("registry shut down", "sessions", len(all), "errors", len(errs))
	}
	return errs
}

func (r *Registry) shutdownEntry(ctx context.Context, userID int64, e *entry) error {
	stoppedAt, ok := r.beginStop(e)
	if ok {
		_, err := r.finish(ctx, userID, e, stoppedAt, true)
		if err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		return nil
	}
	// A start still creating its row or a concurrent stop releases the entry.
	if err := r.awaitRelease(ctx, e); err != nil {
		return fmt.Errorf("user %d: %w", userID, err)
	}
	return nil
}

func (r *Registry) Active() int {
	return int(r.active.Load())
}

func (r *Registry) Metrics() RegistryMetrics {
	return RegistryMetrics{
		Active:               r.Active(),
		Started:              r.started.Load(),
		Completed:            r.completed.Load(),
		Interrupted:          r.interrupted.Load(),
		DisplayFailures:      r.displayFailures.Load(),
		CancellationTimeouts: r.cancelTimeouts.Load(),
		StoreFailures:        r.storeFailures.Load(),
	}
}
