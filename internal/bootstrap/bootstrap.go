package bootstrap

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	sessioninadapter "readtrack/internal/modules/session/adapter/in"
	sessionoutadapter "readtrack/internal/modules/session/adapter/out"
	sessiondto "readtrack/internal/modules/session/dto"
	sessionout "readtrack/internal/modules/session/port/out"
	sessionservice "readtrack/internal/modules/session/service"
	sessionusecase "readtrack/internal/modules/session/usecase"
	statsinadapter "readtrack/internal/modules/stats/adapter/in"
	statsoutadapter "readtrack/internal/modules/stats/adapter/out"
	statsservice "readtrack/internal/modules/stats/service"
	statsusecase "readtrack/internal/modules/stats/usecase"
	"readtrack/internal/platform/clock"
	"readtrack/internal/platform/config"
	"readtrack/internal/platform/id"
	"readtrack/internal/platform/logging"
	"readtrack/internal/platform/sqlitedb"
	uiapp "readtrack/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     *slog.Logger
	SessionCLI sessioninadapter.CLIHandler
	StatsCLI   statsinadapter.CLIHandler

	db        *sql.DB
	logOutput io.Writer

	mu       sync.Mutex
	displays []*sessionoutadapter.PluginDisplay
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, logOutput io.Writer) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}
	logger = logging.OrDiscard(logger)

	db, err := sqlitedb.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := sessionoutadapter.NewSQLiteStore(db, clk, ids, cfg.Location)

	var sessions sessionout.SessionStore = store
	if cfg.Journal {
		sessions = sessionoutadapter.NewJournalStore(store, store, cfg.JournalDir(), clk, cfg.Location, logger)
	}
	registry, err := sessionservice.NewRegistry(sessionservice.RegistryOptions{
		Store:        sessions,
		Clock:        clk,
		Logger:       logger,
		TickInterval: cfg.TickInterval,
		StopTimeout:  cfg.StopTimeout,
		PushTimeout:  cfg.PushTimeout,
		Shards:       cfg.Shards,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("new session registry: %w", err)
	}
	sessionUC := sessionusecase.NewInteractor(sessionusecase.Dependencies{
		Registry:   registry,
		Categories: store,
		Notes:      store,
		Recovery:   store,
		Clock:      clk,
		Logger:     logger,
	})

	statsSvc := statsservice.NewReportService(statsoutadapter.NewSQLiteHistory(db), statsservice.ReportOptions{
		Location:           cfg.Location,
		WindowDays:         cfg.StatsWindowDays,
		StreakLookbackDays: cfg.StreakLookbackDays,
	})
	statsUC := statsusecase.NewInteractor(statsSvc, clk, logger)

	return &App{
		Config:     cfg,
		Logger:     logger,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		StatsCLI:   statsinadapter.NewCLIHandler(statsUC),
		db:         db,
		logOutput:  logOutput,
	}, nil
}

// OpenPluginDisplay launches a display plugin that lives until Close.
func (a *App) OpenPluginDisplay(ctx context.Context, binary string) (*sessionoutadapter.PluginDisplay, error) {
	display, err := sessionoutadapter.OpenPluginDisplay(ctx, sessionoutadapter.PluginDisplayOptions{
		Binary:    binary,
		LogOutput: a.logOutput,
	})
	if err != nil {
		return nil, err
	}
	a.Logger.Info("display plugin started", "plugin", display.Name(), "binary", binary)
	a.mu.Lock()
	a.displays = append(a.displays, display)
	a.mu.Unlock()
	return display, nil
}

// Shutdown stops every live session. Errors are logged; the first is
// returned.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*a.Config.StopTimeout+time.Second)
	defer cancel()
	errs := a.SessionCLI.Shutdown(ctx)
	for _, err := range errs {
		a.Logger.Error("shutdown session", "error", err)
	}
	return errors.Join(errs...)
}

func (a *App) Close() error {
	a.mu.Lock()
	displays := a.displays
	a.displays = nil
	a.mu.Unlock()
	for _, d := range displays {
		d.Close()
	}
	return a.db.Close()
}

// RunTimer runs the full-screen timer until the user quits or ctx ends.
// The returned summary is only meaningful when ok is true.
func RunTimer(ctx context.Context, app *App, category, target string) (summary sessiondto.StopOutput, ok bool, err error) {
	sink := uiapp.NewSink()
	model := uiapp.NewModel(app.SessionCLI, sink, app.Config.UserID, category, target)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	sink.Bind(program)
	final, runErr := program.Run()
	sink.Close()

	shutdownErr := app.Shutdown(ctx)
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return sessiondto.StopOutput{}, false, fmt.Errorf("run timer: %w", runErr)
	}
	if m, isModel := final.(uiapp.Model); isModel {
		summary, ok = m.Summary()
	}
	return summary, ok, shutdownErr
}

// RunPlain runs a session against sink until a line arrives on in or ctx
// ends, then stops it.
func RunPlain(ctx context.Context, app *App, sink sessiondto.DisplaySink, category, target string, in io.Reader) (sessiondto.StopOutput, error) {
	if _, err := app.SessionCLI.Start(ctx, app.Config.UserID, category, sink, target); err != nil {
		return sessiondto.StopOutput{}, err
	}
	line := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(in).ReadString('\n')
		close(line)
	}()
	select {
	case <-line:
		return app.SessionCLI.Stop(context.WithoutCancel(ctx), app.Config.UserID)
	case <-ctx.Done():
		return sessiondto.StopOutput{}, app.Shutdown(ctx)
	}
}
