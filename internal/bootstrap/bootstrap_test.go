package bootstrap_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"readtrack/internal/bootstrap"
	sessionoutadapter "readtrack/internal/modules/session/adapter/out"
	"readtrack/internal/platform/config"
	"readtrack/internal/platform/logging"
)

func newApp(t *testing.T, journal bool) *bootstrap.App {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Journal = journal
	app, err := bootstrap.New(context.Background(), cfg, logging.Discard(), nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func TestRunPlainRecordsSessionInStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	app := newApp(t, true)
	var screen bytes.Buffer

	out, err := bootstrap.RunPlain(ctx, app, sessionoutadapter.NewWriterDisplay(&screen), "Go", "main", strings.NewReader("\n"))
	if err != nil {
		t.Fatalf("run plain: %v", err)
	}
	if !out.Stopped || !out.Persisted || out.CategoryName != "Go" {
		t.Fatalf("stop output = %+v", out)
	}

	if _, err := app.SessionCLI.Note(ctx, app.Config.UserID, "loose thought", "Go"); err != nil {
		t.Fatalf("note: %v", err)
	}
	report, err := app.StatsCLI.Report(ctx, app.Config.UserID, 7)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	r := report.Report
	if r.Lifetime.Notes != 1 || r.Lifetime.Categories != 1 || r.Streak != 1 {
		t.Fatalf("report = %+v", r.Lifetime)
	}
	if len(r.Daily) != 7 {
		t.Fatalf("daily = %d", len(r.Daily))
	}
}

func TestShutdownWithoutSessions(t *testing.T) {
	t.Parallel()
	app := newApp(t, false)
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
