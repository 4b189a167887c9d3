package usecase

import (
	"context"
	"log/slog"

	"readtrack/internal/modules/stats/domain"
	statsdto "readtrack/internal/modules/stats/dto"
	statsin "readtrack/internal/modules/stats/port/in"
	"readtrack/internal/modules/stats/service"
	"readtrack/internal/platform/clock"
	"readtrack/internal/platform/logging"
)

type Interactor struct {
	svc    *service.ReportService
	clock  clock.Clock
	logger *slog.Logger
}

func NewInteractor(svc *service.ReportService, clk clock.Clock, logger *slog.Logger) statsin.Usecase {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Interactor{svc: svc, clock: clk, logger: logging.OrDiscard(logger)}
}

func (i *Interactor) Report(ctx context.Context, input statsdto.ReportInput) (statsdto.ReportOutput, error) {
	now := i.clock.Now()
	report, err := i.svc.Build(ctx, input.UserID, now, input.WindowDays)
	if err != nil {
		i.logger.Error("build stats report", "user_id", input.UserID, "error", err)
		return statsdto.ReportOutput{}, err
	}
	i.logger.Debug("stats report built", "user_id", input.UserID, "streak", report.Streak, "notes", report.Lifetime.Notes)
	return statsdto.ReportOutput{
		Report: report,
		// One tip per calendar day keeps repeated runs stable.
		Tip:         domain.TipAt(report.Totals(), now.YearDay()),
		GeneratedAt: now,
	}, nil
}
