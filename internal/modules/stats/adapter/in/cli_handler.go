package in

import (
	"context"

	statsdto "readtrack/internal/modules/stats/dto"
	statsin "readtrack/internal/modules/stats/port/in"
)

type CLIHandler struct {
	usecase statsin.Usecase
}

func NewCLIHandler(usecase statsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Report(ctx context.Context, userID int64, windowDays int) (statsdto.ReportOutput, error) {
	return h.usecase.Report(ctx, statsdto.ReportInput{UserID: userID, WindowDays: windowDays})
}
