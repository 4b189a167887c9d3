package in

import (
	"context"

	"readtrack/internal/modules/stats/dto"
)

type Usecase interface {
	Report(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error)
}
