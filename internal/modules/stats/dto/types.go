package dto

import (
	"time"

	"readtrack/internal/modules/stats/domain"
)

type ReportInput struct {
	UserID int64
	// WindowDays overrides the configured window when positive.
	WindowDays int
}

type ReportOutput struct {
	Report      domain.Report
	Tip         string
	GeneratedAt time.Time
}
