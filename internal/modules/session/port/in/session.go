package in

import (
	"context"

	"readtrack/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.StopOutput, error)
	AddNote(ctx context.Context, input dto.AddNoteInput) (dto.AddNoteOutput, error)
	Status(ctx context.Context, userID int64) (dto.StatusOutput, error)
	Recover(ctx context.Context, input dto.RecoverInput) (dto.RecoverOutput, error)
	// OnShutdown stops every live session. It is the process lifecycle hook.
	OnShutdown(ctx context.Context) []error
}
