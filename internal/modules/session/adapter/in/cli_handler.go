package in

import (
	"context"

	sessiondto "readtrack/internal/modules/session/dto"
	sessionin "readtrack/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, userID int64, category string, sink sessiondto.DisplaySink, target string) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{UserID: userID, CategoryName: category, Sink: sink, Target: target})
}

func (h CLIHandler) Stop(ctx context.Context, userID int64) (sessiondto.StopOutput, error) {
	return h.usecase.Stop(ctx, sessiondto.StopInput{UserID: userID})
}

func (h CLIHandler) Note(ctx context.Context, userID int64, text, category string) (sessiondto.AddNoteOutput, error) {
	return h.usecase.AddNote(ctx, sessiondto.AddNoteInput{UserID: userID, Text: text, CategoryName: category})
}

func (h CLIHandler) Media(ctx context.Context, userID int64, kind, fileRef, caption, category string) (sessiondto.AddNoteOutput, error) {
	return h.usecase.AddNote(ctx, sessiondto.AddNoteInput{
		UserID:       userID,
		Media:        &sessiondto.MediaInput{Kind: kind, FileRef: fileRef, Caption: caption},
		CategoryName: category,
	})
}

func (h CLIHandler) Status(ctx context.Context, userID int64) (sessiondto.StatusOutput, error) {
	return h.usecase.Status(ctx, userID)
}

func (h CLIHandler) Recover(ctx context.Context, userID int64) (sessiondto.RecoverOutput, error) {
	return h.usecase.Recover(ctx, sessiondto.RecoverInput{UserID: userID})
}

func (h CLIHandler) Shutdown(ctx context.Context) []error {
	return h.usecase.OnShutdown(ctx)
}
