package dto

import (
	"time"

	sessionout "readtrack/internal/modules/session/port/out"
)

// DisplaySink lets front-ends hand a display to Start without importing the
// outbound ports.
type DisplaySink = sessionout.DisplaySink

type StartInput struct {
	UserID       int64
	CategoryName string
	Sink         DisplaySink
	Target       string
}

type StartOutput struct {
	SessionID    string
	CategoryID   int64
	CategoryName string
	StartedAt    time.Time
}

type StopInput struct {
	UserID int64
}

type StopOutput struct {
	Stopped         bool
	SessionID       string
	CategoryName    string
	DurationSeconds int
	NoteCount       int
	MediaNoteCount  int
	// Persisted is false when the final record could not be written.
	Persisted bool
}

// MediaInput describes an attachment. Kind is one of photo, video, voice or
// document.
type MediaInput struct {
	Kind    string
	FileRef string
	Caption string
}

type AddNoteInput struct {
	UserID int64
	Text   string
	Media  *MediaInput
	// CategoryName is used only when no session is running.
	CategoryName string
}

type AddNoteOutput struct {
	NoteID     string
	SessionID  string
	CategoryID int64
	Counted    bool
}

type StatusOutput struct {
	Running        bool
	State          string
	SessionID      string
	CategoryID     int64
	CategoryName   string
	ElapsedSeconds int
	NoteCount      int
	MediaNoteCount int
}

type RecoverInput struct {
	UserID int64
}

type RecoverOutput struct {
	Recovered int
}
