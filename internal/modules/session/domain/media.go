package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "readtrack/internal/platform/errors"
)

type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaVoice    MediaKind = "voice"
	MediaDocument MediaKind = "document"
)

func ParseMediaKind(raw string) (MediaKind, error) {
	kind := MediaKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case MediaPhoto, MediaVideo, MediaVoice, MediaDocument:
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown media kind %q", apperrors.ErrInvalidInput, raw)
}

// MediaNote is an attachment reference. Build it with NewMediaNote and pass
// it by value.
type MediaNote struct {
	Kind    MediaKind
	FileRef string
	Caption string
}

func NewMediaNote(kind MediaKind, fileRef, caption string) (MediaNote, error) {
	if _, err := ParseMediaKind(string(kind)); err != nil {
		return MediaNote{}, err
	}
	fileRef = strings.TrimSpace(fileRef)
	if fileRef == "" {
		return MediaNote{}, fmt.Errorf("%w: media file reference is required", apperrors.ErrInvalidInput)
	}
	return MediaNote{Kind: kind, FileRef: fileRef, Caption: strings.TrimSpace(caption)}, nil
}

// Content is the caption, or a label naming the media kind when there is none.
func (m MediaNote) Content() string {
	if m.Caption != "" {
		return m.Caption
	}
	label := string(m.Kind)
	if label == "" {
		return "Media note"
	}
	return strings.ToUpper(label[:1]) + label[1:] + " note"
}

type Note struct {
	ID         string
	UserID     int64
	CategoryID int64
	SessionID  string
	Text       string
	Media      *MediaNote
	CreatedAt  time.Time
}

func (n Note) Counter() CounterKind {
	if n.Media != nil {
		return CounterMedia
	}
	return CounterNote
}

func (n Note) Content() string {
	if n.Media != nil {
		return n.Media.Content()
	}
	return n.Text
}
