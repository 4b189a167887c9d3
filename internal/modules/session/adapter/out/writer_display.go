package out

import (
	"context"
	"fmt"
	"io"
	"sync"

	apperrors "readtrack/internal/platform/errors"
)

// WriterDisplay prints one line per change to w. It is the display used when
// there is no terminal to draw on.
type WriterDisplay struct {
	mu   sync.Mutex
	w    io.Writer
	last map[string]string
}

func NewWriterDisplay(w io.Writer) *WriterDisplay {
	return &WriterDisplay{w: w, last: map[string]string{}}
}

func (d *WriterDisplay) Push(ctx context.Context, target, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.last[target]; ok && prev == text {
		return apperrors.ErrUnchanged
	}
	if _, err := fmt.Fprintf(d.w, "%s %s\n", label(target), text); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrDisplayUnavailable, err)
	}
	d.last[target] = text
	return nil
}

func (d *WriterDisplay) Clear(_ context.Context, target string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.last[target]; !ok {
		return apperrors.ErrUnchanged
	}
	delete(d.last, target)
	return nil
}

func label(target string) string {
	if target == "" {
		return "⏱"
	}
	return "[" + target + "]"
}
