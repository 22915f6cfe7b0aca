package logpipe

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"gitbulk/internal/domain"
)

// TextRenderer keeps the most recent rendered lines in memory
type TextRenderer struct {
	mu       sync.RWMutex
	lines    []string
	maxLines int
	onChange func()
}

// NewTextRenderer creates a renderer keeping at most maxLines lines
// (unbounded when maxLines <= 0). onChange, if set, is called after every
// render or clear, outside the renderer's lock.
func NewTextRenderer(maxLines int, onChange func()) *TextRenderer {
	return &TextRenderer{maxLines: maxLines, onChange: onChange}
}

func (r *TextRenderer) Render(entry domain.LogEntry) {
	r.mu.Lock()
	r.lines = append(r.lines, entry.Line())
	if r.maxLines > 0 && len(r.lines) > r.maxLines {
		r.lines = r.lines[len(r.lines)-r.maxLines:]
	}
	r.mu.Unlock()

	r.changed()
}

func (r *TextRenderer) Clear() {
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()

	r.changed()
}

// Lines returns a copy of the rendered lines, oldest first
func (r *TextRenderer) Lines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

func (r *TextRenderer) String() string {
	return strings.Join(r.Lines(), "\n")
}

func (r *TextRenderer) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

// WriterRenderer writes each entry as a line to w
type WriterRenderer struct {
	W io.Writer
}

func (r WriterRenderer) Render(entry domain.LogEntry) {
	fmt.Fprintln(r.W, entry.Line())
}

func (r WriterRenderer) Clear() {}
