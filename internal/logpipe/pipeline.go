// Package logpipe carries user-visible log entries from any number of
// producers to a single rendering consumer.
package logpipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"gitbulk/internal/domain"
)

// Renderer consumes entries on the pipeline's consumer goroutine
type Renderer interface {
	Render(entry domain.LogEntry)
	Clear()
}

// Pipeline is an unbounded FIFO. Emit never blocks and never drops.
type Pipeline struct {
	mu       sync.Mutex
	queue    []domain.LogEntry
	renderer Renderer
	notify   chan struct{}

	// held while a batch is rendered and while Reset runs
	drain sync.Mutex

	now func() time.Time
}

// New creates an empty pipeline
func New() *Pipeline {
	return &Pipeline{
		notify: make(chan struct{}, 1),
		now:    time.Now,
	}
}

// Emit enqueues an entry and mirrors it to the diagnostic log
func (p *Pipeline) Emit(entry domain.LogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = p.now()
	}

	p.mu.Lock()
	p.queue = append(p.queue, entry)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}

	mirror(entry)
}

func (p *Pipeline) Info(format string, args ...any) {
	p.Emit(domain.LogEntry{Severity: domain.SeverityInfo, Message: fmt.Sprintf(format, args...)})
}

func (p *Pipeline) Warn(format string, args ...any) {
	p.Emit(domain.LogEntry{Severity: domain.SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

func (p *Pipeline) Error(format string, args ...any) {
	p.Emit(domain.LogEntry{Severity: domain.SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Run is the single consumer. It renders entries in enqueue order until ctx
// is done, then renders whatever is still queued and returns.
func (p *Pipeline) Run(ctx context.Context, r Renderer) {
	p.mu.Lock()
	p.renderer = r
	p.mu.Unlock()

	for {
		select {
		case <-p.notify:
			p.flush(r)
		case <-ctx.Done():
			p.flush(r)
			return
		}
	}
}

// Flush renders everything queued so far on the calling goroutine. It is
// meant for one-shot consumers that never start Run.
func (p *Pipeline) Flush(r Renderer) {
	p.flush(r)
}

func (p *Pipeline) flush(r Renderer) {
	p.drain.Lock()
	defer p.drain.Unlock()

	p.mu.Lock()
	batch := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, entry := range batch {
		r.Render(entry)
	}
}

// Reset discards queued entries and clears the rendered text. Callers must
// make sure no operation is producing entries.
func (p *Pipeline) Reset() {
	p.drain.Lock()
	defer p.drain.Unlock()

	p.mu.Lock()
	p.queue = nil
	r := p.renderer
	p.mu.Unlock()

	if r != nil {
		r.Clear()
	}
}

// Pending returns the number of entries not yet rendered
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func mirror(entry domain.LogEntry) {
	l := logger.WithField("source", "pipeline")
	switch entry.Severity {
	case domain.SeverityError:
		l.Error(entry.Message)
	case domain.SeverityWarning:
		l.Warn(entry.Message)
	default:
		l.Info(entry.Message)
	}
}
