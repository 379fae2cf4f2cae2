package watcher

import (
	"context"
	"time"

	"github.com/chainwatch/cascade/pkg/logging"
)

// Debouncer batches rapid change events: it emits once the input has
// been quiet for quietPeriod, or unconditionally after maxWait while
// changes keep arriving.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a debouncer over the given input channel.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 4),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Events returns the debounced output channel.
func (d *Debouncer) Events() <-chan ChangeEvent {
	return d.output
}

// Start begins processing in a goroutine.
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending  *ChangeEvent
		quiet    <-chan time.Time
		deadline <-chan time.Time
	)

	flush := func() {
		if pending == nil {
			return
		}
		logging.Debug("flushing change event", "path", pending.Path)
		d.output <- *pending
		pending = nil
		quiet = nil
		deadline = nil
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			pending = &event
			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}
		case <-quiet:
			flush()
		case <-deadline:
			flush()
		}
	}
}
