package watcher

import (
	"context"
	"sort"
	"time"

	"github.com/ritzau/brandos-canvas/pkg/logging"
)

// Debouncer batches rapid file system events so a file that is still being
// written is imported once, after it settles
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run processes events and applies debouncing logic. The last change seen
// for a path wins, so a file created and removed within one window is only
// reported as removed.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	quiet := time.NewTimer(d.quietPeriod)
	quiet.Stop()
	deadline := time.NewTimer(d.maxWait)
	deadline.Stop()

	var (
		latest  = make(map[string]ChangeType)
		pending bool
	)

	flush := func() {
		quiet.Stop()
		deadline.Stop()
		pending = false
		if len(latest) == 0 {
			return
		}

		logging.Debug("flushing accumulated inbox events", "count", len(latest))

		byType := make(map[ChangeType][]string)
		for path, t := range latest {
			byType[t] = append(byType[t], path)
		}
		latest = make(map[string]ChangeType)

		for _, t := range []ChangeType{ChangeTypeImage, ChangeTypeRemoved} {
			paths := byType[t]
			if len(paths) == 0 {
				continue
			}
			sort.Strings(paths)
			select {
			case d.output <- ChangeEvent{Type: t, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
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

			for _, p := range event.Paths {
				latest[p] = event.Type
			}

			// Reset quiet period timer
			quiet.Reset(d.quietPeriod)

			// Start max wait timer on first event of a batch
			if !pending {
				deadline.Reset(d.maxWait)
				pending = true
			}

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
