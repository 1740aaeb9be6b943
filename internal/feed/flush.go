package feed

import (
	"context"
	"sync"
	"time"

	"github.com/cristianoliveira/lostfound/internal/logging"
)

const flushTimeout = 5 * time.Second

// flusher is the single writer of one snapshot. Mark only requests a
// write; the loop reads the current state when it runs, so bursts of
// changes collapse into one save.
type flusher struct {
	save   func(ctx context.Context) error
	logger logging.Logger

	pending chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newFlusher(save func(ctx context.Context) error, logger logging.Logger) *flusher {
	f := &flusher{
		save:    save,
		logger:  logger,
		pending: make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go f.loop()
	return f
}

// Mark requests a save.
func (f *flusher) Mark() {
	select {
	case f.pending <- struct{}{}:
	default:
	}
}

// Stop writes any pending save and waits for the loop to exit.
func (f *flusher) Stop() {
	f.once.Do(func() { close(f.quit) })
	<-f.done
}

func (f *flusher) loop() {
	defer close(f.done)
	for {
		select {
		case <-f.pending:
			f.flush()
		case <-f.quit:
			select {
			case <-f.pending:
				f.flush()
			default:
			}
			return
		}
	}
}

func (f *flusher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := f.save(ctx); err != nil {
		f.logger.Error("snapshot save failed", "error", err)
		return
	}
	f.logger.Debug("snapshot saved")
}
