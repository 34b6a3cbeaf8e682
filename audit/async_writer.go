package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncOptions configures buffering for the asynchronous audit writer.
type AsyncOptions struct {
	BufferSize   int           // Max events queued in memory before falling back to sync writes
	FlushTimeout time.Duration // Per-flush storage timeout
}

// AsyncWriter decouples audit writes from the request path: events are
// queued and flushed by a background goroutine so a slow audit backend never
// blocks request handling. Failed flushes are logged, not propagated.
//
// AsyncWriter implements Storage and can wrap any other implementation.
type AsyncWriter struct {
	storage   Storage
	eventChan chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	log       *slog.Logger
	options   AsyncOptions
}

// NewAsyncWriter wraps storage with a buffered background writer.
func NewAsyncWriter(storage Storage, log *slog.Logger, opts AsyncOptions) *AsyncWriter {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	if opts.BufferSize == 0 {
		opts.BufferSize = 1000
	}
	if opts.FlushTimeout == 0 {
		opts.FlushTimeout = 5 * time.Second
	}

	aw := &AsyncWriter{
		storage:   storage,
		eventChan: make(chan Event, opts.BufferSize),
		done:      make(chan struct{}),
		log:       log,
		options:   opts,
	}

	aw.wg.Add(1)
	go aw.worker()

	return aw
}

// Store queues the event for background persistence. When the buffer is
// full the write falls through synchronously so no event is ever dropped.
// The lock is held across the enqueue so Close cannot slip between the
// closed check and the channel send and strand the event.
func (aw *AsyncWriter) Store(ctx context.Context, event Event) error {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	if aw.closed {
		return ErrStorageNotAvailable
	}

	select {
	case aw.eventChan <- event:
		return nil
	default:
		return aw.storage.Store(ctx, event)
	}
}

// Query passes through to the wrapped storage
func (aw *AsyncWriter) Query(ctx context.Context, criteria Criteria) ([]Event, error) {
	return aw.storage.Query(ctx, criteria)
}

func (aw *AsyncWriter) worker() {
	defer aw.wg.Done()

	flush := func(event Event) {
		// Isolate storage writes from caller contexts so client timeouts
		// never cascade into the audit trail
		ctx, cancel := context.WithTimeout(context.Background(), aw.options.FlushTimeout)
		defer cancel()

		if err := aw.storage.Store(ctx, event); err != nil {
			aw.log.ErrorContext(ctx, "audit event write failed",
				slog.String("kind", string(event.Kind)),
				slog.Any("error", err))
		}
	}

	for {
		select {
		case event := <-aw.eventChan:
			flush(event)
		case <-aw.done:
			// Drain remaining events for graceful shutdown
			for {
				select {
				case event := <-aw.eventChan:
					flush(event)
				default:
					return
				}
			}
		}
	}
}

// Close stops the background writer after draining queued events. Idempotent
// and safe to call concurrently with Store; every Store that returned nil is
// guaranteed persisted once Close returns.
func (aw *AsyncWriter) Close() error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return nil
	}
	aw.closed = true
	aw.mu.Unlock()

	// All in-flight enqueues completed before the flag flipped, so the
	// worker's final drain sees every queued event
	close(aw.done)
	aw.wg.Wait()
	return nil
}
