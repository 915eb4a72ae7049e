package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/logger"
)

const (
	defaultQueueSize   = 64
	defaultSendTimeout = 5 * time.Second
)

// AsyncDispatcher decouples mail delivery from the request path. Send
// enqueues and returns immediately; a single worker goroutine drains
// the queue against the wrapped notifier. Delivery failures are logged,
// never surfaced to callers, and a full queue drops the mail rather
// than blocking a request.
type AsyncDispatcher struct {
	inner auth.Notifier

	queue chan auth.Mail
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewAsyncDispatcher(inner auth.Notifier) *AsyncDispatcher {
	d := &AsyncDispatcher{
		inner: inner,
		queue: make(chan auth.Mail, defaultQueueSize),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *AsyncDispatcher) Send(ctx context.Context, m auth.Mail) error {
	// A handler can still be mid-request when shutdown closes the queue;
	// the mutex keeps its Send from hitting a closed channel.
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		logger.Logger.Warn().
			Str("kind", string(m.Kind)).
			Str("to", m.To).
			Msg("dispatcher closed, dropping mail")
		return nil
	}
	select {
	case d.queue <- m:
	default:
		logger.Logger.Warn().
			Str("kind", string(m.Kind)).
			Str("to", m.To).
			Msg("mail queue full, dropping")
	}
	return nil
}

// Close stops accepting mail and drains what is already queued. Safe to
// call more than once; later Sends drop instead of panicking.
func (d *AsyncDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)

	for m := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), defaultSendTimeout)
		if err := d.inner.Send(ctx, m); err != nil {
			logger.Logger.Error().
				Err(err).
				Str("kind", string(m.Kind)).
				Str("to", m.To).
				Msg("mail delivery failed")
		}
		cancel()
	}
}
