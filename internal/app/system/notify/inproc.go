// internal/app/system/notify/inproc.go
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// InProc is the default notification backend: a bounded in-process queue
// drained by a single worker goroutine. Overflow drops the event with a
// warning; notification delivery is best-effort and must never apply
// backpressure to the request that created the note.
type InProc struct {
	handler Handler
	log     *zap.Logger
	queue   chan Event
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewInProc creates an in-process dispatcher with the given queue capacity.
func NewInProc(handler Handler, capacity int, logger *zap.Logger) *InProc {
	if capacity <= 0 {
		capacity = 256
	}
	return &InProc{
		handler: handler,
		log:     logger,
		queue:   make(chan Event, capacity),
		stopCh:  make(chan struct{}),
	}
}

// Start begins the background delivery loop.
func (d *InProc) Start() {
	d.wg.Add(1)
	go d.run()
	d.log.Info("notification worker started", zap.Int("capacity", cap(d.queue)))
}

// Stop signals the worker to stop and waits for it to finish. Events still
// queued at shutdown are dropped; at-most-once semantics allow this.
func (d *InProc) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	d.log.Info("notification worker stopped")
}

// Dispatch enqueues the event without blocking. A full queue drops the
// event and reports nothing to the caller beyond a log line.
func (d *InProc) Dispatch(_ context.Context, ev Event) error {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("notification queue full, dropping event",
			zap.String("event_id", ev.EventID),
			zap.String("recipient_id", ev.RecipientID))
	}
	return nil
}

func (d *InProc) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopCh:
			return
		case ev := <-d.queue:
			d.deliver(ev)
		}
	}
}

func (d *InProc) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Handler logs its own failures; nothing propagates past here.
	_ = d.handler(ctx, ev)
}
