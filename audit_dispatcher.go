package authkit

import "sync/atomic"

// auditDispatcher decouples the hot path from the sink: events are
// queued on a buffered channel and delivered by a single goroutine.
// With dropIfFull set a full buffer drops the event and bumps a
// counter instead of blocking the caller.
type auditDispatcher struct {
	sink       AuditSink
	ch         chan AuditEvent
	done       chan struct{}
	dropIfFull bool
	dropped    atomic.Uint64
}

func newAuditDispatcher(sink AuditSink, bufferSize int, dropIfFull bool) *auditDispatcher {
	d := &auditDispatcher{
		sink:       sink,
		ch:         make(chan AuditEvent, bufferSize),
		done:       make(chan struct{}),
		dropIfFull: dropIfFull,
	}
	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	defer close(d.done)
	for event := range d.ch {
		d.sink.Emit(event)
	}
}

func (d *auditDispatcher) dispatch(event AuditEvent) {
	if d.dropIfFull {
		select {
		case d.ch <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}
	d.ch <- event
}

// close stops the dispatcher after draining queued events.
func (d *auditDispatcher) close() {
	close(d.ch)
	<-d.done
}

func (d *auditDispatcher) droppedCount() uint64 {
	return d.dropped.Load()
}
