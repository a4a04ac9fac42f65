package authkit

import (
	"context"
	"log"
	"time"
)

// sweeper runs the expiry maintenance loop: soft-revoke expired rows,
// then hard-delete rows past the retention window. A failed run is
// logged and does not stop the loop.
type sweeper struct {
	svc       *Service
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
	done      chan struct{}
}

func newSweeper(svc *Service, interval, retention time.Duration) *sweeper {
	w := &sweeper{
		svc:       svc,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *sweeper) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopCh:
			return
		}
	}
}

func (w *sweeper) sweep() {
	ctx := context.Background()
	if _, err := w.svc.RevokeExpired(ctx); err != nil {
		log.Printf("authkit: sweep revoke failed: %v", err)
	}
	if _, err := w.svc.DeleteExpiredFor(ctx, w.retention); err != nil {
		log.Printf("authkit: sweep delete failed: %v", err)
	}
}

func (w *sweeper) stop() {
	close(w.stopCh)
	<-w.done
}
