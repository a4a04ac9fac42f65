package authkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pavelzhurov/authkit/store"
)

func TestSweeperRevokesAndDeletesInBackground(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	cfg := testConfig()
	cfg.Sweep.Interval = 10 * time.Millisecond
	cfg.Sweep.Retention = time.Hour

	st := store.NewMemory()
	svc, err := New().WithConfig(cfg).WithStore(st).WithClock(clock).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)

	ctx := context.Background()
	pair, err := svc.Generate(ctx, 1, "user")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	clock.Advance(cfg.Token.RefreshTTL + cfg.Sweep.Retention + time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := st.SelectByToken(ctx, string(pair.Refresh))
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not remove the expired row in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
