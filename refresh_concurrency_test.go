package authkit

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// One Active refresh token, many concurrent refreshes: exactly one may
// win the rotation, everyone else must observe the token as consumed.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	pair, err := svc.Generate(ctx, 42, "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	const workers = 16

	var wg sync.WaitGroup
	results := make([]error, workers)
	pairs := make([]TokenPair, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pairs[i], results[i] = svc.Refresh(ctx, pair.Refresh)
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner TokenPair
	for i, err := range results {
		switch {
		case err == nil:
			winners++
			winner = pairs[i]
		case errors.Is(err, ErrInvalidRefreshTokenStatus):
		default:
			t.Fatalf("worker %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winning refresh, got %d", winners)
	}

	// The winner's refresh token is live, the consumed one is not.
	if _, err := st.SelectByToken(ctx, string(winner.Refresh)); err != nil {
		t.Fatalf("winner's refresh token missing from store: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrInvalidRefreshTokenStatus) {
		t.Fatalf("consumed token must stay unusable, got %v", err)
	}
	if _, err := svc.Refresh(ctx, winner.Refresh); err != nil {
		t.Fatalf("winner's refresh token must rotate cleanly: %v", err)
	}
}
