package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func testNew(token string, expiresAt time.Time) New {
	return New{
		UserID:    42,
		UserRole:  "admin",
		Token:     token,
		IssuedAt:  expiresAt.Add(-time.Hour),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryInsertAndSelect(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e, err := m.Insert(ctx, testNew("tok-1", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if e.ID == "" || e.Status != StatusActive {
		t.Fatalf("unexpected inserted entity: %+v", e)
	}

	byID, err := m.SelectByID(ctx, e.ID)
	if err != nil || byID.Token != "tok-1" {
		t.Fatalf("SelectByID = %+v, %v", byID, err)
	}

	byToken, err := m.SelectByToken(ctx, "tok-1")
	if err != nil || byToken.ID != e.ID {
		t.Fatalf("SelectByToken = %+v, %v", byToken, err)
	}

	if _, err := m.SelectByToken(ctx, "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.SelectByID(ctx, "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRevokeIsOneWay(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e, _ := m.Insert(ctx, testNew("tok-1", time.Now().Add(time.Hour)))

	revoked, err := m.Revoke(ctx, e.ID)
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if revoked.Status != StatusRevoked {
		t.Fatalf("status = %q, want revoked", revoked.Status)
	}

	if _, err := m.Revoke(ctx, e.ID); !errors.Is(err, ErrNothingWasChanged) {
		t.Fatalf("second revoke must yield ErrNothingWasChanged, got %v", err)
	}
	if _, err := m.Revoke(ctx, "absent"); !errors.Is(err, ErrNothingWasChanged) {
		t.Fatalf("revoking an absent row must yield ErrNothingWasChanged, got %v", err)
	}
}

func TestMemoryProlongUpdatesExpiryOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e, _ := m.Insert(ctx, testNew("tok-1", time.Now().Add(time.Hour)))
	_, _ = m.Revoke(ctx, e.ID)

	later := time.Now().Add(48 * time.Hour)
	got, err := m.Prolong(ctx, Prolong{ID: e.ID, ExpiresAt: later})
	if err != nil {
		t.Fatalf("Prolong failed: %v", err)
	}
	if !got.ExpiresAt.Equal(later) {
		t.Fatalf("expiresAt = %v, want %v", got.ExpiresAt, later)
	}
	if got.Status != StatusRevoked {
		t.Fatalf("Prolong must not touch status, got %q", got.Status)
	}

	if _, err := m.Prolong(ctx, Prolong{ID: "absent", ExpiresAt: later}); !errors.Is(err, ErrNothingWasChanged) {
		t.Fatalf("expected ErrNothingWasChanged, got %v", err)
	}
}

func TestMemoryRotate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	old, _ := m.Insert(ctx, testNew("tok-old", time.Now().Add(time.Hour)))

	fresh, err := m.Rotate(ctx, old.ID, testNew("tok-new", time.Now().Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if fresh.Status != StatusActive || fresh.Token != "tok-new" {
		t.Fatalf("unexpected rotated entity: %+v", fresh)
	}

	oldRow, _ := m.SelectByID(ctx, old.ID)
	if oldRow.Status != StatusRevoked {
		t.Fatalf("old row must be revoked after rotation, got %q", oldRow.Status)
	}

	// Losing a second rotation on the same old row must not insert anything.
	if _, err := m.Rotate(ctx, old.ID, testNew("tok-extra", time.Now().Add(time.Hour))); !errors.Is(err, ErrNothingWasChanged) {
		t.Fatalf("expected ErrNothingWasChanged, got %v", err)
	}
	if _, err := m.SelectByToken(ctx, "tok-extra"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed rotation must not leave a row behind")
	}
}

func TestMemoryRotateConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	old, _ := m.Insert(ctx, testNew("tok-old", time.Now().Add(time.Hour)))

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, err := m.Rotate(ctx, old.ID, testNew(fmt.Sprintf("tok-new-%d", i), time.Now().Add(time.Hour)))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrNothingWasChanged) {
			t.Fatalf("unexpected rotation error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one rotation winner, got %d", success)
	}

	tokens := []string{"tok-old"}
	for i := 0; i < n; i++ {
		tokens = append(tokens, fmt.Sprintf("tok-new-%d", i))
	}

	active := 0
	for _, token := range tokens {
		e, err := m.SelectByToken(ctx, token)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			t.Fatalf("SelectByToken failed: %v", err)
		}
		if e.Status == StatusActive {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one Active row after the race, got %d", active)
	}
}

func TestMemoryRevokeExpiredIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()

	_, _ = m.Insert(ctx, testNew("expired-1", now.Add(-time.Minute)))
	_, _ = m.Insert(ctx, testNew("expired-2", now.Add(-time.Hour)))
	live, _ := m.Insert(ctx, testNew("live", now.Add(time.Hour)))

	first, err := m.RevokeExpired(ctx, now)
	if err != nil {
		t.Fatalf("RevokeExpired failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first sweep affected %d rows, want 2", len(first))
	}
	for _, e := range first {
		if e.Status != StatusRevoked {
			t.Fatalf("swept row still %q", e.Status)
		}
	}

	second, err := m.RevokeExpired(ctx, now)
	if err != nil {
		t.Fatalf("second RevokeExpired failed: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second sweep must be empty, affected %d rows", len(second))
	}

	if e, _ := m.SelectByID(ctx, live.ID); e.Status != StatusActive {
		t.Fatalf("unexpired row was swept")
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e, _ := m.Insert(ctx, testNew("tok-1", time.Now().Add(time.Hour)))

	if err := m.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, e.ID); !errors.Is(err, ErrNothingWasChanged) {
		t.Fatalf("second delete must yield ErrNothingWasChanged, got %v", err)
	}
	if _, err := m.SelectByToken(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token index must be cleaned up on delete")
	}
}

func TestMemoryDeleteExpiredFor(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()

	_, _ = m.Insert(ctx, testNew("long-gone", now.Add(-48*time.Hour)))
	recent, _ := m.Insert(ctx, testNew("recently-expired", now.Add(-time.Hour)))
	live, _ := m.Insert(ctx, testNew("live", now.Add(time.Hour)))

	deleted, err := m.DeleteExpiredFor(ctx, now, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteExpiredFor failed: %v", err)
	}
	if len(deleted) != 1 || deleted[0].Token != "long-gone" {
		t.Fatalf("unexpected retention sweep result: %+v", deleted)
	}

	if _, err := m.SelectByID(ctx, recent.ID); err != nil {
		t.Fatalf("rows expired less than the retention must survive: %v", err)
	}
	if _, err := m.SelectByID(ctx, live.ID); err != nil {
		t.Fatalf("live rows must survive: %v", err)
	}
}
