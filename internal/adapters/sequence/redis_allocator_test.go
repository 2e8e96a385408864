package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"route-dispatch-service/internal/adapters/memory"
	"route-dispatch-service/internal/domain"
)

func newTestAllocator(t *testing.T) (*RedisAllocator, *memory.SequenceStore) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	store := memory.NewSequenceStore()
	return NewRedisAllocator(client, store), store
}

func TestRedisAllocatorFirstIdentifier(t *testing.T) {
	alloc, _ := newTestAllocator(t)

	got, err := alloc.Next(context.Background(), "RT", 6)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "RT000001" {
		t.Fatalf("expected RT000001, got %q", got)
	}
}

func TestRedisAllocatorSeedsFromStore(t *testing.T) {
	alloc, store := newTestAllocator(t)
	ctx := context.Background()

	for _, id := range []string{"00100001", "00100002", "00100007"} {
		if ok, err := store.Reserve(ctx, "001", id); err != nil || !ok {
			t.Fatalf("seed reserve %q: ok=%v err=%v", id, ok, err)
		}
	}

	got, err := alloc.Next(ctx, "001", 5)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "00100008" {
		t.Fatalf("expected 00100008, got %q", got)
	}
}

func TestRedisAllocatorIndependentPrefixes(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	ctx := context.Background()

	rt, err := alloc.Next(ctx, "RT", 6)
	if err != nil {
		t.Fatalf("Next RT: %v", err)
	}
	ward, err := alloc.Next(ctx, "012", 3)
	if err != nil {
		t.Fatalf("Next ward: %v", err)
	}

	if rt != "RT000001" {
		t.Fatalf("expected RT000001, got %q", rt)
	}
	if ward != "012001" {
		t.Fatalf("expected 012001, got %q", ward)
	}
}

func TestRedisAllocatorConcurrentUnique(t *testing.T) {
	alloc, _ := newTestAllocator(t)

	const n = 25
	results := make(chan string, n)
	errs := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.Next(context.Background(), "RT", 6)
			if err != nil {
				errs <- err
				return
			}
			results <- id
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("Next: %v", err)
	}

	seen := make(map[string]bool, n)
	for id := range results {
		if seen[id] {
			t.Fatalf("duplicate identifier %q", id)
		}
		seen[id] = true
	}
	for i := 1; i <= n; i++ {
		want := fmt.Sprintf("RT%06d", i)
		if !seen[want] {
			t.Fatalf("missing identifier %q", want)
		}
	}
}

func TestRedisAllocatorSkipsTakenSlots(t *testing.T) {
	alloc, store := newTestAllocator(t)
	ctx := context.Background()

	// Counter seeds to 2, but slot 3 was reserved out of band.
	for _, id := range []string{"RT000001", "RT000002", "RT000003"} {
		if ok, err := store.Reserve(ctx, "RT", id); err != nil || !ok {
			t.Fatalf("seed reserve %q: ok=%v err=%v", id, ok, err)
		}
	}
	if err := alloc.client.Set(ctx, counterKey("RT"), 2, 0).Err(); err != nil {
		t.Fatalf("force counter: %v", err)
	}

	got, err := alloc.Next(ctx, "RT", 6)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "RT000004" {
		t.Fatalf("expected RT000004, got %q", got)
	}
}

func TestRedisAllocatorExhaustsBudget(t *testing.T) {
	alloc, store := newTestAllocator(t)
	ctx := context.Background()

	// Every slot the counter will propose is already taken.
	for i := 1; i <= 15; i++ {
		id := fmt.Sprintf("RT%06d", i)
		if ok, err := store.Reserve(ctx, "RT", id); err != nil || !ok {
			t.Fatalf("seed reserve %q: ok=%v err=%v", id, ok, err)
		}
	}
	if err := alloc.client.Set(ctx, counterKey("RT"), 0, 0).Err(); err != nil {
		t.Fatalf("force counter: %v", err)
	}

	_, err := alloc.Next(ctx, "RT", 6)
	if !errors.Is(err, domain.ErrAllocationExhausted) {
		t.Fatalf("expected ErrAllocationExhausted, got %v", err)
	}
}
