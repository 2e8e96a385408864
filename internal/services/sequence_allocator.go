package services

import (
	"context"
	"fmt"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

// DefaultAllocationRetries bounds the number of consecutive losses
// without forward progress. A lost reservation caused by a concurrent
// allocator advances the observed maximum and resets the budget, so
// contention alone never exhausts it; only a store that rejects
// reservations without recording them does.
const DefaultAllocationRetries = 10

// SequenceAllocator mints collision-free, monotonically increasing
// textual identifiers scoped by a prefix (a ward code for shops, "RT"
// for routes). Uniqueness comes from the store's atomic reservation,
// not from the read: concurrent allocators may retry but never hand out
// the same identifier twice.
type SequenceAllocator struct {
	store   ports.SequenceStore
	retries int
}

func NewSequenceAllocator(store ports.SequenceStore) *SequenceAllocator {
	return &SequenceAllocator{store: store, retries: DefaultAllocationRetries}
}

// Next returns prefix + the next unused zero-padded sequence number.
func (a *SequenceAllocator) Next(ctx context.Context, prefix string, width int) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("allocate identifier: prefix must be non-empty")
	}
	if width < 1 {
		return "", fmt.Errorf("allocate identifier: width must be >= 1, got %d", width)
	}

	max, err := a.store.MaxSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("allocate identifier: read max for prefix %q: %w", prefix, err)
	}

	n := max + 1
	misses := 0
	for misses < a.retries {
		id := fmt.Sprintf("%s%0*d", prefix, width, n)

		ok, err := a.store.Reserve(ctx, prefix, id)
		if err != nil {
			return "", fmt.Errorf("allocate identifier: reserve %q: %w", id, err)
		}
		if ok {
			return id, nil
		}

		// Lost the race for this slot. Resynchronize with the store: a
		// concurrent winner advanced the maximum, so jumping past it
		// costs fewer attempts than walking one slot at a time.
		latest, err := a.store.MaxSequence(ctx, prefix)
		if err != nil {
			return "", fmt.Errorf("allocate identifier: reread max for prefix %q: %w", prefix, err)
		}
		if latest >= n {
			n = latest + 1
			misses = 0
			continue
		}

		// No progress observed; a reserved slot the max scan cannot see.
		n++
		misses++
	}

	return "", fmt.Errorf("allocate identifier for prefix %q: %w", prefix, domain.ErrAllocationExhausted)
}
