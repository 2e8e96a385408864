package ports

import "context"

// Port: storage primitives the sequence allocator builds on.
//
// Reserve is the uniqueness authority: an identifier handed out by the
// allocator has always been reserved first, so two concurrent allocators
// can never return the same value.
type SequenceStore interface {
	// MaxSequence returns the highest numeric suffix among reserved
	// identifiers of the form prefix+digits, or 0 when none exist.
	MaxSequence(ctx context.Context, prefix string) (int, error)

	// Reserve atomically claims the identifier. It returns false when
	// the identifier is already taken.
	Reserve(ctx context.Context, prefix, id string) (bool, error)
}

// Port: mints the next collision-free identifier in a zero-padded
// numeric series scoped by prefix.
type CodeAllocator interface {
	Next(ctx context.Context, prefix string, width int) (string, error)
}
