package domain

import "time"

// Represents a pickup/delivery shop.
//
// The ID is the human-readable shop code: the ward code followed by a
// 3-digit ward-scoped sequence. A shop becomes immutable once any
// route stop references it.
type Shop struct {
	ID        string
	Name      string
	Address   string
	WardCode  string
	Location  Coordinates
	CreatedAt time.Time
}
