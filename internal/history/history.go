// Package history defines roll-history persistence for dicebox.
package history

import (
	"context"
	"time"
)

// Entry is one recorded roll.
type Entry struct {
	ID         string    `json:"id"`
	Expression string    `json:"expression"`
	Label      string    `json:"label,omitempty"`
	Total      int       `json:"total"`
	Breakdown  string    `json:"breakdown"`
	RolledAt   time.Time `json:"rolled_at"`
}

// Store persists rolls for later history queries.
type Store interface {
	// Record stores one roll.
	Record(ctx context.Context, entry Entry) error
	// List returns up to limit rolls, newest first.
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
