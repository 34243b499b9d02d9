package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"stocktrail/internal/core/id"
)

// MemoryStore is an in-memory Store used by tests and by tools that replay
// a ledger without a database. It enforces the same append-only contract as
// the PostgreSQL implementation: no update, no delete.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	lastAt  time.Time
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append validates and stores a fact. CreatedAt is forced monotonically
// non-decreasing per store, mirroring the per-writer guarantee of the
// server clock.
func (s *MemoryStore) Append(ctx context.Context, entry Entry) (id.ID, error) {
	if err := entry.Validate(); err != nil {
		return id.Nil(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(&entry)
	return entry.TransactionID, nil
}

func (s *MemoryStore) put(entry *Entry) {
	if id.IsNil(entry.TransactionID) {
		entry.TransactionID = id.New()
	}
	if entry.CreatedAt.IsZero() || entry.CreatedAt.Before(s.lastAt) {
		entry.CreatedAt = s.lastAt
	}
	if entry.CreatedAt.After(s.lastAt) {
		s.lastAt = entry.CreatedAt
	}

	s.entries = append(s.entries, *entry)
}

// AppendBatch stores several facts, validating all of them first so a batch
// is all-or-nothing.
func (s *MemoryStore) AppendBatch(ctx context.Context, entries []Entry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range entries {
		s.put(&entries[i])
	}
	return nil
}

// Read returns matching facts ordered by created_at, then insertion order.
func (s *MemoryStore) Read(ctx context.Context, filter Filter) ([]Entry, error) {
	s.mu.RLock()
	matched := make([]Entry, 0)
	for _, e := range s.entries {
		if filter.matches(&e) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Sum returns the signed total of matching deltas.
func (s *MemoryStore) Sum(ctx context.Context, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.entries {
		if filter.matches(&e) {
			total += e.Delta
		}
	}
	return total, nil
}

// Positions returns grouped sums per (product, location).
func (s *MemoryStore) Positions(ctx context.Context) ([]Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		product  id.ID
		location id.ID
	}
	sums := make(map[key]int64)
	order := make([]key, 0)
	for _, e := range s.entries {
		k := key{e.ProductID, e.LocationID}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += e.Delta
	}

	positions := make([]Position, 0, len(order))
	for _, k := range order {
		positions = append(positions, Position{
			ProductID:  k.product,
			LocationID: k.location,
			Stock:      sums[k],
		})
	}
	return positions, nil
}

func (f *Filter) matches(e *Entry) bool {
	if f.ProductID != nil && e.ProductID != *f.ProductID {
		return false
	}
	if f.VariantID != nil {
		if e.VariantID == nil || *e.VariantID != *f.VariantID {
			return false
		}
	}
	if f.LocationID != nil && e.LocationID != *f.LocationID {
		return false
	}
	if len(f.Reasons) > 0 {
		found := false
		for _, r := range f.Reasons {
			if e.Reason == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

var _ Store = (*MemoryStore)(nil)
