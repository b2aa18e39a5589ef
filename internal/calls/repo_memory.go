package calls

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps log entries for the life of the process.
// Used when no database is configured and in tests.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []LogEntry
	index   map[string]int
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{index: map[string]int{}} }

func (r *MemoryRepo) Append(ctx context.Context, e LogEntry) error {
	if e.SessionID == "" || e.ID == "" {
		return ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[e.SessionID]; ok {
		return ErrDuplicate
	}
	r.index[e.SessionID] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, sessionID string) (LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[sessionID]
	if !ok {
		return LogEntry{}, ErrNotFound
	}
	return r.entries[i], nil
}

func (r *MemoryRepo) List(ctx context.Context, from, to time.Time) ([]LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, 0)
	for _, e := range r.entries {
		if e.StoredAt.Before(from) || !e.StoredAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StoredAt.Before(out[j].StoredAt) })
	return out, nil
}
