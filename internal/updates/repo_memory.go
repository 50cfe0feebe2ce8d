package updates

import (
	"context"
	"sync"
)

// MemoryRepo is the in-process fallback when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries []UpdateLog
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Create appends a log entry.
func (r *MemoryRepo) Create(ctx context.Context, entry UpdateLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// ListByJob returns entries for a job, newest first.
func (r *MemoryRepo) ListByJob(ctx context.Context, jobNumber string, limit int) ([]UpdateLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []UpdateLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].JobNumber != jobNumber {
			continue
		}
		out = append(out, r.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
