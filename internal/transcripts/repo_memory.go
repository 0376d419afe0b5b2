package transcripts

import (
	"context"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Analysis)}
}

// Save stores a copy of the analysis.
func (r *MemoryRepo) Save(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	analysis.ActionItems = cloneItems(analysis.ActionItems)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	return nil
}

// GetByID returns a copy of the stored analysis.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	analysis, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return Analysis{}, ErrNotFound
	}
	analysis.ActionItems = cloneItems(analysis.ActionItems)
	return analysis, nil
}

// Len reports how many analyses are stored.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
