package repository

import (
	"context"
	"sync"

	"github.com/prepiq/quiz-backend/internal/model"
)

// MemorySnapshotRepository is an in-memory snapshot store with the same
// contract as SnapshotRepository. It backs engine tests and any embedding
// that runs without Redis.
type MemorySnapshotRepository struct {
	mu    sync.RWMutex
	snaps map[string]model.Snapshot
}

// NewMemorySnapshotRepository creates an empty in-memory store.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{snaps: make(map[string]model.Snapshot)}
}

// Save overwrites the snapshot for sessionID with a deep copy.
func (r *MemorySnapshotRepository) Save(_ context.Context, sessionID string, snap model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[sessionID] = copySnapshot(snap)
	return nil
}

// Load returns a copy of the stored snapshot, or (nil, nil) when absent.
func (r *MemorySnapshotRepository) Load(_ context.Context, sessionID string) (*model.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snaps[sessionID]
	if !ok {
		return nil, nil
	}
	out := copySnapshot(snap)
	return &out, nil
}

// Clear removes the snapshot for sessionID.
func (r *MemorySnapshotRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snaps, sessionID)
	return nil
}

func copySnapshot(snap model.Snapshot) model.Snapshot {
	out := model.Snapshot{
		Answers:   make(map[string]string, len(snap.Answers)),
		Bookmarks: make([]int, len(snap.Bookmarks)),
	}
	for k, v := range snap.Answers {
		out.Answers[k] = v
	}
	copy(out.Bookmarks, snap.Bookmarks)
	return out
}
