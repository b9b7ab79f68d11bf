package memory

import (
	"context"
	"time"
)

type TargetProgressRepo struct {
	store *Store
}

func NewTargetProgressRepo(store *Store) TargetProgressRepo {
	return TargetProgressRepo{store: store}
}

func (r TargetProgressRepo) MarkCompleted(_ context.Context, playerID, targetID string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := key2(playerID, targetID)
	if _, ok := r.store.targetProgress[k]; ok {
		// Completion rows are immutable once set.
		return false, nil
	}
	r.store.targetProgress[k] = at
	return true, nil
}

func (r TargetProgressRepo) CompletedTargetIDs(_ context.Context, playerID string, targetIDs []string) (map[string]bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		if _, ok := r.store.targetProgress[key2(playerID, id)]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r TargetProgressRepo) MarkNodeCompleted(_ context.Context, playerID, nodeID string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := key2(playerID, nodeID)
	if _, ok := r.store.nodeCompletions[k]; ok {
		return false, nil
	}
	r.store.nodeCompletions[k] = at
	return true, nil
}

func (r TargetProgressRepo) NodeCompleted(_ context.Context, playerID, nodeID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.nodeCompletions[key2(playerID, nodeID)]
	return ok, nil
}
