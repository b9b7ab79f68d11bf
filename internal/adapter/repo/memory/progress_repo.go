package memory

import (
	"context"
	"strings"
	"time"
)

type ProgressItemRepo struct {
	store *Store
}

func NewProgressItemRepo(store *Store) ProgressItemRepo {
	return ProgressItemRepo{store: store}
}

func (r ProgressItemRepo) ListOwned(_ context.Context, playerID, episodeID string) (map[string]bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	prefix := key2(playerID, episodeID) + "::"
	out := make(map[string]bool)
	for k := range r.store.progressItems {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = true
		}
	}
	return out, nil
}

func (r ProgressItemRepo) Grant(_ context.Context, playerID, episodeID, progressItemID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := key3(playerID, episodeID, progressItemID)
	if _, ok := r.store.progressItems[k]; !ok {
		r.store.progressItems[k] = time.Now()
	}
	return nil
}

type AchievementRepo struct {
	store *Store
}

func NewAchievementRepo(store *Store) AchievementRepo {
	return AchievementRepo{store: store}
}

func (r AchievementRepo) ListOwned(_ context.Context, playerID string) (map[string]bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	prefix := playerID + "::"
	out := make(map[string]bool)
	for k := range r.store.achievements {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = true
		}
	}
	return out, nil
}

func (r AchievementRepo) Grant(_ context.Context, playerID, achievementID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := key2(playerID, achievementID)
	if _, ok := r.store.achievements[k]; !ok {
		r.store.achievements[k] = time.Now()
	}
	return nil
}
