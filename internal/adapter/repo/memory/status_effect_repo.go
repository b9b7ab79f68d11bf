package memory

import (
	"context"
	"sort"
	"time"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

type StatusEffectRepo struct {
	store *Store
}

func NewStatusEffectRepo(store *Store) StatusEffectRepo {
	return StatusEffectRepo{store: store}
}

func (r StatusEffectRepo) Insert(_ context.Context, effect quest.StatusEffect) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.statusEffects[effect.ID] = effect
	return nil
}

func (r StatusEffectRepo) ListActive(_ context.Context, playerID, episodeID string, now time.Time) ([]quest.StatusEffect, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]quest.StatusEffect, 0)
	for _, e := range r.store.statusEffects {
		if e.PlayerID == playerID && e.EpisodeID == episodeID && e.ActiveAt(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.Before(out[j].AppliedAt) })
	return out, nil
}

func (r StatusEffectRepo) RemoveByType(_ context.Context, playerID, episodeID, statusType string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, e := range r.store.statusEffects {
		if e.PlayerID == playerID && e.EpisodeID == episodeID && e.StatusType == statusType {
			delete(r.store.statusEffects, id)
		}
	}
	return nil
}

func (r StatusEffectRepo) UpdateMetadata(_ context.Context, effectID string, metadata map[string]any) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.statusEffects[effectID]
	if !ok {
		return ports.ErrNotFound
	}
	e.Metadata = metadata
	r.store.statusEffects[effectID] = e
	return nil
}

func (r StatusEffectRepo) Remove(_ context.Context, effectID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.statusEffects, effectID)
	return nil
}

func (r StatusEffectRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var purged int64
	for id, e := range r.store.statusEffects {
		if !e.ActiveAt(now) {
			delete(r.store.statusEffects, id)
			purged++
		}
	}
	return purged, nil
}
