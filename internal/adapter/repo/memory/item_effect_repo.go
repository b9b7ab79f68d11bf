package memory

import (
	"context"
	"sort"

	"questgrid/internal/domain/quest"
)

type ItemEffectRepo struct {
	store *Store
}

func NewItemEffectRepo(store *Store) ItemEffectRepo {
	return ItemEffectRepo{store: store}
}

func (r ItemEffectRepo) ListForTrigger(_ context.Context, itemID string, trigger quest.TriggerType) ([]quest.ItemEffectConfig, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]quest.ItemEffectConfig, 0)
	for _, cfg := range r.store.itemEffects {
		if cfg.ItemID == itemID && cfg.TriggerOn == trigger && cfg.Active {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ItemEffectRepo) Upsert(_ context.Context, config quest.ItemEffectConfig) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.itemEffects[config.ID] = config
	return nil
}
