package memory

import (
	"context"
	"strings"

	"questgrid/internal/app/ports"
)

type InventoryRepo struct {
	store *Store
}

func NewInventoryRepo(store *Store) InventoryRepo {
	return InventoryRepo{store: store}
}

func (r InventoryRepo) Quantity(_ context.Context, playerID, episodeID, itemID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.inventory[key3(playerID, episodeID, itemID)], nil
}

func (r InventoryRepo) ListOwned(_ context.Context, playerID, episodeID string) (map[string]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	prefix := key2(playerID, episodeID) + "::"
	out := make(map[string]int)
	for k, qty := range r.store.inventory {
		if qty > 0 && strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = qty
		}
	}
	return out, nil
}

func (r InventoryRepo) Grant(_ context.Context, playerID, episodeID, itemID string, qty int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.inventory[key3(playerID, episodeID, itemID)] += qty
	return nil
}

func (r InventoryRepo) Consume(_ context.Context, playerID, episodeID, itemID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := key3(playerID, episodeID, itemID)
	if r.store.inventory[k] < 1 {
		return ports.ErrConflict
	}
	r.store.inventory[k]--
	return nil
}
