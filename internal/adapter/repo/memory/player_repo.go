package memory

import (
	"context"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

type PlayerRepo struct {
	store *Store
}

func NewPlayerRepo(store *Store) PlayerRepo {
	return PlayerRepo{store: store}
}

func (r PlayerRepo) Get(_ context.Context, playerID string) (quest.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[playerID]
	if !ok {
		return quest.Player{}, ports.ErrNotFound
	}
	return p, nil
}

func (r PlayerRepo) Exists(_ context.Context, playerID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.players[playerID]
	return ok, nil
}

func (r PlayerRepo) AddExperience(_ context.Context, playerID string, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[playerID]
	if !ok {
		return ports.ErrNotFound
	}
	p.Experience += delta
	r.store.players[playerID] = p
	return nil
}

func (r PlayerRepo) AddLevel(_ context.Context, playerID string, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[playerID]
	if !ok {
		return ports.ErrNotFound
	}
	p.Level += delta
	r.store.players[playerID] = p
	return nil
}
