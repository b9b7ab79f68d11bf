package memory

import (
	"context"
	"errors"
	"time"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

var errSwapInsufficientItem = errors.New("selected item no longer owned")

type ExchangeRepo struct {
	store *Store
}

func NewExchangeRepo(store *Store) ExchangeRepo {
	return ExchangeRepo{store: store}
}

func (r ExchangeRepo) Create(_ context.Context, session quest.ExchangeSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[session.ID]; ok {
		return ports.ErrConflict
	}
	r.store.sessions[session.ID] = session
	return nil
}

func (r ExchangeRepo) Get(_ context.Context, sessionID string) (quest.ExchangeSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[sessionID]
	if !ok {
		return quest.ExchangeSession{}, ports.ErrNotFound
	}
	return s, nil
}

func (r ExchangeRepo) SetItem(_ context.Context, sessionID string, role quest.ExchangeRole, itemID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[sessionID]
	if !ok {
		return ports.ErrNotFound
	}
	if s.Status != quest.ExchangeActive {
		return ports.ErrConflict
	}
	switch role {
	case quest.RolePlayerA:
		if s.PlayerAConfirmed {
			return ports.ErrConflict
		}
		s.PlayerAItemID = itemID
	case quest.RolePlayerB:
		if s.PlayerBConfirmed {
			return ports.ErrConflict
		}
		s.PlayerBItemID = itemID
	default:
		return ports.ErrNotFound
	}
	s.UpdatedAt = at
	r.store.sessions[sessionID] = s
	return nil
}

func (r ExchangeRepo) SetConfirmed(_ context.Context, sessionID string, role quest.ExchangeRole, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[sessionID]
	if !ok {
		return ports.ErrNotFound
	}
	if s.Status != quest.ExchangeActive || !s.BothSelected() {
		return ports.ErrConflict
	}
	switch role {
	case quest.RolePlayerA:
		if s.PlayerAConfirmed {
			return ports.ErrConflict
		}
		s.PlayerAConfirmed = true
	case quest.RolePlayerB:
		if s.PlayerBConfirmed {
			return ports.ErrConflict
		}
		s.PlayerBConfirmed = true
	default:
		return ports.ErrNotFound
	}
	s.UpdatedAt = at
	r.store.sessions[sessionID] = s
	return nil
}

// Settle performs the atomic swap under the store lock: status flip plus
// the four inventory mutations happen together or not at all.
func (r ExchangeRepo) Settle(_ context.Context, sessionID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[sessionID]
	if !ok {
		return ports.ErrNotFound
	}
	if s.Status != quest.ExchangeActive {
		return ports.ErrConflict
	}
	if !s.BothSelected() || !s.BothConfirmed() {
		return ports.ErrConflict
	}

	aKey := key3(s.PlayerAID, s.EpisodeID, s.PlayerAItemID)
	bKey := key3(s.PlayerBID, s.EpisodeID, s.PlayerBItemID)
	if r.store.inventory[aKey] < 1 || r.store.inventory[bKey] < 1 {
		return errSwapInsufficientItem
	}

	r.store.inventory[aKey]--
	r.store.inventory[bKey]--
	r.store.inventory[key3(s.PlayerBID, s.EpisodeID, s.PlayerAItemID)]++
	r.store.inventory[key3(s.PlayerAID, s.EpisodeID, s.PlayerBItemID)]++

	s.Status = quest.ExchangeCompleted
	s.UpdatedAt = at
	r.store.sessions[sessionID] = s
	return nil
}

func (r ExchangeRepo) Cancel(_ context.Context, sessionID string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[sessionID]
	if !ok {
		return false, ports.ErrNotFound
	}
	if s.Status != quest.ExchangeActive {
		return false, nil
	}
	s.Status = quest.ExchangeCancelled
	s.UpdatedAt = at
	r.store.sessions[sessionID] = s
	return true, nil
}

func (r ExchangeRepo) ListStaleActive(_ context.Context, updatedBefore time.Time) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]string, 0)
	for id, s := range r.store.sessions {
		if s.Status == quest.ExchangeActive && s.UpdatedAt.Before(updatedBefore) {
			out = append(out, id)
		}
	}
	return out, nil
}
