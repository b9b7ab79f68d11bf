package memory

import (
	"context"
	"sort"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

type ContentRepo struct {
	store *Store
}

func NewContentRepo(store *Store) ContentRepo {
	return ContentRepo{store: store}
}

func (r ContentRepo) ListNodes(_ context.Context, episodeID string) ([]quest.Node, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]quest.Node, 0)
	for _, n := range r.store.nodes {
		if n.EpisodeID == episodeID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ContentRepo) GetNode(_ context.Context, nodeID string) (quest.Node, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.nodes[nodeID]
	if !ok {
		return quest.Node{}, ports.ErrNotFound
	}
	return n, nil
}

func (r ContentRepo) ListConditions(_ context.Context, nodeID string) ([]quest.Condition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]quest.Condition, 0)
	for _, c := range r.store.conditions {
		if c.NodeID == nodeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ContentRepo) ListTargets(_ context.Context, nodeID string) ([]quest.Target, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]quest.Target, 0)
	for _, t := range r.store.targets {
		if t.NodeID == nodeID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ContentRepo) GetTarget(_ context.Context, targetID string) (quest.Target, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.targets[targetID]
	if !ok {
		return quest.Target{}, ports.ErrNotFound
	}
	return t, nil
}

func (r ContentRepo) ListEffects(_ context.Context, nodeID string) ([]quest.Effect, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]quest.Effect, 0)
	for _, e := range r.store.effects {
		if e.NodeID == nodeID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ContentRepo) UpsertNode(_ context.Context, node quest.Node) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nodes[node.ID] = node
	return nil
}

func (r ContentRepo) UpsertCondition(_ context.Context, condition quest.Condition) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.conditions[condition.ID] = condition
	return nil
}

func (r ContentRepo) UpsertTarget(_ context.Context, target quest.Target) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.targets[target.ID] = target
	return nil
}

func (r ContentRepo) UpsertEffect(_ context.Context, effect quest.Effect) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.effects[effect.ID] = effect
	return nil
}
