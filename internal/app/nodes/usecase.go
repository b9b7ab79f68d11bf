package nodes

import (
	"context"
	"errors"
	"strings"
	"time"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

var ErrInvalidRequest = errors.New("invalid node list request")

// UseCase lists the nodes visible to a player. Visibility is recomputed on
// every listing, never persisted.
type UseCase struct {
	Content       ports.ContentRepository
	Players       ports.PlayerRepository
	Inventory     ports.InventoryRepository
	ProgressItems ports.ProgressItemRepository
	Achievements  ports.AchievementRepository
	StatusEffects ports.StatusEffectRepository
	Progress      ports.TargetProgressRepository
	Now           func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.EpisodeID = strings.TrimSpace(req.EpisodeID)
	if req.PlayerID == "" || req.EpisodeID == "" {
		return Response{}, ErrInvalidRequest
	}

	now := u.now()
	snapshot, err := u.buildSnapshot(ctx, req, now)
	if err != nil {
		return Response{}, err
	}

	nodeList, err := u.Content.ListNodes(ctx, req.EpisodeID)
	if err != nil {
		return Response{}, err
	}

	out := Response{Nodes: make([]NodeView, 0, len(nodeList))}
	for _, node := range nodeList {
		conditions, err := u.Content.ListConditions(ctx, node.ID)
		if err != nil {
			return Response{}, err
		}
		if !quest.NodeVisible(node, conditions, snapshot, now) {
			continue
		}
		state, err := u.nodeState(ctx, req.PlayerID, node.ID)
		if err != nil {
			return Response{}, err
		}
		out.Nodes = append(out.Nodes, NodeView{
			ID:       node.ID,
			Category: node.Category,
			Title:    node.Title,
			Body:     node.Body,
			State:    state,
		})
	}
	return out, nil
}

func (u UseCase) buildSnapshot(ctx context.Context, req Request, now time.Time) (quest.PlayerSnapshot, error) {
	player, err := u.Players.Get(ctx, req.PlayerID)
	if err != nil {
		return quest.PlayerSnapshot{}, err
	}
	progressItems, err := u.ProgressItems.ListOwned(ctx, req.PlayerID, req.EpisodeID)
	if err != nil {
		return quest.PlayerSnapshot{}, err
	}
	inventory, err := u.Inventory.ListOwned(ctx, req.PlayerID, req.EpisodeID)
	if err != nil {
		return quest.PlayerSnapshot{}, err
	}
	achievements, err := u.Achievements.ListOwned(ctx, req.PlayerID)
	if err != nil {
		return quest.PlayerSnapshot{}, err
	}
	statusEffects, err := u.StatusEffects.ListActive(ctx, req.PlayerID, req.EpisodeID, now)
	if err != nil {
		return quest.PlayerSnapshot{}, err
	}
	snapshot := quest.PlayerSnapshot{
		Player:        player,
		EpisodeID:     req.EpisodeID,
		ProgressItems: progressItems,
		Inventory:     inventory,
		Achievements:  achievements,
		StatusEffects: statusEffects,
	}
	if req.Lat != nil && req.Lng != nil {
		snapshot.Coords = &quest.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	}
	return snapshot, nil
}

func (u UseCase) nodeState(ctx context.Context, playerID, nodeID string) (quest.NodeState, error) {
	done, err := u.Progress.NodeCompleted(ctx, playerID, nodeID)
	if err != nil {
		return "", err
	}
	if done {
		return quest.NodeCompleted, nil
	}
	targetList, err := u.Content.ListTargets(ctx, nodeID)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(targetList))
	for _, t := range targetList {
		ids = append(ids, t.ID)
	}
	completed, err := u.Progress.CompletedTargetIDs(ctx, playerID, ids)
	if err != nil {
		return "", err
	}
	if len(completed) > 0 {
		return quest.NodeInProgress, nil
	}
	return quest.NodeUnlocked, nil
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}
