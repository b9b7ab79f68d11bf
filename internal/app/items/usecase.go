package items

import (
	"context"
	"errors"
	"strings"

	"questgrid/internal/app/itemeffects"
	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

var (
	ErrInvalidRequest = errors.New("invalid item request")
	ErrItemNotOwned   = errors.New("item not in inventory")
)

type Request struct {
	PlayerID  string            `json:"player_id"`
	EpisodeID string            `json:"episode_id"`
	ItemID    string            `json:"item_id"`
	Trigger   quest.TriggerType `json:"trigger"`
}

type Response struct {
	EffectsApplied int `json:"effects_applied"`
}

// UseCase fires an item's configured effects for a lifecycle event. Consume
// decrements quantity first, then applies; use and equip leave quantity
// untouched.
type UseCase struct {
	Inventory ports.InventoryRepository
	Engine    *itemeffects.Engine
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.EpisodeID = strings.TrimSpace(req.EpisodeID)
	req.ItemID = strings.TrimSpace(req.ItemID)
	if req.PlayerID == "" || req.EpisodeID == "" || req.ItemID == "" || !quest.IsSupportedTrigger(req.Trigger) {
		return Response{}, ErrInvalidRequest
	}

	qty, err := u.Inventory.Quantity(ctx, req.PlayerID, req.EpisodeID, req.ItemID)
	if err != nil {
		return Response{}, err
	}
	if qty < 1 {
		return Response{}, ErrItemNotOwned
	}

	if req.Trigger == quest.TriggerConsume {
		if err := u.Inventory.Consume(ctx, req.PlayerID, req.EpisodeID, req.ItemID); err != nil {
			if errors.Is(err, ports.ErrConflict) {
				return Response{}, ErrItemNotOwned
			}
			return Response{}, err
		}
	}

	applied, err := u.Engine.ApplyForTrigger(ctx, req.PlayerID, req.EpisodeID, req.ItemID, req.Trigger)
	if err != nil {
		return Response{}, err
	}
	return Response{EffectsApplied: applied}, nil
}
