package effects

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"questgrid/internal/app/itemeffects"
	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"github.com/google/uuid"
)

// Applier fires a node's configured effects for a player after node
// completion. Effects apply as an unordered batch; each write is
// independently transactional and a failure is logged without rolling back
// already-applied siblings.
type Applier struct {
	Players       ports.PlayerRepository
	Inventory     ports.InventoryRepository
	ProgressItems ports.ProgressItemRepository
	Achievements  ports.AchievementRepository
	StatusEffects ports.StatusEffectRepository
	ItemEngine    *itemeffects.Engine
	Logger        *slog.Logger
	Now           func() time.Time
}

func (a Applier) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a Applier) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// ApplyNodeEffects applies every effect, logging failures and continuing.
// Returns the number applied.
func (a Applier) ApplyNodeEffects(ctx context.Context, playerID, episodeID string, effects []quest.Effect) int {
	applied := 0
	for _, effect := range effects {
		if err := a.applyOne(ctx, playerID, episodeID, effect); err != nil {
			a.logger().Error("node effect application failed",
				"player_id", playerID, "node_id", effect.NodeID,
				"effect_id", effect.ID, "effect_type", effect.Type, "error", err)
			continue
		}
		applied++
	}
	return applied
}

func (a Applier) applyOne(ctx context.Context, playerID, episodeID string, effect quest.Effect) error {
	switch effect.Type {
	case quest.EffectGrantProgressItem:
		return a.ProgressItems.Grant(ctx, playerID, episodeID, effect.Payload.ProgressItemID)

	case quest.EffectGrantInventoryItem:
		qty := effect.Payload.Quantity
		if qty < 1 {
			qty = 1
		}
		if err := a.Inventory.Grant(ctx, playerID, episodeID, effect.Payload.ItemID, qty); err != nil {
			return err
		}
		if a.ItemEngine != nil {
			if _, err := a.ItemEngine.ApplyForTrigger(ctx, playerID, episodeID, effect.Payload.ItemID, quest.TriggerReceive); err != nil {
				return fmt.Errorf("receive trigger for item %s: %w", effect.Payload.ItemID, err)
			}
		}
		return nil

	case quest.EffectModifyExperience:
		return a.AwardExperience(ctx, playerID, episodeID, effect.Payload.Delta)

	case quest.EffectModifyLevel:
		return a.Players.AddLevel(ctx, playerID, effect.Payload.Delta)

	case quest.EffectGrantAchievement:
		return a.Achievements.Grant(ctx, playerID, effect.Payload.AchievementID)

	case quest.EffectAddStatusEffect:
		return a.addStatusEffect(ctx, playerID, episodeID, effect)

	default:
		// Unknown effect type: referential no-op.
		a.logger().Warn("unknown node effect type, skipping",
			"effect_id", effect.ID, "effect_type", effect.Type)
		return nil
	}
}

// AwardExperience applies an additive delta to the player's experience.
// Positive deltas are scaled by the player's active multiplier effects at
// the moment of the award; negative results stand unclamped.
func (a Applier) AwardExperience(ctx context.Context, playerID, episodeID string, delta int) error {
	if delta > 0 && a.ItemEngine != nil {
		multiplier, err := a.ItemEngine.XPMultiplier(ctx, playerID, episodeID)
		if err != nil {
			return err
		}
		delta = int(math.Round(float64(delta) * multiplier))
	}
	return a.Players.AddExperience(ctx, playerID, delta)
}

func (a Applier) addStatusEffect(ctx context.Context, playerID, episodeID string, effect quest.Effect) error {
	if effect.Payload.Harmful && a.ItemEngine != nil {
		absorbed, err := a.ItemEngine.AbsorbHarmful(ctx, playerID, episodeID)
		if err != nil {
			return err
		}
		if absorbed {
			a.logger().Info("harmful status effect absorbed by protection",
				"player_id", playerID, "status_type", effect.Payload.StatusType)
			return nil
		}
	}
	now := a.now()
	var expiresAt *time.Time
	if effect.Payload.DurationMinutes > 0 {
		t := now.Add(time.Duration(effect.Payload.DurationMinutes) * time.Minute)
		expiresAt = &t
	}
	return a.StatusEffects.Insert(ctx, quest.StatusEffect{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		EpisodeID:  episodeID,
		StatusType: effect.Payload.StatusType,
		AppliedAt:  now,
		ExpiresAt:  expiresAt,
		Metadata:   effect.Payload.Metadata,
	})
}
