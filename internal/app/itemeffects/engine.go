package itemeffects

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

var (
	ErrInvalidRequest = errors.New("invalid item effect request")
)

// Engine resolves an item's configured effect types into behaviors and
// applies them on lifecycle triggers. Hard-coded prefixes dispatch to a
// built-in table; dynamic prefixes are computed from metadata when
// consulted.
type Engine struct {
	ItemEffects   ports.ItemEffectRepository
	StatusEffects ports.StatusEffectRepository
	Logger        *slog.Logger
	Now           func() time.Time

	handlers map[quest.EffectPrefix]effectHandler
}

func NewEngine(itemEffects ports.ItemEffectRepository, statusEffects ports.StatusEffectRepository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		ItemEffects:   itemEffects,
		StatusEffects: statusEffects,
		Logger:        logger,
		Now:           time.Now,
	}
	hard := hardcodedHandler{statusEffects: statusEffects, logger: logger}
	dyn := dynamicHandler{statusEffects: statusEffects, logger: logger}
	e.handlers = map[quest.EffectPrefix]effectHandler{
		quest.PrefixScanner:    hard,
		quest.PrefixIdentity:   hard,
		quest.PrefixNetwork:    hard,
		quest.PrefixMultiplier: dyn,
		quest.PrefixProtection: dyn,
	}
	return e
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// ApplyForTrigger evaluates the item's configurations whose trigger matches
// the lifecycle event and applies each. A failing configuration is logged
// and skipped, not fatal to its siblings. Returns the number applied.
func (e *Engine) ApplyForTrigger(ctx context.Context, playerID, episodeID, itemID string, trigger quest.TriggerType) (int, error) {
	if playerID == "" || episodeID == "" || itemID == "" || !quest.IsSupportedTrigger(trigger) {
		return 0, ErrInvalidRequest
	}
	configs, err := e.ItemEffects.ListForTrigger(ctx, itemID, trigger)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, cfg := range configs {
		typeID, err := quest.ParseEffectType(cfg.EffectType)
		if err != nil {
			e.Logger.Warn("skipping malformed item effect config",
				"item_id", itemID, "config_id", cfg.ID, "effect_type", cfg.EffectType, "error", err)
			continue
		}
		req := effectRequest{
			PlayerID:  playerID,
			EpisodeID: episodeID,
			Type:      typeID,
			Config:    cfg,
			Now:       e.now(),
		}
		if err := e.handlers[typeID.Prefix].Apply(ctx, req); err != nil {
			e.Logger.Error("item effect application failed",
				"player_id", playerID, "item_id", itemID, "effect_type", cfg.EffectType, "error", err)
			continue
		}
		applied++
	}
	return applied, nil
}

// RemoveEffect removes the lived status rows for the given effect type.
func (e *Engine) RemoveEffect(ctx context.Context, playerID, episodeID, effectType string) error {
	typeID, err := quest.ParseEffectType(effectType)
	if err != nil {
		return err
	}
	req := effectRequest{PlayerID: playerID, EpisodeID: episodeID, Type: typeID, Now: e.now()}
	return e.handlers[typeID.Prefix].Remove(ctx, req)
}

// IsActive reports whether the player currently has an unexpired effect of
// the given type. Expired rows read as inactive regardless of sweeps.
func (e *Engine) IsActive(ctx context.Context, playerID, episodeID, effectType string) (bool, error) {
	typeID, err := quest.ParseEffectType(effectType)
	if err != nil {
		return false, err
	}
	req := effectRequest{PlayerID: playerID, EpisodeID: episodeID, Type: typeID, Now: e.now()}
	return e.handlers[typeID.Prefix].IsActive(ctx, req)
}

// XPMultiplier returns the combined multiplier from the player's active
// multiplier effects, computed from row metadata at award time. No active
// multiplier yields 1.
func (e *Engine) XPMultiplier(ctx context.Context, playerID, episodeID string) (float64, error) {
	rows, err := e.StatusEffects.ListActive(ctx, playerID, episodeID, e.now())
	if err != nil {
		return 1, err
	}
	multiplier := 1.0
	for _, row := range rows {
		typeID, err := quest.ParseEffectType(row.StatusType)
		if err != nil || typeID.Prefix != quest.PrefixMultiplier {
			continue
		}
		if m, ok := metadataFloat(row.Metadata, "multiplier"); ok && m > 0 {
			multiplier *= m
		}
	}
	return multiplier, nil
}

// AbsorbHarmful consumes one protection charge if the player holds an
// active shield, reporting whether the incoming harmful effect was
// absorbed. The charge count lives in row metadata and is decremented at
// the moment of absorption; the row is removed at zero.
func (e *Engine) AbsorbHarmful(ctx context.Context, playerID, episodeID string) (bool, error) {
	rows, err := e.StatusEffects.ListActive(ctx, playerID, episodeID, e.now())
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		typeID, err := quest.ParseEffectType(row.StatusType)
		if err != nil || typeID.Prefix != quest.PrefixProtection {
			continue
		}
		charges, ok := metadataFloat(row.Metadata, "absorb_amount")
		if !ok || charges < 1 {
			continue
		}
		if charges <= 1 {
			if err := e.StatusEffects.Remove(ctx, row.ID); err != nil {
				return false, err
			}
			return true, nil
		}
		meta := cloneMetadata(row.Metadata)
		meta["absorb_amount"] = charges - 1
		if err := e.StatusEffects.UpdateMetadata(ctx, row.ID, meta); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// ActiveEffect returns the first unexpired status row of the given type.
func (e *Engine) ActiveEffect(ctx context.Context, playerID, episodeID, effectType string) (*quest.StatusEffect, error) {
	rows, err := e.StatusEffects.ListActive(ctx, playerID, episodeID, e.now())
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.StatusType == effectType {
			return &row, nil
		}
	}
	return nil, nil
}

func metadataFloat(metadata map[string]any, key string) (float64, bool) {
	v, ok := metadata[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func cloneMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
