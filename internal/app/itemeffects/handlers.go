package itemeffects

import (
	"context"
	"log/slog"
	"time"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"github.com/google/uuid"
)

type effectRequest struct {
	PlayerID  string
	EpisodeID string
	Type      quest.EffectTypeID
	Config    quest.ItemEffectConfig
	Now       time.Time
}

// effectHandler is the strategy seam between hard-coded and dynamic
// effects. Both persist a status row; they differ in how the row is
// interpreted when consulted.
type effectHandler interface {
	Apply(ctx context.Context, req effectRequest) error
	Remove(ctx context.Context, req effectRequest) error
	IsActive(ctx context.Context, req effectRequest) (bool, error)
}

// Built-in behavior table. The specifics under the hard-coded prefixes are
// fixed engine behaviors; the status row mainly records that the behavior
// is active for the player.
var builtinEffects = map[string]string{
	"scanner:blocked":       "QR pickup disabled",
	"scanner:double":        "QR completion grants bonus experience",
	"identity:role_vampire": "player tagged with the vampire role",
	"identity:role_hunter":  "player tagged with the hunter role",
	"network:invisible_map": "player hidden from proximity discovery",
}

type hardcodedHandler struct {
	statusEffects ports.StatusEffectRepository
	logger        *slog.Logger
}

func (h hardcodedHandler) Apply(ctx context.Context, req effectRequest) error {
	statusType := req.Type.String()
	if _, ok := builtinEffects[statusType]; !ok {
		// Unknown specific under a hard-coded prefix is a referential
		// inconsistency: no-op, never fatal.
		h.logger.Warn("unknown built-in item effect, skipping",
			"player_id", req.PlayerID, "effect_type", statusType)
		return nil
	}
	return h.statusEffects.Insert(ctx, quest.StatusEffect{
		ID:         uuid.NewString(),
		PlayerID:   req.PlayerID,
		EpisodeID:  req.EpisodeID,
		StatusType: statusType,
		AppliedAt:  req.Now,
		ExpiresAt:  expiryFor(req.Config, req.Now),
		Metadata:   req.Config.Metadata,
	})
}

func (h hardcodedHandler) Remove(ctx context.Context, req effectRequest) error {
	return h.statusEffects.RemoveByType(ctx, req.PlayerID, req.EpisodeID, req.Type.String())
}

func (h hardcodedHandler) IsActive(ctx context.Context, req effectRequest) (bool, error) {
	return hasActiveRow(ctx, h.statusEffects, req)
}

type dynamicHandler struct {
	statusEffects ports.StatusEffectRepository
	logger        *slog.Logger
}

func (h dynamicHandler) Apply(ctx context.Context, req effectRequest) error {
	// The numeric effect is computed from metadata at the moment of use;
	// the row only carries the parameters.
	if len(req.Config.Metadata) == 0 {
		h.logger.Warn("dynamic item effect without metadata, skipping",
			"player_id", req.PlayerID, "effect_type", req.Type.String())
		return nil
	}
	return h.statusEffects.Insert(ctx, quest.StatusEffect{
		ID:         uuid.NewString(),
		PlayerID:   req.PlayerID,
		EpisodeID:  req.EpisodeID,
		StatusType: req.Type.String(),
		AppliedAt:  req.Now,
		ExpiresAt:  expiryFor(req.Config, req.Now),
		Metadata:   req.Config.Metadata,
	})
}

func (h dynamicHandler) Remove(ctx context.Context, req effectRequest) error {
	return h.statusEffects.RemoveByType(ctx, req.PlayerID, req.EpisodeID, req.Type.String())
}

func (h dynamicHandler) IsActive(ctx context.Context, req effectRequest) (bool, error) {
	return hasActiveRow(ctx, h.statusEffects, req)
}

func expiryFor(cfg quest.ItemEffectConfig, now time.Time) *time.Time {
	if cfg.DurationMinutes <= 0 {
		// Lives until episode end.
		return nil
	}
	t := now.Add(time.Duration(cfg.DurationMinutes) * time.Minute)
	return &t
}

func hasActiveRow(ctx context.Context, repo ports.StatusEffectRepository, req effectRequest) (bool, error) {
	rows, err := repo.ListActive(ctx, req.PlayerID, req.EpisodeID, req.Now)
	if err != nil {
		return false, err
	}
	statusType := req.Type.String()
	for _, row := range rows {
		if row.StatusType == statusType {
			return true, nil
		}
	}
	return false, nil
}
