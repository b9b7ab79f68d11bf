package ports

import (
	"context"
	"time"

	"questgrid/internal/domain/quest"
)

// ContentRepository serves authored episode content. Upserts exist for the
// authoring import path; gameplay only reads.
type ContentRepository interface {
	ListNodes(ctx context.Context, episodeID string) ([]quest.Node, error)
	GetNode(ctx context.Context, nodeID string) (quest.Node, error)
	ListConditions(ctx context.Context, nodeID string) ([]quest.Condition, error)
	ListTargets(ctx context.Context, nodeID string) ([]quest.Target, error)
	GetTarget(ctx context.Context, targetID string) (quest.Target, error)
	ListEffects(ctx context.Context, nodeID string) ([]quest.Effect, error)

	UpsertNode(ctx context.Context, node quest.Node) error
	UpsertCondition(ctx context.Context, condition quest.Condition) error
	UpsertTarget(ctx context.Context, target quest.Target) error
	UpsertEffect(ctx context.Context, effect quest.Effect) error
}

type PlayerRepository interface {
	Get(ctx context.Context, playerID string) (quest.Player, error)
	Exists(ctx context.Context, playerID string) (bool, error)
	// AddExperience and AddLevel apply additive deltas; negative results
	// are allowed to stand.
	AddExperience(ctx context.Context, playerID string, delta int) error
	AddLevel(ctx context.Context, playerID string, delta int) error
}

type InventoryRepository interface {
	Quantity(ctx context.Context, playerID, episodeID, itemID string) (int, error)
	ListOwned(ctx context.Context, playerID, episodeID string) (map[string]int, error)
	// Grant increases (or creates) the player's episode-inventory row.
	Grant(ctx context.Context, playerID, episodeID, itemID string, qty int) error
	// Consume decrements by one; returns ErrConflict when the player does
	// not own the item.
	Consume(ctx context.Context, playerID, episodeID, itemID string) error
}

type ProgressItemRepository interface {
	ListOwned(ctx context.Context, playerID, episodeID string) (map[string]bool, error)
	// Grant is idempotent; re-granting an owned progress item is a no-op.
	Grant(ctx context.Context, playerID, episodeID, progressItemID string) error
}

type AchievementRepository interface {
	ListOwned(ctx context.Context, playerID string) (map[string]bool, error)
	// Grant is idempotent; granting an already-held achievement is a no-op.
	Grant(ctx context.Context, playerID, achievementID string) error
}

type StatusEffectRepository interface {
	Insert(ctx context.Context, effect quest.StatusEffect) error
	// ListActive excludes rows whose expiry has passed at the given instant.
	ListActive(ctx context.Context, playerID, episodeID string, now time.Time) ([]quest.StatusEffect, error)
	RemoveByType(ctx context.Context, playerID, episodeID, statusType string) error
	UpdateMetadata(ctx context.Context, effectID string, metadata map[string]any) error
	Remove(ctx context.Context, effectID string) error
	// PurgeExpired is the sweep; reads never depend on it having run.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type TargetProgressRepository interface {
	// MarkCompleted upserts the completion row. newly is false when the
	// target was already completed; re-submission must not duplicate side
	// effects.
	MarkCompleted(ctx context.Context, playerID, targetID string, at time.Time) (newly bool, err error)
	CompletedTargetIDs(ctx context.Context, playerID string, targetIDs []string) (map[string]bool, error)
	// MarkNodeCompleted records the first transition into the fully
	// completed state. first is true for exactly one caller per
	// (player, node), even under concurrent last-target submissions.
	MarkNodeCompleted(ctx context.Context, playerID, nodeID string, at time.Time) (first bool, err error)
	NodeCompleted(ctx context.Context, playerID, nodeID string) (bool, error)
}

type ItemEffectRepository interface {
	// ListForTrigger returns active configurations for the item whose
	// trigger matches the lifecycle event.
	ListForTrigger(ctx context.Context, itemID string, trigger quest.TriggerType) ([]quest.ItemEffectConfig, error)
	Upsert(ctx context.Context, config quest.ItemEffectConfig) error
}

type ExchangeRepository interface {
	Create(ctx context.Context, session quest.ExchangeSession) error
	Get(ctx context.Context, sessionID string) (quest.ExchangeSession, error)
	// SetItem writes the player's slot while the session is active and the
	// slot unconfirmed; returns ErrConflict otherwise.
	SetItem(ctx context.Context, sessionID string, role quest.ExchangeRole, itemID string, at time.Time) error
	// SetConfirmed flips the slot's flag while the session is active, both
	// items are selected and the slot is not yet confirmed; returns
	// ErrConflict otherwise.
	SetConfirmed(ctx context.Context, sessionID string, role quest.ExchangeRole, at time.Time) error
	// Settle performs the atomic swap: status active→completed plus the
	// four inventory rows, all or nothing. Returns ErrConflict when the
	// session is no longer active (lost race); any other error means the
	// swap failed with no partial mutation persisted.
	Settle(ctx context.Context, sessionID string, at time.Time) error
	// Cancel flips active→cancelled; cancelled reports whether this call
	// performed the transition.
	Cancel(ctx context.Context, sessionID string, at time.Time) (cancelled bool, err error)
	ListStaleActive(ctx context.Context, updatedBefore time.Time) ([]string, error)
}
