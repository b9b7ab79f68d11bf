package gormrepo

import (
	"context"
	"encoding/json"
	"time"

	"questgrid/internal/adapter/repo/gorm/model"
	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"gorm.io/gorm"
)

type StatusEffectRepo struct {
	db *gorm.DB
}

func NewStatusEffectRepo(db *gorm.DB) StatusEffectRepo {
	return StatusEffectRepo{db: db}
}

func (r StatusEffectRepo) Insert(ctx context.Context, effect quest.StatusEffect) error {
	metadata, err := json.Marshal(effect.Metadata)
	if err != nil {
		return err
	}
	row := model.PlayerStatusEffect{
		ID:         effect.ID,
		PlayerID:   effect.PlayerID,
		EpisodeID:  effect.EpisodeID,
		StatusType: effect.StatusType,
		AppliedAt:  effect.AppliedAt,
		ExpiresAt:  effect.ExpiresAt,
		Metadata:   metadata,
	}
	return getDBFromCtx(ctx, r.db).Create(&row).Error
}

// ListActive filters expiry in the query; expired rows left behind by a
// pending sweep are invisible to every read path.
func (r StatusEffectRepo) ListActive(ctx context.Context, playerID, episodeID string, now time.Time) ([]quest.StatusEffect, error) {
	rows := []model.PlayerStatusEffect{}
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND episode_id = ?", playerID, episodeID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("applied_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]quest.StatusEffect, 0, len(rows))
	for _, row := range rows {
		e := quest.StatusEffect{
			ID:         row.ID,
			PlayerID:   row.PlayerID,
			EpisodeID:  row.EpisodeID,
			StatusType: row.StatusType,
			AppliedAt:  row.AppliedAt,
			ExpiresAt:  row.ExpiresAt,
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &e.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (r StatusEffectRepo) RemoveByType(ctx context.Context, playerID, episodeID, statusType string) error {
	return getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND episode_id = ? AND status_type = ?", playerID, episodeID, statusType).
		Delete(&model.PlayerStatusEffect{}).Error
}

func (r StatusEffectRepo) UpdateMetadata(ctx context.Context, effectID string, metadata map[string]any) error {
	b, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	res := getDBFromCtx(ctx, r.db).
		Model(&model.PlayerStatusEffect{}).
		Where("id = ?", effectID).
		Update("metadata", b)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r StatusEffectRepo) Remove(ctx context.Context, effectID string) error {
	return getDBFromCtx(ctx, r.db).
		Where("id = ?", effectID).
		Delete(&model.PlayerStatusEffect{}).Error
}

func (r StatusEffectRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := getDBFromCtx(ctx, r.db).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&model.PlayerStatusEffect{})
	return res.RowsAffected, res.Error
}
