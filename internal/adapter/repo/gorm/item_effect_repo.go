package gormrepo

import (
	"context"
	"encoding/json"

	"questgrid/internal/adapter/repo/gorm/model"
	"questgrid/internal/domain/quest"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemEffectRepo struct {
	db *gorm.DB
}

func NewItemEffectRepo(db *gorm.DB) ItemEffectRepo {
	return ItemEffectRepo{db: db}
}

func (r ItemEffectRepo) ListForTrigger(ctx context.Context, itemID string, trigger quest.TriggerType) ([]quest.ItemEffectConfig, error) {
	rows := []model.ItemEffectConfig{}
	err := getDBFromCtx(ctx, r.db).
		Where("item_id = ? AND trigger_on = ? AND active", itemID, string(trigger)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]quest.ItemEffectConfig, 0, len(rows))
	for _, row := range rows {
		cfg := quest.ItemEffectConfig{
			ID:              row.ID,
			ItemID:          row.ItemID,
			EffectType:      row.EffectType,
			DurationMinutes: int(row.DurationMinutes),
			TriggerOn:       quest.TriggerType(row.TriggerOn),
			Active:          row.Active,
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &cfg.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (r ItemEffectRepo) Upsert(ctx context.Context, config quest.ItemEffectConfig) error {
	metadata, err := json.Marshal(config.Metadata)
	if err != nil {
		return err
	}
	row := model.ItemEffectConfig{
		ID:              config.ID,
		ItemID:          config.ItemID,
		EffectType:      config.EffectType,
		Metadata:        metadata,
		DurationMinutes: int32(config.DurationMinutes),
		TriggerOn:       string(config.TriggerOn),
		Active:          config.Active,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}
