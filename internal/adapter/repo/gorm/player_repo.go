package gormrepo

import (
	"context"
	"errors"

	"questgrid/internal/adapter/repo/gorm/model"
	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"gorm.io/gorm"
)

type PlayerRepo struct {
	db *gorm.DB
}

func NewPlayerRepo(db *gorm.DB) PlayerRepo {
	return PlayerRepo{db: db}
}

func (r PlayerRepo) Get(ctx context.Context, playerID string) (quest.Player, error) {
	var row model.Player
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", playerID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quest.Player{}, ports.ErrNotFound
		}
		return quest.Player{}, err
	}
	return quest.Player{ID: row.ID, Level: int(row.Level), Experience: int(row.Experience)}, nil
}

func (r PlayerRepo) Exists(ctx context.Context, playerID string) (bool, error) {
	var count int64
	err := getDBFromCtx(ctx, r.db).
		Model(&model.Player{}).
		Where("id = ?", playerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r PlayerRepo) AddExperience(ctx context.Context, playerID string, delta int) error {
	return r.addColumn(ctx, playerID, "experience", delta)
}

func (r PlayerRepo) AddLevel(ctx context.Context, playerID string, delta int) error {
	return r.addColumn(ctx, playerID, "level", delta)
}

// addColumn applies the delta in SQL so concurrent awards never lose an
// update.
func (r PlayerRepo) addColumn(ctx context.Context, playerID, column string, delta int) error {
	res := getDBFromCtx(ctx, r.db).
		Model(&model.Player{}).
		Where("id = ?", playerID).
		Update(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}
