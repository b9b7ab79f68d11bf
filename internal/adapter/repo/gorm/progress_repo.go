package gormrepo

import (
	"context"
	"time"

	"questgrid/internal/adapter/repo/gorm/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressItemRepo struct {
	db *gorm.DB
}

func NewProgressItemRepo(db *gorm.DB) ProgressItemRepo {
	return ProgressItemRepo{db: db}
}

func (r ProgressItemRepo) ListOwned(ctx context.Context, playerID, episodeID string) (map[string]bool, error) {
	rows := []model.PlayerProgressItem{}
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND episode_id = ?", playerID, episodeID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[row.ProgressItemID] = true
	}
	return out, nil
}

func (r ProgressItemRepo) Grant(ctx context.Context, playerID, episodeID, progressItemID string) error {
	row := model.PlayerProgressItem{
		PlayerID:       playerID,
		EpisodeID:      episodeID,
		ProgressItemID: progressItemID,
		GrantedAt:      time.Now(),
	}
	return getDBFromCtx(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

type AchievementRepo struct {
	db *gorm.DB
}

func NewAchievementRepo(db *gorm.DB) AchievementRepo {
	return AchievementRepo{db: db}
}

func (r AchievementRepo) ListOwned(ctx context.Context, playerID string) (map[string]bool, error) {
	rows := []model.PlayerAchievement{}
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ?", playerID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[row.AchievementID] = true
	}
	return out, nil
}

func (r AchievementRepo) Grant(ctx context.Context, playerID, achievementID string) error {
	row := model.PlayerAchievement{
		PlayerID:      playerID,
		AchievementID: achievementID,
		GrantedAt:     time.Now(),
	}
	return getDBFromCtx(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
