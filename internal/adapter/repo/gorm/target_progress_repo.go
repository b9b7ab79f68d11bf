package gormrepo

import (
	"context"
	"errors"
	"time"

	"questgrid/internal/adapter/repo/gorm/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TargetProgressRepo struct {
	db *gorm.DB
}

func NewTargetProgressRepo(db *gorm.DB) TargetProgressRepo {
	return TargetProgressRepo{db: db}
}

// MarkCompleted inserts the completion row if absent. RowsAffected tells the
// caller whether this submission performed the transition.
func (r TargetProgressRepo) MarkCompleted(ctx context.Context, playerID, targetID string, at time.Time) (bool, error) {
	row := model.PlayerTargetCompletion{PlayerID: playerID, TargetID: targetID, CompletedAt: at}
	res := getDBFromCtx(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r TargetProgressRepo) CompletedTargetIDs(ctx context.Context, playerID string, targetIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	rows := []model.PlayerTargetCompletion{}
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND target_id IN ?", playerID, targetIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = true
	}
	return out, nil
}

// MarkNodeCompleted is the winner-picking insert: under concurrent
// last-target submissions exactly one caller creates the row.
func (r TargetProgressRepo) MarkNodeCompleted(ctx context.Context, playerID, nodeID string, at time.Time) (bool, error) {
	row := model.PlayerNodeCompletion{PlayerID: playerID, NodeID: nodeID, CompletedAt: at}
	res := getDBFromCtx(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r TargetProgressRepo) NodeCompleted(ctx context.Context, playerID, nodeID string) (bool, error) {
	var row model.PlayerNodeCompletion
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND node_id = ?", playerID, nodeID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
