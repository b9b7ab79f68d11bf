package gormrepo

import (
	"context"
	"errors"

	"questgrid/internal/adapter/repo/gorm/model"
	"questgrid/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepo {
	return InventoryRepo{db: db}
}

func (r InventoryRepo) Quantity(ctx context.Context, playerID, episodeID, itemID string) (int, error) {
	var row model.InventoryItem
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND episode_id = ? AND item_id = ?", playerID, episodeID, itemID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return int(row.Quantity), nil
}

func (r InventoryRepo) ListOwned(ctx context.Context, playerID, episodeID string) (map[string]int, error) {
	rows := []model.InventoryItem{}
	err := getDBFromCtx(ctx, r.db).
		Where("player_id = ? AND episode_id = ? AND quantity > 0", playerID, episodeID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.ItemID] = int(row.Quantity)
	}
	return out, nil
}

func (r InventoryRepo) Grant(ctx context.Context, playerID, episodeID, itemID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	row := model.InventoryItem{PlayerID: playerID, EpisodeID: episodeID, ItemID: itemID, Quantity: int32(qty)}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "episode_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("inventory_items.quantity + ?", qty)}),
		}).
		Create(&row).Error
}

func (r InventoryRepo) Consume(ctx context.Context, playerID, episodeID, itemID string) error {
	// The quantity guard in the WHERE makes the decrement race-safe: two
	// consumers of a single item see exactly one success.
	res := getDBFromCtx(ctx, r.db).
		Model(&model.InventoryItem{}).
		Where("player_id = ? AND episode_id = ? AND item_id = ? AND quantity >= 1", playerID, episodeID, itemID).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
