package gormrepo

import (
	"context"
	"errors"
	"time"

	"questgrid/internal/adapter/repo/gorm/model"
	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errSwapInsufficientItem = errors.New("selected item no longer owned")

type ExchangeRepo struct {
	db *gorm.DB
}

func NewExchangeRepo(db *gorm.DB) ExchangeRepo {
	return ExchangeRepo{db: db}
}

func (r ExchangeRepo) Create(ctx context.Context, session quest.ExchangeSession) error {
	row := sessionToRow(session)
	return getDBFromCtx(ctx, r.db).Create(&row).Error
}

func (r ExchangeRepo) Get(ctx context.Context, sessionID string) (quest.ExchangeSession, error) {
	var row model.ExchangeSession
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", sessionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quest.ExchangeSession{}, ports.ErrNotFound
		}
		return quest.ExchangeSession{}, err
	}
	return sessionFromRow(row), nil
}

func (r ExchangeRepo) SetItem(ctx context.Context, sessionID string, role quest.ExchangeRole, itemID string, at time.Time) error {
	itemCol, confirmedCol := roleColumns(role)
	res := getDBFromCtx(ctx, r.db).
		Model(&model.ExchangeSession{}).
		Where("id = ? AND status = ? AND NOT "+confirmedCol, sessionID, string(quest.ExchangeActive)).
		Updates(map[string]any{itemCol: itemID, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func (r ExchangeRepo) SetConfirmed(ctx context.Context, sessionID string, role quest.ExchangeRole, at time.Time) error {
	_, confirmedCol := roleColumns(role)
	res := getDBFromCtx(ctx, r.db).
		Model(&model.ExchangeSession{}).
		Where("id = ? AND status = ?", sessionID, string(quest.ExchangeActive)).
		Where("player_a_item_id <> '' AND player_b_item_id <> ''").
		Where("NOT " + confirmedCol).
		Updates(map[string]any{confirmedCol: true, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

// Settle swaps the two selected items and flips the session to completed in
// one transaction. The row lock makes the status check authoritative, so of
// two racing settlers one commits and the other reads a terminal row.
func (r ExchangeRepo) Settle(ctx context.Context, sessionID string, at time.Time) error {
	return getDBFromCtx(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var row model.ExchangeSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sessionID).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		if row.Status != string(quest.ExchangeActive) {
			return ports.ErrConflict
		}
		if row.PlayerAItemID == "" || row.PlayerBItemID == "" || !row.PlayerAConfirmed || !row.PlayerBConfirmed {
			return ports.ErrConflict
		}

		if err := debitItem(tx, row.PlayerAID, row.EpisodeID, row.PlayerAItemID); err != nil {
			return err
		}
		if err := debitItem(tx, row.PlayerBID, row.EpisodeID, row.PlayerBItemID); err != nil {
			return err
		}
		if err := creditItem(tx, row.PlayerBID, row.EpisodeID, row.PlayerAItemID); err != nil {
			return err
		}
		if err := creditItem(tx, row.PlayerAID, row.EpisodeID, row.PlayerBItemID); err != nil {
			return err
		}

		return tx.Model(&model.ExchangeSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]any{"status": string(quest.ExchangeCompleted), "updated_at": at}).Error
	})
}

func (r ExchangeRepo) Cancel(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	res := getDBFromCtx(ctx, r.db).
		Model(&model.ExchangeSession{}).
		Where("id = ? AND status = ?", sessionID, string(quest.ExchangeActive)).
		Updates(map[string]any{"status": string(quest.ExchangeCancelled), "updated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r ExchangeRepo) ListStaleActive(ctx context.Context, updatedBefore time.Time) ([]string, error) {
	ids := []string{}
	err := getDBFromCtx(ctx, r.db).
		Model(&model.ExchangeSession{}).
		Where("status = ? AND updated_at < ?", string(quest.ExchangeActive), updatedBefore).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func debitItem(tx *gorm.DB, playerID, episodeID, itemID string) error {
	res := tx.Model(&model.InventoryItem{}).
		Where("player_id = ? AND episode_id = ? AND item_id = ? AND quantity >= 1", playerID, episodeID, itemID).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errSwapInsufficientItem
	}
	return nil
}

func creditItem(tx *gorm.DB, playerID, episodeID, itemID string) error {
	row := model.InventoryItem{PlayerID: playerID, EpisodeID: episodeID, ItemID: itemID, Quantity: 1}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}, {Name: "episode_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("inventory_items.quantity + 1")}),
	}).Create(&row).Error
}

func roleColumns(role quest.ExchangeRole) (itemCol, confirmedCol string) {
	if role == quest.RolePlayerA {
		return "player_a_item_id", "player_a_confirmed"
	}
	return "player_b_item_id", "player_b_confirmed"
}

func sessionToRow(s quest.ExchangeSession) model.ExchangeSession {
	return model.ExchangeSession{
		ID:               s.ID,
		EpisodeID:        s.EpisodeID,
		PlayerAID:        s.PlayerAID,
		PlayerBID:        s.PlayerBID,
		PlayerAItemID:    s.PlayerAItemID,
		PlayerBItemID:    s.PlayerBItemID,
		PlayerAConfirmed: s.PlayerAConfirmed,
		PlayerBConfirmed: s.PlayerBConfirmed,
		Status:           string(s.Status),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func sessionFromRow(row model.ExchangeSession) quest.ExchangeSession {
	return quest.ExchangeSession{
		ID:               row.ID,
		EpisodeID:        row.EpisodeID,
		PlayerAID:        row.PlayerAID,
		PlayerBID:        row.PlayerBID,
		PlayerAItemID:    row.PlayerAItemID,
		PlayerBItemID:    row.PlayerBItemID,
		PlayerAConfirmed: row.PlayerAConfirmed,
		PlayerBConfirmed: row.PlayerBConfirmed,
		Status:           quest.ExchangeStatus(row.Status),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
