package gormrepo

import (
	"context"
	"encoding/json"
	"errors"

	"questgrid/internal/adapter/repo/gorm/model"
	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentRepo struct {
	db *gorm.DB
}

func NewContentRepo(db *gorm.DB) ContentRepo {
	return ContentRepo{db: db}
}

func (r ContentRepo) ListNodes(ctx context.Context, episodeID string) ([]quest.Node, error) {
	rows := []model.Node{}
	err := getDBFromCtx(ctx, r.db).
		Where(&model.Node{EpisodeID: episodeID}).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]quest.Node, 0, len(rows))
	for _, row := range rows {
		out = append(out, nodeFromRow(row))
	}
	return out, nil
}

func (r ContentRepo) GetNode(ctx context.Context, nodeID string) (quest.Node, error) {
	var row model.Node
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", nodeID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quest.Node{}, ports.ErrNotFound
		}
		return quest.Node{}, err
	}
	return nodeFromRow(row), nil
}

func (r ContentRepo) ListConditions(ctx context.Context, nodeID string) ([]quest.Condition, error) {
	rows := []model.NodeCondition{}
	err := getDBFromCtx(ctx, r.db).
		Where(&model.NodeCondition{NodeID: nodeID}).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]quest.Condition, 0, len(rows))
	for _, row := range rows {
		c := quest.Condition{ID: row.ID, NodeID: row.NodeID, Type: quest.ConditionType(row.Type)}
		if err := unmarshalPayload(row.Payload, &c.Payload); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r ContentRepo) ListTargets(ctx context.Context, nodeID string) ([]quest.Target, error) {
	rows := []model.NodeTarget{}
	err := getDBFromCtx(ctx, r.db).
		Where(&model.NodeTarget{NodeID: nodeID}).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]quest.Target, 0, len(rows))
	for _, row := range rows {
		t, err := targetFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r ContentRepo) GetTarget(ctx context.Context, targetID string) (quest.Target, error) {
	var row model.NodeTarget
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", targetID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quest.Target{}, ports.ErrNotFound
		}
		return quest.Target{}, err
	}
	return targetFromRow(row)
}

func (r ContentRepo) ListEffects(ctx context.Context, nodeID string) ([]quest.Effect, error) {
	rows := []model.NodeEffect{}
	err := getDBFromCtx(ctx, r.db).
		Where(&model.NodeEffect{NodeID: nodeID}).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]quest.Effect, 0, len(rows))
	for _, row := range rows {
		e := quest.Effect{ID: row.ID, NodeID: row.NodeID, Type: quest.EffectType(row.Type)}
		if err := unmarshalPayload(row.Payload, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r ContentRepo) UpsertNode(ctx context.Context, node quest.Node) error {
	row := model.Node{
		ID:           node.ID,
		EpisodeID:    node.EpisodeID,
		Category:     string(node.Category),
		Title:        node.Title,
		Body:         node.Body,
		HiddenItemID: node.HiddenItemID,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (r ContentRepo) UpsertCondition(ctx context.Context, condition quest.Condition) error {
	payload, err := json.Marshal(condition.Payload)
	if err != nil {
		return err
	}
	row := model.NodeCondition{ID: condition.ID, NodeID: condition.NodeID, Type: string(condition.Type), Payload: payload}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (r ContentRepo) UpsertTarget(ctx context.Context, target quest.Target) error {
	payload, err := json.Marshal(target.Payload)
	if err != nil {
		return err
	}
	row := model.NodeTarget{ID: target.ID, NodeID: target.NodeID, Type: string(target.Type), Payload: payload}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (r ContentRepo) UpsertEffect(ctx context.Context, effect quest.Effect) error {
	payload, err := json.Marshal(effect.Payload)
	if err != nil {
		return err
	}
	row := model.NodeEffect{ID: effect.ID, NodeID: effect.NodeID, Type: string(effect.Type), Payload: payload}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func nodeFromRow(row model.Node) quest.Node {
	return quest.Node{
		ID:           row.ID,
		EpisodeID:    row.EpisodeID,
		Category:     quest.NodeCategory(row.Category),
		Title:        row.Title,
		Body:         row.Body,
		HiddenItemID: row.HiddenItemID,
	}
}

func targetFromRow(row model.NodeTarget) (quest.Target, error) {
	t := quest.Target{ID: row.ID, NodeID: row.NodeID, Type: quest.TargetType(row.Type)}
	if err := unmarshalPayload(row.Payload, &t.Payload); err != nil {
		return quest.Target{}, err
	}
	return t, nil
}

func unmarshalPayload(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
