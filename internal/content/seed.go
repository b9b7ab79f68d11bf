package content

import (
	"context"
	"fmt"
	"os"
	"strings"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"gopkg.in/yaml.v3"
)

// Seed is the authored episode content file. One file holds one episode's
// node graph plus the item effect configurations it relies on.
type Seed struct {
	EpisodeID   string           `yaml:"episode_id"`
	Nodes       []NodeSpec       `yaml:"nodes"`
	ItemEffects []ItemEffectSpec `yaml:"item_effects,omitempty"`
}

type NodeSpec struct {
	ID           string          `yaml:"id"`
	Category     string          `yaml:"category"`
	Title        string          `yaml:"title"`
	Body         string          `yaml:"body"`
	HiddenItemID string          `yaml:"hidden_item_id,omitempty"`
	Conditions   []ConditionSpec `yaml:"conditions,omitempty"`
	Targets      []TargetSpec    `yaml:"targets,omitempty"`
	Effects      []EffectSpec    `yaml:"effects,omitempty"`
}

type ConditionSpec struct {
	ID      string                 `yaml:"id"`
	Type    string                 `yaml:"type"`
	Payload quest.ConditionPayload `yaml:"payload"`
}

type TargetSpec struct {
	ID      string              `yaml:"id"`
	Type    string              `yaml:"type"`
	Payload quest.TargetPayload `yaml:"payload"`
}

type EffectSpec struct {
	ID      string              `yaml:"id"`
	Type    string              `yaml:"type"`
	Payload quest.EffectPayload `yaml:"payload"`
}

type ItemEffectSpec struct {
	ID              string         `yaml:"id"`
	ItemID          string         `yaml:"item_id"`
	EffectType      string         `yaml:"effect_type"`
	Metadata        map[string]any `yaml:"metadata,omitempty"`
	DurationMinutes int            `yaml:"duration_minutes,omitempty"`
	TriggerOn       string         `yaml:"trigger_on"`
	Active          bool           `yaml:"active"`
}

func Load(path string) (Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed file: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

func (s Seed) Validate() error {
	if strings.TrimSpace(s.EpisodeID) == "" {
		return fmt.Errorf("seed: episode_id is required")
	}
	seen := map[string]bool{}
	for _, n := range s.Nodes {
		if strings.TrimSpace(n.ID) == "" {
			return fmt.Errorf("seed: node with empty id")
		}
		if seen[n.ID] {
			return fmt.Errorf("seed: duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if len(n.Targets) == 0 {
			return fmt.Errorf("seed: node %q declares no targets and can never complete", n.ID)
		}
		for _, t := range n.Targets {
			switch quest.TargetType(t.Type) {
			case quest.TargetCodeEntry, quest.TargetGPSLocation, quest.TargetQRScan, quest.TargetOwnedItem:
			default:
				return fmt.Errorf("seed: node %q target %q has unknown type %q", n.ID, t.ID, t.Type)
			}
		}
		for _, c := range n.Conditions {
			switch quest.ConditionType(c.Type) {
			case quest.ConditionCompletedProgress, quest.ConditionPlayerExperience,
				quest.ConditionPlayerLevel, quest.ConditionHasInventoryItem,
				quest.ConditionHasAchievement, quest.ConditionHasStatusEffect,
				quest.ConditionGPSLocation:
			default:
				return fmt.Errorf("seed: node %q condition %q has unknown type %q", n.ID, c.ID, c.Type)
			}
		}
	}
	for _, ie := range s.ItemEffects {
		if _, err := quest.ParseEffectType(ie.EffectType); err != nil {
			return fmt.Errorf("seed: item effect %q: %w", ie.ID, err)
		}
		if !quest.IsSupportedTrigger(quest.TriggerType(ie.TriggerOn)) {
			return fmt.Errorf("seed: item effect %q has unknown trigger %q", ie.ID, ie.TriggerOn)
		}
	}
	return nil
}

// Importer writes a seed into the content store. Every row is an upsert, so
// re-running an import after editing the file is the normal workflow.
type Importer struct {
	Content     ports.ContentRepository
	ItemEffects ports.ItemEffectRepository
}

func (i Importer) Import(ctx context.Context, seed Seed) error {
	for _, n := range seed.Nodes {
		node := quest.Node{
			ID:           n.ID,
			EpisodeID:    seed.EpisodeID,
			Category:     quest.NodeCategory(n.Category),
			Title:        n.Title,
			Body:         n.Body,
			HiddenItemID: n.HiddenItemID,
		}
		if err := i.Content.UpsertNode(ctx, node); err != nil {
			return fmt.Errorf("upsert node %s: %w", n.ID, err)
		}
		for _, c := range n.Conditions {
			cond := quest.Condition{ID: c.ID, NodeID: n.ID, Type: quest.ConditionType(c.Type), Payload: c.Payload}
			if err := i.Content.UpsertCondition(ctx, cond); err != nil {
				return fmt.Errorf("upsert condition %s: %w", c.ID, err)
			}
		}
		for _, t := range n.Targets {
			target := quest.Target{ID: t.ID, NodeID: n.ID, Type: quest.TargetType(t.Type), Payload: t.Payload}
			if err := i.Content.UpsertTarget(ctx, target); err != nil {
				return fmt.Errorf("upsert target %s: %w", t.ID, err)
			}
		}
		for _, e := range n.Effects {
			effect := quest.Effect{ID: e.ID, NodeID: n.ID, Type: quest.EffectType(e.Type), Payload: e.Payload}
			if err := i.Content.UpsertEffect(ctx, effect); err != nil {
				return fmt.Errorf("upsert effect %s: %w", e.ID, err)
			}
		}
	}
	for _, ie := range seed.ItemEffects {
		cfg := quest.ItemEffectConfig{
			ID:              ie.ID,
			ItemID:          ie.ItemID,
			EffectType:      ie.EffectType,
			Metadata:        ie.Metadata,
			DurationMinutes: ie.DurationMinutes,
			TriggerOn:       quest.TriggerType(ie.TriggerOn),
			Active:          ie.Active,
		}
		if err := i.ItemEffects.Upsert(ctx, cfg); err != nil {
			return fmt.Errorf("upsert item effect %s: %w", ie.ID, err)
		}
	}
	return nil
}
