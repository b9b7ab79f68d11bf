package model

import "time"

// Hand-maintained row structs for the questgrid schema. Column names follow
// migrations/0001_init.sql; regenerate with tools/modelgen after schema
// changes if drift is suspected.

type Node struct {
	ID           string `gorm:"column:id;primaryKey"`
	EpisodeID    string `gorm:"column:episode_id;index"`
	Category     string `gorm:"column:category"`
	Title        string `gorm:"column:title"`
	Body         string `gorm:"column:body"`
	HiddenItemID string `gorm:"column:hidden_item_id"`
}

func (Node) TableName() string { return "nodes" }

type NodeCondition struct {
	ID      string `gorm:"column:id;primaryKey"`
	NodeID  string `gorm:"column:node_id;index"`
	Type    string `gorm:"column:type"`
	Payload []byte `gorm:"column:payload;type:jsonb"`
}

func (NodeCondition) TableName() string { return "node_conditions" }

type NodeTarget struct {
	ID      string `gorm:"column:id;primaryKey"`
	NodeID  string `gorm:"column:node_id;index"`
	Type    string `gorm:"column:type"`
	Payload []byte `gorm:"column:payload;type:jsonb"`
}

func (NodeTarget) TableName() string { return "node_targets" }

type NodeEffect struct {
	ID      string `gorm:"column:id;primaryKey"`
	NodeID  string `gorm:"column:node_id;index"`
	Type    string `gorm:"column:type"`
	Payload []byte `gorm:"column:payload;type:jsonb"`
}

func (NodeEffect) TableName() string { return "node_effects" }

type ItemEffectConfig struct {
	ID              string `gorm:"column:id;primaryKey"`
	ItemID          string `gorm:"column:item_id;index"`
	EffectType      string `gorm:"column:effect_type"`
	Metadata        []byte `gorm:"column:metadata;type:jsonb"`
	DurationMinutes int32  `gorm:"column:duration_minutes"`
	TriggerOn       string `gorm:"column:trigger_on"`
	Active          bool   `gorm:"column:active"`
}

func (ItemEffectConfig) TableName() string { return "item_effect_configs" }

type Player struct {
	ID         string `gorm:"column:id;primaryKey"`
	Level      int32  `gorm:"column:level"`
	Experience int32  `gorm:"column:experience"`
}

func (Player) TableName() string { return "players" }

type InventoryItem struct {
	PlayerID  string `gorm:"column:player_id;primaryKey"`
	EpisodeID string `gorm:"column:episode_id;primaryKey"`
	ItemID    string `gorm:"column:item_id;primaryKey"`
	Quantity  int32  `gorm:"column:quantity"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

type PlayerProgressItem struct {
	PlayerID       string    `gorm:"column:player_id;primaryKey"`
	EpisodeID      string    `gorm:"column:episode_id;primaryKey"`
	ProgressItemID string    `gorm:"column:progress_item_id;primaryKey"`
	GrantedAt      time.Time `gorm:"column:granted_at"`
}

func (PlayerProgressItem) TableName() string { return "player_progress_items" }

type PlayerAchievement struct {
	PlayerID      string    `gorm:"column:player_id;primaryKey"`
	AchievementID string    `gorm:"column:achievement_id;primaryKey"`
	GrantedAt     time.Time `gorm:"column:granted_at"`
}

func (PlayerAchievement) TableName() string { return "player_achievements" }

type PlayerStatusEffect struct {
	ID         string     `gorm:"column:id;primaryKey"`
	PlayerID   string     `gorm:"column:player_id;index"`
	EpisodeID  string     `gorm:"column:episode_id"`
	StatusType string     `gorm:"column:status_type"`
	AppliedAt  time.Time  `gorm:"column:applied_at"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	Metadata   []byte     `gorm:"column:metadata;type:jsonb"`
}

func (PlayerStatusEffect) TableName() string { return "player_status_effects" }

type PlayerTargetCompletion struct {
	PlayerID    string    `gorm:"column:player_id;primaryKey"`
	TargetID    string    `gorm:"column:target_id;primaryKey"`
	CompletedAt time.Time `gorm:"column:completed_at"`
}

func (PlayerTargetCompletion) TableName() string { return "player_target_completions" }

type PlayerNodeCompletion struct {
	PlayerID    string    `gorm:"column:player_id;primaryKey"`
	NodeID      string    `gorm:"column:node_id;primaryKey"`
	CompletedAt time.Time `gorm:"column:completed_at"`
}

func (PlayerNodeCompletion) TableName() string { return "player_node_completions" }

type ExchangeSession struct {
	ID               string    `gorm:"column:id;primaryKey"`
	EpisodeID        string    `gorm:"column:episode_id"`
	PlayerAID        string    `gorm:"column:player_a_id;index"`
	PlayerBID        string    `gorm:"column:player_b_id;index"`
	PlayerAItemID    string    `gorm:"column:player_a_item_id"`
	PlayerBItemID    string    `gorm:"column:player_b_item_id"`
	PlayerAConfirmed bool      `gorm:"column:player_a_confirmed"`
	PlayerBConfirmed bool      `gorm:"column:player_b_confirmed"`
	Status           string    `gorm:"column:status;index"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (ExchangeSession) TableName() string { return "exchange_sessions" }
