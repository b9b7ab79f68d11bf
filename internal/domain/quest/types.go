package quest

import "time"

type NodeCategory string

const (
	CategoryMainStory NodeCategory = "main_story"
	CategorySideQuest NodeCategory = "side_quest"
	CategoryTutorial  NodeCategory = "tutorial"
	CategoryEnding    NodeCategory = "ending"
)

type Node struct {
	ID        string       `json:"id"`
	EpisodeID string       `json:"episode_id"`
	Category  NodeCategory `json:"category"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	// HiddenItemID hides the node from players holding this progress item.
	HiddenItemID string `json:"hidden_item_id,omitempty"`
}

type ConditionType string

const (
	ConditionCompletedProgress ConditionType = "completed_progress"
	ConditionPlayerExperience  ConditionType = "player_experience"
	ConditionPlayerLevel       ConditionType = "player_level"
	ConditionHasInventoryItem  ConditionType = "has_inventory_item"
	ConditionHasAchievement    ConditionType = "has_achievement"
	ConditionHasStatusEffect   ConditionType = "has_status_effect"
	ConditionGPSLocation       ConditionType = "gps_location"
)

// ConditionPayload holds the per-type parameters of a condition. Only the
// fields matching the condition's type are meaningful.
type ConditionPayload struct {
	ProgressItemID string  `json:"progress_item_id,omitempty" yaml:"progress_item_id,omitempty"`
	Minimum        int     `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	ItemID         string  `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	MinQuantity    int     `json:"min_quantity,omitempty" yaml:"min_quantity,omitempty"`
	AchievementID  string  `json:"achievement_id,omitempty" yaml:"achievement_id,omitempty"`
	StatusType     string  `json:"status_type,omitempty" yaml:"status_type,omitempty"`
	Lat            float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng            float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
	RadiusMeters   float64 `json:"radius_meters,omitempty" yaml:"radius_meters,omitempty"`
}

type Condition struct {
	ID      string           `json:"id"`
	NodeID  string           `json:"node_id"`
	Type    ConditionType    `json:"type"`
	Payload ConditionPayload `json:"payload"`
}

type TargetType string

const (
	TargetCodeEntry   TargetType = "code_entry"
	TargetGPSLocation TargetType = "gps_location"
	TargetQRScan      TargetType = "qr_scan"
	TargetOwnedItem   TargetType = "owned_item"
)

type TargetPayload struct {
	Code         string  `json:"code,omitempty" yaml:"code,omitempty"`
	QRCode       string  `json:"qr_code,omitempty" yaml:"qr_code,omitempty"`
	Lat          float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng          float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
	RadiusMeters float64 `json:"radius_meters,omitempty" yaml:"radius_meters,omitempty"`
	ItemID       string  `json:"item_id,omitempty" yaml:"item_id,omitempty"`
}

type Target struct {
	ID      string        `json:"id"`
	NodeID  string        `json:"node_id"`
	Type    TargetType    `json:"type"`
	Payload TargetPayload `json:"payload"`
}

type EffectType string

const (
	EffectGrantProgressItem  EffectType = "grant_progress_item"
	EffectGrantInventoryItem EffectType = "grant_inventory_item"
	EffectModifyExperience   EffectType = "modify_experience"
	EffectModifyLevel        EffectType = "modify_level"
	EffectGrantAchievement   EffectType = "grant_achievement"
	EffectAddStatusEffect    EffectType = "add_status_effect"
)

type EffectPayload struct {
	ProgressItemID  string         `json:"progress_item_id,omitempty" yaml:"progress_item_id,omitempty"`
	ItemID          string         `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	Quantity        int            `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Delta           int            `json:"delta,omitempty" yaml:"delta,omitempty"`
	AchievementID   string         `json:"achievement_id,omitempty" yaml:"achievement_id,omitempty"`
	StatusType      string         `json:"status_type,omitempty" yaml:"status_type,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
	Harmful         bool           `json:"harmful,omitempty" yaml:"harmful,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type Effect struct {
	ID      string        `json:"id"`
	NodeID  string        `json:"node_id"`
	Type    EffectType    `json:"type"`
	Payload EffectPayload `json:"payload"`
}

// StatusEffect is a lived effect on a player. ExpiresAt == nil means the
// effect lasts until episode end, not forever.
type StatusEffect struct {
	ID         string         `json:"id"`
	PlayerID   string         `json:"player_id"`
	EpisodeID  string         `json:"episode_id"`
	StatusType string         `json:"status_type"`
	AppliedAt  time.Time      `json:"applied_at"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ActiveAt reports whether the effect is live at the given instant. An
// expired-but-not-yet-swept row must read as inactive.
func (e StatusEffect) ActiveAt(now time.Time) bool {
	return e.ExpiresAt == nil || e.ExpiresAt.After(now)
}

type TriggerType string

const (
	TriggerReceive TriggerType = "receive"
	TriggerUse     TriggerType = "use"
	TriggerEquip   TriggerType = "equip"
	TriggerConsume TriggerType = "consume"
)

func IsSupportedTrigger(t TriggerType) bool {
	switch t {
	case TriggerReceive, TriggerUse, TriggerEquip, TriggerConsume:
		return true
	}
	return false
}

// ItemEffectConfig binds an inventory item to a triggered gameplay effect.
type ItemEffectConfig struct {
	ID              string         `json:"id"`
	ItemID          string         `json:"item_id"`
	EffectType      string         `json:"effect_type"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
	TriggerOn       TriggerType    `json:"trigger_on"`
	Active          bool           `json:"active"`
}

type Player struct {
	ID         string `json:"id"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlayerSnapshot is the read-side view of a player's progress consumed by
// condition evaluation. Coords is nil when the client sent no GPS reading.
type PlayerSnapshot struct {
	Player        Player
	EpisodeID     string
	ProgressItems map[string]bool
	Inventory     map[string]int
	Achievements  map[string]bool
	StatusEffects []StatusEffect
	Coords        *Coordinates
}

// HasActiveStatus reports whether an unexpired status effect of the given
// type is present at the given instant.
func (s PlayerSnapshot) HasActiveStatus(statusType string, now time.Time) bool {
	for _, e := range s.StatusEffects {
		if e.StatusType == statusType && e.ActiveAt(now) {
			return true
		}
	}
	return false
}

type NodeState string

const (
	NodeLocked     NodeState = "locked"
	NodeUnlocked   NodeState = "unlocked"
	NodeInProgress NodeState = "in_progress"
	NodeCompleted  NodeState = "completed"
)

type ExchangeStatus string

const (
	ExchangeActive    ExchangeStatus = "active"
	ExchangeCompleted ExchangeStatus = "completed"
	ExchangeCancelled ExchangeStatus = "cancelled"
)

type ExchangeRole string

const (
	RolePlayerA ExchangeRole = "player_a"
	RolePlayerB ExchangeRole = "player_b"
)

// ExchangeSession is a two-party item trade negotiation. The scanning
// player takes the A slot. Item fields are empty until selected.
type ExchangeSession struct {
	ID               string         `json:"session_id"`
	EpisodeID        string         `json:"episode_id"`
	PlayerAID        string         `json:"player_a"`
	PlayerBID        string         `json:"player_b"`
	PlayerAItemID    string         `json:"player_a_item,omitempty"`
	PlayerBItemID    string         `json:"player_b_item,omitempty"`
	PlayerAConfirmed bool           `json:"player_a_confirmed"`
	PlayerBConfirmed bool           `json:"player_b_confirmed"`
	Status           ExchangeStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// RoleOf returns the slot the given player occupies in the session.
func (s ExchangeSession) RoleOf(playerID string) (ExchangeRole, bool) {
	switch playerID {
	case s.PlayerAID:
		return RolePlayerA, true
	case s.PlayerBID:
		return RolePlayerB, true
	}
	return "", false
}

func (s ExchangeSession) BothSelected() bool {
	return s.PlayerAItemID != "" && s.PlayerBItemID != ""
}

func (s ExchangeSession) BothConfirmed() bool {
	return s.PlayerAConfirmed && s.PlayerBConfirmed
}

func (s ExchangeSession) Terminal() bool {
	return s.Status != ExchangeActive
}
