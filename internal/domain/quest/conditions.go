package quest

import "time"

// EvalCondition evaluates one condition against a player snapshot. A
// condition referencing an unknown entity evaluates false, never errors.
func EvalCondition(c Condition, s PlayerSnapshot, now time.Time) bool {
	switch c.Type {
	case ConditionCompletedProgress:
		return s.ProgressItems[c.Payload.ProgressItemID]
	case ConditionPlayerExperience:
		return s.Player.Experience >= c.Payload.Minimum
	case ConditionPlayerLevel:
		return s.Player.Level >= c.Payload.Minimum
	case ConditionHasInventoryItem:
		min := c.Payload.MinQuantity
		if min < 1 {
			min = 1
		}
		return s.Inventory[c.Payload.ItemID] >= min
	case ConditionHasAchievement:
		return s.Achievements[c.Payload.AchievementID]
	case ConditionHasStatusEffect:
		return s.HasActiveStatus(c.Payload.StatusType, now)
	case ConditionGPSLocation:
		if s.Coords == nil {
			return false
		}
		d := DistanceMeters(s.Coords.Lat, s.Coords.Lng, c.Payload.Lat, c.Payload.Lng)
		return d <= c.Payload.RadiusMeters
	default:
		return false
	}
}

// NodeVisible reports whether a node is visible to the player. A node with
// no conditions is always visible; otherwise every condition must hold.
func NodeVisible(node Node, conditions []Condition, s PlayerSnapshot, now time.Time) bool {
	if node.HiddenItemID != "" && s.ProgressItems[node.HiddenItemID] {
		return false
	}
	for _, c := range conditions {
		if !EvalCondition(c, s, now) {
			return false
		}
	}
	return true
}
