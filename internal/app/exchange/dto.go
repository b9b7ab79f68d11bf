package exchange

import "questgrid/internal/domain/quest"

type CreateRequest struct {
	PlayerID    string `json:"player_id"`
	EpisodeID   string `json:"episode_id"`
	ScannedCode string `json:"scanned_code"`
}

type SelectRequest struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	ItemID    string `json:"item_id"`
}

type ConfirmRequest struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
}

type CancelRequest struct {
	SessionID string `json:"session_id"`
	// PlayerID is optional; when set it must name a participant.
	PlayerID string `json:"player_id,omitempty"`
}

type Response struct {
	Session quest.ExchangeSession `json:"session"`
}
