package targets

// Proof carries the player-submitted evidence; which fields are required
// depends on the target type.
type Proof struct {
	Code        string   `json:"code,omitempty"`
	ScannedCode string   `json:"scanned_code,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

type Request struct {
	PlayerID  string `json:"player_id"`
	EpisodeID string `json:"episode_id"`
	NodeID    string `json:"node_id"`
	TargetID  string `json:"target_id"`
	Proof     Proof  `json:"proof"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// NodeCompleted is true only on the first transition of the owning
	// node into the fully-completed state.
	NodeCompleted bool `json:"node_completed,omitempty"`
}
