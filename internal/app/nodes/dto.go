package nodes

import "questgrid/internal/domain/quest"

type Request struct {
	PlayerID  string   `json:"player_id"`
	EpisodeID string   `json:"episode_id"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

type NodeView struct {
	ID       string             `json:"id"`
	Category quest.NodeCategory `json:"category"`
	Title    string             `json:"title"`
	Body     string             `json:"body"`
	State    quest.NodeState    `json:"state"`
}

type Response struct {
	Nodes []NodeView `json:"nodes"`
}
