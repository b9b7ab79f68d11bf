package httpadapter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"questgrid/internal/app/exchange"
	"questgrid/internal/app/nodes"
	"questgrid/internal/app/targets"
	"questgrid/internal/domain/quest"
)

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	cases := []struct {
		name    string
		payload any
		want    []string
		notWant []string
	}{
		{
			name: "nodes",
			payload: nodes.Response{Nodes: []nodes.NodeView{{
				ID:       "n1",
				Category: quest.CategoryMainStory,
				Title:    "Harbor Gate",
				State:    quest.NodeInProgress,
			}}},
			want:    []string{`"nodes"`, `"category":"main_story"`, `"state":"in_progress"`},
			notWant: []string{`"NodeViews"`, `"Category"`},
		},
		{
			name: "targets",
			payload: targets.Response{
				Success:       true,
				Message:       "target completed",
				NodeCompleted: true,
			},
			want:    []string{`"success":true`, `"node_completed":true`},
			notWant: []string{`"NodeCompleted"`},
		},
		{
			name: "exchange",
			payload: exchange.Response{Session: quest.ExchangeSession{
				ID:               "s1",
				EpisodeID:        "ep1",
				PlayerAID:        "alice",
				PlayerBID:        "bob",
				PlayerAItemID:    "coin",
				PlayerAConfirmed: true,
				Status:           quest.ExchangeActive,
				CreatedAt:        now,
				UpdatedAt:        now,
			}},
			want: []string{
				`"session_id":"s1"`,
				`"player_a":"alice"`,
				`"player_a_item":"coin"`,
				`"player_a_confirmed":true`,
				`"status":"active"`,
			},
			notWant: []string{`"PlayerAID"`, `"player_b_item"`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.payload)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			s := string(b)
			for _, w := range tc.want {
				if !strings.Contains(s, w) {
					t.Fatalf("expected %q in %s", w, s)
				}
			}
			for _, nw := range tc.notWant {
				if strings.Contains(s, nw) {
					t.Fatalf("did not expect %q in %s", nw, s)
				}
			}
		})
	}
}
