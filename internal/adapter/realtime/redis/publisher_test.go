package redispub

import (
	"context"
	"testing"
	"time"

	"questgrid/internal/domain/quest"

	"github.com/alicebob/miniredis/v2"
)

func newTestPublisher(t *testing.T) *Publisher {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewPublisher(NewClient(mr.Addr()), nil)
}

func TestPublishAndSubscribeRoundTrip(t *testing.T) {
	pub := newTestPublisher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := quest.ExchangeSession{
		ID:        "sess-1",
		EpisodeID: "ep1",
		PlayerAID: "alice",
		PlayerBID: "bob",
		Status:    quest.ExchangeActive,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	updates, stop, err := pub.Subscribe(ctx, session.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stop()

	if err := pub.PublishSession(ctx, session); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-updates:
		if got.ID != session.ID || got.PlayerAID != "alice" || got.Status != quest.ExchangeActive {
			t.Fatalf("round trip mismatch: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session snapshot")
	}
}

func TestChannelIsolationBetweenSessions(t *testing.T) {
	pub := newTestPublisher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, stop, err := pub.Subscribe(ctx, "sess-a")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stop()

	other := quest.ExchangeSession{ID: "sess-b", Status: quest.ExchangeActive}
	if err := pub.PublishSession(ctx, other); err != nil {
		t.Fatalf("publish: %v", err)
	}
	mine := quest.ExchangeSession{ID: "sess-a", Status: quest.ExchangeCancelled}
	if err := pub.PublishSession(ctx, mine); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-updates:
		if got.ID != "sess-a" {
			t.Fatalf("received another session's update: %+v", got)
		}
		if got.Status != quest.ExchangeCancelled {
			t.Fatalf("expected cancelled snapshot, got %s", got.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session snapshot")
	}
}
