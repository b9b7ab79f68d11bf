package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("QUESTGRID_DB_DSN")
	if dsn == "" {
		t.Skip("QUESTGRID_DB_DSN is required for integration test")
	}
	return dsn
}

func TestTargetProgressRepo_ExactlyOnceTransitions(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	playerID := "it-progress-once"
	_ = db.Exec("DELETE FROM player_target_completions WHERE player_id = ?", playerID).Error
	_ = db.Exec("DELETE FROM player_node_completions WHERE player_id = ?", playerID).Error

	repo := NewTargetProgressRepo(db)
	now := time.Now()

	newly, err := repo.MarkCompleted(ctx, playerID, "it-target-1", now)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !newly {
		t.Fatal("first completion must report newly")
	}
	newly, err = repo.MarkCompleted(ctx, playerID, "it-target-1", now)
	if err != nil {
		t.Fatalf("re-mark: %v", err)
	}
	if newly {
		t.Fatal("resubmission must not report newly")
	}

	first, err := repo.MarkNodeCompleted(ctx, playerID, "it-node-1", now)
	if err != nil {
		t.Fatalf("node mark: %v", err)
	}
	if !first {
		t.Fatal("first node completion must win")
	}
	first, err = repo.MarkNodeCompleted(ctx, playerID, "it-node-1", now)
	if err != nil {
		t.Fatalf("node re-mark: %v", err)
	}
	if first {
		t.Fatal("node completion must only be won once")
	}
}

func TestInventoryRepo_GrantAndGuardedConsume(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	playerID := "it-inventory"
	_ = db.Exec("DELETE FROM inventory_items WHERE player_id = ?", playerID).Error

	repo := NewInventoryRepo(db)
	if err := repo.Grant(ctx, playerID, "it-ep", "rope", 2); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := repo.Grant(ctx, playerID, "it-ep", "rope", 1); err != nil {
		t.Fatalf("second grant: %v", err)
	}
	qty, err := repo.Quantity(ctx, playerID, "it-ep", "rope")
	if err != nil {
		t.Fatalf("quantity: %v", err)
	}
	if qty != 3 {
		t.Fatalf("expected stacked quantity 3, got %d", qty)
	}

	for i := 0; i < 3; i++ {
		if err := repo.Consume(ctx, playerID, "it-ep", "rope"); err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
	}
	if err := repo.Consume(ctx, playerID, "it-ep", "rope"); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict on empty stack, got %v", err)
	}
}

func TestExchangeRepo_SettleLifecycle(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	sessionID := "it-exchange-settle"
	_ = db.Exec("DELETE FROM exchange_sessions WHERE id = ?", sessionID).Error
	_ = db.Exec("DELETE FROM inventory_items WHERE player_id IN ?", []string{"it-ex-a", "it-ex-b"}).Error

	inv := NewInventoryRepo(db)
	if err := inv.Grant(ctx, "it-ex-a", "it-ep", "coin", 1); err != nil {
		t.Fatalf("grant a: %v", err)
	}
	if err := inv.Grant(ctx, "it-ex-b", "it-ep", "gem", 1); err != nil {
		t.Fatalf("grant b: %v", err)
	}

	repo := NewExchangeRepo(db)
	now := time.Now()
	session := quest.ExchangeSession{
		ID: sessionID, EpisodeID: "it-ep",
		PlayerAID: "it-ex-a", PlayerBID: "it-ex-b",
		Status: quest.ExchangeActive, CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Settle(ctx, sessionID, now); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("settle before selection must conflict, got %v", err)
	}

	if err := repo.SetItem(ctx, sessionID, quest.RolePlayerA, "coin", now); err != nil {
		t.Fatalf("set item a: %v", err)
	}
	if err := repo.SetItem(ctx, sessionID, quest.RolePlayerB, "gem", now); err != nil {
		t.Fatalf("set item b: %v", err)
	}
	if err := repo.SetConfirmed(ctx, sessionID, quest.RolePlayerA, now); err != nil {
		t.Fatalf("confirm a: %v", err)
	}
	if err := repo.SetConfirmed(ctx, sessionID, quest.RolePlayerB, now); err != nil {
		t.Fatalf("confirm b: %v", err)
	}

	if err := repo.Settle(ctx, sessionID, time.Now()); err != nil {
		t.Fatalf("settle: %v", err)
	}
	got, err := repo.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != quest.ExchangeCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	qty, _ := inv.Quantity(ctx, "it-ex-a", "it-ep", "gem")
	if qty != 1 {
		t.Fatalf("expected swapped gem for player a, got %d", qty)
	}
	qty, _ = inv.Quantity(ctx, "it-ex-b", "it-ep", "coin")
	if qty != 1 {
		t.Fatalf("expected swapped coin for player b, got %d", qty)
	}

	if err := repo.Settle(ctx, sessionID, time.Now()); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("re-settle must conflict, got %v", err)
	}
	cancelled, err := repo.Cancel(ctx, sessionID, time.Now())
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled {
		t.Fatal("cancel on a completed session must be a no-op")
	}
}

func TestStatusEffectRepo_LazyExpiry(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	playerID := "it-status-expiry"
	_ = db.Exec("DELETE FROM player_status_effects WHERE player_id = ?", playerID).Error

	repo := NewStatusEffectRepo(db)
	now := time.Now()
	expired := now.Add(-time.Minute)
	if err := repo.Insert(ctx, quest.StatusEffect{
		ID: "it-se-expired", PlayerID: playerID, EpisodeID: "it-ep",
		StatusType: "network:invisible_map", AppliedAt: now.Add(-time.Hour), ExpiresAt: &expired,
	}); err != nil {
		t.Fatalf("insert expired: %v", err)
	}
	if err := repo.Insert(ctx, quest.StatusEffect{
		ID: "it-se-live", PlayerID: playerID, EpisodeID: "it-ep",
		StatusType: "identity:role_hunter", AppliedAt: now,
		Metadata: map[string]any{"source": "it"},
	}); err != nil {
		t.Fatalf("insert live: %v", err)
	}

	active, err := repo.ListActive(ctx, playerID, "it-ep", now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].ID != "it-se-live" {
		t.Fatalf("expected only the live row, got %+v", active)
	}

	purged, err := repo.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged < 1 {
		t.Fatalf("expected at least one purged row, got %d", purged)
	}
}
