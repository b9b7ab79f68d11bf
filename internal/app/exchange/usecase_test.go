package exchange

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"questgrid/internal/adapter/repo/memory"
	"questgrid/internal/domain/quest"
)

func newTestUseCase(store *memory.Store, pub *memory.Publisher) UseCase {
	uc := UseCase{
		Exchanges: memory.NewExchangeRepo(store),
		Players:   memory.NewPlayerRepo(store),
		Inventory: memory.NewInventoryRepo(store),
	}
	if pub != nil {
		uc.Publisher = pub
	}
	return uc
}

func seedPair(store *memory.Store) {
	store.SeedPlayer(quest.Player{ID: "alice"})
	store.SeedPlayer(quest.Player{ID: "bob"})
	store.SeedInventory("alice", "ep1", "map-fragment", 1)
	store.SeedInventory("bob", "ep1", "brass-key", 1)
}

func openSession(t *testing.T, uc UseCase) quest.ExchangeSession {
	t.Helper()
	resp, err := uc.Create(context.Background(), CreateRequest{
		PlayerID: "alice", EpisodeID: "ep1", ScannedCode: quest.IdentityCode("bob"),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return resp.Session
}

func TestCreate(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	pub := memory.NewPublisher()
	uc := newTestUseCase(store, pub)

	session := openSession(t, uc)
	if session.PlayerAID != "alice" || session.PlayerBID != "bob" {
		t.Fatalf("scanner takes the A slot, got %+v", session)
	}
	if session.Status != quest.ExchangeActive {
		t.Fatalf("expected active, got %s", session.Status)
	}
	if len(pub.Published(session.ID)) != 1 {
		t.Fatal("creation must be broadcast")
	}
}

func TestCreate_Rejections(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	uc := newTestUseCase(store, nil)
	ctx := context.Background()

	if _, err := uc.Create(ctx, CreateRequest{PlayerID: "alice", EpisodeID: "ep1", ScannedCode: quest.IdentityCode("alice")}); !errors.Is(err, ErrSelfExchange) {
		t.Fatalf("expected ErrSelfExchange, got %v", err)
	}
	if _, err := uc.Create(ctx, CreateRequest{PlayerID: "alice", EpisodeID: "ep1", ScannedCode: quest.IdentityCode("ghost")}); !errors.Is(err, ErrPlayerUnknown) {
		t.Fatalf("expected ErrPlayerUnknown, got %v", err)
	}
	if _, err := uc.Create(ctx, CreateRequest{PlayerID: "alice", EpisodeID: "ep1", ScannedCode: "not-a-code"}); !errors.Is(err, quest.ErrInvalidIdentityCode) {
		t.Fatalf("expected ErrInvalidIdentityCode, got %v", err)
	}
}

func TestHappyPath_SelectConfirmSettle(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	pub := memory.NewPublisher()
	uc := newTestUseCase(store, pub)
	ctx := context.Background()
	session := openSession(t, uc)

	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); err != nil {
		t.Fatalf("alice select: %v", err)
	}
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "bob", ItemID: "brass-key"}); err != nil {
		t.Fatalf("bob select: %v", err)
	}
	if _, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "alice"}); err != nil {
		t.Fatalf("alice confirm: %v", err)
	}
	resp, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "bob"})
	if err != nil {
		t.Fatalf("bob confirm: %v", err)
	}
	if resp.Session.Status != quest.ExchangeCompleted {
		t.Fatalf("expected completed, got %s", resp.Session.Status)
	}

	inv := memory.NewInventoryRepo(store)
	checks := []struct {
		player, item string
		want         int
	}{
		{"alice", "map-fragment", 0},
		{"alice", "brass-key", 1},
		{"bob", "brass-key", 0},
		{"bob", "map-fragment", 1},
	}
	for _, c := range checks {
		qty, _ := inv.Quantity(ctx, c.player, "ep1", c.item)
		if qty != c.want {
			t.Fatalf("%s/%s: want %d got %d", c.player, c.item, c.want, qty)
		}
	}

	rows := pub.Published(session.ID)
	if len(rows) == 0 || rows[len(rows)-1].Status != quest.ExchangeCompleted {
		t.Fatal("terminal state must be broadcast last")
	}
}

func TestConfirm_BeforeBothSelected(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	uc := newTestUseCase(store, nil)
	ctx := context.Background()
	session := openSession(t, uc)

	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "alice"}); !errors.Is(err, ErrSelectionIncomplete) {
		t.Fatalf("expected ErrSelectionIncomplete, got %v", err)
	}
}

func TestSelect_Rules(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	store.SeedInventory("alice", "ep1", "lens", 1)
	uc := newTestUseCase(store, nil)
	ctx := context.Background()
	session := openSession(t, uc)

	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "mallory", ItemID: "x"}); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "unicorn"}); !errors.Is(err, ErrItemNotOwned) {
		t.Fatalf("expected ErrItemNotOwned, got %v", err)
	}

	// Reselection is allowed before confirming.
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); err != nil {
		t.Fatalf("first select: %v", err)
	}
	resp, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "lens"})
	if err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if resp.Session.PlayerAItemID != "lens" {
		t.Fatalf("expected reselected item, got %s", resp.Session.PlayerAItemID)
	}

	// But not after confirming.
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "bob", ItemID: "brass-key"}); err != nil {
		t.Fatalf("bob select: %v", err)
	}
	if _, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "alice"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed, got %v", err)
	}
}

func TestCancel_BeforeSettlementLeavesInventoryUntouched(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	pub := memory.NewPublisher()
	uc := newTestUseCase(store, pub)
	ctx := context.Background()
	session := openSession(t, uc)

	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "bob", ItemID: "brass-key"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "alice"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	resp, err := uc.Cancel(ctx, CancelRequest{SessionID: session.ID, PlayerID: "bob"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if resp.Session.Status != quest.ExchangeCancelled {
		t.Fatalf("expected cancelled, got %s", resp.Session.Status)
	}

	inv := memory.NewInventoryRepo(store)
	if qty, _ := inv.Quantity(ctx, "alice", "ep1", "map-fragment"); qty != 1 {
		t.Fatalf("alice inventory mutated on cancel, qty=%d", qty)
	}
	if qty, _ := inv.Quantity(ctx, "bob", "ep1", "brass-key"); qty != 1 {
		t.Fatalf("bob inventory mutated on cancel, qty=%d", qty)
	}

	// Interacting with a cancelled session is rejected.
	if _, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "bob"}); !errors.Is(err, ErrSessionTerminal) {
		t.Fatalf("expected ErrSessionTerminal, got %v", err)
	}
}

func TestCancel_NonParticipant(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	uc := newTestUseCase(store, nil)
	session := openSession(t, uc)
	if _, err := uc.Cancel(context.Background(), CancelRequest{SessionID: session.ID, PlayerID: "mallory"}); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestConcurrentConfirm_SettlesOnce(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	uc := newTestUseCase(store, memory.NewPublisher())
	ctx := context.Background()
	session := openSession(t, uc)

	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "bob", ItemID: "brass-key"}); err != nil {
		t.Fatalf("select: %v", err)
	}

	var wg sync.WaitGroup
	for _, player := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: p})
			// The loser of a double-confirm race may observe the terminal
			// state; that is not a failure.
			if err != nil && !errors.Is(err, ErrSessionTerminal) && !errors.Is(err, ErrAlreadyConfirmed) {
				t.Errorf("confirm %s: %v", p, err)
			}
		}(player)
	}
	wg.Wait()

	got, err := uc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Session.Status != quest.ExchangeCompleted {
		t.Fatalf("expected completed, got %s", got.Session.Status)
	}
	inv := memory.NewInventoryRepo(store)
	if qty, _ := inv.Quantity(ctx, "alice", "ep1", "brass-key"); qty != 1 {
		t.Fatalf("swap must run exactly once, alice brass-key=%d", qty)
	}
	if qty, _ := inv.Quantity(ctx, "bob", "ep1", "map-fragment"); qty != 1 {
		t.Fatalf("swap must run exactly once, bob map-fragment=%d", qty)
	}
}

// settleFailRepo forces the swap itself to fail after both confirmations.
type settleFailRepo struct {
	memory.ExchangeRepo
}

func (settleFailRepo) Settle(context.Context, string, time.Time) error {
	return errors.New("inventory row gone")
}

func TestSettlementFailureCancelsSession(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	uc := newTestUseCase(store, nil)
	uc.Exchanges = settleFailRepo{memory.NewExchangeRepo(store)}
	ctx := context.Background()
	session := openSession(t, uc)

	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "bob", ItemID: "brass-key"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "alice"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	resp, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "bob"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if resp.Session.Status != quest.ExchangeCancelled {
		t.Fatalf("a failed swap must cancel the session, got %s", resp.Session.Status)
	}
	inv := memory.NewInventoryRepo(store)
	if qty, _ := inv.Quantity(ctx, "alice", "ep1", "map-fragment"); qty != 1 {
		t.Fatalf("no partial mutation on failed swap, qty=%d", qty)
	}
}

func TestOwnershipRecheckAtSettlement(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	uc := newTestUseCase(store, nil)
	ctx := context.Background()
	session := openSession(t, uc)

	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "alice", ItemID: "map-fragment"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.SelectItem(ctx, SelectRequest{SessionID: session.ID, PlayerID: "bob", ItemID: "brass-key"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "alice"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// Alice loses the item between selection and settlement.
	if err := memory.NewInventoryRepo(store).Consume(ctx, "alice", "ep1", "map-fragment"); err != nil {
		t.Fatalf("consume: %v", err)
	}

	resp, err := uc.Confirm(ctx, ConfirmRequest{SessionID: session.ID, PlayerID: "bob"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if resp.Session.Status != quest.ExchangeCancelled {
		t.Fatalf("settlement without the item must cancel, got %s", resp.Session.Status)
	}
	if qty, _ := memory.NewInventoryRepo(store).Quantity(ctx, "bob", "ep1", "brass-key"); qty != 1 {
		t.Fatalf("bob must keep his item, qty=%d", qty)
	}
}

func TestCancelStale(t *testing.T) {
	store := memory.NewStore()
	seedPair(store)
	pub := memory.NewPublisher()
	uc := newTestUseCase(store, pub)
	ctx := context.Background()

	old := time.Now().Add(-2 * time.Hour)
	uc.Now = func() time.Time { return old }
	stale := openSession(t, uc)

	uc.Now = nil
	fresh := openSession(t, uc)

	cancelled, err := uc.CancelStale(ctx, time.Hour)
	if err != nil {
		t.Fatalf("cancel stale: %v", err)
	}
	if cancelled != 1 {
		t.Fatalf("expected 1 stale cancellation, got %d", cancelled)
	}
	got, _ := uc.Get(ctx, stale.ID)
	if got.Session.Status != quest.ExchangeCancelled {
		t.Fatalf("stale session must be cancelled, got %s", got.Session.Status)
	}
	got, _ = uc.Get(ctx, fresh.ID)
	if got.Session.Status != quest.ExchangeActive {
		t.Fatalf("fresh session must stay active, got %s", got.Session.Status)
	}
}
