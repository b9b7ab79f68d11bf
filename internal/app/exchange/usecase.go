package exchange

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"

	"github.com/google/uuid"
)

var (
	ErrInvalidRequest      = errors.New("invalid exchange request")
	ErrPlayerUnknown       = errors.New("unknown player")
	ErrSelfExchange        = errors.New("cannot open an exchange with yourself")
	ErrNotParticipant      = errors.New("player is not part of this session")
	ErrSessionTerminal     = errors.New("exchange session already closed")
	ErrItemNotOwned        = errors.New("selected item not in inventory")
	ErrAlreadyConfirmed    = errors.New("player already confirmed")
	ErrSelectionIncomplete = errors.New("both players must select an item first")
)

// UseCase drives the two-party exchange state machine. Terminal transitions
// are compare-and-set at the repository, so concurrent confirmations settle
// exactly once.
type UseCase struct {
	Exchanges ports.ExchangeRepository
	Players   ports.PlayerRepository
	Inventory ports.InventoryRepository
	Publisher ports.ExchangePublisher
	Metrics   ports.EngineMetrics
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Create opens a session from one player scanning another's identity code.
// The scanning player takes the A slot.
func (u UseCase) Create(ctx context.Context, req CreateRequest) (Response, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.EpisodeID = strings.TrimSpace(req.EpisodeID)
	if req.PlayerID == "" || req.EpisodeID == "" || req.ScannedCode == "" {
		return Response{}, ErrInvalidRequest
	}
	otherID, err := quest.ParseIdentityCode(req.ScannedCode)
	if err != nil {
		return Response{}, err
	}
	if otherID == req.PlayerID {
		return Response{}, ErrSelfExchange
	}
	for _, id := range []string{req.PlayerID, otherID} {
		exists, err := u.Players.Exists(ctx, id)
		if err != nil {
			return Response{}, err
		}
		if !exists {
			return Response{}, ErrPlayerUnknown
		}
	}

	now := u.now()
	session := quest.ExchangeSession{
		ID:        u.newID(),
		EpisodeID: req.EpisodeID,
		PlayerAID: req.PlayerID,
		PlayerBID: otherID,
		Status:    quest.ExchangeActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Exchanges.Create(ctx, session); err != nil {
		return Response{}, err
	}
	u.publish(ctx, session)
	return Response{Session: session}, nil
}

// SelectItem writes the player's slot. Ownership is checked against live
// inventory, and reselection is allowed until the player confirms.
func (u UseCase) SelectItem(ctx context.Context, req SelectRequest) (Response, error) {
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.PlayerID) == "" || strings.TrimSpace(req.ItemID) == "" {
		return Response{}, ErrInvalidRequest
	}
	session, err := u.Exchanges.Get(ctx, req.SessionID)
	if err != nil {
		return Response{}, err
	}
	role, ok := session.RoleOf(req.PlayerID)
	if !ok {
		return Response{}, ErrNotParticipant
	}
	if session.Terminal() {
		return Response{}, ErrSessionTerminal
	}
	if confirmedFor(session, role) {
		return Response{}, ErrAlreadyConfirmed
	}

	qty, err := u.Inventory.Quantity(ctx, req.PlayerID, session.EpisodeID, req.ItemID)
	if err != nil {
		return Response{}, err
	}
	if qty < 1 {
		return Response{}, ErrItemNotOwned
	}

	if err := u.Exchanges.SetItem(ctx, req.SessionID, role, req.ItemID, u.now()); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return Response{}, u.classifyConflict(ctx, req.SessionID, role)
		}
		return Response{}, err
	}
	return u.reloadAndPublish(ctx, req.SessionID)
}

// Confirm sets the player's flag and settles when both flags are up.
// Confirmation is one-way; the only way out afterwards is cancellation.
func (u UseCase) Confirm(ctx context.Context, req ConfirmRequest) (Response, error) {
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.PlayerID) == "" {
		return Response{}, ErrInvalidRequest
	}
	session, err := u.Exchanges.Get(ctx, req.SessionID)
	if err != nil {
		return Response{}, err
	}
	role, ok := session.RoleOf(req.PlayerID)
	if !ok {
		return Response{}, ErrNotParticipant
	}
	if session.Terminal() {
		return Response{}, ErrSessionTerminal
	}
	if !session.BothSelected() {
		return Response{}, ErrSelectionIncomplete
	}
	if confirmedFor(session, role) {
		return Response{}, ErrAlreadyConfirmed
	}

	if err := u.Exchanges.SetConfirmed(ctx, req.SessionID, role, u.now()); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return Response{}, u.classifyConflict(ctx, req.SessionID, role)
		}
		return Response{}, err
	}

	session, err = u.Exchanges.Get(ctx, req.SessionID)
	if err != nil {
		return Response{}, err
	}
	u.publish(ctx, session)

	if session.BothConfirmed() && !session.Terminal() {
		return u.settle(ctx, req.SessionID)
	}
	return Response{Session: session}, nil
}

// settle attempts the atomic swap. Exactly one of two racing confirmations
// performs it; the loser observes the terminal state. A failed swap cancels
// the session rather than leaving it stuck confirmed-but-unsettled.
func (u UseCase) settle(ctx context.Context, sessionID string) (Response, error) {
	err := u.Exchanges.Settle(ctx, sessionID, u.now())
	switch {
	case err == nil:
		if u.Metrics != nil {
			u.Metrics.RecordExchangeSettled()
		}
		return u.reloadAndPublish(ctx, sessionID)

	case errors.Is(err, ports.ErrConflict):
		// Lost the settle race; the winner already published the terminal
		// state.
		session, getErr := u.Exchanges.Get(ctx, sessionID)
		if getErr != nil {
			return Response{}, getErr
		}
		return Response{Session: session}, nil

	default:
		u.logger().Error("exchange settlement failed, cancelling session",
			"session_id", sessionID, "error", err)
		return u.cancelSession(ctx, sessionID)
	}
}

// Cancel flips the session to cancelled while active. Either participant
// or an external janitor may invoke it.
func (u UseCase) Cancel(ctx context.Context, req CancelRequest) (Response, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return Response{}, ErrInvalidRequest
	}
	if req.PlayerID != "" {
		session, err := u.Exchanges.Get(ctx, req.SessionID)
		if err != nil {
			return Response{}, err
		}
		if _, ok := session.RoleOf(req.PlayerID); !ok {
			return Response{}, ErrNotParticipant
		}
	}
	return u.cancelSession(ctx, req.SessionID)
}

// Get returns the current session row; polling this is an acceptable
// substitute for the push channel.
func (u UseCase) Get(ctx context.Context, sessionID string) (Response, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Response{}, ErrInvalidRequest
	}
	session, err := u.Exchanges.Get(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	return Response{Session: session}, nil
}

// CancelStale cancels active sessions whose last mutation is older than the
// window. Called by the janitor loop.
func (u UseCase) CancelStale(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := u.Exchanges.ListStaleActive(ctx, u.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, id := range ids {
		if _, err := u.cancelSession(ctx, id); err != nil {
			u.logger().Error("stale exchange cancellation failed", "session_id", id, "error", err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (u UseCase) cancelSession(ctx context.Context, sessionID string) (Response, error) {
	cancelled, err := u.Exchanges.Cancel(ctx, sessionID, u.now())
	if err != nil {
		return Response{}, err
	}
	session, err := u.Exchanges.Get(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	if cancelled {
		if u.Metrics != nil {
			u.Metrics.RecordExchangeCancelled()
		}
		u.publish(ctx, session)
	}
	return Response{Session: session}, nil
}

// classifyConflict turns a repo-level CAS rejection into the precise
// protocol error by re-reading the session.
func (u UseCase) classifyConflict(ctx context.Context, sessionID string, role quest.ExchangeRole) error {
	session, err := u.Exchanges.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	switch {
	case session.Terminal():
		return ErrSessionTerminal
	case !session.BothSelected():
		return ErrSelectionIncomplete
	case confirmedFor(session, role):
		return ErrAlreadyConfirmed
	}
	return ports.ErrConflict
}

func (u UseCase) reloadAndPublish(ctx context.Context, sessionID string) (Response, error) {
	session, err := u.Exchanges.Get(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	u.publish(ctx, session)
	return Response{Session: session}, nil
}

func (u UseCase) publish(ctx context.Context, session quest.ExchangeSession) {
	if u.Publisher == nil {
		return
	}
	if err := u.Publisher.PublishSession(ctx, session); err != nil {
		// Push is best-effort; clients can poll.
		u.logger().Warn("exchange session publish failed", "session_id", session.ID, "error", err)
	}
}

func confirmedFor(session quest.ExchangeSession, role quest.ExchangeRole) bool {
	if role == quest.RolePlayerA {
		return session.PlayerAConfirmed
	}
	return session.PlayerBConfirmed
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u UseCase) newID() string {
	if u.NewID == nil {
		return uuid.NewString()
	}
	return u.NewID()
}

func (u UseCase) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.Default()
	}
	return u.Logger
}
