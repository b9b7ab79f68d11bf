package targets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"questgrid/internal/app/effects"
	"questgrid/internal/app/itemeffects"
	"questgrid/internal/app/ports"
	"questgrid/internal/domain/quest"
)

var (
	ErrInvalidRequest = errors.New("invalid target validation request")
	ErrMissingProof   = errors.New("missing proof for target type")
)

const scannerBlockedEffect = "scanner:blocked"
const scannerDoubleEffect = "scanner:double"

// UseCase validates a single target submission, records completion
// idempotently, and fires the node's effects exactly once when the last
// target completes.
type UseCase struct {
	TxManager  ports.TxManager
	Content    ports.ContentRepository
	Progress   ports.TargetProgressRepository
	Inventory  ports.InventoryRepository
	ItemEngine *itemeffects.Engine
	Applier    effects.Applier
	Metrics    ports.EngineMetrics
	Logger     *slog.Logger
	Now        func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.EpisodeID = strings.TrimSpace(req.EpisodeID)
	req.NodeID = strings.TrimSpace(req.NodeID)
	req.TargetID = strings.TrimSpace(req.TargetID)
	if req.PlayerID == "" || req.EpisodeID == "" || req.NodeID == "" || req.TargetID == "" {
		return Response{}, ErrInvalidRequest
	}

	target, err := u.Content.GetTarget(ctx, req.TargetID)
	if err != nil {
		return Response{}, err
	}
	if target.NodeID != req.NodeID {
		return Response{}, ports.ErrNotFound
	}

	ok, failMsg, err := u.matchProof(ctx, req, target)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		u.recordValidation(false)
		return Response{Success: false, Message: failMsg}, nil
	}

	now := u.now()
	var newly, nodeCompleted bool
	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		newly, err = u.Progress.MarkCompleted(txCtx, req.PlayerID, req.TargetID, now)
		if err != nil {
			return err
		}
		siblings, err := u.Content.ListTargets(txCtx, req.NodeID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(siblings))
		for _, t := range siblings {
			ids = append(ids, t.ID)
		}
		completed, err := u.Progress.CompletedTargetIDs(txCtx, req.PlayerID, ids)
		if err != nil {
			return err
		}
		if len(completed) != len(siblings) {
			return nil
		}
		// First transition only: the conditional insert decides the winner
		// under concurrent last-target submissions.
		nodeCompleted, err = u.Progress.MarkNodeCompleted(txCtx, req.PlayerID, req.NodeID, now)
		return err
	})
	if err != nil {
		return Response{}, err
	}

	if newly && target.Type == quest.TargetQRScan && u.ItemEngine != nil {
		u.applyScanBonus(ctx, req.PlayerID, req.EpisodeID)
	}

	if nodeCompleted {
		nodeEffects, err := u.Content.ListEffects(ctx, req.NodeID)
		if err != nil {
			u.logger().Error("listing node effects failed after completion",
				"player_id", req.PlayerID, "node_id", req.NodeID, "error", err)
		} else {
			u.Applier.ApplyNodeEffects(ctx, req.PlayerID, req.EpisodeID, nodeEffects)
		}
		if u.Metrics != nil {
			u.Metrics.RecordNodeCompleted()
		}
	}

	u.recordValidation(true)
	msg := "target completed"
	if !newly {
		msg = "target already completed"
	}
	return Response{Success: true, Message: msg, NodeCompleted: nodeCompleted}, nil
}

func (u UseCase) matchProof(ctx context.Context, req Request, target quest.Target) (bool, string, error) {
	switch target.Type {
	case quest.TargetCodeEntry:
		if req.Proof.Code == "" {
			return false, "", ErrMissingProof
		}
		if !quest.MatchCode(target, req.Proof.Code) {
			return false, "incorrect code", nil
		}
		return true, "", nil

	case quest.TargetGPSLocation:
		if req.Proof.Lat == nil || req.Proof.Lng == nil {
			return false, "", ErrMissingProof
		}
		res := quest.MatchGPS(target, *req.Proof.Lat, *req.Proof.Lng)
		if !res.Within {
			// Distance feedback is part of the contract, not decoration.
			return false, fmt.Sprintf("you are %.0fm away, move %.0fm closer", res.DistanceMeters, res.DeltaMeters), nil
		}
		return true, "", nil

	case quest.TargetQRScan:
		if req.Proof.ScannedCode == "" {
			return false, "", ErrMissingProof
		}
		if u.ItemEngine != nil {
			blocked, err := u.ItemEngine.IsActive(ctx, req.PlayerID, req.EpisodeID, scannerBlockedEffect)
			if err != nil {
				return false, "", err
			}
			if blocked {
				return false, "your scanner is blocked", nil
			}
		}
		if !quest.MatchQR(target, req.Proof.ScannedCode) {
			return false, "this code does not match the target", nil
		}
		return true, "", nil

	case quest.TargetOwnedItem:
		qty, err := u.Inventory.Quantity(ctx, req.PlayerID, req.EpisodeID, target.Payload.ItemID)
		if err != nil {
			return false, "", err
		}
		if !quest.MatchOwnedItem(target, qty) {
			return false, "required item not in inventory", nil
		}
		return true, "", nil
	}
	return false, "", fmt.Errorf("%w: unsupported target type %s", ErrInvalidRequest, target.Type)
}

func (u UseCase) applyScanBonus(ctx context.Context, playerID, episodeID string) {
	row, err := u.ItemEngine.ActiveEffect(ctx, playerID, episodeID, scannerDoubleEffect)
	if err != nil {
		u.logger().Error("scanner bonus lookup failed", "player_id", playerID, "error", err)
		return
	}
	if row == nil {
		return
	}
	bonus := 0
	if v, ok := row.Metadata["bonus_xp"]; ok {
		switch n := v.(type) {
		case float64:
			bonus = int(n)
		case int:
			bonus = n
		}
	}
	if bonus <= 0 {
		return
	}
	if err := u.Applier.AwardExperience(ctx, playerID, episodeID, bonus); err != nil {
		u.logger().Error("scanner bonus award failed", "player_id", playerID, "error", err)
	}
}

func (u UseCase) recordValidation(success bool) {
	if u.Metrics != nil {
		u.Metrics.RecordTargetValidation(success)
	}
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u UseCase) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.Default()
	}
	return u.Logger
}
