package httpadapter

import (
	"context"
	"encoding/json"
	"errors"

	"questgrid/internal/app/exchange"
	"questgrid/internal/app/items"
	"questgrid/internal/app/nodes"
	"questgrid/internal/app/ports"
	"questgrid/internal/app/targets"
	"questgrid/internal/domain/quest"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	NodesUC    nodes.UseCase
	TargetsUC  targets.UseCase
	ItemsUC    items.UseCase
	ExchangeUC exchange.UseCase
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	api := s.Group("/api")
	api.POST("/nodes/list", h.listNodes)
	api.POST("/targets/validate", h.validateTarget)
	api.POST("/items/apply", h.applyItem)

	ex := api.Group("/exchange")
	ex.POST("/create", h.createExchange)
	ex.POST("/select", h.selectExchangeItem)
	ex.POST("/confirm", h.confirmExchange)
	ex.POST("/cancel", h.cancelExchange)
	ex.GET("/session", h.getExchange)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) listNodes(c context.Context, ctx *app.RequestContext) {
	var body nodes.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.NodesUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) validateTarget(c context.Context, ctx *app.RequestContext) {
	var body targets.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.TargetsUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) applyItem(c context.Context, ctx *app.RequestContext) {
	var body items.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ItemsUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) createExchange(c context.Context, ctx *app.RequestContext) {
	var body exchange.CreateRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ExchangeUC.Create(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) selectExchangeItem(c context.Context, ctx *app.RequestContext) {
	var body exchange.SelectRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ExchangeUC.SelectItem(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) confirmExchange(c context.Context, ctx *app.RequestContext) {
	var body exchange.ConfirmRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ExchangeUC.Confirm(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) cancelExchange(c context.Context, ctx *app.RequestContext) {
	var body exchange.CancelRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ExchangeUC.Cancel(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) getExchange(c context.Context, ctx *app.RequestContext) {
	sessionID := string(ctx.Query("session_id"))
	resp, err := h.ExchangeUC.Get(c, sessionID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, nodes.ErrInvalidRequest),
		errors.Is(err, targets.ErrInvalidRequest),
		errors.Is(err, targets.ErrMissingProof),
		errors.Is(err, items.ErrInvalidRequest),
		errors.Is(err, exchange.ErrInvalidRequest),
		errors.Is(err, quest.ErrInvalidIdentityCode),
		errors.Is(err, quest.ErrInvalidEffectType):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, exchange.ErrSelfExchange):
		writeErrorBody(ctx, consts.StatusBadRequest, "self_exchange", err.Error())
	case errors.Is(err, exchange.ErrPlayerUnknown):
		writeErrorBody(ctx, consts.StatusNotFound, "player_unknown", err.Error())
	case errors.Is(err, exchange.ErrNotParticipant):
		writeErrorBody(ctx, consts.StatusForbidden, "not_participant", err.Error())
	case errors.Is(err, exchange.ErrSessionTerminal):
		writeErrorBody(ctx, consts.StatusConflict, "session_closed", err.Error())
	case errors.Is(err, exchange.ErrAlreadyConfirmed):
		writeErrorBody(ctx, consts.StatusConflict, "already_confirmed", err.Error())
	case errors.Is(err, exchange.ErrSelectionIncomplete):
		writeErrorBody(ctx, consts.StatusConflict, "selection_incomplete", err.Error())
	case errors.Is(err, exchange.ErrItemNotOwned),
		errors.Is(err, items.ErrItemNotOwned):
		writeErrorBody(ctx, consts.StatusConflict, "item_not_owned", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
