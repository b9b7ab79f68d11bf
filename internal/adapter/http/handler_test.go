package httpadapter

import (
	"encoding/json"
	"errors"
	"testing"

	"questgrid/internal/app/exchange"
	"questgrid/internal/app/items"
	"questgrid/internal/app/ports"
	"questgrid/internal/app/targets"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	var body map[string]map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	code, _ := body["error"]["code"].(string)
	return code
}

func TestWriteError_MissingProof(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, targets.ErrMissingProof)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "bad_request"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestWriteError_SessionTerminal(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, exchange.ErrSessionTerminal)

	if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "session_closed"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestWriteError_ItemNotOwned(t *testing.T) {
	for _, err := range []error{exchange.ErrItemNotOwned, items.ErrItemNotOwned} {
		ctx := &app.RequestContext{}
		writeError(ctx, err)
		if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
			t.Fatalf("%v: status mismatch: got=%d want=%d", err, got, want)
		}
		if got, want := errorCode(t, ctx), "item_not_owned"; got != want {
			t.Fatalf("%v: error code mismatch: got=%q want=%q", err, got, want)
		}
	}
}

func TestWriteError_NotParticipant(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, exchange.ErrNotParticipant)

	if got, want := ctx.Response.StatusCode(), consts.StatusForbidden; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "not_participant"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestWriteError_NotFoundAndFallback(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, ports.ErrNotFound)
	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}

	ctx = &app.RequestContext{}
	writeError(ctx, errDummy)
	if got, want := ctx.Response.StatusCode(), consts.StatusInternalServerError; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "internal_error"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

var errDummy = errors.New("boom")

func TestDecodeJSON(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"player_id":"p1","episode_id":"ep1"}`))

	var body targets.Request
	if err := decodeJSON(ctx, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.PlayerID != "p1" || body.EpisodeID != "ep1" {
		t.Fatalf("unexpected decode result: %+v", body)
	}

	ctx = &app.RequestContext{}
	ctx.Request.SetBody([]byte("{"))
	if err := decodeJSON(ctx, &body); err == nil {
		t.Fatal("expected error for malformed json")
	}
}
