package handler

import (
	"context"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/session"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"
)

// StatusOf maps an engine error to an HTTP status.
func StatusOf(err error) int {
	switch game.KindOf(err) {
	case game.KindValidation:
		return http.StatusBadRequest
	case game.KindConflict:
		return http.StatusConflict
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		logx.WithContext(ctx).Errorf("request failed: %v", err)
	}
	res := session.ResultOf(err)
	httpx.WriteJsonCtx(ctx, w, code, types.BaseResponse{Success: false, Message: res.Reason})
}

func writeParseError(ctx context.Context, w http.ResponseWriter, err error) {
	httpx.WriteJsonCtx(ctx, w, http.StatusBadRequest, types.BaseResponse{Success: false, Message: err.Error()})
}
