package handler

import (
	"net/http"

	"github.com/cuihairu/werewolf/services/werewolf/internal/logic"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func CandidateQuitHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CandidateQuitRequest
		if err := httpx.Parse(r, &req); err != nil {
			writeParseError(r.Context(), w, err)
			return
		}

		l := logic.NewCandidateQuitLogic(r.Context(), svcCtx)
		resp, err := l.CandidateQuit(&req)
		if err != nil {
			writeError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
