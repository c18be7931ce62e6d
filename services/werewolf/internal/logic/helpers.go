package logic

import (
	"github.com/cuihairu/werewolf/internal/ports"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"
)

func ok() types.BaseResponse { return types.BaseResponse{Success: true, Message: "ok"} }

func gameResponse(s *ports.Snapshot) *types.GameResponse {
	return &types.GameResponse{BaseResponse: ok(), Snapshot: s}
}
