package logic

import (
	"context"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type PhaseAdvanceLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPhaseAdvanceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PhaseAdvanceLogic {
	return &PhaseAdvanceLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PhaseAdvanceLogic) PhaseAdvance(req *types.PhaseAdvanceRequest) (*types.GameResponse, error) {
	snap, err := l.svcCtx.Engine.AdvancePhaseFrom(l.ctx, req.GameId, game.PhaseID(req.From))
	if err != nil {
		return nil, err
	}
	return gameResponse(snap), nil
}
