package logic

import (
	"context"
	"strings"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type PhaseSetLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPhaseSetLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PhaseSetLogic {
	return &PhaseSetLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PhaseSetLogic) PhaseSet(req *types.PhaseSetRequest) (*types.GameResponse, error) {
	snap, err := l.svcCtx.Engine.SetPhase(l.ctx, req.GameId, game.PhaseID(strings.ToUpper(req.Phase)))
	if err != nil {
		return nil, err
	}
	l.Infof("game %s phase forced to %s", req.GameId, snap.Phase)
	return gameResponse(snap), nil
}
