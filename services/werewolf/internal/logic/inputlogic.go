package logic

import (
	"context"

	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type InputLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewInputLogic(ctx context.Context, svcCtx *svc.ServiceContext) *InputLogic {
	return &InputLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *InputLogic) Input(req *types.InputRequest) (*types.GameResponse, error) {
	snap, err := l.svcCtx.Engine.Input(l.ctx, req.GameId, phase.Input{Seat: req.Seat, Kind: req.Kind, Target: req.Target})
	if err != nil {
		return nil, err
	}
	return gameResponse(snap), nil
}
