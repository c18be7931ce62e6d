package logic

import (
	"context"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GameGetLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGameGetLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GameGetLogic {
	return &GameGetLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GameGetLogic) GameGet(req *types.GameIdRequest) (*types.GameResponse, error) {
	snap, err := l.svcCtx.Engine.Snapshot(l.ctx, req.GameId)
	if err != nil {
		return nil, err
	}
	return gameResponse(snap), nil
}
