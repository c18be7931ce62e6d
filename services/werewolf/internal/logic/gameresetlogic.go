package logic

import (
	"context"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GameResetLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGameResetLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GameResetLogic {
	return &GameResetLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GameResetLogic) GameReset(req *types.GameIdRequest) (*types.BaseResponse, error) {
	if err := l.svcCtx.Engine.Reset(l.ctx, req.GameId); err != nil {
		return nil, err
	}
	l.Infof("game %s reset", req.GameId)
	return &types.BaseResponse{Success: true, Message: "ok"}, nil
}
