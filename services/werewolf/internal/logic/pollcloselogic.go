package logic

import (
	"context"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type PollCloseLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPollCloseLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PollCloseLogic {
	return &PollCloseLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PollCloseLogic) PollClose(req *types.PollRequest) (*types.GameResponse, error) {
	snap, err := l.svcCtx.Engine.ClosePoll(l.ctx, req.GameId, req.PollId)
	if err != nil {
		return nil, err
	}
	return gameResponse(snap), nil
}
