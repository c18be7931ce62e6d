package logic

import (
	"context"

	"github.com/cuihairu/werewolf/internal/game/poll"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type PollStartLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPollStartLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PollStartLogic {
	return &PollStartLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PollStartLogic) PollStart(req *types.PollStartRequest) (*types.PollStartResponse, error) {
	id, err := l.svcCtx.Engine.StartPoll(l.ctx, req.GameId, poll.Kind(req.Kind))
	if err != nil {
		return nil, err
	}
	return &types.PollStartResponse{BaseResponse: ok(), PollId: id}, nil
}
