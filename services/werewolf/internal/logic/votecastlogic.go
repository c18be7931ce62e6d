package logic

import (
	"context"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type VoteCastLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewVoteCastLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VoteCastLogic {
	return &VoteCastLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *VoteCastLogic) VoteCast(req *types.VoteCastRequest) (*types.GameResponse, error) {
	snap, err := l.svcCtx.Engine.CastVote(l.ctx, req.GameId, req.PollId, req.Elector, req.Candidate)
	if err != nil {
		return nil, err
	}
	return gameResponse(snap), nil
}
