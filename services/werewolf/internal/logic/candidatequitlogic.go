package logic

import (
	"context"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type CandidateQuitLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCandidateQuitLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CandidateQuitLogic {
	return &CandidateQuitLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CandidateQuitLogic) CandidateQuit(req *types.CandidateQuitRequest) (*types.GameResponse, error) {
	snap, err := l.svcCtx.Engine.QuitCandidate(l.ctx, req.GameId, req.PollId, req.Seat)
	if err != nil {
		return nil, err
	}
	return gameResponse(snap), nil
}
