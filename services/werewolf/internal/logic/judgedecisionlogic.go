package logic

import (
	"context"
	"strings"

	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/internal/session"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type JudgeDecisionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewJudgeDecisionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *JudgeDecisionLogic {
	return &JudgeDecisionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *JudgeDecisionLogic) JudgeDecision(req *types.JudgeDecisionRequest) (*types.GameResponse, error) {
	d := session.Decision{End: req.End, Winner: role.Camp(strings.ToUpper(req.Winner))}
	snap, err := l.svcCtx.Engine.ResolveJudgeDecision(l.ctx, req.GameId, d)
	if err != nil {
		return nil, err
	}
	l.Infof("judge decision for %s: end=%v winner=%s", req.GameId, req.End, d.Winner)
	return gameResponse(snap), nil
}
