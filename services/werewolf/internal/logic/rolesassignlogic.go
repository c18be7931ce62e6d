package logic

import (
	"context"

	"github.com/cuihairu/werewolf/internal/session"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RolesAssignLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRolesAssignLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RolesAssignLogic {
	return &RolesAssignLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RolesAssignLogic) RolesAssign(req *types.RolesAssignRequest) (*types.GameResponse, error) {
	as := session.Assignment{Seed: req.Seed}
	if len(req.Hands) > 0 {
		as.Roles = make(map[int][]string, len(req.Hands))
		for _, h := range req.Hands {
			as.Roles[h.Seat] = h.Roles
		}
	}
	snap, err := l.svcCtx.Engine.AssignRoles(l.ctx, req.GameId, as)
	if err != nil {
		return nil, err
	}
	return gameResponse(snap), nil
}
