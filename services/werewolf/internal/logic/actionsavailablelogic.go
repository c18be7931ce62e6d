package logic

import (
	"context"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ActionsAvailableLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewActionsAvailableLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ActionsAvailableLogic {
	return &ActionsAvailableLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ActionsAvailableLogic) ActionsAvailable(req *types.ActionsAvailableRequest) (*types.ActionsAvailableResponse, error) {
	opts, err := l.svcCtx.Engine.Available(l.ctx, req.GameId, req.Seat)
	if err != nil {
		return nil, err
	}
	resp := &types.ActionsAvailableResponse{BaseResponse: ok(), Actions: make([]types.AvailableAction, 0, len(opts))}
	for _, o := range opts {
		resp.Actions = append(resp.Actions, types.AvailableAction{
			Role:        o.Role,
			Action:      o.Action.ID,
			Name:        o.Action.Name,
			Timing:      string(o.Action.Timing),
			Targets:     o.Action.Targets,
			Uses:        o.Action.Uses,
			TargetAlive: o.Action.TargetAlive,
		})
	}
	return resp, nil
}
