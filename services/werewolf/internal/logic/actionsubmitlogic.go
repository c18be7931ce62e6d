package logic

import (
	"context"

	"github.com/cuihairu/werewolf/internal/session"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ActionSubmitLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewActionSubmitLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ActionSubmitLogic {
	return &ActionSubmitLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ActionSubmitLogic) ActionSubmit(req *types.ActionSubmitRequest) (*types.ActionSubmitResponse, error) {
	source := req.Source
	if source == "" {
		source = "api"
	}
	inst, err := l.svcCtx.Engine.SubmitAction(l.ctx, req.GameId, session.Submission{
		Seat:    req.Seat,
		Role:    req.Role,
		Action:  req.Action,
		Targets: req.Targets,
		Source:  source,
	})
	if err != nil {
		return nil, err
	}
	return &types.ActionSubmitResponse{
		BaseResponse: ok(),
		Instance: &types.ActionInstance{
			Id:      inst.ID,
			Seat:    inst.Actor,
			Role:    inst.Role,
			Action:  inst.Action,
			Targets: inst.Targets,
			Status:  string(inst.Status),
			Note:    inst.Note,
		},
	}, nil
}
