package logic

import (
	"context"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RoleValidateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRoleValidateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RoleValidateLogic {
	return &RoleValidateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RoleValidateLogic) RoleValidate(req *types.RoleValidateRequest) (*types.RoleValidateResponse, error) {
	defs, err := role.ParseDefinitions([]byte(req.Document))
	if err != nil {
		return nil, game.Validationf("%v", err)
	}
	if len(defs) == 0 {
		return nil, game.Validationf("no role definition found")
	}
	warnings, err := role.ValidateAll(defs, l.svcCtx.Library.Catalog())
	if err != nil {
		return nil, game.Validationf("%v", err)
	}
	resp := &types.RoleValidateResponse{BaseResponse: ok(), Roles: make([]string, 0, len(defs)), Warnings: warnings}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	for _, d := range defs {
		resp.Roles = append(resp.Roles, d.Name)
	}
	return resp, nil
}
