package logic

import (
	"context"
	"fmt"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RolesListLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRolesListLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RolesListLogic {
	return &RolesListLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RolesListLogic) RolesList() (*types.RolesListResponse, error) {
	reg, err := l.svcCtx.Library.Registry()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	resp := &types.RolesListResponse{BaseResponse: ok()}
	for _, r := range reg.Roles() {
		resp.Roles = append(resp.Roles, types.RoleInfo{Name: r.Name, Camp: string(r.Camp), Custom: r.Custom, Actions: r.Actions})
	}
	return resp, nil
}
