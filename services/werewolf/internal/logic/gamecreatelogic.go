package logic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/internal/session"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GameCreateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGameCreateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GameCreateLogic {
	return &GameCreateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GameCreateLogic) GameCreate(req *types.GameCreateRequest) (*types.GameResponse, error) {
	setup := session.Setup{ID: strings.TrimSpace(req.Id), Seats: req.Seats, Deck: req.Deck}
	if len(req.Identities) > 0 {
		setup.Identities = make(map[int]string, len(req.Identities))
		for _, id := range req.Identities {
			setup.Identities[id.Seat] = id.Name
		}
	}
	if len(req.CustomRoles) > 0 {
		raw, err := json.Marshal(req.CustomRoles)
		if err != nil {
			return nil, game.Validationf("custom_roles: %v", err)
		}
		defs, err := role.ParseDefinitions(raw)
		if err != nil {
			return nil, game.Validationf("%v", err)
		}
		setup.CustomRoles = defs
	}
	snap, err := l.svcCtx.Engine.CreateGame(l.ctx, setup)
	if err != nil {
		return nil, err
	}
	l.Infof("game %s created with %d seats", snap.GameID, req.Seats)
	return gameResponse(snap), nil
}
