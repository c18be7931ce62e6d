package handler

import (
	"net/http"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games",
				Handler: GameCreateHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/games/:game_id",
				Handler: GameGetHandler(serverCtx),
			},
			{
				Method:  http.MethodDelete,
				Path:    "/api/v1/games/:game_id",
				Handler: GameResetHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/roles",
				Handler: RolesAssignHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/actions",
				Handler: ActionSubmitHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/games/:game_id/players/:seat/actions",
				Handler: ActionsAvailableHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/phase/advance",
				Handler: PhaseAdvanceHandler(serverCtx),
			},
			{
				Method:  http.MethodPut,
				Path:    "/api/v1/games/:game_id/phase",
				Handler: PhaseSetHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/input",
				Handler: InputHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/polls",
				Handler: PollStartHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/polls/:poll_id/votes",
				Handler: VoteCastHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/polls/:poll_id/quit",
				Handler: CandidateQuitHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/polls/:poll_id/close",
				Handler: PollCloseHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/games/:game_id/judge",
				Handler: JudgeDecisionHandler(serverCtx),
			},
		},
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/roles/validate",
				Handler: RoleValidateHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/roles",
				Handler: RolesListHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/healthz",
				Handler: HealthzHandler(serverCtx),
			},
		},
	)
}
