package types

import "github.com/cuihairu/werewolf/internal/ports"

type (
	BaseResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	GameIdRequest struct {
		GameId string `path:"game_id"`
	}

	PhaseAdvanceRequest struct {
		GameId string `path:"game_id"`
		From   string `json:"from,optional"`
	}

	SeatIdentity struct {
		Seat int    `json:"seat"`
		Name string `json:"name"`
	}

	SeatRoles struct {
		Seat  int      `json:"seat"`
		Roles []string `json:"roles"`
	}

	GameCreateRequest struct {
		Id          string                   `json:"id,optional"`
		Seats       int                      `json:"seats"`
		Deck        []string                 `json:"deck,optional"`
		Identities  []SeatIdentity           `json:"identities,optional"`
		CustomRoles []map[string]interface{} `json:"custom_roles,optional"`
	}

	GameResponse struct {
		BaseResponse
		Snapshot *ports.Snapshot `json:"snapshot,omitempty"`
	}

	RolesAssignRequest struct {
		GameId string      `path:"game_id"`
		Hands  []SeatRoles `json:"hands,optional"`
		Seed   uint64      `json:"seed,optional"`
	}

	ActionSubmitRequest struct {
		GameId  string `path:"game_id"`
		Seat    int    `json:"seat"`
		Role    string `json:"role,optional"`
		Action  string `json:"action"`
		Targets []int  `json:"targets,optional"`
		Source  string `json:"source,optional"`
	}

	ActionInstance struct {
		Id      string `json:"id"`
		Seat    int    `json:"seat"`
		Role    string `json:"role"`
		Action  string `json:"action"`
		Targets []int  `json:"targets"`
		Status  string `json:"status"`
		Note    string `json:"note,omitempty"`
	}

	ActionSubmitResponse struct {
		BaseResponse
		Instance *ActionInstance `json:"instance,omitempty"`
	}

	ActionsAvailableRequest struct {
		GameId string `path:"game_id"`
		Seat   int    `path:"seat"`
	}

	AvailableAction struct {
		Role        string `json:"role"`
		Action      string `json:"action"`
		Name        string `json:"name"`
		Timing      string `json:"timing"`
		Targets     int    `json:"targets"`
		Uses        int    `json:"uses"`
		TargetAlive bool   `json:"target_alive"`
	}

	ActionsAvailableResponse struct {
		BaseResponse
		Actions []AvailableAction `json:"actions"`
	}

	PhaseSetRequest struct {
		GameId string `path:"game_id"`
		Phase  string `json:"phase"`
	}

	InputRequest struct {
		GameId string `path:"game_id"`
		Seat   int    `json:"seat,optional"`
		Kind   string `json:"kind"`
		Target int    `json:"target,optional"`
	}

	PollStartRequest struct {
		GameId string `path:"game_id"`
		Kind   string `json:"kind,options=exile|sheriff"`
	}

	PollStartResponse struct {
		BaseResponse
		PollId string `json:"poll_id,omitempty"`
	}

	PollRequest struct {
		GameId string `path:"game_id"`
		PollId string `path:"poll_id"`
	}

	VoteCastRequest struct {
		GameId    string `path:"game_id"`
		PollId    string `path:"poll_id"`
		Elector   int    `json:"elector"`
		Candidate int    `json:"candidate,optional"` // 0 撤票
	}

	CandidateQuitRequest struct {
		GameId string `path:"game_id"`
		PollId string `path:"poll_id"`
		Seat   int    `json:"seat"`
	}

	JudgeDecisionRequest struct {
		GameId string `path:"game_id"`
		End    bool   `json:"end"`
		Winner string `json:"winner,optional"`
	}

	RoleValidateRequest struct {
		Document string `json:"document"` // YAML 或 JSON
	}

	RoleValidateResponse struct {
		BaseResponse
		Roles    []string `json:"roles"`
		Warnings []string `json:"warnings"`
	}

	RoleInfo struct {
		Name    string   `json:"name"`
		Camp    string   `json:"camp"`
		Custom  bool     `json:"custom"`
		Actions []string `json:"actions"`
	}

	RolesListResponse struct {
		BaseResponse
		Roles []RoleInfo `json:"roles"`
	}
)
