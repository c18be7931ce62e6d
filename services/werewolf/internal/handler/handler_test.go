package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest/pathvar"

	"github.com/cuihairu/werewolf/services/werewolf/internal/config"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
	"github.com/cuihairu/werewolf/services/werewolf/internal/types"
)

const testConfig = `
Name: werewolf-test
Host: 127.0.0.1
Port: 0
Engine:
  Phase:
    SheriffElection: false
Roles:
  Watch: false
`

func newService(t *testing.T) *svc.ServiceContext {
	t.Helper()
	var c config.Config
	if err := conf.LoadFromYamlBytes([]byte(testConfig), &c); err != nil {
		t.Fatalf("config: %v", err)
	}
	c.Audit.Path = t.TempDir() + "/audit.log"
	s, err := svc.NewServiceContext(c)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

type call struct {
	h      http.HandlerFunc
	method string
	body   string
	vars   map[string]string
}

func do(t *testing.T, c call, out any) int {
	t.Helper()
	r := httptest.NewRequest(c.method, "/", strings.NewReader(c.body))
	if c.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if c.vars != nil {
		r = pathvar.WithVars(r, c.vars)
	}
	w := httptest.NewRecorder()
	c.h(w, r)
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
	return w.Code
}

func TestGameLifecycle(t *testing.T) {
	s := newService(t)
	g := map[string]string{"game_id": "t1"}

	var created types.GameResponse
	code := do(t, call{h: GameCreateHandler(s), method: http.MethodPost,
		body: `{"id":"t1","seats":4,"identities":[{"seat":1,"name":"alice"}]}`}, &created)
	if code != http.StatusOK || !created.Success || created.Snapshot.Phase != "SETUP" {
		t.Fatalf("create: %d %+v", code, created.BaseResponse)
	}

	var dup types.BaseResponse
	if code := do(t, call{h: GameCreateHandler(s), method: http.MethodPost, body: `{"id":"t1","seats":4}`}, &dup); code != http.StatusConflict || dup.Success {
		t.Fatalf("duplicate create: %d %+v", code, dup)
	}

	var assigned types.GameResponse
	code = do(t, call{h: RolesAssignHandler(s), method: http.MethodPost, vars: g,
		body: `{"hands":[{"seat":1,"roles":["狼人"]},{"seat":2,"roles":["预言家"]},{"seat":3,"roles":["平民"]},{"seat":4,"roles":["平民"]}]}`}, &assigned)
	if code != http.StatusOK || !assigned.Success {
		t.Fatalf("assign: %d %+v", code, assigned.BaseResponse)
	}
	p, _ := assigned.Snapshot.Game.Player(2)
	if len(p.Roles) != 1 || p.Roles[0] != "预言家" {
		t.Fatalf("seat 2 roles = %v", p.Roles)
	}

	var adv types.GameResponse
	if code := do(t, call{h: PhaseAdvanceHandler(s), method: http.MethodPost, vars: g}, &adv); code != http.StatusOK || adv.Snapshot.Phase != "NIGHT" {
		t.Fatalf("advance: %d %+v", code, adv.Snapshot)
	}
	var late types.GameResponse
	if code := do(t, call{h: PhaseAdvanceHandler(s), method: http.MethodPost, vars: g, body: `{"from":"SETUP"}`}, &late); code != http.StatusConflict || late.Success {
		t.Fatalf("advance from a phase already left: %d %+v", code, late.BaseResponse)
	}

	var avail types.ActionsAvailableResponse
	do(t, call{h: ActionsAvailableHandler(s), method: http.MethodGet, vars: map[string]string{"game_id": "t1", "seat": "2"}}, &avail)
	found := false
	for _, a := range avail.Actions {
		found = found || a.Action == "seer.check"
	}
	if !avail.Success || !found {
		t.Fatalf("seer should be able to check: %+v", avail)
	}

	var sub types.ActionSubmitResponse
	code = do(t, call{h: ActionSubmitHandler(s), method: http.MethodPost, vars: g,
		body: `{"seat":2,"action":"seer.check","targets":[1]}`}, &sub)
	if code != http.StatusOK || sub.Instance == nil || sub.Instance.Role != "预言家" {
		t.Fatalf("submit: %d %+v", code, sub)
	}

	var bad types.BaseResponse
	code = do(t, call{h: ActionSubmitHandler(s), method: http.MethodPost, vars: g,
		body: `{"seat":3,"action":"seer.check","targets":[1]}`}, &bad)
	if code != http.StatusBadRequest || bad.Success || bad.Message == "" {
		t.Fatalf("villager check: %d %+v", code, bad)
	}

	var forced types.GameResponse
	if code := do(t, call{h: PhaseSetHandler(s), method: http.MethodPut, vars: g, body: `{"phase":"judge_decision"}`}, &forced); code != http.StatusOK {
		t.Fatalf("set phase: %d %+v", code, forced.BaseResponse)
	}
	var judged types.GameResponse
	do(t, call{h: JudgeDecisionHandler(s), method: http.MethodPost, vars: g, body: `{"end":true,"winner":"good"}`}, &judged)
	if !judged.Snapshot.Game.Ended || judged.Snapshot.Phase != "END" {
		t.Fatalf("judge: %+v", judged.Snapshot)
	}

	var reset types.BaseResponse
	if code := do(t, call{h: GameResetHandler(s), method: http.MethodDelete, vars: g}, &reset); code != http.StatusOK || !reset.Success {
		t.Fatalf("reset: %d %+v", code, reset)
	}
	var gone types.BaseResponse
	if code := do(t, call{h: GameGetHandler(s), method: http.MethodGet, vars: g}, &gone); code != http.StatusNotFound || gone.Success {
		t.Fatalf("get after reset: %d %+v", code, gone)
	}
}

func TestRoleEndpoints(t *testing.T) {
	s := newService(t)

	var list types.RolesListResponse
	do(t, call{h: RolesListHandler(s), method: http.MethodGet}, &list)
	if !list.Success || len(list.Roles) < 11 {
		t.Fatalf("roles: %+v", list)
	}

	doc, _ := json.Marshal(map[string]string{"document": "name: 屠夫\ncamp: VILLAGER\nactions:\n  - id: butcher.chop\n    timing: NIGHT\n    effect: kill\n    uses: 1\n"})
	var v types.RoleValidateResponse
	if code := do(t, call{h: RoleValidateHandler(s), method: http.MethodPost, body: string(doc)}, &v); code != http.StatusOK {
		t.Fatalf("validate: %d %+v", code, v)
	}
	if len(v.Roles) != 1 || len(v.Warnings) == 0 {
		t.Fatalf("validate result: %+v", v)
	}

	var rejected types.BaseResponse
	if code := do(t, call{h: RoleValidateHandler(s), method: http.MethodPost, body: `{"document":"name: x"}`}, &rejected); code != http.StatusBadRequest {
		t.Fatalf("invalid role: %d %+v", code, rejected)
	}
	if code := do(t, call{h: RoleValidateHandler(s), method: http.MethodPost, body: `{}`}, &rejected); code != http.StatusBadRequest {
		t.Fatalf("missing document should be rejected, got %d", code)
	}
}

func TestPollEndpoints(t *testing.T) {
	s := newService(t)
	g := map[string]string{"game_id": "p1"}
	do(t, call{h: GameCreateHandler(s), method: http.MethodPost, body: `{"id":"p1","seats":3}`}, nil)
	do(t, call{h: RolesAssignHandler(s), method: http.MethodPost, vars: g,
		body: `{"hands":[{"seat":1,"roles":["狼人"]},{"seat":2,"roles":["平民"]},{"seat":3,"roles":["平民"]}]}`}, nil)

	var res types.BaseResponse
	if code := do(t, call{h: PollStartHandler(s), method: http.MethodPost, vars: g, body: `{"kind":"exile"}`}, &res); code != http.StatusConflict {
		t.Fatalf("poll during setup: %d %+v", code, res)
	}
	if code := do(t, call{h: PollStartHandler(s), method: http.MethodPost, vars: g, body: `{"kind":"coin"}`}, &res); code != http.StatusBadRequest {
		t.Fatalf("unknown kind should fail parsing, got %d", code)
	}
	if code := do(t, call{h: PhaseSetHandler(s), method: http.MethodPut, vars: g, body: `{"phase":"VOTING"}`}, &res); code != http.StatusOK {
		t.Fatalf("set voting: %d %+v", code, res)
	}

	var started types.PollStartResponse
	// entering VOTING opens the exile poll already
	if code := do(t, call{h: PollStartHandler(s), method: http.MethodPost, vars: g, body: `{"kind":"exile"}`}, &started); code != http.StatusConflict {
		t.Fatalf("second poll: %d %+v", code, started)
	}
	var snap types.GameResponse
	do(t, call{h: GameGetHandler(s), method: http.MethodGet, vars: g}, &snap)
	if snap.Snapshot.Poll == nil {
		t.Fatalf("voting phase should hold a poll")
	}
	pv := map[string]string{"game_id": "p1", "poll_id": snap.Snapshot.Poll.ID}
	for _, e := range []int{1, 2, 3} {
		var vote types.GameResponse
		body, _ := json.Marshal(map[string]int{"elector": e, "candidate": 1})
		if code := do(t, call{h: VoteCastHandler(s), method: http.MethodPost, vars: pv, body: string(body)}, &vote); code != http.StatusOK {
			t.Fatalf("vote %d: %d %+v", e, code, vote.BaseResponse)
		}
	}
	var closed types.GameResponse
	if code := do(t, call{h: PollCloseHandler(s), method: http.MethodPost, vars: pv}, &closed); code != http.StatusOK {
		t.Fatalf("close: %d %+v", code, closed.BaseResponse)
	}
	if closed.Snapshot.Summary == nil || closed.Snapshot.Summary.Outcome.Winner != 1 {
		t.Fatalf("summary = %+v", closed.Snapshot.Summary)
	}
}

func TestStatusOf(t *testing.T) {
	var h http.Handler = HealthzHandler(nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %s", w.Code, w.Body.String())
	}
}
