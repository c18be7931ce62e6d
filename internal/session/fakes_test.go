package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/internal/ports"
	"github.com/cuihairu/werewolf/internal/repo/memory"
)

type fakeTimer struct {
	c       *fakeClock
	at      time.Time
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock only fires timers when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now.Add(d), d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time and fires due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// active returns pending timers with duration d.
func (c *fakeClock) active(d time.Duration) []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.d == d {
			out = append(out, t)
		}
	}
	return out
}

type call struct {
	op   string
	seat int
	text string
}

type recordingGateway struct {
	mu    sync.Mutex
	calls []call
}

func (g *recordingGateway) add(c call) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, c)
	return nil
}

func (g *recordingGateway) Notify(_ context.Context, _ string, seat int, text string) error {
	return g.add(call{op: "notify", seat: seat, text: text})
}

func (g *recordingGateway) Broadcast(_ context.Context, _ string, text string) error {
	return g.add(call{op: "broadcast", text: text})
}

func (g *recordingGateway) SetMuted(_ context.Context, _ string, seat int, muted bool) error {
	text := "unmute"
	if muted {
		text = "mute"
	}
	return g.add(call{op: "mute", seat: seat, text: text})
}

func (g *recordingGateway) SetMutedAll(_ context.Context, _ string, muted bool) error {
	text := "unmute"
	if muted {
		text = "mute"
	}
	return g.add(call{op: "mute_all", text: text})
}

func (g *recordingGateway) PlayCue(_ context.Context, _ string, cue string) error {
	return g.add(call{op: "cue", text: cue})
}

func (g *recordingGateway) find(op string, seat int, substr string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.calls {
		if c.op == op && (seat == 0 || c.seat == seat) && strings.Contains(c.text, substr) {
			return true
		}
	}
	return false
}

type recordingPublisher struct {
	mu       sync.Mutex
	versions []int64
	fail     bool
}

func (p *recordingPublisher) Publish(_ context.Context, s *ports.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.versions = append(p.versions, s.Version)
	if p.fail {
		return errors.New("publisher down")
	}
	return nil
}

type recordingArchive struct {
	mu    sync.Mutex
	games []string
}

func (a *recordingArchive) Archive(_ context.Context, g *game.Game) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.games = append(a.games, g.ID)
	return "games/" + g.ID + ".json", nil
}

func (a *recordingArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.games)
}

type harness struct {
	e       *Engine
	clock   *fakeClock
	store   *memory.Store
	gw      *recordingGateway
	pub     *recordingPublisher
	archive *recordingArchive
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{
		clock:   newFakeClock(),
		store:   memory.NewStore(),
		gw:      &recordingGateway{},
		pub:     &recordingPublisher{},
		archive: &recordingArchive{},
	}
	cfg := DefaultConfig()
	cfg.Phase.SheriffElection = false
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, Deps{Store: h.store, Publisher: h.pub, Gateway: h.gw, Archive: h.archive, Clock: h.clock})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	h.e = e
	return h
}

// start creates a game and deals roles in seat order.
func (h *harness) start(t *testing.T, id string, roles ...[]string) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.e.CreateGame(ctx, Setup{ID: id, Seats: len(roles)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	hands := map[int][]string{}
	for i, r := range roles {
		hands[i+1] = r
	}
	if _, err := h.e.AssignRoles(ctx, id, Assignment{Roles: hands}); err != nil {
		t.Fatalf("assign: %v", err)
	}
}

// tick advances the clock and waits for the fired commands to run.
func (h *harness) tick(t *testing.T, id string, d time.Duration) {
	t.Helper()
	h.clock.Advance(d)
	h.flush(t, id)
}

func (h *harness) flush(t *testing.T, id string) {
	t.Helper()
	a, err := h.e.actor(context.Background(), id)
	if err != nil {
		t.Fatalf("actor: %v", err)
	}
	if err := a.do(context.Background(), "flush", func(*mutation) error { return errStale }); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func (h *harness) snap(t *testing.T, id string) *ports.Snapshot {
	t.Helper()
	s, err := h.e.Snapshot(context.Background(), id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

func (h *harness) input(t *testing.T, id string, in phase.Input) {
	t.Helper()
	if _, err := h.e.Input(context.Background(), id, in); err != nil {
		t.Fatalf("input %+v: %v", in, err)
	}
}

func logContains(g *game.Game, substr string) bool {
	for _, l := range g.Log {
		if strings.Contains(l.Text, substr) {
			return true
		}
	}
	return false
}
