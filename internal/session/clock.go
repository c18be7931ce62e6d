package session

import "time"

// Clock abstracts time for the session timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Timer slots. Scheduling a slot replaces its previous timer.
const (
	slotPhase       = "phase"
	slotPollWarning = "poll.warning"
	slotPollFinish  = "poll.finish"
	slotSpeech      = "speech"
)

type slot struct {
	token uint64
	timer Timer
}

// scheduler is owned by the actor loop. Fired timers only carry their token
// back into the loop; a token that no longer matches is ignored.
type scheduler struct {
	clock Clock
	slots map[string]*slot
}

func newScheduler(c Clock) *scheduler {
	return &scheduler{clock: c, slots: map[string]*slot{}}
}

func (s *scheduler) get(name string) *slot {
	sl, ok := s.slots[name]
	if !ok {
		sl = &slot{}
		s.slots[name] = sl
	}
	return sl
}

func (s *scheduler) schedule(name string, d time.Duration, fire func(token uint64)) {
	sl := s.get(name)
	if sl.timer != nil {
		sl.timer.Stop()
	}
	sl.token++
	token := sl.token
	sl.timer = s.clock.AfterFunc(d, func() { fire(token) })
}

func (s *scheduler) cancel(name string) {
	sl := s.get(name)
	if sl.timer != nil {
		sl.timer.Stop()
		sl.timer = nil
	}
	sl.token++
}

func (s *scheduler) valid(name string, token uint64) bool {
	sl, ok := s.slots[name]
	return ok && sl.token == token && sl.timer != nil
}

// fired clears the timer of a slot after its command ran.
func (s *scheduler) fired(name string, token uint64) {
	if sl, ok := s.slots[name]; ok && sl.token == token {
		sl.timer = nil
	}
}

func (s *scheduler) stopAll() {
	for name := range s.slots {
		s.cancel(name)
	}
}
