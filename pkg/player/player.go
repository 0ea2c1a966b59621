package player

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/staffline/pkg/audio"
	"github.com/matzehuels/staffline/pkg/observability"
	"github.com/matzehuels/staffline/pkg/score"
)

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// Option configures a Player.
type Option func(*Player)

// WithAudio sets the audio collaborator. The default discards all notes.
func WithAudio(a audio.Audio) Option {
	return func(p *Player) {
		if a != nil {
			p.audio = a
		}
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *log.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithVolume scales every note volume by v, clamped to [0,1].
func WithVolume(v float64) Option {
	return func(p *Player) { p.master = max(0, min(1, v)) }
}

// WithSession sets the session id reported to hooks and logs. The default
// is a random UUID.
func WithSession(id string) Option {
	return func(p *Player) {
		if id != "" {
			p.session = id
		}
	}
}

type pendingNote struct {
	at     time.Time
	offset time.Duration
	ev     NoteEvent
}

// Player steps through a document in time. It is driven by Tick: the
// caller passes the current time and receives the deadline of the next
// call. Run does this with a real timer and Render with a virtual clock.
//
// A Player is not safe for concurrent use.
type Player struct {
	doc     *score.Document
	audio   audio.Audio
	logger  *log.Logger
	session string
	master  float64
	ctx     context.Context

	state    State
	plan     *Plan
	pos      int
	last     int
	deadline time.Time
	pending  []pendingNote

	cursorListeners []func(Step)
	stateListeners  []func(from, to State)
}

// New creates a stopped player for d.
func New(d *score.Document, opts ...Option) *Player {
	p := &Player{
		doc:     d,
		audio:   audio.Null{},
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		session: uuid.NewString(),
		master:  1,
		ctx:     context.Background(),
		last:    -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session returns the session id.
func (p *Player) Session() string { return p.session }

// State returns the playback state.
func (p *Player) State() State { return p.state }

// Plan returns the plan resolved by the last Play from Stopped, or nil.
func (p *Player) Plan() *Plan { return p.plan }

// Current returns the most recently played step.
func (p *Player) Current() (Step, bool) {
	if p.plan == nil || p.last < 0 || p.last >= len(p.plan.Steps) {
		return Step{}, false
	}
	return p.plan.Steps[p.last], true
}

// OnCursor registers fn to be called with every step as it is played.
// The player is Playing while cursor listeners run, so per-step play state
// is read through [Player.State] from inside fn.
func (p *Player) OnCursor(fn func(Step)) {
	p.cursorListeners = append(p.cursorListeners, fn)
}

// OnState registers fn to be called on every state change. It fires once
// per transition, not once per step: a Play while Playing or a Pause while
// Paused notifies nobody.
func (p *Player) OnState(fn func(from, to State)) {
	p.stateListeners = append(p.stateListeners, fn)
}

// Play starts or resumes playback at now. From Stopped it resolves the
// document again; from Paused it continues with the next step.
func (p *Player) Play(now time.Time) error {
	switch p.state {
	case Playing:
		return nil
	case Paused:
		p.deadline = now
		p.setState(Playing)
		return nil
	}
	plan, err := Resolve(p.doc)
	if err != nil {
		return err
	}
	if plan.Truncated {
		p.logger.Warn("navigation cycle cut short", "session", p.session, "visits", len(plan.Visits))
	}
	p.plan = plan
	p.pos, p.last = 0, -1
	p.pending = nil
	p.deadline = now
	p.logger.Info("playback started", "session", p.session, "steps", len(plan.Steps), "duration", plan.Duration)
	p.setState(Playing)
	return nil
}

// Pause halts stepping and keeps the position.
func (p *Player) Pause() {
	if p.state == Playing {
		p.setState(Paused)
	}
}

// Stop halts playback, silences the audio and rewinds.
func (p *Player) Stop() {
	if p.state == Stopped {
		return
	}
	p.pos, p.last = 0, -1
	p.pending = nil
	p.safely("stop", func() { p.audio.Stop() })
	p.setState(Stopped)
}

// Tick plays every step and delayed note due at now and returns when it
// wants to be called next. ok is false when nothing is scheduled.
func (p *Player) Tick(now time.Time) (next time.Time, ok bool) {
	p.firePending(now)
	if p.state == Playing {
		steps := p.plan.Steps
		for p.pos < len(steps) && !now.Before(p.deadline) {
			st := steps[p.pos]
			p.play(st, p.deadline)
			p.deadline = p.deadline.Add(st.Duration)
			p.pos++
		}
		if p.pos >= len(steps) && !now.Before(p.deadline) {
			p.flushPending()
			p.pos = 0
			p.logger.Info("playback finished", "session", p.session)
			p.setState(Stopped)
		}
	}
	return p.nextDeadline()
}

func (p *Player) nextDeadline() (time.Time, bool) {
	var next time.Time
	ok := false
	if p.state == Playing {
		next, ok = p.deadline, true
	}
	for _, n := range p.pending {
		if !ok || n.at.Before(next) {
			next, ok = n.at, true
		}
	}
	return next, ok
}

func (p *Player) play(st Step, at time.Time) {
	for _, ev := range st.Notes {
		if ev.Delay > 0 {
			p.pending = append(p.pending, pendingNote{at: at.Add(ev.Delay), offset: st.Start + ev.Delay, ev: ev})
			continue
		}
		p.trigger(st.Start, ev)
	}
	p.last = st.Index
	observability.Player().OnStep(p.ctx, p.session, st.MeasureIndex, st.ColumnIndex, len(st.Notes))
	p.logger.Debug("step", "measure", st.MeasureIndex, "column", st.ColumnIndex, "pass", st.Pass, "notes", len(st.Notes))
	for _, fn := range p.cursorListeners {
		fn(st)
	}
}

func (p *Player) firePending(now time.Time) {
	kept := p.pending[:0]
	for _, n := range p.pending {
		if now.Before(n.at) {
			kept = append(kept, n)
			continue
		}
		p.trigger(n.offset, n.ev)
	}
	p.pending = kept
}

func (p *Player) flushPending() {
	for _, n := range p.pending {
		p.trigger(n.offset, n.ev)
	}
	p.pending = nil
}

func (p *Player) trigger(offset time.Duration, ev NoteEvent) {
	p.safely("play note", func() {
		if pos, ok := p.audio.(audio.Positioner); ok {
			pos.SetPosition(offset)
		}
		p.audio.PlayNote(ev.Note, ev.Duration, ev.Volume*p.master)
	})
}

// safely runs an audio call and logs a panic instead of propagating it.
func (p *Player) safely(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("audio failed", "op", op, "session", p.session, "panic", r)
		}
	}()
	fn()
}

func (p *Player) setState(to State) {
	from := p.state
	if from == to {
		return
	}
	p.state = to
	observability.Player().OnPlayStateChange(p.ctx, p.session, from.String(), to.String())
	p.logger.Debug("state", "session", p.session, "from", from, "to", to)
	for _, fn := range p.stateListeners {
		fn(from, to)
	}
}

// Run plays the document in real time until it ends, is paused or stopped
// by a listener, or ctx is cancelled.
func (p *Player) Run(ctx context.Context) error {
	p.ctx = ctx
	if err := p.Play(time.Now()); err != nil {
		return err
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return ctx.Err()
		case now := <-timer.C:
			next, ok := p.Tick(now)
			if !ok {
				return nil
			}
			timer.Reset(max(0, time.Until(next)))
		}
	}
}

// Render plays d to the end on a virtual clock, sending every note to a
// right away instead of waiting for it. It returns the plan that was played.
func Render(ctx context.Context, d *score.Document, a audio.Audio, opts ...Option) (*Plan, error) {
	p := New(d, append(opts, WithAudio(a))...)
	p.ctx = ctx
	now := time.Unix(0, 0)
	if err := p.Play(now); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			p.Stop()
			return nil, err
		}
		next, ok := p.Tick(now)
		if !ok {
			return p.plan, nil
		}
		now = next
	}
}
