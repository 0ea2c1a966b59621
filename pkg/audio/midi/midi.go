// Package midi records playback into a Standard MIDI File.
//
// A [Recorder] is an audio collaborator: hand it to the player in place of
// a sound device, drive playback to completion (player.Render does this
// with a virtual clock), then write the file:
//
//	rec := midi.NewRecorder(midi.WithProgram(0))
//	if _, err := player.Render(ctx, doc, rec); err != nil {
//	    return err
//	}
//	return rec.WriteFile("out.mid")
//
// Note times come from the player's SetPosition calls and are written on a
// fixed 120 BPM grid, so the file plays back at the rendered speed
// regardless of tempo marks in the score.
package midi

import (
	"bytes"
	"io"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

const (
	resolution = 480
	gridBPM    = 120
	// ticksPerSecond follows from resolution and gridBPM.
	ticksPerSecond = resolution * gridBPM / 60
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithChannel selects the MIDI channel (0-15).
func WithChannel(ch uint8) Option {
	return func(r *Recorder) { r.channel = ch & 0x0f }
}

// WithProgram emits a program change (General MIDI instrument) at the
// start of the track.
func WithProgram(p uint8) Option {
	return func(r *Recorder) { r.program = int(p & 0x7f) }
}

// WithTrackName sets the track name meta event.
func WithTrackName(name string) Option {
	return func(r *Recorder) { r.name = name }
}

type event struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// Recorder collects notes and writes them as a single-track SMF.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	pos     time.Duration
	channel uint8
	program int
	name    string
	events  []event
	skipped []string
}

// NewRecorder creates an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{program: -1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetPosition moves the write position for the following notes.
func (r *Recorder) SetPosition(d time.Duration) {
	r.mu.Lock()
	r.pos = d
	r.mu.Unlock()
}

// PlayNote records a note-on at the current position and the matching
// note-off durationSeconds later. Unparseable note names are skipped and
// reported by Skipped.
func (r *Recorder) PlayNote(note string, durationSeconds, linearVolume float64) {
	n, err := theory.ParseNote(note)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil || n.MIDI() < 0 || n.MIDI() > 127 {
		r.skipped = append(r.skipped, note)
		return
	}
	start := toTicks(r.pos.Seconds())
	end := toTicks(r.pos.Seconds() + max(durationSeconds, 0))
	if end <= start {
		end = start + 1
	}
	key := uint8(n.MIDI())
	r.events = append(r.events,
		event{tick: start, on: true, key: key, vel: velocity(linearVolume)},
		event{tick: end, key: key},
	)
}

// Stop is a no-op: recorded notes are kept.
func (r *Recorder) Stop() {}

// Len returns the number of recorded notes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events) / 2
}

// Skipped returns the note names that could not be recorded.
func (r *Recorder) Skipped() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.skipped...)
}

// SMF builds the MIDI file from the recorded notes.
func (r *Recorder) SMF() (*smf.SMF, error) {
	r.mu.Lock()
	evs := append([]event(nil), r.events...)
	r.mu.Unlock()

	// Note-offs sort before note-ons on the same tick so a repeated key
	// is released before it is struck again.
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].tick != evs[j].tick {
			return evs[i].tick < evs[j].tick
		}
		return !evs[i].on && evs[j].on
	})

	var tr smf.Track
	if r.name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(r.name))
	}
	tr.Add(0, smf.MetaTempo(gridBPM))
	if r.program >= 0 {
		tr.Add(0, midi.ProgramChange(r.channel, uint8(r.program)))
	}
	var last uint32
	for _, e := range evs {
		delta := e.tick - last
		last = e.tick
		if e.on {
			tr.Add(delta, midi.NoteOn(r.channel, e.key, e.vel))
		} else {
			tr.Add(delta, midi.NoteOff(r.channel, e.key))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)
	if err := s.Add(tr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, err, "add midi track")
	}
	return s, nil
}

// WriteTo writes the MIDI file to w.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	s, err := r.SMF()
	if err != nil {
		return 0, err
	}
	return s.WriteTo(w)
}

// Bytes returns the encoded MIDI file.
func (r *Recorder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the MIDI file to path.
func (r *Recorder) WriteFile(path string) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, err, "write %s", path)
	}
	return nil
}

func toTicks(seconds float64) uint32 {
	if seconds <= 0 {
		return 0
	}
	return uint32(math.Round(seconds * ticksPerSecond))
}

// velocity maps a linear volume to 1-127. Silent notes still sound at the
// minimum velocity because velocity 0 means note-off.
func velocity(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Max(1, math.Round(v*127)))
}
