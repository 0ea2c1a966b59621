// Package audio defines the sound output collaborator of the player and a
// few implementations that do not need a sound device.
//
// The player treats audio as fire-and-forget: it calls PlayNote for every
// sounding note and Stop when playback is stopped, and ignores everything
// the collaborator does in between. Panics raised by a collaborator are
// recovered and logged by the player.
//
// Implementations in this package:
//   - [Null]: discards every call
//   - [Logger]: logs every call through a charmbracelet logger
//   - [Recorder]: keeps every call in memory, with its playback position
//
// The midi subpackage records playback into a Standard MIDI File.
package audio

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Audio plays notes. Note names use scientific pitch notation ("C#4").
type Audio interface {
	PlayNote(note string, durationSeconds, linearVolume float64)
	Stop()
}

// Positioner is implemented by collaborators that need to know where in
// the playback each note falls. The player calls SetPosition with the
// offset from the start of playback before it plays the notes at that
// offset.
type Positioner interface {
	SetPosition(d time.Duration)
}

// Null discards all notes.
type Null struct{}

func (Null) PlayNote(string, float64, float64) {}
func (Null) Stop()                             {}

// Logger logs every note at debug level.
type Logger struct {
	Log        *log.Logger
	Instrument string
}

// PlayNote logs the note.
func (l Logger) PlayNote(note string, durationSeconds, linearVolume float64) {
	if l.Log == nil {
		return
	}
	l.Log.Debug("note", "instrument", l.Instrument, "note", note,
		"duration", time.Duration(durationSeconds*float64(time.Second)).Round(time.Millisecond),
		"volume", linearVolume)
}

// Stop logs the stop request.
func (l Logger) Stop() {
	if l.Log != nil {
		l.Log.Debug("audio stopped", "instrument", l.Instrument)
	}
}

// Note is one recorded PlayNote call.
type Note struct {
	Name     string        `json:"note"`
	At       time.Duration `json:"at"`
	Duration float64       `json:"duration"`
	Volume   float64       `json:"volume"`
}

// Recorder keeps every note it is asked to play. It is safe for concurrent
// use.
type Recorder struct {
	mu    sync.Mutex
	pos   time.Duration
	notes []Note
	stops int
}

// SetPosition implements Positioner.
func (r *Recorder) SetPosition(d time.Duration) {
	r.mu.Lock()
	r.pos = d
	r.mu.Unlock()
}

// PlayNote records the note at the current position.
func (r *Recorder) PlayNote(note string, durationSeconds, linearVolume float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{Name: note, At: r.pos, Duration: durationSeconds, Volume: linearVolume})
}

// Stop counts the stop request.
func (r *Recorder) Stop() {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
}

// Notes returns a copy of the recorded notes in call order.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Note(nil), r.notes...)
}

// Stops returns how many times Stop was called.
func (r *Recorder) Stops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}

// Multi fans every call out to all collaborators.
func Multi(outs ...Audio) Audio { return multi(outs) }

type multi []Audio

func (m multi) PlayNote(note string, durationSeconds, linearVolume float64) {
	for _, a := range m {
		a.PlayNote(note, durationSeconds, linearVolume)
	}
}

func (m multi) Stop() {
	for _, a := range m {
		a.Stop()
	}
}

func (m multi) SetPosition(d time.Duration) {
	for _, a := range m {
		if p, ok := a.(Positioner); ok {
			p.SetPosition(d)
		}
	}
}
