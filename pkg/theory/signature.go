package theory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
)

// TimeSignature is a meter such as 3/4.
type TimeSignature struct {
	Beats    int
	BeatType NoteLength
}

// DefaultTimeSignature is common time.
var DefaultTimeSignature = TimeSignature{Beats: 4, BeatType: Quarter}

// ParseTimeSignature parses "beats/beatType" such as "6/8".
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return TimeSignature{}, errors.New(errors.ErrCodeTimeSignature, "invalid time signature %q", s)
	}
	beats, err := strconv.Atoi(parts[0])
	if err != nil || beats < 1 || beats > 32 {
		return TimeSignature{}, errors.New(errors.ErrCodeTimeSignature, "invalid beat count in %q", s)
	}
	bt, err := strconv.Atoi(parts[1])
	if err != nil || !NoteLength(bt).Valid() {
		return TimeSignature{}, errors.New(errors.ErrCodeTimeSignature, "invalid beat type in %q", s)
	}
	return TimeSignature{Beats: beats, BeatType: NoteLength(bt)}, nil
}

// MustParseTimeSignature is like ParseTimeSignature but panics on error.
func MustParseTimeSignature(s string) TimeSignature {
	ts, err := ParseTimeSignature(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// MeasureTicks is the length of a full measure.
func (ts TimeSignature) MeasureTicks() int {
	return ts.Beats * ts.BeatType.Ticks()
}

// BeamGroupTicks is the span inside which flagged notes are beamed together.
// Compound meters (6/8, 9/8, 12/8) group three eighths.
func (ts TimeSignature) BeamGroupTicks() int {
	if ts.BeatType == Eighth && ts.Beats%3 == 0 && ts.Beats > 3 {
		return 3 * Eighth.Ticks()
	}
	return ts.BeatType.Ticks()
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.BeatType)
}

// Mode is the scale mode of a key.
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "Minor"
	}
	return "Major"
}

// fifths positions of the natural letters on the circle of fifths.
var fifths = [7]int{0, 2, 4, -1, 1, 3, 5}

// KeySignature is a tonic plus a mode.
type KeySignature struct {
	Tonic      Letter
	Accidental Accidental
	Mode       Mode
}

// DefaultKeySignature is C major.
var DefaultKeySignature = KeySignature{Tonic: C, Mode: Major}

// ParseKeySignature parses "<tonic> <mode>", e.g. "Bb Major" or "f# minor".
func ParseKeySignature(s string) (KeySignature, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return KeySignature{}, errors.New(errors.ErrCodeKeySignature, "invalid key signature %q", s)
	}
	tonic, err := ParseNote(fields[0] + "4")
	if err != nil {
		return KeySignature{}, errors.Wrap(errors.ErrCodeKeySignature, err, "invalid tonic in %q", s)
	}
	var mode Mode
	switch strings.ToLower(fields[1]) {
	case "major":
		mode = Major
	case "minor":
		mode = Minor
	default:
		return KeySignature{}, errors.New(errors.ErrCodeScale, "unknown mode %q", fields[1])
	}
	ks := KeySignature{Tonic: tonic.Letter, Accidental: tonic.Accidental, Mode: mode}
	if n := ks.AccidentalCount(); n < -7 || n > 7 {
		return KeySignature{}, errors.New(errors.ErrCodeKeySignature, "key %q has %d accidentals", s, n)
	}
	return ks, nil
}

// MustParseKeySignature is like ParseKeySignature but panics on error.
func MustParseKeySignature(s string) KeySignature {
	ks, err := ParseKeySignature(s)
	if err != nil {
		panic(err)
	}
	return ks
}

// AccidentalCount returns the number of sharps (positive) or flats (negative).
func (ks KeySignature) AccidentalCount() int {
	n := fifths[ks.Tonic] + 7*int(ks.Accidental)
	if ks.Mode == Minor {
		n -= 3
	}
	return n
}

func (ks KeySignature) String() string {
	return ks.Tonic.String() + ks.Accidental.String() + " " + ks.Mode.String()
}

// Tempo is a metronome mark: BPM beats of BeatLength per minute.
type Tempo struct {
	BPM        int
	BeatLength Rhythm
}

// DefaultTempo is 120 quarter notes per minute.
var DefaultTempo = Tempo{BPM: 120, BeatLength: Rhythm{Length: Quarter}}

// Validate checks the tempo is playable.
func (t Tempo) Validate() error {
	if t.BPM <= 0 || t.BPM > 1000 {
		return errors.New(errors.ErrCodeInvalidArg, "invalid bpm %d", t.BPM)
	}
	return t.BeatLength.Validate()
}

// SecondsPerTick converts ticks to seconds at the given speed multiplier.
func (t Tempo) SecondsPerTick(speed float64) float64 {
	if speed <= 0 {
		speed = 1
	}
	return 60 / (float64(t.BPM) * speed * float64(t.BeatLength.Ticks()))
}

func (t Tempo) String() string {
	return fmt.Sprintf("%s = %d", t.BeatLength, t.BPM)
}
