package theory

import (
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
)

// TicksPerQuarter is the tick resolution of a quarter note.
const TicksPerQuarter = 96

// TicksPerWhole is the tick length of a whole note.
const TicksPerWhole = 4 * TicksPerQuarter

// NoteLength is the denominator of a note value: 1 whole, 4 quarter, 8 eighth.
type NoteLength int

const (
	Whole        NoteLength = 1
	Half         NoteLength = 2
	Quarter      NoteLength = 4
	Eighth       NoteLength = 8
	Sixteenth    NoteLength = 16
	ThirtySecond NoteLength = 32
	SixtyFourth  NoteLength = 64
)

// Valid reports whether l is one of the supported note values.
func (l NoteLength) Valid() bool {
	switch l {
	case Whole, Half, Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth:
		return true
	}
	return false
}

// Ticks returns the undotted length in ticks.
func (l NoteLength) Ticks() int {
	if !l.Valid() {
		return 0
	}
	return TicksPerWhole / int(l)
}

// Rhythm is the duration of a note group or rest.
type Rhythm struct {
	Length  NoteLength
	Dots    int
	Triplet bool
}

// ParseRhythm parses a length followed by optional dots and a "t" triplet
// suffix: "4", "8.", "2..", "8t".
func ParseRhythm(s string) (Rhythm, error) {
	s = strings.TrimSpace(s)
	r := Rhythm{}
	if strings.HasSuffix(s, "t") {
		r.Triplet = true
		s = strings.TrimSuffix(s, "t")
	}
	for strings.HasSuffix(s, ".") {
		r.Dots++
		s = strings.TrimSuffix(s, ".")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Rhythm{}, errors.Wrap(errors.ErrCodeInvalidArg, err, "invalid rhythm %q", s)
	}
	r.Length = NoteLength(n)
	if err := r.Validate(); err != nil {
		return Rhythm{}, err
	}
	return r, nil
}

// MustParseRhythm is like ParseRhythm but panics on error.
func MustParseRhythm(s string) Rhythm {
	r, err := ParseRhythm(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate checks the note value and dot count.
func (r Rhythm) Validate() error {
	if !r.Length.Valid() {
		return errors.New(errors.ErrCodeInvalidArg, "invalid note length %d", r.Length)
	}
	if r.Dots < 0 || r.Dots > 2 {
		return errors.New(errors.ErrCodeInvalidArg, "invalid dot count %d", r.Dots)
	}
	return nil
}

// Ticks returns the full duration including dots and triplet scaling.
func (r Rhythm) Ticks() int {
	base := r.Length.Ticks()
	t, add := base, base
	for i := 0; i < r.Dots; i++ {
		add /= 2
		t += add
	}
	if r.Triplet {
		t = t * 2 / 3
	}
	return t
}

// Beamable reports whether the value carries a flag (eighth or shorter).
func (r Rhythm) Beamable() bool {
	return r.Length >= Eighth
}

// Flags returns the number of flags or beams the value is drawn with.
func (r Rhythm) Flags() int {
	switch {
	case r.Length >= SixtyFourth:
		return 4
	case r.Length >= ThirtySecond:
		return 3
	case r.Length >= Sixteenth:
		return 2
	case r.Length >= Eighth:
		return 1
	}
	return 0
}

// HasStem reports whether the value is drawn with a stem.
func (r Rhythm) HasStem() bool {
	return r.Length != Whole
}

// Filled reports whether the note head is filled (quarter or shorter).
func (r Rhythm) Filled() bool {
	return r.Length >= Quarter
}

func (r Rhythm) String() string {
	s := strconv.Itoa(int(r.Length)) + strings.Repeat(".", r.Dots)
	if r.Triplet {
		s += "t"
	}
	return s
}
