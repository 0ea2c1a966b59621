package theory

import (
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
)

// Letter is a note name, ordered by scale step from C.
type Letter int

const (
	C Letter = iota
	D
	E
	F
	G
	A
	B
)

var letterNames = "CDEFGAB"

// semitones maps a letter to its semitone offset from C.
var semitones = [7]int{0, 2, 4, 5, 7, 9, 11}

func (l Letter) String() string {
	if l < C || l > B {
		return "?"
	}
	return letterNames[l : l+1]
}

// Accidental shifts a letter by semitones: -2 (double flat) to 2 (double sharp).
type Accidental int

const (
	DoubleFlat  Accidental = -2
	Flat        Accidental = -1
	Natural     Accidental = 0
	Sharp       Accidental = 1
	DoubleSharp Accidental = 2
)

func (a Accidental) String() string {
	switch a {
	case DoubleFlat:
		return "bb"
	case Flat:
		return "b"
	case Sharp:
		return "#"
	case DoubleSharp:
		return "##"
	}
	return ""
}

// Note is a spelled pitch such as C#4. Octave 4 holds middle C.
type Note struct {
	Letter     Letter
	Accidental Accidental
	Octave     int
}

// ParseNote parses scientific pitch notation: a letter, an optional
// accidental (#, ##, b, bb) and an octave number, e.g. "C4", "F#3", "Bb5".
func ParseNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Note{}, errors.New(errors.ErrCodeNote, "empty note")
	}
	idx := strings.IndexByte(letterNames, strings.ToUpper(s[:1])[0])
	if idx < 0 {
		return Note{}, errors.New(errors.ErrCodeNote, "invalid note letter in %q", s)
	}
	rest := s[1:]
	acc := Natural
	switch {
	case strings.HasPrefix(rest, "##"):
		acc, rest = DoubleSharp, rest[2:]
	case strings.HasPrefix(rest, "#"):
		acc, rest = Sharp, rest[1:]
	case strings.HasPrefix(rest, "bb"):
		acc, rest = DoubleFlat, rest[2:]
	case strings.HasPrefix(rest, "b"):
		acc, rest = Flat, rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Note{}, errors.Wrap(errors.ErrCodeNote, err, "invalid octave in %q", s)
	}
	if octave < 0 || octave > 9 {
		return Note{}, errors.New(errors.ErrCodeNote, "octave %d out of range in %q", octave, s)
	}
	return Note{Letter: Letter(idx), Accidental: acc, Octave: octave}, nil
}

// MustParseNote is like ParseNote but panics on error. Intended for
// literals in demos and tests.
func MustParseNote(s string) Note {
	n, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return n
}

// DiatonicID numbers staff positions: one step per letter, 7 per octave.
func (n Note) DiatonicID() int {
	return n.Octave*7 + int(n.Letter)
}

// ChromaticID numbers semitones: 12 per octave, C0 = 0.
func (n Note) ChromaticID() int {
	return n.Octave*12 + semitones[n.Letter] + int(n.Accidental)
}

// MIDI returns the General MIDI key number (C4 = 60).
func (n Note) MIDI() int {
	return n.ChromaticID() + 12
}

func (n Note) String() string {
	return n.Letter.String() + n.Accidental.String() + strconv.Itoa(n.Octave)
}

// Middle lines of the two supported clefs, as diatonic ids.
var (
	TrebleMiddleLine = Note{Letter: B, Octave: 4}.DiatonicID()
	BassMiddleLine   = Note{Letter: D, Octave: 3}.DiatonicID()
)
