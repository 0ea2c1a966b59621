package score

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// LineType selects how a notation line is drawn.
type LineType int

const (
	LineStaff LineType = iota
	LineTab
)

func (t LineType) String() string {
	if t == LineTab {
		return "tab"
	}
	return "staff"
}

// Clef of a staff line.
type Clef int

const (
	ClefG Clef = iota
	ClefF
)

func (c Clef) String() string {
	if c == ClefF {
		return "F"
	}
	return "G"
}

// MiddleLine returns the diatonic id of the note on the middle staff line.
func (c Clef) MiddleLine(octaveDown bool) int {
	mid := theory.TrebleMiddleLine
	if c == ClefF {
		mid = theory.BassMiddleLine
	}
	if octaveDown {
		mid -= 7
	}
	return mid
}

// LineConfig describes one notation line of every row.
type LineConfig struct {
	Type         LineType      `json:"type"`
	Clef         Clef          `json:"clef"`
	IsOctaveDown bool          `json:"octave_down,omitempty"`
	GrandID      string        `json:"grand_id,omitempty"`
	Instrument   string        `json:"instrument,omitempty"`
	Tuning       []theory.Note `json:"tuning,omitempty"`
	Voices       []int         `json:"voices,omitempty"`
}

// ShowsVoice reports whether the line draws the given voice. A line with no
// explicit voice list draws all of them.
func (c LineConfig) ShowsVoice(voice int) bool {
	return len(c.Voices) == 0 || slices.Contains(c.Voices, voice)
}

// MiddleLine returns the diatonic id of the staff's middle line.
func (c LineConfig) MiddleLine() int {
	return c.Clef.MiddleLine(c.IsOctaveDown)
}

// StandardTuning is six-string guitar tuning, lowest string first.
var StandardTuning = []theory.Note{
	{Letter: theory.E, Octave: 2},
	{Letter: theory.A, Octave: 2},
	{Letter: theory.D, Octave: 3},
	{Letter: theory.G, Octave: 3},
	{Letter: theory.B, Octave: 3},
	{Letter: theory.E, Octave: 4},
}

// StaffPreset names a common line configuration.
type StaffPreset int

const (
	PresetTreble StaffPreset = iota
	PresetBass
	PresetGrand
	PresetGuitarTreble
	PresetGuitarTab
	PresetGuitarTrebleAndTab
)

// Lines expands the preset into line configurations.
func (p StaffPreset) Lines() []LineConfig {
	switch p {
	case PresetBass:
		return []LineConfig{{Type: LineStaff, Clef: ClefF}}
	case PresetGrand:
		return []LineConfig{
			{Type: LineStaff, Clef: ClefG, GrandID: "grand", Voices: []int{0, 1}},
			{Type: LineStaff, Clef: ClefF, GrandID: "grand", Voices: []int{2, 3}},
		}
	case PresetGuitarTreble:
		return []LineConfig{{Type: LineStaff, Clef: ClefG, IsOctaveDown: true, Instrument: "Guitar"}}
	case PresetGuitarTab:
		return []LineConfig{{Type: LineTab, Tuning: StandardTuning, Instrument: "Guitar"}}
	case PresetGuitarTrebleAndTab:
		return []LineConfig{
			{Type: LineStaff, Clef: ClefG, IsOctaveDown: true, Instrument: "Guitar"},
			{Type: LineTab, Tuning: StandardTuning, Instrument: "Guitar"},
		}
	}
	return []LineConfig{{Type: LineStaff, Clef: ClefG}}
}

// ValidateLines checks a line configuration. Grand staff pairing needs
// exactly one G and one F staff per GrandID, neither octave-down.
func ValidateLines(lines []LineConfig) error {
	if len(lines) == 0 {
		return errors.New(errors.ErrCodeScore, "score needs at least one notation line")
	}
	grand := make(map[string][]int)
	for i, l := range lines {
		for _, v := range l.Voices {
			if err := errors.ValidateVoice(v); err != nil {
				return errors.Wrap(errors.ErrCodeScore, err, "line %d", i)
			}
		}
		if l.Type == LineTab && len(l.Tuning) == 0 {
			return errors.New(errors.ErrCodeScore, "tab line %d has no tuning", i)
		}
		if l.GrandID != "" {
			grand[l.GrandID] = append(grand[l.GrandID], i)
		}
	}
	for id, idx := range grand {
		if len(idx) != 2 {
			return errors.New(errors.ErrCodeScore, "grand staff %q must pair exactly two lines, got %d", id, len(idx))
		}
		a, b := lines[idx[0]], lines[idx[1]]
		if a.Type != LineStaff || b.Type != LineStaff {
			return errors.New(errors.ErrCodeScore, "grand staff %q must use staff lines", id)
		}
		if a.Clef == b.Clef {
			return errors.New(errors.ErrCodeScore, "grand staff %q needs one G and one F clef", id)
		}
		if a.IsOctaveDown || b.IsOctaveDown {
			return errors.New(errors.ErrCodeScore, "grand staff %q cannot be octave down", id)
		}
	}
	return nil
}
