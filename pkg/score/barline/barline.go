// Package barline decides which bar line glyph each side of a measure draws.
//
// The glyph is a pure function of the measure's navigation marks and those of
// its neighbours; it is recomputed on every layout and never stored.
package barline

import "github.com/matzehuels/staffline/pkg/score"

// Type is the glyph drawn at a measure boundary.
type Type int

const (
	None Type = iota
	Single
	Double
	EndSong
	StartRepeat
	EndRepeat
	EndStartRepeat
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Single:
		return "single"
	case Double:
		return "double"
	case EndSong:
		return "end-song"
	case StartRepeat:
		return "start-repeat"
	case EndRepeat:
		return "end-repeat"
	case EndStartRepeat:
		return "end-start-repeat"
	}
	return "unknown"
}

// MarshalText lets layouts serialize the glyph by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Left returns the glyph on the measure's left edge. A start repeat is
// dropped when the previous measure on the row already ends a repeat: the
// shared boundary is drawn once, as EndStartRepeat, by that measure.
func Left(m *score.Measure) Type {
	if !m.HasNavigation(score.NavStartRepeat) {
		return None
	}
	if p := m.PrevInRow(); p != nil && p.HasNavigation(score.NavEndRepeat) {
		return None
	}
	return StartRepeat
}

// Right returns the glyph on the measure's right edge.
func Right(m *score.Measure) Type {
	next := m.NextInRow()
	nextStarts := next != nil && next.HasNavigation(score.NavStartRepeat)

	switch {
	case m.HasNavigation(score.NavEndRepeat) && nextStarts:
		return EndStartRepeat
	case m.HasNavigation(score.NavEndRepeat):
		return EndRepeat
	case m.IsEndSong() && len(m.Document().Measures()) > 1:
		return EndSong
	case m.IsEndSection():
		return Double
	case nextStarts:
		return None
	}
	if next == nil {
		if n := m.Next(); n != nil && n.HasNavigation(score.NavStartRepeat) {
			return Double
		}
		return Single
	}
	if next.KeyChanged() {
		return Double
	}
	return Single
}

// Width returns the horizontal space a glyph takes, in staff spaces.
func Width(t Type) float64 {
	switch t {
	case Single:
		return 0.3
	case Double:
		return 0.8
	case EndSong:
		return 1.2
	case StartRepeat, EndRepeat:
		return 1.6
	case EndStartRepeat:
		return 2.6
	}
	return 0
}
