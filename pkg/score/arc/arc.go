// Package arc resolves tie and slur requests into drawable arcs.
//
// Requests live on note groups (score.Tie, score.Slur). Resolve walks every
// voice in document order, feeds note groups to a span builder until the
// requested span is satisfied, then creates the arcs:
//
//   - A sentinel tie (score.TieStub, score.TieToMeasureEnd) creates one open
//     arc per note of the starting chord.
//   - An explicit tie pairs each note with the note of equal pitch in the
//     following group. Notes without a match get no arc.
//   - A slur joins the first note of the first group to the first note of the
//     last group.
//
// When the two ends sit in adjacent measures, two mirrored halves are
// created, one drawn in each measure. Spanning more than one measure
// boundary is an error.
//
// Resolve also rebuilds the document graph's link table: every group reached
// by a tie or slur is linked to the chain's first group.
package arc

import (
	"cmp"
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Kind distinguishes ties from slurs.
type Kind int

const (
	Tie Kind = iota
	Slur
)

func (k Kind) String() string {
	if k == Slur {
		return "slur"
	}
	return "tie"
}

// Direction is the side the curve bulges to.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Half says which part of a cross-measure arc this object draws.
type Half int

const (
	// Whole arcs have both ends in the same measure.
	Whole Half = iota
	// LeftHalf is drawn in the left measure and runs off its right edge.
	LeftHalf
	// RightHalf is drawn in the right measure and enters from its left edge.
	RightHalf
)

// Open says how an arc without a right note ends.
type Open int

const (
	Closed Open = iota
	OpenStub
	OpenMeasureEnd
)

// Endpoint is one end of an arc.
type Endpoint struct {
	Group *score.NoteGroup
	Note  theory.Note
}

// Arc is one drawable curve.
type Arc struct {
	Kind      Kind
	Left      Endpoint
	Right     Endpoint // Group is nil for open arcs
	Measure   *score.Measure
	Half      Half
	Open      Open
	Direction Direction
}

// ErrJumpingMeasures is wrapped into the SCORE error returned when an arc
// would cross more than one measure boundary.
var ErrJumpingMeasures = errors.New(errors.ErrCodeScore, "Cannot create arc because arc is jumping measures")

// Resolve recreates every arc of the document. score.Resolve must have run
// so that stem directions are known.
func Resolve(d *score.Document) ([]*Arc, error) {
	d.Graph().ClearLinks()
	var arcs []*Arc
	for v := range errors.MaxVoices {
		seq := voiceGroups(d, v)
		for i, g := range seq {
			for _, kind := range []Kind{Tie, Slur} {
				req := g.TieRequest()
				if kind == Slur {
					req = g.SlurRequest()
				}
				if req == nil {
					continue
				}
				b := newSpan(d, kind, *req)
				for _, next := range seq[i:] {
					if b.add(next) {
						break
					}
				}
				created, err := b.create()
				if err != nil {
					return nil, err
				}
				arcs = append(arcs, created...)
			}
		}
	}
	slices.SortStableFunc(arcs, func(a, b *Arc) int {
		return cmp.Or(
			cmp.Compare(a.Measure.Index(), b.Measure.Index()),
			cmp.Compare(a.Left.Group.Column().Measure().Index(), b.Left.Group.Column().Measure().Index()),
			cmp.Compare(a.Left.Group.Column().Tick(), b.Left.Group.Column().Tick()),
		)
	})
	return arcs, nil
}

func voiceGroups(d *score.Document, voice int) []*score.NoteGroup {
	var out []*score.NoteGroup
	for _, m := range d.Measures() {
		for _, s := range m.VoiceSymbols(voice) {
			if g, ok := s.(*score.NoteGroup); ok {
				out = append(out, g)
			}
		}
	}
	return out
}

// span accumulates the note groups of one tie or slur request.
type span struct {
	doc    *score.Document
	kind   Kind
	req    score.SpanRequest
	groups []*score.NoteGroup
}

func newSpan(d *score.Document, kind Kind, req score.SpanRequest) *span {
	return &span{doc: d, kind: kind, req: req}
}

// add appends a group and reports whether the span is satisfied.
func (s *span) add(g *score.NoteGroup) bool {
	s.groups = append(s.groups, g)
	if s.req.IsSentinel() {
		return true
	}
	return len(s.groups) >= s.req.Span
}

func (s *span) create() ([]*Arc, error) {
	if len(s.groups) == 0 {
		return nil, nil
	}
	first := s.groups[0]
	if s.kind == Tie && s.req.IsSentinel() {
		open := OpenStub
		if s.req.Span == score.TieToMeasureEnd {
			open = OpenMeasureEnd
		}
		arcs := make([]*Arc, 0, len(first.Notes()))
		for _, n := range first.Notes() {
			arcs = append(arcs, &Arc{
				Kind:      Tie,
				Left:      Endpoint{Group: first, Note: n},
				Measure:   first.Column().Measure(),
				Open:      open,
				Direction: direction(s.doc, s.req.Anchor, first, n),
			})
		}
		return arcs, nil
	}
	if len(s.groups) < 2 {
		return nil, nil
	}
	graph := s.doc.Graph()
	var arcs []*Arc
	if s.kind == Slur {
		last := s.groups[len(s.groups)-1]
		l := Endpoint{Group: first, Note: first.Notes()[0]}
		r := Endpoint{Group: last, Note: last.Notes()[0]}
		created, err := s.segment(l, r)
		if err != nil {
			return nil, err
		}
		for _, g := range s.groups[1:] {
			graph.Link(first.ObjID(), g.ObjID())
		}
		return created, nil
	}
	for i := 0; i+1 < len(s.groups); i++ {
		left, right := s.groups[i], s.groups[i+1]
		matched := false
		for _, ln := range left.Notes() {
			j := slices.IndexFunc(right.Notes(), func(rn theory.Note) bool { return rn.ChromaticID() == ln.ChromaticID() })
			if j < 0 {
				continue
			}
			created, err := s.segment(Endpoint{Group: left, Note: ln}, Endpoint{Group: right, Note: right.Notes()[j]})
			if err != nil {
				return nil, err
			}
			arcs = append(arcs, created...)
			matched = true
		}
		if matched {
			graph.Link(left.ObjID(), right.ObjID())
		}
	}
	return arcs, nil
}

func (s *span) segment(l, r Endpoint) ([]*Arc, error) {
	lm, rm := l.Group.Column().Measure(), r.Group.Column().Measure()
	dir := direction(s.doc, s.req.Anchor, l.Group, l.Note)
	switch rm.Index() - lm.Index() {
	case 0:
		return []*Arc{{Kind: s.kind, Left: l, Right: r, Measure: lm, Direction: dir}}, nil
	case 1:
		return []*Arc{
			{Kind: s.kind, Left: l, Right: r, Measure: lm, Half: LeftHalf, Direction: dir},
			{Kind: s.kind, Left: l, Right: r, Measure: rm, Half: RightHalf, Direction: dir},
		}, nil
	}
	return nil, errors.Wrap(errors.ErrCodeScore, ErrJumpingMeasures,
		"%s from measure %d to measure %d", s.kind, lm.Index(), rm.Index())
}

func direction(d *score.Document, anchor score.ArcAnchor, g *score.NoteGroup, n theory.Note) Direction {
	if anchor == score.AnchorAuto {
		if !g.IsChord() {
			if g.StemDirection() == score.StemUp {
				return Down
			}
			return Up
		}
		anchor = score.AnchorCenter
	}
	if anchor == score.AnchorStemTip {
		if g.StemDirection() == score.StemDown {
			return Down
		}
		return Up
	}
	line := score.PrimaryStaff(d.Lines(), g.Voice())
	if line < 0 {
		return Up
	}
	if n.DiatonicID() >= d.Lines()[line].MiddleLine() {
		return Up
	}
	return Down
}

// TieChains maps every tied note to the total ticks of its chain. Only the
// chain's first note is a key; continuation notes map to 0 so that playback
// does not retrigger them. Open ties do not extend a note.
func TieChains(arcs []*Arc) map[NoteKey]int {
	next := make(map[NoteKey]NoteKey)
	isTail := make(map[NoteKey]bool)
	for _, a := range arcs {
		if a.Kind != Tie || a.Right.Group == nil || a.Half == RightHalf {
			continue
		}
		l, r := KeyOf(a.Left), KeyOf(a.Right)
		next[l] = r
		isTail[r] = true
	}
	out := make(map[NoteKey]int)
	for _, a := range arcs {
		if a.Kind != Tie || a.Right.Group == nil || a.Half == RightHalf {
			continue
		}
		head := KeyOf(a.Left)
		if isTail[head] {
			continue
		}
		total := a.Left.Group.Ticks()
		seen := map[NoteKey]bool{head: true}
		for cur, ok := next[head]; ok && !seen[cur]; cur, ok = next[cur] {
			seen[cur] = true
			total += cur.Ticks
			out[cur] = 0
		}
		out[head] = total
	}
	return out
}

// NoteKey identifies one note inside one note group.
type NoteKey struct {
	Group     score.ID
	Chromatic int
	Ticks     int
}

// KeyOf returns the key of an endpoint.
func KeyOf(e Endpoint) NoteKey {
	return NoteKey{Group: e.Group.ObjID(), Chromatic: e.Note.ChromaticID(), Ticks: e.Group.Ticks()}
}
