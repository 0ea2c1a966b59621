package player

import (
	"github.com/matzehuels/staffline/pkg/score"
)

// iterationFactor bounds sequence resolution to this many visits per
// measure in the document.
const iterationFactor = 10

// Visit is one pass through a measure during playback.
type Visit struct {
	Measure *score.Measure
	// Pass is the 1-based number of times this measure has been visited,
	// including this visit.
	Pass int
}

// Sequence resolves the order in which measures are played, following
// repeats, endings and D.C./D.S. jumps. It never fails: cyclic navigation
// is cut off after 10 visits per measure.
func Sequence(d *score.Document) []Visit {
	visits, _ := resolveSequence(d)
	return visits
}

// sequencer holds the traversal state. Pass counts live here, keyed by
// measure index, so resolution never mutates the document. sections counts
// the pass through the repeated section closed by each ending block, keyed
// by the block's first measure.
type sequencer struct {
	ms       []*score.Measure
	passes   map[int]int
	sections map[int]int
	fired    map[int]bool

	repeatStart int
	segno       int
	jumped      bool
	jump        score.Navigation
}

// resolveSequence returns the visits and whether the iteration cap cut the
// traversal short.
func resolveSequence(d *score.Document) ([]Visit, bool) {
	s := &sequencer{
		ms:       d.Measures(),
		passes:   make(map[int]int),
		sections: make(map[int]int),
		fired:    make(map[int]bool),
		segno:    -1,
	}
	return s.run()
}

func (s *sequencer) run() ([]Visit, bool) {
	n := len(s.ms)
	var out []Visit
	i := 0
	for iter := 0; i < n; iter++ {
		if iter >= iterationFactor*n {
			return out, true
		}
		m := s.ms[i]

		if m.Ending() != nil && s.alternativeStart(i) {
			to, ok := s.redirect(i)
			if !ok {
				i = s.skipEndings(i)
				continue
			}
			if to != i {
				i = to
				continue
			}
		}

		s.passes[i]++
		out = append(out, Visit{Measure: m, Pass: s.passes[i]})

		if m.HasNavigation(score.NavStartRepeat) {
			s.repeatStart = i
		}
		if m.HasNavigation(score.NavSegno) {
			s.segno = i
		}

		if s.jumped {
			if s.jump.AlFine() && m.HasNavigation(score.NavFine) {
				return out, false
			}
			if s.jump.AlCoda() && m.HasNavigation(score.NavToCoda) {
				if c := s.find(i+1, score.NavCoda); c >= 0 {
					i = c
					continue
				}
			}
		}

		if m.HasNavigation(score.NavEndRepeat) {
			if s.repeatAgain(i) {
				if m.Ending() != nil {
					b := s.blockStart(i)
					s.sections[b] = s.sectionPass(b) + 1
				}
				i = s.repeatStart
				continue
			}
		}

		if nav, ok := m.Jump(); ok && !s.fired[i] {
			s.fired[i] = true
			s.jumped, s.jump = true, nav
			i = 0
			if nav.FromSegno() {
				i = s.segnoIndex()
			}
			s.repeatStart = i
			continue
		}

		if m.IsEndSong() {
			return out, false
		}
		i++
	}
	return out, false
}

// repeatEnd is the index of the first EndRepeat at or after repeatStart.
func (s *sequencer) repeatEnd() int {
	for j := s.repeatStart; j < len(s.ms); j++ {
		if s.ms[j].HasNavigation(score.NavEndRepeat) {
			return j
		}
	}
	return -1
}

// repeatAgain reports whether the EndRepeat at i loops back. The pass
// count of i already includes the current visit.
func (s *sequencer) repeatAgain(i int) bool {
	m := s.ms[i]
	if m.Ending() != nil {
		// Forced: loop iff some alternative claims the next pass.
		b := s.blockStart(i)
		return s.claimed(b, s.sectionPass(b)+1) >= 0
	}
	if s.jumped {
		return false
	}
	return s.passes[i] < m.PlayCount()
}

// redirect decides where playback continues on reaching the alternative
// starting at i. It returns i itself to play it, another alternative to
// jump to, or false when no alternative claims the pass.
func (s *sequencer) redirect(i int) (int, bool) {
	if s.jumped {
		last, best := -1, 0
		for _, j := range s.alternatives(s.blockStart(i)) {
			if mx := s.ms[j].Ending().Max(); mx >= best {
				last, best = j, mx
			}
		}
		return last, last >= 0
	}
	p := s.sectionPass(s.blockStart(i))
	if s.ms[i].Ending().Has(p) {
		return i, true
	}
	j := s.claimed(i, p)
	return j, j >= 0
}

// sectionPass is the pass through the repeated section around the ending
// block starting at b. A block that closes its section with an EndRepeat
// counts its own passes; a block inside a section follows the visits of the
// EndRepeat that closes it.
func (s *sequencer) sectionPass(b int) int {
	if p, ok := s.sections[b]; ok {
		return p
	}
	if e := s.repeatEnd(); e > b {
		return s.passes[e] + 1
	}
	return 1
}

// claimed returns the first alternative at or after from whose ending
// includes pass p, or -1. The scan gives up at a song or section end or at
// a StartRepeat opening another section.
func (s *sequencer) claimed(from, p int) int {
	for j := from; j < len(s.ms); j++ {
		m := s.ms[j]
		if j > from && m.HasNavigation(score.NavStartRepeat) && j != s.repeatStart {
			return -1
		}
		if m.Ending() != nil && s.alternativeStart(j) && m.Ending().Has(p) {
			return j
		}
		if m.IsEndSong() || m.IsEndSection() {
			return -1
		}
	}
	return -1
}

// alternativeStart reports whether i opens an alternative: a run of
// measures with the same ending passages.
func (s *sequencer) alternativeStart(i int) bool {
	if i == 0 {
		return true
	}
	prev := s.ms[i-1].Ending()
	return prev == nil || !sameEnding(prev, s.ms[i].Ending())
}

// blockStart walks back to the first measure of the contiguous ending
// block containing i.
func (s *sequencer) blockStart(i int) int {
	for i > 0 && s.ms[i-1].Ending() != nil {
		i--
	}
	return i
}

// blockRange returns the indexes of the ending block starting at start.
func (s *sequencer) blockRange(start int) []int {
	var out []int
	for j := start; j < len(s.ms) && s.ms[j].Ending() != nil; j++ {
		out = append(out, j)
	}
	return out
}

// alternatives returns the starts of the alternatives in a block.
func (s *sequencer) alternatives(start int) []int {
	var out []int
	for _, j := range s.blockRange(start) {
		if s.alternativeStart(j) {
			out = append(out, j)
		}
	}
	return out
}

// skipEndings returns the first measure after the ending block around i.
func (s *sequencer) skipEndings(i int) int {
	r := s.blockRange(s.blockStart(i))
	return r[len(r)-1] + 1
}

func (s *sequencer) segnoIndex() int {
	if s.segno >= 0 {
		return s.segno
	}
	if j := s.find(0, score.NavSegno); j >= 0 {
		return j
	}
	return 0
}

func (s *sequencer) find(from int, nav score.Navigation) int {
	for j := from; j < len(s.ms); j++ {
		if s.ms[j].HasNavigation(nav) {
			return j
		}
	}
	return -1
}

func sameEnding(a, b *score.Ending) bool {
	if a == nil || b == nil || len(a.Passages) != len(b.Passages) {
		return false
	}
	for i := range a.Passages {
		if a.Passages[i] != b.Passages[i] {
			return false
		}
	}
	return true
}
