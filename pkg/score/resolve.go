package score

import (
	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Resolve recomputes the derived state that depends on neighbouring
// measures: running key, meter and tempo, clef/key/time visibility, stem
// directions and beams. It is a pure function of the model and safe to call
// repeatedly.
func Resolve(d *Document) {
	key := theory.DefaultKeySignature
	ts := theory.DefaultTimeSignature
	tempo := theory.DefaultTempo
	for i, m := range d.measures {
		prevKey, prevTime := key, ts
		if m.keySig != nil {
			key = *m.keySig
		}
		if m.timeSig != nil {
			ts = *m.timeSig
		}
		if m.tempo != nil {
			tempo = *m.tempo
		}
		m.key, m.time, m.tempoRes = key, ts, tempo

		rowStart := m.PrevInRow() == nil
		m.keyChanged = i > 0 && key != prevKey
		m.showClef = rowStart
		m.showKey = (rowStart && key.AccidentalCount() != 0) || m.keyChanged
		m.showTime = i == 0 || ts != prevTime
	}
	for _, m := range d.measures {
		resolveStems(d, m)
	}
}

// PrimaryStaff returns the index of the first staff line drawing voice, or
// -1 if the voice only appears on tab lines.
func PrimaryStaff(lines []LineConfig, voice int) int {
	for i, l := range lines {
		if l.Type == LineStaff && l.ShowsVoice(voice) {
			return i
		}
	}
	return -1
}

// sharesLine reports whether another voice drawn on the same staff has
// content in m.
func sharesLine(d *Document, m *Measure, voice, line int) bool {
	for v := range errors.MaxVoices {
		if v != voice && m.HasVoice(v) && d.lines[line].ShowsVoice(v) {
			return true
		}
	}
	return false
}

func autoStem(d *Document, m *Measure, voice int, notes []theory.Note) Stem {
	line := PrimaryStaff(d.lines, voice)
	if line < 0 {
		return StemDown
	}
	if sharesLine(d, m, voice, line) {
		if voice%2 == 0 {
			return StemUp
		}
		return StemDown
	}
	mid := d.lines[line].MiddleLine()
	lo, hi := notes[0].DiatonicID(), notes[0].DiatonicID()
	for _, n := range notes[1:] {
		lo = min(lo, n.DiatonicID())
		hi = max(hi, n.DiatonicID())
	}
	if hi-mid >= mid-lo {
		return StemDown
	}
	return StemUp
}

func resolveStems(d *Document, m *Measure) {
	for _, c := range m.columns {
		for _, s := range c.symbols {
			if ng, ok := s.(*NoteGroup); ok {
				ng.beam = nil
				ng.stemDir = ng.options.stem
				if ng.stemDir == StemAuto {
					ng.stemDir = autoStem(d, m, ng.voice, ng.notes)
				}
			}
		}
	}
	window := m.time.BeamGroupTicks()
	if window <= 0 {
		return
	}
	for v := range errors.MaxVoices {
		var run []*NoteGroup
		flush := func() {
			if len(run) >= 2 {
				beamGroups(d, m, run)
			}
			run = nil
		}
		for _, s := range m.VoiceSymbols(v) {
			ng, ok := s.(*NoteGroup)
			if !ok || !ng.rhythm.Beamable() {
				flush()
				continue
			}
			if len(run) > 0 && run[0].col.tick/window != ng.col.tick/window {
				flush()
			}
			run = append(run, ng)
		}
		flush()
	}
}

func beamGroups(d *Document, m *Measure, groups []*NoteGroup) {
	b := &Beam{Groups: groups}
	for _, g := range groups {
		if g.options.stem != StemAuto {
			b.Stem = g.options.stem
			break
		}
	}
	if b.Stem == StemAuto {
		var all []theory.Note
		for _, g := range groups {
			all = append(all, g.notes...)
		}
		b.Stem = autoStem(d, m, groups[0].voice, all)
	}
	for _, g := range groups {
		g.beam = b
		g.stemDir = b.Stem
	}
}
