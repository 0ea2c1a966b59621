// Package demos builds the documents shipped with the command line tool and
// the HTTP server. Each call returns a fresh document.
package demos

import (
	"fmt"
	"sort"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

type demo struct {
	title string
	build func(b *builder)
	lines score.StaffPreset
}

var registry = map[string]demo{
	"ode":   {title: "Ode to Joy", lines: score.PresetTreble, build: ode},
	"scale": {title: "C Major Scale", lines: score.PresetTreble, build: scale},
	"coda":  {title: "Dal Segno", lines: score.PresetTreble, build: coda},
	"grand": {title: "Chorale", lines: score.PresetGrand, build: grand},
	"tab":   {title: "Arpeggio Study", lines: score.PresetGuitarTrebleAndTab, build: tab},
}

// Names returns the demo names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Title returns the title of a demo, or "" if it does not exist.
func Title(name string) string { return registry[name].title }

// Load builds the named demo.
func Load(name string) (*score.Document, error) {
	dm, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown demo %q", name)
	}
	b := &builder{doc: score.New(dm.lines)}
	b.doc.SetHeader(score.Header{Title: dm.title, Composer: "Traditional"})
	dm.build(b)
	if b.err != nil {
		return nil, fmt.Errorf("demo %s: %w", name, b.err)
	}
	return b.doc, nil
}

// builder keeps the first error so demo bodies read like the music.
type builder struct {
	doc *score.Document
	m   *score.Measure
	err error
}

func (b *builder) check(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

func (b *builder) row() *builder {
	b.doc.AddRow()
	return b
}

func (b *builder) measure() *builder {
	b.m = b.doc.AddMeasure()
	return b
}

// notes adds one note per entry of pitches, all with the same rhythm.
// "r" is a rest.
func (b *builder) notes(voice int, rhythm string, pitches ...string) *builder {
	for _, p := range pitches {
		if p == "r" {
			_, err := b.m.AddRest(voice, rhythm)
			b.check(err)
			continue
		}
		_, err := b.m.AddNote(voice, p, rhythm)
		b.check(err)
	}
	return b
}

func (b *builder) note(voice int, pitch, rhythm string, opts ...score.Option) *builder {
	_, err := b.m.AddNote(voice, pitch, rhythm, opts...)
	b.check(err)
	return b
}

func (b *builder) chord(voice int, rhythm string, pitches []string, opts ...score.Option) *builder {
	_, err := b.m.AddChord(voice, pitches, rhythm, opts...)
	b.check(err)
	return b
}

func (b *builder) nav(navs ...score.Navigation) *builder {
	for _, n := range navs {
		b.check(b.m.AddNavigation(n))
	}
	return b
}

func (b *builder) ending(passages ...int) *builder {
	b.check(b.m.AddEnding(passages...))
	return b
}

func (b *builder) annotate(tick int, kind score.AnnotationKind, text string, opts ...score.AnnotationOption) *builder {
	_, err := b.m.AddAnnotation(tick, kind, text, opts...)
	b.check(err)
	return b
}

func (b *builder) tempo(bpm int) *builder {
	b.check(b.m.SetTempo(theory.Tempo{BPM: bpm, BeatLength: theory.Rhythm{Length: theory.Quarter}}))
	return b
}

func (b *builder) time(sig string) *builder {
	ts, err := theory.ParseTimeSignature(sig)
	b.check(err)
	if err == nil {
		b.check(b.m.SetTimeSignature(ts))
	}
	return b
}

func (b *builder) key(sig string) *builder {
	ks, err := theory.ParseKeySignature(sig)
	b.check(err)
	if err == nil {
		b.m.SetKeySignature(ks)
	}
	return b
}

// ode is a repeated phrase with first and second endings.
func ode(b *builder) {
	b.measure().key("D Major").time("4/4").tempo(108).
		nav(score.NavStartRepeat).
		notes(0, "4", "F#4", "F#4", "G4", "A4").
		annotate(0, score.AnnotationDynamics, "mf")
	b.measure().notes(0, "4", "A4", "G4", "F#4", "E4")
	b.measure().notes(0, "4", "D4", "D4", "E4", "F#4")
	b.measure().ending(1).nav(score.NavEndRepeat).
		note(0, "F#4", "4.").note(0, "E4", "8").note(0, "E4", "2")
	b.row().measure().ending(2).
		note(0, "E4", "4.").note(0, "D4", "8").note(0, "D4", "2").
		nav(score.NavFine)
}

// scale walks up and down one octave and ends on a rolled chord.
func scale(b *builder) {
	b.measure().time("4/4").
		note(0, "C4", "8", score.Slur(8)).notes(0, "8", "D4", "E4", "F4", "G4", "A4", "B4", "C5")
	b.measure().
		note(0, "C5", "8", score.Slur(8)).notes(0, "8", "B4", "A4", "G4", "F4", "E4", "D4", "C4")
	b.measure().
		chord(0, "2", []string{"C4", "E4", "G4"}, score.WithArpeggio(score.ArpeggioUp)).
		chord(0, "2", []string{"C4", "E4", "G4", "C5"}, score.Fermata())
	b.m.EndSong()
}

// coda jumps back to the segno and skips to the coda on the second pass.
func coda(b *builder) {
	b.measure().time("3/4").tempo(96).notes(0, "4", "G4", "A4", "B4")
	b.measure().nav(score.NavSegno).notes(0, "4", "C5", "B4", "A4")
	b.measure().nav(score.NavToCoda).
		note(0, "G4", "4", score.Staccato()).note(0, "A4", "4", score.Staccato()).note(0, "B4", "4")
	b.measure().note(0, "C5", "2.").nav(score.NavDSalCoda)
	b.row().measure().nav(score.NavCoda).
		notes(0, "4", "E5", "D5", "B4").
		annotate(0, score.AnnotationTempo, "rit.", score.Extend(score.Infinity, true))
	b.measure().note(0, "C5", "2.").
		annotate(0, score.AnnotationTempo, "a tempo")
	b.m.AddBarFermata()
	b.m.EndSong()
}

// grand has a melody over a bass line with a crescendo into forte.
func grand(b *builder) {
	b.measure().time("4/4").key("G Major").
		notes(0, "4", "G4", "A4", "B4", "D5").
		notes(2, "2", "G2", "D3").
		annotate(0, score.AnnotationDynamics, "p").
		annotate(theory.TicksPerQuarter, score.AnnotationDynamics, "cresc.", score.Extend(score.Infinity, true))
	b.measure().
		notes(0, "4", "C5", "B4", "A4", "G4").
		notes(2, "2", "C3", "D3")
	b.measure().
		chord(0, "2", []string{"B4", "D5"}).chord(0, "2", []string{"A4", "C5"}).
		notes(2, "2", "G2", "D3").
		annotate(0, score.AnnotationDynamics, "f")
	b.measure().
		chord(0, "1", []string{"G4", "B4", "D5"}, score.Fermata()).
		notes(2, "1", "G2")
	b.m.EndSong()
}

// tab plays broken chords on guitar, on a staff and a tab line.
func tab(b *builder) {
	b.measure().time("4/4").tempo(90).
		notes(0, "8", "C3", "E3", "G3", "C4", "E4", "C4", "G3", "E3")
	b.measure().
		notes(0, "8", "A2", "E3", "A3", "C4", "E4", "C4", "A3", "E3")
	b.measure().nav(score.NavStartRepeat).
		notes(0, "8", "F2", "C3", "F3", "A3", "C4", "A3", "F3", "C3")
	b.measure().
		notes(0, "8", "G2", "D3", "G3", "B3", "D4", "B3", "G3", "D3").
		nav(score.NavEndRepeat)
	b.row().measure().
		chord(0, "1", []string{"C3", "E3", "G3", "C4", "E4"}, score.WithArpeggio(score.ArpeggioUp))
	b.m.EndSong()
}
