package score

import (
	"testing"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

func TestDocumentMeasureOrder(t *testing.T) {
	d := New(PresetTreble)
	m0 := d.AddMeasure()
	d.AddRow()
	m2 := d.AddMeasure()
	m1 := d.Rows()[0].AddMeasure()

	want := []*Measure{m0, m1, m2}
	got := d.Measures()
	if len(got) != len(want) {
		t.Fatalf("len(Measures()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Measures()[%d] = measure %d, want measure %d", i, got[i].ObjID(), want[i].ObjID())
		}
		if got[i].Index() != i {
			t.Errorf("Measures()[%d].Index() = %d", i, got[i].Index())
		}
	}

	var concat []*Measure
	for _, r := range d.Rows() {
		concat = append(concat, r.Measures()...)
	}
	for i := range concat {
		if concat[i] != got[i] {
			t.Fatalf("row concatenation differs from Measures() at %d", i)
		}
	}

	if m1.NextInRow() != nil {
		t.Error("NextInRow() across a row boundary should be nil")
	}
	if m1.Next() != m2 {
		t.Error("Next() should cross row boundaries")
	}
	if d.Rows()[0].Next() != d.Rows()[1] {
		t.Error("first row should link to the second")
	}
}

func TestAddNotesBuildsColumns(t *testing.T) {
	d := New(PresetTreble)
	m := d.AddMeasure()
	mustNote(t, m, 0, "C4", "4")
	mustNote(t, m, 0, "D4", "8")
	mustNote(t, m, 0, "E4", "8")
	mustNote(t, m, 1, "G3", "2")
	mustNote(t, m, 0, "F4", "2")

	ticks := []int{0, 96, 144, 192}
	if len(m.Columns()) != len(ticks) {
		t.Fatalf("len(Columns()) = %d, want %d", len(m.Columns()), len(ticks))
	}
	for i, c := range m.Columns() {
		if c.Tick() != ticks[i] {
			t.Errorf("Columns()[%d].Tick() = %d, want %d", i, c.Tick(), ticks[i])
		}
		if c.Index() != i {
			t.Errorf("Columns()[%d].Index() = %d", i, c.Index())
		}
	}
	if got := m.Ticks(); got != 384 {
		t.Errorf("Ticks() = %d, want 384", got)
	}
	if got := m.Columns()[1].Duration(); got != 48 {
		t.Errorf("Duration() = %d, want 48", got)
	}
	if got := m.Columns()[3].Duration(); got != 192 {
		t.Errorf("last Duration() = %d, want 192", got)
	}
	if m.Columns()[0].Symbol(1) == nil {
		t.Error("voice 1 should share the first column")
	}
}

func TestMeasureFull(t *testing.T) {
	d := New(PresetTreble)
	m := d.AddMeasure()
	if err := m.SetTimeSignature(theory.MustParseTimeSignature("2/4")); err != nil {
		t.Fatal(err)
	}
	mustNote(t, m, 0, "C4", "2")
	_, err := m.AddNote(0, "D4", "8")
	if !errors.Is(err, errors.ErrCodeScore) {
		t.Errorf("AddNote on full voice error = %v, want SCORE", err)
	}
	if _, err := m.AddNote(4, "D4", "8"); !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("AddNote voice 4 error = %v, want INVALID_ARG", err)
	}
	if _, err := m.AddNote(1, "X4", "8"); !errors.Is(err, errors.ErrCodeNote) {
		t.Errorf("AddNote bad pitch error = %v, want NOTE", err)
	}
	if _, err := m.AddRest(1, "4", Tie(2)); err == nil {
		t.Error("AddRest with tie should fail")
	}
	if _, err := m.AddNote(1, "C4", "4", Slur(1)); err == nil {
		t.Error("slur span 1 should fail")
	}
	// Second measure inherits 2/4 while building.
	m2 := d.AddMeasure()
	mustNote(t, m2, 0, "C4", "2")
	if _, err := m2.AddNote(0, "C4", "4"); err == nil {
		t.Error("inherited meter should limit the second measure")
	}
}

func TestNavigationAndEndings(t *testing.T) {
	d := New(PresetTreble)
	m := d.AddMeasure()
	if err := m.AddNavigation(NavEndRepeat); err != nil {
		t.Fatal(err)
	}
	if m.PlayCount() != DefaultPlayCount {
		t.Errorf("PlayCount() = %d, want %d", m.PlayCount(), DefaultPlayCount)
	}
	if err := m.AddEndRepeat(1); err == nil {
		t.Error("AddEndRepeat(1) should fail")
	}
	if err := m.AddEndRepeat(3); err != nil || m.PlayCount() != 3 {
		t.Errorf("AddEndRepeat(3) = %v, PlayCount() = %d", err, m.PlayCount())
	}
	if err := m.AddNavigation(NavDCalFine); err != nil {
		t.Fatal(err)
	}
	if err := m.AddNavigation(NavDS); !errors.Is(err, errors.ErrCodeScore) {
		t.Errorf("second jump error = %v, want SCORE", err)
	}
	if j, ok := m.Jump(); !ok || j != NavDCalFine {
		t.Errorf("Jump() = %v, %v", j, ok)
	}
	if err := m.AddEnding(2, 1); err != nil {
		t.Fatal(err)
	}
	if !m.Ending().Has(1) || !m.Ending().Has(2) || m.Ending().Has(3) || m.Ending().Max() != 2 {
		t.Errorf("Ending() = %+v", m.Ending())
	}
	if err := m.AddEnding(); err == nil {
		t.Error("AddEnding() without passages should fail")
	}
}

func TestRequestLayoutCascade(t *testing.T) {
	d := New(PresetTreble)
	m := d.AddMeasure()
	d.ClearLayoutRequest()
	if d.NeedsLayout() || m.NeedsLayout() || m.Row().NeedsLayout() {
		t.Fatal("ClearLayoutRequest should reset every scope")
	}
	gen := d.Generation()
	mustNote(t, m, 0, "C4", "4")
	if !m.NeedsLayout() || !m.Row().NeedsLayout() || !d.NeedsLayout() {
		t.Error("a note edit should dirty measure, row and document")
	}
	if d.Generation() <= gen {
		t.Errorf("Generation() = %d, want > %d", d.Generation(), gen)
	}
}

func TestGraphTables(t *testing.T) {
	d := New(PresetTreble)
	m := d.AddMeasure()
	ng := mustNote(t, m, 0, "C4", "4")
	a, err := m.AddAnnotation(0, AnnotationDynamics, "p")
	if err != nil {
		t.Fatal(err)
	}
	g := d.Graph()
	if p, ok := g.Parent(ng.ObjID()); !ok || p != ng.Column().ObjID() {
		t.Errorf("Parent(notegroup) = %v, %v", p, ok)
	}
	if p, _ := g.Parent(m.ObjID()); p != m.Row().ObjID() {
		t.Errorf("Parent(measure) = %v", p)
	}
	if ids := g.Anchored(ng.Column().ObjID()); len(ids) != 1 || ids[0] != a.ObjID() {
		t.Errorf("Anchored() = %v", ids)
	}
	if g.Object(a.ObjID()) != a {
		t.Error("Object() should return the annotation")
	}
	if a.Position() != Below {
		t.Errorf("dynamics Position() = %v, want below", a.Position())
	}
	if _, err := m.AddAnnotation(10, AnnotationDynamics, "f"); err == nil {
		t.Error("annotation at a tick with no column should fail")
	}

	g.Link(1, 2)
	g.Link(2, 3)
	if g.LinkHead(3) != 1 {
		t.Errorf("LinkHead(3) = %v, want 1", g.LinkHead(3))
	}
	if got := g.Links(1); len(got) != 2 {
		t.Errorf("Links(1) = %v, want 2 tails", got)
	}
	g.ClearLinks()
	if g.LinkHead(3) != 3 {
		t.Error("ClearLinks should drop chains")
	}
}

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []LineConfig
		wantErr bool
	}{
		{"treble", PresetTreble.Lines(), false},
		{"grand", PresetGrand.Lines(), false},
		{"guitar", PresetGuitarTrebleAndTab.Lines(), false},
		{"empty", nil, true},
		{"grand same clef", []LineConfig{{Clef: ClefG, GrandID: "a"}, {Clef: ClefG, GrandID: "a"}}, true},
		{"grand single", []LineConfig{{Clef: ClefG, GrandID: "a"}}, true},
		{"grand triple", []LineConfig{{Clef: ClefG, GrandID: "a"}, {Clef: ClefF, GrandID: "a"}, {Clef: ClefF, GrandID: "a"}}, true},
		{"grand octave down", []LineConfig{{Clef: ClefG, GrandID: "a", IsOctaveDown: true}, {Clef: ClefF, GrandID: "a"}}, true},
		{"tab without tuning", []LineConfig{{Type: LineTab}}, true},
		{"bad voice", []LineConfig{{Voices: []int{5}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithLines(tt.lines)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithLines() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeScore) {
				t.Errorf("code = %v, want SCORE", errors.GetCode(err))
			}
		})
	}
}

func TestRowGroups(t *testing.T) {
	d, err := NewWithLines([]LineConfig{
		{Clef: ClefG, Instrument: "Flute"},
		{Clef: ClefG, IsOctaveDown: true, Instrument: "Guitar"},
		{Type: LineTab, Tuning: StandardTuning, Instrument: "Guitar"},
		{Clef: ClefF},
	})
	if err != nil {
		t.Fatal(err)
	}
	groups := d.AddRow().Groups()
	if len(groups) != 2 {
		t.Fatalf("len(Groups()) = %d, want 2", len(groups))
	}
	if groups[1].Instrument != "Guitar" || groups[1].First != 1 || groups[1].Last != 2 {
		t.Errorf("Groups()[1] = %+v", groups[1])
	}
}

func TestFingerprint(t *testing.T) {
	build := func(n string) *Document {
		d := New(PresetTreble)
		m := d.AddMeasure()
		mustNote(t, m, 0, n, "1")
		return d
	}
	a, b, c := build("C4"), build("C4"), build("D4")
	if a.UUID() == b.UUID() {
		t.Error("documents should have distinct UUIDs")
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("equal content should share a fingerprint")
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("different content should change the fingerprint")
	}
}

func mustNote(t *testing.T, m *Measure, voice int, note, rhythm string, opts ...Option) *NoteGroup {
	t.Helper()
	ng, err := m.AddNote(voice, note, rhythm, opts...)
	if err != nil {
		t.Fatalf("AddNote(%d, %s, %s) error = %v", voice, note, rhythm, err)
	}
	return ng
}
