package layout

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/staffline/pkg/score"
)

func addNotes(t *testing.T, m *score.Measure, voice int, rhythm string, notes ...string) {
	t.Helper()
	for _, n := range notes {
		if _, err := m.AddNote(voice, n, rhythm); err != nil {
			t.Fatalf("AddNote(%s) error = %v", n, err)
		}
	}
}

func build(t *testing.T, d *score.Document, opts ...Option) *Layout {
	t.Helper()
	l, err := Build(context.Background(), d, opts...)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return l
}

func intersects(a, b Rect) bool {
	return a.Left < b.Right && b.Left < a.Right && a.Top < b.Bottom && b.Top < a.Bottom
}

func validWidth(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func TestBuildIdempotent(t *testing.T) {
	d := score.New(score.PresetGrand)
	d.SetHeader(score.Header{Title: "Etude", Composer: "Anon"})
	m := d.AddMeasure()
	addNotes(t, m, 0, "8", "C5", "D5", "E5", "F5", "G5", "A5", "B5", "C6")
	addNotes(t, m, 2, "2", "C3", "G2")
	if _, err := m.AddAnnotation(0, score.AnnotationDynamics, "mf"); err != nil {
		t.Fatal(err)
	}

	first := build(t, d)
	second := build(t, d)
	if !reflect.DeepEqual(first, second) {
		t.Error("Build() twice without edits produced different layouts")
	}
}

func TestStretchWholeMeasureRest(t *testing.T) {
	d := score.New(score.PresetTreble)
	m := d.AddMeasure()
	if _, err := m.AddRest(0, "1"); err != nil {
		t.Fatal(err)
	}
	l := build(t, d)

	got := l.Rows[0].Measures[0]
	if got.MinColumnsWidth != 0 {
		t.Errorf("MinColumnsWidth = %v, want 0", got.MinColumnsWidth)
	}
	if !validWidth(got.ColumnsWidth) || !validWidth(got.Rect.Width()) {
		t.Fatalf("measure widths = %v / %v, want finite and non-negative", got.ColumnsWidth, got.Rect.Width())
	}
	wantRight := l.Regions.StaffLeft + l.Regions.StaffWidth
	if math.Abs(got.Rect.Right-wantRight) > 1e-6 {
		t.Errorf("measure right = %v, want %v (the whole staff)", got.Rect.Right, wantRight)
	}
}

func TestStretchNarrowPage(t *testing.T) {
	d := score.New(score.PresetTreble)
	for range 6 {
		m := d.AddMeasure()
		addNotes(t, m, 0, "16", "C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5",
			"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5")
	}
	l := build(t, d, WithWidth(50))

	if l.Regions.StaffWidth < l.Regions.NaturalWidth {
		t.Errorf("StaffWidth = %v, want at least NaturalWidth %v", l.Regions.StaffWidth, l.Regions.NaturalWidth)
	}
	for _, m := range l.Rows[0].Measures {
		if !validWidth(m.ColumnsWidth) {
			t.Errorf("measure %d ColumnsWidth = %v", m.Index, m.ColumnsWidth)
		}
	}
}

func TestRowsShareStaffWidth(t *testing.T) {
	d := score.New(score.PresetTreble)
	addNotes(t, d.AddMeasure(), 0, "4", "C4", "E4", "G4", "C5")
	addNotes(t, d.AddMeasure(), 0, "1", "C4")
	d.AddRow()
	addNotes(t, d.AddMeasure(), 0, "2", "D4", "F4")

	l := build(t, d)
	if len(l.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(l.Rows))
	}
	right := l.Regions.StaffLeft + l.Regions.StaffWidth
	for _, r := range l.Rows {
		ms := r.Measures
		if got := ms[len(ms)-1].Rect.Right; math.Abs(got-right) > 1e-6 {
			t.Errorf("row %d ends at %v, want %v", r.Index, got, right)
		}
		if got := ms[0].Rect.Left; math.Abs(got-l.Regions.StaffLeft) > 1e-6 {
			t.Errorf("row %d starts at %v, want %v", r.Index, got, l.Regions.StaffLeft)
		}
	}
	if l.Rows[1].Rect.Top <= l.Rows[0].Rect.Bottom {
		t.Errorf("row 1 top %v overlaps row 0 bottom %v", l.Rows[1].Rect.Top, l.Rows[0].Rect.Bottom)
	}
	// A whole note needs more room than a quarter.
	cols := l.Rows[0].Measures[0].Columns
	if len(cols) != 4 {
		t.Fatalf("len(Columns) = %d, want 4", len(cols))
	}
	for i := 1; i < len(cols); i++ {
		if cols[i].Rect.Left < cols[i-1].Rect.Right-1e-6 {
			t.Errorf("column %d starts before column %d ends", i, i-1)
		}
	}
}

func TestGroupsDoNotOverlap(t *testing.T) {
	d := score.New(score.PresetTreble)
	m := d.AddMeasure()
	addNotes(t, m, 0, "4", "A3", "C4", "E6", "G3")
	for tick, dyn := range map[int]string{0: "p", 192: "ff"} {
		if _, err := m.AddAnnotation(tick, score.AnnotationDynamics, dyn); err != nil {
			t.Fatal(err)
		}
	}
	for tick, syl := range map[int]string{0: "la", 96: "li", 192: "lo", 288: "lu"} {
		if _, err := m.AddAnnotation(tick, score.AnnotationLyrics, syl); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.AddAnnotation(96, score.AnnotationLabel, "dolce"); err != nil {
		t.Fatal(err)
	}
	l := build(t, d)
	row := l.Rows[0]

	var symbols []Rect
	for _, c := range row.Measures[0].Columns {
		for _, s := range c.Symbols {
			symbols = append(symbols, s.Rect)
		}
	}
	dynTop := math.NaN()
	for i, o := range row.Objects {
		for _, s := range symbols {
			if intersects(o.Rect, s) {
				t.Errorf("%s object %v overlaps symbol %v", o.Group, o.Rect, s)
			}
		}
		for _, p := range row.Objects[i+1:] {
			if intersects(o.Rect, p.Rect) {
				t.Errorf("%s object overlaps %s object", o.Group, p.Group)
			}
		}
		if o.Group == GroupDynamics {
			if math.IsNaN(dynTop) {
				dynTop = o.Rect.Top
			} else if o.Rect.Top != dynTop {
				t.Errorf("dynamics tops = %v and %v, want one row-aligned y", dynTop, o.Rect.Top)
			}
		}
		if o.Group == GroupLyrics && o.Rect.Top < row.Lines[0].Bottom() {
			t.Errorf("lyrics top %v is above the staff bottom %v", o.Rect.Top, row.Lines[0].Bottom())
		}
		if o.Group == GroupLabel && o.Rect.Bottom > row.Lines[0].Top {
			t.Errorf("label bottom %v is below the staff top %v", o.Rect.Bottom, row.Lines[0].Top)
		}
	}
}

func TestGrandStaffGap(t *testing.T) {
	grand := score.New(score.PresetGrand)
	grand.AddMeasure()
	split, err := score.NewWithLines([]score.LineConfig{
		{Type: score.LineStaff, Clef: score.ClefG},
		{Type: score.LineStaff, Clef: score.ClefF},
	})
	if err != nil {
		t.Fatal(err)
	}
	split.AddMeasure()

	gap := func(l *Layout) float64 {
		lines := l.Rows[0].Lines
		return lines[1].Top - lines[0].Bottom()
	}
	g, s := gap(build(t, grand)), gap(build(t, split))
	if g >= s {
		t.Errorf("grand staff gap = %v, want less than separate staves gap %v", g, s)
	}
}

func TestTieAcrossMeasures(t *testing.T) {
	d := score.New(score.PresetTreble)
	m0 := d.AddMeasure()
	addNotes(t, m0, 0, "2", "C5")
	if _, err := m0.AddNote(0, "E5", "2", score.Tie(2)); err != nil {
		t.Fatal(err)
	}
	addNotes(t, d.AddMeasure(), 0, "1", "E5")

	l := build(t, d)
	arcs := l.Rows[0].Arcs
	if len(arcs) != 2 {
		t.Fatalf("len(Arcs) = %d, want 2 halves", len(arcs))
	}
	left, right := arcs[0], arcs[1]
	bar := l.Rows[0].Measures[0].Rect.Right
	if math.Abs(left.To.X-bar) > 1e-6 {
		t.Errorf("left half ends at %v, want bar line %v", left.To.X, bar)
	}
	if right.From.X < bar-1e-6 {
		t.Errorf("right half starts at %v, before the bar line %v", right.From.X, bar)
	}
	for _, a := range arcs {
		if a.Kind != "tie" || a.Height <= 0 {
			t.Errorf("arc = %+v, want a tie with a positive height", a)
		}
	}
}

func TestEndingBracket(t *testing.T) {
	d := score.New(score.PresetTreble)
	d.AddMeasure()
	m1 := d.AddMeasure()
	if err := m1.AddEnding(1); err != nil {
		t.Fatal(err)
	}
	if err := m1.AddEndRepeat(2); err != nil {
		t.Fatal(err)
	}
	m2 := d.AddMeasure()
	if err := m2.AddEnding(2); err != nil {
		t.Fatal(err)
	}

	l := build(t, d)
	var endings []Object
	for _, o := range l.Rows[0].Objects {
		if o.Group == GroupEnding {
			endings = append(endings, o)
		}
	}
	if len(endings) != 2 {
		t.Fatalf("ending objects = %d, want 2", len(endings))
	}
	if endings[0].Text == nil || endings[0].Text.Text != "1." {
		t.Errorf("first ending label = %+v, want 1.", endings[0].Text)
	}
	if endings[0].Rect.Top != endings[1].Rect.Top {
		t.Error("endings in one row should share a y")
	}
	if endings[0].Rect.Bottom > l.Rows[0].Lines[0].Top {
		t.Error("ending bracket should sit above the staff")
	}
}

func TestEngineRebuildsOnRequest(t *testing.T) {
	d := score.New(score.PresetTreble)
	m := d.AddMeasure()
	addNotes(t, m, 0, "2", "C4")

	e := NewEngine()
	ctx := context.Background()
	first, err := e.Layout(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	if d.NeedsLayout() {
		t.Error("NeedsLayout() = true after Engine.Layout")
	}
	again, _ := e.Layout(ctx, d)
	if again != first {
		t.Error("Engine.Layout() rebuilt a clean document")
	}
	addNotes(t, m, 0, "2", "E4")
	third, _ := e.Layout(ctx, d)
	if third == first {
		t.Error("Engine.Layout() returned a stale layout after an edit")
	}
	if n := len(third.Rows[0].Measures[0].Columns); n != 2 {
		t.Errorf("columns after edit = %d, want 2", n)
	}
}

func TestPick(t *testing.T) {
	d := score.New(score.PresetTreble)
	addNotes(t, d.AddMeasure(), 0, "4", "B4", "D5")
	l := build(t, d)

	col := l.Rows[0].Measures[0].Columns[1]
	head := col.Symbols[0].Heads[0]
	hits := l.Pick(head.X+1, head.Y)
	var kinds []string
	for _, h := range hits {
		kinds = append(kinds, h.Kind)
	}
	want := []string{"note", "column", "measure", "row"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("Pick() kinds = %v, want %v", kinds, want)
	}
	if hits[0].ID != col.Symbols[0].ID {
		t.Errorf("Pick()[0].ID = %d, want %d", hits[0].ID, col.Symbols[0].ID)
	}
	if got := l.Pick(-100, -100); len(got) != 0 {
		t.Errorf("Pick(outside) = %v, want none", got)
	}
}

func TestLabelsShareRegion(t *testing.T) {
	d := score.New(score.PresetGuitarTrebleAndTab)
	addNotes(t, d.AddMeasure(), 0, "4", "E3", "G3", "B3", "E4")
	l := build(t, d)

	if l.Regions.LabelWidth <= 0 {
		t.Fatalf("LabelWidth = %v, want > 0", l.Regions.LabelWidth)
	}
	row := l.Rows[0]
	if len(row.Labels) != 1 || row.Labels[0].Text != "Guitar" {
		t.Fatalf("Labels = %+v, want one Guitar label", row.Labels)
	}
	if row.Labels[0].Rect.Right > l.Regions.StaffLeft {
		t.Error("label should end left of the staff")
	}
	tab := row.Measures[0].Columns[0].Symbols
	var frets []int
	for _, s := range tab {
		if s.Line == 1 {
			for _, h := range s.Heads {
				frets = append(frets, h.Fret)
			}
		}
	}
	// E3 goes to the highest string that can reach it: fret 2 on D.
	if len(frets) != 1 || frets[0] != 2 {
		t.Errorf("tab frets for E3 = %v, want [2]", frets)
	}
}
