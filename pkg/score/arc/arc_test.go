package arc

import (
	stderrors "errors"
	"testing"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/score"
)

func chord(t *testing.T, m *score.Measure, notes []string, rhythm string, opts ...score.Option) *score.NoteGroup {
	t.Helper()
	g, err := m.AddChord(0, notes, rhythm, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func resolve(t *testing.T, d *score.Document) []*Arc {
	t.Helper()
	score.Resolve(d)
	arcs, err := Resolve(d)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return arcs
}

func TestTieMatchesPitch(t *testing.T) {
	d := score.New(score.PresetTreble)
	m := d.AddMeasure()
	left := chord(t, m, []string{"C4", "E4", "G4"}, "2", score.Tie(2))
	right := chord(t, m, []string{"C4", "G4"}, "2")

	arcs := resolve(t, d)
	if len(arcs) != 2 {
		t.Fatalf("len(arcs) = %d, want 2", len(arcs))
	}
	for i, want := range []string{"C4", "G4"} {
		a := arcs[i]
		if a.Left.Note.String() != want || a.Right.Note.String() != want {
			t.Errorf("arc %d = %s→%s, want %s→%s", i, a.Left.Note, a.Right.Note, want, want)
		}
		if a.Kind != Tie || a.Half != Whole || a.Measure != m {
			t.Errorf("arc %d = %+v", i, a)
		}
	}
	if d.Graph().LinkHead(right.ObjID()) != left.ObjID() {
		t.Error("tied group should be linked to the chain head")
	}
}

func TestTieEnharmonicMatch(t *testing.T) {
	d := score.New(score.PresetTreble)
	m := d.AddMeasure()
	chord(t, m, []string{"C#4"}, "2", score.Tie(2))
	chord(t, m, []string{"Db4"}, "2")
	if arcs := resolve(t, d); len(arcs) != 1 {
		t.Errorf("len(arcs) = %d, want 1", len(arcs))
	}
}

func TestTieSentinels(t *testing.T) {
	tests := []struct {
		span int
		open Open
	}{
		{score.TieStub, OpenStub},
		{score.TieToMeasureEnd, OpenMeasureEnd},
	}
	for _, tt := range tests {
		d := score.New(score.PresetTreble)
		m := d.AddMeasure()
		chord(t, m, []string{"C4", "E4", "G4"}, "1", score.Tie(tt.span))
		arcs := resolve(t, d)
		if len(arcs) != 3 {
			t.Fatalf("span %d: len(arcs) = %d, want 3", tt.span, len(arcs))
		}
		for _, a := range arcs {
			if a.Right.Group != nil || a.Open != tt.open {
				t.Errorf("span %d: arc = %+v", tt.span, a)
			}
		}
	}
}

func TestCrossMeasureMirrors(t *testing.T) {
	d := score.New(score.PresetTreble)
	m0 := d.AddMeasure()
	chord(t, m0, []string{"D4"}, "1", score.Tie(2))
	m1 := d.AddMeasure()
	chord(t, m1, []string{"D4"}, "1")

	arcs := resolve(t, d)
	if len(arcs) != 2 {
		t.Fatalf("len(arcs) = %d, want 2", len(arcs))
	}
	if arcs[0].Measure != m0 || arcs[0].Half != LeftHalf {
		t.Errorf("arcs[0] = measure %d half %v", arcs[0].Measure.Index(), arcs[0].Half)
	}
	if arcs[1].Measure != m1 || arcs[1].Half != RightHalf {
		t.Errorf("arcs[1] = measure %d half %v", arcs[1].Measure.Index(), arcs[1].Half)
	}
}

func TestSlurJumpingMeasures(t *testing.T) {
	d := score.New(score.PresetTreble)
	chord(t, d.AddMeasure(), []string{"C4"}, "1", score.Slur(3))
	chord(t, d.AddMeasure(), []string{"D4"}, "1")
	chord(t, d.AddMeasure(), []string{"E4"}, "1")
	score.Resolve(d)
	_, err := Resolve(d)
	if !errors.Is(err, errors.ErrCodeScore) {
		t.Fatalf("Resolve() error = %v, want SCORE", err)
	}
	if !stderrors.Is(err, ErrJumpingMeasures) {
		t.Errorf("Resolve() error = %v, want ErrJumpingMeasures in chain", err)
	}
}

func TestSlurFirstToLast(t *testing.T) {
	d := score.New(score.PresetTreble)
	m := d.AddMeasure()
	first := chord(t, m, []string{"E4", "G4"}, "4", score.Slur(3))
	mid := chord(t, m, []string{"F4"}, "4")
	last := chord(t, m, []string{"A4", "C5"}, "2")

	arcs := resolve(t, d)
	if len(arcs) != 1 {
		t.Fatalf("len(arcs) = %d, want 1", len(arcs))
	}
	a := arcs[0]
	if a.Left.Group != first || a.Right.Group != last || a.Left.Note.String() != "E4" || a.Right.Note.String() != "A4" {
		t.Errorf("slur = %s(%d)→%s(%d)", a.Left.Note, a.Left.Group.ObjID(), a.Right.Note, a.Right.Group.ObjID())
	}
	g := d.Graph()
	if g.LinkHead(mid.ObjID()) != first.ObjID() || g.LinkHead(last.ObjID()) != first.ObjID() {
		t.Error("slurred groups should link to the first group")
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		name  string
		notes []string
		opts  []score.Option
		want  Direction
	}{
		{"auto opposes up stem", []string{"C4"}, []score.Option{score.Tie(score.TieStub)}, Down},
		{"auto opposes down stem", []string{"A5"}, []score.Option{score.Tie(score.TieStub)}, Up},
		{"stem tip follows stem", []string{"C4"}, []score.Option{score.TieWithAnchor(score.TieStub, score.AnchorStemTip)}, Up},
		{"center below middle", []string{"C4"}, []score.Option{score.TieWithAnchor(score.TieStub, score.AnchorCenter)}, Down},
		{"center on middle", []string{"B4"}, []score.Option{score.TieWithAnchor(score.TieStub, score.AnchorCenter)}, Up},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := score.New(score.PresetTreble)
			chord(t, d.AddMeasure(), tt.notes, "1", tt.opts...)
			arcs := resolve(t, d)
			if len(arcs) != 1 {
				t.Fatalf("len(arcs) = %d", len(arcs))
			}
			if arcs[0].Direction != tt.want {
				t.Errorf("Direction = %v, want %v", arcs[0].Direction, tt.want)
			}
		})
	}
}

func TestChordAutoUsesCenter(t *testing.T) {
	d := score.New(score.PresetTreble)
	chord(t, d.AddMeasure(), []string{"C4", "D5"}, "1", score.Tie(score.TieStub))
	arcs := resolve(t, d)
	if arcs[0].Direction != Down || arcs[1].Direction != Up {
		t.Errorf("chord directions = %v, %v, want down, up", arcs[0].Direction, arcs[1].Direction)
	}
}

func TestTieChains(t *testing.T) {
	d := score.New(score.PresetTreble)
	m0 := d.AddMeasure()
	a := chord(t, m0, []string{"C4"}, "2", score.Tie(3))
	b := chord(t, m0, []string{"C4"}, "2")
	c := chord(t, d.AddMeasure(), []string{"C4"}, "4")

	chains := TieChains(resolve(t, d))
	key := func(g *score.NoteGroup) NoteKey { return KeyOf(Endpoint{Group: g, Note: g.Notes()[0]}) }
	if got := chains[key(a)]; got != 192+192+96 {
		t.Errorf("head ticks = %d, want 480", got)
	}
	for _, g := range []*score.NoteGroup{b, c} {
		if got, ok := chains[key(g)]; !ok || got != 0 {
			t.Errorf("continuation ticks = %d, %v, want 0, true", got, ok)
		}
	}
}
