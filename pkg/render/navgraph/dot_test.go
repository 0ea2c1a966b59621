package navgraph

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/staffline/pkg/player"
	"github.com/matzehuels/staffline/pkg/score"
)

func repeatDoc(t *testing.T) *score.Document {
	t.Helper()
	d := score.New(score.PresetTreble)
	for i := 0; i < 4; i++ {
		m := d.AddMeasure()
		if _, err := m.AddNote(0, "C4", "1"); err != nil {
			t.Fatal(err)
		}
	}
	ms := d.Measures()
	if err := ms[0].AddNavigation(score.NavStartRepeat); err != nil {
		t.Fatal(err)
	}
	if err := ms[1].AddEnding(1); err != nil {
		t.Fatal(err)
	}
	if err := ms[1].AddNavigation(score.NavEndRepeat); err != nil {
		t.Fatal(err)
	}
	if err := ms[2].AddEnding(2); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestToDOT(t *testing.T) {
	d := repeatDoc(t)
	plan, err := player.Resolve(d)
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(d, plan.Visits, Options{})

	for _, want := range []string{
		`"m0" [label="1 |:"]`,
		`"m1" [label="2 [1.] :|"]`,
		`"start" -> "m0" [label="0"]`,
		`"m0" -> "m1" [label="1"]`,
		`"m1" -> "m0" [label="2", style=dashed`,
		`"m0" -> "m2" [label="3", style=dashed`,
		`"m3" -> "end"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"m1" -> "m2"`) {
		t.Error("ToDOT() has an edge from the first ending into the second")
	}
}

func TestToDOTUnvisited(t *testing.T) {
	d := score.New(score.PresetTreble)
	d.AddMeasure().AddNote(0, "C4", "1")
	m := d.AddMeasure()
	m.AddNote(0, "C4", "1")
	m.AddEnding(2)

	dot := ToDOT(d, player.Sequence(d), Options{})
	if !strings.Contains(dot, `"m1" [label="2 [2.]", style="rounded,filled,dashed"`) {
		t.Errorf("unplayed ending not greyed out:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	d := repeatDoc(t)
	plan, err := player.Resolve(d)
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(d, plan.Visits, Options{Detailed: true})
	for _, want := range []string{"time: 4/4", "passes: 1,2"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed ToDOT() missing %q", want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if string(got) != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if plain := []byte("<svg></svg>"); !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("normalizeViewBox() changed an svg without viewBox")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	d := repeatDoc(t)
	svg, err := RenderSVG(context.Background(), ToDOT(d, player.Sequence(d), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("RenderSVG() output not normalized: %.200s", svg)
	}
}
