package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/render/styles"
	"github.com/matzehuels/staffline/pkg/score"
)

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	d := score.New(score.PresetTreble)
	d.SetHeader(score.Header{Title: "Test & Title"})
	m := d.AddMeasure()
	for _, n := range []string{"C4", "E4", "G4"} {
		if _, err := m.AddNote(0, n, "4"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.AddRest(0, "4"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddAnnotation(0, score.AnnotationDynamics, "p"); err != nil {
		t.Fatal(err)
	}
	m.EndSong()
	l, err := layout.Build(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestRenderSVG(t *testing.T) {
	l := testLayout(t)
	out := string(RenderSVG(l))

	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Fatalf("RenderSVG() is not a complete svg document")
	}
	if got := strings.Count(out, `class="note"`); got != 3 {
		t.Errorf("note groups = %d, want 3", got)
	}
	if got := strings.Count(out, `class="rest"`); got != 1 {
		t.Errorf("rests = %d, want 1", got)
	}
	for _, want := range []string{"Test &amp; Title", `class="object dynamics"`, `class="clef"`, `class="time"`} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if strings.Contains(out, "<script") {
		t.Error("RenderSVG() without WithInteraction should not add a script")
	}
	if !strings.Contains(string(RenderSVG(l, WithInteraction())), "<script") {
		t.Error("WithInteraction() should add the pick script")
	}
}

type brokenStyle struct{ styles.Simple }

func (brokenStyle) RenderSymbol(buf *bytes.Buffer, _ layout.Line, s layout.Symbol) {
	buf.WriteString("<partial")
	if !s.Rest {
		panic("bad glyph")
	}
}

func TestRenderSVGRecoversDrawFailures(t *testing.T) {
	l := testLayout(t)
	var logs bytes.Buffer
	logger := log.New(&logs)

	out := string(RenderSVG(l, WithStyle(brokenStyle{}), WithLogger(logger)))

	if got := strings.Count(out, "<partial"); got != 1 {
		t.Errorf("partial elements = %d, want only the rest's", got)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("drawing should finish after a failed element")
	}
	if got := strings.Count(logs.String(), "draw failed"); got != 3 {
		t.Errorf("logged failures = %d, want 3\n%s", got, logs.String())
	}
}

func TestRenderJSON(t *testing.T) {
	l := testLayout(t)
	data, err := RenderJSON(l, WithJSONStyle("simple"), WithJSONDocument("doc-1", "abc"))
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if out["style"] != "simple" || out["fingerprint"] != "abc" || out["document"] != "doc-1" {
		t.Errorf("metadata = %v / %v / %v", out["style"], out["fingerprint"], out["document"])
	}
	if out["width"] != l.Width {
		t.Errorf("width = %v, want %v", out["width"], l.Width)
	}
	rows, ok := out["rows"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("rows = %v, want one row", out["rows"])
	}
	measures := rows[0].(map[string]any)["measures"].([]any)
	// A lone measure never draws the final bar.
	if bar := measures[0].(map[string]any)["right_bar"]; bar != "single" {
		t.Errorf("right_bar = %v, want single", bar)
	}
}
