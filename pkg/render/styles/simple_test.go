package styles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/score/barline"
)

func TestSimpleRenderDefs(t *testing.T) {
	var buf bytes.Buffer
	Simple{}.RenderDefs(&buf)
	if buf.Len() != 0 {
		t.Errorf("RenderDefs() wrote %d bytes, want 0", buf.Len())
	}

	buf.Reset()
	Dark().RenderDefs(&buf)
	if !strings.Contains(buf.String(), `fill="#1e1e1e"`) {
		t.Errorf("Dark().RenderDefs() = %s, want a paper rect", buf.String())
	}
}

func TestSimpleRenderLine(t *testing.T) {
	tests := []struct {
		name  string
		line  layout.Line
		lines int
		tab   bool
	}{
		{"staff", layout.Line{Top: 10, Spacing: 8, Count: 5, Left: 0, Right: 100}, 5, false},
		{"tab", layout.Line{Tab: true, Top: 10, Spacing: 12, Count: 6, Left: 0, Right: 100}, 6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Simple{}.RenderLine(&buf, tt.line)
			out := buf.String()
			if got := strings.Count(out, "<line"); got != tt.lines {
				t.Errorf("RenderLine() drew %d lines, want %d", got, tt.lines)
			}
			if got := strings.Contains(out, ">T</text>"); got != tt.tab {
				t.Errorf("RenderLine() TAB marker = %v, want %v", got, tt.tab)
			}
		})
	}
}

func TestSimpleRenderBarline(t *testing.T) {
	tests := []struct {
		typ     barline.Type
		lines   int
		rects   int
		circles int
	}{
		{barline.None, 0, 0, 0},
		{barline.Single, 1, 0, 0},
		{barline.Double, 2, 0, 0},
		{barline.EndSong, 1, 1, 0},
		{barline.StartRepeat, 1, 1, 2},
		{barline.EndRepeat, 1, 1, 2},
		{barline.EndStartRepeat, 2, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			var buf bytes.Buffer
			Simple{}.RenderBarline(&buf, tt.typ, 100, 0, 32, 8)
			out := buf.String()
			if got := strings.Count(out, "<line"); got != tt.lines {
				t.Errorf("lines = %d, want %d", got, tt.lines)
			}
			if got := strings.Count(out, "<rect"); got != tt.rects {
				t.Errorf("rects = %d, want %d", got, tt.rects)
			}
			if got := strings.Count(out, "<circle"); got != tt.circles {
				t.Errorf("circles = %d, want %d", got, tt.circles)
			}
		})
	}
}

func TestSimpleRenderSymbol(t *testing.T) {
	staff := layout.Line{Top: 0, Spacing: 8, Count: 5, Left: 0, Right: 200}
	stem := layout.Segment{X1: 19.6, Y1: 16, X2: 19.6, Y2: -12}
	note := layout.Symbol{
		ID:    7,
		Heads: []layout.Head{{Note: "F#4", X: 10, Y: 28, Filled: true, Accidental: "♯", AccidentalX: 2, Fret: -1}},
		Stem:  &stem, StemUp: true, Flags: 1,
		Dots: []layout.Point{{X: 24, Y: 24}},
	}

	var buf bytes.Buffer
	Simple{}.RenderSymbol(&buf, staff, note)
	out := buf.String()
	for _, want := range []string{`class="note" data-id="7"`, `<ellipse`, `>♯</text>`, `<path`, `<circle`} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSymbol() missing %q\nGot: %s", want, out)
		}
	}

	buf.Reset()
	note.Hidden = true
	Simple{}.RenderSymbol(&buf, staff, note)
	if buf.Len() != 0 {
		t.Errorf("RenderSymbol(hidden) wrote %q", buf.String())
	}
}

func TestSimpleRenderObject(t *testing.T) {
	ext := layout.Segment{X1: 30, Y1: 50, X2: 120, Y2: 50}
	o := layout.Object{
		ID:        3,
		Group:     layout.GroupTempo,
		Text:      &layout.Text{Text: "rit. <slow>", X: 10, Y: 50, Size: 12, Anchor: "start", Style: "italic"},
		Extension: &ext,
		Dashed:    true,
	}
	var buf bytes.Buffer
	Simple{}.RenderObject(&buf, o, 8)
	out := buf.String()
	for _, want := range []string{
		`class="object tempo" data-id="3"`,
		`font-style="italic"`,
		`rit. &lt;slow&gt;`,
		`stroke-dasharray=`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderObject() missing %q\nGot: %s", want, out)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q) error = %v", name, err)
		}
	}
	if _, err := ByName("handdrawn"); err == nil {
		t.Error("ByName(handdrawn) should fail")
	}
}
