package styles

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/score/barline"
)

// Simple draws plain engraved notation. The zero value uses near-black ink
// on a transparent page.
type Simple struct {
	Ink   string
	Paper string
}

// Dark returns the light-on-dark palette.
func Dark() Simple { return Simple{Ink: "#e8e8e8", Paper: "#1e1e1e"} }

func (s Simple) ink() string {
	if s.Ink == "" {
		return "#111"
	}
	return s.Ink
}

func (s Simple) paper() string {
	if s.Paper == "" {
		return "white"
	}
	return s.Paper
}

// Staff positions, relative to the middle line, of the key signature
// accidentals on a G clef. F clef positions sit two steps lower.
var (
	sharpSteps = [7]int{4, 1, 5, 2, -1, 3, 0}
	flatSteps  = [7]int{0, 3, -1, 2, -2, 1, -3}
)

func (s Simple) RenderDefs(buf *bytes.Buffer) {
	if s.Paper != "" {
		fmt.Fprintf(buf, `  <rect class="paper" x="0" y="0" width="100%%" height="100%%" fill="%s"/>`+"\n", s.Paper)
	}
}

func (s Simple) RenderLine(buf *bytes.Buffer, l layout.Line) {
	for i := 0; i < l.Count; i++ {
		y := l.LineY(i)
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			l.Left, y, l.Right, y, s.ink())
	}
	if l.Tab && l.Count > 1 {
		size := (l.Bottom() - l.Top) / 3
		for i, ch := range []string{"T", "A", "B"} {
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" font-weight="bold" fill="%s">%s</text>`+"\n",
				l.Left+size*0.4, l.Top+size*float64(i+1)-size*0.1, size, textFont, s.ink(), ch)
		}
	}
}

func (s Simple) RenderBarline(buf *bytes.Buffer, t barline.Type, x, top, bottom, unit float64) {
	thin := func(x float64) {
		fmt.Fprintf(buf, `  <line class="bar" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			x, top, x, bottom, s.ink())
	}
	thick := func(x float64) {
		fmt.Fprintf(buf, `  <rect class="bar" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			x, top, unit*0.5, bottom-top, s.ink())
	}
	dots := func(x float64) {
		mid := (top + bottom) / 2
		for _, dy := range []float64{-unit / 2, unit / 2} {
			fmt.Fprintf(buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", x, mid+dy, unit*0.2, s.ink())
		}
	}
	w := barline.Width(t) * unit
	switch t {
	case barline.Single:
		thin(x - w/2)
	case barline.Double:
		thin(x - w)
		thin(x - unit*0.1)
	case barline.EndSong:
		thin(x - w)
		thick(x - unit*0.5)
	case barline.StartRepeat:
		thick(x)
		thin(x + unit*0.8)
		dots(x + unit*1.3)
	case barline.EndRepeat:
		dots(x - unit*1.3)
		thin(x - unit*0.8)
		thick(x - unit*0.5)
	case barline.EndStartRepeat:
		dots(x - unit*1.1)
		thin(x - unit*0.6)
		thick(x - unit*0.25)
		thin(x + unit*0.6)
		dots(x + unit*1.1)
	}
}

func (s Simple) RenderClef(buf *bytes.Buffer, l layout.Line, x float64) {
	if l.Tab {
		return
	}
	u := l.Spacing
	glyph, y := "𝄞", l.LineY(3)
	if l.Clef == "F" {
		glyph, y = "𝄢", l.LineY(1)
	}
	fmt.Fprintf(buf, `  <text class="clef" x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" fill="%s">%s</text>`+"\n",
		x+u*0.3, y, u*4, musicFont, s.ink(), glyph)
	if l.OctaveDown {
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" font-style="italic" fill="%s">8</text>`+"\n",
			x+u*1.1, l.Bottom()+u*2.2, u*1.2, textFont, s.ink())
	}
}

func (s Simple) RenderKey(buf *bytes.Buffer, l layout.Line, x float64, count, cancel int) {
	if l.Tab || (count == 0 && cancel == 0) {
		return
	}
	u := l.Spacing
	steps, glyph, n := sharpSteps, "♯", count
	if count < 0 {
		steps, glyph, n = flatSteps, "♭", -count
	}
	if count == 0 {
		steps, glyph, n = sharpSteps, "♮", cancel
		if cancel < 0 {
			steps, n = flatSteps, -cancel
		}
	}
	shift := 0
	if l.Clef == "F" {
		shift = -2
	}
	for i := 0; i < n && i < 7; i++ {
		y := l.Top + float64(4-steps[i]-shift)*u/2
		fmt.Fprintf(buf, `  <text class="key" x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" fill="%s" dominant-baseline="central">%s</text>`+"\n",
			x+float64(i)*u, y, u*2, musicFont, s.ink(), glyph)
	}
}

func (s Simple) RenderTime(buf *bytes.Buffer, l layout.Line, x float64, sig string) {
	if l.Tab {
		return
	}
	num, den, ok := strings.Cut(sig, "/")
	if !ok {
		return
	}
	u := l.Spacing
	mid := (l.Top + l.Bottom()) / 2
	for _, part := range []struct {
		text string
		y    float64
	}{{num, mid - u*0.1}, {den, mid + u*1.9}} {
		fmt.Fprintf(buf, `  <text class="time" x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" font-weight="bold" text-anchor="middle" fill="%s">%s</text>`+"\n",
			x+u, part.y, u*2.2, textFont, s.ink(), EscapeXML(part.text))
	}
}

func (s Simple) RenderSymbol(buf *bytes.Buffer, l layout.Line, sym layout.Symbol) {
	if sym.Hidden {
		return
	}
	u := l.Spacing
	if l.Tab {
		u /= 1.5
	}
	class := "note"
	if sym.Rest {
		class = "rest"
	}
	WrapGroup(buf, class, int(sym.ID), func() {
		switch {
		case sym.Rest:
			s.renderRest(buf, sym, u)
		case l.Tab:
			s.renderFrets(buf, sym, u)
		default:
			s.renderNotes(buf, sym, u)
		}
	})
}

func (s Simple) renderNotes(buf *bytes.Buffer, sym layout.Symbol, u float64) {
	hw := u * 1.2
	for _, h := range sym.Heads {
		for _, lg := range h.Ledgers {
			fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
				lg.X1, lg.Y1, lg.X2, lg.Y2, s.ink())
		}
		fill := s.ink()
		if !h.Filled {
			fill = "none"
		}
		cx := h.X + hw/2
		fmt.Fprintf(buf, `    <ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f" transform="rotate(-20 %.2f %.2f)" fill="%s" stroke="%s" stroke-width="%.2f"/>`+"\n",
			cx, h.Y, hw/2, u*0.4, cx, h.Y, fill, s.ink(), u*0.15)
		if h.Accidental != "" {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" fill="%s" dominant-baseline="central">%s</text>`+"\n",
				h.AccidentalX, h.Y, u*2, musicFont, s.ink(), h.Accidental)
		}
	}
	if st := sym.Stem; st != nil {
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
			st.X1, st.Y1, st.X2, st.Y2, s.ink(), u*0.12)
		dir := 1.0
		if !sym.StemUp {
			dir = -1
		}
		for i := 0; i < sym.Flags; i++ {
			y := st.Y2 + dir*float64(i)*u*0.8
			fmt.Fprintf(buf, `    <path d="M %.2f %.2f q %.2f %.2f %.2f %.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
				st.X2, y, u*0.9, dir*u*0.8, u*0.5, dir*u*2, s.ink(), u*0.2)
		}
	}
	for _, d := range sym.Dots {
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", d.X, d.Y, u*0.18, s.ink())
	}
	if p := sym.Staccato; p != nil {
		if sym.Staccatissimo {
			fmt.Fprintf(buf, `    <path d="M %.2f %.2f l %.2f %.2f l %.2f 0 z" fill="%s"/>`+"\n",
				p.X, p.Y+u*0.3, -u*0.2, -u*0.7, u*0.4, s.ink())
		} else {
			fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", p.X, p.Y, u*0.15, s.ink())
		}
	}
	if a := sym.Arpeggio; a != nil {
		s.renderWave(buf, *a, u)
	}
}

// renderWave draws an arpeggio line from (X1, Y1) toward (X2, Y2) with an
// arrow head at the end.
func (s Simple) renderWave(buf *bytes.Buffer, a layout.Segment, u float64) {
	length := math.Abs(a.Y2 - a.Y1)
	dir := 1.0
	if a.Y2 < a.Y1 {
		dir = -1
	}
	var d strings.Builder
	fmt.Fprintf(&d, "M %.2f %.2f", a.X1, a.Y1)
	for y, i := 0.0, 0; y+u/2 <= length; y, i = y+u/2, i+1 {
		off := u * 0.25
		if i%2 == 1 {
			off = -off
		}
		fmt.Fprintf(&d, " L %.2f %.2f", a.X1+off, a.Y1+dir*(y+u/2))
	}
	fmt.Fprintf(buf, `    <path d="%s" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n", d.String(), s.ink(), u*0.12)
	fmt.Fprintf(buf, `    <path d="M %.2f %.2f l %.2f %.2f l %.2f 0 z" fill="%s"/>`+"\n",
		a.X2, a.Y2, -u*0.3, -dir*u*0.5, u*0.6, s.ink())
}

func (s Simple) renderFrets(buf *bytes.Buffer, sym layout.Symbol, u float64) {
	size := u * 1.2
	for _, h := range sym.Heads {
		if h.Fret < 0 {
			continue
		}
		text := fmt.Sprint(h.Fret)
		w := float64(len(text)) * size * 0.6
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			h.X-size*0.1, h.Y-size*0.5, w+size*0.2, size, s.paper())
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" fill="%s" dominant-baseline="central">%s</text>`+"\n",
			h.X, h.Y, size, textFont, s.ink(), text)
	}
}

func (s Simple) renderRest(buf *bytes.Buffer, sym layout.Symbol, u float64) {
	r := sym.Rect
	switch sym.Length {
	case 1, 2:
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			r.Left+u*0.1, r.Top, r.Width()-u*0.2, r.Height(), s.ink())
	case 4:
		cx := r.CenterX()
		fmt.Fprintf(buf, `    <path d="M %.2f %.2f l %.2f %.2f l %.2f %.2f l %.2f %.2f q %.2f %.2f %.2f %.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
			cx-u*0.3, r.Top, u*0.6, u*0.9, -u*0.6, u*0.8, u*0.6, u*0.8, -u*0.9, -u*0.2, -u*0.2, u*0.5, s.ink(), u*0.25)
	default:
		// One hook per flag down a slanted stroke.
		flags := 0
		for l := sym.Length; l > 4; l /= 2 {
			flags++
		}
		x2 := r.Right - u*0.2
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
			x2, r.Top, x2-u*0.6, r.Bottom, s.ink(), u*0.12)
		for i := 0; i < flags; i++ {
			y := r.Top + float64(i)*u*0.8 + u*0.3
			fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", x2-u*0.6-float64(i)*u*0.15, y, u*0.22, s.ink())
		}
	}
	for _, d := range sym.Dots {
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", d.X, d.Y, u*0.18, s.ink())
	}
}

func (s Simple) RenderBeam(buf *bytes.Buffer, b layout.Beam, unit float64) {
	seg := b.Segment
	thickness := unit * 0.5
	for i := 0; i < b.Count; i++ {
		off := float64(i) * unit * 0.75
		y1, y2 := seg.Y1+off, seg.Y2+off
		if !b.Up {
			y1, y2 = seg.Y1-off-thickness, seg.Y2-off-thickness
		}
		fmt.Fprintf(buf, `  <path class="beam" d="M %.2f %.2f L %.2f %.2f L %.2f %.2f L %.2f %.2f Z" fill="%s"/>`+"\n",
			seg.X1, y1, seg.X2, y2, seg.X2, y2+thickness, seg.X1, y1+thickness, s.ink())
	}
}

func (s Simple) RenderArc(buf *bytes.Buffer, a layout.Arc, unit float64) {
	dir := 1.0
	if a.Up {
		dir = -1
	}
	mx := (a.From.X + a.To.X) / 2
	my := (a.From.Y+a.To.Y)/2 + dir*a.Height*2
	inner := my - dir*unit*0.25
	fmt.Fprintf(buf, `  <path class="%s" d="M %.2f %.2f Q %.2f %.2f %.2f %.2f Q %.2f %.2f %.2f %.2f Z" fill="%s"/>`+"\n",
		a.Kind, a.From.X, a.From.Y, mx, my, a.To.X, a.To.Y, mx, inner, a.From.X, a.From.Y, s.ink())
}

func (s Simple) RenderObject(buf *bytes.Buffer, o layout.Object, unit float64) {
	WrapGroup(buf, "object "+o.Group.String(), int(o.ID), func() {
		if o.Text != nil {
			s.RenderText(buf, *o.Text)
		}
		switch o.Glyph {
		case "fermata":
			r := o.Rect
			fmt.Fprintf(buf, `    <path d="M %.2f %.2f A %.2f %.2f 0 0 1 %.2f %.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
				r.Left, r.Bottom, r.Width()/2, r.Height(), r.Right, r.Bottom, s.ink(), unit*0.2)
			fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", r.CenterX(), r.Bottom-unit*0.2, unit*0.2, s.ink())
		case "segno", "coda":
			glyph := "𝄋"
			if o.Glyph == "coda" {
				glyph = "𝄌"
			}
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" text-anchor="middle" fill="%s">%s</text>`+"\n",
				o.Rect.CenterX(), o.Rect.Bottom, o.Rect.Height()*1.6, musicFont, s.ink(), glyph)
		}
		if e := o.Extension; e != nil {
			dash := ""
			if o.Dashed {
				dash = fmt.Sprintf(` stroke-dasharray="%.1f,%.1f"`, unit*0.8, unit*0.6)
			}
			fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"%s/>`+"\n",
				e.X1, e.Y1, e.X2, e.Y2, s.ink(), dash)
		}
		if b := o.Bracket; b != nil {
			var d strings.Builder
			if b.OpenLeft {
				fmt.Fprintf(&d, "M %.2f %.2f", b.Left, b.Y)
			} else {
				fmt.Fprintf(&d, "M %.2f %.2f L %.2f %.2f", b.Left, b.Y+b.Hook, b.Left, b.Y)
			}
			fmt.Fprintf(&d, " L %.2f %.2f", b.Right, b.Y)
			if !b.OpenRight {
				fmt.Fprintf(&d, " L %.2f %.2f", b.Right, b.Y+b.Hook)
			}
			fmt.Fprintf(buf, `    <path d="%s" fill="none" stroke="%s" stroke-width="1"/>`+"\n", d.String(), s.ink())
		}
	})
}

func (s Simple) RenderText(buf *bytes.Buffer, t layout.Text) {
	anchor := t.Anchor
	if anchor == "" {
		anchor = "start"
	}
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" font-family="%s" text-anchor="%s"%s fill="%s">%s</text>`+"\n",
		t.X, t.Y, t.Size, textFont, anchor, fontStyle(t.Style), s.ink(), EscapeXML(t.Text))
}

func (s Simple) RenderBracket(buf *bytes.Buffer, seg layout.Segment, unit float64) {
	fmt.Fprintf(buf, `  <line class="bracket" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
		seg.X1, seg.Y1, seg.X2, seg.Y2, s.ink(), unit*0.15)
}
