package layout

import (
	"math"

	"github.com/matzehuels/staffline/pkg/score"
)

// Vertical gaps in staff spaces.
const (
	lineGap      = 2.5
	grandGap     = 1.0
	rowGap       = 3.0
	headerGap    = 2.0
	titleSize    = 2.6
	subtitleSize = 1.4
)

// finish places annotations, stacks lines and rows and emits the result.
func (b *builder) finish() *Layout {
	for _, rw := range b.rows {
		b.placeNotation(rw)
	}
	b.collectObjects()
	for _, rw := range b.rows {
		for _, lw := range rw.lines {
			b.solveLine(lw)
			lw.top, lw.bottom = 0, lw.height
			for _, s := range lw.static {
				lw.top = math.Min(lw.top, s.Top)
				lw.bottom = math.Max(lw.bottom, s.Bottom)
			}
		}
	}

	u := b.u
	margin := b.cfg.margin * u
	out := &Layout{Unit: u, Regions: b.regions}
	out.Width = math.Max(b.cfg.width, b.regions.StaffLeft+b.regions.StaffWidth+margin)
	y := margin
	if b.cfg.header {
		y = b.header(out, y)
	}
	for _, rw := range b.rows {
		row := b.emitRow(rw, y)
		out.Rows = append(out.Rows, row)
		y = row.Rect.Bottom + rowGap*u
	}
	if len(out.Rows) > 0 {
		y -= rowGap * u
	}
	out.Height = y + margin
	return out
}

func (b *builder) header(out *Layout, y float64) float64 {
	h := b.doc.Header()
	if h.Empty() {
		return y
	}
	u := b.u
	margin := b.cfg.margin * u
	add := func(s string, size float64, x float64, anchor, style string) {
		m := b.cfg.measurer.Measure(s, size)
		left := x
		switch anchor {
		case "middle":
			left = x - m.Width/2
		case "end":
			left = x - m.Width
		}
		out.Header = append(out.Header, Text{
			Text: s, X: x, Y: y + m.Ascent, Size: size, Anchor: anchor, Style: style,
			Rect: Rect{left, y, left + m.Width, y + m.Height()},
		})
		y += m.Height() + 0.4*u
	}
	if h.Title != "" {
		add(h.Title, titleSize*u, out.Width/2, "middle", "bold")
	}
	if h.Composer != "" {
		add(h.Composer, subtitleSize*u, out.Width-margin, "end", "")
	}
	if h.Arranger != "" {
		add("arr. "+h.Arranger, subtitleSize*u, out.Width-margin, "end", "italic")
	}
	return y + headerGap*u
}

// stackLines assigns every line its offset from the row top and returns the
// row height.
func (b *builder) stackLines(rw *rowWork) float64 {
	bottom := 0.0
	for i, lw := range rw.lines {
		if i == 0 {
			lw.offset = -lw.top
		} else {
			gap := lineGap * b.u
			if g := lw.cfg.GrandID; g != "" && g == rw.lines[i-1].cfg.GrandID {
				gap = grandGap * b.u
			}
			lw.offset = bottom + gap - lw.top
		}
		bottom = lw.offset + lw.bottom
	}
	return bottom
}

func (b *builder) emitRow(rw *rowWork, top float64) Row {
	u := b.u
	height := b.stackLines(rw)
	left, right := b.regions.StaffLeft, b.regions.StaffLeft+b.regions.StaffWidth
	row := Row{
		ID:    rw.row.ObjID(),
		Index: rw.row.Index(),
		Rect:  Rect{b.cfg.margin * u, top, right, top + height},
	}
	for _, lw := range rw.lines {
		dy := top + lw.offset
		l := Line{
			Index:   lw.index,
			Tab:     lw.cfg.Type == score.LineTab,
			Top:     dy,
			Spacing: lw.spacing,
			Count:   lw.count,
			Left:    left,
			Right:   right,
			Rect:    Rect{left, dy + lw.top, right, dy + lw.bottom},
		}
		if !l.Tab {
			l.Clef, l.OctaveDown = lw.cfg.Clef.String(), lw.cfg.IsOctaveDown
		}
		row.Lines = append(row.Lines, l)
		for _, s := range lw.symbols {
			s.translate(dy)
		}
		for _, a := range lw.arcs {
			row.Arcs = append(row.Arcs, a.translate(dy))
		}
		for _, bm := range lw.beams {
			bm.Segment = bm.Segment.translate(0, dy)
			row.Beams = append(row.Beams, bm)
		}
		for _, o := range lw.objects {
			row.Objects = append(row.Objects, o.translate(dy))
		}
	}
	if len(row.Lines) == 0 {
		return row
	}
	first, last := row.Lines[0], row.Lines[len(row.Lines)-1]
	if len(row.Lines) > 1 {
		row.Brackets = append(row.Brackets, Segment{left, first.Top, left, last.Bottom()})
	}
	for _, g := range rw.row.Groups() {
		gt, gb := row.Lines[g.First].Top, row.Lines[g.Last].Bottom()
		if g.Last > g.First {
			x := left - 0.6*u
			row.Brackets = append(row.Brackets, Segment{x, gt, x, gb})
		}
		size := labelSize * u
		m := b.cfg.measurer.Measure(g.Instrument, size)
		x := left - labelGap*u/2 - 0.4*u
		base := (gt+gb)/2 + (m.Ascent-m.Descent)/2
		row.Labels = append(row.Labels, Text{
			Text: g.Instrument, X: x, Y: base, Size: size, Anchor: "end",
			Rect: Rect{x - m.Width, base - m.Ascent, x, base + m.Descent},
		})
	}
	for _, mw := range rw.measures {
		row.Measures = append(row.Measures, b.emitMeasure(mw, first.Top, last.Bottom()))
	}
	return row
}

func (b *builder) emitMeasure(mw *measureWork, top, bottom float64) Measure {
	m := mw.m
	out := Measure{
		ID:              m.ObjID(),
		Index:           m.Index(),
		Rect:            Rect{mw.x, top, mw.x + mw.width, bottom},
		SolidWidth:      mw.solid,
		MinColumnsWidth: mw.minCols,
		ColumnsWidth:    mw.colsWidth,
		ColumnsLeft:     mw.colsLeft,
		LeftBar:         mw.left,
		RightBar:        mw.right,
	}
	x := mw.x + mw.leftBarW
	if m.ShowClef() {
		out.ShowClef, out.ClefX = true, x
		x += mw.clefW
	}
	if mw.keyW > 0 {
		out.ShowKey, out.KeyX, out.KeyCount, out.KeyCancel = true, x, mw.keyCount, mw.keyCancel
		x += mw.keyW
	}
	if m.ShowTimeSignature() {
		out.TimeX, out.Time = x, m.TimeSignature().String()
	}
	for _, cw := range mw.cols {
		col := Column{
			ID:    cw.c.ObjID(),
			Index: cw.c.Index(),
			Tick:  cw.c.Tick(),
			Rect:  Rect{cw.x, top, cw.x + cw.w, bottom},
			HeadX: cw.headX(),
		}
		for _, s := range cw.symbols {
			col.Symbols = append(col.Symbols, *s)
		}
		out.Columns = append(out.Columns, col)
	}
	return out
}

func (s *Symbol) translate(dy float64) {
	s.Rect = s.Rect.Translate(0, dy)
	for i := range s.Heads {
		h := &s.Heads[i]
		h.Y += dy
		for j := range h.Ledgers {
			h.Ledgers[j] = h.Ledgers[j].translate(0, dy)
		}
	}
	if s.Stem != nil {
		st := s.Stem.translate(0, dy)
		s.Stem = &st
	}
	for i := range s.Dots {
		s.Dots[i].Y += dy
	}
	if s.Staccato != nil {
		p := Point{s.Staccato.X, s.Staccato.Y + dy}
		s.Staccato = &p
	}
	if s.Arpeggio != nil {
		a := s.Arpeggio.translate(0, dy)
		s.Arpeggio = &a
	}
}

func (a Arc) translate(dy float64) Arc {
	a.From.Y += dy
	a.To.Y += dy
	a.Rect = a.Rect.Translate(0, dy)
	return a
}

func (o *Object) translate(dy float64) Object {
	out := *o
	out.Rect = o.Rect.Translate(0, dy)
	if o.Text != nil {
		t := *o.Text
		t.Y += dy
		t.Rect = t.Rect.Translate(0, dy)
		out.Text = &t
	}
	if o.Extension != nil {
		e := o.Extension.translate(0, dy)
		out.Extension = &e
	}
	if o.Bracket != nil {
		br := *o.Bracket
		br.Y += dy
		out.Bracket = &br
	}
	return out
}
