package layout

import (
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/arc"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Sizes in staff spaces.
const (
	staffLineCount = 5
	tabSpacing     = 1.5
	stemLength     = 3.5
	ledgerOverhang = 0.4
	beamThickness  = 0.5
	beamGap        = 0.75
	arcInset       = 0.4
	arcLift        = 0.8
	stubLength     = 1.8
	fretSize       = 1.2
	maxFret        = 24
)

type lineWork struct {
	index   int
	cfg     score.LineConfig
	count   int
	spacing float64
	height  float64

	symbols []*Symbol
	byGroup map[score.ID]*Symbol
	heads   map[headKey]Point
	arcs    []Arc
	beams   []Beam
	static  []Rect
	pending []*item
	objects []*Object

	top    float64
	bottom float64
	offset float64
}

type headKey struct {
	group     score.ID
	chromatic int
}

func (b *builder) newLine(i int, lc score.LineConfig) *lineWork {
	lw := &lineWork{
		index:   i,
		cfg:     lc,
		count:   staffLineCount,
		spacing: b.u,
		byGroup: make(map[score.ID]*Symbol),
		heads:   make(map[headKey]Point),
	}
	if lc.Type == score.LineTab {
		lw.count = len(lc.Tuning)
		lw.spacing = tabSpacing * b.u
	}
	lw.height = float64(max(lw.count-1, 0)) * lw.spacing
	return lw
}

// staffY returns the line-relative y of a diatonic step.
func (b *builder) staffY(lw *lineWork, diatonic int) float64 {
	top := lw.cfg.MiddleLine() + 4
	return float64(top-diatonic) * b.u / 2
}

// placeNotation places every static shape of one row.
func (b *builder) placeNotation(rw *rowWork) {
	for i, lc := range b.lines {
		lw := b.newLine(i, lc)
		for _, mw := range rw.measures {
			for _, cw := range mw.cols {
				for _, s := range cw.c.Symbols() {
					if !lc.ShowsVoice(s.Voice()) {
						continue
					}
					sym := b.placeSymbol(lw, cw, s)
					if sym == nil {
						continue
					}
					cw.symbols = append(cw.symbols, sym)
					lw.symbols = append(lw.symbols, sym)
					lw.byGroup[sym.ID] = sym
				}
			}
		}
		b.placeBeams(lw)
		b.placeArcs(rw, lw)
		b.collectStatic(rw, lw)
		rw.lines = append(rw.lines, lw)
	}
}

func (b *builder) placeSymbol(lw *lineWork, cw *colWork, s score.Symbol) *Symbol {
	sym := &Symbol{
		ID:     s.ObjID(),
		Voice:  s.Voice(),
		Line:   lw.index,
		Length: int(s.Rhythm().Length),
	}
	switch s := s.(type) {
	case *score.NoteGroup:
		if lw.cfg.Type == score.LineTab {
			b.placeFrets(lw, cw, s, sym)
		} else {
			b.placeNotes(lw, cw, s, sym)
		}
	case *score.Rest:
		if lw.cfg.Type == score.LineTab {
			return nil
		}
		b.placeRest(lw, cw, s, sym)
	}
	return sym
}

func (b *builder) placeNotes(lw *lineWork, cw *colWork, g *score.NoteGroup, sym *Symbol) {
	u := b.u
	hw := headWidth * u
	x0 := cw.headX()
	key := cw.c.Measure().KeySignature()
	rhythm := g.Rhythm()
	sym.StemUp = g.StemDirection() == score.StemUp
	top, bottom := lw.cfg.MiddleLine()+4, lw.cfg.MiddleLine()-4
	minY, maxY := math.Inf(1), math.Inf(-1)
	shifted := false
	for i, n := range g.Notes() {
		d := n.DiatonicID()
		y := b.staffY(lw, d)
		x := x0
		if i > 0 && d-g.Notes()[i-1].DiatonicID() == 1 && !shifted {
			x += hw
			shifted = true
		} else {
			shifted = false
		}
		h := Head{Note: n.String(), X: x, Y: y, Filled: rhythm.Filled(), Fret: -1}
		if acc := displayedAccidental(n, key); acc != "" {
			h.Accidental = acc
			h.AccidentalX = x0 - accidentalWidth*u
			sym.Rect = sym.Rect.Union(Rect{h.AccidentalX, y - 1.2*u, x0, y + 1.2*u})
		}
		for p := top + 2; p <= d; p += 2 {
			ly := b.staffY(lw, p)
			h.Ledgers = append(h.Ledgers, Segment{x - ledgerOverhang*u, ly, x + hw + ledgerOverhang*u, ly})
		}
		for p := bottom - 2; p >= d; p -= 2 {
			ly := b.staffY(lw, p)
			h.Ledgers = append(h.Ledgers, Segment{x - ledgerOverhang*u, ly, x + hw + ledgerOverhang*u, ly})
		}
		for j := 0; j < rhythm.Dots; j++ {
			dy := y
			if (top-d)%2 == 0 {
				dy -= u / 2
			}
			dot := Point{x0 + hw + 0.3*u + (float64(j)+0.5)*dotSpacing*u, dy}
			if hasSecond(g.Notes()) {
				dot.X += hw
			}
			sym.Dots = append(sym.Dots, dot)
			sym.Rect = sym.Rect.Union(RectXYWH(dot.X-0.2*u, dot.Y-0.2*u, 0.4*u, 0.4*u))
		}
		sym.Heads = append(sym.Heads, h)
		sym.Rect = sym.Rect.Union(Rect{x, y - u/2, x + hw, y + u/2})
		lw.heads[headKey{g.ObjID(), n.ChromaticID()}] = Point{x + hw/2, y}
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if rhythm.HasStem() {
		var stem Segment
		if sym.StemUp {
			stem = Segment{x0 + hw, maxY, x0 + hw, minY - stemLength*u}
		} else {
			stem = Segment{x0, minY, x0, maxY + stemLength*u}
		}
		sym.Stem = &stem
		sym.Rect = sym.Rect.Union(stem.Bounds())
		if g.Beam() == nil {
			sym.Flags = rhythm.Flags()
			if sym.Flags > 0 && sym.StemUp {
				sym.Rect = sym.Rect.Union(Rect{stem.X2, stem.Y2, stem.X2 + flagWidth*u, stem.Y2 + float64(sym.Flags)*u})
			}
		}
	}
	if g.Staccato() || g.Staccatissimo() {
		p := Point{x0 + hw/2, minY - u}
		if sym.StemUp {
			p.Y = maxY + u
		}
		sym.Staccato = &p
		sym.Staccatissimo = g.Staccatissimo()
		sym.Rect = sym.Rect.Union(RectXYWH(p.X-0.3*u, p.Y-0.3*u, 0.6*u, 0.6*u))
	}
	if g.Arpeggio() != score.ArpeggioNone {
		ax := cw.x + 0.4*u
		seg := Segment{ax, minY - u/2, ax, maxY + u/2}
		if g.Arpeggio() == score.ArpeggioDown {
			seg = Segment{ax, maxY + u/2, ax, minY - u/2}
		}
		sym.Arpeggio = &seg
		sym.Rect = sym.Rect.Union(seg.Bounds())
	}
}

// placeFrets assigns every note to a string, greedily from the highest
// string, and writes its fret number.
func (b *builder) placeFrets(lw *lineWork, cw *colWork, g *score.NoteGroup, sym *Symbol) {
	u := b.u
	tuning := lw.cfg.Tuning
	used := make([]bool, len(tuning))
	notes := slices.Clone(g.Notes())
	slices.Reverse(notes)
	size := fretSize * u
	for _, n := range notes {
		str := -1
		for s := len(tuning) - 1; s >= 0; s-- {
			fret := n.ChromaticID() - tuning[s].ChromaticID()
			if !used[s] && fret >= 0 && fret <= maxFret {
				str = s
				break
			}
		}
		if str < 0 {
			continue
		}
		used[str] = true
		fret := n.ChromaticID() - tuning[str].ChromaticID()
		y := float64(len(tuning)-1-str) * lw.spacing
		m := b.cfg.measurer.Measure(strconv.Itoa(fret), size)
		cx := cw.headX() + headWidth*u/2
		h := Head{Note: n.String(), X: cx - m.Width/2, Y: y, Filled: true, Fret: fret}
		sym.Heads = append(sym.Heads, h)
		sym.Rect = sym.Rect.Union(Rect{h.X, y - m.Height()/2, h.X + m.Width, y + m.Height()/2})
		lw.heads[headKey{g.ObjID(), n.ChromaticID()}] = Point{cx, y}
	}
}

func (b *builder) placeRest(lw *lineWork, cw *colWork, r *score.Rest, sym *Symbol) {
	u := b.u
	sym.Rest = true
	sym.Hidden = r.Hidden()
	x := cw.headX()
	if r.IsMeasureRest() {
		mw := cw.mw
		x = mw.colsLeft + mw.colsWidth/2 - headWidth*u/2
		sym.Length = int(theory.Whole)
	}
	shift := 0.0
	for _, other := range cw.c.Symbols() {
		if other.Voice() != r.Voice() && lw.cfg.ShowsVoice(other.Voice()) {
			shift = 2 * u
			if r.Voice()%2 == 0 {
				shift = -shift
			}
			break
		}
	}
	var rect Rect
	switch theory.NoteLength(sym.Length) {
	case theory.Whole:
		rect = RectXYWH(x, u, headWidth*u, u/2)
	case theory.Half:
		rect = RectXYWH(x, 1.5*u, headWidth*u, u/2)
	case theory.Quarter:
		rect = RectXYWH(x, 0.5*u, headWidth*u, 3*u)
	default:
		flags := r.Rhythm().Flags()
		rect = RectXYWH(x, 2*u-float64(flags)*u/2, headWidth*u, 1.5*u+float64(flags)*u/2)
	}
	sym.Rect = rect.Translate(0, shift)
	for j := 0; j < r.Rhythm().Dots; j++ {
		dot := Point{sym.Rect.Right + 0.3*u + (float64(j)+0.5)*dotSpacing*u, 1.5*u + shift}
		sym.Dots = append(sym.Dots, dot)
		sym.Rect = sym.Rect.Union(RectXYWH(dot.X-0.2*u, dot.Y-0.2*u, 0.4*u, 0.4*u))
	}
}

// placeBeams draws flat beams and pulls every beamed stem to the beam.
func (b *builder) placeBeams(lw *lineWork) {
	if lw.cfg.Type == score.LineTab {
		return
	}
	u := b.u
	seen := make(map[*score.Beam]bool)
	for _, s := range lw.symbols {
		g, ok := b.doc.Graph().Object(s.ID).(*score.NoteGroup)
		if !ok || g.Beam() == nil || seen[g.Beam()] {
			continue
		}
		beam := g.Beam()
		seen[beam] = true
		var syms []*Symbol
		count := math.MaxInt
		for _, bg := range beam.Groups {
			if bs := lw.byGroup[bg.ObjID()]; bs != nil && bs.Stem != nil {
				syms = append(syms, bs)
				count = min(count, bg.Rhythm().Flags())
			}
		}
		if len(syms) < 2 {
			continue
		}
		up := beam.Stem == score.StemUp
		tip := syms[0].Stem.Y2
		for _, bs := range syms {
			if up {
				tip = math.Min(tip, bs.Stem.Y2)
			} else {
				tip = math.Max(tip, bs.Stem.Y2)
			}
		}
		for _, bs := range syms {
			bs.Stem.Y2 = tip
			bs.Rect = bs.Rect.Union(bs.Stem.Bounds())
		}
		first, last := syms[0].Stem, syms[len(syms)-1].Stem
		lw.beams = append(lw.beams, Beam{
			Line:    lw.index,
			Segment: Segment{first.X1, tip, last.X1, tip},
			Count:   count,
			Up:      up,
		})
		depth := float64(count-1)*beamGap*u + beamThickness*u
		r := Rect{first.X1, tip, last.X1, tip + depth}
		if !up {
			r = Rect{first.X1, tip - depth, last.X1, tip}
		}
		lw.static = append(lw.static, r)
	}
}

// placeArcs positions the ties and slurs drawn in this row on this line.
func (b *builder) placeArcs(rw *rowWork, lw *lineWork) {
	u := b.u
	for _, a := range b.arcs {
		mw := b.measures[a.Measure.ObjID()]
		if mw == nil || mw.row != rw || !lw.cfg.ShowsVoice(a.Left.Group.Voice()) {
			continue
		}
		up := a.Direction == arc.Up
		lift := arcLift * u
		if up {
			lift = -lift
		}
		var from, to Point
		switch a.Half {
		case arc.RightHalf:
			q, ok := lw.heads[headKey{a.Right.Group.ObjID(), a.Right.Note.ChromaticID()}]
			if !ok {
				continue
			}
			to = Point{q.X - arcInset*u, q.Y + lift}
			from = Point{mw.colsLeft - u/2, to.Y}
		default:
			p, ok := lw.heads[headKey{a.Left.Group.ObjID(), a.Left.Note.ChromaticID()}]
			if !ok {
				continue
			}
			from = Point{p.X + arcInset*u, p.Y + lift}
			switch {
			case a.Half == arc.LeftHalf:
				to = Point{mw.x + mw.width, from.Y}
			case a.Open == arc.OpenStub:
				to = Point{from.X + stubLength*u, from.Y}
			case a.Open == arc.OpenMeasureEnd:
				to = Point{mw.x + mw.width - u/2, from.Y}
			default:
				q, ok := lw.heads[headKey{a.Right.Group.ObjID(), a.Right.Note.ChromaticID()}]
				if !ok {
					continue
				}
				to = Point{q.X - arcInset*u, q.Y + lift}
			}
		}
		h := math.Min(1.5*u, 0.4*u+math.Abs(to.X-from.X)*0.08)
		r := Rect{math.Min(from.X, to.X), math.Min(from.Y, to.Y), math.Max(from.X, to.X), math.Max(from.Y, to.Y)}
		if up {
			r.Top -= h
		} else {
			r.Bottom += h
		}
		lw.arcs = append(lw.arcs, Arc{
			Kind:   a.Kind.String(),
			Line:   lw.index,
			From:   from,
			To:     to,
			Up:     up,
			Height: h,
			Rect:   r,
		})
	}
}

// collectStatic gathers the shapes layout groups must avoid.
func (b *builder) collectStatic(rw *rowWork, lw *lineWork) {
	left := b.regions.StaffLeft
	lw.static = append(lw.static, Rect{left, 0, left + b.regions.StaffWidth, lw.height})
	if lw.cfg.Type == score.LineStaff {
		for _, mw := range rw.measures {
			if mw.m.ShowClef() && lw.cfg.Clef == score.ClefG {
				x := mw.x + mw.leftBarW
				lw.static = append(lw.static, Rect{x, -1.5 * b.u, x + mw.clefW, lw.height + 1.5*b.u})
			}
		}
	}
	for _, s := range lw.symbols {
		if !s.Hidden {
			lw.static = append(lw.static, s.Rect)
		}
	}
	for _, a := range lw.arcs {
		lw.static = append(lw.static, a.Rect)
	}
}
