package layout

import (
	"math"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/arc"
	"github.com/matzehuels/staffline/pkg/score/barline"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Sizes in staff spaces.
const (
	clefWidth       = 3.0
	keyAccWidth     = 1.0
	timeSigWidth    = 2.2
	measurePadding  = 1.0
	headWidth       = 1.2
	accidentalWidth = 1.1
	arpeggioWidth   = 0.9
	dotSpacing      = 0.5
	flagWidth       = 0.7
	labelGap        = 1.5
	labelSize       = 1.8
	lyricSize       = 1.6
)

type builder struct {
	doc      *score.Document
	cfg      config
	u        float64
	lines    []score.LineConfig
	arcs     []*arc.Arc
	rows     []*rowWork
	cols     map[score.ID]*colWork
	measures map[score.ID]*measureWork
	regions  RowRegions
}

type rowWork struct {
	row      *score.Row
	measures []*measureWork
	lines    []*lineWork
}

type measureWork struct {
	m         *score.Measure
	row       *rowWork
	left      barline.Type
	right     barline.Type
	leftBarW  float64
	rightBarW float64
	clefW     float64
	keyW      float64
	timeW     float64
	keyCount  int
	keyCancel int
	solid     float64
	minCols   float64
	cols      []*colWork

	x         float64
	width     float64
	colsLeft  float64
	colsWidth float64
}

type colWork struct {
	c       *score.Column
	mw      *measureWork
	lead    float64
	min     float64
	x       float64
	w       float64
	symbols []*Symbol
}

// headX is where note heads start inside the column.
func (cw *colWork) headX() float64 { return cw.x + cw.lead }

func newBuilder(d *score.Document, cfg config, arcs []*arc.Arc) *builder {
	return &builder{
		doc:      d,
		cfg:      cfg,
		u:        cfg.unit,
		lines:    d.Lines(),
		arcs:     arcs,
		cols:     make(map[score.ID]*colWork),
		measures: make(map[score.ID]*measureWork),
	}
}

// naturalPass computes the unstretched width of every measure and the shared
// row regions.
func (b *builder) naturalPass() {
	u := b.u
	for _, r := range b.doc.Rows() {
		rw := &rowWork{row: r}
		natural := 0.0
		for _, m := range r.Measures() {
			mw := b.measureNatural(m)
			mw.row = rw
			rw.measures = append(rw.measures, mw)
			b.measures[m.ObjID()] = mw
			natural += mw.solid + mw.minCols
		}
		b.regions.NaturalWidth = math.Max(b.regions.NaturalWidth, natural)
		for _, g := range r.Groups() {
			w := b.cfg.measurer.Measure(g.Instrument, labelSize*u).Width + labelGap*u
			b.regions.LabelWidth = math.Max(b.regions.LabelWidth, w)
		}
		b.rows = append(b.rows, rw)
	}
	margin := b.cfg.margin * u
	b.regions.StaffLeft = margin + b.regions.LabelWidth
	target := b.cfg.width - 2*margin - b.regions.LabelWidth
	b.regions.StaffWidth = finite(math.Max(target, b.regions.NaturalWidth), b.regions.NaturalWidth)
}

func (b *builder) measureNatural(m *score.Measure) *measureWork {
	u := b.u
	mw := &measureWork{m: m, left: barline.Left(m), right: barline.Right(m)}
	mw.leftBarW = barline.Width(mw.left) * u
	mw.rightBarW = barline.Width(mw.right) * u
	if m.ShowClef() {
		mw.clefW = clefWidth * u
	}
	if m.ShowKeySignature() {
		mw.keyCount = m.KeySignature().AccidentalCount()
		n := abs(mw.keyCount)
		if n == 0 && m.KeyChanged() {
			// Cancel the previous key with naturals.
			if p := m.Prev(); p != nil {
				mw.keyCancel = p.KeySignature().AccidentalCount()
				n = abs(mw.keyCancel)
			}
		}
		if n > 0 {
			mw.keyW = (float64(n)*keyAccWidth + 0.5) * u
		}
	}
	if m.ShowTimeSignature() {
		mw.timeW = timeSigWidth * u
	}
	mw.solid = mw.leftBarW + mw.clefW + mw.keyW + mw.timeW + measurePadding*u + mw.rightBarW
	for _, c := range m.Columns() {
		cw := &colWork{c: c, mw: mw}
		cw.lead, cw.min = b.columnNatural(c)
		mw.cols = append(mw.cols, cw)
		mw.minCols += cw.min
		b.cols[c.ObjID()] = cw
	}
	return mw
}

// columnNatural returns the space before the heads (accidentals, arpeggio)
// and the minimum width of c.
func (b *builder) columnNatural(c *score.Column) (lead, width float64) {
	u := b.u
	key := c.Measure().KeySignature()
	body := 0.0
	for _, s := range c.Symbols() {
		if r, ok := s.(*score.Rest); ok && r.IsMeasureRest() {
			continue
		}
		w := headWidth
		switch s := s.(type) {
		case *score.NoteGroup:
			l := 0.0
			if b.anyStaffShows(s.Voice()) {
				for _, n := range s.Notes() {
					if displayedAccidental(n, key) != "" {
						l = accidentalWidth
						break
					}
				}
				if s.Arpeggio() != score.ArpeggioNone {
					l += arpeggioWidth
				}
				if hasSecond(s.Notes()) {
					w += headWidth
				}
				if s.Rhythm().Flags() > 0 && s.Beam() == nil && s.StemDirection() == score.StemUp {
					w += flagWidth
				}
			}
			lead = math.Max(lead, l*u)
		}
		if d := s.Rhythm().Dots; d > 0 {
			w += 0.3 + float64(d)*dotSpacing
		}
		body = math.Max(body, w*u+durationSpace(s.Ticks())*u)
	}
	for _, a := range c.Annotations() {
		if a.Kind() != score.AnnotationLyrics {
			continue
		}
		lw := b.cfg.measurer.Measure(a.Text(), lyricSize*u).Width + 0.6*u
		body = math.Max(body, lw-lead)
	}
	return lead, lead + body
}

// durationSpace is the gap after a symbol, growing with the log of its length.
func durationSpace(ticks int) float64 {
	t := math.Max(float64(ticks), 12)
	return 0.8 + 0.6*math.Log2(t/12)
}

func (b *builder) anyStaffShows(voice int) bool {
	for _, l := range b.lines {
		if l.Type == score.LineStaff && l.ShowsVoice(voice) {
			return true
		}
	}
	return false
}

// stretchPass gives every row the shared staff width and positions measures
// and columns.
func (b *builder) stretchPass() {
	for _, rw := range b.rows {
		b.stretchRow(rw)
	}
}

func (b *builder) stretchRow(rw *rowWork) {
	if len(rw.measures) == 0 {
		return
	}
	solid, minCols := 0.0, 0.0
	for _, mw := range rw.measures {
		solid += mw.solid
		minCols += mw.minCols
	}
	target := math.Max(b.regions.StaffWidth-solid, 0)
	x := b.regions.StaffLeft
	for _, mw := range rw.measures {
		share := target / float64(len(rw.measures))
		scale := 1.0
		if minCols > 0 {
			scale = target / minCols
			share = mw.minCols * scale
		}
		mw.colsWidth = finite(math.Max(share, 0), 0)
		mw.x = x
		mw.width = mw.solid + mw.colsWidth
		mw.colsLeft = x + mw.leftBarW + mw.clefW + mw.keyW + mw.timeW + measurePadding*b.u/2
		b.placeColumns(mw, scale)
		x += mw.width
	}
}

func (b *builder) placeColumns(mw *measureWork, scale float64) {
	x := mw.colsLeft
	if mw.minCols <= 0 {
		// Only measure rests or empty columns: share the space evenly.
		n := float64(max(len(mw.cols), 1))
		for _, cw := range mw.cols {
			cw.x, cw.w = x, mw.colsWidth/n
			x += cw.w
		}
		return
	}
	for _, cw := range mw.cols {
		cw.x = x
		cw.w = finite(math.Max(cw.min*scale, 0), 0)
		x += cw.w
	}
}

// keyAccidental returns the accidental a key signature implies for a letter.
func keyAccidental(l theory.Letter, count int) theory.Accidental {
	sharps := [7]theory.Letter{theory.F, theory.C, theory.G, theory.D, theory.A, theory.E, theory.B}
	flats := [7]theory.Letter{theory.B, theory.E, theory.A, theory.D, theory.G, theory.C, theory.F}
	for i := 0; i < count && i < 7; i++ {
		if sharps[i] == l {
			return theory.Sharp
		}
	}
	for i := 0; i < -count && i < 7; i++ {
		if flats[i] == l {
			return theory.Flat
		}
	}
	return theory.Natural
}

// displayedAccidental returns the accidental sign drawn before n, or "" when
// the key signature already implies it.
func displayedAccidental(n theory.Note, key theory.KeySignature) string {
	if n.Accidental == keyAccidental(n.Letter, key.AccidentalCount()) {
		return ""
	}
	switch n.Accidental {
	case theory.DoubleFlat:
		return "𝄫"
	case theory.Flat:
		return "♭"
	case theory.Sharp:
		return "♯"
	case theory.DoubleSharp:
		return "𝄪"
	}
	return "♮"
}

// hasSecond reports whether two notes of a chord sit on adjacent staff steps.
func hasSecond(notes []theory.Note) bool {
	for i := 1; i < len(notes); i++ {
		if notes[i].DiatonicID()-notes[i-1].DiatonicID() == 1 {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
