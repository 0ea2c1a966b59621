package layout

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/extension"
	"github.com/matzehuels/staffline/pkg/theory"
)

// GroupID names a layout group.
type GroupID int

const (
	GroupFermata GroupID = iota
	GroupDynamics
	GroupLabel
	GroupLyrics
	GroupTempo
	GroupNavigation
	GroupEnding
)

var groupNames = map[GroupID]string{
	GroupFermata:    "fermata",
	GroupDynamics:   "dynamics",
	GroupLabel:      "label",
	GroupLyrics:     "lyrics",
	GroupTempo:      "tempo",
	GroupNavigation: "navigation",
	GroupEnding:     "ending",
}

func (g GroupID) String() string {
	if s, ok := groupNames[g]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (g GroupID) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// Alignment decides which objects of a group share one y.
type Alignment int

const (
	// RowAligned objects of a group share one y per row and line.
	RowAligned Alignment = iota
	// LinkAligned objects share a y only with objects whose anchors are
	// linked by the same tie or slur.
	LinkAligned
)

// GroupConfig configures one layout group. Groups are resolved by Order,
// closest to the staff first; Padding is in staff spaces.
type GroupConfig struct {
	Group   GroupID   `json:"group"`
	Order   int       `json:"order"`
	Padding float64   `json:"padding"`
	Align   Alignment `json:"align"`
}

// DefaultGroups returns the default group stack.
func DefaultGroups() []GroupConfig {
	return []GroupConfig{
		{Group: GroupFermata, Order: 0, Padding: 0.5, Align: LinkAligned},
		{Group: GroupDynamics, Order: 1, Padding: 0.8, Align: RowAligned},
		{Group: GroupLabel, Order: 2, Padding: 0.6, Align: RowAligned},
		{Group: GroupLyrics, Order: 3, Padding: 0.6, Align: RowAligned},
		{Group: GroupTempo, Order: 4, Padding: 0.8, Align: RowAligned},
		{Group: GroupNavigation, Order: 5, Padding: 0.8, Align: RowAligned},
		{Group: GroupEnding, Order: 6, Padding: 1.0, Align: RowAligned},
	}
}

// Text sizes in staff spaces.
const (
	dynamicsSize   = 1.6
	annotationSize = 1.5
	tempoSize      = 1.4
	endingSize     = 1.3
	glyphWidth     = 2.0
	glyphHeight    = 1.2
	endingHeight   = 1.8
	extensionGap   = 0.5
)

// item is an object waiting for its y.
type item struct {
	obj    *Object
	tier   int
	link   score.ID
	height float64
	// ascent positions the text baseline once the top is known.
	ascent float64
}

func (b *builder) addItem(rw *rowWork, line int, it *item) {
	if line < 0 || line >= len(rw.lines) {
		return
	}
	it.obj.Line = line
	rw.lines[line].pending = append(rw.lines[line].pending, it)
}

// collectObjects creates every annotation object of the document and files
// it with the row and line it is drawn on.
func (b *builder) collectObjects() {
	g := b.doc.Graph()
	for _, rw := range b.rows {
		for _, lw := range rw.lines {
			for _, s := range lw.symbols {
				sym, ok := g.Object(s.ID).(score.Symbol)
				if !ok || !sym.HasFermata() || s.Hidden {
					continue
				}
				b.addItem(rw, lw.index, b.glyphItem(s.ID, "fermata", s.Rect.CenterX(), g.LinkHead(s.ID)))
			}
		}
		for _, mw := range rw.measures {
			b.collectMeasureObjects(rw, mw)
		}
	}
	for _, a := range b.doc.Annotations() {
		b.collectAnnotation(a)
	}
}

func (b *builder) glyphItem(id score.ID, glyph string, cx float64, link score.ID) *item {
	w, h := glyphWidth*b.u, glyphHeight*b.u
	return &item{
		obj:    &Object{ID: id, Group: GroupFermata, Position: score.Above, Glyph: glyph, Rect: Rect{cx - w/2, 0, cx + w/2, h}},
		link:   link,
		height: h,
	}
}

func (b *builder) textItem(id score.ID, group GroupID, pos score.Position, s string, size float64, style, anchor string, x float64) *item {
	m := b.cfg.measurer.Measure(s, size)
	left := x
	switch anchor {
	case "middle":
		left = x - m.Width/2
	case "end":
		left = x - m.Width
	}
	return &item{
		obj: &Object{
			ID:       id,
			Group:    group,
			Position: pos,
			Text:     &Text{Text: s, X: x, Size: size, Anchor: anchor, Style: style, Rect: Rect{left, 0, left + m.Width, m.Height()}},
			Rect:     Rect{left, 0, left + m.Width, m.Height()},
		},
		link:   id,
		height: m.Height(),
		ascent: m.Ascent,
	}
}

func (b *builder) collectMeasureObjects(rw *rowWork, mw *measureWork) {
	u := b.u
	m := mw.m
	id := m.ObjID()
	if m.HasBarFermata() {
		it := b.glyphItem(id, "fermata", mw.x+mw.width-mw.rightBarW/2, id)
		b.addItem(rw, 0, it)
	}
	if t, ok := m.ExplicitTempo(); ok {
		it := b.textItem(id, GroupTempo, score.Above, tempoText(t), tempoSize*u, "bold", "start", mw.colsLeft)
		b.addItem(rw, 0, it)
	}
	for _, nav := range m.Navigations() {
		switch nav {
		case score.NavStartRepeat:
			continue
		case score.NavEndRepeat:
			if n := m.PlayCount(); n > score.DefaultPlayCount {
				it := b.textItem(id, GroupNavigation, score.Above, strconv.Itoa(n)+"x", annotationSize*u, "italic", "end", mw.x+mw.width)
				b.addItem(rw, 0, it)
			}
		case score.NavSegno, score.NavCoda:
			glyph := strings.ToLower(nav.String())
			it := b.glyphItem(id, glyph, mw.colsLeft+glyphWidth*u/2, id)
			it.obj.Group = GroupNavigation
			b.addItem(rw, 0, it)
		default:
			style := "italic"
			if nav.IsJump() {
				style = "bold-italic"
			}
			it := b.textItem(id, GroupNavigation, score.Above, nav.String(), annotationSize*u, style, "end", mw.x+mw.width-0.3*u)
			b.addItem(rw, 0, it)
		}
	}
	if e := m.Ending(); e != nil {
		b.collectEnding(rw, mw, e)
	}
}

func sameEnding(a, b *score.Measure) bool {
	if a == nil || b == nil || a.Ending() == nil || b.Ending() == nil {
		return false
	}
	return slices.Equal(a.Ending().Passages, b.Ending().Passages)
}

// collectEnding emits one bracket per run of measures in a row that share an
// ending. The run starts at the first such measure in the row.
func (b *builder) collectEnding(rw *rowWork, mw *measureWork, e *score.Ending) {
	m := mw.m
	if p := m.PrevInRow(); p != nil && sameEnding(p, m) {
		return
	}
	u := b.u
	last := mw
	for n := m.NextInRow(); n != nil && sameEnding(m, n); n = n.NextInRow() {
		last = b.measures[n.ObjID()]
	}
	openLeft := sameEnding(m.Prev(), m)
	openRight := sameEnding(last.m, last.m.Next())
	left, right := mw.x+0.3*u, last.x+last.width-0.3*u
	h := endingHeight * u
	obj := &Object{
		ID:       m.ObjID(),
		Group:    GroupEnding,
		Position: score.Above,
		Rect:     Rect{left, 0, right, h},
		Bracket:  &Bracket{Left: left, Right: right, Hook: h, OpenLeft: openLeft, OpenRight: openRight},
	}
	it := &item{obj: obj, link: m.ObjID(), height: h}
	if !openLeft {
		labels := make([]string, len(e.Passages))
		for i, p := range e.Passages {
			labels[i] = strconv.Itoa(p) + "."
		}
		size := endingSize * u
		mt := b.cfg.measurer.Measure(strings.Join(labels, " "), size)
		obj.Text = &Text{Text: strings.Join(labels, " "), X: left + 0.5*u, Size: size, Anchor: "start", Rect: RectXYWH(left+0.5*u, 0, mt.Width, mt.Height())}
		it.ascent = mt.Ascent + 0.2*u
	}
	b.addItem(rw, 0, it)
}

func annotationGroup(k score.AnnotationKind) (GroupID, float64, string) {
	switch k {
	case score.AnnotationDynamics:
		return GroupDynamics, dynamicsSize, "bold-italic"
	case score.AnnotationTempo:
		return GroupTempo, annotationSize, "italic"
	case score.AnnotationLyrics:
		return GroupLyrics, lyricSize, ""
	}
	return GroupLabel, annotationSize, ""
}

// collectAnnotation places a's text on its anchor row and, for visible
// extensions, a line through every row the range covers.
func (b *builder) collectAnnotation(a *score.Annotation) {
	u := b.u
	cw := b.cols[a.Column().ObjID()]
	if cw == nil {
		return
	}
	group, size, style := annotationGroup(a.Kind())
	link := b.doc.Graph().LinkHead(a.ObjID())
	cx := cw.headX() + headWidth*u/2
	it := b.textItem(a.ObjID(), group, a.Position(), a.Text(), size*u, style, "middle", cx)
	it.tier, it.link = a.Verse(), link
	row := cw.mw.row
	b.addItem(row, a.Line(), it)

	ext := a.Extension()
	if ext == nil || !ext.Visible {
		return
	}
	r := extension.Resolve(a)
	lastCol := b.cols[r.Last().ObjID()]
	if lastCol == nil {
		return
	}
	end := lastCol.x + lastCol.w
	if r.Stop == extension.StopAnnotation {
		if stop, ok := r.StopObject.(*score.Annotation); ok {
			if sc := b.cols[stop.Column().ObjID()]; sc != nil && sc.mw.row == lastCol.mw.row {
				end = math.Min(end, sc.headX()-extensionGap*u)
			}
		}
	}
	rowEnd := b.regions.StaffLeft + b.regions.StaffWidth
	start := it.obj.Rect.Right + extensionGap*u
	for ri := row.row.Index(); ri <= lastCol.mw.row.row.Index() && ri < len(b.rows); ri++ {
		rw := b.rows[ri]
		stopX := rowEnd
		if rw == lastCol.mw.row {
			stopX = end
		}
		if rw != row {
			start = b.regions.StaffLeft
			if len(rw.measures) > 0 {
				start = rw.measures[0].colsLeft
			}
		}
		if stopX <= start {
			continue
		}
		if rw == row {
			seg := Segment{start, 0, stopX, 0}
			it.obj.Extension, it.obj.Dashed = &seg, ext.Dashed
			it.obj.Rect.Right = stopX
			continue
		}
		h := u
		seg := Segment{start, 0, stopX, 0}
		cont := &item{
			obj: &Object{
				ID:        a.ObjID(),
				Group:     group,
				Position:  a.Position(),
				Rect:      Rect{start, 0, stopX, h},
				Extension: &seg,
				Dashed:    ext.Dashed,
			},
			tier:   a.Verse(),
			link:   link,
			height: h,
		}
		b.addItem(rw, a.Line(), cont)
	}
}

func tempoText(t theory.Tempo) string {
	var glyph string
	switch t.BeatLength.Length {
	case theory.Whole:
		glyph = "𝅝"
	case theory.Half:
		glyph = "𝅗𝅥"
	case theory.Eighth:
		glyph = "♪"
	case theory.Quarter:
		glyph = "♩"
	default:
		glyph = t.BeatLength.String()
	}
	glyph += strings.Repeat(".", t.BeatLength.Dots)
	return fmt.Sprintf("%s = %d", glyph, t.BPM)
}

// solveLine resolves the y of every pending object on lw. Groups are handled
// in order, each tier of a group after the one below it, and every resolved
// object becomes a static shape for the groups that follow.
func (b *builder) solveLine(lw *lineWork) {
	u := b.u
	configs := slices.Clone(b.cfg.groups)
	slices.SortStableFunc(configs, func(x, y GroupConfig) int { return cmp.Compare(x.Order, y.Order) })
	for _, gc := range configs {
		pad := gc.Padding * u
		for _, pos := range []score.Position{score.Above, score.Below} {
			var tiers []int
			byTier := make(map[int][]*item)
			for _, it := range lw.pending {
				if it.obj.Group != gc.Group || it.obj.Position != pos {
					continue
				}
				if _, ok := byTier[it.tier]; !ok {
					tiers = append(tiers, it.tier)
				}
				byTier[it.tier] = append(byTier[it.tier], it)
			}
			slices.Sort(tiers)
			for _, tier := range tiers {
				b.solveTier(lw, byTier[tier], pos, pad, gc.Align)
			}
		}
	}
}

func (b *builder) solveTier(lw *lineWork, items []*item, pos score.Position, pad float64, align Alignment) {
	edge := make(map[score.ID]float64)
	for _, it := range items {
		y := b.candidateY(lw, it, pos, pad)
		key := score.ID(0)
		if align == LinkAligned {
			key = it.link
		}
		cur, ok := edge[key]
		switch {
		case !ok:
			edge[key] = y
		case pos == score.Above:
			edge[key] = math.Min(cur, y)
		default:
			edge[key] = math.Max(cur, y)
		}
	}
	for _, it := range items {
		key := score.ID(0)
		if align == LinkAligned {
			key = it.link
		}
		top := edge[key]
		if pos == score.Above {
			top -= it.height
		}
		it.place(top)
	}
	for _, it := range items {
		lw.static = append(lw.static, it.obj.Rect)
		lw.objects = append(lw.objects, it.obj)
	}
}

// candidateY returns the closest edge to the staff that clears every
// horizontally overlapping static shape: a bottom edge for objects above the
// line, a top edge for objects below it.
func (b *builder) candidateY(lw *lineWork, it *item, pos score.Position, pad float64) float64 {
	r := it.obj.Rect
	if pos == score.Above {
		y := -pad
		for _, s := range lw.static {
			if s.OverlapsX(r) {
				y = math.Min(y, s.Top-pad)
			}
		}
		return y
	}
	y := lw.height + pad
	for _, s := range lw.static {
		if s.OverlapsX(r) {
			y = math.Max(y, s.Bottom+pad)
		}
	}
	return y
}

// place moves the object so its rect starts at top.
func (it *item) place(top float64) {
	o := it.obj
	o.Rect.Top, o.Rect.Bottom = top, top+it.height
	if o.Text != nil {
		o.Text.Y = top + it.ascent
		h := o.Text.Rect.Height()
		o.Text.Rect.Top, o.Text.Rect.Bottom = top, top+h
	}
	if o.Extension != nil {
		y := top + it.height/2
		o.Extension.Y1, o.Extension.Y2 = y, y
	}
	if o.Bracket != nil {
		o.Bracket.Y = top
	}
}
