package score

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Navigation is a measure-level playback directive.
type Navigation int

const (
	NavStartRepeat Navigation = iota + 1
	NavEndRepeat
	NavSegno
	NavCoda
	NavToCoda
	NavFine
	NavDC
	NavDCalFine
	NavDCalCoda
	NavDS
	NavDSalFine
	NavDSalCoda
)

var navigationText = map[Navigation]string{
	NavStartRepeat: "|:",
	NavEndRepeat:   ":|",
	NavSegno:       "Segno",
	NavCoda:        "Coda",
	NavToCoda:      "To Coda",
	NavFine:        "Fine",
	NavDC:          "D.C.",
	NavDCalFine:    "D.C. al Fine",
	NavDCalCoda:    "D.C. al Coda",
	NavDS:          "D.S.",
	NavDSalFine:    "D.S. al Fine",
	NavDSalCoda:    "D.S. al Coda",
}

func (n Navigation) String() string {
	if s, ok := navigationText[n]; ok {
		return s
	}
	return "?"
}

// Valid reports whether n is a known mark.
func (n Navigation) Valid() bool {
	_, ok := navigationText[n]
	return ok
}

// IsJump reports whether n is a D.C. or D.S. variant.
func (n Navigation) IsJump() bool {
	return n >= NavDC && n <= NavDSalCoda
}

// FromSegno reports whether a jump restarts at the segno rather than the top.
func (n Navigation) FromSegno() bool {
	return n == NavDS || n == NavDSalFine || n == NavDSalCoda
}

// AlFine reports whether a jump ends at the Fine mark.
func (n Navigation) AlFine() bool {
	return n == NavDCalFine || n == NavDSalFine
}

// AlCoda reports whether a jump continues at the Coda via To Coda.
func (n Navigation) AlCoda() bool {
	return n == NavDCalCoda || n == NavDSalCoda
}

// AtMeasureStart reports whether the mark is drawn at the left edge of its
// measure. Everything else is drawn at the right edge.
func (n Navigation) AtMeasureStart() bool {
	return n == NavSegno || n == NavCoda || n == NavStartRepeat
}

// DefaultPlayCount is how many times a repeated section plays.
const DefaultPlayCount = 2

// Ending is a bracket over a measure played only on the listed passes.
type Ending struct {
	Passages []int `json:"passages"`
}

// Has reports whether the ending is played on pass p.
func (e *Ending) Has(p int) bool {
	return e != nil && slices.Contains(e.Passages, p)
}

// Max returns the highest passage number.
func (e *Ending) Max() int {
	if e == nil || len(e.Passages) == 0 {
		return 0
	}
	return slices.Max(e.Passages)
}

// Measure is a run of rhythm columns between two bar lines.
type Measure struct {
	node
	row     *Row
	index   int
	columns []*Column

	keySig  *theory.KeySignature
	timeSig *theory.TimeSignature
	tempo   *theory.Tempo

	navs       []Navigation
	playCount  int
	ending     *Ending
	endSong    bool
	endSection bool
	barFermata bool
	dirty      bool

	// Running parameters, filled by Resolve.
	key        theory.KeySignature
	time       theory.TimeSignature
	tempoRes   theory.Tempo
	showClef   bool
	showKey    bool
	showTime   bool
	keyChanged bool
}

// Index returns the document-wide position of the measure.
func (m *Measure) Index() int { return m.index }

// Row returns the owning row.
func (m *Measure) Row() *Row { return m.row }

// Document returns the owning document.
func (m *Measure) Document() *Document { return m.row.doc }

// Columns returns the rhythm columns in tick order.
func (m *Measure) Columns() []*Column { return m.columns }

// Prev returns the previous measure in document order, or nil.
func (m *Measure) Prev() *Measure { return m.Document().Measure(m.index - 1) }

// Next returns the next measure in document order, or nil.
func (m *Measure) Next() *Measure { return m.Document().Measure(m.index + 1) }

// PrevInRow returns the previous measure on the same row, or nil.
func (m *Measure) PrevInRow() *Measure {
	if p := m.Prev(); p != nil && p.row == m.row {
		return p
	}
	return nil
}

// NextInRow returns the next measure on the same row, or nil.
func (m *Measure) NextInRow() *Measure {
	if n := m.Next(); n != nil && n.row == m.row {
		return n
	}
	return nil
}

// NeedsLayout reports whether the measure was modified since the last layout.
func (m *Measure) NeedsLayout() bool { return m.dirty }

// RequestLayout marks the measure, its row and the document dirty.
func (m *Measure) RequestLayout() {
	m.dirty = true
	m.row.RequestLayout()
}

// SetKeySignature sets an explicit key from this measure on.
func (m *Measure) SetKeySignature(ks theory.KeySignature) {
	m.keySig = &ks
	m.RequestLayout()
}

// SetTimeSignature sets an explicit meter from this measure on.
func (m *Measure) SetTimeSignature(ts theory.TimeSignature) error {
	if ts.Beats < 1 || !ts.BeatType.Valid() {
		return errors.New(errors.ErrCodeTimeSignature, "invalid time signature %s", ts)
	}
	for v := range errors.MaxVoices {
		if m.voiceEnd(v) > ts.MeasureTicks() {
			return errors.New(errors.ErrCodeTimeSignature, "measure %d content exceeds %s", m.index, ts)
		}
	}
	m.timeSig = &ts
	m.RequestLayout()
	return nil
}

// SetTempo sets an explicit tempo from this measure on.
func (m *Measure) SetTempo(t theory.Tempo) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.tempo = &t
	m.RequestLayout()
	return nil
}

// ExplicitTempo returns the tempo set on this measure, if any.
func (m *Measure) ExplicitTempo() (theory.Tempo, bool) {
	if m.tempo == nil {
		return theory.Tempo{}, false
	}
	return *m.tempo, true
}

// KeySignature returns the running key, valid after Resolve.
func (m *Measure) KeySignature() theory.KeySignature { return m.key }

// TimeSignature returns the running meter, valid after Resolve.
func (m *Measure) TimeSignature() theory.TimeSignature { return m.time }

// Tempo returns the running tempo, valid after Resolve.
func (m *Measure) Tempo() theory.Tempo { return m.tempoRes }

// ShowClef reports whether the clef is drawn at the start of the measure.
func (m *Measure) ShowClef() bool { return m.showClef }

// ShowKeySignature reports whether the key signature is drawn.
func (m *Measure) ShowKeySignature() bool { return m.showKey }

// ShowTimeSignature reports whether the time signature is drawn.
func (m *Measure) ShowTimeSignature() bool { return m.showTime }

// KeyChanged reports whether the running key differs from the previous measure.
func (m *Measure) KeyChanged() bool { return m.keyChanged }

// effectiveTime walks back to the nearest explicit meter. It is used while
// building, before Resolve has run.
func (m *Measure) effectiveTime() theory.TimeSignature {
	for cur := m; cur != nil; cur = cur.Prev() {
		if cur.timeSig != nil {
			return *cur.timeSig
		}
	}
	return theory.DefaultTimeSignature
}

// AddNavigation adds a navigation mark. NavEndRepeat uses DefaultPlayCount.
func (m *Measure) AddNavigation(nav Navigation) error {
	if nav == NavEndRepeat {
		return m.AddEndRepeat(DefaultPlayCount)
	}
	if !nav.Valid() {
		return errors.New(errors.ErrCodeInvalidArg, "unknown navigation %d", nav)
	}
	if nav.IsJump() {
		for _, n := range m.navs {
			if n.IsJump() && n != nav {
				return errors.New(errors.ErrCodeScore, "measure %d already has %s", m.index, n)
			}
		}
	}
	m.addNav(nav)
	return nil
}

// AddEndRepeat closes a repeated section that plays playCount times.
func (m *Measure) AddEndRepeat(playCount int) error {
	if err := errors.ValidatePlayCount(playCount); err != nil {
		return err
	}
	m.playCount = playCount
	m.addNav(NavEndRepeat)
	return nil
}

func (m *Measure) addNav(nav Navigation) {
	if !slices.Contains(m.navs, nav) {
		m.navs = append(m.navs, nav)
		slices.Sort(m.navs)
	}
	m.RequestLayout()
}

// HasNavigation reports whether the measure carries nav.
func (m *Measure) HasNavigation(nav Navigation) bool {
	return slices.Contains(m.navs, nav)
}

// Navigations returns the marks in enum order.
func (m *Measure) Navigations() []Navigation { return slices.Clone(m.navs) }

// Jump returns the D.C./D.S. mark of the measure, if any.
func (m *Measure) Jump() (Navigation, bool) {
	for _, n := range m.navs {
		if n.IsJump() {
			return n, true
		}
	}
	return 0, false
}

// PlayCount returns the play count of an end repeat, or 0.
func (m *Measure) PlayCount() int {
	if !m.HasNavigation(NavEndRepeat) {
		return 0
	}
	return m.playCount
}

// AddEnding marks the measure as part of an ending played on the given
// 1-based passes.
func (m *Measure) AddEnding(passages ...int) error {
	if err := errors.ValidatePassages(passages); err != nil {
		return err
	}
	p := slices.Clone(passages)
	slices.Sort(p)
	m.ending = &Ending{Passages: p}
	m.RequestLayout()
	return nil
}

// Ending returns the measure's ending, or nil.
func (m *Measure) Ending() *Ending { return m.ending }

// EndSong marks the final measure of the piece.
func (m *Measure) EndSong() {
	m.endSong = true
	m.RequestLayout()
}

// EndSection marks the end of a section.
func (m *Measure) EndSection() {
	m.endSection = true
	m.RequestLayout()
}

// IsEndSong reports whether EndSong was called.
func (m *Measure) IsEndSong() bool { return m.endSong }

// IsEndSection reports whether EndSection was called.
func (m *Measure) IsEndSection() bool { return m.endSection }

// AddBarFermata puts a fermata over the right bar line.
func (m *Measure) AddBarFermata() {
	m.barFermata = true
	m.RequestLayout()
}

// HasBarFermata reports whether the right bar line holds a fermata.
func (m *Measure) HasBarFermata() bool { return m.barFermata }

// Ticks returns the measure length: the longest voice, or the meter when the
// measure is empty.
func (m *Measure) Ticks() int {
	n := 0
	for v := range errors.MaxVoices {
		n = max(n, m.voiceEnd(v))
	}
	if n == 0 {
		ts := m.time
		if ts.Beats == 0 {
			ts = m.effectiveTime()
		}
		return ts.MeasureTicks()
	}
	return n
}

func (m *Measure) voiceEnd(voice int) int {
	end := 0
	for _, c := range m.columns {
		if s := c.symbols[voice]; s != nil {
			end = max(end, c.tick+s.Ticks())
		}
	}
	return end
}

// VoiceSymbols returns the symbols of one voice in tick order.
func (m *Measure) VoiceSymbols(voice int) []Symbol {
	var out []Symbol
	for _, c := range m.columns {
		if s := c.symbols[voice]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// HasVoice reports whether any column holds a symbol in voice.
func (m *Measure) HasVoice(voice int) bool {
	for _, c := range m.columns {
		if c.symbols[voice] != nil {
			return true
		}
	}
	return false
}

// ColumnAt returns the column starting at tick, or nil.
func (m *Measure) ColumnAt(tick int) *Column {
	i, ok := slices.BinarySearchFunc(m.columns, tick, func(c *Column, t int) int { return c.tick - t })
	if !ok {
		return nil
	}
	return m.columns[i]
}

func (m *Measure) columnAt(tick int) *Column {
	i, ok := slices.BinarySearchFunc(m.columns, tick, func(c *Column, t int) int { return c.tick - t })
	if ok {
		return m.columns[i]
	}
	g := m.Document().graph
	c := &Column{node: g.alloc(KindColumn, m.id), measure: m, tick: tick}
	g.register(c)
	m.columns = slices.Insert(m.columns, i, c)
	for j := i; j < len(m.columns); j++ {
		m.columns[j].index = j
	}
	return c
}

// AddNote appends a single note to a voice. note and rhythm use the theory
// parsers' notation ("C#4", "8.").
func (m *Measure) AddNote(voice int, note, rhythm string, opts ...Option) (*NoteGroup, error) {
	return m.AddChord(voice, []string{note}, rhythm, opts...)
}

// AddChord appends a chord to a voice.
func (m *Measure) AddChord(voice int, notes []string, rhythm string, opts ...Option) (*NoteGroup, error) {
	parsed := make([]theory.Note, 0, len(notes))
	for _, s := range notes {
		n, err := theory.ParseNote(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, n)
	}
	r, err := theory.ParseRhythm(rhythm)
	if err != nil {
		return nil, err
	}
	return m.AddNoteGroup(voice, parsed, r, opts...)
}

// AddNoteGroup appends a note group built from parsed values.
func (m *Measure) AddNoteGroup(voice int, notes []theory.Note, rhythm theory.Rhythm, opts ...Option) (*NoteGroup, error) {
	if len(notes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArg, "note group needs at least one note")
	}
	o, start, err := m.prepareSymbol(voice, rhythm, opts)
	if err != nil {
		return nil, err
	}
	if err := o.validateNote(); err != nil {
		return nil, err
	}
	col := m.columnAt(start)
	sorted := slices.Clone(notes)
	slices.SortFunc(sorted, func(a, b theory.Note) int { return a.ChromaticID() - b.ChromaticID() })
	ng := &NoteGroup{
		node:    m.Document().graph.alloc(KindNoteGroup, col.id),
		col:     col,
		voice:   voice,
		notes:   sorted,
		rhythm:  rhythm,
		options: o,
	}
	m.Document().graph.register(ng)
	col.symbols[voice] = ng
	m.RequestLayout()
	return ng, nil
}

// AddRest appends a rest to a voice.
func (m *Measure) AddRest(voice int, rhythm string, opts ...Option) (*Rest, error) {
	r, err := theory.ParseRhythm(rhythm)
	if err != nil {
		return nil, err
	}
	o, start, err := m.prepareSymbol(voice, r, opts)
	if err != nil {
		return nil, err
	}
	if o.tie != nil || o.slur != nil || o.arpeggio != ArpeggioNone || o.staccato || o.staccatissimo {
		return nil, errors.New(errors.ErrCodeInvalidArg, "rests take no ties, slurs or articulations")
	}
	col := m.columnAt(start)
	rest := &Rest{
		node:    m.Document().graph.alloc(KindRest, col.id),
		col:     col,
		voice:   voice,
		rhythm:  r,
		options: o,
	}
	m.Document().graph.register(rest)
	col.symbols[voice] = rest
	m.RequestLayout()
	return rest, nil
}

func (m *Measure) prepareSymbol(voice int, rhythm theory.Rhythm, opts []Option) (symbolOptions, int, error) {
	if err := errors.ValidateVoice(voice); err != nil {
		return symbolOptions{}, 0, err
	}
	if err := rhythm.Validate(); err != nil {
		return symbolOptions{}, 0, err
	}
	var o symbolOptions
	for _, opt := range opts {
		opt(&o)
	}
	start := m.voiceEnd(voice)
	if limit := m.effectiveTime().MeasureTicks(); start+rhythm.Ticks() > limit {
		return symbolOptions{}, 0, errors.New(errors.ErrCodeScore,
			"voice %d of measure %d is full (%d + %d > %d ticks)", voice, m.index, start, rhythm.Ticks(), limit)
	}
	return o, start, nil
}

// AddAnnotation anchors a text annotation to the column starting at tick.
func (m *Measure) AddAnnotation(tick int, kind AnnotationKind, text string, opts ...AnnotationOption) (*Annotation, error) {
	c := m.ColumnAt(tick)
	if c == nil {
		return nil, errors.New(errors.ErrCodeInvalidArg, "measure %d has no column at tick %d", m.index, tick)
	}
	return c.AddAnnotation(kind, text, opts...)
}
