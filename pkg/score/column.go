package score

import (
	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Column is a vertical time slice of a measure holding at most one symbol
// per voice.
type Column struct {
	node
	measure     *Measure
	index       int
	tick        int
	symbols     [errors.MaxVoices]Symbol
	annotations []*Annotation
}

// Measure returns the owning measure.
func (c *Column) Measure() *Measure { return c.measure }

// Index returns the column's position inside its measure.
func (c *Column) Index() int { return c.index }

// Tick returns the column's offset from the start of its measure.
func (c *Column) Tick() int { return c.tick }

// Symbol returns the symbol of voice, or nil.
func (c *Column) Symbol(voice int) Symbol {
	if voice < 0 || voice >= errors.MaxVoices {
		return nil
	}
	return c.symbols[voice]
}

// Symbols returns the present symbols ordered by voice.
func (c *Column) Symbols() []Symbol {
	var out []Symbol
	for _, s := range c.symbols {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Annotations returns the annotations anchored here.
func (c *Column) Annotations() []*Annotation { return c.annotations }

// Duration returns the ticks until the next column or the end of the measure.
func (c *Column) Duration() int {
	if c.index+1 < len(c.measure.columns) {
		return c.measure.columns[c.index+1].tick - c.tick
	}
	return max(0, c.measure.Ticks()-c.tick)
}

// Next returns the following column in document order, skipping empty
// measures, or nil.
func (c *Column) Next() *Column {
	if c.index+1 < len(c.measure.columns) {
		return c.measure.columns[c.index+1]
	}
	for m := c.measure.Next(); m != nil; m = m.Next() {
		if len(m.columns) > 0 {
			return m.columns[0]
		}
	}
	return nil
}

// Symbol is a NoteGroup or a Rest.
type Symbol interface {
	Object
	Column() *Column
	Voice() int
	Rhythm() theory.Rhythm
	Ticks() int
	HasFermata() bool
}

// Stem direction. StemAuto is resolved by Resolve.
type Stem int

const (
	StemAuto Stem = iota
	StemUp
	StemDown
)

func (s Stem) String() string {
	switch s {
	case StemUp:
		return "up"
	case StemDown:
		return "down"
	}
	return "auto"
}

// Arpeggio direction of a chord.
type Arpeggio int

const (
	ArpeggioNone Arpeggio = iota
	ArpeggioUp
	ArpeggioDown
)

// ArcAnchor selects how a tie or slur picks its curve direction.
type ArcAnchor int

const (
	// AnchorAuto curves away from the stem; chords use AnchorCenter.
	AnchorAuto ArcAnchor = iota
	// AnchorStemTip curves toward the stem.
	AnchorStemTip
	// AnchorCenter curves by the note's position against the middle line.
	AnchorCenter
)

// Tie span sentinels.
const (
	// TieToMeasureEnd draws a tie from each note to the end of its measure.
	TieToMeasureEnd = -1
	// TieStub draws a short open tie from each note.
	TieStub = -2
)

// SpanRequest asks for a tie or slur over Span note groups of one voice.
type SpanRequest struct {
	Span   int
	Anchor ArcAnchor
}

// IsSentinel reports whether the span is TieToMeasureEnd or TieStub.
func (r SpanRequest) IsSentinel() bool {
	return r.Span == TieToMeasureEnd || r.Span == TieStub
}

type symbolOptions struct {
	stem          Stem
	staccato      bool
	staccatissimo bool
	arpeggio      Arpeggio
	fermata       bool
	hidden        bool
	tie           *SpanRequest
	slur          *SpanRequest
}

func (o symbolOptions) validateNote() error {
	if o.tie != nil && !o.tie.IsSentinel() {
		if err := errors.ValidateSpan(o.tie.Span); err != nil {
			return err
		}
	}
	if o.slur != nil {
		if err := errors.ValidateSpan(o.slur.Span); err != nil {
			return err
		}
	}
	if o.staccato && o.staccatissimo {
		return errors.New(errors.ErrCodeInvalidArg, "staccato and staccatissimo are exclusive")
	}
	return nil
}

// Option configures a note group or rest.
type Option func(*symbolOptions)

// WithStem forces a stem direction.
func WithStem(s Stem) Option { return func(o *symbolOptions) { o.stem = s } }

// Staccato halves the played duration.
func Staccato() Option { return func(o *symbolOptions) { o.staccato = true } }

// Staccatissimo quarters the played duration.
func Staccatissimo() Option { return func(o *symbolOptions) { o.staccatissimo = true } }

// WithArpeggio rolls a chord.
func WithArpeggio(a Arpeggio) Option { return func(o *symbolOptions) { o.arpeggio = a } }

// Fermata holds the symbol.
func Fermata() Option { return func(o *symbolOptions) { o.fermata = true } }

// Hidden keeps a rest in the timeline without drawing it.
func Hidden() Option { return func(o *symbolOptions) { o.hidden = true } }

// Tie ties the notes across span note groups, or uses a sentinel.
func Tie(span int) Option { return TieWithAnchor(span, AnchorAuto) }

// TieWithAnchor is Tie with an explicit direction anchor.
func TieWithAnchor(span int, a ArcAnchor) Option {
	return func(o *symbolOptions) { o.tie = &SpanRequest{Span: span, Anchor: a} }
}

// Slur slurs span note groups.
func Slur(span int) Option { return SlurWithAnchor(span, AnchorAuto) }

// SlurWithAnchor is Slur with an explicit direction anchor.
func SlurWithAnchor(span int, a ArcAnchor) Option {
	return func(o *symbolOptions) { o.slur = &SpanRequest{Span: span, Anchor: a} }
}

// NoteGroup is a single note or a chord in one voice.
type NoteGroup struct {
	node
	col     *Column
	voice   int
	notes   []theory.Note
	rhythm  theory.Rhythm
	options symbolOptions

	stemDir Stem
	beam    *Beam
}

func (g *NoteGroup) Column() *Column           { return g.col }
func (g *NoteGroup) Voice() int                { return g.voice }
func (g *NoteGroup) Rhythm() theory.Rhythm     { return g.rhythm }
func (g *NoteGroup) Ticks() int                { return g.rhythm.Ticks() }
func (g *NoteGroup) HasFermata() bool          { return g.options.fermata }
func (g *NoteGroup) Notes() []theory.Note      { return g.notes }
func (g *NoteGroup) IsChord() bool             { return len(g.notes) > 1 }
func (g *NoteGroup) Staccato() bool            { return g.options.staccato }
func (g *NoteGroup) Staccatissimo() bool       { return g.options.staccatissimo }
func (g *NoteGroup) Arpeggio() Arpeggio        { return g.options.arpeggio }
func (g *NoteGroup) RequestedStem() Stem       { return g.options.stem }
func (g *NoteGroup) TieRequest() *SpanRequest  { return g.options.tie }
func (g *NoteGroup) SlurRequest() *SpanRequest { return g.options.slur }

// StemDirection returns the resolved stem direction, valid after Resolve.
func (g *NoteGroup) StemDirection() Stem { return g.stemDir }

// Beam returns the beam the group belongs to, or nil.
func (g *NoteGroup) Beam() *Beam { return g.beam }

// Rest is a silent symbol.
type Rest struct {
	node
	col     *Column
	voice   int
	rhythm  theory.Rhythm
	options symbolOptions
}

func (r *Rest) Column() *Column       { return r.col }
func (r *Rest) Voice() int            { return r.voice }
func (r *Rest) Rhythm() theory.Rhythm { return r.rhythm }
func (r *Rest) Ticks() int            { return r.rhythm.Ticks() }
func (r *Rest) HasFermata() bool      { return r.options.fermata }

// Hidden reports whether the rest is invisible.
func (r *Rest) Hidden() bool { return r.options.hidden }

// IsMeasureRest reports whether the rest alone fills its whole measure. Such
// rests are centered and take no column width.
func (r *Rest) IsMeasureRest() bool {
	m := r.col.measure
	return len(m.columns) == 1 && r.col.tick == 0 && r.Ticks() >= m.Ticks() && len(r.col.Symbols()) == 1
}

// Beam joins consecutive flagged note groups of one voice inside one beat.
type Beam struct {
	Groups []*NoteGroup
	Stem   Stem
}
