package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/observability"
	"github.com/matzehuels/staffline/pkg/render/text"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/arc"
	"github.com/matzehuels/staffline/pkg/score/barline"
)

// Default geometry.
const (
	DefaultWidth  = 1000.0
	DefaultUnit   = 8.0
	DefaultMargin = 2.0 // staff spaces
)

// Layout is the positioned geometry of a whole document.
type Layout struct {
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Unit       float64    `json:"unit"`
	Generation uint64     `json:"generation"`
	Regions    RowRegions `json:"regions"`
	Header     []Text     `json:"header,omitempty"`
	Rows       []Row      `json:"rows"`
}

// RowRegions holds the horizontal regions shared by every row.
type RowRegions struct {
	LabelWidth   float64 `json:"label_width"`
	StaffLeft    float64 `json:"staff_left"`
	StaffWidth   float64 `json:"staff_width"`
	NaturalWidth float64 `json:"natural_width"`
}

// Text is a positioned run of text. Y is the baseline.
type Text struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Anchor string  `json:"anchor"`
	Style  string  `json:"style,omitempty"`
	Rect   Rect    `json:"rect"`
}

// Row is one laid-out system.
type Row struct {
	ID       score.ID  `json:"id"`
	Index    int       `json:"index"`
	Rect     Rect      `json:"rect"`
	Lines    []Line    `json:"lines"`
	Labels   []Text    `json:"labels,omitempty"`
	Brackets []Segment `json:"brackets,omitempty"`
	Measures []Measure `json:"measures"`
	Arcs     []Arc     `json:"arcs,omitempty"`
	Beams    []Beam    `json:"beams,omitempty"`
	Objects  []Object  `json:"objects,omitempty"`
}

// Line is one notation line of a row.
type Line struct {
	Index      int     `json:"index"`
	Tab        bool    `json:"tab,omitempty"`
	Clef       string  `json:"clef,omitempty"`
	OctaveDown bool    `json:"octave_down,omitempty"`
	Top        float64 `json:"top"`
	Spacing    float64 `json:"spacing"`
	Count      int     `json:"count"`
	Left       float64 `json:"left"`
	Right      float64 `json:"right"`
	Rect       Rect    `json:"rect"`
}

// Bottom returns the y of the lowest staff line.
func (l Line) Bottom() float64 { return l.Top + float64(l.Count-1)*l.Spacing }

// LineY returns the y of staff line i, counted from the top.
func (l Line) LineY(i int) float64 { return l.Top + float64(i)*l.Spacing }

// Measure is a laid-out measure across every line of its row.
type Measure struct {
	ID              score.ID     `json:"id"`
	Index           int          `json:"index"`
	Rect            Rect         `json:"rect"`
	SolidWidth      float64      `json:"solid_width"`
	MinColumnsWidth float64      `json:"min_columns_width"`
	ColumnsWidth    float64      `json:"columns_width"`
	ColumnsLeft     float64      `json:"columns_left"`
	LeftBar         barline.Type `json:"left_bar"`
	RightBar        barline.Type `json:"right_bar"`
	ClefX           float64      `json:"clef_x,omitempty"`
	ShowClef        bool         `json:"show_clef,omitempty"`
	KeyX            float64      `json:"key_x,omitempty"`
	KeyCount        int          `json:"key_count,omitempty"`
	KeyCancel       int          `json:"key_cancel,omitempty"`
	ShowKey         bool         `json:"show_key,omitempty"`
	TimeX           float64      `json:"time_x,omitempty"`
	Time            string       `json:"time,omitempty"`
	Columns         []Column     `json:"columns"`
}

// Column is a laid-out rhythm column.
type Column struct {
	ID      score.ID `json:"id"`
	Index   int      `json:"index"`
	Tick    int      `json:"tick"`
	Rect    Rect     `json:"rect"`
	HeadX   float64  `json:"head_x"`
	Symbols []Symbol `json:"symbols,omitempty"`
}

// Symbol is a note group or rest drawn on one line.
type Symbol struct {
	ID            score.ID `json:"id"`
	Rest          bool     `json:"rest,omitempty"`
	Voice         int      `json:"voice"`
	Line          int      `json:"line"`
	Rect          Rect     `json:"rect"`
	Length        int      `json:"length"`
	Heads         []Head   `json:"heads,omitempty"`
	Stem          *Segment `json:"stem,omitempty"`
	StemUp        bool     `json:"stem_up,omitempty"`
	Flags         int      `json:"flags,omitempty"`
	Dots          []Point  `json:"dots,omitempty"`
	Staccato      *Point   `json:"staccato,omitempty"`
	Staccatissimo bool     `json:"staccatissimo,omitempty"`
	Arpeggio      *Segment `json:"arpeggio,omitempty"`
	Hidden        bool     `json:"hidden,omitempty"`
}

// Head is one note head, or one fret number on a tab line.
type Head struct {
	Note        string    `json:"note"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Filled      bool      `json:"filled,omitempty"`
	Accidental  string    `json:"accidental,omitempty"`
	AccidentalX float64   `json:"accidental_x,omitempty"`
	Ledgers     []Segment `json:"ledgers,omitempty"`
	Fret        int       `json:"fret"`
}

// Arc is a tie or slur curve. Height is the bulge toward Up or down.
type Arc struct {
	Kind   string  `json:"kind"`
	Line   int     `json:"line"`
	From   Point   `json:"from"`
	To     Point   `json:"to"`
	Up     bool    `json:"up"`
	Height float64 `json:"height"`
	Rect   Rect    `json:"rect"`
}

// Beam joins the stems of beamed note groups.
type Beam struct {
	Line    int     `json:"line"`
	Segment Segment `json:"segment"`
	Count   int     `json:"count"`
	Up      bool    `json:"up"`
}

// Object is an annotation placed by a layout group.
type Object struct {
	ID        score.ID       `json:"id,omitempty"`
	Group     GroupID        `json:"group"`
	Line      int            `json:"line"`
	Position  score.Position `json:"position"`
	Text      *Text          `json:"text,omitempty"`
	Glyph     string         `json:"glyph,omitempty"`
	Rect      Rect           `json:"rect"`
	Extension *Segment       `json:"extension,omitempty"`
	Dashed    bool           `json:"dashed,omitempty"`
	Bracket   *Bracket       `json:"bracket,omitempty"`
}

// Bracket is the frame of an ending.
type Bracket struct {
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
	Y         float64 `json:"y"`
	Hook      float64 `json:"hook"`
	OpenLeft  bool    `json:"open_left,omitempty"`
	OpenRight bool    `json:"open_right,omitempty"`
}

// Option configures Build.
type Option func(*config)

type config struct {
	width    float64
	unit     float64
	margin   float64
	header   bool
	measurer text.Measurer
	groups   []GroupConfig
	logger   *log.Logger
}

// WithWidth sets the target page width in pixels.
func WithWidth(w float64) Option { return func(c *config) { c.width = w } }

// WithUnit sets the staff space in pixels.
func WithUnit(u float64) Option { return func(c *config) { c.unit = u } }

// WithMeasurer sets the text measurer.
func WithMeasurer(m text.Measurer) Option { return func(c *config) { c.measurer = m } }

// WithoutHeader skips the title block.
func WithoutHeader() Option { return func(c *config) { c.header = false } }

// WithGroups replaces the layout group configuration.
func WithGroups(g []GroupConfig) Option { return func(c *config) { c.groups = g } }

// WithLogger sets the logger for layout diagnostics.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

func newConfig(opts ...Option) config {
	c := config{
		width:  DefaultWidth,
		unit:   DefaultUnit,
		margin: DefaultMargin,
		header: true,
		groups: DefaultGroups(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.unit <= 0 {
		c.unit = DefaultUnit
	}
	if c.width <= 0 {
		c.width = DefaultWidth
	}
	if c.measurer == nil {
		c.measurer = text.FixedMeasurer{}
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return c
}

// Build computes the layout of d. It fails only on model errors found while
// resolving arcs.
func Build(ctx context.Context, d *score.Document, opts ...Option) (*Layout, error) {
	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, len(d.Rows()), len(d.Measures()))
	l, err := build(d, newConfig(opts...))
	observability.Layout().OnLayoutComplete(ctx, time.Since(start), err)
	return l, err
}

func build(d *score.Document, cfg config) (*Layout, error) {
	score.Resolve(d)
	arcs, err := arc.Resolve(d)
	if err != nil {
		return nil, err
	}
	b := newBuilder(d, cfg, arcs)
	b.naturalPass()
	b.stretchPass()
	l := b.finish()
	l.Generation = d.Generation()
	cfg.logger.Debug("computed layout",
		"rows", len(l.Rows), "measures", len(d.Measures()), "arcs", len(arcs),
		"width", l.Width, "height", l.Height)
	return l, nil
}

// Engine caches the layout of one document and rebuilds it only when the
// document requests a layout. Not safe for concurrent use, like the document
// it lays out.
type Engine struct {
	opts   []Option
	doc    *score.Document
	cached *Layout
}

// NewEngine creates an engine with fixed build options.
func NewEngine(opts ...Option) *Engine {
	return &Engine{opts: opts}
}

// Layout returns the current geometry of d, rebuilding if d is dirty.
func (e *Engine) Layout(ctx context.Context, d *score.Document) (*Layout, error) {
	if e.cached != nil && e.doc == d && !d.NeedsLayout() && e.cached.Generation == d.Generation() {
		return e.cached, nil
	}
	l, err := Build(ctx, d, e.opts...)
	if err != nil {
		return nil, err
	}
	d.ClearLayoutRequest()
	e.doc, e.cached = d, l
	return l, nil
}
