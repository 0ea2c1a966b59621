package score

import (
	"slices"

	"github.com/google/uuid"
)

// Header is the optional title block drawn above the first row.
type Header struct {
	Title    string `json:"title,omitempty"`
	Composer string `json:"composer,omitempty"`
	Arranger string `json:"arranger,omitempty"`
}

// Empty reports whether the header has nothing to draw.
func (h Header) Empty() bool {
	return h.Title == "" && h.Composer == "" && h.Arranger == ""
}

// Document is the root of the score model.
//
// measures is always the concatenation of every row's measures in document
// order; it gives constant time access to a measure's neighbours.
type Document struct {
	id       uuid.UUID
	graph    *Graph
	lines    []LineConfig
	header   Header
	rows     []*Row
	measures []*Measure

	generation uint64
	dirty      bool
}

// New creates an empty document for a preset. Presets are always valid.
func New(preset StaffPreset) *Document {
	d, err := NewWithLines(preset.Lines())
	if err != nil {
		panic(err)
	}
	return d
}

// NewWithLines creates an empty document with an explicit line configuration.
func NewWithLines(lines []LineConfig) (*Document, error) {
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}
	return &Document{
		id:    uuid.New(),
		graph: newGraph(),
		lines: slices.Clone(lines),
		dirty: true,
	}, nil
}

// UUID identifies this document instance. It is stable for the lifetime of
// the document and is not derived from its content (see [Fingerprint]).
func (d *Document) UUID() uuid.UUID { return d.id }

// Graph returns the object arena.
func (d *Document) Graph() *Graph { return d.graph }

// Lines returns the notation line configuration shared by all rows.
func (d *Document) Lines() []LineConfig { return d.lines }

// Header returns the title block.
func (d *Document) Header() Header { return d.header }

// SetHeader replaces the title block.
func (d *Document) SetHeader(h Header) {
	d.header = h
	d.RequestLayout()
}

// Rows returns the rows in order.
func (d *Document) Rows() []*Row { return d.rows }

// Measures returns every measure in document order.
func (d *Document) Measures() []*Measure { return d.measures }

// Measure returns the measure at a document-wide index, or nil.
func (d *Document) Measure(i int) *Measure {
	if i < 0 || i >= len(d.measures) {
		return nil
	}
	return d.measures[i]
}

// AddRow starts a new row. The previous row gets its next-row reference.
func (d *Document) AddRow() *Row {
	r := &Row{node: d.graph.alloc(KindRow, 0), doc: d, index: len(d.rows)}
	d.graph.register(r)
	r.groups = groupLines(d.lines)
	if n := len(d.rows); n > 0 {
		d.rows[n-1].next = r
	}
	d.rows = append(d.rows, r)
	d.RequestLayout()
	return r
}

// AddMeasure appends a measure to the last row, creating the first row if
// needed.
func (d *Document) AddMeasure() *Measure {
	if len(d.rows) == 0 {
		d.AddRow()
	}
	return d.rows[len(d.rows)-1].AddMeasure()
}

// Columns returns every column in document order.
func (d *Document) Columns() []*Column {
	var out []*Column
	for _, m := range d.measures {
		out = append(out, m.columns...)
	}
	return out
}

// Annotations returns every annotation in document order.
func (d *Document) Annotations() []*Annotation {
	var out []*Annotation
	for _, c := range d.Columns() {
		out = append(out, c.annotations...)
	}
	return out
}

// RequestLayout marks the document dirty and bumps its generation.
func (d *Document) RequestLayout() {
	d.dirty = true
	d.generation++
}

// NeedsLayout reports whether any scope was modified since the last
// [Document.ClearLayoutRequest].
func (d *Document) NeedsLayout() bool { return d.dirty }

// Generation increases with every mutation.
func (d *Document) Generation() uint64 { return d.generation }

// ClearLayoutRequest resets every dirty flag. Called by the layout pipeline
// once it has rebuilt geometry.
func (d *Document) ClearLayoutRequest() {
	d.dirty = false
	for _, r := range d.rows {
		r.dirty = false
		for _, m := range r.measures {
			m.dirty = false
		}
	}
}

// RowGroup is a run of consecutive lines sharing an instrument tag.
type RowGroup struct {
	Instrument string `json:"instrument"`
	First      int    `json:"first"`
	Last       int    `json:"last"`
}

func groupLines(lines []LineConfig) []RowGroup {
	var groups []RowGroup
	for i, l := range lines {
		if l.Instrument == "" {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].Instrument == l.Instrument && groups[n-1].Last == i-1 {
			groups[n-1].Last = i
			continue
		}
		groups = append(groups, RowGroup{Instrument: l.Instrument, First: i, Last: i})
	}
	return groups
}

// Row is one system of the score: every notation line across a run of
// measures.
type Row struct {
	node
	doc      *Document
	index    int
	groups   []RowGroup
	measures []*Measure
	next     *Row
	dirty    bool
}

// Index returns the row's position in the document.
func (r *Row) Index() int { return r.index }

// Groups returns the instrument groups of the row.
func (r *Row) Groups() []RowGroup { return r.groups }

// Measures returns the row's measures in order.
func (r *Row) Measures() []*Measure { return r.measures }

// Next returns the following row, or nil for the last row.
func (r *Row) Next() *Row { return r.next }

// NeedsLayout reports whether the row or one of its measures was modified.
func (r *Row) NeedsLayout() bool { return r.dirty }

// RequestLayout marks the row and the document dirty.
func (r *Row) RequestLayout() {
	r.dirty = true
	r.doc.RequestLayout()
}

// AddMeasure appends a measure to the row. Appending to an earlier row
// inserts into the document-wide measure list and renumbers what follows.
func (r *Row) AddMeasure() *Measure {
	d := r.doc
	pos := 0
	for _, row := range d.rows[:r.index+1] {
		pos += len(row.measures)
	}
	m := &Measure{
		node: d.graph.alloc(KindMeasure, r.id),
		row:  r,
	}
	d.graph.register(m)
	r.measures = append(r.measures, m)
	d.measures = slices.Insert(d.measures, pos, m)
	for i := pos; i < len(d.measures); i++ {
		d.measures[i].index = i
	}
	m.RequestLayout()
	return m
}
