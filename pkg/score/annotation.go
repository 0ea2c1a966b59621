package score

import (
	"math"

	"github.com/matzehuels/staffline/pkg/errors"
)

// AnnotationKind classifies text annotations.
type AnnotationKind int

const (
	AnnotationDynamics AnnotationKind = iota
	AnnotationTempo
	AnnotationLabel
	AnnotationLyrics
)

func (k AnnotationKind) String() string {
	switch k {
	case AnnotationDynamics:
		return "dynamics"
	case AnnotationTempo:
		return "tempo"
	case AnnotationLabel:
		return "label"
	case AnnotationLyrics:
		return "lyrics"
	}
	return "unknown"
}

// Position places an annotation above or below its notation line.
type Position int

const (
	Above Position = iota
	Below
)

func (p Position) String() string {
	if p == Below {
		return "below"
	}
	return "above"
}

// Infinity is an extension length that runs until a stop condition.
const Infinity = math.MaxInt

// Extension is the horizontal line following an annotation.
type Extension struct {
	Length  int  `json:"length"`
	Visible bool `json:"visible"`
	Dashed  bool `json:"dashed"`
}

// Annotation is text anchored to a column on one notation line.
type Annotation struct {
	node
	col   *Column
	kind  AnnotationKind
	text  string
	line  int
	pos   Position
	verse int
	ext   *Extension
}

// AnnotationOption configures an annotation.
type AnnotationOption func(*Annotation)

// OnLine anchors the annotation to notation line i instead of line 0.
func OnLine(i int) AnnotationOption { return func(a *Annotation) { a.line = i } }

// At overrides the default position of the annotation kind.
func At(p Position) AnnotationOption { return func(a *Annotation) { a.pos = p } }

// Verse sets the lyric verse number (0-based).
func Verse(n int) AnnotationOption { return func(a *Annotation) { a.verse = n } }

// Extend gives the annotation an extension of length ticks (or Infinity).
func Extend(length int, visible bool) AnnotationOption {
	return func(a *Annotation) { a.ext = &Extension{Length: length, Visible: visible, Dashed: true} }
}

// ExtendSolid is Extend with a solid line.
func ExtendSolid(length int) AnnotationOption {
	return func(a *Annotation) { a.ext = &Extension{Length: length, Visible: true} }
}

func defaultPosition(k AnnotationKind) Position {
	switch k {
	case AnnotationDynamics, AnnotationLyrics:
		return Below
	}
	return Above
}

// AddAnnotation anchors a text annotation to the column.
func (c *Column) AddAnnotation(kind AnnotationKind, text string, opts ...AnnotationOption) (*Annotation, error) {
	if text == "" {
		return nil, errors.New(errors.ErrCodeInvalidArg, "annotation text is empty")
	}
	doc := c.measure.Document()
	a := &Annotation{
		node: doc.graph.alloc(KindAnnotation, c.id),
		col:  c,
		kind: kind,
		text: text,
		pos:  defaultPosition(kind),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.line < 0 || a.line >= len(doc.lines) {
		return nil, errors.New(errors.ErrCodeInvalidArg, "line %d out of range", a.line)
	}
	if a.verse < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArg, "verse %d out of range", a.verse)
	}
	doc.graph.register(a)
	doc.graph.anchor(c.id, a.id)
	c.annotations = append(c.annotations, a)
	c.measure.RequestLayout()
	return a, nil
}

// Column returns the anchor column.
func (a *Annotation) Column() *Column { return a.col }

// Kind returns the annotation kind.
func (a *Annotation) Kind() AnnotationKind { return a.kind }

// Text returns the annotation text.
func (a *Annotation) Text() string { return a.text }

// Line returns the notation line index.
func (a *Annotation) Line() int { return a.line }

// Position returns Above or Below.
func (a *Annotation) Position() Position { return a.pos }

// Verse returns the lyric verse.
func (a *Annotation) Verse() int { return a.verse }

// Extension returns the extension, or nil.
func (a *Annotation) Extension() *Extension { return a.ext }

// SameGroup reports whether b stacks in the same layout group as a: same
// kind, line, position and verse.
func (a *Annotation) SameGroup(b *Annotation) bool {
	return a.kind == b.kind && a.line == b.line && a.pos == b.pos && a.verse == b.verse
}
