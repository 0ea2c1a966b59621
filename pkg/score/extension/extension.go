// Package extension resolves how far an annotation's extension reaches.
//
// A range starts at the annotation's column and walks forward, accumulating
// column durations until the requested length is covered. It stops early at
// the next annotation of the same layout group on the same line, or at a
// measure boundary carrying a navigation break: end of song, end of section,
// end repeat, or an ending on either side. It never scans past the end of the
// document.
//
// Ranges are recomputed on demand and never cached across layouts.
package extension

import "github.com/matzehuels/staffline/pkg/score"

// Stop says why a range ended.
type Stop int

const (
	// StopLength means the tick budget was used up.
	StopLength Stop = iota
	// StopAnnotation means a later annotation of the same group was reached.
	StopAnnotation
	// StopNavigation means a measure boundary with a navigation break.
	StopNavigation
	// StopDocumentEnd means the last column was reached.
	StopDocumentEnd
)

func (s Stop) String() string {
	switch s {
	case StopLength:
		return "length"
	case StopAnnotation:
		return "annotation"
	case StopNavigation:
		return "navigation"
	case StopDocumentEnd:
		return "document-end"
	}
	return "unknown"
}

// Range is the resolved column span of an extension.
type Range struct {
	Columns []*score.Column
	Ticks   int
	Stop    Stop
	// StopObject is the annotation or measure that ended the range, if any.
	StopObject score.Object
}

// First returns the first column of the range.
func (r Range) First() *score.Column { return r.Columns[0] }

// Last returns the last column of the range.
func (r Range) Last() *score.Column { return r.Columns[len(r.Columns)-1] }

// Weights returns, for every column, its duration as a fraction of the whole
// range. Used for tick-weighted interpolation.
func (r Range) Weights() []float64 {
	w := make([]float64, len(r.Columns))
	if r.Ticks <= 0 {
		return w
	}
	for i, c := range r.Columns {
		w[i] = float64(c.Duration()) / float64(r.Ticks)
	}
	return w
}

// Resolve computes the range of a's extension. An annotation without an
// extension, or with a length of zero or less, covers its own column only.
func Resolve(a *score.Annotation) Range {
	length := 0
	if ext := a.Extension(); ext != nil {
		length = ext.Length
	}
	return Walk(a.Column(), length, func(c *score.Column) score.Object {
		for _, b := range c.Annotations() {
			if b != a && b.SameGroup(a) {
				return b
			}
		}
		return nil
	})
}

// Walk scans forward from start for length ticks (score.Infinity for no
// limit). stopAt is asked about every column after start and may end the
// range by returning a non-nil object.
func Walk(start *score.Column, length int, stopAt func(*score.Column) score.Object) Range {
	r := Range{Columns: []*score.Column{start}, Ticks: start.Duration()}
	if length <= 0 {
		r.Stop = StopLength
		return r
	}
	cur := start
	for {
		if r.Ticks >= length {
			r.Stop = StopLength
			return r
		}
		next, boundary := advance(cur)
		if boundary != nil {
			r.Stop, r.StopObject = StopNavigation, boundary
			return r
		}
		if next == nil {
			r.Stop = StopDocumentEnd
			return r
		}
		if stopAt != nil {
			if obj := stopAt(next); obj != nil {
				r.Stop, r.StopObject = StopAnnotation, obj
				return r
			}
		}
		r.Columns = append(r.Columns, next)
		r.Ticks += next.Duration()
		cur = next
	}
}

// advance returns the column after c. When the step crosses a measure
// boundary that breaks navigation, it returns the measure that ends the
// range instead.
func advance(c *score.Column) (*score.Column, *score.Measure) {
	m := c.Measure()
	if c.Index()+1 < len(m.Columns()) {
		return m.Columns()[c.Index()+1], nil
	}
	for {
		next := m.Next()
		if Breaks(m, next) {
			return nil, m
		}
		if next == nil {
			return nil, nil
		}
		if len(next.Columns()) > 0 {
			return next.Columns()[0], nil
		}
		m = next
	}
}

// Breaks reports whether an extension may not continue from m into next.
func Breaks(m, next *score.Measure) bool {
	if m.IsEndSong() || m.IsEndSection() || m.HasNavigation(score.NavEndRepeat) || m.Ending() != nil {
		return true
	}
	return next != nil && next.Ending() != nil
}
