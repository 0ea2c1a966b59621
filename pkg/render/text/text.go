// Package text measures annotation and label text for the layout pipeline.
//
// Layout only needs advance widths and vertical extents, so the measurer
// works on font metrics alone and never rasterizes. [FontMeasurer] uses the
// embedded Go Regular face; runes the face has no glyph for fall back to an
// em or half-em advance depending on their East Asian width. [FixedMeasurer]
// gives deterministic metrics for tests.
package text

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/width"
)

// Metrics is the extent of a run of text at a given size.
type Metrics struct {
	Width   float64 `json:"width"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Height is Ascent + Descent.
func (m Metrics) Height() float64 { return m.Ascent + m.Descent }

// Measurer reports the extent of s drawn at size px.
type Measurer interface {
	Measure(s string, size float64) Metrics
}

// FontMeasurer measures with the Go Regular font. Faces are created lazily per
// size and cached. Safe for concurrent use.
type FontMeasurer struct {
	font *opentype.Font

	mu    sync.Mutex
	buf   sfnt.Buffer
	faces map[float64]font.Face
}

// NewFontMeasurer parses the embedded font.
func NewFontMeasurer() (*FontMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FontMeasurer{font: f, faces: make(map[float64]font.Face)}, nil
}

func (m *FontMeasurer) face(size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

// Measure implements Measurer.
func (m *FontMeasurer) Measure(s string, size float64) Metrics {
	face, err := m.face(size)
	if err != nil {
		return FixedMeasurer{}.Measure(s, size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	met := face.Metrics()
	var adv float64
	prev := rune(-1)
	for _, r := range s {
		a, ok := face.GlyphAdvance(r)
		if gi, err := m.font.GlyphIndex(&m.buf, r); err != nil || gi == 0 {
			ok = false
		}
		if !ok {
			adv += fallbackAdvance(r, size)
			prev = -1
			continue
		}
		if prev >= 0 {
			adv += float64(face.Kern(prev, r)) / 64
		}
		adv += float64(a) / 64
		prev = r
	}
	return Metrics{
		Width:   adv,
		Ascent:  float64(met.Ascent) / 64,
		Descent: float64(met.Descent) / 64,
	}
}

// Close releases the cached faces.
func (m *FontMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for size, f := range m.faces {
		f.Close()
		delete(m.faces, size)
	}
	return nil
}

func fallbackAdvance(r rune, size float64) float64 {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return size
	}
	return size * 0.5
}

// FixedMeasurer uses a constant advance per rune, as a fraction of the size.
// Wide runes count double. The zero value uses 0.6 / 0.8 / 0.2.
type FixedMeasurer struct {
	CharWidth float64
	Ascent    float64
	Descent   float64
}

// Measure implements Measurer.
func (f FixedMeasurer) Measure(s string, size float64) Metrics {
	cw, asc, desc := f.CharWidth, f.Ascent, f.Descent
	if cw == 0 {
		cw = 0.6
	}
	if asc == 0 {
		asc = 0.8
	}
	if desc == 0 {
		desc = 0.2
	}
	var w float64
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2 * cw * size
		default:
			w += cw * size
		}
	}
	return Metrics{Width: w, Ascent: asc * size, Descent: desc * size}
}
