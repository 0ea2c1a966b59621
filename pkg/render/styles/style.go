package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/score/barline"
)

// Style draws every element of a laid-out score.
type Style interface {
	// RenderDefs writes SVG <defs> and page-wide style content.
	RenderDefs(buf *bytes.Buffer)
	// RenderLine writes the staff or tab lines of one notation line.
	RenderLine(buf *bytes.Buffer, l layout.Line)
	// RenderBarline writes a bar line spanning top to bottom at x.
	RenderBarline(buf *bytes.Buffer, t barline.Type, x, top, bottom, unit float64)
	// RenderClef writes the clef of a line at x.
	RenderClef(buf *bytes.Buffer, l layout.Line, x float64)
	// RenderKey writes a key signature of count sharps (or -count flats).
	// A zero count with a non-zero cancel draws naturals over the previous
	// key's accidentals.
	RenderKey(buf *bytes.Buffer, l layout.Line, x float64, count, cancel int)
	// RenderTime writes a time signature such as "3/4".
	RenderTime(buf *bytes.Buffer, l layout.Line, x float64, sig string)
	// RenderSymbol writes a note group or rest.
	RenderSymbol(buf *bytes.Buffer, l layout.Line, s layout.Symbol)
	// RenderBeam writes a beam.
	RenderBeam(buf *bytes.Buffer, b layout.Beam, unit float64)
	// RenderArc writes a tie or slur.
	RenderArc(buf *bytes.Buffer, a layout.Arc, unit float64)
	// RenderObject writes an annotation object.
	RenderObject(buf *bytes.Buffer, o layout.Object, unit float64)
	// RenderText writes free text such as titles and labels.
	RenderText(buf *bytes.Buffer, t layout.Text)
	// RenderBracket writes a system bracket.
	RenderBracket(buf *bytes.Buffer, s layout.Segment, unit float64)
}

// ByName returns the style registered under name.
func ByName(name string) (Style, error) {
	switch name {
	case "", "simple":
		return Simple{}, nil
	case "dark":
		return Dark(), nil
	}
	return nil, fmt.Errorf("unknown style %q (want simple or dark)", name)
}

// Names lists the registered style names.
func Names() []string { return []string{"simple", "dark"} }
