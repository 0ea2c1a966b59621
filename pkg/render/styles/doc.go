// Package styles draws notation primitives into an SVG buffer.
//
// A [Style] receives positioned geometry from the layout package and emits
// SVG elements for it. Sinks call one method per element and decide the
// order; styles never compute positions of their own beyond glyph outlines.
//
// Two palettes ship with the package:
//
//   - [Simple]: black ink on a transparent page
//   - [Dark]: light ink for dark backgrounds
//
// [ByName] maps a configuration string to a style:
//
//	style, err := styles.ByName("simple")
//	svg := sink.RenderSVG(l, sink.WithStyle(style))
//
// Glyphs that have no simple outline (clefs, accidentals, segno, coda) are
// written as Unicode music symbols in a text element with a music font stack,
// so the output needs no embedded font.
package styles
