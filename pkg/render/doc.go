// Package render turns laid-out scores into output formats.
//
// # Overview
//
// Rendering is split into small packages that each own one step:
//
//   - [text]: text measurement used by the layout
//   - [layout]: positioned geometry of a score document
//   - [styles]: SVG emission for every notation element
//   - [sink]: SVG, JSON, PNG and PDF output of a layout
//   - [navgraph]: Graphviz diagram of the playback path
//
// # Format Conversion
//
// [Convert] pipes an SVG document through the external rsvg-convert tool
// (from librsvg). [ToPDF] and [ToPNG] are shorthands without a context.
//
//	svg := sink.RenderSVG(l)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.Convert(ctx, svg, render.Target{Format: "png", Scale: 2})
//
// [text]: github.com/matzehuels/staffline/pkg/render/text
// [layout]: github.com/matzehuels/staffline/pkg/render/layout
// [styles]: github.com/matzehuels/staffline/pkg/render/styles
// [sink]: github.com/matzehuels/staffline/pkg/render/sink
// [navgraph]: github.com/matzehuels/staffline/pkg/render/navgraph
package render
