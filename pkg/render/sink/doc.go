// Package sink writes a computed [layout.Layout] to an output format.
//
//   - SVG: [RenderSVG], drawn through a [styles.Style]
//   - JSON: [RenderJSON], the full geometry for external tools
//   - PDF: [RenderPDF] (requires rsvg-convert)
//   - PNG: [RenderPNG] (requires rsvg-convert)
//
// # Draw failures
//
// Every element is drawn in isolation. If a style panics on one element the
// partial output of that element is discarded, the failure is logged at error
// level and drawing continues, so one bad glyph never loses the page.
//
// # Interaction
//
// [WithInteraction] adds a small stylesheet and script that highlight note
// groups under the pointer. Every drawn symbol and annotation carries its
// score object id in a data-id attribute, matching [layout.Layout.Pick].
//
// [layout.Layout]: github.com/matzehuels/staffline/pkg/render/layout.Layout
// [layout.Layout.Pick]: github.com/matzehuels/staffline/pkg/render/layout.Layout.Pick
// [styles.Style]: github.com/matzehuels/staffline/pkg/render/styles.Style
package sink
