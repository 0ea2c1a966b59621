// Package layout turns a score document into positioned geometry.
//
// # Pipeline
//
// [Build] is a pure function of the document snapshot:
//
//  1. Resolve running parameters, stems and beams (score.Resolve) and
//     recreate every tie and slur (arc.Resolve).
//  2. Natural width: each measure computes its solid width (bar lines, clef,
//     key and time signature) and the minimum width of every rhythm column.
//     The widest natural row and the widest instrument label are shared by
//     all rows through [RowRegions].
//  3. Stretch: every row gets the same staff width; what is left after the
//     solid parts is distributed over the measures in proportion to their
//     minimum column widths. A row whose columns need no width at all (a
//     lone whole-measure rest) splits the space evenly instead of dividing
//     by zero. Widths are clamped, never negative or NaN.
//  4. Static shapes (heads, stems, beams, rests, arcs) are placed per
//     notation line, then layout groups stack annotations above and below
//     each line without overlapping them (see [GroupConfig]).
//  5. Notation lines stack vertically with fixed gaps, tighter inside a grand
//     staff, and rows stack under the optional header.
//
// [Engine] caches the result and only rebuilds when the document reports
// that a layout was requested.
//
// # Coordinates
//
// All values are in pixels; one staff space is the configured unit. y grows
// downward.
package layout
