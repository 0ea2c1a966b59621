// Package navgraph renders the playback path of a score as a Graphviz
// diagram.
//
// Every measure becomes a box labelled with its number and navigation
// marks. Edges follow the resolved play sequence: an edge is labelled with
// the step numbers at which playback takes it, and edges that do not lead
// to the next measure in the document (repeats, endings, D.C./D.S. jumps)
// are dashed. Measures that are never played are greyed out.
//
// # Usage
//
//	plan, err := player.Resolve(doc)
//	if err != nil {
//	    return err
//	}
//	dot := navgraph.ToDOT(doc, plan.Visits, navgraph.Options{Detailed: true})
//	svg, err := navgraph.RenderSVG(ctx, dot)
//
// PDF and PNG output go through [render.Convert] and need
// rsvg-convert on the PATH.
package navgraph
