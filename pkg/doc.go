// Package pkg holds the libraries behind staffline, a score layout engine and
// playback sequencer.
//
// # Overview
//
// A score is built in memory, laid out into rows of positioned notation,
// rendered to SVG, PNG, PDF or JSON, and played back by walking its
// navigation markers (repeats, endings, segno, coda, fine) in order:
//
//	score.Document (rows, measures, columns, groups)
//	         ↓
//	    [render/layout] (widths, staff positions, arcs, extensions)
//	         ↓
//	    [render/sink] (SVG/PNG/PDF/JSON)
//
//	score.Document
//	         ↓
//	    [player] Resolve (visit order, tempo ramps, fermatas)
//	         ↓
//	    [audio] sinks (MIDI file, log, live TUI)
//
// # Quick Start
//
//	doc := score.New(score.PresetTreble)
//	m := doc.AddMeasure()
//	m.AddNote(0, "C4", "4")
//	m.AddNote(0, "E4", "4")
//	m.AddNote(0, "G4", "2")
//	m.EndSong()
//
//	l, _ := layout.Build(ctx, doc, layout.WithWidth(800))
//	svg := sink.RenderSVG(l)
//
//	plan, _ := player.Resolve(doc)
//	for _, s := range plan.Steps {
//	    fmt.Println(s.Start, s.Notes)
//	}
//
// # Packages
//
// [theory] - Pitches, rhythms, tempo, time and key signatures.
//
// [score] - The document model with its id-addressed rows, measures, columns
// and note groups. Subpackages resolve ties and slurs ([score/arc]), bar line
// glyphs ([score/barline]) and annotation extensions ([score/extension]).
//
// [render] - Layout and output. [render/text] measures strings,
// [render/styles] draws glyphs, [render/navgraph] diagrams the playback path
// through Graphviz.
//
// [player] - Plan resolution and a clock-driven play/pause/stop engine.
//
// [audio] - The sound output interface, with a Standard MIDI File recorder in
// [audio/midi].
//
// [pipeline] - Options, caching and the layout → render → sequence stages
// shared by the CLI and the HTTP server.
//
// [cache] - File, Redis and no-op caches keyed by document fingerprint.
//
// [errors] - Code-tagged errors returned by every package.
//
// [observability] - Hooks for layout, render and playback events.
//
// [buildinfo] - Version information stamped at link time.
//
// [theory]: github.com/matzehuels/staffline/pkg/theory
// [score]: github.com/matzehuels/staffline/pkg/score
// [score/arc]: github.com/matzehuels/staffline/pkg/score/arc
// [score/barline]: github.com/matzehuels/staffline/pkg/score/barline
// [score/extension]: github.com/matzehuels/staffline/pkg/score/extension
// [render]: github.com/matzehuels/staffline/pkg/render
// [render/layout]: github.com/matzehuels/staffline/pkg/render/layout
// [render/sink]: github.com/matzehuels/staffline/pkg/render/sink
// [render/text]: github.com/matzehuels/staffline/pkg/render/text
// [render/styles]: github.com/matzehuels/staffline/pkg/render/styles
// [render/navgraph]: github.com/matzehuels/staffline/pkg/render/navgraph
// [player]: github.com/matzehuels/staffline/pkg/player
// [audio]: github.com/matzehuels/staffline/pkg/audio
// [audio/midi]: github.com/matzehuels/staffline/pkg/audio/midi
// [pipeline]: github.com/matzehuels/staffline/pkg/pipeline
// [cache]: github.com/matzehuels/staffline/pkg/cache
// [errors]: github.com/matzehuels/staffline/pkg/errors
// [observability]: github.com/matzehuels/staffline/pkg/observability
// [buildinfo]: github.com/matzehuels/staffline/pkg/buildinfo
package pkg
