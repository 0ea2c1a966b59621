// Package score holds the document model: rows of measures, rhythm columns,
// note groups, rests and the annotations anchored to them.
//
// # Structure
//
// Ownership is strictly tree shaped:
//
//	Document → Row → Measure → Column → Symbol (NoteGroup | Rest)
//
// Every object is registered in the document's [Graph] under a stable integer
// [ID]. Cross references that are not ownership (annotation anchors, tie and
// slur chains) live in the graph's adjacency tables instead of in the objects
// themselves, and are rebuilt from the tree on every layout.
//
// # Building
//
// The model is mutated through immediate calls:
//
//	doc := score.New(score.PresetTreble)
//	m := doc.AddMeasure()
//	m.SetTimeSignature(theory.MustParseTimeSignature("3/4"))
//	m.AddNote(0, "C4", "4", score.Staccato())
//	m.AddChord(0, []string{"C4", "E4", "G4"}, "2", score.Tie(2))
//
// Every mutation returns an *errors.Error on invalid input and marks the
// touched scope dirty (see [Document.RequestLayout]).
//
// # Resolution
//
// [Resolve] recomputes document-wide derived state that depends on
// neighbouring measures: running key, time signature and tempo, stem
// directions and beams. Layout and playback call it before reading the model.
package score
