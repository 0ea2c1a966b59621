package audio

import (
	"testing"
	"time"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	r.PlayNote("C4", 0.5, 0.6)
	r.SetPosition(time.Second)
	r.PlayNote("E4", 0.25, 0.3)
	r.Stop()

	notes := r.Notes()
	if len(notes) != 2 {
		t.Fatalf("Notes() len = %d, want 2", len(notes))
	}
	if notes[0].At != 0 || notes[1].At != time.Second {
		t.Errorf("At = %v, %v, want 0, 1s", notes[0].At, notes[1].At)
	}
	if notes[1].Name != "E4" || notes[1].Volume != 0.3 {
		t.Errorf("second note = %+v", notes[1])
	}
	if r.Stops() != 1 {
		t.Errorf("Stops() = %d, want 1", r.Stops())
	}
}

func TestMultiForwardsPosition(t *testing.T) {
	var a, b Recorder
	m := Multi(&a, Null{}, &b)
	m.(Positioner).SetPosition(2 * time.Second)
	m.PlayNote("G4", 1, 1)
	m.Stop()

	for i, r := range []*Recorder{&a, &b} {
		notes := r.Notes()
		if len(notes) != 1 || notes[0].At != 2*time.Second {
			t.Errorf("recorder %d notes = %+v", i, notes)
		}
		if r.Stops() != 1 {
			t.Errorf("recorder %d Stops() = %d, want 1", i, r.Stops())
		}
	}
}
