package player

import (
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/staffline/pkg/score"
)

// measures builds a treble document of n measures holding one whole note
// each.
func measures(t *testing.T, n int) (*score.Document, []*score.Measure) {
	t.Helper()
	d := score.New(score.PresetTreble)
	ms := make([]*score.Measure, n)
	for i := range ms {
		ms[i] = d.AddMeasure()
		if _, err := ms[i].AddNote(0, "C4", "1"); err != nil {
			t.Fatal(err)
		}
	}
	return d, ms
}

func nav(t *testing.T, m *score.Measure, navs ...score.Navigation) {
	t.Helper()
	for _, n := range navs {
		if err := m.AddNavigation(n); err != nil {
			t.Fatal(err)
		}
	}
}

func ending(t *testing.T, m *score.Measure, passages ...int) {
	t.Helper()
	if err := m.AddEnding(passages...); err != nil {
		t.Fatal(err)
	}
}

func path(visits []Visit) []int {
	out := make([]int, len(visits))
	for i, v := range visits {
		out[i] = v.Measure.Index()
	}
	return out
}

func TestSequenceWithoutNavigation(t *testing.T) {
	d, _ := measures(t, 4)
	got := Sequence(d)
	if want := []int{0, 1, 2, 3}; !slices.Equal(path(got), want) {
		t.Errorf("Sequence() = %v, want %v", path(got), want)
	}
	for _, v := range got {
		if v.Pass != 1 {
			t.Errorf("measure %d pass = %d, want 1", v.Measure.Index(), v.Pass)
		}
	}
}

func TestSequenceRepeat(t *testing.T) {
	tests := []struct {
		playCount int
		want      []int
	}{
		{2, []int{0, 1, 2, 1, 2, 3}},
		{3, []int{0, 1, 2, 1, 2, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.playCount), func(t *testing.T) {
			d, ms := measures(t, 4)
			nav(t, ms[1], score.NavStartRepeat)
			if err := ms[2].AddEndRepeat(tt.playCount); err != nil {
				t.Fatal(err)
			}
			got := Sequence(d)
			if !slices.Equal(path(got), tt.want) {
				t.Errorf("Sequence() = %v, want %v", path(got), tt.want)
			}
			if last := got[len(got)-2]; last.Pass != tt.playCount {
				t.Errorf("last pass of measure 2 = %d, want %d", last.Pass, tt.playCount)
			}
		})
	}
}

func TestSequenceRepeatFromStart(t *testing.T) {
	d, ms := measures(t, 3)
	nav(t, ms[1], score.NavEndRepeat)
	if got, want := path(Sequence(d)), []int{0, 1, 0, 1, 2}; !slices.Equal(got, want) {
		t.Errorf("Sequence() = %v, want %v", got, want)
	}
}

func TestSequenceEndings(t *testing.T) {
	d, ms := measures(t, 5)
	nav(t, ms[0], score.NavStartRepeat)
	ending(t, ms[2], 1)
	nav(t, ms[2], score.NavEndRepeat)
	ending(t, ms[3], 2)

	got := path(Sequence(d))
	if want := []int{0, 1, 2, 0, 1, 3, 4}; !slices.Equal(got, want) {
		t.Fatalf("Sequence() = %v, want %v", got, want)
	}
	// Each pass plays exactly one of the two alternatives.
	first, second := got[:3], got[3:6]
	if slices.Contains(first, 3) || slices.Contains(second, 2) {
		t.Errorf("passes %v and %v share an ending", first, second)
	}
}

func TestSequenceEndingSharedPassages(t *testing.T) {
	d, ms := measures(t, 4)
	nav(t, ms[0], score.NavStartRepeat)
	ending(t, ms[1], 1, 2)
	if err := ms[1].AddEndRepeat(3); err != nil {
		t.Fatal(err)
	}
	ending(t, ms[2], 3)

	if got, want := path(Sequence(d)), []int{0, 1, 0, 1, 0, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("Sequence() = %v, want %v", got, want)
	}
}

func TestSequenceThreeEndings(t *testing.T) {
	d, ms := measures(t, 5)
	nav(t, ms[0], score.NavStartRepeat)
	for i, pass := range []int{1, 2} {
		ending(t, ms[i+1], pass)
		if err := ms[i+1].AddEndRepeat(3); err != nil {
			t.Fatal(err)
		}
	}
	ending(t, ms[3], 3)

	got := Sequence(d)
	if want := []int{0, 1, 0, 2, 0, 3, 4}; !slices.Equal(path(got), want) {
		t.Fatalf("Sequence() = %v, want %v", path(got), want)
	}
	for _, v := range got[1:] {
		if v.Measure.Ending() != nil && v.Pass != 1 {
			t.Errorf("ending at measure %d played %d times, want once", v.Measure.Index(), v.Pass)
		}
	}
}

func TestSequenceOuterRepeatReentersInner(t *testing.T) {
	d, ms := measures(t, 5)
	nav(t, ms[1], score.NavStartRepeat)
	if err := ms[2].AddEndRepeat(2); err != nil {
		t.Fatal(err)
	}
	if err := ms[4].AddEndRepeat(2); err != nil {
		t.Fatal(err)
	}

	// The inner repeat is spent after its second pass, so the outer
	// repeat plays it straight through.
	got := Sequence(d)
	if want := []int{0, 1, 2, 1, 2, 3, 4, 1, 2, 3, 4}; !slices.Equal(path(got), want) {
		t.Errorf("Sequence() = %v, want %v", path(got), want)
	}
}

func TestSequenceJumps(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, ms []*score.Measure)
		want  []int
	}{
		{
			name: "dc al fine",
			build: func(t *testing.T, ms []*score.Measure) {
				nav(t, ms[1], score.NavFine)
				nav(t, ms[3], score.NavDCalFine)
			},
			want: []int{0, 1, 2, 3, 0, 1},
		},
		{
			name: "ds al coda",
			build: func(t *testing.T, ms []*score.Measure) {
				nav(t, ms[1], score.NavSegno)
				nav(t, ms[2], score.NavToCoda)
				nav(t, ms[3], score.NavDSalCoda)
				nav(t, ms[4], score.NavCoda)
			},
			want: []int{0, 1, 2, 3, 1, 2, 4},
		},
		{
			name: "plain dc plays to the end",
			build: func(t *testing.T, ms []*score.Measure) {
				nav(t, ms[2], score.NavDC)
			},
			want: []int{0, 1, 2, 0, 1, 2, 3, 4},
		},
		{
			name: "end song stops",
			build: func(t *testing.T, ms []*score.Measure) {
				ms[2].EndSong()
			},
			want: []int{0, 1, 2},
		},
		{
			name: "repeat is not taken again after dc",
			build: func(t *testing.T, ms []*score.Measure) {
				nav(t, ms[1], score.NavEndRepeat)
				nav(t, ms[2], score.NavDC)
			},
			want: []int{0, 1, 0, 1, 2, 0, 1, 2, 3, 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ms := measures(t, 5)
			tt.build(t, ms)
			if got := path(Sequence(d)); !slices.Equal(got, tt.want) {
				t.Errorf("Sequence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSequenceFinalEndingAfterJump(t *testing.T) {
	d, ms := measures(t, 4)
	nav(t, ms[0], score.NavStartRepeat)
	ending(t, ms[1], 1)
	nav(t, ms[1], score.NavEndRepeat)
	ending(t, ms[2], 2)
	nav(t, ms[3], score.NavDC)

	want := []int{0, 1, 0, 2, 3, 0, 2, 3}
	if got := path(Sequence(d)); !slices.Equal(got, want) {
		t.Errorf("Sequence() = %v, want %v", got, want)
	}
}

func TestSequenceUnclaimedEndingSkipped(t *testing.T) {
	d, ms := measures(t, 3)
	ending(t, ms[1], 2)
	if got, want := path(Sequence(d)), []int{0, 2}; !slices.Equal(got, want) {
		t.Errorf("Sequence() = %v, want %v", got, want)
	}
}

func TestSequenceIterationCap(t *testing.T) {
	d, ms := measures(t, 1)
	if err := ms[0].AddEndRepeat(100); err != nil {
		t.Fatal(err)
	}
	visits, truncated := resolveSequence(d)
	if !truncated {
		t.Error("resolveSequence() truncated = false, want true")
	}
	if len(visits) != iterationFactor {
		t.Errorf("len(visits) = %d, want %d", len(visits), iterationFactor)
	}
}

func TestSequenceEmptyDocument(t *testing.T) {
	d := score.New(score.PresetTreble)
	if got := Sequence(d); len(got) != 0 {
		t.Errorf("Sequence() = %v, want empty", path(got))
	}
}

func ExampleSequence() {
	d := score.New(score.PresetTreble)
	for i := 0; i < 3; i++ {
		m := d.AddMeasure()
		m.AddNote(0, "C4", "1")
		if i == 1 {
			m.AddNavigation(score.NavEndRepeat)
		}
	}
	for _, v := range Sequence(d) {
		fmt.Print(v.Measure.Index(), " ")
	}
	fmt.Println()
	// Output: 0 1 0 1 2
}
