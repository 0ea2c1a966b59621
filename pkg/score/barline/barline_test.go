package barline

import (
	"testing"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

func measures(t *testing.T, rows ...int) *score.Document {
	t.Helper()
	d := score.New(score.PresetTreble)
	for i, n := range rows {
		if i > 0 {
			d.AddRow()
		}
		for range n {
			d.AddMeasure()
		}
	}
	return d
}

func TestEndRepeatThenStartRepeat(t *testing.T) {
	d := measures(t, 2)
	m0, m1 := d.Measure(0), d.Measure(1)
	if err := m0.AddNavigation(score.NavEndRepeat); err != nil {
		t.Fatal(err)
	}
	if err := m1.AddNavigation(score.NavStartRepeat); err != nil {
		t.Fatal(err)
	}
	score.Resolve(d)

	if got := Right(m0); got != EndStartRepeat {
		t.Errorf("Right(m0) = %v, want %v", got, EndStartRepeat)
	}
	if got := Left(m1); got != None {
		t.Errorf("Left(m1) = %v, want %v", got, None)
	}
}

func TestRight(t *testing.T) {
	tests := []struct {
		name  string
		rows  []int
		setup func(d *score.Document)
		at    int
		want  Type
	}{
		{"plain", []int{2}, func(*score.Document) {}, 0, Single},
		{"last plain", []int{2}, func(*score.Document) {}, 1, Single},
		{"end repeat", []int{2}, func(d *score.Document) { d.Measure(0).AddNavigation(score.NavEndRepeat) }, 0, EndRepeat},
		{"end song", []int{2}, func(d *score.Document) { d.Measure(1).EndSong() }, 1, EndSong},
		{"end song single measure", []int{1}, func(d *score.Document) { d.Measure(0).EndSong() }, 0, Single},
		{"end section", []int{2}, func(d *score.Document) { d.Measure(0).EndSection() }, 0, Double},
		{"next starts repeat", []int{2}, func(d *score.Document) { d.Measure(1).AddNavigation(score.NavStartRepeat) }, 0, None},
		{"next row starts repeat", []int{1, 1}, func(d *score.Document) { d.Measure(1).AddNavigation(score.NavStartRepeat) }, 0, Double},
		{"key change", []int{2}, func(d *score.Document) {
			d.Measure(1).SetKeySignature(theory.MustParseKeySignature("D Major"))
		}, 0, Double},
		{"key change on next row", []int{1, 1}, func(d *score.Document) {
			d.Measure(1).SetKeySignature(theory.MustParseKeySignature("D Major"))
		}, 0, Single},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := measures(t, tt.rows...)
			tt.setup(d)
			score.Resolve(d)
			if got := Right(d.Measure(tt.at)); got != tt.want {
				t.Errorf("Right() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLeft(t *testing.T) {
	d := measures(t, 1, 1)
	d.Measure(0).AddNavigation(score.NavEndRepeat)
	d.Measure(1).AddNavigation(score.NavStartRepeat)
	score.Resolve(d)
	// Different rows: both glyphs are drawn.
	if got := Left(d.Measure(1)); got != StartRepeat {
		t.Errorf("Left() across rows = %v, want %v", got, StartRepeat)
	}
	if got := Right(d.Measure(0)); got != EndRepeat {
		t.Errorf("Right() across rows = %v, want %v", got, EndRepeat)
	}
	if got := Left(d.Measure(0)); got != None {
		t.Errorf("Left() without mark = %v, want %v", got, None)
	}
}
