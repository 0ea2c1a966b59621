package text

import "testing"

func TestFixedMeasurer(t *testing.T) {
	m := FixedMeasurer{}
	got := m.Measure("mf", 10)
	if got.Width != 12 {
		t.Errorf("Width = %v, want 12", got.Width)
	}
	if got.Height() != 10 {
		t.Errorf("Height() = %v, want 10", got.Height())
	}
	if wide := m.Measure("歌", 10); wide.Width != 12 {
		t.Errorf("wide Width = %v, want 12", wide.Width)
	}
}

func TestFontMeasurer(t *testing.T) {
	m, err := NewFontMeasurer()
	if err != nil {
		t.Fatalf("NewFontMeasurer() error = %v", err)
	}
	defer m.Close()

	short := m.Measure("p", 12)
	long := m.Measure("cresc. poco a poco", 12)
	if short.Width <= 0 || long.Width <= short.Width {
		t.Errorf("widths = %v, %v; want 0 < short < long", short.Width, long.Width)
	}
	if short.Ascent <= 0 || short.Descent <= 0 {
		t.Errorf("metrics = %+v, want positive ascent and descent", short)
	}
	big := m.Measure("p", 24)
	if big.Width <= short.Width {
		t.Errorf("24px width %v should exceed 12px width %v", big.Width, short.Width)
	}
	if empty := m.Measure("", 12); empty.Width != 0 {
		t.Errorf("empty Width = %v, want 0", empty.Width)
	}
}

func TestFallbackAdvance(t *testing.T) {
	if got := fallbackAdvance('歌', 10); got != 10 {
		t.Errorf("wide fallback = %v, want 10", got)
	}
	if got := fallbackAdvance('a', 10); got != 5 {
		t.Errorf("narrow fallback = %v, want 5", got)
	}
}
