package player

import (
	"math"
	"time"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/arc"
	"github.com/matzehuels/staffline/pkg/theory"
)

const (
	// ArpeggioTicks staggers the notes of an arpeggiated chord by a
	// 32nd note.
	ArpeggioTicks = theory.TicksPerQuarter / 8

	staccatoFactor      = 0.5
	staccatissimoFactor = 0.25
	slurVolumeFactor    = 0.8
)

// NoteEvent is one note triggered by a step.
type NoteEvent struct {
	Note  string `json:"note"`
	Voice int    `json:"voice"`
	// Delay is the offset from the start of the step (arpeggios).
	Delay time.Duration `json:"delay"`
	// Duration is the sounding length in seconds.
	Duration float64 `json:"duration"`
	Volume   float64 `json:"volume"`
}

// Step is one rhythm column played at one point of the sequence.
type Step struct {
	Index    int            `json:"index"`
	Measure  *score.Measure `json:"-"`
	Column   *score.Column  `json:"-"`
	Pass     int            `json:"pass"`
	Speed    float64        `json:"speed"`
	Volume   float64        `json:"volume"`
	Start    time.Duration  `json:"start"`
	Duration time.Duration  `json:"duration"`
	Notes    []NoteEvent    `json:"notes,omitempty"`

	MeasureIndex int `json:"measure"`
	ColumnIndex  int `json:"column"`
	Tick         int `json:"tick"`
}

// Plan is a fully resolved performance of a document.
type Plan struct {
	Steps    []Step        `json:"steps"`
	Visits   []Visit       `json:"-"`
	Duration time.Duration `json:"duration"`
	// Truncated is set when cyclic navigation hit the iteration cap.
	Truncated bool `json:"truncated,omitempty"`
}

// MeasurePath returns the measure indexes in playing order.
func (p *Plan) MeasurePath() []int {
	out := make([]int, len(p.Visits))
	for i, v := range p.Visits {
		out[i] = v.Measure.Index()
	}
	return out
}

// Resolve computes the playing order, the running speed and volume and the
// timing of every step of d. It fails only when the arcs of the document
// cannot be resolved.
func Resolve(d *score.Document) (*Plan, error) {
	score.Resolve(d)
	arcs, err := arc.Resolve(d)
	if err != nil {
		return nil, err
	}
	visits, truncated := resolveSequence(d)
	plan := &Plan{Visits: visits, Truncated: truncated}

	chains := arc.TieChains(arcs)
	slurred := slurContinuations(d, arcs)
	pr := newProps()
	var at time.Duration
	for _, v := range visits {
		cols := v.Measure.Columns()
		for ci, c := range cols {
			speed, volume := pr.enter(c)
			spt := v.Measure.Tempo().SecondsPerTick(speed)
			ticks := float64(c.Duration()) + fermataHold(c)
			if ci == len(cols)-1 && v.Measure.HasBarFermata() {
				ticks += float64(v.Measure.Ticks()) / 2
			}
			st := Step{
				Index:        len(plan.Steps),
				Measure:      v.Measure,
				Column:       c,
				Pass:         v.Pass,
				Speed:        speed,
				Volume:       volume,
				Start:        at,
				Duration:     seconds(ticks * spt),
				Notes:        columnNotes(c, chains, slurred, spt, volume),
				MeasureIndex: v.Measure.Index(),
				ColumnIndex:  c.Index(),
				Tick:         c.Tick(),
			}
			plan.Steps = append(plan.Steps, st)
			at += st.Duration
			pr.leave(c)
		}
	}
	plan.Duration = at
	return plan, nil
}

// fermataHold is the extra ticks of a column with fermatas: the fermata
// symbols' ticks averaged over all symbols of the column.
func fermataHold(c *score.Column) float64 {
	syms := c.Symbols()
	if len(syms) == 0 {
		return 0
	}
	var sum int
	for _, s := range syms {
		if s.HasFermata() {
			sum += s.Ticks()
		}
	}
	return float64(sum) / float64(len(syms))
}

func columnNotes(c *score.Column, chains map[arc.NoteKey]int, slurred map[score.ID]bool, spt, volume float64) []NoteEvent {
	var out []NoteEvent
	for _, s := range c.Symbols() {
		g, ok := s.(*score.NoteGroup)
		if !ok {
			continue
		}
		notes := g.Notes()
		vol := volume
		if slurred[g.ObjID()] {
			vol *= slurVolumeFactor
		}
		for k, n := range notes {
			ticks := g.Ticks()
			if total, ok := chains[arc.NoteKey{Group: g.ObjID(), Chromatic: n.ChromaticID(), Ticks: g.Ticks()}]; ok {
				if total == 0 {
					continue
				}
				ticks = total
			}
			dur := float64(ticks) * spt
			switch {
			case g.Staccatissimo():
				dur *= staccatissimoFactor
			case g.Staccato():
				dur *= staccatoFactor
			}
			var stagger int
			switch g.Arpeggio() {
			case score.ArpeggioUp:
				stagger = k
			case score.ArpeggioDown:
				stagger = len(notes) - 1 - k
			}
			out = append(out, NoteEvent{
				Note:     n.String(),
				Voice:    g.Voice(),
				Delay:    seconds(float64(stagger*ArpeggioTicks) * spt),
				Duration: dur,
				Volume:   vol,
			})
		}
	}
	return out
}

// slurContinuations returns the note groups under a slur other than its
// first.
func slurContinuations(d *score.Document, arcs []*arc.Arc) map[score.ID]bool {
	out := make(map[score.ID]bool)
	g := d.Graph()
	for _, a := range arcs {
		if a.Kind != arc.Slur || a.Half == arc.RightHalf {
			continue
		}
		for _, tail := range g.Links(a.Left.Group.ObjID()) {
			out[tail] = true
		}
	}
	return out
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
