package player

import (
	"strings"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/extension"
)

// DefaultVolume is the running volume before the first dynamics mark (mf).
const DefaultVolume = 0.6

const (
	minSpeed = 0.1
	maxSpeed = 10
)

var dynamicLevels = map[string]float64{
	"ppp": 0.1,
	"pp":  0.2,
	"p":   0.3,
	"mp":  0.45,
	"mf":  0.6,
	"f":   0.75,
	"ff":  0.9,
	"fff": 1.0,
}

var rampFactors = map[string]struct {
	prop   prop
	factor float64
}{
	"accel":       {propSpeed, 2},
	"accelerando": {propSpeed, 2},
	"rit":         {propSpeed, 0.5},
	"ritard":      {propSpeed, 0.5},
	"ritardando":  {propSpeed, 0.5},
	"rall":        {propSpeed, 0.5},
	"rallentando": {propSpeed, 0.5},
	"cresc":       {propVolume, 2},
	"crescendo":   {propVolume, 2},
	"decresc":     {propVolume, 0.5},
	"decrescendo": {propVolume, 0.5},
	"dim":         {propVolume, 0.5},
	"diminuendo":  {propVolume, 0.5},
}

type prop int

const (
	propSpeed prop = iota
	propVolume
)

// mark is a tempo or dynamics annotation understood by the player.
type mark struct {
	prop    prop
	literal bool
	value   float64 // literal value or ramp factor
}

// parseMark interprets a tempo or dynamics annotation. Unknown text is not
// a mark.
func parseMark(a *score.Annotation) (mark, bool) {
	if a.Kind() != score.AnnotationDynamics && a.Kind() != score.AnnotationTempo {
		return mark{}, false
	}
	text := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(a.Text())), ".")
	if v, ok := dynamicLevels[text]; ok {
		return mark{prop: propVolume, literal: true, value: v}, true
	}
	if text == "a tempo" || text == "tempo primo" {
		return mark{prop: propSpeed, literal: true, value: 1}, true
	}
	if r, ok := rampFactors[text]; ok {
		return mark{prop: r.prop, value: r.factor}, true
	}
	return mark{}, false
}

// envelope tracks one running value (speed or volume) along the played
// columns. A ramp precomputes the values of the columns it covers.
type envelope struct {
	value    float64
	min, max float64
	ramp     map[score.ID]float64
	last     score.ID
	target   float64
}

func newEnvelope(value, lo, hi float64) *envelope {
	return &envelope{value: value, min: lo, max: hi}
}

func (e *envelope) clamp(v float64) float64 {
	return max(e.min, min(e.max, v))
}

// snap sets the running value and cancels any ramp in progress.
func (e *envelope) snap(v float64) {
	e.value = e.clamp(v)
	e.ramp = nil
}

// start begins a ramp from the current value over the annotation's
// extension range. The target is the literal that ends the range, when one
// does, and the value scaled by factor otherwise.
func (e *envelope) start(a *score.Annotation, p prop, factor float64) {
	from := e.at(a.Column())
	target := e.clamp(from * factor)
	r := extension.Resolve(a)
	if r.Stop == extension.StopAnnotation {
		if b, ok := r.StopObject.(*score.Annotation); ok {
			if m, ok := parseMark(b); ok && m.literal && m.prop == p {
				target = e.clamp(m.value)
			}
		}
	}
	e.value = from
	e.target = target
	e.last = r.Last().ObjID()
	e.ramp = make(map[score.ID]float64, len(r.Columns))
	var cum float64
	for i, w := range r.Weights() {
		cum += w
		if r.Ticks <= 0 {
			cum = 1
		}
		e.ramp[r.Columns[i].ObjID()] = from + (target-from)*min(cum, 1)
	}
}

// at returns the value for column c.
func (e *envelope) at(c *score.Column) float64 {
	if v, ok := e.ramp[c.ObjID()]; ok {
		return v
	}
	return e.value
}

// done moves past c, settling the ramp when c is its last column.
func (e *envelope) done(c *score.Column) {
	if e.ramp != nil && c.ObjID() == e.last {
		e.value = e.target
		e.ramp = nil
	}
}

// props resolves speed and volume for every played column.
type props struct {
	speed  *envelope
	volume *envelope
}

func newProps() *props {
	return &props{
		speed:  newEnvelope(1, minSpeed, maxSpeed),
		volume: newEnvelope(DefaultVolume, 0, 1),
	}
}

// enter applies the marks of c and returns its speed and volume.
func (p *props) enter(c *score.Column) (speed, volume float64) {
	for _, a := range c.Annotations() {
		m, ok := parseMark(a)
		if !ok {
			continue
		}
		env := p.speed
		if m.prop == propVolume {
			env = p.volume
		}
		if m.literal {
			env.snap(m.value)
		} else {
			env.start(a, m.prop, m.value)
		}
	}
	return p.speed.at(c), p.volume.at(c)
}

func (p *props) leave(c *score.Column) {
	p.speed.done(c)
	p.volume.done(c)
}
