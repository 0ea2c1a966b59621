package layout

import "github.com/matzehuels/staffline/pkg/score"

// Hit is one object under a point.
type Hit struct {
	Kind    string   `json:"kind"`
	ID      score.ID `json:"id"`
	Row     int      `json:"row"`
	Measure int      `json:"measure"`
	Rect    Rect     `json:"rect"`
}

// Pick returns the objects under (x, y), innermost first: annotations,
// symbols, columns, measures, then the row.
func (l *Layout) Pick(x, y float64) []Hit {
	var hits []Hit
	for _, r := range l.Rows {
		if !r.Rect.Contains(x, y) && !anyObjectContains(r.Objects, x, y) {
			continue
		}
		for _, o := range r.Objects {
			if o.Rect.Contains(x, y) {
				hits = append(hits, Hit{Kind: "object:" + o.Group.String(), ID: o.ID, Row: r.Index, Measure: -1, Rect: o.Rect})
			}
		}
		var outer []Hit
		for _, m := range r.Measures {
			if !m.Rect.Contains(x, y) {
				continue
			}
			for _, c := range m.Columns {
				for _, s := range c.Symbols {
					if !s.Hidden && s.Rect.Contains(x, y) {
						kind := "note"
						if s.Rest {
							kind = "rest"
						}
						hits = append(hits, Hit{Kind: kind, ID: s.ID, Row: r.Index, Measure: m.Index, Rect: s.Rect})
					}
				}
				if c.Rect.Contains(x, y) {
					outer = append(outer, Hit{Kind: "column", ID: c.ID, Row: r.Index, Measure: m.Index, Rect: c.Rect})
				}
			}
			outer = append(outer, Hit{Kind: "measure", ID: m.ID, Row: r.Index, Measure: m.Index, Rect: m.Rect})
		}
		hits = append(hits, outer...)
		if r.Rect.Contains(x, y) {
			hits = append(hits, Hit{Kind: "row", ID: r.ID, Row: r.Index, Measure: -1, Rect: r.Rect})
		}
	}
	return hits
}

func anyObjectContains(objs []Object, x, y float64) bool {
	for _, o := range objs {
		if o.Rect.Contains(x, y) {
			return true
		}
	}
	return false
}
