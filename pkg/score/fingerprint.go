package score

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Fingerprint returns a digest of the document content. Two documents built
// with the same calls share a fingerprint even though their UUIDs differ.
// It is a cache key, not a serialization format.
func Fingerprint(d *Document) string {
	h := sha256.New()
	writeCanonical(h, d)
	return hex.EncodeToString(h.Sum(nil))
}

func writeCanonical(w io.Writer, d *Document) {
	fmt.Fprintf(w, "header %q %q %q\n", d.header.Title, d.header.Composer, d.header.Arranger)
	for _, l := range d.lines {
		fmt.Fprintf(w, "line %s %s %t %q %q %v %v\n", l.Type, l.Clef, l.IsOctaveDown, l.GrandID, l.Instrument, l.Tuning, l.Voices)
	}
	for _, m := range d.measures {
		fmt.Fprintf(w, "measure %d row %d\n", m.index, m.row.index)
		if m.keySig != nil {
			fmt.Fprintf(w, " key %s\n", m.keySig)
		}
		if m.timeSig != nil {
			fmt.Fprintf(w, " time %s\n", m.timeSig)
		}
		if m.tempo != nil {
			fmt.Fprintf(w, " tempo %s\n", m.tempo)
		}
		fmt.Fprintf(w, " nav %v %d end %t %t fermata %t\n", m.navs, m.playCount, m.endSong, m.endSection, m.barFermata)
		if m.ending != nil {
			fmt.Fprintf(w, " ending %v\n", m.ending.Passages)
		}
		for _, c := range m.columns {
			fmt.Fprintf(w, " col %d\n", c.tick)
			for _, s := range c.Symbols() {
				switch s := s.(type) {
				case *NoteGroup:
					fmt.Fprintf(w, "  notes %d %v %s %+v", s.voice, s.notes, s.rhythm, s.options.flags())
					if s.options.tie != nil {
						fmt.Fprintf(w, " tie %+v", *s.options.tie)
					}
					if s.options.slur != nil {
						fmt.Fprintf(w, " slur %+v", *s.options.slur)
					}
					fmt.Fprintln(w)
				case *Rest:
					fmt.Fprintf(w, "  rest %d %s %+v\n", s.voice, s.rhythm, s.options.flags())
				}
			}
			for _, a := range c.annotations {
				fmt.Fprintf(w, "  ann %s %q %d %s %d", a.kind, a.text, a.line, a.pos, a.verse)
				if a.ext != nil {
					fmt.Fprintf(w, " ext %+v", *a.ext)
				}
				fmt.Fprintln(w)
			}
		}
	}
}

func (o symbolOptions) flags() [6]int {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return [6]int{int(o.stem), b(o.staccato), b(o.staccatissimo), int(o.arpeggio), b(o.fermata), b(o.hidden)}
}
