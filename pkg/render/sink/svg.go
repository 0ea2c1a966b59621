package sink

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/render/styles"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/barline"
)

const symbolInteractionCSS = `
    .note, .rest { transition: opacity 0.15s ease; }
    .note.highlight, .rest.highlight { opacity: 0.55; }
    .object.highlight { font-weight: bold; }`

const symbolInteractionJS = `
    document.querySelectorAll('[data-id]').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
      el.addEventListener('click', () => el.dispatchEvent(new CustomEvent('score-pick', {
        bubbles: true, detail: { id: Number(el.dataset.id) }
      })));
    });`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	logger      *log.Logger
	interaction bool
}

// WithStyle sets the drawing style.
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithLogger sets the logger that receives draw failures.
func WithLogger(l *log.Logger) SVGOption { return func(r *svgRenderer) { r.logger = l } }

// WithInteraction adds hover highlighting and pick events.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interaction = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return r
}

// RenderSVG draws the layout.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	r.style.RenderDefs(&buf)

	for _, t := range l.Header {
		r.draw(&buf, "header", 0, func() { r.style.RenderText(&buf, t) })
	}
	for _, row := range l.Rows {
		r.renderRow(&buf, l, row)
	}
	if r.interaction {
		renderInteraction(&buf)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// draw runs fn and drops its output if it panics.
func (r *svgRenderer) draw(buf *bytes.Buffer, element string, id score.ID, fn func()) {
	mark := buf.Len()
	defer func() {
		if rec := recover(); rec != nil {
			buf.Truncate(mark)
			r.logger.Error("draw failed", "element", element, "id", id, "panic", rec)
		}
	}()
	fn()
}

func (r *svgRenderer) renderRow(buf *bytes.Buffer, l *layout.Layout, row layout.Row) {
	u := l.Unit
	fmt.Fprintf(buf, `  <g class="row" data-row="%d">`+"\n", row.Index)
	defer buf.WriteString("  </g>\n")

	for _, b := range row.Brackets {
		r.draw(buf, "bracket", row.ID, func() { r.style.RenderBracket(buf, b, u) })
	}
	for _, t := range row.Labels {
		r.draw(buf, "label", row.ID, func() { r.style.RenderText(buf, t) })
	}
	for _, line := range row.Lines {
		r.draw(buf, "line", row.ID, func() { r.style.RenderLine(buf, line) })
	}
	for _, m := range row.Measures {
		r.renderMeasure(buf, row, m, u)
	}
	for _, b := range row.Beams {
		r.draw(buf, "beam", row.ID, func() { r.style.RenderBeam(buf, b, u) })
	}
	for _, a := range row.Arcs {
		r.draw(buf, a.Kind, row.ID, func() { r.style.RenderArc(buf, a, u) })
	}
	for _, o := range row.Objects {
		r.draw(buf, o.Group.String(), o.ID, func() { r.style.RenderObject(buf, o, u) })
	}
}

func (r *svgRenderer) renderMeasure(buf *bytes.Buffer, row layout.Row, m layout.Measure, u float64) {
	for _, line := range row.Lines {
		top, bottom := line.Top, line.Bottom()
		if m.LeftBar != barline.None {
			r.draw(buf, "barline", m.ID, func() { r.style.RenderBarline(buf, m.LeftBar, m.Rect.Left, top, bottom, u) })
		}
		if m.RightBar != barline.None {
			r.draw(buf, "barline", m.ID, func() { r.style.RenderBarline(buf, m.RightBar, m.Rect.Right, top, bottom, u) })
		}
		if m.ShowClef {
			r.draw(buf, "clef", m.ID, func() { r.style.RenderClef(buf, line, m.ClefX) })
		}
		if m.ShowKey {
			r.draw(buf, "key", m.ID, func() { r.style.RenderKey(buf, line, m.KeyX, m.KeyCount, m.KeyCancel) })
		}
		if m.Time != "" {
			r.draw(buf, "time", m.ID, func() { r.style.RenderTime(buf, line, m.TimeX, m.Time) })
		}
	}
	for _, c := range m.Columns {
		for _, s := range c.Symbols {
			if s.Line < 0 || s.Line >= len(row.Lines) {
				continue
			}
			r.draw(buf, "symbol", s.ID, func() { r.style.RenderSymbol(buf, row.Lines[s.Line], s) })
		}
	}
}

func renderInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", symbolInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", symbolInteractionJS)
}
