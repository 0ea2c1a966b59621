package navgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/staffline/pkg/player"
	"github.com/matzehuels/staffline/pkg/render"
	"github.com/matzehuels/staffline/pkg/score"
)

// Options configures the diagram.
type Options struct {
	// Detailed adds the running meter, key and tempo and the visit passes
	// to every measure label.
	Detailed bool
}

type edge struct {
	from, to string
}

// ToDOT converts a document and its resolved sequence to Graphviz DOT.
func ToDOT(d *score.Document, seq []player.Visit, opts Options) string {
	passes := make(map[int][]int)
	for _, v := range seq {
		passes[v.Measure.Index()] = append(passes[v.Measure.Index()], v.Pass)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
	buf.WriteString("  \"start\" [shape=point, width=0.15];\n")
	buf.WriteString("  \"end\" [shape=doublecircle, label=\"\", width=0.15, style=filled, fillcolor=black];\n")

	for _, m := range d.Measures() {
		label := fmtLabel(m, passes[m.Index()], opts.Detailed)
		attrs := fmtAttrs(label, len(passes[m.Index()]) > 0)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(m.Index()), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	if len(seq) == 0 {
		buf.WriteString("  \"start\" -> \"end\";\n")
		buf.WriteString("}\n")
		return buf.String()
	}

	var order []edge
	steps := make(map[edge][]int)
	add := func(e edge, step int) {
		if _, ok := steps[e]; !ok {
			order = append(order, e)
		}
		steps[e] = append(steps[e], step)
	}
	add(edge{"start", nodeID(seq[0].Measure.Index())}, 0)
	for i := 1; i < len(seq); i++ {
		add(edge{nodeID(seq[i-1].Measure.Index()), nodeID(seq[i].Measure.Index())}, i)
	}
	add(edge{nodeID(seq[len(seq)-1].Measure.Index()), "end"}, len(seq))

	for _, e := range order {
		attrs := []string{fmt.Sprintf("label=%q", fmtSteps(steps[e]))}
		if isJump(e) {
			attrs = append(attrs, "style=dashed", "color=\"#1f5fbf\"", "fontcolor=\"#1f5fbf\"", "constraint=false")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.from, e.to, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string { return "m" + strconv.Itoa(i) }

// isJump reports whether e leaves the document order.
func isJump(e edge) bool {
	if e.from == "start" || e.to == "end" {
		return false
	}
	from, _ := strconv.Atoi(strings.TrimPrefix(e.from, "m"))
	to, _ := strconv.Atoi(strings.TrimPrefix(e.to, "m"))
	return to != from+1
}

func fmtLabel(m *score.Measure, passes []int, detailed bool) string {
	parts := []string{strconv.Itoa(m.Index() + 1)}
	if e := m.Ending(); e != nil {
		var ps []string
		for _, p := range e.Passages {
			ps = append(ps, strconv.Itoa(p)+".")
		}
		parts = append(parts, "["+strings.Join(ps, " ")+"]")
	}
	for _, n := range m.Navigations() {
		s := n.String()
		if n == score.NavEndRepeat && m.PlayCount() != score.DefaultPlayCount {
			s += " x" + strconv.Itoa(m.PlayCount())
		}
		parts = append(parts, s)
	}
	if m.HasBarFermata() {
		parts = append(parts, "fermata")
	}
	if m.IsEndSong() {
		parts = append(parts, "end")
	}
	label := strings.Join(parts, " ")
	if !detailed {
		return label
	}
	lines := []string{
		label,
		fmt.Sprintf("time: %s", m.TimeSignature()),
		fmt.Sprintf("key: %s", m.KeySignature()),
		fmt.Sprintf("tempo: %s", m.Tempo()),
	}
	if len(passes) > 0 {
		lines = append(lines, "passes: "+fmtSteps(passes))
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(label string, visited bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !visited {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
	}
	return attrs
}

func fmtSteps(steps []int) string {
	s := make([]string, len(steps))
	for i, n := range steps {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ",")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// whose viewBox starts at the origin and whose size is in px.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, render.Target{Format: "pdf"})
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, render.Target{Format: "png", Scale: scale})
}
