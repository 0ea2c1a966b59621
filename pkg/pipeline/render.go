package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/staffline/pkg/render/layout"
	"github.com/matzehuels/staffline/pkg/render/sink"
	"github.com/matzehuels/staffline/pkg/render/styles"
	"github.com/matzehuels/staffline/pkg/render/text"
	"github.com/matzehuels/staffline/pkg/score"
)

// ComputeLayout lays out d with the geometry in opts.
func ComputeLayout(ctx context.Context, d *score.Document, opts Options) (*layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	m, err := measurer(opts.Measurer)
	if err != nil {
		return nil, err
	}
	lopts := []layout.Option{
		layout.WithWidth(opts.Width),
		layout.WithUnit(opts.Unit),
		layout.WithMeasurer(m),
		layout.WithLogger(opts.Logger),
	}
	if opts.NoHeader {
		lopts = append(lopts, layout.WithoutHeader())
	}
	return layout.Build(ctx, d, lopts...)
}

func measurer(name string) (text.Measurer, error) {
	if name == MeasurerFixed {
		return text.FixedMeasurer{}, nil
	}
	return text.NewFontMeasurer()
}

// RenderFromLayout renders l into every format in opts.Formats.
func RenderFromLayout(l *layout.Layout, d *score.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(l, d, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(l *layout.Layout, d *score.Document, format string, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return layoutJSON(l, d, opts.Style)
	}
	svgOpts, err := svgOptions(opts)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return sink.RenderSVG(l, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(l, sink.WithPNGSVGOptions(svgOpts...))
	case FormatPDF:
		return sink.RenderPDF(l, sink.WithPDFSVGOptions(svgOpts...))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func svgOptions(opts Options) ([]sink.SVGOption, error) {
	style, err := styles.ByName(opts.Style)
	if err != nil {
		return nil, err
	}
	out := []sink.SVGOption{sink.WithStyle(style), sink.WithLogger(opts.Logger)}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	return out, nil
}

func layoutJSON(l *layout.Layout, d *score.Document, style string) ([]byte, error) {
	jsonOpts := []sink.JSONOption{
		sink.WithJSONDocument(d.UUID().String(), score.Fingerprint(d)),
		sink.WithJSONTitle(d.Header().Title),
	}
	if style != "" {
		jsonOpts = append(jsonOpts, sink.WithJSONStyle(style))
	}
	return sink.RenderJSON(l, jsonOpts...)
}

func countMeasures(l *layout.Layout) int {
	n := 0
	for _, r := range l.Rows {
		n += len(r.Measures)
	}
	return n
}
