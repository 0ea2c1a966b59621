package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Converter is the external program used for raster and print output.
const Converter = "rsvg-convert"

// ErrNoConverter is returned when rsvg-convert cannot be found.
var ErrNoConverter = errors.New(Converter + " not found on PATH (install librsvg: brew install librsvg, apt install librsvg2-bin)")

// Target describes one conversion of an SVG document.
type Target struct {
	Format string  // "pdf" or "png"
	Scale  float64 // zoom factor, png only; zero means 1
}

// ToPDF converts SVG bytes to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return Convert(context.Background(), svg, Target{Format: "pdf"})
}

// ToPNG converts SVG bytes to PNG. A scale of 2 doubles the pixel size.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return Convert(context.Background(), svg, Target{Format: "png", Scale: scale})
}

// Available reports whether the converter is installed.
func Available() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

// Convert pipes svg through rsvg-convert. The process is killed when ctx ends.
func Convert(ctx context.Context, svg []byte, t Target) ([]byte, error) {
	args, err := t.args()
	if err != nil {
		return nil, err
	}
	if !Available() {
		return nil, fmt.Errorf("%s export: %w", t.Format, ErrNoConverter)
	}

	cmd := exec.CommandContext(ctx, Converter, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %v: %s", Converter, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

func (t Target) args() ([]string, error) {
	switch t.Format {
	case "pdf":
		return []string{"-f", "pdf"}, nil
	case "png":
		scale := t.Scale
		if scale == 0 {
			scale = 1
		}
		if scale < 0 {
			return nil, fmt.Errorf("invalid png scale %v", t.Scale)
		}
		return []string{"-f", "png", "-z", strconv.FormatFloat(scale, 'f', 2, 64)}, nil
	default:
		return nil, fmt.Errorf("unsupported conversion format %q", t.Format)
	}
}
