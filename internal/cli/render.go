package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/pipeline"
)

// renderCommand lays out a demo score and writes it in one or more formats.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		flags      pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [demo]",
		Short: "Lay out a score and write SVG, PNG, PDF or JSON",
		Long: `Lay out a score and write it in one or more formats.

JSON output is the full positioned layout geometry. PNG and PDF are converted
from SVG and need rsvg-convert (librsvg) on the PATH.

Rendered artifacts are cached by document content and options.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDemos,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Formats = parseFormats(formatsStr)
			opts, err := c.options(flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&flags.Width, "width", 0, "page width in pixels (default 1000)")
	cmd.Flags().Float64Var(&flags.Unit, "unit", 0, "staff space in pixels (default 8)")
	cmd.Flags().BoolVar(&flags.NoHeader, "no-header", false, "omit the title block")
	cmd.Flags().StringVar(&flags.Style, "style", "", "visual style: simple (default), dark")
	cmd.Flags().StringVar(&flags.Measurer, "measurer", "", "text measurer: font (default), fixed")
	cmd.Flags().BoolVar(&flags.Interactive, "interactive", false, "add hover and pick ids to SVG output")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, args []string, opts pipeline.Options, output string) error {
	name, d, err := loadDemo(args, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", name))
	spinner.Start()

	result, err := runner.Execute(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	prog.done("Rendered " + name)

	if result.Layout != nil {
		printStats(result.Stats.Rows, result.Stats.Measures, false)
	} else {
		printStats(0, 0, true)
	}
	return writeArtifacts(result.Artifacts, opts.Formats, name, output)
}

// writeArtifacts writes each artifact in format order. With one format,
// output is the file name; otherwise it is a base path that gets the
// format as extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, name, output string) error {
	for _, format := range formats {
		path := artifactPath(format, name, output, len(formats))
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

func artifactPath(format, name, output string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	base := name
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	return base + "." + format
}
