package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/pipeline"
	"github.com/matzehuels/staffline/pkg/player"
	"github.com/matzehuels/staffline/pkg/render/navgraph"
)

// navgraphCommand draws the measures as a graph with the resolved playback
// path as numbered edges. It is a debugging aid for navigation marks.
func (c *CLI) navgraphCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "navgraph [demo]",
		Short: "Draw the playback path through the measures",
		Long: `Draw the measures of a score as graph nodes and the resolved playback
path as numbered edges. Jumps are dashed; unvisited measures are grey.

The output format follows the file extension: .dot, .svg, .png or .pdf.
Without -o the DOT source is printed.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDemos,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(pipeline.Options{})
			if err != nil {
				return err
			}
			name, d, err := loadDemo(args, opts)
			if err != nil {
				return err
			}
			dot := navgraph.ToDOT(d, player.Sequence(d), navgraph.Options{Detailed: detailed})
			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), dot)
				return nil
			}
			data, err := renderDOT(cmd.Context(), dot, output)
			if err != nil {
				return fmt.Errorf("navgraph %s: %w", name, err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .svg, .png, .pdf)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show time, key, tempo and passes per measure")

	return cmd
}

func renderDOT(ctx context.Context, dot, path string) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		return []byte(dot), nil
	case ".svg":
		return navgraph.RenderSVG(ctx, dot)
	case ".png":
		return navgraph.RenderPNG(ctx, dot, 2)
	case ".pdf":
		return navgraph.RenderPDF(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported output extension %q", ext)
	}
}
