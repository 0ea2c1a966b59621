package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/pipeline"
	"github.com/matzehuels/staffline/pkg/player"
)

// sequenceCommand lists the resolved playback steps of a score.
func (c *CLI) sequenceCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sequence [demo]",
		Short: "List the resolved playback steps",
		Long: `List every step of the resolved playback: the measure path through
repeats, endings and jumps, with the running speed, volume and notes.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDemos,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(pipeline.Options{})
			if err != nil {
				return err
			}
			return c.runSequence(cmd.Context(), cmd.OutOrStdout(), args, opts, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func (c *CLI) runSequence(ctx context.Context, w io.Writer, args []string, opts pipeline.Options, asJSON bool) error {
	name, d, err := loadDemo(args, opts)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	plan, data, hit, err := runner.Sequence(ctx, d)
	if err != nil {
		return err
	}
	c.Logger.Debug("sequence resolved", "demo", name, "cached", hit)
	if asJSON {
		_, err := w.Write(append(data, '\n'))
		return err
	}
	if plan == nil {
		plan = &player.Plan{}
		if err := json.Unmarshal(data, plan); err != nil {
			return fmt.Errorf("decode cached sequence: %w", err)
		}
	}
	fmt.Fprintln(w, stepTable(plan))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("path:"), StyleValue.Render(formatPath(plan)))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("duration:"), StyleNumber.Render(plan.Duration.String()))
	if plan.Truncated {
		fmt.Fprintln(w, StyleWarning.Render("navigation loop truncated"))
	}
	return nil
}

func stepTable(plan *player.Plan) string {
	rows := make([][]string, 0, len(plan.Steps))
	for _, st := range plan.Steps {
		rows = append(rows, []string{
			strconv.Itoa(st.Index),
			strconv.Itoa(st.MeasureIndex + 1),
			strconv.Itoa(st.Pass),
			strconv.Itoa(st.Tick),
			st.Start.String(),
			st.Duration.String(),
			strconv.FormatFloat(st.Speed, 'g', 3, 64),
			strconv.FormatFloat(st.Volume, 'g', 3, 64),
			formatNotes(st.Notes),
		})
	}
	return newTable("#", "Measure", "Pass", "Tick", "Start", "Length", "Speed", "Volume", "Notes").
		Rows(rows...).Render()
}

func formatNotes(notes []player.NoteEvent) string {
	if len(notes) == 0 {
		return "-"
	}
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.Note
	}
	return strings.Join(names, " ")
}

// formatPath lists the measure numbers in playing order, collapsing the
// steps of one visit.
func formatPath(plan *player.Plan) string {
	var parts []string
	last, lastPass := -1, 0
	for _, st := range plan.Steps {
		if st.MeasureIndex == last && st.Pass == lastPass {
			continue
		}
		last, lastPass = st.MeasureIndex, st.Pass
		parts = append(parts, strconv.Itoa(st.MeasureIndex+1))
	}
	return strings.Join(parts, " ")
}
