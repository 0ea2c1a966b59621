package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/internal/demos"
	"github.com/matzehuels/staffline/pkg/player"
)

func (c *CLI) demosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demos",
		Short: "List the built-in demo scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := demoRows()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newTable("Name", "Title", "Measures", "Steps", "Duration").Rows(rows...).Render())
			return nil
		},
	}
}

func demoRows() ([][]string, error) {
	var rows [][]string
	for _, name := range demos.Names() {
		d, err := demos.Load(name)
		if err != nil {
			return nil, err
		}
		plan, err := player.Resolve(d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		rows = append(rows, []string{
			name,
			demos.Title(name),
			strconv.Itoa(len(d.Measures())),
			strconv.Itoa(len(plan.Steps)),
			plan.Duration.String(),
		})
	}
	return rows, nil
}

// newTable returns a table in the CLI's border and header style.
func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			return cell
		})
}
