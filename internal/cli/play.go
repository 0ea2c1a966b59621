package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/audio"
	"github.com/matzehuels/staffline/pkg/audio/midi"
	"github.com/matzehuels/staffline/pkg/pipeline"
	"github.com/matzehuels/staffline/pkg/player"
	"github.com/matzehuels/staffline/pkg/score"
)

type playOpts struct {
	midiPath string
	noTUI    bool
}

// playCommand plays a score in the terminal or exports it as MIDI.
func (c *CLI) playCommand() *cobra.Command {
	var (
		po    playOpts
		flags pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "play [demo]",
		Short: "Play a score in the terminal or export it as MIDI",
		Long: `Play a score in real time.

By default an interactive view follows the cursor (space: play/pause,
s: stop, q: quit). With --no-tui the notes are logged instead; use -v to
see them. With --midi the whole performance is rendered offline to a
Standard MIDI File without waiting.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDemos,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(flags)
			if err != nil {
				return err
			}
			name, d, err := loadDemo(args, opts)
			if err != nil {
				return err
			}
			switch {
			case po.midiPath != "":
				return c.exportMIDI(cmd.Context(), d, name, opts, po.midiPath)
			case po.noTUI:
				return c.playHeadless(cmd.Context(), d, opts)
			default:
				return c.playTUI(cmd.Context(), d, name, opts)
			}
		},
	}

	cmd.Flags().StringVar(&po.midiPath, "midi", "", "write a MIDI file instead of playing")
	cmd.Flags().BoolVar(&po.noTUI, "no-tui", false, "play without the interactive view")
	cmd.Flags().Float64Var(&flags.Volume, "volume", 0, "master volume 0..1 (default 1)")
	cmd.Flags().StringVar(&flags.Instrument, "instrument", "", "instrument name for logs and MIDI tracks")

	return cmd
}

func (c *CLI) playerOptions(opts pipeline.Options, a audio.Audio) []player.Option {
	return []player.Option{
		player.WithAudio(a),
		player.WithLogger(c.Logger),
		player.WithVolume(opts.Volume),
	}
}

func (c *CLI) exportMIDI(ctx context.Context, d *score.Document, name string, opts pipeline.Options, path string) error {
	rec := midi.NewRecorder(midi.WithTrackName(opts.Instrument))
	plan, err := player.Render(ctx, d, rec, c.playerOptions(opts, rec)...)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := rec.WriteFile(path); err != nil {
		return err
	}
	for _, n := range rec.Skipped() {
		printWarning("skipped unplayable note %s", n)
	}
	printSuccess("Exported %s (%d notes, %s)", name, rec.Len(), plan.Duration)
	printFile(path)
	return nil
}

func (c *CLI) playHeadless(ctx context.Context, d *score.Document, opts pipeline.Options) error {
	a := audio.Logger{Log: c.Logger, Instrument: opts.Instrument}
	p := player.New(d, c.playerOptions(opts, a)...)
	last := -1
	p.OnCursor(func(st player.Step) {
		if st.MeasureIndex != last {
			last = st.MeasureIndex
			c.Logger.Info("measure", "number", st.MeasureIndex+1, "pass", st.Pass, "speed", st.Speed, "volume", st.Volume)
		}
	})
	return p.Run(ctx)
}

func (c *CLI) playTUI(ctx context.Context, d *score.Document, name string, opts pipeline.Options) error {
	// The logger would draw over the view while it runs.
	prev := c.Logger.GetLevel()
	c.SetLogLevel(LogError)
	defer c.SetLogLevel(prev)

	p := player.New(d, c.playerOptions(opts, audio.Null{})...)
	m := newPlayModel(p, name, len(d.Measures()))
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	p.Stop()
	return err
}
