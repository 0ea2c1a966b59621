package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/staffline/pkg/player"
)

var (
	barStyle      = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const barWidth = 40

// tickMsg asks the model to advance the player. gen identifies the timer
// chain that sent it; chains started before a pause or stop are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

// playModel is the bubbletea model of the play command. It drives the
// player through Tick with tea.Tick timers.
type playModel struct {
	player   *player.Player
	name     string
	measures int

	gen   int
	step  player.Step
	shown bool
	err   error
}

func newPlayModel(p *player.Player, name string, measures int) playModel {
	return playModel{player: p, name: name, measures: measures}
}

func (m playModel) Init() tea.Cmd {
	return m.start(time.Now())
}

// start plays from the current position and starts a timer chain. Pause
// and stop bump gen, so at most one chain is live.
func (m *playModel) start(now time.Time) tea.Cmd {
	if err := m.player.Play(now); err != nil {
		m.err = err
		return tea.Quit
	}
	gen := m.gen
	return func() tea.Msg { return tickMsg{gen: gen, at: now} }
}

func (m playModel) schedule(next time.Time) tea.Cmd {
	gen := m.gen
	return tea.Tick(max(0, time.Until(next)), func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		next, ok := m.player.Tick(msg.at)
		if st, cur := m.player.Current(); cur {
			m.step, m.shown = st, true
		}
		if !ok {
			return m, nil
		}
		return m, m.schedule(next)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.player.Stop()
			return m, tea.Quit
		case " ", "space", "p":
			if m.player.State() == player.Playing {
				m.player.Pause()
				m.gen++
				return m, nil
			}
			cmd := m.start(time.Now())
			return m, cmd
		case "s":
			m.player.Stop()
			m.gen++
			m.shown = false
			return m, nil
		}
	}
	return m, nil
}

func (m playModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("▶ " + m.name))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.player.State().String()))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	plan := m.player.Plan()
	if !m.shown || plan == nil {
		b.WriteString(StyleDim.Render("  ready"))
		b.WriteString("\n\n")
	} else {
		st := m.step
		fmt.Fprintf(&b, "  %s %s  %s %s  %s %s\n",
			StyleDim.Render("measure"), StyleNumber.Render(fmt.Sprintf("%d/%d", st.MeasureIndex+1, m.measures)),
			StyleDim.Render("pass"), StyleNumber.Render(fmt.Sprint(st.Pass)),
			StyleDim.Render("step"), StyleNumber.Render(fmt.Sprintf("%d/%d", st.Index+1, len(plan.Steps))))
		fmt.Fprintf(&b, "  %s %s  %s %s\n",
			StyleDim.Render("speed"), StyleValue.Render(fmt.Sprintf("%.2fx", st.Speed)),
			StyleDim.Render("volume"), StyleValue.Render(fmt.Sprintf("%.0f%%", st.Volume*100)))
		fmt.Fprintf(&b, "  %s %s\n\n", StyleDim.Render("notes"), StyleHighlight.Render(formatNotes(st.Notes)))
		b.WriteString("  " + progressBar(st.Start, plan.Duration))
		fmt.Fprintf(&b, " %s\n\n", StyleDim.Render(fmt.Sprintf("%s / %s", st.Start.Round(100*time.Millisecond), plan.Duration.Round(100*time.Millisecond))))
	}

	b.WriteString(helpStyle.Render("space play/pause  s stop  q quit"))
	b.WriteString("\n")
	return b.String()
}

func progressBar(at, total time.Duration) string {
	filled := 0
	if total > 0 {
		filled = int(float64(barWidth) * float64(at) / float64(total))
	}
	filled = min(max(filled, 0), barWidth)
	return barStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}
