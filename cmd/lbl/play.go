package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	cl "labelsim/internal/cli"
	"labelsim/internal/game"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newPlayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Interactive dashboard for the active game",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			m := newPlayModel(cmd.Context(), opts.client(), gameID)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type snapshotMsg struct{ snap game.Snapshot }

type advancedMsg struct{ res game.AdvanceResult }

type errMsg struct{ err error }

type playModel struct {
	ctx     context.Context
	client  *cl.Client
	gameID  string
	snap    game.Snapshot
	last    *game.Summary
	results *game.CampaignResults
	table   table.Model
	spinner spinner.Model
	busy    bool
	err     error
}

func newPlayModel(ctx context.Context, client *cl.Client, gameID string) playModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Project", Width: 22},
			{Title: "Type", Width: 7},
			{Title: "Stage", Width: 11},
			{Title: "Progress", Width: 14},
			{Title: "Cost", Width: 10},
		}),
		table.WithHeight(8),
		table.WithFocused(true),
	)
	return playModel{
		ctx:     ctx,
		client:  client,
		gameID:  gameID,
		table:   t,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		busy:    true,
	}
}

func (m playModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m playModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
		defer cancel()
		snap, err := m.client.Snapshot(ctx, m.gameID)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap}
	}
}

func (m playModel) advance() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 60*time.Second)
		defer cancel()
		res, err := advanceWithPlan(ctx, m.client, m.gameID)
		if err != nil {
			return errMsg{err}
		}
		return advancedMsg{res}
	}
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "a", " ":
			if m.busy || m.snap.State.CampaignCompleted {
				return m, nil
			}
			m.busy, m.err = true, nil
			return m, tea.Batch(m.spinner.Tick, m.advance())
		case "r":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		}
	case snapshotMsg:
		m.busy = false
		m.snap = msg.snap
		m.table.SetRows(projectRows(msg.snap.Projects))
		return m, nil
	case advancedMsg:
		m.last = msg.res.Summary
		if msg.res.CampaignResults != nil {
			m.results = msg.res.CampaignResults
		}
		return m, m.fetch()
	case errMsg:
		m.busy = false
		m.err = msg.err
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func projectRows(projects []game.Project) []table.Row {
	rows := make([]table.Row, 0, len(projects))
	for _, p := range projects {
		progress := fmt.Sprintf("%d/%d songs", p.SongsCreated, p.SongCount)
		if p.Type == game.ProjectTour {
			progress = fmt.Sprintf("%d/%d cities", p.Metadata.CitiesRevealed, p.Metadata.CitiesPlanned)
		}
		rows = append(rows, table.Row{truncate(p.Title, 22), string(p.Type), p.Stage.String(), progress, money(p.TotalCost)})
	}
	return rows
}

func (m playModel) View() string {
	var b strings.Builder
	if m.snap.State.ID != "" {
		b.WriteString(stateBox(m.snap.State))
		b.WriteString("\n\n")
	}
	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	if m.last != nil {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Week %d", m.last.Period)))
		b.WriteString(fmt.Sprintf("  net %s\n", colorizeMoney(m.last.Revenue-m.last.Expenses)))
		for _, line := range summaryLines(m.last) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	if m.results != nil {
		b.WriteString(titleStyle.Render("Campaign complete: "+m.results.VictoryType) + fmt.Sprintf("  score %d\n\n", m.results.Score))
	}
	if m.err != nil {
		b.WriteString(danger.Sprint(m.err.Error()) + "\n\n")
	}
	if m.busy {
		b.WriteString(m.spinner.View() + " working...\n")
	} else {
		b.WriteString(labelStyle.Render("a advance  r refresh  ↑/↓ projects  q quit"))
	}
	return b.String()
}
