package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"labelsim/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
	muted   = color.New(color.FgHiBlack)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func money(v int64) string {
	if v < 0 {
		return "-$" + humanize.Comma(-v)
	}
	return "$" + humanize.Comma(v)
}

func colorizeMoney(v int64) string {
	switch {
	case v > 0:
		return success.Sprint("+" + money(v))
	case v < 0:
		return danger.Sprint(money(v))
	default:
		return neutral.Sprint(money(v))
	}
}

func colorizeDelta(v int) string {
	text := fmt.Sprintf("%+d", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func stateBox(state game.GameState) string {
	status := fmt.Sprintf("Week %d/%d", state.CurrentPeriod, state.CampaignLength)
	if state.CampaignCompleted {
		status += "  (campaign over)"
	}
	rows := []string{
		titleStyle.Render(status),
		labelStyle.Render("Money      ") + money(state.Money),
		labelStyle.Render("Reputation ") + fmt.Sprintf("%d", state.Reputation),
		labelStyle.Render("Creative   ") + fmt.Sprintf("%d", state.CreativeCapital),
		labelStyle.Render("Focus      ") + fmt.Sprintf("%d slots", state.FocusSlots),
	}
	access := []string{
		titleStyle.Render("Access"),
		labelStyle.Render("Playlists  ") + state.PlaylistAccess,
		labelStyle.Render("Press      ") + state.PressAccess,
		labelStyle.Render("Venues     ") + state.VenueAccess,
		labelStyle.Render("Producers  ") + strings.Join(state.UnlockedProducerTiers, ", "),
	}
	left := boxStyle.Render(strings.Join(rows, "\n"))
	right := boxStyle.Render(strings.Join(access, "\n"))
	if lipgloss.Width(left)+lipgloss.Width(right) > termWidth() {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func renderState(state game.GameState) {
	fmt.Println(stateBox(state))
}

func renderSnapshot(snap game.Snapshot) {
	renderState(snap.State)

	names := make(map[string]string, len(snap.Artists))
	if len(snap.Artists) > 0 {
		accent.Println("\nArtists")
		for _, a := range snap.Artists {
			names[a.ID] = a.Name
			fmt.Printf("  %-20s talent %3d  pop %3d  mood %3d  loyalty %3d  %s/wk  %s\n",
				truncate(a.Name, 20), a.Talent, a.Popularity, a.Mood, a.Loyalty, money(a.WeeklyCost), muted.Sprint(a.ID))
		}
	}
	if len(snap.Executives) > 0 {
		accent.Println("\nExecutives")
		for _, e := range snap.Executives {
			fmt.Printf("  %-18s mood %3d  loyalty %3d\n", e.Role, e.Mood, e.Loyalty)
		}
	}
	if len(snap.Projects) > 0 {
		accent.Println("\nProjects")
		for _, p := range snap.Projects {
			progress := fmt.Sprintf("%d/%d songs", p.SongsCreated, p.SongCount)
			if p.Type == game.ProjectTour {
				progress = fmt.Sprintf("%d/%d cities", p.Metadata.CitiesRevealed, p.Metadata.CitiesPlanned)
			}
			fmt.Printf("  %-22s %-6s %-10s %-14s %s\n",
				truncate(p.Title, 22), p.Type, p.Stage, progress, names[p.ArtistID])
		}
	}
	if len(snap.Songs) > 0 {
		accent.Println("\nSongs")
		songs := append([]game.Song(nil), snap.Songs...)
		sort.SliceStable(songs, func(i, j int) bool { return songs[i].TotalStreams > songs[j].TotalStreams })
		for _, s := range songs {
			state := "in progress"
			switch {
			case s.IsReleased:
				state = "out"
			case s.IsRecorded:
				state = "recorded"
			}
			fmt.Printf("  %-24s q%3d  %-11s %12s streams  %s\n",
				truncate(s.Title, 24), s.Quality, state, humanize.Comma(s.TotalStreams), muted.Sprint(s.ID))
		}
	}
	if len(snap.Releases) > 0 {
		accent.Println("\nReleases")
		for _, r := range snap.Releases {
			fmt.Printf("  %-22s %-7s week %-3d %-9s %d songs\n",
				truncate(r.Title, 22), r.Type, r.ReleasePeriod, r.Status, len(r.SongIDs))
		}
	}
}

func renderSummary(sum *game.Summary, state game.GameState) {
	if sum == nil {
		return
	}
	net := sum.Revenue - sum.Expenses
	accent.Printf("Week %d", sum.Period)
	fmt.Printf("  revenue %s  expenses %s  net %s  streams %s  balance %s\n",
		success.Sprint(money(sum.Revenue)), danger.Sprint(money(sum.Expenses)), colorizeMoney(net),
		humanize.Comma(sum.Streams), money(state.Money))
	for _, line := range summaryLines(sum) {
		fmt.Println("  " + line)
	}
}

func summaryLines(sum *game.Summary) []string {
	var out []string
	for _, c := range sum.Changes {
		if c.Category == game.ChangeExpense && c.Amount == 0 {
			continue
		}
		text := c.Description
		if c.Amount != 0 {
			text += " " + colorizeMoney(c.Amount)
		}
		out = append(out, changeColor(c.Category).Sprint("• ")+text)
	}
	for _, ev := range sum.Events {
		out = append(out, warn.Sprint("! ")+ev.Title+": "+ev.Description)
	}
	return out
}

func changeColor(cat game.ChangeCategory) *color.Color {
	switch cat {
	case game.ChangeRevenue, game.ChangeRelease, game.ChangeUnlock:
		return success
	case game.ChangeExpense, game.ChangeSkipped, game.ChangeAccessLost:
		return danger
	case game.ChangeEvent:
		return warn
	default:
		return neutral
	}
}

func renderResults(res *game.CampaignResults) {
	if res == nil {
		return
	}
	c := success
	switch res.VictoryType {
	case game.VictoryFailure:
		c = danger
	case game.VictorySurvival:
		c = warn
	}
	body := []string{
		titleStyle.Render("Campaign complete: ") + c.Sprint(res.VictoryType),
		labelStyle.Render("Score        ") + humanize.Comma(int64(res.Score)),
		labelStyle.Render("Money        ") + humanize.Comma(int64(res.MoneyScore)),
		labelStyle.Render("Reputation   ") + humanize.Comma(int64(res.ReputationScore)),
		labelStyle.Render("Access bonus ") + humanize.Comma(int64(res.AccessTierBonus)),
		"",
		res.Summary,
	}
	if len(res.Achievements) > 0 {
		body = append(body, "", titleStyle.Render("Achievements"))
		for _, a := range res.Achievements {
			body = append(body, "  ★ "+a)
		}
	}
	fmt.Println(boxStyle.Render(strings.Join(body, "\n")))
}

func renderQuality(b game.QualityBreakdown) {
	rows := []string{
		titleStyle.Render(fmt.Sprintf("Quality %d", b.Quality)),
		labelStyle.Render("expected   ") + fmt.Sprintf("%.1f (±%.1f)", b.Expected, b.VarianceRange),
		labelStyle.Render("producer   ") + fmt.Sprintf("%d", b.ProducerSkill),
		labelStyle.Render("base       ") + fmt.Sprintf("%.2f", b.Base),
		labelStyle.Render("time       ") + fmt.Sprintf("x%.3f", b.TimeFactor),
		labelStyle.Render("popularity ") + fmt.Sprintf("x%.3f", b.PopularityFactor),
		labelStyle.Render("fatigue    ") + fmt.Sprintf("x%.3f", b.FatigueFactor),
		labelStyle.Render("budget     ") + fmt.Sprintf("x%.3f", b.BudgetFactor),
		labelStyle.Render("mood       ") + fmt.Sprintf("x%.3f", b.MoodFactor),
	}
	if b.Outlier != "" {
		rows = append(rows, warn.Sprint("outlier: "+b.Outlier))
	}
	fmt.Println(boxStyle.Render(strings.Join(rows, "\n")))
}

func renderPlan(gameID string, actions []game.ActionEnvelope) {
	if len(actions) == 0 {
		printInfo(fmt.Sprintf("No actions planned for %s.", gameID))
		return
	}
	accent.Printf("Plan for %s\n", gameID)
	for i, a := range actions {
		fmt.Printf("  %d. %s\n", i+1, describeAction(a))
	}
}

func describeAction(a game.ActionEnvelope) string {
	meta := func(k string) string {
		if v, ok := a.Metadata[k]; ok {
			return fmt.Sprint(v)
		}
		return ""
	}
	switch game.ActionKind(a.Type) {
	case game.ActionRoleMeeting:
		return fmt.Sprintf("meet %s: %s -> %s", a.TargetID, meta("meetingId"), meta("choiceId"))
	case game.ActionMarketing:
		return fmt.Sprintf("marketing on %s: $%s", a.TargetID, meta("budget"))
	case game.ActionArtistDialogue:
		return fmt.Sprintf("talk to %s: %s -> %s", a.TargetID, meta("dialogueId"), meta("choiceId"))
	}
	return a.Type
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
