package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	cl "labelsim/internal/cli"
	"labelsim/internal/config"
	"labelsim/internal/content"
	"labelsim/internal/game"
	"labelsim/internal/syncq"

	"github.com/spf13/cobra"
)

type options struct {
	apiBase     string
	contentPath string
}

func main() {
	cfg := config.LoadCLIFromEnv()
	opts := &options{apiBase: cfg.APIBaseURL, contentPath: cfg.ContentPath}

	root := &cobra.Command{
		Use:          "lbl",
		Short:        "Run a record label, one week at a time",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.apiBase, "api", opts.apiBase, "label api base url")
	root.PersistentFlags().StringVar(&opts.contentPath, "content", opts.contentPath, "content yaml overlay")

	root.AddCommand(
		newSimCmd(opts),
		newGameCmd(opts),
		newPlanCmd(opts),
		newAdvanceCmd(opts),
		newPlayCmd(opts),
		newPreviewCmd(opts),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (o *options) client() *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(o.apiBase), "/"))
}

func activeGame() (string, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return "", fmt.Errorf("no active game, run `lbl game new` first: %w", err)
	}
	return sess.GameID, nil
}

func newSimCmd(opts *options) *cobra.Command {
	var (
		seed    int64
		weeks   int
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Play a scripted campaign locally without a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := content.Load(opts.contentPath)
			if err != nil {
				return err
			}
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			svc := game.NewService(game.NewMemoryStore(), pack, logger)
			return runSim(cmd.Context(), svc, seed, weeks)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 1, "campaign seed")
	cmd.Flags().IntVar(&weeks, "weeks", 12, "campaign length in weeks")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log engine phases")
	return cmd
}

func runSim(ctx context.Context, svc *game.Service, seed int64, weeks int) error {
	state, err := svc.NewGame(ctx, game.NewGameInput{Seed: &seed, CampaignLength: weeks})
	if err != nil {
		return err
	}
	lead, err := svc.SignArtist(ctx, state.ID, game.SignArtistInput{
		Name: "Mara Vale", Archetype: "visionary", Talent: 72, WorkEthic: 60, Popularity: 25, Temperament: 55, WeeklyCost: 700,
	})
	if err != nil {
		return err
	}
	second, err := svc.SignArtist(ctx, state.ID, game.SignArtistInput{
		Name: "The Lanterns", Archetype: "workhorse", Talent: 58, WorkEthic: 80, Popularity: 15, Temperament: 45, WeeklyCost: 500,
	})
	if err != nil {
		return err
	}
	for _, role := range []string{"cmo", "head_ar"} {
		if _, err := svc.HireExecutive(ctx, state.ID, role); err != nil {
			return err
		}
	}
	projects := []game.StartProjectInput{
		{ArtistID: lead.ID, Title: "Paper Moons", Type: "single", BudgetMultiplier: 1.5},
		{ArtistID: second.ID, Title: "Lowlight", Type: "ep", SongCount: 4, TimeInvestment: "extended"},
		{ArtistID: lead.ID, Title: "Paper Moons Tour", Type: "tour", Cities: 3, MarketingBudget: 6_000},
	}
	for _, p := range projects {
		if _, err := svc.StartProject(ctx, state.ID, p); err != nil {
			return err
		}
	}
	renderState(state)

	for week := 1; ; week++ {
		res, err := svc.Advance(ctx, state.ID, simActions(week, lead.ID))
		if err != nil {
			return err
		}
		renderSummary(res.Summary, res.State)
		if res.CampaignResults != nil {
			fmt.Println()
			renderResults(res.CampaignResults)
			return nil
		}
	}
}

func simActions(week int, artistID string) []game.Action {
	switch week % 3 {
	case 1:
		return []game.Action{game.RoleMeeting{RoleID: "cmo", MeetingID: "campaign_review", ChoiceID: "social_first", ArtistID: artistID}}
	case 2:
		return []game.Action{game.ArtistDialogue{ArtistID: artistID, DialogueID: "checkin", ChoiceID: "support"}}
	default:
		return []game.Action{game.MarketingCampaign{Channel: "digital", Budget: 1_000, ArtistID: artistID}}
	}
}

func newGameCmd(opts *options) *cobra.Command {
	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Create and manage the active game",
	}

	var seed int64
	var length int
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new campaign and make it the active game",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := game.NewGameInput{CampaignLength: length}
			if cmd.Flags().Changed("seed") {
				in.Seed = &seed
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			state, err := opts.client().NewGame(ctx, in)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{GameID: state.ID, APIBase: opts.apiBase}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Game %s started (seed %d).", state.ID, state.Seed))
			renderState(state)
			return nil
		},
	}
	newCmd.Flags().Int64Var(&seed, "seed", 0, "campaign seed (random when unset)")
	newCmd.Flags().IntVar(&length, "weeks", 0, "campaign length in weeks")

	useCmd := &cobra.Command{
		Use:   "use <game-id>",
		Short: "Switch the active game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := opts.client().Snapshot(ctx, args[0]); err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{GameID: args[0], APIBase: opts.apiBase}); err != nil {
				return err
			}
			printSuccess("Active game set to " + args[0] + ".")
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active game",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := opts.client().Snapshot(ctx, gameID)
			if err != nil {
				return err
			}
			renderSnapshot(snap)
			return nil
		},
	}

	gameCmd.AddCommand(newCmd, useCmd, showCmd,
		newSignCmd(opts), newHireCmd(opts), newProjectCmd(opts), newReleaseCmd(opts))
	return gameCmd
}

func newSignCmd(opts *options) *cobra.Command {
	var in game.SignArtistInput
	cmd := &cobra.Command{
		Use:   "sign <name>",
		Short: "Sign an artist to the label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			in.Name = strings.Join(args, " ")
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			artist, err := opts.client().SignArtist(ctx, gameID, in)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Signed %s (%s).", artist.Name, artist.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Archetype, "archetype", "", "artist archetype")
	cmd.Flags().IntVar(&in.Talent, "talent", 50, "talent 0-100")
	cmd.Flags().IntVar(&in.WorkEthic, "work-ethic", 50, "work ethic 0-100")
	cmd.Flags().IntVar(&in.Popularity, "popularity", 10, "popularity 0-100")
	cmd.Flags().IntVar(&in.Temperament, "temperament", 50, "temperament 0-100")
	cmd.Flags().Int64Var(&in.WeeklyCost, "weekly-cost", 500, "salary per week")
	return cmd
}

func newHireCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hire <role>",
		Short: "Hire an executive (head_ar, cmo, cco, head_distribution)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			role := strings.ToLower(strings.TrimSpace(args[0]))
			if !game.ValidExecutiveRole(role) {
				return unknownValue("executive role", role, game.ExecutiveRoles)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			exec, err := opts.client().HireExecutive(ctx, gameID, role)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Hired a %s (%s).", exec.Role, exec.ID))
			return nil
		},
	}
}

func newProjectCmd(opts *options) *cobra.Command {
	var in game.StartProjectInput
	cmd := &cobra.Command{
		Use:   "project <artist-id> <title>",
		Short: "Start a single, EP, album or tour",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			in.ArtistID = args[0]
			in.Title = strings.Join(args[1:], " ")
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			p, err := opts.client().StartProject(ctx, gameID, in)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s %q planned, cost %s charged next week (%s).", p.Type, p.Title, money(p.TotalCost), p.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Type, "type", "single", "single, ep, album or tour")
	cmd.Flags().IntVar(&in.SongCount, "songs", 0, "song count (defaults to the minimum for the type)")
	cmd.Flags().StringVar(&in.ProducerTier, "producer", "local", "producer tier")
	cmd.Flags().StringVar(&in.TimeInvestment, "time", "standard", "time investment")
	cmd.Flags().Float64Var(&in.BudgetMultiplier, "budget", 0, "budget multiple of the minimum viable cost")
	cmd.Flags().IntVar(&in.Cities, "cities", 0, "tour cities")
	cmd.Flags().Int64Var(&in.MarketingBudget, "marketing", 0, "tour marketing budget")
	return cmd
}

func newReleaseCmd(opts *options) *cobra.Command {
	var (
		in         game.PlanReleaseInput
		songs      []string
		leadSong   string
		leadWeek   int
		leadBudget map[string]int64
	)
	cmd := &cobra.Command{
		Use:   "release <artist-id> <title>",
		Short: "Schedule a release of recorded songs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			in.ArtistID = args[0]
			in.Title = strings.Join(args[1:], " ")
			in.SongIDs = songs
			if leadSong != "" {
				in.LeadSingle = &game.LeadSingleInput{SongID: leadSong, ReleasePeriod: leadWeek, Marketing: leadBudget}
			}
			for ch := range in.Marketing {
				if !containsString(game.MarketingChannels, ch) {
					return unknownValue("marketing channel", ch, game.MarketingChannels)
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			rel, err := opts.client().PlanRelease(ctx, gameID, in)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s %q scheduled for week %d (%s).", rel.Type, rel.Title, rel.ReleasePeriod, rel.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Type, "type", "single", "single, ep or album")
	cmd.Flags().StringSliceVar(&songs, "songs", nil, "song ids on the release")
	cmd.Flags().IntVar(&in.ReleasePeriod, "week", 0, "release week")
	cmd.Flags().StringToInt64Var(&in.Marketing, "marketing", nil, "channel=budget pairs")
	cmd.Flags().StringVar(&leadSong, "lead-song", "", "song id to put out first as a lead single")
	cmd.Flags().IntVar(&leadWeek, "lead-week", 0, "lead single week")
	cmd.Flags().StringToInt64Var(&leadBudget, "lead-marketing", nil, "lead single channel=budget pairs")
	_ = cmd.MarkFlagRequired("songs")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newPlanCmd(opts *options) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Queue actions for the next advance",
	}

	var artistID string
	addCmd := &cobra.Command{Use: "add", Short: "Add an action to the plan"}

	meetingCmd := &cobra.Command{
		Use:   "meeting <role> <meeting> <choice>",
		Short: "Hold a role meeting",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := content.Load(opts.contentPath)
			if err != nil {
				return err
			}
			if _, err := pack.MeetingChoice(args[0], args[1], args[2]); err != nil {
				return err
			}
			meta := map[string]any{"meetingId": args[1], "choiceId": args[2]}
			if artistID != "" {
				meta["artistId"] = artistID
			}
			return queueAction(game.ActionEnvelope{Type: string(game.ActionRoleMeeting), TargetID: args[0], Metadata: meta})
		},
	}
	meetingCmd.Flags().StringVar(&artistID, "artist", "", "artist the meeting is about")

	marketingCmd := &cobra.Command{
		Use:   "marketing <channel> <budget>",
		Short: "Run a marketing push",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel := strings.ToLower(args[0])
			if !containsString(game.MarketingChannels, channel) {
				return unknownValue("marketing channel", channel, game.MarketingChannels)
			}
			budget, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || budget <= 0 {
				return fmt.Errorf("budget must be a positive whole number, got %q", args[1])
			}
			meta := map[string]any{"budget": budget}
			if artistID != "" {
				meta["artistId"] = artistID
			}
			return queueAction(game.ActionEnvelope{Type: string(game.ActionMarketing), TargetID: channel, Metadata: meta})
		},
	}
	marketingCmd.Flags().StringVar(&artistID, "artist", "", "artist to promote")

	dialogueCmd := &cobra.Command{
		Use:   "dialogue <artist-id> <dialogue> <choice>",
		Short: "Talk to an artist",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := content.Load(opts.contentPath)
			if err != nil {
				return err
			}
			if _, err := pack.DialogueChoice(args[1], args[2]); err != nil {
				return err
			}
			return queueAction(game.ActionEnvelope{
				Type:     string(game.ActionArtistDialogue),
				TargetID: args[0],
				Metadata: map[string]any{"dialogueId": args[1], "choiceId": args[2]},
			})
		},
	}
	addCmd.AddCommand(meetingCmd, marketingCmd, dialogueCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show queued actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			actions, err := syncq.Pending(gameID)
			if err != nil {
				return err
			}
			renderPlan(gameID, actions)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued action",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			n, err := syncq.Clear(gameID)
			if err != nil {
				return err
			}
			printInfo(fmt.Sprintf("Removed %d planned actions.", n))
			return nil
		},
	}

	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "List meetings and dialogues with their choices",
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := content.Load(opts.contentPath)
			if err != nil {
				return err
			}
			accent.Println("Meetings")
			for _, m := range pack.Meetings() {
				fmt.Printf("  %-18s %-20s %s\n", m.Role, m.ID, choiceIDs(m.Choices))
			}
			accent.Println("Dialogues")
			for _, d := range pack.Dialogues() {
				fmt.Printf("  %-20s %s\n", d.ID, choiceIDs(d.Choices))
			}
			return nil
		},
	}

	planCmd.AddCommand(addCmd, listCmd, clearCmd, optionsCmd)
	return planCmd
}

func queueAction(env game.ActionEnvelope) error {
	gameID, err := activeGame()
	if err != nil {
		return err
	}
	if _, err := game.DecodeAction(env); err != nil {
		return err
	}
	if err := syncq.Push(gameID, env); err != nil {
		return err
	}
	printSuccess("Planned: " + describeAction(env))
	return nil
}

func newAdvanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Advance the active game one week using the queued plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			res, err := advanceWithPlan(ctx, opts.client(), gameID)
			if err != nil {
				return err
			}
			renderSummary(res.Summary, res.State)
			if res.CampaignResults != nil {
				fmt.Println()
				renderResults(res.CampaignResults)
			}
			return nil
		},
	}
}

// advanceWithPlan sends the queued plan and clears it only once the server
// has accepted the period.
func advanceWithPlan(ctx context.Context, client *cl.Client, gameID string) (game.AdvanceResult, error) {
	actions, err := syncq.Pending(gameID)
	if err != nil {
		return game.AdvanceResult{}, err
	}
	res, err := client.Advance(ctx, gameID, actions)
	if err != nil {
		if !cl.IsAPIError(err) && len(actions) > 0 {
			return res, fmt.Errorf("advance failed, %d planned actions kept: %w", len(actions), err)
		}
		return res, err
	}
	if _, err := syncq.Clear(gameID); err != nil {
		return res, fmt.Errorf("advance succeeded but the plan could not be cleared: %w", err)
	}
	return res, nil
}

func newPreviewCmd(opts *options) *cobra.Command {
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Try the label's formulas without touching a game",
	}

	var (
		in   game.QualityInput
		seed int64
	)
	qualityCmd := &cobra.Command{
		Use:   "quality",
		Short: "Preview a song quality roll",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			var out game.QualityBreakdown
			if err := opts.client().Preview(ctx, "quality", seed, in, &out); err != nil {
				var apiErr *cl.APIError
				if errors.As(err, &apiErr) {
					return err
				}
				printWarn("api unreachable, computing locally")
				pack, lerr := content.Load(opts.contentPath)
				if lerr != nil {
					return lerr
				}
				if out, err = game.Quality(pack.Rules(), game.NewRandom("preview", 0, seed), in); err != nil {
					return err
				}
			}
			renderQuality(out)
			return nil
		},
	}
	qualityCmd.Flags().Int64Var(&seed, "seed", 1, "preview seed")
	qualityCmd.Flags().IntVar(&in.Talent, "talent", 60, "artist talent")
	qualityCmd.Flags().IntVar(&in.WorkEthic, "work-ethic", 60, "artist work ethic")
	qualityCmd.Flags().IntVar(&in.Popularity, "popularity", 20, "artist popularity")
	qualityCmd.Flags().IntVar(&in.Mood, "mood", 50, "artist mood")
	qualityCmd.Flags().StringVar(&in.ProducerTier, "producer", "local", "producer tier")
	qualityCmd.Flags().StringVar(&in.TimeInvestment, "time", "standard", "time investment")
	qualityCmd.Flags().Float64Var(&in.BudgetPerSong, "budget-per-song", 4_000, "spend per song")
	qualityCmd.Flags().IntVar(&in.SongCount, "songs", 1, "songs in the project")

	previewCmd.AddCommand(qualityCmd)
	return previewCmd
}

func unknownValue(what, got string, valid []string) error {
	if s, ok := content.Suggest(got, valid); ok {
		return fmt.Errorf("unknown %s %q (did you mean %q?)", what, got, s)
	}
	return fmt.Errorf("unknown %s %q, expected one of %s", what, got, strings.Join(valid, ", "))
}

func choiceIDs(choices []game.Choice) string {
	ids := make([]string, 0, len(choices))
	for _, c := range choices {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, " / ")
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
