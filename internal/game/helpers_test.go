package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

type testContent struct {
	rules     *Rules
	meetings  map[string]Choice
	dialogues map[string]Choice
	events    []NarrativeEvent
}

func newTestContent() *testContent {
	rules := DefaultRules()
	rules.Campaign.EventChance = 0
	mood := 6
	return &testContent{
		rules: rules,
		meetings: map[string]Choice{
			"cmo/weekly/push": {
				ID:        "push",
				Label:     "Push the radio angle",
				Immediate: Effects{Money: -1_000, Reputation: 3},
				Delayed:   Effects{ArtistMood: 4},
			},
			"head_ar/scouting/praise": {
				ID:            "praise",
				Label:         "Praise the demo pipeline",
				Immediate:     Effects{CreativeCapital: 2},
				ExecutiveMood: &mood,
			},
			"ceo/vision/bold": {
				ID:        "bold",
				Label:     "Announce a bold vision",
				Immediate: Effects{Reputation: 3},
			},
		},
		dialogues: map[string]Choice{
			"checkin/support": {
				ID:        "support",
				Label:     "Offer support",
				Immediate: Effects{ArtistMood: 5, ArtistLoyalty: 3},
			},
		},
	}
}

func (c *testContent) Rules() *Rules { return c.rules }

func (c *testContent) MeetingChoice(roleID, meetingID, choiceID string) (Choice, error) {
	ch, ok := c.meetings[roleID+"/"+meetingID+"/"+choiceID]
	if !ok {
		return Choice{}, fmt.Errorf("%w: %s/%s/%s", ErrUnknownChoice, roleID, meetingID, choiceID)
	}
	return ch, nil
}

func (c *testContent) DialogueChoice(dialogueID, choiceID string) (Choice, error) {
	ch, ok := c.dialogues[dialogueID+"/"+choiceID]
	if !ok {
		return Choice{}, fmt.Errorf("%w: %s/%s", ErrUnknownChoice, dialogueID, choiceID)
	}
	return ch, nil
}

func (c *testContent) NarrativeEvents() []NarrativeEvent { return c.events }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedGame writes a fixed game so two stores can be compared byte for byte.
func seedGame(t *testing.T, store *MemoryStore, rules *Rules) GameState {
	t.Helper()
	ctx := context.Background()
	state := NewGameState(rules, "game-1", 42)
	if err := store.CreateGame(ctx, state); err != nil {
		t.Fatalf("create game: %v", err)
	}
	artists := []Artist{
		{ID: "artist-a", GameID: state.ID, Name: "Nova Reyes", Talent: 80, WorkEthic: 70, Popularity: 50, Mood: 50, Loyalty: 50, Temperament: 40, Energy: 100, Signed: true, WeeklyCost: 800},
		{ID: "artist-b", GameID: state.ID, Name: "The Quiet Hours", Talent: 60, WorkEthic: 55, Popularity: 30, Mood: 70, Loyalty: 60, Temperament: 60, Energy: 100, Signed: true, WeeklyCost: 500},
	}
	for _, a := range artists {
		if err := store.CreateArtist(ctx, a); err != nil {
			t.Fatalf("create artist: %v", err)
		}
	}
	execs := []Executive{
		{ID: "exec-ar", GameID: state.ID, Role: "head_ar", Mood: 50, Loyalty: 50},
		{ID: "exec-cmo", GameID: state.ID, Role: "cmo", Mood: 70, Loyalty: 50},
	}
	for _, e := range execs {
		if err := store.CreateExecutive(ctx, e); err != nil {
			t.Fatalf("create executive: %v", err)
		}
	}
	return state
}

func addProject(t *testing.T, store *MemoryStore, rules *Rules, p Project) Project {
	t.Helper()
	if p.ProducerTier == "" {
		p.ProducerTier = "local"
	}
	if p.TimeInvestment == "" {
		p.TimeInvestment = "standard"
	}
	if p.TotalCost == 0 {
		cost, err := ProjectCost(rules, p.Type, p.ProducerTier, p.TimeInvestment, p.SongCount, p.Metadata.CitiesPlanned, 0)
		if err != nil {
			t.Fatalf("project cost: %v", err)
		}
		p.TotalCost = cost
	}
	if err := store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func advance(t *testing.T, store *MemoryStore, content Content, gameID string, actions ...Action) AdvanceResult {
	t.Helper()
	var res AdvanceResult
	err := store.InTx(context.Background(), func(repo Repository) error {
		var err error
		res, err = NewEngine(gameID, repo, content, quietLogger()).Advance(context.Background(), actions)
		return err
	})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	return res
}

func countChanges(s *Summary, cat ChangeCategory) int {
	n := 0
	for _, c := range s.Changes {
		if c.Category == cat {
			n++
		}
	}
	return n
}

// flakyRepo fails every song insert.
type flakyRepo struct {
	Repository
}

var errDiskFull = errors.New("disk full")

func (f flakyRepo) CreateSong(ctx context.Context, s Song) error {
	return errDiskFull
}
