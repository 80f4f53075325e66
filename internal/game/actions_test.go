package game

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Action
	}{
		{
			name: "meeting",
			raw:  `{"type":"role_meeting","targetId":"cmo","metadata":{"meetingId":"weekly","choiceId":"push"}}`,
			want: RoleMeeting{RoleID: "cmo", MeetingID: "weekly", ChoiceID: "push"},
		},
		{
			name: "marketing with numeric budget",
			raw:  `{"type":"marketing","targetId":"radio","metadata":{"budget":2500,"artistId":"a1"}}`,
			want: MarketingCampaign{Channel: "radio", Budget: 2500, ArtistID: "a1"},
		},
		{
			name: "marketing with string budget",
			raw:  `{"type":"marketing","targetId":"pr","metadata":{"budget":"1200"}}`,
			want: MarketingCampaign{Channel: "pr", Budget: 1200},
		},
		{
			name: "dialogue",
			raw:  `{"type":"artist_dialogue","targetId":"a1","metadata":{"dialogueId":"checkin","choiceId":"support"}}`,
			want: ArtistDialogue{ArtistID: "a1", DialogueID: "checkin", ChoiceID: "support"},
		},
	}
	for _, tc := range tests {
		var env ActionEnvelope
		if err := json.Unmarshal([]byte(tc.raw), &env); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		got, err := DecodeAction(env)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %#v want %#v", tc.name, got, tc.want)
		}
		back, err := DecodeAction(EncodeAction(got))
		if err != nil || back != got {
			t.Fatalf("%s: re-encode gave %#v, %v", tc.name, back, err)
		}
	}
}

func TestDecodeActionErrors(t *testing.T) {
	if _, err := DecodeAction(ActionEnvelope{Type: "bribe"}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := DecodeAction(ActionEnvelope{Type: "marketing", TargetID: "radio"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected missing budget to fail, got %v", err)
	}
	_, err := DecodeActions([]ActionEnvelope{{Type: "role_meeting"}, {Type: "nope"}})
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected batch decode to fail, got %v", err)
	}
}

func TestMeetingsRunBeforeOtherActions(t *testing.T) {
	content := newTestContent()
	store := NewMemoryStore()
	state := seedGame(t, store, content.rules)

	res := advance(t, store, content, state.ID,
		MarketingCampaign{Channel: "digital", Budget: 1_000},
		RoleMeeting{RoleID: "cmo", MeetingID: "weekly", ChoiceID: "push"},
	)
	var order []ChangeCategory
	for _, c := range res.Summary.Changes {
		if c.Category == ChangeAction || c.Description == "digital campaign" {
			order = append(order, c.Category)
		}
	}
	if len(order) != 2 || order[0] != ChangeAction || order[1] != ChangeExpense {
		t.Fatalf("meeting should be processed first, got %v", order)
	}
	if res.State.UsedFocusSlots != 2 {
		t.Fatalf("used focus = %d", res.State.UsedFocusSlots)
	}
}

func TestUnresolvedChoiceFallback(t *testing.T) {
	content := newTestContent()
	store := NewMemoryStore()
	state := seedGame(t, store, content.rules)

	res := advance(t, store, content, state.ID,
		RoleMeeting{RoleID: "cmo", MeetingID: "weekly", ChoiceID: "does-not-exist"},
		ArtistDialogue{ArtistID: "ghost", DialogueID: "checkin", ChoiceID: "support"},
	)
	if got := res.Summary.ExpenseBreakdown[ExpenseMeetings]; got != 1_000 {
		t.Fatalf("fallback expenses = %d want 1000", got)
	}
	if res.State.Reputation != state.Reputation-2 {
		t.Fatalf("reputation = %d want %d", res.State.Reputation, state.Reputation-2)
	}
	if res.State.UsedFocusSlots != 2 {
		t.Fatalf("each action should use a focus slot, used %d", res.State.UsedFocusSlots)
	}
}

func TestMarketingCampaign(t *testing.T) {
	ctx := context.Background()
	content := newTestContent()
	store := NewMemoryStore()
	state := seedGame(t, store, content.rules)

	res := advance(t, store, content, state.ID, MarketingCampaign{Channel: "radio", Budget: 10_000})
	if got := res.Summary.ExpenseBreakdown[ExpenseMarketing]; got != 10_000 {
		t.Fatalf("marketing expense = %d", got)
	}
	if res.State.Reputation != state.Reputation+2 {
		t.Fatalf("reputation = %d", res.State.Reputation)
	}
	artists, _ := store.ListArtists(ctx, state.ID)
	for _, a := range artists {
		want := 56
		if a.ID == "artist-b" {
			want = 36
		}
		if a.Popularity != want {
			t.Fatalf("%s popularity = %d want %d", a.ID, a.Popularity, want)
		}
	}
}

func TestMarketingSkippedWhenBroke(t *testing.T) {
	ctx := context.Background()
	content := newTestContent()
	store := NewMemoryStore()
	state := seedGame(t, store, content.rules)
	state.Money = 100
	if err := store.SaveGame(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	res := advance(t, store, content, state.ID, MarketingCampaign{Channel: "radio", Budget: 5_000})
	if got := res.Summary.ExpenseBreakdown[ExpenseMarketing]; got != 0 {
		t.Fatalf("marketing charged %d while broke", got)
	}
	skipped := false
	for _, c := range res.Summary.Changes {
		if c.Category == ChangeSkipped && c.Amount == 0 {
			skipped = true
		}
	}
	if !skipped {
		t.Fatalf("expected a zero-amount skipped entry")
	}
	if res.State.UsedFocusSlots != 1 {
		t.Fatalf("used focus = %d", res.State.UsedFocusSlots)
	}
}

func TestDelayedEffectsFireNextPeriod(t *testing.T) {
	content := newTestContent()
	store := NewMemoryStore()
	state := seedGame(t, store, content.rules)

	res := advance(t, store, content, state.ID, RoleMeeting{RoleID: "cmo", MeetingID: "weekly", ChoiceID: "push"})
	if len(res.State.ScheduledEvents) != 1 || res.State.ScheduledEvents[0].TriggerPeriod != 2 {
		t.Fatalf("scheduled = %+v", res.State.ScheduledEvents)
	}
	if res.Summary.ArtistChanges["artist-a"].Mood != 0 {
		t.Fatalf("delayed mood applied early: %+v", res.Summary.ArtistChanges)
	}

	res = advance(t, store, content, state.ID)
	if len(res.State.ScheduledEvents) != 0 {
		t.Fatalf("event not consumed: %+v", res.State.ScheduledEvents)
	}
	if got := res.Summary.ArtistChanges["artist-a"].Mood; got != 1 {
		t.Fatalf("artist-a net mood change = %d want +4 then -3", got)
	}
}
