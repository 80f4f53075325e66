package game

import (
	"context"
	"testing"
)

func TestDriftToward(t *testing.T) {
	tests := []struct {
		v, target, step, want int
	}{
		{80, 50, 3, 77},
		{20, 50, 3, 23},
		{51, 50, 3, 50},
		{49, 50, 5, 50},
		{50, 50, 3, 50},
	}
	for _, tc := range tests {
		if got := driftToward(tc.v, tc.target, tc.step); got != tc.want {
			t.Fatalf("driftToward(%d, %d, %d) = %d want %d", tc.v, tc.target, tc.step, got, tc.want)
		}
	}
}

func TestWorkloadStress(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		active int
		want   int
	}{
		{0, 0},
		{2, 0},
		{3, 5},
		{5, 15},
	}
	for _, tc := range tests {
		if got := WorkloadStress(rules, tc.active); got != tc.want {
			t.Fatalf("active=%d got=%d want=%d", tc.active, got, tc.want)
		}
	}
}

func TestRelationshipDriftThroughAdvance(t *testing.T) {
	ctx := context.Background()
	content := newTestContent()
	store := NewMemoryStore()
	state := seedGame(t, store, content.rules)

	res := advance(t, store, content, state.ID, RoleMeeting{RoleID: "head_ar", MeetingID: "scouting", ChoiceID: "praise"})
	snapExecs, _ := store.ListExecutives(ctx, state.ID)
	byRole := map[string]Executive{}
	for _, e := range snapExecs {
		byRole[e.Role] = e
	}
	if got := byRole["head_ar"]; got.Mood != 56 || got.Loyalty != 55 || got.LastActionPeriod != 1 {
		t.Fatalf("used executive = %+v", got)
	}
	if got := byRole["cmo"]; got.Mood != 65 || got.Loyalty != 50 {
		t.Fatalf("idle executive = %+v", got)
	}
	if res.Summary.ExecutiveChanges["head_ar"] != 6 || res.Summary.ExecutiveChanges["cmo"] != -5 {
		t.Fatalf("executive changes = %v", res.Summary.ExecutiveChanges)
	}

	artists, _ := store.ListArtists(ctx, state.ID)
	for _, a := range artists {
		switch a.ID {
		case "artist-a":
			if a.Mood != 50 {
				t.Fatalf("neutral artist drifted to %d", a.Mood)
			}
		case "artist-b":
			if a.Mood != 67 {
				t.Fatalf("happy artist mood = %d want 67", a.Mood)
			}
		}
	}

	for i := 0; i < 3; i++ {
		advance(t, store, content, state.ID)
	}
	snapExecs, _ = store.ListExecutives(ctx, state.ID)
	for _, e := range snapExecs {
		if e.Mood < 0 || e.Mood > 100 || e.Loyalty < 0 || e.Loyalty > 100 {
			t.Fatalf("executive out of range: %+v", e)
		}
		if e.Role == "cmo" && e.Loyalty >= 50 {
			t.Fatalf("idle cmo kept loyalty %d", e.Loyalty)
		}
	}
}
