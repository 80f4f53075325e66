package syncq

import (
	"testing"

	"labelsim/internal/game"
)

func TestQueuePerGame(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if got, err := Pending("g1"); err != nil || len(got) != 0 {
		t.Fatalf("empty queue: %v %v", got, err)
	}

	meeting := game.ActionEnvelope{Type: "role_meeting", TargetID: "cmo", Metadata: map[string]any{"meetingId": "press_day", "choiceId": "junket"}}
	marketing := game.ActionEnvelope{Type: "marketing", TargetID: "radio", Metadata: map[string]any{"budget": float64(2000)}}
	for _, step := range []struct {
		game   string
		action game.ActionEnvelope
	}{
		{"g1", meeting},
		{"g2", marketing},
		{"g1", marketing},
	} {
		if err := Push(step.game, step.action); err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	got, err := Pending("g1")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(got) != 2 || got[0].TargetID != "cmo" || got[1].TargetID != "radio" {
		t.Fatalf("pending g1 = %+v", got)
	}
	if got[1].Metadata["budget"] != float64(2000) {
		t.Fatalf("metadata = %+v", got[1].Metadata)
	}

	removed, err := Clear("g1")
	if err != nil || removed != 2 {
		t.Fatalf("clear: %d %v", removed, err)
	}
	if got, _ := Pending("g1"); len(got) != 0 {
		t.Fatalf("g1 still queued: %+v", got)
	}
	if got, _ := Pending("g2"); len(got) != 1 {
		t.Fatalf("g2 lost its plan: %+v", got)
	}
	if removed, err := Clear("g1"); err != nil || removed != 0 {
		t.Fatalf("second clear: %d %v", removed, err)
	}
}
