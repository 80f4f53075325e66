package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	cl "labelsim/internal/cli"
	"labelsim/internal/content"
	"labelsim/internal/game"
	"labelsim/internal/syncq"
)

func TestRunSimFinishesCampaign(t *testing.T) {
	pack, err := content.Default()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	store := game.NewMemoryStore()
	svc := game.NewService(store, pack, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := runSim(context.Background(), svc, 4, 6); err != nil {
		t.Fatalf("sim: %v", err)
	}
}

func TestSimActionsRotate(t *testing.T) {
	kinds := []game.ActionKind{}
	for week := 1; week <= 3; week++ {
		acts := simActions(week, "a1")
		if len(acts) != 1 {
			t.Fatalf("week %d: %d actions", week, len(acts))
		}
		kinds = append(kinds, acts[0].Kind())
	}
	want := []game.ActionKind{game.ActionRoleMeeting, game.ActionArtistDialogue, game.ActionMarketing}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("week %d kind %s want %s", i+1, kinds[i], want[i])
		}
	}
}

func TestUnknownValue(t *testing.T) {
	err := unknownValue("executive role", "cmoo", game.ExecutiveRoles)
	if !strings.Contains(err.Error(), `did you mean "cmo"`) {
		t.Fatalf("err = %v", err)
	}
	err = unknownValue("marketing channel", "billboards", game.MarketingChannels)
	if !strings.Contains(err.Error(), "expected one of radio, digital, pr, influencer") {
		t.Fatalf("err = %v", err)
	}
}

func TestAdvanceKeepsPlanWhenOffline(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	env := game.ActionEnvelope{Type: "marketing", TargetID: "radio", Metadata: map[string]any{"budget": 500}}
	if err := syncq.Push("g1", env); err != nil {
		t.Fatalf("push: %v", err)
	}
	_, err := advanceWithPlan(context.Background(), cl.NewClient("http://127.0.0.1:1"), "g1")
	if err == nil || !strings.Contains(err.Error(), "1 planned actions kept") {
		t.Fatalf("err = %v", err)
	}
	pending, err := syncq.Pending("g1")
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %+v %v", pending, err)
	}
}

func TestDescribeAction(t *testing.T) {
	tests := []struct {
		env  game.ActionEnvelope
		want string
	}{
		{game.ActionEnvelope{Type: "role_meeting", TargetID: "cmo", Metadata: map[string]any{"meetingId": "press_day", "choiceId": "junket"}}, "meet cmo: press_day -> junket"},
		{game.ActionEnvelope{Type: "marketing", TargetID: "pr", Metadata: map[string]any{"budget": 750}}, "marketing on pr: $750"},
		{game.ActionEnvelope{Type: "artist_dialogue", TargetID: "a1", Metadata: map[string]any{"dialogueId": "checkin", "choiceId": "push"}}, "talk to a1: checkin -> push"},
	}
	for _, tc := range tests {
		if got := describeAction(tc.env); got != tc.want {
			t.Fatalf("describe = %q want %q", got, tc.want)
		}
	}
}
