package game

import "testing"

func TestAccessTierFor(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		cat  AccessCategory
		rep  int
		want string
	}{
		{AccessPlaylist, 0, "none"},
		{AccessPlaylist, 9, "none"},
		{AccessPlaylist, 12, "niche"},
		{AccessPlaylist, 60, "flagship"},
		{AccessPress, 8, "blogs"},
		{AccessVenue, 44, "theaters"},
		{AccessVenue, 100, "arenas"},
	}
	for _, tc := range tests {
		if got := AccessTierFor(rules, tc.cat, tc.rep); got != tc.want {
			t.Fatalf("%s at %d = %q want %q", tc.cat, tc.rep, got, tc.want)
		}
	}
}

func TestScoreCampaignVictoryTypes(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name  string
		money int64
		rep   int
		top   bool
		want  string
	}{
		{"bankrupt", -1, 100, true, VictoryFailure},
		{"low score", 20_000, 10, false, VictoryFailure},
		{"scraping by", 70_000, 20, false, VictorySurvival},
		{"cash heavy", 400_000, 20, false, VictoryCommercial},
		{"critics", 30_000, 100, true, VictoryCritical},
		{"balanced", 50_000, 100, true, VictoryBalanced},
	}
	for _, tc := range tests {
		st := GameState{Money: tc.money, Reputation: tc.rep, PlaylistAccess: "none", PressAccess: "none", VenueAccess: "none"}
		if tc.top {
			st.PlaylistAccess, st.PressAccess, st.VenueAccess = "flagship", "national", "arenas"
		}
		res := ScoreCampaign(rules, CampaignInput{State: st, StartingMoney: 100_000})
		if res.VictoryType != tc.want {
			t.Fatalf("%s: got %s (score %d, money %d, rep %d)", tc.name, res.VictoryType, res.Score, res.MoneyScore, res.ReputationScore)
		}
		if res.Score != res.MoneyScore+res.ReputationScore+res.AccessTierBonus {
			t.Fatalf("%s: score does not add up", tc.name)
		}
	}
}

func TestScoreCampaignBonusAndAchievements(t *testing.T) {
	rules := DefaultRules()
	st := GameState{Money: 250_000, Reputation: 85, PlaylistAccess: "flagship", PressAccess: "national", VenueAccess: "arenas"}
	res := ScoreCampaign(rules, CampaignInput{
		State:         st,
		StartingMoney: 100_000,
		Songs:         []Song{{Quality: 92, TotalStreams: 600_000}, {Quality: 70, TotalStreams: 500_000}},
		Projects:      []Project{{Type: ProjectTour, Stage: StageRecorded}},
	})
	if res.AccessTierBonus != 60 {
		t.Fatalf("tier bonus = %d", res.AccessTierBonus)
	}
	if res.MoneyScore != 250 || res.ReputationScore != 17 {
		t.Fatalf("money=%d rep=%d", res.MoneyScore, res.ReputationScore)
	}
	want := []string{AchievementChartTopper, AchievementCritics, AchievementRoad, AchievementPlatinum, AchievementAllAccess, AchievementInTheBlack}
	if len(res.Achievements) != len(want) {
		t.Fatalf("achievements = %v", res.Achievements)
	}
	for i := range want {
		if res.Achievements[i] != want[i] {
			t.Fatalf("achievement %d = %q want %q", i, res.Achievements[i], want[i])
		}
	}
}

func TestNegativeMoneyScoreFloors(t *testing.T) {
	res := ScoreCampaign(DefaultRules(), CampaignInput{State: GameState{Money: -1_500}})
	if res.MoneyScore != -2 {
		t.Fatalf("money score = %d", res.MoneyScore)
	}
}

func TestUnlockedProducerTiers(t *testing.T) {
	rules := DefaultRules()
	got := UnlockedProducerTiers(rules, 40)
	if len(got) != 3 || got[2] != "national" {
		t.Fatalf("got %v", got)
	}
}
