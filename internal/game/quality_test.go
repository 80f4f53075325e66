package game

import (
	"fmt"
	"math"
	"testing"
)

func TestQualityAlwaysInRange(t *testing.T) {
	rules := DefaultRules()
	for _, tier := range rules.ProducerTiers {
		for _, ti := range rules.TimeOptions {
			for _, attr := range []int{0, 35, 70, 100} {
				for _, songs := range []int{1, 4, 14} {
					for _, budget := range []float64{0, 2_000, 40_000} {
						in := QualityInput{
							Talent:         attr,
							WorkEthic:      100 - attr,
							Popularity:     attr,
							Mood:           attr,
							ProducerTier:   tier.Name,
							TimeInvestment: ti.Name,
							BudgetPerSong:  budget,
							SongCount:      songs,
						}
						for seed := int64(0); seed < 8; seed++ {
							b, err := Quality(rules, NewRandom("q", 1, seed), in)
							if err != nil {
								t.Fatalf("quality: %v", err)
							}
							if b.Quality < MinQuality || b.Quality > MaxQuality {
								t.Fatalf("quality %d out of range for %+v", b.Quality, in)
							}
						}
					}
				}
			}
		}
	}
}

func TestExpectedQualityUpperMiddleBand(t *testing.T) {
	rules := DefaultRules()
	minViable, err := MinimumViableCost(rules, "legendary", "standard")
	if err != nil {
		t.Fatalf("min cost: %v", err)
	}
	in := QualityInput{
		Talent:         80,
		WorkEthic:      70,
		Popularity:     50,
		Mood:           50,
		ProducerTier:   "legendary",
		TimeInvestment: "standard",
		BudgetPerSong:  minViable * rules.Quality.EfficientRatio,
		SongCount:      1,
	}
	b, err := ExpectedQuality(rules, in)
	if err != nil {
		t.Fatalf("expected quality: %v", err)
	}
	if b.Expected < 70 || b.Expected > 90 {
		t.Fatalf("expected quality %.2f outside 70-90", b.Expected)
	}
	if b.ProducerSkill != 95 {
		t.Fatalf("producer skill = %d", b.ProducerSkill)
	}

	for seed := int64(0); seed < 200; seed++ {
		got, err := Quality(rules, NewRandom("scenario", 1, seed), in)
		if err != nil {
			t.Fatalf("quality: %v", err)
		}
		if got.Outlier != "" {
			continue
		}
		if got.Quality < 70 {
			t.Fatalf("seed %d: quality %d below band", seed, got.Quality)
		}
	}
}

func TestQualityOutlierMultipliers(t *testing.T) {
	rules := DefaultRules()
	in := QualityInput{Talent: 50, WorkEthic: 50, Popularity: 50, Mood: 50, ProducerTier: "local", TimeInvestment: "standard", BudgetPerSong: 4_000, SongCount: 1}
	seen := map[string]bool{}
	for seed := int64(0); seed < 2_000; seed++ {
		b, err := Quality(rules, NewRandom("outlier", 3, seed), in)
		if err != nil {
			t.Fatalf("quality: %v", err)
		}
		seen[b.Outlier] = true
		switch b.Outlier {
		case "breakout":
			if b.Multiplier < 1.5 || b.Multiplier > 2.0 {
				t.Fatalf("breakout multiplier %.3f", b.Multiplier)
			}
		case "critical_failure":
			if b.Multiplier < 0.5 || b.Multiplier > 0.7 {
				t.Fatalf("critical failure multiplier %.3f", b.Multiplier)
			}
		case "":
			if math.Abs(b.Multiplier-1) > b.VarianceRange+1e-9 {
				t.Fatalf("multiplier %.3f outside ±%.3f", b.Multiplier, b.VarianceRange)
			}
		default:
			t.Fatalf("unknown outlier %q", b.Outlier)
		}
	}
	if !seen["breakout"] || !seen["critical_failure"] || !seen[""] {
		t.Fatalf("expected every branch over 2000 draws, saw %v", seen)
	}
}

func TestVarianceShrinksWithSkill(t *testing.T) {
	rules := DefaultRules()
	low, _ := ExpectedQuality(rules, QualityInput{Talent: 10, ProducerTier: "local", TimeInvestment: "standard", SongCount: 1})
	high, _ := ExpectedQuality(rules, QualityInput{Talent: 100, ProducerTier: "legendary", TimeInvestment: "standard", SongCount: 1})
	if !(low.VarianceRange > high.VarianceRange) {
		t.Fatalf("variance low=%.3f high=%.3f", low.VarianceRange, high.VarianceRange)
	}
	if low.VarianceRange > rules.Quality.MaxVariance || high.VarianceRange < rules.Quality.MinVariance {
		t.Fatalf("variance outside configured bounds")
	}
}

func TestFactors(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"popularity 0", popularityFactor(0), 0.95},
		{"popularity 100", popularityFactor(100), 1.05},
		{"mood 0", moodFactor(0), 0.9},
		{"mood 100", moodFactor(100), 1.1},
		{"fatigue 3 songs", fatigueFactor(rules, 3), 1},
		{"fatigue 5 songs", fatigueFactor(rules, 5), 0.97 * 0.97},
		{"budget below minimum", budgetFactor(rules, 3_000, 4_000), 0.85},
		{"budget at minimum", budgetFactor(rules, 4_000, 4_000), 0.95},
		{"budget capped", budgetFactor(rules, 400_000, 4_000), 1.10},
		{"rushed, no work ethic", timeFactor(0.7, 0, 0.3), 0.7},
		{"rushed, full work ethic", timeFactor(0.7, 100, 0.3), 0.79},
		{"perfectionist, full work ethic", timeFactor(1.2, 100, 0.3), 1.26},
	}
	for _, tc := range tests {
		if math.Abs(tc.got-tc.want) > 1e-9 {
			t.Fatalf("%s: got %.6f want %.6f", tc.name, tc.got, tc.want)
		}
	}
}

func TestProjectCost(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		typ     ProjectType
		tier    string
		time    string
		songs   int
		cities  int
		mult    float64
		want    int64
		wantErr bool
	}{
		{ProjectSingle, "local", "standard", 1, 0, 1, 4_000, false},
		{ProjectEP, "regional", "extended", 4, 0, 1.5, roundInt64(4_000 * 1.8 * 1.4 * 4 * 1.5), false},
		{ProjectTour, "", "", 0, 5, 0, 15_000, false},
		{ProjectTour, "", "", 0, 0, 0, 0, true},
		{ProjectAlbum, "platinum", "standard", 10, 0, 1, 0, true},
	}
	for i, tc := range tests {
		t.Run(fmt.Sprintf("%d_%s", i, tc.typ), func(t *testing.T) {
			got, err := ProjectCost(rules, tc.typ, tc.tier, tc.time, tc.songs, tc.cities, tc.mult)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}
