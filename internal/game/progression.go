package game

import (
	"fmt"
	"math"
)

const (
	VictoryFailure    = "Failure"
	VictorySurvival   = "Survival"
	VictoryCommercial = "Commercial Success"
	VictoryCritical   = "Critical Acclaim"
	VictoryBalanced   = "Balanced Growth"
)

const (
	AchievementChartTopper = "Chart Topper"
	AchievementCritics     = "Critics' Darling"
	AchievementRoad        = "Road Warriors"
	AchievementPlatinum    = "Platinum Catalog"
	AchievementAllAccess   = "Access All Areas"
	AchievementInTheBlack  = "In the Black"
)

// AccessTierFor returns the highest tier whose threshold reputation meets.
func AccessTierFor(rules *Rules, cat AccessCategory, reputation int) string {
	tiers := rules.Access.Tiers(cat)
	for i := len(tiers) - 1; i >= 0; i-- {
		if reputation >= tiers[i].Threshold {
			return tiers[i].Name
		}
	}
	return NoAccess
}

func (p *period) updateAccessTiers() {
	for _, cat := range AccessCategories {
		prev := p.state.Access(cat)
		next := AccessTierFor(p.rules, cat, p.state.Reputation)
		if next == prev {
			continue
		}
		p.state.setAccess(cat, next)
		if p.rules.tierRank(cat, next) > p.rules.tierRank(cat, prev) {
			p.summary.note(ChangeUnlock, fmt.Sprintf("Unlocked %s access: %s", cat, next), Change{})
		} else {
			p.summary.note(ChangeAccessLost, fmt.Sprintf("Lost %s access, now %s", cat, next), Change{})
		}
	}
}

func (p *period) updateProducerTiers() {
	for _, t := range p.rules.ProducerTiers {
		if p.state.Reputation < t.Reputation || p.state.hasProducerTier(t.Name) {
			continue
		}
		p.state.UnlockedProducerTiers = append(p.state.UnlockedProducerTiers, t.Name)
		p.summary.note(ChangeUnlock, fmt.Sprintf("Unlocked %s producers", t.Name), Change{})
	}
}

// UnlockedProducerTiers lists tiers available at a reputation, in rules order.
func UnlockedProducerTiers(rules *Rules, reputation int) []string {
	var out []string
	for _, t := range rules.ProducerTiers {
		if reputation >= t.Reputation {
			out = append(out, t.Name)
		}
	}
	return out
}

type CampaignInput struct {
	State         GameState
	Songs         []Song
	Projects      []Project
	StartingMoney int64
}

func ScoreCampaign(rules *Rules, in CampaignInput) CampaignResults {
	sc := rules.Scoring
	st := in.State
	res := CampaignResults{
		MoneyScore:      int(math.Floor(float64(st.Money) / 1000)),
		ReputationScore: st.Reputation / 5,
	}
	allTop := true
	for _, cat := range AccessCategories {
		rank := rules.tierRank(cat, st.Access(cat))
		if rank >= len(sc.TierBonus) {
			rank = len(sc.TierBonus) - 1
		}
		res.AccessTierBonus += sc.TierBonus[rank]
		if rules.tierRank(cat, st.Access(cat)) < len(rules.Access.Tiers(cat))-1 {
			allTop = false
		}
	}
	res.Score = res.MoneyScore + res.ReputationScore + res.AccessTierBonus

	switch {
	case st.Money < 0 || res.Score < sc.FailureScore:
		res.VictoryType = VictoryFailure
		res.Summary = "The label could not keep the lights on."
	case res.Score < sc.SurvivalScore:
		res.VictoryType = VictorySurvival
		res.Summary = "The label made it through the year, but only just."
	default:
		ratio := float64(res.MoneyScore) / math.Max(1, float64(res.ReputationScore))
		switch {
		case ratio >= sc.CommercialRatio:
			res.VictoryType = VictoryCommercial
			res.Summary = "A money machine: the catalog pays for itself many times over."
		case ratio <= sc.CriticalRatio:
			res.VictoryType = VictoryCritical
			res.Summary = "Critics love the roster, and the industry knows the name."
		default:
			res.VictoryType = VictoryBalanced
			res.Summary = "Healthy books and a growing reputation."
		}
	}

	res.Achievements = []string{}
	var bestQuality int
	var streams int64
	for _, s := range in.Songs {
		if s.Quality > bestQuality {
			bestQuality = s.Quality
		}
		streams += s.TotalStreams
	}
	tours := 0
	for _, pr := range in.Projects {
		if pr.Type == ProjectTour && pr.Stage >= StageRecorded {
			tours++
		}
	}
	add := func(ok bool, name string) {
		if ok {
			res.Achievements = append(res.Achievements, name)
		}
	}
	add(bestQuality >= sc.ChartTopperQuality, AchievementChartTopper)
	add(st.Reputation >= sc.CriticsReputation, AchievementCritics)
	add(tours > 0, AchievementRoad)
	add(streams >= sc.PlatinumStreams, AchievementPlatinum)
	add(allTop, AchievementAllAccess)
	add(st.Money >= in.StartingMoney, AchievementInTheBlack)
	return res
}

func (p *period) campaignResults() CampaignResults {
	in := CampaignInput{State: *p.state, StartingMoney: p.rules.Campaign.StartingMoney}
	for _, s := range p.songs {
		in.Songs = append(in.Songs, *s)
	}
	for _, pr := range p.projects {
		in.Projects = append(in.Projects, *pr)
	}
	res := ScoreCampaign(p.rules, in)
	p.summary.note(ChangeEvent, fmt.Sprintf("Campaign complete: %s (score %d)", res.VictoryType, res.Score), Change{})
	return res
}
