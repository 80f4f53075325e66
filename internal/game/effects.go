package game

import (
	"fmt"
	"sort"
)

// Effects is the shared vocabulary for meeting choices, dialogue, scheduled
// events and narrative events.
type Effects struct {
	Money            int64 `json:"money,omitempty" yaml:"money"`
	Reputation       int   `json:"reputation,omitempty" yaml:"reputation"`
	CreativeCapital  int   `json:"creative_capital,omitempty" yaml:"creative_capital"`
	ArtistMood       int   `json:"artist_mood,omitempty" yaml:"artist_mood"`
	ArtistLoyalty    int   `json:"artist_loyalty,omitempty" yaml:"artist_loyalty"`
	ArtistPopularity int   `json:"artist_popularity,omitempty" yaml:"artist_popularity"`
}

func (e Effects) IsZero() bool {
	return e == Effects{}
}

func (e Effects) artistDelta() ArtistDelta {
	return ArtistDelta{Mood: e.ArtistMood, Loyalty: e.ArtistLoyalty, Popularity: e.ArtistPopularity}
}

// applyEffects is the one routine every effect source goes through. Money
// lands in the summary; scalar state is clamped; artist deltas are queued
// for the next flush.
func (p *period) applyEffects(source, artistID string, eff Effects, moneyCat ExpenseCategory) {
	p.summary.addMoney(moneyCat, eff.Money, source)

	if eff.Reputation != 0 {
		before := p.state.Reputation
		p.state.Reputation = clampAttr(before + eff.Reputation)
		p.summary.addReputation(source, p.state.Reputation-before)
	}
	if eff.CreativeCapital != 0 {
		p.state.CreativeCapital += eff.CreativeCapital
		if p.state.CreativeCapital < 0 {
			p.state.CreativeCapital = 0
		}
	}

	d := eff.artistDelta()
	if d == (ArtistDelta{}) {
		return
	}
	for _, id := range p.effectTargets(artistID) {
		p.queueArtistDelta(id, d)
	}
}

// effectTargets resolves an artist scope: one artist, or every signed artist
// when the effect is label-wide.
func (p *period) effectTargets(artistID string) []string {
	if artistID != "" {
		if _, ok := p.artistByID[artistID]; ok {
			return []string{artistID}
		}
		return nil
	}
	var ids []string
	for _, a := range p.artists {
		if a.Signed {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (p *period) queueArtistDelta(artistID string, d ArtistDelta) {
	cur := p.pending[artistID]
	cur.Mood += d.Mood
	cur.Loyalty += d.Loyalty
	cur.Popularity += d.Popularity
	p.pending[artistID] = cur
	p.summary.addArtistDelta(artistID, d)
}

func (p *period) scheduleEffects(source, artistID string, eff Effects) {
	if eff.IsZero() {
		return
	}
	p.state.ScheduledEvents = append(p.state.ScheduledEvents, ScheduledEvent{
		TriggerPeriod: p.state.CurrentPeriod + 1,
		Source:        source,
		ArtistID:      artistID,
		Effects:       eff,
	})
}

// triggerScheduled fires every event whose trigger period has arrived and
// drops it from the queue.
func (p *period) triggerScheduled() {
	var keep []ScheduledEvent
	for _, ev := range p.state.ScheduledEvents {
		if ev.TriggerPeriod > p.state.CurrentPeriod {
			keep = append(keep, ev)
			continue
		}
		p.applyEffects(ev.Source+" (follow-up)", ev.ArtistID, ev.Effects, ExpenseMeetings)
		p.summary.note(ChangeEvent, fmt.Sprintf("Delayed effect from %s", ev.Source), Change{ArtistID: ev.ArtistID})
	}
	p.state.ScheduledEvents = keep
}

type NarrativeEvent struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Weight      int     `yaml:"weight"`
	Effects     Effects `yaml:"effects"`
}

// rollNarrativeEvent draws at most one event per period, weighted.
func (p *period) rollNarrativeEvent(events []NarrativeEvent) {
	if len(events) == 0 || !p.rng.Chance(p.rules.Campaign.EventChance) {
		return
	}
	sorted := make([]NarrativeEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	total := 0
	for _, ev := range sorted {
		total += eventWeight(ev)
	}
	pick := p.rng.Intn(total)
	for _, ev := range sorted {
		pick -= eventWeight(ev)
		if pick >= 0 {
			continue
		}
		p.applyEffects(ev.Title, "", ev.Effects, ExpenseEvents)
		p.summary.Events = append(p.summary.Events, EventRecord{ID: ev.ID, Title: ev.Title, Description: ev.Description})
		p.summary.note(ChangeEvent, ev.Title+": "+ev.Description, Change{})
		return
	}
}

func eventWeight(ev NarrativeEvent) int {
	if ev.Weight <= 0 {
		return 1
	}
	return ev.Weight
}
