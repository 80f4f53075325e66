package game

import "fmt"

// driftToward moves v at most step toward target.
func driftToward(v, target, step int) int {
	switch {
	case v > target:
		if v-target < step {
			return target
		}
		return v - step
	case v < target:
		if target-v < step {
			return target
		}
		return v + step
	}
	return v
}

// WorkloadStress is the mood penalty for an artist carrying active projects.
func WorkloadStress(rules *Rules, activeProjects int) int {
	extra := activeProjects - rules.Relationships.WorkloadFree
	if extra <= 0 {
		return 0
	}
	return extra * rules.Relationships.WorkloadStress
}

func (p *period) activeProjectCounts() map[string]int {
	counts := map[string]int{}
	for _, pr := range p.projects {
		if pr.CostCharged && pr.Stage.Active() {
			counts[pr.ArtistID]++
		}
	}
	return counts
}

// applyRelationshipDrift runs after every other mood source of the period has
// been flushed. A release boost suppresses artist drift; executive drift only
// touches executives nobody met with this period.
func (p *period) applyRelationshipDrift() error {
	rr := p.rules.Relationships
	active := p.activeProjectCounts()

	for _, a := range p.artists {
		if !a.Signed {
			continue
		}
		boost := p.summary.releaseBoosts[a.ID]
		mood := a.Mood + boost - WorkloadStress(p.rules, active[a.ID])
		if boost == 0 {
			mood = driftToward(mood, NeutralMood, rr.ArtistDrift)
		}
		mood = clampAttr(mood)
		if mood == a.Mood {
			continue
		}
		delta := mood - a.Mood
		a.Mood = mood
		p.summary.addArtistDelta(a.ID, ArtistDelta{Mood: delta})
		if boost > 0 {
			p.summary.note(ChangeRelationship, fmt.Sprintf("%s mood %+d after release", a.Name, delta), Change{ArtistID: a.ID, Amount: int64(delta)})
		}
		if err := p.store.UpdateArtist(p.ctx, *a); err != nil {
			return fmt.Errorf("update artist %s: %w", a.ID, err)
		}
	}

	for _, e := range p.executives {
		if p.usedExecutive[e.ID] {
			continue
		}
		mood := driftToward(e.Mood, NeutralMood, rr.ExecutiveDrift)
		loyalty := e.Loyalty
		if p.state.CurrentPeriod-e.LastActionPeriod >= rr.ExecutiveIdleLimit {
			loyalty = clampAttr(loyalty - rr.ExecutiveIdleLoss)
		}
		if mood == e.Mood && loyalty == e.Loyalty {
			continue
		}
		p.summary.ExecutiveChanges[e.Role] += mood - e.Mood
		if loyalty < e.Loyalty {
			p.summary.note(ChangeRelationship, fmt.Sprintf("%s feels sidelined (loyalty %d)", e.Role, loyalty), Change{Amount: int64(loyalty - e.Loyalty)})
		}
		e.Mood, e.Loyalty = mood, loyalty
		if err := p.store.UpdateExecutive(p.ctx, *e); err != nil {
			return fmt.Errorf("update executive %s: %w", e.ID, err)
		}
	}
	return nil
}
