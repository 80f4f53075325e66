package game

import "fmt"

// Burn is the recurring cost of one period, split by source.
type Burn struct {
	Operations int64 `json:"operations"`
	Artists    int64 `json:"artists"`
	Executives int64 `json:"executives"`
}

func (b Burn) Total() int64 {
	return b.Operations + b.Artists + b.Executives
}

func ArtistSalaries(artists []Artist) int64 {
	var total int64
	for _, a := range artists {
		if a.Signed {
			total += a.WeeklyCost
		}
	}
	return total
}

func ExecutiveSalaries(rules *Rules, execs []Executive) int64 {
	var total int64
	for _, e := range execs {
		total += rules.Economy.ExecutiveSalary[e.Role]
	}
	return total
}

// fundNewProjects charges every project created since the last advance.
// CostCharged is set in the same step, so stage transitions never charge again.
// A project that waited on hold has its StartPeriod moved up so the stage
// gates measure time from funding, as if it had been started last period.
func (p *period) fundNewProjects() error {
	for _, pr := range p.projects {
		if pr.CostCharged {
			continue
		}
		if p.summary.available(p.state) < pr.TotalCost {
			p.summary.skip(fmt.Sprintf("%s on hold: needs %d to start", pr.Title, pr.TotalCost), Change{ProjectID: pr.ID, ArtistID: pr.ArtistID})
			continue
		}
		p.summary.addExpense(ExpenseProjects, pr.TotalCost, Change{
			Description: fmt.Sprintf("Funded %s %s", pr.Type, pr.Title),
			ProjectID:   pr.ID,
			ArtistID:    pr.ArtistID,
		})
		pr.CostCharged = true
		if pr.StartPeriod < p.state.CurrentPeriod-1 {
			pr.StartPeriod = p.state.CurrentPeriod - 1
		}
		if err := p.store.UpdateProject(p.ctx, *pr); err != nil {
			return fmt.Errorf("update project %s: %w", pr.ID, err)
		}
	}
	return nil
}

func (p *period) burn() Burn {
	artists := make([]Artist, 0, len(p.artists))
	for _, a := range p.artists {
		artists = append(artists, *a)
	}
	execs := make([]Executive, 0, len(p.executives))
	for _, e := range p.executives {
		execs = append(execs, *e)
	}
	return Burn{
		Operations: p.rng.Int64Range(p.rules.Economy.BurnMin, p.rules.Economy.BurnMax),
		Artists:    ArtistSalaries(artists),
		Executives: ExecutiveSalaries(p.rules, execs),
	}
}

// chargeBurn books operations and salaries as one change entry while keeping
// the per-category breakdown.
func (p *period) chargeBurn() {
	b := p.burn()
	total := b.Total()
	if total <= 0 {
		return
	}
	s := p.summary
	s.Expenses += total
	s.ExpenseBreakdown[ExpenseOperations] += b.Operations
	if b.Artists > 0 {
		s.ExpenseBreakdown[ExpenseArtists] += b.Artists
	}
	if b.Executives > 0 {
		s.ExpenseBreakdown[ExpenseExecutives] += b.Executives
	}
	desc := fmt.Sprintf("Weekly burn (operations %d, artists %d, executives %d)", b.Operations, b.Artists, b.Executives)
	s.Changes = append(s.Changes, Change{Category: ChangeExpense, Description: desc, Amount: -total})
}
