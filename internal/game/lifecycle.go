package game

import (
	"fmt"

	"github.com/google/uuid"
)

// SongID is stable for a (project, index) pair so a replayed period writes
// the same rows.
func SongID(projectID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/song/%d", projectID, index))).String()
}

func (p *period) markRecordedSongs() error {
	for _, pr := range p.projects {
		if !pr.Type.IsRecording() || pr.Stage < StageMarketing || pr.Metadata.SongsRecorded {
			continue
		}
		n := 0
		for _, s := range p.projectSongs(pr.ID) {
			if s.IsRecorded {
				continue
			}
			s.IsRecorded = true
			if err := p.store.UpdateSong(p.ctx, *s); err != nil {
				return fmt.Errorf("update song %s: %w", s.ID, err)
			}
			n++
		}
		pr.Metadata.SongsRecorded = true
		if err := p.store.UpdateProject(p.ctx, *pr); err != nil {
			return fmt.Errorf("update project %s: %w", pr.ID, err)
		}
		p.summary.note(ChangeProject, fmt.Sprintf("%s: %d songs recorded", pr.Title, n), Change{ProjectID: pr.ID, ArtistID: pr.ArtistID})
	}
	return nil
}

func (p *period) generateSongs() error {
	for _, pr := range p.projects {
		if !pr.Type.IsRecording() || pr.Stage != StageProduction || !pr.CostCharged {
			continue
		}
		remaining := pr.SongCount - pr.SongsCreated
		if remaining <= 0 {
			continue
		}
		if remaining > p.rules.Economy.SongsPerPeriod {
			remaining = p.rules.Economy.SongsPerPeriod
		}
		a, err := p.artist(pr.ArtistID)
		if err != nil {
			return fmt.Errorf("project %s: %w", pr.ID, err)
		}
		for i := 0; i < remaining; i++ {
			b, err := Quality(p.rules, p.rng, QualityInput{
				Talent:         a.Talent,
				WorkEthic:      a.WorkEthic,
				Popularity:     a.Popularity,
				Mood:           a.Mood,
				ProducerTier:   pr.ProducerTier,
				TimeInvestment: pr.TimeInvestment,
				BudgetPerSong:  pr.BudgetPerSong(),
				SongCount:      pr.SongCount,
			})
			if err != nil {
				return fmt.Errorf("project %s quality: %w", pr.ID, err)
			}
			idx := pr.SongsCreated
			s := &Song{
				ID:            SongID(pr.ID, idx),
				GameID:        pr.GameID,
				ProjectID:     pr.ID,
				ArtistID:      pr.ArtistID,
				Title:         songTitle(pr, idx),
				Quality:       b.Quality,
				CreatedPeriod: p.state.CurrentPeriod,
			}
			if err := p.store.CreateSong(p.ctx, *s); err != nil {
				return fmt.Errorf("create song %s: %w", s.ID, err)
			}
			p.songs = append(p.songs, s)
			p.songByID[s.ID] = s
			pr.SongsCreated++

			desc := fmt.Sprintf("New song %q (quality %d)", s.Title, s.Quality)
			if b.Outlier != "" {
				desc += ", " + b.Outlier
			}
			p.summary.note(ChangeProject, desc, Change{ProjectID: pr.ID, ArtistID: pr.ArtistID, SongID: s.ID})
		}
		if err := p.store.UpdateProject(p.ctx, *pr); err != nil {
			return fmt.Errorf("update project %s: %w", pr.ID, err)
		}
	}
	return nil
}

func songTitle(pr *Project, idx int) string {
	if pr.SongCount == 1 {
		return pr.Title
	}
	return fmt.Sprintf("%s (Track %d)", pr.Title, idx+1)
}

// nextStage returns the stage a project moves to this period, or its current
// stage when no gate is open. elapsed counts periods since StartPeriod.
func nextStage(pr *Project, elapsed int) Stage {
	switch pr.Stage {
	case StagePlanning:
		if elapsed >= 1 {
			return StageProduction
		}
	case StageProduction:
		if pr.Type == ProjectTour {
			if elapsed >= 2 && pr.Metadata.CitiesPlanned > 0 && pr.Metadata.CitiesRevealed >= pr.Metadata.CitiesPlanned {
				return StageRecorded
			}
			return pr.Stage
		}
		done := pr.SongsCreated >= pr.SongCount
		if (done && elapsed >= 2) || elapsed >= 4 {
			return StageMarketing
		}
	case StageMarketing:
		if elapsed >= 3 {
			return StageReleased
		}
	}
	return pr.Stage
}

func (p *period) advanceProjectStages() error {
	for _, pr := range p.projects {
		if !pr.CostCharged {
			continue
		}
		elapsed := p.state.CurrentPeriod - pr.StartPeriod
		next := nextStage(pr, elapsed)
		if next <= pr.Stage {
			continue
		}
		from := pr.Stage
		pr.Stage = next
		if next == StageProduction {
			pr.Metadata.ProductionStart = p.state.CurrentPeriod
		}
		if err := p.store.UpdateProject(p.ctx, *pr); err != nil {
			return fmt.Errorf("update project %s: %w", pr.ID, err)
		}
		p.summary.note(ChangeProject, fmt.Sprintf("%s moved from %s to %s", pr.Title, from, next), Change{ProjectID: pr.ID, ArtistID: pr.ArtistID})

		if next == StageReleased {
			if err := p.autoRelease(pr); err != nil {
				return err
			}
		}
	}
	return nil
}

// autoRelease puts out a finished project's recorded songs unless a planned
// or executed release already covers them.
func (p *period) autoRelease(pr *Project) error {
	claimed := map[string]bool{}
	for _, r := range p.releases {
		for _, id := range r.SongIDs {
			claimed[id] = true
		}
		if r.LeadSingle != nil {
			claimed[r.LeadSingle.SongID] = true
		}
	}
	var songs []*Song
	for _, s := range p.projectSongs(pr.ID) {
		if s.IsRecorded && !s.IsReleased && !claimed[s.ID] {
			songs = append(songs, s)
		}
	}
	if len(songs) == 0 {
		return nil
	}
	typ := ReleaseType(pr.Type)
	if err := p.releaseSongs(songs, releaseOptions{title: pr.Title, typ: typ}); err != nil {
		return fmt.Errorf("release project %s: %w", pr.ID, err)
	}
	return nil
}
