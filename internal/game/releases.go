package game

import "fmt"

type releaseOptions struct {
	title     string
	typ       ReleaseType
	marketing map[string]int64
	momentum  bool
}

// executeReleases runs due lead singles before their main releases so the
// momentum bonus applies within the same period.
func (p *period) executeReleases() error {
	for _, r := range p.releases {
		if r.Status == ReleaseReleased {
			continue
		}
		if ls := r.LeadSingle; ls != nil && !ls.Executed && ls.ReleasePeriod <= p.state.CurrentPeriod {
			if err := p.executeLeadSingle(r); err != nil {
				return err
			}
		}
		if r.ReleasePeriod <= p.state.CurrentPeriod {
			if err := p.executeRelease(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *period) executeLeadSingle(r *Release) error {
	ls := r.LeadSingle
	s, ok := p.songByID[ls.SongID]
	if !ok || !s.IsRecorded {
		p.summary.skip(fmt.Sprintf("Lead single for %s waiting on recording", r.Title), Change{ArtistID: r.ArtistID, SongID: ls.SongID})
		return nil
	}
	if s.IsReleased {
		ls.Executed = true
		return p.saveRelease(r)
	}
	cost := sumBudget(ls.Marketing)
	if p.summary.available(p.state) < cost {
		p.summary.skip(fmt.Sprintf("Lead single %q postponed: needs %d for marketing", s.Title, cost), Change{ArtistID: r.ArtistID, SongID: s.ID})
		return nil
	}
	p.summary.addExpense(ExpenseMarketing, cost, Change{
		Description: fmt.Sprintf("Lead single marketing: %s", s.Title),
		ArtistID:    r.ArtistID,
		SongID:      s.ID,
	})
	if err := p.releaseSongs([]*Song{s}, releaseOptions{title: s.Title, typ: ReleaseSingle, marketing: ls.Marketing}); err != nil {
		return fmt.Errorf("lead single %s: %w", r.ID, err)
	}
	ls.Executed = true
	return p.saveRelease(r)
}

func (p *period) executeRelease(r *Release) error {
	var songs []*Song
	for _, id := range r.SongIDs {
		s, ok := p.songByID[id]
		if !ok || !s.IsRecorded {
			p.summary.skip(fmt.Sprintf("%s delayed: not every song is recorded", r.Title), Change{ArtistID: r.ArtistID})
			return nil
		}
		if !s.IsReleased {
			songs = append(songs, s)
		}
	}
	if len(songs) == 0 {
		p.summary.skip(fmt.Sprintf("%s: every song is already out, marketing not spent", r.Title), Change{ArtistID: r.ArtistID})
		r.Status = ReleaseReleased
		r.ReleasePeriod = p.state.CurrentPeriod
		return p.saveRelease(r)
	}
	cost := sumBudget(r.Marketing)
	if p.summary.available(p.state) < cost {
		p.summary.skip(fmt.Sprintf("%s postponed: needs %d for marketing", r.Title, cost), Change{ArtistID: r.ArtistID})
		return nil
	}
	p.summary.addExpense(ExpenseMarketing, cost, Change{
		Description: fmt.Sprintf("Release marketing: %s", r.Title),
		ArtistID:    r.ArtistID,
	})
	momentum := r.LeadSingle != nil && r.LeadSingle.Executed
	if err := p.releaseSongs(songs, releaseOptions{title: r.Title, typ: r.Type, marketing: r.Marketing, momentum: momentum}); err != nil {
		return fmt.Errorf("release %s: %w", r.ID, err)
	}
	r.Status = ReleaseReleased
	r.ReleasePeriod = p.state.CurrentPeriod
	return p.saveRelease(r)
}

func (p *period) saveRelease(r *Release) error {
	if err := p.store.UpdateRelease(p.ctx, *r); err != nil {
		return fmt.Errorf("update release %s: %w", r.ID, err)
	}
	return nil
}

// releaseSongs books first-period streams, press pickups, the artist's
// popularity gain and the mood boost consumed by relationship drift.
func (p *period) releaseSongs(songs []*Song, opt releaseOptions) error {
	if len(songs) == 0 {
		return nil
	}
	artistID := songs[0].ArtistID
	a, err := p.artist(artistID)
	if err != nil {
		return err
	}

	popGain, best := 0, 0
	for _, s := range songs {
		out, err := StreamingOutcome(p.rules, p.rng, StreamingInput{
			Quality:        s.Quality,
			Popularity:     a.Popularity,
			Reputation:     p.state.Reputation,
			PlaylistAccess: p.state.PlaylistAccess,
			Marketing:      opt.marketing,
			LeadSingle:     opt.momentum,
		})
		if err != nil {
			return err
		}
		s.IsReleased = true
		s.ReleasePeriod = p.state.CurrentPeriod
		s.InitialStreams = out.InitialStreams
		s.LastPeriodStreams = out.InitialStreams
		s.LastPeriodRevenue = out.Revenue
		s.TotalStreams += out.InitialStreams
		s.TotalRevenue += out.Revenue
		if err := p.store.UpdateSong(p.ctx, *s); err != nil {
			return fmt.Errorf("update song %s: %w", s.ID, err)
		}
		p.summary.Streams += out.InitialStreams
		p.summary.addRevenue(out.Revenue, Change{
			Description: fmt.Sprintf("Release week: %s (%d streams)", s.Title, out.InitialStreams),
			ArtistID:    artistID,
			SongID:      s.ID,
		})
		popGain += s.Quality / 20
		if s.Quality > best {
			best = s.Quality
		}
	}
	if popGain > p.rules.Streaming.PopularityPerHit {
		popGain = p.rules.Streaming.PopularityPerHit
	}
	if popGain > 0 {
		p.queueArtistDelta(artistID, ArtistDelta{Popularity: popGain})
	}

	pickups, err := PressPickups(p.rules, p.rng, PressInput{
		Quality:     best,
		PressAccess: p.state.PressAccess,
		PRSpend:     opt.marketing["pr"],
	})
	if err != nil {
		return err
	}
	if pickups > 0 {
		p.applyEffects(fmt.Sprintf("press for %s", opt.title), artistID, Effects{Reputation: pickups}, ExpenseMarketing)
	}

	boost := p.rules.Relationships.ProjectBoost
	if opt.typ == ReleaseSingle {
		boost = p.rules.Relationships.SingleBoost
	}
	p.summary.releaseBoosts[artistID] += boost
	p.summary.note(ChangeRelease, fmt.Sprintf("Released %s %q: %d press pickups", opt.typ, opt.title, pickups), Change{ArtistID: artistID})
	return nil
}
