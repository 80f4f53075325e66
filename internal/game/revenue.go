package game

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"
)

type StreamingInput struct {
	Quality        int              `json:"quality"`
	Popularity     int              `json:"popularity"`
	Reputation     int              `json:"reputation"`
	PlaylistAccess string           `json:"playlist_access"`
	Marketing      map[string]int64 `json:"marketing"`
	LeadSingle     bool             `json:"lead_single_momentum"`
}

type StreamingResult struct {
	InitialStreams int64   `json:"initial_streams"`
	Revenue        int64   `json:"revenue"`
	Variance       float64 `json:"variance"`
}

func playlistMultiplier(rules *Rules, tier string) (float64, error) {
	if tier == "" {
		tier = NoAccess
	}
	m, ok := rules.Streaming.PlaylistMult[tier]
	if !ok {
		return 0, fmt.Errorf("%w: playlist tier %q", ErrInvalidInput, tier)
	}
	return m, nil
}

// marketingFactor grows with the square root of each channel's spend.
func marketingFactor(rules *Rules, spend map[string]int64) float64 {
	f := 1.0
	for _, ch := range MarketingChannels {
		amount := spend[ch]
		m, ok := rules.Marketing[ch]
		if !ok || amount <= 0 {
			continue
		}
		f += m.StreamWeight * math.Sqrt(float64(amount)/10_000)
	}
	return f
}

// StreamingOutcome computes first-period streams for a newly released song.
// It draws exactly one value from rng.
func StreamingOutcome(rules *Rules, rng *Random, in StreamingInput) (StreamingResult, error) {
	playlist, err := playlistMultiplier(rules, in.PlaylistAccess)
	if err != nil {
		return StreamingResult{}, err
	}
	sr := rules.Streaming
	q := float64(clampAttr(in.Quality)) / 50
	streams := sr.BaseStreams * q * q *
		(1 + float64(clampAttr(in.Popularity))/100) *
		playlist *
		(1 + float64(clampAttr(in.Reputation))/200) *
		marketingFactor(rules, in.Marketing)
	variance := rng.Uniform(0.9, 1.1)
	streams *= variance
	if in.LeadSingle {
		streams *= sr.LeadSingleBoost
	}
	initial := roundInt64(streams)
	return StreamingResult{
		InitialStreams: initial,
		Revenue:        roundInt64(float64(initial) * sr.RevenuePerStream),
		Variance:       variance,
	}, nil
}

// OngoingStreams is the decay curve for a song n periods after release.
func OngoingStreams(rules *Rules, initialStreams int64, periodsSince, reputation int, playlistTier string, trend float64) (streams, revenue int64, err error) {
	sr := rules.Streaming
	if periodsSince <= 0 || initialStreams <= 0 || periodsSince > sr.MaxDecayPeriods {
		return 0, 0, nil
	}
	playlist, err := playlistMultiplier(rules, playlistTier)
	if err != nil {
		return 0, 0, err
	}
	v := float64(initialStreams) *
		math.Pow(sr.DecayRate, float64(periodsSince)) *
		(1 + float64(clampAttr(reputation))/100*sr.ReputationWeight) *
		playlist *
		sr.OngoingFactor *
		trend
	streams = roundInt64(v)
	revenue = roundInt64(float64(streams) * sr.RevenuePerStream)
	if revenue < sr.MinRevenue {
		return 0, 0, nil
	}
	return streams, revenue, nil
}

// MarketTrend is a slow multiplier shared by every song of a game in a
// period, in [1-amplitude, 1+amplitude].
func MarketTrend(rules *Rules, seed int64, period int) float64 {
	noise := opensimplex.NewNormalized(seed)
	v := noise.Eval2(float64(period)*0.12, 0.5)
	amp := rules.Streaming.TrendAmplitude
	return 1 - amp + 2*amp*v
}

type PressInput struct {
	Quality     int    `json:"quality"`
	PressAccess string `json:"press_access"`
	PRSpend     int64  `json:"pr_spend"`
}

// PressPickups draws one Bernoulli trial per available outlet slot.
func PressPickups(rules *Rules, rng *Random, in PressInput) (int, error) {
	tier := in.PressAccess
	if tier == "" {
		tier = NoAccess
	}
	pt, ok := rules.Press.Tiers[tier]
	if !ok {
		return 0, fmt.Errorf("%w: press tier %q", ErrInvalidInput, tier)
	}
	chance := pt.BaseChance +
		float64(in.Quality-50)/200 +
		math.Min(float64(in.PRSpend)/10_000, 0.3)
	chance = clampFloat(chance, 0, 1)
	pickups := 0
	for i := 0; i < pt.MaxPickups; i++ {
		if rng.Chance(chance) {
			pickups++
		}
	}
	return pickups, nil
}

type TourInput struct {
	Reputation      int    `json:"reputation"`
	Popularity      int    `json:"popularity"`
	VenueAccess     string `json:"venue_access"`
	MarketingBudget int64  `json:"marketing_budget"`
	Cities          int    `json:"cities"`
}

// TourRevenue computes every stop of a tour up front. It draws one value
// per city.
func TourRevenue(rules *Rules, rng *Random, in TourInput) ([]TourCity, error) {
	tr := rules.Tour
	tier := in.VenueAccess
	if tier == "" {
		tier = NoAccess
	}
	capacity, ok := tr.VenueCapacity[tier]
	if !ok {
		return nil, fmt.Errorf("%w: venue tier %q", ErrInvalidInput, tier)
	}
	if in.Cities <= 0 {
		return nil, fmt.Errorf("%w: tour needs at least one city", ErrInvalidInput)
	}
	price := tr.TicketBase + float64(capacity)*tr.TicketPerSeat
	marketing := math.Min(tr.MarketingMax, float64(in.MarketingBudget)/float64(in.Cities)/20_000)
	base := tr.SellThroughBase +
		float64(clampAttr(in.Reputation))/100*tr.ReputationWeight +
		float64(clampAttr(in.Popularity))/100*tr.PopularityWeight +
		marketing
	base = math.Min(1, base)

	cities := make([]TourCity, 0, in.Cities)
	for i := 0; i < in.Cities; i++ {
		st := clampFloat(base*(1+rng.Uniform(-tr.CityVariance, tr.CityVariance)), 0, 1)
		attendance := roundInt64(float64(capacity) * st)
		tickets := roundInt64(float64(attendance) * price)
		merch := roundInt64(float64(tickets) * tr.MerchRate)
		cities = append(cities, TourCity{
			Index:       i + 1,
			SellThrough: st,
			Attendance:  attendance,
			TicketSales: tickets,
			Merch:       merch,
			Revenue:     tickets + merch,
		})
	}
	return cities, nil
}

// processOngoingRevenue books decayed streaming for songs released in earlier
// periods and reveals tour stops that have come due.
func (p *period) processOngoingRevenue() error {
	trend := MarketTrend(p.rules, p.state.Seed, p.state.CurrentPeriod)
	for _, s := range p.songs {
		if !s.IsReleased || s.ReleasePeriod >= p.state.CurrentPeriod {
			continue
		}
		since := p.state.CurrentPeriod - s.ReleasePeriod
		streams, revenue, err := OngoingStreams(p.rules, s.InitialStreams, since, p.state.Reputation, p.state.PlaylistAccess, trend)
		if err != nil {
			p.log.Warn("ongoing revenue failed, skipping song", "song_id", s.ID, "err", err)
			continue
		}
		if streams == 0 && s.LastPeriodStreams == 0 {
			continue
		}
		s.LastPeriodStreams = streams
		s.LastPeriodRevenue = revenue
		s.TotalStreams += streams
		s.TotalRevenue += revenue
		p.summary.Streams += streams
		p.summary.addRevenue(revenue, Change{
			Description: fmt.Sprintf("Streaming: %s", s.Title),
			ArtistID:    s.ArtistID,
			SongID:      s.ID,
		})
		if err := p.store.UpdateSong(p.ctx, *s); err != nil {
			return fmt.Errorf("update song %s: %w", s.ID, err)
		}
	}

	for _, pr := range p.projects {
		if pr.Type != ProjectTour || pr.Stage != StageProduction || !pr.CostCharged {
			continue
		}
		if err := p.revealTourCities(pr); err != nil {
			return err
		}
	}
	return nil
}

func (p *period) revealTourCities(pr *Project) error {
	md := &pr.Metadata
	changed := false
	if len(md.Cities) == 0 {
		a, err := p.artist(pr.ArtistID)
		if err != nil {
			return err
		}
		cities, err := TourRevenue(p.rules, p.rng, TourInput{
			Reputation:      p.state.Reputation,
			Popularity:      a.Popularity,
			VenueAccess:     p.state.VenueAccess,
			MarketingBudget: md.MarketingBudget,
			Cities:          md.CitiesPlanned,
		})
		if err != nil {
			return fmt.Errorf("tour %s: %w", pr.ID, err)
		}
		md.Cities = cities
		changed = true
	}

	due := p.state.CurrentPeriod - md.ProductionStart
	if due > len(md.Cities) {
		due = len(md.Cities)
	}
	for md.CitiesRevealed < due {
		c := md.Cities[md.CitiesRevealed]
		p.summary.addRevenue(c.Revenue, Change{
			Description: fmt.Sprintf("%s stop %d/%d: %d attendees", pr.Title, c.Index, len(md.Cities), c.Attendance),
			ProjectID:   pr.ID,
			ArtistID:    pr.ArtistID,
		})
		md.CitiesRevealed++
		changed = true
	}
	if !changed {
		return nil
	}
	if err := p.store.UpdateProject(p.ctx, *pr); err != nil {
		return fmt.Errorf("update project %s: %w", pr.ID, err)
	}
	return nil
}
