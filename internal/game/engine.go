package game

import (
	"context"
	"fmt"
	"log/slog"
)

// Engine advances one game. It holds no mutable state between calls, but a
// single game's Advance must not run concurrently with itself; callers
// serialize per game (the stores lock the game row inside InTx).
type Engine struct {
	gameID  string
	store   Store
	content Content
	log     *slog.Logger
}

func NewEngine(gameID string, store Store, content Content, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gameID:  gameID,
		store:   store,
		content: content,
		log:     logger.With("game_id", gameID),
	}
}

// period is the working set of a single advance.
type period struct {
	ctx     context.Context
	store   Store
	log     *slog.Logger
	rules   *Rules
	rng     *Random
	state   *GameState
	summary *Summary

	artists    []*Artist
	artistByID map[string]*Artist
	executives []*Executive
	projects   []*Project
	songs      []*Song
	songByID   map[string]*Song
	releases   []*Release

	pending       map[string]ArtistDelta
	usedExecutive map[string]bool
}

func (e *Engine) Advance(ctx context.Context, actions []Action) (AdvanceResult, error) {
	state, err := e.store.LoadGame(ctx, e.gameID)
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("load game: %w", err)
	}
	if state.CampaignCompleted {
		return AdvanceResult{}, ErrCampaignCompleted
	}
	rules := e.content.Rules()

	state.UsedFocusSlots = 0
	state.CurrentPeriod++
	p := &period{
		ctx:           ctx,
		store:         e.store,
		log:           e.log.With("period", state.CurrentPeriod),
		rules:         rules,
		rng:           NewRandom(state.ID, state.CurrentPeriod, state.Seed),
		state:         &state,
		summary:       NewSummary(state.CurrentPeriod),
		pending:       map[string]ArtistDelta{},
		usedExecutive: map[string]bool{},
	}
	if err := p.load(); err != nil {
		return AdvanceResult{}, err
	}

	phases := []struct {
		name string
		run  func() error
	}{
		{"fund projects", p.fundNewProjects},
		{"actions", func() error { return e.applyActions(p, actions) }},
		{"flush relationship deltas", p.flushArtistDeltas},
		{"ongoing revenue", p.processOngoingRevenue},
		{"mark recorded", p.markRecordedSongs},
		{"generate songs", p.generateSongs},
		{"releases", p.executeReleases},
		{"project stages", p.advanceProjectStages},
		{"scheduled events", func() error {
			p.triggerScheduled()
			return p.flushArtistDeltas()
		}},
		{"relationship drift", p.applyRelationshipDrift},
		{"narrative events", func() error {
			p.rollNarrativeEvent(e.content.NarrativeEvents())
			return p.flushArtistDeltas()
		}},
		{"burn", func() error {
			p.chargeBurn()
			return nil
		}},
		{"unlocks", func() error {
			p.updateAccessTiers()
			p.updateProducerTiers()
			return nil
		}},
	}
	for _, ph := range phases {
		if err := ph.run(); err != nil {
			return AdvanceResult{}, fmt.Errorf("%s: %w", ph.name, err)
		}
		p.log.Debug("phase complete", "phase", ph.name)
	}

	// The only write to money in the whole period.
	state.Money += p.summary.Revenue - p.summary.Expenses

	result := AdvanceResult{Summary: p.summary}
	if state.CurrentPeriod >= state.CampaignLength {
		cr := p.campaignResults()
		state.CampaignCompleted = true
		result.CampaignResults = &cr
	}
	if err := e.store.SaveGame(ctx, state); err != nil {
		return AdvanceResult{}, fmt.Errorf("save game: %w", err)
	}
	result.State = state

	p.log.Info("period advanced",
		"revenue", p.summary.Revenue,
		"expenses", p.summary.Expenses,
		"money", state.Money,
		"reputation", state.Reputation,
	)
	return result, nil
}

func (p *period) load() error {
	ctx, id := p.ctx, p.state.ID

	artists, err := p.store.ListArtists(ctx, id)
	if err != nil {
		return fmt.Errorf("list artists: %w", err)
	}
	p.artistByID = make(map[string]*Artist, len(artists))
	for i := range artists {
		a := &artists[i]
		p.artists = append(p.artists, a)
		p.artistByID[a.ID] = a
	}

	execs, err := p.store.ListExecutives(ctx, id)
	if err != nil {
		return fmt.Errorf("list executives: %w", err)
	}
	for i := range execs {
		p.executives = append(p.executives, &execs[i])
	}

	projects, err := p.store.ListProjects(ctx, id)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for i := range projects {
		p.projects = append(p.projects, &projects[i])
	}

	songs, err := p.store.ListSongs(ctx, id)
	if err != nil {
		return fmt.Errorf("list songs: %w", err)
	}
	p.songByID = make(map[string]*Song, len(songs))
	for i := range songs {
		s := &songs[i]
		p.songs = append(p.songs, s)
		p.songByID[s.ID] = s
	}

	releases, err := p.store.ListReleases(ctx, id)
	if err != nil {
		return fmt.Errorf("list releases: %w", err)
	}
	for i := range releases {
		p.releases = append(p.releases, &releases[i])
	}
	return nil
}

// flushArtistDeltas writes queued relationship deltas to the artist records.
func (p *period) flushArtistDeltas() error {
	if len(p.pending) == 0 {
		return nil
	}
	for _, a := range p.artists {
		d, ok := p.pending[a.ID]
		if !ok {
			continue
		}
		a.Mood += d.Mood
		a.Loyalty += d.Loyalty
		a.Popularity += d.Popularity
		a.clamp()
		if err := p.store.UpdateArtist(p.ctx, *a); err != nil {
			return fmt.Errorf("update artist %s: %w", a.ID, err)
		}
	}
	p.pending = map[string]ArtistDelta{}
	return nil
}

func (p *period) artist(id string) (*Artist, error) {
	a, ok := p.artistByID[id]
	if !ok {
		return nil, fmt.Errorf("artist %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (p *period) executiveByRole(role string) *Executive {
	for _, e := range p.executives {
		if e.Role == role {
			return e
		}
	}
	return nil
}

func (p *period) projectSongs(projectID string) []*Song {
	var out []*Song
	for _, s := range p.songs {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out
}
