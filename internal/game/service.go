package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var blockedNameFragments = []string{
	"admin",
	"shit",
	"fuck",
	"bitch",
	"nazi",
}

// Announcer is told when a campaign finishes. Failures are logged, never
// returned to the player.
type Announcer interface {
	CampaignCompleted(ctx context.Context, state GameState, res CampaignResults) error
}

type Service struct {
	tx        TxRunner
	content   Content
	log       *slog.Logger
	announcer Announcer
	mu        sync.Mutex
	rand      *mathrand.Rand
}

func NewService(tx TxRunner, content Content, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tx:      tx,
		content: content,
		log:     logger,
		rand:    mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) SetAnnouncer(a Announcer) {
	s.announcer = a
}

func (s *Service) Rules() *Rules {
	return s.content.Rules()
}

type NewGameInput struct {
	Seed           *int64 `json:"seed,omitempty"`
	CampaignLength int    `json:"campaign_length,omitempty"`
}

func (s *Service) NewGame(ctx context.Context, in NewGameInput) (GameState, error) {
	rules := s.content.Rules()
	seed := s.nextSeed()
	if in.Seed != nil {
		seed = *in.Seed
	}
	length := rules.Campaign.Length
	if in.CampaignLength > 0 {
		length = in.CampaignLength
	}
	state := NewGameState(rules, uuid.NewString(), seed)
	state.CampaignLength = length

	err := s.tx.InTx(ctx, func(repo Repository) error {
		return repo.CreateGame(ctx, state)
	})
	if err != nil {
		return GameState{}, err
	}
	s.log.Info("game created", "game_id", state.ID, "seed", seed, "campaign_length", length)
	return state, nil
}

// NewGameState is the period-0 state for a fresh label.
func NewGameState(rules *Rules, id string, seed int64) GameState {
	c := rules.Campaign
	state := GameState{
		ID:                    id,
		Seed:                  seed,
		Money:                 c.StartingMoney,
		Reputation:            c.StartReputation,
		CreativeCapital:       c.StartCreative,
		FocusSlots:            c.FocusSlots,
		CampaignLength:        c.Length,
		UnlockedProducerTiers: UnlockedProducerTiers(rules, c.StartReputation),
		ScheduledEvents:       []ScheduledEvent{},
	}
	for _, cat := range AccessCategories {
		state.setAccess(cat, AccessTierFor(rules, cat, c.StartReputation))
	}
	return state
}

type SignArtistInput struct {
	Name        string `json:"name"`
	Archetype   string `json:"archetype"`
	Talent      int    `json:"talent"`
	WorkEthic   int    `json:"work_ethic"`
	Popularity  int    `json:"popularity"`
	Temperament int    `json:"temperament"`
	WeeklyCost  int64  `json:"weekly_cost"`
}

func (s *Service) SignArtist(ctx context.Context, gameID string, in SignArtistInput) (Artist, error) {
	if err := validateEntityName(in.Name); err != nil {
		return Artist{}, err
	}
	if in.WeeklyCost < 0 {
		return Artist{}, fmt.Errorf("%w: weekly cost must be >= 0", ErrInvalidInput)
	}
	var out Artist
	err := s.tx.InTx(ctx, func(repo Repository) error {
		state, err := openGame(ctx, repo, gameID)
		if err != nil {
			return err
		}
		out = Artist{
			ID:           uuid.NewString(),
			GameID:       gameID,
			Name:         strings.TrimSpace(in.Name),
			Archetype:    strings.TrimSpace(in.Archetype),
			Talent:       in.Talent,
			WorkEthic:    in.WorkEthic,
			Popularity:   in.Popularity,
			Mood:         NeutralMood,
			Loyalty:      NeutralMood,
			Temperament:  in.Temperament,
			Energy:       MaxAttribute,
			Signed:       true,
			WeeklyCost:   in.WeeklyCost,
			SignedPeriod: state.CurrentPeriod,
		}
		out.clamp()
		return repo.CreateArtist(ctx, out)
	})
	return out, err
}

func (s *Service) HireExecutive(ctx context.Context, gameID, role string) (Executive, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !ValidExecutiveRole(role) {
		return Executive{}, fmt.Errorf("%w: executive role %q", ErrInvalidInput, role)
	}
	var out Executive
	err := s.tx.InTx(ctx, func(repo Repository) error {
		state, err := openGame(ctx, repo, gameID)
		if err != nil {
			return err
		}
		execs, err := repo.ListExecutives(ctx, gameID)
		if err != nil {
			return err
		}
		for _, e := range execs {
			if e.Role == role {
				return fmt.Errorf("%w: %s already hired", ErrInvalidInput, role)
			}
		}
		out = Executive{
			ID:               uuid.NewString(),
			GameID:           gameID,
			Role:             role,
			Mood:             NeutralMood,
			Loyalty:          NeutralMood,
			LastActionPeriod: state.CurrentPeriod,
		}
		return repo.CreateExecutive(ctx, out)
	})
	return out, err
}

type StartProjectInput struct {
	ArtistID         string  `json:"artist_id"`
	Title            string  `json:"title"`
	Type             string  `json:"type"`
	SongCount        int     `json:"song_count,omitempty"`
	ProducerTier     string  `json:"producer_tier,omitempty"`
	TimeInvestment   string  `json:"time_investment,omitempty"`
	BudgetMultiplier float64 `json:"budget_multiplier,omitempty"`
	Cities           int     `json:"cities,omitempty"`
	MarketingBudget  int64   `json:"marketing_budget,omitempty"`
}

var songCountLimits = map[ProjectType][2]int{
	ProjectSingle: {1, 1},
	ProjectEP:     {3, 6},
	ProjectAlbum:  {8, 14},
}

// StartProject records a project in planning. Its cost is charged by the
// next advance, not here.
func (s *Service) StartProject(ctx context.Context, gameID string, in StartProjectInput) (Project, error) {
	typ, err := ParseProjectType(in.Type)
	if err != nil {
		return Project{}, err
	}
	if err := validateEntityName(in.Title); err != nil {
		return Project{}, err
	}
	rules := s.content.Rules()
	p := Project{
		ID:             uuid.NewString(),
		GameID:         gameID,
		ArtistID:       in.ArtistID,
		Title:          strings.TrimSpace(in.Title),
		Type:           typ,
		Stage:          StagePlanning,
		ProducerTier:   defaultString(in.ProducerTier, "local"),
		TimeInvestment: defaultString(in.TimeInvestment, "standard"),
	}
	if typ == ProjectTour {
		if in.Cities < 1 || in.Cities > 12 {
			return Project{}, fmt.Errorf("%w: a tour plays 1-12 cities", ErrInvalidInput)
		}
		if in.MarketingBudget < 0 {
			return Project{}, fmt.Errorf("%w: marketing budget must be >= 0", ErrInvalidInput)
		}
		p.Metadata.CitiesPlanned = in.Cities
		p.Metadata.MarketingBudget = in.MarketingBudget
	} else {
		limits := songCountLimits[typ]
		p.SongCount = in.SongCount
		if p.SongCount == 0 {
			p.SongCount = limits[0]
		}
		if p.SongCount < limits[0] || p.SongCount > limits[1] {
			return Project{}, fmt.Errorf("%w: %s needs %d-%d songs", ErrInvalidInput, typ, limits[0], limits[1])
		}
	}
	cost, err := ProjectCost(rules, typ, p.ProducerTier, p.TimeInvestment, p.SongCount, in.Cities, in.BudgetMultiplier)
	if err != nil {
		return Project{}, err
	}
	p.TotalCost = cost + p.Metadata.MarketingBudget

	err = s.tx.InTx(ctx, func(repo Repository) error {
		state, err := openGame(ctx, repo, gameID)
		if err != nil {
			return err
		}
		if typ.IsRecording() && !state.hasProducerTier(p.ProducerTier) {
			return fmt.Errorf("%w: %s producers are locked", ErrInvalidInput, p.ProducerTier)
		}
		artists, err := repo.ListArtists(ctx, gameID)
		if err != nil {
			return err
		}
		if !hasSignedArtist(artists, in.ArtistID) {
			return fmt.Errorf("artist %s: %w", in.ArtistID, ErrNotFound)
		}
		projects, err := repo.ListProjects(ctx, gameID)
		if err != nil {
			return err
		}
		committed := unfundedCost(projects)
		if state.Money-committed < p.TotalCost {
			return fmt.Errorf("%w: %s costs %d, %d already committed", ErrInsufficientFunds, p.Title, p.TotalCost, committed)
		}
		p.StartPeriod = state.CurrentPeriod
		return repo.CreateProject(ctx, p)
	})
	if err != nil {
		return Project{}, err
	}
	return p, nil
}

type LeadSingleInput struct {
	SongID        string           `json:"song_id"`
	ReleasePeriod int              `json:"release_period"`
	Marketing     map[string]int64 `json:"marketing,omitempty"`
}

type PlanReleaseInput struct {
	ArtistID      string           `json:"artist_id"`
	Title         string           `json:"title"`
	Type          string           `json:"type"`
	SongIDs       []string         `json:"song_ids"`
	ReleasePeriod int              `json:"release_period"`
	Marketing     map[string]int64 `json:"marketing,omitempty"`
	LeadSingle    *LeadSingleInput `json:"lead_single,omitempty"`
}

func (s *Service) PlanRelease(ctx context.Context, gameID string, in PlanReleaseInput) (Release, error) {
	typ, err := ParseReleaseType(in.Type)
	if err != nil {
		return Release{}, err
	}
	if err := validateEntityName(in.Title); err != nil {
		return Release{}, err
	}
	if len(in.SongIDs) == 0 {
		return Release{}, fmt.Errorf("%w: a release needs songs", ErrInvalidInput)
	}
	if err := validateMarketing(in.Marketing); err != nil {
		return Release{}, err
	}
	r := Release{
		ID:            uuid.NewString(),
		GameID:        gameID,
		ArtistID:      in.ArtistID,
		Title:         strings.TrimSpace(in.Title),
		Type:          typ,
		SongIDs:       append([]string(nil), in.SongIDs...),
		ReleasePeriod: in.ReleasePeriod,
		Marketing:     cloneBudget(in.Marketing),
		Status:        ReleasePlanned,
	}
	if ls := in.LeadSingle; ls != nil {
		if err := validateMarketing(ls.Marketing); err != nil {
			return Release{}, err
		}
		if ls.ReleasePeriod >= in.ReleasePeriod {
			return Release{}, fmt.Errorf("%w: lead single must come out before the release", ErrInvalidInput)
		}
		if !containsString(in.SongIDs, ls.SongID) {
			return Release{}, fmt.Errorf("%w: lead single must be on the release", ErrInvalidInput)
		}
		r.LeadSingle = &LeadSingle{SongID: ls.SongID, ReleasePeriod: ls.ReleasePeriod, Marketing: cloneBudget(ls.Marketing)}
	}

	err = s.tx.InTx(ctx, func(repo Repository) error {
		state, err := openGame(ctx, repo, gameID)
		if err != nil {
			return err
		}
		first := r.ReleasePeriod
		if r.LeadSingle != nil {
			first = r.LeadSingle.ReleasePeriod
		}
		if first <= state.CurrentPeriod {
			return fmt.Errorf("%w: release must be scheduled after period %d", ErrInvalidInput, state.CurrentPeriod)
		}
		songs, err := repo.ListSongs(ctx, gameID)
		if err != nil {
			return err
		}
		byID := make(map[string]Song, len(songs))
		for _, song := range songs {
			byID[song.ID] = song
		}
		for _, id := range r.SongIDs {
			song, ok := byID[id]
			if !ok {
				return fmt.Errorf("song %s: %w", id, ErrNotFound)
			}
			if song.ArtistID != r.ArtistID {
				return fmt.Errorf("%w: song %s belongs to another artist", ErrInvalidInput, id)
			}
			if song.IsReleased {
				return fmt.Errorf("%w: song %s is already out", ErrInvalidInput, id)
			}
		}
		return repo.CreateRelease(ctx, r)
	})
	if err != nil {
		return Release{}, err
	}
	return r, nil
}

// Advance runs one period inside a transaction; any phase error rolls the
// whole period back.
func (s *Service) Advance(ctx context.Context, gameID string, actions []Action) (AdvanceResult, error) {
	var res AdvanceResult
	err := s.tx.InTx(ctx, func(repo Repository) error {
		var err error
		res, err = NewEngine(gameID, repo, s.content, s.log).Advance(ctx, actions)
		return err
	})
	if err != nil {
		return AdvanceResult{}, err
	}
	if res.CampaignResults != nil && s.announcer != nil {
		if err := s.announcer.CampaignCompleted(ctx, res.State, *res.CampaignResults); err != nil {
			s.log.Warn("campaign announcement failed", "game_id", gameID, "err", err)
		}
	}
	return res, nil
}

func (s *Service) Snapshot(ctx context.Context, gameID string) (Snapshot, error) {
	var snap Snapshot
	err := s.tx.InTx(ctx, func(repo Repository) error {
		var err error
		if snap.State, err = repo.LoadGame(ctx, gameID); err != nil {
			return err
		}
		if snap.Artists, err = repo.ListArtists(ctx, gameID); err != nil {
			return err
		}
		if snap.Executives, err = repo.ListExecutives(ctx, gameID); err != nil {
			return err
		}
		if snap.Projects, err = repo.ListProjects(ctx, gameID); err != nil {
			return err
		}
		if snap.Songs, err = repo.ListSongs(ctx, gameID); err != nil {
			return err
		}
		snap.Releases, err = repo.ListReleases(ctx, gameID)
		return err
	})
	return snap, err
}

func openGame(ctx context.Context, repo Repository, gameID string) (GameState, error) {
	state, err := repo.LoadGame(ctx, gameID)
	if err != nil {
		return GameState{}, err
	}
	if state.CampaignCompleted {
		return GameState{}, ErrCampaignCompleted
	}
	return state, nil
}

func (s *Service) nextSeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Int63()
}

func validateMarketing(m map[string]int64) error {
	for ch, v := range m {
		if !containsString(MarketingChannels, ch) {
			return fmt.Errorf("%w: marketing channel %q", ErrInvalidInput, ch)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s budget must be >= 0", ErrInvalidInput, ch)
		}
	}
	return nil
}

// unfundedCost sums projects waiting for the next advance to charge them.
func unfundedCost(projects []Project) int64 {
	var total int64
	for _, pr := range projects {
		if !pr.CostCharged {
			total += pr.TotalCost
		}
	}
	return total
}

func hasSignedArtist(artists []Artist, id string) bool {
	for _, a := range artists {
		if a.ID == id && a.Signed {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func validateEntityName(name string) error {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(clean) > 64 {
		return fmt.Errorf("%w: name too long (max 64 chars)", ErrInvalidInput)
	}
	lower := strings.ToLower(clean)
	for _, fragment := range blockedNameFragments {
		if strings.Contains(lower, fragment) {
			return fmt.Errorf("%w: name contains blocked content", ErrInvalidInput)
		}
	}
	return nil
}

// IsClientError reports whether err came from bad input rather than the
// system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrInsufficientFunds)
}
