package game

type GameState struct {
	ID                    string           `json:"id"`
	Seed                  int64            `json:"seed"`
	Money                 int64            `json:"money"`
	Reputation            int              `json:"reputation"`
	CreativeCapital       int              `json:"creative_capital"`
	FocusSlots            int              `json:"focus_slots"`
	UsedFocusSlots        int              `json:"used_focus_slots"`
	PlaylistAccess        string           `json:"playlist_access"`
	PressAccess           string           `json:"press_access"`
	VenueAccess           string           `json:"venue_access"`
	CurrentPeriod         int              `json:"current_period"`
	CampaignLength        int              `json:"campaign_length"`
	CampaignCompleted     bool             `json:"campaign_completed"`
	UnlockedProducerTiers []string         `json:"unlocked_producer_tiers"`
	ScheduledEvents       []ScheduledEvent `json:"scheduled_events"`
}

func (g *GameState) Access(cat AccessCategory) string {
	switch cat {
	case AccessPlaylist:
		return g.PlaylistAccess
	case AccessPress:
		return g.PressAccess
	case AccessVenue:
		return g.VenueAccess
	}
	return NoAccess
}

func (g *GameState) setAccess(cat AccessCategory, tier string) {
	switch cat {
	case AccessPlaylist:
		g.PlaylistAccess = tier
	case AccessPress:
		g.PressAccess = tier
	case AccessVenue:
		g.VenueAccess = tier
	}
}

func (g *GameState) hasProducerTier(tier string) bool {
	for _, t := range g.UnlockedProducerTiers {
		if t == tier {
			return true
		}
	}
	return false
}

type ScheduledEvent struct {
	TriggerPeriod int     `json:"trigger_period"`
	Source        string  `json:"source"`
	ArtistID      string  `json:"artist_id,omitempty"`
	Effects       Effects `json:"effects"`
}

type Artist struct {
	ID           string `json:"id"`
	GameID       string `json:"game_id"`
	Name         string `json:"name"`
	Archetype    string `json:"archetype"`
	Talent       int    `json:"talent"`
	WorkEthic    int    `json:"work_ethic"`
	Popularity   int    `json:"popularity"`
	Mood         int    `json:"mood"`
	Loyalty      int    `json:"loyalty"`
	Temperament  int    `json:"temperament"`
	Energy       int    `json:"energy"`
	Signed       bool   `json:"signed"`
	WeeklyCost   int64  `json:"weekly_cost"`
	SignedPeriod int    `json:"signed_period"`
}

func (a *Artist) clamp() {
	a.Talent = clampAttr(a.Talent)
	a.WorkEthic = clampAttr(a.WorkEthic)
	a.Popularity = clampAttr(a.Popularity)
	a.Mood = clampAttr(a.Mood)
	a.Loyalty = clampAttr(a.Loyalty)
	a.Temperament = clampAttr(a.Temperament)
	a.Energy = clampAttr(a.Energy)
}

type Executive struct {
	ID               string `json:"id"`
	GameID           string `json:"game_id"`
	Role             string `json:"role"`
	Mood             int    `json:"mood"`
	Loyalty          int    `json:"loyalty"`
	LastActionPeriod int    `json:"last_action_period"`
}

type Project struct {
	ID             string          `json:"id"`
	GameID         string          `json:"game_id"`
	ArtistID       string          `json:"artist_id"`
	Title          string          `json:"title"`
	Type           ProjectType     `json:"type"`
	Stage          Stage           `json:"stage"`
	SongCount      int             `json:"song_count"`
	SongsCreated   int             `json:"songs_created"`
	TotalCost      int64           `json:"total_cost"`
	CostCharged    bool            `json:"cost_charged"`
	ProducerTier   string          `json:"producer_tier"`
	TimeInvestment string          `json:"time_investment"`
	StartPeriod    int             `json:"start_period"`
	Metadata       ProjectMetadata `json:"metadata"`
}

func (p *Project) BudgetPerSong() float64 {
	if p.SongCount <= 0 {
		return 0
	}
	return float64(p.TotalCost) / float64(p.SongCount)
}

type ProjectMetadata struct {
	CitiesPlanned   int        `json:"cities_planned,omitempty"`
	MarketingBudget int64      `json:"marketing_budget,omitempty"`
	Cities          []TourCity `json:"cities,omitempty"`
	CitiesRevealed  int        `json:"cities_revealed,omitempty"`
	SongsRecorded   bool       `json:"songs_recorded,omitempty"`
	ProductionStart int        `json:"production_start,omitempty"`
}

type TourCity struct {
	Index       int     `json:"index"`
	SellThrough float64 `json:"sell_through"`
	Attendance  int64   `json:"attendance"`
	TicketSales int64   `json:"ticket_sales"`
	Merch       int64   `json:"merch"`
	Revenue     int64   `json:"revenue"`
}

type Song struct {
	ID                string `json:"id"`
	GameID            string `json:"game_id"`
	ProjectID         string `json:"project_id"`
	ArtistID          string `json:"artist_id"`
	Title             string `json:"title"`
	Quality           int    `json:"quality"`
	IsRecorded        bool   `json:"is_recorded"`
	IsReleased        bool   `json:"is_released"`
	ReleasePeriod     int    `json:"release_period,omitempty"`
	InitialStreams    int64  `json:"initial_streams"`
	LastPeriodStreams int64  `json:"last_period_streams"`
	LastPeriodRevenue int64  `json:"last_period_revenue"`
	TotalStreams      int64  `json:"total_streams"`
	TotalRevenue      int64  `json:"total_revenue"`
	CreatedPeriod     int    `json:"created_period"`
}

type Release struct {
	ID            string           `json:"id"`
	GameID        string           `json:"game_id"`
	ArtistID      string           `json:"artist_id"`
	Title         string           `json:"title"`
	Type          ReleaseType      `json:"type"`
	SongIDs       []string         `json:"song_ids"`
	ReleasePeriod int              `json:"release_period"`
	Marketing     map[string]int64 `json:"marketing"`
	LeadSingle    *LeadSingle      `json:"lead_single,omitempty"`
	Status        ReleaseStatus    `json:"status"`
}

type LeadSingle struct {
	SongID        string           `json:"song_id"`
	ReleasePeriod int              `json:"release_period"`
	Marketing     map[string]int64 `json:"marketing"`
	Executed      bool             `json:"executed"`
}

type AdvanceResult struct {
	State           GameState        `json:"state"`
	Summary         *Summary         `json:"summary"`
	CampaignResults *CampaignResults `json:"campaign_results,omitempty"`
}

type CampaignResults struct {
	Score           int      `json:"score"`
	MoneyScore      int      `json:"money_score"`
	ReputationScore int      `json:"reputation_score"`
	AccessTierBonus int      `json:"access_tier_bonus"`
	VictoryType     string   `json:"victory_type"`
	Summary         string   `json:"summary"`
	Achievements    []string `json:"achievements"`
}

// Snapshot is a read view of one game and everything it owns.
type Snapshot struct {
	State      GameState   `json:"state"`
	Artists    []Artist    `json:"artists"`
	Executives []Executive `json:"executives"`
	Projects   []Project   `json:"projects"`
	Songs      []Song      `json:"songs"`
	Releases   []Release   `json:"releases"`
}
