package game

import (
	"fmt"
	"sort"
)

// Rules holds every coefficient the engine reads. Content files override
// DefaultRules field by field.
type Rules struct {
	Campaign      CampaignRules        `yaml:"campaign"`
	Economy       EconomyRules         `yaml:"economy"`
	ProducerTiers []ProducerTier       `yaml:"producer_tiers"`
	TimeOptions   []TimeInvestment     `yaml:"time_investment"`
	Quality       QualityRules         `yaml:"quality"`
	Streaming     StreamingRules       `yaml:"streaming"`
	Press         PressRules           `yaml:"press"`
	Tour          TourRules            `yaml:"tour"`
	Access        AccessRules          `yaml:"access"`
	Relationships RelationshipRules    `yaml:"relationships"`
	Marketing     map[string]Marketing `yaml:"marketing"`
	Scoring       ScoringRules         `yaml:"scoring"`
}

type CampaignRules struct {
	Length          int     `yaml:"length"`
	StartingMoney   int64   `yaml:"starting_money"`
	StartReputation int     `yaml:"starting_reputation"`
	StartCreative   int     `yaml:"starting_creative_capital"`
	FocusSlots      int     `yaml:"focus_slots"`
	EventChance     float64 `yaml:"event_chance"`
}

type EconomyRules struct {
	BurnMin         int64            `yaml:"burn_min"`
	BurnMax         int64            `yaml:"burn_max"`
	ExecutiveSalary map[string]int64 `yaml:"executive_salary"`
	BaseSongCost    int64            `yaml:"base_song_cost"`
	TourCityCost    int64            `yaml:"tour_city_cost"`
	SongsPerPeriod  int              `yaml:"songs_per_period"`
	FallbackMoney   int64            `yaml:"fallback_money"`
	FallbackRep     int              `yaml:"fallback_reputation"`
}

type ProducerTier struct {
	Name           string  `yaml:"name"`
	Skill          int     `yaml:"skill"`
	CostMultiplier float64 `yaml:"cost_multiplier"`
	Reputation     int     `yaml:"reputation"`
}

type TimeInvestment struct {
	Name           string  `yaml:"name"`
	Efficiency     float64 `yaml:"efficiency"`
	CostMultiplier float64 `yaml:"cost_multiplier"`
}

type QualityRules struct {
	TalentWeight       float64 `yaml:"talent_weight"`
	ProducerWeight     float64 `yaml:"producer_weight"`
	WorkEthicBoost     float64 `yaml:"work_ethic_boost"`
	FatigueRate        float64 `yaml:"fatigue_rate"`
	FatigueFreeSongs   int     `yaml:"fatigue_free_songs"`
	BelowMinimumFactor float64 `yaml:"below_minimum_factor"`
	BudgetFloor        float64 `yaml:"budget_floor"`
	BudgetSlope        float64 `yaml:"budget_slope"`
	BudgetCap          float64 `yaml:"budget_cap"`
	EfficientRatio     float64 `yaml:"efficient_ratio"`
	MaxVariance        float64 `yaml:"max_variance"`
	MinVariance        float64 `yaml:"min_variance"`
	OutlierChance      float64 `yaml:"outlier_chance"`
}

type StreamingRules struct {
	BaseStreams      float64            `yaml:"base_streams"`
	DecayRate        float64            `yaml:"decay_rate"`
	RevenuePerStream float64            `yaml:"revenue_per_stream"`
	OngoingFactor    float64            `yaml:"ongoing_factor"`
	MinRevenue       int64              `yaml:"min_revenue"`
	MaxDecayPeriods  int                `yaml:"max_decay_periods"`
	PlaylistMult     map[string]float64 `yaml:"playlist_multiplier"`
	ReputationWeight float64            `yaml:"reputation_weight"`
	TrendAmplitude   float64            `yaml:"trend_amplitude"`
	LeadSingleBoost  float64            `yaml:"lead_single_boost"`
	PopularityPerHit int                `yaml:"popularity_per_release_max"`
}

type PressRules struct {
	Tiers map[string]PressTier `yaml:"tiers"`
}

type PressTier struct {
	BaseChance float64 `yaml:"base_chance"`
	MaxPickups int     `yaml:"max_pickups"`
}

type TourRules struct {
	VenueCapacity    map[string]int64 `yaml:"venue_capacity"`
	TicketBase       float64          `yaml:"ticket_base"`
	TicketPerSeat    float64          `yaml:"ticket_per_seat"`
	SellThroughBase  float64          `yaml:"sell_through_base"`
	ReputationWeight float64          `yaml:"reputation_weight"`
	PopularityWeight float64          `yaml:"popularity_weight"`
	MarketingMax     float64          `yaml:"marketing_max"`
	CityVariance     float64          `yaml:"city_variance"`
	MerchRate        float64          `yaml:"merch_rate"`
}

type AccessTier struct {
	Name      string `yaml:"name"`
	Threshold int    `yaml:"threshold"`
}

type AccessRules struct {
	Playlist []AccessTier `yaml:"playlist"`
	Press    []AccessTier `yaml:"press"`
	Venue    []AccessTier `yaml:"venue"`
}

func (a AccessRules) Tiers(cat AccessCategory) []AccessTier {
	switch cat {
	case AccessPlaylist:
		return a.Playlist
	case AccessPress:
		return a.Press
	case AccessVenue:
		return a.Venue
	}
	return nil
}

type RelationshipRules struct {
	SingleBoost         int `yaml:"single_boost"`
	ProjectBoost        int `yaml:"project_boost"`
	WorkloadFree        int `yaml:"workload_free_projects"`
	WorkloadStress      int `yaml:"workload_stress"`
	ArtistDrift         int `yaml:"artist_drift"`
	ExecutiveDrift      int `yaml:"executive_drift"`
	ExecutiveIdleLimit  int `yaml:"executive_idle_periods"`
	ExecutiveIdleLoss   int `yaml:"executive_idle_loyalty_loss"`
	MeetingMoodDefault  int `yaml:"meeting_mood_default"`
	MeetingLoyaltyBoost int `yaml:"meeting_loyalty_boost"`
}

type Marketing struct {
	ReputationPer1K float64 `yaml:"reputation_per_1k"`
	PopularityPer1K float64 `yaml:"popularity_per_1k"`
	StreamWeight    float64 `yaml:"stream_weight"`
}

type ScoringRules struct {
	TierBonus          []int   `yaml:"tier_bonus"`
	FailureScore       int     `yaml:"failure_score"`
	SurvivalScore      int     `yaml:"survival_score"`
	CommercialRatio    float64 `yaml:"commercial_ratio"`
	CriticalRatio      float64 `yaml:"critical_ratio"`
	ChartTopperQuality int     `yaml:"chart_topper_quality"`
	CriticsReputation  int     `yaml:"critics_reputation"`
	PlatinumStreams    int64   `yaml:"platinum_streams"`
}

func DefaultRules() *Rules {
	return &Rules{
		Campaign: CampaignRules{
			Length:          52,
			StartingMoney:   100_000,
			StartReputation: 5,
			StartCreative:   10,
			FocusSlots:      3,
			EventChance:     0.20,
		},
		Economy: EconomyRules{
			BurnMin: 2_000,
			BurnMax: 4_000,
			ExecutiveSalary: map[string]int64{
				"head_ar":           1_000,
				"cmo":               1_000,
				"cco":               800,
				"head_distribution": 800,
			},
			BaseSongCost:   4_000,
			TourCityCost:   3_000,
			SongsPerPeriod: 3,
			FallbackMoney:  -500,
			FallbackRep:    -1,
		},
		ProducerTiers: []ProducerTier{
			{Name: "local", Skill: 40, CostMultiplier: 1.0, Reputation: 0},
			{Name: "regional", Skill: 55, CostMultiplier: 1.8, Reputation: 15},
			{Name: "national", Skill: 75, CostMultiplier: 3.2, Reputation: 35},
			{Name: "legendary", Skill: 95, CostMultiplier: 5.0, Reputation: 60},
		},
		TimeOptions: []TimeInvestment{
			{Name: "rushed", Efficiency: 0.7, CostMultiplier: 0.7},
			{Name: "standard", Efficiency: 1.0, CostMultiplier: 1.0},
			{Name: "extended", Efficiency: 1.1, CostMultiplier: 1.4},
			{Name: "perfectionist", Efficiency: 1.2, CostMultiplier: 2.0},
		},
		Quality: QualityRules{
			TalentWeight:       0.65,
			ProducerWeight:     0.35,
			WorkEthicBoost:     0.30,
			FatigueRate:        0.97,
			FatigueFreeSongs:   3,
			BelowMinimumFactor: 0.85,
			BudgetFloor:        0.95,
			BudgetSlope:        0.10,
			BudgetCap:          1.10,
			EfficientRatio:     1.5,
			MaxVariance:        0.35,
			MinVariance:        0.05,
			OutlierChance:      0.05,
		},
		Streaming: StreamingRules{
			BaseStreams:      10_000,
			DecayRate:        0.85,
			RevenuePerStream: 0.05,
			OngoingFactor:    0.8,
			MinRevenue:       1,
			MaxDecayPeriods:  24,
			PlaylistMult: map[string]float64{
				"none":     1.0,
				"niche":    1.1,
				"mid":      1.25,
				"flagship": 1.5,
			},
			ReputationWeight: 0.5,
			TrendAmplitude:   0.10,
			LeadSingleBoost:  1.15,
			PopularityPerHit: 10,
		},
		Press: PressRules{
			Tiers: map[string]PressTier{
				"none":     {BaseChance: 0.05, MaxPickups: 1},
				"blogs":    {BaseChance: 0.15, MaxPickups: 3},
				"mid_tier": {BaseChance: 0.25, MaxPickups: 5},
				"national": {BaseChance: 0.35, MaxPickups: 8},
			},
		},
		Tour: TourRules{
			VenueCapacity: map[string]int64{
				"none":     50,
				"clubs":    300,
				"theaters": 1_500,
				"arenas":   8_000,
			},
			TicketBase:       25,
			TicketPerSeat:    1.0 / 200,
			SellThroughBase:  0.15,
			ReputationWeight: 0.25,
			PopularityWeight: 0.35,
			MarketingMax:     0.15,
			CityVariance:     0.10,
			MerchRate:        0.15,
		},
		Access: AccessRules{
			Playlist: []AccessTier{{"none", 0}, {"niche", 10}, {"mid", 30}, {"flagship", 60}},
			Press:    []AccessTier{{"none", 0}, {"blogs", 8}, {"mid_tier", 25}, {"national", 50}},
			Venue:    []AccessTier{{"none", 0}, {"clubs", 5}, {"theaters", 20}, {"arenas", 45}},
		},
		Relationships: RelationshipRules{
			SingleBoost:         5,
			ProjectBoost:        20,
			WorkloadFree:        2,
			WorkloadStress:      5,
			ArtistDrift:         3,
			ExecutiveDrift:      5,
			ExecutiveIdleLimit:  3,
			ExecutiveIdleLoss:   5,
			MeetingMoodDefault:  2,
			MeetingLoyaltyBoost: 5,
		},
		Marketing: map[string]Marketing{
			"radio":      {ReputationPer1K: 0.2, PopularityPer1K: 0.6, StreamWeight: 0.30},
			"digital":    {ReputationPer1K: 0.1, PopularityPer1K: 0.8, StreamWeight: 0.40},
			"pr":         {ReputationPer1K: 0.5, PopularityPer1K: 0.3, StreamWeight: 0.15},
			"influencer": {ReputationPer1K: 0.1, PopularityPer1K: 1.0, StreamWeight: 0.35},
		},
		Scoring: ScoringRules{
			TierBonus:          []int{0, 5, 10, 20},
			FailureScore:       50,
			SurvivalScore:      100,
			CommercialRatio:    4,
			CriticalRatio:      1.5,
			ChartTopperQuality: 90,
			CriticsReputation:  80,
			PlatinumStreams:    1_000_000,
		},
	}
}

func (r *Rules) Validate() error {
	if r.Campaign.Length <= 0 {
		return fmt.Errorf("%w: campaign length must be > 0", ErrInvalidInput)
	}
	if r.Economy.BurnMax < r.Economy.BurnMin {
		return fmt.Errorf("%w: burn_max below burn_min", ErrInvalidInput)
	}
	if r.Streaming.DecayRate <= 0 || r.Streaming.DecayRate >= 1 {
		return fmt.Errorf("%w: decay rate must be in (0,1)", ErrInvalidInput)
	}
	if len(r.ProducerTiers) == 0 || len(r.TimeOptions) == 0 {
		return fmt.Errorf("%w: producer tiers and time options are required", ErrInvalidInput)
	}
	for _, cat := range AccessCategories {
		tiers := r.Access.Tiers(cat)
		if len(tiers) == 0 {
			return fmt.Errorf("%w: %s access tiers missing", ErrInvalidInput, cat)
		}
		if !sort.SliceIsSorted(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold }) {
			return fmt.Errorf("%w: %s access tiers must ascend by threshold", ErrInvalidInput, cat)
		}
	}
	if len(r.Scoring.TierBonus) == 0 {
		return fmt.Errorf("%w: scoring tier bonus missing", ErrInvalidInput)
	}
	return nil
}

func (r *Rules) ProducerTier(name string) (ProducerTier, error) {
	for _, t := range r.ProducerTiers {
		if t.Name == name {
			return t, nil
		}
	}
	return ProducerTier{}, fmt.Errorf("%w: producer tier %q", ErrInvalidInput, name)
}

func (r *Rules) TimeInvestment(name string) (TimeInvestment, error) {
	for _, t := range r.TimeOptions {
		if t.Name == name {
			return t, nil
		}
	}
	return TimeInvestment{}, fmt.Errorf("%w: time investment %q", ErrInvalidInput, name)
}

func (r *Rules) tierRank(cat AccessCategory, name string) int {
	for i, t := range r.Access.Tiers(cat) {
		if t.Name == name {
			return i
		}
	}
	return 0
}
