package game

import "math"

type QualityInput struct {
	Talent         int     `json:"talent"`
	WorkEthic      int     `json:"work_ethic"`
	Popularity     int     `json:"popularity"`
	Mood           int     `json:"mood"`
	ProducerTier   string  `json:"producer_tier"`
	TimeInvestment string  `json:"time_investment"`
	BudgetPerSong  float64 `json:"budget_per_song"`
	SongCount      int     `json:"song_count"`
}

// QualityBreakdown exposes every factor so preview callers can explain a score.
type QualityBreakdown struct {
	ProducerSkill    int     `json:"producer_skill"`
	Base             float64 `json:"base"`
	TimeFactor       float64 `json:"time_factor"`
	PopularityFactor float64 `json:"popularity_factor"`
	FatigueFactor    float64 `json:"fatigue_factor"`
	BudgetFactor     float64 `json:"budget_factor"`
	MoodFactor       float64 `json:"mood_factor"`
	Expected         float64 `json:"expected"`
	VarianceRange    float64 `json:"variance_range"`
	Outlier          string  `json:"outlier,omitempty"`
	Multiplier       float64 `json:"multiplier"`
	Quality          int     `json:"quality"`
}

// MinimumViableCost is the per-song budget below which quality takes the
// flat under-budget penalty.
func MinimumViableCost(rules *Rules, producerTier, timeInvestment string) (float64, error) {
	tier, err := rules.ProducerTier(producerTier)
	if err != nil {
		return 0, err
	}
	ti, err := rules.TimeInvestment(timeInvestment)
	if err != nil {
		return 0, err
	}
	return float64(rules.Economy.BaseSongCost) * tier.CostMultiplier * ti.CostMultiplier, nil
}

// ProjectCost prices a project at creation. budgetMultiplier scales the
// per-song spend relative to the minimum viable cost; tours ignore it.
func ProjectCost(rules *Rules, typ ProjectType, producerTier, timeInvestment string, songCount, cities int, budgetMultiplier float64) (int64, error) {
	if typ == ProjectTour {
		if cities <= 0 {
			return 0, ErrInvalidInput
		}
		return rules.Economy.TourCityCost * int64(cities), nil
	}
	if songCount <= 0 {
		return 0, ErrInvalidInput
	}
	if budgetMultiplier <= 0 {
		budgetMultiplier = rules.Quality.EfficientRatio
	}
	minCost, err := MinimumViableCost(rules, producerTier, timeInvestment)
	if err != nil {
		return 0, err
	}
	return roundInt64(minCost * float64(songCount) * budgetMultiplier), nil
}

func timeFactor(efficiency float64, workEthic int, boost float64) float64 {
	amp := boost * float64(clampAttr(workEthic)) / 100
	if efficiency >= 1 {
		return 1 + (efficiency-1)*(1+amp)
	}
	return 1 - (1-efficiency)*(1-amp)
}

func popularityFactor(popularity int) float64 {
	return 0.95 + 0.10*math.Sqrt(float64(clampAttr(popularity))/100)
}

func fatigueFactor(rules *Rules, songCount int) float64 {
	extra := songCount - rules.Quality.FatigueFreeSongs
	if extra < 0 {
		extra = 0
	}
	return math.Pow(rules.Quality.FatigueRate, float64(extra))
}

func budgetFactor(rules *Rules, budgetPerSong, minViable float64) float64 {
	q := rules.Quality
	if minViable <= 0 {
		return q.BudgetFloor
	}
	ratio := budgetPerSong / minViable
	if ratio < 1 {
		return q.BelowMinimumFactor
	}
	return math.Min(q.BudgetCap, q.BudgetFloor+q.BudgetSlope*math.Log2(ratio))
}

func moodFactor(mood int) float64 {
	return 0.9 + 0.2*float64(clampAttr(mood))/100
}

// ExpectedQuality computes the deterministic part of the formula.
func ExpectedQuality(rules *Rules, in QualityInput) (QualityBreakdown, error) {
	tier, err := rules.ProducerTier(in.ProducerTier)
	if err != nil {
		return QualityBreakdown{}, err
	}
	ti, err := rules.TimeInvestment(in.TimeInvestment)
	if err != nil {
		return QualityBreakdown{}, err
	}
	minViable, err := MinimumViableCost(rules, in.ProducerTier, in.TimeInvestment)
	if err != nil {
		return QualityBreakdown{}, err
	}
	q := rules.Quality
	b := QualityBreakdown{
		ProducerSkill:    tier.Skill,
		Base:             q.TalentWeight*float64(clampAttr(in.Talent)) + q.ProducerWeight*float64(tier.Skill),
		TimeFactor:       timeFactor(ti.Efficiency, in.WorkEthic, q.WorkEthicBoost),
		PopularityFactor: popularityFactor(in.Popularity),
		FatigueFactor:    fatigueFactor(rules, in.SongCount),
		BudgetFactor:     budgetFactor(rules, in.BudgetPerSong, minViable),
		MoodFactor:       moodFactor(in.Mood),
	}
	b.Expected = b.Base * b.TimeFactor * b.PopularityFactor * b.FatigueFactor * b.BudgetFactor * b.MoodFactor
	skill := (float64(clampAttr(in.Talent)) + float64(tier.Skill)) / 2
	b.VarianceRange = q.MaxVariance - (q.MaxVariance-q.MinVariance)*skill/100
	b.Multiplier = 1
	b.Quality = clampQuality(b.Expected)
	return b, nil
}

// Quality rolls a song's quality. Draw order is fixed: outlier roll, then magnitude.
func Quality(rules *Rules, rng *Random, in QualityInput) (QualityBreakdown, error) {
	b, err := ExpectedQuality(rules, in)
	if err != nil {
		return b, err
	}
	skill := (float64(clampAttr(in.Talent)) + float64(b.ProducerSkill)) / 2 / 100
	chance := rules.Quality.OutlierChance
	roll := rng.Float64()
	u := rng.Float64()
	switch {
	case roll < chance:
		b.Outlier = "breakout"
		b.Multiplier = 1.5 + 0.5*u*(1-skill)
	case roll < 2*chance:
		b.Outlier = "critical_failure"
		b.Multiplier = 0.5 + 0.2*(0.5*skill+0.5*u)
	default:
		b.Multiplier = 1 + (2*u-1)*b.VarianceRange
	}
	b.Quality = clampQuality(b.Expected * b.Multiplier)
	return b, nil
}

func clampQuality(v float64) int {
	return int(math.Round(clampFloat(v, MinQuality, MaxQuality)))
}
