package game

import "fmt"

type ChangeCategory string

const (
	ChangeRevenue      ChangeCategory = "revenue"
	ChangeExpense      ChangeCategory = "expense"
	ChangeReputation   ChangeCategory = "reputation"
	ChangeProject      ChangeCategory = "project"
	ChangeRelease      ChangeCategory = "release"
	ChangeRelationship ChangeCategory = "relationship"
	ChangeUnlock       ChangeCategory = "unlock"
	ChangeAccessLost   ChangeCategory = "access_lost"
	ChangeEvent        ChangeCategory = "event"
	ChangeSkipped      ChangeCategory = "skipped"
	ChangeAction       ChangeCategory = "action"
)

type ExpenseCategory string

const (
	ExpenseOperations ExpenseCategory = "operations"
	ExpenseArtists    ExpenseCategory = "artist_salaries"
	ExpenseExecutives ExpenseCategory = "executive_salaries"
	ExpenseProjects   ExpenseCategory = "projects"
	ExpenseMarketing  ExpenseCategory = "marketing"
	ExpenseMeetings   ExpenseCategory = "meetings"
	ExpenseEvents     ExpenseCategory = "events"
)

type Change struct {
	Category    ChangeCategory `json:"category"`
	Description string         `json:"description"`
	Amount      int64          `json:"amount"`
	ProjectID   string         `json:"project_id,omitempty"`
	ArtistID    string         `json:"artist_id,omitempty"`
	SongID      string         `json:"song_id,omitempty"`
}

type ArtistDelta struct {
	Mood       int `json:"mood"`
	Loyalty    int `json:"loyalty"`
	Popularity int `json:"popularity"`
}

type EventRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summary accumulates everything a period did. Money moves only through
// Revenue and Expenses, which the controller applies once at the end.
type Summary struct {
	Period            int                       `json:"period"`
	Revenue           int64                     `json:"revenue"`
	Expenses          int64                     `json:"expenses"`
	ExpenseBreakdown  map[ExpenseCategory]int64 `json:"expense_breakdown"`
	Streams           int64                     `json:"streams"`
	Changes           []Change                  `json:"changes"`
	ReputationChanges map[string]int            `json:"reputation_changes"`
	ArtistChanges     map[string]ArtistDelta    `json:"artist_changes"`
	ExecutiveChanges  map[string]int            `json:"executive_mood_changes"`
	Events            []EventRecord             `json:"events"`

	releaseBoosts map[string]int
}

func NewSummary(period int) *Summary {
	return &Summary{
		Period:            period,
		ExpenseBreakdown:  map[ExpenseCategory]int64{},
		Changes:           []Change{},
		ReputationChanges: map[string]int{},
		ArtistChanges:     map[string]ArtistDelta{},
		ExecutiveChanges:  map[string]int{},
		Events:            []EventRecord{},
		releaseBoosts:     map[string]int{},
	}
}

func (s *Summary) Net() int64 {
	return s.Revenue - s.Expenses
}

func (s *Summary) addRevenue(amount int64, c Change) {
	if amount <= 0 {
		return
	}
	s.Revenue += amount
	c.Category = ChangeRevenue
	c.Amount = amount
	s.Changes = append(s.Changes, c)
}

func (s *Summary) addExpense(cat ExpenseCategory, amount int64, c Change) {
	if amount <= 0 {
		return
	}
	s.Expenses += amount
	s.ExpenseBreakdown[cat] += amount
	c.Category = ChangeExpense
	c.Amount = -amount
	s.Changes = append(s.Changes, c)
}

// addMoney routes a signed effect into revenue or expenses.
func (s *Summary) addMoney(cat ExpenseCategory, amount int64, description string) {
	if amount > 0 {
		s.addRevenue(amount, Change{Description: description})
	} else if amount < 0 {
		s.addExpense(cat, -amount, Change{Description: description})
	}
}

func (s *Summary) note(cat ChangeCategory, description string, c Change) {
	c.Category = cat
	c.Description = description
	s.Changes = append(s.Changes, c)
}

func (s *Summary) skip(description string, c Change) {
	s.note(ChangeSkipped, description, c)
}

func (s *Summary) addReputation(source string, delta int) {
	if delta == 0 {
		return
	}
	s.ReputationChanges[source] += delta
	s.Changes = append(s.Changes, Change{
		Category:    ChangeReputation,
		Description: fmt.Sprintf("Reputation %+d (%s)", delta, source),
		Amount:      int64(delta),
	})
}

func (s *Summary) addArtistDelta(artistID string, d ArtistDelta) {
	cur := s.ArtistChanges[artistID]
	cur.Mood += d.Mood
	cur.Loyalty += d.Loyalty
	cur.Popularity += d.Popularity
	s.ArtistChanges[artistID] = cur
}

// available is what the label could spend right now if the period closed.
func (s *Summary) available(state *GameState) int64 {
	return state.Money + s.Net()
}
