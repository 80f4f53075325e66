package game

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	NeutralMood = 50

	MinAttribute = 0
	MaxAttribute = 100

	MinQuality = 25
	MaxQuality = 98

	PlayerRole = "ceo"
)

var (
	ErrCampaignCompleted = errors.New("campaign already completed")
	ErrGameNotFound      = errors.New("game not found")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownAction     = errors.New("unknown action type")
	ErrUnknownChoice     = errors.New("unknown choice")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTxConflict        = errors.New("transaction conflict, retry later")
)

type ProjectType string

const (
	ProjectSingle ProjectType = "single"
	ProjectEP     ProjectType = "ep"
	ProjectAlbum  ProjectType = "album"
	ProjectTour   ProjectType = "tour"
)

func ParseProjectType(s string) (ProjectType, error) {
	switch t := ProjectType(strings.ToLower(strings.TrimSpace(s))); t {
	case ProjectSingle, ProjectEP, ProjectAlbum, ProjectTour:
		return t, nil
	default:
		return "", fmt.Errorf("%w: project type %q", ErrInvalidInput, s)
	}
}

func (t ProjectType) IsRecording() bool {
	return t != ProjectTour
}

// Stage is ordered; a project's stage index never decreases.
type Stage int

const (
	StagePlanning Stage = iota
	StageProduction
	StageMarketing
	StageRecorded
	StageReleased
)

func (s Stage) String() string {
	switch s {
	case StagePlanning:
		return "planning"
	case StageProduction:
		return "production"
	case StageMarketing:
		return "marketing"
	case StageRecorded:
		return "recorded"
	case StageReleased:
		return "released"
	default:
		return "unknown"
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	for st := StagePlanning; st <= StageReleased; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("%w: stage %q", ErrInvalidInput, string(b))
}

// Active reports whether the project still occupies the artist.
func (s Stage) Active() bool {
	return s < StageRecorded
}

type ReleaseType string

const (
	ReleaseSingle ReleaseType = "single"
	ReleaseEP     ReleaseType = "ep"
	ReleaseAlbum  ReleaseType = "album"
)

func ParseReleaseType(s string) (ReleaseType, error) {
	switch t := ReleaseType(strings.ToLower(strings.TrimSpace(s))); t {
	case ReleaseSingle, ReleaseEP, ReleaseAlbum:
		return t, nil
	default:
		return "", fmt.Errorf("%w: release type %q", ErrInvalidInput, s)
	}
}

type ReleaseStatus string

const (
	ReleasePlanned  ReleaseStatus = "planned"
	ReleaseReleased ReleaseStatus = "released"
)

type AccessCategory string

const (
	AccessPlaylist AccessCategory = "playlist"
	AccessPress    AccessCategory = "press"
	AccessVenue    AccessCategory = "venue"
)

var AccessCategories = []AccessCategory{AccessPlaylist, AccessPress, AccessVenue}

const NoAccess = "none"

var ExecutiveRoles = []string{"head_ar", "cmo", "cco", "head_distribution"}

func ValidExecutiveRole(role string) bool {
	for _, r := range ExecutiveRoles {
		if r == role {
			return true
		}
	}
	return false
}

var MarketingChannels = []string{"radio", "digital", "pr", "influencer"}

func clampAttr(v int) int {
	if v < MinAttribute {
		return MinAttribute
	}
	if v > MaxAttribute {
		return MaxAttribute
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundInt64(v float64) int64 {
	return int64(math.Round(v))
}

func sumBudget(m map[string]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}
