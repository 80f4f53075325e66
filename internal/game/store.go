package game

import "context"

// Store is the persistence surface the engine calls during an advance.
// List methods return entities ordered by ID so every replay walks them in
// the same order.
type Store interface {
	LoadGame(ctx context.Context, gameID string) (GameState, error)
	SaveGame(ctx context.Context, state GameState) error

	ListArtists(ctx context.Context, gameID string) ([]Artist, error)
	UpdateArtist(ctx context.Context, a Artist) error

	ListExecutives(ctx context.Context, gameID string) ([]Executive, error)
	UpdateExecutive(ctx context.Context, e Executive) error

	ListProjects(ctx context.Context, gameID string) ([]Project, error)
	UpdateProject(ctx context.Context, p Project) error

	ListSongs(ctx context.Context, gameID string) ([]Song, error)
	CreateSong(ctx context.Context, s Song) error
	UpdateSong(ctx context.Context, s Song) error

	ListReleases(ctx context.Context, gameID string) ([]Release, error)
	UpdateRelease(ctx context.Context, r Release) error
}

// Repository adds the creation calls used outside the advance.
type Repository interface {
	Store
	CreateGame(ctx context.Context, state GameState) error
	CreateArtist(ctx context.Context, a Artist) error
	CreateExecutive(ctx context.Context, e Executive) error
	CreateProject(ctx context.Context, p Project) error
	CreateRelease(ctx context.Context, r Release) error
}

// TxRunner runs fn against a repository whose writes commit only if fn
// returns nil.
type TxRunner interface {
	InTx(ctx context.Context, fn func(repo Repository) error) error
}

// Content is the read-only collaborator for tables and choice text.
type Content interface {
	Rules() *Rules
	MeetingChoice(roleID, meetingID, choiceID string) (Choice, error)
	DialogueChoice(dialogueID, choiceID string) (Choice, error)
	NarrativeEvents() []NarrativeEvent
}

type Choice struct {
	ID            string  `yaml:"id"`
	Label         string  `yaml:"label"`
	Immediate     Effects `yaml:"effects_immediate"`
	Delayed       Effects `yaml:"effects_delayed"`
	ExecutiveMood *int    `yaml:"executive_mood"`
}
