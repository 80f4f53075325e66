package content

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"labelsim/internal/game"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Meeting struct {
	Role    string        `yaml:"role"`
	ID      string        `yaml:"id"`
	Title   string        `yaml:"title"`
	Choices []game.Choice `yaml:"choices"`
}

type Dialogue struct {
	ID      string        `yaml:"id"`
	Prompt  string        `yaml:"prompt"`
	Choices []game.Choice `yaml:"choices"`
}

type file struct {
	Rules     game.Rules            `yaml:"rules"`
	Meetings  []Meeting             `yaml:"meetings"`
	Dialogues []Dialogue            `yaml:"dialogues"`
	Events    []game.NarrativeEvent `yaml:"events"`
}

// Pack is the loaded game content. It satisfies game.Content and is
// read-only after Load.
type Pack struct {
	rules     *game.Rules
	meetings  map[string]Meeting
	dialogues map[string]Dialogue
	events    []game.NarrativeEvent
}

// Default parses the embedded content file on top of game.DefaultRules.
func Default() (*Pack, error) {
	return Load("")
}

// Load reads the embedded defaults and, when path is set, overlays the file
// at path. Rules merge field by field; a list present in the overlay
// replaces the default list.
func Load(path string) (*Pack, error) {
	f := file{Rules: *game.DefaultRules()}
	if err := yaml.Unmarshal(defaultsYAML, &f); err != nil {
		return nil, fmt.Errorf("parse default content: %w", err)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse content %s: %w", path, err)
		}
	}
	return build(f)
}

// Parse builds a pack from a single document without the embedded defaults.
func Parse(raw []byte) (*Pack, error) {
	f := file{Rules: *game.DefaultRules()}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	return build(f)
}

func build(f file) (*Pack, error) {
	rules := f.Rules
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	p := &Pack{
		rules:     &rules,
		meetings:  make(map[string]Meeting, len(f.Meetings)),
		dialogues: make(map[string]Dialogue, len(f.Dialogues)),
		events:    f.Events,
	}
	for _, m := range f.Meetings {
		if m.Role != game.PlayerRole && !game.ValidExecutiveRole(m.Role) {
			return nil, fmt.Errorf("%w: meeting %s has unknown role %q", game.ErrInvalidInput, m.ID, m.Role)
		}
		if err := uniqueChoices(m.ID, m.Choices); err != nil {
			return nil, err
		}
		key := meetingKey(m.Role, m.ID)
		if _, dup := p.meetings[key]; dup {
			return nil, fmt.Errorf("%w: duplicate meeting %s", game.ErrInvalidInput, key)
		}
		p.meetings[key] = m
	}
	for _, d := range f.Dialogues {
		if err := uniqueChoices(d.ID, d.Choices); err != nil {
			return nil, err
		}
		if _, dup := p.dialogues[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate dialogue %s", game.ErrInvalidInput, d.ID)
		}
		p.dialogues[d.ID] = d
	}
	seen := map[string]bool{}
	for _, ev := range f.Events {
		if ev.ID == "" || seen[ev.ID] {
			return nil, fmt.Errorf("%w: event id %q missing or duplicated", game.ErrInvalidInput, ev.ID)
		}
		seen[ev.ID] = true
	}
	return p, nil
}

func uniqueChoices(owner string, choices []game.Choice) error {
	if len(choices) == 0 {
		return fmt.Errorf("%w: %s has no choices", game.ErrInvalidInput, owner)
	}
	seen := map[string]bool{}
	for _, c := range choices {
		if c.ID == "" || seen[c.ID] {
			return fmt.Errorf("%w: %s choice id %q missing or duplicated", game.ErrInvalidInput, owner, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

func meetingKey(role, id string) string {
	return role + "/" + id
}

func (p *Pack) Rules() *game.Rules {
	return p.rules
}

func (p *Pack) MeetingChoice(roleID, meetingID, choiceID string) (game.Choice, error) {
	m, ok := p.meetings[meetingKey(roleID, meetingID)]
	if !ok {
		var ids []string
		for _, mm := range p.meetings {
			if mm.Role == roleID {
				ids = append(ids, mm.ID)
			}
		}
		return game.Choice{}, fmt.Errorf("%w: no meeting %q for %s%s", game.ErrUnknownChoice, meetingID, roleID, hint(meetingID, ids))
	}
	return pick(m.Choices, "meeting "+meetingKey(roleID, meetingID), choiceID)
}

func (p *Pack) DialogueChoice(dialogueID, choiceID string) (game.Choice, error) {
	d, ok := p.dialogues[dialogueID]
	if !ok {
		ids := make([]string, 0, len(p.dialogues))
		for id := range p.dialogues {
			ids = append(ids, id)
		}
		return game.Choice{}, fmt.Errorf("%w: no dialogue %q%s", game.ErrUnknownChoice, dialogueID, hint(dialogueID, ids))
	}
	return pick(d.Choices, "dialogue "+dialogueID, choiceID)
}

func (p *Pack) NarrativeEvents() []game.NarrativeEvent {
	return p.events
}

// Meetings lists meetings ordered by role then id.
func (p *Pack) Meetings() []Meeting {
	out := make([]Meeting, 0, len(p.meetings))
	for _, m := range p.meetings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (p *Pack) Dialogues() []Dialogue {
	out := make([]Dialogue, 0, len(p.dialogues))
	for _, d := range p.dialogues {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func pick(choices []game.Choice, owner, choiceID string) (game.Choice, error) {
	ids := make([]string, 0, len(choices))
	for _, c := range choices {
		if c.ID == choiceID {
			return c, nil
		}
		ids = append(ids, c.ID)
	}
	return game.Choice{}, fmt.Errorf("%w: %s has no choice %q%s", game.ErrUnknownChoice, owner, choiceID, hint(choiceID, ids))
}

func hint(input string, candidates []string) string {
	if s, ok := Suggest(input, candidates); ok {
		return fmt.Sprintf(" (did you mean %q?)", s)
	}
	return ""
}

// Suggest returns the candidate closest to input by edit distance, if any
// is close enough to be a plausible typo.
func Suggest(input string, candidates []string) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(input, strings.ToLower(c))
		if d > suggestLimit(len(c)) {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	return best, bestDist >= 0
}

func suggestLimit(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 7:
		return 2
	default:
		return 3
	}
}
