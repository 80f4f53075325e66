package game

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type ActionKind string

const (
	ActionRoleMeeting    ActionKind = "role_meeting"
	ActionMarketing      ActionKind = "marketing"
	ActionArtistDialogue ActionKind = "artist_dialogue"
)

// Action is closed over the three kinds below.
type Action interface {
	Kind() ActionKind
	isAction()
}

type RoleMeeting struct {
	RoleID    string `json:"role_id"`
	MeetingID string `json:"meeting_id"`
	ChoiceID  string `json:"choice_id"`
	ArtistID  string `json:"artist_id,omitempty"`
}

type MarketingCampaign struct {
	Channel  string `json:"channel"`
	Budget   int64  `json:"budget"`
	ArtistID string `json:"artist_id,omitempty"`
}

type ArtistDialogue struct {
	ArtistID   string `json:"artist_id"`
	DialogueID string `json:"dialogue_id"`
	ChoiceID   string `json:"choice_id"`
}

func (RoleMeeting) Kind() ActionKind       { return ActionRoleMeeting }
func (MarketingCampaign) Kind() ActionKind { return ActionMarketing }
func (ArtistDialogue) Kind() ActionKind    { return ActionArtistDialogue }

func (RoleMeeting) isAction()       {}
func (MarketingCampaign) isAction() {}
func (ArtistDialogue) isAction()    {}

// ActionEnvelope is the wire form: {type, targetId, metadata}.
type ActionEnvelope struct {
	Type     string         `json:"type"`
	TargetID string         `json:"targetId"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func DecodeAction(env ActionEnvelope) (Action, error) {
	switch ActionKind(strings.TrimSpace(env.Type)) {
	case ActionRoleMeeting:
		return RoleMeeting{
			RoleID:    env.TargetID,
			MeetingID: metaString(env.Metadata, "meetingId"),
			ChoiceID:  metaString(env.Metadata, "choiceId"),
			ArtistID:  metaString(env.Metadata, "artistId"),
		}, nil
	case ActionMarketing:
		budget, err := metaInt(env.Metadata, "budget")
		if err != nil {
			return nil, err
		}
		return MarketingCampaign{
			Channel:  env.TargetID,
			Budget:   budget,
			ArtistID: metaString(env.Metadata, "artistId"),
		}, nil
	case ActionArtistDialogue:
		return ArtistDialogue{
			ArtistID:   env.TargetID,
			DialogueID: metaString(env.Metadata, "dialogueId"),
			ChoiceID:   metaString(env.Metadata, "choiceId"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
}

func DecodeActions(envs []ActionEnvelope) ([]Action, error) {
	out := make([]Action, 0, len(envs))
	for i, env := range envs {
		a, err := DecodeAction(env)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func EncodeAction(a Action) ActionEnvelope {
	switch v := a.(type) {
	case RoleMeeting:
		meta := map[string]any{"meetingId": v.MeetingID, "choiceId": v.ChoiceID}
		if v.ArtistID != "" {
			meta["artistId"] = v.ArtistID
		}
		return ActionEnvelope{Type: string(ActionRoleMeeting), TargetID: v.RoleID, Metadata: meta}
	case MarketingCampaign:
		meta := map[string]any{"budget": v.Budget}
		if v.ArtistID != "" {
			meta["artistId"] = v.ArtistID
		}
		return ActionEnvelope{Type: string(ActionMarketing), TargetID: v.Channel, Metadata: meta}
	case ArtistDialogue:
		return ActionEnvelope{
			Type:     string(ActionArtistDialogue),
			TargetID: v.ArtistID,
			Metadata: map[string]any{"dialogueId": v.DialogueID, "choiceId": v.ChoiceID},
		}
	}
	return ActionEnvelope{}
}

func metaString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return strings.TrimSpace(v)
}

func metaInt(m map[string]any, key string) (int64, error) {
	switch v := m[key].(type) {
	case float64:
		return int64(math.Round(v)), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, key)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, key)
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidInput, key, v)
	}
}

// applyActions runs meetings first so their relationship effects are queued
// before the flush; the rest keep their submitted order.
func (e *Engine) applyActions(p *period, actions []Action) error {
	ordered := make([]Action, len(actions))
	copy(ordered, actions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind() == ActionRoleMeeting && ordered[j].Kind() != ActionRoleMeeting
	})

	for _, a := range ordered {
		var err error
		switch v := a.(type) {
		case RoleMeeting:
			err = e.applyMeeting(p, v)
		case MarketingCampaign:
			p.applyMarketing(v)
		case ArtistDialogue:
			e.applyDialogue(p, v)
		default:
			err = fmt.Errorf("%w: %T", ErrUnknownAction, a)
		}
		if err != nil {
			return err
		}
		p.state.UsedFocusSlots++
	}
	return nil
}

func (e *Engine) applyMeeting(p *period, m RoleMeeting) error {
	source := fmt.Sprintf("%s meeting", m.RoleID)
	choice, err := e.content.MeetingChoice(m.RoleID, m.MeetingID, m.ChoiceID)
	if err != nil {
		if !errors.Is(err, ErrUnknownChoice) {
			return err
		}
		p.log.Warn("meeting choice unresolved, applying fallback",
			"role", m.RoleID, "meeting", m.MeetingID, "choice", m.ChoiceID, "err", err)
		p.applyFallback(source)
		return nil
	}

	p.applyEffects(source, m.ArtistID, choice.Immediate, ExpenseMeetings)
	p.scheduleEffects(source, m.ArtistID, choice.Delayed)
	p.summary.note(ChangeAction, fmt.Sprintf("Met with %s: %s", m.RoleID, choice.Label), Change{ArtistID: m.ArtistID})

	if m.RoleID == PlayerRole {
		return nil
	}
	exec := p.executiveByRole(m.RoleID)
	if exec == nil {
		p.log.Warn("meeting role has no executive", "role", m.RoleID)
		return nil
	}
	moodDelta := p.rules.Relationships.MeetingMoodDefault
	if choice.ExecutiveMood != nil {
		moodDelta = *choice.ExecutiveMood
	}
	before := exec.Mood
	exec.Mood = clampAttr(exec.Mood + moodDelta)
	exec.Loyalty = clampAttr(exec.Loyalty + p.rules.Relationships.MeetingLoyaltyBoost)
	exec.LastActionPeriod = p.state.CurrentPeriod
	p.usedExecutive[exec.ID] = true
	p.summary.ExecutiveChanges[exec.Role] += exec.Mood - before
	if err := p.store.UpdateExecutive(p.ctx, *exec); err != nil {
		return fmt.Errorf("update executive %s: %w", exec.ID, err)
	}
	return nil
}

func (e *Engine) applyDialogue(p *period, d ArtistDialogue) {
	source := "artist dialogue"
	if _, ok := p.artistByID[d.ArtistID]; !ok {
		p.log.Warn("dialogue target unknown, applying fallback", "artist", d.ArtistID)
		p.applyFallback(source)
		return
	}
	choice, err := e.content.DialogueChoice(d.DialogueID, d.ChoiceID)
	if err != nil {
		p.log.Warn("dialogue choice unresolved, applying fallback",
			"dialogue", d.DialogueID, "choice", d.ChoiceID, "err", err)
		p.applyFallback(source)
		return
	}
	p.applyEffects(source, d.ArtistID, choice.Immediate, ExpenseMeetings)
	p.scheduleEffects(source, d.ArtistID, choice.Delayed)
	p.summary.note(ChangeAction, "Talked with artist: "+choice.Label, Change{ArtistID: d.ArtistID})
}

func (p *period) applyMarketing(m MarketingCampaign) {
	desc := fmt.Sprintf("%s campaign", m.Channel)
	coef, ok := p.rules.Marketing[m.Channel]
	if !ok || m.Budget <= 0 {
		p.log.Warn("invalid marketing campaign, applying fallback", "channel", m.Channel, "budget", m.Budget)
		p.applyFallback(desc)
		return
	}
	if p.summary.available(p.state) < m.Budget {
		p.summary.skip(fmt.Sprintf("Skipped %s: insufficient funds for %d", desc, m.Budget), Change{ArtistID: m.ArtistID})
		return
	}
	p.summary.addExpense(ExpenseMarketing, m.Budget, Change{Description: desc, ArtistID: m.ArtistID})

	thousands := float64(m.Budget) / 1000
	p.applyEffects(desc, m.ArtistID, Effects{
		Reputation:       int(math.Floor(thousands * coef.ReputationPer1K)),
		ArtistPopularity: int(math.Floor(thousands * coef.PopularityPer1K)),
	}, ExpenseMarketing)
}

func (p *period) applyFallback(source string) {
	p.applyEffects(source+" (unresolved)", "", Effects{
		Money:      p.rules.Economy.FallbackMoney,
		Reputation: p.rules.Economy.FallbackRep,
	}, ExpenseMeetings)
}
