// Package notify posts finished campaigns to a Discord channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"labelsim/internal/game"
)

const (
	colorFailure  = 0xd64545
	colorSurvival = 0xe0a526
	colorWin      = 0x3fb950
)

type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord implements game.Announcer.
type Discord struct {
	sender    embedSender
	channelID string
	log       *slog.Logger
}

func NewDiscord(token, channelID string, logger *slog.Logger) (*Discord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	session, err := discordgo.New("Bot " + strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{sender: session, channelID: channelID, log: logger}, nil
}

func (d *Discord) CampaignCompleted(ctx context.Context, state game.GameState, res game.CampaignResults) error {
	if _, err := d.sender.ChannelMessageSendEmbed(d.channelID, FormatCampaign(state, res), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("post campaign %s: %w", state.ID, err)
	}
	d.log.Info("campaign announced", "game_id", state.ID, "victory", res.VictoryType, "score", res.Score)
	return nil
}

func FormatCampaign(state game.GameState, res game.CampaignResults) *discordgo.MessageEmbed {
	color := colorWin
	switch res.VictoryType {
	case game.VictoryFailure:
		color = colorFailure
	case game.VictorySurvival:
		color = colorSurvival
	}

	achievements := "none"
	if len(res.Achievements) > 0 {
		achievements = strings.Join(res.Achievements, ", ")
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s after %d weeks", res.VictoryType, state.CurrentPeriod),
		Description: res.Summary,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score", Value: humanize.Comma(int64(res.Score)), Inline: true},
			{Name: "Money", Value: "$" + humanize.Comma(state.Money), Inline: true},
			{Name: "Reputation", Value: fmt.Sprintf("%d", state.Reputation), Inline: true},
			{Name: "Access", Value: fmt.Sprintf("playlist %s, press %s, venues %s", state.PlaylistAccess, state.PressAccess, state.VenueAccess)},
			{Name: "Achievements", Value: achievements},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "game " + state.ID},
	}
}
