package sms

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordRelay posts SMS messages to a Discord channel instead of a real
// carrier. Used in development environments where no SMS gateway is
// provisioned, so the message flow stays observable end to end.
type DiscordRelay struct {
	discord   *discordgo.Session
	channelID string
}

func NewDiscordRelay(botToken, channelID string) (*DiscordRelay, error) {
	discord, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &DiscordRelay{
		discord:   discord,
		channelID: channelID,
	}, nil
}

func (r *DiscordRelay) Send(ctx context.Context, phoneNumber, message string) error {
	content := fmt.Sprintf("SMS to %s: %s", phoneNumber, message)
	_, err := r.discord.ChannelMessageSend(r.channelID, content, discordgo.WithContext(ctx))
	return err
}
