package notify

import (
	"context"

	"ipmon/internal/types"

	"github.com/bwmarrin/discordgo"
)

// NotifierType represents the type of notifier
type NotifierType string

const (
	NotifierChannel NotifierType = "channel"
	NotifierWebhook NotifierType = "webhook"
)

// Notifier represents notifier interface
type Notifier interface {
	// NotifyIPChange sends an initial or changed IP notification
	NotifyIPChange(ctx context.Context, change *types.IPChange) error

	// NotifyOnline sends the startup announcement
	NotifyOnline(ctx context.Context, status *types.Status) error
}

// MessageSender posts plain messages to a chat channel.
// *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}
