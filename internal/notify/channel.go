package notify

import (
	"context"
	"fmt"

	"ipmon/internal/notify/template"
	"ipmon/internal/types"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ChannelNotifier posts notifications to the bot's configured channel
type ChannelNotifier struct {
	sender    MessageSender
	channelID string
	tplLoader *template.Loader
	logger    *zap.Logger
}

// NewChannelNotifier creates a notifier bound to channelID
func NewChannelNotifier(sender MessageSender, channelID string, loader *template.Loader, logger *zap.Logger) (*ChannelNotifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("message sender is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChannelNotifier{
		sender:    sender,
		channelID: channelID,
		tplLoader: loader,
		logger:    logger,
	}, nil
}

// NotifyIPChange sends an IP change notification
func (n *ChannelNotifier) NotifyIPChange(ctx context.Context, change *types.IPChange) error {
	content, err := renderChange(n.tplLoader, change)
	if err != nil {
		return err
	}
	return n.send(ctx, content)
}

// NotifyOnline sends the startup announcement
func (n *ChannelNotifier) NotifyOnline(ctx context.Context, status *types.Status) error {
	content, err := n.tplLoader.Render(template.Online, status)
	if err != nil {
		return err
	}
	return n.send(ctx, content)
}

func (n *ChannelNotifier) send(ctx context.Context, content string) error {
	if _, err := n.sender.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send channel message: %w", err)
	}
	n.logger.Debug("Channel message sent", zap.String("channel_id", n.channelID))
	return nil
}
