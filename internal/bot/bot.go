package bot

import (
	"context"
	"fmt"
	"sync"

	"ipmon/internal/bot/command"
	"ipmon/internal/notify"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Intents required to receive prefixed commands
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// Session is the part of *discordgo.Session the bot uses
type Session interface {
	notify.MessageSender
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
}

// Bot connects the command dispatcher and startup announcement to a chat session
type Bot struct {
	session   Session
	channelID string
	commands  *command.Dispatcher
	notifier  notify.Notifier
	logger    *zap.Logger

	mu        sync.RWMutex
	ctx       context.Context
	selfID    string
	ready     chan struct{}
	readyOnce sync.Once
	removers  []func()
}

// New creates a bot. notifier receives the online announcement once the
// session is ready.
func New(session Session, channelID string, commands *command.Dispatcher, notifier notify.Notifier, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		session:   session,
		channelID: channelID,
		commands:  commands,
		notifier:  notifier,
		logger:    logger,
		ctx:       context.Background(),
		ready:     make(chan struct{}),
	}
}

// Ready is closed after the first Ready event
func (b *Bot) Ready() <-chan struct{} {
	return b.ready
}

// Start registers handlers and opens the gateway connection.
// ctx bounds the work done inside event handlers.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	b.removers = append(b.removers,
		b.session.AddHandler(b.onReady),
		b.session.AddHandler(b.onMessageCreate),
	)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open chat session: %w", err)
	}

	b.logger.Info("Chat session opened")
	return nil
}

// Stop removes handlers and closes the connection
func (b *Bot) Stop() error {
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close chat session: %w", err)
	}

	b.logger.Info("Chat session closed")
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.handleReady(b.context(), r)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(b.context(), m.Message)
}

func (b *Bot) handleReady(ctx context.Context, r *discordgo.Ready) {
	if r.User != nil {
		b.mu.Lock()
		b.selfID = r.User.ID
		b.mu.Unlock()
		b.logger.Info("Logged in", zap.String("user", r.User.String()))
	}

	b.readyOnce.Do(func() {
		if _, err := b.session.Channel(b.channelID, discordgo.WithContext(ctx)); err != nil {
			b.logger.Warn("Could not resolve notification channel",
				zap.String("channel_id", b.channelID),
				zap.Error(err))
		}

		if err := b.notifier.NotifyOnline(ctx, b.commands.Status(ctx)); err != nil {
			b.logger.Error("Failed to send online message", zap.Error(err))
		}

		close(b.ready)
	})
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}

	b.mu.RLock()
	self := b.selfID
	b.mu.RUnlock()
	if m.Author.ID == self {
		return
	}

	reply, handled := b.commands.Dispatch(ctx, m.Author.Mention(), m.Content)
	if !handled || reply == "" {
		return
	}

	if _, err := b.session.ChannelMessageSend(m.ChannelID, reply, discordgo.WithContext(ctx)); err != nil {
		b.logger.Error("Failed to send command reply",
			zap.String("channel_id", m.ChannelID),
			zap.Error(err))
	}
}

func (b *Bot) context() context.Context {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctx
}
