package command

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"ipmon/internal/notify/template"
	"ipmon/internal/state"
	"ipmon/internal/store"
	"ipmon/internal/types"

	"go.uber.org/zap"
)

// Command names, matched case-sensitively after the prefix
const (
	SetInterval = "setinterval"
	Settings    = "settings"
	Help        = "help"
)

// Handler renders the reply for one command invocation
type Handler func(ctx context.Context, mention string, args []string) (string, error)

// Dispatcher parses prefixed chat commands and produces replies
type Dispatcher struct {
	prefix    string
	channelID string
	state     *state.PollState
	store     store.Store
	tplLoader *template.Loader
	logger    *zap.Logger
	handlers  map[string]Handler
}

// NewDispatcher creates a dispatcher with the built-in commands registered
func NewDispatcher(prefix, channelID string, st *state.PollState, ipStore store.Store, loader *template.Loader, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		prefix:    prefix,
		channelID: channelID,
		state:     st,
		store:     ipStore,
		tplLoader: loader,
		logger:    logger,
	}

	d.handlers = map[string]Handler{
		SetInterval: d.handleSetInterval,
		Settings:    d.handleSettings,
		Help:        d.handleHelp,
	}

	return d
}

// Parse splits a message into command name and arguments.
// ok is false when the message does not start with the prefix.
func (d *Dispatcher) Parse(content string) (name string, args []string, ok bool) {
	if !strings.HasPrefix(content, d.prefix) {
		return "", nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, d.prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}

// Dispatch runs the command in content on behalf of the user identified by
// mention. handled is false for non-commands and unknown commands.
func (d *Dispatcher) Dispatch(ctx context.Context, mention, content string) (reply string, handled bool) {
	name, args, ok := d.Parse(content)
	if !ok {
		return "", false
	}

	h, ok := d.handlers[name]
	if !ok {
		d.logger.Debug("Ignoring unknown command", zap.String("command", name))
		return "", false
	}

	reply, err := h(ctx, mention, args)
	if err != nil {
		d.logger.Error("Command failed",
			zap.String("command", name),
			zap.Error(err))
		return "", false
	}

	d.logger.Info("Command handled",
		zap.String("command", name),
		zap.Strings("args", args))
	return reply, true
}

// Status returns the current monitor settings
func (d *Dispatcher) Status(ctx context.Context) *types.Status {
	saved, err := d.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, types.ErrIPNotFound) {
			d.logger.Warn("Failed to read saved IP", zap.Error(err))
		}
		saved = ""
	}

	return &types.Status{
		Running:   d.state.Running(),
		SavedIP:   saved,
		Interval:  d.state.Interval(),
		ChannelID: d.channelID,
	}
}

func (d *Dispatcher) handleSetInterval(_ context.Context, mention string, args []string) (string, error) {
	if len(args) == 0 {
		return d.tplLoader.Render(template.IntervalUsage, map[string]any{
			"Mention": mention,
			"Arg":     "",
			"Prefix":  d.prefix,
		})
	}

	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		return d.tplLoader.Render(template.IntervalUsage, map[string]any{
			"Mention": mention,
			"Arg":     args[0],
			"Prefix":  d.prefix,
		})
	}

	if err := d.state.SetInterval(seconds); err != nil {
		minSeconds, maxSeconds := d.state.Bounds()
		return d.tplLoader.Render(template.IntervalInvalid, map[string]any{
			"Mention": mention,
			"Min":     minSeconds,
			"Max":     maxSeconds,
		})
	}

	return d.tplLoader.Render(template.IntervalUpdated, map[string]any{
		"Mention":  mention,
		"Interval": seconds,
	})
}

func (d *Dispatcher) handleSettings(ctx context.Context, mention string, _ []string) (string, error) {
	return d.tplLoader.Render(template.Settings, map[string]any{
		"Mention": mention,
		"Status":  d.Status(ctx),
	})
}

func (d *Dispatcher) handleHelp(_ context.Context, mention string, _ []string) (string, error) {
	return d.tplLoader.Render(template.Help, map[string]any{
		"Mention": mention,
		"Prefix":  d.prefix,
	})
}
