package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ipmon/internal/api"
	av1 "ipmon/internal/api/v1"
	"ipmon/internal/bot"
	"ipmon/internal/bot/command"
	"ipmon/internal/config"
	"ipmon/internal/detector"
	"ipmon/internal/fetcher"
	"ipmon/internal/logger"
	"ipmon/internal/notify"
	"ipmon/internal/notify/template"
	"ipmon/internal/scheduler"
	"ipmon/internal/state"
	"ipmon/internal/store"
	"ipmon/internal/version"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type component struct {
	name  string
	start func(context.Context) error
	stop  func(context.Context) error
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env", "", "Path to env file (defaults to ./.env when present)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version if requested
	if *showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log = log.With(zap.String("instance_id", cfg.Bot.InstanceID))

	defer func(l *zap.Logger) {
		_ = l.Sync()
	}(log)

	log.Info("Starting ipmon", zap.String("version", version.GetInfo().String()))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	ipStore, err := store.New(ctx, &cfg.Store, log.Named("store"))
	if err != nil {
		log.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer func() {
		_ = ipStore.Close()
	}()

	ipFetcher := fetcher.New(cfg.Monitor.IPAPIURL, cfg.Monitor.FetchTimeout, log.Named("fetcher"))
	defer ipFetcher.Close()

	// Message templates
	loader, err := template.NewLoader(log.Named("template"))
	if err != nil {
		log.Fatal("Failed to load templates", zap.Error(err))
	}
	for name, content := range cfg.Bot.Templates {
		if err := loader.SetCustomTemplate(name, content); err != nil {
			log.Fatal("Failed to register custom template", zap.String("template", name), zap.Error(err))
		}
	}

	// Chat session
	session, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		log.Fatal("Failed to create chat session", zap.Error(err))
	}
	session.Identify.Intents = bot.Intents

	// Notifiers
	manager := notify.NewManager(log.Named("notify"))
	channelNotifier, err := notify.NewChannelNotifier(session, cfg.Bot.ChannelID, loader, log.Named("notify"))
	if err != nil {
		log.Fatal("Failed to initialize channel notifier", zap.Error(err))
	}
	manager.Register(notify.NotifierChannel, channelNotifier)

	if cfg.Notify.Webhook.Enabled {
		webhook, err := notify.NewWebhookNotifier(&cfg.Notify.Webhook, loader, log.Named("notify"))
		if err != nil {
			log.Fatal("Failed to initialize webhook notifier", zap.Error(err))
		}
		manager.Register(notify.NotifierWebhook, webhook)
	}

	log.Info("Notifiers registered",
		zap.Bool(string(notify.NotifierChannel), manager.IsNotifierEnabled(notify.NotifierChannel)),
		zap.Bool(string(notify.NotifierWebhook), manager.IsNotifierEnabled(notify.NotifierWebhook)))

	// Monitoring
	pollState, err := state.NewPollState(cfg.Monitor.Interval, cfg.Monitor.MinInterval, cfg.Monitor.MaxInterval)
	if err != nil {
		log.Fatal("Invalid poll state", zap.Error(err))
	}

	det := detector.New(ipFetcher, ipStore, manager, log.Named("detector"))
	sched := scheduler.New(det, pollState, log.Named("scheduler"))
	dispatcher := command.NewDispatcher(cfg.Bot.Prefix, cfg.Bot.ChannelID, pollState, ipStore, loader, log.Named("command"))
	b := bot.New(session, cfg.Bot.ChannelID, dispatcher, manager, log.Named("bot"))

	// Components start in order and stop in reverse
	components := []component{
		{
			name:  "bot",
			start: b.Start,
			stop:  func(context.Context) error { return b.Stop() },
		},
		{
			name:  "scheduler",
			start: func(ctx context.Context) error { return sched.Start(ctx, b.Ready()) },
			stop:  sched.Stop,
		},
	}

	if cfg.API.Enabled {
		routes := av1.NewAPI(pollState, dispatcher, sched, cfg.Bot.InstanceID, log.Named("api"))
		router := api.NewRouter(cfg, routes, log.Named("api"))
		server := api.NewServer(cfg.API.Listen, router.Handler(), log.Named("api"))

		components = append(components, component{
			name:  "api",
			start: func(context.Context) error { return server.Start() },
			stop:  server.Stop,
		})
	}

	for _, c := range components {
		if err := c.start(ctx); err != nil {
			log.Fatal("Failed to start component",
				zap.String("component", c.name),
				zap.Error(err))
		}
	}

	if cfg.Monitor.WatchConfig {
		watchConfig(*configPath, pollState, log.Named("config"))
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for signal
	sig := <-sigChan
	log.Info("Received signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	log.Info("Starting graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.stop(shutdownCtx); err != nil {
			log.Error("Failed to stop component",
				zap.String("component", c.name),
				zap.Error(err))
		}
	}

	log.Info("Shutdown complete")
}

// watchConfig applies interval edits from the config file to the running poller
func watchConfig(path string, pollState *state.PollState, log *zap.Logger) {
	err := config.Watch(path, log, func(cfg *config.Config) {
		if cfg.Monitor.Interval == pollState.Interval() {
			return
		}
		if err := pollState.SetInterval(cfg.Monitor.Interval); err != nil {
			log.Warn("Ignoring interval from config file", zap.Error(err))
			return
		}
		log.Info("Interval updated from config file",
			zap.Int("interval_seconds", cfg.Monitor.Interval))
	})
	if err != nil {
		log.Warn("Config watch disabled", zap.Error(err))
	}
}
