package config

import "ipmon/internal/logger"

// LogConfig represents logging configuration
// This is a copy of the logger.Config
type LogConfig = logger.Config

var (
	// AppName is the name of the application
	AppName = "ipmon"

	// Config search paths

	// InDot is the path to the config file in ./
	InDot = "."
	// InEtc is the path to the config file in /etc/{AppName}
	InEtc = "/etc/" + AppName
	// InHome is the path to the config file in $HOME/.config/{AppName}
	InHome = "$HOME/.config/" + AppName
	// InHomeDot is the path to the config file in $HOME/.{AppName}
	InHomeDot = "$HOME/." + AppName
)

// Environment variables read at startup
const (
	EnvBotToken  = "BOT_TOKEN"
	EnvChannelID = "CHANNEL_ID"
	EnvIPFile    = "IP_FILE"
	EnvIPAPIURL  = "IP_API_URL"
)
