package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"ipmon/internal/types"
	"ipmon/internal/validator"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Interval bounds and defaults, in seconds
const (
	DefaultInterval    = 300
	DefaultMinInterval = 1
	DefaultMaxInterval = 7200
)

const (
	DefaultIPAPIURL     = "https://api.ipify.org"
	DefaultFetchTimeout = 10 * time.Second
	DefaultIPFile       = "public_ip.txt"
	DefaultRedisKey     = "ipmon:public_ip"
	DefaultPrefix       = "!"
	DefaultAPIListen    = "127.0.0.1:8090"
)

// Config represents ipmon configuration
type Config struct {
	Bot     BotConfig     `mapstructure:"bot"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Store   StoreConfig   `mapstructure:"store"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	API     APIConfig     `mapstructure:"api"`
	Log     LogConfig     `mapstructure:"log"`
}

// BotConfig represents chat bot configuration
type BotConfig struct {
	Token      string            `mapstructure:"token" validate:"required"`
	ChannelID  string            `mapstructure:"channel_id" validate:"required,snowflake"`
	Prefix     string            `mapstructure:"prefix" validate:"required"`
	InstanceID string            `mapstructure:"instance_id"`
	Templates  map[string]string `mapstructure:"templates"`
}

// MonitorConfig represents polling configuration
type MonitorConfig struct {
	Interval     int           `mapstructure:"interval"` // seconds
	MinInterval  int           `mapstructure:"min_interval" validate:"min=1"`
	MaxInterval  int           `mapstructure:"max_interval" validate:"min=1"`
	IPAPIURL     string        `mapstructure:"ip_api_url" validate:"required,url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	WatchConfig  bool          `mapstructure:"watch_config"`
}

// StoreConfig represents persisted IP storage configuration
type StoreConfig struct {
	Backend string      `mapstructure:"backend" validate:"oneof=file redis"`
	File    string      `mapstructure:"file"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents redis storage configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// APIConfig represents the local status API configuration
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Token   string `mapstructure:"token"`
}

// Channel returns the numeric channel id
func (b *BotConfig) Channel() (uint64, error) {
	id, err := validator.ParseSnowflake(b.ChannelID)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidChannelID, b.ChannelID)
	}
	return id, nil
}

// LoadConfig loads configuration from an optional YAML file and the environment.
// An empty path searches the default locations and tolerates a missing file.
func LoadConfig(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// newViper prepares a viper instance with search paths and env bindings
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(InDot)
		v.AddConfigPath(InHome)
		v.AddConfigPath(InHomeDot)
		v.AddConfigPath(InEtc)
		ex, err := os.Executable()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(ex))
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnv(v, reflect.TypeOf(Config{}), ""); err != nil {
		return nil, err
	}

	return v, nil
}

// envAliases are short variable names checked before the derived ones
var envAliases = map[string]string{
	"bot.token":          EnvBotToken,
	"bot.channel_id":     EnvChannelID,
	"store.file":         EnvIPFile,
	"monitor.ip_api_url": EnvIPAPIURL,
}

// bindEnv registers every leaf key of t so Unmarshal sees variables such as
// MONITOR_INTERVAL even when the key is absent from the config file
func bindEnv(v *viper.Viper, t reflect.Type, prefix string) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			if err := bindEnv(v, field.Type, key); err != nil {
				return err
			}
			continue
		case reflect.Map, reflect.Slice:
			continue
		}

		names := []string{key}
		if alias, ok := envAliases[key]; ok {
			names = append(names, alias, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		}
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// decode unmarshals, defaults and validates the current viper state
func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values if not specified
func setDefaults(config *Config) {
	if config.Bot.Prefix == "" {
		config.Bot.Prefix = DefaultPrefix
	}

	if config.Bot.InstanceID == "" {
		config.Bot.InstanceID = uuid.New().String()
	}

	if config.Monitor.MinInterval == 0 {
		config.Monitor.MinInterval = DefaultMinInterval
	}

	if config.Monitor.MaxInterval == 0 {
		config.Monitor.MaxInterval = DefaultMaxInterval
	}

	if config.Monitor.Interval == 0 {
		config.Monitor.Interval = DefaultInterval
	}

	if config.Monitor.IPAPIURL == "" {
		config.Monitor.IPAPIURL = DefaultIPAPIURL
	}

	if config.Monitor.FetchTimeout == 0 {
		config.Monitor.FetchTimeout = DefaultFetchTimeout
	}

	if config.Store.Backend == "" {
		config.Store.Backend = "file"
	}

	if config.Store.File == "" {
		config.Store.File = DefaultIPFile
	}

	if config.Store.Redis.Key == "" {
		config.Store.Redis.Key = DefaultRedisKey
	}

	if config.API.Listen == "" {
		config.API.Listen = DefaultAPIListen
	}

	config.Log.SetDefaults()
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Bot.Token == "" {
		return types.ErrMissingToken
	}

	if _, err := config.Bot.Channel(); err != nil {
		return err
	}

	if err := validator.New().Struct(config); err != nil {
		return err
	}

	m := config.Monitor
	if m.MinInterval > m.MaxInterval {
		return fmt.Errorf("monitor.min_interval (%d) exceeds monitor.max_interval (%d)",
			m.MinInterval, m.MaxInterval)
	}

	if m.Interval < m.MinInterval || m.Interval > m.MaxInterval {
		return fmt.Errorf("%w: monitor.interval must be between %d and %d",
			types.ErrIntervalOutOfRange, m.MinInterval, m.MaxInterval)
	}

	if config.Notify.Webhook.Enabled && config.Notify.Webhook.WebhookURL == "" {
		return fmt.Errorf("notify.webhook.webhook_url is required when the webhook is enabled")
	}

	if config.Store.Backend == "redis" && config.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis backend")
	}

	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}

	return nil
}
