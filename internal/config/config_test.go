package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ipmon/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ipmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv(EnvBotToken, "token")
	t.Setenv(EnvChannelID, "123456789")
	path := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Bot.Token)
	assert.Equal(t, "123456789", cfg.Bot.ChannelID)
	assert.Equal(t, DefaultPrefix, cfg.Bot.Prefix)
	assert.NotEmpty(t, cfg.Bot.InstanceID)
	assert.Equal(t, DefaultInterval, cfg.Monitor.Interval)
	assert.Equal(t, DefaultMinInterval, cfg.Monitor.MinInterval)
	assert.Equal(t, DefaultMaxInterval, cfg.Monitor.MaxInterval)
	assert.Equal(t, DefaultIPAPIURL, cfg.Monitor.IPAPIURL)
	assert.Equal(t, 10*time.Second, cfg.Monitor.FetchTimeout)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, DefaultIPFile, cfg.Store.File)
	assert.Equal(t, "debug", cfg.Log.Level)

	id, err := cfg.Bot.Channel()
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), id)
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Setenv(EnvBotToken, "")
	t.Setenv(EnvChannelID, "")
	path := writeConfig(t, `
bot:
  token: file-token
  channel_id: "42"
  prefix: "?"
monitor:
  interval: 60
  fetch_timeout: 5s
store:
  backend: redis
  redis:
    addr: localhost:6379
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, "?", cfg.Bot.Prefix)
	assert.Equal(t, 60, cfg.Monitor.Interval)
	assert.Equal(t, 5*time.Second, cfg.Monitor.FetchTimeout)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, DefaultRedisKey, cfg.Store.Redis.Key)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvBotToken, "env-token")
	t.Setenv(EnvChannelID, "7")
	t.Setenv(EnvIPFile, "/var/lib/ipmon/ip.txt")
	path := writeConfig(t, "bot:\n  token: file-token\n  channel_id: \"42\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "7", cfg.Bot.ChannelID)
	assert.Equal(t, "/var/lib/ipmon/ip.txt", cfg.Store.File)
}

func TestLoadConfig_DerivedEnvNames(t *testing.T) {
	t.Setenv(EnvBotToken, "")
	t.Setenv(EnvChannelID, "")
	t.Setenv("BOT_CHANNEL_ID", "55")
	t.Setenv("MONITOR_INTERVAL", "90")
	t.Setenv("MONITOR_FETCH_TIMEOUT", "3s")
	t.Setenv("API_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "warn")
	path := writeConfig(t, "bot:\n  token: file-token\nmonitor:\n  interval: 60\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "55", cfg.Bot.ChannelID)
	assert.Equal(t, 90, cfg.Monitor.Interval)
	assert.Equal(t, 3*time.Second, cfg.Monitor.FetchTimeout)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_AliasWinsOverDerivedName(t *testing.T) {
	t.Setenv(EnvBotToken, "token")
	t.Setenv(EnvChannelID, "7")
	t.Setenv("BOT_CHANNEL_ID", "8")
	path := writeConfig(t, "log:\n  level: info\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.Bot.ChannelID)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		channel string
		file    string
		wantErr error
		wantMsg string
	}{
		{name: "missing token", channel: "1", wantErr: types.ErrMissingToken},
		{name: "missing channel", token: "t", wantErr: types.ErrInvalidChannelID},
		{name: "non-numeric channel", token: "t", channel: "general", wantErr: types.ErrInvalidChannelID},
		{name: "interval above max", token: "t", channel: "1", file: "monitor:\n  interval: 7201\n", wantErr: types.ErrIntervalOutOfRange},
		{name: "unknown backend", token: "t", channel: "1", file: "store:\n  backend: s3\n", wantMsg: "backend must be one of"},
		{name: "redis without addr", token: "t", channel: "1", file: "store:\n  backend: redis\n", wantMsg: "store.redis.addr is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBotToken, tt.token)
			t.Setenv(EnvChannelID, tt.channel)
			path := writeConfig(t, tt.file+"\n")

			_, err := LoadConfig(path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadConfig_ChannelAboveInt64(t *testing.T) {
	t.Setenv(EnvBotToken, "token")
	t.Setenv(EnvChannelID, "9223372036854775808")
	path := writeConfig(t, "log:\n  level: info\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	id, err := cfg.Bot.Channel()
	require.NoError(t, err)
	assert.Equal(t, uint64(9223372036854775808), id)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	t.Setenv(EnvBotToken, "token")
	t.Setenv(EnvChannelID, "1")
	path := writeConfig(t, "monitor:\n  interval: 30\n")

	changed := make(chan *Config, 16)
	require.NoError(t, Watch(path, nil, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("monitor:\n  interval: 90\n"), 0644))

	// A truncating write may surface an intermediate empty file first.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Monitor.Interval == 90 {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestWatch_RequiresPath(t *testing.T) {
	assert.Error(t, Watch("", nil, func(*Config) {}))
}
