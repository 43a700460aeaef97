package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch re-reads the config file at path whenever it changes and passes
// each valid result to onChange. Invalid edits are logged and ignored.
func Watch(path string, logger *zap.Logger, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("config watch requires an explicit config file")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v, err := newViper(path)
	if err != nil {
		return err
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			logger.Warn("Ignoring invalid config change",
				zap.String("file", evt.Name),
				zap.Error(err))
			return
		}
		logger.Info("Config file changed", zap.String("file", evt.Name))
		onChange(cfg)
	})
	v.WatchConfig()

	return nil
}
