package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ipmon/internal/config"
	"ipmon/internal/notify/template"
	"ipmon/internal/types"

	"go.uber.org/zap"
)

// WebhookNotifier posts notifications to a Discord webhook
type WebhookNotifier struct {
	config    *config.DiscordWebhookConfig
	logger    *zap.Logger
	client    *http.Client
	tplLoader *template.Loader
}

// WebhookMessage represents a Discord webhook payload
type WebhookMessage struct {
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Content   string `json:"content"`
}

// NewWebhookNotifier creates new Discord webhook notifier
func NewWebhookNotifier(cfg *config.DiscordWebhookConfig, loader *template.Loader, logger *zap.Logger) (*WebhookNotifier, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("discord webhook notifier is disabled")
	}

	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("discord webhook URL is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &WebhookNotifier{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true,
				DisableKeepAlives:   false,
				MaxIdleConnsPerHost: 5,
			},
		},
		tplLoader: loader,
	}, nil
}

// NotifyIPChange sends IP change notification
func (n *WebhookNotifier) NotifyIPChange(ctx context.Context, change *types.IPChange) error {
	content, err := renderChange(n.tplLoader, change)
	if err != nil {
		return err
	}
	return n.send(ctx, content)
}

// NotifyOnline sends the startup announcement
func (n *WebhookNotifier) NotifyOnline(ctx context.Context, status *types.Status) error {
	content, err := n.tplLoader.Render(template.Online, status)
	if err != nil {
		return err
	}
	return n.send(ctx, content)
}

// send posts the message to the webhook
func (n *WebhookNotifier) send(ctx context.Context, content string) error {
	payload, err := json.Marshal(WebhookMessage{
		Username:  n.config.Username,
		AvatarURL: n.config.AvatarURL,
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			n.logger.Error("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limit exceeded, retry after %ss", resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord api error: status code %d", resp.StatusCode)
	}

	return nil
}
