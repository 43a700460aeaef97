package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ipmon/internal/types"
	"ipmon/internal/validator"
	"ipmon/internal/version"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single lookup request
const DefaultTimeout = 10 * time.Second

// Fetcher looks up the caller's public IP from a plain-text echo endpoint
type Fetcher struct {
	url       string
	client    *http.Client
	validator *validator.Validator
	logger    *zap.Logger
}

// New creates a fetcher for url with the given request timeout
func New(url string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true,
				MaxIdleConnsPerHost: 2,
			},
		},
		validator: validator.New(),
		logger:    logger,
	}
}

// Fetch returns the current public IP. ok is false when the lookup failed
// for any reason; failures are logged and never escalated.
func (f *Fetcher) Fetch(ctx context.Context) (ip string, ok bool) {
	ip, err := f.query(ctx)
	if err != nil {
		f.logger.Debug("Public IP lookup failed, skipping cycle",
			zap.String("url", f.url),
			zap.Error(err))
		return "", false
	}
	return ip, true
}

// query performs the request and validates the body
func (f *Fetcher) query(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "ipmon/"+version.GetInfo().Version)
	req.Header.Set("Accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrFetchFailed, err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			f.logger.Error("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", types.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", types.ErrFetchFailed, err)
	}

	ip := strings.TrimSpace(string(body))
	if !f.validator.IsIP(ip) {
		return "", fmt.Errorf("%w: invalid IP address %q", types.ErrFetchFailed, ip)
	}

	return ip, nil
}

// Close releases idle connections
func (f *Fetcher) Close() {
	if transport, ok := f.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
