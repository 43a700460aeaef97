package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ipmon/internal/api/response"
	"ipmon/internal/state"
	"ipmon/internal/types"
	"ipmon/internal/version"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusReader reports the current monitor settings
type StatusReader interface {
	Status(ctx context.Context) *types.Status
}

// CheckRunner runs an immediate change detection cycle
type CheckRunner interface {
	RunOnce(ctx context.Context) *types.IPChange
}

// API represents the API
type API struct {
	state      *state.PollState
	status     StatusReader
	checker    CheckRunner
	instanceID string
	startTime  time.Time
	logger     *zap.Logger
}

// NewAPI creates new API
func NewAPI(st *state.PollState, status StatusReader, checker CheckRunner, instanceID string, logger *zap.Logger) *API {
	return &API{
		state:      st,
		status:     status,
		checker:    checker,
		instanceID: instanceID,
		startTime:  time.Now(),
		logger:     logger,
	}
}

// RegisterRoutes registers API routes
func (api *API) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/settings", api.getSettings)
	r.PUT("/interval", api.setInterval)
	r.POST("/check", api.check)
}

// RegisterHealth registers the unauthenticated health route
func (api *API) RegisterHealth(r *gin.RouterGroup) {
	r.GET("/health", api.healthCheck)
}

// getSettings handles retrieving the current settings
func (api *API) getSettings(c *gin.Context) {
	resp := response.New(c, api.logger)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp.Success(api.status.Status(ctx))
}

// setInterval handles updating the polling interval
func (api *API) setInterval(c *gin.Context) {
	resp := response.New(c, api.logger)

	var req struct {
		Seconds *int `json:"seconds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(errors.New("seconds is required"))
		return
	}

	if err := api.state.SetInterval(*req.Seconds); err != nil {
		minSeconds, maxSeconds := api.state.Bounds()
		resp.ValidationError(fmt.Errorf("interval must be between %d and %d seconds", minSeconds, maxSeconds))
		return
	}

	api.logger.Info("Interval updated via API",
		zap.Int("interval_seconds", *req.Seconds),
		zap.String("request_id", c.GetString("request_id")))

	resp.Success(gin.H{"interval_seconds": api.state.Interval()})
}

// check handles triggering an immediate IP check
func (api *API) check(c *gin.Context) {
	resp := response.New(c, api.logger)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	change := api.checker.RunOnce(ctx)
	if errors.Is(ctx.Err(), context.Canceled) {
		api.logger.Info("Client canceled check request")
		return
	}

	resp.Success(gin.H{
		"changed": change != nil,
		"change":  change,
	})
}

// healthCheck handles health check requests
func (api *API) healthCheck(c *gin.Context) {
	resp := response.New(c, api.logger)

	now := time.Now()
	status := &types.HealthStatus{
		Healthy:    api.state.Running(),
		InstanceID: api.instanceID,
		Version:    version.GetInfo().Version,
		StartTime:  api.startTime,
		Uptime:     now.Sub(api.startTime),
		Timestamp:  now,
	}

	if !status.Healthy {
		resp.Error(http.StatusServiceUnavailable, errors.New("monitoring stopped"))
		return
	}

	resp.Success(status)
}
