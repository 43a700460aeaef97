package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	av1 "ipmon/internal/api/v1"
	"ipmon/internal/config"
	"ipmon/internal/state"
	"ipmon/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStatus struct {
	state *state.PollState
}

func (f *fakeStatus) Status(context.Context) *types.Status {
	return &types.Status{
		Running:   f.state.Running(),
		SavedIP:   "1.2.3.4",
		Interval:  f.state.Interval(),
		ChannelID: "42",
	}
}

type fakeChecker struct {
	calls  atomic.Int32
	change *types.IPChange
}

func (f *fakeChecker) RunOnce(context.Context) *types.IPChange {
	f.calls.Add(1)
	return f.change
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID string          `json:"request_id"`
}

func newTestRouter(t *testing.T, token string) (http.Handler, *state.PollState, *fakeChecker) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	st, err := state.NewPollState(300, 1, 7200)
	require.NoError(t, err)

	checker := &fakeChecker{}
	cfg := &config.Config{
		API: config.APIConfig{Enabled: true, Listen: "127.0.0.1:0", Token: token},
		Log: config.LogConfig{Level: "debug"},
	}

	api := av1.NewAPI(st, &fakeStatus{state: st}, checker, "instance-1", logger)
	return NewRouter(cfg, api, logger).Handler(), st, checker
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealth(t *testing.T) {
	h, st, _ := newTestRouter(t, "secret")

	w, env := do(t, h, http.MethodGet, "/api/v1/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), env.RequestID)

	var health types.HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.True(t, health.Healthy)
	assert.Equal(t, "instance-1", health.InstanceID)

	st.SetRunning(false)
	w, env = do(t, h, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "monitoring stopped", env.Error)
}

func TestSettings(t *testing.T) {
	h, _, _ := newTestRouter(t, "")

	w, env := do(t, h, http.MethodGet, "/api/v1/settings", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status types.Status
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Running)
	assert.Equal(t, "1.2.3.4", status.SavedIP)
	assert.Equal(t, 300, status.Interval)
	assert.Equal(t, "42", status.ChannelID)
}

func TestSetInterval(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantCode     int
		wantInterval int
	}{
		{name: "accepted", body: `{"seconds": 3600}`, wantCode: http.StatusOK, wantInterval: 3600},
		{name: "zero", body: `{"seconds": 0}`, wantCode: http.StatusUnprocessableEntity, wantInterval: 300},
		{name: "above maximum", body: `{"seconds": 7201}`, wantCode: http.StatusUnprocessableEntity, wantInterval: 300},
		{name: "missing", body: `{}`, wantCode: http.StatusBadRequest, wantInterval: 300},
		{name: "not a number", body: `{"seconds": "soon"}`, wantCode: http.StatusBadRequest, wantInterval: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st, _ := newTestRouter(t, "")

			w, env := do(t, h, http.MethodPut, "/api/v1/interval", tt.body, "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, tt.wantInterval, st.Interval())
			if tt.wantCode == http.StatusUnprocessableEntity {
				assert.Equal(t, "interval must be between 1 and 7200 seconds", env.Error)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	h, _, checker := newTestRouter(t, "")

	w, env := do(t, h, http.MethodPost, "/api/v1/check", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed": false, "change": null}`, string(env.Data))

	checker.change = &types.IPChange{
		Action:    types.IPChangeActionChanged,
		OldIP:     "1.2.3.4",
		NewIP:     "5.6.7.8",
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	w, env = do(t, h, http.MethodPost, "/api/v1/check", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Changed bool            `json:"changed"`
		Change  *types.IPChange `json:"change"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Changed)
	assert.Equal(t, "5.6.7.8", data.Change.NewIP)
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestAuth(t *testing.T) {
	h, st, _ := newTestRouter(t, "secret")

	w, env := do(t, h, http.MethodGet, "/api/v1/settings", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", env.Error)

	w, _ = do(t, h, http.MethodPut, "/api/v1/interval", `{"seconds": 60}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 300, st.Interval())

	w, _ = do(t, h, http.MethodPut, "/api/v1/interval", `{"seconds": 60}`, "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60, st.Interval())
}

func TestNoRoute(t *testing.T) {
	h, _, _ := newTestRouter(t, "")

	w, env := do(t, h, http.MethodGet, "/api/v2/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", env.Error)
}

func TestServerStartStop(t *testing.T) {
	h, _, _ := newTestRouter(t, "")
	srv := NewServer("127.0.0.1:0", h, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}
