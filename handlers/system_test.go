package handlers

import (
	"context"
	"fmt"
	"mortify/commerce"
	"mortify/core"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decodeV2(t, rec)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "app", data["app_slug"])
	assert.Equal(t, "none", data["commerce_mode"])

	down := newTestServer(t, func(o *Options) { o.Ping = func(context.Context) bool { return false } })
	rec = down.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp, data := decodeV2(t, rec)
	assert.Equal(t, CodeUnavailable, resp.Code)
	assert.Equal(t, "degraded", data["status"])
}

func TestErrorLogsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	core.ErrorLoggerInstance.ClearErrorLogs()
	t.Cleanup(core.ErrorLoggerInstance.ClearErrorLogs)

	// An unavailable cart backend is recorded as a warning.
	s.handler.commerce = fakeCommerce{err: fmt.Errorf("wrapped: %w", commerce.ErrUnavailable)}
	s.do(http.MethodGet, "/ajax?action=get_cart_count", "")

	rec := s.do(http.MethodGet, "/api/error-logs", "", fromLoopback)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"source":"Cart"`), rec.Body.String())

	rec = s.do(http.MethodGet, "/api/error-logs?id=1", "", fromLoopback)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/error-logs?id=999", "", fromLoopback)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/api/error-logs?id=x", "", fromLoopback)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/error-logs", "", fromLoopback)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, core.ErrorLoggerInstance.GetErrorLogs())

	rec = s.do(http.MethodGet, "/api/error-logs", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShutdownFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/shutdown/verify", `{"code":"123456"}`, fromLoopback)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no code generated yet")

	rec = s.do(http.MethodPost, "/api/shutdown/generate-code", "", fromLoopback)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decodeV2(t, rec)
	code := data["code"].(string)
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rec = s.do(http.MethodPost, "/api/shutdown/verify", `{"code":"`+wrong+`"}`, fromLoopback)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/shutdown/verify", `{"code":"`+code+`"}`, fromLoopback)
	require.Equal(t, http.StatusOK, rec.Code)
	select {
	case <-s.shutdown:
	default:
		t.Fatal("shutdown was not signalled")
	}

	rec = s.do(http.MethodPost, "/api/shutdown/verify", `{"code":"`+code+`"}`, fromLoopback)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "codes are single use")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodGet, "/app/", "")
	s.do(http.MethodGet, "/ajax?action=get_cart_count", "")

	rec := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mortify_route_dispatch_total{kind="app_shell"} 1`)
	assert.Contains(t, rec.Body.String(), `mortify_cart_count_requests_total{result="disabled"} 1`)
}
