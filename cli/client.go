package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mortify/models"
	"net/http"
	"strings"
	"time"
)

// Client is the HTTP client for talking to the Mortify server
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new HTTP client. token is sent as a bearer token on
// every request when set.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiResponse is the server's response envelope
type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// UpdateResult is the outcome of a settings write
type UpdateResult struct {
	Settings    models.Settings `json:"settings"`
	SlugChanged bool            `json:"slug_changed"`
	Rejected    []string        `json:"rejected"`
	FlushError  *string         `json:"flush_error"`
}

// RouteInfo is one installed route
type RouteInfo struct {
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
	Query   string `json:"query"`
}

// RoutesResult is the installed route table
type RoutesResult struct {
	Slug   string      `json:"slug"`
	Routes []RouteInfo `json:"routes"`
}

// Health is the health endpoint payload
type Health struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	DBHealthy    bool   `json:"db_healthy"`
	AppSlug      string `json:"app_slug"`
	CommerceMode string `json:"commerce_mode"`
	Upstream     bool   `json:"upstream"`
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse unwraps the response envelope into result
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
		}
		return fmt.Errorf("failed to decode response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || envelope.Code != "OK" {
		var detail struct {
			Detail any `json:"detail"`
		}
		_ = json.Unmarshal(envelope.Data, &detail)
		if detail.Detail != nil {
			return fmt.Errorf("%s: %s (%v)", envelope.Code, envelope.Message, detail.Detail)
		}
		return fmt.Errorf("%s: %s", envelope.Code, envelope.Message)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

// HealthCheck fetches the health endpoint
func (c *Client) HealthCheck() (*Health, error) {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return nil, err
	}

	var health Health
	if err := c.handleResponse(resp, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetSettings fetches the merged settings
func (c *Client) GetSettings() (*models.Settings, error) {
	resp, err := c.doRequest("GET", "/api/settings", nil)
	if err != nil {
		return nil, err
	}

	var settings models.Settings
	if err := c.handleResponse(resp, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings sends a partial settings write
func (c *Client) UpdateSettings(req models.SettingsInput) (*UpdateResult, error) {
	resp, err := c.doRequest("PUT", "/api/settings", req)
	if err != nil {
		return nil, err
	}

	var result UpdateResult
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetSettings restores the defaults
func (c *Client) ResetSettings() (*models.Settings, error) {
	resp, err := c.doRequest("DELETE", "/api/settings", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Settings models.Settings `json:"settings"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result.Settings, nil
}

// GetRoutes fetches the installed route table
func (c *Client) GetRoutes() (*RoutesResult, error) {
	resp, err := c.doRequest("GET", "/api/routes", nil)
	if err != nil {
		return nil, err
	}

	var routes RoutesResult
	if err := c.handleResponse(resp, &routes); err != nil {
		return nil, err
	}
	return &routes, nil
}

// GetErrorLogs fetches the recent error log entries
func (c *Client) GetErrorLogs() ([]models.ErrorLog, error) {
	resp, err := c.doRequest("GET", "/api/error-logs", nil)
	if err != nil {
		return nil, err
	}

	var logs []models.ErrorLog
	if err := c.handleResponse(resp, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ClearErrorLogs deletes all error log entries
func (c *Client) ClearErrorLogs() error {
	resp, err := c.doRequest("DELETE", "/api/error-logs", nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}
