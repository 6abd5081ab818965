package handlers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"mortify/core"
	"mortify/version"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck health endpoint
func (h *Handler) HealthCheck(c *gin.Context) {
	dbHealthy := h.ping != nil && h.ping(c.Request.Context())

	health := gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().Unix(),
		"version":       version.GetFullVersion(),
		"db_healthy":    dbHealthy,
		"app_slug":      h.router.Slug(),
		"commerce_mode": h.cfg.CommerceMode,
		"upstream":      h.upstream != nil,
	}

	if !dbHealthy {
		health["status"] = "degraded"
		respondV2(c, http.StatusServiceUnavailable, CodeUnavailable, "Database unreachable", health)
		return
	}
	okV2(c, health)
}

// GetErrorLogs returns recent error logs, or a single entry with ?id=
func (h *Handler) GetErrorLogs(c *gin.Context) {
	if raw := c.Query("id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid error log id", raw)
			return
		}
		entry := core.ErrorLoggerInstance.GetErrorLogByID(id)
		if entry == nil {
			errV2(c, http.StatusNotFound, CodeNotFound, "Error log not found", id)
			return
		}
		okV2(c, entry)
		return
	}
	okV2(c, core.ErrorLoggerInstance.GetErrorLogs())
}

// ClearErrorLogs wipes error logs
func (h *Handler) ClearErrorLogs(c *gin.Context) {
	core.ErrorLoggerInstance.ClearErrorLogs()
	okV2(c, gin.H{"ok": true})
}

// GenerateShutdownCode creates a shutdown confirmation code
func (h *Handler) GenerateShutdownCode(c *gin.Context) {
	m := h.shutdown
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate a 6-digit random number
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		errV2(c, http.StatusInternalServerError, CodeInternal, "Failed to generate code", err.Error())
		return
	}

	m.code = fmt.Sprintf("%06d", n.Int64())
	m.expiresAt = time.Now().Add(5 * time.Minute)

	okV2(c, gin.H{
		"code":       m.code,
		"expires_at": m.expiresAt.Unix(),
	})
}

// VerifyAndShutdown validates the confirmation code and shuts the server down
func (h *Handler) VerifyAndShutdown(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	m := h.shutdown
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.code == "" {
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "No shutdown code generated. Please generate one first.", nil)
		return
	}
	if time.Now().After(m.expiresAt) {
		m.code = ""
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Shutdown code expired. Please generate a new one.", nil)
		return
	}
	if req.Code != m.code {
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid shutdown code", nil)
		return
	}
	m.code = ""

	if m.ch == nil {
		errV2(c, http.StatusServiceUnavailable, CodeUnavailable, "Shutdown is not available", nil)
		return
	}

	okV2(c, gin.H{"ok": true, "message": "Shutdown initiated"})
	core.LogWarn("System", "Shutdown requested via API", "confirmed with shutdown code")
	select {
	case m.ch <- struct{}{}:
	default:
	}
}
